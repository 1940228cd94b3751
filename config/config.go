package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"portail-citoyen-backend/lifecycle"

	"github.com/joho/godotenv"
)

// Pilotes de stockage
const (
	DriverMongo  = "mongo"
	DriverMemory = "memory"
)

// Backends d'upload
const (
	UploadDisabled   = ""
	UploadCloudinary = "cloudinary"
	UploadMinio      = "minio"
)

// Config contient toutes les configurations de l'application
type Config struct {
	Port           string
	Host           string
	Environment    string
	DatabaseDriver string
	MongoURI       string
	MongoDB        string
	JWTSecret      string
	CORSOrigins    []string
	TrustedProxies []string

	StatusPolicy     lifecycle.Policy
	LogRetentionDays int
	ViewRateLimit    int

	SlackWebhookURL         string
	FirebaseCredentialsFile string
	VAPIDPublicKey          string
	VAPIDPrivateKey         string
	VAPIDSubject            string

	UploadBackend          string
	CloudinaryCloudName    string
	CloudinaryUploadPreset string
	MinioEndpoint          string
	MinioAccessKey         string
	MinioSecretKey         string
	MinioBucket            string
	MinioUseSSL            bool
	MinioPublicURL         string
}

// Load charge la configuration depuis les variables d'environnement
func Load() (*Config, error) {
	// Charger le fichier .env s'il existe
	_ = godotenv.Load()

	config := &Config{
		Port:                    getEnv("PORT", "8090"),
		Host:                    getEnv("HOST", "0.0.0.0"),
		Environment:             getEnv("ENVIRONMENT", "development"),
		DatabaseDriver:          strings.ToLower(getEnv("DATABASE_DRIVER", DriverMongo)),
		MongoURI:                getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:                 getEnv("MONGO_DB", "portail_citoyen"),
		JWTSecret:               getEnv("JWT_SECRET", ""),
		SlackWebhookURL:         getEnv("SLACK_WEBHOOK_URL", ""),
		FirebaseCredentialsFile: getEnv("FIREBASE_CREDENTIALS_FILE", "firebase-service-account.json"),
		VAPIDPublicKey:          getEnv("VAPID_PUBLIC_KEY", ""),
		VAPIDPrivateKey:         getEnv("VAPID_PRIVATE_KEY", ""),
		VAPIDSubject:            getEnv("VAPID_SUBJECT", "mailto:contact@example.com"),
		UploadBackend:           strings.ToLower(getEnv("UPLOAD_BACKEND", UploadDisabled)),
		CloudinaryCloudName:     getEnv("CLOUDINARY_CLOUD_NAME", ""),
		CloudinaryUploadPreset:  getEnv("CLOUDINARY_UPLOAD_PRESET", "portail_citoyen"),
		MinioEndpoint:           getEnv("MINIO_ENDPOINT", "localhost:9000"),
		MinioAccessKey:          getEnv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey:          getEnv("MINIO_SECRET_KEY", ""),
		MinioBucket:             getEnv("MINIO_BUCKET", "portail-citoyen"),
		MinioUseSSL:             getEnvBool("MINIO_USE_SSL", false),
		MinioPublicURL:          getEnv("MINIO_PUBLIC_URL", ""),
		LogRetentionDays:        getEnvInt("LOG_RETENTION_DAYS", 90),
		ViewRateLimit:           getEnvInt("VIEW_RATE_LIMIT", 30),
	}

	// Parser les origines CORS
	origins := getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	originsList := strings.Split(origins, ",")
	config.CORSOrigins = make([]string, 0, len(originsList))
	for _, origin := range originsList {
		trimmed := strings.TrimSpace(origin)
		if trimmed != "" {
			config.CORSOrigins = append(config.CORSOrigins, trimmed)
		}
	}

	// Proxies dont on croit X-Forwarded-For (vide = aucun)
	for _, proxy := range strings.Split(getEnv("TRUSTED_PROXIES", ""), ",") {
		if trimmed := strings.TrimSpace(proxy); trimmed != "" {
			config.TrustedProxies = append(config.TrustedProxies, trimmed)
		}
	}

	// Valider les configurations critiques
	if config.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET est requis")
	}

	policy, err := lifecycle.ParsePolicy(getEnv("STATUS_POLICY", string(lifecycle.PolicyPermissive)))
	if err != nil {
		return nil, fmt.Errorf("STATUS_POLICY: %w", err)
	}
	config.StatusPolicy = policy

	switch config.DatabaseDriver {
	case DriverMongo, DriverMemory:
	default:
		return nil, fmt.Errorf("DATABASE_DRIVER invalide: %q (mongo ou memory)", config.DatabaseDriver)
	}

	switch config.UploadBackend {
	case UploadDisabled, UploadCloudinary, UploadMinio:
	default:
		return nil, fmt.Errorf("UPLOAD_BACKEND invalide: %q (cloudinary, minio ou vide)", config.UploadBackend)
	}

	if config.LogRetentionDays <= 0 {
		return nil, fmt.Errorf("LOG_RETENTION_DAYS doit être positif")
	}

	return config, nil
}

// IsProduction indique si l'application tourne en production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv récupère une variable d'environnement avec une valeur par défaut
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	n, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvBool(key string, defaultValue bool) bool {
	b, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return b
}
