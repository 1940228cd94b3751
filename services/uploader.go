package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Uploader transfère un fichier vers un stockage externe et retourne son URL publique
type Uploader interface {
	Upload(ctx context.Context, file io.Reader, size int64, filename, contentType string) (string, error)
}

// AllowedImageTypes liste les types MIME acceptés par /api/upload
var AllowedImageTypes = []string{"image/jpeg", "image/jpg", "image/png", "image/webp", "image/gif", "application/pdf"}

// objectName génère un nom d'objet unique en conservant l'extension
func objectName(folder, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return fmt.Sprintf("%s/%s/%s%s", folder, time.Now().UTC().Format("2006/01"), uuid.NewString(), ext)
}

// ---- Cloudinary ----

// CloudinaryUploader envoie les fichiers via l'API d'upload non signée Cloudinary
type CloudinaryUploader struct {
	cloudName    string
	uploadPreset string
	client       *http.Client
	baseURL      string
}

// CloudinaryUploadResponse représente la réponse de Cloudinary
type CloudinaryUploadResponse struct {
	PublicID  string `json:"public_id"`
	SecureURL string `json:"secure_url"`
	Format    string `json:"format"`
	Bytes     int    `json:"bytes"`
	Error     *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// NewCloudinaryUploader crée l'uploader Cloudinary
func NewCloudinaryUploader(cloudName, uploadPreset string) *CloudinaryUploader {
	return &CloudinaryUploader{
		cloudName:    cloudName,
		uploadPreset: uploadPreset,
		client:       &http.Client{Timeout: 60 * time.Second},
		baseURL:      "https://api.cloudinary.com",
	}
}

// Upload envoie le fichier et retourne l'URL sécurisée
func (c *CloudinaryUploader) Upload(ctx context.Context, file io.Reader, _ int64, filename, contentType string) (string, error) {
	resource := "image"
	if contentType == "application/pdf" {
		resource = "raw"
	}
	uploadURL := fmt.Sprintf("%s/v1_1/%s/%s/upload", c.baseURL, c.cloudName, resource)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", err
	}
	if err := writer.WriteField("upload_preset", c.uploadPreset); err != nil {
		return "", err
	}
	if err := writer.WriteField("public_id", strings.TrimSuffix(objectName("portail", filename), path.Ext(filename))); err != nil {
		return "", err
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uploadURL, body)
	if err != nil {
		return "", fmt.Errorf("erreur lors de la création de la requête: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("erreur lors de l'envoi à Cloudinary: %w", err)
	}
	defer resp.Body.Close()

	var result CloudinaryUploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("réponse Cloudinary illisible: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		msg := resp.Status
		if result.Error != nil {
			msg = result.Error.Message
		}
		return "", fmt.Errorf("Cloudinary a refusé le fichier: %s", msg)
	}

	log.Printf("✓ Upload Cloudinary réussi: %s", result.SecureURL)
	return result.SecureURL, nil
}

// ---- MinIO ----

// MinioUploader dépose les fichiers dans un bucket S3 compatible
type MinioUploader struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

// NewMinioUploader crée le client MinIO et s'assure que le bucket existe
func NewMinioUploader(ctx context.Context, endpoint, accessKey, secretKey, bucket string, useSSL bool, publicURL string) (*MinioUploader, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("erreur lors de la création du client MinIO: %w", err)
	}

	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("erreur lors de la vérification du bucket %s: %w", bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("erreur lors de la création du bucket %s: %w", bucket, err)
		}
		log.Printf("✓ Bucket MinIO créé: %s", bucket)
	}

	if publicURL == "" {
		scheme := "http"
		if useSSL {
			scheme = "https"
		}
		publicURL = fmt.Sprintf("%s://%s", scheme, endpoint)
	}

	return &MinioUploader{client: client, bucket: bucket, publicURL: strings.TrimSuffix(publicURL, "/")}, nil
}

// Upload dépose le fichier et retourne son URL publique
func (m *MinioUploader) Upload(ctx context.Context, file io.Reader, size int64, filename, contentType string) (string, error) {
	name := objectName("uploads", filename)
	_, err := m.client.PutObject(ctx, m.bucket, name, file, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("erreur lors du dépôt MinIO: %w", err)
	}
	url := fmt.Sprintf("%s/%s/%s", m.publicURL, m.bucket, name)
	log.Printf("✓ Upload MinIO réussi: %s", url)
	return url, nil
}
