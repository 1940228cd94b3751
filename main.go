package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"portail-citoyen-backend/config"
	"portail-citoyen-backend/database"
	"portail-citoyen-backend/handlers"
	"portail-citoyen-backend/lifecycle"
	"portail-citoyen-backend/middleware"
	"portail-citoyen-backend/models"
	"portail-citoyen-backend/services"
	"portail-citoyen-backend/utils"
	"portail-citoyen-backend/websocket"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// Charger la configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Erreur lors du chargement de la configuration: %v", err)
	}

	// Stockage : MongoDB en production, mémoire pour les démos et le développement
	var stores *database.Stores
	var ping func() error
	switch cfg.DatabaseDriver {
	case config.DriverMemory:
		log.Println("⚠️  Stockage en mémoire : les données seront perdues à l'arrêt")
		stores = database.NewMemoryStores()
	default:
		if err := database.Connect(cfg.MongoURI, cfg.MongoDB); err != nil {
			log.Fatalf("❌ Erreur de connexion à MongoDB: %v", err)
		}
		defer database.Close()
		stores = database.NewMongoStores(database.DB)
		ping = database.Ping
	}

	// Services transverses
	slackService := services.NewSlackService(cfg.SlackWebhookURL)
	metrics := services.NewMetrics(prometheus.DefaultRegisterer)
	recorder := services.NewActivityRecorder(stores.Activite, stores.Systeme)

	// Initialiser Firebase Cloud Messaging (optionnel)
	fcmService, err := services.NewFCMService(cfg.FirebaseCredentialsFile)
	if err != nil {
		log.Printf("⚠️  Erreur d'initialisation Firebase: %v", err)
		log.Println("⚠️  Le serveur démarre SANS notifications push pour le staff")
		fcmService = services.NewDisabledFCMService()
	} else {
		log.Println("✓ Firebase Cloud Messaging initialisé")
	}

	if cfg.VAPIDPublicKey != "" {
		if err := utils.ValidateVAPIDKeys(cfg.VAPIDPublicKey, cfg.VAPIDPrivateKey); err != nil {
			log.Fatalf("❌ Clés VAPID invalides: %v", err)
		}
	}
	webpushService := services.NewWebPushService(stores.Subscriptions, cfg.VAPIDPublicKey, cfg.VAPIDPrivateKey, cfg.VAPIDSubject)

	// Flux temps réel des notifications
	wsHub := websocket.NewHub()
	go wsHub.Run()
	wsHandler := websocket.NewHandler(wsHub, cfg.JWTSecret, cfg.CORSOrigins)

	notifier := services.NewNotifier(stores.Notifications, stores.FCMTokens, wsHub, webpushService, fcmService)

	// Stockage des fichiers
	var uploader services.Uploader
	switch cfg.UploadBackend {
	case config.UploadCloudinary:
		uploader = services.NewCloudinaryUploader(cfg.CloudinaryCloudName, cfg.CloudinaryUploadPreset)
		log.Println("✓ Upload des fichiers via Cloudinary")
	case config.UploadMinio:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		minioUploader, err := services.NewMinioUploader(ctx, cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL, cfg.MinioPublicURL)
		cancel()
		if err != nil {
			log.Fatalf("❌ Erreur d'initialisation MinIO: %v", err)
		}
		uploader = minioUploader
		log.Println("✓ Upload des fichiers via MinIO")
	default:
		log.Println("⚠️  Aucun backend d'upload configuré")
	}

	deps := &handlers.Deps{
		Recorder: recorder,
		Notifier: notifier,
		Metrics:  metrics,
		Policy:   cfg.StatusPolicy,
	}
	log.Printf("⚙️  Politique de statuts: %s", cfg.StatusPolicy)

	// Créer les handlers
	resources := handlers.NewResources(stores, deps)
	healthHandler := handlers.NewHealthHandler(cfg.Environment, cfg.DatabaseDriver, ping)
	authHandler := handlers.NewAuthHandler(stores.Utilisateurs, stores.Parametres, cfg.JWTSecret, deps)
	userHandler := handlers.NewUserHandler(stores.Utilisateurs, deps)
	settingsHandler := handlers.NewSettingsHandler(stores.Parametres, deps)
	navigationHandler := handlers.NewNavigationHandler(stores.Notifications, stores.Parametres)
	notificationHandler := handlers.NewNotificationHandler(stores.Notifications, webpushService, notifier, deps)
	reclamationHandler := handlers.NewReclamationHandler(stores.Reclamations, deps)
	referenceHandler := handlers.NewReferenceHandler(stores.Etablissements, stores.Communes, deps)
	logsHandler := handlers.NewLogsHandler(stores.Activite, stores.Systeme)
	uploadHandler := handlers.NewUploadHandler(uploader)
	searchHandler := handlers.NewSearchHandler(handlers.PublicSearchers(resources,
		lifecycle.EntiteEvenements, lifecycle.EntiteActualites, lifecycle.EntiteArticles, lifecycle.EntiteCampagnes)...)

	// Tâches planifiées
	maintenance := services.NewMaintenanceCron(
		stores.Activite,
		stores.Systeme,
		stores.Notifications,
		handlers.Scanners(resources),
		notifier,
		slackService,
		metrics,
		cfg.LogRetentionDays,
	)
	if err := maintenance.Start(); err != nil {
		log.Fatalf("❌ Erreur du planificateur: %v", err)
	}

	// Limiteur du compteur de vues
	if err := middleware.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		log.Fatalf("❌ TRUSTED_PROXIES: %v", err)
	}
	stopCleanup := make(chan struct{})
	viewLimiter := middleware.NewRateLimiter(cfg.ViewRateLimit)
	viewLimiter.StartCleanup(stopCleanup)

	// Créer le routeur
	router := mux.NewRouter()

	// Créer un routeur sans middleware pour WebSocket
	rawRouter := mux.NewRouter()

	// Appliquer les middlewares globaux (SAUF pour WebSocket)
	router.Use(middleware.RequestID)
	router.Use(middleware.Logging(slackService, recorder, metrics))
	router.Use(middleware.CORS(cfg.CORSOrigins))

	auth := middleware.Auth(cfg.JWTSecret)
	optionalAuth := middleware.OptionalAuth(cfg.JWTSecret)
	guest := middleware.Guest(cfg.JWTSecret)

	// Routes publiques
	router.HandleFunc("/api/health", healthHandler.Health).Methods("GET", "OPTIONS")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	api := router.PathPrefix("/api").Subrouter()

	for _, res := range resources {
		res.RegisterPublicRoutes(api, auth, viewLimiter.Middleware)
	}

	api.HandleFunc("/recherche", searchHandler.Search).Methods("GET", "OPTIONS")
	api.HandleFunc("/recherche/suggestions", searchHandler.Suggestions).Methods("GET", "OPTIONS")

	api.Handle("/reclamations", optionalAuth(http.HandlerFunc(reclamationHandler.Submit))).Methods("POST", "OPTIONS")
	api.HandleFunc("/reclamations/suivi/{numero}", reclamationHandler.Track).Methods("GET", "OPTIONS")

	api.HandleFunc("/settings", settingsHandler.Public).Methods("GET", "OPTIONS")
	api.Handle("/navigation", optionalAuth(http.HandlerFunc(navigationHandler.Get))).Methods("GET", "OPTIONS")

	api.HandleFunc("/etablissements", referenceHandler.PublicEtablissements).Methods("GET", "OPTIONS")
	api.HandleFunc("/communes", referenceHandler.ListCommunes).Methods("GET", "OPTIONS")

	// Routes d'authentification (réservées aux visiteurs non connectés)
	api.Handle("/auth/register", guest(http.HandlerFunc(authHandler.Register))).Methods("POST", "OPTIONS")
	api.Handle("/auth/login", guest(http.HandlerFunc(authHandler.Login))).Methods("POST", "OPTIONS")

	// Routes protégées (authentification requise)
	protected := api.PathPrefix("").Subrouter()
	protected.Use(auth)

	protected.HandleFunc("/auth/me", authHandler.Me).Methods("GET", "OPTIONS")
	protected.HandleFunc("/notifications", notificationHandler.List).Methods("GET", "OPTIONS")
	protected.HandleFunc("/notifications/tout-lire", notificationHandler.MarkAllRead).Methods("POST", "OPTIONS")
	protected.HandleFunc("/notifications/{id:[0-9]+}/lire", notificationHandler.MarkRead).Methods("POST", "OPTIONS")
	protected.HandleFunc("/notifications/vapid-public-key", notificationHandler.VAPIDPublicKey).Methods("GET", "OPTIONS")
	protected.HandleFunc("/notifications/subscribe", notificationHandler.Subscribe).Methods("POST", "OPTIONS")
	protected.HandleFunc("/fcm/token", notificationHandler.RegisterFCMToken).Methods("POST", "OPTIONS")
	protected.HandleFunc("/upload", uploadHandler.Upload).Methods("POST", "OPTIONS")

	// 🔌 ROUTE WEBSOCKET (SANS middleware)
	// La route WebSocket doit être sur rawRouter pour éviter le wrapping du ResponseWriter
	rawRouter.HandleFunc("/ws/notifications", wsHandler.ServeWS).Methods("GET")

	// Routes Admin (protégées par Auth + rôle)
	adminRouter := api.PathPrefix("/admin").Subrouter()
	adminRouter.Use(auth)
	adminRouter.Use(middleware.RefreshUser(stores.Utilisateurs))

	for _, res := range resources {
		res.RegisterAdminRoutes(adminRouter)
	}

	logsRouter := adminRouter.PathPrefix("/logs").Subrouter()
	logsRouter.Use(middleware.RequireRole(models.RoleAdmin))
	logsRouter.HandleFunc("", logsHandler.List).Methods("GET", "OPTIONS")
	logsRouter.HandleFunc("/export", logsHandler.Export).Methods("GET", "OPTIONS")

	referenceRouter := adminRouter.PathPrefix("").Subrouter()
	referenceRouter.Use(middleware.RequireRole(models.RoleAdmin))
	referenceRouter.HandleFunc("/etablissements", referenceHandler.AdminEtablissements).Methods("GET", "OPTIONS")
	referenceRouter.HandleFunc("/etablissements", referenceHandler.CreateEtablissement).Methods("POST", "OPTIONS")
	referenceRouter.HandleFunc("/etablissements/{id:[0-9]+}", referenceHandler.GetEtablissement).Methods("GET", "OPTIONS")
	referenceRouter.HandleFunc("/etablissements/{id:[0-9]+}", referenceHandler.PatchEtablissement).Methods("PATCH", "OPTIONS")
	referenceRouter.HandleFunc("/etablissements/{id:[0-9]+}", referenceHandler.DeleteEtablissement).Methods("DELETE", "OPTIONS")
	referenceRouter.HandleFunc("/etablissements/{id:[0-9]+}/valider", referenceHandler.ValidateEtablissement).Methods("POST", "OPTIONS")
	referenceRouter.HandleFunc("/communes", referenceHandler.CreateCommune).Methods("POST", "OPTIONS")

	superRouter := adminRouter.PathPrefix("").Subrouter()
	superRouter.Use(middleware.RequireRole(models.RoleSuperAdmin))
	superRouter.HandleFunc("/utilisateurs", userHandler.List).Methods("GET", "OPTIONS")
	superRouter.HandleFunc("/utilisateurs/{id:[0-9]+}", userHandler.Patch).Methods("PATCH", "OPTIONS")
	superRouter.HandleFunc("/utilisateurs/{id:[0-9]+}", userHandler.Delete).Methods("DELETE", "OPTIONS")
	superRouter.HandleFunc("/settings", settingsHandler.Get).Methods("GET", "OPTIONS")
	superRouter.HandleFunc("/settings", settingsHandler.Patch).Methods("PATCH", "OPTIONS")

	// Créer un multiplexeur qui combine les deux routers
	mainHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Si c'est une requête WebSocket, utiliser rawRouter (sans middleware)
		if r.URL.Path == "/ws/notifications" {
			rawRouter.ServeHTTP(w, r)
		} else {
			router.ServeHTTP(w, r)
		}
	})

	addr := cfg.Host + ":" + cfg.Port
	server := &http.Server{
		Addr:         addr,
		Handler:      mainHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("🚀 Serveur démarré sur http://%s", addr)
		log.Printf("📝 Environnement: %s", cfg.Environment)
		log.Printf("💾 Stockage: %s", cfg.DatabaseDriver)
		log.Printf("🌐 CORS autorisé pour: %v", cfg.CORSOrigins)
		log.Println("\n📍 Routes disponibles:")
		log.Println("   GET    /api/health                         - Health check")
		log.Println("   GET    /api/navigation                     - Menu selon le rôle")
		log.Println("   GET    /api/recherche?q=                   - Recherche globale")
		log.Println("   POST   /api/reclamations                   - Déposer une réclamation")
		log.Println("   GET    /api/reclamations/suivi/{numero}    - Suivre une réclamation")
		log.Println("   POST   /api/auth/register                  - Inscription")
		log.Println("   POST   /api/auth/login                     - Connexion")
		log.Println("   GET    /api/notifications                  - Mes notifications")
		log.Println("   GET    /ws/notifications                   - Flux temps réel")
		for _, res := range resources {
			log.Printf("   *      /api/admin/%-28s - Back-office", res.Entite())
		}
		log.Println("\n✨ Le serveur est prêt à recevoir des requêtes!")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Erreur du serveur: %v", err)
		}
	}()

	// Attendre le signal d'arrêt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("\n🛑 Arrêt du serveur...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("❌ Erreur lors de l'arrêt du serveur: %v", err)
	}
	close(stopCleanup)
	maintenance.Stop()
	wsHub.Shutdown()
	recorder.Close()
	log.Println("✓ Serveur arrêté proprement")
}
