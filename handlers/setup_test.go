package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"portail-citoyen-backend/database"
	"portail-citoyen-backend/lifecycle"
	"portail-citoyen-backend/middleware"
	"portail-citoyen-backend/models"
	"portail-citoyen-backend/services"
	"portail-citoyen-backend/utils"

	"github.com/gorilla/mux"
)

const testSecret = "secret-de-test-handlers"

// Comptes utilisés par les tests
const (
	idCitoyen    int64 = 1
	idAgent      int64 = 2
	idModerateur int64 = 3
	idAdmin      int64 = 4
	idSuperAdmin int64 = 5
)

type testEnv struct {
	t        *testing.T
	stores   *database.Stores
	deps     *Deps
	recorder *services.ActivityRecorder
	router   *mux.Router
	now      time.Time
}

// newTestEnv monte un routeur complet sur des stores en mémoire, à une date fixe
func newTestEnv(t *testing.T, policy lifecycle.Policy) *testEnv {
	t.Helper()
	return newTestEnvWith(t, policy, nil)
}

// newTestEnvWith permet de remplacer certains stores avant le montage des handlers
func newTestEnvWith(t *testing.T, policy lifecycle.Policy, wrap func(*database.Stores)) *testEnv {
	t.Helper()

	env := &testEnv{
		t:      t,
		stores: database.NewMemoryStores(),
		now:    time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
	}
	if wrap != nil {
		wrap(env.stores)
	}
	env.recorder = services.NewActivityRecorder(env.stores.Activite, env.stores.Systeme)
	t.Cleanup(env.recorder.Close)

	notifier := services.NewNotifier(env.stores.Notifications, env.stores.FCMTokens, nil, nil, services.NewDisabledFCMService())
	env.deps = &Deps{
		Recorder: env.recorder,
		Notifier: notifier,
		Policy:   policy,
		Now:      func() time.Time { return env.now },
	}

	auth := middleware.Auth(testSecret)
	passthrough := func(next http.Handler) http.Handler { return next }

	router := mux.NewRouter()
	api := router.PathPrefix("/api").Subrouter()
	protected := api.PathPrefix("").Subrouter()
	protected.Use(auth)
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(auth)

	resources := NewResources(env.stores, env.deps)
	for _, res := range resources {
		res.RegisterPublicRoutes(api, auth, passthrough)
		res.RegisterAdminRoutes(admin)
	}

	search := NewSearchHandler(PublicSearchers(resources, lifecycle.EntiteEvenements, lifecycle.EntiteActualites, lifecycle.EntiteArticles, lifecycle.EntiteCampagnes)...)
	api.HandleFunc("/recherche", search.Search).Methods("GET")
	api.HandleFunc("/recherche/suggestions", search.Suggestions).Methods("GET")

	reclamations := NewReclamationHandler(env.stores.Reclamations, env.deps)
	api.Handle("/reclamations", middleware.OptionalAuth(testSecret)(http.HandlerFunc(reclamations.Submit))).Methods("POST")
	api.HandleFunc("/reclamations/suivi/{numero}", reclamations.Track).Methods("GET")

	settings := NewSettingsHandler(env.stores.Parametres, env.deps)
	api.HandleFunc("/settings", settings.Public).Methods("GET")

	nav := NewNavigationHandler(env.stores.Notifications, env.stores.Parametres)
	api.Handle("/navigation", middleware.OptionalAuth(testSecret)(http.HandlerFunc(nav.Get))).Methods("GET")

	authHandler := NewAuthHandler(env.stores.Utilisateurs, env.stores.Parametres, testSecret, env.deps)
	api.HandleFunc("/auth/register", authHandler.Register).Methods("POST")
	api.HandleFunc("/auth/login", authHandler.Login).Methods("POST")
	protected.HandleFunc("/auth/me", authHandler.Me).Methods("GET")

	notifications := NewNotificationHandler(env.stores.Notifications, nil, notifier, env.deps)
	protected.HandleFunc("/notifications", notifications.List).Methods("GET")
	protected.HandleFunc("/notifications/tout-lire", notifications.MarkAllRead).Methods("POST")
	protected.HandleFunc("/notifications/{id:[0-9]+}/lire", notifications.MarkRead).Methods("POST")
	protected.HandleFunc("/notifications/vapid-public-key", notifications.VAPIDPublicKey).Methods("GET")

	logs := NewLogsHandler(env.stores.Activite, env.stores.Systeme)
	logsRouter := admin.PathPrefix("/logs").Subrouter()
	logsRouter.Use(middleware.RequireRole(models.RoleAdmin))
	logsRouter.HandleFunc("", logs.List).Methods("GET")
	logsRouter.HandleFunc("/export", logs.Export).Methods("GET")

	ref := NewReferenceHandler(env.stores.Etablissements, env.stores.Communes, env.deps)
	api.HandleFunc("/etablissements", ref.PublicEtablissements).Methods("GET")
	refAdmin := admin.PathPrefix("/etablissements").Subrouter()
	refAdmin.Use(middleware.RequireRole(models.RoleAdmin))
	refAdmin.HandleFunc("", ref.AdminEtablissements).Methods("GET")
	refAdmin.HandleFunc("", ref.CreateEtablissement).Methods("POST")
	refAdmin.HandleFunc("/{id:[0-9]+}/valider", ref.ValidateEtablissement).Methods("POST")

	users := NewUserHandler(env.stores.Utilisateurs, env.deps)
	super := admin.PathPrefix("").Subrouter()
	super.Use(middleware.RequireRole(models.RoleSuperAdmin))
	super.HandleFunc("/utilisateurs", users.List).Methods("GET")
	super.HandleFunc("/utilisateurs/{id:[0-9]+}", users.Patch).Methods("PATCH")
	super.HandleFunc("/utilisateurs/{id:[0-9]+}", users.Delete).Methods("DELETE")
	super.HandleFunc("/settings", settings.Patch).Methods("PATCH")

	env.router = router
	return env
}

// token génère un JWT pour l'un des comptes de test
func (e *testEnv) token(id int64) string {
	e.t.Helper()
	roles := map[int64]models.Role{
		idCitoyen:    models.RoleCitoyen,
		idAgent:      models.RoleAgent,
		idModerateur: models.RoleModerateur,
		idAdmin:      models.RoleAdmin,
		idSuperAdmin: models.RoleSuperAdmin,
	}
	role, ok := roles[id]
	if !ok {
		e.t.Fatalf("compte de test inconnu: %d", id)
	}
	tok, err := utils.GenerateToken(id, string(role)+"@mairie.test", role, testSecret)
	if err != nil {
		e.t.Fatalf("GenerateToken: %v", err)
	}
	return tok
}

// do exécute une requête ; token vide = anonyme, body nil = pas de corps
func (e *testEnv) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	e.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			e.t.Fatalf("encodage du corps: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

type envelope struct {
	Success    bool              `json:"success"`
	Message    string            `json:"message"`
	Data       json.RawMessage   `json:"data"`
	Pagination models.Pagination `json:"pagination"`
	Stats      json.RawMessage   `json:"stats"`
	Error      models.ErrorBody  `json:"error"`
}

// decode lit l'enveloppe et, si dst est fourni, son champ data
func decode(t *testing.T, rr *httptest.ResponseRecorder, dst interface{}) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
		t.Fatalf("réponse JSON invalide: %v (%s)", err, rr.Body.String())
	}
	if dst != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, dst); err != nil {
			t.Fatalf("data illisible: %v (%s)", err, env.Data)
		}
	}
	return env
}

// expectStatus arrête le test si le code HTTP n'est pas celui attendu
func expectStatus(t *testing.T, rr *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rr.Code != want {
		t.Fatalf("status = %d, attendu %d (%s)", rr.Code, want, rr.Body.String())
	}
}

// seedEvenement insère directement un événement au statut donné
func (e *testEnv) seedEvenement(titre string, statut lifecycle.Status, debut time.Time) *models.Evenement {
	e.t.Helper()
	ev := &models.Evenement{
		Publication: models.Publication{Statut: statut, AuteurID: idAgent},
		Titre:       titre,
		Description: "Description de " + titre,
		Type:        "CULTURE",
		Lieu:        "Place de la mairie",
		DateDebut:   debut,
	}
	if err := e.stores.Evenements.Create(context.Background(), ev); err != nil {
		e.t.Fatalf("création de l'événement: %v", err)
	}
	return ev
}
