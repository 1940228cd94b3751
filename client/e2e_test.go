package client

import (
	"context"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"portail-citoyen-backend/database"
	"portail-citoyen-backend/handlers"
	"portail-citoyen-backend/lifecycle"
	"portail-citoyen-backend/middleware"
	"portail-citoyen-backend/models"
	"portail-citoyen-backend/services"
	"portail-citoyen-backend/utils"

	"github.com/gorilla/mux"
)

const e2eSecret = "secret-de-test-client"

// portail démarre l'API réelle sur des stores en mémoire, à une date fixe
func portail(t *testing.T, now time.Time) (*httptest.Server, *database.Stores) {
	t.Helper()
	stores := database.NewMemoryStores()
	recorder := services.NewActivityRecorder(stores.Activite, stores.Systeme)
	t.Cleanup(recorder.Close)

	deps := &handlers.Deps{
		Recorder: recorder,
		Notifier: services.NewNotifier(stores.Notifications, stores.FCMTokens, nil, nil, services.NewDisabledFCMService()),
		Policy:   lifecycle.PolicyPermissive,
		Now:      func() time.Time { return now },
	}

	auth := middleware.Auth(e2eSecret)
	router := mux.NewRouter()
	api := router.PathPrefix("/api").Subrouter()
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(auth)
	for _, res := range handlers.NewResources(stores, deps) {
		res.RegisterPublicRoutes(api, auth, middleware.NewRateLimiter(100).Middleware)
		res.RegisterAdminRoutes(admin)
	}

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, stores
}

func agentClient(t *testing.T, url string) *Client {
	t.Helper()
	token, err := utils.GenerateToken(2, "agent@mairie.test", models.RoleAgent, e2eSecret)
	if err != nil {
		t.Fatal(err)
	}
	c := New(url, nil)
	c.SetToken(token)
	return c
}

func TestPortail_publicationEtBadge(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	srv, stores := portail(t, now)
	c := agentClient(t, srv.URL)
	ctx := context.Background()

	cases := []struct {
		name   string
		debut  time.Time
		fin    *time.Time
		statut string
		etat   lifecycle.Etat
	}{
		{name: "à venir", debut: now.Add(30 * 24 * time.Hour), statut: "PUBLIEE", etat: lifecycle.EtatAVenir},
		{name: "en cours", debut: now.Add(-time.Hour), fin: ptr(now.Add(2 * time.Hour)), statut: "PUBLIEE", etat: lifecycle.EtatEnCours},
		{name: "clôturé", debut: now.Add(30 * 24 * time.Hour), statut: "CLOTUREE", etat: lifecycle.EtatTermine},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			body := map[string]interface{}{
				"titre":       "Marché de printemps",
				"description": "Producteurs locaux",
				"type":        "CULTURE",
				"dateDebut":   tc.debut.Format(time.RFC3339),
			}
			if tc.fin != nil {
				body["dateFin"] = tc.fin.Format(time.RFC3339)
			}
			var created models.Evenement
			if _, err := c.Post(ctx, "/api/admin/evenements", body, &created); err != nil {
				t.Fatalf("création: %v", err)
			}
			if created.Statut != lifecycle.Brouillon {
				t.Fatalf("statut initial = %s", created.Statut)
			}

			toaster := &fakeToaster{}
			tr := NewTransitioner(c, lifecycle.EntiteEvenements, toaster)
			if err := tr.Apply(ctx, created.ID, "PUBLIEE"); err != nil {
				t.Fatalf("publication: %v (%v)", err, toaster.erreurs)
			}
			if tc.statut == "CLOTUREE" {
				// La clôture ne passe pas par l'endpoint de statut : on l'écrit en base
				if err := tr.Apply(ctx, created.ID, "CLOTUREE"); err == nil {
					t.Fatal("CLOTUREE ne doit pas passer par l'endpoint de statut")
				}
				if _, err := stores.Evenements.UpdateFields(ctx, created.ID, map[string]interface{}{
					database.ChampStatut: string(lifecycle.Cloturee),
				}); err != nil {
					t.Fatal(err)
				}
			}

			var ev models.Evenement
			if _, err := c.Get(ctx, fmt.Sprintf("/api/evenements/%d", created.ID), &ev); err != nil {
				t.Fatalf("lecture publique: %v", err)
			}
			if string(ev.Statut) != tc.statut {
				t.Errorf("statut = %s, attendu %s", ev.Statut, tc.statut)
			}
			if ev.Badge == nil || ev.Badge.Etat != tc.etat {
				t.Errorf("badge = %+v, attendu %s", ev.Badge, tc.etat)
			}
		})
	}
}

func TestPortail_compteurDeVues(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	srv, _ := portail(t, now)
	c := agentClient(t, srv.URL)
	ctx := context.Background()

	var created models.Evenement
	if _, err := c.Post(ctx, "/api/admin/evenements", map[string]interface{}{
		"titre": "Conseil municipal", "description": "Séance publique", "type": "CITOYENNETE",
		"dateDebut": now.Add(48 * time.Hour).Format(time.RFC3339), "statut": "BROUILLON",
	}, &created); err != nil {
		t.Fatal(err)
	}
	if err := NewTransitioner(c, lifecycle.EntiteEvenements, nil).Apply(ctx, created.ID, "PUBLIEE"); err != nil {
		t.Fatal(err)
	}

	visiteur := New(srv.URL, nil)
	guard := NewViewGuard(visiteur, NewMemoryStore())
	for i := 0; i < 3; i++ {
		if _, err := guard.MarkViewed(ctx, lifecycle.EntiteEvenements, created.ID); err != nil {
			t.Fatal(err)
		}
	}
	if err := guard.Participate(ctx, lifecycle.EntiteEvenements, created.ID); err != ErrConnexionRequise {
		t.Errorf("err = %v, attendu ErrConnexionRequise", err)
	}

	var ev models.Evenement
	if _, err := visiteur.Get(ctx, fmt.Sprintf("/api/evenements/%d", created.ID), &ev); err != nil {
		t.Fatal(err)
	}
	if ev.NbVues != 1 {
		t.Errorf("nbVues = %d, attendu 1", ev.NbVues)
	}
}

func ptr(t time.Time) *time.Time { return &t }
