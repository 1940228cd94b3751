package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"portail-citoyen-backend/lifecycle"
	"portail-citoyen-backend/models"
)

func seedLogs(t *testing.T, env *testEnv) {
	t.Helper()
	ctx := context.Background()
	for _, l := range []*models.ActivityLog{
		{UtilisateurID: idAgent, UtilisateurEmail: "agent@mairie.test", Action: models.ActionCreation, Entite: "evenements", EntiteID: 1},
		{UtilisateurID: idAgent, UtilisateurEmail: "agent@mairie.test", Action: models.ActionStatut, Entite: "evenements", EntiteID: 1, Details: "BROUILLON → EN_ATTENTE_VALIDATION"},
		{UtilisateurID: idAdmin, UtilisateurEmail: "admin@mairie.test", Action: models.ActionSuppression, Entite: "actualites", EntiteID: 4},
	} {
		if err := env.stores.Activite.Create(ctx, l); err != nil {
			t.Fatal(err)
		}
	}
	for _, l := range []*models.SystemLog{
		{Niveau: models.NiveauError, Source: "http", Message: "GET /api/evenements -> 500"},
		{Niveau: models.NiveauInfo, Source: "cron", Message: "Purge des journaux"},
	} {
		if err := env.stores.Systeme.Create(ctx, l); err != nil {
			t.Fatal(err)
		}
	}
}

func TestLogsHandler_List(t *testing.T) {
	env := newTestEnv(t, lifecycle.PolicyPermissive)
	seedLogs(t, env)
	admin := env.token(idAdmin)

	expectStatus(t, env.do(http.MethodGet, "/api/admin/logs", env.token(idModerateur), nil), http.StatusForbidden)

	var logs []models.ActivityLog
	rr := env.do(http.MethodGet, "/api/admin/logs?entite=evenements", admin, nil)
	expectStatus(t, rr, http.StatusOK)
	resp := decode(t, rr, &logs)
	if len(logs) != 2 {
		t.Errorf("2 entrées attendues pour evenements, %d obtenues", len(logs))
	}
	var stats LogStats
	if err := json.Unmarshal(resp.Stats, &stats); err != nil {
		t.Fatal(err)
	}
	if stats.Total != 2 || stats.ParAction[models.ActionStatut] != 1 {
		t.Errorf("statistiques inattendues: %+v", stats)
	}

	var sys []models.SystemLog
	rr = env.do(http.MethodGet, "/api/admin/logs?source=systeme&niveau=error", admin, nil)
	expectStatus(t, rr, http.StatusOK)
	decode(t, rr, &sys)
	if len(sys) != 1 || sys[0].Source != "http" {
		t.Errorf("journal système filtré: %+v", sys)
	}

	expectStatus(t, env.do(http.MethodGet, "/api/admin/logs?source=inconnue", admin, nil), http.StatusBadRequest)
	expectStatus(t, env.do(http.MethodGet, "/api/admin/logs?depuis=hier", admin, nil), http.StatusBadRequest)

	// Plage de dates : tout a été créé aujourd'hui
	tomorrow := time.Now().Add(48 * time.Hour).Format("2006-01-02")
	rr = env.do(http.MethodGet, "/api/admin/logs?depuis="+tomorrow, admin, nil)
	expectStatus(t, rr, http.StatusOK)
	decode(t, rr, &logs)
	if len(logs) != 0 {
		t.Errorf("aucune entrée attendue après %s, %d obtenue(s)", tomorrow, len(logs))
	}
}

func TestLogsHandler_Export(t *testing.T) {
	env := newTestEnv(t, lifecycle.PolicyPermissive)
	seedLogs(t, env)

	rr := env.do(http.MethodGet, "/api/admin/logs/export", env.token(idAdmin), nil)
	expectStatus(t, rr, http.StatusOK)

	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("Content-Type = %q", ct)
	}
	if cd := rr.Header().Get("Content-Disposition"); !strings.Contains(cd, "journal_activite_") {
		t.Errorf("Content-Disposition = %q", cd)
	}

	body := strings.TrimPrefix(rr.Body.String(), "\xEF\xBB\xBF")
	lines := strings.Split(strings.TrimSpace(body), "\n")
	if len(lines) != 4 {
		t.Fatalf("4 lignes attendues (en-tête + 3), %d obtenues:\n%s", len(lines), body)
	}
	if lines[0] != "date;utilisateurId;email;action;entite;entiteId;details;ip" {
		t.Errorf("en-tête inattendu: %s", lines[0])
	}

	expectStatus(t, env.do(http.MethodGet, "/api/admin/logs/export?format=xlsx", env.token(idAdmin), nil), http.StatusBadRequest)
}
