package handlers

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"testing"

	"portail-citoyen-backend/lifecycle"
	"portail-citoyen-backend/models"
)

var numeroPattern = regexp.MustCompile(`^REC-2026-[0-9A-F]{8}$`)

func TestNumeroReclamation(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		n := NumeroReclamation(2026)
		if !numeroPattern.MatchString(n) {
			t.Fatalf("numéro mal formé: %s", n)
		}
		if seen[n] {
			t.Fatalf("numéro en double: %s", n)
		}
		seen[n] = true
	}
}

func TestReclamationHandler_depotEtSuivi(t *testing.T) {
	env := newTestEnv(t, lifecycle.PolicyPermissive)
	body := map[string]string{
		"objet":          "Lampadaire en panne",
		"description":    "Le lampadaire devant le numéro 12 ne s'allume plus depuis une semaine.",
		"categorie":      "ECLAIRAGE",
		"nomDeclarant":   "Jean Petit",
		"emailDeclarant": "jean.petit@exemple.fr",
	}

	var suivi models.ReclamationSuivi
	rr := env.do(http.MethodPost, "/api/reclamations", "", body)
	expectStatus(t, rr, http.StatusCreated)
	decode(t, rr, &suivi)
	if !numeroPattern.MatchString(suivi.Numero) {
		t.Errorf("numéro de suivi inattendu: %s", suivi.Numero)
	}
	if suivi.Statut != lifecycle.Soumise || suivi.Style.Label == "" {
		t.Errorf("suivi initial inattendu: %+v", suivi)
	}

	// Catégorie inconnue
	bad := map[string]string{}
	for k, v := range body {
		bad[k] = v
	}
	bad["categorie"] = "METEO"
	expectStatus(t, env.do(http.MethodPost, "/api/reclamations", "", bad), http.StatusBadRequest)

	// Suivi insensible à la casse
	rr = env.do(http.MethodGet, "/api/reclamations/suivi/"+strings.ToLower(suivi.Numero), "", nil)
	expectStatus(t, rr, http.StatusOK)
	expectStatus(t, env.do(http.MethodGet, "/api/reclamations/suivi/REC-2026-00000000", "", nil), http.StatusNotFound)

	// Traitement par un agent, visible dans le suivi
	rec, err := env.stores.Reclamations.FindOne(context.Background(), map[string]interface{}{"numero": suivi.Numero})
	if err != nil || rec == nil {
		t.Fatalf("réclamation introuvable: %v", err)
	}
	expectStatus(t, env.do(http.MethodPost, fmt.Sprintf("/api/admin/reclamations/%d/statut", rec.ID), env.token(idAgent), map[string]string{"statut": "EN_COURS"}), http.StatusOK)
	expectStatus(t, env.do(http.MethodGet, fmt.Sprintf("/api/admin/reclamations/%d", rec.ID), env.token(idModerateur), nil), http.StatusForbidden)

	rr = env.do(http.MethodGet, "/api/reclamations/suivi/"+suivi.Numero, "", nil)
	expectStatus(t, rr, http.StatusOK)
	decode(t, rr, &suivi)
	if suivi.Statut != lifecycle.EnCours || suivi.Style.Label != "En traitement" {
		t.Errorf("suivi après prise en charge: %+v", suivi)
	}
}
