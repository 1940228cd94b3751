package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestEvenementRequestBuild(t *testing.T) {
	var req EvenementRequest
	body := `{"titre":"  Fête de quartier ","description":"d","type":"FETE","dateDebut":"2026-06-21T18:00","dateFin":"2026-06-21T23:00"}`
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	ev, errs := req.Build(7)
	if len(errs) != 0 {
		t.Fatalf("Build() erreurs = %v", errs)
	}
	if ev.Titre != "Fête de quartier" {
		t.Errorf("Titre = %q", ev.Titre)
	}
	if ev.AuteurID != 7 {
		t.Errorf("AuteurID = %d, attendu 7", ev.AuteurID)
	}
	if ev.DateFin == nil || !ev.DateFin.After(ev.DateDebut) {
		t.Errorf("DateFin = %v", ev.DateFin)
	}
	if ev.DateDebut.Location() != time.UTC {
		t.Errorf("DateDebut doit être stockée en UTC")
	}
}

func TestEvenementRequestBuild_finAvantDebut(t *testing.T) {
	var req EvenementRequest
	body := `{"titre":"Concert","description":"d","type":"CULTURE","dateDebut":"2026-06-21T18:00","dateFin":"2026-06-20T18:00"}`
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	_, errs := req.Build(1)
	if len(errs) != 1 || errs[0].Champ != "dateFin" {
		t.Errorf("Build() erreurs = %v, attendu une erreur sur dateFin", errs)
	}
}

func TestEvenementPatchFields(t *testing.T) {
	var patch EvenementPatch
	if err := json.Unmarshal([]byte(`{"titre":"Nouveau titre","capacite":50,"dateFin":null}`), &patch); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	fields, errs := patch.Fields()
	if len(errs) != 0 {
		t.Fatalf("Fields() erreurs = %v", errs)
	}
	if fields["titre"] != "Nouveau titre" {
		t.Errorf("titre = %v", fields["titre"])
	}
	if fields["capacite"] != 50 {
		t.Errorf("capacite = %v", fields["capacite"])
	}
	if _, ok := fields["description"]; ok {
		t.Error("un champ absent ne doit pas être modifié")
	}
}

func TestRegisterRequestAplati(t *testing.T) {
	body := `{"prenom":"Awa","nom":"Diallo","email":"awa@example.com","telephone":"0612345678","motDePasse":"secret123","confirmation":"secret123","acceptCgu":true}`
	var req RegisterRequest
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if req.Prenom != "Awa" || req.Email != "awa@example.com" || req.MotDePasse != "secret123" {
		t.Errorf("accumulateur mal décodé: %+v", req)
	}
}
