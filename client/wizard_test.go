package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"

	"portail-citoyen-backend/constants"
	"portail-citoyen-backend/models"
)

func identite() models.InscriptionIdentite {
	return models.InscriptionIdentite{Civilite: "MME", Prenom: "Claire", Nom: "Martin"}
}

func contact() models.InscriptionContact {
	return models.InscriptionContact{Email: "Claire@Exemple.fr", Telephone: "06 12 34 56 78"}
}

func securite() models.InscriptionSecurite {
	return models.InscriptionSecurite{MotDePasse: "motdepasse123", Confirmation: "motdepasse123", AcceptCGU: true}
}

func TestWizard_etapes(t *testing.T) {
	w := NewWizard(New("http://127.0.0.1:0", nil))

	// Étape 1 invalide : on reste sur l'étape 1, l'étape 2 est intacte
	bad := identite()
	bad.Prenom = ""
	err := w.SubmitIdentite(bad)
	var verr *ValidationError
	if !errors.As(err, &verr) || len(verr.Details) == 0 {
		t.Fatalf("erreur de validation attendue, obtenu %v", err)
	}
	if w.Step() != EtapeIdentite {
		t.Errorf("étape = %d, attendu 1", w.Step())
	}
	if w.Contact() != (models.InscriptionContact{}) {
		t.Error("l'étape 2 ne doit pas être touchée")
	}

	// On ne peut pas sauter d'étape
	if err := w.SubmitContact(contact()); err != ErrEtapeInvalide {
		t.Errorf("err = %v, attendu ErrEtapeInvalide", err)
	}

	if err := w.SubmitIdentite(identite()); err != nil {
		t.Fatal(err)
	}
	if err := w.SubmitContact(contact()); err != nil {
		t.Fatal(err)
	}
	if w.Step() != EtapeSecurite {
		t.Fatalf("étape = %d, attendu 3", w.Step())
	}

	// Retour à l'étape 1 puis de nouveau en avant : les valeurs sont conservées
	w.Back()
	if w.Back() != EtapeIdentite {
		t.Fatalf("étape = %d, attendu 1", w.Step())
	}
	if w.Back() != EtapeIdentite {
		t.Error("Back ne descend pas sous l'étape 1")
	}
	saved := w.Identite()
	if saved.Prenom != "Claire" || saved.Nom != "Martin" {
		t.Errorf("valeurs de l'étape 1 perdues: %+v", saved)
	}
	if err := w.SubmitIdentite(saved); err != nil {
		t.Fatal(err)
	}
	if w.Contact().Email != "claire@exemple.fr" {
		t.Errorf("email conservé = %q", w.Contact().Email)
	}
}

func TestWizard_envoiFinal(t *testing.T) {
	var attempts int32
	srv, _ := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/settings":
			writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "data": models.PublicSettings{RegistrationEnabled: true}})
		case "/api/auth/register":
			var req models.RegisterRequest
			_ = json.NewDecoder(r.Body).Decode(&req)
			if req.Prenom != "Claire" || req.Email != "claire@exemple.fr" || req.MotDePasse != "motdepasse123" {
				writeError(w, http.StatusBadRequest, constants.CodeBadRequest, "accumulateur incomplet")
				return
			}
			if atomic.AddInt32(&attempts, 1) == 1 {
				writeError(w, http.StatusConflict, constants.CodeConflict, constants.ErrEmailTaken)
				return
			}
			writeJSON(w, http.StatusCreated, map[string]interface{}{
				"success": true,
				"data":    models.AuthResponse{Token: "nouveau-jeton", Utilisateur: models.Utilisateur{Email: req.Email}},
			})
		}
	})

	c := New(srv.URL, nil)
	w := NewWizard(c)
	ctx := context.Background()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	if err := w.SubmitIdentite(identite()); err != nil {
		t.Fatal(err)
	}
	if err := w.SubmitContact(contact()); err != nil {
		t.Fatal(err)
	}

	// Confirmation différente : bloqué côté client
	sec := securite()
	sec.Confirmation = "autre"
	if _, err := w.SubmitSecurite(ctx, sec); err == nil {
		t.Fatal("la confirmation différente devrait être refusée")
	}
	if atomic.LoadInt32(&attempts) != 0 {
		t.Error("aucun envoi ne doit partir avec une étape invalide")
	}

	// Échec serveur : message transmis, étape 3 conservée avec les valeurs
	_, err := w.SubmitSecurite(ctx, securite())
	if Message(err) != constants.ErrEmailTaken {
		t.Errorf("message = %q", Message(err))
	}
	if w.Step() != EtapeSecurite || w.Done() || w.Securite().MotDePasse != "motdepasse123" {
		t.Errorf("état après échec: étape=%d done=%t", w.Step(), w.Done())
	}

	auth, err := w.SubmitSecurite(ctx, securite())
	if err != nil {
		t.Fatalf("SubmitSecurite: %v", err)
	}
	if auth.Token != "nouveau-jeton" || c.Token() != "nouveau-jeton" || !w.Done() {
		t.Errorf("session après inscription: %+v, token client %q", auth, c.Token())
	}
}

func TestWizard_inscriptionsFermees(t *testing.T) {
	srv, _ := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "data": models.PublicSettings{RegistrationEnabled: false}})
	})
	if err := NewWizard(New(srv.URL, nil)).Start(context.Background()); err != ErrInscriptionsFermees {
		t.Errorf("err = %v, attendu ErrInscriptionsFermees", err)
	}
}
