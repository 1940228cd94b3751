package utils

import (
	"testing"

	"portail-citoyen-backend/models"
)

func TestIsPhone(t *testing.T) {
	tests := []struct {
		name  string
		phone string
		want  bool
	}{
		{"mobile", "0612345678", true},
		{"avec espaces", "06 12 34 56 78", true},
		{"avec points", "06.12.34.56.78", true},
		{"international", "+33612345678", true},
		{"trop court", "061234", false},
		{"commence par 00", "0012345678", false},
		{"vide", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsPhone(tt.phone); got != tt.want {
				t.Errorf("IsPhone(%q) = %v, attendu %v", tt.phone, got, tt.want)
			}
		})
	}
}

func TestValidateStruct_identite(t *testing.T) {
	errs := ValidateStruct(models.InscriptionIdentite{Prenom: "", Nom: "Diallo"})
	if len(errs) != 1 {
		t.Fatalf("ValidateStruct() = %v, attendu une erreur", errs)
	}
	if errs[0].Champ != "prenom" {
		t.Errorf("Champ = %q, attendu le nom JSON prenom", errs[0].Champ)
	}
	if errs[0].Message != "Le champ prenom est requis" {
		t.Errorf("Message = %q", errs[0].Message)
	}

	if errs := ValidateStruct(models.InscriptionIdentite{Prenom: "Awa", Nom: "Diallo", Civilite: "MME"}); len(errs) != 0 {
		t.Errorf("identité valide refusée: %v", errs)
	}
}

func TestValidateStruct_securite(t *testing.T) {
	errs := ValidateStruct(models.InscriptionSecurite{
		MotDePasse:   "secret123",
		Confirmation: "secret124",
		AcceptCGU:    true,
	})
	if len(errs) != 1 || errs[0].Champ != "confirmation" {
		t.Fatalf("ValidateStruct() = %v", errs)
	}
	if errs[0].Message != "Les mots de passe ne correspondent pas" {
		t.Errorf("Message = %q", errs[0].Message)
	}

	errs = ValidateStruct(models.InscriptionSecurite{MotDePasse: "court", Confirmation: "court"})
	champs := map[string]bool{}
	for _, e := range errs {
		champs[e.Champ] = true
	}
	if !champs["motDePasse"] || !champs["acceptCgu"] {
		t.Errorf("erreurs attendues sur motDePasse et acceptCgu, obtenu %v", errs)
	}
}

func TestValidateStruct_telephone(t *testing.T) {
	errs := ValidateStruct(models.InscriptionContact{Email: "awa@example.com", Telephone: "123"})
	if len(errs) != 1 || errs[0].Champ != "telephone" {
		t.Fatalf("ValidateStruct() = %v", errs)
	}
	if errs[0].Message != "Format de téléphone invalide" {
		t.Errorf("Message = %q", errs[0].Message)
	}
}

func TestValidateStruct_dateRequise(t *testing.T) {
	errs := ValidateStruct(models.EvenementRequest{Titre: "Concert", Description: "d", Type: "CULTURE"})
	if len(errs) != 1 || errs[0].Champ != "dateDebut" {
		t.Errorf("ValidateStruct() = %v, attendu une erreur sur dateDebut", errs)
	}
}
