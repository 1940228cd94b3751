package utils

import (
	"testing"

	"portail-citoyen-backend/models"
)

func TestGenerateToken(t *testing.T) {
	token, err := GenerateToken(12, "test@example.com", models.RoleCitoyen, "test-secret-key")
	if err != nil {
		t.Fatalf("GenerateToken() erreur = %v", err)
	}
	if token == "" {
		t.Error("GenerateToken() ne doit pas retourner une chaîne vide")
	}
}

func TestValidateToken(t *testing.T) {
	secret := "test-secret-key"

	token, err := GenerateToken(456, "valid@example.com", models.RoleModerateur, secret)
	if err != nil {
		t.Fatalf("GenerateToken() erreur = %v", err)
	}

	claims, err := ValidateToken(token, secret)
	if err != nil {
		t.Fatalf("ValidateToken() erreur = %v", err)
	}
	if claims.UserID != 456 {
		t.Errorf("UserID = %v, attendu 456", claims.UserID)
	}
	if claims.Email != "valid@example.com" {
		t.Errorf("Email = %v", claims.Email)
	}
	if claims.Role != models.RoleModerateur {
		t.Errorf("Role = %v, attendu MODERATEUR", claims.Role)
	}
}

func TestValidateTokenMauvaisSecret(t *testing.T) {
	token, _ := GenerateToken(1, "e@e.com", models.RoleCitoyen, "secret1")
	_, err := ValidateToken(token, "secret2")
	if err == nil {
		t.Error("ValidateToken() devrait échouer avec un mauvais secret")
	}
}

func TestValidateTokenInvalide(t *testing.T) {
	_, err := ValidateToken("invalid-token", "secret")
	if err == nil {
		t.Error("ValidateToken() devrait échouer avec un token invalide")
	}
}
