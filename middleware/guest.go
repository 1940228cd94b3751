package middleware

import (
	"net/http"

	"portail-citoyen-backend/constants"
	"portail-citoyen-backend/utils"
)

// Guest vérifie que l'utilisateur n'est PAS connecté.
// Un token invalide ou expiré est ignoré (nouvelle connexion).
func Guest(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, ok := bearerToken(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			if _, err := utils.ValidateToken(tokenString, jwtSecret); err == nil {
				utils.RespondError(w, http.StatusForbidden, constants.ErrAlreadyLoggedIn)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
