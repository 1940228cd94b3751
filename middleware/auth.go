package middleware

import (
	"context"
	"log"
	"net/http"
	"strings"

	"portail-citoyen-backend/constants"
	"portail-citoyen-backend/database"
	"portail-citoyen-backend/models"
	"portail-citoyen-backend/utils"
)

type contextKey string

const UserContextKey contextKey = "user"

// bearerToken extrait le token de l'en-tête Authorization "Bearer <token>"
func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// Auth vérifie le token JWT
func Auth(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") == "" {
				utils.RespondError(w, http.StatusUnauthorized, "Token d'authentification manquant")
				return
			}

			tokenString, ok := bearerToken(r)
			if !ok {
				utils.RespondError(w, http.StatusUnauthorized, "Format du token invalide")
				return
			}

			claims, err := utils.ValidateToken(tokenString, jwtSecret)
			if err != nil {
				utils.RespondError(w, http.StatusUnauthorized, "Token invalide ou expiré")
				return
			}

			ctx := context.WithValue(r.Context(), UserContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth ajoute l'utilisateur au contexte si un token valide est fourni,
// sans jamais refuser la requête (listes publiques, navigation)
func OptionalAuth(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if tokenString, ok := bearerToken(r); ok {
				if claims, err := utils.ValidateToken(tokenString, jwtSecret); err == nil {
					r = r.WithContext(context.WithValue(r.Context(), UserContextKey, claims))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole limite l'accès aux rôles indiqués. SUPER_ADMIN passe toujours.
// Doit être placé après Auth.
func RequireRole(roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := GetUserFromContext(r.Context())
			if claims == nil {
				utils.RespondError(w, http.StatusUnauthorized, constants.ErrNotAuthenticated)
				return
			}

			if !HasRole(claims.Role, roles...) {
				utils.RespondError(w, http.StatusForbidden, constants.ErrForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RefreshUser relit le compte derrière le token : un compte supprimé ou
// désactivé est refusé, et le rôle courant remplace celui du token.
// Doit être placé après Auth.
func RefreshUser(users database.Store[models.Utilisateur]) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := GetUserFromContext(r.Context())
			if claims == nil {
				utils.RespondError(w, http.StatusUnauthorized, constants.ErrNotAuthenticated)
				return
			}

			user, err := users.FindByID(r.Context(), claims.UserID)
			if err != nil {
				log.Printf("❌ Erreur lecture utilisateur #%d: %v", claims.UserID, err)
				utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
				return
			}
			if user == nil {
				utils.RespondError(w, http.StatusUnauthorized, constants.ErrUserNotFound)
				return
			}
			if !user.Actif {
				utils.RespondError(w, http.StatusForbidden, constants.ErrAccountDisabled)
				return
			}

			fresh := *claims
			fresh.Role = user.Role
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), &fresh)))
		})
	}
}

// HasRole indique si le rôle fait partie des rôles autorisés
func HasRole(role models.Role, roles ...models.Role) bool {
	if role == models.RoleSuperAdmin {
		return true
	}
	for _, allowed := range roles {
		if role == allowed {
			return true
		}
	}
	return false
}

// GetUserFromContext récupère les informations de l'utilisateur depuis le contexte
func GetUserFromContext(ctx context.Context) *utils.Claims {
	claims, ok := ctx.Value(UserContextKey).(*utils.Claims)
	if !ok {
		return nil
	}
	return claims
}

// WithUser place des claims dans le contexte (utilisé par le websocket et les tests)
func WithUser(ctx context.Context, claims *utils.Claims) context.Context {
	return context.WithValue(ctx, UserContextKey, claims)
}
