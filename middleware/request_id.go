package middleware

import (
	"context"
	"net/http"

	"portail-citoyen-backend/constants"

	"github.com/google/uuid"
)

const requestIDKey contextKey = "requestId"

// RequestID propage l'en-tête X-Request-ID ou en génère un
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(constants.HeaderRequestID)
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		w.Header().Set(constants.HeaderRequestID, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

// GetRequestID retourne l'identifiant de la requête courante
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
