package middleware

import (
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"portail-citoyen-backend/models"
	"portail-citoyen-backend/services"

	"github.com/gorilla/mux"
)

// responseWriter wrapper pour capturer le code de statut
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{w, http.StatusOK}
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Unwrap expose le writer d'origine (http.ResponseController, websocket)
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// isCriticalError détermine si une erreur doit être notifiée sur Slack.
// Seules les erreurs serveur (5xx) le sont : les 403 du portail sont des refus
// de rôle attendus, pas des erreurs de configuration.
func isCriticalError(statusCode int) bool {
	return statusCode >= http.StatusInternalServerError
}

// routeLabel retourne le gabarit de route mux (ex. /api/admin/evenements/{id})
// pour borner la cardinalité des métriques
func routeLabel(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "autre"
}

// Logging enregistre les requêtes HTTP en erreur, alimente les métriques,
// journalise les 5xx en base et les notifie sur Slack
func Logging(slackService *services.SlackService, recorder *services.ActivityRecorder, metrics *services.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			rw := newResponseWriter(w)
			next.ServeHTTP(rw, r)

			duration := time.Since(start)
			statusCode := rw.statusCode
			metrics.ObserveRequest(r.Method, routeLabel(r), statusCode, duration)

			if statusCode < http.StatusBadRequest {
				return
			}

			log.Printf("⚠️ %s %s -> %d (%s)", r.Method, r.RequestURI, statusCode, duration)

			if !isCriticalError(statusCode) {
				return
			}

			message := fmt.Sprintf("%s %s -> %d", r.Method, r.RequestURI, statusCode)
			if recorder != nil {
				details := fmt.Sprintf("requestId=%s durée=%s", GetRequestID(r.Context()), duration)
				recorder.System(models.NiveauError, "http", message, details)
			}
			if slackService != nil {
				slackService.SendCriticalError(
					r.Method,
					r.RequestURI,
					strconv.Itoa(statusCode),
					http.StatusText(statusCode),
					r.Header.Get("Origin"),
					r.Header.Get("User-Agent"),
				)
			}
		})
	}
}
