package handlers

import (
	"net/http"
	"runtime"
	"time"

	"portail-citoyen-backend/utils"
)

var startTime = time.Now()

// HealthHandler gère les endpoints de santé
type HealthHandler struct {
	environment string
	driver      string
	ping        func() error
}

// NewHealthHandler crée un nouveau HealthHandler ; ping nil = pas de base externe
func NewHealthHandler(environment, driver string, ping func() error) *HealthHandler {
	return &HealthHandler{environment: environment, driver: driver, ping: ping}
}

// Health retourne l'état de santé du serveur avec métriques
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	uptime := time.Since(startTime).Round(time.Second).String()

	dbStatus := "ok"
	status := http.StatusOK
	if h.ping != nil {
		if err := h.ping(); err != nil {
			dbStatus = "error"
			status = http.StatusServiceUnavailable
		}
	}

	utils.RespondJSON(w, status, map[string]interface{}{
		"status":     dbStatus,
		"message":    "Le serveur fonctionne correctement",
		"env":        h.environment,
		"database":   h.driver,
		"db_status":  dbStatus,
		"uptime":     uptime,
		"go_version": runtime.Version(),
		"goroutines": runtime.NumGoroutine(),
	})
}
