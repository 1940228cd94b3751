package services

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics regroupe les métriques Prometheus du portail
type Metrics struct {
	requests    *prometheus.CounterVec
	durations   *prometheus.HistogramVec
	transitions *prometheus.CounterVec
	jobs        *prometheus.CounterVec
}

// NewMetrics crée et enregistre les métriques. Un registre nil désactive l'enregistrement.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portail_http_requests_total",
			Help: "Requêtes HTTP traitées, par route et code de statut.",
		}, []string{"method", "route", "code"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "portail_http_request_duration_seconds",
			Help:    "Durée de traitement des requêtes HTTP.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portail_transitions_total",
			Help: "Changements de statut appliqués, par entité et statut cible.",
		}, []string{"entite", "statut"}),
		jobs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portail_jobs_total",
			Help: "Exécutions des tâches planifiées, par tâche et résultat.",
		}, []string{"job", "resultat"}),
	}
	if reg != nil {
		reg.MustRegister(m.requests, m.durations, m.transitions, m.jobs)
	}
	return m
}

// ObserveRequest enregistre une requête HTTP
func (m *Metrics) ObserveRequest(method, route string, code int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	m.durations.WithLabelValues(method, route).Observe(duration.Seconds())
}

// Transition comptabilise un changement de statut appliqué
func (m *Metrics) Transition(entite, statut string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(entite, statut).Inc()
}

// Job comptabilise l'exécution d'une tâche planifiée
func (m *Metrics) Job(job string, err error) {
	if m == nil {
		return
	}
	resultat := "succes"
	if err != nil {
		resultat = "echec"
	}
	m.jobs.WithLabelValues(job, resultat).Inc()
}
