package handlers

import (
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"portail-citoyen-backend/constants"
	"portail-citoyen-backend/database"
	"portail-citoyen-backend/models"
	"portail-citoyen-backend/utils"
)

// maxExportRows borne la taille d'un export CSV
const maxExportRows = 10000

// LogsHandler expose les journaux d'activité et système à l'administration
type LogsHandler struct {
	activite database.Store[models.ActivityLog]
	systeme  database.Store[models.SystemLog]
}

// NewLogsHandler crée un nouveau LogsHandler
func NewLogsHandler(activite database.Store[models.ActivityLog], systeme database.Store[models.SystemLog]) *LogsHandler {
	return &LogsHandler{activite: activite, systeme: systeme}
}

// LogStats accompagne la liste des journaux
type LogStats struct {
	Total     int64            `json:"total"`
	ParNiveau map[string]int64 `json:"parNiveau,omitempty"`
	ParAction map[string]int64 `json:"parAction,omitempty"`
}

// List retourne une page de journaux filtrée
func (h *LogsHandler) List(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	filter, ok := h.filter(w, r)
	if !ok {
		return
	}
	page, limit := utils.ResolvePaging(r, 20, utils.MaxLimit)
	filter.Page, filter.Limit = page, limit

	var (
		items interface{}
		total int64
		stats LogStats
		err   error
	)
	switch r.URL.Query().Get("source") {
	case models.SourceSysteme:
		var logs []models.SystemLog
		logs, total, err = h.systeme.List(r.Context(), filter)
		items = nonNil(logs)
		if err == nil {
			stats.ParNiveau, err = h.systeme.CountBy(r.Context(), "niveau", filter)
		}
	default:
		var logs []models.ActivityLog
		logs, total, err = h.activite.List(r.Context(), filter)
		items = nonNil(logs)
		if err == nil {
			stats.ParAction, err = h.activite.CountBy(r.Context(), "action", filter)
		}
	}
	if err != nil {
		log.Printf("❌ Erreur lecture des journaux: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
		return
	}

	stats.Total = total
	utils.RespondList(w, items, utils.BuildPagination(page, limit, total), stats)
}

// Export télécharge les journaux filtrés au format CSV
func (h *LogsHandler) Export(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	if f := r.URL.Query().Get("format"); f != "" && f != "csv" {
		utils.RespondError(w, http.StatusBadRequest, "Format d'export non supporté: "+f)
		return
	}

	filter, ok := h.filter(w, r)
	if !ok {
		return
	}
	filter.Limit = maxExportRows

	source := r.URL.Query().Get("source")
	if source == "" {
		source = models.SourceActivite
	}
	header, rows, err := h.rows(r.Context(), source, filter)
	if err != nil {
		log.Printf("❌ Erreur export des journaux: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
		return
	}

	filename := fmt.Sprintf("journal_%s_%s.csv", source, time.Now().Format("20060102_150405"))
	w.Header().Set(constants.HeaderContentType, "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)

	// BOM pour l'ouverture directe dans un tableur
	_, _ = w.Write([]byte("\xEF\xBB\xBF"))
	cw := csv.NewWriter(w)
	cw.Comma = ';'
	_ = cw.Write(header)
	_ = cw.WriteAll(rows)
	if err := cw.Error(); err != nil {
		log.Printf("⚠️  Export CSV interrompu: %v", err)
	}
}

func (h *LogsHandler) rows(ctx context.Context, source string, filter database.ListFilter) ([]string, [][]string, error) {
	if source == models.SourceSysteme {
		logs, _, err := h.systeme.List(ctx, filter)
		if err != nil {
			return nil, nil, err
		}
		rows := make([][]string, 0, len(logs))
		for _, l := range logs {
			rows = append(rows, []string{formatDate(l.DateCreation), l.Niveau, l.Source, l.Message, l.Details})
		}
		return []string{"date", "niveau", "source", "message", "details"}, rows, nil
	}

	logs, _, err := h.activite.List(ctx, filter)
	if err != nil {
		return nil, nil, err
	}
	rows := make([][]string, 0, len(logs))
	for _, l := range logs {
		entiteID := ""
		if l.EntiteID != 0 {
			entiteID = strconv.FormatInt(l.EntiteID, 10)
		}
		rows = append(rows, []string{
			formatDate(l.DateCreation), strconv.FormatInt(l.UtilisateurID, 10), l.UtilisateurEmail,
			l.Action, l.Entite, entiteID, l.Details, l.IP,
		})
	}
	return []string{"date", "utilisateurId", "email", "action", "entite", "entiteId", "details", "ip"}, rows, nil
}

// filter construit le filtre commun à la liste et à l'export
func (h *LogsHandler) filter(w http.ResponseWriter, r *http.Request) (database.ListFilter, bool) {
	q := r.URL.Query()
	filter := database.ListFilter{
		Equals:    map[string]interface{}{},
		Search:    strings.TrimSpace(q.Get("search")),
		DateField: database.ChampDateCreation,
		Sort:      database.ChampDateCreation,
		SortDesc:  true,
	}

	switch q.Get("source") {
	case "", models.SourceActivite:
		filter.SearchFields = []string{"utilisateurEmail", "action", "entite", "details"}
		if a := q.Get("action"); a != "" {
			filter.Equals["action"] = a
		}
		if e := q.Get("entite"); e != "" {
			filter.Equals["entite"] = e
		}
		if u, ok := queryInt64(r, "utilisateurId"); ok {
			filter.Equals[database.ChampUtilisateurID] = u
		}
	case models.SourceSysteme:
		filter.SearchFields = []string{"message", "source", "details"}
		if n := q.Get("niveau"); n != "" {
			filter.Equals["niveau"] = strings.ToUpper(n)
		}
	default:
		utils.RespondError(w, http.StatusBadRequest, constants.ErrUnknownSource)
		return filter, false
	}

	depuis, ok := queryDate(r, "depuis", false)
	if !ok {
		utils.RespondValidation(w, []models.FieldError{{Champ: "depuis", Message: "Date invalide"}})
		return filter, false
	}
	jusqu, ok := queryDate(r, "jusqu", true)
	if !ok {
		utils.RespondValidation(w, []models.FieldError{{Champ: "jusqu", Message: "Date invalide"}})
		return filter, false
	}
	filter.Since, filter.Until = depuis, jusqu
	return filter, true
}

func formatDate(t time.Time) string {
	return t.In(models.ParisLocation()).Format("2006-01-02 15:04:05")
}
