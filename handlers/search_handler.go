package handlers

import (
	"log"
	"net/http"
	"sort"
	"strings"
	"unicode/utf8"

	"portail-citoyen-backend/constants"
	"portail-citoyen-backend/models"
	"portail-citoyen-backend/utils"

	"golang.org/x/sync/errgroup"
)

// Bornes de la recherche globale
const (
	MinSearchLength = 2
	MaxSuggestions  = 8
	// MaxSearchWindow borne page*limit : au-delà, la page est vide mais le
	// total reste exact
	MaxSearchWindow = 1000
)

// SearchHandler gère la recherche globale sur les contenus publics
type SearchHandler struct {
	sources []Searcher
}

// NewSearchHandler crée un SearchHandler sur les sources publiques
func NewSearchHandler(sources ...Searcher) *SearchHandler {
	return &SearchHandler{sources: sources}
}

// PublicSearchers retient les ressources exposées au public
func PublicSearchers(resources []Resource, public ...string) []Searcher {
	keep := make(map[string]bool, len(public))
	for _, p := range public {
		keep[p] = true
	}
	out := make([]Searcher, 0, len(public))
	for _, r := range resources {
		if keep[r.Entite()] {
			out = append(out, r)
		}
	}
	return out
}

// Search interroge toutes les sources (ou celle de ?type=) et fusionne les résultats
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	q, ok := h.query(w, r)
	if !ok {
		return
	}
	sources, ok := h.selectSources(w, r)
	if !ok {
		return
	}

	page, limit := utils.ResolvePaging(r, utils.DefaultLimit, utils.MaxLimit)
	// Chaque source fournit ses page*limit premiers résultats : la fusion
	// triée contient alors toute la page demandée
	window := MaxSearchWindow
	if page <= MaxSearchWindow/limit {
		window = page * limit
	}

	results, total, err := h.collect(r, sources, q, window)
	if err != nil {
		log.Printf("❌ Erreur recherche %q: %v", q, err)
		utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
		return
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Date.After(results[j].Date)
	})

	start := (page - 1) * limit
	if start > len(results) {
		start = len(results)
	}
	end := start + limit
	if end > len(results) {
		end = len(results)
	}

	utils.RespondList(w, results[start:end], utils.BuildPagination(page, limit, total), nil)
}

// Suggestions retourne au plus MaxSuggestions titres pour l'autocomplétion
func (h *SearchHandler) Suggestions(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	q, ok := h.query(w, r)
	if !ok {
		return
	}

	results, _, err := h.collect(r, h.sources, q, MaxSuggestions)
	if err != nil {
		log.Printf("❌ Erreur suggestions %q: %v", q, err)
		utils.RespondError(w, http.StatusInternalServerError, constants.ErrServerError)
		return
	}

	// Les titres qui commencent par la saisie passent devant
	lower := strings.ToLower(q)
	sort.SliceStable(results, func(i, j int) bool {
		pi := strings.HasPrefix(strings.ToLower(results[i].Titre), lower)
		pj := strings.HasPrefix(strings.ToLower(results[j].Titre), lower)
		if pi != pj {
			return pi
		}
		return results[i].Date.After(results[j].Date)
	})

	suggestions := make([]models.Suggestion, 0, MaxSuggestions)
	for _, res := range results {
		if len(suggestions) == MaxSuggestions {
			break
		}
		suggestions = append(suggestions, models.Suggestion{Type: res.Type, ID: res.ID, Titre: res.Titre})
	}
	utils.RespondSuccess(w, "", suggestions)
}

func (h *SearchHandler) query(w http.ResponseWriter, r *http.Request) (string, bool) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if utf8.RuneCountInString(q) < MinSearchLength {
		utils.RespondError(w, http.StatusBadRequest, constants.ErrSearchTooShort)
		return "", false
	}
	return q, true
}

func (h *SearchHandler) selectSources(w http.ResponseWriter, r *http.Request) ([]Searcher, bool) {
	typ := r.URL.Query().Get("type")
	if typ == "" {
		return h.sources, true
	}
	for _, s := range h.sources {
		if s.Entite() == typ {
			return []Searcher{s}, true
		}
	}
	utils.RespondError(w, http.StatusBadRequest, "Type de contenu inconnu: "+typ)
	return nil, false
}

// collect interroge les sources en parallèle et additionne leurs totaux
func (h *SearchHandler) collect(r *http.Request, sources []Searcher, q string, limit int) ([]models.SearchResult, int64, error) {
	parts := make([][]models.SearchResult, len(sources))
	totals := make([]int64, len(sources))
	g, ctx := errgroup.WithContext(r.Context())
	for i, s := range sources {
		i, s := i, s
		g.Go(func() error {
			res, n, err := s.Search(ctx, q, limit)
			if err != nil {
				return err
			}
			parts[i], totals[i] = res, n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	results := make([]models.SearchResult, 0)
	var total int64
	for i, p := range parts {
		results = append(results, p...)
		total += totals[i]
	}
	return results, total, nil
}
