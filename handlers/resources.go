package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"portail-citoyen-backend/database"
	"portail-citoyen-backend/lifecycle"
	"portail-citoyen-backend/models"
	"portail-citoyen-backend/services"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// Resource est une entité à cycle de vie montée sur le routeur
type Resource interface {
	Entite() string
	RegisterAdminRoutes(admin *mux.Router)
	RegisterPublicRoutes(api *mux.Router, auth, views func(http.Handler) http.Handler)
	Scanner() services.ClosureScanner
	Searcher
}

// Searcher est une source de la recherche globale. Search retourne les limit
// premiers résultats (du plus récent au plus ancien) et le total exact.
type Searcher interface {
	Entite() string
	Search(ctx context.Context, q string, limit int) ([]models.SearchResult, int64, error)
}

var (
	rolesContenus     = []models.Role{models.RoleAgent, models.RoleModerateur, models.RoleAdmin}
	rolesModeration   = []models.Role{models.RoleModerateur, models.RoleAdmin}
	rolesReclamations = []models.Role{models.RoleAgent, models.RoleAdmin}
)

// NewResources crée les handlers des six entités à cycle de vie
func NewResources(stores *database.Stores, deps *Deps) []Resource {
	evenements := NewResourceHandler[models.Evenement, models.EvenementRequest, models.EvenementPatch](ResourceConfig{
		Table:         lifecycle.Evenements,
		Roles:         rolesContenus,
		SearchFields:  []string{"titre", "description", "lieu"},
		Filters:       []string{"type", "communeId", "etablissementId"},
		Public:        true,
		PublicSort:    database.ChampDateDebut,
		Flags:         true,
		Participation: true,
	}, stores.Evenements, stores.Participations, deps)

	actualites := NewResourceHandler[models.Actualite, models.ActualiteRequest, models.ActualitePatch](ResourceConfig{
		Table:          lifecycle.Actualites,
		Roles:          rolesContenus,
		SearchFields:   []string{"titre", "resume", "contenu"},
		Filters:        []string{"categorie", "communeId"},
		Public:         true,
		PublicSort:     database.ChampDateCreation,
		PublicSortDesc: true,
		Flags:          true,
	}, stores.Actualites, stores.Participations, deps)

	articles := NewResourceHandler[models.Article, models.ArticleRequest, models.ArticlePatch](ResourceConfig{
		Table:          lifecycle.Articles,
		Roles:          rolesModeration,
		SearchFields:   []string{"titre", "contenu"},
		Filters:        []string{"categorie"},
		Public:         true,
		PublicSort:     database.ChampDateCreation,
		PublicSortDesc: true,
		Flags:          true,
	}, stores.Articles, stores.Participations, deps)

	campagnes := NewResourceHandler[models.Campagne, models.CampagneRequest, models.CampagnePatch](ResourceConfig{
		Table:         lifecycle.Campagnes,
		Roles:         rolesContenus,
		SearchFields:  []string{"titre", "description"},
		Filters:       []string{"type", "communeId"},
		Public:        true,
		PublicSort:    database.ChampDateDebut,
		Flags:         true,
		Participation: true,
	}, stores.Campagnes, stores.Participations, deps)

	programmes := NewResourceHandler[models.ProgrammeActivite, models.ProgrammeRequest, models.ProgrammePatch](ResourceConfig{
		Table:        lifecycle.Programmes,
		Roles:        rolesContenus,
		SearchFields: []string{"titre", "description"},
		Filters:      []string{"type", "etablissementId"},
		Flags:        true,
	}, stores.Programmes, stores.Participations, deps)

	reclamations := NewResourceHandler[models.Reclamation, models.ReclamationRequest, models.ReclamationPatch](ResourceConfig{
		Table:        lifecycle.Reclamations,
		Roles:        rolesReclamations,
		SearchFields: []string{"numero", "objet", "nomDeclarant", "emailDeclarant"},
		Filters:      []string{"categorie", "communeId", "agentId"},
	}, stores.Reclamations, stores.Participations, deps).
		WithPrepare(func(_ context.Context, rec *models.Reclamation) error {
			rec.Numero = NumeroReclamation(deps.now().Year())
			return nil
		}).
		WithAuthorLink(func(rec models.Reclamation) string {
			return "/reclamations/suivi/" + rec.Numero
		})

	return []Resource{evenements, actualites, articles, campagnes, programmes, reclamations}
}

// NumeroReclamation génère un numéro de suivi lisible (REC-2026-1A2B3C4D)
func NumeroReclamation(year int) string {
	id := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return fmt.Sprintf("REC-%d-%s", year, id[:8])
}

// Scanners retourne les scanners de clôture des ressources
func Scanners(resources []Resource) []services.ClosureScanner {
	scanners := make([]services.ClosureScanner, 0, len(resources))
	for _, r := range resources {
		scanners = append(scanners, r.Scanner())
	}
	return scanners
}
