package database

import (
	"context"
	"errors"
	"time"
)

// Erreurs renvoyées par les stores
var (
	ErrConflit     = errors.New("un enregistrement identique existe déjà")
	ErrIntrouvable = errors.New("enregistrement introuvable")
)

// ListFilter décrit une requête de liste paginée et filtrée
type ListFilter struct {
	Page  int
	Limit int // 0 = pas de limite

	Search       string
	SearchFields []string

	Equals map[string]interface{}
	In     map[string][]interface{}
	NotIn  map[string][]interface{}

	DateField string
	Since     *time.Time
	Until     *time.Time

	Sort     string
	SortDesc bool
}

// Store est le contrat de persistance commun à toutes les collections.
// Les recherches par identifiant retournent nil, nil quand rien n'est trouvé.
type Store[T any] interface {
	Name() string
	Create(ctx context.Context, doc *T) error
	FindByID(ctx context.Context, id int64) (*T, error)
	FindOne(ctx context.Context, equals map[string]interface{}) (*T, error)
	List(ctx context.Context, f ListFilter) ([]T, int64, error)
	Count(ctx context.Context, f ListFilter) (int64, error)
	CountBy(ctx context.Context, field string, f ListFilter) (map[string]int64, error)
	UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) (*T, error)
	// UpdateFieldsIf n'écrit que si le document porte encore les valeurs
	// attendues ; nil, nil sinon.
	UpdateFieldsIf(ctx context.Context, id int64, expected, fields map[string]interface{}) (*T, error)
	Increment(ctx context.Context, id int64, field string, delta int64) error
	Delete(ctx context.Context, id int64) (bool, error)
	DeleteWhere(ctx context.Context, f ListFilter) (int64, error)
}

// Noms des collections
const (
	CollectionUtilisateurs   = "utilisateurs"
	CollectionEvenements     = "evenements"
	CollectionActualites     = "actualites"
	CollectionArticles       = "articles"
	CollectionCampagnes      = "campagnes"
	CollectionProgrammes     = "programmes"
	CollectionReclamations   = "reclamations"
	CollectionEtablissements = "etablissements"
	CollectionCommunes       = "communes"
	CollectionParticipations = "participations"
	CollectionNotifications  = "notifications"
	CollectionActivite       = "journal_activite"
	CollectionSysteme        = "journal_systeme"
	CollectionParametres     = "parametres"
	CollectionSubscriptions  = "push_subscriptions"
	CollectionFCMTokens      = "fcm_tokens"
	CollectionCompteurs      = "compteurs"
)

const defaultTimeout = 5 * time.Second

func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, defaultTimeout)
}

func offset(f ListFilter) int64 {
	if f.Limit <= 0 || f.Page <= 1 {
		return 0
	}
	return int64((f.Page - 1) * f.Limit)
}
