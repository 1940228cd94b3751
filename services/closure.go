package services

import (
	"context"
	"fmt"
	"time"

	"portail-citoyen-backend/database"
	"portail-citoyen-backend/lifecycle"
	"portail-citoyen-backend/models"
)

// ClosureItem est un enregistrement dont la clôture est attendue
type ClosureItem struct {
	Entite   string           `json:"entite"`
	ID       int64            `json:"id"`
	Titre    string           `json:"titre"`
	Statut   lifecycle.Status `json:"statut"`
	AuteurID int64            `json:"-"`
	Fin      time.Time        `json:"fin"`
}

// ClosureScanner liste les enregistrements d'une entité à clôturer
type ClosureScanner interface {
	Entite() string
	PendingClosure(ctx context.Context, now time.Time) ([]ClosureItem, error)
}

type closureScanner[T models.Record] struct {
	store database.Store[T]
	table lifecycle.Table
}

// NewClosureScanner crée le scanner d'une entité ; il applique lifecycle.NeedsClosure
func NewClosureScanner[T models.Record](store database.Store[T], table lifecycle.Table) ClosureScanner {
	return &closureScanner[T]{store: store, table: table}
}

func (s *closureScanner[T]) Entite() string { return s.table.Entite }

func (s *closureScanner[T]) PendingClosure(ctx context.Context, now time.Time) ([]ClosureItem, error) {
	if s.table.Cloture == "" {
		return nil, nil
	}

	terminaux := make([]interface{}, 0, len(s.table.Terminaux))
	for _, st := range s.table.Terminaux {
		terminaux = append(terminaux, st)
	}
	records, _, err := s.store.List(ctx, database.ListFilter{
		NotIn:     map[string][]interface{}{database.ChampStatut: terminaux},
		DateField: database.ChampDateDebut,
		Until:     &now,
		Sort:      database.ChampDateDebut,
	})
	if err != nil {
		return nil, fmt.Errorf("erreur lors de la recherche des %s à clôturer: %w", s.table.Entite, err)
	}

	items := make([]ClosureItem, 0)
	for _, rec := range records {
		debut, fin := rec.Periode()
		if !lifecycle.NeedsClosure(now, debut, fin, rec.GetStatut(), s.table) {
			continue
		}
		items = append(items, ClosureItem{
			Entite:   s.table.Entite,
			ID:       rec.GetID(),
			Titre:    rec.Libelle(),
			Statut:   rec.GetStatut(),
			AuteurID: rec.GetAuteurID(),
			Fin:      lifecycle.EndOf(debut, fin),
		})
	}
	return items, nil
}
