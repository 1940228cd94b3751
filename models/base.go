package models

import (
	"time"

	"portail-citoyen-backend/lifecycle"
)

// Base contient les champs communs à tous les documents persistés
type Base struct {
	ID               int64     `json:"id" bson:"_id"`
	DateCreation     time.Time `json:"dateCreation" bson:"dateCreation"`
	DateModification time.Time `json:"dateModification" bson:"dateModification"`
}

// GetID retourne l'identifiant numérique
func (b Base) GetID() int64 { return b.ID }

// CreeLe retourne la date de création
func (b Base) CreeLe() time.Time { return b.DateCreation }

// SetID affecte l'identifiant alloué par la séquence
func (b *Base) SetID(id int64) { b.ID = id }

// Touch met à jour les dates de création et de modification
func (b *Base) Touch(now time.Time) {
	if b.DateCreation.IsZero() {
		b.DateCreation = now
	}
	b.DateModification = now
}

// Document est implémenté par tout pointeur vers un modèle qui embarque Base
type Document interface {
	GetID() int64
	SetID(id int64)
	Touch(now time.Time)
}

// Record est un enregistrement porteur d'un statut (événement, actualité, ...)
type Record interface {
	GetID() int64
	GetStatut() lifecycle.Status
	GetAuteurID() int64
	Libelle() string
	// Periode retourne les bornes temporelles (début nul si l'entité n'en a pas)
	Periode() (time.Time, *time.Time)
}

// Badger est implémenté par les entités affichant un badge public calculé
type Badger interface {
	SetBadge(b *lifecycle.Badge)
}

// Publication regroupe le statut et les drapeaux de modération.
// Les drapeaux sont indépendants du statut.
type Publication struct {
	Statut       lifecycle.Status `json:"statut" bson:"statut"`
	IsValide     bool             `json:"isValide" bson:"isValide"`
	IsPublie     bool             `json:"isPublie" bson:"isPublie"`
	IsMisEnAvant bool             `json:"isMisEnAvant" bson:"isMisEnAvant"`
	MotifRejet   string           `json:"motifRejet,omitempty" bson:"motifRejet,omitempty"`
	AuteurID     int64            `json:"auteurId" bson:"auteurId"`
	NbVues       int64            `json:"nbVues" bson:"nbVues"`
}

// GetStatut retourne le statut persisté
func (p Publication) GetStatut() lifecycle.Status { return p.Statut }

// GetAuteurID retourne l'auteur de l'enregistrement
func (p Publication) GetAuteurID() int64 { return p.AuteurID }

// Cloture est le rapport renseigné au passage dans le statut de clôture
type Cloture struct {
	Rapport             string    `json:"rapport" bson:"rapport"`
	ParticipationReelle int       `json:"participationReelle" bson:"participationReelle"`
	RapportDocumentURL  string    `json:"rapportDocumentUrl,omitempty" bson:"rapportDocumentUrl,omitempty"`
	DateCloture         time.Time `json:"dateCloture" bson:"dateCloture"`
	ClotureParID        int64     `json:"clotureParId" bson:"clotureParId"`
}
