package models

import (
	"strings"
	"time"

	"portail-citoyen-backend/lifecycle"
)

// Statuer permet de fixer le statut initial d'un enregistrement créé
type Statuer interface {
	SetStatut(s lifecycle.Status)
}

// SetStatut fixe le statut
func (p *Publication) SetStatut(s lifecycle.Status) { p.Statut = s }

// Creator est une requête de création validée, transformable en document
type Creator[T any] interface {
	StatutDemande() lifecycle.Status
	Build(auteurID int64) (*T, []FieldError)
}

// Patcher est une requête de modification partielle du contenu
type Patcher interface {
	Fields() (map[string]interface{}, []FieldError)
}

// Evenement représente un événement municipal
type Evenement struct {
	Base            `bson:",inline"`
	Publication     `bson:",inline"`
	Titre           string           `json:"titre" bson:"titre"`
	Description     string           `json:"description" bson:"description"`
	Type            string           `json:"type" bson:"type"`
	Lieu            string           `json:"lieu" bson:"lieu"`
	CommuneID       int64            `json:"communeId,omitempty" bson:"communeId,omitempty"`
	EtablissementID int64            `json:"etablissementId,omitempty" bson:"etablissementId,omitempty"`
	DateDebut       time.Time        `json:"dateDebut" bson:"dateDebut"`
	DateFin         *time.Time       `json:"dateFin,omitempty" bson:"dateFin,omitempty"`
	ImageURL        string           `json:"imageUrl,omitempty" bson:"imageUrl,omitempty"`
	Capacite        int              `json:"capacite" bson:"capacite"`
	NbParticipants  int64            `json:"nbParticipants" bson:"nbParticipants"`
	Cloture         *Cloture         `json:"cloture,omitempty" bson:"cloture,omitempty"`
	Badge           *lifecycle.Badge `json:"badge,omitempty" bson:"-"`
}

func (e Evenement) Libelle() string { return e.Titre }
func (e Evenement) Periode() (time.Time, *time.Time) { return e.DateDebut, e.DateFin }
func (e *Evenement) SetBadge(b *lifecycle.Badge) { e.Badge = b }

// Actualite représente une actualité de la commune
type Actualite struct {
	Base            `bson:",inline"`
	Publication     `bson:",inline"`
	Titre           string     `json:"titre" bson:"titre"`
	Resume          string     `json:"resume" bson:"resume"`
	Contenu         string     `json:"contenu" bson:"contenu"`
	Categorie       string     `json:"categorie" bson:"categorie"`
	CommuneID       int64      `json:"communeId,omitempty" bson:"communeId,omitempty"`
	ImageURL        string     `json:"imageUrl,omitempty" bson:"imageUrl,omitempty"`
	DatePublication *time.Time `json:"datePublication,omitempty" bson:"datePublication,omitempty"`
}

func (a Actualite) Libelle() string { return a.Titre }
func (a Actualite) Periode() (time.Time, *time.Time) { return time.Time{}, nil }

// Article représente un article proposé par un contributeur et soumis à modération
type Article struct {
	Base        `bson:",inline"`
	Publication `bson:",inline"`
	Titre       string   `json:"titre" bson:"titre"`
	Contenu     string   `json:"contenu" bson:"contenu"`
	Categorie   string   `json:"categorie" bson:"categorie"`
	Tags        []string `json:"tags,omitempty" bson:"tags,omitempty"`
	ImageURL    string   `json:"imageUrl,omitempty" bson:"imageUrl,omitempty"`
}

func (a Article) Libelle() string { return a.Titre }
func (a Article) Periode() (time.Time, *time.Time) { return time.Time{}, nil }

// Campagne représente une campagne citoyenne (collecte, sensibilisation, ...)
type Campagne struct {
	Base                 `bson:",inline"`
	Publication          `bson:",inline"`
	Titre                string           `json:"titre" bson:"titre"`
	Description          string           `json:"description" bson:"description"`
	Type                 string           `json:"type" bson:"type"`
	CommuneID            int64            `json:"communeId,omitempty" bson:"communeId,omitempty"`
	DateDebut            time.Time        `json:"dateDebut" bson:"dateDebut"`
	DateFin              *time.Time       `json:"dateFin,omitempty" bson:"dateFin,omitempty"`
	ObjectifParticipants int              `json:"objectifParticipants" bson:"objectifParticipants"`
	NbParticipants       int64            `json:"nbParticipants" bson:"nbParticipants"`
	ImageURL             string           `json:"imageUrl,omitempty" bson:"imageUrl,omitempty"`
	Badge                *lifecycle.Badge `json:"badge,omitempty" bson:"-"`
}

func (c Campagne) Libelle() string { return c.Titre }
func (c Campagne) Periode() (time.Time, *time.Time) { return c.DateDebut, c.DateFin }
func (c *Campagne) SetBadge(b *lifecycle.Badge) { c.Badge = b }

// ProgrammeActivite représente un programme d'activités proposé par un établissement
type ProgrammeActivite struct {
	Base            `bson:",inline"`
	Publication     `bson:",inline"`
	Titre           string     `json:"titre" bson:"titre"`
	Description     string     `json:"description" bson:"description"`
	Type            string     `json:"type" bson:"type"`
	EtablissementID int64      `json:"etablissementId" bson:"etablissementId"`
	Public          string     `json:"public,omitempty" bson:"public,omitempty"`
	DateDebut       time.Time  `json:"dateDebut" bson:"dateDebut"`
	DateFin         *time.Time `json:"dateFin,omitempty" bson:"dateFin,omitempty"`
	Budget          float64    `json:"budget" bson:"budget"`
	Cloture         *Cloture   `json:"cloture,omitempty" bson:"cloture,omitempty"`
}

func (p ProgrammeActivite) Libelle() string { return p.Titre }
func (p ProgrammeActivite) Periode() (time.Time, *time.Time) { return p.DateDebut, p.DateFin }

// Reclamation représente une réclamation déposée par un citoyen
type Reclamation struct {
	Base           `bson:",inline"`
	Numero         string           `json:"numero" bson:"numero"`
	Statut         lifecycle.Status `json:"statut" bson:"statut"`
	Objet          string           `json:"objet" bson:"objet"`
	Description    string           `json:"description" bson:"description"`
	Categorie      string           `json:"categorie" bson:"categorie"`
	NomDeclarant   string           `json:"nomDeclarant" bson:"nomDeclarant"`
	EmailDeclarant string           `json:"emailDeclarant" bson:"emailDeclarant"`
	Telephone      string           `json:"telephone,omitempty" bson:"telephone,omitempty"`
	CommuneID      int64            `json:"communeId,omitempty" bson:"communeId,omitempty"`
	Adresse        string           `json:"adresse,omitempty" bson:"adresse,omitempty"`
	Reponse        string           `json:"reponse,omitempty" bson:"reponse,omitempty"`
	AgentID        int64            `json:"agentId,omitempty" bson:"agentId,omitempty"`
	AuteurID       int64            `json:"auteurId,omitempty" bson:"auteurId,omitempty"`
}

func (r Reclamation) GetStatut() lifecycle.Status { return r.Statut }
func (r Reclamation) GetAuteurID() int64 { return r.AuteurID }
func (r Reclamation) Libelle() string { return r.Numero + " - " + r.Objet }
func (r Reclamation) Periode() (time.Time, *time.Time) { return time.Time{}, nil }
func (r *Reclamation) SetStatut(s lifecycle.Status) { r.Statut = s }

// ReclamationSuivi est la vue publique d'une réclamation (sans données personnelles)
type ReclamationSuivi struct {
	Numero           string           `json:"numero"`
	Objet            string           `json:"objet"`
	Categorie        string           `json:"categorie"`
	Statut           lifecycle.Status `json:"statut"`
	Style            lifecycle.Style  `json:"style"`
	Reponse          string           `json:"reponse,omitempty"`
	DateCreation     time.Time        `json:"dateCreation"`
	DateModification time.Time        `json:"dateModification"`
}

// Catégories de réclamation acceptées
const CategoriesReclamation = "VOIRIE PROPRETE ECLAIRAGE ESPACES_VERTS BRUIT AUTRE"

// ---- Requêtes de création ----

// EvenementRequest représente la requête de création d'un événement
type EvenementRequest struct {
	Titre           string           `json:"titre" validate:"required,min=3,max=200"`
	Description     string           `json:"description" validate:"required"`
	Type            string           `json:"type" validate:"required,max=50"`
	Lieu            string           `json:"lieu" validate:"omitempty,max=200"`
	CommuneID       int64            `json:"communeId" validate:"omitempty,gt=0"`
	EtablissementID int64            `json:"etablissementId" validate:"omitempty,gt=0"`
	DateDebut       FlexibleTime     `json:"dateDebut" validate:"required"`
	DateFin         *FlexibleTime    `json:"dateFin"`
	ImageURL        string           `json:"imageUrl" validate:"omitempty,url"`
	Capacite        int              `json:"capacite" validate:"gte=0"`
	Statut          lifecycle.Status `json:"statut"`
}

func (r EvenementRequest) StatutDemande() lifecycle.Status { return r.Statut }

// Build construit l'événement
func (r EvenementRequest) Build(auteurID int64) (*Evenement, []FieldError) {
	fin, errs := checkPeriode(r.DateDebut, r.DateFin)
	if len(errs) > 0 {
		return nil, errs
	}
	return &Evenement{
		Publication:     Publication{AuteurID: auteurID},
		Titre:           strings.TrimSpace(r.Titre),
		Description:     r.Description,
		Type:            r.Type,
		Lieu:            r.Lieu,
		CommuneID:       r.CommuneID,
		EtablissementID: r.EtablissementID,
		DateDebut:       r.DateDebut.Time.UTC(),
		DateFin:         fin,
		ImageURL:        r.ImageURL,
		Capacite:        r.Capacite,
	}, nil
}

// ActualiteRequest représente la requête de création d'une actualité
type ActualiteRequest struct {
	Titre     string           `json:"titre" validate:"required,min=3,max=200"`
	Resume    string           `json:"resume" validate:"omitempty,max=500"`
	Contenu   string           `json:"contenu" validate:"required"`
	Categorie string           `json:"categorie" validate:"required,max=50"`
	CommuneID int64            `json:"communeId" validate:"omitempty,gt=0"`
	ImageURL  string           `json:"imageUrl" validate:"omitempty,url"`
	Statut    lifecycle.Status `json:"statut"`
}

func (r ActualiteRequest) StatutDemande() lifecycle.Status { return r.Statut }

// Build construit l'actualité
func (r ActualiteRequest) Build(auteurID int64) (*Actualite, []FieldError) {
	return &Actualite{
		Publication: Publication{AuteurID: auteurID},
		Titre:       strings.TrimSpace(r.Titre),
		Resume:      r.Resume,
		Contenu:     r.Contenu,
		Categorie:   r.Categorie,
		CommuneID:   r.CommuneID,
		ImageURL:    r.ImageURL,
	}, nil
}

// ArticleRequest représente la requête de création d'un article
type ArticleRequest struct {
	Titre     string           `json:"titre" validate:"required,min=3,max=200"`
	Contenu   string           `json:"contenu" validate:"required,min=20"`
	Categorie string           `json:"categorie" validate:"required,max=50"`
	Tags      []string         `json:"tags" validate:"omitempty,max=10,dive,max=30"`
	ImageURL  string           `json:"imageUrl" validate:"omitempty,url"`
	Statut    lifecycle.Status `json:"statut"`
}

func (r ArticleRequest) StatutDemande() lifecycle.Status { return r.Statut }

// Build construit l'article
func (r ArticleRequest) Build(auteurID int64) (*Article, []FieldError) {
	return &Article{
		Publication: Publication{AuteurID: auteurID},
		Titre:       strings.TrimSpace(r.Titre),
		Contenu:     r.Contenu,
		Categorie:   r.Categorie,
		Tags:        r.Tags,
		ImageURL:    r.ImageURL,
	}, nil
}

// CampagneRequest représente la requête de création d'une campagne
type CampagneRequest struct {
	Titre                string           `json:"titre" validate:"required,min=3,max=200"`
	Description          string           `json:"description" validate:"required"`
	Type                 string           `json:"type" validate:"required,max=50"`
	CommuneID            int64            `json:"communeId" validate:"omitempty,gt=0"`
	DateDebut            FlexibleTime     `json:"dateDebut" validate:"required"`
	DateFin              *FlexibleTime    `json:"dateFin"`
	ObjectifParticipants int              `json:"objectifParticipants" validate:"gte=0"`
	ImageURL             string           `json:"imageUrl" validate:"omitempty,url"`
	Statut               lifecycle.Status `json:"statut"`
}

func (r CampagneRequest) StatutDemande() lifecycle.Status { return r.Statut }

// Build construit la campagne
func (r CampagneRequest) Build(auteurID int64) (*Campagne, []FieldError) {
	fin, errs := checkPeriode(r.DateDebut, r.DateFin)
	if len(errs) > 0 {
		return nil, errs
	}
	return &Campagne{
		Publication:          Publication{AuteurID: auteurID},
		Titre:                strings.TrimSpace(r.Titre),
		Description:          r.Description,
		Type:                 r.Type,
		CommuneID:            r.CommuneID,
		DateDebut:            r.DateDebut.Time.UTC(),
		DateFin:              fin,
		ObjectifParticipants: r.ObjectifParticipants,
		ImageURL:             r.ImageURL,
	}, nil
}

// ProgrammeRequest représente la requête de création d'un programme d'activités
type ProgrammeRequest struct {
	Titre           string           `json:"titre" validate:"required,min=3,max=200"`
	Description     string           `json:"description" validate:"required"`
	Type            string           `json:"type" validate:"required,max=50"`
	EtablissementID int64            `json:"etablissementId" validate:"required,gt=0"`
	Public          string           `json:"public" validate:"omitempty,max=100"`
	DateDebut       FlexibleTime     `json:"dateDebut" validate:"required"`
	DateFin         *FlexibleTime    `json:"dateFin"`
	Budget          float64          `json:"budget" validate:"gte=0"`
	Statut          lifecycle.Status `json:"statut"`
}

func (r ProgrammeRequest) StatutDemande() lifecycle.Status { return r.Statut }

// Build construit le programme
func (r ProgrammeRequest) Build(auteurID int64) (*ProgrammeActivite, []FieldError) {
	fin, errs := checkPeriode(r.DateDebut, r.DateFin)
	if len(errs) > 0 {
		return nil, errs
	}
	return &ProgrammeActivite{
		Publication:     Publication{AuteurID: auteurID},
		Titre:           strings.TrimSpace(r.Titre),
		Description:     r.Description,
		Type:            r.Type,
		EtablissementID: r.EtablissementID,
		Public:          r.Public,
		DateDebut:       r.DateDebut.Time.UTC(),
		DateFin:         fin,
		Budget:          r.Budget,
	}, nil
}

// ReclamationRequest représente le dépôt d'une réclamation
type ReclamationRequest struct {
	Objet          string `json:"objet" validate:"required,min=5,max=200"`
	Description    string `json:"description" validate:"required,min=10"`
	Categorie      string `json:"categorie" validate:"required,oneof=VOIRIE PROPRETE ECLAIRAGE ESPACES_VERTS BRUIT AUTRE"`
	NomDeclarant   string `json:"nomDeclarant" validate:"required,max=100"`
	EmailDeclarant string `json:"emailDeclarant" validate:"required,email"`
	Telephone      string `json:"telephone" validate:"omitempty,telephone"`
	CommuneID      int64  `json:"communeId" validate:"omitempty,gt=0"`
	Adresse        string `json:"adresse" validate:"omitempty,max=300"`
}

func (r ReclamationRequest) StatutDemande() lifecycle.Status { return "" }

// Build construit la réclamation (le numéro est attribué par le handler)
func (r ReclamationRequest) Build(auteurID int64) (*Reclamation, []FieldError) {
	return &Reclamation{
		Objet:          strings.TrimSpace(r.Objet),
		Description:    r.Description,
		Categorie:      r.Categorie,
		NomDeclarant:   r.NomDeclarant,
		EmailDeclarant: strings.ToLower(strings.TrimSpace(r.EmailDeclarant)),
		Telephone:      r.Telephone,
		CommuneID:      r.CommuneID,
		Adresse:        r.Adresse,
		AuteurID:       auteurID,
	}, nil
}

// ---- Requêtes de modification ----

// EvenementPatch modifie le contenu d'un événement
type EvenementPatch struct {
	Titre           *string       `json:"titre" validate:"omitempty,min=3,max=200"`
	Description     *string       `json:"description" validate:"omitempty,min=1"`
	Type            *string       `json:"type" validate:"omitempty,max=50"`
	Lieu            *string       `json:"lieu" validate:"omitempty,max=200"`
	CommuneID       *int64        `json:"communeId" validate:"omitempty,gte=0"`
	EtablissementID *int64        `json:"etablissementId" validate:"omitempty,gte=0"`
	DateDebut       *FlexibleTime `json:"dateDebut"`
	DateFin         *FlexibleTime `json:"dateFin"`
	ImageURL        *string       `json:"imageUrl" validate:"omitempty,url"`
	Capacite        *int          `json:"capacite" validate:"omitempty,gte=0"`
}

// Fields retourne les champs à mettre à jour
func (p EvenementPatch) Fields() (map[string]interface{}, []FieldError) {
	f := map[string]interface{}{}
	setString(f, "titre", p.Titre)
	setString(f, "description", p.Description)
	setString(f, "type", p.Type)
	setString(f, "lieu", p.Lieu)
	setInt64(f, "communeId", p.CommuneID)
	setInt64(f, "etablissementId", p.EtablissementID)
	setString(f, "imageUrl", p.ImageURL)
	if p.Capacite != nil {
		f["capacite"] = *p.Capacite
	}
	if errs := setPeriode(f, p.DateDebut, p.DateFin); len(errs) > 0 {
		return nil, errs
	}
	return f, nil
}

// ActualitePatch modifie le contenu d'une actualité
type ActualitePatch struct {
	Titre     *string `json:"titre" validate:"omitempty,min=3,max=200"`
	Resume    *string `json:"resume" validate:"omitempty,max=500"`
	Contenu   *string `json:"contenu" validate:"omitempty,min=1"`
	Categorie *string `json:"categorie" validate:"omitempty,max=50"`
	CommuneID *int64  `json:"communeId" validate:"omitempty,gte=0"`
	ImageURL  *string `json:"imageUrl" validate:"omitempty,url"`
}

// Fields retourne les champs à mettre à jour
func (p ActualitePatch) Fields() (map[string]interface{}, []FieldError) {
	f := map[string]interface{}{}
	setString(f, "titre", p.Titre)
	setString(f, "resume", p.Resume)
	setString(f, "contenu", p.Contenu)
	setString(f, "categorie", p.Categorie)
	setInt64(f, "communeId", p.CommuneID)
	setString(f, "imageUrl", p.ImageURL)
	return f, nil
}

// ArticlePatch modifie le contenu d'un article
type ArticlePatch struct {
	Titre     *string  `json:"titre" validate:"omitempty,min=3,max=200"`
	Contenu   *string  `json:"contenu" validate:"omitempty,min=20"`
	Categorie *string  `json:"categorie" validate:"omitempty,max=50"`
	Tags      []string `json:"tags" validate:"omitempty,max=10,dive,max=30"`
	ImageURL  *string  `json:"imageUrl" validate:"omitempty,url"`
}

// Fields retourne les champs à mettre à jour
func (p ArticlePatch) Fields() (map[string]interface{}, []FieldError) {
	f := map[string]interface{}{}
	setString(f, "titre", p.Titre)
	setString(f, "contenu", p.Contenu)
	setString(f, "categorie", p.Categorie)
	setString(f, "imageUrl", p.ImageURL)
	if p.Tags != nil {
		f["tags"] = p.Tags
	}
	return f, nil
}

// CampagnePatch modifie le contenu d'une campagne
type CampagnePatch struct {
	Titre                *string       `json:"titre" validate:"omitempty,min=3,max=200"`
	Description          *string       `json:"description" validate:"omitempty,min=1"`
	Type                 *string       `json:"type" validate:"omitempty,max=50"`
	CommuneID            *int64        `json:"communeId" validate:"omitempty,gte=0"`
	DateDebut            *FlexibleTime `json:"dateDebut"`
	DateFin              *FlexibleTime `json:"dateFin"`
	ObjectifParticipants *int          `json:"objectifParticipants" validate:"omitempty,gte=0"`
	ImageURL             *string       `json:"imageUrl" validate:"omitempty,url"`
}

// Fields retourne les champs à mettre à jour
func (p CampagnePatch) Fields() (map[string]interface{}, []FieldError) {
	f := map[string]interface{}{}
	setString(f, "titre", p.Titre)
	setString(f, "description", p.Description)
	setString(f, "type", p.Type)
	setInt64(f, "communeId", p.CommuneID)
	setString(f, "imageUrl", p.ImageURL)
	if p.ObjectifParticipants != nil {
		f["objectifParticipants"] = *p.ObjectifParticipants
	}
	if errs := setPeriode(f, p.DateDebut, p.DateFin); len(errs) > 0 {
		return nil, errs
	}
	return f, nil
}

// ProgrammePatch modifie le contenu d'un programme d'activités
type ProgrammePatch struct {
	Titre       *string       `json:"titre" validate:"omitempty,min=3,max=200"`
	Description *string       `json:"description" validate:"omitempty,min=1"`
	Type        *string       `json:"type" validate:"omitempty,max=50"`
	Public      *string       `json:"public" validate:"omitempty,max=100"`
	DateDebut   *FlexibleTime `json:"dateDebut"`
	DateFin     *FlexibleTime `json:"dateFin"`
	Budget      *float64      `json:"budget" validate:"omitempty,gte=0"`
}

// Fields retourne les champs à mettre à jour
func (p ProgrammePatch) Fields() (map[string]interface{}, []FieldError) {
	f := map[string]interface{}{}
	setString(f, "titre", p.Titre)
	setString(f, "description", p.Description)
	setString(f, "type", p.Type)
	setString(f, "public", p.Public)
	if p.Budget != nil {
		f["budget"] = *p.Budget
	}
	if errs := setPeriode(f, p.DateDebut, p.DateFin); len(errs) > 0 {
		return nil, errs
	}
	return f, nil
}

// ReclamationPatch permet à un agent de répondre à une réclamation
type ReclamationPatch struct {
	Categorie *string `json:"categorie" validate:"omitempty,oneof=VOIRIE PROPRETE ECLAIRAGE ESPACES_VERTS BRUIT AUTRE"`
	Reponse   *string `json:"reponse" validate:"omitempty,max=2000"`
	AgentID   *int64  `json:"agentId" validate:"omitempty,gte=0"`
}

// Fields retourne les champs à mettre à jour
func (p ReclamationPatch) Fields() (map[string]interface{}, []FieldError) {
	f := map[string]interface{}{}
	setString(f, "categorie", p.Categorie)
	setString(f, "reponse", p.Reponse)
	setInt64(f, "agentId", p.AgentID)
	return f, nil
}

// ---- Requêtes de statut et de drapeaux ----

// StatutRequest demande un changement de statut
type StatutRequest struct {
	Statut lifecycle.Status `json:"statut" validate:"required"`
}

// ValidationRequest bascule le drapeau isValide
type ValidationRequest struct {
	IsValide *bool  `json:"isValide" validate:"required"`
	Motif    string `json:"motif" validate:"omitempty,max=500"`
}

// PublicationRequest bascule le drapeau isPublie
type PublicationRequest struct {
	IsPublie *bool `json:"isPublie" validate:"required"`
}

// MiseEnAvantRequest bascule le drapeau isMisEnAvant
type MiseEnAvantRequest struct {
	IsMisEnAvant *bool `json:"isMisEnAvant" validate:"required"`
}

// ClotureRequest porte le rapport de clôture
type ClotureRequest struct {
	Rapport             string `json:"rapport" validate:"required,min=10"`
	ParticipationReelle *int   `json:"participationReelle" validate:"required,gte=0"`
	RapportDocumentURL  string `json:"rapportDocumentUrl" validate:"omitempty,url"`
}

func checkPeriode(debut FlexibleTime, fin *FlexibleTime) (*time.Time, []FieldError) {
	if fin == nil || fin.Time.IsZero() {
		return nil, nil
	}
	if fin.Time.Before(debut.Time) {
		return nil, []FieldError{{Champ: "dateFin", Message: "la date de fin doit être postérieure à la date de début"}}
	}
	t := fin.Time.UTC()
	return &t, nil
}

func setPeriode(f map[string]interface{}, debut, fin *FlexibleTime) []FieldError {
	if debut != nil && !debut.Time.IsZero() {
		f["dateDebut"] = debut.Time.UTC()
	}
	if fin != nil {
		if debut != nil && !fin.Time.IsZero() && fin.Time.Before(debut.Time) {
			return []FieldError{{Champ: "dateFin", Message: "la date de fin doit être postérieure à la date de début"}}
		}
		if fin.Time.IsZero() {
			f["dateFin"] = nil
		} else {
			f["dateFin"] = fin.Time.UTC()
		}
	}
	return nil
}

func setString(f map[string]interface{}, key string, v *string) {
	if v != nil {
		f[key] = strings.TrimSpace(*v)
	}
}

func setInt64(f map[string]interface{}, key string, v *int64) {
	if v != nil {
		f[key] = *v
	}
}
