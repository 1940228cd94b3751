package models

import "strings"

// Commune est une donnée de référence
type Commune struct {
	Base       `bson:",inline"`
	Nom        string `json:"nom" bson:"nom"`
	CodePostal string `json:"codePostal" bson:"codePostal"`
	CodeInsee  string `json:"codeInsee,omitempty" bson:"codeInsee,omitempty"`
	Region     string `json:"region,omitempty" bson:"region,omitempty"`
}

// CommuneRequest crée une commune
type CommuneRequest struct {
	Nom        string `json:"nom" validate:"required,max=100"`
	CodePostal string `json:"codePostal" validate:"required,numeric,len=5"`
	CodeInsee  string `json:"codeInsee" validate:"omitempty,len=5"`
	Region     string `json:"region" validate:"omitempty,max=100"`
}

// Etablissement représente un établissement (école, maison de quartier, ...)
type Etablissement struct {
	Base       `bson:",inline"`
	Nom        string `json:"nom" bson:"nom"`
	Type       string `json:"type" bson:"type"`
	Adresse    string `json:"adresse" bson:"adresse"`
	CommuneID  int64  `json:"communeId" bson:"communeId"`
	Telephone  string `json:"telephone,omitempty" bson:"telephone,omitempty"`
	Email      string `json:"email,omitempty" bson:"email,omitempty"`
	IsValide   bool   `json:"isValide" bson:"isValide"`
	MotifRejet string `json:"motifRejet,omitempty" bson:"motifRejet,omitempty"`
	AuteurID   int64  `json:"auteurId" bson:"auteurId"`
}

// EtablissementRequest crée un établissement
type EtablissementRequest struct {
	Nom       string `json:"nom" validate:"required,min=2,max=150"`
	Type      string `json:"type" validate:"required,oneof=EDUCATION SANTE CULTURE SPORT SOCIAL ADMINISTRATION AUTRE"`
	Adresse   string `json:"adresse" validate:"required,max=300"`
	CommuneID int64  `json:"communeId" validate:"required,gt=0"`
	Telephone string `json:"telephone" validate:"omitempty,telephone"`
	Email     string `json:"email" validate:"omitempty,email"`
}

// Build construit l'établissement (non validé à la création)
func (r EtablissementRequest) Build(auteurID int64) *Etablissement {
	return &Etablissement{
		Nom:       strings.TrimSpace(r.Nom),
		Type:      r.Type,
		Adresse:   r.Adresse,
		CommuneID: r.CommuneID,
		Telephone: r.Telephone,
		Email:     strings.ToLower(r.Email),
		AuteurID:  auteurID,
	}
}

// EtablissementPatch modifie un établissement
type EtablissementPatch struct {
	Nom       *string `json:"nom" validate:"omitempty,min=2,max=150"`
	Type      *string `json:"type" validate:"omitempty,oneof=EDUCATION SANTE CULTURE SPORT SOCIAL ADMINISTRATION AUTRE"`
	Adresse   *string `json:"adresse" validate:"omitempty,max=300"`
	CommuneID *int64  `json:"communeId" validate:"omitempty,gt=0"`
	Telephone *string `json:"telephone" validate:"omitempty,telephone"`
	Email     *string `json:"email" validate:"omitempty,email"`
}

// Fields retourne les champs à mettre à jour
func (p EtablissementPatch) Fields() (map[string]interface{}, []FieldError) {
	f := map[string]interface{}{}
	setString(f, "nom", p.Nom)
	setString(f, "type", p.Type)
	setString(f, "adresse", p.Adresse)
	setInt64(f, "communeId", p.CommuneID)
	setString(f, "telephone", p.Telephone)
	setString(f, "email", p.Email)
	return f, nil
}

// Participation enregistre l'inscription d'un utilisateur à un événement ou une campagne
type Participation struct {
	Base          `bson:",inline"`
	UtilisateurID int64  `json:"utilisateurId" bson:"utilisateurId"`
	Entite        string `json:"entite" bson:"entite"`
	EntiteID      int64  `json:"entiteId" bson:"entiteId"`
}

// Parametres sont les paramètres globaux du portail (document unique)
type Parametres struct {
	Base                `bson:",inline"`
	RegistrationEnabled bool   `json:"registrationEnabled" bson:"registrationEnabled"`
	Maintenance         bool   `json:"maintenance" bson:"maintenance"`
	MessageMaintenance  string `json:"messageMaintenance,omitempty" bson:"messageMaintenance,omitempty"`
	ModifieParID        int64  `json:"modifieParId,omitempty" bson:"modifieParId,omitempty"`
}

// ParametresID est l'identifiant du document de paramètres
const ParametresID int64 = 1

// ParametresPatch modifie les paramètres globaux
type ParametresPatch struct {
	RegistrationEnabled *bool   `json:"registrationEnabled"`
	Maintenance         *bool   `json:"maintenance"`
	MessageMaintenance  *string `json:"messageMaintenance" validate:"omitempty,max=300"`
}

// PublicSettings est la vue publique des paramètres
type PublicSettings struct {
	RegistrationEnabled bool   `json:"registrationEnabled"`
	Maintenance         bool   `json:"maintenance"`
	MessageMaintenance  string `json:"messageMaintenance,omitempty"`
}
