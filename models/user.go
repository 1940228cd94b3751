package models

import (
	"strings"
	"time"
)

// Role d'un utilisateur du portail
type Role string

const (
	RoleCitoyen    Role = "CITOYEN"
	RoleAgent      Role = "AGENT"
	RoleModerateur Role = "MODERATEUR"
	RoleAdmin      Role = "ADMIN"
	RoleSuperAdmin Role = "SUPER_ADMIN"
)

// Roles liste les rôles connus, du moins au plus privilégié
var Roles = []Role{RoleCitoyen, RoleAgent, RoleModerateur, RoleAdmin, RoleSuperAdmin}

// IsStaff indique si le rôle donne accès au back-office
func (r Role) IsStaff() bool {
	return r == RoleAgent || r == RoleModerateur || r == RoleAdmin || r == RoleSuperAdmin
}

// Utilisateur représente un compte du portail
type Utilisateur struct {
	Base              `bson:",inline"`
	Civilite          string     `json:"civilite,omitempty" bson:"civilite,omitempty"`
	Prenom            string     `json:"prenom" bson:"prenom"`
	Nom               string     `json:"nom" bson:"nom"`
	DateNaissance     string     `json:"dateNaissance,omitempty" bson:"dateNaissance,omitempty"`
	Email             string     `json:"email" bson:"email"`
	Telephone         string     `json:"telephone" bson:"telephone"`
	CommuneID         int64      `json:"communeId,omitempty" bson:"communeId,omitempty"`
	Adresse           string     `json:"adresse,omitempty" bson:"adresse,omitempty"`
	MotDePasse        string     `json:"-" bson:"motDePasse"`
	Role              Role       `json:"role" bson:"role"`
	Actif             bool       `json:"actif" bson:"actif"`
	DerniereConnexion *time.Time `json:"derniereConnexion,omitempty" bson:"derniereConnexion,omitempty"`
}

// NomComplet retourne "Prénom Nom"
func (u Utilisateur) NomComplet() string {
	return strings.TrimSpace(u.Prenom + " " + u.Nom)
}

// InscriptionIdentite est l'étape 1 de l'inscription
type InscriptionIdentite struct {
	Civilite      string `json:"civilite" validate:"omitempty,oneof=M MME"`
	Prenom        string `json:"prenom" validate:"required,min=2,max=50"`
	Nom           string `json:"nom" validate:"required,min=2,max=50"`
	DateNaissance string `json:"dateNaissance" validate:"omitempty,datetime=2006-01-02"`
}

// InscriptionContact est l'étape 2 de l'inscription
type InscriptionContact struct {
	Email     string `json:"email" validate:"required,email"`
	Telephone string `json:"telephone" validate:"required,telephone"`
	CommuneID int64  `json:"communeId" validate:"omitempty,gt=0"`
	Adresse   string `json:"adresse" validate:"omitempty,max=200"`
}

// InscriptionSecurite est l'étape 3 de l'inscription
type InscriptionSecurite struct {
	MotDePasse   string `json:"motDePasse" validate:"required,min=8,max=72"`
	Confirmation string `json:"confirmation" validate:"required,eqfield=MotDePasse"`
	AcceptCGU    bool   `json:"acceptCgu" validate:"required"`
}

// RegisterRequest est l'accumulateur complet envoyé à la fin de l'assistant
type RegisterRequest struct {
	InscriptionIdentite
	InscriptionContact
	InscriptionSecurite
}

// LoginRequest représente la requête de connexion
type LoginRequest struct {
	Email      string `json:"email" validate:"required,email"`
	MotDePasse string `json:"motDePasse" validate:"required"`
}

// AuthResponse représente la réponse d'authentification
type AuthResponse struct {
	Token       string      `json:"token"`
	Utilisateur Utilisateur `json:"utilisateur"`
}

// UtilisateurPatch est la modification d'un compte par le super-administrateur
type UtilisateurPatch struct {
	Role  *Role `json:"role" validate:"omitempty,oneof=CITOYEN AGENT MODERATEUR ADMIN SUPER_ADMIN"`
	Actif *bool `json:"actif"`
}
