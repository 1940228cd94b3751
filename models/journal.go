package models

// Niveaux des journaux système
const (
	NiveauInfo    = "INFO"
	NiveauWarning = "WARNING"
	NiveauError   = "ERROR"
)

// Sources de journaux consultables depuis l'administration
const (
	SourceActivite = "activite"
	SourceSysteme  = "systeme"
)

// ActivityLog trace une action métier d'un utilisateur
type ActivityLog struct {
	Base             `bson:",inline"`
	UtilisateurID    int64  `json:"utilisateurId" bson:"utilisateurId"`
	UtilisateurEmail string `json:"utilisateurEmail" bson:"utilisateurEmail"`
	Action           string `json:"action" bson:"action"`
	Entite           string `json:"entite" bson:"entite"`
	EntiteID         int64  `json:"entiteId,omitempty" bson:"entiteId,omitempty"`
	Details          string `json:"details,omitempty" bson:"details,omitempty"`
	IP               string `json:"ip,omitempty" bson:"ip,omitempty"`
}

// SystemLog trace un événement technique (erreur HTTP, tâche planifiée, ...)
type SystemLog struct {
	Base    `bson:",inline"`
	Niveau  string `json:"niveau" bson:"niveau"`
	Source  string `json:"source" bson:"source"`
	Message string `json:"message" bson:"message"`
	Details string `json:"details,omitempty" bson:"details,omitempty"`
}

// Actions tracées dans le journal d'activité
const (
	ActionCreation      = "CREATION"
	ActionModification  = "MODIFICATION"
	ActionSuppression   = "SUPPRESSION"
	ActionStatut        = "CHANGEMENT_STATUT"
	ActionValidation    = "VALIDATION"
	ActionPublication   = "PUBLICATION"
	ActionMiseEnAvant   = "MISE_EN_AVANT"
	ActionCloture       = "CLOTURE"
	ActionConnexion     = "CONNEXION"
	ActionInscription   = "INSCRIPTION"
	ActionParametres    = "PARAMETRES"
	ActionParticipation = "PARTICIPATION"
)
