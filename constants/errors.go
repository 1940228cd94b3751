package constants

// Messages d'erreur HTTP courants
const (
	ErrMethodNotAllowed     = "Méthode non autorisée"
	ErrServerError          = "Erreur serveur"
	ErrInvalidData          = "Données invalides"
	ErrNotAuthenticated     = "Non authentifié"
	ErrInvalidToken         = "Token invalide"
	ErrForbidden            = "Accès refusé"
	ErrInvalidID            = "Identifiant invalide"
	ErrNotFound             = "Ressource introuvable"
	ErrUserNotFound         = "Utilisateur introuvable"
	ErrInvalidJSONBody      = "Body JSON invalide"
	ErrAlreadyLoggedIn      = "Vous êtes déjà connecté"
	ErrEmailTaken           = "Un compte existe déjà avec cet email"
	ErrBadCredentials       = "Email ou mot de passe incorrect"
	ErrAccountDisabled      = "Ce compte est désactivé"
	ErrRegistrationDisabled = "Les inscriptions sont actuellement fermées"
	ErrTooManyRequests      = "Trop de requêtes, réessayez plus tard"
	ErrUploadDisabled       = "L'envoi de fichiers n'est pas configuré"
	ErrFileRequired         = "Le fichier est requis"
	ErrFileTooLarge         = "Le fichier est trop volumineux (5 Mo maximum)"
	ErrFileType             = "Type de fichier non supporté"
	ErrSearchTooShort       = "La recherche doit contenir au moins 2 caractères"
	ErrUnknownSource        = "Source de journal inconnue"
	ErrSelfModification     = "Vous ne pouvez pas modifier votre propre compte"
	ErrClosureNotDue        = "La clôture n'est possible qu'après la date de fin"
	ErrStaleRecord          = "L'enregistrement a été modifié entre-temps, veuillez recharger"
	ErrGeneric              = "Une erreur est survenue, veuillez réessayer"
)

// Codes d'erreur de l'enveloppe JSON
const (
	CodeValidation   = "VALIDATION"
	CodeBadRequest   = "REQUETE_INVALIDE"
	CodeUnauthorized = "NON_AUTHENTIFIE"
	CodeForbidden    = "ACCES_REFUSE"
	CodeNotFound     = "INTROUVABLE"
	CodeConflict     = "CONFLIT"
	CodeTransition   = "TRANSITION_REFUSEE"
	CodeMethod       = "METHODE_NON_AUTORISEE"
	CodeTooMany      = "TROP_DE_REQUETES"
	CodeUnavailable  = "INDISPONIBLE"
	CodeServer       = "ERREUR_SERVEUR"
	CodeNetwork      = "RESEAU"
)

// En-têtes HTTP
const (
	HeaderContentType     = "Content-Type"
	HeaderApplicationJSON = "application/json"
	HeaderRequestID       = "X-Request-ID"
)
