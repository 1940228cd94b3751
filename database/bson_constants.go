package database

// Opérateurs MongoDB (évite les littéraux dupliqués)
const (
	BSONMatch   = "$match"
	BSONGroup   = "$group"
	BSONSum     = "$sum"
	BSONRegex   = "$regex"
	BSONOptions = "$options"
	BSONIn      = "$in"
	BSONNin     = "$nin"
	BSONOr      = "$or"
	BSONAnd     = "$and"
	BSONGte     = "$gte"
	BSONLte     = "$lte"
	BSONSet     = "$set"
	BSONInc     = "$inc"
)

// Champs communs aux documents
const (
	ChampID               = "_id"
	ChampDateCreation     = "dateCreation"
	ChampDateModification = "dateModification"
	ChampStatut           = "statut"
	ChampIsValide         = "isValide"
	ChampIsPublie         = "isPublie"
	ChampIsMisEnAvant     = "isMisEnAvant"
	ChampMotifRejet       = "motifRejet"
	ChampNbVues           = "nbVues"
	ChampNbParticipants   = "nbParticipants"
	ChampDateDebut        = "dateDebut"
	ChampCloture          = "cloture"
	ChampAuteurID         = "auteurId"
	ChampUtilisateurID    = "utilisateurId"
	ChampEmail            = "email"
	ChampRole             = "role"
	ChampLu               = "lu"
)
