package lifecycle

import "fmt"

// Statuts partagés
const (
	Brouillon           Status = "BROUILLON"
	EnAttenteValidation Status = "EN_ATTENTE_VALIDATION"
	Validee             Status = "VALIDEE"
	Publiee             Status = "PUBLIEE"
	EnAction            Status = "EN_ACTION"
	Cloturee            Status = "CLOTUREE"
	Annulee             Status = "ANNULEE"
	Depubliee           Status = "DEPUBLIEE"
	Archivee            Status = "ARCHIVEE"
	Publie              Status = "PUBLIE"
	Rejete              Status = "REJETE"
	Archive             Status = "ARCHIVE"
	EnCours             Status = "EN_COURS"
	Terminee            Status = "TERMINEE"
	Planifiee           Status = "PLANIFIEE"
	RapportComplete     Status = "RAPPORT_COMPLETE"
	Reportee            Status = "REPORTEE"
	Soumise             Status = "SOUMISE"
	Resolue             Status = "RESOLUE"
	Rejetee             Status = "REJETEE"
)

// Noms d'entités (segments d'URL et collections)
const (
	EntiteEvenements   = "evenements"
	EntiteActualites   = "actualites"
	EntiteArticles     = "articles"
	EntiteCampagnes    = "campagnes"
	EntiteProgrammes   = "programmes"
	EntiteReclamations = "reclamations"
)

var (
	styleBrouillon = Style{Label: "Brouillon", Background: "bg-gray-100", Text: "text-gray-700", Icon: "file-edit"}
	styleEnAttente = Style{Label: "En attente de validation", Background: "bg-amber-100", Text: "text-amber-800", Icon: "clock"}
	styleValidee   = Style{Label: "Validée", Background: "bg-sky-100", Text: "text-sky-800", Icon: "check"}
	stylePubliee   = Style{Label: "Publiée", Background: "bg-green-100", Text: "text-green-800", Icon: "globe"}
	styleAnnulee   = Style{Label: "Annulée", Background: "bg-red-100", Text: "text-red-800", Icon: "x-circle"}
	styleEnCours   = Style{Label: "En cours", Background: "bg-indigo-100", Text: "text-indigo-800", Icon: "play"}
	styleTerminee  = Style{Label: "Terminée", Background: "bg-slate-200", Text: "text-slate-800", Icon: "flag"}
	styleArchivee  = Style{Label: "Archivée", Background: "bg-zinc-200", Text: "text-zinc-700", Icon: "archive"}
	styleRejete    = Style{Label: "Rejeté", Background: "bg-rose-100", Text: "text-rose-800", Icon: "ban"}
)

// Evenements : cycle de vie des événements
var Evenements = Table{
	Entite:   EntiteEvenements,
	Ordre:    []Status{Brouillon, EnAttenteValidation, Validee, Publiee, EnAction, Cloturee, Annulee},
	Creation: []Status{Brouillon, EnAttenteValidation},
	Styles: map[Status]Style{
		Brouillon:           styleBrouillon,
		EnAttenteValidation: styleEnAttente,
		Validee:             styleValidee,
		Publiee:             stylePubliee,
		EnAction:            {Label: "En action", Background: "bg-indigo-100", Text: "text-indigo-800", Icon: "zap"},
		Cloturee:            {Label: "Clôturée", Background: "bg-slate-200", Text: "text-slate-800", Icon: "lock"},
		Annulee:             styleAnnulee,
	},
	Terminaux: []Status{Cloturee, Annulee},
	Graphe: map[Status][]Status{
		Brouillon:           {EnAttenteValidation, Annulee},
		EnAttenteValidation: {Validee, Brouillon, Annulee},
		Validee:             {Publiee, Annulee},
		Publiee:             {EnAction, Cloturee, Annulee},
		EnAction:            {Cloturee, Annulee},
	},
	Publics: []Status{Publiee, EnAction, Cloturee},
	Finis:   []Status{Cloturee},
	Cloture: Cloturee,
	Valide:  Validee,
	Rejet:   Brouillon,
}

// Actualites : cycle de vie des actualités
var Actualites = Table{
	Entite:   EntiteActualites,
	Ordre:    []Status{Brouillon, EnAttenteValidation, Validee, Publiee, Depubliee, Archivee},
	Creation: []Status{Brouillon, EnAttenteValidation},
	Styles: map[Status]Style{
		Brouillon:           styleBrouillon,
		EnAttenteValidation: styleEnAttente,
		Validee:             styleValidee,
		Publiee:             stylePubliee,
		Depubliee:           {Label: "Dépubliée", Background: "bg-orange-100", Text: "text-orange-800", Icon: "eye-off"},
		Archivee:            styleArchivee,
	},
	Terminaux: []Status{Archivee},
	Graphe: map[Status][]Status{
		Brouillon:           {EnAttenteValidation},
		EnAttenteValidation: {Validee, Brouillon},
		Validee:             {Publiee},
		Publiee:             {Depubliee, Archivee},
		Depubliee:           {Publiee, Archivee},
	},
	Publics: []Status{Publiee},
	Valide:  Validee,
	Rejet:   Brouillon,
}

// Articles : cycle de vie des articles (modération)
var Articles = Table{
	Entite:   EntiteArticles,
	Ordre:    []Status{Brouillon, EnAttenteValidation, Publie, Rejete, Archive},
	Creation: []Status{Brouillon, EnAttenteValidation},
	Styles: map[Status]Style{
		Brouillon:           styleBrouillon,
		EnAttenteValidation: styleEnAttente,
		Publie:              {Label: "Publié", Background: "bg-green-100", Text: "text-green-800", Icon: "globe"},
		Rejete:              styleRejete,
		Archive:             {Label: "Archivé", Background: "bg-zinc-200", Text: "text-zinc-700", Icon: "archive"},
	},
	Terminaux: []Status{Rejete, Archive},
	Graphe: map[Status][]Status{
		Brouillon:           {EnAttenteValidation},
		EnAttenteValidation: {Publie, Rejete, Brouillon},
		Publie:              {Archive},
	},
	Publics: []Status{Publie},
	Valide:  Publie,
	Rejet:   Rejete,
}

// Campagnes : cycle de vie des campagnes citoyennes
var Campagnes = Table{
	Entite:   EntiteCampagnes,
	Ordre:    []Status{Brouillon, EnAttenteValidation, Publiee, EnCours, Terminee, Annulee},
	Creation: []Status{Brouillon, EnAttenteValidation},
	Styles: map[Status]Style{
		Brouillon:           styleBrouillon,
		EnAttenteValidation: styleEnAttente,
		Publiee:             stylePubliee,
		EnCours:             styleEnCours,
		Terminee:            styleTerminee,
		Annulee:             styleAnnulee,
	},
	Terminaux: []Status{Terminee, Annulee},
	Graphe: map[Status][]Status{
		Brouillon:           {EnAttenteValidation, Annulee},
		EnAttenteValidation: {Publiee, Brouillon, Annulee},
		Publiee:             {EnCours, Annulee},
		EnCours:             {Terminee, Annulee},
	},
	Publics: []Status{Publiee, EnCours, Terminee},
	Finis:   []Status{Terminee},
}

// Programmes : cycle de vie des programmes d'activités
var Programmes = Table{
	Entite:   EntiteProgrammes,
	Ordre:    []Status{Brouillon, EnAttenteValidation, Planifiee, EnCours, Terminee, RapportComplete, Annulee, Reportee},
	Creation: []Status{Brouillon, EnAttenteValidation},
	Styles: map[Status]Style{
		Brouillon:           styleBrouillon,
		EnAttenteValidation: styleEnAttente,
		Planifiee:           {Label: "Planifiée", Background: "bg-sky-100", Text: "text-sky-800", Icon: "calendar"},
		EnCours:             styleEnCours,
		Terminee:            styleTerminee,
		RapportComplete:     {Label: "Rapport complété", Background: "bg-emerald-100", Text: "text-emerald-800", Icon: "file-check"},
		Annulee:             styleAnnulee,
		Reportee:            {Label: "Reportée", Background: "bg-yellow-100", Text: "text-yellow-800", Icon: "calendar-clock"},
	},
	Terminaux: []Status{RapportComplete, Annulee},
	Graphe: map[Status][]Status{
		Brouillon:           {EnAttenteValidation},
		EnAttenteValidation: {Planifiee, Brouillon, Annulee},
		Planifiee:           {EnCours, Reportee, Annulee},
		Reportee:            {Planifiee, Annulee},
		EnCours:             {Terminee, Annulee},
		Terminee:            {RapportComplete},
	},
	Publics: []Status{Planifiee, EnCours, Terminee, RapportComplete},
	Finis:   []Status{Terminee, RapportComplete},
	Cloture: RapportComplete,
	Valide:  Planifiee,
	Rejet:   Brouillon,
}

// Reclamations : suivi des réclamations citoyennes
var Reclamations = Table{
	Entite:   EntiteReclamations,
	Ordre:    []Status{Soumise, EnCours, Resolue, Rejetee},
	Creation: []Status{Soumise},
	Styles: map[Status]Style{
		Soumise: {Label: "Soumise", Background: "bg-amber-100", Text: "text-amber-800", Icon: "inbox"},
		EnCours: {Label: "En traitement", Background: "bg-indigo-100", Text: "text-indigo-800", Icon: "loader"},
		Resolue: {Label: "Résolue", Background: "bg-green-100", Text: "text-green-800", Icon: "check-circle"},
		Rejetee: {Label: "Rejetée", Background: "bg-red-100", Text: "text-red-800", Icon: "x-circle"},
	},
	Terminaux: []Status{Resolue, Rejetee},
	Graphe: map[Status][]Status{
		Soumise: {EnCours, Rejetee},
		EnCours: {Resolue, Rejetee},
	},
	Publics: []Status{Soumise, EnCours, Resolue, Rejetee},
}

// All retourne toutes les tables indexées par entité
func All() map[string]Table {
	return map[string]Table{
		EntiteEvenements:   Evenements,
		EntiteActualites:   Actualites,
		EntiteArticles:     Articles,
		EntiteCampagnes:    Campagnes,
		EntiteProgrammes:   Programmes,
		EntiteReclamations: Reclamations,
	}
}

// Lookup retourne la table d'une entité
func Lookup(entite string) (Table, error) {
	t, ok := All()[entite]
	if !ok {
		return Table{}, fmt.Errorf("entité sans cycle de vie: %s", entite)
	}
	return t, nil
}
