package lifecycle

import (
	"fmt"
	"time"
	_ "time/tzdata"
)

// Etat est l'état d'affichage calculé (jamais persisté)
type Etat string

const (
	EtatTermine Etat = "ended"
	EtatEnCours Etat = "live"
	EtatBientot Etat = "upcoming_soon"
	EtatAVenir  Etat = "upcoming"
)

// FenetreBientot : en deçà, le badge affiche le nombre de jours restants
const FenetreBientot = 7 * 24 * time.Hour

// Badge est le badge public calculé à partir des dates et du statut
type Badge struct {
	Etat  Etat   `json:"etat"`
	Jours int    `json:"jours,omitempty"`
	Label string `json:"label"`
}

// Paris est le fuseau dans lequel les journées du portail sont découpées
var Paris = loadParis()

func loadParis() *time.Location {
	paris, err := time.LoadLocation("Europe/Paris")
	if err != nil {
		return time.FixedZone("CET", 1*3600)
	}
	return paris
}

// EndOf retourne l'instant de fin effectif : fin si fournie, sinon la fin du
// jour de début, heure de Paris (les dates sont stockées en UTC).
func EndOf(debut time.Time, fin *time.Time) time.Time {
	if fin != nil && !fin.IsZero() {
		return *fin
	}
	y, mo, d := debut.In(Paris).Date()
	return time.Date(y, mo, d, 23, 59, 59, 0, Paris)
}

// ComputeDisplayState calcule le badge public. Un statut "fini" de la table
// l'emporte sur la fenêtre de dates ; sinon les dates décident.
func ComputeDisplayState(now, debut time.Time, fin *time.Time, statut Status, table Table) Badge {
	if contains(table.Finis, statut) {
		return Badge{Etat: EtatTermine, Label: "Terminé"}
	}

	end := EndOf(debut, fin)
	if now.After(end) {
		return Badge{Etat: EtatTermine, Label: "Terminé"}
	}
	if !now.Before(debut) {
		return Badge{Etat: EtatEnCours, Label: "En cours"}
	}

	remaining := debut.Sub(now)
	if remaining <= FenetreBientot {
		jours := int((remaining + 24*time.Hour - 1) / (24 * time.Hour))
		label := fmt.Sprintf("Dans %d jours", jours)
		if jours == 1 {
			label = "Demain"
		}
		return Badge{Etat: EtatBientot, Jours: jours, Label: label}
	}
	return Badge{Etat: EtatAVenir, Label: "À venir"}
}

// NeedsClosure est l'unique règle "à clôturer" : l'instant de fin est dépassé
// et le statut n'est pas terminal, pour une entité qui possède une clôture.
func NeedsClosure(now, debut time.Time, fin *time.Time, statut Status, table Table) bool {
	if table.Cloture == "" || contains(table.Terminaux, statut) {
		return false
	}
	if debut.IsZero() {
		return false
	}
	return now.After(EndOf(debut, fin))
}
