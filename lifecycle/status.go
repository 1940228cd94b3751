// Package lifecycle regroupe le cycle de vie des statuts partagé par les
// événements, actualités, articles, campagnes, programmes d'activités et
// réclamations : une seule machine, paramétrée par une table par type d'entité.
package lifecycle

import (
	"errors"
	"fmt"
	"strings"
)

// Status est une valeur d'énumération de statut (ex: "PUBLIEE")
type Status string

// Erreurs métier du cycle de vie
var (
	ErrStatutInconnu       = errors.New("statut inconnu")
	ErrStatutIdentique     = errors.New("le statut demandé est déjà le statut actuel")
	ErrTransitionRefusee   = errors.New("transition de statut non autorisée")
	ErrClotureRequise      = errors.New("ce statut s'obtient uniquement par la clôture")
	ErrClotureIndisponible = errors.New("ce type d'entité ne se clôture pas")
	ErrCloturePrematuree   = errors.New("la date de fin n'est pas encore dépassée")
	ErrCreationRefusee     = errors.New("statut de création non autorisé")
)

// Policy définit si le graphe de transitions est appliqué
type Policy string

const (
	// PolicyPermissive : tout statut connu est atteignable (modèle "admin override")
	PolicyPermissive Policy = "permissive"
	// PolicyStrict : seules les transitions du graphe sont acceptées
	PolicyStrict Policy = "strict"
)

// ParsePolicy convertit une valeur de configuration en Policy
func ParsePolicy(s string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PolicyPermissive:
		return PolicyPermissive, nil
	case PolicyStrict:
		return PolicyStrict, nil
	}
	return "", fmt.Errorf("politique de statut invalide: %q", s)
}

// Style décrit l'affichage d'un statut (badge)
type Style struct {
	Label      string `json:"label"`
	Background string `json:"background"`
	Text       string `json:"text"`
	Icon       string `json:"icon"`
}

// Table contient les données propres à un type d'entité. Aucune logique ici.
type Table struct {
	Entite    string
	Ordre     []Status
	Creation  []Status
	Styles    map[Status]Style
	Terminaux []Status
	Graphe    map[Status][]Status
	Publics   []Status
	// Finis court-circuitent le badge calculé vers "ended"
	Finis []Status
	// Cloture est le statut porteur du rapport de clôture ("" si aucun)
	Cloture Status
	// Valide et Rejet sont les cibles de /valider ("" = drapeau seul)
	Valide Status
	Rejet  Status
}

// PaletteEntry est un bouton de la palette de statuts de l'écran admin
type PaletteEntry struct {
	Statut     Status `json:"statut"`
	Style      Style  `json:"style"`
	Actuel     bool   `json:"actuel"`
	Disponible bool   `json:"disponible"`
}

// Machine applique une Table selon une Policy
type Machine struct {
	table  Table
	policy Policy
}

// NewMachine crée une machine pour une table
func NewMachine(table Table, policy Policy) *Machine {
	if policy == "" {
		policy = PolicyPermissive
	}
	return &Machine{table: table, policy: policy}
}

// Table retourne la table de la machine
func (m *Machine) Table() Table { return m.table }

// Policy retourne la politique appliquée
func (m *Machine) Policy() Policy { return m.policy }

// Valid indique si le statut appartient à l'énumération
func (m *Machine) Valid(s Status) bool {
	return contains(m.table.Ordre, s)
}

// IsTerminal indique si le statut est terminal
func (m *Machine) IsTerminal(s Status) bool {
	return contains(m.table.Terminaux, s)
}

// IsPublic indique si un enregistrement dans ce statut est visible du public
func (m *Machine) IsPublic(s Status) bool {
	return contains(m.table.Publics, s)
}

// Display retourne le style d'un statut
func (m *Machine) Display(s Status) (Style, error) {
	style, ok := m.table.Styles[s]
	if !ok || !m.Valid(s) {
		return Style{}, fmt.Errorf("%w: %s (%s)", ErrStatutInconnu, s, m.table.Entite)
	}
	return style, nil
}

// Allowed retourne les statuts atteignables depuis current via /statut.
// Le statut de clôture n'y figure jamais.
func (m *Machine) Allowed(current Status) []Status {
	var candidates []Status
	if m.policy == PolicyStrict {
		candidates = m.table.Graphe[current]
	} else {
		candidates = m.table.Ordre
	}

	allowed := make([]Status, 0, len(candidates))
	for _, s := range candidates {
		if s == current || (m.table.Cloture != "" && s == m.table.Cloture) {
			continue
		}
		allowed = append(allowed, s)
	}
	return allowed
}

// Check vérifie une transition demandée via l'endpoint de statut
func (m *Machine) Check(from, to Status) error {
	if !m.Valid(to) {
		return fmt.Errorf("%w: %s (%s)", ErrStatutInconnu, to, m.table.Entite)
	}
	if from == to {
		return ErrStatutIdentique
	}
	if m.table.Cloture != "" && to == m.table.Cloture {
		return ErrClotureRequise
	}
	if m.policy == PolicyStrict && !contains(m.table.Graphe[from], to) {
		return fmt.Errorf("%w: %s → %s", ErrTransitionRefusee, from, to)
	}
	return nil
}

// CheckClosure vérifie que la clôture est possible depuis from.
// La condition de date est portée par NeedsClosure.
func (m *Machine) CheckClosure(from Status) error {
	if m.table.Cloture == "" {
		return ErrClotureIndisponible
	}
	if m.IsTerminal(from) {
		return fmt.Errorf("%w: %s est terminal", ErrTransitionRefusee, from)
	}
	if m.policy == PolicyStrict && !contains(m.table.Graphe[from], m.table.Cloture) {
		return fmt.Errorf("%w: %s → %s", ErrTransitionRefusee, from, m.table.Cloture)
	}
	return nil
}

// CheckCreation vérifie le statut initial d'un nouvel enregistrement
func (m *Machine) CheckCreation(s Status) error {
	if !contains(m.table.Creation, s) {
		return fmt.Errorf("%w: %s", ErrCreationRefusee, s)
	}
	return nil
}

// InitialStatus retourne le statut de création par défaut
func (m *Machine) InitialStatus() Status {
	if len(m.table.Creation) == 0 {
		return ""
	}
	return m.table.Creation[0]
}

// Palette retourne les boutons de statut, dans l'ordre de la table
func (m *Machine) Palette(current Status) []PaletteEntry {
	allowed := m.Allowed(current)
	entries := make([]PaletteEntry, 0, len(m.table.Ordre))
	for _, s := range m.table.Ordre {
		entries = append(entries, PaletteEntry{
			Statut:     s,
			Style:      m.table.Styles[s],
			Actuel:     s == current,
			Disponible: contains(allowed, s),
		})
	}
	return entries
}

func contains(list []Status, s Status) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
