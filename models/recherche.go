package models

import (
	"strings"
	"time"
	"unicode/utf8"

	"portail-citoyen-backend/lifecycle"
)

// SearchResult est un résultat de la recherche globale
type SearchResult struct {
	Type    string           `json:"type"`
	ID      int64            `json:"id"`
	Titre   string           `json:"titre"`
	Extrait string           `json:"extrait,omitempty"`
	URL     string           `json:"url"`
	Date    time.Time        `json:"date"`
	Badge   *lifecycle.Badge `json:"badge,omitempty"`
}

// Suggestion est une proposition d'autocomplétion
type Suggestion struct {
	Type  string `json:"type"`
	ID    int64  `json:"id"`
	Titre string `json:"titre"`
}

// MenuItem est une entrée du menu de navigation
type MenuItem struct {
	Cle      string     `json:"cle"`
	Libelle  string     `json:"libelle"`
	URL      string     `json:"url"`
	Icone    string     `json:"icone,omitempty"`
	Badge    int64      `json:"badge,omitempty"`
	Enfants  []MenuItem `json:"enfants,omitempty"`
	Roles    []Role     `json:"-"`
	Connecte bool       `json:"-"`
	Invite   bool       `json:"-"`
}

// Navigation est la réponse de l'endpoint de navigation
type Navigation struct {
	Menu                 []MenuItem `json:"menu"`
	Role                 Role       `json:"role,omitempty"`
	NotificationsNonLues int64      `json:"notificationsNonLues"`
	RegistrationEnabled  bool       `json:"registrationEnabled"`
	Maintenance          bool       `json:"maintenance"`
}

// Extrayable fournit le texte court affiché dans les résultats de recherche
type Extrayable interface {
	Extrait() string
}

// LongueurExtrait borne la taille des extraits de recherche
const LongueurExtrait = 160

func extrait(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) <= LongueurExtrait {
		return s
	}
	r := []rune(s)
	return strings.TrimSpace(string(r[:LongueurExtrait])) + "…"
}

func (e Evenement) Extrait() string { return extrait(e.Description) }
func (c Campagne) Extrait() string  { return extrait(c.Description) }
func (a Article) Extrait() string   { return extrait(a.Contenu) }

func (a Actualite) Extrait() string {
	if a.Resume != "" {
		return extrait(a.Resume)
	}
	return extrait(a.Contenu)
}
