package lifecycle

import (
	"errors"
	"testing"
	"time"
)

func TestDisplayExhaustif(t *testing.T) {
	for entite, table := range All() {
		m := NewMachine(table, PolicyPermissive)
		if len(table.Styles) != len(table.Ordre) {
			t.Errorf("%s: %d styles pour %d statuts", entite, len(table.Styles), len(table.Ordre))
		}
		for _, s := range table.Ordre {
			style, err := m.Display(s)
			if err != nil {
				t.Errorf("%s: Display(%s) erreur = %v", entite, s, err)
				continue
			}
			if style.Label == "" {
				t.Errorf("%s: Display(%s) label vide", entite, s)
			}
		}
		if _, err := m.Display("INEXISTANT"); !errors.Is(err, ErrStatutInconnu) {
			t.Errorf("%s: Display(INEXISTANT) erreur = %v, attendu ErrStatutInconnu", entite, err)
		}
	}
}

func TestTablesCoherentes(t *testing.T) {
	for entite, table := range All() {
		m := NewMachine(table, PolicyStrict)
		for from, targets := range table.Graphe {
			if !m.Valid(from) {
				t.Errorf("%s: statut source inconnu %s", entite, from)
			}
			for _, to := range targets {
				if !m.Valid(to) {
					t.Errorf("%s: statut cible inconnu %s", entite, to)
				}
			}
		}
		for _, s := range table.Terminaux {
			if len(table.Graphe[s]) != 0 {
				t.Errorf("%s: le statut terminal %s a des successeurs", entite, s)
			}
		}
		if table.Cloture != "" && !m.IsTerminal(table.Cloture) {
			t.Errorf("%s: le statut de clôture %s doit être terminal", entite, table.Cloture)
		}
	}
}

func TestCheckPermissive(t *testing.T) {
	m := NewMachine(Evenements, PolicyPermissive)

	tests := []struct {
		name    string
		from    Status
		to      Status
		wantErr error
	}{
		{"saut autorisé", Brouillon, Publiee, nil},
		{"retour arrière autorisé", Publiee, Brouillon, nil},
		{"sortie d'un terminal autorisée", Annulee, Publiee, nil},
		{"statut identique", Publiee, Publiee, ErrStatutIdentique},
		{"statut inconnu", Brouillon, "PUBLIE", ErrStatutInconnu},
		{"clôture par /statut", EnAction, Cloturee, ErrClotureRequise},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := m.Check(tt.from, tt.to)
			if tt.wantErr == nil && err != nil {
				t.Errorf("Check(%s, %s) erreur = %v", tt.from, tt.to, err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Check(%s, %s) erreur = %v, attendu %v", tt.from, tt.to, err, tt.wantErr)
			}
		})
	}
}

func TestCheckStrict(t *testing.T) {
	m := NewMachine(Evenements, PolicyStrict)

	if err := m.Check(Brouillon, EnAttenteValidation); err != nil {
		t.Errorf("BROUILLON → EN_ATTENTE_VALIDATION devrait passer: %v", err)
	}
	if err := m.Check(Brouillon, Publiee); !errors.Is(err, ErrTransitionRefusee) {
		t.Errorf("BROUILLON → PUBLIEE erreur = %v, attendu ErrTransitionRefusee", err)
	}
	if err := m.Check(Annulee, Publiee); !errors.Is(err, ErrTransitionRefusee) {
		t.Errorf("ANNULEE → PUBLIEE erreur = %v, attendu ErrTransitionRefusee", err)
	}
}

func TestAllowedEtPalette(t *testing.T) {
	m := NewMachine(Evenements, PolicyPermissive)
	allowed := m.Allowed(Publiee)
	for _, s := range allowed {
		if s == Publiee || s == Cloturee {
			t.Errorf("Allowed(PUBLIEE) ne doit pas contenir %s", s)
		}
	}
	if len(allowed) != len(Evenements.Ordre)-2 {
		t.Errorf("Allowed(PUBLIEE) = %v", allowed)
	}

	palette := m.Palette(Publiee)
	if len(palette) != len(Evenements.Ordre) {
		t.Fatalf("Palette: %d entrées, attendu %d", len(palette), len(Evenements.Ordre))
	}
	for _, e := range palette {
		if e.Statut == Publiee && (!e.Actuel || e.Disponible) {
			t.Errorf("le bouton du statut actuel doit être désactivé: %+v", e)
		}
	}

	strict := NewMachine(Evenements, PolicyStrict)
	got := strict.Allowed(Publiee)
	if len(got) != 2 || got[0] != EnAction || got[1] != Annulee {
		t.Errorf("Allowed strict(PUBLIEE) = %v, attendu [EN_ACTION ANNULEE]", got)
	}
}

func TestCheckClosure(t *testing.T) {
	m := NewMachine(Evenements, PolicyPermissive)
	if err := m.CheckClosure(EnAction); err != nil {
		t.Errorf("CheckClosure(EN_ACTION) erreur = %v", err)
	}
	if err := m.CheckClosure(Annulee); !errors.Is(err, ErrTransitionRefusee) {
		t.Errorf("CheckClosure(ANNULEE) erreur = %v", err)
	}

	c := NewMachine(Campagnes, PolicyPermissive)
	if err := c.CheckClosure(EnCours); !errors.Is(err, ErrClotureIndisponible) {
		t.Errorf("CheckClosure campagne erreur = %v", err)
	}
}

func TestCheckCreation(t *testing.T) {
	m := NewMachine(Evenements, PolicyPermissive)
	if err := m.CheckCreation(Brouillon); err != nil {
		t.Errorf("CheckCreation(BROUILLON) = %v", err)
	}
	if err := m.CheckCreation(Publiee); !errors.Is(err, ErrCreationRefusee) {
		t.Errorf("CheckCreation(PUBLIEE) = %v", err)
	}
	if got := NewMachine(Reclamations, PolicyStrict).InitialStatus(); got != Soumise {
		t.Errorf("InitialStatus réclamations = %s", got)
	}
}

func TestParsePolicy(t *testing.T) {
	if p, err := ParsePolicy(""); err != nil || p != PolicyPermissive {
		t.Errorf("ParsePolicy(\"\") = %v, %v", p, err)
	}
	if p, err := ParsePolicy(" Strict "); err != nil || p != PolicyStrict {
		t.Errorf("ParsePolicy(Strict) = %v, %v", p, err)
	}
	if _, err := ParsePolicy("laxiste"); err == nil {
		t.Error("ParsePolicy(laxiste) devrait échouer")
	}
}

func TestComputeDisplayState(t *testing.T) {
	now := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)
	at := func(d time.Duration) time.Time { return now.Add(d) }
	ptr := func(t time.Time) *time.Time { return &t }

	tests := []struct {
		name   string
		debut  time.Time
		fin    *time.Time
		statut Status
		want   Etat
		jours  int
	}{
		{"à venir", at(30 * 24 * time.Hour), nil, Publiee, EtatAVenir, 0},
		{"bientôt", at(3*24*time.Hour + time.Hour), nil, Publiee, EtatBientot, 4},
		{"demain", at(2 * time.Hour), ptr(at(5 * time.Hour)), Publiee, EtatBientot, 1},
		{"en cours", at(-time.Hour), ptr(at(time.Hour)), Publiee, EtatEnCours, 0},
		{"en cours sans fin", at(-time.Hour), nil, EnAction, EtatEnCours, 0},
		{"terminé par date", at(-48 * time.Hour), ptr(at(-24 * time.Hour)), Publiee, EtatTermine, 0},
		{"clôturé malgré dates futures", at(24 * time.Hour), ptr(at(48 * time.Hour)), Cloturee, EtatTermine, 0},
		{"clôturé en cours", at(-time.Hour), ptr(at(time.Hour)), Cloturee, EtatTermine, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeDisplayState(now, tt.debut, tt.fin, tt.statut, Evenements)
			if got.Etat != tt.want {
				t.Errorf("Etat = %s, attendu %s", got.Etat, tt.want)
			}
			if got.Jours != tt.jours {
				t.Errorf("Jours = %d, attendu %d", got.Jours, tt.jours)
			}
			if got.Label == "" {
				t.Error("Label vide")
			}
		})
	}
}

func TestNeedsClosure(t *testing.T) {
	now := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)
	passe := now.Add(-72 * time.Hour)
	finPassee := now.Add(-48 * time.Hour)
	futur := now.Add(72 * time.Hour)

	if !NeedsClosure(now, passe, &finPassee, EnAction, Evenements) {
		t.Error("un événement passé en EN_ACTION doit être à clôturer")
	}
	if NeedsClosure(now, passe, &finPassee, Cloturee, Evenements) {
		t.Error("un événement clôturé n'est plus à clôturer")
	}
	if NeedsClosure(now, futur, nil, Publiee, Evenements) {
		t.Error("un événement futur n'est pas à clôturer")
	}
	if NeedsClosure(now, passe, &finPassee, EnCours, Campagnes) {
		t.Error("une campagne ne se clôture pas")
	}
	if !NeedsClosure(now, passe, nil, Terminee, Programmes) {
		t.Error("un programme terminé sans rapport doit être à clôturer")
	}
}

func TestEndOf_journeeParisienne(t *testing.T) {
	// 00:30 à Paris le 10 mars, stocké en UTC la veille
	debut := time.Date(2026, 3, 10, 0, 30, 0, 0, Paris).UTC()
	now := time.Date(2026, 3, 10, 1, 30, 0, 0, Paris)

	end := EndOf(debut, nil)
	want := time.Date(2026, 3, 10, 23, 59, 59, 0, Paris)
	if !end.Equal(want) {
		t.Errorf("EndOf = %s, attendu %s", end, want)
	}
	if got := ComputeDisplayState(now, debut, nil, Publiee, Evenements); got.Etat != EtatEnCours {
		t.Errorf("Etat = %s, attendu %s", got.Etat, EtatEnCours)
	}
	if NeedsClosure(now, debut, nil, EnAction, Evenements) {
		t.Error("un événement du jour n'est pas à clôturer")
	}
	if !NeedsClosure(want.Add(time.Second), debut, nil, EnAction, Evenements) {
		t.Error("l'événement doit être à clôturer après minuit, heure de Paris")
	}
}
