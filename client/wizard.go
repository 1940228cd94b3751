package client

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"portail-citoyen-backend/models"
	"portail-citoyen-backend/utils"
)

// Étapes de l'assistant d'inscription
const (
	EtapeIdentite = 1
	EtapeContact  = 2
	EtapeSecurite = 3
)

var (
	// ErrEtapeInvalide signale une soumission hors de l'étape courante
	ErrEtapeInvalide = errors.New("étape de l'inscription invalide")
	// ErrInscriptionsFermees signale que le portail n'accepte plus d'inscriptions
	ErrInscriptionsFermees = errors.New("les inscriptions sont fermées")
)

// ValidationError regroupe les erreurs de champ d'une étape
type ValidationError struct {
	Details []models.FieldError
}

func (e *ValidationError) Error() string {
	champs := make([]string, 0, len(e.Details))
	for _, d := range e.Details {
		champs = append(champs, d.Champ)
	}
	return fmt.Sprintf("champs invalides: %s", strings.Join(champs, ", "))
}

// Wizard est l'assistant d'inscription en trois étapes. Chaque étape est
// validée seule ; les valeurs validées sont accumulées jusqu'à l'envoi final.
type Wizard struct {
	client *Client

	mu   sync.Mutex
	step int
	acc  models.RegisterRequest
	done bool
}

// NewWizard crée un assistant positionné sur l'étape 1
func NewWizard(client *Client) *Wizard {
	return &Wizard{client: client, step: EtapeIdentite}
}

// Start vérifie que les inscriptions sont ouvertes
func (w *Wizard) Start(ctx context.Context) error {
	settings, err := w.client.PublicSettings(ctx)
	if err != nil {
		return err
	}
	if !settings.RegistrationEnabled {
		return ErrInscriptionsFermees
	}
	return nil
}

// Step retourne l'étape courante
func (w *Wizard) Step() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.step
}

// Done indique que le compte a été créé
func (w *Wizard) Done() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.done
}

// Identite retourne les valeurs de l'étape 1 (pour réhydrater le formulaire)
func (w *Wizard) Identite() models.InscriptionIdentite {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.acc.InscriptionIdentite
}

// Contact retourne les valeurs de l'étape 2
func (w *Wizard) Contact() models.InscriptionContact {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.acc.InscriptionContact
}

// Securite retourne les valeurs de l'étape 3
func (w *Wizard) Securite() models.InscriptionSecurite {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.acc.InscriptionSecurite
}

// SubmitIdentite valide l'étape 1 et passe à l'étape 2
func (w *Wizard) SubmitIdentite(v models.InscriptionIdentite) error {
	return w.advance(EtapeIdentite, v, func() { w.acc.InscriptionIdentite = v })
}

// SubmitContact valide l'étape 2 et passe à l'étape 3
func (w *Wizard) SubmitContact(v models.InscriptionContact) error {
	v.Email = strings.ToLower(strings.TrimSpace(v.Email))
	return w.advance(EtapeContact, v, func() { w.acc.InscriptionContact = v })
}

// SubmitSecurite valide l'étape 3 et envoie l'inscription complète. En cas
// d'échec l'assistant reste sur l'étape 3 avec les valeurs saisies.
func (w *Wizard) SubmitSecurite(ctx context.Context, v models.InscriptionSecurite) (*models.AuthResponse, error) {
	w.mu.Lock()
	if w.step != EtapeSecurite || w.done {
		w.mu.Unlock()
		return nil, ErrEtapeInvalide
	}
	w.acc.InscriptionSecurite = v
	if details := utils.ValidateStruct(v); len(details) > 0 {
		w.mu.Unlock()
		return nil, &ValidationError{Details: details}
	}
	req := w.acc
	w.mu.Unlock()

	auth, err := w.client.Register(ctx, req)
	if err != nil {
		return nil, err
	}

	w.mu.Lock()
	w.done = true
	w.mu.Unlock()
	return auth, nil
}

// Back revient à l'étape précédente sans perdre les valeurs saisies
func (w *Wizard) Back() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.step > EtapeIdentite && !w.done {
		w.step--
	}
	return w.step
}

func (w *Wizard) advance(step int, values interface{}, merge func()) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.step != step || w.done {
		return ErrEtapeInvalide
	}
	if details := utils.ValidateStruct(values); len(details) > 0 {
		return &ValidationError{Details: details}
	}
	merge()
	w.step++
	return nil
}
