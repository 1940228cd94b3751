package client

import (
	"context"
	"fmt"
	"log"
)

// Toaster affiche les retours des actions à l'utilisateur
type Toaster interface {
	Success(message string)
	Error(message string)
}

// Transitioner applique les changements de statut d'une entité depuis le back-office
type Transitioner struct {
	client  *Client
	entite  string
	toaster Toaster

	// Refresh recharge la liste après un succès
	Refresh func(ctx context.Context) error
	// CloseDetail ferme le panneau de détail après un succès
	CloseDetail func()
}

// NewTransitioner crée un Transitioner pour une entité (evenements, actualites…)
func NewTransitioner(client *Client, entite string, toaster Toaster) *Transitioner {
	return &Transitioner{client: client, entite: entite, toaster: toaster}
}

// Apply demande le passage de l'enregistrement id au statut donné. Rien n'est
// modifié localement avant la confirmation du serveur ; en cas d'échec le
// message du serveur est affiché tel quel.
func (t *Transitioner) Apply(ctx context.Context, id int64, statut string) error {
	resp, err := t.client.ChangeStatus(ctx, t.entite, id, statut)
	if err != nil {
		log.Printf("❌ Transition %s/%d vers %s refusée: %v", t.entite, id, statut, err)
		if t.toaster != nil {
			t.toaster.Error(Message(err))
		}
		return err
	}

	if t.toaster != nil {
		msg := resp.Message
		if msg == "" {
			msg = fmt.Sprintf("Statut mis à jour : %s", statut)
		}
		t.toaster.Success(msg)
	}
	if t.CloseDetail != nil {
		t.CloseDetail()
	}
	if t.Refresh != nil {
		if err := t.Refresh(ctx); err != nil {
			log.Printf("⚠️  Rechargement après transition: %v", err)
		}
	}
	return nil
}
