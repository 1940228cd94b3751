package client

import (
	"context"
	"fmt"
	"log"
	"sync"
)

// ViewGuard déclenche les compteurs de vues et de participation d'une session
type ViewGuard struct {
	client *Client
	store  Store
	mu     sync.Mutex
}

// NewViewGuard crée le garde ; store représente la session
func NewViewGuard(client *Client, store Store) *ViewGuard {
	return &ViewGuard{client: client, store: store}
}

// MarkViewed incrémente le compteur de vues au plus une fois par contenu et par
// session. L'appel est synchrone ; retourne true si la requête a été émise.
// En cas d'échec la marque est retirée et la prochaine vue réessaiera.
func (g *ViewGuard) MarkViewed(ctx context.Context, entite string, id int64) (bool, error) {
	key := ViewedKey(entite, id)
	if !setIfAbsent(g.store, &g.mu, key, "1", 0) {
		return false, nil
	}
	if _, err := g.client.Post(ctx, fmt.Sprintf("/api/%s/%d/vues", entite, id), nil, nil); err != nil {
		log.Printf("⚠️  Compteur de vues %s/%d: %v", entite, id, err)
		g.mu.Lock()
		g.store.Delete(key)
		g.mu.Unlock()
		return true, err
	}
	return true, nil
}

// MarkViewedAsync envoie la vue en arrière-plan, sans bloquer l'affichage.
// done (optionnel) reçoit le résultat.
func (g *ViewGuard) MarkViewedAsync(entite string, id int64, done func(sent bool, err error)) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), DefaultTimeout)
		defer cancel()
		sent, err := g.MarkViewed(ctx, entite, id)
		if done != nil {
			done(sent, err)
		}
	}()
}

// Participate enregistre la participation de l'utilisateur connecté
func (g *ViewGuard) Participate(ctx context.Context, entite string, id int64) error {
	if !g.client.Authenticated() {
		return ErrConnexionRequise
	}
	_, err := g.client.Post(ctx, fmt.Sprintf("/api/%s/%d/participer", entite, id), nil, nil)
	return err
}
