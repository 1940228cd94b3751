package client

import (
	"context"
	"fmt"
	"log"
	"time"
)

// Intervalles de rafraîchissement
const (
	NotificationsInterval = 60 * time.Second
)

// LogsIntervals sont les intervalles proposés pour le rafraîchissement des journaux
var LogsIntervals = []time.Duration{15 * time.Second, 30 * time.Second, 60 * time.Second}

// ValidLogsInterval vérifie qu'un intervalle fait partie des choix proposés
func ValidLogsInterval(d time.Duration) error {
	for _, v := range LogsIntervals {
		if v == d {
			return nil
		}
	}
	return fmt.Errorf("intervalle de rafraîchissement non supporté: %s", d)
}

// Poller exécute une récupération récurrente jusqu'à l'annulation de son contexte
type Poller struct {
	interval time.Duration
	fetch    func(ctx context.Context) error
	onError  func(error)
}

// NewPoller crée un poller ; onError (optionnel) reçoit les échecs sans arrêter la boucle
func NewPoller(interval time.Duration, fetch func(ctx context.Context) error, onError func(error)) *Poller {
	return &Poller{interval: interval, fetch: fetch, onError: onError}
}

// Run récupère immédiatement puis à chaque intervalle. Bloque jusqu'à ctx.Done().
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

func (p *Poller) tick(ctx context.Context) {
	if err := p.fetch(ctx); err != nil && ctx.Err() == nil {
		if p.onError != nil {
			p.onError(err)
			return
		}
		log.Printf("⚠️  Rafraîchissement périodique: %v", err)
	}
}

// NotificationPoller suit le nombre de notifications non lues
func NotificationPoller(c *Client, onCount func(int64)) *Poller {
	return NewPoller(NotificationsInterval, func(ctx context.Context) error {
		n, err := c.UnreadNotifications(ctx)
		if err != nil {
			return err
		}
		onCount(n)
		return nil
	}, nil)
}
