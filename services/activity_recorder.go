package services

import (
	"context"
	"log"
	"sync"
	"time"

	"portail-citoyen-backend/database"
	"portail-citoyen-backend/models"
)

// ActivityRecorder écrit les journaux d'activité et système en arrière-plan,
// sans ralentir la requête qui les produit.
type ActivityRecorder struct {
	activite database.Store[models.ActivityLog]
	systeme  database.Store[models.SystemLog]

	queue   chan func(context.Context)
	pending sync.WaitGroup
	done    chan struct{}
	once    sync.Once
}

// NewActivityRecorder démarre le worker d'écriture des journaux
func NewActivityRecorder(activite database.Store[models.ActivityLog], systeme database.Store[models.SystemLog]) *ActivityRecorder {
	r := &ActivityRecorder{
		activite: activite,
		systeme:  systeme,
		queue:    make(chan func(context.Context), 256),
		done:     make(chan struct{}),
	}
	go r.run()
	return r
}

func (r *ActivityRecorder) run() {
	defer close(r.done)
	for write := range r.queue {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		write(ctx)
		cancel()
		r.pending.Done()
	}
}

func (r *ActivityRecorder) enqueue(write func(context.Context)) {
	if r == nil {
		return
	}
	r.pending.Add(1)
	select {
	case r.queue <- write:
	default:
		r.pending.Done()
		log.Println("⚠️  File des journaux saturée, entrée ignorée")
	}
}

// Activity enregistre une action métier
func (r *ActivityRecorder) Activity(entry models.ActivityLog) {
	r.enqueue(func(ctx context.Context) {
		if err := r.activite.Create(ctx, &entry); err != nil {
			log.Printf("❌ Erreur écriture journal d'activité: %v", err)
		}
	})
}

// System enregistre un événement technique
func (r *ActivityRecorder) System(niveau, source, message, details string) {
	entry := models.SystemLog{Niveau: niveau, Source: source, Message: message, Details: details}
	r.enqueue(func(ctx context.Context) {
		if err := r.systeme.Create(ctx, &entry); err != nil {
			log.Printf("❌ Erreur écriture journal système: %v", err)
		}
	})
}

// Flush attend que les entrées en file soient écrites
func (r *ActivityRecorder) Flush() {
	if r == nil {
		return
	}
	r.pending.Wait()
}

// Close vide la file puis arrête le worker
func (r *ActivityRecorder) Close() {
	if r == nil {
		return
	}
	r.once.Do(func() {
		r.pending.Wait()
		close(r.queue)
		<-r.done
	})
}
