package client

import (
	"context"
	"log"
	"sync"
	"time"

	"portail-citoyen-backend/models"
)

// DefaultDebounce est le délai d'attente après la dernière saisie
const DefaultDebounce = 300 * time.Millisecond

// Fetcher charge une page de la liste
type Fetcher[T any] func(ctx context.Context, q Query) ([]T, models.Pagination, error)

// ListState est un instantané de la liste
type ListState[T any] struct {
	Query      Query
	Items      []T
	Total      int64
	TotalPages int
	Loading    bool
	Empty      bool
	Err        error
}

// Lister gère une liste paginée filtrée : les saisies sont regroupées par un
// délai de debounce et seule la réponse de la requête la plus récente est appliquée.
type Lister[T any] struct {
	fetch    Fetcher[T]
	debounce time.Duration
	onChange func(ListState[T])

	mu     sync.Mutex
	ctx    context.Context
	stop   context.CancelFunc
	seq    uint64
	cancel context.CancelFunc
	timer  *time.Timer
	state  ListState[T]
}

// NewLister crée une liste ; onChange (optionnel) reçoit chaque nouvel état
func NewLister[T any](fetch Fetcher[T], initial Query, debounce time.Duration, onChange func(ListState[T])) *Lister[T] {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if initial.Page <= 0 {
		initial.Page = 1
	}
	ctx, stop := context.WithCancel(context.Background())
	return &Lister[T]{
		fetch:    fetch,
		debounce: debounce,
		onChange: onChange,
		ctx:      ctx,
		stop:     stop,
		state:    ListState[T]{Query: initial},
	}
}

// State retourne l'état courant
func (l *Lister[T]) State() ListState[T] {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// SetQuery change les critères ; le chargement part après le délai de debounce
func (l *Lister[T]) SetQuery(q Query) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if q.Page <= 0 {
		q.Page = 1
	}
	l.state.Query = q
	if l.timer != nil {
		l.timer.Stop()
	}
	l.timer = time.AfterFunc(l.debounce, func() {
		if err := l.Refresh(l.ctx); err != nil && l.ctx.Err() == nil {
			log.Printf("⚠️  Chargement de la liste: %v", err)
		}
	})
}

// Apply remplace les critères et recharge sans attendre (clic sur un filtre)
func (l *Lister[T]) Apply(ctx context.Context, q Query) error {
	l.mu.Lock()
	if l.timer != nil {
		l.timer.Stop()
	}
	if q.Page <= 0 {
		q.Page = 1
	}
	l.state.Query = q
	l.mu.Unlock()
	return l.Refresh(ctx)
}

// SetPage change de page immédiatement
func (l *Lister[T]) SetPage(ctx context.Context, page int) error {
	l.mu.Lock()
	if page <= 0 {
		page = 1
	}
	l.state.Query.Page = page
	l.mu.Unlock()
	return l.Refresh(ctx)
}

// Refresh recharge immédiatement avec les critères courants. Une requête plus
// récente annule la précédente, dont la réponse est ignorée.
func (l *Lister[T]) Refresh(ctx context.Context) error {
	l.mu.Lock()
	if l.cancel != nil {
		l.cancel()
	}
	l.seq++
	seq := l.seq
	reqCtx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	q := l.state.Query
	l.state.Loading = true
	l.state.Err = nil
	snapshot := l.state
	l.mu.Unlock()
	l.notify(snapshot)

	items, pagination, err := l.fetch(reqCtx, q)

	l.mu.Lock()
	if seq != l.seq {
		// Réponse périmée
		l.mu.Unlock()
		cancel()
		return nil
	}
	l.cancel = nil
	cancel()
	l.state.Loading = false
	if err != nil {
		l.state.Err = err
	} else {
		l.state.Items = items
		l.state.Total = pagination.Total
		l.state.TotalPages = pagination.TotalPages
		l.state.Empty = len(items) == 0
	}
	snapshot = l.state
	l.mu.Unlock()
	l.notify(snapshot)
	return err
}

// Close arrête le debounce et annule la requête en cours
func (l *Lister[T]) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.timer != nil {
		l.timer.Stop()
	}
	if l.cancel != nil {
		l.cancel()
	}
	l.stop()
}

func (l *Lister[T]) notify(state ListState[T]) {
	if l.onChange != nil {
		l.onChange(state)
	}
}

// ListFetcher retourne un Fetcher qui lit une liste paginée de l'API
func ListFetcher[T any](c *Client, path string) Fetcher[T] {
	return func(ctx context.Context, q Query) ([]T, models.Pagination, error) {
		var items []T
		resp, err := c.Get(ctx, q.Path(path), &items)
		if err != nil {
			return nil, models.Pagination{}, err
		}
		return items, resp.Pagination, nil
	}
}
