package client

import (
	"context"
	"log"
	"net/url"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"portail-citoyen-backend/models"
)

// MinSearchLength est la longueur minimale d'une recherche
const MinSearchLength = 2

// SearchBox gère le champ de recherche globale : suggestions pendant la saisie
// et historique des recherches validées.
type SearchBox struct {
	client    *Client
	recent    *RecentSearches
	debounce  time.Duration
	onSuggest func(q string, suggestions []models.Suggestion)

	mu     sync.Mutex
	timer  *time.Timer
	seq    uint64
	cancel context.CancelFunc
}

// NewSearchBox crée le champ de recherche
func NewSearchBox(client *Client, store Store, debounce time.Duration, onSuggest func(string, []models.Suggestion)) *SearchBox {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &SearchBox{
		client:    client,
		recent:    NewRecentSearches(store),
		debounce:  debounce,
		onSuggest: onSuggest,
	}
}

// Recent retourne l'historique des recherches
func (s *SearchBox) Recent() []string {
	return s.recent.List()
}

// Type traite une saisie : les suggestions partent après le délai de debounce
// et seules celles de la dernière saisie sont transmises.
func (s *SearchBox) Type(q string) {
	q = strings.TrimSpace(q)
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.seq++
	if utf8.RuneCountInString(q) < MinSearchLength {
		return
	}

	seq := s.seq
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.timer = time.AfterFunc(s.debounce, func() {
		suggestions, err := s.Suggestions(ctx, q)
		if err != nil {
			if ctx.Err() == nil {
				log.Printf("⚠️  Suggestions %q: %v", q, err)
			}
			return
		}
		s.mu.Lock()
		current := seq == s.seq
		s.mu.Unlock()
		if current && s.onSuggest != nil {
			s.onSuggest(q, suggestions)
		}
	})
}

// Suggestions interroge l'autocomplétion
func (s *SearchBox) Suggestions(ctx context.Context, q string) ([]models.Suggestion, error) {
	var out []models.Suggestion
	if _, err := s.client.Get(ctx, "/api/recherche/suggestions?q="+url.QueryEscape(q), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Search lance la recherche complète et l'ajoute à l'historique
func (s *SearchBox) Search(ctx context.Context, q, typ string) ([]models.SearchResult, error) {
	q = strings.TrimSpace(q)
	v := url.Values{"q": {q}}
	if typ != "" {
		v.Set("type", typ)
	}

	var out []models.SearchResult
	if _, err := s.client.Get(ctx, "/api/recherche?"+v.Encode(), &out); err != nil {
		return nil, err
	}
	s.recent.Add(q)
	return out, nil
}

// Close annule la saisie en attente
func (s *SearchBox) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
	}
	if s.cancel != nil {
		s.cancel()
	}
}
