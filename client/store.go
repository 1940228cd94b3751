package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

// Clés du stockage local
const (
	KeyRecentSearches = "recentSearches"
	KeyEvenementDraft = "evenement_draft"
	viewedPrefix      = "viewed_"
)

// MaxRecentSearches borne l'historique des recherches
const MaxRecentSearches = 5

// ErrConnexionRequise est retournée par les actions réservées aux utilisateurs connectés
var ErrConnexionRequise = errors.New("connexion requise")

// Store est un stockage clé/valeur avec expiration (ttl <= 0 : sans expiration)
type Store interface {
	Get(key string) (string, bool)
	Set(key, value string, ttl time.Duration)
	Delete(key string)
	Clear()
}

type entry struct {
	value   string
	expires time.Time
}

// MemoryStore est un Store en mémoire, l'équivalent d'un stockage de session
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
}

// NewMemoryStore crée un stockage vide
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]entry), now: time.Now}
}

func (s *MemoryStore) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return "", false
	}
	if !e.expires.IsZero() && !s.now().Before(e.expires) {
		delete(s.entries, key)
		return "", false
	}
	return e.value, true
}

func (s *MemoryStore) Set(key, value string, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := entry{value: value}
	if ttl > 0 {
		e.expires = s.now().Add(ttl)
	}
	s.entries[key] = e
}

func (s *MemoryStore) Delete(key string) {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
}

func (s *MemoryStore) Clear() {
	s.mu.Lock()
	s.entries = make(map[string]entry)
	s.mu.Unlock()
}

// setIfAbsent pose la clé seulement si elle est absente ou expirée
func setIfAbsent(s Store, mu *sync.Mutex, key, value string, ttl time.Duration) bool {
	mu.Lock()
	defer mu.Unlock()
	if _, ok := s.Get(key); ok {
		return false
	}
	s.Set(key, value, ttl)
	return true
}

// ========== ACCESSEURS TYPÉS ==========

// RecentSearches est l'historique des dernières recherches (la plus récente d'abord)
type RecentSearches struct {
	store Store
	mu    sync.Mutex
}

// NewRecentSearches crée l'accesseur
func NewRecentSearches(store Store) *RecentSearches {
	return &RecentSearches{store: store}
}

// List retourne l'historique
func (r *RecentSearches) List() []string {
	raw, ok := r.store.Get(KeyRecentSearches)
	if !ok {
		return []string{}
	}
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		r.store.Delete(KeyRecentSearches)
		return []string{}
	}
	return out
}

// Add place une recherche en tête, sans doublon (casse ignorée)
func (r *RecentSearches) Add(q string) {
	q = strings.TrimSpace(q)
	if q == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	list := []string{q}
	for _, s := range r.List() {
		if !strings.EqualFold(s, q) {
			list = append(list, s)
		}
	}
	if len(list) > MaxRecentSearches {
		list = list[:MaxRecentSearches]
	}
	buf, _ := json.Marshal(list)
	r.store.Set(KeyRecentSearches, string(buf), 0)
}

// Clear vide l'historique
func (r *RecentSearches) Clear() {
	r.store.Delete(KeyRecentSearches)
}

// Draft conserve un brouillon de formulaire sous une clé
type Draft[T any] struct {
	store Store
	key   string
	ttl   time.Duration
}

// NewDraft crée un brouillon stocké sous key
func NewDraft[T any](store Store, key string, ttl time.Duration) *Draft[T] {
	return &Draft[T]{store: store, key: key, ttl: ttl}
}

// Save enregistre le brouillon
func (d *Draft[T]) Save(v T) error {
	buf, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("erreur lors de l'enregistrement du brouillon: %w", err)
	}
	d.store.Set(d.key, string(buf), d.ttl)
	return nil
}

// Load relit le brouillon ; false s'il n'existe pas ou est illisible
func (d *Draft[T]) Load() (T, bool) {
	var v T
	raw, ok := d.store.Get(d.key)
	if !ok {
		return v, false
	}
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		d.store.Delete(d.key)
		return v, false
	}
	return v, true
}

// Discard supprime le brouillon
func (d *Draft[T]) Discard() {
	d.store.Delete(d.key)
}

// ViewedKey est la clé marquant la consultation d'un contenu dans la session
func ViewedKey(entite string, id int64) string {
	return fmt.Sprintf("%s%s_%d", viewedPrefix, entite, id)
}
