package client

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// DefaultCacheTTL est la durée de vie par défaut d'une réponse en cache
const DefaultCacheTTL = 30 * time.Second

type cached struct {
	resp    *Response
	expires time.Time
}

// RequestCache partage les réponses GET entre les composants : une seule
// requête par URL est en vol, et la réponse est réutilisée pendant ttl.
type RequestCache struct {
	client *Client
	ttl    time.Duration
	group  singleflight.Group
	now    func() time.Time

	mu      sync.Mutex
	entries map[string]cached
	gens    map[string]uint64
}

// NewRequestCache crée un cache au-dessus du client
func NewRequestCache(client *Client, ttl time.Duration) *RequestCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &RequestCache{
		client:  client,
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cached),
		gens:    make(map[string]uint64),
	}
}

// Get retourne la réponse de path, depuis le cache si elle est encore fraîche.
// L'annulation de ctx libère l'appelant sans interrompre la requête partagée.
func (c *RequestCache) Get(ctx context.Context, path string, out interface{}) (*Response, error) {
	if resp, ok := c.lookup(path); ok {
		return resp, resp.Decode(out)
	}

	c.mu.Lock()
	gen := c.gens[path]
	c.gens[path] = gen
	c.mu.Unlock()

	ch := c.group.DoChan(path, func() (interface{}, error) {
		// Contexte détaché : la requête sert tous les appelants en attente
		fetchCtx, cancel := context.WithTimeout(context.Background(), DefaultTimeout)
		defer cancel()
		resp, err := c.client.Get(fetchCtx, path, nil)
		if err != nil {
			return nil, err
		}
		// Une invalidation pendant le vol rend la réponse inutilisable pour le cache
		c.mu.Lock()
		if c.gens[path] == gen {
			c.entries[path] = cached{resp: resp, expires: c.now().Add(c.ttl)}
		}
		c.mu.Unlock()
		return resp, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		resp := res.Val.(*Response)
		return resp, resp.Decode(out)
	}
}

// Invalidate supprime les entrées dont l'URL commence par prefix. Les requêtes
// encore en vol sur ces URL ne rempliront pas le cache et les appels suivants
// repartent sur une nouvelle requête.
func (c *RequestCache) Invalidate(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.entries {
		if strings.HasPrefix(k, prefix) {
			delete(c.entries, k)
		}
	}
	for k := range c.gens {
		if strings.HasPrefix(k, prefix) {
			c.gens[k]++
			c.group.Forget(k)
		}
	}
}

func (c *RequestCache) lookup(path string) (*Response, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[path]
	if !ok {
		return nil, false
	}
	if !c.now().Before(e.expires) {
		delete(c.entries, path)
		return nil, false
	}
	// Chaque appelant reçoit sa propre copie des octets
	copied := *e.resp
	copied.Data = append(json.RawMessage(nil), e.resp.Data...)
	return &copied, true
}
