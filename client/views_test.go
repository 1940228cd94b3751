package client

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestViewGuard(t *testing.T) {
	var mu sync.Mutex
	paths := map[string]int{}
	srv, calls := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		paths[r.URL.Path]++
		mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	})

	c := New(srv.URL, nil)
	session := NewMemoryStore()
	g := NewViewGuard(c, session)
	ctx := context.Background()

	// Appels concurrents pour le même contenu : un seul incrément
	var wg sync.WaitGroup
	var sent int32
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := g.MarkViewed(ctx, "evenements", 3); ok {
				atomic.AddInt32(&sent, 1)
			}
		}()
	}
	wg.Wait()
	if sent != 1 || count(&mu, paths, "/api/evenements/3/vues") != 1 {
		t.Errorf("un seul incrément attendu: sent=%d", sent)
	}

	if ok, err := g.MarkViewed(ctx, "evenements", 4); !ok || err != nil {
		t.Errorf("un autre contenu doit être compté: %t %v", ok, err)
	}

	// Nouvelle session : le contenu peut être recompté
	session.Clear()
	if ok, _ := g.MarkViewed(ctx, "evenements", 3); !ok {
		t.Error("une nouvelle session devrait recompter la vue")
	}

	// Participation réservée aux utilisateurs connectés
	before := atomic.LoadInt32(calls)
	if err := g.Participate(ctx, "campagnes", 1); err != ErrConnexionRequise {
		t.Errorf("err = %v, attendu ErrConnexionRequise", err)
	}
	if atomic.LoadInt32(calls) != before {
		t.Error("aucun appel ne doit partir sans session")
	}

	c.SetToken("jeton")
	if err := g.Participate(ctx, "campagnes", 1); err != nil {
		t.Fatal(err)
	}
	if count(&mu, paths, "/api/campagnes/1/participer") != 1 {
		t.Error("participation non envoyée")
	}
}

func TestViewGuard_echecPuisNouvelEssai(t *testing.T) {
	var n int32
	srv, calls := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&n, 1) == 1 {
			writeError(w, http.StatusServiceUnavailable, "INDISPONIBLE", "Service indisponible")
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	})
	g := NewViewGuard(New(srv.URL, nil), NewMemoryStore())
	ctx := context.Background()

	// Échec : la marque de session est retirée
	if sent, err := g.MarkViewed(ctx, "actualites", 7); !sent || err == nil {
		t.Fatalf("premier envoi: sent=%t err=%v", sent, err)
	}
	if sent, err := g.MarkViewed(ctx, "actualites", 7); !sent || err != nil {
		t.Fatalf("nouvel essai: sent=%t err=%v", sent, err)
	}
	if sent, _ := g.MarkViewed(ctx, "actualites", 7); sent {
		t.Error("après un succès, la vue n'est plus renvoyée")
	}
	if got := atomic.LoadInt32(calls); got != 2 {
		t.Errorf("requêtes = %d, attendu 2", got)
	}

	// Variante non bloquante
	done := make(chan bool, 1)
	g.MarkViewedAsync("actualites", 8, func(sent bool, err error) {
		done <- sent && err == nil
	})
	select {
	case ok := <-done:
		if !ok {
			t.Error("l'envoi en arrière-plan a échoué")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("l'envoi en arrière-plan n'a pas abouti")
	}
}

func count(mu *sync.Mutex, paths map[string]int, path string) int {
	mu.Lock()
	defer mu.Unlock()
	return paths[path]
}
