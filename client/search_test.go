package client

import (
	"context"
	"net/http"
	"reflect"
	"sync"
	"testing"
	"time"

	"portail-citoyen-backend/models"
)

func TestSearchBox(t *testing.T) {
	var mu sync.Mutex
	var queries []string
	srv, _ := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")
		mu.Lock()
		queries = append(queries, r.URL.Path+"?"+q)
		mu.Unlock()
		switch r.URL.Path {
		case "/api/recherche/suggestions":
			writeJSON(w, http.StatusOK, map[string]interface{}{
				"success": true,
				"data":    []models.Suggestion{{Type: "evenements", ID: 1, Titre: "Festival d'été"}},
			})
		case "/api/recherche":
			writeJSON(w, http.StatusOK, map[string]interface{}{
				"success": true,
				"data":    []models.SearchResult{{Type: "evenements", ID: 1, Titre: "Festival d'été"}},
			})
		}
	})

	got := make(chan string, 5)
	box := NewSearchBox(New(srv.URL, nil), NewMemoryStore(), 20*time.Millisecond, func(q string, s []models.Suggestion) {
		if len(s) == 1 {
			got <- q
		}
	})
	defer box.Close()

	for _, q := range []string{"f", "fe", "fes", "fest"} {
		box.Type(q)
	}
	select {
	case q := <-got:
		if q != "fest" {
			t.Errorf("suggestions pour %q, attendu fest", q)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("aucune suggestion reçue")
	}
	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	if !reflect.DeepEqual(queries, []string{"/api/recherche/suggestions?fest"}) {
		t.Errorf("requêtes = %v", queries)
	}
	mu.Unlock()

	// Saisie trop courte : rien ne part
	box.Type("x")
	time.Sleep(50 * time.Millisecond)
	mu.Lock()
	if len(queries) != 1 {
		t.Errorf("aucune requête attendue pour une saisie courte: %v", queries)
	}
	mu.Unlock()

	results, err := box.Search(context.Background(), " festival ", "evenements")
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].Titre != "Festival d'été" {
		t.Errorf("résultats = %+v", results)
	}
	if recent := box.Recent(); len(recent) != 1 || recent[0] != "festival" {
		t.Errorf("historique = %v", recent)
	}
}
