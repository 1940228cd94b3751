package client

import (
	"net/url"
	"testing"
)

func TestQueryEncode(t *testing.T) {
	q := Query{Page: 2, Search: "ecole", Filters: map[string]string{"type": "EDUCATION"}}
	values, err := url.ParseQuery(q.Encode())
	if err != nil {
		t.Fatal(err)
	}
	for k, want := range map[string]string{"page": "2", "search": "ecole", "type": "EDUCATION"} {
		if got := values.Get(k); got != want {
			t.Errorf("%s = %q, attendu %q", k, got, want)
		}
	}

	q.Search = "   "
	q.Filters["communeId"] = ""
	values, _ = url.ParseQuery(q.Encode())
	if _, ok := values["search"]; ok {
		t.Error("une recherche vide ne doit pas être envoyée")
	}
	if _, ok := values["communeId"]; ok {
		t.Error("un filtre vide ne doit pas être envoyé")
	}

	if got := (Query{}).Path("/api/evenements"); got != "/api/evenements" {
		t.Errorf("Path = %q", got)
	}
}

func TestQueryWithReset(t *testing.T) {
	q := Query{Page: 4, Limit: 12, Search: "fête", Filters: map[string]string{"type": "CULTURE"}}

	next := q.With("communeId", "3")
	if next.Page != 1 || next.Filters["communeId"] != "3" || next.Filters["type"] != "CULTURE" {
		t.Errorf("With = %+v", next)
	}
	if _, ok := q.Filters["communeId"]; ok {
		t.Error("With ne doit pas modifier la requête d'origine")
	}

	reset := q.Reset()
	if reset.Search != "" || len(reset.Filters) != 0 || reset.Limit != 12 || reset.Page != 1 {
		t.Errorf("Reset = %+v", reset)
	}
}
