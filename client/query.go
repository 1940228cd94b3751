package client

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// Query décrit une page de liste : pagination, recherche et filtres propres à l'entité
type Query struct {
	Page    int
	Limit   int
	Search  string
	Sort    string
	Order   string
	Filters map[string]string
}

// Encode construit la query string ; les valeurs vides ne sont jamais envoyées
func (q Query) Encode() string {
	v := url.Values{}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if s := strings.TrimSpace(q.Search); s != "" {
		v.Set("search", s)
	}
	if q.Sort != "" {
		v.Set("sort", q.Sort)
	}
	if q.Order != "" {
		v.Set("order", q.Order)
	}

	keys := make([]string, 0, len(q.Filters))
	for k := range q.Filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if val := strings.TrimSpace(q.Filters[k]); val != "" {
			v.Set(k, val)
		}
	}
	return v.Encode()
}

// Path ajoute la query string à un chemin
func (q Query) Path(base string) string {
	if enc := q.Encode(); enc != "" {
		return base + "?" + enc
	}
	return base
}

// With retourne une copie de la requête avec un filtre modifié, ramenée à la page 1
func (q Query) With(key, value string) Query {
	filters := make(map[string]string, len(q.Filters)+1)
	for k, v := range q.Filters {
		filters[k] = v
	}
	filters[key] = value
	q.Filters = filters
	q.Page = 1
	return q
}

// Reset retire la recherche et les filtres en conservant la taille de page
func (q Query) Reset() Query {
	return Query{Page: 1, Limit: q.Limit, Sort: q.Sort, Order: q.Order}
}
