package database

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"portail-citoyen-backend/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryStore implémente Store en mémoire.
// Les documents sont conservés sous forme BSON pour reproduire le comportement
// des filtres MongoDB (noms de champs, omitempty, types numériques).
type MemoryStore[T any] struct {
	mu     sync.RWMutex
	name   string
	seq    int64
	docs   map[int64]bson.M
	unique [][]string
}

// NewMemoryStore crée un store mémoire ; chaque liste de champs passée est une clé unique
func NewMemoryStore[T any](name string, unique ...[]string) *MemoryStore[T] {
	return &MemoryStore[T]{
		name:   name,
		docs:   make(map[int64]bson.M),
		unique: unique,
	}
}

func (s *MemoryStore[T]) Name() string {
	return s.name
}

func (s *MemoryStore[T]) Create(_ context.Context, doc *T) error {
	d, ok := any(doc).(models.Document)
	if !ok {
		return fmt.Errorf("le type %T n'embarque pas models.Base", doc)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := d.GetID()
	if id == 0 {
		id = s.seq + 1
	}
	if _, exists := s.docs[id]; exists {
		return ErrConflit
	}

	d.SetID(id)
	d.Touch(now())

	m, err := toM(doc)
	if err != nil {
		return err
	}
	if s.violatesUnique(id, m) {
		return ErrConflit
	}
	if id > s.seq {
		s.seq = id
	}
	s.docs[id] = m
	return nil
}

func (s *MemoryStore[T]) FindByID(ctx context.Context, id int64) (*T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.docs[id]
	if !ok {
		return nil, nil
	}
	return fromM[T](m)
}

func (s *MemoryStore[T]) FindOne(_ context.Context, equals map[string]interface{}) (*T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, id := range s.sortedIDs() {
		m := s.docs[id]
		if matches(m, ListFilter{Equals: equals}) {
			return fromM[T](m)
		}
	}
	return nil, nil
}

func (s *MemoryStore[T]) List(_ context.Context, f ListFilter) ([]T, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	selected := s.selectDocs(f)
	field, dir := sortOf(f)
	sort.SliceStable(selected, func(i, j int) bool {
		c := compare(selected[i][field], selected[j][field])
		if c == 0 {
			c = compare(selected[i][ChampID], selected[j][ChampID])
		}
		if dir < 0 {
			return c > 0
		}
		return c < 0
	})

	total := int64(len(selected))
	if f.Limit > 0 {
		start := offset(f)
		if start > total {
			start = total
		}
		end := start + int64(f.Limit)
		if end > total {
			end = total
		}
		selected = selected[start:end]
	}

	items := make([]T, 0, len(selected))
	for _, m := range selected {
		doc, err := fromM[T](m)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, *doc)
	}
	return items, total, nil
}

func (s *MemoryStore[T]) Count(_ context.Context, f ListFilter) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.selectDocs(f))), nil
}

func (s *MemoryStore[T]) CountBy(_ context.Context, field string, f ListFilter) (map[string]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int64)
	for _, m := range s.selectDocs(f) {
		counts[fmt.Sprint(m[field])]++
	}
	return counts, nil
}

func (s *MemoryStore[T]) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) (*T, error) {
	return s.UpdateFieldsIf(ctx, id, nil, fields)
}

func (s *MemoryStore[T]) UpdateFieldsIf(_ context.Context, id int64, expected, fields map[string]interface{}) (*T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.docs[id]
	if !ok || !matches(current, ListFilter{Equals: expected}) {
		return nil, nil
	}

	set := bson.M{ChampDateModification: now()}
	for k, v := range fields {
		set[k] = v
	}
	patch, err := toM(set)
	if err != nil {
		return nil, err
	}

	updated := make(bson.M, len(current)+len(patch))
	for k, v := range current {
		updated[k] = v
	}
	for k, v := range patch {
		updated[k] = v
	}
	if s.violatesUnique(id, updated) {
		return nil, ErrConflit
	}

	s.docs[id] = updated
	return fromM[T](updated)
}

func (s *MemoryStore[T]) Increment(_ context.Context, id int64, field string, delta int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.docs[id]
	if !ok {
		return ErrIntrouvable
	}
	var current int64
	if n, ok := normalize(m[field]).(float64); ok {
		current = int64(n)
	}
	m[field] = current + delta
	return nil
}

func (s *MemoryStore[T]) Delete(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.docs[id]; !ok {
		return false, nil
	}
	delete(s.docs, id)
	return true, nil
}

func (s *MemoryStore[T]) DeleteWhere(_ context.Context, f ListFilter) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for id, m := range s.docs {
		if matches(m, f) {
			delete(s.docs, id)
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore[T]) sortedIDs() []int64 {
	ids := make([]int64, 0, len(s.docs))
	for id := range s.docs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (s *MemoryStore[T]) selectDocs(f ListFilter) []bson.M {
	out := make([]bson.M, 0)
	for _, id := range s.sortedIDs() {
		if m := s.docs[id]; matches(m, f) {
			out = append(out, m)
		}
	}
	return out
}

func (s *MemoryStore[T]) violatesUnique(id int64, m bson.M) bool {
	for _, key := range s.unique {
		for otherID, other := range s.docs {
			if otherID == id {
				continue
			}
			same := true
			for _, field := range key {
				if normalize(m[field]) != normalize(other[field]) {
					same = false
					break
				}
			}
			if same {
				return true
			}
		}
	}
	return false
}

func matches(m bson.M, f ListFilter) bool {
	for k, v := range f.Equals {
		if normalize(m[k]) != normalize(v) {
			return false
		}
	}
	for k, vs := range f.In {
		if !containsValue(vs, m[k]) {
			return false
		}
	}
	for k, vs := range f.NotIn {
		if containsValue(vs, m[k]) {
			return false
		}
	}

	if f.Search != "" && len(f.SearchFields) > 0 {
		needle := strings.ToLower(f.Search)
		found := false
		for _, field := range f.SearchFields {
			if str, ok := m[field].(string); ok && strings.Contains(strings.ToLower(str), needle) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if f.DateField != "" && (f.Since != nil || f.Until != nil) {
		at, ok := normalize(m[f.DateField]).(millis)
		if !ok {
			return false
		}
		if f.Since != nil && at < millis(f.Since.UnixMilli()) {
			return false
		}
		if f.Until != nil && at > millis(f.Until.UnixMilli()) {
			return false
		}
	}
	return true
}

func containsValue(values []interface{}, v interface{}) bool {
	nv := normalize(v)
	for _, candidate := range values {
		if normalize(candidate) == nv {
			return true
		}
	}
	return false
}

type millis int64

// normalize ramène une valeur à un type comparable indépendamment de son origine (BSON ou Go)
func normalize(v interface{}) interface{} {
	switch x := v.(type) {
	case nil:
		return nil
	case primitive.DateTime:
		return millis(int64(x))
	case time.Time:
		return millis(x.UnixMilli())
	case *time.Time:
		if x == nil {
			return nil
		}
		return millis(x.UnixMilli())
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return rv.String()
	case reflect.Bool:
		return rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	}
	return fmt.Sprint(v)
}

func compare(a, b interface{}) int {
	na, nb := normalize(a), normalize(b)
	switch {
	case na == nil && nb == nil:
		return 0
	case na == nil:
		return -1
	case nb == nil:
		return 1
	}

	switch x := na.(type) {
	case float64:
		if y, ok := nb.(float64); ok {
			return cmpOrdered(x, y)
		}
	case millis:
		if y, ok := nb.(millis); ok {
			return cmpOrdered(x, y)
		}
	case string:
		if y, ok := nb.(string); ok {
			return cmpOrdered(x, y)
		}
	case bool:
		if y, ok := nb.(bool); ok && x != y {
			if x {
				return 1
			}
			return -1
		}
		return 0
	}
	return cmpOrdered(fmt.Sprint(na), fmt.Sprint(nb))
}

func cmpOrdered[V float64 | millis | string](a, b V) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func toM(v interface{}) (bson.M, error) {
	raw, err := bson.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("erreur lors de l'encodage BSON: %w", err)
	}
	var m bson.M
	if err := bson.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("erreur lors du décodage BSON: %w", err)
	}
	return m, nil
}

func fromM[T any](m bson.M) (*T, error) {
	raw, err := bson.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("erreur lors de l'encodage BSON: %w", err)
	}
	var doc T
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("erreur lors du décodage BSON: %w", err)
	}
	return &doc, nil
}
