package store

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryCollection keeps documents as decoded JSON objects, so filters and updates see the same field
// names and value shapes as the database-backed collections.
type MemoryCollection[T any] struct {
	mu     sync.RWMutex
	docs   map[string]map[string]any
	ids    []string
	unique []string
}

// NewMemoryCollection returns an empty collection enforcing uniqueness of the given top-level fields.
func NewMemoryCollection[T any](uniqueFields ...string) *MemoryCollection[T] {
	return &MemoryCollection[T]{
		docs:   make(map[string]map[string]any),
		unique: uniqueFields,
	}
}

func (c *MemoryCollection[T]) Insert(_ context.Context, id string, doc *T) error {
	m, err := toDocument(doc)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.docs[id]; ok {
		return ErrDuplicate
	}
	if err := c.checkUnique(id, m); err != nil {
		return err
	}

	c.docs[id] = m
	c.ids = append(c.ids, id)
	return nil
}

func (c *MemoryCollection[T]) Get(_ context.Context, id string) (*T, error) {
	c.mu.RLock()
	m, ok := c.docs[id]
	c.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}

	return fromDocument[T](m)
}

func (c *MemoryCollection[T]) Find(_ context.Context, q Query) ([]T, error) {
	filter, err := normalizeFilter(q.Filter)
	if err != nil {
		return nil, err
	}

	c.mu.RLock()
	matched := make([]map[string]any, 0, len(c.ids))
	for _, id := range c.ids {
		m := c.docs[id]
		if matches(m, filter, q.Exists) {
			matched = append(matched, m)
		}
	}
	c.mu.RUnlock()

	if q.OrderBy != "" {
		sortByTime(matched, q.OrderBy, q.Desc)
	}

	out := make([]T, 0, len(matched))
	for _, m := range matched {
		doc, err := fromDocument[T](m)
		if err != nil {
			return nil, err
		}
		out = append(out, *doc)
	}
	return out, nil
}

func (c *MemoryCollection[T]) Update(_ context.Context, id string, set map[string]any, unset ...string) (*T, error) {
	patch, err := normalizeFilter(set)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	current, ok := c.docs[id]
	if !ok {
		return nil, ErrNotFound
	}

	next := make(map[string]any, len(current)+len(patch))
	for k, v := range current {
		next[k] = v
	}
	for _, k := range unset {
		delete(next, k)
	}
	for k, v := range patch {
		next[k] = v
	}

	if err := c.checkUnique(id, next); err != nil {
		return nil, err
	}

	c.docs[id] = next
	return fromDocument[T](next)
}

func (c *MemoryCollection[T]) Replace(_ context.Context, id string, doc *T) error {
	m, err := toDocument(doc)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.docs[id]; !ok {
		return ErrNotFound
	}
	if err := c.checkUnique(id, m); err != nil {
		return err
	}

	c.docs[id] = m
	return nil
}

func (c *MemoryCollection[T]) Delete(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.docs[id]; !ok {
		return ErrNotFound
	}

	delete(c.docs, id)
	for i, existing := range c.ids {
		if existing == id {
			c.ids = append(c.ids[:i], c.ids[i+1:]...)
			break
		}
	}
	return nil
}

func (c *MemoryCollection[T]) Count(_ context.Context, filter map[string]any) (int64, error) {
	normalized, err := normalizeFilter(filter)
	if err != nil {
		return 0, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	var n int64
	for _, m := range c.docs {
		if matches(m, normalized, nil) {
			n++
		}
	}
	return n, nil
}

// checkUnique must be called with c.mu held.
func (c *MemoryCollection[T]) checkUnique(id string, m map[string]any) error {
	for _, field := range c.unique {
		v, ok := m[field]
		if !ok || v == nil {
			continue
		}
		for otherID, other := range c.docs {
			if otherID != id && reflect.DeepEqual(other[field], v) {
				return ErrDuplicate
			}
		}
	}
	return nil
}

func toDocument(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("store: encode document: %w", err)
	}

	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("store: decode document: %w", err)
	}
	return m, nil
}

func fromDocument[T any](m map[string]any) (*T, error) {
	raw, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("store: encode document: %w", err)
	}

	var doc T
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("store: decode document: %w", err)
	}
	return &doc, nil
}

// normalizeFilter converts values to their JSON-decoded form so they compare equal to stored values.
func normalizeFilter(in map[string]any) (map[string]any, error) {
	if len(in) == 0 {
		return nil, nil
	}

	out, err := toDocument(in)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func matches(m map[string]any, filter map[string]any, exists []string) bool {
	for k, want := range filter {
		if !reflect.DeepEqual(m[k], want) {
			return false
		}
	}
	for _, path := range exists {
		if lookup(m, path) == nil {
			return false
		}
	}
	return true
}

func lookup(m map[string]any, path string) any {
	var cur any = m
	for _, key := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = obj[key]
	}
	return cur
}

func sortByTime(docs []map[string]any, path string, desc bool) {
	key := func(m map[string]any) (time.Time, bool) {
		s, ok := lookup(m, path).(string)
		if !ok {
			return time.Time{}, false
		}
		t, err := time.Parse(time.RFC3339Nano, s)
		return t, err == nil
	}

	sort.SliceStable(docs, func(i, j int) bool {
		ti, okI := key(docs[i])
		tj, okJ := key(docs[j])
		switch {
		case !okI || !okJ:
			return okI && !okJ
		case desc:
			return ti.After(tj)
		default:
			return ti.Before(tj)
		}
	})
}
