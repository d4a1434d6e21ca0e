package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// Memory is an in-process Store used by unit tests and for local development
// when no store URL is configured. Documents are held as raw JSON so reads,
// filters and updates see exactly what a remote document store would see.
type Memory struct {
	mu          sync.RWMutex
	collections map[string]map[string]json.RawMessage
}

var _ Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{collections: make(map[string]map[string]json.RawMessage)}
}

// collection is safe under a read lock: it never mutates the collection map
// and returns nil when the collection does not exist yet.
func (m *Memory) collection(name string) map[string]json.RawMessage {
	return m.collections[name]
}

// ensureCollection must be called under the write lock.
func (m *Memory) ensureCollection(name string) map[string]json.RawMessage {
	col, ok := m.collections[name]
	if !ok {
		col = make(map[string]json.RawMessage)
		m.collections[name] = col
	}
	return col
}

func (m *Memory) Exists(_ context.Context, collection, id string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.collection(collection)[id]
	return ok, nil
}

func (m *Memory) Get(_ context.Context, collection, id string, out any) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	raw, ok := m.collection(collection)[id]
	if !ok {
		return ErrNotFound
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode document %s/%s: %w", collection, id, err)
	}
	return nil
}

func (m *Memory) Create(_ context.Context, collection, id string, doc any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	col := m.ensureCollection(collection)
	if _, ok := col[id]; ok {
		return ErrConflict
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document %s/%s: %w", collection, id, err)
	}
	col[id] = raw
	return nil
}

func (m *Memory) Delete(_ context.Context, collection, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	col := m.collection(collection)
	if _, ok := col[id]; !ok {
		return ErrNotFound
	}
	delete(col, id)
	return nil
}

func (m *Memory) Update(_ context.Context, collection, id string, u Update) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	col := m.collection(collection)
	raw, ok := col[id]
	if !ok {
		// Tolerated: cascades strip back-references from documents that may
		// already be gone.
		return nil
	}

	doc, err := decodeMap(raw)
	if err != nil {
		return err
	}
	if err := applyUpdate(doc, u); err != nil {
		return err
	}

	updated, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document %s/%s: %w", collection, id, err)
	}
	col[id] = updated
	return nil
}

func (m *Memory) Search(_ context.Context, collection string, q Query, out any) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	raws := make([]json.RawMessage, 0)
	for _, id := range m.sortedIDs(collection) {
		raw := m.collection(collection)[id]
		doc, err := decodeMap(raw)
		if err != nil {
			return err
		}
		if matches(doc, q) {
			raws = append(raws, raw)
		}
	}

	joined, err := json.Marshal(raws)
	if err != nil {
		return fmt.Errorf("encode search result: %w", err)
	}
	if err := json.Unmarshal(joined, out); err != nil {
		return fmt.Errorf("decode search result: %w", err)
	}
	return nil
}

func (m *Memory) DeleteByQuery(_ context.Context, collection string, q Query) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	col := m.collection(collection)
	var deleted int64
	for id, raw := range col {
		doc, err := decodeMap(raw)
		if err != nil {
			return deleted, err
		}
		if matches(doc, q) {
			delete(col, id)
			deleted++
		}
	}
	return deleted, nil
}

func (m *Memory) UpdateByQuery(_ context.Context, collection string, q Query, u Update) (int64, error) {
	if len(u.AppendUnique) > 0 {
		return 0, fmt.Errorf("AppendUnique is not supported in bulk updates")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	col := m.collection(collection)
	var updated int64
	for id, raw := range col {
		doc, err := decodeMap(raw)
		if err != nil {
			return updated, err
		}
		if !matches(doc, q) {
			continue
		}
		if err := applyUpdate(doc, u); err != nil {
			return updated, err
		}
		next, err := json.Marshal(doc)
		if err != nil {
			return updated, fmt.Errorf("encode document %s/%s: %w", collection, id, err)
		}
		col[id] = next
		updated++
	}
	return updated, nil
}

func (m *Memory) CountByField(_ context.Context, collection string, q Query, field string) (map[string]int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	counts := make(map[string]int64)
	for _, raw := range m.collection(collection) {
		doc, err := decodeMap(raw)
		if err != nil {
			return nil, err
		}
		if !matches(doc, q) {
			continue
		}
		if v, ok := fieldValue(doc, field); ok {
			if s, ok := v.(string); ok {
				counts[s]++
			}
		}
	}
	return counts, nil
}

func (m *Memory) Ping(context.Context) error { return nil }

func (m *Memory) sortedIDs(collection string) []string {
	col := m.collection(collection)
	ids := make([]string, 0, len(col))
	for id := range col {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// --- document helpers ---

func decodeMap(raw json.RawMessage) (map[string]any, error) {
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return doc, nil
}

// fieldValue resolves a dotted path against nested objects.
func fieldValue(doc map[string]any, path string) (any, bool) {
	parts := strings.Split(path, ".")
	var cur any = doc
	for _, p := range parts {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = obj[p]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

func matches(doc map[string]any, q Query) bool {
	for field, want := range q.Eq {
		if !valueEquals(doc, field, want) {
			return false
		}
	}
	for field, wants := range q.In {
		hit := false
		for _, want := range wants {
			if valueEquals(doc, field, want) {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}
	for field, id := range q.MemberID {
		if !memberExists(doc, field, id) {
			return false
		}
	}
	if q.Range != nil {
		v, ok := fieldValue(doc, q.Range.Field)
		if !ok {
			return false
		}
		s, ok := v.(string)
		if !ok {
			return false
		}
		ts, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return false
		}
		if !q.Range.From.IsZero() && ts.Before(q.Range.From) {
			return false
		}
		if !q.Range.To.IsZero() && !ts.Before(q.Range.To) {
			return false
		}
	}
	return true
}

// valueEquals matches scalar equality, or containment when the stored field
// is an array (hashtag membership relies on this).
func valueEquals(doc map[string]any, field, want string) bool {
	v, ok := fieldValue(doc, field)
	if !ok {
		return false
	}
	switch val := v.(type) {
	case string:
		return val == want
	case []any:
		for _, item := range val {
			if s, ok := item.(string); ok && s == want {
				return true
			}
		}
	}
	return false
}

func memberExists(doc map[string]any, field, id string) bool {
	v, ok := fieldValue(doc, field)
	if !ok {
		return false
	}
	arr, ok := v.([]any)
	if !ok {
		return false
	}
	for _, item := range arr {
		if entry, ok := item.(map[string]any); ok {
			if entryID, ok := entry["id"].(string); ok && entryID == id {
				return true
			}
		}
	}
	return false
}

func applyUpdate(doc map[string]any, u Update) error {
	for field, member := range u.AppendUnique {
		if memberExists(doc, field, member.ID) {
			continue
		}
		entry, err := normalize(member.Doc)
		if err != nil {
			return err
		}
		arr, _ := doc[field].([]any)
		doc[field] = append(arr, entry)
	}
	for field, id := range u.RemoveID {
		arr, ok := doc[field].([]any)
		if !ok {
			continue
		}
		kept := make([]any, 0, len(arr))
		for _, item := range arr {
			if entry, ok := item.(map[string]any); ok {
				if entryID, ok := entry["id"].(string); ok && entryID == id {
					continue
				}
			}
			kept = append(kept, item)
		}
		doc[field] = kept
	}
	for field, value := range u.Set {
		entry, err := normalize(value)
		if err != nil {
			return err
		}
		doc[field] = entry
	}
	return nil
}

// normalize round-trips a value through JSON so stored documents only ever
// contain plain JSON types.
func normalize(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode update value: %w", err)
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode update value: %w", err)
	}
	return out, nil
}
