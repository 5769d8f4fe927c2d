package resource

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryRegistry holds one in-memory store per collection and resolves
// cross-collection references, mirroring what the Mongo database handle does
// in production. Tests run entirely on it.
type MemoryRegistry struct {
	mu     sync.RWMutex
	stores map[string]*MemoryStore
}

func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{stores: make(map[string]*MemoryStore)}
}

// Store returns the registered store for the schema, creating it on first use.
func (r *MemoryRegistry) Store(schema *Schema) *MemoryStore {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.stores[schema.Collection]; ok {
		return s
	}
	s := &MemoryStore{
		schema:  schema,
		records: make(map[string]*Record),
	}
	r.stores[schema.Collection] = s
	return s
}

// Exists implements ReferenceResolver.
func (r *MemoryRegistry) Exists(ctx context.Context, collection, id string) (bool, error) {
	r.mu.RLock()
	s, ok := r.stores[collection]
	r.mu.RUnlock()
	if !ok {
		return false, nil
	}

	_, err := s.GetByID(ctx, id)
	if err != nil {
		return false, nil
	}
	return true, nil
}

// MemoryStore is the in-memory Store implementation. It enforces the same
// uniqueness guarantees the Mongo indexes do, so tests exercise the same
// failure paths.
type MemoryStore struct {
	mu      sync.RWMutex
	schema  *Schema
	records map[string]*Record
}

func NewMemoryStore(schema *Schema) *MemoryStore {
	return &MemoryStore{
		schema:  schema,
		records: make(map[string]*Record),
	}
}

func (s *MemoryStore) Create(ctx context.Context, rec *Record) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.schema.Fields {
		f := &s.schema.Fields[i]
		if !f.Unique {
			continue
		}
		value, ok := rec.Fields[f.Name]
		if !ok {
			continue
		}
		if s.countLocked(f.Name, value, "") > 0 {
			return nil, &ConflictError{Field: f.Name, Value: toString(value)}
		}
	}

	now := time.Now().UTC()
	stored := copyRecord(rec)
	stored.ID = primitive.NewObjectID().Hex()
	stored.CreatedAt = now
	stored.UpdatedAt = now

	s.records[stored.ID] = stored
	return copyRecord(stored), nil
}

func (s *MemoryStore) GetByID(ctx context.Context, id string) (*Record, error) {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return nil, ErrMalformedID
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyRecord(rec), nil
}

func (s *MemoryStore) List(ctx context.Context, q Query) ([]*Record, error) {
	s.mu.RLock()
	matched := make([]*Record, 0)
	for _, rec := range s.records {
		if matchesFilter(rec, q.Filter) {
			matched = append(matched, copyRecord(rec))
		}
	}
	s.mu.RUnlock()

	sortKeys := q.Sort
	if len(sortKeys) == 0 {
		sortKeys = s.schema.DefaultSort
	}
	s.sortRecords(matched, sortKeys)

	return matched, nil
}

func (s *MemoryStore) Update(ctx context.Context, id string, fields map[string]interface{}) (*Record, error) {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return nil, ErrMalformedID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok {
		return nil, ErrNotFound
	}

	for i := range s.schema.Fields {
		f := &s.schema.Fields[i]
		if !f.Unique {
			continue
		}
		value, present := fields[f.Name]
		if !present {
			continue
		}
		if s.countLocked(f.Name, value, id) > 0 {
			return nil, &ConflictError{Field: f.Name, Value: toString(value)}
		}
	}

	for name, value := range fields {
		rec.Fields[name] = value
	}
	rec.UpdatedAt = time.Now().UTC()

	return copyRecord(rec), nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return ErrMalformedID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; !ok {
		return ErrNotFound
	}
	delete(s.records, id)
	return nil
}

func (s *MemoryStore) CountWhere(ctx context.Context, field string, value interface{}, excludeID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.countLocked(field, value, excludeID), nil
}

func (s *MemoryStore) countLocked(field string, value interface{}, excludeID string) int64 {
	var count int64
	for id, rec := range s.records {
		if id == excludeID {
			continue
		}
		if existing, ok := rec.Fields[field]; ok && equalValues(existing, value) {
			count++
		}
	}
	return count
}

// sortRecords orders the slice by the sort keys, translating ranked enum
// keys into declaration-order ranks the way the Mongo aggregation does.
func (s *MemoryStore) sortRecords(records []*Record, keys []SortKey) {
	if len(keys) == 0 {
		return
	}

	sort.SliceStable(records, func(i, j int) bool {
		for _, k := range keys {
			var cmp int
			if k.Ranked {
				ri := s.schema.EnumRank(k.Field, toString(records[i].Fields[k.Field]))
				rj := s.schema.EnumRank(k.Field, toString(records[j].Fields[k.Field]))
				cmp = compareInts(ri, rj)
			} else {
				cmp = compareValues(fieldOrMeta(records[i], k.Field), fieldOrMeta(records[j], k.Field))
			}
			if cmp == 0 {
				continue
			}
			if k.Desc {
				return cmp > 0
			}
			return cmp < 0
		}
		return false
	})
}

func fieldOrMeta(rec *Record, field string) interface{} {
	switch field {
	case "createdAt":
		return rec.CreatedAt
	case "updatedAt":
		return rec.UpdatedAt
	}
	return rec.Fields[field]
}

func matchesFilter(rec *Record, filter map[string]interface{}) bool {
	for name, want := range filter {
		got, ok := rec.Fields[name]
		if !ok || !equalValues(got, want) {
			return false
		}
	}
	return true
}

func copyRecord(rec *Record) *Record {
	fields := make(map[string]interface{}, len(rec.Fields))
	for name, value := range rec.Fields {
		if list, ok := value.([]string); ok {
			value = append([]string(nil), list...)
		}
		fields[name] = value
	}
	return &Record{
		ID:        rec.ID,
		Fields:    fields,
		OwnerID:   rec.OwnerID,
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}
}

func equalValues(a, b interface{}) bool {
	return compareValues(a, b) == 0
}

// compareValues orders mixed field values; missing values sort first.
func compareValues(a, b interface{}) int {
	if a == nil && b == nil {
		return 0
	}
	if a == nil {
		return -1
	}
	if b == nil {
		return 1
	}

	switch av := a.(type) {
	case string:
		if bv, ok := b.(string); ok {
			switch {
			case av < bv:
				return -1
			case av > bv:
				return 1
			}
			return 0
		}
	case float64:
		if bv, ok := b.(float64); ok {
			switch {
			case av < bv:
				return -1
			case av > bv:
				return 1
			}
			return 0
		}
	case time.Time:
		if bv, ok := b.(time.Time); ok {
			switch {
			case av.Before(bv):
				return -1
			case av.After(bv):
				return 1
			}
			return 0
		}
	case decimal.Decimal:
		if bv, ok := b.(decimal.Decimal); ok {
			return av.Cmp(bv)
		}
	}

	// Incomparable types: fall back to string form.
	as, bs := toString(a), toString(b)
	switch {
	case as < bs:
		return -1
	case as > bs:
		return 1
	}
	return 0
}

func compareInts(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func toString(v interface{}) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	if t, ok := v.(time.Time); ok {
		return t.Format(time.RFC3339Nano)
	}
	if d, ok := v.(decimal.Decimal); ok {
		return d.String()
	}
	if f, ok := v.(float64); ok {
		return decimal.NewFromFloat(f).String()
	}
	return ""
}
