package resource

import (
	"context"
	"time"
)

// Record is one persisted resource instance. Fields hold the schema-typed
// values under their declared names; everything else is server-assigned.
type Record struct {
	ID        string // 24-hex, assigned exactly once at creation
	Fields    map[string]interface{}
	OwnerID   string // acting user who created the record, when the schema attaches owners
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Query selects and orders records for List.
type Query struct {
	// Filter is exact-match on filterable fields.
	Filter map[string]interface{}

	// Sort overrides the schema's default sort when non-empty.
	Sort []SortKey
}

// Store is the persistence contract for one resource collection. The Mongo
// implementation backs production; the in-memory one backs tests.
//
// GetByID, Update and Delete distinguish a malformed identifier
// (ErrMalformedID) from a well-formed but absent one (ErrNotFound).
type Store interface {
	// Create persists a new record, assigns its ID and timestamps, and
	// returns the stored record.
	Create(ctx context.Context, rec *Record) (*Record, error)

	// GetByID fetches one record.
	GetByID(ctx context.Context, id string) (*Record, error)

	// List returns matching records in query order; an empty result is a
	// valid, empty slice, never an error.
	List(ctx context.Context, q Query) ([]*Record, error)

	// Update applies a partial field set, advances UpdatedAt, and returns
	// the updated record. Unset fields retain their prior value.
	Update(ctx context.Context, id string, fields map[string]interface{}) (*Record, error)

	// Delete removes the record. Hard delete; a repeat delete is ErrNotFound.
	Delete(ctx context.Context, id string) error

	// CountWhere counts records whose field equals value, excluding the
	// record with excludeID (pass "" to exclude nothing). Used for the
	// uniqueness checks.
	CountWhere(ctx context.Context, field string, value interface{}, excludeID string) (int64, error)
}

// ReferenceResolver answers existence questions across collections, for
// reference-integrity checks. The database handle implements it in
// production; the in-memory registry implements it in tests.
type ReferenceResolver interface {
	Exists(ctx context.Context, collection, id string) (bool, error)
}
