package resource

import (
	"context"
	"fmt"

	"webservices-backend/internal/auth"
)

// Service orchestrates the validate → constraint-check → persist pipeline
// for one resource type. There is exactly one implementation; each resource
// gets its own instance parameterized by schema and store.
type Service struct {
	schema *Schema
	store  Store
	refs   ReferenceResolver
}

func NewService(schema *Schema, store Store, refs ReferenceResolver) *Service {
	return &Service{
		schema: schema,
		store:  store,
		refs:   refs,
	}
}

func (s *Service) Schema() *Schema {
	return s.schema
}

// Create validates the full field set, runs the store-trip checks, and
// persists. Nothing is written when any check fails.
func (s *Service) Create(ctx context.Context, input map[string]interface{}, actor *auth.Identity) (*Record, error) {
	normalized, violations := s.schema.Validate(input, false)
	if len(violations) > 0 {
		return nil, &ValidationError{Violations: violations}
	}

	if err := s.checkConstraints(ctx, normalized, ""); err != nil {
		return nil, err
	}

	rec := &Record{Fields: normalized}
	if s.schema.AttachOwner && actor != nil {
		rec.OwnerID = actor.ID
	}

	return s.store.Create(ctx, rec)
}

// Get fetches one record by ID.
func (s *Service) Get(ctx context.Context, id string) (*Record, error) {
	return s.store.GetByID(ctx, id)
}

// List returns records matching the query; empty is a valid result.
func (s *Service) List(ctx context.Context, q Query) ([]*Record, error) {
	return s.store.List(ctx, q)
}

// Update applies a partial field set. Only provided fields are validated and
// re-checked; unset fields keep their prior value.
func (s *Service) Update(ctx context.Context, id string, input map[string]interface{}, actor *auth.Identity) (*Record, error) {
	// Fetch first: an absent record is 404 before any validation runs.
	if _, err := s.store.GetByID(ctx, id); err != nil {
		return nil, err
	}

	normalized, violations := s.schema.Validate(input, true)
	if len(violations) > 0 {
		return nil, &ValidationError{Violations: violations}
	}

	if err := s.checkConstraints(ctx, normalized, id); err != nil {
		return nil, err
	}

	return s.store.Update(ctx, id, normalized)
}

// Delete removes the record. Hard delete; repeating it yields ErrNotFound.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}

// checkConstraints runs the checks that need a store trip: uniqueness and
// reference existence. Structural validation has already passed by the time
// this runs. excludeID is the record being updated, "" on create.
func (s *Service) checkConstraints(ctx context.Context, fields map[string]interface{}, excludeID string) error {
	for i := range s.schema.Fields {
		f := &s.schema.Fields[i]
		value, present := fields[f.Name]
		if !present {
			continue
		}

		if f.Unique {
			count, err := s.store.CountWhere(ctx, f.Name, value, excludeID)
			if err != nil {
				return fmt.Errorf("uniqueness check for %s.%s: %w", s.schema.Name, f.Name, err)
			}
			if count > 0 {
				return &ConflictError{Field: f.Name, Value: fmt.Sprint(value)}
			}
		}

		if f.Type == Reference {
			id, _ := value.(string)
			exists, err := s.refs.Exists(ctx, f.RefCollection, id)
			if err != nil {
				return fmt.Errorf("reference check for %s.%s: %w", s.schema.Name, f.Name, err)
			}
			if !exists {
				return &ReferenceError{Field: f.Name, Resource: f.Ref, ID: id}
			}
		}
	}

	return nil
}
