package contact

import (
	"context"
	"testing"
	"time"

	"webservices-backend/internal/resource"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContactService() *resource.Service {
	registry := resource.NewMemoryRegistry()
	schema := Schema()
	return resource.NewService(schema, registry.Store(schema), registry)
}

func TestAge(t *testing.T) {
	now := time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		birthday time.Time
		want     int
	}{
		{"birthday already passed this year", time.Date(1990, time.January, 15, 0, 0, 0, 0, time.UTC), 35},
		{"birthday later this year", time.Date(1990, time.November, 30, 0, 0, 0, 0, time.UTC), 34},
		{"birthday today", time.Date(1990, time.June, 15, 0, 0, 0, 0, time.UTC), 35},
		{"birthday tomorrow", time.Date(1990, time.June, 16, 0, 0, 0, 0, time.UTC), 34},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, age(tt.birthday, now))
		})
	}
}

func TestContactPresentation(t *testing.T) {
	svc := newContactService()

	created, err := svc.Create(context.Background(), map[string]interface{}{
		"firstName":     "John",
		"lastName":      "Doe",
		"email":         "John.Doe@Example.com",
		"favoriteColor": "Blue",
		"birthday":      "1990-01-15",
	}, nil)
	require.NoError(t, err)

	out := Schema().Present(created)

	assert.Equal(t, "John Doe", out["fullName"])
	assert.Equal(t, "1990-01-15", out["birthday"], "birthday renders as YYYY-MM-DD")
	assert.Equal(t, "john.doe@example.com", out["email"])
	assert.Equal(t, created.ID, out["id"])
	assert.NotNil(t, out["age"])

	wantAge := age(time.Date(1990, time.January, 15, 0, 0, 0, 0, time.UTC), time.Now())
	assert.Equal(t, wantAge, out["age"])
}

func TestContactRejectsUnsupportedColor(t *testing.T) {
	svc := newContactService()

	_, err := svc.Create(context.Background(), map[string]interface{}{
		"firstName":     "John",
		"lastName":      "Doe",
		"email":         "john@example.com",
		"favoriteColor": "Chartreuse",
		"birthday":      "1990-01-15",
	}, nil)

	var validationErr *resource.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, []string{"Chartreuse is not a supported color"}, validationErr.Violations)

	// An empty string is no color either; it reads as the field missing.
	_, err = svc.Create(context.Background(), map[string]interface{}{
		"firstName":     "John",
		"lastName":      "Doe",
		"email":         "john2@example.com",
		"favoriteColor": "",
		"birthday":      "1990-01-15",
	}, nil)
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, []string{"Favorite color is required"}, validationErr.Violations)
}

func TestContactDefaultSortByName(t *testing.T) {
	svc := newContactService()
	ctx := context.Background()

	seed := []map[string]interface{}{
		{"firstName": "Michael", "lastName": "Wilson", "email": "mw@example.com", "favoriteColor": "Orange", "birthday": "1995-03-25"},
		{"firstName": "Jane", "lastName": "Smith", "email": "js@example.com", "favoriteColor": "Green", "birthday": "1985-05-20"},
		{"firstName": "Emily", "lastName": "Davis", "email": "ed@example.com", "favoriteColor": "Purple", "birthday": "1988-07-10"},
		{"firstName": "John", "lastName": "Doe", "email": "jd@example.com", "favoriteColor": "Blue", "birthday": "1990-01-15"},
	}
	for _, fields := range seed {
		_, err := svc.Create(ctx, fields, nil)
		require.NoError(t, err)
	}

	records, err := svc.List(ctx, resource.Query{})
	require.NoError(t, err)
	require.Len(t, records, 4)

	var lastNames []string
	for _, rec := range records {
		lastNames = append(lastNames, rec.Fields["lastName"].(string))
	}
	assert.Equal(t, []string{"Davis", "Doe", "Smith", "Wilson"}, lastNames)
}
