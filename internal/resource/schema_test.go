package resource

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func float(v float64) *float64 {
	return &v
}

// memberSchema is the validation fixture: one field per constraint family.
func memberSchema() *Schema {
	return &Schema{
		Name:       "member",
		Collection: "members",
		Fields: []Field{
			{
				Name:     "name",
				Label:    "Name",
				Type:     String,
				Required: true,
				MinLen:   2,
				MaxLen:   50,
			},
			{
				Name:      "email",
				Label:     "Email",
				Type:      String,
				Required:  true,
				Email:     true,
				Lowercase: true,
				Unique:    true,
			},
			{
				Name:     "tier",
				Label:    "Tier",
				Type:     Enum,
				Enum:     []string{"bronze", "silver", "gold"},
				EnumNoun: "tier",
				Default:  "bronze",
			},
			{
				Name:      "joined",
				Label:     "Joined date",
				Type:      Date,
				DateBound: DateNotFuture,
			},
			{
				Name:  "score",
				Label: "Score",
				Type:  Number,
				Min:   float(0),
				Max:   float(100),
			},
			{
				Name:  "balance",
				Label: "Balance",
				Type:  Decimal,
				Min:   float(0),
			},
			{
				Name:  "tags",
				Label: "Tags",
				Type:  List,
			},
		},
	}
}

func TestValidateCollectsAllViolationsInFieldOrder(t *testing.T) {
	schema := memberSchema()

	_, violations := schema.Validate(map[string]interface{}{
		"email": "not-an-email",
		"tier":  "platinum",
		"score": -5.0,
	}, false)

	require.Equal(t, []string{
		"Name is required",
		"Please enter a valid email address",
		"platinum is not a supported tier",
		"Score cannot be negative",
	}, violations)
}

func TestValidateNormalizesAndAppliesDefaults(t *testing.T) {
	schema := memberSchema()

	fields, violations := schema.Validate(map[string]interface{}{
		"name":  "  Ada  ",
		"email": "  Ada@Example.COM ",
	}, false)

	require.Empty(t, violations)
	assert.Equal(t, "Ada", fields["name"])
	assert.Equal(t, "ada@example.com", fields["email"])
	assert.Equal(t, "bronze", fields["tier"], "absent enum falls back to its default")
	assert.NotContains(t, fields, "joined", "absent optional field stays absent")
}

func TestValidatePartialSkipsAbsentFields(t *testing.T) {
	schema := memberSchema()

	fields, violations := schema.Validate(map[string]interface{}{
		"score": 42.0,
	}, true)

	require.Empty(t, violations)
	assert.Equal(t, map[string]interface{}{"score": 42.0}, fields,
		"partial mode must not re-require absent fields or re-apply defaults")
}

func TestValidateNullIsAbsent(t *testing.T) {
	schema := memberSchema()

	// Explicit null behaves exactly like an omitted key.
	_, violations := schema.Validate(map[string]interface{}{
		"name":  nil,
		"email": "ada@example.com",
	}, false)
	require.Equal(t, []string{"Name is required"}, violations)

	fields, violations := schema.Validate(map[string]interface{}{"name": nil}, true)
	require.Empty(t, violations)
	assert.Empty(t, fields)
}

func TestValidateUnknownKeysIgnored(t *testing.T) {
	schema := memberSchema()

	fields, violations := schema.Validate(map[string]interface{}{
		"name":       "Ada",
		"email":      "ada@example.com",
		"isAdmin":    true,
		"__proto__":  "extra",
	}, false)

	require.Empty(t, violations)
	assert.NotContains(t, fields, "isAdmin")
	assert.NotContains(t, fields, "__proto__")
}

func TestValidateStringLengthBounds(t *testing.T) {
	schema := memberSchema()

	_, violations := schema.Validate(map[string]interface{}{
		"name":  "A",
		"email": "ada@example.com",
	}, false)
	require.Equal(t, []string{"Name must be at least 2 characters"}, violations)

	long := make([]byte, 51)
	for i := range long {
		long[i] = 'a'
	}
	_, violations = schema.Validate(map[string]interface{}{
		"name":  string(long),
		"email": "ada@example.com",
	}, false)
	require.Equal(t, []string{"Name cannot exceed 50 characters"}, violations)
}

func TestValidateDateBounds(t *testing.T) {
	schema := memberSchema()

	fields, violations := schema.Validate(map[string]interface{}{
		"name":   "Ada",
		"email":  "ada@example.com",
		"joined": "2020-06-15",
	}, false)
	require.Empty(t, violations)

	joined, ok := fields["joined"].(time.Time)
	require.True(t, ok, "dates normalize to time.Time")
	assert.Equal(t, "2020-06-15", joined.Format("2006-01-02"))

	future := time.Now().AddDate(1, 0, 0).Format("2006-01-02")
	_, violations = schema.Validate(map[string]interface{}{
		"name":   "Ada",
		"email":  "ada@example.com",
		"joined": future,
	}, false)
	require.Equal(t, []string{"Joined date cannot be in the future"}, violations)

	_, violations = schema.Validate(map[string]interface{}{
		"name":   "Ada",
		"email":  "ada@example.com",
		"joined": "15/06/2020",
	}, false)
	require.Equal(t, []string{"Joined date must be a valid date (YYYY-MM-DD)"}, violations)
}

func TestValidateNumberBounds(t *testing.T) {
	schema := memberSchema()

	_, violations := schema.Validate(map[string]interface{}{
		"name":  "Ada",
		"email": "ada@example.com",
		"score": 101.0,
	}, false)
	require.Equal(t, []string{"Score cannot exceed 100"}, violations)

	_, violations = schema.Validate(map[string]interface{}{
		"name":  "Ada",
		"email": "ada@example.com",
		"score": "high",
	}, false)
	require.Equal(t, []string{"Score must be a number"}, violations)
}

func TestValidateDecimal(t *testing.T) {
	schema := memberSchema()

	fields, violations := schema.Validate(map[string]interface{}{
		"name":    "Ada",
		"email":   "ada@example.com",
		"balance": "19.99",
	}, false)
	require.Empty(t, violations)

	balance, ok := fields["balance"].(decimal.Decimal)
	require.True(t, ok)
	assert.True(t, balance.Equal(decimal.RequireFromString("19.99")))

	_, violations = schema.Validate(map[string]interface{}{
		"name":    "Ada",
		"email":   "ada@example.com",
		"balance": -0.01,
	}, false)
	require.Equal(t, []string{"Balance cannot be negative"}, violations)
}

func TestValidateList(t *testing.T) {
	schema := memberSchema()

	// JSON arrays arrive as []interface{}.
	fields, violations := schema.Validate(map[string]interface{}{
		"name":  "Ada",
		"email": "ada@example.com",
		"tags":  []interface{}{" alpha ", "beta"},
	}, false)
	require.Empty(t, violations)
	assert.Equal(t, []string{"alpha", "beta"}, fields["tags"])

	_, violations = schema.Validate(map[string]interface{}{
		"name":  "Ada",
		"email": "ada@example.com",
		"tags":  []interface{}{"alpha", 7},
	}, false)
	require.Equal(t, []string{"Tags must be a list of strings"}, violations)
}

func TestValidateEmptyEnumStringIsAbsent(t *testing.T) {
	schema := memberSchema()

	// An empty string can never be an enum member, so it behaves like an
	// omitted key: the default applies on create.
	fields, violations := schema.Validate(map[string]interface{}{
		"name":  "Ada",
		"email": "ada@example.com",
		"tier":  "",
	}, false)
	require.Empty(t, violations)
	assert.Equal(t, "bronze", fields["tier"])

	// Whitespace-only is the same thing.
	fields, violations = schema.Validate(map[string]interface{}{
		"name":  "Ada",
		"email": "ada@example.com",
		"tier":  "   ",
	}, false)
	require.Empty(t, violations)
	assert.Equal(t, "bronze", fields["tier"])

	// On update the field is simply untouched.
	fields, violations = schema.Validate(map[string]interface{}{"tier": ""}, true)
	require.Empty(t, violations)
	assert.NotContains(t, fields, "tier")
}

func TestEnumRank(t *testing.T) {
	schema := memberSchema()

	assert.Equal(t, 0, schema.EnumRank("tier", "bronze"))
	assert.Equal(t, 2, schema.EnumRank("tier", "gold"))
	assert.Equal(t, -1, schema.EnumRank("tier", "platinum"))
	assert.Equal(t, -1, schema.EnumRank("missing", "bronze"))
}
