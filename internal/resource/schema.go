package resource

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ========================================
// FIELD TYPES
// ========================================

type Type int

const (
	String Type = iota
	Number
	Decimal
	Date
	Enum
	List      // list of strings
	Reference // 24-hex ID of another resource
)

// DateBound constrains where a date may fall relative to validation time.
type DateBound int

const (
	DateAny       DateBound = iota
	DateNotFuture           // e.g. a birthday
	DateFuture              // e.g. a due date
)

// Field declares one field of a resource schema: its type, whether it is
// required, and its constraints. Validation rules are built from this
// declaration instead of being hand-written per resource.
type Field struct {
	Name  string // JSON / document key, e.g. "firstName"
	Label string // human label used in violation messages, e.g. "First name"
	Type  Type

	Required bool

	// String constraints
	MinLen    int
	MaxLen    int
	LenIn     []int // exact allowed lengths, for codes like an ISBN's 10 or 13
	Email     bool
	Lowercase bool // normalize to lower case before persisting

	// Number / decimal constraints
	Min *float64
	Max *float64

	// Enum constraints. Declaration order doubles as the ranking used by
	// ranked sort keys (first value = lowest rank).
	Enum     []string
	EnumNoun string // noun for the violation message, e.g. "color"

	// Date constraints
	DateBound DateBound

	// Reference target (resource name + collection), for Type Reference.
	Ref           string
	RefCollection string

	// Default is applied on create when the field is absent.
	Default interface{}

	// Unique fields are checked against the store after structural
	// validation passes.
	Unique bool

	// Filterable fields may appear as exact-match query parameters on list.
	Filterable bool
}

// SortKey is one component of a sort order. Ranked keys order enum fields by
// declaration position rather than lexicographically.
type SortKey struct {
	Field  string
	Desc   bool
	Ranked bool
}

// Schema is the full declarative description of one resource type. The
// generic service and controller are parameterized by it; the four resource
// packages only declare schemas.
type Schema struct {
	Name       string // singular, e.g. "contact"
	Collection string // document collection, e.g. "contacts"

	Fields []Field

	DefaultSort []SortKey

	// ProtectedWrites gates create/update/delete behind the auth middleware.
	// Reads are always public.
	ProtectedWrites bool

	// AttachOwner records the acting identity's ID on created records.
	AttachOwner bool

	// Present shapes a record for responses. Nil means the default shape
	// (id, fields, timestamps).
	Present func(*Record) map[string]interface{}
}

// Field returns the declaration for name, or nil.
func (s *Schema) Field(name string) *Field {
	for i := range s.Fields {
		if s.Fields[i].Name == name {
			return &s.Fields[i]
		}
	}
	return nil
}

// EnumRank returns the declaration index of value within the named enum
// field, or -1 when unknown. Used for ranked sorting.
func (s *Schema) EnumRank(field, value string) int {
	f := s.Field(field)
	if f == nil {
		return -1
	}
	for i, v := range f.Enum {
		if v == value {
			return i
		}
	}
	return -1
}

// ========================================
// VALIDATION
// ========================================

// dateLayouts accepted for date fields, tried in order.
var dateLayouts = []string{"2006-01-02", time.RFC3339}

// Validate checks a candidate field set against the schema and returns the
// normalized fields plus the full ordered list of violations. Partial mode
// (updates) only validates fields present in the input; absent fields retain
// their prior value. Unknown input keys are ignored.
//
// Violations are returned as data. This function never fails on expected bad
// input; store-trip checks (uniqueness, references) happen later in the
// service, after structural validation passes.
func (s *Schema) Validate(input map[string]interface{}, partial bool) (map[string]interface{}, []string) {
	normalized := make(map[string]interface{})
	var violations []string

	for i := range s.Fields {
		f := &s.Fields[i]
		raw, present := input[f.Name]
		if raw == nil {
			present = false
		}
		// An empty string can never satisfy enum membership; treat it like
		// an absent value so defaults and required checks apply instead.
		if present && f.Type == Enum {
			if str, ok := raw.(string); ok && strings.TrimSpace(str) == "" {
				present = false
			}
		}

		if !present {
			if partial {
				continue
			}
			if f.Required {
				violations = append(violations, fmt.Sprintf("%s is required", f.Label))
				continue
			}
			if f.Default != nil {
				normalized[f.Name] = f.Default
			}
			continue
		}

		value, fieldViolations := f.normalize(raw)
		if len(fieldViolations) > 0 {
			violations = append(violations, fieldViolations...)
			continue
		}
		normalized[f.Name] = value
	}

	return normalized, violations
}

// normalize coerces a raw JSON value into its canonical storage type and
// runs the field's constraint rules on it.
func (f *Field) normalize(raw interface{}) (interface{}, []string) {
	switch f.Type {
	case String, Enum:
		return f.normalizeString(raw)
	case Number:
		return f.normalizeNumber(raw)
	case Decimal:
		return f.normalizeDecimal(raw)
	case Date:
		return f.normalizeDate(raw)
	case List:
		return f.normalizeList(raw)
	case Reference:
		return f.normalizeReference(raw)
	default:
		return nil, []string{fmt.Sprintf("%s has an unsupported type", f.Label)}
	}
}

func (f *Field) normalizeString(raw interface{}) (interface{}, []string) {
	str, ok := raw.(string)
	if !ok {
		return nil, []string{fmt.Sprintf("%s must be a string", f.Label)}
	}

	str = strings.TrimSpace(str)
	if f.Lowercase {
		str = strings.ToLower(str)
	}

	if str == "" {
		if f.Required {
			return nil, []string{fmt.Sprintf("%s is required", f.Label)}
		}
		return "", nil
	}

	var rules []validation.Rule
	if f.MinLen > 0 {
		rules = append(rules, validation.Length(f.MinLen, 0).
			Error(fmt.Sprintf("%s must be at least %d characters", f.Label, f.MinLen)))
	}
	if f.MaxLen > 0 {
		rules = append(rules, validation.Length(0, f.MaxLen).
			Error(fmt.Sprintf("%s cannot exceed %d characters", f.Label, f.MaxLen)))
	}
	if len(f.LenIn) > 0 {
		rules = append(rules, validation.By(f.checkLength))
	}
	if f.Email {
		rules = append(rules, is.Email.Error("Please enter a valid email address"))
	}
	if f.Type == Enum {
		rules = append(rules, validation.By(f.checkEnum))
	}

	if err := validation.Validate(str, rules...); err != nil {
		return nil, collectRuleErrors(err)
	}

	return str, nil
}

// checkLength is a validation.By rule for fields whose length must be one of
// a handful of exact values, which Length's min/max range cannot express.
func (f *Field) checkLength(value interface{}) error {
	str, _ := value.(string)
	for _, n := range f.LenIn {
		if len(str) == n {
			return nil
		}
	}

	parts := make([]string, len(f.LenIn))
	for i, n := range f.LenIn {
		parts[i] = strconv.Itoa(n)
	}
	return fmt.Errorf("%s must be %s characters", f.Label, strings.Join(parts, " or "))
}

// checkEnum is a validation.By rule so the message can echo the offending
// value, the way the enum rejections are worded everywhere else in the API.
func (f *Field) checkEnum(value interface{}) error {
	str, _ := value.(string)
	for _, v := range f.Enum {
		if v == str {
			return nil
		}
	}
	noun := f.EnumNoun
	if noun == "" {
		noun = "value"
	}
	return fmt.Errorf("%s is not a supported %s", str, noun)
}

func (f *Field) normalizeNumber(raw interface{}) (interface{}, []string) {
	var num float64
	switch v := raw.(type) {
	case float64:
		num = v
	case int:
		num = float64(v)
	case int64:
		num = float64(v)
	case int32:
		num = float64(v)
	default:
		return nil, []string{fmt.Sprintf("%s must be a number", f.Label)}
	}

	var rules []validation.Rule
	if f.Min != nil {
		msg := fmt.Sprintf("%s cannot be less than %v", f.Label, *f.Min)
		if *f.Min == 0 {
			msg = fmt.Sprintf("%s cannot be negative", f.Label)
		}
		rules = append(rules, validation.Min(*f.Min).Error(msg))
	}
	if f.Max != nil {
		rules = append(rules, validation.Max(*f.Max).
			Error(fmt.Sprintf("%s cannot exceed %v", f.Label, *f.Max)))
	}

	if err := validation.Validate(num, rules...); err != nil {
		return nil, collectRuleErrors(err)
	}

	return num, nil
}

func (f *Field) normalizeDecimal(raw interface{}) (interface{}, []string) {
	var (
		dec decimal.Decimal
		err error
	)
	switch v := raw.(type) {
	case float64:
		dec = decimal.NewFromFloat(v)
	case string:
		dec, err = decimal.NewFromString(strings.TrimSpace(v))
		if err != nil {
			return nil, []string{fmt.Sprintf("%s must be a decimal number", f.Label)}
		}
	default:
		return nil, []string{fmt.Sprintf("%s must be a decimal number", f.Label)}
	}

	if f.Min != nil && dec.LessThan(decimal.NewFromFloat(*f.Min)) {
		if *f.Min == 0 {
			return nil, []string{fmt.Sprintf("%s cannot be negative", f.Label)}
		}
		return nil, []string{fmt.Sprintf("%s cannot be less than %v", f.Label, *f.Min)}
	}
	if f.Max != nil && dec.GreaterThan(decimal.NewFromFloat(*f.Max)) {
		return nil, []string{fmt.Sprintf("%s cannot exceed %v", f.Label, *f.Max)}
	}

	return dec, nil
}

func (f *Field) normalizeDate(raw interface{}) (interface{}, []string) {
	str, ok := raw.(string)
	if !ok {
		return nil, []string{fmt.Sprintf("%s must be a date string (YYYY-MM-DD)", f.Label)}
	}

	var (
		parsed time.Time
		err    error
	)
	for _, layout := range dateLayouts {
		parsed, err = time.Parse(layout, strings.TrimSpace(str))
		if err == nil {
			break
		}
	}
	if err != nil {
		return nil, []string{fmt.Sprintf("%s must be a valid date (YYYY-MM-DD)", f.Label)}
	}

	switch f.DateBound {
	case DateNotFuture:
		if parsed.After(time.Now()) {
			return nil, []string{fmt.Sprintf("%s cannot be in the future", f.Label)}
		}
	case DateFuture:
		if !parsed.After(time.Now()) {
			return nil, []string{fmt.Sprintf("%s must be in the future", f.Label)}
		}
	}

	return parsed.UTC(), nil
}

func (f *Field) normalizeList(raw interface{}) (interface{}, []string) {
	switch v := raw.(type) {
	case []string:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, strings.TrimSpace(item))
		}
		return out, nil
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			str, ok := item.(string)
			if !ok {
				return nil, []string{fmt.Sprintf("%s must be a list of strings", f.Label)}
			}
			out = append(out, strings.TrimSpace(str))
		}
		return out, nil
	default:
		return nil, []string{fmt.Sprintf("%s must be a list of strings", f.Label)}
	}
}

func (f *Field) normalizeReference(raw interface{}) (interface{}, []string) {
	str, ok := raw.(string)
	if !ok {
		return nil, []string{fmt.Sprintf("%s must be an ID string", f.Label)}
	}

	str = strings.TrimSpace(str)
	if _, err := primitive.ObjectIDFromHex(str); err != nil {
		return nil, []string{fmt.Sprintf("%s must be a 24-character hexadecimal ID", f.Label)}
	}

	return str, nil
}

// collectRuleErrors flattens an ozzo validation result into messages,
// keeping each rule's message intact.
func collectRuleErrors(err error) []string {
	if err == nil {
		return nil
	}
	if errs, ok := err.(validation.Errors); ok {
		out := make([]string, 0, len(errs))
		for _, e := range errs {
			out = append(out, e.Error())
		}
		return out
	}
	return []string{err.Error()}
}
