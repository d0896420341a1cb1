package schema

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestValidate_IntegerBounds(t *testing.T) {
	s := &ObjectSchema{
		Properties: map[string]Schema{
			"limit": &NumberSchema{Integer: true, Minimum: ptr(1.0), Maximum: ptr(100.0)},
		},
	}

	result := Validate(s, map[string]any{"limit": float64(150)})
	require.False(t, result.Valid)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "limit")
	assert.Contains(t, result.Errors[0], "maximum")

	// Empty input is valid: limit is optional and has no default.
	result = Validate(s, map[string]any{})
	require.True(t, result.Valid)
	coerced := result.Value.(map[string]any)
	_, present := coerced["limit"]
	assert.False(t, present)
}

func TestValidate_DefaultsApplied(t *testing.T) {
	s := &ObjectSchema{
		Properties: map[string]Schema{
			"format": &StringSchema{Enum: []string{"index", "full"}, Default: ptr("index")},
			"limit":  &NumberSchema{Integer: true, Default: ptr(20.0)},
			"pretty": &BooleanSchema{Default: ptr(true)},
		},
	}

	result := Validate(s, map[string]any{})
	require.True(t, result.Valid)

	coerced := result.Value.(map[string]any)
	assert.Equal(t, "index", coerced["format"])
	assert.Equal(t, 20, coerced["limit"])
	assert.Equal(t, true, coerced["pretty"])
}

func TestValidate_DoesNotMutateInput(t *testing.T) {
	s := &ObjectSchema{
		Properties: map[string]Schema{
			"format": &StringSchema{Default: ptr("index")},
		},
	}

	input := map[string]any{}
	result := Validate(s, input)
	require.True(t, result.Valid)
	assert.Empty(t, input, "caller-supplied map must not be mutated")
}

func TestValidate_Idempotent(t *testing.T) {
	s := &ObjectSchema{
		Required: []string{"name"},
		Properties: map[string]Schema{
			"name":  &StringSchema{MinLength: ptr(3)},
			"count": &NumberSchema{Integer: true, Minimum: ptr(0.0)},
		},
	}
	value := map[string]any{"name": "ab", "count": -1.5}

	first := Validate(s, value)
	second := Validate(s, value)
	assert.Equal(t, first.Errors, second.Errors)
	assert.Equal(t, first.Valid, second.Valid)
}

func TestValidate_AccumulatesAllErrors(t *testing.T) {
	s := &ObjectSchema{
		Required: []string{"name", "kind"},
		Properties: map[string]Schema{
			"name":  &StringSchema{},
			"kind":  &StringSchema{Enum: []string{"a", "b"}},
			"level": &NumberSchema{Integer: true, Maximum: ptr(10.0)},
		},
	}

	result := Validate(s, map[string]any{"kind": "c", "level": 11.5})
	require.False(t, result.Valid)
	// Missing name, bad enum, non-integer, above maximum.
	assert.Len(t, result.Errors, 4)
}

func TestValidate_EnumPrecedence(t *testing.T) {
	// Enum wins: length and pattern constraints are not applied.
	s := &StringSchema{
		Enum:      []string{"x"},
		MinLength: ptr(5),
		Pattern:   regexp.MustCompile(`^[0-9]+$`),
	}

	result := Validate(s, "x")
	assert.True(t, result.Valid)

	result = Validate(s, "12345")
	require.False(t, result.Valid)
	assert.Len(t, result.Errors, 1)
}

func TestValidate_StringConstraints(t *testing.T) {
	tests := []struct {
		name    string
		schema  *StringSchema
		value   any
		wantErr bool
	}{
		{"type mismatch", &StringSchema{}, 42, true},
		{"min length", &StringSchema{MinLength: ptr(3)}, "ab", true},
		{"max length", &StringSchema{MaxLength: ptr(2)}, "abc", true},
		{"pattern miss", &StringSchema{Pattern: regexp.MustCompile(`^\d+$`)}, "abc", true},
		{"pattern hit", &StringSchema{Pattern: regexp.MustCompile(`^\d+$`)}, "123", false},
		{"ok", &StringSchema{MinLength: ptr(1), MaxLength: ptr(5)}, "abc", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Validate(tt.schema, tt.value)
			if tt.wantErr != !result.Valid {
				t.Errorf("Validate(%v) valid = %v, want error %v: %v",
					tt.value, result.Valid, tt.wantErr, result.Errors)
			}
		})
	}
}

func TestValidate_Array(t *testing.T) {
	s := &ArraySchema{
		Items:    &StringSchema{MinLength: ptr(2)},
		MinItems: ptr(1),
		MaxItems: ptr(3),
	}

	result := Validate(s, []any{"ok", "x", "also"})
	require.False(t, result.Valid)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "1")

	result = Validate(s, []any{})
	assert.False(t, result.Valid)

	result = Validate(s, []any{"aa", "bb"})
	assert.True(t, result.Valid)
}

func TestValidate_NestedObjectPaths(t *testing.T) {
	s := &ObjectSchema{
		Properties: map[string]Schema{
			"filter": &ObjectSchema{
				Required: []string{"field"},
				Properties: map[string]Schema{
					"field": &StringSchema{},
				},
			},
		},
	}

	result := Validate(s, map[string]any{"filter": map[string]any{}})
	require.False(t, result.Valid)
	assert.Contains(t, result.Errors[0], "filter.field")
}

func TestValidate_ExclusiveObject(t *testing.T) {
	s := &ObjectSchema{
		Exclusive: true,
		Properties: map[string]Schema{
			"known": &StringSchema{},
		},
	}

	result := Validate(s, map[string]any{"known": "v", "mystery": 1})
	require.False(t, result.Valid)
	assert.Contains(t, result.Errors[0], "mystery")

	// Unknown keys pass on non-exclusive objects.
	open := &ObjectSchema{Properties: map[string]Schema{"known": &StringSchema{}}}
	result = Validate(open, map[string]any{"known": "v", "mystery": 1})
	assert.True(t, result.Valid)
}
