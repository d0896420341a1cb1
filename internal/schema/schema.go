// Package schema compiles declarative parameter schemas into constraint
// checkers. The schema is a closed tagged union built once at startup and
// read-only afterwards; validation is a pure recursive walk over it.
package schema

import "regexp"

// Schema is the closed set of constraint nodes. Only the types in this
// package implement it.
type Schema interface {
	kind() string
}

// StringSchema constrains string values. If Enum is non-empty it takes
// precedence and no other string constraint is applied.
type StringSchema struct {
	Pattern     *regexp.Regexp
	Default     *string
	MinLength   *int
	MaxLength   *int
	Description string
	Enum        []string
}

func (*StringSchema) kind() string { return "string" }

// NumberSchema constrains numeric values. With Integer set, values must
// have no fractional part. Bounds are inclusive.
type NumberSchema struct {
	Minimum     *float64
	Maximum     *float64
	Default     *float64
	Description string
	Integer     bool
}

func (s *NumberSchema) kind() string {
	if s.Integer {
		return "integer"
	}
	return "number"
}

// BooleanSchema constrains boolean values.
type BooleanSchema struct {
	Default     *bool
	Description string
}

func (*BooleanSchema) kind() string { return "boolean" }

// ArraySchema constrains arrays: item-wise validation plus item count bounds.
type ArraySchema struct {
	Items       Schema
	MinItems    *int
	MaxItems    *int
	Description string
}

func (*ArraySchema) kind() string { return "array" }

// ObjectSchema constrains objects. Unknown keys are permitted unless
// Exclusive is set; Required must only reference declared Properties.
type ObjectSchema struct {
	Properties  map[string]Schema
	Description string
	Required    []string
	Exclusive   bool
}

func (*ObjectSchema) kind() string { return "object" }

// Describe renders a schema node as a JSON-Schema-like map for tool listings.
func Describe(s Schema) map[string]any {
	out := map[string]any{"type": s.kind()}
	switch n := s.(type) {
	case *StringSchema:
		if n.Description != "" {
			out["description"] = n.Description
		}
		if len(n.Enum) > 0 {
			out["enum"] = n.Enum
		}
		if n.Pattern != nil {
			out["pattern"] = n.Pattern.String()
		}
		if n.MinLength != nil {
			out["minLength"] = *n.MinLength
		}
		if n.MaxLength != nil {
			out["maxLength"] = *n.MaxLength
		}
		if n.Default != nil {
			out["default"] = *n.Default
		}
	case *NumberSchema:
		if n.Description != "" {
			out["description"] = n.Description
		}
		if n.Minimum != nil {
			out["minimum"] = *n.Minimum
		}
		if n.Maximum != nil {
			out["maximum"] = *n.Maximum
		}
		if n.Default != nil {
			out["default"] = *n.Default
		}
	case *BooleanSchema:
		if n.Description != "" {
			out["description"] = n.Description
		}
		if n.Default != nil {
			out["default"] = *n.Default
		}
	case *ArraySchema:
		if n.Description != "" {
			out["description"] = n.Description
		}
		if n.Items != nil {
			out["items"] = Describe(n.Items)
		}
		if n.MinItems != nil {
			out["minItems"] = *n.MinItems
		}
		if n.MaxItems != nil {
			out["maxItems"] = *n.MaxItems
		}
	case *ObjectSchema:
		if n.Description != "" {
			out["description"] = n.Description
		}
		props := map[string]any{}
		for name, sub := range n.Properties {
			props[name] = Describe(sub)
		}
		out["properties"] = props
		if len(n.Required) > 0 {
			out["required"] = n.Required
		}
		if n.Exclusive {
			out["additionalProperties"] = false
		}
	}
	return out
}
