package schema

import (
	"fmt"
	"math"
	"sort"
)

// Result is the outcome of validating a value against a schema. Errors
// accumulates every violated constraint; Value carries the coerced input
// (a copy of the original with declared defaults applied).
type Result struct {
	Value  any
	Errors []string
	Valid  bool
}

// Validate checks value against s. The caller's value is never mutated;
// coercion only applies declared defaults, never type conversion.
// Validating the same (schema, value) pair twice yields identical results.
func Validate(s Schema, value any) Result {
	var errs []string
	coerced := walk(s, value, "", &errs)
	return Result{
		Valid:  len(errs) == 0,
		Errors: errs,
		Value:  coerced,
	}
}

// walk validates value at path and returns the coerced value.
func walk(s Schema, value any, path string, errs *[]string) any {
	switch n := s.(type) {
	case *StringSchema:
		return walkString(n, value, path, errs)
	case *NumberSchema:
		return walkNumber(n, value, path, errs)
	case *BooleanSchema:
		return walkBoolean(n, value, path, errs)
	case *ArraySchema:
		return walkArray(n, value, path, errs)
	case *ObjectSchema:
		return walkObject(n, value, path, errs)
	default:
		*errs = append(*errs, fmt.Sprintf("%s: unsupported schema node", at(path)))
		return value
	}
}

func walkString(n *StringSchema, value any, path string, errs *[]string) any {
	str, ok := value.(string)
	if !ok {
		*errs = append(*errs, fmt.Sprintf("%s: expected string, got %T", at(path), value))
		return value
	}

	// Enum takes precedence over all other string constraints.
	if len(n.Enum) > 0 {
		for _, allowed := range n.Enum {
			if str == allowed {
				return str
			}
		}
		*errs = append(*errs, fmt.Sprintf("%s: value %q is not one of %v", at(path), str, n.Enum))
		return str
	}

	if n.MinLength != nil && len(str) < *n.MinLength {
		*errs = append(*errs, fmt.Sprintf("%s: length %d is below minimum %d", at(path), len(str), *n.MinLength))
	}
	if n.MaxLength != nil && len(str) > *n.MaxLength {
		*errs = append(*errs, fmt.Sprintf("%s: length %d exceeds maximum %d", at(path), len(str), *n.MaxLength))
	}
	if n.Pattern != nil && !n.Pattern.MatchString(str) {
		*errs = append(*errs, fmt.Sprintf("%s: value does not match pattern %s", at(path), n.Pattern))
	}
	return str
}

func walkNumber(n *NumberSchema, value any, path string, errs *[]string) any {
	num, ok := toFloat(value)
	if !ok {
		*errs = append(*errs, fmt.Sprintf("%s: expected %s, got %T", at(path), n.kind(), value))
		return value
	}

	if n.Integer && num != math.Trunc(num) {
		*errs = append(*errs, fmt.Sprintf("%s: value %v is not an integer", at(path), num))
	}
	if n.Minimum != nil && num < *n.Minimum {
		*errs = append(*errs, fmt.Sprintf("%s: value %v is below minimum %v", at(path), num, *n.Minimum))
	}
	if n.Maximum != nil && num > *n.Maximum {
		*errs = append(*errs, fmt.Sprintf("%s: value %v exceeds maximum %v", at(path), num, *n.Maximum))
	}
	return value
}

func walkBoolean(_ *BooleanSchema, value any, path string, errs *[]string) any {
	if _, ok := value.(bool); !ok {
		*errs = append(*errs, fmt.Sprintf("%s: expected boolean, got %T", at(path), value))
	}
	return value
}

func walkArray(n *ArraySchema, value any, path string, errs *[]string) any {
	items, ok := value.([]any)
	if !ok {
		*errs = append(*errs, fmt.Sprintf("%s: expected array, got %T", at(path), value))
		return value
	}

	if n.MinItems != nil && len(items) < *n.MinItems {
		*errs = append(*errs, fmt.Sprintf("%s: %d items is below minimum %d", at(path), len(items), *n.MinItems))
	}
	if n.MaxItems != nil && len(items) > *n.MaxItems {
		*errs = append(*errs, fmt.Sprintf("%s: %d items exceeds maximum %d", at(path), len(items), *n.MaxItems))
	}

	out := make([]any, len(items))
	for i, item := range items {
		itemPath := fmt.Sprintf("%s.%d", path, i)
		if path == "" {
			itemPath = fmt.Sprintf("%d", i)
		}
		if n.Items != nil {
			out[i] = walk(n.Items, item, itemPath, errs)
		} else {
			out[i] = item
		}
	}
	return out
}

func walkObject(n *ObjectSchema, value any, path string, errs *[]string) any {
	obj, ok := value.(map[string]any)
	if !ok {
		*errs = append(*errs, fmt.Sprintf("%s: expected object, got %T", at(path), value))
		return value
	}

	// Work on a copy so the caller's map is never mutated.
	out := make(map[string]any, len(obj))
	for k, v := range obj {
		out[k] = v
	}

	for _, name := range n.Required {
		if _, present := obj[name]; !present {
			*errs = append(*errs, fmt.Sprintf("%s: property is required", at(join(path, name))))
		}
	}

	if n.Exclusive {
		unknown := make([]string, 0)
		for k := range obj {
			if _, declared := n.Properties[k]; !declared {
				unknown = append(unknown, k)
			}
		}
		sort.Strings(unknown)
		for _, k := range unknown {
			*errs = append(*errs, fmt.Sprintf("%s: unknown property", at(join(path, k))))
		}
	}

	// Deterministic property order keeps error sets stable across runs.
	names := make([]string, 0, len(n.Properties))
	for name := range n.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		sub := n.Properties[name]
		propPath := join(path, name)
		v, present := obj[name]
		if !present {
			if def, ok := defaultFor(sub); ok {
				out[name] = def
			}
			continue
		}
		out[name] = walk(sub, v, propPath, errs)
	}

	return out
}

// defaultFor returns the declared default value for a schema node, if any.
func defaultFor(s Schema) (any, bool) {
	switch n := s.(type) {
	case *StringSchema:
		if n.Default != nil {
			return *n.Default, true
		}
	case *NumberSchema:
		if n.Default != nil {
			if n.Integer {
				return int(*n.Default), true
			}
			return *n.Default, true
		}
	case *BooleanSchema:
		if n.Default != nil {
			return *n.Default, true
		}
	}
	return nil, false
}

// toFloat widens any numeric value decoded from JSON or built in Go code.
func toFloat(v any) (float64, bool) {
	switch num := v.(type) {
	case float64:
		return num, true
	case float32:
		return float64(num), true
	case int:
		return float64(num), true
	case int32:
		return float64(num), true
	case int64:
		return float64(num), true
	}
	return 0, false
}

func join(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}

// at renders a path for error messages; the root is shown as "value".
func at(path string) string {
	if path == "" {
		return "value"
	}
	return path
}
