package figure

import (
	"strconv"
	"strings"

	"github.com/genemap/genemap/pkg/errors"
)

// Type is the value type of a declared argument.
type Type string

// Argument value types.
const (
	TypeString Type = "string"
	TypeInt    Type = "int"
	TypeFloat  Type = "float"
	TypeBool   Type = "bool"
)

// Argument is a typed, described, optionally defaulted input declared by an
// element (or globally by the builder). Arguments are immutable after
// construction; the builder namespaces them under the element ID at the
// parameter boundary.
type Argument struct {
	Key         string
	Description string
	Type        Type
	Default     any
}

// validate checks the argument declaration itself.
func (a Argument) validate() error {
	if a.Key == "" {
		return errors.New(errors.ErrCodeInvalidArgument, "argument key must not be empty")
	}
	if strings.ContainsAny(a.Key, " \t\n") {
		return errors.New(errors.ErrCodeInvalidArgument,
			"argument key %q must not contain whitespace", a.Key)
	}
	switch a.Type {
	case TypeString, TypeInt, TypeFloat, TypeBool:
	default:
		return errors.New(errors.ErrCodeInvalidArgument,
			"argument %q has unknown type %q", a.Key, a.Type)
	}
	return nil
}

// parse converts a raw boundary string into the argument's declared type.
func (a Argument) parse(raw string) (any, error) {
	switch a.Type {
	case TypeString:
		return raw, nil
	case TypeInt:
		v, err := strconv.Atoi(raw)
		if err != nil {
			return nil, errors.New(errors.ErrCodeInvalidArgument,
				"argument %q: %q is not an integer", a.Key, raw)
		}
		return v, nil
	case TypeFloat:
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, errors.New(errors.ErrCodeInvalidArgument,
				"argument %q: %q is not a number", a.Key, raw)
		}
		return v, nil
	case TypeBool:
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, errors.New(errors.ErrCodeInvalidArgument,
				"argument %q: %q is not a boolean", a.Key, raw)
		}
		return v, nil
	}
	return nil, errors.New(errors.ErrCodeInvalidArgument,
		"argument %q has unknown type %q", a.Key, a.Type)
}

// Params holds the resolved argument values of one namespace, keyed by the
// de-namespaced argument key.
type Params map[string]any

// String returns the string value of key, or "" when unset.
func (p Params) String(key string) string {
	if v, ok := p[key].(string); ok {
		return v
	}
	return ""
}

// Int returns the int value of key, or 0 when unset.
func (p Params) Int(key string) int {
	if v, ok := p[key].(int); ok {
		return v
	}
	return 0
}

// Float returns the float value of key, or 0 when unset.
// An int value is widened so that integer defaults work for float arguments.
func (p Params) Float(key string) float64 {
	switch v := p[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return 0
}

// Bool returns the bool value of key, or false when unset.
func (p Params) Bool(key string) bool {
	if v, ok := p[key].(bool); ok {
		return v
	}
	return false
}
