// Package schema defines typed attribute sets for relations. A schema
// coerces raw tuples into canonical values on the write path and into
// decoded values on the read path, and can derive projected sub-schemas
// for views.
package schema

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cast"
)

// Kind represents a primitive attribute type.
type Kind int

const (
	// KindNone means no coercion is applied to the attribute.
	KindNone Kind = iota
	KindString
	KindInt
	KindFloat
	KindBool
	KindTime
	KindUUID
	KindJSON
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindTime:
		return "time"
	case KindUUID:
		return "uuid"
	case KindJSON:
		return "json"
	default:
		return "unknown"
	}
}

// ParseKind converts a string to a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "none", "":
		return KindNone, nil
	case "string":
		return KindString, nil
	case "int":
		return KindInt, nil
	case "float":
		return KindFloat, nil
	case "bool":
		return KindBool, nil
	case "time":
		return KindTime, nil
	case "uuid":
		return KindUUID, nil
	case "json":
		return KindJSON, nil
	default:
		return 0, fmt.Errorf("unknown kind: %s", s)
	}
}

// Type is an attribute's type specification: the canonical kind values are
// normalized to on the write path, plus an optional distinct read kind
// decoded to on the read path.
type Type struct {
	Kind Kind
	Read Kind
}

// HasRead returns true if the type declares a distinct read kind.
func (t Type) HasRead() bool {
	return t.Read != KindNone
}

// String returns a string representation of the type.
func (t Type) String() string {
	if t.HasRead() {
		return fmt.Sprintf("%s(read=%s)", t.Kind, t.Read)
	}
	return t.Kind.String()
}

// Coerce converts a value to the given kind. A nil value passes through
// untouched; nullability is not this layer's concern.
func Coerce(k Kind, v any) (any, error) {
	if v == nil {
		return nil, nil
	}

	switch k {
	case KindNone, KindJSON:
		return v, nil
	case KindString:
		return cast.ToStringE(v)
	case KindInt:
		return cast.ToInt64E(v)
	case KindFloat:
		return cast.ToFloat64E(v)
	case KindBool:
		return cast.ToBoolE(v)
	case KindTime:
		return cast.ToTimeE(v)
	case KindUUID:
		switch u := v.(type) {
		case uuid.UUID:
			return u, nil
		case [16]byte:
			return uuid.UUID(u), nil
		default:
			s, err := cast.ToStringE(v)
			if err != nil {
				return nil, err
			}
			return uuid.Parse(s)
		}
	default:
		return nil, fmt.Errorf("unknown kind: %d", k)
	}
}
