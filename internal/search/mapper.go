package search

import (
	"strings"

	"github.com/sampleforge/vault/internal/objectgraph"
	"github.com/sampleforge/vault/internal/vaulterr"
)

// FieldConstructor builds the filter fragment for one field mapping,
// given the value node bound to the field and any dotted-path segment
// left over after the registry consumed the first component (e.g.
// "meta.vendor" resolving "meta" leaves remainder "vendor" for nested
// resolution by the constructor itself).
type FieldConstructor func(remainder string, value Node) (string, error)

// RegistryKey identifies one (object type, field name) mapping.
type RegistryKey struct {
	Type  objectgraph.Type
	Field string
}

// Registry is a dynamic field-mapper dispatch table, rendered as a
// typed map from (TypeTag, FieldName) to a constructor.
type Registry struct {
	constructors map[RegistryKey]FieldConstructor
}

// NewRegistry builds an empty Registry.
func NewRegistry() *Registry {
	return &Registry{constructors: map[RegistryKey]FieldConstructor{}}
}

// Register binds a constructor to (objType, field).
func (r *Registry) Register(objType objectgraph.Type, field string, fn FieldConstructor) {
	r.constructors[RegistryKey{Type: objType, Field: field}] = fn
}

// Resolve splits name on its first '.', looks up a constructor for the
// leading segment under objType, and invokes it with the remainder for
// recursive sub-field resolution. Returns field-not-queryable if no
// constructor is registered for the leading segment.
func (r *Registry) Resolve(objType objectgraph.Type, name string, value Node) (string, error) {
	head, remainder, _ := strings.Cut(name, ".")
	fn, ok := r.constructors[RegistryKey{Type: objType, Field: head}]
	if !ok {
		return "", vaulterr.Newf(vaulterr.FieldNotQueryable, "field %q is not queryable on type %q", name, objType)
	}
	return fn(remainder, value)
}

// DefaultRegistry wires the field set the auxiliary entities expose:
// file name/size, tags, comments, and the generic metakey dotted
// sub-field convention (meta.<key>).
func DefaultRegistry() *Registry {
	r := NewRegistry()

	r.Register(objectgraph.TypeFile, "name", simpleTermField("file_name"))
	r.Register(objectgraph.TypeFile, "size", simpleRangeField("file_size"))
	r.Register(objectgraph.TypeObject, "tag", simpleTermField("tags"))
	r.Register(objectgraph.TypeObject, "comment", simpleTermField("comments"))
	r.Register(objectgraph.TypeStaticConfig, "type", simpleTermField("config_type"))

	metaConstructor := func(remainder string, value Node) (string, error) {
		if remainder == "" {
			return "", vaulterr.New(vaulterr.FieldNotQueryable, "meta requires a sub-field, e.g. meta.vendor")
		}
		filterValue, err := termFilterValue(value)
		if err != nil {
			return "", err
		}
		return "metakeys.key = " + quote(remainder) + " AND metakeys.value = " + filterValue, nil
	}
	r.Register(objectgraph.TypeObject, "meta", metaConstructor)

	return r
}

func simpleTermField(attribute string) FieldConstructor {
	return func(remainder string, value Node) (string, error) {
		if remainder != "" {
			return "", vaulterr.Newf(vaulterr.FieldNotQueryable, "%q does not take a sub-field", attribute)
		}
		filterValue, err := termFilterValue(value)
		if err != nil {
			return "", err
		}
		return attribute + " = " + filterValue, nil
	}
}

func simpleRangeField(attribute string) FieldConstructor {
	return func(remainder string, value Node) (string, error) {
		if remainder != "" {
			return "", vaulterr.Newf(vaulterr.FieldNotQueryable, "%q does not take a sub-field", attribute)
		}
		switch v := value.(type) {
		case Range:
			if strings.ContainsAny(v.Low, "*?") || strings.ContainsAny(v.High, "*?") {
				return "", vaulterr.New(vaulterr.UnsupportedGrammar, "wildcards are not permitted in range bounds")
			}
			return attribute + " " + v.Low + " TO " + v.High, nil
		default:
			filterValue, err := termFilterValue(value)
			if err != nil {
				return "", err
			}
			return attribute + " = " + filterValue, nil
		}
	}
}

func termFilterValue(value Node) (string, error) {
	switch v := value.(type) {
	case Term:
		if v.Wildcard {
			return quote(v.Value + "*"), nil
		}
		return quote(v.Value), nil
	case Phrase:
		return quote(strings.TrimSuffix(strings.TrimPrefix(v.Value, "\""), "\"")), nil
	case Range:
		return "", vaulterr.New(vaulterr.UnsupportedGrammar, "range not valid here")
	default:
		return "", vaulterr.New(vaulterr.UnsupportedGrammar, "unrecognized value node")
	}
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "\\'") + "'"
}
