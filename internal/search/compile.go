package search

import (
	"fmt"
	"strings"

	"github.com/sampleforge/vault/internal/objectgraph"
	"github.com/sampleforge/vault/internal/vaulterr"
)

// Compile turns ast into a Meilisearch filter expression scoped to
// objType, AND-composed with visibilityFilter (the materialization of
// permission.Engine.Visible for this requestor, supplied by the
// caller so this package stays independent of the permission engine).
// A bare Term or Phrase outside a Field is the field-required error;
// an unrecognized node kind is unsupported-grammar.
func Compile(ast Node, objType objectgraph.Type, registry *Registry, visibilityFilter string) (string, error) {
	body, err := compile(ast, objType, registry)
	if err != nil {
		return "", err
	}
	if visibilityFilter == "" {
		return body, nil
	}
	return fmt.Sprintf("(%s) AND (%s)", body, visibilityFilter), nil
}

func compile(n Node, objType objectgraph.Type, registry *Registry) (string, error) {
	switch v := n.(type) {
	case And:
		return joinChildren(v.Children, " AND ", objType, registry)
	case Or:
		return joinChildren(v.Children, " OR ", objType, registry)
	case Not:
		child, err := compile(v.Child, objType, registry)
		if err != nil {
			return "", err
		}
		return "NOT (" + child + ")", nil
	case Prohibit:
		child, err := compile(v.Child, objType, registry)
		if err != nil {
			return "", err
		}
		return "NOT (" + child + ")", nil
	case Group:
		child, err := compile(v.Child, objType, registry)
		if err != nil {
			return "", err
		}
		return "(" + child + ")", nil
	case Field:
		return registry.Resolve(objType, v.Name, v.Value)
	case Term, Phrase:
		return "", vaulterr.New(vaulterr.FieldNotQueryable, "bare terms must be scoped to a field")
	case Range:
		return "", vaulterr.New(vaulterr.FieldNotQueryable, "ranges must be scoped to a field")
	default:
		return "", vaulterr.Newf(vaulterr.UnsupportedGrammar, "unrecognized query node %T", n)
	}
}

func joinChildren(children []Node, sep string, objType objectgraph.Type, registry *Registry) (string, error) {
	parts := make([]string, 0, len(children))
	for _, c := range children {
		part, err := compile(c, objType, registry)
		if err != nil {
			return "", err
		}
		parts = append(parts, part)
	}
	return "(" + strings.Join(parts, sep) + ")", nil
}
