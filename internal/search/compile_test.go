package search_test

import (
	"strings"
	"testing"

	"github.com/sampleforge/vault/internal/objectgraph"
	"github.com/sampleforge/vault/internal/search"
	"github.com/sampleforge/vault/internal/vaulterr"
)

func TestCompileFieldScopedTerm(t *testing.T) {
	registry := search.DefaultRegistry()
	ast := search.Field{Name: "name", Value: search.Term{Value: "sample.exe"}}

	filter, err := search.Compile(ast, objectgraph.TypeFile, registry, "")
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if !strings.Contains(filter, "file_name") || !strings.Contains(filter, "sample.exe") {
		t.Fatalf("expected filter to reference file_name and the term, got %q", filter)
	}
}

func TestCompileBareTermIsFieldRequired(t *testing.T) {
	registry := search.DefaultRegistry()
	_, err := search.Compile(search.Term{Value: "sample"}, objectgraph.TypeFile, registry, "")
	if vaulterr.KindOf(err) != vaulterr.FieldNotQueryable {
		t.Fatalf("expected field-not-queryable for a bare term, got %v", err)
	}
}

func TestCompileWildcardInRangeRejected(t *testing.T) {
	registry := search.DefaultRegistry()
	ast := search.Field{Name: "size", Value: search.Range{Low: "10", High: "2*"}}
	_, err := search.Compile(ast, objectgraph.TypeFile, registry, "")
	if vaulterr.KindOf(err) != vaulterr.UnsupportedGrammar {
		t.Fatalf("expected unsupported-grammar for a wildcard range bound, got %v", err)
	}
}

func TestCompileUnknownFieldIsNotQueryable(t *testing.T) {
	registry := search.DefaultRegistry()
	ast := search.Field{Name: "nonexistent", Value: search.Term{Value: "x"}}
	_, err := search.Compile(ast, objectgraph.TypeFile, registry, "")
	if vaulterr.KindOf(err) != vaulterr.FieldNotQueryable {
		t.Fatalf("expected field-not-queryable for an unregistered field, got %v", err)
	}
}

func TestCompileDottedMetaSubField(t *testing.T) {
	registry := search.DefaultRegistry()
	ast := search.Field{Name: "meta.vendor", Value: search.Term{Value: "acme"}}
	filter, err := search.Compile(ast, objectgraph.TypeObject, registry, "")
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if !strings.Contains(filter, "vendor") || !strings.Contains(filter, "acme") {
		t.Fatalf("expected filter to reference the dotted sub-field and value, got %q", filter)
	}
}

func TestCompileANDsVisibilityFilter(t *testing.T) {
	registry := search.DefaultRegistry()
	ast := search.Field{Name: "name", Value: search.Term{Value: "sample"}}
	filter, err := search.Compile(ast, objectgraph.TypeFile, registry, "group_ids IN [1,2]")
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if !strings.Contains(filter, "group_ids IN [1,2]") {
		t.Fatalf("expected visibility filter to be AND-composed, got %q", filter)
	}
}
