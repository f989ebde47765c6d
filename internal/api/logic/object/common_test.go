package object

import (
	"testing"

	"github.com/sampleforge/vault/internal/objectgraph"
	"github.com/sampleforge/vault/internal/vaulterr"
)

func TestPathTypeMapsKnownSegments(t *testing.T) {
	cases := map[string]objectgraph.Type{
		"object": objectgraph.TypeObject,
		"file":   objectgraph.TypeFile,
		"config": objectgraph.TypeStaticConfig,
		"blob":   objectgraph.TypeBlob,
	}
	for segment, want := range cases {
		got, err := pathType(segment)
		if err != nil {
			t.Fatalf("pathType(%q): unexpected error: %v", segment, err)
		}
		if got != want {
			t.Errorf("pathType(%q) = %q, want %q", segment, got, want)
		}
	}
}

func TestPathTypeRejectsUnknownSegment(t *testing.T) {
	_, err := pathType("nope")
	if vaulterr.KindOf(err) != vaulterr.SchemaInvalid {
		t.Fatalf("expected schema-invalid, got %v", err)
	}
}
