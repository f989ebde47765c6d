package search

import (
	"github.com/meilisearch/meilisearch-go"

	"github.com/sampleforge/vault/internal/objectgraph"
	tpsearch "github.com/sampleforge/vault/third_party/search"
)

// Delegate compiles an AST and runs it against the Meilisearch index
// once the filter expression is built.
type Delegate struct {
	client   *tpsearch.MeiliSearchClient
	registry *Registry
}

// NewDelegate builds a Delegate over client using registry for field
// resolution.
func NewDelegate(client *tpsearch.MeiliSearchClient, registry *Registry) *Delegate {
	return &Delegate{client: client, registry: registry}
}

// Result is one matching object's externally visible identifier.
type Result struct {
	Dhash string
	Type  objectgraph.Type
}

// Query compiles ast against objType, AND-composes it with
// visibilityFilter, and executes it, returning up to limit matches.
func (d *Delegate) Query(ast Node, objType objectgraph.Type, visibilityFilter string, limit int) ([]Result, error) {
	filter, err := Compile(ast, objType, d.registry, visibilityFilter)
	if err != nil {
		return nil, err
	}

	resp, err := d.client.SearchFiltered(tpsearch.ObjectsIndex, "", filter, limit)
	if err != nil {
		return nil, err
	}
	return toResults(resp), nil
}

func toResults(resp *meilisearch.SearchResponse) []Result {
	out := make([]Result, 0, len(resp.Hits))
	for _, hit := range resp.Hits {
		doc, ok := hit.(map[string]interface{})
		if !ok {
			continue
		}
		r := Result{}
		if dhash, ok := doc["dhash"].(string); ok {
			r.Dhash = dhash
		}
		if t, ok := doc["type"].(string); ok {
			r.Type = objectgraph.Type(t)
		}
		out = append(out, r)
	}
	return out
}
