// Package object implements the object-surface operations: Access
// through the façade, and the comment/tag/metakey sub-resources that
// mutate an object's auxiliary entities once it is resolved visible.
package object

import (
	"github.com/sampleforge/vault/internal/objectgraph"
	"github.com/sampleforge/vault/internal/vaulterr"
)

// pathType maps the URL path segment ("file, config, blob, object")
// onto the internal discriminator, which spells the
// config variant out as static_config (objectgraph.Type's own name for
// it, not an HTTP concern).
func pathType(segment string) (objectgraph.Type, error) {
	switch segment {
	case "object":
		return objectgraph.TypeObject, nil
	case "file":
		return objectgraph.TypeFile, nil
	case "config":
		return objectgraph.TypeStaticConfig, nil
	case "blob":
		return objectgraph.TypeBlob, nil
	default:
		return "", vaulterr.New(vaulterr.SchemaInvalid, "unrecognized object type "+segment)
	}
}
