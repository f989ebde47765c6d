package permission

import (
	"fmt"

	"github.com/sampleforge/vault/internal/objectgraph"
)

// AccessReason renders the human-readable provenance string
// original_source's Object.access_reason property computes from ORM
// relationships; here the caller supplies the already-resolved related
// object/user identifiers since this package has no store dependency
// of its own beyond the one Permission row. migrated rows predate the
// per-row reason fields entirely, hence the fixed string.
func AccessReason(p objectgraph.Permission, relatedObjectType objectgraph.Type, relatedObjectDhash, relatedUserLogin string) string {
	if p.ReasonType == objectgraph.ReasonMigrated {
		return "migrated from a prior system"
	}
	return fmt.Sprintf("%s %s:%s by user:%s", p.ReasonType, relatedObjectType, relatedObjectDhash, relatedUserLogin)
}
