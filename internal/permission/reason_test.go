package permission_test

import (
	"testing"

	"github.com/sampleforge/vault/internal/objectgraph"
	"github.com/sampleforge/vault/internal/permission"
)

func TestAccessReasonRendersProvenance(t *testing.T) {
	p := objectgraph.Permission{ReasonType: objectgraph.ReasonShared}
	got := permission.AccessReason(p, objectgraph.TypeFile, "deadbeef", "alice")
	want := "shared file:deadbeef by user:alice"
	if got != want {
		t.Errorf("AccessReason = %q, want %q", got, want)
	}
}

func TestAccessReasonMigratedUsesFixedString(t *testing.T) {
	p := objectgraph.Permission{ReasonType: objectgraph.ReasonMigrated}
	got := permission.AccessReason(p, objectgraph.TypeObject, "", "")
	if got != "migrated from a prior system" {
		t.Errorf("AccessReason(migrated) = %q", got)
	}
}
