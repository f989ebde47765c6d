package object

import (
	"testing"

	"github.com/google/uuid"

	"github.com/sampleforge/vault/internal/identity"
	"github.com/sampleforge/vault/internal/objectgraph"
)

func TestCanReadKeyRequiresMatchingGroupAndCanRead(t *testing.T) {
	member := uuid.New()
	other := uuid.New()
	perms := []objectgraph.MetakeyPermission{
		{GroupID: other, CanRead: true},
		{GroupID: member, CanRead: false},
	}
	if canReadKey(perms, groupIDSet([]identity.Group{{ID: member}})) {
		t.Fatal("expected no read access without a matching can_read row")
	}
	perms = append(perms, objectgraph.MetakeyPermission{GroupID: member, CanRead: true})
	if !canReadKey(perms, groupIDSet([]identity.Group{{ID: member}})) {
		t.Fatal("expected read access once a matching can_read row exists")
	}
}

func TestCanSetKeyRequiresMatchingGroupAndCanSet(t *testing.T) {
	member := uuid.New()
	perms := []objectgraph.MetakeyPermission{{GroupID: member, CanRead: true, CanSet: false}}
	if canSetKey(perms, groupIDSet([]identity.Group{{ID: member}})) {
		t.Fatal("expected no set access from a can_read-only row")
	}
	perms[0].CanSet = true
	if !canSetKey(perms, groupIDSet([]identity.Group{{ID: member}})) {
		t.Fatal("expected set access once can_set is true for a member group")
	}
}

func TestGroupIDSetIndexesEveryGroup(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	set := groupIDSet([]identity.Group{{ID: a}, {ID: b}})
	if !set[a] || !set[b] {
		t.Fatal("expected both group ids to be present in the set")
	}
	if set[uuid.New()] {
		t.Fatal("expected an unrelated group id to be absent")
	}
}
