package identity_test

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/sampleforge/vault/internal/capability"
	"github.com/sampleforge/vault/internal/identity"
	"github.com/sampleforge/vault/internal/storetest"
	"github.com/sampleforge/vault/internal/vaulterr"
)

func newService(t *testing.T) (*identity.Service, *storetest.IdentityStore) {
	t.Helper()
	store := storetest.NewIdentityStore()
	ctx := context.Background()
	public := &identity.Group{ID: uuid.New(), Name: identity.PublicGroupName, Capabilities: capability.NewSet()}
	if err := store.CreateGroup(ctx, nil, public); err != nil {
		t.Fatalf("seed public group: %v", err)
	}
	return identity.NewService(store), store
}

func TestRegisterCreatesPendingUserWithPrivateGroup(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, nil, "alice", "alice@example.com", "hunter2222")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if !u.Pending {
		t.Error("new user should be pending")
	}

	private, err := store.GetGroupByName(ctx, nil, "alice")
	if err != nil {
		t.Fatalf("expected a private group named after the login: %v", err)
	}
	if !private.Immutable() {
		t.Error("private group must be immutable")
	}

	isMember, err := store.IsMember(ctx, nil, u.ID, private.ID)
	if err != nil || !isMember {
		t.Fatalf("user should belong to its own private group: member=%v err=%v", isMember, err)
	}

	public, err := store.GetGroupByName(ctx, nil, identity.PublicGroupName)
	if err != nil {
		t.Fatalf("get public group: %v", err)
	}
	isMember, err = store.IsMember(ctx, nil, u.ID, public.ID)
	if err != nil || !isMember {
		t.Fatalf("user should join the public group immediately: member=%v err=%v", isMember, err)
	}
}

func TestRegisterRejectsLoginCollisionWithGroupName(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()

	taken := &identity.Group{ID: uuid.New(), Name: "bob", Capabilities: capability.NewSet()}
	if err := store.CreateGroup(ctx, nil, taken); err != nil {
		t.Fatalf("seed group: %v", err)
	}

	_, err := svc.Register(ctx, nil, "bob", "bob@example.com", "hunter2222")
	if vaulterr.KindOf(err) != vaulterr.Conflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestRejectUserDeletesUserAndPrivateGroup(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()
	admin := capability.NewSet()
	admin.Add(capability.ManageUsers)

	u, err := svc.Register(ctx, nil, "carol", "carol@example.com", "hunter2222")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if err := svc.RejectUser(ctx, nil, admin, "carol"); err != nil {
		t.Fatalf("reject: %v", err)
	}

	if _, err := store.GetUserByID(ctx, nil, u.ID); vaulterr.KindOf(err) != vaulterr.NotFound {
		t.Error("user should be gone after rejection")
	}
	if _, err := store.GetGroupByName(ctx, nil, "carol"); vaulterr.KindOf(err) != vaulterr.NotFound {
		t.Error("private group should be gone after rejection")
	}
}

func TestSetPasswordRotatesPasswordVerOnly(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, nil, "dave", "dave@example.com", "hunter2222")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	oldIdentityVer := u.IdentityVer
	oldPasswordVer := u.PasswordVer

	if err := svc.SetPassword(ctx, nil, u, "newpassword1"); err != nil {
		t.Fatalf("set password: %v", err)
	}
	if u.PasswordVer == oldPasswordVer {
		t.Error("password_ver must rotate on password change")
	}
	if u.IdentityVer != oldIdentityVer {
		t.Error("identity_ver must not rotate on password change alone")
	}
}

func TestEffectiveCapabilitiesIsUnionOfGroups(t *testing.T) {
	a := capability.NewSet()
	a.Add(capability.AddingTags)
	b := capability.NewSet()
	b.Add(capability.AddingComments)

	groups := []identity.Group{
		{Capabilities: a},
		{Capabilities: b},
	}
	eff := identity.EffectiveCapabilities(groups)
	if !eff.Has(capability.AddingTags) || !eff.Has(capability.AddingComments) {
		t.Fatalf("expected union of both groups' capabilities, got %v", eff.Slice())
	}
}
