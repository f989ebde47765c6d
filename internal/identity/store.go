package identity

import (
	"context"

	"github.com/google/uuid"

	"github.com/sampleforge/vault/internal/storage"
)

// Store is the storage port identity operations are built on. A
// concrete adapter lives in internal/storage/postgres; tests use the
// in-memory fake in internal/storetest. Every method takes the
// explicit Tx the design notes call for — no ambient session.
type Store interface {
	// CreateUser inserts the user row only, rejecting a duplicate login.
	// The private group and the shared login/group-name check are
	// handled by the caller (Service.Register, LoginOrGroupNameTaken).
	CreateUser(ctx context.Context, tx storage.Tx, u *User) error

	GetUserByLogin(ctx context.Context, tx storage.Tx, login string) (*User, error)
	GetUserByID(ctx context.Context, tx storage.Tx, id uuid.UUID) (*User, error)
	GetUserByEmail(ctx context.Context, tx storage.Tx, email string) (*User, error)
	ListPendingUsers(ctx context.Context, tx storage.Tx) ([]User, error)
	ListUsers(ctx context.Context, tx storage.Tx) ([]User, error)

	// UpdateUser persists mutable fields (password hash/version,
	// identity version, pending/disabled flags, registration
	// metadata). Login and ID are immutable after creation.
	UpdateUser(ctx context.Context, tx storage.Tx, u *User) error

	// DeleteUser removes the user row only; the pending-rejection flow
	// deletes the private group separately with DeleteGroup.
	DeleteUser(ctx context.Context, tx storage.Tx, id uuid.UUID) error

	CreateGroup(ctx context.Context, tx storage.Tx, g *Group) error
	DeleteGroup(ctx context.Context, tx storage.Tx, id uuid.UUID) error
	GetGroupByName(ctx context.Context, tx storage.Tx, name string) (*Group, error)
	GetGroupByID(ctx context.Context, tx storage.Tx, id uuid.UUID) (*Group, error)
	ListGroupsForUser(ctx context.Context, tx storage.Tx, userID uuid.UUID) ([]Group, error)
	ListGroupsWithCapability(ctx context.Context, tx storage.Tx, cap string) ([]Group, error)

	AddMember(ctx context.Context, tx storage.Tx, userID, groupID uuid.UUID) error
	RemoveMember(ctx context.Context, tx storage.Tx, userID, groupID uuid.UUID) error
	IsMember(ctx context.Context, tx storage.Tx, userID, groupID uuid.UUID) (bool, error)

	// LoginOrGroupNameTaken checks the shared login/group-name space
	// invariant: a login and a group name can never collide.
	LoginOrGroupNameTaken(ctx context.Context, tx storage.Tx, name string) (bool, error)
}
