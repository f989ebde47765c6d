package identity

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/zeromicro/go-zero/core/logx"

	"github.com/sampleforge/vault/internal/capability"
	"github.com/sampleforge/vault/internal/storage"
	"github.com/sampleforge/vault/internal/vaulterr"
)

// Service orchestrates identity invariants on top of
// a Store: unique login/group-name space, the one-private-group-per-
// user rule, the public-group membership floor, and the version
// counters the token service binds tokens to.
type Service struct {
	store Store
}

// NewService builds an identity Service backed by store.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Register creates a pending user and its private group atomically,
// and joins the public group immediately with empty capabilities
//. It never mutates the public/private group
// invariants established here through the ordinary edit surface.
func (s *Service) Register(ctx context.Context, tx storage.Tx, login, email, password string) (*User, error) {
	taken, err := s.store.LoginOrGroupNameTaken(ctx, tx, login)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, vaulterr.New(vaulterr.Conflict, "login or group name already exists")
	}

	privateGroup := &Group{
		ID:           uuid.New(),
		Name:         login,
		Capabilities: capability.NewSet(),
		Private:      true,
	}
	if err := s.store.CreateGroup(ctx, tx, privateGroup); err != nil {
		return nil, err
	}

	passwordVer, err := NewVersion()
	if err != nil {
		return nil, err
	}
	identityVer, err := NewVersion()
	if err != nil {
		return nil, err
	}

	var hash string
	if password != "" {
		hash, err = HashPassword(password)
		if err != nil {
			return nil, err
		}
	}

	u := &User{
		ID:           uuid.New(),
		Login:        login,
		Email:        email,
		PasswordHash: hash,
		PasswordVer:  passwordVer,
		IdentityVer:  identityVer,
		Pending:      true,
		RequestedOn:  time.Now(),
		FeedQuality:  "high",
	}
	if err := s.store.CreateUser(ctx, tx, u); err != nil {
		return nil, err
	}

	if err := s.store.AddMember(ctx, tx, u.ID, privateGroup.ID); err != nil {
		return nil, err
	}

	public, err := s.store.GetGroupByName(ctx, tx, PublicGroupName)
	if err != nil {
		return nil, err
	}
	if err := s.store.AddMember(ctx, tx, u.ID, public.ID); err != nil {
		return nil, err
	}

	logx.Infof("identity: registered pending user %s", login)
	return u, nil
}

// ApproveUser flips pending to false and records registration
// provenance. Requires requestorCaps to hold manage_users.
func (s *Service) ApproveUser(ctx context.Context, tx storage.Tx, requestorCaps capability.Set, approverID uuid.UUID, login string) (*User, error) {
	if !requestorCaps.Has(capability.ManageUsers) {
		return nil, vaulterr.New(vaulterr.Forbidden, "manage_users required")
	}
	u, err := s.store.GetUserByLogin(ctx, tx, login)
	if err != nil {
		return nil, err
	}
	if !u.Pending {
		return nil, vaulterr.New(vaulterr.NotFound, "no pending user with that login")
	}
	now := time.Now()
	u.Pending = false
	u.RegisteredOn = &now
	u.RegisteredBy = &approverID
	if err := s.store.UpdateUser(ctx, tx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// RejectUser deletes a pending user and its private group. Requires
// requestorCaps to hold manage_users.
func (s *Service) RejectUser(ctx context.Context, tx storage.Tx, requestorCaps capability.Set, login string) error {
	if !requestorCaps.Has(capability.ManageUsers) {
		return vaulterr.New(vaulterr.Forbidden, "manage_users required")
	}
	u, err := s.store.GetUserByLogin(ctx, tx, login)
	if err != nil {
		return err
	}
	if !u.Pending {
		return vaulterr.New(vaulterr.NotFound, "no pending user with that login")
	}
	privateGroup, err := s.store.GetGroupByName(ctx, tx, login)
	if err != nil {
		return err
	}
	if err := s.store.DeleteUser(ctx, tx, u.ID); err != nil {
		return err
	}
	return s.store.DeleteGroup(ctx, tx, privateGroup.ID)
}

// SetPassword rehashes the user's password and rotates password_ver,
// invalidating every outstanding set-password and session token.
func (s *Service) SetPassword(ctx context.Context, tx storage.Tx, u *User, newPassword string) error {
	hash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}
	ver, err := NewVersion()
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	u.PasswordVer = ver
	return s.store.UpdateUser(ctx, tx, u)
}

// ResetSessions rotates identity_ver, invalidating outstanding session
// tokens only — used when disabling a user or
// changing their capabilities.
func (s *Service) ResetSessions(ctx context.Context, tx storage.Tx, u *User) error {
	ver, err := NewVersion()
	if err != nil {
		return err
	}
	u.IdentityVer = ver
	return s.store.UpdateUser(ctx, tx, u)
}

// SetDisabled toggles the disabled flag and, when disabling, resets
// sessions so live tokens stop validating immediately.
func (s *Service) SetDisabled(ctx context.Context, tx storage.Tx, u *User, disabled bool) error {
	u.Disabled = disabled
	if disabled {
		return s.ResetSessions(ctx, tx, u)
	}
	return s.store.UpdateUser(ctx, tx, u)
}

// CreateGroup creates a new, mutable group. Requires manage_users.
func (s *Service) CreateGroup(ctx context.Context, tx storage.Tx, requestorCaps capability.Set, name string) (*Group, error) {
	if !requestorCaps.Has(capability.ManageUsers) {
		return nil, vaulterr.New(vaulterr.Forbidden, "manage_users required")
	}
	taken, err := s.store.LoginOrGroupNameTaken(ctx, tx, name)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, vaulterr.New(vaulterr.Conflict, "login or group name already exists")
	}
	g := &Group{ID: uuid.New(), Name: name, Capabilities: capability.NewSet()}
	if err := s.store.CreateGroup(ctx, tx, g); err != nil {
		return nil, err
	}
	return g, nil
}

// AddMember adds user to group, refusing to touch immutable groups
// through this surface.
func (s *Service) AddMember(ctx context.Context, tx storage.Tx, requestorCaps capability.Set, g *Group, userID uuid.UUID) error {
	if !requestorCaps.Has(capability.ManageUsers) {
		return vaulterr.New(vaulterr.Forbidden, "manage_users required")
	}
	if g.Immutable() {
		return vaulterr.New(vaulterr.Forbidden, "group is immutable")
	}
	return s.store.AddMember(ctx, tx, userID, g.ID)
}

// RemoveMember removes user from group, with the same immutability
// guard as AddMember.
func (s *Service) RemoveMember(ctx context.Context, tx storage.Tx, requestorCaps capability.Set, g *Group, userID uuid.UUID) error {
	if !requestorCaps.Has(capability.ManageUsers) {
		return vaulterr.New(vaulterr.Forbidden, "manage_users required")
	}
	if g.Immutable() {
		return vaulterr.New(vaulterr.Forbidden, "group is immutable")
	}
	return s.store.RemoveMember(ctx, tx, userID, g.ID)
}
