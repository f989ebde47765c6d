// Package storetest provides in-memory fakes of the storage ports so
// the permission engine, access façade, and identity service can be
// tested against graph/ACL invariants without a live Postgres.
// sqlmock cannot exercise multi-step BFS propagation cheaply, so an
// in-memory store is the better fit here (see DESIGN.md).
package storetest

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/sampleforge/vault/internal/capability"
	"github.com/sampleforge/vault/internal/identity"
	"github.com/sampleforge/vault/internal/storage"
	"github.com/sampleforge/vault/internal/vaulterr"
)

// IdentityStore is an in-memory identity.Store. Tx is ignored; callers
// may pass nil.
type IdentityStore struct {
	mu          sync.Mutex
	users       map[uuid.UUID]identity.User
	groups      map[uuid.UUID]identity.Group
	memberships map[uuid.UUID]map[uuid.UUID]bool // userID -> groupID -> true
}

// NewIdentityStore builds an empty IdentityStore.
func NewIdentityStore() *IdentityStore {
	return &IdentityStore{
		users:       map[uuid.UUID]identity.User{},
		groups:      map[uuid.UUID]identity.Group{},
		memberships: map[uuid.UUID]map[uuid.UUID]bool{},
	}
}

func (s *IdentityStore) CreateUser(_ context.Context, _ storage.Tx, u *identity.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Login == u.Login {
			return vaulterr.New(vaulterr.Conflict, "login already exists")
		}
	}
	s.users[u.ID] = *u
	return nil
}

func (s *IdentityStore) GetUserByLogin(_ context.Context, _ storage.Tx, login string) (*identity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Login == login {
			cp := u
			return &cp, nil
		}
	}
	return nil, vaulterr.New(vaulterr.NotFound, "user not found")
}

func (s *IdentityStore) GetUserByID(_ context.Context, _ storage.Tx, id uuid.UUID) (*identity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, vaulterr.New(vaulterr.NotFound, "user not found")
	}
	return &u, nil
}

func (s *IdentityStore) GetUserByEmail(_ context.Context, _ storage.Tx, email string) (*identity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			cp := u
			return &cp, nil
		}
	}
	return nil, vaulterr.New(vaulterr.NotFound, "user not found")
}

func (s *IdentityStore) ListPendingUsers(_ context.Context, _ storage.Tx) ([]identity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []identity.User
	for _, u := range s.users {
		if u.Pending {
			out = append(out, u)
		}
	}
	return out, nil
}

func (s *IdentityStore) ListUsers(_ context.Context, _ storage.Tx) ([]identity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]identity.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	return out, nil
}

func (s *IdentityStore) UpdateUser(_ context.Context, _ storage.Tx, u *identity.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.ID]; !ok {
		return vaulterr.New(vaulterr.NotFound, "user not found")
	}
	s.users[u.ID] = *u
	return nil
}

func (s *IdentityStore) DeleteUser(_ context.Context, _ storage.Tx, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return vaulterr.New(vaulterr.NotFound, "user not found")
	}
	delete(s.users, id)
	delete(s.memberships, id)
	return nil
}

func (s *IdentityStore) CreateGroup(_ context.Context, _ storage.Tx, g *identity.Group) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.groups {
		if existing.Name == g.Name {
			return vaulterr.New(vaulterr.Conflict, "group name already exists")
		}
	}
	s.groups[g.ID] = *g
	return nil
}

func (s *IdentityStore) DeleteGroup(_ context.Context, _ storage.Tx, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.groups[id]; !ok {
		return vaulterr.New(vaulterr.NotFound, "group not found")
	}
	delete(s.groups, id)
	for _, gs := range s.memberships {
		delete(gs, id)
	}
	return nil
}

func (s *IdentityStore) GetGroupByName(_ context.Context, _ storage.Tx, name string) (*identity.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, g := range s.groups {
		if g.Name == name {
			cp := g
			return &cp, nil
		}
	}
	return nil, vaulterr.New(vaulterr.NotFound, "group not found")
}

func (s *IdentityStore) GetGroupByID(_ context.Context, _ storage.Tx, id uuid.UUID) (*identity.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.groups[id]
	if !ok {
		return nil, vaulterr.New(vaulterr.NotFound, "group not found")
	}
	return &g, nil
}

func (s *IdentityStore) ListGroupsForUser(_ context.Context, _ storage.Tx, userID uuid.UUID) ([]identity.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []identity.Group
	for gid := range s.memberships[userID] {
		out = append(out, s.groups[gid])
	}
	return out, nil
}

func (s *IdentityStore) ListGroupsWithCapability(_ context.Context, _ storage.Tx, cap string) ([]identity.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []identity.Group
	for _, g := range s.groups {
		if g.Capabilities.Has(capability.Tag(cap)) {
			out = append(out, g)
		}
	}
	return out, nil
}

func (s *IdentityStore) AddMember(_ context.Context, _ storage.Tx, userID, groupID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.memberships[userID] == nil {
		s.memberships[userID] = map[uuid.UUID]bool{}
	}
	s.memberships[userID][groupID] = true
	return nil
}

func (s *IdentityStore) RemoveMember(_ context.Context, _ storage.Tx, userID, groupID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.memberships[userID], groupID)
	return nil
}

func (s *IdentityStore) IsMember(_ context.Context, _ storage.Tx, userID, groupID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.memberships[userID][groupID], nil
}

func (s *IdentityStore) LoginOrGroupNameTaken(_ context.Context, _ storage.Tx, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Login == name {
			return true, nil
		}
	}
	for _, g := range s.groups {
		if g.Name == name {
			return true, nil
		}
	}
	return false, nil
}
