// Package identity models users, groups, and membership
// and mediates password hashing/verification and the version counters
// that back the token service's revocation scheme.
package identity

import (
	"time"

	"github.com/google/uuid"

	"github.com/sampleforge/vault/internal/capability"
)

// PublicGroupName is the single group every active user belongs to.
const PublicGroupName = "public"

// User is an identity account.
type User struct {
	ID            uuid.UUID
	Login         string
	Email         string
	PasswordHash  string
	PasswordVer   string
	IdentityVer   string
	Pending       bool
	Disabled      bool
	RequestedOn   time.Time
	RegisteredOn  *time.Time
	RegisteredBy  *uuid.UUID
	FeedQuality   string

	// VersionUID is the legacy per-user version field migration-era
	// tokens bind to; empty for every user created by this deployment.
	// Kept read/write so a migrated-in value round-trips rather than
	// being silently dropped, even though nothing here ever sets it
	// to a fresh value.
	VersionUID string
}

// Group is a named collection of users sharing a capability set.
type Group struct {
	ID           uuid.UUID
	Name         string
	Capabilities capability.Set
	Private      bool
}

// Immutable reports whether this group's capabilities and membership
// are fixed through the ordinary management surface: the
// public group and every private per-user group.
func (g Group) Immutable() bool {
	return g.Private || g.Name == PublicGroupName
}

// Membership is the many-to-many user/group relation.
type Membership struct {
	UserID  uuid.UUID
	GroupID uuid.UUID
}

// EffectiveCapabilities returns the union of the capability sets of
// groups, a user's effective capability set.
func EffectiveCapabilities(groups []Group) capability.Set {
	out := capability.NewSet()
	for _, g := range groups {
		out = out.Union(g.Capabilities)
	}
	return out
}

// HasRights reports whether cap is in the union of groups' capability
// sets.
func HasRights(groups []Group, cap capability.Tag) bool {
	return EffectiveCapabilities(groups).Has(cap)
}
