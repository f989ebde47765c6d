// Package logic holds the per-endpoint business logic, one
// NewXLogic/X pair per operation, in the goctl-scaffolded shape.
package logic

import (
	"context"

	"github.com/google/uuid"

	"github.com/sampleforge/vault/internal/access"
	"github.com/sampleforge/vault/internal/api/middleware"
	"github.com/sampleforge/vault/internal/api/svc"
	"github.com/sampleforge/vault/internal/capability"
	"github.com/sampleforge/vault/internal/identity"
	"github.com/sampleforge/vault/internal/storage"
	"github.com/sampleforge/vault/internal/vaulterr"
)

// CurrentUser resolves the bearer-token identity FromContext into the
// full User and group list, the shape every protected operation needs
// to compute capabilities and group membership. It also applies the
// request rate limit when svcCtx.Limiter is set.
func CurrentUser(ctx context.Context, tx storage.Tx, svcCtx *svc.ServiceContext) (*identity.User, []identity.Group, error) {
	verified := middleware.FromContext(ctx)
	u, err := svcCtx.Identities.GetUserByLogin(ctx, tx, verified.Login)
	if err != nil {
		return nil, nil, err
	}
	if u.Disabled {
		return nil, nil, vaulterr.New(vaulterr.Forbidden, "account disabled")
	}
	groups, err := svcCtx.Identities.ListGroupsForUser(ctx, tx, u.ID)
	if err != nil {
		return nil, nil, err
	}
	if svcCtx.Limiter != nil {
		if err := svcCtx.Limiter.Allow(ctx, u.Login, identity.EffectiveCapabilities(groups)); err != nil {
			return nil, nil, err
		}
	}
	return u, groups, nil
}

// AccessRequestor builds the explicit requestor value the access
// façade and permission engine take, from a resolved user and its
// groups.
func AccessRequestor(u *identity.User, groups []identity.Group) access.Requestor {
	groupIDs := make([]uuid.UUID, 0, len(groups))
	for _, g := range groups {
		groupIDs = append(groupIDs, g.ID)
	}
	return access.Requestor{
		UserID:         u.ID,
		MemberGroupIDs: groupIDs,
		Capabilities:   identity.EffectiveCapabilities(groups),
	}
}

// QueryingGroups annotates each of the user's groups with whether it
// holds share_queried_objects, the input Access's step 4 needs.
func QueryingGroups(groups []identity.Group) []access.QueryingGroup {
	out := make([]access.QueryingGroup, 0, len(groups))
	for _, g := range groups {
		out = append(out, access.QueryingGroup{
			GroupID:            g.ID,
			HasShareQueriedCap: g.Capabilities.Has(capability.ShareQueriedObjects),
		})
	}
	return out
}

// RequireCapability is the admin-surface guard every manage_users-only
// endpoint opens with.
func RequireCapability(groups []identity.Group, tag capability.Tag) error {
	if !identity.HasRights(groups, tag) {
		return vaulterr.New(vaulterr.Forbidden, string(tag)+" required")
	}
	return nil
}
