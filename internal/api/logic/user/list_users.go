package user

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/sampleforge/vault/internal/api/logic"
	"github.com/sampleforge/vault/internal/api/svc"
	"github.com/sampleforge/vault/internal/api/types"
	"github.com/sampleforge/vault/internal/capability"
	"github.com/sampleforge/vault/internal/identity"
	"github.com/sampleforge/vault/internal/storage"
)

type ListUsersLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewListUsersLogic(ctx context.Context, svcCtx *svc.ServiceContext) *ListUsersLogic {
	return &ListUsersLogic{Logger: logx.WithContext(ctx), ctx: ctx, svcCtx: svcCtx}
}

// ListUsers returns every user, admin-only.
func (l *ListUsersLogic) ListUsers() (*types.ListUsersResponse, error) {
	var resp types.ListUsersResponse
	err := storage.WithTx(l.ctx, l.svcCtx.DB, func(tx storage.Tx) error {
		_, callerGroups, err := logic.CurrentUser(l.ctx, tx, l.svcCtx)
		if err != nil {
			return err
		}
		if err := logic.RequireCapability(callerGroups, capability.ManageUsers); err != nil {
			return err
		}
		users, err := l.svcCtx.Identities.ListUsers(l.ctx, tx)
		if err != nil {
			return err
		}
		for _, u := range users {
			groups, err := l.svcCtx.Identities.ListGroupsForUser(l.ctx, tx, u.ID)
			if err != nil {
				return err
			}
			resp.Users = append(resp.Users, renderUser(u, groups))
		}
		return nil
	})
	return &resp, err
}

func renderUser(u identity.User, groups []identity.Group) types.UserView {
	names := make([]string, len(groups))
	for i, g := range groups {
		names[i] = g.Name
	}
	tags := identity.EffectiveCapabilities(groups).Slice()
	capNames := make([]string, len(tags))
	for i, c := range tags {
		capNames[i] = string(c)
	}
	return types.UserView{
		Login:        u.Login,
		Email:        u.Email,
		Pending:      u.Pending,
		Disabled:     u.Disabled,
		FeedQuality:  u.FeedQuality,
		Groups:       names,
		Capabilities: capNames,
	}
}
