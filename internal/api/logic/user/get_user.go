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

type GetUserLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewGetUserLogic(ctx context.Context, svcCtx *svc.ServiceContext) *GetUserLogic {
	return &GetUserLogic{Logger: logx.WithContext(ctx), ctx: ctx, svcCtx: svcCtx}
}

// GetUser returns the user view for any login when the caller holds
// manage_users. Without manage_users the caller may read only their own
// login, and receives the same full view; no restricted profile view
// exists.
func (l *GetUserLogic) GetUser(req *types.LoginPathRequest) (*types.UserView, error) {
	var view types.UserView
	err := storage.WithTx(l.ctx, l.svcCtx.DB, func(tx storage.Tx) error {
		caller, callerGroups, err := logic.CurrentUser(l.ctx, tx, l.svcCtx)
		if err != nil {
			return err
		}
		if caller.Login != req.Login {
			if err := logic.RequireCapability(callerGroups, capability.ManageUsers); err != nil {
				return err
			}
		}
		target, err := l.svcCtx.Identities.GetUserByLogin(l.ctx, tx, req.Login)
		if err != nil {
			return err
		}
		var groups []identity.Group
		if caller.Login == req.Login {
			groups = callerGroups
		} else {
			groups, err = l.svcCtx.Identities.ListGroupsForUser(l.ctx, tx, target.ID)
			if err != nil {
				return err
			}
		}
		view = renderUser(*target, groups)
		return nil
	})
	return &view, err
}
