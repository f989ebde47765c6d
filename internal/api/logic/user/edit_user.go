package user

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/sampleforge/vault/internal/api/logic"
	"github.com/sampleforge/vault/internal/api/svc"
	"github.com/sampleforge/vault/internal/api/types"
	"github.com/sampleforge/vault/internal/capability"
	"github.com/sampleforge/vault/internal/storage"
)

type EditUserLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewEditUserLogic(ctx context.Context, svcCtx *svc.ServiceContext) *EditUserLogic {
	return &EditUserLogic{Logger: logx.WithContext(ctx), ctx: ctx, svcCtx: svcCtx}
}

// EditUser edits the non-identity fields of PUT /user/<login>:
// email, disabled, feed_quality. Disabling a user resets
// its sessions (identity.Service.SetDisabled), per §3/§4.2.
func (l *EditUserLogic) EditUser(req *types.EditUserRequest) (*types.UserView, error) {
	var view types.UserView
	err := storage.WithTx(l.ctx, l.svcCtx.DB, func(tx storage.Tx) error {
		_, callerGroups, err := logic.CurrentUser(l.ctx, tx, l.svcCtx)
		if err != nil {
			return err
		}
		if err := logic.RequireCapability(callerGroups, capability.ManageUsers); err != nil {
			return err
		}
		target, err := l.svcCtx.Identities.GetUserByLogin(l.ctx, tx, req.Login)
		if err != nil {
			return err
		}
		if req.Email != "" {
			target.Email = req.Email
		}
		if req.FeedQuality != "" {
			target.FeedQuality = req.FeedQuality
		}
		if req.Disabled != nil && *req.Disabled != target.Disabled {
			if err := l.svcCtx.Identity.SetDisabled(l.ctx, tx, target, *req.Disabled); err != nil {
				return err
			}
		} else if err := l.svcCtx.Identities.UpdateUser(l.ctx, tx, target); err != nil {
			return err
		}
		groups, err := l.svcCtx.Identities.ListGroupsForUser(l.ctx, tx, target.ID)
		if err != nil {
			return err
		}
		view = renderUser(*target, groups)
		return nil
	})
	return &view, err
}
