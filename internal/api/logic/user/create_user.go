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

type CreateUserLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewCreateUserLogic(ctx context.Context, svcCtx *svc.ServiceContext) *CreateUserLogic {
	return &CreateUserLogic{Logger: logx.WithContext(ctx), ctx: ctx, svcCtx: svcCtx}
}

// CreateUser lets an administrator create an already-approved user
// directly.
func (l *CreateUserLogic) CreateUser(req *types.CreateUserRequest) (*types.UserView, error) {
	var view types.UserView
	err := storage.WithTx(l.ctx, l.svcCtx.DB, func(tx storage.Tx) error {
		caller, callerGroups, err := logic.CurrentUser(l.ctx, tx, l.svcCtx)
		if err != nil {
			return err
		}
		if err := logic.RequireCapability(callerGroups, capability.ManageUsers); err != nil {
			return err
		}
		u, err := l.svcCtx.Identity.Register(l.ctx, tx, req.Login, req.Email, req.Password)
		if err != nil {
			return err
		}
		requestorCaps := identity.EffectiveCapabilities(callerGroups)
		if _, err := l.svcCtx.Identity.ApproveUser(l.ctx, tx, requestorCaps, caller.ID, u.Login); err != nil {
			return err
		}
		approved, err := l.svcCtx.Identities.GetUserByLogin(l.ctx, tx, u.Login)
		if err != nil {
			return err
		}
		groups, err := l.svcCtx.Identities.ListGroupsForUser(l.ctx, tx, approved.ID)
		if err != nil {
			return err
		}
		view = renderUser(*approved, groups)
		return nil
	})
	return &view, err
}
