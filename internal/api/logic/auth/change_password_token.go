package auth

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/sampleforge/vault/internal/api/logic"
	"github.com/sampleforge/vault/internal/api/svc"
	"github.com/sampleforge/vault/internal/api/types"
	"github.com/sampleforge/vault/internal/capability"
	"github.com/sampleforge/vault/internal/storage"
	"github.com/sampleforge/vault/internal/token"
)

type ChangePasswordTokenLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewChangePasswordTokenLogic(ctx context.Context, svcCtx *svc.ServiceContext) *ChangePasswordTokenLogic {
	return &ChangePasswordTokenLogic{Logger: logx.WithContext(ctx), ctx: ctx, svcCtx: svcCtx}
}

// ChangePasswordToken mints a set-password token for an arbitrary user
// on behalf of an administrator.
func (l *ChangePasswordTokenLogic) ChangePasswordToken(req *types.LoginPathRequest) (*types.ChangePasswordTokenResponse, error) {
	var tok string
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
		tok, err = l.svcCtx.Token.MintSetPassword(token.UserVersions{Login: target.Login, PasswordVer: target.PasswordVer})
		return err
	})
	if err != nil {
		return nil, err
	}
	return &types.ChangePasswordTokenResponse{Token: tok}, nil
}
