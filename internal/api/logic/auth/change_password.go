package auth

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/sampleforge/vault/internal/api/middleware"
	"github.com/sampleforge/vault/internal/api/svc"
	"github.com/sampleforge/vault/internal/api/types"
	"github.com/sampleforge/vault/internal/storage"
	"github.com/sampleforge/vault/internal/token"
	"github.com/sampleforge/vault/internal/vaulterr"
)

type ChangePasswordLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewChangePasswordLogic(ctx context.Context, svcCtx *svc.ServiceContext) *ChangePasswordLogic {
	return &ChangePasswordLogic{Logger: logx.WithContext(ctx), ctx: ctx, svcCtx: svcCtx}
}

// ChangePassword consumes a set-password token to rotate the caller's
// password: only a set_password-flavored bearer token may
// reach this operation.
func (l *ChangePasswordLogic) ChangePassword(req *types.ChangePasswordRequest) error {
	verified := middleware.FromContext(l.ctx)
	if verified.Flavor != token.FlavorSetPassword {
		return vaulterr.New(vaulterr.Unauthenticated, "a set-password token is required")
	}

	return storage.WithTx(l.ctx, l.svcCtx.DB, func(tx storage.Tx) error {
		u, err := l.svcCtx.Identities.GetUserByLogin(l.ctx, tx, verified.Login)
		if err != nil {
			return err
		}
		return l.svcCtx.Identity.SetPassword(l.ctx, tx, u, req.NewPassword)
	})
}
