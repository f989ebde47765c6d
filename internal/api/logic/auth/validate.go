package auth

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/sampleforge/vault/internal/api/logic"
	"github.com/sampleforge/vault/internal/api/middleware"
	"github.com/sampleforge/vault/internal/api/svc"
	"github.com/sampleforge/vault/internal/api/types"
	"github.com/sampleforge/vault/internal/storage"
)

type ValidateLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewValidateLogic(ctx context.Context, svcCtx *svc.ServiceContext) *ValidateLogic {
	return &ValidateLogic{Logger: logx.WithContext(ctx), ctx: ctx, svcCtx: svcCtx}
}

// Validate returns the identity view for whatever bearer token the
// caller presented; the token itself
// is not re-emitted since this endpoint does not mint a new one.
func (l *ValidateLogic) Validate() (*types.LoginResponse, error) {
	verified := middleware.FromContext(l.ctx)
	var resp *types.LoginResponse
	err := storage.WithTx(l.ctx, l.svcCtx.DB, func(tx storage.Tx) error {
		_, groups, err := logic.CurrentUser(l.ctx, tx, l.svcCtx)
		if err != nil {
			return err
		}
		resp = loginResponse(verified.Login, "", groups)
		return nil
	})
	return resp, err
}
