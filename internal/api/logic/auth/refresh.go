package auth

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/sampleforge/vault/internal/api/logic"
	"github.com/sampleforge/vault/internal/api/middleware"
	"github.com/sampleforge/vault/internal/api/svc"
	"github.com/sampleforge/vault/internal/api/types"
	"github.com/sampleforge/vault/internal/storage"
	"github.com/sampleforge/vault/internal/token"
	"github.com/sampleforge/vault/internal/vaulterr"
)

type RefreshLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewRefreshLogic(ctx context.Context, svcCtx *svc.ServiceContext) *RefreshLogic {
	return &RefreshLogic{Logger: logx.WithContext(ctx), ctx: ctx, svcCtx: svcCtx}
}

// Refresh re-mints a session token for the caller of a still-valid
// session token.
func (l *RefreshLogic) Refresh() (*types.LoginResponse, error) {
	verified := middleware.FromContext(l.ctx)
	if verified.Flavor != token.FlavorSession {
		return nil, vaulterr.New(vaulterr.Unauthenticated, "a session token is required")
	}

	var resp *types.LoginResponse
	err := storage.WithTx(l.ctx, l.svcCtx.DB, func(tx storage.Tx) error {
		u, groups, err := logic.CurrentUser(l.ctx, tx, l.svcCtx)
		if err != nil {
			return err
		}
		tok, err := l.svcCtx.Token.MintSession(token.UserVersions{Login: u.Login, PasswordVer: u.PasswordVer, IdentityVer: u.IdentityVer})
		if err != nil {
			return err
		}
		resp = loginResponse(u.Login, tok, groups)
		return nil
	})
	return resp, err
}
