package auth

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/sampleforge/vault/internal/api/svc"
	"github.com/sampleforge/vault/internal/api/types"
	"github.com/sampleforge/vault/internal/identity"
	"github.com/sampleforge/vault/internal/storage"
	"github.com/sampleforge/vault/internal/token"
	"github.com/sampleforge/vault/internal/vaulterr"
)

type LoginLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewLoginLogic(ctx context.Context, svcCtx *svc.ServiceContext) *LoginLogic {
	return &LoginLogic{Logger: logx.WithContext(ctx), ctx: ctx, svcCtx: svcCtx}
}

// Login authenticates login/password and mints a session token
//: 403 on bad credentials, pending, disabled, or
// maintenance-mode lockout of a non-admin account.
func (l *LoginLogic) Login(req *types.LoginRequest) (*types.LoginResponse, error) {
	var u *identity.User
	var groups []identity.Group
	err := storage.WithTx(l.ctx, l.svcCtx.DB, func(tx storage.Tx) error {
		var err error
		u, err = l.svcCtx.Identities.GetUserByLogin(l.ctx, tx, req.Login)
		if err != nil {
			return vaulterr.New(vaulterr.Forbidden, "invalid login or password")
		}
		if !identity.VerifyPassword(u.PasswordHash, req.Password) {
			return vaulterr.New(vaulterr.Forbidden, "invalid login or password")
		}
		if u.Pending {
			return vaulterr.New(vaulterr.Forbidden, "account pending approval")
		}
		if u.Disabled {
			return vaulterr.New(vaulterr.Forbidden, "account disabled")
		}
		if l.svcCtx.Config.EnableMaintenance && u.Login != l.svcCtx.Config.AdminLogin {
			return vaulterr.New(vaulterr.Forbidden, "maintenance mode")
		}
		groups, err = l.svcCtx.Identities.ListGroupsForUser(l.ctx, tx, u.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	tok, err := l.svcCtx.Token.MintSession(token.UserVersions{
		Login:       u.Login,
		PasswordVer: u.PasswordVer,
		IdentityVer: u.IdentityVer,
	})
	if err != nil {
		return nil, err
	}

	return loginResponse(u.Login, tok, groups), nil
}

// loginResponse renders the identity view shared by login, refresh,
// and validate.
func loginResponse(login, tok string, groups []identity.Group) *types.LoginResponse {
	names := make([]string, len(groups))
	for i, g := range groups {
		names[i] = g.Name
	}
	tags := identity.EffectiveCapabilities(groups).Slice()
	capNames := make([]string, len(tags))
	for i, c := range tags {
		capNames[i] = string(c)
	}
	return &types.LoginResponse{Login: login, Token: tok, Capabilities: capNames, Groups: names}
}
