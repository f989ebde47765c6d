package auth

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/sampleforge/vault/internal/api/svc"
	"github.com/sampleforge/vault/internal/api/types"
	"github.com/sampleforge/vault/internal/mail"
	"github.com/sampleforge/vault/internal/storage"
	"github.com/sampleforge/vault/internal/vaulterr"
)

type RegisterLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewRegisterLogic(ctx context.Context, svcCtx *svc.ServiceContext) *RegisterLogic {
	return &RegisterLogic{Logger: logx.WithContext(ctx), ctx: ctx, svcCtx: svcCtx}
}

// Register creates a pending user, gated by enable_registration and,
// when recaptcha_secret is configured, by a non-empty recaptcha token;
// the token itself is not verified here. Mail notification of
// the pending state is best-effort: the registration
// flow is still meaningful without it, so a send failure is logged,
// not surfaced.
func (l *RegisterLogic) Register(req *types.RegisterRequest) (*types.RegisterResponse, error) {
	if !l.svcCtx.Config.EnableRegistration {
		return nil, vaulterr.New(vaulterr.Forbidden, "registration is disabled")
	}
	if l.svcCtx.Config.RecaptchaSecret != "" && req.RecaptchaToken == "" {
		return nil, vaulterr.New(vaulterr.SchemaInvalid, "recaptcha token required")
	}

	var login string
	err := storage.WithTx(l.ctx, l.svcCtx.DB, func(tx storage.Tx) error {
		u, err := l.svcCtx.Identity.Register(l.ctx, tx, req.Login, req.Email, req.Password)
		if err != nil {
			return err
		}
		login = u.Login
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := l.svcCtx.Mail.Send(l.ctx, req.Email, mail.KindPending, mail.Params{Login: login, BaseURL: l.svcCtx.Config.Mail.BaseURL}); err != nil {
		l.Logger.Errorf("register: pending notice to %s failed: %v", req.Email, err)
	}

	return &types.RegisterResponse{Login: login, Pending: true}, nil
}
