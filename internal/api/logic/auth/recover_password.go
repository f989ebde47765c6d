package auth

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/sampleforge/vault/internal/api/svc"
	"github.com/sampleforge/vault/internal/api/types"
	"github.com/sampleforge/vault/internal/identity"
	"github.com/sampleforge/vault/internal/mail"
	"github.com/sampleforge/vault/internal/storage"
	"github.com/sampleforge/vault/internal/token"
	"github.com/sampleforge/vault/internal/vaulterr"
)

type RecoverPasswordLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewRecoverPasswordLogic(ctx context.Context, svcCtx *svc.ServiceContext) *RecoverPasswordLogic {
	return &RecoverPasswordLogic{Logger: logx.WithContext(ctx), ctx: ctx, svcCtx: svcCtx}
}

// RecoverPassword mints a set-password token and emails it to the
// (login, email) pair on file; 403 on an unknown pair or a pending
// user — the response never distinguishes the two from
// "unknown pair" to avoid leaking account existence.
func (l *RecoverPasswordLogic) RecoverPassword(req *types.RecoverPasswordRequest) error {
	var u *identity.User
	err := storage.WithTx(l.ctx, l.svcCtx.DB, func(tx storage.Tx) error {
		var err error
		u, err = l.svcCtx.Identities.GetUserByLogin(l.ctx, tx, req.Login)
		if err != nil {
			return vaulterr.New(vaulterr.Forbidden, "unknown login or email")
		}
		if u.Email != req.Email || u.Pending {
			return vaulterr.New(vaulterr.Forbidden, "unknown login or email")
		}
		return nil
	})
	if err != nil {
		return err
	}

	tok, err := l.svcCtx.Token.MintSetPassword(token.UserVersions{Login: u.Login, PasswordVer: u.PasswordVer})
	if err != nil {
		return err
	}

	if err := l.svcCtx.Mail.Send(l.ctx, u.Email, mail.KindRecover, mail.Params{
		Login:            u.Login,
		BaseURL:          l.svcCtx.Config.Mail.BaseURL,
		SetPasswordToken: tok,
	}); err != nil {
		return vaulterr.New(vaulterr.MailSendFailed, "could not send recovery email")
	}
	return nil
}
