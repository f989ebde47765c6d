package user

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/sampleforge/vault/internal/api/logic"
	"github.com/sampleforge/vault/internal/api/svc"
	"github.com/sampleforge/vault/internal/api/types"
	"github.com/sampleforge/vault/internal/identity"
	"github.com/sampleforge/vault/internal/mail"
	"github.com/sampleforge/vault/internal/storage"
)

type RejectUserLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewRejectUserLogic(ctx context.Context, svcCtx *svc.ServiceContext) *RejectUserLogic {
	return &RejectUserLogic{Logger: logx.WithContext(ctx), ctx: ctx, svcCtx: svcCtx}
}

// RejectUser implements DELETE /user/pending/<login>: deletes the
// pending user and its private group, then best-effort notifies the
// rejected email (§7).
func (l *RejectUserLogic) RejectUser(req *types.LoginPathRequest) error {
	var target *identity.User
	err := storage.WithTx(l.ctx, l.svcCtx.DB, func(tx storage.Tx) error {
		_, callerGroups, err := logic.CurrentUser(l.ctx, tx, l.svcCtx)
		if err != nil {
			return err
		}
		target, err = l.svcCtx.Identities.GetUserByLogin(l.ctx, tx, req.Login)
		if err != nil {
			return err
		}
		requestorCaps := identity.EffectiveCapabilities(callerGroups)
		return l.svcCtx.Identity.RejectUser(l.ctx, tx, requestorCaps, req.Login)
	})
	if err != nil {
		return err
	}

	if err := l.svcCtx.Mail.Send(l.ctx, target.Email, mail.KindRejected, mail.Params{Login: target.Login, BaseURL: l.svcCtx.Config.Mail.BaseURL}); err != nil {
		l.Logger.Errorf("reject user %s: notification email failed: %v", target.Login, err)
	}
	return nil
}
