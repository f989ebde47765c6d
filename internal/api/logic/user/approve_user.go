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
	"github.com/sampleforge/vault/internal/token"
)

type ApproveUserLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewApproveUserLogic(ctx context.Context, svcCtx *svc.ServiceContext) *ApproveUserLogic {
	return &ApproveUserLogic{Logger: logx.WithContext(ctx), ctx: ctx, svcCtx: svcCtx}
}

// ApproveUser implements POST /user/pending/<login>. The approval
// notification email is best-effort: logged on failure, not
// surfaced, since the user is already approved regardless.
func (l *ApproveUserLogic) ApproveUser(req *types.LoginPathRequest) (*types.UserView, error) {
	var approved *identity.User
	err := storage.WithTx(l.ctx, l.svcCtx.DB, func(tx storage.Tx) error {
		caller, callerGroups, err := logic.CurrentUser(l.ctx, tx, l.svcCtx)
		if err != nil {
			return err
		}
		requestorCaps := identity.EffectiveCapabilities(callerGroups)
		approved, err = l.svcCtx.Identity.ApproveUser(l.ctx, tx, requestorCaps, caller.ID, req.Login)
		return err
	})
	if err != nil {
		return nil, err
	}

	tok, err := l.svcCtx.Token.MintSetPassword(token.UserVersions{Login: approved.Login, PasswordVer: approved.PasswordVer})
	if err != nil {
		l.Logger.Errorf("approve user %s: mint set-password token failed: %v", approved.Login, err)
	} else if err := l.svcCtx.Mail.Send(l.ctx, approved.Email, mail.KindRegister, mail.Params{
		Login:            approved.Login,
		BaseURL:          l.svcCtx.Config.Mail.BaseURL,
		SetPasswordToken: tok,
	}); err != nil {
		l.Logger.Errorf("approve user %s: notification email failed: %v", approved.Login, err)
	}

	var view types.UserView
	err = storage.WithTx(l.ctx, l.svcCtx.DB, func(tx storage.Tx) error {
		groups, err := l.svcCtx.Identities.ListGroupsForUser(l.ctx, tx, approved.ID)
		if err != nil {
			return err
		}
		view = renderUser(*approved, groups)
		return nil
	})
	return &view, err
}
