package object

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/sampleforge/vault/internal/access"
	"github.com/sampleforge/vault/internal/api/logic"
	"github.com/sampleforge/vault/internal/api/svc"
	"github.com/sampleforge/vault/internal/api/types"
	"github.com/sampleforge/vault/internal/storage"
	"github.com/sampleforge/vault/internal/vaulterr"
)

type GetObjectLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewGetObjectLogic(ctx context.Context, svcCtx *svc.ServiceContext) *GetObjectLogic {
	return &GetObjectLogic{Logger: logx.WithContext(ctx), ctx: ctx, svcCtx: svcCtx}
}

// GetObject runs the access façade's four-step algorithm for the
// caller against the object named by dhash; a nil view
// with no error means "not found or not visible", rendered as 404 —
// the façade deliberately does not distinguish the two to avoid
// leaking object existence to an unauthorized caller.
func (l *GetObjectLogic) GetObject(req *types.ObjectPathRequest) (*types.ObjectView, error) {
	if _, err := pathType(req.Type); err != nil {
		return nil, err
	}

	var view *access.View
	err := storage.WithTx(l.ctx, l.svcCtx.DB, func(tx storage.Tx) error {
		u, groups, err := logic.CurrentUser(l.ctx, tx, l.svcCtx)
		if err != nil {
			return err
		}
		requestor := logic.AccessRequestor(u, groups)
		view, err = l.svcCtx.Access.Access(l.ctx, tx, req.Dhash, requestor, logic.QueryingGroups(groups))
		return err
	})
	if err != nil {
		return nil, err
	}
	if view == nil {
		return nil, vaulterr.New(vaulterr.NotFound, "no such object")
	}

	parents := make([]string, len(view.Parents))
	for i, p := range view.Parents {
		parents[i] = p.Dhash
	}
	return &types.ObjectView{
		Dhash:      view.Object.Dhash,
		Type:       string(view.Object.Type),
		UploadTime: view.Object.UploadTime.Format("2006-01-02T15:04:05Z07:00"),
		Parents:    parents,
	}, nil
}
