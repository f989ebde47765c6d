package object

import (
	"context"

	"github.com/google/uuid"
	"github.com/zeromicro/go-zero/core/logx"

	"github.com/sampleforge/vault/internal/api/logic"
	"github.com/sampleforge/vault/internal/api/svc"
	"github.com/sampleforge/vault/internal/api/types"
	"github.com/sampleforge/vault/internal/capability"
	"github.com/sampleforge/vault/internal/objectgraph"
	"github.com/sampleforge/vault/internal/storage"
	"github.com/sampleforge/vault/internal/vaulterr"
)

type CreateTagLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewCreateTagLogic(ctx context.Context, svcCtx *svc.ServiceContext) *CreateTagLogic {
	return &CreateTagLogic{Logger: logx.WithContext(ctx), ctx: ctx, svcCtx: svcCtx}
}

// CreateTag adds a tag to a visible object, requiring adding_tags; tag
// mutation has no per-tag ACL, unlike metakeys.
func (l *CreateTagLogic) CreateTag(req *types.TagRequest) (*types.TagView, error) {
	var view types.TagView
	err := storage.WithTx(l.ctx, l.svcCtx.DB, func(tx storage.Tx) error {
		obj, err := resolveVisible(l.ctx, tx, l.svcCtx, req.Dhash)
		if err != nil {
			return err
		}
		_, groups, err := logic.CurrentUser(l.ctx, tx, l.svcCtx)
		if err != nil {
			return err
		}
		if err := logic.RequireCapability(groups, capability.AddingTags); err != nil {
			return err
		}
		t := &objectgraph.Tag{ID: uuid.New(), ObjectID: obj.ID, Tag: req.Tag}
		if err := l.svcCtx.Objects.CreateTag(l.ctx, tx, t); err != nil {
			return err
		}
		view = types.TagView{ID: t.ID.String(), Tag: t.Tag}
		return nil
	})
	return &view, err
}

type ListTagsLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewListTagsLogic(ctx context.Context, svcCtx *svc.ServiceContext) *ListTagsLogic {
	return &ListTagsLogic{Logger: logx.WithContext(ctx), ctx: ctx, svcCtx: svcCtx}
}

// ListTags requires only that the object be visible, matching
// ListComments — tag reads carry no further capability gate.
func (l *ListTagsLogic) ListTags(req *types.ObjectPathRequest) (*types.ListTagsResponse, error) {
	var resp types.ListTagsResponse
	err := storage.WithTx(l.ctx, l.svcCtx.DB, func(tx storage.Tx) error {
		obj, err := resolveVisible(l.ctx, tx, l.svcCtx, req.Dhash)
		if err != nil {
			return err
		}
		tags, err := l.svcCtx.Objects.ListTags(l.ctx, tx, obj.ID)
		if err != nil {
			return err
		}
		for _, t := range tags {
			resp.Tags = append(resp.Tags, types.TagView{ID: t.ID.String(), Tag: t.Tag})
		}
		return nil
	})
	return &resp, err
}

type DeleteTagLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewDeleteTagLogic(ctx context.Context, svcCtx *svc.ServiceContext) *DeleteTagLogic {
	return &DeleteTagLogic{Logger: logx.WithContext(ctx), ctx: ctx, svcCtx: svcCtx}
}

// DeleteTag gates removal by removing_tags only, not authorship — the
// same capability-only policy comments use.
func (l *DeleteTagLogic) DeleteTag(req *types.DeleteTagRequest) error {
	return storage.WithTx(l.ctx, l.svcCtx.DB, func(tx storage.Tx) error {
		if _, err := resolveVisible(l.ctx, tx, l.svcCtx, req.Dhash); err != nil {
			return err
		}
		_, groups, err := logic.CurrentUser(l.ctx, tx, l.svcCtx)
		if err != nil {
			return err
		}
		if err := logic.RequireCapability(groups, capability.RemovingTags); err != nil {
			return err
		}
		id, err := uuid.Parse(req.TagID)
		if err != nil {
			return vaulterr.New(vaulterr.SchemaInvalid, "invalid tag id")
		}
		return l.svcCtx.Objects.DeleteTag(l.ctx, tx, id)
	})
}
