package object

import (
	"context"
	"time"

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

// resolveVisible loads the object by dhash and confirms the caller can
// see it (explicit access or implicit access-all), the precondition
// every comment operation shares.
func resolveVisible(ctx context.Context, tx storage.Tx, svcCtx *svc.ServiceContext, dhash string) (*objectgraph.Object, error) {
	obj, err := svcCtx.Objects.GetObjectByDhash(ctx, tx, dhash)
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, vaulterr.New(vaulterr.NotFound, "no such object")
	}
	u, groups, err := logic.CurrentUser(ctx, tx, svcCtx)
	if err != nil {
		return nil, err
	}
	requestor := logic.AccessRequestor(u, groups)
	hasAccessAll := requestor.Capabilities.Has(capability.AccessAllObjects)
	ok, err := svcCtx.Permission.ExplicitAccess(ctx, tx, obj.ID, requestor.MemberGroupIDs, hasAccessAll)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, vaulterr.New(vaulterr.NotFound, "no such object")
	}
	return obj, nil
}

type CreateCommentLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewCreateCommentLogic(ctx context.Context, svcCtx *svc.ServiceContext) *CreateCommentLogic {
	return &CreateCommentLogic{Logger: logx.WithContext(ctx), ctx: ctx, svcCtx: svcCtx}
}

// CreateComment adds a comment to a visible object, requiring
// adding_comments.
func (l *CreateCommentLogic) CreateComment(req *types.CommentRequest) (*types.CommentView, error) {
	var view types.CommentView
	err := storage.WithTx(l.ctx, l.svcCtx.DB, func(tx storage.Tx) error {
		obj, err := resolveVisible(l.ctx, tx, l.svcCtx, req.Dhash)
		if err != nil {
			return err
		}
		u, groups, err := logic.CurrentUser(l.ctx, tx, l.svcCtx)
		if err != nil {
			return err
		}
		if err := logic.RequireCapability(groups, capability.AddingComments); err != nil {
			return err
		}
		c := &objectgraph.Comment{
			ID:        uuid.New(),
			ObjectID:  obj.ID,
			AuthorID:  u.ID,
			Comment:   req.Comment,
			Timestamp: time.Now(),
		}
		if err := l.svcCtx.Objects.CreateComment(l.ctx, tx, c); err != nil {
			return err
		}
		view = types.CommentView{ID: c.ID.String(), Author: u.Login, Comment: c.Comment, Timestamp: c.Timestamp.Format(time.RFC3339)}
		return nil
	})
	return &view, err
}

type ListCommentsLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewListCommentsLogic(ctx context.Context, svcCtx *svc.ServiceContext) *ListCommentsLogic {
	return &ListCommentsLogic{Logger: logx.WithContext(ctx), ctx: ctx, svcCtx: svcCtx}
}

func (l *ListCommentsLogic) ListComments(req *types.ObjectPathRequest) (*types.ListCommentsResponse, error) {
	var resp types.ListCommentsResponse
	err := storage.WithTx(l.ctx, l.svcCtx.DB, func(tx storage.Tx) error {
		obj, err := resolveVisible(l.ctx, tx, l.svcCtx, req.Dhash)
		if err != nil {
			return err
		}
		comments, err := l.svcCtx.Objects.ListComments(l.ctx, tx, obj.ID)
		if err != nil {
			return err
		}
		for _, c := range comments {
			author, err := l.svcCtx.Identities.GetUserByID(l.ctx, tx, c.AuthorID)
			login := c.AuthorID.String()
			if err == nil {
				login = author.Login
			}
			resp.Comments = append(resp.Comments, types.CommentView{
				ID:        c.ID.String(),
				Author:    login,
				Comment:   c.Comment,
				Timestamp: c.Timestamp.Format(time.RFC3339),
			})
		}
		return nil
	})
	return &resp, err
}

type DeleteCommentLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewDeleteCommentLogic(ctx context.Context, svcCtx *svc.ServiceContext) *DeleteCommentLogic {
	return &DeleteCommentLogic{Logger: logx.WithContext(ctx), ctx: ctx, svcCtx: svcCtx}
}

// DeleteComment gates deletion by removing_comments only, not
// authorship.
func (l *DeleteCommentLogic) DeleteComment(req *types.DeleteCommentRequest) error {
	return storage.WithTx(l.ctx, l.svcCtx.DB, func(tx storage.Tx) error {
		if _, err := resolveVisible(l.ctx, tx, l.svcCtx, req.Dhash); err != nil {
			return err
		}
		_, groups, err := logic.CurrentUser(l.ctx, tx, l.svcCtx)
		if err != nil {
			return err
		}
		if err := logic.RequireCapability(groups, capability.RemovingComments); err != nil {
			return err
		}
		id, err := uuid.Parse(req.CommentID)
		if err != nil {
			return vaulterr.New(vaulterr.SchemaInvalid, "invalid comment id")
		}
		return l.svcCtx.Objects.DeleteComment(l.ctx, tx, id)
	})
}
