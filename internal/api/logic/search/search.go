// Package search implements the query endpoint: the raw query string
// is wrapped, unparsed, as a single term on the `name` field, compiled
// against the field-mapper registry, and delegated to Meilisearch with
// the caller's visibility filter AND-composed in.
package search

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/sampleforge/vault/internal/api/logic"
	"github.com/sampleforge/vault/internal/api/svc"
	"github.com/sampleforge/vault/internal/api/types"
	"github.com/sampleforge/vault/internal/capability"
	"github.com/sampleforge/vault/internal/objectgraph"
	"github.com/sampleforge/vault/internal/search"
	"github.com/sampleforge/vault/internal/storage"
	"github.com/sampleforge/vault/internal/vaulterr"
)

type SearchLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewSearchLogic(ctx context.Context, svcCtx *svc.ServiceContext) *SearchLogic {
	return &SearchLogic{Logger: logx.WithContext(ctx), ctx: ctx, svcCtx: svcCtx}
}

func (l *SearchLogic) Search(req *types.SearchRequest) (*types.SearchResponse, error) {
	objType := objectgraph.Type(req.Type)
	if objType == "" {
		objType = objectgraph.TypeObject
	}

	ast := search.Field{Name: "name", Value: search.Term{Value: req.Query}}

	var groupIDs []string
	var hasAccessAll bool
	err := storage.WithTx(l.ctx, l.svcCtx.DB, func(tx storage.Tx) error {
		u, groups, err := logic.CurrentUser(l.ctx, tx, l.svcCtx)
		if err != nil {
			return err
		}
		requestor := logic.AccessRequestor(u, groups)
		hasAccessAll = requestor.Capabilities.Has(capability.AccessAllObjects)
		for _, g := range requestor.MemberGroupIDs {
			groupIDs = append(groupIDs, g.String())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	visibility := visibilityFilter(groupIDs, hasAccessAll)
	results, err := l.svcCtx.Search.Query(ast, objType, visibility, 50)
	if err != nil {
		return nil, vaulterr.Newf(vaulterr.FieldNotQueryable, "search: %v", err)
	}

	dhashes := make([]string, len(results))
	for i, r := range results {
		dhashes[i] = r.Dhash
	}
	return &types.SearchResponse{Results: dhashes}, nil
}

// visibilityFilter renders the requestor's group membership as a
// Meilisearch filter clause, the materialization of
// permission.Engine.Visible at the index boundary.
func visibilityFilter(groupIDs []string, hasAccessAll bool) string {
	if hasAccessAll || len(groupIDs) == 0 {
		return ""
	}
	filter := "group_ids IN ["
	for i, id := range groupIDs {
		if i > 0 {
			filter += ","
		}
		filter += "\"" + id + "\""
	}
	filter += "]"
	return filter
}
