package object

import (
	"net/http"

	"github.com/zeromicro/go-zero/rest/httpx"

	"github.com/sampleforge/vault/internal/api/logic/object"
	"github.com/sampleforge/vault/internal/api/svc"
	"github.com/sampleforge/vault/internal/api/types"
)

func DeleteCommentHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.DeleteCommentRequest
		if err := httpx.Parse(r, &req); err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
			return
		}

		l := object.NewDeleteCommentLogic(r.Context(), svcCtx)
		if err := l.DeleteComment(&req); err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
			return
		}
		httpx.OkJsonCtx(r.Context(), w, map[string]bool{"ok": true})
	}
}
