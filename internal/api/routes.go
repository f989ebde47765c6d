// Package api wires the handler tree built under internal/api/handler
// onto a rest.Server, hand-written since this endpoint surface has no
// goctl .api file to scaffold a routes.go from.
package api

import (
	"net/http"

	"github.com/zeromicro/go-zero/rest"

	authHandler "github.com/sampleforge/vault/internal/api/handler/auth"
	objectHandler "github.com/sampleforge/vault/internal/api/handler/object"
	searchHandler "github.com/sampleforge/vault/internal/api/handler/search"
	userHandler "github.com/sampleforge/vault/internal/api/handler/user"
	"github.com/sampleforge/vault/internal/api/svc"
)

// RegisterHandlers mounts the full HTTP surface onto server, applying
// svcCtx.RequiredAuth to the authenticated route groups via
// AddRoutes(rest.WithMiddlewares(...)) calls; svcCtx.OptionalAuth is
// not applied to any route.
func RegisterHandlers(server *rest.Server, svcCtx *svc.ServiceContext) {
	server.AddRoutes(
		[]rest.Route{
			{Method: http.MethodPost, Path: "/auth/login", Handler: authHandler.LoginHandler(svcCtx)},
			{Method: http.MethodPost, Path: "/auth/register", Handler: authHandler.RegisterHandler(svcCtx)},
			{Method: http.MethodPost, Path: "/auth/recover_password", Handler: authHandler.RecoverPasswordHandler(svcCtx)},
		},
	)

	server.AddRoutes(
		[]rest.Route{
			{Method: http.MethodPost, Path: "/auth/change_password", Handler: authHandler.ChangePasswordHandler(svcCtx)},
			{Method: http.MethodPost, Path: "/auth/refresh", Handler: authHandler.RefreshHandler(svcCtx)},
			{Method: http.MethodGet, Path: "/auth/validate", Handler: authHandler.ValidateHandler(svcCtx)},
		},
		rest.WithMiddlewares([]rest.Middleware{svcCtx.RequiredAuth}),
	)

	server.AddRoutes(
		[]rest.Route{
			{Method: http.MethodGet, Path: "/user/:login/change_password", Handler: authHandler.ChangePasswordTokenHandler(svcCtx)},
			{Method: http.MethodGet, Path: "/users", Handler: userHandler.ListUsersHandler(svcCtx)},
			{Method: http.MethodGet, Path: "/user/:login", Handler: userHandler.GetUserHandler(svcCtx)},
			{Method: http.MethodPost, Path: "/user/:login", Handler: userHandler.CreateUserHandler(svcCtx)},
			{Method: http.MethodPut, Path: "/user/:login", Handler: userHandler.EditUserHandler(svcCtx)},
			{Method: http.MethodPost, Path: "/user/pending/:login", Handler: userHandler.ApproveUserHandler(svcCtx)},
			{Method: http.MethodDelete, Path: "/user/pending/:login", Handler: userHandler.RejectUserHandler(svcCtx)},
			{Method: http.MethodGet, Path: "/:type/:dhash", Handler: objectHandler.GetObjectHandler(svcCtx)},
			{Method: http.MethodPost, Path: "/:type/:dhash/comment", Handler: objectHandler.CreateCommentHandler(svcCtx)},
			{Method: http.MethodGet, Path: "/:type/:dhash/comment", Handler: objectHandler.ListCommentsHandler(svcCtx)},
			{Method: http.MethodDelete, Path: "/:type/:dhash/comment/:comment_id", Handler: objectHandler.DeleteCommentHandler(svcCtx)},
			{Method: http.MethodPost, Path: "/:type/:dhash/tag", Handler: objectHandler.CreateTagHandler(svcCtx)},
			{Method: http.MethodGet, Path: "/:type/:dhash/tag", Handler: objectHandler.ListTagsHandler(svcCtx)},
			{Method: http.MethodDelete, Path: "/:type/:dhash/tag/:tag_id", Handler: objectHandler.DeleteTagHandler(svcCtx)},
			{Method: http.MethodPost, Path: "/:type/:dhash/meta", Handler: objectHandler.SetMetakeyHandler(svcCtx)},
			{Method: http.MethodGet, Path: "/:type/:dhash/meta", Handler: objectHandler.ListMetakeysHandler(svcCtx)},
			{Method: http.MethodDelete, Path: "/:type/:dhash/meta/:metakey_id", Handler: objectHandler.DeleteMetakeyHandler(svcCtx)},
			{Method: http.MethodPost, Path: "/search", Handler: searchHandler.SearchHandler(svcCtx)},
		},
		rest.WithMiddlewares([]rest.Middleware{svcCtx.RequiredAuth}),
	)
}
