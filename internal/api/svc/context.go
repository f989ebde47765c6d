// Package svc wires every subsystem the HTTP layer depends on into one
// ServiceContext, the same role a gateway internal/svc.ServiceContext
// plays for its RPC clients — except here the collaborators are
// in-process services rather than zrpc clients, since this is one
// cohesive service rather than a multi-service mesh (see DESIGN.md).
package svc

import (
	"github.com/jmoiron/sqlx"
	"github.com/zeromicro/go-zero/rest"

	"github.com/sampleforge/vault/internal/access"
	"github.com/sampleforge/vault/internal/api/middleware"
	"github.com/sampleforge/vault/internal/config"
	"github.com/sampleforge/vault/internal/identity"
	"github.com/sampleforge/vault/internal/mail"
	"github.com/sampleforge/vault/internal/objectgraph"
	"github.com/sampleforge/vault/internal/permission"
	"github.com/sampleforge/vault/internal/ratelimit"
	"github.com/sampleforge/vault/internal/search"
	"github.com/sampleforge/vault/internal/token"
)

// ServiceContext bundles the process-wide collaborators every handler
// needs. Constructed once in cmd/vaultd and threaded into every
// logic/*.go through the handler closures.
type ServiceContext struct {
	Config *config.Config
	DB     *sqlx.DB

	Identity    *identity.Service
	Identities  identity.Store
	Objects    objectgraph.Store
	Permission *permission.Engine
	Access     *access.Facade
	Token      *token.Service
	Search     *search.Delegate
	Mail       mail.Notifier
	Limiter    *ratelimit.Limiter

	RequiredAuth rest.Middleware
	OptionalAuth rest.Middleware
}

// New builds a ServiceContext from its already-constructed
// collaborators; cmd/vaultd owns dialing the concrete adapters
// (Postgres, Redis, Meilisearch, SMTP) and passes the finished values
// in here rather than this constructor reaching out to third_party
// itself, keeping ServiceContext a pure composition root.
func New(
	cfg *config.Config,
	db *sqlx.DB,
	identities identity.Store,
	identitySvc *identity.Service,
	objects objectgraph.Store,
	engine *permission.Engine,
	accessFacade *access.Facade,
	tokenSvc *token.Service,
	searchDelegate *search.Delegate,
	notifier mail.Notifier,
	limiter *ratelimit.Limiter,
) *ServiceContext {
	sc := &ServiceContext{
		Config:     cfg,
		DB:         db,
		Identity:   identitySvc,
		Identities: identities,
		Objects:    objects,
		Permission: engine,
		Access:     accessFacade,
		Token:      tokenSvc,
		Search:     searchDelegate,
		Mail:       notifier,
		Limiter:    limiter,
	}
	auth := middleware.NewAuthMiddleware(tokenSvc, newVersionLookup(db, identities), newAPIKeyChecker(db, identities, objects))
	sc.RequiredAuth = auth.Required
	sc.OptionalAuth = auth.Optional
	return sc
}
