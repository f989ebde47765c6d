// The composition root: load config, build the ServiceContext,
// register handlers, start serving.
package main

import (
	"flag"
	"fmt"
	"time"

	"github.com/zeromicro/go-zero/core/conf"
	"github.com/zeromicro/go-zero/rest"
	"github.com/zeromicro/go-zero/rest/httpx"

	"github.com/sampleforge/vault/internal/access"
	"github.com/sampleforge/vault/internal/api"
	"github.com/sampleforge/vault/internal/api/svc"
	"github.com/sampleforge/vault/internal/config"
	"github.com/sampleforge/vault/internal/identity"
	"github.com/sampleforge/vault/internal/mail"
	"github.com/sampleforge/vault/internal/permission"
	"github.com/sampleforge/vault/internal/ratelimit"
	"github.com/sampleforge/vault/internal/search"
	"github.com/sampleforge/vault/internal/storage/postgres"
	"github.com/sampleforge/vault/internal/token"
	"github.com/sampleforge/vault/internal/vaulterr"
	tpcache "github.com/sampleforge/vault/third_party/cache"
	tpdatabase "github.com/sampleforge/vault/third_party/database"
	tpsearch "github.com/sampleforge/vault/third_party/search"
)

var configFile = flag.String("f", "etc/vaultd.yaml", "the config file")

// requestsPerMinute is the fixed-window budget internal/ratelimit
// enforces for callers without unlimited_requests.
const requestsPerMinute = 120

func main() {
	flag.Parse()

	var c config.Config
	conf.MustLoad(*configFile, &c)
	if err := c.Validate(); err != nil {
		panic(err)
	}

	db, err := tpdatabase.NewPostgresConnection(c.Database)
	if err != nil {
		panic(err)
	}

	redisConn, err := tpcache.NewRedisConnection(c.Redis)
	if err != nil {
		panic(err)
	}

	meiliConn, err := tpsearch.NewMeiliSearchConnection(c.MeiliSearch)
	if err != nil {
		panic(err)
	}

	identities := postgres.NewIdentityStore(db)
	objects := postgres.NewObjectGraphStore(db)

	templates, err := mail.LoadTemplates(c.Mail.TemplateDir)
	if err != nil {
		panic(err)
	}
	hostPort := c.Mail.SMTP
	if host, port, err := c.Mail.SMTPHostPort(); err == nil {
		hostPort = fmt.Sprintf("%s:%d", host, port)
	}
	notifier := mail.NewSMTPNotifier(c.Mail.From, hostPort, templates)

	tokenSvc, err := token.NewService(c.Token.SecretKey, c.Token.Issuer)
	if err != nil {
		panic(err)
	}

	engine := permission.NewEngine(objects)
	accessFacade := access.NewFacade(objects, engine)
	identitySvc := identity.NewService(identities)
	searchDelegate := search.NewDelegate(meiliConn, search.DefaultRegistry())
	limiter := ratelimit.NewLimiter(redisConn.GetClient(), requestsPerMinute, time.Minute)

	svcCtx := svc.New(&c, db, identities, identitySvc, objects, engine, accessFacade, tokenSvc, searchDelegate, notifier, limiter)

	httpx.SetErrorHandlerCtx(vaulterr.Handler)

	server := rest.MustNewServer(c.RestConf)
	defer server.Stop()

	api.RegisterHandlers(server, svcCtx)

	fmt.Printf("Starting sampleforge/vault at %s:%d...\n", c.Host, c.Port)
	server.Start()
}
