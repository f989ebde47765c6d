// Bootstrap seeder: a one-shot idempotent inserter with "taken? skip"
// idempotency, driven off the real config and the identity port
// rather than raw SQL.
package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"flag"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/zeromicro/go-zero/core/conf"

	"github.com/sampleforge/vault/internal/capability"
	"github.com/sampleforge/vault/internal/config"
	"github.com/sampleforge/vault/internal/identity"
	"github.com/sampleforge/vault/internal/storage"
	"github.com/sampleforge/vault/internal/storage/postgres"
	"github.com/sampleforge/vault/internal/vaulterr"
	tpdatabase "github.com/sampleforge/vault/third_party/database"
)

var configFile = flag.String("f", "etc/vaultd.yaml", "the config file")

// adminGroupName is the mutable group holding every built-in
// capability, joined by the bootstrapped admin_login user.
const adminGroupName = "admin"

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

	identities := postgres.NewIdentityStore(db)
	ctx := context.Background()

	var generatedPassword string
	err = storage.WithTx(ctx, db, func(tx storage.Tx) error {
		if err := ensureGroup(ctx, tx, identities, identity.PublicGroupName, capability.NewSet(), false); err != nil {
			return fmt.Errorf("seed public group: %w", err)
		}
		if err := ensureGroup(ctx, tx, identities, adminGroupName, capability.NewSet(capability.All...), false); err != nil {
			return fmt.Errorf("seed admin group: %w", err)
		}

		_, err := identities.GetUserByLogin(ctx, tx, c.AdminLogin)
		if err == nil {
			fmt.Printf("admin user %q already exists, skipping\n", c.AdminLogin)
			return nil
		}
		if vaulterr.KindOf(err) != vaulterr.NotFound {
			return fmt.Errorf("lookup admin_login: %w", err)
		}

		generatedPassword, err = randomPassword()
		if err != nil {
			return fmt.Errorf("generate admin password: %w", err)
		}
		hash, err := identity.HashPassword(generatedPassword)
		if err != nil {
			return fmt.Errorf("hash admin password: %w", err)
		}
		passwordVer, err := identity.NewVersion()
		if err != nil {
			return err
		}
		identityVer, err := identity.NewVersion()
		if err != nil {
			return err
		}

		admin := &identity.User{
			ID:           uuid.New(),
			Login:        c.AdminLogin,
			Email:        c.Mail.From,
			PasswordHash: hash,
			PasswordVer:  passwordVer,
			IdentityVer:  identityVer,
			Pending:      false,
			RequestedOn:  time.Now(),
			FeedQuality:  "high",
		}
		if err := identities.CreateUser(ctx, tx, admin); err != nil {
			return fmt.Errorf("create admin user: %w", err)
		}

		publicGroup, err := identities.GetGroupByName(ctx, tx, identity.PublicGroupName)
		if err != nil {
			return err
		}
		if err := identities.AddMember(ctx, tx, admin.ID, publicGroup.ID); err != nil {
			return err
		}
		adminGroup, err := identities.GetGroupByName(ctx, tx, adminGroupName)
		if err != nil {
			return err
		}
		return identities.AddMember(ctx, tx, admin.ID, adminGroup.ID)
	})
	if err != nil {
		panic(err)
	}

	if generatedPassword != "" {
		fmt.Printf("bootstrapped admin user %q with password: %s\n", c.AdminLogin, generatedPassword)
		fmt.Println("store this password now; it is not recoverable from the database.")
	}
}

// ensureGroup creates name if it doesn't already exist, leaving an
// existing group's capabilities untouched — the seeder never
// overwrites operator-edited state on a second run.
func ensureGroup(ctx context.Context, tx storage.Tx, identities identity.Store, name string, caps capability.Set, private bool) error {
	_, err := identities.GetGroupByName(ctx, tx, name)
	if err == nil {
		return nil
	}
	if vaulterr.KindOf(err) != vaulterr.NotFound {
		return err
	}
	g := &identity.Group{ID: uuid.New(), Name: name, Capabilities: caps, Private: private}
	return identities.CreateGroup(ctx, tx, g)
}

func randomPassword() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
