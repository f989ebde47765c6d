package svc

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/sampleforge/vault/internal/identity"
	"github.com/sampleforge/vault/internal/objectgraph"
	"github.com/sampleforge/vault/internal/storage"
	"github.com/sampleforge/vault/internal/token"
)

// versionLookup bridges identity.Store to token.UserVersionLookup: the
// token service needs password_ver/identity_ver by login but must not
// import identity itself (it would pull in storage and capability
// along with it for a two-field read). Every request that reaches auth
// middleware opens its own single-statement transaction for this
// lookup, since the port only accepts an explicit Tx.
type versionLookup struct {
	db         *sqlx.DB
	identities identity.Store
}

// newVersionLookup builds a token.UserVersionLookup over identities.
func newVersionLookup(db *sqlx.DB, identities identity.Store) token.UserVersionLookup {
	return &versionLookup{db: db, identities: identities}
}

func (v *versionLookup) LookupVersions(ctx context.Context, login string) (token.UserVersions, error) {
	var u *identity.User
	err := storage.WithTx(ctx, v.db, func(tx storage.Tx) error {
		var err error
		u, err = v.identities.GetUserByLogin(ctx, tx, login)
		return err
	})
	if err != nil {
		return token.UserVersions{}, err
	}
	return token.UserVersions{
		Login:       u.Login,
		PasswordVer: u.PasswordVer,
		IdentityVer: u.IdentityVer,
		VersionUID:  u.VersionUID,
	}, nil
}

// apiKeyChecker bridges identity.Store and objectgraph.Store into
// token.APIKeyChecker: an api_key token is only valid while its row
// still exists under the login it was minted for.
type apiKeyChecker struct {
	db         *sqlx.DB
	identities identity.Store
	objects    objectgraph.Store
}

// newAPIKeyChecker builds a token.APIKeyChecker over identities and
// objects.
func newAPIKeyChecker(db *sqlx.DB, identities identity.Store, objects objectgraph.Store) token.APIKeyChecker {
	return &apiKeyChecker{db: db, identities: identities, objects: objects}
}

func (a *apiKeyChecker) HasAPIKey(ctx context.Context, login, apiKeyID string) (bool, error) {
	id, err := uuid.Parse(apiKeyID)
	if err != nil {
		return false, nil
	}
	found := false
	err = storage.WithTx(ctx, a.db, func(tx storage.Tx) error {
		u, err := a.identities.GetUserByLogin(ctx, tx, login)
		if err != nil {
			return nil
		}
		key, err := a.objects.GetAPIKeyByID(ctx, tx, id, u.ID)
		if err != nil {
			return nil
		}
		found = key != nil
		return nil
	})
	if err != nil {
		return false, nil
	}
	return found, nil
}
