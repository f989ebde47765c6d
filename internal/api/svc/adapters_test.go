package svc

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"

	"github.com/sampleforge/vault/internal/storage/postgres"
)

// newMockDB builds an sqlx.DB backed by go-sqlmock, the same way the
// examples that exercise sqlx against a fake driver set one up
// (DATA-DOG/go-sqlmock, see DESIGN.md).
func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "postgres"), mock
}

func TestVersionLookupReadsCurrentVersions(t *testing.T) {
	db, mock := newMockDB(t)
	identities := postgres.NewIdentityStore(db)
	lookup := newVersionLookup(db, identities)

	mock.ExpectBegin()
	rows := sqlmock.NewRows([]string{
		"id", "login", "email", "password_hash", "password_ver", "identity_ver",
		"pending", "disabled", "requested_on", "registered_on", "registered_by", "feed_quality",
	}).AddRow(
		"11111111-1111-1111-1111-111111111111", "alice", "alice@example.com", "hash", "pv1", "iv1",
		false, false, nil, nil, nil, "high",
	)
	mock.ExpectQuery("SELECT (.+) FROM users WHERE login = \\$1").
		WithArgs("alice").
		WillReturnRows(rows)
	mock.ExpectCommit()

	versions, err := lookup.LookupVersions(context.Background(), "alice")
	if err != nil {
		t.Fatalf("LookupVersions: %v", err)
	}
	if versions.Login != "alice" || versions.PasswordVer != "pv1" || versions.IdentityVer != "iv1" {
		t.Fatalf("unexpected versions: %+v", versions)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestVersionLookupPropagatesQueryError(t *testing.T) {
	db, mock := newMockDB(t)
	identities := postgres.NewIdentityStore(db)
	lookup := newVersionLookup(db, identities)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM users WHERE login = \\$1").
		WithArgs("ghost").
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	if _, err := lookup.LookupVersions(context.Background(), "ghost"); err == nil {
		t.Fatal("expected an error for a failed lookup")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
