// Package postgres provides the concrete sqlx/lib-pq storage adapters
// for every port the core defines (identity.Store, objectgraph.Store).
// Queries are plain named SQL run through sqlx's
// NamedExecContext/GetContext/SelectContext, specialized per port
// instead of routed through one untyped helper.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/sampleforge/vault/internal/capability"
	"github.com/sampleforge/vault/internal/identity"
	"github.com/sampleforge/vault/internal/storage"
	"github.com/sampleforge/vault/internal/vaulterr"
)

// IdentityStore is the Postgres-backed identity.Store.
type IdentityStore struct {
	db *sqlx.DB
}

// NewIdentityStore builds an IdentityStore over db.
func NewIdentityStore(db *sqlx.DB) *IdentityStore {
	return &IdentityStore{db: db}
}

type userRow struct {
	ID           uuid.UUID      `db:"id"`
	Login        string         `db:"login"`
	Email        string         `db:"email"`
	PasswordHash string         `db:"password_hash"`
	PasswordVer  string         `db:"password_ver"`
	IdentityVer  string         `db:"identity_ver"`
	Pending      bool           `db:"pending"`
	Disabled     bool           `db:"disabled"`
	RequestedOn  sql.NullTime   `db:"requested_on"`
	RegisteredOn sql.NullTime   `db:"registered_on"`
	RegisteredBy uuid.NullUUID  `db:"registered_by"`
	FeedQuality  string         `db:"feed_quality"`
	VersionUID   sql.NullString `db:"version_uid"`
}

func (r userRow) toDomain() *identity.User {
	u := &identity.User{
		ID:           r.ID,
		Login:        r.Login,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		PasswordVer:  r.PasswordVer,
		IdentityVer:  r.IdentityVer,
		Pending:      r.Pending,
		Disabled:     r.Disabled,
		FeedQuality:  r.FeedQuality,
	}
	if r.VersionUID.Valid {
		u.VersionUID = r.VersionUID.String
	}
	if r.RequestedOn.Valid {
		u.RequestedOn = r.RequestedOn.Time
	}
	if r.RegisteredOn.Valid {
		t := r.RegisteredOn.Time
		u.RegisteredOn = &t
	}
	if r.RegisteredBy.Valid {
		id := r.RegisteredBy.UUID
		u.RegisteredBy = &id
	}
	return u
}

func fromUser(u *identity.User) userRow {
	row := userRow{
		ID:           u.ID,
		Login:        u.Login,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		PasswordVer:  u.PasswordVer,
		IdentityVer:  u.IdentityVer,
		Pending:      u.Pending,
		Disabled:     u.Disabled,
		FeedQuality:  u.FeedQuality,
		VersionUID:   sql.NullString{String: u.VersionUID, Valid: u.VersionUID != ""},
		RequestedOn:  sql.NullTime{Time: u.RequestedOn, Valid: !u.RequestedOn.IsZero()},
	}
	if u.RegisteredOn != nil {
		row.RegisteredOn = sql.NullTime{Time: *u.RegisteredOn, Valid: true}
	}
	if u.RegisteredBy != nil {
		row.RegisteredBy = uuid.NullUUID{UUID: *u.RegisteredBy, Valid: true}
	}
	return row
}

const insertUserQuery = `
	INSERT INTO users (id, login, email, password_hash, password_ver, identity_ver, pending, disabled, requested_on, feed_quality, version_uid)
	VALUES (:id, :login, :email, :password_hash, :password_ver, :identity_ver, :pending, :disabled, :requested_on, :feed_quality, :version_uid)`

func (s *IdentityStore) CreateUser(ctx context.Context, tx storage.Tx, u *identity.User) error {
	row := fromUser(u)
	if _, err := tx.NamedExecContext(ctx, insertUserQuery, row); err != nil {
		if storage.IsUniqueViolation(err) {
			return vaulterr.New(vaulterr.Conflict, "login already exists")
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

const selectUserBase = `SELECT id, login, email, password_hash, password_ver, identity_ver, pending, disabled, requested_on, registered_on, registered_by, feed_quality, version_uid FROM users WHERE `

func (s *IdentityStore) getUserBy(ctx context.Context, tx storage.Tx, column string, value interface{}) (*identity.User, error) {
	var row userRow
	err := tx.GetContext(ctx, &row, selectUserBase+column+" = $1", value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, vaulterr.New(vaulterr.NotFound, "user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("select user by %s: %w", column, err)
	}
	return row.toDomain(), nil
}

func (s *IdentityStore) GetUserByLogin(ctx context.Context, tx storage.Tx, login string) (*identity.User, error) {
	return s.getUserBy(ctx, tx, "login", login)
}

func (s *IdentityStore) GetUserByID(ctx context.Context, tx storage.Tx, id uuid.UUID) (*identity.User, error) {
	return s.getUserBy(ctx, tx, "id", id)
}

func (s *IdentityStore) GetUserByEmail(ctx context.Context, tx storage.Tx, email string) (*identity.User, error) {
	return s.getUserBy(ctx, tx, "email", email)
}

func (s *IdentityStore) ListPendingUsers(ctx context.Context, tx storage.Tx) ([]identity.User, error) {
	var rows []userRow
	if err := tx.SelectContext(ctx, &rows, selectUserBase+"pending = true ORDER BY requested_on"); err != nil {
		return nil, fmt.Errorf("list pending users: %w", err)
	}
	out := make([]identity.User, len(rows))
	for i, r := range rows {
		out[i] = *r.toDomain()
	}
	return out, nil
}

func (s *IdentityStore) ListUsers(ctx context.Context, tx storage.Tx) ([]identity.User, error) {
	var rows []userRow
	if err := tx.SelectContext(ctx, &rows, selectUserBase+"true ORDER BY login"); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	out := make([]identity.User, len(rows))
	for i, r := range rows {
		out[i] = *r.toDomain()
	}
	return out, nil
}

const updateUserQuery = `
	UPDATE users SET
		email = :email, password_hash = :password_hash, password_ver = :password_ver,
		identity_ver = :identity_ver, pending = :pending, disabled = :disabled,
		registered_on = :registered_on, registered_by = :registered_by, feed_quality = :feed_quality,
		version_uid = :version_uid
	WHERE id = :id`

func (s *IdentityStore) UpdateUser(ctx context.Context, tx storage.Tx, u *identity.User) error {
	row := fromUser(u)
	res, err := tx.NamedExecContext(ctx, updateUserQuery, row)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return expectOneRow(res, "user not found")
}

func (s *IdentityStore) DeleteUser(ctx context.Context, tx storage.Tx, id uuid.UUID) error {
	res, err := tx.ExecContext(ctx, "DELETE FROM users WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return expectOneRow(res, "user not found")
}

type groupRow struct {
	ID           uuid.UUID      `db:"id"`
	Name         string         `db:"name"`
	Capabilities pq.StringArray `db:"capabilities"`
	Private      bool           `db:"private"`
}

func (r groupRow) toDomain() *identity.Group {
	set := capability.NewSet()
	for _, c := range r.Capabilities {
		set.Add(capability.Tag(c))
	}
	return &identity.Group{ID: r.ID, Name: r.Name, Capabilities: set, Private: r.Private}
}

const insertGroupQuery = `INSERT INTO groups (id, name, capabilities, private) VALUES (:id, :name, :capabilities, :private)`

func (s *IdentityStore) CreateGroup(ctx context.Context, tx storage.Tx, g *identity.Group) error {
	row := groupRow{ID: g.ID, Name: g.Name, Capabilities: pq.StringArray(capTags(g.Capabilities)), Private: g.Private}
	if _, err := tx.NamedExecContext(ctx, insertGroupQuery, row); err != nil {
		if storage.IsUniqueViolation(err) {
			return vaulterr.New(vaulterr.Conflict, "group name already exists")
		}
		return fmt.Errorf("insert group: %w", err)
	}
	return nil
}

func (s *IdentityStore) DeleteGroup(ctx context.Context, tx storage.Tx, id uuid.UUID) error {
	res, err := tx.ExecContext(ctx, "DELETE FROM groups WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete group: %w", err)
	}
	return expectOneRow(res, "group not found")
}

const selectGroupBase = `SELECT id, name, capabilities, private FROM groups WHERE `

func (s *IdentityStore) GetGroupByName(ctx context.Context, tx storage.Tx, name string) (*identity.Group, error) {
	var row groupRow
	err := tx.GetContext(ctx, &row, selectGroupBase+"name = $1", name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, vaulterr.New(vaulterr.NotFound, "group not found")
	}
	if err != nil {
		return nil, fmt.Errorf("select group by name: %w", err)
	}
	return row.toDomain(), nil
}

func (s *IdentityStore) GetGroupByID(ctx context.Context, tx storage.Tx, id uuid.UUID) (*identity.Group, error) {
	var row groupRow
	err := tx.GetContext(ctx, &row, selectGroupBase+"id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, vaulterr.New(vaulterr.NotFound, "group not found")
	}
	if err != nil {
		return nil, fmt.Errorf("select group by id: %w", err)
	}
	return row.toDomain(), nil
}

func (s *IdentityStore) ListGroupsForUser(ctx context.Context, tx storage.Tx, userID uuid.UUID) ([]identity.Group, error) {
	var rows []groupRow
	query := `
		SELECT g.id, g.name, g.capabilities, g.private
		FROM groups g JOIN memberships m ON m.group_id = g.id
		WHERE m.user_id = $1 ORDER BY g.name`
	if err := tx.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, fmt.Errorf("list groups for user: %w", err)
	}
	out := make([]identity.Group, len(rows))
	for i, r := range rows {
		out[i] = *r.toDomain()
	}
	return out, nil
}

func (s *IdentityStore) ListGroupsWithCapability(ctx context.Context, tx storage.Tx, cap string) ([]identity.Group, error) {
	var rows []groupRow
	query := `SELECT id, name, capabilities, private FROM groups WHERE $1 = ANY(capabilities) ORDER BY name`
	if err := tx.SelectContext(ctx, &rows, query, cap); err != nil {
		return nil, fmt.Errorf("list groups with capability: %w", err)
	}
	out := make([]identity.Group, len(rows))
	for i, r := range rows {
		out[i] = *r.toDomain()
	}
	return out, nil
}

func (s *IdentityStore) AddMember(ctx context.Context, tx storage.Tx, userID, groupID uuid.UUID) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO memberships (user_id, group_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`, userID, groupID)
	if err != nil {
		return fmt.Errorf("add member: %w", err)
	}
	return nil
}

func (s *IdentityStore) RemoveMember(ctx context.Context, tx storage.Tx, userID, groupID uuid.UUID) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM memberships WHERE user_id = $1 AND group_id = $2`, userID, groupID)
	if err != nil {
		return fmt.Errorf("remove member: %w", err)
	}
	return nil
}

func (s *IdentityStore) IsMember(ctx context.Context, tx storage.Tx, userID, groupID uuid.UUID) (bool, error) {
	var exists bool
	err := tx.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM memberships WHERE user_id = $1 AND group_id = $2)`, userID, groupID)
	if err != nil {
		return false, fmt.Errorf("is member: %w", err)
	}
	return exists, nil
}

func (s *IdentityStore) LoginOrGroupNameTaken(ctx context.Context, tx storage.Tx, name string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE login = $1 UNION SELECT 1 FROM groups WHERE name = $1)`
	if err := tx.GetContext(ctx, &exists, query, name); err != nil {
		return false, fmt.Errorf("login or group name taken: %w", err)
	}
	return exists, nil
}

func capTags(set capability.Set) []string {
	tags := set.Slice()
	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = string(t)
	}
	return out
}

type execResult interface {
	RowsAffected() (int64, error)
}

func expectOneRow(res execResult, notFoundMsg string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return vaulterr.New(vaulterr.NotFound, notFoundMsg)
	}
	return nil
}
