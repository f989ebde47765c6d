package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/sampleforge/vault/internal/objectgraph"
	"github.com/sampleforge/vault/internal/storage"
	"github.com/sampleforge/vault/internal/vaulterr"
)

// ObjectGraphStore is the Postgres-backed objectgraph.Store.
type ObjectGraphStore struct {
	db *sqlx.DB
}

// NewObjectGraphStore builds an ObjectGraphStore over db.
func NewObjectGraphStore(db *sqlx.DB) *ObjectGraphStore {
	return &ObjectGraphStore{db: db}
}

type objectRow struct {
	ID         uuid.UUID      `db:"id"`
	Type       string         `db:"type"`
	Dhash      string         `db:"dhash"`
	UploadTime sql.NullTime   `db:"upload_time"`
	FileName   sql.NullString `db:"file_name"`
	FileSize   sql.NullInt64  `db:"file_size"`
	ConfigType sql.NullString `db:"config_type"`
	ConfigJSON sql.NullString `db:"config_json"`
	BlobName   sql.NullString `db:"blob_name"`
	BlobType   sql.NullString `db:"blob_type"`
}

func (r objectRow) toDomain() *objectgraph.Object {
	o := &objectgraph.Object{
		ID:         r.ID,
		Type:       objectgraph.Type(r.Type),
		Dhash:      r.Dhash,
		FileName:   r.FileName.String,
		FileSize:   r.FileSize.Int64,
		ConfigType: r.ConfigType.String,
		ConfigJSON: r.ConfigJSON.String,
		BlobName:   r.BlobName.String,
		BlobType:   r.BlobType.String,
	}
	if r.UploadTime.Valid {
		o.UploadTime = r.UploadTime.Time
	}
	return o
}

const insertObjectQuery = `
	INSERT INTO objects (id, type, dhash, upload_time, file_name, file_size, config_type, config_json, blob_name, blob_type)
	VALUES (:id, :type, :dhash, :upload_time, :file_name, :file_size, :config_type, :config_json, :blob_name, :blob_type)`

func (s *ObjectGraphStore) CreateObject(ctx context.Context, tx storage.Tx, o *objectgraph.Object) error {
	row := objectRow{
		ID:         o.ID,
		Type:       string(o.Type),
		Dhash:      o.Dhash,
		UploadTime: sql.NullTime{Time: o.UploadTime, Valid: !o.UploadTime.IsZero()},
		FileName:   sql.NullString{String: o.FileName, Valid: o.FileName != ""},
		FileSize:   sql.NullInt64{Int64: o.FileSize, Valid: o.FileSize != 0},
		ConfigType: sql.NullString{String: o.ConfigType, Valid: o.ConfigType != ""},
		ConfigJSON: sql.NullString{String: o.ConfigJSON, Valid: o.ConfigJSON != ""},
		BlobName:   sql.NullString{String: o.BlobName, Valid: o.BlobName != ""},
		BlobType:   sql.NullString{String: o.BlobType, Valid: o.BlobType != ""},
	}
	if _, err := tx.NamedExecContext(ctx, insertObjectQuery, row); err != nil {
		if storage.IsUniqueViolation(err) {
			return vaulterr.New(vaulterr.Conflict, "object with that digest already exists")
		}
		return fmt.Errorf("insert object: %w", err)
	}
	return nil
}

const selectObjectBase = `SELECT id, type, dhash, upload_time, file_name, file_size, config_type, config_json, blob_name, blob_type FROM objects WHERE `

func (s *ObjectGraphStore) GetObjectByDhash(ctx context.Context, tx storage.Tx, dhash string) (*objectgraph.Object, error) {
	var row objectRow
	err := tx.GetContext(ctx, &row, selectObjectBase+"dhash = $1", dhash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select object by dhash: %w", err)
	}
	return row.toDomain(), nil
}

func (s *ObjectGraphStore) GetObjectByID(ctx context.Context, tx storage.Tx, id uuid.UUID) (*objectgraph.Object, error) {
	var row objectRow
	err := tx.GetContext(ctx, &row, selectObjectBase+"id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, vaulterr.New(vaulterr.NotFound, "object not found")
	}
	if err != nil {
		return nil, fmt.Errorf("select object by id: %w", err)
	}
	return row.toDomain(), nil
}

// AddEdge inserts a parent/child row, reporting false (not an error)
// when the pair already exists — callers that need to know whether
// this created a fresh edge (to trigger add-parent re-propagation)
// rely on that boolean.
func (s *ObjectGraphStore) AddEdge(ctx context.Context, tx storage.Tx, parentID, childID uuid.UUID) (bool, error) {
	res, err := tx.ExecContext(ctx, `
		INSERT INTO object_edges (parent_id, child_id, creation_time)
		VALUES ($1, $2, now())
		ON CONFLICT (parent_id, child_id) DO NOTHING`, parentID, childID)
	if err != nil {
		return false, fmt.Errorf("add edge: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("add edge rows affected: %w", err)
	}
	return n > 0, nil
}

func (s *ObjectGraphStore) RemoveEdge(ctx context.Context, tx storage.Tx, parentID, childID uuid.UUID) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM object_edges WHERE parent_id = $1 AND child_id = $2`, parentID, childID)
	if err != nil {
		return fmt.Errorf("remove edge: %w", err)
	}
	return nil
}

func (s *ObjectGraphStore) ParentsOf(ctx context.Context, tx storage.Tx, childID uuid.UUID) ([]objectgraph.Object, error) {
	var rows []objectRow
	query := `
		SELECT o.id, o.type, o.dhash, o.upload_time, o.file_name, o.file_size, o.config_type, o.config_json, o.blob_name, o.blob_type
		FROM objects o JOIN object_edges e ON e.parent_id = o.id
		WHERE e.child_id = $1`
	if err := tx.SelectContext(ctx, &rows, query, childID); err != nil {
		return nil, fmt.Errorf("parents of: %w", err)
	}
	return toObjects(rows), nil
}

func (s *ObjectGraphStore) ChildrenOf(ctx context.Context, tx storage.Tx, parentID uuid.UUID) ([]objectgraph.Object, error) {
	var rows []objectRow
	query := `
		SELECT o.id, o.type, o.dhash, o.upload_time, o.file_name, o.file_size, o.config_type, o.config_json, o.blob_name, o.blob_type
		FROM objects o JOIN object_edges e ON e.child_id = o.id
		WHERE e.parent_id = $1`
	if err := tx.SelectContext(ctx, &rows, query, parentID); err != nil {
		return nil, fmt.Errorf("children of: %w", err)
	}
	return toObjects(rows), nil
}

func toObjects(rows []objectRow) []objectgraph.Object {
	out := make([]objectgraph.Object, len(rows))
	for i, r := range rows {
		out[i] = *r.toDomain()
	}
	return out
}

// InsertPermissionIfAbsent attempts the insert inside a nested
// savepoint: a unique-constraint collision rolls back
// just that savepoint and is reported as inserted=false rather than an
// error, leaving Engine.Grant to decide whether the recheck that
// follows is itself an integrity conflict.
func (s *ObjectGraphStore) InsertPermissionIfAbsent(ctx context.Context, tx storage.Tx, p *objectgraph.Permission) (bool, error) {
	inserted := false
	err := storage.WithSavepoint(ctx, tx, func() error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO object_permissions (object_id, group_id, access_time, reason_type, related_object_id, related_user_id)
			VALUES ($1, $2, now(), $3, $4, $5)`,
			p.ObjectID, p.GroupID, p.ReasonType, p.RelatedObjectID, p.RelatedUserID)
		if err != nil {
			return err
		}
		inserted = true
		return nil
	})
	if err != nil {
		if storage.IsUniqueViolation(err) {
			return false, nil
		}
		return false, err
	}
	return inserted, nil
}

func (s *ObjectGraphStore) HasPermission(ctx context.Context, tx storage.Tx, objectID, groupID uuid.UUID) (bool, error) {
	var exists bool
	err := tx.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM object_permissions WHERE object_id = $1 AND group_id = $2)`, objectID, groupID)
	if err != nil {
		return false, fmt.Errorf("has permission: %w", err)
	}
	return exists, nil
}

func (s *ObjectGraphStore) GroupIDsWithAccess(ctx context.Context, tx storage.Tx, objectID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := tx.SelectContext(ctx, &ids, `SELECT group_id FROM object_permissions WHERE object_id = $1`, objectID)
	if err != nil {
		return nil, fmt.Errorf("group ids with access: %w", err)
	}
	return ids, nil
}

func (s *ObjectGraphStore) VisibleObjectIDs(ctx context.Context, tx storage.Tx, candidateIDs, memberGroupIDs []uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	query := `
		SELECT DISTINCT object_id FROM object_permissions
		WHERE object_id = ANY($1) AND group_id = ANY($2)`
	err := tx.SelectContext(ctx, &ids, query, pq.Array(candidateIDs), pq.Array(memberGroupIDs))
	if err != nil {
		return nil, fmt.Errorf("visible object ids: %w", err)
	}
	return ids, nil
}

type commentRow struct {
	ID        uuid.UUID `db:"id"`
	ObjectID  uuid.UUID `db:"object_id"`
	AuthorID  uuid.UUID `db:"author_id"`
	Comment   string    `db:"comment"`
	Timestamp sql.NullTime `db:"timestamp"`
}

func (s *ObjectGraphStore) CreateComment(ctx context.Context, tx storage.Tx, c *objectgraph.Comment) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO comments (id, object_id, author_id, comment, timestamp)
		VALUES ($1, $2, $3, $4, now())`, c.ID, c.ObjectID, c.AuthorID, c.Comment)
	if err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}
	return nil
}

func (s *ObjectGraphStore) DeleteComment(ctx context.Context, tx storage.Tx, id uuid.UUID) error {
	res, err := tx.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	return expectOneRow(res, "comment not found")
}

func (s *ObjectGraphStore) ListComments(ctx context.Context, tx storage.Tx, objectID uuid.UUID) ([]objectgraph.Comment, error) {
	var rows []commentRow
	query := `SELECT id, object_id, author_id, comment, timestamp FROM comments WHERE object_id = $1 ORDER BY timestamp`
	if err := tx.SelectContext(ctx, &rows, query, objectID); err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	out := make([]objectgraph.Comment, len(rows))
	for i, r := range rows {
		out[i] = objectgraph.Comment{ID: r.ID, ObjectID: r.ObjectID, AuthorID: r.AuthorID, Comment: r.Comment}
		if r.Timestamp.Valid {
			out[i].Timestamp = r.Timestamp.Time
		}
	}
	return out, nil
}

func (s *ObjectGraphStore) CreateTag(ctx context.Context, tx storage.Tx, t *objectgraph.Tag) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO tags (id, object_id, tag) VALUES ($1, $2, $3) ON CONFLICT DO NOTHING`, t.ID, t.ObjectID, t.Tag)
	if err != nil {
		return fmt.Errorf("insert tag: %w", err)
	}
	return nil
}

func (s *ObjectGraphStore) DeleteTag(ctx context.Context, tx storage.Tx, id uuid.UUID) error {
	res, err := tx.ExecContext(ctx, `DELETE FROM tags WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete tag: %w", err)
	}
	return expectOneRow(res, "tag not found")
}

func (s *ObjectGraphStore) ListTags(ctx context.Context, tx storage.Tx, objectID uuid.UUID) ([]objectgraph.Tag, error) {
	var rows []objectgraph.Tag
	if err := tx.SelectContext(ctx, &rows, `SELECT id, object_id, tag FROM tags WHERE object_id = $1 ORDER BY tag`, objectID); err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	return rows, nil
}

func (s *ObjectGraphStore) GetMetakeyDefinition(ctx context.Context, tx storage.Tx, key string) (*objectgraph.MetakeyDefinition, error) {
	var def objectgraph.MetakeyDefinition
	err := tx.GetContext(ctx, &def, `SELECT key, url_template, hidden FROM metakey_definitions WHERE key = $1`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, vaulterr.New(vaulterr.NotFound, "metakey definition not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get metakey definition: %w", err)
	}
	return &def, nil
}

func (s *ObjectGraphStore) ListMetakeyPermissions(ctx context.Context, tx storage.Tx, key string) ([]objectgraph.MetakeyPermission, error) {
	var rows []objectgraph.MetakeyPermission
	query := `SELECT key, group_id, can_read, can_set FROM metakey_permissions WHERE key = $1`
	if err := tx.SelectContext(ctx, &rows, query, key); err != nil {
		return nil, fmt.Errorf("list metakey permissions: %w", err)
	}
	return rows, nil
}

func (s *ObjectGraphStore) SetMetakey(ctx context.Context, tx storage.Tx, m *objectgraph.Metakey) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO metakeys (id, object_id, key, value)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (object_id, key, value) DO NOTHING`, m.ID, m.ObjectID, m.Key, m.Value)
	if err != nil {
		return fmt.Errorf("set metakey: %w", err)
	}
	return nil
}

func (s *ObjectGraphStore) DeleteMetakey(ctx context.Context, tx storage.Tx, id uuid.UUID) error {
	res, err := tx.ExecContext(ctx, `DELETE FROM metakeys WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete metakey: %w", err)
	}
	return expectOneRow(res, "metakey not found")
}

func (s *ObjectGraphStore) ListMetakeys(ctx context.Context, tx storage.Tx, objectID uuid.UUID) ([]objectgraph.Metakey, error) {
	var rows []objectgraph.Metakey
	if err := tx.SelectContext(ctx, &rows, `SELECT id, object_id, key, value FROM metakeys WHERE object_id = $1 ORDER BY key`, objectID); err != nil {
		return nil, fmt.Errorf("list metakeys: %w", err)
	}
	return rows, nil
}

func (s *ObjectGraphStore) CreateAPIKey(ctx context.Context, tx storage.Tx, k *objectgraph.APIKey) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO api_keys (id, user_id, issued_on, name)
		VALUES ($1, $2, now(), $3)`, k.ID, k.UserID, k.Name)
	if err != nil {
		return fmt.Errorf("insert api key: %w", err)
	}
	return nil
}

func (s *ObjectGraphStore) DeleteAPIKey(ctx context.Context, tx storage.Tx, id uuid.UUID) error {
	res, err := tx.ExecContext(ctx, `DELETE FROM api_keys WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete api key: %w", err)
	}
	return expectOneRow(res, "api key not found")
}

func (s *ObjectGraphStore) GetAPIKeyByID(ctx context.Context, tx storage.Tx, id uuid.UUID, userID uuid.UUID) (*objectgraph.APIKey, error) {
	var row struct {
		ID       uuid.UUID    `db:"id"`
		UserID   uuid.UUID    `db:"user_id"`
		IssuedOn sql.NullTime `db:"issued_on"`
		Name     string       `db:"name"`
	}
	err := tx.GetContext(ctx, &row, `SELECT id, user_id, issued_on, name FROM api_keys WHERE id = $1 AND user_id = $2`, id, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, vaulterr.New(vaulterr.NotFound, "api key not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get api key: %w", err)
	}
	k := &objectgraph.APIKey{ID: row.ID, UserID: row.UserID, Name: row.Name}
	if row.IssuedOn.Valid {
		k.IssuedOn = row.IssuedOn.Time
	}
	return k, nil
}

func (s *ObjectGraphStore) ListAPIKeys(ctx context.Context, tx storage.Tx, userID uuid.UUID) ([]objectgraph.APIKey, error) {
	var rows []struct {
		ID       uuid.UUID    `db:"id"`
		UserID   uuid.UUID    `db:"user_id"`
		IssuedOn sql.NullTime `db:"issued_on"`
		Name     string       `db:"name"`
	}
	if err := tx.SelectContext(ctx, &rows, `SELECT id, user_id, issued_on, name FROM api_keys WHERE user_id = $1 ORDER BY issued_on`, userID); err != nil {
		return nil, fmt.Errorf("list api keys: %w", err)
	}
	out := make([]objectgraph.APIKey, len(rows))
	for i, r := range rows {
		out[i] = objectgraph.APIKey{ID: r.ID, UserID: r.UserID, Name: r.Name}
		if r.IssuedOn.Valid {
			out[i].IssuedOn = r.IssuedOn.Time
		}
	}
	return out, nil
}

func (s *ObjectGraphStore) UploadedObject(ctx context.Context, tx storage.Tx, userID, objectID uuid.UUID) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM object_permissions
		WHERE related_user_id = $1 AND related_object_id = $2 AND reason_type IN ('added', 'migrated'))`
	if err := tx.GetContext(ctx, &exists, query, userID, objectID); err != nil {
		return false, fmt.Errorf("uploaded object: %w", err)
	}
	return exists, nil
}
