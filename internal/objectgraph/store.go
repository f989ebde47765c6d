package objectgraph

import (
	"context"

	"github.com/google/uuid"

	"github.com/sampleforge/vault/internal/storage"
)

// Store is the storage port the object graph and permission engine are
// built on. A concrete adapter lives in internal/storage/postgres;
// tests use the in-memory fake in internal/storetest.
type Store interface {
	CreateObject(ctx context.Context, tx storage.Tx, o *Object) error
	GetObjectByDhash(ctx context.Context, tx storage.Tx, dhash string) (*Object, error)
	GetObjectByID(ctx context.Context, tx storage.Tx, id uuid.UUID) (*Object, error)

	AddEdge(ctx context.Context, tx storage.Tx, parentID, childID uuid.UUID) (bool, error)
	RemoveEdge(ctx context.Context, tx storage.Tx, parentID, childID uuid.UUID) error
	ParentsOf(ctx context.Context, tx storage.Tx, childID uuid.UUID) ([]Object, error)
	ChildrenOf(ctx context.Context, tx storage.Tx, parentID uuid.UUID) ([]Object, error)

	// InsertPermissionIfAbsent attempts the ACL row insert grant relies
	// on. Implementations own the idempotent-insert mechanics: the
	// Postgres adapter wraps the attempt in a nested savepoint and
	// treats a unique-constraint violation as inserted=false, err=nil
	// rather than surfacing the conflict as an error. It reports whether this call created the row, distinguishing
	// a fresh grant from a pre-existing one.
	InsertPermissionIfAbsent(ctx context.Context, tx storage.Tx, p *Permission) (inserted bool, err error)
	HasPermission(ctx context.Context, tx storage.Tx, objectID, groupID uuid.UUID) (bool, error)
	GroupIDsWithAccess(ctx context.Context, tx storage.Tx, objectID uuid.UUID) ([]uuid.UUID, error)

	// VisibleObjectIDs returns the subset of candidateIDs for which some
	// group in memberGroupIDs holds an ACL row — the materialization of
	// visible(user) over a concrete candidate set.
	VisibleObjectIDs(ctx context.Context, tx storage.Tx, candidateIDs []uuid.UUID, memberGroupIDs []uuid.UUID) ([]uuid.UUID, error)

	CreateComment(ctx context.Context, tx storage.Tx, c *Comment) error
	DeleteComment(ctx context.Context, tx storage.Tx, id uuid.UUID) error
	ListComments(ctx context.Context, tx storage.Tx, objectID uuid.UUID) ([]Comment, error)

	CreateTag(ctx context.Context, tx storage.Tx, t *Tag) error
	DeleteTag(ctx context.Context, tx storage.Tx, id uuid.UUID) error
	ListTags(ctx context.Context, tx storage.Tx, objectID uuid.UUID) ([]Tag, error)

	GetMetakeyDefinition(ctx context.Context, tx storage.Tx, key string) (*MetakeyDefinition, error)
	ListMetakeyPermissions(ctx context.Context, tx storage.Tx, key string) ([]MetakeyPermission, error)
	SetMetakey(ctx context.Context, tx storage.Tx, m *Metakey) error
	DeleteMetakey(ctx context.Context, tx storage.Tx, id uuid.UUID) error
	ListMetakeys(ctx context.Context, tx storage.Tx, objectID uuid.UUID) ([]Metakey, error)

	CreateAPIKey(ctx context.Context, tx storage.Tx, k *APIKey) error
	DeleteAPIKey(ctx context.Context, tx storage.Tx, id uuid.UUID) error
	GetAPIKeyByID(ctx context.Context, tx storage.Tx, id uuid.UUID, userID uuid.UUID) (*APIKey, error)
	ListAPIKeys(ctx context.Context, tx storage.Tx, userID uuid.UUID) ([]APIKey, error)

	// UploadedObject reports whether userID caused objectID's first-ever
	// grant (an added/migrated ACL row naming both as related party) —
	// the supplemented has_uploaded_object predicate from
	// original_source's model/user.py, expressed per-object rather than
	// as a blanket "has this user uploaded anything" check.
	UploadedObject(ctx context.Context, tx storage.Tx, userID, objectID uuid.UUID) (bool, error)
}
