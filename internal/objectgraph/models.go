// Package objectgraph models the polymorphic object DAG: typed
// artifacts identified by digest, their many-to-many
// parent/child edges, and the auxiliary entities (comments, tags,
// metakeys, API keys) each owned by its parent. Grounded on
// original_source/model/object.py's Object/Comment/Tag/MetakeyDefinition
// hierarchy, rendered here as a single discriminated struct per the
// "polymorphic Object hierarchy" design note rather than a subclass tree.
package objectgraph

import (
	"time"

	"github.com/google/uuid"
)

// Type discriminates the rendering of a single Object table, replacing
// the source's file/static_config/blob subclasses.
type Type string

const (
	TypeObject       Type = "object"
	TypeFile         Type = "file"
	TypeStaticConfig Type = "static_config"
	TypeBlob         Type = "blob"
)

// Object is one node in the DAG. Dhash is the only externally visible
// key; ID never appears in external interfaces.
type Object struct {
	ID         uuid.UUID
	Type       Type
	Dhash      string
	UploadTime time.Time

	// File-specific fields, populated only when Type == TypeFile.
	FileName string
	FileSize int64

	// StaticConfig-specific fields.
	ConfigType string
	ConfigJSON string

	// Blob-specific fields.
	BlobName string
	BlobType string
}

// Edge is a parent/child relation row. The pair is unique but the
// graph may contain cycles by design.
type Edge struct {
	ParentID     uuid.UUID
	ChildID      uuid.UUID
	CreationTime time.Time
}

// ReasonType records why an ACL row exists; immutable once the row is
// inserted.
type ReasonType string

const (
	ReasonAdded    ReasonType = "added"
	ReasonShared   ReasonType = "shared"
	ReasonQueried  ReasonType = "queried"
	ReasonMigrated ReasonType = "migrated"
)

// Permission is one ACL row, keyed (ObjectID, GroupID).
type Permission struct {
	ObjectID        uuid.UUID
	GroupID         uuid.UUID
	AccessTime      time.Time
	ReasonType      ReasonType
	RelatedObjectID *uuid.UUID
	RelatedUserID   *uuid.UUID
}

// Comment is owned by its Object; deletion policy is capability-gated
// only, matching original_source's CommentDeleteResource.
type Comment struct {
	ID         uuid.UUID
	ObjectID   uuid.UUID
	AuthorID   uuid.UUID
	Comment    string
	Timestamp  time.Time
}

// Tag is owned by its Object.
type Tag struct {
	ID       uuid.UUID
	ObjectID uuid.UUID
	Tag      string
}

// MetakeyPermission grants a group read and/or set rights on a
// MetakeyDefinition's key (original_source: MetakeyPermission).
type MetakeyPermission struct {
	Key     string
	GroupID uuid.UUID
	CanRead bool
	CanSet  bool
}

// MetakeyDefinition describes a typed attribute key: its URL template
// and whether it is hidden. Per-group read/set rights are held in
// MetakeyPermission rows, not here.
type MetakeyDefinition struct {
	Key         string
	URLTemplate string
	Hidden      bool
}

// Metakey is one key/value attribute attached to an Object.
type Metakey struct {
	ID       uuid.UUID
	ObjectID uuid.UUID
	Key      string
	Value    string
}

// APIKey is an auxiliary credential owned by a User; its row's
// existence (not a version counter) is what api-key tokens bind to.
type APIKey struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	IssuedOn  time.Time
	Name      string
}
