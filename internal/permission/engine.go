// Package permission implements the ACL engine: grant, propagate,
// visible, and explicit_access over the object graph. It takes group
// membership and the access_all_objects override as explicit
// parameters rather than reaching into the identity package, keeping
// the permission/identity boundary explicit-parameter throughout (no
// ambient requestor). Grounded on original_source/model/object.py's
// ObjectPermission.create and give_access.
package permission

import (
	"context"

	"github.com/google/uuid"
	"github.com/zeromicro/go-zero/core/logx"

	"github.com/sampleforge/vault/internal/objectgraph"
	"github.com/sampleforge/vault/internal/storage"
	"github.com/sampleforge/vault/internal/vaulterr"
)

// Engine exposes the ACL operations over an objectgraph.Store.
type Engine struct {
	store objectgraph.Store
}

// NewEngine builds an Engine backed by store.
func NewEngine(store objectgraph.Store) *Engine {
	return &Engine{store: store}
}

// Grant performs the idempotent ACL insert.
// InsertPermissionIfAbsent is responsible for the nested-savepoint
// insert-or-detect-conflict attempt (the Postgres adapter opens one via
// storage.WithSavepoint; the in-memory test fake just checks its map);
// Grant's job is the recheck-on-conflict half: if the row wasn't
// inserted here, confirm some other writer's row is actually present
// before reporting false. The boolean return is the termination
// condition Propagate relies on.
func (e *Engine) Grant(ctx context.Context, tx storage.Tx, p *objectgraph.Permission) (bool, error) {
	inserted, err := e.store.InsertPermissionIfAbsent(ctx, tx, p)
	if err != nil {
		return false, err
	}
	if !inserted {
		exists, err := e.store.HasPermission(ctx, tx, p.ObjectID, p.GroupID)
		if err != nil {
			return false, err
		}
		if !exists {
			// The unique-constraint conflict said a row was there, but
			// the post-rollback recheck can't find it. The source
			// re-raises in this case under weaker isolation levels;
			// preserve that rather than silently treating it as "some
			// other writer owns it".
			return false, vaulterr.New(vaulterr.IntegrityConflict, "acl row vanished after conflict recheck")
		}
	}
	return inserted, nil
}

// Propagate performs BFS from rootObject along child edges, calling
// Grant at each frontier node and only descending into a node's
// children when Grant created a fresh row. This is what makes the
// traversal cycle-tolerant and safe under concurrent propagators.
func (e *Engine) Propagate(ctx context.Context, tx storage.Tx, rootObjectID, groupID uuid.UUID, reason objectgraph.ReasonType, relatedObjectID, relatedUserID *uuid.UUID) error {
	queue := []uuid.UUID{rootObjectID}
	visited := map[uuid.UUID]bool{}

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if visited[id] {
			continue
		}
		visited[id] = true

		inserted, err := e.Grant(ctx, tx, &objectgraph.Permission{
			ObjectID:        id,
			GroupID:         groupID,
			ReasonType:      reason,
			RelatedObjectID: relatedObjectID,
			RelatedUserID:   relatedUserID,
		})
		if err != nil {
			return err
		}
		if !inserted {
			continue
		}

		children, err := e.store.ChildrenOf(ctx, tx, id)
		if err != nil {
			return err
		}
		for _, c := range children {
			if !visited[c.ID] {
				queue = append(queue, c.ID)
			}
		}
	}

	logx.Infof("permission: propagated group=%s from object=%s reason=%s over %d nodes", groupID, rootObjectID, reason, len(visited))
	return nil
}

// PropagateAddParent re-propagates every ACL row the new parent
// already carries down into child and its subtree — the sole mechanism
// by which a late-added cross-link makes a previously private subtree
// visible to new viewers.
func (e *Engine) PropagateAddParent(ctx context.Context, tx storage.Tx, parentID, childID uuid.UUID) error {
	groupIDs, err := e.store.GroupIDsWithAccess(ctx, tx, parentID)
	if err != nil {
		return err
	}
	for _, gid := range groupIDs {
		if err := e.Propagate(ctx, tx, childID, gid, objectgraph.ReasonShared, &parentID, nil); err != nil {
			return err
		}
	}
	return nil
}

// ExplicitAccess is the materialization of Visible for a single
// object: does an ACL row exist for objectID under any of
// memberGroupIDs.
func (e *Engine) ExplicitAccess(ctx context.Context, tx storage.Tx, objectID uuid.UUID, memberGroupIDs []uuid.UUID, hasAccessAll bool) (bool, error) {
	if hasAccessAll {
		return true, nil
	}
	for _, gid := range memberGroupIDs {
		ok, err := e.store.HasPermission(ctx, tx, objectID, gid)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// Visible filters candidateIDs down to those visible to a requestor
// belonging to memberGroupIDs, short-circuiting to the always-true
// predicate for access_all_objects holders.
func (e *Engine) Visible(ctx context.Context, tx storage.Tx, candidateIDs []uuid.UUID, memberGroupIDs []uuid.UUID, hasAccessAll bool) ([]uuid.UUID, error) {
	if hasAccessAll {
		return candidateIDs, nil
	}
	if len(candidateIDs) == 0 || len(memberGroupIDs) == 0 {
		return nil, nil
	}
	return e.store.VisibleObjectIDs(ctx, tx, candidateIDs, memberGroupIDs)
}

// Uploaded reports whether userID caused objectID's first-ever grant —
// the supplemented has_uploaded_object predicate from original_source,
// usable to let an uploader act on their own object (deleting a
// comment, retagging) independent of whatever capability set they
// currently hold.
func (e *Engine) Uploaded(ctx context.Context, tx storage.Tx, userID, objectID uuid.UUID) (bool, error) {
	return e.store.UploadedObject(ctx, tx, userID, objectID)
}
