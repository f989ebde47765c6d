// Package access implements the single authorization entry point:
// Access(identifier, requestor) resolves an object by digest, hides
// graph shape the requestor cannot see, and auto-grants QUERIED access
// to privileged searchers. Grounded on original_source/model/object.py's
// Object.access classmethod.
package access

import (
	"context"

	"github.com/google/uuid"

	"github.com/sampleforge/vault/internal/capability"
	"github.com/sampleforge/vault/internal/objectgraph"
	"github.com/sampleforge/vault/internal/permission"
	"github.com/sampleforge/vault/internal/storage"
)

// Requestor is the subset of an authenticated caller Access needs: the
// groups it belongs to and the capabilities those groups confer. No
// identity.User pointer crosses this boundary, keeping the façade
// independent of how the caller was authenticated.
type Requestor struct {
	UserID         uuid.UUID
	MemberGroupIDs []uuid.UUID
	Capabilities   capability.Set
}

// QueryingGroup pairs a group id the requestor belongs to with whether
// that group itself holds share_queried_objects — only such groups
// receive the auto-grant in step 4.
type QueryingGroup struct {
	GroupID            uuid.UUID
	HasShareQueriedCap bool
}

// View is what a successful Access call returns: the object plus its
// parents filtered down to the ones visible to the requestor. Parents
// that exist but are not visible are simply absent — the view hides
// graph shape, it does not flag the omission.
type View struct {
	Object  objectgraph.Object
	Parents []objectgraph.Object
}

// Facade wires the permission engine and object store together behind
// Access.
type Facade struct {
	objects objectgraph.Store
	engine  *permission.Engine
}

// NewFacade builds a Facade.
func NewFacade(objects objectgraph.Store, engine *permission.Engine) *Facade {
	return &Facade{objects: objects, engine: engine}
}

// Access runs the four-step resolve/hide/grant/describe algorithm.
// queryingGroups must list every group the requestor belongs to, annotated with
// whether that group holds share_queried_objects — callers compute
// this once per request rather than Access reaching back into the
// identity store.
func (f *Facade) Access(ctx context.Context, tx storage.Tx, dhash string, requestor Requestor, queryingGroups []QueryingGroup) (*View, error) {
	obj, err := f.objects.GetObjectByDhash(ctx, tx, dhash)
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, nil
	}

	hasAccessAll := requestor.Capabilities.Has(capability.AccessAllObjects)

	parents, err := f.objects.ParentsOf(ctx, tx, obj.ID)
	if err != nil {
		return nil, err
	}
	view, err := f.visibleParentsView(ctx, tx, *obj, parents, requestor.MemberGroupIDs, hasAccessAll)
	if err != nil {
		return nil, err
	}

	explicit, err := f.engine.ExplicitAccess(ctx, tx, obj.ID, requestor.MemberGroupIDs, hasAccessAll)
	if err != nil {
		return nil, err
	}
	if explicit {
		return view, nil
	}

	if !requestor.Capabilities.Has(capability.ShareQueriedObjects) {
		return nil, nil
	}

	for _, qg := range queryingGroups {
		if !qg.HasShareQueriedCap {
			continue
		}
		if err := f.engine.Propagate(ctx, tx, obj.ID, qg.GroupID, objectgraph.ReasonQueried, &obj.ID, &requestor.UserID); err != nil {
			return nil, err
		}
	}
	return view, nil
}

func (f *Facade) visibleParentsView(ctx context.Context, tx storage.Tx, obj objectgraph.Object, parents []objectgraph.Object, memberGroupIDs []uuid.UUID, hasAccessAll bool) (*View, error) {
	if len(parents) == 0 {
		return &View{Object: obj}, nil
	}

	parentIDs := make([]uuid.UUID, len(parents))
	byID := make(map[uuid.UUID]objectgraph.Object, len(parents))
	for i, p := range parents {
		parentIDs[i] = p.ID
		byID[p.ID] = p
	}

	visibleIDs, err := f.engine.Visible(ctx, tx, parentIDs, memberGroupIDs, hasAccessAll)
	if err != nil {
		return nil, err
	}

	visible := make([]objectgraph.Object, 0, len(visibleIDs))
	for _, id := range visibleIDs {
		visible = append(visible, byID[id])
	}
	return &View{Object: obj, Parents: visible}, nil
}
