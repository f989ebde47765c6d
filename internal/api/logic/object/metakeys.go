package object

import (
	"context"

	"github.com/google/uuid"
	"github.com/zeromicro/go-zero/core/logx"

	"github.com/sampleforge/vault/internal/api/logic"
	"github.com/sampleforge/vault/internal/api/svc"
	"github.com/sampleforge/vault/internal/api/types"
	"github.com/sampleforge/vault/internal/capability"
	"github.com/sampleforge/vault/internal/identity"
	"github.com/sampleforge/vault/internal/objectgraph"
	"github.com/sampleforge/vault/internal/storage"
	"github.com/sampleforge/vault/internal/vaulterr"
)

// canReadKey reports whether one of memberGroupIDs holds a
// MetakeyPermission.CanRead row for key, mirroring the
// MetakeyPermission.can_read join get_metakeys runs per candidate key.
func canReadKey(perms []objectgraph.MetakeyPermission, memberGroupIDs map[uuid.UUID]bool) bool {
	for _, p := range perms {
		if p.CanRead && memberGroupIDs[p.GroupID] {
			return true
		}
	}
	return false
}

func canSetKey(perms []objectgraph.MetakeyPermission, memberGroupIDs map[uuid.UUID]bool) bool {
	for _, p := range perms {
		if p.CanSet && memberGroupIDs[p.GroupID] {
			return true
		}
	}
	return false
}

func groupIDSet(groups []identity.Group) map[uuid.UUID]bool {
	out := make(map[uuid.UUID]bool, len(groups))
	for _, g := range groups {
		out[g.ID] = true
	}
	return out
}

type SetMetakeyLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewSetMetakeyLogic(ctx context.Context, svcCtx *svc.ServiceContext) *SetMetakeyLogic {
	return &SetMetakeyLogic{Logger: logx.WithContext(ctx), ctx: ctx, svcCtx: svcCtx}
}

// SetMetakey attaches a key/value attribute to a visible object.
// adding_all_attributes bypasses the per-key MetakeyPermission.CanSet
// ACL entirely; otherwise the caller needs a CanSet row for the key
// through one of its groups.
func (l *SetMetakeyLogic) SetMetakey(req *types.MetakeyRequest) (*types.MetakeyView, error) {
	var view types.MetakeyView
	err := storage.WithTx(l.ctx, l.svcCtx.DB, func(tx storage.Tx) error {
		obj, err := resolveVisible(l.ctx, tx, l.svcCtx, req.Dhash)
		if err != nil {
			return err
		}
		_, groups, err := logic.CurrentUser(l.ctx, tx, l.svcCtx)
		if err != nil {
			return err
		}
		if _, err := l.svcCtx.Objects.GetMetakeyDefinition(l.ctx, tx, req.Key); err != nil {
			return err
		}
		if !identity.HasRights(groups, capability.AddingAllAttributes) {
			perms, err := l.svcCtx.Objects.ListMetakeyPermissions(l.ctx, tx, req.Key)
			if err != nil {
				return err
			}
			if !canSetKey(perms, groupIDSet(groups)) {
				return vaulterr.New(vaulterr.Forbidden, "not permitted to set this attribute")
			}
		}
		m := &objectgraph.Metakey{ID: uuid.New(), ObjectID: obj.ID, Key: req.Key, Value: req.Value}
		if err := l.svcCtx.Objects.SetMetakey(l.ctx, tx, m); err != nil {
			return err
		}
		view = types.MetakeyView{ID: m.ID.String(), Key: m.Key, Value: m.Value}
		return nil
	})
	return &view, err
}

type ListMetakeysLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewListMetakeysLogic(ctx context.Context, svcCtx *svc.ServiceContext) *ListMetakeysLogic {
	return &ListMetakeysLogic{Logger: logx.WithContext(ctx), ctx: ctx, svcCtx: svcCtx}
}

// ListMetakeys renders the attributes attached to a visible object.
// reading_all_attributes bypasses the per-key CanRead ACL and also
// surfaces keys whose MetakeyDefinition.Hidden is set; without it,
// both the CanRead filter and the hidden-definition filter apply,
// mirroring Object.get_metakeys's check_permissions/show_hidden pair.
func (l *ListMetakeysLogic) ListMetakeys(req *types.ObjectPathRequest) (*types.ListMetakeysResponse, error) {
	var resp types.ListMetakeysResponse
	err := storage.WithTx(l.ctx, l.svcCtx.DB, func(tx storage.Tx) error {
		obj, err := resolveVisible(l.ctx, tx, l.svcCtx, req.Dhash)
		if err != nil {
			return err
		}
		_, groups, err := logic.CurrentUser(l.ctx, tx, l.svcCtx)
		if err != nil {
			return err
		}
		bypass := identity.HasRights(groups, capability.ReadingAllAttributes)
		memberGroupIDs := groupIDSet(groups)

		metakeys, err := l.svcCtx.Objects.ListMetakeys(l.ctx, tx, obj.ID)
		if err != nil {
			return err
		}
		defCache := map[string]*objectgraph.MetakeyDefinition{}
		permCache := map[string][]objectgraph.MetakeyPermission{}
		for _, m := range metakeys {
			def, ok := defCache[m.Key]
			if !ok {
				def, err = l.svcCtx.Objects.GetMetakeyDefinition(l.ctx, tx, m.Key)
				if err != nil {
					continue
				}
				defCache[m.Key] = def
			}
			if def == nil {
				continue
			}
			if def.Hidden && !bypass {
				continue
			}
			if !bypass {
				perms, ok := permCache[m.Key]
				if !ok {
					perms, err = l.svcCtx.Objects.ListMetakeyPermissions(l.ctx, tx, m.Key)
					if err != nil {
						return err
					}
					permCache[m.Key] = perms
				}
				if !canReadKey(perms, memberGroupIDs) {
					continue
				}
			}
			resp.Metakeys = append(resp.Metakeys, types.MetakeyView{ID: m.ID.String(), Key: m.Key, Value: m.Value})
		}
		return nil
	})
	return &resp, err
}

type DeleteMetakeyLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewDeleteMetakeyLogic(ctx context.Context, svcCtx *svc.ServiceContext) *DeleteMetakeyLogic {
	return &DeleteMetakeyLogic{Logger: logx.WithContext(ctx), ctx: ctx, svcCtx: svcCtx}
}

// DeleteMetakey removes one attribute value, gated by removing_attributes
// only — there is no per-key delete ACL in the MetakeyPermission model,
// unlike read/set.
func (l *DeleteMetakeyLogic) DeleteMetakey(req *types.DeleteMetakeyRequest) error {
	return storage.WithTx(l.ctx, l.svcCtx.DB, func(tx storage.Tx) error {
		if _, err := resolveVisible(l.ctx, tx, l.svcCtx, req.Dhash); err != nil {
			return err
		}
		_, groups, err := logic.CurrentUser(l.ctx, tx, l.svcCtx)
		if err != nil {
			return err
		}
		if err := logic.RequireCapability(groups, capability.RemovingAttributes); err != nil {
			return err
		}
		id, err := uuid.Parse(req.MetakeyID)
		if err != nil {
			return vaulterr.New(vaulterr.SchemaInvalid, "invalid metakey id")
		}
		return l.svcCtx.Objects.DeleteMetakey(l.ctx, tx, id)
	})
}
