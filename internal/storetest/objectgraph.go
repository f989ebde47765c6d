package storetest

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/sampleforge/vault/internal/objectgraph"
	"github.com/sampleforge/vault/internal/storage"
	"github.com/sampleforge/vault/internal/vaulterr"
)

// ObjectGraphStore is an in-memory objectgraph.Store, purpose-built to
// let permission-engine tests assert concrete scenarios (inheritance,
// cross-linking, cycles, multi-parent visibility) without standing up
// Postgres.
type ObjectGraphStore struct {
	mu          sync.Mutex
	objects     map[uuid.UUID]objectgraph.Object
	byDhash     map[string]uuid.UUID
	parents     map[uuid.UUID]map[uuid.UUID]bool // childID -> parentID -> true
	children    map[uuid.UUID]map[uuid.UUID]bool // parentID -> childID -> true
	permissions map[uuid.UUID]map[uuid.UUID]objectgraph.Permission
	comments    map[uuid.UUID]objectgraph.Comment
	tags        map[uuid.UUID]objectgraph.Tag
	metakeys    map[uuid.UUID]objectgraph.Metakey
	metadefs    map[string]objectgraph.MetakeyDefinition
	metaperms   map[string][]objectgraph.MetakeyPermission
	apiKeys     map[uuid.UUID]objectgraph.APIKey
}

// NewObjectGraphStore builds an empty ObjectGraphStore.
func NewObjectGraphStore() *ObjectGraphStore {
	return &ObjectGraphStore{
		objects:     map[uuid.UUID]objectgraph.Object{},
		byDhash:     map[string]uuid.UUID{},
		parents:     map[uuid.UUID]map[uuid.UUID]bool{},
		children:    map[uuid.UUID]map[uuid.UUID]bool{},
		permissions: map[uuid.UUID]map[uuid.UUID]objectgraph.Permission{},
		comments:    map[uuid.UUID]objectgraph.Comment{},
		tags:        map[uuid.UUID]objectgraph.Tag{},
		metakeys:    map[uuid.UUID]objectgraph.Metakey{},
		metadefs:    map[string]objectgraph.MetakeyDefinition{},
		metaperms:   map[string][]objectgraph.MetakeyPermission{},
		apiKeys:     map[uuid.UUID]objectgraph.APIKey{},
	}
}

func (s *ObjectGraphStore) CreateObject(_ context.Context, _ storage.Tx, o *objectgraph.Object) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byDhash[o.Dhash]; ok {
		return vaulterr.New(vaulterr.Conflict, "object with that digest already exists")
	}
	s.objects[o.ID] = *o
	s.byDhash[o.Dhash] = o.ID
	return nil
}

func (s *ObjectGraphStore) GetObjectByDhash(_ context.Context, _ storage.Tx, dhash string) (*objectgraph.Object, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byDhash[dhash]
	if !ok {
		return nil, nil
	}
	o := s.objects[id]
	return &o, nil
}

func (s *ObjectGraphStore) GetObjectByID(_ context.Context, _ storage.Tx, id uuid.UUID) (*objectgraph.Object, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.objects[id]
	if !ok {
		return nil, vaulterr.New(vaulterr.NotFound, "object not found")
	}
	return &o, nil
}

func (s *ObjectGraphStore) AddEdge(_ context.Context, _ storage.Tx, parentID, childID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.parents[childID] == nil {
		s.parents[childID] = map[uuid.UUID]bool{}
	}
	if s.parents[childID][parentID] {
		return false, nil
	}
	s.parents[childID][parentID] = true
	if s.children[parentID] == nil {
		s.children[parentID] = map[uuid.UUID]bool{}
	}
	s.children[parentID][childID] = true
	return true, nil
}

func (s *ObjectGraphStore) RemoveEdge(_ context.Context, _ storage.Tx, parentID, childID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.parents[childID], parentID)
	delete(s.children[parentID], childID)
	return nil
}

func (s *ObjectGraphStore) ParentsOf(_ context.Context, _ storage.Tx, childID uuid.UUID) ([]objectgraph.Object, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []objectgraph.Object
	for pid := range s.parents[childID] {
		out = append(out, s.objects[pid])
	}
	return out, nil
}

func (s *ObjectGraphStore) ChildrenOf(_ context.Context, _ storage.Tx, parentID uuid.UUID) ([]objectgraph.Object, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []objectgraph.Object
	for cid := range s.children[parentID] {
		out = append(out, s.objects[cid])
	}
	return out, nil
}

func (s *ObjectGraphStore) InsertPermissionIfAbsent(_ context.Context, _ storage.Tx, p *objectgraph.Permission) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.permissions[p.ObjectID] == nil {
		s.permissions[p.ObjectID] = map[uuid.UUID]objectgraph.Permission{}
	}
	if _, ok := s.permissions[p.ObjectID][p.GroupID]; ok {
		return false, nil
	}
	s.permissions[p.ObjectID][p.GroupID] = *p
	return true, nil
}

func (s *ObjectGraphStore) HasPermission(_ context.Context, _ storage.Tx, objectID, groupID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.permissions[objectID][groupID]
	return ok, nil
}

func (s *ObjectGraphStore) GroupIDsWithAccess(_ context.Context, _ storage.Tx, objectID uuid.UUID) ([]uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []uuid.UUID
	for gid := range s.permissions[objectID] {
		out = append(out, gid)
	}
	return out, nil
}

func (s *ObjectGraphStore) VisibleObjectIDs(_ context.Context, _ storage.Tx, candidateIDs, memberGroupIDs []uuid.UUID) ([]uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	memberSet := map[uuid.UUID]bool{}
	for _, g := range memberGroupIDs {
		memberSet[g] = true
	}
	var out []uuid.UUID
	for _, oid := range candidateIDs {
		for gid := range s.permissions[oid] {
			if memberSet[gid] {
				out = append(out, oid)
				break
			}
		}
	}
	return out, nil
}

func (s *ObjectGraphStore) CreateComment(_ context.Context, _ storage.Tx, c *objectgraph.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.comments[c.ID] = *c
	return nil
}

func (s *ObjectGraphStore) DeleteComment(_ context.Context, _ storage.Tx, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.comments[id]; !ok {
		return vaulterr.New(vaulterr.NotFound, "comment not found")
	}
	delete(s.comments, id)
	return nil
}

func (s *ObjectGraphStore) ListComments(_ context.Context, _ storage.Tx, objectID uuid.UUID) ([]objectgraph.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []objectgraph.Comment
	for _, c := range s.comments {
		if c.ObjectID == objectID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *ObjectGraphStore) CreateTag(_ context.Context, _ storage.Tx, t *objectgraph.Tag) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tags[t.ID] = *t
	return nil
}

func (s *ObjectGraphStore) DeleteTag(_ context.Context, _ storage.Tx, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tags, id)
	return nil
}

func (s *ObjectGraphStore) ListTags(_ context.Context, _ storage.Tx, objectID uuid.UUID) ([]objectgraph.Tag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []objectgraph.Tag
	for _, t := range s.tags {
		if t.ObjectID == objectID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *ObjectGraphStore) GetMetakeyDefinition(_ context.Context, _ storage.Tx, key string) (*objectgraph.MetakeyDefinition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	def, ok := s.metadefs[key]
	if !ok {
		return nil, vaulterr.New(vaulterr.NotFound, "metakey definition not found")
	}
	return &def, nil
}

func (s *ObjectGraphStore) ListMetakeyPermissions(_ context.Context, _ storage.Tx, key string) ([]objectgraph.MetakeyPermission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.metaperms[key], nil
}

func (s *ObjectGraphStore) SetMetakey(_ context.Context, _ storage.Tx, m *objectgraph.Metakey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metakeys[m.ID] = *m
	return nil
}

func (s *ObjectGraphStore) DeleteMetakey(_ context.Context, _ storage.Tx, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.metakeys, id)
	return nil
}

func (s *ObjectGraphStore) ListMetakeys(_ context.Context, _ storage.Tx, objectID uuid.UUID) ([]objectgraph.Metakey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []objectgraph.Metakey
	for _, m := range s.metakeys {
		if m.ObjectID == objectID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *ObjectGraphStore) CreateAPIKey(_ context.Context, _ storage.Tx, k *objectgraph.APIKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apiKeys[k.ID] = *k
	return nil
}

func (s *ObjectGraphStore) DeleteAPIKey(_ context.Context, _ storage.Tx, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.apiKeys, id)
	return nil
}

func (s *ObjectGraphStore) GetAPIKeyByID(_ context.Context, _ storage.Tx, id uuid.UUID, userID uuid.UUID) (*objectgraph.APIKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k, ok := s.apiKeys[id]
	if !ok || k.UserID != userID {
		return nil, vaulterr.New(vaulterr.NotFound, "api key not found")
	}
	return &k, nil
}

func (s *ObjectGraphStore) ListAPIKeys(_ context.Context, _ storage.Tx, userID uuid.UUID) ([]objectgraph.APIKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []objectgraph.APIKey
	for _, k := range s.apiKeys {
		if k.UserID == userID {
			out = append(out, k)
		}
	}
	return out, nil
}

func (s *ObjectGraphStore) UploadedObject(_ context.Context, _ storage.Tx, userID, objectID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, perm := range s.permissions[objectID] {
		if perm.RelatedUserID != nil && *perm.RelatedUserID == userID &&
			perm.RelatedObjectID != nil && *perm.RelatedObjectID == objectID &&
			(perm.ReasonType == objectgraph.ReasonAdded || perm.ReasonType == objectgraph.ReasonMigrated) {
			return true, nil
		}
	}
	return false, nil
}
