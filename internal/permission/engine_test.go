package permission_test

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/sampleforge/vault/internal/objectgraph"
	"github.com/sampleforge/vault/internal/permission"
	"github.com/sampleforge/vault/internal/storetest"
)

func mustObject(t *testing.T, ctx context.Context, store *storetest.ObjectGraphStore, dhash string) objectgraph.Object {
	t.Helper()
	o := objectgraph.Object{ID: uuid.New(), Type: objectgraph.TypeObject, Dhash: dhash}
	if err := store.CreateObject(ctx, nil, &o); err != nil {
		t.Fatalf("create object %s: %v", dhash, err)
	}
	return o
}

func link(t *testing.T, ctx context.Context, store *storetest.ObjectGraphStore, parent, child objectgraph.Object) {
	t.Helper()
	if _, err := store.AddEdge(ctx, nil, parent.ID, child.ID); err != nil {
		t.Fatalf("link %s->%s: %v", parent.Dhash, child.Dhash, err)
	}
}

// TestInheritance covers A->{B->{D}, C}: Alice uploads A, Bob uploads
// B. After both uploads Alice sees A,B,C,D and Bob sees B,D.
func TestInheritance(t *testing.T) {
	ctx := context.Background()
	store := storetest.NewObjectGraphStore()
	engine := permission.NewEngine(store)

	a := mustObject(t, ctx, store, "A")
	b := mustObject(t, ctx, store, "B")
	c := mustObject(t, ctx, store, "C")
	d := mustObject(t, ctx, store, "D")
	link(t, ctx, store, a, b)
	link(t, ctx, store, a, c)
	link(t, ctx, store, b, d)

	alice, bob := uuid.New(), uuid.New()

	if err := engine.Propagate(ctx, nil, a.ID, alice, objectgraph.ReasonAdded, nil, nil); err != nil {
		t.Fatalf("alice propagate: %v", err)
	}
	if err := engine.Propagate(ctx, nil, b.ID, bob, objectgraph.ReasonAdded, nil, nil); err != nil {
		t.Fatalf("bob propagate: %v", err)
	}

	assertVisible(t, ctx, engine, alice, map[string]bool{"A": true, "B": true, "C": true, "D": true}, []objectgraph.Object{a, b, c, d})
	assertVisible(t, ctx, engine, bob, map[string]bool{"A": false, "B": true, "C": false, "D": true}, []objectgraph.Object{a, b, c, d})
}

// TestCycleTerminates is scenario 3: A->{AA->AAA, AB->ABA}; ABA gains
// child A. Propagation must terminate and grant the whole component.
func TestCycleTerminates(t *testing.T) {
	ctx := context.Background()
	store := storetest.NewObjectGraphStore()
	engine := permission.NewEngine(store)

	a := mustObject(t, ctx, store, "A")
	aa := mustObject(t, ctx, store, "AA")
	aaa := mustObject(t, ctx, store, "AAA")
	ab := mustObject(t, ctx, store, "AB")
	aba := mustObject(t, ctx, store, "ABA")
	link(t, ctx, store, a, aa)
	link(t, ctx, store, aa, aaa)
	link(t, ctx, store, a, ab)
	link(t, ctx, store, ab, aba)
	link(t, ctx, store, aba, a) // closes the cycle

	bob := uuid.New()
	done := make(chan error, 1)
	go func() {
		done <- engine.Propagate(ctx, nil, aba.ID, bob, objectgraph.ReasonAdded, nil, nil)
	}()
	if err := <-done; err != nil {
		t.Fatalf("propagate on cyclic graph: %v", err)
	}

	assertVisible(t, ctx, engine, bob, map[string]bool{"A": true, "AA": true, "AAA": true, "AB": true, "ABA": true}, []objectgraph.Object{a, aa, aaa, ab, aba})
}

// TestGrantIsIdempotent covers the invariant that at most one ACL row
// exists per (object, group), and that only the first Grant call
// reports true.
func TestGrantIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := storetest.NewObjectGraphStore()
	engine := permission.NewEngine(store)

	obj := mustObject(t, ctx, store, "A")
	group := uuid.New()

	first, err := engine.Grant(ctx, nil, &objectgraph.Permission{ObjectID: obj.ID, GroupID: group, ReasonType: objectgraph.ReasonAdded})
	if err != nil || !first {
		t.Fatalf("first grant: inserted=%v err=%v", first, err)
	}
	second, err := engine.Grant(ctx, nil, &objectgraph.Permission{ObjectID: obj.ID, GroupID: group, ReasonType: objectgraph.ReasonShared})
	if err != nil {
		t.Fatalf("second grant: %v", err)
	}
	if second {
		t.Fatal("second grant on the same (object, group) pair should report false")
	}
}

// TestQueriedAutoGrant is scenario 5: a privileged querier who
// identifies an object by digest but lacks explicit access gains (and
// records) QUERIED access via a qualifying group.
func TestQueriedAutoGrant(t *testing.T) {
	ctx := context.Background()
	store := storetest.NewObjectGraphStore()
	engine := permission.NewEngine(store)

	obj := mustObject(t, ctx, store, "A")
	group := uuid.New()

	ok, err := engine.ExplicitAccess(ctx, nil, obj.ID, []uuid.UUID{group}, false)
	if err != nil {
		t.Fatalf("explicit access: %v", err)
	}
	if ok {
		t.Fatal("expected no explicit access before auto-grant")
	}

	querier := uuid.New()
	if err := engine.Propagate(ctx, nil, obj.ID, group, objectgraph.ReasonQueried, &obj.ID, &querier); err != nil {
		t.Fatalf("propagate queried: %v", err)
	}

	ok, err = engine.ExplicitAccess(ctx, nil, obj.ID, []uuid.UUID{group}, false)
	if err != nil {
		t.Fatalf("explicit access after auto-grant: %v", err)
	}
	if !ok {
		t.Fatal("expected explicit access after queried auto-grant")
	}
}

func assertVisible(t *testing.T, ctx context.Context, engine *permission.Engine, userGroup uuid.UUID, want map[string]bool, objs []objectgraph.Object) {
	t.Helper()
	ids := make([]uuid.UUID, len(objs))
	byID := map[uuid.UUID]string{}
	for i, o := range objs {
		ids[i] = o.ID
		byID[o.ID] = o.Dhash
	}
	visibleIDs, err := engine.Visible(ctx, nil, ids, []uuid.UUID{userGroup}, false)
	if err != nil {
		t.Fatalf("visible: %v", err)
	}
	got := map[string]bool{}
	for _, id := range visibleIDs {
		got[byID[id]] = true
	}
	for dhash, expected := range want {
		if got[dhash] != expected {
			t.Errorf("dhash %s: visible=%v want=%v", dhash, got[dhash], expected)
		}
	}
}
