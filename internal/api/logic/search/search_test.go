package search

import "testing"

func TestVisibilityFilterEmptyWhenAccessAll(t *testing.T) {
	if f := visibilityFilter([]string{"g1", "g2"}, true); f != "" {
		t.Errorf("expected no filter for access_all_objects, got %q", f)
	}
}

func TestVisibilityFilterEmptyWhenNoGroups(t *testing.T) {
	if f := visibilityFilter(nil, false); f != "" {
		t.Errorf("expected no filter for an empty group set, got %q", f)
	}
}

func TestVisibilityFilterListsGroupIDs(t *testing.T) {
	got := visibilityFilter([]string{"g1", "g2"}, false)
	want := `group_ids IN ["g1","g2"]`
	if got != want {
		t.Errorf("visibilityFilter = %q, want %q", got, want)
	}
}
