package groundtruth

import "testing"

func TestRelationAtLeadingAndFollowing(t *testing.T) {
	gt := New()
	gt.Timestamps[10] = []Device{
		{Name: "a", Group: 1, Order: 0},
		{Name: "b", Group: 1, Order: 1},
		{Name: "c", Group: 2, Order: 0},
	}

	if rel := gt.RelationAt(10, "a", "b"); rel != Leading {
		t.Errorf("a vs b = %v, want Leading", rel)
	}
	if rel := gt.RelationAt(10, "b", "a"); rel != Following {
		t.Errorf("b vs a = %v, want Following", rel)
	}
	if rel := gt.RelationAt(10, "a", "c"); rel != None {
		t.Errorf("a vs c = %v, want None (different groups)", rel)
	}
	if rel := gt.RelationAt(11, "a", "b"); rel != None {
		t.Errorf("unlabelled timestamp should be None, got %v", rel)
	}
}

func TestRelationAtDuplicateEntriesPreferHighestGroupThenLatest(t *testing.T) {
	gt := New()
	gt.Timestamps[5] = []Device{
		{Name: "dup", Group: 1, Order: 0},
		{Name: "dup", Group: 2, Order: 0}, // higher group, should win
		{Name: "other", Group: 2, Order: 1},
	}

	if rel := gt.RelationAt(5, "dup", "other"); rel != Leading {
		t.Errorf("expected dup (resolved to group 2) leading other, got %v", rel)
	}
}

func TestCoMovingAt(t *testing.T) {
	gt := New()
	gt.Timestamps[1] = []Device{
		{Name: "a", Group: 1, Order: 0},
		{Name: "b", Group: 1, Order: 1},
	}
	if !gt.CoMovingAt(1, "a", "b") {
		t.Error("expected a, b co-moving")
	}
	if gt.CoMovingAt(1, "a", "missing") {
		t.Error("expected false for missing device")
	}
}
