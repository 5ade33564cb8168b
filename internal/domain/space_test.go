package domain

import "testing"

func TestSpaceIsRoot(t *testing.T) {
	root := &Space{ID: "r1", RootID: "r1"}
	if !root.IsRoot() {
		t.Error("space with id == root_id should be the tree origin")
	}

	child := &Space{ID: "s1", RootID: "r1", ParentID: "r1"}
	if child.IsRoot() {
		t.Error("child space should not report as root")
	}
}

func TestValidVlanNumber(t *testing.T) {
	tests := []struct {
		number int
		valid  bool
	}{
		{0, false},
		{1, true},
		{100, true},
		{4094, true},
		{4095, false},
		{-5, false},
	}

	for _, tt := range tests {
		if got := ValidVlanNumber(tt.number); got != tt.valid {
			t.Errorf("ValidVlanNumber(%d) = %v, want %v", tt.number, got, tt.valid)
		}
	}
}

func TestIdentityHasRoot(t *testing.T) {
	id := Identity{Role: RoleUser, RootIDs: []string{"a", "b"}}

	if !id.HasRoot("a") {
		t.Error("expected assigned root to match")
	}
	if id.HasRoot("c") {
		t.Error("unassigned root must not match")
	}
	if (Identity{}).HasRoot("a") {
		t.Error("empty assignment set must not match")
	}
}
