package domain

import "time"

// Space is a node in a Root's location tree. The root node of each tree is a
// Space whose ID equals its RootID and whose ParentID is empty; every other
// Space has a parent belonging to the same root.
type Space struct {
	ID        string    `json:"id"`
	RootID    string    `json:"root_id"`
	ParentID  string    `json:"parent_id,omitempty"`
	Name      string    `json:"name"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// IsRoot reports whether the space is the origin node of its tree.
func (s *Space) IsRoot() bool {
	return s.ID == s.RootID
}

// TreeNode is a Space with its direct device count and children, as returned
// by tree reads. Device counts cover devices anchored directly at the node,
// not descendants, and are computed at read time.
type TreeNode struct {
	ID          string      `json:"id"`
	RootID      string      `json:"root_id"`
	ParentID    string      `json:"parent_id,omitempty"`
	Name        string      `json:"name"`
	Notes       string      `json:"notes,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	DeviceCount int         `json:"device_count"`
	Children    []*TreeNode `json:"children"`
}
