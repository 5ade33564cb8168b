package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"netatlas/internal/access"
	"netatlas/internal/domain"
	"netatlas/internal/repository"
)

// TreeService manages roots and their space trees.
type TreeService struct {
	repo     repository.Repository
	eventBus *EventBus
}

// NewTreeService creates a new tree service
func NewTreeService(repo repository.Repository, eventBus *EventBus) *TreeService {
	return &TreeService{
		repo:     repo,
		eventBus: eventBus,
	}
}

// RootInput holds the caller-supplied fields of a root.
type RootInput struct {
	Name  string `json:"name"`
	Notes string `json:"notes,omitempty"`
}

// SpaceInput holds the caller-supplied fields of a new space. An empty
// ParentID anchors the space directly under the root node.
type SpaceInput struct {
	ParentID string `json:"parent_id,omitempty"`
	Name     string `json:"name"`
	Notes    string `json:"notes,omitempty"`
}

// SpaceUpdate is a partial update; nil fields are left unchanged. ParentID
// moves the space, subject to same-root and acyclicity checks.
type SpaceUpdate struct {
	Name     *string `json:"name,omitempty"`
	Notes    *string `json:"notes,omitempty"`
	ParentID *string `json:"parent_id,omitempty"`
}

// CreateRoot creates a new root: a space tree origin whose id doubles as the
// root id of everything scoped beneath it.
func (s *TreeService) CreateRoot(ctx context.Context, identity domain.Identity, input RootInput) (*domain.Space, error) {
	id := newID()
	if err := access.Require(identity, id, access.ActionWrite); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, fmt.Errorf("%w: root name is required", domain.ErrValidation)
	}

	root := &domain.Space{
		ID:        id,
		RootID:    id,
		Name:      input.Name,
		Notes:     input.Notes,
		CreatedAt: now(),
	}
	if err := s.repo.CreateRoot(ctx, root); err != nil {
		return nil, err
	}

	s.eventBus.Publish(Event{
		Type:    EventRootCreated,
		Payload: map[string]string{"root_id": root.ID},
	})
	return root, nil
}

// UpdateRoot renames a root or changes its notes.
func (s *TreeService) UpdateRoot(ctx context.Context, identity domain.Identity, rootID string, update SpaceUpdate) (*domain.Space, error) {
	if err := access.Require(identity, rootID, access.ActionWrite); err != nil {
		return nil, err
	}
	root, err := resolveRoot(ctx, s.repo, rootID)
	if err != nil {
		return nil, err
	}
	if update.ParentID != nil {
		return nil, fmt.Errorf("%w: root may not have a parent", domain.ErrInvalidHierarchy)
	}
	applySpaceUpdate(root, update)
	if strings.TrimSpace(root.Name) == "" {
		return nil, fmt.Errorf("%w: root name is required", domain.ErrValidation)
	}
	if err := s.repo.UpdateSpace(ctx, root); err != nil {
		return nil, err
	}

	s.eventBus.Publish(Event{
		Type:    EventRootUpdated,
		Payload: map[string]string{"root_id": rootID},
	})
	return root, nil
}

// ListRoots returns the roots visible to the identity: all of them for
// ADMIN, the assigned ones for USER.
func (s *TreeService) ListRoots(ctx context.Context, identity domain.Identity) ([]domain.Space, error) {
	if !identity.Active || !identity.Role.Valid() {
		return nil, domain.ErrForbidden
	}

	roots, err := s.repo.ListRoots(ctx)
	if err != nil {
		return nil, err
	}
	if identity.Role == domain.RoleAdmin {
		return roots, nil
	}

	visible := []domain.Space{}
	for _, root := range roots {
		if identity.HasRoot(root.ID) {
			visible = append(visible, root)
		}
	}
	return visible, nil
}

// DeleteRoot removes a root and everything scoped to it in one transaction.
func (s *TreeService) DeleteRoot(ctx context.Context, identity domain.Identity, rootID string) error {
	if err := access.Require(identity, rootID, access.ActionWrite); err != nil {
		return err
	}
	if _, err := resolveRoot(ctx, s.repo, rootID); err != nil {
		return err
	}
	if err := s.repo.DeleteRootCascade(ctx, rootID); err != nil {
		return err
	}

	s.eventBus.Publish(Event{
		Type:    EventRootDeleted,
		Payload: map[string]string{"root_id": rootID},
	})
	return nil
}

// CreateSpace adds a space under a parent in the root's tree. With no parent
// given the space is anchored directly under the root node.
func (s *TreeService) CreateSpace(ctx context.Context, identity domain.Identity, rootID string, input SpaceInput) (*domain.Space, error) {
	if err := access.Require(identity, rootID, access.ActionWrite); err != nil {
		return nil, err
	}
	if _, err := resolveRoot(ctx, s.repo, rootID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, fmt.Errorf("%w: space name is required", domain.ErrValidation)
	}

	parentID := input.ParentID
	if parentID == "" {
		parentID = rootID
	}
	if _, err := resolveSpace(ctx, s.repo, rootID, parentID); err != nil {
		return nil, err
	}

	space := &domain.Space{
		ID:        newID(),
		RootID:    rootID,
		ParentID:  parentID,
		Name:      input.Name,
		Notes:     input.Notes,
		CreatedAt: now(),
	}
	if err := s.repo.CreateSpace(ctx, space); err != nil {
		return nil, err
	}

	s.eventBus.Publish(Event{
		Type:    EventSpaceCreated,
		Payload: map[string]string{"root_id": rootID, "space_id": space.ID},
	})
	return space, nil
}

// UpdateSpace renames a space, changes its notes, or moves it under a new
// parent. Moves are re-validated: the new parent must live in the same root
// and must not be the space itself or one of its descendants.
func (s *TreeService) UpdateSpace(ctx context.Context, identity domain.Identity, rootID, spaceID string, update SpaceUpdate) (*domain.Space, error) {
	if err := access.Require(identity, rootID, access.ActionWrite); err != nil {
		return nil, err
	}
	space, err := resolveSpace(ctx, s.repo, rootID, spaceID)
	if err != nil {
		return nil, err
	}

	if update.ParentID != nil {
		if space.IsRoot() {
			return nil, fmt.Errorf("%w: root may not have a parent", domain.ErrInvalidHierarchy)
		}
		newParent := *update.ParentID
		if newParent == "" {
			return nil, fmt.Errorf("%w: non-root space requires a parent", domain.ErrInvalidHierarchy)
		}
		if newParent != space.ParentID {
			if err := s.checkMove(ctx, rootID, spaceID, newParent); err != nil {
				return nil, err
			}
		}
	}

	applySpaceUpdate(space, update)
	if strings.TrimSpace(space.Name) == "" {
		return nil, fmt.Errorf("%w: space name is required", domain.ErrValidation)
	}
	if err := s.repo.UpdateSpace(ctx, space); err != nil {
		return nil, err
	}

	s.eventBus.Publish(Event{
		Type:    EventSpaceUpdated,
		Payload: map[string]string{"root_id": rootID, "space_id": spaceID},
	})
	return space, nil
}

// checkMove validates re-parenting spaceID under newParent: same root, no
// self-parenting, and no cycle (the new parent must not be a descendant).
func (s *TreeService) checkMove(ctx context.Context, rootID, spaceID, newParent string) error {
	if newParent == spaceID {
		return fmt.Errorf("%w: space cannot be its own parent", domain.ErrInvalidHierarchy)
	}
	parent, err := resolveSpace(ctx, s.repo, rootID, newParent)
	if err != nil {
		return err
	}

	// Walk the ancestor chain of the new parent. Hitting the moved space
	// means the parent is inside its subtree.
	current := parent
	for depth := 0; current.ParentID != ""; depth++ {
		if depth >= maxAncestorDepth {
			return fmt.Errorf("%w: ancestor chain exceeds depth ceiling", domain.ErrInvalidHierarchy)
		}
		if current.ParentID == spaceID {
			return fmt.Errorf("%w: cannot move space under its own descendant", domain.ErrInvalidHierarchy)
		}
		next, err := s.repo.GetSpace(ctx, current.ParentID)
		if err != nil {
			return err
		}
		if next == nil {
			return fmt.Errorf("%w: broken parent chain at %s", domain.ErrInvalidHierarchy, current.ParentID)
		}
		current = next
	}
	return nil
}

// DeleteSpace removes a space and its whole subtree with every dependent
// entity, in one transaction. The root node itself is not deletable here.
func (s *TreeService) DeleteSpace(ctx context.Context, identity domain.Identity, rootID, spaceID string) error {
	if err := access.Require(identity, rootID, access.ActionWrite); err != nil {
		return err
	}
	space, err := resolveSpace(ctx, s.repo, rootID, spaceID)
	if err != nil {
		return err
	}
	if space.IsRoot() {
		return fmt.Errorf("%w: the root node is deleted through root deletion", domain.ErrValidation)
	}
	if err := s.repo.DeleteSpaceCascade(ctx, spaceID); err != nil {
		return err
	}

	s.eventBus.Publish(Event{
		Type:    EventSpaceDeleted,
		Payload: map[string]string{"root_id": rootID, "space_id": spaceID},
	})
	return nil
}

// Tree returns the full space tree of a root with per-node direct device
// counts. Children are sorted case-insensitively by name.
func (s *TreeService) Tree(ctx context.Context, identity domain.Identity, rootID string) (*domain.TreeNode, error) {
	if err := access.Require(identity, rootID, access.ActionRead); err != nil {
		return nil, err
	}
	if _, err := resolveRoot(ctx, s.repo, rootID); err != nil {
		return nil, err
	}

	spaces, err := s.repo.ListSpaces(ctx, rootID)
	if err != nil {
		return nil, err
	}
	counts, err := s.repo.DeviceCountsBySpace(ctx, rootID)
	if err != nil {
		return nil, err
	}

	nodes := make(map[string]*domain.TreeNode, len(spaces))
	for _, space := range spaces {
		nodes[space.ID] = &domain.TreeNode{
			ID:          space.ID,
			RootID:      space.RootID,
			ParentID:    space.ParentID,
			Name:        space.Name,
			Notes:       space.Notes,
			CreatedAt:   space.CreatedAt,
			DeviceCount: counts[space.ID],
			Children:    []*domain.TreeNode{},
		}
	}

	var root *domain.TreeNode
	for _, node := range nodes {
		if node.ParentID == "" {
			root = node
			continue
		}
		parent, ok := nodes[node.ParentID]
		if !ok {
			return nil, fmt.Errorf("%w: broken parent chain at %s", domain.ErrInvalidHierarchy, node.ID)
		}
		parent.Children = append(parent.Children, node)
	}
	if root == nil {
		return nil, fmt.Errorf("%w: root %s", domain.ErrNotFound, rootID)
	}

	for _, node := range nodes {
		children := node.Children
		sort.Slice(children, func(i, j int) bool {
			a, b := strings.ToLower(children[i].Name), strings.ToLower(children[j].Name)
			if a == b {
				return children[i].Name < children[j].Name
			}
			return a < b
		})
	}
	return root, nil
}

func applySpaceUpdate(space *domain.Space, update SpaceUpdate) {
	if update.Name != nil {
		space.Name = *update.Name
	}
	if update.Notes != nil {
		space.Notes = *update.Notes
	}
	if update.ParentID != nil && !space.IsRoot() {
		space.ParentID = *update.ParentID
	}
}
