package handler

import (
	"net/http"

	"netatlas/internal/domain"
	"netatlas/internal/service"
)

// ListRoots returns the roots visible to the caller.
func (h *Handler) ListRoots(w http.ResponseWriter, r *http.Request, identity domain.Identity) {
	roots, err := h.tree.ListRoots(r.Context(), identity)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	h.writeJSON(w, roots, http.StatusOK)
}

// CreateRoot creates a new root.
func (h *Handler) CreateRoot(w http.ResponseWriter, r *http.Request, identity domain.Identity) {
	var input service.RootInput
	if !h.decode(w, r, &input) {
		return
	}
	root, err := h.tree.CreateRoot(r.Context(), identity, input)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	h.writeJSON(w, root, http.StatusCreated)
}

// UpdateRoot renames a root or changes its notes.
func (h *Handler) UpdateRoot(w http.ResponseWriter, r *http.Request, identity domain.Identity) {
	var update service.SpaceUpdate
	if !h.decode(w, r, &update) {
		return
	}
	root, err := h.tree.UpdateRoot(r.Context(), identity, r.PathValue("rootID"), update)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	h.writeJSON(w, root, http.StatusOK)
}

// DeleteRoot removes a root and everything scoped to it.
func (h *Handler) DeleteRoot(w http.ResponseWriter, r *http.Request, identity domain.Identity) {
	if err := h.tree.DeleteRoot(r.Context(), identity, r.PathValue("rootID")); err != nil {
		h.serviceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetTree returns the space tree of a root with device counts.
func (h *Handler) GetTree(w http.ResponseWriter, r *http.Request, identity domain.Identity) {
	tree, err := h.tree.Tree(r.Context(), identity, r.PathValue("rootID"))
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	h.writeJSON(w, tree, http.StatusOK)
}

// CreateSpace adds a space to a root's tree.
func (h *Handler) CreateSpace(w http.ResponseWriter, r *http.Request, identity domain.Identity) {
	var input service.SpaceInput
	if !h.decode(w, r, &input) {
		return
	}
	space, err := h.tree.CreateSpace(r.Context(), identity, r.PathValue("rootID"), input)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	h.writeJSON(w, space, http.StatusCreated)
}

// UpdateSpace renames, annotates, or moves a space.
func (h *Handler) UpdateSpace(w http.ResponseWriter, r *http.Request, identity domain.Identity) {
	var update service.SpaceUpdate
	if !h.decode(w, r, &update) {
		return
	}
	space, err := h.tree.UpdateSpace(r.Context(), identity, r.PathValue("rootID"), r.PathValue("id"), update)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	h.writeJSON(w, space, http.StatusOK)
}

// DeleteSpace removes a space subtree with its dependents.
func (h *Handler) DeleteSpace(w http.ResponseWriter, r *http.Request, identity domain.Identity) {
	if err := h.tree.DeleteSpace(r.Context(), identity, r.PathValue("rootID"), r.PathValue("id")); err != nil {
		h.serviceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
