package handler

import (
	"net/http"

	"netatlas/internal/domain"
	"netatlas/internal/service"
)

// ListSecrets returns a root's secrets, optionally filtered by ?device_id=.
// Sealed values never appear in the payload.
func (h *Handler) ListSecrets(w http.ResponseWriter, r *http.Request, identity domain.Identity) {
	secrets, err := h.secrets.ListSecrets(r.Context(), identity, r.PathValue("rootID"), r.URL.Query().Get("device_id"))
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	h.writeJSON(w, secrets, http.StatusOK)
}

// CreateSecret seals and stores a secret.
func (h *Handler) CreateSecret(w http.ResponseWriter, r *http.Request, identity domain.Identity) {
	var input service.SecretInput
	if !h.decode(w, r, &input) {
		return
	}
	secret, err := h.secrets.CreateSecret(r.Context(), identity, r.PathValue("rootID"), input)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	h.writeJSON(w, secret, http.StatusCreated)
}

// RevealSecret returns the plaintext value of a secret.
func (h *Handler) RevealSecret(w http.ResponseWriter, r *http.Request, identity domain.Identity) {
	value, err := h.secrets.RevealSecret(r.Context(), identity, r.PathValue("rootID"), r.PathValue("id"))
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	h.writeJSON(w, map[string]string{"value": value}, http.StatusOK)
}

// DeleteSecret removes a secret.
func (h *Handler) DeleteSecret(w http.ResponseWriter, r *http.Request, identity domain.Identity) {
	if err := h.secrets.DeleteSecret(r.Context(), identity, r.PathValue("rootID"), r.PathValue("id")); err != nil {
		h.serviceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
