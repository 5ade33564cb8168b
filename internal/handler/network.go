package handler

import (
	"net/http"

	"netatlas/internal/domain"
	"netatlas/internal/service"
)

// ListVlans returns a root's VLANs.
func (h *Handler) ListVlans(w http.ResponseWriter, r *http.Request, identity domain.Identity) {
	vlans, err := h.network.ListVlans(r.Context(), identity, r.PathValue("rootID"))
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	h.writeJSON(w, vlans, http.StatusOK)
}

// CreateVlan creates a VLAN in a root.
func (h *Handler) CreateVlan(w http.ResponseWriter, r *http.Request, identity domain.Identity) {
	var input service.VlanInput
	if !h.decode(w, r, &input) {
		return
	}
	vlan, err := h.network.CreateVlan(r.Context(), identity, r.PathValue("rootID"), input)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	h.writeJSON(w, vlan, http.StatusCreated)
}

// UpdateVlan applies a partial VLAN update.
func (h *Handler) UpdateVlan(w http.ResponseWriter, r *http.Request, identity domain.Identity) {
	var update service.VlanUpdate
	if !h.decode(w, r, &update) {
		return
	}
	vlan, err := h.network.UpdateVlan(r.Context(), identity, r.PathValue("rootID"), r.PathValue("id"), update)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	h.writeJSON(w, vlan, http.StatusOK)
}

// DeleteVlan removes a VLAN unless it is still referenced.
func (h *Handler) DeleteVlan(w http.ResponseWriter, r *http.Request, identity domain.Identity) {
	if err := h.network.DeleteVlan(r.Context(), identity, r.PathValue("rootID"), r.PathValue("id")); err != nil {
		h.serviceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListWifiNetworks returns a root's Wi-Fi networks, sealed values excluded.
func (h *Handler) ListWifiNetworks(w http.ResponseWriter, r *http.Request, identity domain.Identity) {
	networks, err := h.network.ListWifiNetworks(r.Context(), identity, r.PathValue("rootID"))
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	h.writeJSON(w, networks, http.StatusOK)
}

// CreateWifiNetwork creates a Wi-Fi network, sealing the password.
func (h *Handler) CreateWifiNetwork(w http.ResponseWriter, r *http.Request, identity domain.Identity) {
	var input service.WifiInput
	if !h.decode(w, r, &input) {
		return
	}
	network, err := h.network.CreateWifiNetwork(r.Context(), identity, r.PathValue("rootID"), input)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	h.writeJSON(w, network, http.StatusCreated)
}

// UpdateWifiNetwork applies a partial update, re-sealing a supplied password.
func (h *Handler) UpdateWifiNetwork(w http.ResponseWriter, r *http.Request, identity domain.Identity) {
	var update service.WifiUpdate
	if !h.decode(w, r, &update) {
		return
	}
	network, err := h.network.UpdateWifiNetwork(r.Context(), identity, r.PathValue("rootID"), r.PathValue("id"), update)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	h.writeJSON(w, network, http.StatusOK)
}

// DeleteWifiNetwork removes a Wi-Fi network.
func (h *Handler) DeleteWifiNetwork(w http.ResponseWriter, r *http.Request, identity domain.Identity) {
	if err := h.network.DeleteWifiNetwork(r.Context(), identity, r.PathValue("rootID"), r.PathValue("id")); err != nil {
		h.serviceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RevealWifiPassword returns the plaintext Wi-Fi password.
func (h *Handler) RevealWifiPassword(w http.ResponseWriter, r *http.Request, identity domain.Identity) {
	password, err := h.network.RevealWifiPassword(r.Context(), identity, r.PathValue("rootID"), r.PathValue("id"))
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	h.writeJSON(w, map[string]string{"password": password}, http.StatusOK)
}
