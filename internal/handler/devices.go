package handler

import (
	"net/http"

	"go.uber.org/zap"

	"netatlas/internal/codec"
	"netatlas/internal/domain"
	"netatlas/internal/service"
)

// ListDevices returns a root's devices, optionally filtered by ?space_id=.
func (h *Handler) ListDevices(w http.ResponseWriter, r *http.Request, identity domain.Identity) {
	devices, err := h.devices.ListDevices(r.Context(), identity, r.PathValue("rootID"), r.URL.Query().Get("space_id"))
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	h.writeJSON(w, devices, http.StatusOK)
}

// CreateDevice creates a device in a root.
func (h *Handler) CreateDevice(w http.ResponseWriter, r *http.Request, identity domain.Identity) {
	var input service.DeviceInput
	if !h.decode(w, r, &input) {
		return
	}
	device, err := h.devices.CreateDevice(r.Context(), identity, r.PathValue("rootID"), input)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	h.writeJSON(w, device, http.StatusCreated)
}

// deviceDetail is the device read payload with its interfaces inlined.
type deviceDetail struct {
	*domain.Device
	Interfaces []domain.Interface `json:"interfaces"`
}

// GetDevice returns a device with its interfaces.
func (h *Handler) GetDevice(w http.ResponseWriter, r *http.Request, identity domain.Identity) {
	device, interfaces, err := h.devices.GetDevice(r.Context(), identity, r.PathValue("rootID"), r.PathValue("id"))
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	h.writeJSON(w, deviceDetail{Device: device, Interfaces: interfaces}, http.StatusOK)
}

// UpdateDevice applies a partial device update.
func (h *Handler) UpdateDevice(w http.ResponseWriter, r *http.Request, identity domain.Identity) {
	var update service.DeviceUpdate
	if !h.decode(w, r, &update) {
		return
	}
	device, err := h.devices.UpdateDevice(r.Context(), identity, r.PathValue("rootID"), r.PathValue("id"), update)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	h.writeJSON(w, device, http.StatusOK)
}

// DeleteDevice removes a device with its interfaces, connections, and
// linked secrets.
func (h *Handler) DeleteDevice(w http.ResponseWriter, r *http.Request, identity domain.Identity) {
	if err := h.devices.DeleteDevice(r.Context(), identity, r.PathValue("rootID"), r.PathValue("id")); err != nil {
		h.serviceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListInterfaces returns a device's interfaces.
func (h *Handler) ListInterfaces(w http.ResponseWriter, r *http.Request, identity domain.Identity) {
	interfaces, err := h.devices.ListInterfaces(r.Context(), identity, r.PathValue("rootID"), r.PathValue("deviceID"))
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	h.writeJSON(w, interfaces, http.StatusOK)
}

// CreateInterface adds an interface to a device.
func (h *Handler) CreateInterface(w http.ResponseWriter, r *http.Request, identity domain.Identity) {
	var input service.InterfaceInput
	if !h.decode(w, r, &input) {
		return
	}
	input.DeviceID = r.PathValue("deviceID")
	iface, err := h.devices.CreateInterface(r.Context(), identity, r.PathValue("rootID"), input)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	h.writeJSON(w, iface, http.StatusCreated)
}

// UpdateInterface applies a partial interface update.
func (h *Handler) UpdateInterface(w http.ResponseWriter, r *http.Request, identity domain.Identity) {
	var update service.InterfaceUpdate
	if !h.decode(w, r, &update) {
		return
	}
	iface, err := h.devices.UpdateInterface(r.Context(), identity, r.PathValue("rootID"), r.PathValue("id"), update)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	h.writeJSON(w, iface, http.StatusOK)
}

// DeleteInterface removes an interface and its connections.
func (h *Handler) DeleteInterface(w http.ResponseWriter, r *http.Request, identity domain.Identity) {
	if err := h.devices.DeleteInterface(r.Context(), identity, r.PathValue("rootID"), r.PathValue("id")); err != nil {
		h.serviceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListConnections returns a root's connections, optionally filtered by
// ?device_id=.
func (h *Handler) ListConnections(w http.ResponseWriter, r *http.Request, identity domain.Identity) {
	connections, err := h.devices.ListConnections(r.Context(), identity, r.PathValue("rootID"), r.URL.Query().Get("device_id"))
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	h.writeJSON(w, connections, http.StatusOK)
}

// CreateConnection links two interfaces after the legality check.
func (h *Handler) CreateConnection(w http.ResponseWriter, r *http.Request, identity domain.Identity) {
	var input service.ConnectionInput
	if !h.decode(w, r, &input) {
		return
	}
	conn, err := h.devices.CreateConnection(r.Context(), identity, r.PathValue("rootID"), input)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	h.writeJSON(w, conn, http.StatusCreated)
}

// UpdateConnection applies a partial connection update.
func (h *Handler) UpdateConnection(w http.ResponseWriter, r *http.Request, identity domain.Identity) {
	var update service.ConnectionUpdate
	if !h.decode(w, r, &update) {
		return
	}
	conn, err := h.devices.UpdateConnection(r.Context(), identity, r.PathValue("rootID"), r.PathValue("id"), update)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	h.writeJSON(w, conn, http.StatusOK)
}

// DeleteConnection removes a connection.
func (h *Handler) DeleteConnection(w http.ResponseWriter, r *http.Request, identity domain.Identity) {
	if err := h.devices.DeleteConnection(r.Context(), identity, r.PathValue("rootID"), r.PathValue("id")); err != nil {
		h.serviceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetGraph returns the full scoped graph snapshot of a root.
func (h *Handler) GetGraph(w http.ResponseWriter, r *http.Request, identity domain.Identity) {
	graph, err := h.devices.Graph(r.Context(), identity, r.PathValue("rootID"))
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	h.writeJSON(w, graph, http.StatusOK)
}

// ExportGraph streams the graph snapshot in the requested format
// (?format=json|yaml, default json).
func (h *Handler) ExportGraph(w http.ResponseWriter, r *http.Request, identity domain.Identity) {
	exporter, err := codec.ForFormat(r.URL.Query().Get("format"))
	if err != nil {
		h.writeError(w, "Unsupported format", err.Error(), http.StatusUnprocessableEntity)
		return
	}

	graph, err := h.devices.Graph(r.Context(), identity, r.PathValue("rootID"))
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	switch exporter.Format() {
	case "yaml":
		w.Header().Set("Content-Type", "application/yaml")
	default:
		w.Header().Set("Content-Type", "application/json")
	}
	if err := exporter.Export(graph, w); err != nil {
		h.logger.Error("failed to export graph", zap.Error(err))
	}
}
