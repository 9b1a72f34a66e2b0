package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/havenhome/haven-core/internal/device"
)

// deviceRequest is the create/update payload for devices.
type deviceRequest struct {
	Name   string `json:"name"`
	Type   string `json:"type"`
	RoomID string `json:"room_id"`
}

// handleListDevices returns the caller's devices.
func (s *Server) handleListDevices(w http.ResponseWriter, r *http.Request) {
	devices, err := s.devices.List(r.Context(), callerID(r))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, devices)
}

// handleCreateDevice registers a device owned by the caller.
func (s *Server) handleCreateDevice(w http.ResponseWriter, r *http.Request) {
	var req deviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	d := &device.Device{
		OwnerID: callerID(r),
		Name:    req.Name,
		Type:    device.Type(req.Type),
		RoomID:  req.RoomID,
	}
	if err := s.devices.Create(r.Context(), d); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

// handleGetDevice returns one of the caller's devices.
func (s *Server) handleGetDevice(w http.ResponseWriter, r *http.Request) {
	d, err := s.devices.Get(r.Context(), chi.URLParam(r, "id"), callerID(r))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// handleUpdateDevice modifies one of the caller's devices.
func (s *Server) handleUpdateDevice(w http.ResponseWriter, r *http.Request) {
	var req deviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	d := &device.Device{
		ID:      chi.URLParam(r, "id"),
		OwnerID: callerID(r),
		Name:    req.Name,
		Type:    device.Type(req.Type),
		RoomID:  req.RoomID,
	}
	if err := s.devices.Update(r.Context(), d); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// handleDeleteDevice soft-deletes one of the caller's devices.
func (s *Server) handleDeleteDevice(w http.ResponseWriter, r *http.Request) {
	if err := s.devices.Delete(r.Context(), chi.URLParam(r, "id"), callerID(r)); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleGetDeviceStatus returns a device's status and online flag.
func (s *Server) handleGetDeviceStatus(w http.ResponseWriter, r *http.Request) {
	info, err := s.devices.GetStatus(r.Context(), chi.URLParam(r, "id"), callerID(r))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// handleUpdateDeviceStatus writes a device's status directly.
func (s *Server) handleUpdateDeviceStatus(w http.ResponseWriter, r *http.Request) {
	var req device.StatusInfo
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	info, err := s.devices.UpdateStatus(r.Context(), chi.URLParam(r, "id"), callerID(r), req)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// handleToggleDevice flips a device between ON and OFF.
func (s *Server) handleToggleDevice(w http.ResponseWriter, r *http.Request) {
	info, err := s.devices.Toggle(r.Context(), chi.URLParam(r, "id"), callerID(r))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// handleListDeviceLogs returns a device's audit trail, newest first.
// Optional ?limit=N caps the page size.
func (s *Server) handleListDeviceLogs(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeBadRequest(w, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	logs, err := s.devices.Logs(r.Context(), chi.URLParam(r, "id"), callerID(r), limit)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, logs)
}
