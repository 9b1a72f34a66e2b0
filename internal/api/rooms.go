package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/havenhome/haven-core/internal/room"
)

// roomRequest is the create/update payload for rooms.
type roomRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Floor       int    `json:"floor"`
}

// handleListRooms returns the caller's rooms.
func (s *Server) handleListRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := s.rooms.List(r.Context(), callerID(r))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rooms)
}

// handleCreateRoom creates a room owned by the caller.
func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	var req roomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	rm := &room.Room{
		OwnerID:     callerID(r),
		Name:        req.Name,
		Description: req.Description,
		Floor:       req.Floor,
	}
	if err := s.rooms.Create(r.Context(), rm); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rm)
}

// handleGetRoom returns one of the caller's rooms.
func (s *Server) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	rm, err := s.rooms.GetByID(r.Context(), chi.URLParam(r, "id"), callerID(r))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rm)
}

// handleUpdateRoom modifies one of the caller's rooms.
func (s *Server) handleUpdateRoom(w http.ResponseWriter, r *http.Request) {
	var req roomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	rm := &room.Room{
		ID:          chi.URLParam(r, "id"),
		OwnerID:     callerID(r),
		Name:        req.Name,
		Description: req.Description,
		Floor:       req.Floor,
	}
	if err := s.rooms.Update(r.Context(), rm); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rm)
}

// handleDeleteRoom soft-deletes one of the caller's rooms.
func (s *Server) handleDeleteRoom(w http.ResponseWriter, r *http.Request) {
	if err := s.rooms.Delete(r.Context(), chi.URLParam(r, "id"), callerID(r)); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleListRoomDevices returns the caller's devices in a room.
func (s *Server) handleListRoomDevices(w http.ResponseWriter, r *http.Request) {
	caller := callerID(r)
	roomID := chi.URLParam(r, "id")

	// Confirm the room exists for this caller before listing.
	if _, err := s.rooms.GetByID(r.Context(), roomID, caller); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	devices, err := s.devices.ListByRoom(r.Context(), roomID, caller)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, devices)
}
