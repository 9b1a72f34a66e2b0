package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/havenhome/haven-core/internal/scene"
)

// bindingRequest is one binding in a scene create/update payload.
type bindingRequest struct {
	DeviceID    string `json:"device_id"`
	TargetState string `json:"target_state"`
	TargetValue string `json:"target_value"`
	Position    int    `json:"position"`
}

// sceneRequest is the create/update payload for scenes.
type sceneRequest struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Icon        string           `json:"icon"`
	Position    int              `json:"position"`
	Bindings    []bindingRequest `json:"bindings"`
}

func (req *sceneRequest) bindings() []scene.Binding {
	out := make([]scene.Binding, 0, len(req.Bindings))
	for _, b := range req.Bindings {
		out = append(out, scene.Binding{
			DeviceID:    b.DeviceID,
			TargetState: b.TargetState,
			TargetValue: b.TargetValue,
			Position:    b.Position,
		})
	}
	return out
}

// handleListScenes returns the caller's scenes with bindings.
func (s *Server) handleListScenes(w http.ResponseWriter, r *http.Request) {
	scenes, err := s.composer.List(r.Context(), callerID(r))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, scenes)
}

// handleCreateScene composes a new scene. Binding validation is
// all-or-nothing: one bad device reference rejects the whole payload.
func (s *Server) handleCreateScene(w http.ResponseWriter, r *http.Request) {
	var req sceneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	sc := &scene.Scene{
		OwnerID:     callerID(r),
		Name:        req.Name,
		Description: req.Description,
		Icon:        req.Icon,
		Position:    req.Position,
	}
	created, err := s.composer.Create(r.Context(), sc, req.bindings())
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// handleGetScene returns one of the caller's scenes with bindings.
func (s *Server) handleGetScene(w http.ResponseWriter, r *http.Request) {
	sc, err := s.composer.Get(r.Context(), chi.URLParam(r, "id"), callerID(r))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sc)
}

// handleUpdateScene modifies a scene and replaces its whole binding set.
func (s *Server) handleUpdateScene(w http.ResponseWriter, r *http.Request) {
	var req sceneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	sc := &scene.Scene{
		ID:          chi.URLParam(r, "id"),
		OwnerID:     callerID(r),
		Name:        req.Name,
		Description: req.Description,
		Icon:        req.Icon,
		Position:    req.Position,
	}
	updated, err := s.composer.Update(r.Context(), sc, req.bindings())
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// handleDeleteScene soft-deletes one of the caller's scenes.
func (s *Server) handleDeleteScene(w http.ResponseWriter, r *http.Request) {
	if err := s.composer.Delete(r.Context(), chi.URLParam(r, "id"), callerID(r)); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleExecuteScene runs a scene. Per-binding failures are tolerated;
// the response is 200 whenever the scene itself loads, with the
// per-binding outcomes in the body.
func (s *Server) handleExecuteScene(w http.ResponseWriter, r *http.Request) {
	summary, err := s.executor.Execute(r.Context(), chi.URLParam(r, "id"), callerID(r))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// handleScheduleScene is the scene scheduling endpoint. Scheduling is
// deliberately unimplemented; an owned scene yields 501.
func (s *Server) handleScheduleScene(w http.ResponseWriter, r *http.Request) {
	err := s.executor.Schedule(r.Context(), chi.URLParam(r, "id"), callerID(r))
	s.writeDomainError(w, r, err)
}

// handleListSceneDevices returns the devices bound by a scene.
func (s *Server) handleListSceneDevices(w http.ResponseWriter, r *http.Request) {
	devices, err := s.composer.ListDevices(r.Context(), chi.URLParam(r, "id"), callerID(r))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, devices)
}

// handleListTemplates returns the preset catalog.
func (s *Server) handleListTemplates(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, scene.Templates())
}

// templateRequest is the POST /scenes/from-template payload.
type templateRequest struct {
	Preset string `json:"preset"`
}

// handleCreateSceneFromTemplate composes a scene from a preset over the
// caller's devices.
func (s *Server) handleCreateSceneFromTemplate(w http.ResponseWriter, r *http.Request) {
	var req templateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	created, err := s.composer.CreateFromTemplate(r.Context(), req.Preset, callerID(r))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}
