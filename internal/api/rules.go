package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/havenhome/haven-core/internal/rule"
)

// ruleRequest is the create/update payload for automation rules.
type ruleRequest struct {
	Name      string `json:"name"`
	DeviceID  string `json:"device_id"`
	Condition string `json:"condition"`
	Action    string `json:"action"`
}

// handleListRules returns the caller's automation rules.
func (s *Server) handleListRules(w http.ResponseWriter, r *http.Request) {
	rules, err := s.rules.List(r.Context(), callerID(r))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rules)
}

// handleCreateRule stores a new automation rule. Conditions are opaque;
// nothing evaluates them.
func (s *Server) handleCreateRule(w http.ResponseWriter, r *http.Request) {
	var req ruleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	ru := &rule.Rule{
		OwnerID:   callerID(r),
		Name:      req.Name,
		DeviceID:  req.DeviceID,
		Condition: req.Condition,
		Action:    req.Action,
	}
	if err := s.rules.Create(r.Context(), ru); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, ru)
}

// handleGetRule returns one of the caller's rules.
func (s *Server) handleGetRule(w http.ResponseWriter, r *http.Request) {
	ru, err := s.rules.GetByID(r.Context(), chi.URLParam(r, "id"), callerID(r))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ru)
}

// handleUpdateRule modifies one of the caller's rules.
func (s *Server) handleUpdateRule(w http.ResponseWriter, r *http.Request) {
	var req ruleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	ru := &rule.Rule{
		ID:        chi.URLParam(r, "id"),
		OwnerID:   callerID(r),
		Name:      req.Name,
		DeviceID:  req.DeviceID,
		Condition: req.Condition,
		Action:    req.Action,
	}
	if err := s.rules.Update(r.Context(), ru); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ru)
}

// enableRuleRequest is the POST /rules/{id}/enable payload.
type enableRuleRequest struct {
	Enabled bool `json:"enabled"`
}

// handleEnableRule flips a rule's enabled flag.
func (s *Server) handleEnableRule(w http.ResponseWriter, r *http.Request) {
	var req enableRuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	if err := s.rules.SetEnabled(r.Context(), chi.URLParam(r, "id"), callerID(r), req.Enabled); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"enabled": req.Enabled})
}

// handleDeleteRule soft-deletes one of the caller's rules.
func (s *Server) handleDeleteRule(w http.ResponseWriter, r *http.Request) {
	if err := s.rules.Delete(r.Context(), chi.URLParam(r, "id"), callerID(r)); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
