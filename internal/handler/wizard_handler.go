// internal/handler/wizard_handler.go
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/leadforge/leadforge-backend/internal/model"
	"github.com/leadforge/leadforge-backend/internal/service"
	"github.com/leadforge/leadforge-backend/internal/wizard"
)

// WizardHandler exposes the campaign creation wizard over HTTP. Each wizard
// session maps to one state machine held in WizardSessions.
type WizardHandler struct {
	Sessions *service.WizardSessions
}

// StartWizardHandler opens a new wizard session
func (h *WizardHandler) StartWizardHandler(w http.ResponseWriter, r *http.Request) {
	var draft model.CampaignDraft
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
			http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
			return
		}
	}

	token, m := h.Sessions.Start(&draft)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"token":       token,
		"step":        m.Step(),
		"can_advance": m.CanAdvance(),
	})
}

// UpdateDraftHandler replaces the draft fields of a wizard session. Entered
// fields survive every failure path, so this is a plain overwrite.
func (h *WizardHandler) UpdateDraftHandler(w http.ResponseWriter, r *http.Request) {
	m := h.machine(w, r)
	if m == nil {
		return
	}

	var draft model.CampaignDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if !m.SetDraft(draft) {
		http.Error(w, "wizard is busy", http.StatusConflict)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"step":        m.Step(),
		"can_advance": m.CanAdvance(),
	})
}

// NextHandler advances the wizard one step
func (h *WizardHandler) NextHandler(w http.ResponseWriter, r *http.Request) {
	m := h.machine(w, r)
	if m == nil {
		return
	}

	result, err := m.Next(r.Context())
	if err != nil {
		if errors.Is(err, wizard.ErrValidationBlocked) {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		var createErr *wizard.CreateError
		if errors.As(err, &createErr) {
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if result == nil {
		// Busy: the create-and-trigger action is still in flight.
		w.WriteHeader(http.StatusAccepted)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"step": m.Step(),
			"busy": true,
		})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// RetryTriggerHandler refires the workflow after a degraded create, so a
// trigger fault never strands a created campaign.
func (h *WizardHandler) RetryTriggerHandler(w http.ResponseWriter, r *http.Request) {
	m := h.machine(w, r)
	if m == nil {
		return
	}

	outcome, err := m.RetryTrigger(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	if outcome == nil {
		w.WriteHeader(http.StatusAccepted)
		json.NewEncoder(w).Encode(map[string]interface{}{"busy": true})
		return
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"kind":    string(outcome.Kind),
		"started": outcome.OK(),
	})
}

// PrevHandler steps the wizard back
func (h *WizardHandler) PrevHandler(w http.ResponseWriter, r *http.Request) {
	m := h.machine(w, r)
	if m == nil {
		return
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"step": m.Prev(),
	})
}

// CompleteHandler finishes the wizard from the terminal step
func (h *WizardHandler) CompleteHandler(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	m := h.Sessions.Get(token)
	if m == nil {
		http.Error(w, "wizard session not found", http.StatusNotFound)
		return
	}

	if err := m.Complete(); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	h.Sessions.End(token)

	json.NewEncoder(w).Encode(map[string]interface{}{
		"campaign_id": m.CampaignID(),
		"completed":   true,
	})
}

func (h *WizardHandler) machine(w http.ResponseWriter, r *http.Request) *wizard.Machine {
	token := chi.URLParam(r, "token")
	m := h.Sessions.Get(token)
	if m == nil {
		http.Error(w, "wizard session not found", http.StatusNotFound)
		return nil
	}
	return m
}
