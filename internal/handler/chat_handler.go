// internal/handler/chat_handler.go
package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/leadforge/leadforge-backend/internal/chat"
	"github.com/leadforge/leadforge-backend/internal/model"
	"github.com/leadforge/leadforge-backend/internal/service"
)

// ChatHandler exposes the conversational targeting panel over HTTP.
type ChatHandler struct {
	Sessions *service.ChatSessions
	Wizards  *service.WizardSessions
}

// orchestrator resolves the campaign's chat orchestrator, handing it the
// owning wizard session's live draft so Apply writes reach the form.
func (h *ChatHandler) orchestrator(id int) *chat.Orchestrator {
	var draft *model.CampaignDraft
	if h.Wizards != nil {
		draft = h.Wizards.DraftFor(id)
	}
	return h.Sessions.ForCampaign(id, draft)
}

// OpenChatHandler opens (or reopens) the chat panel for a campaign and
// returns the session history to render.
func (h *ChatHandler) OpenChatHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := campaignID(w, r)
	if !ok {
		return
	}

	o := h.orchestrator(id)
	history, err := o.Open()
	if err != nil {
		http.Error(w, "failed to open chat: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"session_id": o.SessionID(),
		"messages":   history,
	})
}

// PostMessageHandler submits one user turn and returns the assistant reply.
func (h *ChatHandler) PostMessageHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := campaignID(w, r)
	if !ok {
		return
	}

	var body struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Content == "" {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	o := h.orchestrator(id)
	reply, err := o.Submit(r.Context(), body.Content)
	if err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(reply)
}

// ApplyToFormHandler folds the conversation summary into the campaign draft.
// Explicit user action only.
func (h *ChatHandler) ApplyToFormHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := campaignID(w, r)
	if !ok {
		return
	}

	o := h.orchestrator(id)
	summary := o.ApplyToForm()

	json.NewEncoder(w).Encode(map[string]interface{}{
		"applied": true,
		"summary": summary,
	})
}

// GetHistoryHandler returns the locally rendered conversation.
func (h *ChatHandler) GetHistoryHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := campaignID(w, r)
	if !ok {
		return
	}

	o := h.orchestrator(id)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"messages": o.History(),
	})
}

func campaignID(w http.ResponseWriter, r *http.Request) (int, bool) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.Atoi(idStr)
	if err != nil || id <= 0 {
		http.Error(w, "invalid campaign id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}
