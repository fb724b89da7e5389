// internal/chat/orchestrator.go
package chat

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/leadforge/leadforge-backend/internal/model"
	"github.com/leadforge/leadforge-backend/internal/session"
	"github.com/leadforge/leadforge-backend/internal/trigger"
)

const (
	welcomeMessage = "Hi! I can help you refine your targeting. Tell me about the prospects you want to reach — industry, seniority, location, company size — and I'll shape the criteria with you."
	apologyMessage = "Sorry, I couldn't reach the assistant just now. Please try again in a moment."

	contextTurns = 3
	maxTurnRunes = 500
)

// Triggerer fires the workflow endpoint in chat mode. Matches trigger.Client.
type Triggerer interface {
	Trigger(ctx context.Context, req trigger.Request) (trigger.Outcome, error)
}

// ExtractFunc turns a conversation into draft criteria text for Apply. The
// default writes a placeholder summary; a provider-backed extractor can be
// injected without touching the orchestrator.
type ExtractFunc func(history []model.ChatMessage) string

// DefaultExtract is the placeholder extraction used until the provider
// exposes parsed criteria.
func DefaultExtract(history []model.ChatMessage) string {
	return fmt.Sprintf("Criteria refined via chat assistant (%d messages). See the conversation for details.", len(history))
}

// Orchestrator runs the conversational targeting panel for one campaign. It
// keeps the durable session handle and a local message list for rendering;
// store writes are best-effort and never block the conversation.
type Orchestrator struct {
	CampaignID int
	Store      *session.Store
	Trigger    Triggerer
	Draft      *model.CampaignDraft
	Extract    ExtractFunc
	Timezone   string

	mu        sync.Mutex
	open      bool
	sessionID string
	messages  []model.ChatMessage
}

func NewOrchestrator(campaignID int, store *session.Store, trig Triggerer, draft *model.CampaignDraft) *Orchestrator {
	return &Orchestrator{
		CampaignID: campaignID,
		Store:      store,
		Trigger:    trig,
		Draft:      draft,
		Extract:    DefaultExtract,
		Timezone:   "UTC",
	}
}

// AttachDraft points the orchestrator at the live wizard draft, so Apply
// writes land on the form the user is editing. A nil draft leaves the
// current one in place.
func (o *Orchestrator) AttachDraft(draft *model.CampaignDraft) {
	if draft == nil {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.Draft = draft
}

// Open resolves the campaign's chat session and returns the history to
// render. An already-linked session is reused with its full prior log; a
// fresh campaign gets a welcome turn persisted as the first assistant
// message. Opening twice never creates a second session.
func (o *Orchestrator) Open() ([]model.ChatMessage, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.open {
		return o.copyMessages(), nil
	}

	candidate := session.NewSessionID()
	resolved, err := o.Store.LinkSessionIfAbsent(o.CampaignID, candidate)
	if err != nil {
		return nil, err
	}
	o.sessionID = resolved

	if resolved != candidate {
		// Existing session won; reload its log.
		history, err := o.Store.GetHistory(resolved)
		if err != nil {
			return nil, err
		}
		o.messages = history
		o.open = true
		return o.copyMessages(), nil
	}

	welcome, err := o.Store.AppendMessage(o.CampaignID, resolved, "assistant", welcomeMessage, "")
	if err != nil {
		// Keep the panel usable; the welcome just stays local.
		log.Println("⚠️ failed to persist welcome message:", err)
		welcome = &model.ChatMessage{
			CampaignID: o.CampaignID,
			SessionID:  resolved,
			Sender:     "assistant",
			Content:    welcomeMessage,
			CreatedAt:  time.Now(),
		}
	}
	o.messages = []model.ChatMessage{*welcome}
	o.open = true
	return o.copyMessages(), nil
}

// SessionID returns the resolved session handle ("" before Open).
func (o *Orchestrator) SessionID() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.sessionID
}

// Submit sends one user turn to the assistant and returns the reply turn.
// The store append is best-effort: a persistence failure never blocks the
// trigger call. Any classified trigger failure yields a single apologetic
// assistant turn instead of an error.
func (o *Orchestrator) Submit(ctx context.Context, text string) (*model.ChatMessage, error) {
	o.mu.Lock()
	if !o.open {
		o.mu.Unlock()
		return nil, fmt.Errorf("chat session is not open")
	}
	sessionID := o.sessionID
	window := o.trailingContext()

	userMsg := model.ChatMessage{
		CampaignID: o.CampaignID,
		SessionID:  sessionID,
		Sender:     "user",
		Content:    text,
		CreatedAt:  time.Now(),
	}
	o.messages = append(o.messages, userMsg)
	o.mu.Unlock()

	if _, err := o.Store.AppendMessage(o.CampaignID, sessionID, "user", text, ""); err != nil {
		log.Println("⚠️ failed to persist user message:", err)
	}

	outcome, err := o.Trigger.Trigger(ctx, trigger.Request{
		CampaignID: o.CampaignID,
		Mode:       trigger.ModeChatMessage,
		SessionID:  sessionID,
		Message:    text,
		Context:    window,
		Timezone:   o.Timezone,
	})

	var reply model.ChatMessage
	if err != nil || !outcome.OK() {
		reply = model.ChatMessage{
			CampaignID: o.CampaignID,
			SessionID:  sessionID,
			Sender:     "assistant",
			Content:    apologyMessage,
			CreatedAt:  time.Now(),
		}
		o.mu.Lock()
		o.messages = append(o.messages, reply)
		o.mu.Unlock()
		return &reply, nil
	}

	content := outcome.Extracted
	if content == "" {
		content = outcome.RawResponse
	}

	stored, storeErr := o.Store.AppendMessage(o.CampaignID, sessionID, "assistant", content, "")
	if storeErr != nil {
		log.Println("⚠️ failed to persist assistant message:", storeErr)
		reply = model.ChatMessage{
			CampaignID: o.CampaignID,
			SessionID:  sessionID,
			Sender:     "assistant",
			Content:    content,
			CreatedAt:  time.Now(),
		}
	} else {
		reply = *stored
	}

	o.mu.Lock()
	o.messages = append(o.messages, reply)
	o.mu.Unlock()
	return &reply, nil
}

// ApplyToForm folds the conversation's extracted criteria into the draft. A
// one-way, explicit user action; it never runs implicitly.
func (o *Orchestrator) ApplyToForm() string {
	o.mu.Lock()
	defer o.mu.Unlock()

	extract := o.Extract
	if extract == nil {
		extract = DefaultExtract
	}
	summary := extract(o.copyMessages())
	if strings.TrimSpace(o.Draft.Description) == "" {
		o.Draft.Description = summary
	} else {
		o.Draft.Description += "\n\n" + summary
	}
	return summary
}

// Close marks the panel closed. UI-scoped only; the durable session and its
// log are untouched and reused on the next Open.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.open = false
}

// History returns a copy of the locally rendered messages.
func (o *Orchestrator) History() []model.ChatMessage {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.copyMessages()
}

// trailingContext builds the short context window sent with each chat turn:
// the last few turns with content truncated, so payloads stay bounded as the
// conversation grows. Caller holds o.mu.
func (o *Orchestrator) trailingContext() []trigger.ContextTurn {
	start := len(o.messages) - contextTurns
	if start < 0 {
		start = 0
	}
	window := []trigger.ContextTurn{}
	for _, m := range o.messages[start:] {
		window = append(window, trigger.ContextTurn{
			Sender:  m.Sender,
			Content: truncateRunes(m.Content, maxTurnRunes),
		})
	}
	return window
}

func truncateRunes(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "…"
}

func (o *Orchestrator) copyMessages() []model.ChatMessage {
	cp := make([]model.ChatMessage, len(o.messages))
	copy(cp, o.messages)
	return cp
}
