// internal/service/wizard_sessions.go
package service

import (
	"sync"

	"github.com/google/uuid"

	"github.com/leadforge/leadforge-backend/internal/model"
	"github.com/leadforge/leadforge-backend/internal/wizard"
)

// WizardSessions keeps the live wizard state machines, one per UI session,
// keyed by an opaque token handed to the client. State lives in memory only;
// the durable campaign row is created by the machine's step-1 action.
type WizardSessions struct {
	Campaigns wizard.Creator
	Trigger   wizard.Triggerer
	Events    wizard.EventSink

	mu       sync.Mutex
	sessions map[string]*wizard.Machine
}

func NewWizardSessions(campaigns wizard.Creator, trig wizard.Triggerer, events wizard.EventSink) *WizardSessions {
	return &WizardSessions{
		Campaigns: campaigns,
		Trigger:   trig,
		Events:    events,
		sessions:  make(map[string]*wizard.Machine),
	}
}

// Start creates a fresh wizard session and returns its token.
func (ws *WizardSessions) Start(draft *model.CampaignDraft) (string, *wizard.Machine) {
	m := wizard.NewMachine(draft, ws.Campaigns, ws.Trigger, ws.Events)
	token := uuid.NewString()

	ws.mu.Lock()
	ws.sessions[token] = m
	ws.mu.Unlock()

	return token, m
}

// Get returns the machine for a session token, or nil.
func (ws *WizardSessions) Get(token string) *wizard.Machine {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return ws.sessions[token]
}

// DraftFor returns the live draft of the wizard session that created the
// given campaign, or nil when no running session owns it. The chat panel
// uses this so Apply writes into the form the user is editing, not a copy.
func (ws *WizardSessions) DraftFor(campaignID int) *model.CampaignDraft {
	if campaignID == 0 {
		return nil
	}
	ws.mu.Lock()
	defer ws.mu.Unlock()
	for _, m := range ws.sessions {
		if m.CampaignID() == campaignID {
			return m.Draft
		}
	}
	return nil
}

// End drops a finished session.
func (ws *WizardSessions) End(token string) {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	delete(ws.sessions, token)
}
