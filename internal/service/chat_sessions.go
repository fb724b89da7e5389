// internal/service/chat_sessions.go
package service

import (
	"sync"

	"github.com/leadforge/leadforge-backend/internal/chat"
	"github.com/leadforge/leadforge-backend/internal/model"
	"github.com/leadforge/leadforge-backend/internal/session"
)

// ChatSessions keeps one orchestrator per campaign for the lifetime of the
// process. The durable session binding lives on the campaign row, so losing
// this cache only costs a reload, never a second session.
type ChatSessions struct {
	Store   *session.Store
	Trigger chat.Triggerer

	mu            sync.Mutex
	orchestrators map[int]*chat.Orchestrator
}

func NewChatSessions(store *session.Store, trig chat.Triggerer) *ChatSessions {
	return &ChatSessions{
		Store:         store,
		Trigger:       trig,
		orchestrators: make(map[int]*chat.Orchestrator),
	}
}

// ForCampaign returns the orchestrator for a campaign, creating it on first
// use. The draft is attached so ApplyToForm has somewhere to write.
func (cs *ChatSessions) ForCampaign(campaignID int, draft *model.CampaignDraft) *chat.Orchestrator {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if o, ok := cs.orchestrators[campaignID]; ok {
		// The wizard session may have appeared (or the campaign id been
		// assigned) since this orchestrator was cached.
		o.AttachDraft(draft)
		return o
	}
	if draft == nil {
		draft = &model.CampaignDraft{}
	}
	o := chat.NewOrchestrator(campaignID, cs.Store, cs.Trigger, draft)
	cs.orchestrators[campaignID] = o
	return o
}
