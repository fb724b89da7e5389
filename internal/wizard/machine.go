// internal/wizard/machine.go
package wizard

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/leadforge/leadforge-backend/internal/model"
	"github.com/leadforge/leadforge-backend/internal/trigger"
)

// ErrValidationBlocked means the current step's required inputs are missing.
// Non-fatal: the caller keeps the step and the draft untouched.
var ErrValidationBlocked = errors.New("required fields for this step are incomplete")

// CreateError wraps a phase-a failure of the creating step. The wizard stays
// on step 1 with the draft intact so the user can retry.
type CreateError struct {
	Cause error
}

func (e *CreateError) Error() string { return "failed to create campaign: " + e.Cause.Error() }
func (e *CreateError) Unwrap() error { return e.Cause }

// Creator persists a new campaign row and assigns its ID.
type Creator interface {
	Create(c *model.Campaign) error
}

// Triggerer fires the external workflow. Matches trigger.Client.
type Triggerer interface {
	Trigger(ctx context.Context, req trigger.Request) (trigger.Outcome, error)
}

// EventSink records wizard lifecycle events.
type EventSink interface {
	LogWorkflowEvent(campaignID int, eventType string, step int, message, data string) error
}

// AdvanceResult describes the outcome of a successful Next call.
type AdvanceResult struct {
	Step       int    `json:"step"`
	CampaignID int    `json:"campaign_id,omitempty"`
	Degraded   bool   `json:"degraded,omitempty"`
	Warning    string `json:"warning,omitempty"`
}

// Machine drives the campaign creation wizard. Steps run 1..StepCount; only
// the creating step has a side effect (persist the draft, then fire the
// workflow). One Machine per wizard session; safe for the interleaved async
// calls a single UI session produces.
type Machine struct {
	Draft      *model.CampaignDraft
	Campaigns  Creator
	Trigger    Triggerer
	Events     EventSink
	OnComplete func(campaignID int)

	mu         sync.Mutex
	step       int
	campaignID int
	busy       bool
	done       bool
}

func NewMachine(draft *model.CampaignDraft, campaigns Creator, trig Triggerer, events EventSink) *Machine {
	if draft == nil {
		draft = &model.CampaignDraft{}
	}
	return &Machine{
		Draft:     draft,
		Campaigns: campaigns,
		Trigger:   trig,
		Events:    events,
		step:      StepTargeting,
	}
}

func (m *Machine) Step() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.step
}

func (m *Machine) CampaignID() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.campaignID
}

func (m *Machine) IsBusy() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.busy
}

// SetDraft replaces the draft fields under the machine's lock. Refused while
// the step action is in flight, since the action reads the draft. The draft
// pointer itself is kept, so holders of the same draft see the update.
func (m *Machine) SetDraft(draft model.CampaignDraft) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.busy || m.done {
		return false
	}
	*m.Draft = draft
	return true
}

// CanAdvance reports whether the current step's gate is satisfied.
func (m *Machine) CanAdvance() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return CanAdvance(m.step, m.Draft, m.campaignID)
}

// Next advances one step. The creating step first runs its two-phase action;
// on phase-a failure the wizard stays put with the draft intact, on phase-b
// failure it advances anyway as a degraded success. A Next while the action
// is still in flight is a no-op and returns nil, nil.
func (m *Machine) Next(ctx context.Context) (*AdvanceResult, error) {
	m.mu.Lock()
	if m.busy || m.done {
		m.mu.Unlock()
		return nil, nil
	}
	if m.step >= StepCount {
		m.mu.Unlock()
		return nil, fmt.Errorf("already on the final step")
	}
	if !CanAdvance(m.step, m.Draft, m.campaignID) {
		m.mu.Unlock()
		return nil, ErrValidationBlocked
	}

	if m.step == StepTargeting && m.campaignID == 0 {
		m.busy = true
		m.mu.Unlock()

		id, degraded, warning, err := m.createAndTrigger(ctx)

		m.mu.Lock()
		m.busy = false
		if err != nil {
			m.mu.Unlock()
			return nil, err
		}
		m.campaignID = id
		m.step++
		res := &AdvanceResult{Step: m.step, CampaignID: m.campaignID, Degraded: degraded, Warning: warning}
		m.mu.Unlock()
		return res, nil
	}

	m.step++
	res := &AdvanceResult{Step: m.step, CampaignID: m.campaignID}
	m.mu.Unlock()
	return res, nil
}

// createAndTrigger is the step-1 action. Phase (a) persists the draft; phase
// (b) fires the workflow. A phase-b failure does not roll back phase (a): the
// row already exists and triggering can be retried, so the caller gets a
// degraded success instead of an orphaned campaign.
func (m *Machine) createAndTrigger(ctx context.Context) (id int, degraded bool, warning string, err error) {
	c := &model.Campaign{
		Name:             m.Draft.Name,
		Location:         m.Draft.Location,
		Industry:         m.Draft.Industry,
		Seniority:        m.Draft.Seniority,
		CompanySize:      m.Draft.CompanySize,
		Description:      m.Draft.Description,
		MessageTemplate:  m.Draft.MessageTemplate,
		FollowUpTemplate: m.Draft.FollowUpTemplate,
		DailyLimit:       m.Draft.DailyLimit,
		SendSchedule:     m.Draft.SendSchedule,
		SendingAccount:   m.Draft.SendingAccount,
		Status:           "draft",
	}
	if err := m.Campaigns.Create(c); err != nil {
		return 0, false, "", &CreateError{Cause: err}
	}
	m.logEvent(c.ID, model.EventCampaignCreated, StepTargeting, "campaign record created")

	outcome, err := m.Trigger.Trigger(ctx, trigger.Request{
		CampaignID: c.ID,
		Mode:       trigger.ModeCampaignTrigger,
		Campaign:   m.Draft,
	})
	if err != nil || !outcome.OK() {
		detail := ""
		if err != nil {
			detail = err.Error()
		} else {
			detail = string(outcome.Kind)
		}
		m.logEvent(c.ID, model.EventTriggerDegraded, StepTargeting, "campaign created, workflow failed to start: "+detail)
		return c.ID, true, "campaign created, workflow failed to start", nil
	}

	return c.ID, false, "", nil
}

// RetryTrigger refires the workflow for an already-created campaign. Used
// after a degraded success, where the row exists but the workflow never
// started. The outcome is classified and logged like any other trigger call.
func (m *Machine) RetryTrigger(ctx context.Context) (*trigger.Outcome, error) {
	m.mu.Lock()
	if m.busy {
		m.mu.Unlock()
		return nil, nil
	}
	if m.campaignID == 0 {
		m.mu.Unlock()
		return nil, fmt.Errorf("campaign has not been created yet")
	}
	id := m.campaignID
	m.busy = true
	m.mu.Unlock()

	outcome, err := m.Trigger.Trigger(ctx, trigger.Request{
		CampaignID: id,
		Mode:       trigger.ModeCampaignTrigger,
		Campaign:   m.Draft,
	})

	m.mu.Lock()
	m.busy = false
	m.mu.Unlock()

	if err != nil {
		return nil, err
	}
	return &outcome, nil
}

// Prev steps back one, floored at the first step. Never blocked, no side
// effects.
func (m *Machine) Prev() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.busy || m.done {
		return m.step
	}
	if m.step > StepTargeting {
		m.step--
	}
	return m.step
}

// Complete ends the wizard session. Only reachable from the terminal step.
func (m *Machine) Complete() error {
	m.mu.Lock()
	if m.done {
		m.mu.Unlock()
		return nil
	}
	if m.step != StepSendSettings {
		m.mu.Unlock()
		return fmt.Errorf("cannot complete from step %d", m.step)
	}
	m.done = true
	id := m.campaignID
	cb := m.OnComplete
	m.mu.Unlock()

	if cb != nil {
		cb(id)
	}
	return nil
}

func (m *Machine) logEvent(campaignID int, eventType string, step int, msg string) {
	if m.Events == nil {
		return
	}
	if err := m.Events.LogWorkflowEvent(campaignID, eventType, step, msg, ""); err != nil {
		log.Println("⚠️ failed to log workflow event:", err)
	}
}
