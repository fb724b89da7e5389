// internal/model/workflow_event.go
package model

import "time"

// WorkflowEvent is an audit row recording every trigger outcome and
// lifecycle transition for a campaign.
type WorkflowEvent struct {
	ID         int       `db:"id" json:"id"`
	CampaignID int       `db:"campaign_id" json:"campaign_id"`
	EventType  string    `db:"event_type" json:"event_type"`
	Step       int       `db:"step" json:"step,omitempty"`
	Message    string    `db:"message" json:"message,omitempty"`
	Data       string    `db:"data" json:"data,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// Event types written by the orchestrator.
const (
	EventTriggerOK       = "trigger_ok"
	EventTriggerRejected = "trigger_rejected"
	EventTriggerNetwork  = "trigger_network_error"
	EventTriggerTimeout  = "trigger_timeout"
	EventTriggerDegraded = "trigger_degraded"
	EventCampaignCreated = "campaign_created"
	EventOutreachQueued  = "outreach_queued"
	EventOutreachSent    = "outreach_sent"
	EventOutreachFailed  = "outreach_failed"
)
