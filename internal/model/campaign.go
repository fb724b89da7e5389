// internal/model/campaign.go
package model

import "time"

// Campaign is the persisted campaign row. A draft becomes a Campaign once
// the wizard's create step succeeds and the store assigns an ID.
type Campaign struct {
	ID               int        `db:"id" json:"id"`
	Name             string     `db:"name" json:"name"`
	Location         string     `db:"location" json:"location"`
	Industry         string     `db:"industry" json:"industry"`
	Seniority        string     `db:"seniority" json:"seniority"`
	CompanySize      string     `db:"company_size" json:"company_size"`
	Description      string     `db:"description" json:"description"`
	MessageTemplate  string     `db:"message_template" json:"message_template"`
	FollowUpTemplate string     `db:"follow_up_template" json:"follow_up_template"`
	DailyLimit       int        `db:"daily_limit" json:"daily_limit"`
	SendSchedule     string     `db:"send_schedule" json:"send_schedule"`
	SendingAccount   string     `db:"sending_account" json:"sending_account"`
	Status           string     `db:"status" json:"status"` // draft, enriching, reviewing, launching, active
	SessionID        *string    `db:"session_id" json:"session_id,omitempty"`
	SearchID         *string    `db:"search_id" json:"search_id,omitempty"`
	WorkflowProgress int        `db:"workflow_progress" json:"workflow_progress"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt        *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}

// CampaignDraft holds the in-progress wizard inputs. It lives in memory for
// the duration of the wizard session and is persisted as a Campaign when the
// creating step completes.
type CampaignDraft struct {
	Name             string `json:"name"`
	Location         string `json:"location"`
	Industry         string `json:"industry"`
	Seniority        string `json:"seniority"`
	CompanySize      string `json:"company_size"`
	Description      string `json:"description"`
	MessageTemplate  string `json:"message_template"`
	FollowUpTemplate string `json:"follow_up_template"`
	DailyLimit       int    `json:"daily_limit"`
	SendSchedule     string `json:"send_schedule"`
	SendingAccount   string `json:"sending_account"`
}
