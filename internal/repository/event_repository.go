package repository

import (
	"database/sql"
	"time"

	"github.com/leadforge/leadforge-backend/internal/model"
)

// EventRepositoryInterface is the audit log every trigger outcome and
// lifecycle transition is written to.
type EventRepositoryInterface interface {
	LogWorkflowEvent(campaignID int, eventType string, step int, message, data string) error
	ListEvents(campaignID int) ([]model.WorkflowEvent, error)
}

type EventRepository struct {
	DB *sql.DB
}

// LogWorkflowEvent inserts a new audit row and returns the created ID via ev
func (r *EventRepository) LogWorkflowEvent(campaignID int, eventType string, step int, message, data string) error {
	ev := &model.WorkflowEvent{
		CampaignID: campaignID,
		EventType:  eventType,
		Step:       step,
		Message:    message,
		Data:       data,
		CreatedAt:  time.Now(),
	}
	query := `
        INSERT INTO workflow_events (campaign_id, event_type, step, message, data, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id
    `
	return r.DB.QueryRow(query, ev.CampaignID, ev.EventType, ev.Step, ev.Message, ev.Data, ev.CreatedAt).Scan(&ev.ID)
}

// ListEvents fetches all events for a campaign, oldest first
func (r *EventRepository) ListEvents(campaignID int) ([]model.WorkflowEvent, error) {
	query := `
        SELECT id, campaign_id, event_type, step, message, data, created_at
        FROM workflow_events
        WHERE campaign_id = $1
        ORDER BY id ASC
    `
	rows, err := r.DB.Query(query, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []model.WorkflowEvent{}
	for rows.Next() {
		var ev model.WorkflowEvent
		if err := rows.Scan(&ev.ID, &ev.CampaignID, &ev.EventType, &ev.Step, &ev.Message, &ev.Data, &ev.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, nil
}

var _ EventRepositoryInterface = (*EventRepository)(nil)
