package repository

import (
	"database/sql"
	"time"

	"github.com/leadforge/leadforge-backend/internal/model"
)

// ChatRepositoryInterface defines the message log used by the chat orchestrator
type ChatRepositoryInterface interface {
	LogChatMessage(campaignID int, sessionID, sender, content, metadata string) (*model.ChatMessage, error)
	GetChatHistory(sessionID string) ([]model.ChatMessage, error)
}

// ChatRepository is the concrete implementation
type ChatRepository struct {
	DB *sql.DB
}

// LogChatMessage appends one turn to the session log. Append-only; there is
// no update or delete path.
func (r *ChatRepository) LogChatMessage(campaignID int, sessionID, sender, content, metadata string) (*model.ChatMessage, error) {
	msg := &model.ChatMessage{
		CampaignID: campaignID,
		SessionID:  sessionID,
		Sender:     sender,
		Content:    content,
		Metadata:   metadata,
		CreatedAt:  time.Now(),
	}
	query := `
        INSERT INTO chat_messages (campaign_id, session_id, sender, content, metadata, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id
    `
	err := r.DB.QueryRow(query, msg.CampaignID, msg.SessionID, msg.Sender, msg.Content, msg.Metadata, msg.CreatedAt).Scan(&msg.ID)
	if err != nil {
		return nil, err
	}
	return msg, nil
}

// GetChatHistory returns the full session log in insertion order.
func (r *ChatRepository) GetChatHistory(sessionID string) ([]model.ChatMessage, error) {
	query := `
        SELECT id, campaign_id, session_id, sender, content, metadata, created_at
        FROM chat_messages
        WHERE session_id = $1
        ORDER BY id ASC
    `
	rows, err := r.DB.Query(query, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := []model.ChatMessage{}
	for rows.Next() {
		var m model.ChatMessage
		if err := rows.Scan(&m.ID, &m.CampaignID, &m.SessionID, &m.Sender, &m.Content, &m.Metadata, &m.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, nil
}

var _ ChatRepositoryInterface = (*ChatRepository)(nil)
