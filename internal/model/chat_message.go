// internal/model/chat_message.go
package model

import "time"

type ChatMessage struct {
	ID         int       `db:"id" json:"id"`
	CampaignID int       `db:"campaign_id" json:"campaign_id"`
	SessionID  string    `db:"session_id" json:"session_id"`
	Sender     string    `db:"sender" json:"sender"` // user, assistant
	Content    string    `db:"content" json:"content"`
	Metadata   string    `db:"metadata" json:"metadata,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
