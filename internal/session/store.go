// internal/session/store.go
package session

import (
	"github.com/google/uuid"

	"github.com/leadforge/leadforge-backend/internal/model"
)

// Linker persists the campaign -> session binding.
type Linker interface {
	LinkSession(campaignID int, sessionID string) (string, error)
}

// MessageLog is the append-only chat log behind a session.
type MessageLog interface {
	LogChatMessage(campaignID int, sessionID, sender, content, metadata string) (*model.ChatMessage, error)
	GetChatHistory(sessionID string) ([]model.ChatMessage, error)
}

// Store binds campaigns to durable chat sessions. A campaign has at most one
// session; once linked the binding never changes, so reopening the chat panel
// always lands on the same history.
type Store struct {
	Campaigns Linker
	Messages  MessageLog
}

// NewSessionID generates a fresh opaque session token.
func NewSessionID() string {
	return uuid.NewString()
}

// LinkSessionIfAbsent links newSessionID to the campaign unless a session is
// already linked, in which case the existing id is returned and newSessionID
// is discarded. First write wins under concurrent opens.
func (s *Store) LinkSessionIfAbsent(campaignID int, newSessionID string) (string, error) {
	return s.Campaigns.LinkSession(campaignID, newSessionID)
}

// AppendMessage appends one turn to the session log.
func (s *Store) AppendMessage(campaignID int, sessionID, sender, content, metadata string) (*model.ChatMessage, error) {
	return s.Messages.LogChatMessage(campaignID, sessionID, sender, content, metadata)
}

// GetHistory returns the session's messages in insertion order.
func (s *Store) GetHistory(sessionID string) ([]model.ChatMessage, error) {
	return s.Messages.GetChatHistory(sessionID)
}
