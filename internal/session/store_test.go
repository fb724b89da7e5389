package session_test

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leadforge/leadforge-backend/internal/model"
	"github.com/leadforge/leadforge-backend/internal/session"
)

// memoryBackend mimics the persistence collaborator: a compare-and-set link
// field per campaign plus an append-only message log.
type memoryBackend struct {
	mu       sync.Mutex
	links    map[int]string
	messages []model.ChatMessage
	nextID   int
	failLog  bool
}

func newMemoryBackend() *memoryBackend {
	return &memoryBackend{links: map[int]string{}}
}

func (b *memoryBackend) LinkSession(campaignID int, sessionID string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if existing, ok := b.links[campaignID]; ok {
		return existing, nil
	}
	b.links[campaignID] = sessionID
	return sessionID, nil
}

func (b *memoryBackend) LogChatMessage(campaignID int, sessionID, sender, content, metadata string) (*model.ChatMessage, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failLog {
		return nil, fmt.Errorf("store unavailable")
	}
	b.nextID++
	msg := model.ChatMessage{
		ID:         b.nextID,
		CampaignID: campaignID,
		SessionID:  sessionID,
		Sender:     sender,
		Content:    content,
		Metadata:   metadata,
		CreatedAt:  time.Now(),
	}
	b.messages = append(b.messages, msg)
	return &msg, nil
}

func (b *memoryBackend) GetChatHistory(sessionID string) ([]model.ChatMessage, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := []model.ChatMessage{}
	for _, m := range b.messages {
		if m.SessionID == sessionID {
			out = append(out, m)
		}
	}
	return out, nil
}

func newStore(b *memoryBackend) *session.Store {
	return &session.Store{Campaigns: b, Messages: b}
}

func TestLinkSessionFirstWriteWins(t *testing.T) {
	store := newStore(newMemoryBackend())

	got, err := store.LinkSessionIfAbsent(1, "A")
	require.NoError(t, err)
	assert.Equal(t, "A", got)

	got, err = store.LinkSessionIfAbsent(1, "B")
	require.NoError(t, err)
	assert.Equal(t, "A", got, "second open must reuse the linked session")
}

func TestLinkSessionConcurrentOpensConverge(t *testing.T) {
	store := newStore(newMemoryBackend())

	results := make(chan string, 10)
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id, err := store.LinkSessionIfAbsent(5, fmt.Sprintf("session-%d", i))
			require.NoError(t, err)
			results <- id
		}(i)
	}
	wg.Wait()
	close(results)

	first := <-results
	for id := range results {
		assert.Equal(t, first, id)
	}
}

func TestHistoryPreservesInsertionOrder(t *testing.T) {
	store := newStore(newMemoryBackend())

	sid, err := store.LinkSessionIfAbsent(2, session.NewSessionID())
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		sender := "user"
		if i%2 == 0 {
			sender = "assistant"
		}
		_, err := store.AppendMessage(2, sid, sender, fmt.Sprintf("turn %d", i), "")
		require.NoError(t, err)
	}

	history, err := store.GetHistory(sid)
	require.NoError(t, err)
	require.Len(t, history, 5)
	for i, m := range history {
		assert.Equal(t, fmt.Sprintf("turn %d", i), m.Content)
	}
}
