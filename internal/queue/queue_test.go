package queue_test

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leadforge/leadforge-backend/internal/model"
	"github.com/leadforge/leadforge-backend/internal/queue"
)

// MockEventRepo records workflow events in memory
type MockEventRepo struct {
	mu     sync.Mutex
	events []string
	done   chan struct{}
}

func (m *MockEventRepo) LogWorkflowEvent(campaignID int, eventType string, step int, message, data string) error {
	m.mu.Lock()
	m.events = append(m.events, eventType)
	m.mu.Unlock()
	if m.done != nil {
		m.done <- struct{}{}
	}
	return nil
}

func (m *MockEventRepo) ListEvents(campaignID int) ([]model.WorkflowEvent, error) {
	return []model.WorkflowEvent{}, nil
}

func TestPublishWithoutSubscriberFails(t *testing.T) {
	q := queue.NewInMemoryQueue()
	err := q.Publish("outreach_sends", queue.OutreachJob{CampaignID: 1, LeadID: "l1"})
	require.Error(t, err)
}

func TestOutreachSubscriberLogsSentEvent(t *testing.T) {
	q := queue.NewInMemoryQueue()
	events := &MockEventRepo{done: make(chan struct{}, 1)}

	queue.StartOutreachSubscriber(q, events, func(job queue.OutreachJob) error {
		return nil // always delivers
	})

	// Subscriber registration happens on a goroutine; wait for it.
	deadline := time.Now().Add(time.Second)
	var err error
	for time.Now().Before(deadline) {
		err = q.Publish("outreach_sends", queue.OutreachJob{CampaignID: 1, LeadID: "l1"})
		if err == nil {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	require.NoError(t, err)

	select {
	case <-events.done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for the outreach event")
	}

	events.mu.Lock()
	defer events.mu.Unlock()
	assert.Equal(t, []string{model.EventOutreachSent}, events.events)
}

func TestOutreachSubscriberRetriesThenRecordsFailure(t *testing.T) {
	q := queue.NewInMemoryQueue()
	events := &MockEventRepo{done: make(chan struct{}, 8)}

	var mu sync.Mutex
	attempts := 0
	queue.StartOutreachSubscriber(q, events, func(job queue.OutreachJob) error {
		mu.Lock()
		attempts++
		mu.Unlock()
		return fmt.Errorf("provider down")
	})

	deadline := time.Now().Add(time.Second)
	var err error
	for time.Now().Before(deadline) {
		err = q.Publish("outreach_sends", queue.OutreachJob{CampaignID: 2, LeadID: "l9"})
		if err == nil {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	require.NoError(t, err)

	// 1 initial attempt + 3 retries, each logging a failed event.
	for i := 0; i < 4; i++ {
		select {
		case <-events.done:
		case <-time.After(5 * time.Second):
			t.Fatalf("timed out waiting for failure event %d", i+1)
		}
	}

	mu.Lock()
	assert.Equal(t, 4, attempts)
	mu.Unlock()

	events.mu.Lock()
	defer events.mu.Unlock()
	for _, e := range events.events {
		assert.Equal(t, model.EventOutreachFailed, e)
	}
}
