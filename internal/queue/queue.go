package queue

import (
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/leadforge/leadforge-backend/internal/model"
	"github.com/leadforge/leadforge-backend/internal/repository"
)

// Queue interface
type Queue interface {
	Publish(topic string, payload any) error
	Subscribe(topic string, handler func(payload any) error) error
}

// InMemoryQueue is a production-ready in-memory queue with retry
type InMemoryQueue struct {
	mu       sync.Mutex
	handlers map[string][]func(payload any) error
}

// NewInMemoryQueue creates a new queue
func NewInMemoryQueue() *InMemoryQueue {
	return &InMemoryQueue{
		handlers: make(map[string][]func(payload any) error),
	}
}

// JobPayload wraps a message payload with retry info
type JobPayload struct {
	Payload    any
	RetryCount int
	MaxRetries int
}

// OutreachJob is one selected lead queued for outreach after the wizard's
// terminal step completes.
type OutreachJob struct {
	CampaignID int    `json:"campaign_id"`
	LeadID     string `json:"lead_id"`
	Copy       string `json:"copy,omitempty"`
}

// Publish sends a message to all subscribers
func (q *InMemoryQueue) Publish(topic string, payload any) error {
	q.mu.Lock()
	handlers := q.handlers[topic]
	q.mu.Unlock()

	if len(handlers) == 0 {
		return fmt.Errorf("no subscribers for topic %s", topic)
	}

	job := JobPayload{
		Payload:    payload,
		RetryCount: 0,
		MaxRetries: 3,
	}

	for _, handler := range handlers {
		go q.processJob(handler, job)
	}

	return nil
}

// processJob handles retries and errors
func (q *InMemoryQueue) processJob(handler func(payload any) error, job JobPayload) {
	for job.RetryCount <= job.MaxRetries {
		err := handler(job.Payload)
		if err == nil {
			log.Printf("Job processed successfully: %+v\n", job.Payload)
			return // ACK
		}

		job.RetryCount++
		log.Printf("Job failed (attempt %d/%d): %+v, error: %v\n", job.RetryCount, job.MaxRetries, job.Payload, err)

		if job.RetryCount > job.MaxRetries {
			log.Printf("Job permanently failed after %d attempts: %+v\n", job.MaxRetries, job.Payload)
			return // No requeue
		}

		// Exponential backoff before retry
		time.Sleep(time.Duration(job.RetryCount*500) * time.Millisecond)
	}
}

// Subscribe adds a handler for a topic
func (q *InMemoryQueue) Subscribe(topic string, handler func(payload any) error) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.handlers[topic] = append(q.handlers[topic], handler)
	return nil
}

// StartOutreachSubscriber consumes outreach jobs published in-process and
// records the send outcome in the workflow event log. Delivery into the
// outreach provider is at-least-once; the provider is idempotency-unaware.
func StartOutreachSubscriber(q Queue, events repository.EventRepositoryInterface, send func(job OutreachJob) error) {
	go func() {
		err := q.Subscribe("outreach_sends", func(payload any) error {
			job, ok := payload.(OutreachJob)
			if !ok {
				log.Println("⚠️ Invalid payload type, expected OutreachJob")
				return nil // no retry
			}

			log.Println("📩 Processing outreach for lead:", job.LeadID)

			if err := send(job); err != nil {
				log.Println("⚠️ Failed to send outreach:", err)
				_ = events.LogWorkflowEvent(job.CampaignID, model.EventOutreachFailed, 0, err.Error(), `{"lead_id":"`+job.LeadID+`"}`)
				return err // triggers retry in queue
			}

			if err := events.LogWorkflowEvent(job.CampaignID, model.EventOutreachSent, 0, "", `{"lead_id":"`+job.LeadID+`"}`); err != nil {
				log.Println("⚠️ Failed to log outreach event:", err)
				return err // retry
			}

			log.Println("✅ Outreach processed for lead:", job.LeadID)
			return nil
		})

		if err != nil {
			log.Println("⚠️ Failed to start subscriber for outreach_sends:", err)
		}
	}()
}

//////////////////////////
// Example Mock Sender  //
//////////////////////////

// MockSender simulates handing a job to the outreach provider with 90% success
func MockSender(job OutreachJob) error {
	r := rand.Float64()
	if r < 0.9 {
		return nil // success
	}
	return fmt.Errorf("mock outreach send failed")
}
