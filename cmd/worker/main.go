// cmd/worker/main.go
package main

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"math/rand"

	_ "github.com/lib/pq"
	"github.com/streadway/amqp"

	"github.com/leadforge/leadforge-backend/internal/config"
	"github.com/leadforge/leadforge-backend/internal/model"
	"github.com/leadforge/leadforge-backend/internal/queue"
	"github.com/leadforge/leadforge-backend/internal/repository"
)

func main() {
	cfg := config.Load()

	// Connect to DB
	dsn := "postgres://" + cfg.DBUser + ":" + cfg.DBPassword + "@" + cfg.DBHost + ":" + cfg.DBPort + "/" + cfg.DBName + "?sslmode=disable"
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatal("failed to connect to DB:", err)
	}

	eventRepo := &repository.EventRepository{DB: db}

	// Connect to RabbitMQ
	conn, err := amqp.Dial(cfg.AMQPURL)
	if err != nil {
		log.Fatal("Failed to connect to RabbitMQ:", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		log.Fatal("Failed to open a channel:", err)
	}
	defer ch.Close()

	q, err := ch.QueueDeclare(
		"outreach_sends", // name
		true,             // durable
		false,            // delete when unused
		false,            // exclusive
		false,            // no-wait
		nil,              // arguments
	)
	if err != nil {
		log.Fatal("Failed to declare queue:", err)
	}

	msgs, err := ch.Consume(
		q.Name,
		"",
		false, // autoAck = false for reliability
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		log.Fatal("Failed to register consumer:", err)
	}

	forever := make(chan bool)

	go func() {
		for d := range msgs {
			var job queue.OutreachJob
			if err := json.Unmarshal(d.Body, &job); err != nil {
				log.Println("Invalid job:", err)
				d.Ack(false)
				continue
			}

			// Process the job
			err := processJob(job, eventRepo)
			if err != nil {
				log.Println("Failed to send outreach:", err)
				// A plain Nack-requeue redelivers the original headers, so
				// the attempt count would never move. Ack and republish with
				// the count bumped instead; give up after maxSendRetries.
				retries := retryCountFrom(d.Headers)
				if retries < maxSendRetries {
					if pubErr := republish(ch, q.Name, d.Body, retries+1); pubErr != nil {
						log.Println("⚠️ failed to requeue job:", pubErr)
						d.Nack(false, true)
						continue
					}
					log.Printf("Requeued outreach job, attempt %d/%d", retries+1, maxSendRetries)
				} else {
					log.Println("⚠️ giving up on outreach job after", maxSendRetries, "retries")
				}
			}

			d.Ack(false)
		}
	}()

	log.Println("Worker running, waiting for outreach jobs...")
	<-forever
}

const maxSendRetries = 3

// retryCountFrom reads the x-retry-count header. AMQP field tables carry
// integers at whatever width the publisher encoded, so every width is
// accepted; anything else counts as a first attempt.
func retryCountFrom(headers amqp.Table) int {
	switch v := headers["x-retry-count"].(type) {
	case int:
		return v
	case int8:
		return int(v)
	case int16:
		return int(v)
	case int32:
		return int(v)
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

func retryHeaders(retries int) amqp.Table {
	return amqp.Table{"x-retry-count": int32(retries)}
}

func republish(ch *amqp.Channel, queueName string, body []byte, retries int) error {
	return ch.Publish(
		"",        // exchange
		queueName, // routing key
		false,     // mandatory
		false,     // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
			Headers:     retryHeaders(retries),
		},
	)
}

func processJob(job queue.OutreachJob, events repository.EventRepositoryInterface) error {
	data, _ := json.Marshal(map[string]string{"lead_id": job.LeadID})

	// Mock handoff to the outreach provider
	if !mockSend(job) {
		_ = events.LogWorkflowEvent(job.CampaignID, model.EventOutreachFailed, 0, "provider send failed", string(data))
		return errSendFailed
	}

	return events.LogWorkflowEvent(job.CampaignID, model.EventOutreachSent, 0, "", string(data))
}

var errSendFailed = errors.New("outreach send failed")

func mockSend(job queue.OutreachJob) bool {
	return rand.Float64() < 0.9
}
