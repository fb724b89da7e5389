// internal/controller/campaign_controller.go
package controller

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/streadway/amqp"

	appErrors "github.com/leadforge/leadforge-backend/internal/errors"
	"github.com/leadforge/leadforge-backend/internal/leads"
	"github.com/leadforge/leadforge-backend/internal/queue"
	"github.com/leadforge/leadforge-backend/internal/service"
)

type CampaignController struct {
	CampaignService *service.CampaignService
	Leads           *leads.Client
	AMQPURL         string
}

func (c *CampaignController) ListCampaigns(w http.ResponseWriter, r *http.Request) {
	// Parse query parameters
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
	status := r.URL.Query().Get("status")

	// Default values if missing
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	campaigns, pagination, err := c.CampaignService.ListCampaigns(page, pageSize, status)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"data":       campaigns,
		"pagination": pagination,
	})
}

func (c *CampaignController) GetCampaignDetails(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "id")
	id, _ := strconv.Atoi(idStr)

	details, err := c.CampaignService.GetCampaignDetailsWithStats(id)
	if err != nil {
		var notFound *appErrors.ErrCampaignNotFound
		if errors.As(err, &notFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode(details)
}

// GetProgress serves the polling endpoint the review screen refreshes
// against while enrichment runs.
func (c *CampaignController) GetProgress(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "id")
	id, _ := strconv.Atoi(idStr)

	progress, err := c.CampaignService.GetProgress(id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode(progress)
}

// GetLeads pulls one page of enriched leads for the review step. An
// ingestion failure maps to 503 so the client can show a retry affordance.
func (c *CampaignController) GetLeads(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "id")
	id, _ := strconv.Atoi(idStr)
	pageToken := r.URL.Query().Get("page_token")

	page, err := c.Leads.FetchLeads(r.Context(), id, pageToken)
	if err != nil {
		var unavailable *appErrors.ErrIngestionUnavailable
		if errors.As(err, &unavailable) {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode(page)
}

func (c *CampaignController) LaunchOutreach(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "id")
	id, _ := strconv.Atoi(idStr)

	var body struct {
		LeadIDs []string `json:"lead_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	// Queue outreach via service
	result, err := c.CampaignService.LaunchOutreach(id, body.LeadIDs)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	// Connect to RabbitMQ
	conn, err := amqp.Dial(c.AMQPURL)
	if err != nil {
		http.Error(w, "Failed to connect to queue", http.StatusInternalServerError)
		return
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		http.Error(w, "Failed to open queue channel", http.StatusInternalServerError)
		return
	}
	defer ch.Close()

	q, err := ch.QueueDeclare(
		"outreach_sends",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		http.Error(w, "Failed to declare queue", http.StatusInternalServerError)
		return
	}

	// Publish each job to the queue
	for _, leadID := range result.LeadIDs {
		job, _ := json.Marshal(queue.OutreachJob{CampaignID: id, LeadID: leadID})
		err = ch.Publish(
			"",
			q.Name,
			false,
			false,
			amqp.Publishing{
				ContentType: "application/json",
				Body:        job,
			},
		)
		if err != nil {
			log.Println("Failed to publish job:", err)
		}
	}

	// Return JSON response
	json.NewEncoder(w).Encode(map[string]interface{}{
		"campaign_id":  result.CampaignID,
		"leads_queued": result.LeadsQueued,
		"status":       result.Status,
	})
}
