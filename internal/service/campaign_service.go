// internal/service/campaign_service.go
package service

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/leadforge/leadforge-backend/internal/model"
	"github.com/leadforge/leadforge-backend/internal/queue"
	"github.com/leadforge/leadforge-backend/internal/repository"
)

type CampaignService struct {
	CampaignRepo repository.CampaignRepositoryInterface
	EventRepo    repository.EventRepositoryInterface
	Queue        queue.Queue
	DB           *sql.DB // stats aggregation queries
}

// Result struct for LaunchOutreach
type LaunchOutreachResult struct {
	CampaignID  int      `json:"campaign_id"`
	LeadsQueued int      `json:"leads_queued"`
	Status      string   `json:"status"`
	LeadIDs     []string `json:"lead_ids"`
}

type CampaignDetails struct {
	ID               int            `json:"id"`
	Name             string         `json:"name"`
	Location         string         `json:"location"`
	Industry         string         `json:"industry"`
	Seniority        string         `json:"seniority"`
	CompanySize      string         `json:"company_size"`
	Status           string         `json:"status"`
	SessionID        *string        `json:"session_id,omitempty"`
	SearchID         *string        `json:"search_id,omitempty"`
	WorkflowProgress int            `json:"workflow_progress"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        *time.Time     `json:"updated_at"`
	Stats            map[string]int `json:"stats"`
}

// LaunchOutreach queues the selected leads for sending and moves the
// campaign to launching. Selection comes from the review step; an empty
// selection is rejected rather than silently launching nothing.
func (s *CampaignService) LaunchOutreach(campaignID int, leadIDs []string) (*LaunchOutreachResult, error) {
	campaign, err := s.CampaignRepo.GetByID(campaignID)
	if err != nil {
		return nil, err
	}

	if campaign.Status != "draft" && campaign.Status != "reviewing" && campaign.Status != "launching" {
		return nil, fmt.Errorf("campaign cannot launch outreach in status: %s", campaign.Status)
	}
	if len(leadIDs) == 0 {
		return nil, fmt.Errorf("no leads selected for outreach")
	}

	result := &LaunchOutreachResult{
		CampaignID:  campaignID,
		LeadsQueued: 0,
		Status:      "launching",
		LeadIDs:     []string{},
	}

	for _, leadID := range leadIDs {
		job := queue.OutreachJob{CampaignID: campaignID, LeadID: leadID}
		if err := s.Queue.Publish("outreach_sends", job); err != nil {
			log.Println("⚠️ failed to enqueue outreach for lead", leadID, ":", err)
			continue
		}
		result.LeadIDs = append(result.LeadIDs, leadID)
		result.LeadsQueued++
	}

	if s.EventRepo != nil {
		if err := s.EventRepo.LogWorkflowEvent(campaignID, model.EventOutreachQueued, 0,
			fmt.Sprintf("%d leads queued", result.LeadsQueued), ""); err != nil {
			log.Println("⚠️ failed to log outreach_queued event:", err)
		}
	}

	if campaign.Status != "launching" {
		if err := s.CampaignRepo.UpdateStatus(campaignID, "launching"); err != nil {
			return result, err
		}
	}

	return result, nil
}

// ListCampaigns fetches campaigns with pagination
func (s *CampaignService) ListCampaigns(page, pageSize int, status string) ([]model.Campaign, map[string]int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	offset := (page - 1) * pageSize

	ptrs, total, err := s.CampaignRepo.ListCampaigns(offset, pageSize, status)
	if err != nil {
		return nil, nil, err
	}

	campaigns := make([]model.Campaign, len(ptrs))
	for i, c := range ptrs {
		campaigns[i] = *c
	}

	totalPages := (total + pageSize - 1) / pageSize
	pagination := map[string]int{
		"page":        page,
		"page_size":   pageSize,
		"total_count": total,
		"total_pages": totalPages,
	}

	return campaigns, pagination, nil
}

// GetCampaignDetails fetches a campaign by ID
func (s *CampaignService) GetCampaignDetails(id int) (*model.Campaign, error) {
	return s.CampaignRepo.GetByID(id)
}

// GetProgress reads the workflow-progress field maintained by the external
// workflow, for the review screen to poll. Real status, not a simulated
// client-side timer.
func (s *CampaignService) GetProgress(campaignID int) (map[string]interface{}, error) {
	campaign, err := s.CampaignRepo.GetByID(campaignID)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"campaign_id": campaign.ID,
		"status":      campaign.Status,
		"progress":    campaign.WorkflowProgress,
	}, nil
}

func (s *CampaignService) GetCampaignDetailsWithStats(campaignID int) (*CampaignDetails, error) {
	campaign, err := s.CampaignRepo.GetByID(campaignID)
	if err != nil {
		log.Println("Failed to fetch campaign:", err)
		return nil, err
	}

	// Outreach counts by event type
	query := `
        SELECT event_type, COUNT(*)
        FROM workflow_events
        WHERE campaign_id = $1 AND event_type IN ($2, $3, $4)
        GROUP BY event_type
    `
	rows, err := s.DB.Query(query, campaignID,
		model.EventOutreachQueued, model.EventOutreachSent, model.EventOutreachFailed)
	if err != nil {
		log.Println("Failed to query workflow events:", err)
		return nil, err
	}
	defer rows.Close()

	stats := map[string]int{
		"total":  0,
		"queued": 0,
		"sent":   0,
		"failed": 0,
	}
	byType := map[string]string{
		model.EventOutreachQueued: "queued",
		model.EventOutreachSent:   "sent",
		model.EventOutreachFailed: "failed",
	}

	for rows.Next() {
		var eventType string
		var count int
		if err := rows.Scan(&eventType, &count); err != nil {
			log.Println("Failed to scan row:", err)
			return nil, err
		}
		if key, ok := byType[eventType]; ok {
			stats[key] = count
		}
		stats["total"] += count
	}

	return &CampaignDetails{
		ID:               campaign.ID,
		Name:             campaign.Name,
		Location:         campaign.Location,
		Industry:         campaign.Industry,
		Seniority:        campaign.Seniority,
		CompanySize:      campaign.CompanySize,
		Status:           campaign.Status,
		SessionID:        campaign.SessionID,
		SearchID:         campaign.SearchID,
		WorkflowProgress: campaign.WorkflowProgress,
		CreatedAt:        campaign.CreatedAt,
		UpdatedAt:        campaign.UpdatedAt,
		Stats:            stats,
	}, nil
}
