package repository

import (
	"database/sql"
	"fmt"
	"time"

	appErrors "github.com/leadforge/leadforge-backend/internal/errors"
	"github.com/leadforge/leadforge-backend/internal/model"
)

type CampaignRepositoryInterface interface {
	// Campaign CRUD
	ListCampaigns(offset, limit int, status string) ([]*model.Campaign, int, error)
	GetByID(id int) (*model.Campaign, error)
	UpdateStatus(campaignID int, status string) error
	Create(c *model.Campaign) error

	// Workflow bookkeeping
	LinkSession(campaignID int, sessionID string) (string, error)
	UpdateSearchID(campaignID int, searchID string) error
	UpdateProgress(campaignID int, progress int) error
}

type CampaignRepository struct {
	DB *sql.DB
}

// ====================== Campaign CRUD ======================

func (r *CampaignRepository) Create(c *model.Campaign) error {
	c.CreatedAt = time.Now()
	if c.Status == "" {
		c.Status = "draft"
	}
	query := `
        INSERT INTO campaigns
            (name, location, industry, seniority, company_size, description,
             message_template, follow_up_template, daily_limit, send_schedule,
             sending_account, status, workflow_progress, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, 0, $13)
        RETURNING id
    `
	return r.DB.QueryRow(query,
		c.Name, c.Location, c.Industry, c.Seniority, c.CompanySize, c.Description,
		c.MessageTemplate, c.FollowUpTemplate, c.DailyLimit, c.SendSchedule,
		c.SendingAccount, c.Status, c.CreatedAt,
	).Scan(&c.ID)
}

func (r *CampaignRepository) UpdateStatus(campaignID int, status string) error {
	query := `UPDATE campaigns SET status=$1, updated_at=$2 WHERE id=$3`
	_, err := r.DB.Exec(query, status, time.Now(), campaignID)
	return err
}

func (r *CampaignRepository) GetByID(id int) (*model.Campaign, error) {
	query := `
        SELECT id, name, location, industry, seniority, company_size, description,
               message_template, follow_up_template, daily_limit, send_schedule,
               sending_account, status, session_id, search_id, workflow_progress,
               created_at, updated_at
        FROM campaigns WHERE id=$1
    `
	var c model.Campaign
	err := r.DB.QueryRow(query, id).Scan(
		&c.ID, &c.Name, &c.Location, &c.Industry, &c.Seniority, &c.CompanySize,
		&c.Description, &c.MessageTemplate, &c.FollowUpTemplate, &c.DailyLimit,
		&c.SendSchedule, &c.SendingAccount, &c.Status, &c.SessionID, &c.SearchID,
		&c.WorkflowProgress, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NewCampaignNotFound(id)
		}
		return nil, err
	}
	return &c, nil
}

func (r *CampaignRepository) ListCampaigns(offset, limit int, status string) ([]*model.Campaign, int, error) {
	campaigns := []*model.Campaign{}
	query := `
        SELECT id, name, location, industry, seniority, company_size, description,
               message_template, follow_up_template, daily_limit, send_schedule,
               sending_account, status, session_id, search_id, workflow_progress,
               created_at, updated_at
        FROM campaigns WHERE 1=1`
	args := []interface{}{}
	argPos := 1

	if status != "" {
		query += fmt.Sprintf(" AND status=$%d", argPos)
		args = append(args, status)
		argPos++
	}

	query += fmt.Sprintf(" ORDER BY id DESC LIMIT $%d OFFSET $%d", argPos, argPos+1)
	args = append(args, limit, offset)

	rows, err := r.DB.Query(query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	for rows.Next() {
		c := &model.Campaign{}
		if err := rows.Scan(
			&c.ID, &c.Name, &c.Location, &c.Industry, &c.Seniority, &c.CompanySize,
			&c.Description, &c.MessageTemplate, &c.FollowUpTemplate, &c.DailyLimit,
			&c.SendSchedule, &c.SendingAccount, &c.Status, &c.SessionID, &c.SearchID,
			&c.WorkflowProgress, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, 0, err
		}
		campaigns = append(campaigns, c)
	}

	// Count total
	countQuery := `SELECT COUNT(*) FROM campaigns WHERE 1=1`
	argsCount := []interface{}{}
	if status != "" {
		countQuery += " AND status=$1"
		argsCount = append(argsCount, status)
	}

	var total int
	if err := r.DB.QueryRow(countQuery, argsCount...).Scan(&total); err != nil {
		return nil, 0, err
	}

	return campaigns, total, nil
}

// ====================== Workflow bookkeeping ======================

// LinkSession writes sessionID onto the campaign row only if no session is
// linked yet (first write wins), then reads back whichever id won. Two chat
// panels opened at once therefore converge on one session.
func (r *CampaignRepository) LinkSession(campaignID int, sessionID string) (string, error) {
	_, err := r.DB.Exec(
		`UPDATE campaigns SET session_id=$1, updated_at=NOW() WHERE id=$2 AND session_id IS NULL`,
		sessionID, campaignID,
	)
	if err != nil {
		return "", err
	}

	var linked sql.NullString
	err = r.DB.QueryRow(`SELECT session_id FROM campaigns WHERE id=$1`, campaignID).Scan(&linked)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", appErrors.NewCampaignNotFound(campaignID)
		}
		return "", err
	}
	if !linked.Valid {
		return "", fmt.Errorf("session link for campaign %d did not persist", campaignID)
	}
	return linked.String, nil
}

func (r *CampaignRepository) UpdateSearchID(campaignID int, searchID string) error {
	query := `UPDATE campaigns SET search_id=$1, updated_at=NOW() WHERE id=$2`
	_, err := r.DB.Exec(query, searchID, campaignID)
	return err
}

func (r *CampaignRepository) UpdateProgress(campaignID int, progress int) error {
	query := `UPDATE campaigns SET workflow_progress=$1, updated_at=NOW() WHERE id=$2`
	_, err := r.DB.Exec(query, progress, campaignID)
	return err
}

var _ CampaignRepositoryInterface = (*CampaignRepository)(nil)
