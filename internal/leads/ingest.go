// internal/leads/ingest.go
package leads

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	appErrors "github.com/leadforge/leadforge-backend/internal/errors"
	"github.com/leadforge/leadforge-backend/internal/model"
)

// CampaignGetter resolves the campaign row holding the enrichment search id.
type CampaignGetter interface {
	GetByID(id int) (*model.Campaign, error)
}

// Page is one page of enriched leads pulled from the provider.
type Page struct {
	Leads     []model.EnrichedLead `json:"leads"`
	HasMore   bool                 `json:"has_more"`
	NextToken string               `json:"next_token,omitempty"`
	Total     int                  `json:"total"`
}

// Client reads enriched leads from the external provider's paginated
// endpoint, keyed by the search id stored on the campaign record.
type Client struct {
	BaseURL   string
	Campaigns CampaignGetter
	HTTP      *http.Client
}

func NewClient(baseURL string, campaigns CampaignGetter) *Client {
	return &Client{
		BaseURL:   baseURL,
		Campaigns: campaigns,
		HTTP:      &http.Client{Timeout: 15 * time.Second},
	}
}

// wireLead mirrors the provider's record shape. Everything except id, name,
// company and email is optional; absent fields decode to empty strings.
type wireLead struct {
	ID                 string            `json:"id"`
	Name               string            `json:"name"`
	Title              string            `json:"title"`
	Company            string            `json:"company"`
	Email              string            `json:"email"`
	Score              float64           `json:"score"`
	VerificationStatus string            `json:"verification_status"`
	LinkedInURL        string            `json:"linkedin_url"`
	CompanyURL         string            `json:"company_url"`
	OutreachCopy       string            `json:"outreach_copy"`
	Enrichment         map[string]string `json:"enrichment"`
}

type wirePage struct {
	Leads     []wireLead `json:"leads"`
	HasMore   bool       `json:"has_more"`
	NextToken string     `json:"next_token"`
	Total     int        `json:"total"`
}

// FetchLeads pulls one page for the campaign. A campaign with no search id
// yet (enrichment still running) yields an empty page, not an error. Any
// provider failure classifies as IngestionUnavailable so the review step can
// offer a retry instead of crashing.
func (c *Client) FetchLeads(ctx context.Context, campaignID int, pageToken string) (*Page, error) {
	campaign, err := c.Campaigns.GetByID(campaignID)
	if err != nil {
		return nil, err
	}
	if campaign.SearchID == nil || *campaign.SearchID == "" {
		return &Page{Leads: []model.EnrichedLead{}}, nil
	}

	endpoint := fmt.Sprintf("%s/searches/%s/leads", c.BaseURL, url.PathEscape(*campaign.SearchID))
	if pageToken != "" {
		endpoint += "?page_token=" + url.QueryEscape(pageToken)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, appErrors.NewIngestionUnavailable(campaignID, err)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, appErrors.NewIngestionUnavailable(campaignID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, appErrors.NewIngestionUnavailable(campaignID, fmt.Errorf("provider returned HTTP %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, appErrors.NewIngestionUnavailable(campaignID, err)
	}

	var wp wirePage
	if err := json.Unmarshal(body, &wp); err != nil {
		return nil, appErrors.NewIngestionUnavailable(campaignID, err)
	}

	page := &Page{
		Leads:     make([]model.EnrichedLead, 0, len(wp.Leads)),
		HasMore:   wp.HasMore,
		NextToken: wp.NextToken,
		Total:     wp.Total,
	}
	for _, wl := range wp.Leads {
		page.Leads = append(page.Leads, normalize(wl))
	}
	return page, nil
}

func normalize(wl wireLead) model.EnrichedLead {
	return model.EnrichedLead{
		ID:                 wl.ID,
		Name:               wl.Name,
		Title:              wl.Title,
		Company:            wl.Company,
		Email:              wl.Email,
		Score:              wl.Score,
		VerificationStatus: wl.VerificationStatus,
		LinkedInURL:        wl.LinkedInURL,
		CompanyURL:         wl.CompanyURL,
		OutreachCopy:       wl.OutreachCopy,
		Enrichment:         wl.Enrichment,
	}
}
