package leads_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/leadforge/leadforge-backend/internal/errors"
	"github.com/leadforge/leadforge-backend/internal/leads"
	"github.com/leadforge/leadforge-backend/internal/model"
)

type stubCampaigns struct {
	searchID *string
}

func (s *stubCampaigns) GetByID(id int) (*model.Campaign, error) {
	return &model.Campaign{ID: id, SearchID: s.searchID}, nil
}

func strPtr(s string) *string { return &s }

func TestFetchLeadsToleratesMissingOptionalFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/searches/srch-1/leads", r.URL.Path)
		w.Write([]byte(`{
			"leads": [
				{"id": "a", "name": "Ada King", "company": "Analytical", "email": "ada@analytical.io"},
				{"id": "b", "name": "Grace Hopper", "company": "Navy Labs", "email": "grace@navy.mil",
				 "title": "Director", "score": 88, "verification_status": "verified",
				 "enrichment": {"tech_stack": "COBOL"}}
			],
			"has_more": true,
			"next_token": "page-2",
			"total": 12
		}`))
	}))
	defer srv.Close()

	c := leads.NewClient(srv.URL, &stubCampaigns{searchID: strPtr("srch-1")})
	page, err := c.FetchLeads(context.Background(), 9, "")
	require.NoError(t, err)

	require.Len(t, page.Leads, 2)
	assert.True(t, page.HasMore)
	assert.Equal(t, "page-2", page.NextToken)
	assert.Equal(t, 12, page.Total)

	// Optional fields come back as empty strings, never an error.
	first := page.Leads[0]
	assert.Equal(t, "a", first.ID)
	assert.Equal(t, "", first.Title)
	assert.Equal(t, "", first.VerificationStatus)
	assert.Equal(t, "", first.OutreachCopy)
	assert.Equal(t, float64(0), first.Score)

	second := page.Leads[1]
	assert.Equal(t, float64(88), second.Score)
	assert.Equal(t, "COBOL", second.Enrichment["tech_stack"])
}

func TestFetchLeadsPassesPageToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "page-2", r.URL.Query().Get("page_token"))
		w.Write([]byte(`{"leads": [], "has_more": false, "total": 12}`))
	}))
	defer srv.Close()

	c := leads.NewClient(srv.URL, &stubCampaigns{searchID: strPtr("srch-1")})
	page, err := c.FetchLeads(context.Background(), 9, "page-2")
	require.NoError(t, err)
	assert.False(t, page.HasMore)
}

func TestFetchLeadsWithoutSearchIDYieldsEmptyPage(t *testing.T) {
	c := leads.NewClient("http://localhost:1", &stubCampaigns{searchID: nil})

	page, err := c.FetchLeads(context.Background(), 9, "")
	require.NoError(t, err, "enrichment not started is not a failure")
	assert.Empty(t, page.Leads)
	assert.False(t, page.HasMore)
}

func TestFetchLeadsProviderFailureIsIngestionUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := leads.NewClient(srv.URL, &stubCampaigns{searchID: strPtr("srch-1")})
	_, err := c.FetchLeads(context.Background(), 9, "")
	require.Error(t, err)
	var unavailable *appErrors.ErrIngestionUnavailable
	assert.ErrorAs(t, err, &unavailable)
}
