package service_test

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leadforge/leadforge-backend/internal/model"
	"github.com/leadforge/leadforge-backend/internal/queue"
	"github.com/leadforge/leadforge-backend/internal/service"
)

// --- Mock repositories ---

type MockCampaignRepo struct {
	status       string
	statusWrites []string
}

func (m *MockCampaignRepo) GetByID(id int) (*model.Campaign, error) {
	status := m.status
	if status == "" {
		status = "reviewing"
	}
	return &model.Campaign{ID: id, Name: "Mock", Status: status, WorkflowProgress: 40}, nil
}

func (m *MockCampaignRepo) Create(c *model.Campaign) error {
	c.ID = 999
	c.CreatedAt = time.Now()
	return nil
}

func (m *MockCampaignRepo) ListCampaigns(offset, limit int, status string) ([]*model.Campaign, int, error) {
	all := []*model.Campaign{
		{ID: 5, Name: "C5"},
		{ID: 4, Name: "C4"},
		{ID: 3, Name: "C3"},
		{ID: 2, Name: "C2"},
		{ID: 1, Name: "C1"},
	}

	start := offset
	end := offset + limit
	if start >= len(all) {
		return []*model.Campaign{}, len(all), nil
	}
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], len(all), nil
}

func (m *MockCampaignRepo) UpdateStatus(id int, status string) error {
	m.statusWrites = append(m.statusWrites, status)
	return nil
}

func (m *MockCampaignRepo) LinkSession(campaignID int, sessionID string) (string, error) {
	return sessionID, nil
}
func (m *MockCampaignRepo) UpdateSearchID(campaignID int, searchID string) error { return nil }
func (m *MockCampaignRepo) UpdateProgress(campaignID int, progress int) error    { return nil }

// MockQueue records published jobs without running subscribers
type MockQueue struct {
	mu        sync.Mutex
	published []queue.OutreachJob
	fail      bool
}

func (q *MockQueue) Publish(topic string, payload any) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.fail {
		return fmt.Errorf("queue down")
	}
	if job, ok := payload.(queue.OutreachJob); ok {
		q.published = append(q.published, job)
	}
	return nil
}

func (q *MockQueue) Subscribe(topic string, handler func(payload any) error) error { return nil }

// MockEventRepo records audit writes
type MockEventRepo struct {
	events []string
}

func (m *MockEventRepo) LogWorkflowEvent(campaignID int, eventType string, step int, message, data string) error {
	m.events = append(m.events, eventType)
	return nil
}

func (m *MockEventRepo) ListEvents(campaignID int) ([]model.WorkflowEvent, error) {
	return []model.WorkflowEvent{}, nil
}

// --- Tests ---

func TestLaunchOutreach(t *testing.T) {
	repo := &MockCampaignRepo{}
	q := &MockQueue{}
	events := &MockEventRepo{}
	svc := &service.CampaignService{CampaignRepo: repo, Queue: q, EventRepo: events}

	result, err := svc.LaunchOutreach(3, []string{"l1", "l2", "l3"})
	require.NoError(t, err)
	assert.Equal(t, 3, result.LeadsQueued)
	assert.Equal(t, "launching", result.Status)
	assert.Len(t, q.published, 3)
	assert.Equal(t, "l1", q.published[0].LeadID)
	assert.Equal(t, []string{"launching"}, repo.statusWrites)
	assert.Equal(t, []string{model.EventOutreachQueued}, events.events)
}

func TestLaunchOutreachRejectsEmptySelection(t *testing.T) {
	svc := &service.CampaignService{CampaignRepo: &MockCampaignRepo{}, Queue: &MockQueue{}}

	_, err := svc.LaunchOutreach(3, nil)
	require.Error(t, err)
}

func TestLaunchOutreachRejectsWrongStatus(t *testing.T) {
	svc := &service.CampaignService{CampaignRepo: &MockCampaignRepo{status: "active"}, Queue: &MockQueue{}}

	_, err := svc.LaunchOutreach(3, []string{"l1"})
	require.Error(t, err)
}

func TestGetProgressReadsWorkflowField(t *testing.T) {
	svc := &service.CampaignService{CampaignRepo: &MockCampaignRepo{}}

	progress, err := svc.GetProgress(3)
	require.NoError(t, err)
	assert.Equal(t, 40, progress["progress"])
	assert.Equal(t, "reviewing", progress["status"])
}

func TestPagination(t *testing.T) {
	svc := &service.CampaignService{CampaignRepo: &MockCampaignRepo{}}

	campaigns, pagination, err := svc.ListCampaigns(1, 2, "")
	require.NoError(t, err)
	assert.Len(t, campaigns, 2)
	assert.Equal(t, 5, campaigns[0].ID)
	assert.Equal(t, 5, pagination["total_count"])
	assert.Equal(t, 3, pagination["total_pages"])

	campaigns, _, err = svc.ListCampaigns(3, 2, "")
	require.NoError(t, err)
	assert.Len(t, campaigns, 1)
	assert.Equal(t, 1, campaigns[0].ID)

	// Out-of-range page returns an empty slice, not an error.
	campaigns, _, err = svc.ListCampaigns(9, 2, "")
	require.NoError(t, err)
	assert.Empty(t, campaigns)
}
