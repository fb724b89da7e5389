package leads_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/leadforge/leadforge-backend/internal/leads"
	"github.com/leadforge/leadforge-backend/internal/model"
)

func scoredLeads() *leads.Page {
	return &leads.Page{Leads: []model.EnrichedLead{
		{ID: "l1", Name: "Ada King", Company: "Analytical", Title: "CTO", Email: "ada@analytical.io", Score: 55},
		{ID: "l2", Name: "Grace Hopper", Company: "Navy Labs", Title: "Director", Email: "grace@navy.mil", Score: 60},
		{ID: "l3", Name: "Alan Kay", Company: "PARC", Title: "Researcher", Email: "alan@parc.com", Score: 79},
		{ID: "l4", Name: "Barbara Liskov", Company: "MIT", Title: "Professor", Email: "liskov@mit.edu", Score: 80},
		{ID: "l5", Name: "Donald Knuth", Company: "Stanford", Title: "Professor", Email: "knuth@stanford.edu", Score: 95},
	}}
}

func visibleScores(rs *leads.ReviewSet) []float64 {
	scores := []float64{}
	for _, l := range rs.Visible() {
		scores = append(scores, l.Score)
	}
	return scores
}

func TestScoreBandBoundaries(t *testing.T) {
	rs := leads.NewReviewSet()
	rs.AddPage(scoredLeads())

	rs.SetScoreBand(model.ScoreBandMedium)
	assert.Equal(t, []float64{60, 79}, visibleScores(rs))

	rs.SetScoreBand(model.ScoreBandHigh)
	assert.Equal(t, []float64{80, 95}, visibleScores(rs))

	rs.SetScoreBand(model.ScoreBandLow)
	assert.Equal(t, []float64{55}, visibleScores(rs))

	rs.SetScoreBand("")
	assert.Len(t, rs.Visible(), 5)
}

func TestTextFilterMatchesAcrossFields(t *testing.T) {
	rs := leads.NewReviewSet()
	rs.AddPage(scoredLeads())

	// Name, case-insensitive substring.
	rs.SetTextFilter("ada")
	assert.Equal(t, []float64{55}, visibleScores(rs))

	// Company.
	rs.SetTextFilter("parc")
	assert.Equal(t, []float64{79}, visibleScores(rs))

	// Title matches two.
	rs.SetTextFilter("professor")
	assert.Equal(t, []float64{80, 95}, visibleScores(rs))

	// Email.
	rs.SetTextFilter("navy.mil")
	assert.Equal(t, []float64{60}, visibleScores(rs))
}

func TestFiltersCombineWithAnd(t *testing.T) {
	rs := leads.NewReviewSet()
	rs.AddPage(scoredLeads())

	rs.SetTextFilter("professor")
	rs.SetScoreBand(model.ScoreBandHigh)
	assert.Equal(t, []float64{80, 95}, visibleScores(rs))

	rs.SetScoreBand(model.ScoreBandLow)
	assert.Empty(t, rs.Visible())
}

func TestSelectionSurvivesFilterChanges(t *testing.T) {
	rs := leads.NewReviewSet()
	rs.AddPage(scoredLeads())

	rs.ToggleSelect("l1") // Ada, score 55

	// Filter Ada out.
	rs.SetTextFilter("professor")
	for _, l := range rs.Visible() {
		assert.NotEqual(t, "l1", l.ID)
	}

	// Clearing the filter brings the selection back into view.
	rs.SetTextFilter("")
	assert.True(t, rs.IsSelected("l1"))
	assert.Equal(t, []string{"l1"}, rs.SelectedIDs())
}

func TestSelectAllOperatesOnFilteredViewOnly(t *testing.T) {
	rs := leads.NewReviewSet()
	rs.AddPage(scoredLeads())

	rs.ToggleSelect("l1")

	rs.SetScoreBand(model.ScoreBandHigh)
	rs.SelectAllVisible()

	rs.SetScoreBand("")
	assert.ElementsMatch(t, []string{"l1", "l4", "l5"}, rs.SelectedIDs(),
		"select-all must add only the visible leads and keep the prior selection")

	// Deselect-all is likewise scoped to the filtered view.
	rs.SetScoreBand(model.ScoreBandHigh)
	rs.DeselectAllVisible()
	rs.SetScoreBand("")
	assert.Equal(t, []string{"l1"}, rs.SelectedIDs())
}

func TestToggleSelect(t *testing.T) {
	rs := leads.NewReviewSet()
	rs.AddPage(scoredLeads())

	rs.ToggleSelect("l2")
	assert.True(t, rs.IsSelected("l2"))
	rs.ToggleSelect("l2")
	assert.False(t, rs.IsSelected("l2"))
}
