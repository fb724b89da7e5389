// internal/leads/filter.go
package leads

import (
	"strings"

	"github.com/leadforge/leadforge-backend/internal/model"
)

// ReviewSet holds the leads pulled for review plus the filter and selection
// state of the session. Selection is a set of lead ids kept independently of
// the filters: hiding a selected lead does not deselect it.
type ReviewSet struct {
	leads      []model.EnrichedLead
	textFilter string
	scoreBand  string // "", low, medium, high
	selected   map[string]bool
}

func NewReviewSet() *ReviewSet {
	return &ReviewSet{
		leads:    []model.EnrichedLead{},
		selected: map[string]bool{},
	}
}

// AddPage appends a fetched page of leads.
func (rs *ReviewSet) AddPage(page *Page) {
	rs.leads = append(rs.leads, page.Leads...)
}

func (rs *ReviewSet) Len() int { return len(rs.leads) }

// SetTextFilter sets the free-text filter; matching is recomputed on the next
// Visible call.
func (rs *ReviewSet) SetTextFilter(q string) {
	rs.textFilter = strings.TrimSpace(q)
}

// SetScoreBand sets the score-band filter ("" clears it).
func (rs *ReviewSet) SetScoreBand(band string) {
	rs.scoreBand = band
}

// BandFor maps a score to its band: low <60, medium 60-79, high >=80.
func BandFor(score float64) string {
	switch {
	case score >= 80:
		return model.ScoreBandHigh
	case score >= 60:
		return model.ScoreBandMedium
	default:
		return model.ScoreBandLow
	}
}

// Visible returns the leads passing both filters, in fetch order.
func (rs *ReviewSet) Visible() []model.EnrichedLead {
	out := []model.EnrichedLead{}
	for _, l := range rs.leads {
		if rs.matches(l) {
			out = append(out, l)
		}
	}
	return out
}

func (rs *ReviewSet) matches(l model.EnrichedLead) bool {
	if rs.scoreBand != "" && BandFor(l.Score) != rs.scoreBand {
		return false
	}
	if rs.textFilter == "" {
		return true
	}
	q := strings.ToLower(rs.textFilter)
	for _, field := range []string{l.Name, l.Company, l.Title, l.Email} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

// ====================== Selection ======================

func (rs *ReviewSet) ToggleSelect(id string) {
	if rs.selected[id] {
		delete(rs.selected, id)
	} else {
		rs.selected[id] = true
	}
}

func (rs *ReviewSet) IsSelected(id string) bool {
	return rs.selected[id]
}

// SelectAllVisible selects every lead in the currently filtered view. Leads
// hidden by the filters are left untouched.
func (rs *ReviewSet) SelectAllVisible() {
	for _, l := range rs.Visible() {
		rs.selected[l.ID] = true
	}
}

// DeselectAllVisible clears selection for the filtered view only.
func (rs *ReviewSet) DeselectAllVisible() {
	for _, l := range rs.Visible() {
		delete(rs.selected, l.ID)
	}
}

// SelectedIDs returns all selected ids across the full set, in fetch order.
func (rs *ReviewSet) SelectedIDs() []string {
	ids := []string{}
	for _, l := range rs.leads {
		if rs.selected[l.ID] {
			ids = append(ids, l.ID)
		}
	}
	return ids
}
