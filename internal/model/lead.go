// internal/model/lead.go
package model

// EnrichedLead is a prospect record produced by the external enrichment
// provider. Pulled read-only; never mutated locally except for the ephemeral
// selection flag held in the review session.
type EnrichedLead struct {
	ID                 string            `json:"id"`
	Name               string            `json:"name"`
	Title              string            `json:"title"`
	Company            string            `json:"company"`
	Email              string            `json:"email"`
	Score              float64           `json:"score"` // 0-100
	VerificationStatus string            `json:"verification_status"`
	LinkedInURL        string            `json:"linkedin_url"`
	CompanyURL         string            `json:"company_url"`
	OutreachCopy       string            `json:"outreach_copy"`
	Enrichment         map[string]string `json:"enrichment,omitempty"`
}

// Score bands used by the review filter.
const (
	ScoreBandLow    = "low"    // < 60
	ScoreBandMedium = "medium" // 60-79
	ScoreBandHigh   = "high"   // >= 80
)
