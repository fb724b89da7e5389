// internal/errors/errors.go
package appErrors

import "fmt"

// ErrCampaignNotFound is a sentinel error
type ErrCampaignNotFound struct {
	CampaignID int
}

func (e *ErrCampaignNotFound) Error() string {
	return fmt.Sprintf("campaign with ID %d not found", e.CampaignID)
}

// Helper constructor
func NewCampaignNotFound(id int) error {
	return &ErrCampaignNotFound{CampaignID: id}
}

// ErrMissingCampaignID marks a malformed trigger request. This is the only
// trigger-path fault that propagates as a hard error; everything else is a
// classified Outcome.
type ErrMissingCampaignID struct {
	Mode string
}

func (e *ErrMissingCampaignID) Error() string {
	return fmt.Sprintf("workflow trigger request (mode %s) is missing a campaign id", e.Mode)
}

func NewMissingCampaignID(mode string) error {
	return &ErrMissingCampaignID{Mode: mode}
}

// ErrIngestionUnavailable means the enrichment provider could not be read.
// Callers show a retry affordance; the review step must not crash.
type ErrIngestionUnavailable struct {
	CampaignID int
	Cause      error
}

func (e *ErrIngestionUnavailable) Error() string {
	return fmt.Sprintf("lead ingestion unavailable for campaign %d: %v", e.CampaignID, e.Cause)
}

func (e *ErrIngestionUnavailable) Unwrap() error { return e.Cause }

func NewIngestionUnavailable(campaignID int, cause error) error {
	return &ErrIngestionUnavailable{CampaignID: campaignID, Cause: cause}
}
