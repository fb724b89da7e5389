// internal/wizard/rules.go
package wizard

import (
	"strings"

	"github.com/leadforge/leadforge-backend/internal/model"
)

// Wizard steps, in order.
const (
	StepTargeting    = 1 // creating step: persists the campaign and fires the workflow
	StepLeadReview   = 2
	StepMessage      = 3
	StepSendSettings = 4 // terminal

	StepCount = 4
)

// CanAdvance reports whether the given step has its required inputs. Pure, no
// I/O. Step 1 needs the five targeting fields; step 2 needs the campaign to
// exist already. Steps 3 and 4 have no hard gate, their inputs stay optional
// until launch. A known leniency kept on purpose.
func CanAdvance(step int, draft *model.CampaignDraft, campaignID int) bool {
	switch step {
	case StepTargeting:
		for _, f := range []string{draft.Name, draft.Location, draft.Industry, draft.Seniority, draft.CompanySize} {
			if strings.TrimSpace(f) == "" {
				return false
			}
		}
		return true
	case StepLeadReview:
		return campaignID != 0
	default:
		return true
	}
}
