package workflow

import (
	"strings"
	"time"

	"github.com/kendall-kelly/prepress-orders-api/models"
)

// ResolutionInput is the payload required when a claim is resolved or rejected
type ResolutionInput struct {
	Action  string
	Details string
}

// ApplyClaimStatus moves a claim to status. Resolved and Rejected require a resolution
// action and (re)write the resolution record; any other status clears it.
// Nothing is mutated when validation fails.
func ApplyClaimStatus(claim *models.Claim, status models.ClaimStatus, resolverID uint, input *ResolutionInput, now time.Time) error {
	if !status.IsValid() {
		return Validation("unknown claim status %q", status)
	}

	if !status.RequiresResolution() {
		claim.Status = status
		claim.Resolution = nil
		return nil
	}

	if input == nil || strings.TrimSpace(input.Action) == "" {
		return Validation("resolution action is required when status is %s", status)
	}

	claim.Status = status
	claim.Resolution = &models.Resolution{
		Action:     strings.TrimSpace(input.Action),
		Details:    input.Details,
		Date:       now,
		ResolvedBy: resolverID,
	}
	return nil
}

// AssignClaim hands the claim to an employee, promoting Submitted to Under Review
func AssignClaim(claim *models.Claim, staffID uint) {
	id := staffID
	claim.AssignedToID = &id
	if claim.Status == models.ClaimSubmitted {
		claim.Status = models.ClaimUnderReview
	}
}

// ClaimResolutionConsistent reports whether the resolution record matches the status
func ClaimResolutionConsistent(claim *models.Claim) bool {
	return (claim.Resolution != nil) == claim.Status.RequiresResolution()
}
