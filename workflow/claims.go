package workflow

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/kendall-kelly/prepress-orders-api/models"
	"go.uber.org/zap"
)

// CreateClaimInput is what a client files against one of their orders
type CreateClaimInput struct {
	OrderID     uint
	Title       string
	Description string
	ClaimType   models.ClaimType
	Severity    models.Severity
}

func (in *CreateClaimInput) validate() error {
	var problems []string
	if in.OrderID == 0 {
		problems = append(problems, "order id is required")
	}
	if strings.TrimSpace(in.Title) == "" {
		problems = append(problems, "title is required")
	}
	if strings.TrimSpace(in.Description) == "" {
		problems = append(problems, "description is required")
	}
	if !in.ClaimType.IsValid() {
		problems = append(problems, fmt.Sprintf("claim type %q is invalid", in.ClaimType))
	}
	if in.Severity == "" {
		in.Severity = models.SeverityMedium
	}
	if !in.Severity.IsValid() {
		problems = append(problems, fmt.Sprintf("severity %q is invalid", in.Severity))
	}
	if len(problems) > 0 {
		return Validation("%s", strings.Join(problems, "; "))
	}
	return nil
}

// CreateClaim files a claim against an order owned by the calling client
func (e *Engine) CreateClaim(ctx context.Context, actor Actor, in CreateClaimInput) (*models.Claim, error) {
	if actor.Role != models.RoleClient {
		return nil, NotAuthorized("%s is not allowed to file claims", roleLabel(actor.Role))
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	order, err := e.store.FindOrder(ctx, in.OrderID)
	if err != nil {
		return nil, err
	}
	if err := Authorize(actor, ActionCreate, claimFilingSubject(order)); err != nil {
		return nil, err
	}

	now := e.now()
	claim := &models.Claim{
		ClaimNumber: NewClaimNumber(e.claimPrefix, now),
		OrderID:     order.ID,
		ClientID:    actor.ID,
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		ClaimType:   in.ClaimType,
		Severity:    in.Severity,
		Status:      models.ClaimSubmitted,
	}
	e.recorder.Append(claim, ActionClaimCreated, actor,
		fmt.Sprintf("Claim submitted for order %s", order.OrderNumber))

	if err := e.store.CreateClaim(ctx, claim); err != nil {
		e.log.Error("failed to create claim", append(actorFields(actor), zap.Error(err))...)
		return nil, fmt.Errorf("failed to create claim: %w", err)
	}

	e.log.Info("claim created", append(actorFields(actor),
		zap.Uint("claim_id", claim.ID),
		zap.String("claim_number", claim.ClaimNumber),
		zap.Uint("order_id", order.ID))...)
	return claim, nil
}

// GetClaim returns a claim the actor is allowed to view
func (e *Engine) GetClaim(ctx context.Context, actor Actor, id uint) (*models.Claim, error) {
	claim, err := e.store.FindClaim(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := Authorize(actor, ActionView, ClaimSubject(claim)); err != nil {
		return nil, err
	}
	return claim, nil
}

// ListClaims returns the page of claims visible to the actor
func (e *Engine) ListClaims(ctx context.Context, actor Actor, filter ClaimFilter) (PageResult[models.Claim], error) {
	if !actor.Role.IsValid() {
		return PageResult[models.Claim]{}, NotAuthorized("not authorized to list claims")
	}
	filter.Page = e.normalizePage(filter.Page)

	claims, total, err := e.store.ListClaims(ctx, scopeFor(actor), filter)
	if err != nil {
		return PageResult[models.Claim]{}, fmt.Errorf("failed to list claims: %w", err)
	}
	return newPageResult(claims, total, filter.Page), nil
}

// ClaimUpdate is a typed partial update; nil fields are left unchanged
type ClaimUpdate struct {
	Title       *string
	Description *string
	Severity    *models.Severity
	ClaimType   *models.ClaimType
	Protected   []string
}

// Fields lists the names of the fields the update sets, protected ones first
func (u ClaimUpdate) Fields() []string {
	fields := slices.Clone(u.Protected)
	if u.Title != nil {
		fields = append(fields, "title")
	}
	if u.Description != nil {
		fields = append(fields, "description")
	}
	if u.Severity != nil {
		fields = append(fields, "severity")
	}
	if u.ClaimType != nil {
		fields = append(fields, "claim_type")
	}
	return fields
}

func (u ClaimUpdate) validate() error {
	switch {
	case u.Title != nil && strings.TrimSpace(*u.Title) == "":
		return Validation("title cannot be empty")
	case u.Description != nil && strings.TrimSpace(*u.Description) == "":
		return Validation("description cannot be empty")
	case u.Severity != nil && !u.Severity.IsValid():
		return Validation("severity %q is invalid", *u.Severity)
	case u.ClaimType != nil && !u.ClaimType.IsValid():
		return Validation("claim type %q is invalid", *u.ClaimType)
	}
	return nil
}

// UpdateClaim applies a role-restricted partial update
func (e *Engine) UpdateClaim(ctx context.Context, actor Actor, id uint, update ClaimUpdate) (*models.Claim, error) {
	claim, err := e.store.FindClaim(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := Authorize(actor, ActionUpdate, ClaimSubject(claim)); err != nil {
		return nil, err
	}
	fields := update.Fields()
	if len(fields) == 0 {
		return nil, Validation("no updatable fields provided")
	}
	if err := AuthorizeFields(actor, KindClaim, fields); err != nil {
		return nil, err
	}
	if err := update.validate(); err != nil {
		return nil, err
	}

	if update.Title != nil {
		claim.Title = strings.TrimSpace(*update.Title)
	}
	if update.Description != nil {
		claim.Description = *update.Description
	}
	if update.Severity != nil {
		claim.Severity = *update.Severity
	}
	if update.ClaimType != nil {
		claim.ClaimType = *update.ClaimType
	}
	entry := e.recorder.Append(claim, ActionClaimUpdated, actor,
		fmt.Sprintf("Claim updated by %s: %s", actor.Role, strings.Join(fields, ", ")))

	if err := e.saveClaim(ctx, actor, claim, entry); err != nil {
		return nil, err
	}
	return claim, nil
}

// SetClaimStatus moves a claim through its lifecycle. Resolved and Rejected need a resolution.
func (e *Engine) SetClaimStatus(ctx context.Context, actor Actor, id uint, status models.ClaimStatus, notes string, resolution *ResolutionInput) (*models.Claim, error) {
	claim, err := e.store.FindClaim(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := Authorize(actor, ActionSetStatus, ClaimSubject(claim)); err != nil {
		return nil, err
	}

	previous, previousResolution := claim.Status, claim.Resolution
	if err := ApplyClaimStatus(claim, status, actor.ID, resolution, e.now()); err != nil {
		return nil, err
	}

	detail := fmt.Sprintf("Status changed to %s%s", status, withNotes(notes))
	switch {
	case claim.Resolution != nil:
		detail += fmt.Sprintf(" (resolution: %s)", claim.Resolution.Action)
	case previousResolution != nil:
		detail += fmt.Sprintf(" (cleared %s resolution: %s", previous, previousResolution.Action)
		if previousResolution.Details != "" {
			detail += " - " + previousResolution.Details
		}
		detail += ")"
	}
	entry := e.recorder.Append(claim, ActionStatusUpdated, actor, detail)

	if err := e.saveClaim(ctx, actor, claim, entry); err != nil {
		return nil, err
	}

	e.log.Info("claim status updated", append(actorFields(actor),
		zap.Uint("claim_id", claim.ID),
		zap.String("from", string(previous)),
		zap.String("to", string(status)))...)
	return claim, nil
}

// AssignClaim hands a claim to an employee
func (e *Engine) AssignClaim(ctx context.Context, actor Actor, id, employeeID uint, notes string) (*models.Claim, error) {
	claim, err := e.store.FindClaim(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := Authorize(actor, ActionAssign, ClaimSubject(claim)); err != nil {
		return nil, err
	}
	employee, err := e.assigner.Resolve(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	AssignClaim(claim, employee.ID)
	claim.AssignedTo = employee
	entry := e.recorder.Append(claim, ActionAssignmentUpdated, actor,
		fmt.Sprintf("Claim assigned to %s%s", employee.Name, withNotes(notes)))

	if err := e.saveClaim(ctx, actor, claim, entry); err != nil {
		return nil, err
	}

	e.log.Info("claim assigned", append(actorFields(actor),
		zap.Uint("claim_id", claim.ID), zap.Uint("employee_id", employee.ID))...)
	return claim, nil
}

func (e *Engine) saveClaim(ctx context.Context, actor Actor, claim *models.Claim, entry *models.HistoryEntry) error {
	if !ClaimResolutionConsistent(claim) {
		e.log.Error("claim resolution out of step with status", append(actorFields(actor),
			zap.Uint("claim_id", claim.ID), zap.String("status", string(claim.Status)))...)
		return fmt.Errorf("claim %d: resolution does not match status %s", claim.ID, claim.Status)
	}
	if err := e.store.SaveClaim(ctx, claim, entry); err != nil {
		e.log.Error("failed to save claim", append(actorFields(actor), zap.Uint("claim_id", claim.ID), zap.Error(err))...)
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to save claim: %w", err)
	}
	return nil
}
