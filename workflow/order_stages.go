package workflow

import (
	"time"

	"github.com/kendall-kelly/prepress-orders-api/models"
)

// stageEffect is what entering an overall status does to the stage table
type stageEffect struct {
	start    models.StageName // -> In Progress, start date set once
	complete models.StageName // -> Completed, completion date set once
	pending  models.StageName // -> Pending
}

// orderStatusEffects is the status -> stage transition table. Statuses missing here
// (Submitted, Cancelled, On Hold) change the overall status only.
var orderStatusEffects = map[models.OrderStatus]stageEffect{
	models.OrderInReview:           {start: models.StageReview},
	models.OrderApproved:           {complete: models.StageReview, pending: models.StagePrepress},
	models.OrderInPrepress:         {start: models.StagePrepress},
	models.OrderReadyForProduction: {complete: models.StagePrepress, pending: models.StageProduction},
	models.OrderInProduction:       {start: models.StageProduction},
	models.OrderCompleted:          {complete: models.StageProduction, pending: models.StageDelivery},
	models.OrderDelivered:          {complete: models.StageDelivery},
}

// ApplyOrderStatus sets the overall status and synchronizes the stage table in one step.
// Reachability from the current status is not checked: any known status is accepted.
// Re-applying a status leaves already matching stages (and their dates) untouched.
func ApplyOrderStatus(order *models.Order, status models.OrderStatus, now time.Time) error {
	if !status.IsValid() {
		return Validation("unknown order status %q", status)
	}

	order.Status = status
	effect, ok := orderStatusEffects[status]
	if !ok {
		return nil
	}

	if effect.start != "" {
		stage := order.Stages.Get(effect.start)
		stage.Status = models.StageInProgress
		if stage.StartDate == nil {
			stage.StartDate = timePtr(now)
		}
	}
	if effect.complete != "" {
		stage := order.Stages.Get(effect.complete)
		if stage.Status != models.StageCompleted || stage.CompletionDate == nil {
			stage.CompletionDate = timePtr(now)
		}
		stage.Status = models.StageCompleted
	}
	if effect.pending != "" {
		order.Stages.Get(effect.pending).Status = models.StagePending
	}
	return nil
}

// OrderStagesConsistent reports whether every stage holds a status valid for it
// and the stage table reflects the effect of the current status
func OrderStagesConsistent(order *models.Order) bool {
	for _, name := range models.StageNames {
		if !order.Stages.Get(name).Status.ValidFor(name) {
			return false
		}
	}
	effect, ok := orderStatusEffects[order.Status]
	if !ok {
		return true
	}
	if effect.start != "" {
		stage := order.Stages.Get(effect.start)
		if stage.Status != models.StageInProgress || stage.StartDate == nil {
			return false
		}
	}
	if effect.complete != "" {
		stage := order.Stages.Get(effect.complete)
		if stage.Status != models.StageCompleted || stage.CompletionDate == nil {
			return false
		}
	}
	if effect.pending != "" && order.Stages.Get(effect.pending).Status == models.StageNotApplicable {
		return false
	}
	return true
}

// AssignStage binds an employee to one stage. The first assignment of a submitted
// order starts the workflow by moving it to In Review.
func AssignStage(order *models.Order, name models.StageName, staffID uint, now time.Time) error {
	if !name.IsValid() {
		return InvalidStage("invalid stage %q: must be one of review, prepress, production, delivery", name)
	}

	id := staffID
	order.Stages.Get(name).AssignedToID = &id

	if order.Status == models.OrderSubmitted {
		return ApplyOrderStatus(order, models.OrderInReview, now)
	}
	return nil
}

func timePtr(t time.Time) *time.Time {
	return &t
}
