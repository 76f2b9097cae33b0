package workflow

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/kendall-kelly/prepress-orders-api/models"
	"go.uber.org/zap"
)

// CreateOrderInput is what a client submits for a new order
type CreateOrderInput struct {
	Title          string
	Description    string
	OrderType      models.OrderType
	Specifications models.Specifications
	Deadline       time.Time
	Priority       models.Priority
}

func (in *CreateOrderInput) validate() error {
	var problems []string
	if strings.TrimSpace(in.Title) == "" {
		problems = append(problems, "title is required")
	}
	if !in.OrderType.IsValid() {
		problems = append(problems, fmt.Sprintf("order type %q is invalid", in.OrderType))
	}
	if in.Deadline.IsZero() {
		problems = append(problems, "deadline is required")
	}
	if in.Priority == "" {
		in.Priority = models.PriorityMedium
	}
	if !in.Priority.IsValid() {
		problems = append(problems, fmt.Sprintf("priority %q is invalid", in.Priority))
	}
	problems = append(problems, validateSpecifications(&in.Specifications)...)
	if len(problems) > 0 {
		return Validation("%s", strings.Join(problems, "; "))
	}
	return nil
}

func validateSpecifications(spec *models.Specifications) []string {
	var problems []string
	if strings.TrimSpace(spec.Material) == "" {
		problems = append(problems, "specifications.material is required")
	}
	if spec.Dimensions.Width <= 0 || spec.Dimensions.Height <= 0 {
		problems = append(problems, "specifications.dimensions width and height must be positive")
	}
	if spec.Dimensions.Unit == "" {
		spec.Dimensions.Unit = models.UnitMillimeter
	}
	if !spec.Dimensions.Unit.IsValid() {
		problems = append(problems, fmt.Sprintf("dimension unit %q is invalid", spec.Dimensions.Unit))
	}
	if spec.Quantity <= 0 {
		problems = append(problems, "specifications.quantity must be positive")
	}
	if spec.Colors <= 0 {
		problems = append(problems, "specifications.colors must be positive")
	}
	if spec.FinishType == "" {
		spec.FinishType = models.FinishNone
	}
	if !spec.FinishType.IsValid() {
		problems = append(problems, fmt.Sprintf("finish type %q is invalid", spec.FinishType))
	}
	return problems
}

// CreateOrder submits a new order for the calling client
func (e *Engine) CreateOrder(ctx context.Context, actor Actor, in CreateOrderInput) (*models.Order, error) {
	if err := Authorize(actor, ActionCreate, Subject{Kind: KindOrder}); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	// The sequence comes from a plain count, so concurrent creations can collide;
	// the unique index on order_number turns a collision into a failed insert.
	count, err := e.store.CountOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}

	now := e.now()
	order := &models.Order{
		OrderNumber:    FormatOrderNumber(e.orderPrefix, now, count+1),
		ClientID:       actor.ID,
		Title:          strings.TrimSpace(in.Title),
		Description:    in.Description,
		OrderType:      in.OrderType,
		Specifications: in.Specifications,
		Status:         models.OrderSubmitted,
		Stages:         models.NewOrderStages(),
		Priority:       in.Priority,
		Deadline:       in.Deadline,
		Cost:           models.Cost{Currency: "USD", PaymentStatus: models.PaymentPending},
	}
	e.recorder.Append(order, ActionOrderCreated, actor, "Order submitted by client")

	if err := e.store.CreateOrder(ctx, order); err != nil {
		e.log.Error("failed to create order", append(actorFields(actor), zap.Error(err))...)
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	e.log.Info("order created", append(actorFields(actor),
		zap.Uint("order_id", order.ID), zap.String("order_number", order.OrderNumber))...)
	return order, nil
}

// GetOrder returns an order the actor is allowed to view
func (e *Engine) GetOrder(ctx context.Context, actor Actor, id uint) (*models.Order, error) {
	order, err := e.store.FindOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := Authorize(actor, ActionView, OrderSubject(order)); err != nil {
		return nil, err
	}
	return order, nil
}

// ListOrders returns the page of orders visible to the actor
func (e *Engine) ListOrders(ctx context.Context, actor Actor, filter OrderFilter) (PageResult[models.Order], error) {
	if !actor.Role.IsValid() {
		return PageResult[models.Order]{}, NotAuthorized("not authorized to list orders")
	}
	filter.Page = e.normalizePage(filter.Page)

	orders, total, err := e.store.ListOrders(ctx, scopeFor(actor), filter)
	if err != nil {
		return PageResult[models.Order]{}, fmt.Errorf("failed to list orders: %w", err)
	}
	return newPageResult(orders, total, filter.Page), nil
}

// OrderUpdate is a typed partial update; nil fields are left unchanged
type OrderUpdate struct {
	Title          *string
	Description    *string
	Specifications *models.Specifications
	OrderType      *models.OrderType
	Priority       *models.Priority
	Deadline       *time.Time
	EstimatedCost  *float64
	FinalCost      *float64
	Currency       *string
	PaymentStatus  *models.PaymentStatus
	StageNotes     map[models.StageName]string
	TrackingNumber *string
	DeliveryMethod *string

	// Protected names fields the caller sent that only change through dedicated operations
	Protected []string
}

// Fields lists the names of the fields the update sets
func (u OrderUpdate) Fields() []string {
	fields := slices.Clone(u.Protected)
	add := func(set bool, name string) {
		if set {
			fields = append(fields, name)
		}
	}
	add(u.Title != nil, "title")
	add(u.Description != nil, "description")
	add(u.Specifications != nil, "specifications")
	add(u.OrderType != nil, "order_type")
	add(u.Priority != nil, "priority")
	add(u.Deadline != nil, "deadline")
	add(u.EstimatedCost != nil, "estimated_cost")
	add(u.FinalCost != nil, "final_cost")
	add(u.Currency != nil, "currency")
	add(u.PaymentStatus != nil, "payment_status")
	add(len(u.StageNotes) > 0, "stage_notes")
	add(u.TrackingNumber != nil, "tracking_number")
	add(u.DeliveryMethod != nil, "delivery_method")
	return fields
}

func (u OrderUpdate) validate() error {
	var problems []string
	if u.Title != nil && strings.TrimSpace(*u.Title) == "" {
		problems = append(problems, "title cannot be empty")
	}
	if u.Specifications != nil {
		problems = append(problems, validateSpecifications(u.Specifications)...)
	}
	if u.OrderType != nil && !u.OrderType.IsValid() {
		problems = append(problems, fmt.Sprintf("order type %q is invalid", *u.OrderType))
	}
	if u.Priority != nil && !u.Priority.IsValid() {
		problems = append(problems, fmt.Sprintf("priority %q is invalid", *u.Priority))
	}
	if u.Deadline != nil && u.Deadline.IsZero() {
		problems = append(problems, "deadline cannot be empty")
	}
	if u.EstimatedCost != nil && *u.EstimatedCost < 0 {
		problems = append(problems, "estimated cost cannot be negative")
	}
	if u.FinalCost != nil && *u.FinalCost < 0 {
		problems = append(problems, "final cost cannot be negative")
	}
	if u.PaymentStatus != nil && !u.PaymentStatus.IsValid() {
		problems = append(problems, fmt.Sprintf("payment status %q is invalid", *u.PaymentStatus))
	}
	for name := range u.StageNotes {
		if !name.IsValid() {
			return InvalidStage("invalid stage %q in stage notes", name)
		}
	}
	if len(problems) > 0 {
		return Validation("%s", strings.Join(problems, "; "))
	}
	return nil
}

func (u OrderUpdate) apply(order *models.Order) {
	if u.Title != nil {
		order.Title = strings.TrimSpace(*u.Title)
	}
	if u.Description != nil {
		order.Description = *u.Description
	}
	if u.Specifications != nil {
		order.Specifications = *u.Specifications
	}
	if u.OrderType != nil {
		order.OrderType = *u.OrderType
	}
	if u.Priority != nil {
		order.Priority = *u.Priority
	}
	if u.Deadline != nil {
		order.Deadline = *u.Deadline
	}
	if u.EstimatedCost != nil {
		order.Cost.EstimatedCost = u.EstimatedCost
	}
	if u.FinalCost != nil {
		order.Cost.FinalCost = u.FinalCost
	}
	if u.Currency != nil {
		order.Cost.Currency = *u.Currency
	}
	if u.PaymentStatus != nil {
		order.Cost.PaymentStatus = *u.PaymentStatus
	}
	for name, notes := range u.StageNotes {
		order.Stages.Get(name).Notes = notes
	}
	if u.TrackingNumber != nil {
		order.Stages.Delivery.TrackingNumber = *u.TrackingNumber
	}
	if u.DeliveryMethod != nil {
		order.Stages.Delivery.DeliveryMethod = *u.DeliveryMethod
	}
}

// UpdateOrder applies a role-restricted partial update
func (e *Engine) UpdateOrder(ctx context.Context, actor Actor, id uint, update OrderUpdate) (*models.Order, error) {
	order, err := e.store.FindOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := Authorize(actor, ActionUpdate, OrderSubject(order)); err != nil {
		return nil, err
	}
	fields := update.Fields()
	if len(fields) == 0 {
		return nil, Validation("no updatable fields provided")
	}
	if err := AuthorizeFields(actor, KindOrder, fields); err != nil {
		return nil, err
	}
	if err := update.validate(); err != nil {
		return nil, err
	}

	update.apply(order)
	entry := e.recorder.Append(order, ActionOrderUpdated, actor,
		fmt.Sprintf("Order updated by %s: %s", actor.Role, strings.Join(fields, ", ")))

	if err := e.saveOrder(ctx, actor, order, entry); err != nil {
		return nil, err
	}
	return order, nil
}

// SetOrderStatus changes the overall status and synchronizes the stages
func (e *Engine) SetOrderStatus(ctx context.Context, actor Actor, id uint, status models.OrderStatus, notes string) (*models.Order, error) {
	order, err := e.store.FindOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := Authorize(actor, ActionSetStatus, OrderSubject(order)); err != nil {
		return nil, err
	}

	previous := order.Status
	if err := ApplyOrderStatus(order, status, e.now()); err != nil {
		return nil, err
	}
	entry := e.recorder.Append(order, ActionStatusUpdated, actor,
		fmt.Sprintf("Status changed to %s%s", status, withNotes(notes)))

	if err := e.saveOrder(ctx, actor, order, entry); err != nil {
		return nil, err
	}

	e.log.Info("order status updated", append(actorFields(actor),
		zap.Uint("order_id", order.ID),
		zap.String("from", string(previous)),
		zap.String("to", string(status)))...)
	return order, nil
}

// AssignStageInput names the stage and the employee to bind to it
type AssignStageInput struct {
	Stage      models.StageName
	EmployeeID uint
	Notes      string
}

// AssignOrderStage binds an employee to a stage of the order
func (e *Engine) AssignOrderStage(ctx context.Context, actor Actor, id uint, in AssignStageInput) (*models.Order, error) {
	order, err := e.store.FindOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := Authorize(actor, ActionAssign, OrderSubject(order)); err != nil {
		return nil, err
	}
	if !in.Stage.IsValid() {
		return nil, InvalidStage("invalid stage %q: must be one of review, prepress, production, delivery", in.Stage)
	}
	employee, err := e.assigner.Resolve(ctx, in.EmployeeID)
	if err != nil {
		return nil, err
	}

	if err := AssignStage(order, in.Stage, employee.ID, e.now()); err != nil {
		return nil, err
	}
	entry := e.recorder.Append(order, ActionAssignmentUpdated, actor,
		fmt.Sprintf("%s stage assigned to %s%s", in.Stage, employee.Name, withNotes(in.Notes)))

	if err := e.saveOrder(ctx, actor, order, entry); err != nil {
		return nil, err
	}

	e.log.Info("order stage assigned", append(actorFields(actor),
		zap.Uint("order_id", order.ID),
		zap.String("stage", string(in.Stage)),
		zap.Uint("employee_id", employee.ID))...)
	return order, nil
}

func (e *Engine) saveOrder(ctx context.Context, actor Actor, order *models.Order, entry *models.HistoryEntry) error {
	if !OrderStagesConsistent(order) {
		e.log.Error("order stage table out of step with status", append(actorFields(actor),
			zap.Uint("order_id", order.ID), zap.String("status", string(order.Status)))...)
		return fmt.Errorf("order %d: stage table does not match status %s", order.ID, order.Status)
	}
	if err := e.store.SaveOrder(ctx, order, entry); err != nil {
		e.log.Error("failed to save order", append(actorFields(actor), zap.Uint("order_id", order.ID), zap.Error(err))...)
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to save order: %w", err)
	}
	return nil
}

func withNotes(notes string) string {
	if strings.TrimSpace(notes) == "" {
		return ""
	}
	return ": " + notes
}
