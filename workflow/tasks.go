package workflow

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/kendall-kelly/prepress-orders-api/models"
	"go.uber.org/zap"
)

const defaultTaskType = "General"

// CreateTaskInput describes a new work item for an employee
type CreateTaskInput struct {
	Title          string
	Description    string
	AssignedToID   uint
	RelatedOrderID *uint
	DueDate        *time.Time
	Priority       models.Priority
	TaskType       string
	Notes          string
}

func (in *CreateTaskInput) validate() error {
	var problems []string
	if strings.TrimSpace(in.Title) == "" {
		problems = append(problems, "title is required")
	}
	if strings.TrimSpace(in.Description) == "" {
		problems = append(problems, "description is required")
	}
	if in.Priority == "" {
		in.Priority = models.PriorityMedium
	}
	if !in.Priority.IsValid() {
		problems = append(problems, fmt.Sprintf("priority %q is invalid", in.Priority))
	}
	if strings.TrimSpace(in.TaskType) == "" {
		in.TaskType = defaultTaskType
	}
	if len(problems) > 0 {
		return Validation("%s", strings.Join(problems, "; "))
	}
	return nil
}

// CreateTask creates a task for an employee
func (e *Engine) CreateTask(ctx context.Context, actor Actor, in CreateTaskInput) (*models.Task, error) {
	if err := Authorize(actor, ActionCreate, Subject{Kind: KindTask}); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	employee, err := e.assigner.Resolve(ctx, in.AssignedToID)
	if err != nil {
		return nil, err
	}
	if in.RelatedOrderID != nil {
		if _, err := e.store.FindOrder(ctx, *in.RelatedOrderID); err != nil {
			return nil, err
		}
	}

	task := &models.Task{
		Title:          strings.TrimSpace(in.Title),
		Description:    in.Description,
		AssignedToID:   employee.ID,
		AssignedTo:     *employee,
		CreatedByID:    actor.ID,
		RelatedOrderID: in.RelatedOrderID,
		DueDate:        in.DueDate,
		Priority:       in.Priority,
		TaskType:       in.TaskType,
		Status:         models.TaskPending,
		Notes:          in.Notes,
	}
	if err := e.store.CreateTask(ctx, task); err != nil {
		e.log.Error("failed to create task", append(actorFields(actor), zap.Error(err))...)
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	e.log.Info("task created", append(actorFields(actor),
		zap.Uint("task_id", task.ID), zap.Uint("employee_id", employee.ID))...)
	return task, nil
}

// GetTask returns a task the actor is allowed to view
func (e *Engine) GetTask(ctx context.Context, actor Actor, id uint) (*models.Task, error) {
	task, err := e.store.FindTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := Authorize(actor, ActionView, TaskSubject(task)); err != nil {
		return nil, err
	}
	return task, nil
}

// ListTasks returns the page of tasks visible to the actor. Clients have no tasks.
func (e *Engine) ListTasks(ctx context.Context, actor Actor, filter TaskFilter) (PageResult[models.Task], error) {
	if !actor.Role.IsStaff() {
		return PageResult[models.Task]{}, NotAuthorized("%s is not allowed to list tasks", roleLabel(actor.Role))
	}
	filter.Page = e.normalizePage(filter.Page)

	tasks, total, err := e.store.ListTasks(ctx, scopeFor(actor), filter)
	if err != nil {
		return PageResult[models.Task]{}, fmt.Errorf("failed to list tasks: %w", err)
	}
	return newPageResult(tasks, total, filter.Page), nil
}

// TaskUpdate is a typed partial update; nil fields are left unchanged
type TaskUpdate struct {
	Title       *string
	Description *string
	DueDate     *time.Time
	Priority    *models.Priority
	TaskType    *string
	Notes       *string
	Progress    *int
	Protected   []string
}

// Fields lists the names of the fields the update sets, protected ones first
func (u TaskUpdate) Fields() []string {
	fields := slices.Clone(u.Protected)
	if u.Title != nil {
		fields = append(fields, "title")
	}
	if u.Description != nil {
		fields = append(fields, "description")
	}
	if u.DueDate != nil {
		fields = append(fields, "due_date")
	}
	if u.Priority != nil {
		fields = append(fields, "priority")
	}
	if u.TaskType != nil {
		fields = append(fields, "task_type")
	}
	if u.Notes != nil {
		fields = append(fields, "notes")
	}
	if u.Progress != nil {
		fields = append(fields, "progress")
	}
	return fields
}

func (u TaskUpdate) validate() error {
	switch {
	case u.Title != nil && strings.TrimSpace(*u.Title) == "":
		return Validation("title cannot be empty")
	case u.Priority != nil && !u.Priority.IsValid():
		return Validation("priority %q is invalid", *u.Priority)
	case u.TaskType != nil && strings.TrimSpace(*u.TaskType) == "":
		return Validation("task type cannot be empty")
	case u.Progress != nil && (*u.Progress < 0 || *u.Progress > 100):
		return Validation("progress must be between 0 and 100")
	}
	return nil
}

// UpdateTask applies a role-restricted partial update. Progress above zero starts a pending task.
func (e *Engine) UpdateTask(ctx context.Context, actor Actor, id uint, update TaskUpdate) (*models.Task, error) {
	task, err := e.store.FindTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := Authorize(actor, ActionUpdate, TaskSubject(task)); err != nil {
		return nil, err
	}
	fields := update.Fields()
	if len(fields) == 0 {
		return nil, Validation("no updatable fields provided")
	}
	if err := AuthorizeFields(actor, KindTask, fields); err != nil {
		return nil, err
	}
	if err := update.validate(); err != nil {
		return nil, err
	}
	if task.Status == models.TaskCompleted {
		return nil, ForbiddenTransition("completed tasks cannot be modified")
	}

	if update.Title != nil {
		task.Title = strings.TrimSpace(*update.Title)
	}
	if update.Description != nil {
		task.Description = *update.Description
	}
	if update.DueDate != nil {
		task.DueDate = update.DueDate
	}
	if update.Priority != nil {
		task.Priority = *update.Priority
	}
	if update.TaskType != nil {
		task.TaskType = strings.TrimSpace(*update.TaskType)
	}
	if update.Notes != nil {
		task.Notes = *update.Notes
	}
	if update.Progress != nil {
		task.Progress = *update.Progress
		if task.Progress > 0 && task.Status == models.TaskPending {
			task.Status = models.TaskInProgress
		}
	}

	if err := e.store.SaveTask(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	return task, nil
}

// CompleteTask marks the caller's own task as done
func (e *Engine) CompleteTask(ctx context.Context, actor Actor, id uint, completionNotes string) (*models.Task, error) {
	task, err := e.store.FindTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := Authorize(actor, ActionComplete, TaskSubject(task)); err != nil {
		return nil, err
	}
	if task.Status == models.TaskCompleted {
		return nil, ForbiddenTransition("task is already completed")
	}

	now := e.now()
	task.Status = models.TaskCompleted
	task.Progress = 100
	task.CompletedAt = &now
	task.CompletionNotes = completionNotes

	if err := e.store.SaveTask(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to complete task: %w", err)
	}

	e.log.Info("task completed", append(actorFields(actor), zap.Uint("task_id", task.ID))...)
	return task, nil
}

// AssignTask moves a task to another employee
func (e *Engine) AssignTask(ctx context.Context, actor Actor, id, employeeID uint) (*models.Task, error) {
	task, err := e.store.FindTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := Authorize(actor, ActionAssign, TaskSubject(task)); err != nil {
		return nil, err
	}
	employee, err := e.assigner.Resolve(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	task.AssignedToID = employee.ID
	task.AssignedTo = *employee
	if err := e.store.SaveTask(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to assign task: %w", err)
	}

	e.log.Info("task assigned", append(actorFields(actor),
		zap.Uint("task_id", task.ID), zap.Uint("employee_id", employee.ID))...)
	return task, nil
}

// DeleteTask soft-deletes a task
func (e *Engine) DeleteTask(ctx context.Context, actor Actor, id uint) error {
	task, err := e.store.FindTask(ctx, id)
	if err != nil {
		return err
	}
	if err := Authorize(actor, ActionDelete, TaskSubject(task)); err != nil {
		return err
	}
	if err := e.store.DeleteTask(ctx, task); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	e.log.Info("task deleted", append(actorFields(actor), zap.Uint("task_id", task.ID))...)
	return nil
}
