package repository

import (
	"context"

	"github.com/kendall-kelly/prepress-orders-api/models"
	"github.com/kendall-kelly/prepress-orders-api/workflow"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CreateTask inserts a task
func (s *GormStore) CreateTask(ctx context.Context, task *models.Task) error {
	return s.db.WithContext(ctx).Omit(clause.Associations).Create(task).Error
}

// FindTask loads a task with its assignee
func (s *GormStore) FindTask(ctx context.Context, id uint) (*models.Task, error) {
	var task models.Task
	if err := s.db.WithContext(ctx).Preload("AssignedTo").First(&task, id).Error; err != nil {
		return nil, notFound(err, "task %d not found", id)
	}
	return &task, nil
}

// SaveTask writes the whole task
func (s *GormStore) SaveTask(ctx context.Context, task *models.Task) error {
	return s.db.WithContext(ctx).Omit(clause.Associations).Save(task).Error
}

// DeleteTask soft-deletes a task
func (s *GormStore) DeleteTask(ctx context.Context, task *models.Task) error {
	return s.db.WithContext(ctx).Delete(task).Error
}

func taskFilters(scope workflow.Scope, filter workflow.TaskFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if scope.AssigneeID != nil {
			db = db.Where("assigned_to_id = ?", *scope.AssigneeID)
		}
		if filter.Status != "" {
			db = db.Where("status = ?", filter.Status)
		}
		if filter.Priority != "" {
			db = db.Where("priority = ?", filter.Priority)
		}
		if filter.TaskType != "" {
			db = db.Where("task_type = ?", filter.TaskType)
		}
		return db
	}
}

// ListTasks returns one page of tasks, newest first, and the total matching count
func (s *GormStore) ListTasks(ctx context.Context, scope workflow.Scope, filter workflow.TaskFilter) ([]models.Task, int64, error) {
	query := func() *gorm.DB {
		return s.db.WithContext(ctx).Model(&models.Task{}).Scopes(taskFilters(scope, filter))
	}

	var total int64
	if err := query().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var tasks []models.Task
	err := query().
		Preload("AssignedTo").
		Order("created_at DESC, id DESC").
		Scopes(paginate(filter.Page)).
		Find(&tasks).Error
	if err != nil {
		return nil, 0, err
	}
	return tasks, total, nil
}
