package repository

import (
	"context"

	"github.com/kendall-kelly/prepress-orders-api/models"
	"github.com/kendall-kelly/prepress-orders-api/workflow"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// orderAssigneeCondition matches an employee assigned to any of the four stages
const orderAssigneeCondition = "(review_assigned_to_id = ? OR prepress_assigned_to_id = ? OR " +
	"production_assigned_to_id = ? OR delivery_assigned_to_id = ?)"

// CountOrders counts every order ever created, including soft-deleted ones
func (s *GormStore) CountOrders(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Unscoped().Model(&models.Order{}).Count(&count).Error
	return count, err
}

// CreateOrder inserts the order and its initial history in one transaction
func (s *GormStore) CreateOrder(ctx context.Context, order *models.Order) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(order).Error; err != nil {
			return err
		}
		for i := range order.History {
			if err := insertHistory(tx, order, &order.History[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	saved, err := s.FindOrder(ctx, order.ID)
	if err != nil {
		return err
	}
	*order = *saved
	return nil
}

// FindOrder loads an order with its client and full history
func (s *GormStore) FindOrder(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).
		Preload("Client").
		Preload("History", historyByID).
		First(&order, id).Error
	if err != nil {
		return nil, notFound(err, "order %d not found", id)
	}
	return &order, nil
}

// SaveOrder writes the whole order and appends its new history entry atomically
func (s *GormStore) SaveOrder(ctx context.Context, order *models.Order, entry *models.HistoryEntry) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(order).Error; err != nil {
			return err
		}
		return insertHistory(tx, order, entry)
	})
}

func orderScope(scope workflow.Scope) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if scope.ClientID != nil {
			db = db.Where("client_id = ?", *scope.ClientID)
		}
		if scope.AssigneeID != nil {
			id := *scope.AssigneeID
			db = db.Where(orderAssigneeCondition, id, id, id, id)
		}
		return db
	}
}

func orderFilters(filter workflow.OrderFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if filter.Status != "" {
			db = db.Where("status = ?", filter.Status)
		}
		if filter.Priority != "" {
			db = db.Where("priority = ?", filter.Priority)
		}
		if filter.OrderType != "" {
			db = db.Where("order_type = ?", filter.OrderType)
		}
		if filter.Search != "" {
			pattern := likePattern(filter.Search)
			db = db.Where("(LOWER(order_number) LIKE ? OR LOWER(title) LIKE ?)", pattern, pattern)
		}
		return db.Scopes(createdBetween(filter.Created))
	}
}

// ListOrders returns one page of orders, newest first, and the total matching count
func (s *GormStore) ListOrders(ctx context.Context, scope workflow.Scope, filter workflow.OrderFilter) ([]models.Order, int64, error) {
	query := func() *gorm.DB {
		return s.db.WithContext(ctx).Model(&models.Order{}).Scopes(orderScope(scope), orderFilters(filter))
	}

	var total int64
	if err := query().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []models.Order
	err := query().
		Preload("Client").
		Order("created_at DESC, id DESC").
		Scopes(paginate(filter.Page)).
		Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}
