package repository

import (
	"context"

	"github.com/kendall-kelly/prepress-orders-api/models"
	"github.com/kendall-kelly/prepress-orders-api/workflow"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CreateClaim inserts the claim and its initial history in one transaction
func (s *GormStore) CreateClaim(ctx context.Context, claim *models.Claim) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(claim).Error; err != nil {
			return err
		}
		for i := range claim.History {
			if err := insertHistory(tx, claim, &claim.History[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	saved, err := s.FindClaim(ctx, claim.ID)
	if err != nil {
		return err
	}
	*claim = *saved
	return nil
}

// FindClaim loads a claim with its order, client, assignee and full history
func (s *GormStore) FindClaim(ctx context.Context, id uint) (*models.Claim, error) {
	var claim models.Claim
	err := s.db.WithContext(ctx).
		Preload("Order").
		Preload("Client").
		Preload("AssignedTo").
		Preload("History", historyByID).
		First(&claim, id).Error
	if err != nil {
		return nil, notFound(err, "claim %d not found", id)
	}
	return &claim, nil
}

// SaveClaim writes the whole claim and appends its new history entry atomically
func (s *GormStore) SaveClaim(ctx context.Context, claim *models.Claim, entry *models.HistoryEntry) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(claim).Error; err != nil {
			return err
		}
		return insertHistory(tx, claim, entry)
	})
}

func claimScope(scope workflow.Scope) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if scope.ClientID != nil {
			db = db.Where("client_id = ?", *scope.ClientID)
		}
		if scope.AssigneeID != nil {
			db = db.Where("assigned_to_id = ?", *scope.AssigneeID)
		}
		return db
	}
}

func claimFilters(filter workflow.ClaimFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if filter.Status != "" {
			db = db.Where("status = ?", filter.Status)
		}
		if filter.Severity != "" {
			db = db.Where("severity = ?", filter.Severity)
		}
		if filter.ClaimType != "" {
			db = db.Where("claim_type = ?", filter.ClaimType)
		}
		if filter.OrderID != nil {
			db = db.Where("order_id = ?", *filter.OrderID)
		}
		if filter.Search != "" {
			pattern := likePattern(filter.Search)
			db = db.Where("(LOWER(claim_number) LIKE ? OR LOWER(title) LIKE ?)", pattern, pattern)
		}
		return db.Scopes(createdBetween(filter.Created))
	}
}

// ListClaims returns one page of claims, newest first, and the total matching count
func (s *GormStore) ListClaims(ctx context.Context, scope workflow.Scope, filter workflow.ClaimFilter) ([]models.Claim, int64, error) {
	query := func() *gorm.DB {
		return s.db.WithContext(ctx).Model(&models.Claim{}).Scopes(claimScope(scope), claimFilters(filter))
	}

	var total int64
	if err := query().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var claims []models.Claim
	err := query().
		Preload("Client").
		Preload("AssignedTo").
		Order("created_at DESC, id DESC").
		Scopes(paginate(filter.Page)).
		Find(&claims).Error
	if err != nil {
		return nil, 0, err
	}
	return claims, total, nil
}
