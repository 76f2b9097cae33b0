// Package repository persists orders, claims, tasks and their history with GORM.
package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/kendall-kelly/prepress-orders-api/models"
	"github.com/kendall-kelly/prepress-orders-api/workflow"
	"gorm.io/gorm"
)

// GormStore implements workflow.Store on top of a gorm connection
type GormStore struct {
	db *gorm.DB
}

var _ workflow.Store = (*GormStore)(nil)

// NewGormStore creates a store using the given database connection
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// notFound translates gorm's missing-row error into the workflow error kind
func notFound(err error, format string, args ...any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return workflow.NotFound(format, args...)
	}
	return err
}

func likePattern(search string) string {
	return "%" + strings.ToLower(strings.TrimSpace(search)) + "%"
}

func paginate(page workflow.Page) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(page.Offset()).Limit(page.Limit)
	}
}

func createdBetween(r workflow.DateRange) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if !r.Active() {
			return db
		}
		return db.Where("created_at BETWEEN ? AND ?", *r.From, *r.To)
	}
}

func historyByID(db *gorm.DB) *gorm.DB {
	return db.Order("id ASC")
}

// insertHistory links an entry to its saved owner and inserts it
func insertHistory(tx *gorm.DB, owner workflow.Audited, entry *models.HistoryEntry) error {
	if entry == nil {
		return nil
	}
	entry.EntityID = owner.EntityID()
	entry.EntityType = owner.HistoryEntityType()
	return tx.Create(entry).Error
}

// FindUserByID returns the user with the given id
func (s *GormStore) FindUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, notFound(err, "user %d not found", id)
	}
	return &user, nil
}

// FindUserByAuth0ID returns the user linked to an Auth0 subject
func (s *GormStore) FindUserByAuth0ID(ctx context.Context, auth0ID string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("auth0_id = ?", auth0ID).First(&user).Error; err != nil {
		return nil, notFound(err, "user profile not found")
	}
	return &user, nil
}

// CreateUser inserts a new user profile
func (s *GormStore) CreateUser(ctx context.Context, user *models.User) error {
	return s.db.WithContext(ctx).Create(user).Error
}

// SaveUser updates an existing user profile
func (s *GormStore) SaveUser(ctx context.Context, user *models.User) error {
	return s.db.WithContext(ctx).Save(user).Error
}

// ListUsers returns users ordered by name, optionally restricted to one role
func (s *GormStore) ListUsers(ctx context.Context, role models.Role) ([]models.User, error) {
	query := s.db.WithContext(ctx).Order("name ASC, id ASC")
	if role != "" {
		query = query.Where("role = ?", role)
	}
	var users []models.User
	if err := query.Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// CreateAttachment stores file metadata together with the owner's history entry
func (s *GormStore) CreateAttachment(ctx context.Context, attachment *models.Attachment, entry *models.HistoryEntry) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(attachment).Error; err != nil {
			return err
		}
		if entry == nil {
			return nil
		}
		entry.EntityID = attachment.EntityID
		entry.EntityType = attachment.EntityType
		return tx.Create(entry).Error
	})
}

// ListAttachments returns the files attached to one entity, newest first
func (s *GormStore) ListAttachments(ctx context.Context, entityType string, entityID uint) ([]models.Attachment, error) {
	var attachments []models.Attachment
	err := s.db.WithContext(ctx).
		Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order("created_at DESC, id DESC").
		Find(&attachments).Error
	if err != nil {
		return nil, err
	}
	return attachments, nil
}
