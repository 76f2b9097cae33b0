package workflow

import (
	"context"
	"time"

	"github.com/kendall-kelly/prepress-orders-api/models"
)

// Store is the persistence boundary. Entities are fetched and saved whole; a save
// and its history entry are written atomically. There is no version check, so the
// later of two concurrent saves wins.
type Store interface {
	UserLookup

	CountOrders(ctx context.Context) (int64, error)
	CreateOrder(ctx context.Context, order *models.Order) error
	FindOrder(ctx context.Context, id uint) (*models.Order, error)
	SaveOrder(ctx context.Context, order *models.Order, entry *models.HistoryEntry) error
	ListOrders(ctx context.Context, scope Scope, filter OrderFilter) ([]models.Order, int64, error)

	CreateClaim(ctx context.Context, claim *models.Claim) error
	FindClaim(ctx context.Context, id uint) (*models.Claim, error)
	SaveClaim(ctx context.Context, claim *models.Claim, entry *models.HistoryEntry) error
	ListClaims(ctx context.Context, scope Scope, filter ClaimFilter) ([]models.Claim, int64, error)

	CreateTask(ctx context.Context, task *models.Task) error
	FindTask(ctx context.Context, id uint) (*models.Task, error)
	SaveTask(ctx context.Context, task *models.Task) error
	DeleteTask(ctx context.Context, task *models.Task) error
	ListTasks(ctx context.Context, scope Scope, filter TaskFilter) ([]models.Task, int64, error)

	CreateAttachment(ctx context.Context, attachment *models.Attachment, entry *models.HistoryEntry) error
	ListAttachments(ctx context.Context, entityType string, entityID uint) ([]models.Attachment, error)
}

// Page selects a window of a listing. Zero values fall back to the engine defaults.
type Page struct {
	Page  int
	Limit int
}

// Offset is the number of rows skipped before the page starts
func (p Page) Offset() int {
	return (p.Page - 1) * p.Limit
}

// PageResult is one page of a listing
type PageResult[T any] struct {
	Items []T
	Page  int
	Pages int
	Limit int
	Total int64
}

func newPageResult[T any](items []T, total int64, page Page) PageResult[T] {
	pages := 0
	if page.Limit > 0 {
		pages = int((total + int64(page.Limit) - 1) / int64(page.Limit))
	}
	if items == nil {
		items = []T{}
	}
	return PageResult[T]{Items: items, Page: page.Page, Pages: pages, Limit: page.Limit, Total: total}
}

// DateRange bounds created_at; both ends are required for the filter to apply
type DateRange struct {
	From *time.Time
	To   *time.Time
}

// Active reports whether both ends are set
func (r DateRange) Active() bool {
	return r.From != nil && r.To != nil
}

// OrderFilter narrows an order listing
type OrderFilter struct {
	Status    models.OrderStatus
	Priority  models.Priority
	OrderType models.OrderType
	Created   DateRange
	Search    string // order number or title, case-insensitive
	Page      Page
}

// ClaimFilter narrows a claim listing
type ClaimFilter struct {
	Status    models.ClaimStatus
	Severity  models.Severity
	ClaimType models.ClaimType
	OrderID   *uint
	Created   DateRange
	Search    string // claim number or title, case-insensitive
	Page      Page
}

// TaskFilter narrows a task listing
type TaskFilter struct {
	Status   models.TaskStatus
	Priority models.Priority
	TaskType string
	Page     Page
}
