package repository_test

import (
	"testing"
	"time"

	"github.com/kendall-kelly/prepress-orders-api/config"
	"github.com/kendall-kelly/prepress-orders-api/models"
	"github.com/kendall-kelly/prepress-orders-api/repository"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupStore(t *testing.T) (*repository.GormStore, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, config.MigrateDatabase(db))
	return repository.NewGormStore(db), db
}

func seedUser(t *testing.T, db *gorm.DB, name string, role models.Role) models.User {
	t.Helper()

	user := models.User{Auth0ID: "auth0|" + name, Name: name, Email: name + "@example.com", Role: role}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func newOrder(clientID uint, number, title string) *models.Order {
	order := &models.Order{
		OrderNumber: number,
		ClientID:    clientID,
		Title:       title,
		OrderType:   models.OrderTypeReprint,
		Specifications: models.Specifications{
			Material:   "Vinyl",
			Dimensions: models.Dimensions{Width: 100, Height: 50, Unit: models.UnitCentimeter},
			Quantity:   10,
			Colors:     2,
			FinishType: models.FinishMatte,
		},
		Status:   models.OrderSubmitted,
		Stages:   models.NewOrderStages(),
		Priority: models.PriorityMedium,
		Deadline: time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC),
		Cost:     models.Cost{Currency: "USD", PaymentStatus: models.PaymentPending},
	}
	order.AppendHistory(models.HistoryEntry{Action: "Order Created", ActorID: clientID, Details: "Order submitted by client", Timestamp: time.Now()})
	return order
}
