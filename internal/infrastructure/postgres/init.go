package postgres

import (
	"log"

	"github.com/docugen/fulfillment-service/internal/config"
	"github.com/docugen/fulfillment-service/internal/infrastructure/postgres/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func MustInitDB(cfg *config.FulfillmentConfig) *gorm.DB {
	dsn := cfg.OrderDB.Dsn
	// TranslateError maps unique-constraint violations to
	// gorm.ErrDuplicatedKey, which the idempotency guard depends on.
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("failed to init db: %v\n", err.Error())
	}

	db.AutoMigrate(&models.OrderModel{}, &models.ResolutionTicketModel{}, &models.BlockEntryModel{}, &models.QuizInputModel{})

	return db
}
