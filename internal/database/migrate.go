package database

import (
	"github.com/franciscosanchezn/gin-bistro-api/internal/models"
	"gorm.io/gorm"
)

// Migrate creates or updates the schema of every persisted model
func Migrate(db *gorm.DB) error {
	log.Info("Migrating database schema")
	return db.AutoMigrate(
		&models.Allergen{},
		&models.Category{},
		&models.Dish{},
		&models.User{},
		&models.Cart{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.OAuthClient{},
		&models.OAuthToken{},
	)
}
