package services

import (
	"testing"

	"github.com/franciscosanchezn/gin-bistro-api/internal/database"
	"github.com/franciscosanchezn/gin-bistro-api/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// One connection keeps the in-memory database shared and serializes writers
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	require.NoError(t, database.SeedAllergens(db))
	return db
}

// testMenu is a small menu with known allergens
type testMenu struct {
	allergens  map[string]models.Allergen
	categories map[string]models.Category
	dishes     map[string]models.Dish
}

func seedTestMenu(t *testing.T, db *gorm.DB) testMenu {
	menu := testMenu{
		allergens:  map[string]models.Allergen{},
		categories: map[string]models.Category{},
		dishes:     map[string]models.Dish{},
	}

	var allergens []models.Allergen
	require.NoError(t, db.Find(&allergens).Error)
	for _, a := range allergens {
		menu.allergens[a.Slug] = a
	}

	for _, name := range []string{"Lunch", "Dessert"} {
		c := models.Category{Name: name}
		require.NoError(t, db.Create(&c).Error)
		menu.categories[c.Slug] = c
	}

	dishes := []struct {
		name      string
		category  string
		price     string
		allergens []string
	}{
		{"Margherita Pizza", "lunch", "100.00", []string{"gluten", "lactose"}},
		{"Caesar Salad", "lunch", "50.00", []string{"eggs", "fish"}},
		{"Roast Lamb", "lunch", "33.33", nil},
		{"Cheesecake", "dessert", "12.50", []string{"gluten", "eggs", "lactose"}},
		{"Sorbet", "dessert", "8.00", nil},
	}
	for _, d := range dishes {
		dish := models.Dish{
			Name:       d.name,
			CategoryID: menu.categories[d.category].ID,
			Price:      decimal.RequireFromString(d.price),
		}
		for _, slug := range d.allergens {
			dish.Allergens = append(dish.Allergens, menu.allergens[slug])
		}
		require.NoError(t, db.Create(&dish).Error)
		menu.dishes[dish.Slug] = dish
	}
	return menu
}

func dishSlugs(dishes []models.Dish) []string {
	slugs := make([]string, 0, len(dishes))
	for _, d := range dishes {
		slugs = append(slugs, d.Slug)
	}
	return slugs
}
