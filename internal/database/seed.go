package database

import (
	"github.com/franciscosanchezn/gin-bistro-api/internal/models"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// DefaultAllergens is the allergen vocabulary offered to users
var DefaultAllergens = []models.Allergen{
	{Name: "Gluten", Slug: "gluten"},
	{Name: "Lactose", Slug: "lactose"},
	{Name: "Nuts", Slug: "nuts"},
	{Name: "Eggs", Slug: "eggs"},
	{Name: "Fish", Slug: "fish"},
	{Name: "Shellfish", Slug: "shellfish"},
	{Name: "Soy", Slug: "soy"},
	{Name: "Mustard", Slug: "mustard"},
	{Name: "Celery", Slug: "celery"},
	{Name: "Sesame", Slug: "sesame"},
	{Name: "Sulphites", Slug: "sulphites"},
	{Name: "Peanuts", Slug: "peanuts"},
}

type seedDish struct {
	name        string
	description string
	category    string
	price       string
	allergens   []string
}

var demoCategories = []models.Category{
	{Name: "Breakfast", Slug: "breakfast"},
	{Name: "Lunch", Slug: "lunch"},
	{Name: "Dinner", Slug: "dinner"},
	{Name: "Snack", Slug: "snack"},
	{Name: "Dessert", Slug: "dessert"},
	{Name: "Drink", Slug: "drink"},
}

var demoDishes = []seedDish{
	{"Fried eggs with bacon", "Sunny side up eggs with crispy bacon and greens", "breakfast", "320.00", []string{"eggs", "gluten"}},
	{"Oatmeal", "Oatmeal with berries, honey and nuts", "breakfast", "280.00", []string{"gluten", "nuts"}},
	{"Cottage cheese pancakes", "Cottage cheese pancakes with sour cream", "breakfast", "350.00", []string{"gluten", "eggs", "lactose"}},
	{"Avocado toast", "Ciabatta toast with avocado and a poached egg", "breakfast", "390.00", []string{"gluten", "eggs"}},
	{"Granola with yogurt", "Crunchy granola with yogurt and fruit", "breakfast", "270.00", []string{"gluten", "lactose", "nuts"}},
	{"Soup and sandwich", "Soup of the day with a chicken sandwich", "lunch", "490.00", []string{"gluten", "celery", "mustard"}},
	{"Margherita pizza", "25cm pizza with tomatoes and mozzarella", "lunch", "420.00", []string{"gluten", "lactose"}},
	{"Chicken burger", "Chicken burger with french fries", "lunch", "520.00", []string{"gluten", "mustard", "soy"}},
	{"Tuna steak", "Tuna steak with avocado ceviche and pesto", "dinner", "850.00", []string{"fish", "nuts"}},
	{"Duck breast", "Duck breast with orange sauce and celery puree", "dinner", "780.00", []string{"celery", "sulphites"}},
	{"Truffle fettuccine", "Fettuccine with creamy truffle sauce", "dinner", "720.00", []string{"gluten", "lactose"}},
	{"Roast lamb", "Lamb roasted with rosemary and new potatoes", "dinner", "920.00", nil},
	{"Tomato bruschetta", "Toasts with chopped tomatoes, basil and garlic", "snack", "320.00", []string{"gluten"}},
	{"Fried calamari", "Calamari in beer batter with tartar sauce", "snack", "380.00", []string{"gluten", "eggs", "fish", "shellfish"}},
	{"Guacamole with nachos", "Classic guacamole with corn chips", "snack", "360.00", nil},
	{"Sorbet", "Lemon and mango sorbet", "dessert", "300.00", nil},
	{"Cheesecake", "New York cheesecake with berry sauce", "dessert", "410.00", []string{"gluten", "eggs", "lactose"}},
	{"Sesame halva", "Homemade halva with sesame and honey", "dessert", "260.00", []string{"sesame", "peanuts"}},
	{"Lemonade", "House lemonade with mint", "drink", "220.00", nil},
	{"Cappuccino", "Double shot cappuccino", "drink", "240.00", []string{"lactose"}},
}

// SeedAllergens makes sure the default allergen vocabulary exists. It is idempotent.
func SeedAllergens(db *gorm.DB) error {
	for _, allergen := range DefaultAllergens {
		a := allergen
		if err := db.Where(models.Allergen{Slug: a.Slug}).FirstOrCreate(&a).Error; err != nil {
			return err
		}
	}
	log.WithField("allergens", len(DefaultAllergens)).Debug("Allergen vocabulary ensured")
	return nil
}

// SeedMenu loads the demo categories and dishes when the menu is empty
func SeedMenu(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Dish{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Info("Database already seeded with menu data")
		return nil
	}

	log.Info("Database is empty, seeding demo menu")
	return db.Transaction(func(tx *gorm.DB) error {
		categories := make(map[string]models.Category, len(demoCategories))
		for _, category := range demoCategories {
			c := category
			if err := tx.Where(models.Category{Slug: c.Slug}).FirstOrCreate(&c).Error; err != nil {
				return err
			}
			categories[c.Slug] = c
		}

		var allergens []models.Allergen
		if err := tx.Find(&allergens).Error; err != nil {
			return err
		}
		bySlug := make(map[string]models.Allergen, len(allergens))
		for _, a := range allergens {
			bySlug[a.Slug] = a
		}

		for _, d := range demoDishes {
			dish := models.Dish{
				Name:        d.name,
				Description: d.description,
				CategoryID:  categories[d.category].ID,
				Price:       decimal.RequireFromString(d.price),
			}
			for _, slug := range d.allergens {
				if a, ok := bySlug[slug]; ok {
					dish.Allergens = append(dish.Allergens, a)
				}
			}
			if err := tx.Create(&dish).Error; err != nil {
				return err
			}
		}

		log.WithFields(logrus.Fields{
			"categories": len(demoCategories),
			"dishes":     len(demoDishes),
		}).Info("Demo menu seeded")
		return nil
	})
}
