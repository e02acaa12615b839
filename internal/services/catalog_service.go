package services

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/franciscosanchezn/gin-bistro-api/internal/models"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// DishFilter holds the optional catalog filters. All supplied filters must match.
type DishFilter struct {
	// CategorySlug restricts the result to one category
	CategorySlug string
	// Search is matched case-insensitively against the dish name
	Search string
	// MinPrice and MaxPrice are inclusive bounds
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	// ExcludeAllergenIDs drops every dish carrying at least one of these allergens
	ExcludeAllergenIDs []uint
}

// DishInput is the payload used by operators to create or edit a dish
type DishInput struct {
	Name         string
	Slug         string
	Description  string
	CategorySlug string
	Price        decimal.Decimal
	AllergenIDs  []uint
}

// CatalogService provides read access to the menu and operator editing of it
type CatalogService interface {
	// ListCategories returns all categories ordered by name
	ListCategories() ([]models.Category, error)
	// GetCategoryBySlug retrieves a category by its slug
	GetCategoryBySlug(slug string) (models.Category, error)
	// ListAllergens returns the allergen vocabulary ordered by name
	ListAllergens() ([]models.Allergen, error)
	// ListDishes returns the dishes matching the filter, newest first
	ListDishes(filter DishFilter) ([]models.Dish, error)
	// GetDishBySlug retrieves a dish with its category and allergens
	GetDishBySlug(slug string) (models.Dish, error)
	// RelatedDishes returns other dishes of the same category
	RelatedDishes(dish models.Dish, excludeAllergenIDs []uint, limit int) ([]models.Dish, error)
	// RecommendedDishes returns the first dishes of the menu compatible with the exclusion set
	RecommendedDishes(excludeAllergenIDs []uint, limit int) ([]models.Dish, error)
	// CreateCategory creates a category, deriving the slug from the name when empty
	CreateCategory(category models.Category) (models.Category, error)
	// CreateDish creates a dish in an existing category
	CreateDish(input DishInput) (models.Dish, error)
	// UpdateDish replaces the editable fields of a dish
	UpdateDish(slug string, input DishInput) (models.Dish, error)
}

type catalogService struct {
	db *gorm.DB
}

// NewCatalogService creates a new instance of CatalogService
func NewCatalogService(db *gorm.DB) CatalogService {
	return &catalogService{db: db}
}

func (s *catalogService) ListCategories() ([]models.Category, error) {
	var categories []models.Category
	if err := s.db.Order("name").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (s *catalogService) GetCategoryBySlug(slug string) (models.Category, error) {
	var category models.Category
	if err := s.db.Where("slug = ?", slug).First(&category).Error; err != nil {
		return models.Category{}, translateError(err, "category")
	}
	return category, nil
}

func (s *catalogService) ListAllergens() ([]models.Allergen, error) {
	var allergens []models.Allergen
	if err := s.db.Order("name").Find(&allergens).Error; err != nil {
		return nil, err
	}
	return allergens, nil
}

func (s *catalogService) ListDishes(filter DishFilter) ([]models.Dish, error) {
	if filter.MinPrice != nil && filter.MinPrice.IsNegative() {
		return nil, validationError("min_price must not be negative")
	}
	if filter.MaxPrice != nil && filter.MaxPrice.IsNegative() {
		return nil, validationError("max_price must not be negative")
	}
	if filter.MinPrice != nil && filter.MaxPrice != nil && filter.MinPrice.GreaterThan(*filter.MaxPrice) {
		return nil, validationError("min_price %s is greater than max_price %s", filter.MinPrice, filter.MaxPrice)
	}

	query := s.dishQuery()

	if filter.CategorySlug != "" {
		category, err := s.GetCategoryBySlug(filter.CategorySlug)
		if err != nil {
			return nil, err
		}
		query = query.Where("dishes.category_id = ?", category.ID)
	}
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	if search != "" && isASCII(search) {
		// SQLite LOWER only folds ASCII, so non-ASCII searches are matched in Go below
		query = query.Where(`LOWER(dishes.name) LIKE ? ESCAPE '\'`, containsPattern(search))
	}
	if filter.MinPrice != nil {
		query = query.Where("dishes.price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		query = query.Where("dishes.price <= ?", *filter.MaxPrice)
	}
	query = excludeAllergens(query, filter.ExcludeAllergenIDs)

	var dishes []models.Dish
	if err := query.Order("dishes.created_at DESC").Order("dishes.id DESC").Find(&dishes).Error; err != nil {
		return nil, err
	}
	if search != "" {
		dishes = filterByName(dishes, search)
	}

	log.WithFields(logrus.Fields{
		"category": filter.CategorySlug,
		"search":   filter.Search,
		"excluded": len(filter.ExcludeAllergenIDs),
		"results":  len(dishes),
	}).Debug("Listed dishes")
	return dishes, nil
}

func (s *catalogService) GetDishBySlug(slug string) (models.Dish, error) {
	var dish models.Dish
	if err := s.dishQuery().Where("dishes.slug = ?", slug).First(&dish).Error; err != nil {
		return models.Dish{}, translateError(err, "dish")
	}
	return dish, nil
}

func (s *catalogService) RelatedDishes(dish models.Dish, excludeAllergenIDs []uint, limit int) ([]models.Dish, error) {
	query := s.dishQuery().
		Where("dishes.category_id = ? AND dishes.id <> ?", dish.CategoryID, dish.ID)
	query = excludeAllergens(query, excludeAllergenIDs)

	var related []models.Dish
	if err := query.Order("dishes.id").Limit(limit).Find(&related).Error; err != nil {
		return nil, err
	}
	return related, nil
}

func (s *catalogService) RecommendedDishes(excludeAllergenIDs []uint, limit int) ([]models.Dish, error) {
	query := excludeAllergens(s.dishQuery(), excludeAllergenIDs)

	var dishes []models.Dish
	if err := query.Order("dishes.id").Limit(limit).Find(&dishes).Error; err != nil {
		return nil, err
	}
	return dishes, nil
}

func (s *catalogService) CreateCategory(category models.Category) (models.Category, error) {
	if strings.TrimSpace(category.Name) == "" {
		return models.Category{}, validationError("category name is required")
	}
	if err := s.db.Create(&category).Error; err != nil {
		return models.Category{}, translateError(err, "category")
	}
	log.WithField("slug", category.Slug).Info("Category created")
	return category, nil
}

func (s *catalogService) CreateDish(input DishInput) (models.Dish, error) {
	if err := validateDishInput(input); err != nil {
		return models.Dish{}, err
	}

	var dish models.Dish
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var category models.Category
		if err := tx.Where("slug = ?", input.CategorySlug).First(&category).Error; err != nil {
			return translateError(err, "category")
		}
		allergens, err := findAllergens(tx, input.AllergenIDs)
		if err != nil {
			return err
		}

		dish = models.Dish{
			Name:        input.Name,
			Slug:        input.Slug,
			Description: input.Description,
			CategoryID:  category.ID,
			Price:       input.Price,
			Allergens:   allergens,
		}
		if err := tx.Create(&dish).Error; err != nil {
			return translateError(err, "dish")
		}
		return nil
	})
	if err != nil {
		return models.Dish{}, err
	}

	log.WithFields(logrus.Fields{"slug": dish.Slug, "price": dish.Price.StringFixed(2)}).Info("Dish created")
	return s.GetDishBySlug(dish.Slug)
}

func (s *catalogService) UpdateDish(slug string, input DishInput) (models.Dish, error) {
	if err := validateDishInput(input); err != nil {
		return models.Dish{}, err
	}

	var dish models.Dish
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("slug = ?", slug).First(&dish).Error; err != nil {
			return translateError(err, "dish")
		}
		var category models.Category
		if err := tx.Where("slug = ?", input.CategorySlug).First(&category).Error; err != nil {
			return translateError(err, "category")
		}
		allergens, err := findAllergens(tx, input.AllergenIDs)
		if err != nil {
			return err
		}

		dish.Name = input.Name
		dish.Description = input.Description
		dish.CategoryID = category.ID
		dish.Category = category
		dish.Price = input.Price
		if input.Slug != "" {
			dish.Slug = input.Slug
		}
		if err := tx.Omit("Allergens", "Category").Save(&dish).Error; err != nil {
			return translateError(err, "dish")
		}
		return replaceAllergens(tx, &dish, "Allergens", allergens)
	})
	if err != nil {
		return models.Dish{}, err
	}

	log.WithFields(logrus.Fields{"slug": dish.Slug, "price": dish.Price.StringFixed(2)}).Info("Dish updated")
	return s.GetDishBySlug(dish.Slug)
}

func (s *catalogService) dishQuery() *gorm.DB {
	return s.db.Model(&models.Dish{}).Preload("Category").Preload("Allergens")
}

func validateDishInput(input DishInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return validationError("dish name is required")
	}
	if input.CategorySlug == "" {
		return validationError("dish category is required")
	}
	if input.Price.IsNegative() {
		return validationError("dish price must not be negative")
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a LIKE pattern matching text literally anywhere in the value
func containsPattern(text string) string {
	return "%" + likeEscaper.Replace(text) + "%"
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// filterByName keeps the dishes whose name contains the lowercased search text
func filterByName(dishes []models.Dish, search string) []models.Dish {
	matched := dishes[:0]
	for _, d := range dishes {
		if strings.Contains(strings.ToLower(d.Name), search) {
			matched = append(matched, d)
		}
	}
	return matched
}

// excludeAllergens drops dishes whose allergen set intersects ids
func excludeAllergens(query *gorm.DB, ids []uint) *gorm.DB {
	if len(ids) == 0 {
		return query
	}
	return query.Where(
		"NOT EXISTS (SELECT 1 FROM dish_allergens WHERE dish_allergens.dish_id = dishes.id AND dish_allergens.allergen_id IN ?)",
		ids,
	)
}

// findAllergens loads the allergens among ids, silently ignoring unknown ones
func findAllergens(tx *gorm.DB, ids []uint) ([]models.Allergen, error) {
	allergens := []models.Allergen{}
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return allergens, nil
	}
	if err := tx.Where("id IN ?", ids).Order("id").Find(&allergens).Error; err != nil {
		return nil, err
	}
	return allergens, nil
}

// replaceAllergens swaps a whole many-to-many allergen set of owner
func replaceAllergens(tx *gorm.DB, owner interface{}, association string, allergens []models.Allergen) error {
	if len(allergens) == 0 {
		return tx.Model(owner).Association(association).Clear()
	}
	return tx.Model(owner).Association(association).Replace(allergens)
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	unique := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	sort.Slice(unique, func(i, j int) bool { return unique[i] < unique[j] })
	return unique
}
