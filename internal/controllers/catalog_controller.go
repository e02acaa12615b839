package controllers

import (
	"net/http"
	"strings"

	"github.com/franciscosanchezn/gin-bistro-api/internal/models"
	"github.com/franciscosanchezn/gin-bistro-api/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

const relatedDishesLimit = 4

// CatalogController handles HTTP requests related to the menu
type CatalogController interface {
	// ListCategories returns every category
	ListCategories(c *gin.Context)
	// ListAllergens returns the allergen vocabulary
	ListAllergens(c *gin.Context)
	// ListDishes returns the filtered menu, optionally restricted to the category in the path
	ListDishes(c *gin.Context)
	// GetDish returns a dish and related dishes of its category
	GetDish(c *gin.Context)
	// CreateCategory creates a category (operators)
	CreateCategory(c *gin.Context)
	// CreateDish creates a dish (operators)
	CreateDish(c *gin.Context)
	// UpdateDish edits a dish (operators)
	UpdateDish(c *gin.Context)
}

type catalogController struct {
	renderer
	catalog services.CatalogService
	users   services.UserService
}

// NewCatalogController creates a new instance of CatalogController
func NewCatalogController(catalog services.CatalogService, users services.UserService) CatalogController {
	return &catalogController{
		renderer: renderer{catalog: catalog},
		catalog:  catalog,
		users:    users,
	}
}

// dishRequest is the operator payload for creating or editing a dish
type dishRequest struct {
	Name        string          `json:"name" binding:"required,max=100"`
	Slug        string          `json:"slug"`
	Description string          `json:"description" binding:"max=200"`
	Category    string          `json:"category" binding:"required"`
	Price       decimal.Decimal `json:"price"`
	AllergenIDs []uint          `json:"allergen_ids"`
}

func (r dishRequest) input() services.DishInput {
	return services.DishInput{
		Name:         r.Name,
		Slug:         r.Slug,
		Description:  r.Description,
		CategorySlug: r.Category,
		Price:        r.Price,
		AllergenIDs:  r.AllergenIDs,
	}
}

// ListCategories godoc
// @Summary List categories
// @Tags menu
// @Produce json
// @Success 200 {array} models.Category
// @Router /api/v1/categories [get]
func (cc *catalogController) ListCategories(c *gin.Context) {
	categories, err := cc.catalog.ListCategories()
	if err != nil {
		respondError(c, err, models.ErrCategoryNotFound)
		return
	}
	c.JSON(http.StatusOK, categories)
}

// ListAllergens godoc
// @Summary List allergens
// @Tags menu
// @Produce json
// @Success 200 {array} models.Allergen
// @Router /api/v1/allergens [get]
func (cc *catalogController) ListAllergens(c *gin.Context) {
	allergens, err := cc.catalog.ListAllergens()
	if err != nil {
		respondError(c, err, models.ErrNotFound)
		return
	}
	c.JSON(http.StatusOK, allergens)
}

// ListDishes godoc
// @Summary List dishes
// @Description Menu filtered by category, name search and price range. Signed-in users do not see
// @Description dishes with allergens they excluded unless show_all is set.
// @Tags menu
// @Produce json
// @Param slug path string false "Category slug"
// @Param q query string false "Case-insensitive name search"
// @Param min_price query string false "Inclusive lower price bound"
// @Param max_price query string false "Inclusive upper price bound"
// @Param show_all query string false "1, true or on to ignore allergen preferences"
// @Param HX-Request header string false "true for a partial refresh"
// @Success 200 {array} models.Dish
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Router /api/v1/dishes [get]
// @Router /api/v1/categories/{slug}/dishes [get]
func (cc *catalogController) ListDishes(c *gin.Context) {
	filter := services.DishFilter{
		CategorySlug: c.Param("slug"),
		Search:       strings.TrimSpace(c.Query("q")),
	}

	var ok bool
	if filter.MinPrice, ok = parsePrice(c, "min_price"); !ok {
		return
	}
	if filter.MaxPrice, ok = parsePrice(c, "max_price"); !ok {
		return
	}

	exclude, err := exclusionFor(c, cc.users)
	if err != nil {
		respondError(c, err, models.ErrNotFound)
		return
	}
	filter.ExcludeAllergenIDs = exclude

	dishes, err := cc.catalog.ListDishes(filter)
	if err != nil {
		respondError(c, err, models.ErrCategoryNotFound)
		return
	}

	cc.render(c, http.StatusOK, dishes, gin.H{
		"filters": gin.H{
			"category":  filter.CategorySlug,
			"q":         filter.Search,
			"min_price": c.Query("min_price"),
			"max_price": c.Query("max_price"),
			"show_all":  truthy(c.Query("show_all")),
			"excluded":  exclude,
		},
	})
}

// GetDish godoc
// @Summary Get dish by slug
// @Tags menu
// @Produce json
// @Param slug path string true "Dish slug"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} models.APIError
// @Router /api/v1/dishes/{slug} [get]
func (cc *catalogController) GetDish(c *gin.Context) {
	dish, err := cc.catalog.GetDishBySlug(c.Param("slug"))
	if err != nil {
		respondError(c, err, models.ErrDishNotFound)
		return
	}

	exclude, err := exclusionFor(c, cc.users)
	if err != nil {
		respondError(c, err, models.ErrNotFound)
		return
	}
	related, err := cc.catalog.RelatedDishes(dish, exclude, relatedDishesLimit)
	if err != nil {
		respondError(c, err, models.ErrDishNotFound)
		return
	}

	cc.render(c, http.StatusOK, gin.H{
		"dish":                        dish,
		"related":                     related,
		"contains_excluded_allergens": dish.HasAllergen(services.AllergenSet(exclude)),
	}, nil)
}

// CreateCategory godoc
// @Summary Create category
// @Tags admin
// @Accept json
// @Produce json
// @Param category body object{name=string,slug=string} true "Category"
// @Success 201 {object} models.Category
// @Failure 400 {object} models.APIError
// @Failure 409 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/admin/categories [post]
func (cc *catalogController) CreateCategory(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required,max=100"`
		Slug string `json:"slug"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, models.ErrValidationFailed, err.Error())
		return
	}

	category, err := cc.catalog.CreateCategory(models.Category{Name: req.Name, Slug: req.Slug})
	if err != nil {
		respondError(c, err, models.ErrCategoryNotFound)
		return
	}
	c.JSON(http.StatusCreated, category)
}

// CreateDish godoc
// @Summary Create dish
// @Tags admin
// @Accept json
// @Produce json
// @Param dish body object{name=string,slug=string,description=string,category=string,price=string,allergen_ids=[]int} true "Dish"
// @Success 201 {object} models.Dish
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Failure 409 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/admin/dishes [post]
func (cc *catalogController) CreateDish(c *gin.Context) {
	var req dishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, models.ErrDishInvalidData, err.Error())
		return
	}

	dish, err := cc.catalog.CreateDish(req.input())
	if err != nil {
		respondError(c, err, models.ErrCategoryNotFound)
		return
	}
	c.JSON(http.StatusCreated, dish)
}

// UpdateDish godoc
// @Summary Update dish
// @Tags admin
// @Accept json
// @Produce json
// @Param slug path string true "Dish slug"
// @Param dish body object{name=string,slug=string,description=string,category=string,price=string,allergen_ids=[]int} true "Dish"
// @Success 200 {object} models.Dish
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/admin/dishes/{slug} [put]
func (cc *catalogController) UpdateDish(c *gin.Context) {
	var req dishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, models.ErrDishInvalidData, err.Error())
		return
	}

	dish, err := cc.catalog.UpdateDish(c.Param("slug"), req.input())
	if err != nil {
		respondError(c, err, models.ErrDishNotFound)
		return
	}
	c.JSON(http.StatusOK, dish)
}

// parsePrice reads an optional price bound from the query string
func parsePrice(c *gin.Context, param string) (*decimal.Decimal, bool) {
	raw := strings.TrimSpace(c.Query(param))
	if raw == "" {
		return nil, true
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		badRequest(c, models.ErrValidationFailed, param+" must be a decimal number")
		return nil, false
	}
	return &value, true
}
