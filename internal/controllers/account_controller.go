package controllers

import (
	"net/http"

	"github.com/franciscosanchezn/gin-bistro-api/internal/middleware"
	"github.com/franciscosanchezn/gin-bistro-api/internal/models"
	"github.com/franciscosanchezn/gin-bistro-api/internal/services"
	"github.com/gin-gonic/gin"
)

const recommendedDishesLimit = 3

// AccountController serves the signed-in user's profile, preferences and order history
type AccountController interface {
	GetProfile(c *gin.Context)
	UpdateProfile(c *gin.Context)
	GetAllergens(c *gin.Context)
	UpdateAllergens(c *gin.Context)
	Recommendations(c *gin.Context)
	ListOrders(c *gin.Context)
	GetOrder(c *gin.Context)
}

type accountController struct {
	renderer
	users   services.UserService
	catalog services.CatalogService
	orders  services.OrderService
}

// NewAccountController creates a new instance of AccountController
func NewAccountController(users services.UserService, catalog services.CatalogService, orders services.OrderService) AccountController {
	return &accountController{
		renderer: renderer{catalog: catalog},
		users:    users,
		catalog:  catalog,
		orders:   orders,
	}
}

type profileRequest struct {
	FirstName  string `json:"first_name" binding:"required,max=50"`
	LastName   string `json:"last_name" binding:"required,max=50"`
	Email      string `json:"email" binding:"omitempty,email,max=254"`
	Phone      string `json:"phone" binding:"max=20"`
	Address1   string `json:"address1" binding:"max=255"`
	Address2   string `json:"address2" binding:"max=255"`
	City       string `json:"city" binding:"max=100"`
	Country    string `json:"country" binding:"max=100"`
	PostalCode string `json:"postal_code" binding:"max=20"`
}

// GetProfile godoc
// @Summary Current user profile
// @Tags account
// @Produce json
// @Success 200 {object} models.User
// @Failure 401 {object} models.OAuth2Error
// @Security BearerAuth
// @Router /api/v1/account [get]
func (ac *accountController) GetProfile(c *gin.Context) {
	userID, _ := middleware.CurrentUserID(c)
	user, err := ac.users.GetUserByID(userID)
	if err != nil {
		respondError(c, err, models.ErrNotFound)
		return
	}
	ac.render(c, http.StatusOK, user, nil)
}

// UpdateProfile godoc
// @Summary Update profile
// @Tags account
// @Accept json
// @Produce json
// @Param profile body profileRequest true "Profile"
// @Success 200 {object} models.User
// @Failure 400 {object} models.APIError
// @Failure 409 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/account [put]
func (ac *accountController) UpdateProfile(c *gin.Context) {
	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, models.ErrValidationFailed, err.Error())
		return
	}

	userID, _ := middleware.CurrentUserID(c)
	user, err := ac.users.UpdateProfile(userID, services.ProfileInput{
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Email:      req.Email,
		Phone:      req.Phone,
		Address1:   req.Address1,
		Address2:   req.Address2,
		City:       req.City,
		Country:    req.Country,
		PostalCode: req.PostalCode,
	})
	if err != nil {
		if errorIsConflict(err) {
			c.JSON(http.StatusConflict, models.NewAPIError(models.ErrPhoneTaken, err.Error()))
			return
		}
		respondError(c, err, models.ErrNotFound)
		return
	}
	ac.render(c, http.StatusOK, user, nil)
}

// GetAllergens godoc
// @Summary Allergen preferences
// @Description The allergen vocabulary and the IDs the user excludes from the menu
// @Tags account
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /api/v1/account/allergens [get]
func (ac *accountController) GetAllergens(c *gin.Context) {
	userID, _ := middleware.CurrentUserID(c)
	excluded, err := ac.users.GetExcludedAllergens(userID)
	if err != nil {
		respondError(c, err, models.ErrNotFound)
		return
	}
	ac.respondAllergens(c, excluded)
}

// UpdateAllergens godoc
// @Summary Replace allergen preferences
// @Description Replaces the whole exclusion set. Unknown IDs are ignored, an empty list shows every dish.
// @Tags account
// @Accept json
// @Produce json
// @Param allergens body object{allergen_ids=[]int} true "Excluded allergen IDs"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/account/allergens [put]
func (ac *accountController) UpdateAllergens(c *gin.Context) {
	var req struct {
		AllergenIDs []uint `json:"allergen_ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, models.ErrValidationFailed, err.Error())
		return
	}

	userID, _ := middleware.CurrentUserID(c)
	stored, err := ac.users.SetExcludedAllergens(userID, req.AllergenIDs)
	if err != nil {
		respondError(c, err, models.ErrNotFound)
		return
	}
	ac.respondAllergens(c, stored)
}

func (ac *accountController) respondAllergens(c *gin.Context, excluded []uint) {
	allergens, err := ac.catalog.ListAllergens()
	if err != nil {
		respondError(c, err, models.ErrNotFound)
		return
	}
	ac.render(c, http.StatusOK, gin.H{
		"allergens":             allergens,
		"excluded_allergen_ids": excluded,
	}, nil)
}

// Recommendations godoc
// @Summary Recommended dishes
// @Description The first dishes of the menu compatible with the user's allergen preferences
// @Tags account
// @Produce json
// @Success 200 {array} models.Dish
// @Security BearerAuth
// @Router /api/v1/account/recommendations [get]
func (ac *accountController) Recommendations(c *gin.Context) {
	userID, _ := middleware.CurrentUserID(c)
	excluded, err := ac.users.GetExcludedAllergens(userID)
	if err != nil {
		respondError(c, err, models.ErrNotFound)
		return
	}
	dishes, err := ac.catalog.RecommendedDishes(excluded, recommendedDishesLimit)
	if err != nil {
		respondError(c, err, models.ErrDishNotFound)
		return
	}
	ac.render(c, http.StatusOK, dishes, nil)
}

// ListOrders godoc
// @Summary Order history
// @Tags account
// @Produce json
// @Success 200 {array} models.Order
// @Security BearerAuth
// @Router /api/v1/account/orders [get]
func (ac *accountController) ListOrders(c *gin.Context) {
	userID, _ := middleware.CurrentUserID(c)
	orders, err := ac.orders.ListOrdersForUser(userID)
	if err != nil {
		respondError(c, err, models.ErrOrderNotFound)
		return
	}
	ac.render(c, http.StatusOK, orders, nil)
}

// GetOrder godoc
// @Summary Order detail
// @Tags account
// @Produce json
// @Param id path int true "Order ID"
// @Success 200 {object} models.Order
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/account/orders/{id} [get]
func (ac *accountController) GetOrder(c *gin.Context) {
	orderID, ok := parseID(c, "id")
	if !ok {
		return
	}
	userID, _ := middleware.CurrentUserID(c)
	order, err := ac.orders.GetOrderForUser(userID, orderID)
	if err != nil {
		respondError(c, err, models.ErrOrderNotFound)
		return
	}
	ac.render(c, http.StatusOK, order, nil)
}
