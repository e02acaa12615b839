package controllers

import (
	"net/http"

	"github.com/franciscosanchezn/gin-bistro-api/internal/middleware"
	"github.com/franciscosanchezn/gin-bistro-api/internal/models"
	"github.com/franciscosanchezn/gin-bistro-api/internal/services"
	"github.com/gin-gonic/gin"
)

// CartController handles the session cart
type CartController interface {
	GetCart(c *gin.Context)
	CartCount(c *gin.Context)
	AddDish(c *gin.Context)
	UpdateItem(c *gin.Context)
	RemoveItem(c *gin.Context)
	ClearCart(c *gin.Context)
}

type cartController struct {
	renderer
	carts   services.CartService
	catalog services.CatalogService
}

// NewCartController creates a new instance of CartController
func NewCartController(carts services.CartService, catalog services.CatalogService) CartController {
	return &cartController{
		renderer: renderer{catalog: catalog},
		carts:    carts,
		catalog:  catalog,
	}
}

// cartView is the cart fragment shown in the cart modal
type cartView struct {
	Items      []models.CartItem `json:"items"`
	TotalItems int               `json:"total_items"`
	Subtotal   string            `json:"subtotal"`
}

// cartCount is the fragment refreshed in the navigation badge
type cartCount struct {
	TotalItems int    `json:"total_items"`
	Subtotal   string `json:"subtotal"`
}

func newCartView(cart *models.Cart) cartView {
	return cartView{
		Items:      cart.Items,
		TotalItems: cart.TotalItems(),
		Subtotal:   cart.Subtotal().StringFixed(2),
	}
}

func newCartCount(cart *models.Cart) cartCount {
	return cartCount{TotalItems: cart.TotalItems(), Subtotal: cart.Subtotal().StringFixed(2)}
}

type quantityRequest struct {
	Quantity *int `json:"quantity" form:"quantity"`
}

// bindQuantity reads the quantity from the body, or from the query string for body-less requests
func bindQuantity(c *gin.Context) (*int, bool) {
	var req quantityRequest
	var err error
	if c.Request.ContentLength > 0 {
		err = c.ShouldBind(&req)
	} else {
		err = c.ShouldBindQuery(&req)
	}
	if err != nil {
		badRequest(c, models.ErrInvalidQuantity, "quantity must be an integer")
		return nil, false
	}
	return req.Quantity, true
}

func (cc *cartController) currentCart(c *gin.Context) (*models.Cart, bool) {
	cart, err := cc.carts.ResolveCart(middleware.SessionKey(c))
	if err != nil {
		respondError(c, err, models.ErrNotFound)
		return nil, false
	}
	return cart, true
}

// GetCart godoc
// @Summary Get the session cart
// @Tags cart
// @Produce json
// @Param HX-Request header string false "true for a partial refresh"
// @Success 200 {object} cartView
// @Router /api/v1/cart [get]
func (cc *cartController) GetCart(c *gin.Context) {
	cart, ok := cc.currentCart(c)
	if !ok {
		return
	}
	cc.render(c, http.StatusOK, newCartView(cart), nil)
}

// CartCount godoc
// @Summary Cart item count and subtotal
// @Tags cart
// @Produce json
// @Success 200 {object} cartCount
// @Router /api/v1/cart/count [get]
func (cc *cartController) CartCount(c *gin.Context) {
	cart, ok := cc.currentCart(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, newCartCount(cart))
}

// AddDish godoc
// @Summary Add a dish to the cart
// @Description Adds quantity (default 1) of the dish, merging with an existing line
// @Tags cart
// @Accept json
// @Produce json
// @Param slug path string true "Dish slug"
// @Param quantity body object{quantity=int} false "Quantity to add"
// @Param HX-Request header string false "true for a partial refresh"
// @Success 200 {object} cartView
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Router /api/v1/cart/dishes/{slug} [post]
func (cc *cartController) AddDish(c *gin.Context) {
	quantity, ok := bindQuantity(c)
	if !ok {
		return
	}
	qty := 1
	if quantity != nil {
		qty = *quantity
	}
	if qty < 1 {
		badRequest(c, models.ErrInvalidQuantity, "quantity must be at least 1")
		return
	}

	dish, err := cc.catalog.GetDishBySlug(c.Param("slug"))
	if err != nil {
		respondError(c, err, models.ErrDishNotFound)
		return
	}
	cart, ok := cc.currentCart(c)
	if !ok {
		return
	}

	item, err := cc.carts.AddDish(cart, dish.ID, qty)
	if err != nil {
		respondError(c, err, models.ErrDishNotFound)
		return
	}
	if err := cc.carts.LoadItems(cart); err != nil {
		respondError(c, err, models.ErrNotFound)
		return
	}

	if middleware.IsPartial(c) {
		c.JSON(http.StatusOK, gin.H{"item": item, "cart": newCartCount(cart)})
		return
	}
	cc.render(c, http.StatusOK, newCartView(cart), nil)
}

// UpdateItem godoc
// @Summary Set the quantity of a cart line
// @Description A quantity of 0 removes the line
// @Tags cart
// @Accept json
// @Produce json
// @Param id path int true "Cart item ID"
// @Param quantity body object{quantity=int} true "New quantity"
// @Success 200 {object} cartView
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Router /api/v1/cart/items/{id} [put]
func (cc *cartController) UpdateItem(c *gin.Context) {
	itemID, ok := parseID(c, "id")
	if !ok {
		return
	}
	quantity, ok := bindQuantity(c)
	if !ok {
		return
	}
	if quantity == nil {
		badRequest(c, models.ErrInvalidQuantity, "quantity is required")
		return
	}

	cart, ok := cc.currentCart(c)
	if !ok {
		return
	}
	if err := cc.carts.UpdateQuantity(cart, itemID, *quantity); err != nil {
		respondError(c, err, models.ErrCartItemNotFound)
		return
	}
	cc.respondCart(c, cart)
}

// RemoveItem godoc
// @Summary Remove a cart line
// @Tags cart
// @Produce json
// @Param id path int true "Cart item ID"
// @Success 200 {object} cartView
// @Failure 404 {object} models.APIError
// @Router /api/v1/cart/items/{id} [delete]
func (cc *cartController) RemoveItem(c *gin.Context) {
	itemID, ok := parseID(c, "id")
	if !ok {
		return
	}
	cart, ok := cc.currentCart(c)
	if !ok {
		return
	}

	removed, err := cc.carts.RemoveItem(cart, itemID)
	if err != nil {
		respondError(c, err, models.ErrCartItemNotFound)
		return
	}
	if !removed {
		c.JSON(http.StatusNotFound, models.NewAPIError(models.ErrCartItemNotFound, "cart item not found"))
		return
	}
	cc.respondCart(c, cart)
}

// ClearCart godoc
// @Summary Empty the cart
// @Tags cart
// @Produce json
// @Success 200 {object} cartView
// @Router /api/v1/cart [delete]
func (cc *cartController) ClearCart(c *gin.Context) {
	cart, ok := cc.currentCart(c)
	if !ok {
		return
	}
	if err := cc.carts.Clear(cart); err != nil {
		respondError(c, err, models.ErrNotFound)
		return
	}
	cc.render(c, http.StatusOK, newCartView(cart), nil)
}

func (cc *cartController) respondCart(c *gin.Context, cart *models.Cart) {
	if err := cc.carts.LoadItems(cart); err != nil {
		respondError(c, err, models.ErrNotFound)
		return
	}
	cc.render(c, http.StatusOK, newCartView(cart), nil)
}
