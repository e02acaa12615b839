package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/franciscosanchezn/gin-bistro-api/internal/middleware"
	"github.com/franciscosanchezn/gin-bistro-api/internal/models"
	"github.com/franciscosanchezn/gin-bistro-api/internal/services"
	"github.com/gin-gonic/gin"
)

// OrderController handles checkout and the operator order endpoints
type OrderController interface {
	// Checkout places an order from the session cart
	Checkout(c *gin.Context)
	// ListOrders returns all orders, optionally filtered by status
	ListOrders(c *gin.Context)
	// UpdateStatus moves an order along its lifecycle
	UpdateStatus(c *gin.Context)
	// ExportOrders streams an xlsx workbook of the orders
	ExportOrders(c *gin.Context)
}

type orderController struct {
	orders services.OrderService
	carts  services.CartService
}

// NewOrderController creates a new instance of OrderController
func NewOrderController(orders services.OrderService, carts services.CartService) OrderController {
	return &orderController{orders: orders, carts: carts}
}

type checkoutRequest struct {
	FirstName           string `json:"first_name" binding:"max=50"`
	LastName            string `json:"last_name" binding:"max=50"`
	Phone               string `json:"phone" binding:"max=20"`
	Address1            string `json:"address1" binding:"max=255"`
	Address2            string `json:"address2" binding:"max=255"`
	City                string `json:"city" binding:"max=100"`
	Country             string `json:"country" binding:"max=100"`
	PostalCode          string `json:"postal_code" binding:"max=20"`
	SpecialInstructions string `json:"special_instructions" binding:"max=500"`
}

// Checkout godoc
// @Summary Place an order
// @Description Turns the session cart into an order. Signed-in users get missing contact fields from
// @Description their profile, guests must send first_name, last_name and phone.
// @Tags orders
// @Accept json
// @Produce json
// @Param order body checkoutRequest true "Contact details"
// @Success 201 {object} models.Order
// @Failure 400 {object} models.APIError
// @Router /api/v1/orders [post]
func (oc *orderController) Checkout(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, models.ErrValidationFailed, err.Error())
		return
	}

	cart, err := oc.carts.ResolveCart(middleware.SessionKey(c))
	if err != nil {
		respondError(c, err, models.ErrNotFound)
		return
	}

	input := services.OrderInput{
		FirstName:           req.FirstName,
		LastName:            req.LastName,
		Phone:               req.Phone,
		Address1:            req.Address1,
		Address2:            req.Address2,
		City:                req.City,
		Country:             req.Country,
		PostalCode:          req.PostalCode,
		SpecialInstructions: req.SpecialInstructions,
	}
	if userID, ok := middleware.CurrentUserID(c); ok {
		input.UserID = &userID
	}

	order, err := oc.orders.PlaceOrder(cart, input)
	if err != nil {
		respondError(c, err, models.ErrNotFound)
		return
	}
	c.JSON(http.StatusCreated, order)
}

// ListOrders godoc
// @Summary List orders
// @Tags admin
// @Produce json
// @Param status query string false "pending, processing, shipped, delivered or cancelled"
// @Success 200 {array} models.Order
// @Failure 400 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/admin/orders [get]
func (oc *orderController) ListOrders(c *gin.Context) {
	orders, err := oc.orders.ListOrders(models.OrderStatus(c.Query("status")))
	if err != nil {
		respondError(c, err, models.ErrOrderNotFound)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// UpdateStatus godoc
// @Summary Change order status
// @Tags admin
// @Accept json
// @Produce json
// @Param id path int true "Order ID"
// @Param status body object{status=string} true "Target status"
// @Success 200 {object} models.Order
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Failure 409 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/admin/orders/{id}/status [patch]
func (oc *orderController) UpdateStatus(c *gin.Context) {
	orderID, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Status models.OrderStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, models.ErrValidationFailed, err.Error())
		return
	}
	if !req.Status.Valid() {
		badRequest(c, models.ErrValidationFailed, fmt.Sprintf("unknown order status %q", req.Status))
		return
	}

	order, err := oc.orders.UpdateStatus(orderID, req.Status)
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			c.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrInvalidTransition, err.Error()))
			return
		}
		respondError(c, err, models.ErrOrderNotFound)
		return
	}
	c.JSON(http.StatusOK, order)
}

// ExportOrders godoc
// @Summary Export orders as xlsx
// @Tags admin
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param status query string false "Only orders with this status"
// @Success 200 {file} file
// @Failure 400 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/admin/orders/export [get]
func (oc *orderController) ExportOrders(c *gin.Context) {
	file, err := oc.orders.ExportOrders(models.OrderStatus(c.Query("status")))
	if err != nil {
		respondError(c, err, models.ErrOrderNotFound)
		return
	}

	filename := fmt.Sprintf("orders-%s.xlsx", time.Now().Format("20060102-150405"))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename="+filename)
	if err := file.Write(c.Writer); err != nil {
		log.WithError(err).Error("Failed to write orders export")
	}
}
