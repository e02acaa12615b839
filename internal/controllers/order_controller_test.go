package controllers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/franciscosanchezn/gin-bistro-api/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type orderJSON struct {
	ID         uint   `json:"id"`
	UserID     *uint  `json:"user_id"`
	FirstName  string `json:"first_name"`
	Phone      string `json:"phone"`
	Status     string `json:"status"`
	TotalPrice string `json:"total_price"`
	Items      []struct {
		DishID   uint   `json:"dish_id"`
		Quantity int    `json:"quantity"`
		Price    string `json:"price"`
	} `json:"items"`
}

func guestContact() gin.H {
	return gin.H{"first_name": "Ada", "last_name": "Lovelace", "phone": "+44100200", "city": "London"}
}

func TestGuestCheckout(t *testing.T) {
	app := newTestApp(t)
	c := app.newClient()

	w := c.do(http.MethodPost, "/api/v1/cart/dishes/roast-lamb", gin.H{"quantity": 2})
	require.Equal(t, http.StatusOK, w.Code)
	w = c.do(http.MethodPost, "/api/v1/cart/dishes/lemonade", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = c.do(http.MethodPost, "/api/v1/orders", guestContact())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var order orderJSON
	decode(t, w, &order)
	assert.Nil(t, order.UserID)
	assert.Equal(t, "pending", order.Status)
	assert.Len(t, order.Items, 2)
	assert.True(t, decimal.RequireFromString("2060").Equal(decimal.RequireFromString(order.TotalPrice)))

	assert.Empty(t, c.cart().Items)

	w = c.do(http.MethodPost, "/api/v1/orders", guestContact())
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGuestCheckoutRequiresContact(t *testing.T) {
	app := newTestApp(t)
	c := app.newClient()

	w := c.do(http.MethodPost, "/api/v1/cart/dishes/sorbet", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = c.do(http.MethodPost, "/api/v1/orders", gin.H{"first_name": "Ada"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "phone")
	assert.Len(t, c.cart().Items, 1)
}

func TestUserCheckoutAndHistory(t *testing.T) {
	app := newTestApp(t)
	c := app.newClient()
	userID := c.register("622000111")

	w := c.do(http.MethodPost, "/api/v1/cart/dishes/cheesecake", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = c.do(http.MethodPost, "/api/v1/orders", gin.H{"city": "Lisbon"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var order orderJSON
	decode(t, w, &order)
	require.NotNil(t, order.UserID)
	assert.Equal(t, userID, *order.UserID)
	assert.Equal(t, "Test", order.FirstName)
	assert.Equal(t, "622000111", order.Phone)

	c.partial = true
	w = c.do(http.MethodGet, "/api/v1/account/orders", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var history []orderJSON
	decode(t, w, &history)
	require.Len(t, history, 1)
	assert.Equal(t, order.ID, history[0].ID)

	w = c.do(http.MethodGet, fmt.Sprintf("/api/v1/account/orders/%d", order.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	other := app.newClient()
	other.register("622000112")
	w = other.do(http.MethodGet, fmt.Sprintf("/api/v1/account/orders/%d", order.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "ORDER_NOT_FOUND")
}

func TestOrderPriceSnapshot(t *testing.T) {
	app := newTestApp(t)
	c := app.newClient()

	w := c.do(http.MethodPost, "/api/v1/cart/dishes/sorbet", gin.H{"quantity": 2})
	require.Equal(t, http.StatusOK, w.Code)
	w = c.do(http.MethodPost, "/api/v1/orders", guestContact())
	require.Equal(t, http.StatusCreated, w.Code)
	var order orderJSON
	decode(t, w, &order)

	admin := app.newClient()
	admin.registerAdmin("622000300")
	w = admin.do(http.MethodPut, "/api/v1/admin/dishes/sorbet", gin.H{"name": "Sorbet", "category": "dessert", "price": "350.00"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	admin.partial = true
	w = admin.do(http.MethodGet, "/api/v1/admin/orders", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var orders []orderJSON
	decode(t, w, &orders)
	require.Len(t, orders, 1)
	assert.True(t, decimal.RequireFromString("600").Equal(decimal.RequireFromString(orders[0].TotalPrice)))
	assert.True(t, decimal.RequireFromString("300").Equal(decimal.RequireFromString(orders[0].Items[0].Price)))
}

func TestAdminOrderStatus(t *testing.T) {
	app := newTestApp(t)
	c := app.newClient()
	w := c.do(http.MethodPost, "/api/v1/cart/dishes/sorbet", nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = c.do(http.MethodPost, "/api/v1/orders", guestContact())
	require.Equal(t, http.StatusCreated, w.Code)
	var order orderJSON
	decode(t, w, &order)

	admin := app.newClient()
	admin.registerAdmin("622000400")
	path := fmt.Sprintf("/api/v1/admin/orders/%d/status", order.ID)

	w = admin.do(http.MethodPatch, path, gin.H{"status": "shipped"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_STATUS_TRANSITION")

	w = admin.do(http.MethodPatch, path, gin.H{"status": "teleported"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "VALIDATION_FAILED")

	w = admin.do(http.MethodPatch, path, gin.H{"status": "processing"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, w, &order)
	assert.Equal(t, string(models.StatusProcessing), order.Status)

	w = admin.do(http.MethodPatch, path, gin.H{"status": "cancelled"})
	require.Equal(t, http.StatusOK, w.Code)

	w = admin.do(http.MethodGet, "/api/v1/admin/orders?status=cancelled", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var cancelled []orderJSON
	decode(t, w, &cancelled)
	assert.Len(t, cancelled, 1)

	w = admin.do(http.MethodPatch, "/api/v1/admin/orders/999/status", gin.H{"status": "processing"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminOrderExport(t *testing.T) {
	app := newTestApp(t)
	c := app.newClient()
	w := c.do(http.MethodPost, "/api/v1/cart/dishes/sorbet", nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = c.do(http.MethodPost, "/api/v1/orders", guestContact())
	require.Equal(t, http.StatusCreated, w.Code)

	admin := app.newClient()
	admin.registerAdmin("622000500")
	w = admin.do(http.MethodGet, "/api/v1/admin/orders/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".xlsx")
	// xlsx files are zip archives
	assert.Equal(t, "PK", w.Body.String()[:2])
}
