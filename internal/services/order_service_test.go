package services

import (
	"testing"

	"github.com/franciscosanchezn/gin-bistro-api/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func guestInput() OrderInput {
	return OrderInput{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Phone:     "+44123456",
		Address1:  "12 St James's Square",
		City:      "London",
		Country:   "UK",
	}
}

func fillCart(t *testing.T, db *gorm.DB, sessionKey string, quantities map[uint]int) *models.Cart {
	carts := NewCartService(db)
	cart, err := carts.ResolveCart(sessionKey)
	require.NoError(t, err)
	for dishID, qty := range quantities {
		_, err := carts.AddDish(cart, dishID, qty)
		require.NoError(t, err)
	}
	require.NoError(t, carts.LoadItems(cart))
	return cart
}

func TestPlaceOrderSnapshotsPrices(t *testing.T) {
	db := setupTestDB(t)
	menu := seedTestMenu(t, db)
	service := NewOrderService(db)
	pizza := menu.dishes["margherita-pizza"]
	salad := menu.dishes["caesar-salad"]

	cart := fillCart(t, db, "session", map[uint]int{pizza.ID: 2, salad.ID: 1})

	order, err := service.PlaceOrder(cart, guestInput())
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, order.Status)
	assert.Nil(t, order.UserID)
	assert.Equal(t, "250.00", order.TotalPrice.StringFixed(2))
	require.Len(t, order.Items, 2)

	lines := map[uint]models.OrderItem{}
	for _, item := range order.Items {
		lines[item.DishID] = item
	}
	assert.Equal(t, 2, lines[pizza.ID].Quantity)
	assert.Equal(t, "100.00", lines[pizza.ID].Price.StringFixed(2))
	assert.Equal(t, "50.00", lines[salad.ID].Price.StringFixed(2))

	// a later price change does not touch the placed order
	require.NoError(t, db.Model(&models.Dish{}).Where("id = ?", pizza.ID).
		Update("price", decimal.RequireFromString("120.00")).Error)

	reloaded, err := service.GetOrder(order.ID)
	require.NoError(t, err)
	assert.Equal(t, "250.00", reloaded.TotalPrice.StringFixed(2))
	for _, item := range reloaded.Items {
		if item.DishID == pizza.ID {
			assert.Equal(t, "100.00", item.Price.StringFixed(2))
		}
	}
}

func TestPlaceOrderClearsCart(t *testing.T) {
	db := setupTestDB(t)
	menu := seedTestMenu(t, db)
	service := NewOrderService(db)

	cart := fillCart(t, db, "session", map[uint]int{menu.dishes["sorbet"].ID: 3})

	_, err := service.PlaceOrder(cart, guestInput())
	require.NoError(t, err)
	assert.Empty(t, cart.Items)

	var rows int64
	require.NoError(t, db.Model(&models.CartItem{}).Where("cart_id = ?", cart.ID).Count(&rows).Error)
	assert.Zero(t, rows)

	// placing again from the emptied cart fails
	_, err = service.PlaceOrder(cart, guestInput())
	assert.ErrorIs(t, err, ErrValidation)
}

func TestPlaceOrderValidation(t *testing.T) {
	db := setupTestDB(t)
	menu := seedTestMenu(t, db)
	service := NewOrderService(db)

	t.Run("empty cart", func(t *testing.T) {
		cart := fillCart(t, db, "empty", nil)
		_, err := service.PlaceOrder(cart, guestInput())
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("guest without contact", func(t *testing.T) {
		cart := fillCart(t, db, "guest", map[uint]int{menu.dishes["sorbet"].ID: 1})
		input := guestInput()
		input.Phone = ""
		_, err := service.PlaceOrder(cart, input)
		assert.ErrorIs(t, err, ErrValidation)
		assert.Contains(t, err.Error(), "phone")

		// the failed checkout leaves the cart untouched
		var rows int64
		require.NoError(t, db.Model(&models.CartItem{}).Where("cart_id = ?", cart.ID).Count(&rows).Error)
		assert.Equal(t, int64(1), rows)
	})

	t.Run("unknown user", func(t *testing.T) {
		cart := fillCart(t, db, "ghost", map[uint]int{menu.dishes["sorbet"].ID: 1})
		missing := uint(404)
		input := OrderInput{UserID: &missing}
		_, err := service.PlaceOrder(cart, input)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestPlaceOrderPrefillsFromProfile(t *testing.T) {
	db := setupTestDB(t)
	menu := seedTestMenu(t, db)
	service := NewOrderService(db)

	user := models.User{
		Phone:     "600111222",
		Password:  "hashed",
		FirstName: "Grace",
		LastName:  "Hopper",
		City:      "Arlington",
		Address1:  "1 Navy Way",
	}
	require.NoError(t, db.Create(&user).Error)

	cart := fillCart(t, db, "session", map[uint]int{menu.dishes["roast-lamb"].ID: 1})
	order, err := service.PlaceOrder(cart, OrderInput{UserID: &user.ID, City: "Washington"})
	require.NoError(t, err)

	require.NotNil(t, order.UserID)
	assert.Equal(t, user.ID, *order.UserID)
	assert.Equal(t, "Grace", order.FirstName)
	assert.Equal(t, "600111222", order.Phone)
	assert.Equal(t, "1 Navy Way", order.Address1)
	assert.Equal(t, "Washington", order.City)
	assert.Equal(t, "33.33", order.TotalPrice.StringFixed(2))
}

func TestOrdersAreScopedToUser(t *testing.T) {
	db := setupTestDB(t)
	menu := seedTestMenu(t, db)
	service := NewOrderService(db)

	alice := models.User{Phone: "1", Password: "x", FirstName: "Alice", LastName: "A"}
	bob := models.User{Phone: "2", Password: "x", FirstName: "Bob", LastName: "B"}
	require.NoError(t, db.Create(&alice).Error)
	require.NoError(t, db.Create(&bob).Error)

	first, err := service.PlaceOrder(fillCart(t, db, "a1", map[uint]int{menu.dishes["sorbet"].ID: 1}), OrderInput{UserID: &alice.ID})
	require.NoError(t, err)
	second, err := service.PlaceOrder(fillCart(t, db, "a2", map[uint]int{menu.dishes["cheesecake"].ID: 1}), OrderInput{UserID: &alice.ID})
	require.NoError(t, err)

	orders, err := service.ListOrdersForUser(alice.ID)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, second.ID, orders[0].ID)
	assert.Equal(t, first.ID, orders[1].ID)

	orders, err = service.ListOrdersForUser(bob.ID)
	require.NoError(t, err)
	assert.Empty(t, orders)

	_, err = service.GetOrderForUser(bob.ID, first.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	own, err := service.GetOrderForUser(alice.ID, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "sorbet", own.Items[0].Dish.Slug)
}

func TestUpdateStatus(t *testing.T) {
	db := setupTestDB(t)
	menu := seedTestMenu(t, db)
	service := NewOrderService(db)

	order, err := service.PlaceOrder(fillCart(t, db, "session", map[uint]int{menu.dishes["sorbet"].ID: 1}), guestInput())
	require.NoError(t, err)

	for _, next := range []models.OrderStatus{models.StatusProcessing, models.StatusShipped, models.StatusDelivered} {
		order, err = service.UpdateStatus(order.ID, next)
		require.NoError(t, err)
		assert.Equal(t, next, order.Status)
	}

	_, err = service.UpdateStatus(order.ID, models.StatusCancelled)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = service.UpdateStatus(order.ID, models.OrderStatus("lost"))
	assert.ErrorIs(t, err, ErrValidation)

	_, err = service.UpdateStatus(9999, models.StatusProcessing)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to models.OrderStatus
		allowed  bool
	}{
		{models.StatusPending, models.StatusProcessing, true},
		{models.StatusPending, models.StatusCancelled, true},
		{models.StatusPending, models.StatusShipped, false},
		{models.StatusProcessing, models.StatusShipped, true},
		{models.StatusShipped, models.StatusDelivered, true},
		{models.StatusShipped, models.StatusCancelled, true},
		{models.StatusDelivered, models.StatusCancelled, false},
		{models.StatusCancelled, models.StatusPending, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"_to_"+string(tt.to), func(t *testing.T) {
			err := CanTransition(tt.from, tt.to)
			if tt.allowed {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrValidation)
			}
		})
	}

	assert.Empty(t, NextStatuses(models.StatusDelivered))
	assert.Contains(t, describeNext(models.StatusCancelled), "terminal")
	assert.Contains(t, describeNext(models.StatusShipped), "delivered")

	err := CanTransition(models.StatusDelivered, models.StatusShipped)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "no further transitions")
}

func TestOrderStatusTerminal(t *testing.T) {
	for _, status := range models.OrderStatuses {
		t.Run(string(status), func(t *testing.T) {
			terminal := status == models.StatusDelivered || status == models.StatusCancelled
			assert.Equal(t, terminal, status.Terminal())
			assert.Equal(t, terminal, len(NextStatuses(status)) == 0)
		})
	}
}

func TestListOrdersByStatus(t *testing.T) {
	db := setupTestDB(t)
	menu := seedTestMenu(t, db)
	service := NewOrderService(db)

	first, err := service.PlaceOrder(fillCart(t, db, "s1", map[uint]int{menu.dishes["sorbet"].ID: 1}), guestInput())
	require.NoError(t, err)
	_, err = service.PlaceOrder(fillCart(t, db, "s2", map[uint]int{menu.dishes["sorbet"].ID: 2}), guestInput())
	require.NoError(t, err)
	_, err = service.UpdateStatus(first.ID, models.StatusCancelled)
	require.NoError(t, err)

	all, err := service.ListOrders("")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	cancelled, err := service.ListOrders(models.StatusCancelled)
	require.NoError(t, err)
	require.Len(t, cancelled, 1)
	assert.Equal(t, first.ID, cancelled[0].ID)

	_, err = service.ListOrders(models.OrderStatus("lost"))
	assert.ErrorIs(t, err, ErrValidation)
}

func TestExportOrders(t *testing.T) {
	db := setupTestDB(t)
	menu := seedTestMenu(t, db)
	service := NewOrderService(db)

	_, err := service.PlaceOrder(fillCart(t, db, "session", map[uint]int{
		menu.dishes["margherita-pizza"].ID: 2,
		menu.dishes["caesar-salad"].ID:     1,
	}), guestInput())
	require.NoError(t, err)

	file, err := service.ExportOrders("")
	require.NoError(t, err)
	require.Len(t, file.Sheets, 1)

	sheet := file.Sheets[0]
	assert.Equal(t, "Orders", sheet.Name)
	require.Len(t, sheet.Rows, 3)
	assert.Equal(t, "OrderID", sheet.Rows[0].Cells[0].Value)

	lineTotals := map[string]string{}
	for _, row := range sheet.Rows[1:] {
		lineTotals[row.Cells[7].Value] = row.Cells[10].Value
		assert.Equal(t, "250.00", row.Cells[11].Value)
	}
	assert.Equal(t, map[string]string{"Margherita Pizza": "200.00", "Caesar Salad": "50.00"}, lineTotals)
}
