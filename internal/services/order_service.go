package services

import (
	"strings"

	"github.com/franciscosanchezn/gin-bistro-api/internal/models"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/tealeg/xlsx"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OrderInput carries the buyer of an order. UserID is nil for guest checkout,
// otherwise empty contact fields are taken from the user profile.
type OrderInput struct {
	UserID              *uint
	FirstName           string
	LastName            string
	Phone               string
	Address1            string
	Address2            string
	City                string
	Country             string
	PostalCode          string
	SpecialInstructions string
}

// OrderService captures orders from carts and drives their lifecycle
type OrderService interface {
	// PlaceOrder turns the cart into an order with snapshot prices and empties the cart
	PlaceOrder(cart *models.Cart, input OrderInput) (*models.Order, error)
	// GetOrder retrieves an order with its items
	GetOrder(orderID uint) (*models.Order, error)
	// GetOrderForUser retrieves an order only when it belongs to the user
	GetOrderForUser(userID, orderID uint) (*models.Order, error)
	// ListOrdersForUser returns the orders of a user, newest first
	ListOrdersForUser(userID uint) ([]models.Order, error)
	// ListOrders returns every order, optionally restricted to one status
	ListOrders(status models.OrderStatus) ([]models.Order, error)
	// UpdateStatus moves an order along its lifecycle
	UpdateStatus(orderID uint, status models.OrderStatus) (*models.Order, error)
	// ExportOrders builds a spreadsheet with one row per order line
	ExportOrders(status models.OrderStatus) (*xlsx.File, error)
}

type orderService struct {
	db *gorm.DB
}

// NewOrderService creates a new instance of OrderService
func NewOrderService(db *gorm.DB) OrderService {
	return &orderService{db: db}
}

func (s *orderService) PlaceOrder(cart *models.Cart, input OrderInput) (*models.Order, error) {
	var order models.Order
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if input.UserID != nil {
			if err := prefillContact(tx, &input); err != nil {
				return err
			}
		}
		if err := validateContact(input); err != nil {
			return err
		}

		var items []models.CartItem
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("cart_id = ?", cart.ID).
			Order("id").
			Find(&items).Error
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return validationError("cart is empty")
		}

		prices, err := dishPrices(tx, items)
		if err != nil {
			return err
		}

		order = models.Order{
			UserID:              input.UserID,
			FirstName:           input.FirstName,
			LastName:            input.LastName,
			Phone:               input.Phone,
			Address1:            input.Address1,
			Address2:            input.Address2,
			City:                input.City,
			Country:             input.Country,
			PostalCode:          input.PostalCode,
			SpecialInstructions: input.SpecialInstructions,
			Status:              models.StatusPending,
			TotalPrice:          decimal.Zero,
		}
		for _, item := range items {
			line := models.OrderItem{
				DishID:   item.DishID,
				Quantity: item.Quantity,
				Price:    prices[item.DishID],
			}
			order.TotalPrice = order.TotalPrice.Add(line.LineTotal())
			order.Items = append(order.Items, line)
		}

		if err := tx.Create(&order).Error; err != nil {
			return err
		}
		// Checkout consumes the cart so stale lines cannot be ordered twice
		return tx.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error
	})
	if err != nil {
		return nil, err
	}
	cart.Items = []models.CartItem{}

	log.WithFields(logrus.Fields{
		"order_id": order.ID,
		"cart_id":  cart.ID,
		"lines":    len(order.Items),
		"total":    order.TotalPrice.StringFixed(2),
	}).Info("Order placed")
	return s.GetOrder(order.ID)
}

func (s *orderService) GetOrder(orderID uint) (*models.Order, error) {
	var order models.Order
	if err := s.orderQuery().First(&order, orderID).Error; err != nil {
		return nil, translateError(err, "order")
	}
	return &order, nil
}

func (s *orderService) GetOrderForUser(userID, orderID uint) (*models.Order, error) {
	var order models.Order
	if err := s.orderQuery().Where("user_id = ?", userID).First(&order, orderID).Error; err != nil {
		return nil, translateError(err, "order")
	}
	return &order, nil
}

func (s *orderService) ListOrdersForUser(userID uint) ([]models.Order, error) {
	orders := []models.Order{}
	err := s.orderQuery().
		Where("user_id = ?", userID).
		Order("created_at DESC").Order("id DESC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (s *orderService) ListOrders(status models.OrderStatus) ([]models.Order, error) {
	query := s.orderQuery()
	if status != "" {
		if !status.Valid() {
			return nil, validationError("unknown order status %q", status)
		}
		query = query.Where("status = ?", status)
	}

	orders := []models.Order{}
	if err := query.Order("created_at DESC").Order("id DESC").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (s *orderService) UpdateStatus(orderID uint, status models.OrderStatus) (*models.Order, error) {
	if !status.Valid() {
		return nil, validationError("unknown order status %q", status)
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.Select("id", "status").First(&order, orderID).Error; err != nil {
			return translateError(err, "order")
		}
		if err := CanTransition(order.Status, status); err != nil {
			return err
		}

		// Guarded on the current status so that two operators cannot both move the same order
		result := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", orderID, order.Status).
			Update("status", status)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return conflictError("order %d changed status concurrently", orderID)
		}

		log.WithFields(logrus.Fields{
			"order_id": orderID,
			"from":     order.Status,
			"to":       status,
		}).Info("Order status updated")
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetOrder(orderID)
}

func (s *orderService) ExportOrders(status models.OrderStatus) (*xlsx.File, error) {
	orders, err := s.ListOrders(status)
	if err != nil {
		return nil, err
	}

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Orders")
	if err != nil {
		return nil, err
	}

	headers := []string{
		"OrderID", "Status", "CreatedAt", "FirstName", "LastName", "Phone", "City",
		"Dish", "Quantity", "Price", "LineTotal", "OrderTotal",
	}
	headerRow := sheet.AddRow()
	for _, h := range headers {
		headerRow.AddCell().SetValue(h)
	}

	for _, order := range orders {
		for _, item := range order.Items {
			row := sheet.AddRow()
			row.AddCell().SetValue(order.ID)
			row.AddCell().SetValue(string(order.Status))
			row.AddCell().SetValue(order.CreatedAt.Format("2006-01-02 15:04:05"))
			row.AddCell().SetValue(order.FirstName)
			row.AddCell().SetValue(order.LastName)
			row.AddCell().SetValue(order.Phone)
			row.AddCell().SetValue(order.City)
			row.AddCell().SetValue(item.Dish.Name)
			row.AddCell().SetValue(item.Quantity)
			// Money stays textual to keep the exact decimal value
			row.AddCell().SetValue(item.Price.StringFixed(2))
			row.AddCell().SetValue(item.LineTotal().StringFixed(2))
			row.AddCell().SetValue(order.TotalPrice.StringFixed(2))
		}
	}

	log.WithFields(logrus.Fields{"orders": len(orders), "status": status}).Info("Orders exported")
	return file, nil
}

func (s *orderService) orderQuery() *gorm.DB {
	return s.db.Model(&models.Order{}).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("order_items.id") }).
		Preload("Items.Dish")
}

// prefillContact fills empty contact fields from the profile of the buyer
func prefillContact(tx *gorm.DB, input *OrderInput) error {
	var user models.User
	if err := tx.First(&user, *input.UserID).Error; err != nil {
		return translateError(err, "user")
	}
	fill := func(field *string, value string) {
		if strings.TrimSpace(*field) == "" {
			*field = value
		}
	}
	fill(&input.FirstName, user.FirstName)
	fill(&input.LastName, user.LastName)
	fill(&input.Phone, user.Phone)
	fill(&input.Address1, user.Address1)
	fill(&input.Address2, user.Address2)
	fill(&input.City, user.City)
	fill(&input.Country, user.Country)
	fill(&input.PostalCode, user.PostalCode)
	return nil
}

func validateContact(input OrderInput) error {
	var missing []string
	if strings.TrimSpace(input.FirstName) == "" {
		missing = append(missing, "first_name")
	}
	if strings.TrimSpace(input.LastName) == "" {
		missing = append(missing, "last_name")
	}
	if strings.TrimSpace(input.Phone) == "" {
		missing = append(missing, "phone")
	}
	if len(missing) > 0 {
		return validationError("missing contact fields: %s", strings.Join(missing, ", "))
	}
	return nil
}

// dishPrices reads the live price of every dish of the cart
func dishPrices(tx *gorm.DB, items []models.CartItem) (map[uint]decimal.Decimal, error) {
	ids := make([]uint, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.DishID)
	}

	var dishes []models.Dish
	if err := tx.Select("id", "price").Where("id IN ?", ids).Find(&dishes).Error; err != nil {
		return nil, err
	}
	prices := make(map[uint]decimal.Decimal, len(dishes))
	for _, d := range dishes {
		prices[d.ID] = d.Price
	}
	for _, id := range ids {
		if _, ok := prices[id]; !ok {
			return nil, translateError(gorm.ErrRecordNotFound, "dish")
		}
	}
	return prices, nil
}
