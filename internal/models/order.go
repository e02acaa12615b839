package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of an order
type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

// OrderStatuses lists every known status in lifecycle order
var OrderStatuses = []OrderStatus{
	StatusPending,
	StatusProcessing,
	StatusShipped,
	StatusDelivered,
	StatusCancelled,
}

// Valid reports whether s is one of the enumerated statuses
func (s OrderStatus) Valid() bool {
	for _, known := range OrderStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Terminal reports whether no transition may leave s
func (s OrderStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// Order is the immutable record of a checked out cart.
// TotalPrice is a snapshot and does not follow later dish price changes.
type Order struct {
	ID                  uint            `gorm:"primaryKey" json:"id"`
	UserID              *uint           `gorm:"index" json:"user_id,omitempty"`
	User                *User           `gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL" json:"-"`
	FirstName           string          `gorm:"size:50;not null" json:"first_name"`
	LastName            string          `gorm:"size:50;not null" json:"last_name"`
	Phone               string          `gorm:"size:20;not null" json:"phone"`
	Address1            string          `gorm:"size:100" json:"address1"`
	Address2            string          `gorm:"size:100" json:"address2"`
	City                string          `gorm:"size:100" json:"city"`
	Country             string          `gorm:"size:100" json:"country"`
	PostalCode          string          `gorm:"size:20" json:"postal_code"`
	SpecialInstructions string          `gorm:"type:text" json:"special_instructions"`
	TotalPrice          decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total_price"`
	Status              OrderStatus     `gorm:"size:20;not null;index" json:"status"`
	Items               []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

func (Order) TableName() string {
	return "orders"
}

// OrderItem is a line of an order with the dish price captured at checkout
type OrderItem struct {
	ID       uint            `gorm:"primaryKey" json:"id"`
	OrderID  uint            `gorm:"not null;index" json:"-"`
	DishID   uint            `gorm:"not null" json:"dish_id"`
	Dish     Dish            `gorm:"foreignKey:DishID" json:"dish"`
	Quantity int             `gorm:"not null" json:"quantity"`
	Price    decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
}

func (OrderItem) TableName() string {
	return "order_items"
}

// LineTotal is the snapshot price times the quantity
func (i *OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
