package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Cart is the session-scoped aggregate of pending line items.
// There is exactly one cart per session key.
type Cart struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	SessionKey string     `gorm:"size:40;uniqueIndex;not null" json:"-"`
	Items      []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func (Cart) TableName() string {
	return "carts"
}

// TotalItems is the sum of the quantities of all the items of the cart
func (c *Cart) TotalItems() int {
	total := 0
	for _, item := range c.Items {
		total += item.Quantity
	}
	return total
}

// Subtotal is the exact decimal sum of price x quantity over all the items.
// Items must be loaded with their dish.
func (c *Cart) Subtotal() decimal.Decimal {
	subtotal := decimal.Zero
	for _, item := range c.Items {
		subtotal = subtotal.Add(item.LineTotal())
	}
	return subtotal
}

// CartItem is one (dish, quantity) line of a cart. The (cart, dish) pair is unique.
type CartItem struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	CartID   uint      `gorm:"not null;uniqueIndex:idx_cart_items_cart_dish" json:"-"`
	DishID   uint      `gorm:"not null;uniqueIndex:idx_cart_items_cart_dish" json:"dish_id"`
	Dish     Dish      `gorm:"foreignKey:DishID" json:"dish"`
	Quantity int       `gorm:"not null" json:"quantity"`
	AddedAt  time.Time `gorm:"autoCreateTime" json:"added_at"`
}

func (CartItem) TableName() string {
	return "cart_items"
}

// LineTotal is the live dish price times the quantity
func (i *CartItem) LineTotal() decimal.Decimal {
	return i.Dish.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
