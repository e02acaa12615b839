package services

import (
	"errors"
	"strings"
	"time"

	"github.com/franciscosanchezn/gin-bistro-api/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// CartService manages the session-scoped carts
type CartService interface {
	// ResolveCart returns the cart of the session, creating it on first use
	ResolveCart(sessionKey string) (*models.Cart, error)
	// LoadItems reloads the items of the cart with their dishes, most recently added first
	LoadItems(cart *models.Cart) error
	// AddDish merges quantity into the cart line of the dish, creating the line if needed
	AddDish(cart *models.Cart, dishID uint, quantity int) (*models.CartItem, error)
	// UpdateQuantity overwrites the quantity of a line, a zero quantity deletes it
	UpdateQuantity(cart *models.Cart, itemID uint, quantity int) error
	// RemoveItem deletes a line and reports whether it existed
	RemoveItem(cart *models.Cart, itemID uint) (bool, error)
	// Clear deletes every line of the cart
	Clear(cart *models.Cart) error
}

type cartService struct {
	db *gorm.DB
}

// NewCartService creates a new instance of CartService
func NewCartService(db *gorm.DB) CartService {
	return &cartService{db: db}
}

func (s *cartService) ResolveCart(sessionKey string) (*models.Cart, error) {
	sessionKey = strings.TrimSpace(sessionKey)
	if sessionKey == "" {
		return nil, validationError("session key is required")
	}

	cart, err := s.findCart(sessionKey)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	cart = &models.Cart{SessionKey: sessionKey, Items: []models.CartItem{}}
	err = s.db.Create(cart).Error
	switch {
	case err == nil:
		log.WithField("cart_id", cart.ID).Debug("Cart created")
		return cart, nil
	case errors.Is(err, gorm.ErrDuplicatedKey):
		// A concurrent request created the cart first
		log.WithField("session_key", sessionKey).Debug("Cart creation lost the race, reloading")
		return s.findCart(sessionKey)
	default:
		return nil, err
	}
}

func (s *cartService) LoadItems(cart *models.Cart) error {
	items, err := loadCartItems(s.db, cart.ID)
	if err != nil {
		return err
	}
	cart.Items = items
	return nil
}

func (s *cartService) AddDish(cart *models.Cart, dishID uint, quantity int) (*models.CartItem, error) {
	if quantity < 1 {
		return nil, validationError("quantity must be at least 1, got %d", quantity)
	}

	var item models.CartItem
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var dish models.Dish
		if err := tx.Select("id").First(&dish, dishID).Error; err != nil {
			return translateError(err, "dish")
		}

		merged, err := incrementCartItem(tx, cart.ID, dishID, quantity)
		if err != nil {
			return err
		}
		if !merged {
			// The savepoint keeps the outer transaction usable when the insert hits the unique index
			err := tx.Transaction(func(inner *gorm.DB) error {
				return inner.Create(&models.CartItem{CartID: cart.ID, DishID: dishID, Quantity: quantity}).Error
			})
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				log.WithFields(logrus.Fields{"cart_id": cart.ID, "dish_id": dishID}).Debug("Cart item created concurrently, merging")
				merged, err := incrementCartItem(tx, cart.ID, dishID, quantity)
				if err != nil {
					return err
				}
				if !merged {
					return translateError(gorm.ErrRecordNotFound, "cart item")
				}
			} else if err != nil {
				return err
			}
		}

		if err := touchCart(tx, cart.ID); err != nil {
			return err
		}
		if err := tx.Preload("Dish").Where("cart_id = ? AND dish_id = ?", cart.ID, dishID).First(&item).Error; err != nil {
			return translateError(err, "cart item")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"cart_id":  cart.ID,
		"dish_id":  dishID,
		"added":    quantity,
		"quantity": item.Quantity,
	}).Debug("Dish added to cart")
	return &item, nil
}

func (s *cartService) UpdateQuantity(cart *models.Cart, itemID uint, quantity int) error {
	if quantity < 0 {
		return validationError("quantity must not be negative, got %d", quantity)
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var item models.CartItem
		if err := tx.Where("id = ? AND cart_id = ?", itemID, cart.ID).First(&item).Error; err != nil {
			return translateError(err, "cart item")
		}
		if quantity == 0 {
			if err := tx.Delete(&item).Error; err != nil {
				return err
			}
		} else if err := tx.Model(&item).Update("quantity", quantity).Error; err != nil {
			return err
		}
		return touchCart(tx, cart.ID)
	})
}

func (s *cartService) RemoveItem(cart *models.Cart, itemID uint) (bool, error) {
	result := s.db.Where("id = ? AND cart_id = ?", itemID, cart.ID).Delete(&models.CartItem{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (s *cartService) Clear(cart *models.Cart) error {
	if err := s.db.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error; err != nil {
		return err
	}
	cart.Items = []models.CartItem{}
	return nil
}

func (s *cartService) findCart(sessionKey string) (*models.Cart, error) {
	var cart models.Cart
	if err := s.db.Where("session_key = ?", sessionKey).First(&cart).Error; err != nil {
		return nil, err
	}
	items, err := loadCartItems(s.db, cart.ID)
	if err != nil {
		return nil, err
	}
	cart.Items = items
	return &cart, nil
}

func loadCartItems(db *gorm.DB, cartID uint) ([]models.CartItem, error) {
	items := []models.CartItem{}
	err := db.Preload("Dish").
		Where("cart_id = ?", cartID).
		Order("added_at DESC").Order("id DESC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// incrementCartItem adds quantity to an existing line in a single statement
func incrementCartItem(tx *gorm.DB, cartID, dishID uint, quantity int) (bool, error) {
	result := tx.Model(&models.CartItem{}).
		Where("cart_id = ? AND dish_id = ?", cartID, dishID).
		UpdateColumn("quantity", gorm.Expr("quantity + ?", quantity))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func touchCart(tx *gorm.DB, cartID uint) error {
	return tx.Model(&models.Cart{}).Where("id = ?", cartID).UpdateColumn("updated_at", time.Now()).Error
}
