package models

import (
	"time"

	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Dish represents a menu entry.
// Price is a fixed-point decimal and must never be handled as a float.
type Dish struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Name        string          `gorm:"size:100;not null" json:"name"`
	Slug        string          `gorm:"size:100;uniqueIndex;not null" json:"slug"`
	Description string          `gorm:"size:200" json:"description"`
	CategoryID  uint            `gorm:"not null;index" json:"category_id"`
	Category    Category        `gorm:"foreignKey:CategoryID" json:"category"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Allergens   []Allergen      `gorm:"many2many:dish_allergens;" json:"allergens"`
	CreatedAt   time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (Dish) TableName() string {
	return "dishes"
}

// BeforeSave derives the slug from the name when none was given
func (d *Dish) BeforeSave(tx *gorm.DB) error {
	if d.Slug == "" {
		d.Slug = slug.Make(d.Name)
	}
	return nil
}

// HasAllergen reports whether the dish carries any allergen of the given set
func (d *Dish) HasAllergen(excluded map[uint]struct{}) bool {
	for _, a := range d.Allergens {
		if _, ok := excluded[a.ID]; ok {
			return true
		}
	}
	return false
}
