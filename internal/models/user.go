package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// User is a customer or operator account, identified by phone number
type User struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	Phone             string     `gorm:"size:20;uniqueIndex;not null" json:"phone"`
	Email             string     `gorm:"size:254" json:"email"`
	Password          string     `gorm:"not null" json:"-"`
	FirstName         string     `gorm:"size:50" json:"first_name"`
	LastName          string     `gorm:"size:50" json:"last_name"`
	Address1          string     `gorm:"size:255" json:"address1"`
	Address2          string     `gorm:"size:255" json:"address2"`
	City              string     `gorm:"size:100" json:"city"`
	Country           string     `gorm:"size:100" json:"country"`
	PostalCode        string     `gorm:"size:20" json:"postal_code"`
	Role              string     `gorm:"size:20;default:'user'" json:"role"`
	ExcludedAllergens []Allergen `gorm:"many2many:user_excluded_allergens;" json:"excluded_allergens"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// HashPassword replaces the plain password with its bcrypt hash
func (u *User) HashPassword() error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashed)
	return nil
}

// CheckPassword compares a plain password with the stored hash
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) == nil
}
