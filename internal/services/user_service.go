package services

import (
	"strings"

	"github.com/franciscosanchezn/gin-bistro-api/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ProfileInput holds the editable account fields. An empty phone keeps the current one.
type ProfileInput struct {
	FirstName  string
	LastName   string
	Email      string
	Phone      string
	Address1   string
	Address2   string
	City       string
	Country    string
	PostalCode string
}

// UserService manages accounts and their allergen preferences
type UserService interface {
	// CreateUser registers a new account, the phone number must be unused
	CreateUser(user *models.User) error
	// GetUserByPhone retrieves an account by its phone number
	GetUserByPhone(phone string) (*models.User, error)
	// GetUserByID retrieves an account with its excluded allergens
	GetUserByID(id uint) (*models.User, error)
	// UpdateProfile replaces the profile fields of an account
	UpdateProfile(id uint, input ProfileInput) (*models.User, error)
	// GetExcludedAllergens returns the sorted IDs of the allergens the user excludes
	GetExcludedAllergens(userID uint) ([]uint, error)
	// SetExcludedAllergens replaces the whole exclusion set, unknown IDs are dropped
	SetExcludedAllergens(userID uint, allergenIDs []uint) ([]uint, error)
}

type userService struct {
	db *gorm.DB
}

// NewUserService creates a new instance of UserService
func NewUserService(db *gorm.DB) UserService {
	return &userService{db: db}
}

func (s *userService) CreateUser(user *models.User) error {
	user.Phone = strings.TrimSpace(user.Phone)
	if user.Phone == "" {
		return validationError("phone is required")
	}

	var existing models.User
	if err := s.db.Where("phone = ?", user.Phone).First(&existing).Error; err == nil {
		return conflictError("phone %s is already registered", user.Phone)
	}

	if err := s.db.Create(user).Error; err != nil {
		return translateError(err, "user")
	}
	log.WithField("user_id", user.ID).Info("User registered")
	return nil
}

func (s *userService) GetUserByPhone(phone string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("phone = ?", strings.TrimSpace(phone)).First(&user).Error; err != nil {
		return nil, translateError(err, "user")
	}
	return &user, nil
}

func (s *userService) GetUserByID(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.Preload("ExcludedAllergens").First(&user, id).Error; err != nil {
		return nil, translateError(err, "user")
	}
	return &user, nil
}

func (s *userService) UpdateProfile(id uint, input ProfileInput) (*models.User, error) {
	if strings.TrimSpace(input.FirstName) == "" || strings.TrimSpace(input.LastName) == "" {
		return nil, validationError("first_name and last_name are required")
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, id).Error; err != nil {
			return translateError(err, "user")
		}

		phone := strings.TrimSpace(input.Phone)
		if phone != "" && phone != user.Phone {
			var taken int64
			if err := tx.Model(&models.User{}).Where("phone = ? AND id <> ?", phone, id).Count(&taken).Error; err != nil {
				return err
			}
			if taken > 0 {
				return conflictError("phone %s is already registered", phone)
			}
			user.Phone = phone
		}

		user.FirstName = input.FirstName
		user.LastName = input.LastName
		user.Email = input.Email
		user.Address1 = input.Address1
		user.Address2 = input.Address2
		user.City = input.City
		user.Country = input.Country
		user.PostalCode = input.PostalCode
		if err := tx.Omit("ExcludedAllergens").Save(&user).Error; err != nil {
			return translateError(err, "user")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.WithField("user_id", id).Info("Profile updated")
	return s.GetUserByID(id)
}

func (s *userService) GetExcludedAllergens(userID uint) ([]uint, error) {
	var ids []uint
	err := s.db.Table("user_excluded_allergens").
		Where("user_id = ?", userID).
		Order("allergen_id").
		Pluck("allergen_id", &ids).Error
	if err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []uint{}
	}
	return ids, nil
}

func (s *userService) SetExcludedAllergens(userID uint, allergenIDs []uint) ([]uint, error) {
	var stored []uint
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, userID).Error; err != nil {
			return translateError(err, "user")
		}
		allergens, err := findAllergens(tx, allergenIDs)
		if err != nil {
			return err
		}
		if err := replaceAllergens(tx, &user, "ExcludedAllergens", allergens); err != nil {
			return err
		}
		stored = models.AllergenIDs(allergens)
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"user_id":   userID,
		"requested": len(allergenIDs),
		"stored":    len(stored),
	}).Info("Allergen preferences replaced")
	return stored, nil
}

// AllergenSet indexes allergen IDs for membership checks
func AllergenSet(ids []uint) map[uint]struct{} {
	set := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
