package services

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.InfoLevel)
}

// SetLogLevel sets the level of the package logger
func SetLogLevel(level logrus.Level) {
	log.SetLevel(level)
}

// Error classes returned by the services. Callers match them with errors.Is,
// the wrapped message carries the detail.
var (
	// ErrValidation reports bad input such as a negative quantity or an inverted price range
	ErrValidation = errors.New("validation failed")
	// ErrNotFound reports a missing dish, category, cart item, order or user
	ErrNotFound = errors.New("not found")
	// ErrConflict reports a uniqueness or concurrent state change conflict
	ErrConflict = errors.New("conflict")
)

func validationError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// translateError maps gorm errors onto the service error classes
func translateError(err error, entity string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%w: %s", ErrNotFound, entity)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %s already exists", ErrConflict, entity)
	default:
		return err
	}
}

func conflictError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}
