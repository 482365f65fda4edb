// Package validation registers the troop-specific validator tags.
package validation

import (
	"fmt"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/troop78/troophub/internal/models"
)

var (
	once     sync.Once
	validate *validator.Validate
)

// Tags registered by Register.
const (
	TagRole          = "troop_role"
	TagChannel       = "blast_channel"
	TagMedicalStatus = "medical_status"
)

// Register adds the custom tags to v.
func Register(v *validator.Validate) error {
	if err := v.RegisterValidation(TagRole, func(fl validator.FieldLevel) bool {
		return models.Role(fl.Field().String()).Valid()
	}); err != nil {
		return fmt.Errorf("register %s: %w", TagRole, err)
	}
	if err := v.RegisterValidation(TagChannel, func(fl validator.FieldLevel) bool {
		return models.Channel(fl.Field().String()).Valid()
	}); err != nil {
		return fmt.Errorf("register %s: %w", TagChannel, err)
	}
	if err := v.RegisterValidation(TagMedicalStatus, func(fl validator.FieldLevel) bool {
		switch models.MedicalStatus(fl.Field().String()) {
		case models.MedicalComplete, models.MedicalPending, models.MedicalMissing:
			return true
		}
		return false
	}); err != nil {
		return fmt.Errorf("register %s: %w", TagMedicalStatus, err)
	}
	return nil
}

// RegisterGin adds the custom tags to gin's binding validator.
func RegisterGin() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected binding engine %T", binding.Validator.Engine())
	}
	return Register(v)
}

// Struct validates s with a standalone validator carrying the custom tags.
func Struct(s interface{}) error {
	once.Do(func() {
		validate = validator.New()
		if err := Register(validate); err != nil {
			panic(err)
		}
	})
	return validate.Struct(s)
}
