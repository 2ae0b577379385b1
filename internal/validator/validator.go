package validator

import (
	"reflect"
	"strings"

	"github.com/SAP-F-2025/scoring-service/internal/models"
	"github.com/go-playground/validator/v10"
)

// Validator is the main validator instance that combines struct tag and
// business rule validation.
type Validator struct {
	structValidator   *validator.Validate
	businessValidator *BusinessValidator
}

// New creates a validator. presets lists the area preset names accepted by
// the area_preset tag; an empty preset value is always accepted.
func New(presets ...string) *Validator {
	structValidator := validator.New()

	registerCustomValidators(structValidator, presets)

	return &Validator{
		structValidator:   structValidator,
		businessValidator: NewBusinessValidator(),
	}
}

// ValidateStruct validates struct tags only
func (v *Validator) ValidateStruct(s interface{}) error {
	return v.structValidator.Struct(s)
}

// ValidateBusiness validates business rules only
func (v *Validator) ValidateBusiness(s interface{}) ValidationErrors {
	return v.businessValidator.Validate(s)
}

// Validate performs complete validation (struct + business rules). Tag
// failures are returned as ValidationErrors.
func (v *Validator) Validate(s interface{}) error {
	if err := v.ValidateStruct(s); err != nil {
		if verrs := ToValidationErrors(err); len(verrs) > 0 {
			return verrs
		}
		return err
	}

	if errors := v.ValidateBusiness(s); len(errors) > 0 {
		return errors
	}

	return nil
}

// Business returns the business validator
func (v *Validator) Business() *BusinessValidator {
	return v.businessValidator
}

func registerCustomValidators(validate *validator.Validate, presets []string) {
	validate.RegisterValidation("session_status", validateSessionStatus)
	validate.RegisterValidation("page_status", validatePageStatus)

	known := make(map[string]struct{}, len(presets))
	for _, name := range presets {
		known[strings.ToLower(name)] = struct{}{}
	}
	validate.RegisterValidation("area_preset", func(fl validator.FieldLevel) bool {
		value := strings.ToLower(fl.Field().String())
		if value == "" {
			return true
		}
		_, ok := known[value]
		return ok
	})

	// Custom tag name function for better error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

func validateSessionStatus(fl validator.FieldLevel) bool {
	switch models.SessionStatus(fl.Field().String()) {
	case models.SessionUploading, models.SessionProcessing, models.SessionCompleted, models.SessionError:
		return true
	}
	return false
}

func validatePageStatus(fl validator.FieldLevel) bool {
	switch models.PageStatus(fl.Field().String()) {
	case models.PagePending, models.PageProcessing, models.PageCompleted, models.PageError:
		return true
	}
	return false
}
