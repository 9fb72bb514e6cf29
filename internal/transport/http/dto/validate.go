package dto

import (
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/fieldcrew/marketplace-api/internal/domain"
)

// defaultPhoneRegion is the region used to parse national phone formats.
const defaultPhoneRegion = "US"

var validate *validator.Validate

func init() {
	validate = validator.New()

	// Report fields by their json names so error maps match the wire format.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	validate.RegisterValidation("password_strength", validatePasswordStrength)
	validate.RegisterValidation("phone", validatePhone)
}

// validatePasswordStrength requires at least one uppercase letter, one
// lowercase letter and one number.
func validatePasswordStrength(fl validator.FieldLevel) bool {
	password := fl.Field().String()

	hasUpper := false
	hasLower := false
	hasNumber := false

	for _, char := range password {
		if unicode.IsUpper(char) {
			hasUpper = true
		}
		if unicode.IsLower(char) {
			hasLower = true
		}
		if unicode.IsNumber(char) {
			hasNumber = true
		}

		if hasUpper && hasLower && hasNumber {
			return true
		}
	}

	return hasUpper && hasLower && hasNumber
}

func validatePhone(fl validator.FieldLevel) bool {
	_, err := parsePhone(fl.Field().String())
	return err == nil
}

// validateStruct runs the schema rules and converts failures into the
// field -> message map the error response renders.
func validateStruct(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return domain.ErrInvalidJSON(err)
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fieldErrorMessage(fe)
	}
	return domain.ErrValidationFailed(fields)
}

func fieldErrorMessage(fe validator.FieldError) string {
	field := fe.Field()

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	case "phone":
		return fmt.Sprintf("%s must be a valid phone number", field)
	case "password_strength":
		return fmt.Sprintf("%s must contain at least one uppercase letter, one lowercase letter, and one number", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
