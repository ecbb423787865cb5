package domain

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/currency"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// Report fields under their wire names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	v.RegisterValidation("currency_code", func(fl validator.FieldLevel) bool {
		return IsCurrencyCode(fl.Field().String())
	})
	v.RegisterValidation("minor_units", func(fl validator.FieldLevel) bool {
		switch fl.Field().Kind() {
		case reflect.String:
			_, ok := MinorUnits(fl.Field().String()).Int64()
			return ok
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return true
		}
		return false
	})
	v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})

	return v
}

// IsCurrencyCode reports whether code is a recognised ISO 4217 code, in any case.
func IsCurrencyCode(code string) bool {
	if len(code) != 3 || strings.EqualFold(code, "xxx") {
		return false
	}
	unit, err := currency.ParseISO(code)
	return err == nil && unit != currency.Unit{}
}

// NormalizeCurrency returns code in the lower-case form the processor expects.
func NormalizeCurrency(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}

// Validate checks s against its validate tags and reports the first
// violation as a *ValidationError.
func Validate(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return &ValidationError{Field: fe.Field(), Reason: reasonFor(fe)}
	}
	return &ValidationError{Reason: err.Error()}
}

func reasonFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return "is required"
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "minor_units":
		return "must be a whole number of minor currency units"
	case "currency_code":
		return "must be an ISO 4217 currency code"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
