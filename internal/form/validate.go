// Package form validates user-entered product payloads before they reach the catalog.
package form

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"storefront-catalog/internal/domain"
)

// FieldError reports why a single field was rejected.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationErrors lists every rejected field of a payload, in struct field order.
type ValidationErrors []FieldError

func (ve ValidationErrors) Error() string {
	parts := make([]string, len(ve))
	for i, fe := range ve {
		parts[i] = fe.Field + ": " + fe.Reason
	}
	return "form: validation failed: " + strings.Join(parts, "; ")
}

// Validator wraps a configured validator.Validate. It is safe for concurrent use.
type Validator struct {
	validate *validator.Validate
}

// New creates a Validator with the catalog's custom rules registered.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report json names, the presentation binds fields by them
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("integral", isIntegral); err != nil {
		panic(fmt.Sprintf("form: register integral rule: %v", err))
	}
	return &Validator{validate: v}
}

func isIntegral(fl validator.FieldLevel) bool {
	switch fl.Field().Kind() {
	case reflect.Float32, reflect.Float64:
		f := fl.Field().Float()
		return f == math.Trunc(f)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	}
	return false
}

// ValidateInput checks an add payload.
func (v *Validator) ValidateInput(in domain.ProductInput) error {
	return v.check(in)
}

// ValidateProduct checks an update payload. The id must be positive; other fields follow the add rules.
func (v *Validator) ValidateProduct(p domain.Product) error {
	var fieldErrs ValidationErrors
	if p.ID <= 0 {
		fieldErrs = append(fieldErrs, FieldError{Field: "id", Reason: "must be a positive integer"})
	}
	if err := v.check(p.Input()); err != nil {
		var ve ValidationErrors
		if !errors.As(err, &ve) {
			return err
		}
		fieldErrs = append(fieldErrs, ve...)
	}
	if len(fieldErrs) > 0 {
		return fieldErrs
	}
	return nil
}

func (v *Validator) check(in domain.ProductInput) error {
	err := v.validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("form: validate: %w", err)
	}
	out := make(ValidationErrors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{Field: fe.Field(), Reason: reason(fe)})
	}
	return out
}

// reason renders the messages the product form shows next to each field.
func reason(fe validator.FieldError) string {
	label := strings.ToUpper(fe.Field()[:1]) + fe.Field()[1:]
	switch fe.Tag() {
	case "required":
		return label + " is required"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", label, fe.Param())
	case "gt":
		return label + " must be positive"
	case "integral":
		return label + " must be an integer"
	case "datauri|url":
		return label + " must be a data URI or a URL"
	}
	return fmt.Sprintf("%s failed %q", label, fe.Tag())
}
