package config

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/kbukum/coreapi/repository"
)

var (
	validate *validator.Validate
	once     sync.Once
)

// getValidator returns the singleton validator. Field names in errors are
// the mapstructure keys used in config files.
func getValidator() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("mapstructure"), ",")
			if name == "" {
				return strings.ToLower(fld.Name)
			}
			return name
		})
		_ = validate.RegisterValidation("api_host", func(fl validator.FieldLevel) bool {
			return repository.ValidateHost(fl.Field().String()) == nil
		})
	})
	return validate
}

// validateStruct checks validate tags and returns one error listing every
// failing key.
func validateStruct(s any) error {
	err := getValidator().Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	messages := make([]string, 0, len(verrs))
	for _, e := range verrs {
		messages = append(messages, keyOf(e)+": "+formatValidationError(e))
	}
	return errors.New(strings.Join(messages, "; "))
}

// keyOf drops the root type name from the namespace and the empty segment a
// squashed struct leaves behind.
func keyOf(e validator.FieldError) string {
	parts := strings.Split(e.Namespace(), ".")
	out := parts[:0]
	for _, p := range parts[1:] {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, ".")
}

func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required", "required_if":
		return "is required"
	case "oneof":
		return "must be one of: " + e.Param()
	case "gte":
		return "must be at least " + e.Param()
	case "api_host":
		return "must be a host name or IP with an optional port"
	default:
		return "is invalid"
	}
}
