package validation

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/playmatch/api/pkg/apperrors"
)

var (
	zipPattern  = regexp.MustCompile(`^\d{5}(-\d{4})?$`)
	hhmmPattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)
)

// Rules maps custom binding tags to their checks.
var Rules = map[string]validator.Func{
	"zipcode": func(fl validator.FieldLevel) bool {
		return IsZipCode(fl.Field().String())
	},
	"hhmm": func(fl validator.FieldLevel) bool {
		return IsClock(fl.Field().String())
	},
	"sport": func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s == "tennis" || s == "pickleball"
	},
}

// IsZipCode reports whether s is a US ZIP or ZIP+4 code.
func IsZipCode(s string) bool {
	return zipPattern.MatchString(s)
}

// IsClock reports whether s is a 24h "HH:mm" time.
func IsClock(s string) bool {
	return hhmmPattern.MatchString(s)
}

// Register installs the custom rules on v.
func Register(v *validator.Validate) error {
	for tag, fn := range Rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("register %s: %w", tag, err)
		}
	}
	return nil
}

// RegisterWithGin installs the custom rules on gin's binding validator.
func RegisterWithGin() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin validator engine is not go-playground/validator")
	}
	return Register(v)
}

// ParseError turns a binding error into the API's validation error.
func ParseError(err error) error {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return apperrors.Invalid("body", err.Error())
	}

	fields := make(map[string]string, len(ve))
	for _, fe := range ve {
		fields[fe.Field()] = fmt.Sprintf("failed on the '%s' rule", fe.Tag())
	}
	return apperrors.NewValidationError(fields)
}
