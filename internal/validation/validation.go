// ABOUTME: Shared go-playground/validator instance keyed on JSON field names.
// ABOUTME: Translates the first failed rule into a models.ValidationError with a field path.
package validation

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/harperreed/biosync/internal/models"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Struct validates s against its `validate` tags. The first failure is
// returned as a *models.ValidationError whose Field is a JSON path such as
// "exercises[1].sets[0].rpe".
func Struct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return fieldError(fieldErrs[0])
	}
	return models.Invalid("", "%v", err)
}

// fieldError drops the root struct name from the namespace.
func fieldError(fe validator.FieldError) *models.ValidationError {
	path := fe.Namespace()
	if _, rest, ok := strings.Cut(path, "."); ok {
		path = rest
	}

	var msg string
	switch fe.Tag() {
	case "required":
		msg = "is required"
	case "min":
		msg = "must be at least " + fe.Param()
	case "max":
		if fe.Kind() == reflect.String {
			msg = "must be at most " + fe.Param() + " characters"
		} else {
			msg = "must be at most " + fe.Param()
		}
	case "oneof":
		msg = "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	default:
		msg = "failed " + fe.Tag() + " check"
	}
	return models.Invalid(path, "%s", msg)
}
