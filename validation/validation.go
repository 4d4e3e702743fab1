// Package validation holds the request schemas for every inbound payload
// and query-parameter set. Schemas are pure: they normalize, check bounds
// and report field-level errors, nothing else.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

func init() {
	// Report violations by json field name, not Go field name.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
}

// FieldErrors maps a field name to a human-readable violation message.
type FieldErrors map[string]string

// Any reports whether at least one violation was recorded.
func (e FieldErrors) Any() bool { return len(e) > 0 }

func check(s any) FieldErrors {
	errs := FieldErrors{}
	if err := validate.Struct(s); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				errs[fe.Field()] = message(fe)
			}
		} else {
			errs["request"] = "Invalid request"
		}
	}
	return errs
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Invalid email address"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("Must be at least %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Must not exceed %s characters", fe.Param())
		}
		return fmt.Sprintf("Must not exceed %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("Must be one of: %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	}
	return "Invalid value"
}
