package usecase

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report json names so messages line up with the payload the caller sent
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// ValidateIngestLeadInput checks one canonical lead. Strings are trimmed first.
func ValidateIngestLeadInput(input *IngestLeadInput) []ValidationError {
	input.normalize()

	err := validate.Struct(input)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []ValidationError{{Field: "payload", Message: err.Error()}}
	}

	out := make([]ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, ValidationError{Field: fe.Field(), Message: describe(fe)})
	}
	return out
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return "must not exceed " + fe.Param() + " characters"
	case "url":
		return "must be a valid URL"
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "lte":
		return "must be less than or equal to " + fe.Param()
	case "excludesall":
		return "contains invalid characters"
	default:
		return "failed " + fe.Tag() + " check"
	}
}

// ValidateBatch validates every item, prefixing field names with the item index
// when there is more than one.
func ValidateBatch(inputs []IngestLeadInput) []ValidationError {
	if len(inputs) == 0 {
		return []ValidationError{{Field: "payload", Message: "contains no leads"}}
	}

	var all []ValidationError
	for i := range inputs {
		errs := ValidateIngestLeadInput(&inputs[i])
		for _, e := range errs {
			if len(inputs) > 1 {
				e.Field = fmt.Sprintf("[%d].%s", i, e.Field)
			}
			all = append(all, e)
		}
	}
	return all
}
