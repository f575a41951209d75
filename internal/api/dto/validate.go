package dto

import (
	"errors"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/audioforge/studio/pkg/util"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})
	return v
}

// messenger is implemented by requests that phrase their own validation errors.
type messenger interface {
	validationMessage(field, tag string) string
}

// Lower ranks are reported first when several fields fail.
var tagRank = map[string]int{
	"required": 0,
	"eqfield":  1,
	"min":      2,
	"email":    3,
}

// Validate checks req against its struct tags and returns a VALIDATION_FAILED
// DomainError carrying a single user-facing message.
func Validate(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperrors.NewValidationError("Invalid request", nil)
	}

	sort.SliceStable(fieldErrs, func(i, j int) bool {
		return rank(fieldErrs[i].Tag()) < rank(fieldErrs[j].Tag())
	})
	first := fieldErrs[0]

	message := ""
	if m, ok := req.(messenger); ok {
		message = m.validationMessage(first.Field(), first.Tag())
	}
	if message == "" {
		message = defaultMessage(first)
	}

	fields := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields = append(fields, fe.Field())
	}
	return apperrors.NewValidationError(message, map[string]any{"fields": fields})
}

func rank(tag string) int {
	if r, ok := tagRank[tag]; ok {
		return r
	}
	return len(tagRank)
}

func defaultMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "oneof":
		return fe.Field() + " must be one of: " + fe.Param()
	case "min", "gte", "gt":
		return fe.Field() + " is too small"
	case "max", "lte", "lt":
		return fe.Field() + " is too large"
	default:
		return fe.Field() + " is invalid"
	}
}
