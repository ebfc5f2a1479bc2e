package common

import (
	"errors"
	"strings"

	validator "github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// FieldError describes a single failed validation rule.
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Param string `json:"param,omitempty"`
}

// ValidateStruct validates v using the shared validator instance. Rule
// violations are returned as a VALIDATION_FAILED AppError whose Details hold
// a []FieldError.
func ValidateStruct(v any) error {
	return fieldErrors(validate.Struct(v))
}

// ValidateStructExcept is ValidateStruct skipping the named top-level fields.
func ValidateStructExcept(v any, fields ...string) error {
	return fieldErrors(validate.StructExcept(v, fields...))
}

func fieldErrors(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make([]FieldError, 0, len(verrs))
	names := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, FieldError{Field: fe.Namespace(), Rule: fe.Tag(), Param: fe.Param()})
		names = append(names, fe.Field())
	}
	return ValidationError("invalid "+strings.Join(names, ", "), fields)
}
