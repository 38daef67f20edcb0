package services

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their JSON name.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateInput runs struct tag validation and turns the first failure into
// an InvalidArgument error.
func validateInput(input interface{}) error {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return wrapError(InvalidArgument, "Invalid input", err)
	}

	fe := fieldErrs[0]
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return newError(InvalidArgument, fmt.Sprintf("%s is required", field))
	case "min":
		return newError(InvalidArgument, fmt.Sprintf("%s must be at least %s characters", field, fe.Param()))
	case "max":
		return newError(InvalidArgument, fmt.Sprintf("%s must be at most %s characters", field, fe.Param()))
	case "email":
		return newError(InvalidArgument, fmt.Sprintf("%s must be a valid email address", field))
	case "datetime":
		return newError(InvalidArgument, fmt.Sprintf("%s must be a date in YYYY-MM-DD format", field))
	}
	return newError(InvalidArgument, fmt.Sprintf("%s is invalid", field))
}
