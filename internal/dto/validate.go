// Package dto holds the request shapes accepted by the API.  Each request
// is a plain value type bound from JSON, normalised, and validated with
// go-playground/validator before it reaches a use-case.  Validation
// failures are reported as a field → messages map inside an
// apperror.KindValidation error.
package dto

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/iliyamo/movie-catalog/internal/apperror"
)

// InvalidDataMessage is the top-level message of every validation error.
const InvalidDataMessage = "The given data was invalid."

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report json names so clients can map errors back to their payload
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// maxbytes bounds the encoded length; bcrypt rejects passwords over 72 bytes
	if err := v.RegisterValidation("maxbytes", maxBytes); err != nil {
		panic(err)
	}
	return v
}

func maxBytes(fl validator.FieldLevel) bool {
	limit, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return len(fl.Field().String()) <= limit
}

// FieldErrors collects messages per json field.
type FieldErrors map[string][]string

// Add appends msg to the messages of field.
func (fe FieldErrors) Add(field, msg string) {
	fe[field] = append(fe[field], msg)
}

func check(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return apperror.Internal("validation failed", err)
	}
	fields := FieldErrors{}
	for _, fe := range ves {
		fields.Add(fe.Field(), message(fe))
	}
	return apperror.Validation(InvalidDataMessage, fields)
}

func message(fe validator.FieldError) string {
	field := strings.ReplaceAll(fe.Field(), "_", " ")
	isString := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", field)
	case "email":
		return fmt.Sprintf("The %s must be a valid email address.", field)
	case "url":
		return fmt.Sprintf("The %s must be a valid URL.", field)
	case "min":
		if isString {
			return fmt.Sprintf("The %s must be at least %s characters.", field, fe.Param())
		}
		return fmt.Sprintf("The %s must be at least %s.", field, fe.Param())
	case "max":
		if isString {
			return fmt.Sprintf("The %s may not be greater than %s characters.", field, fe.Param())
		}
		return fmt.Sprintf("The %s may not be greater than %s.", field, fe.Param())
	case "maxbytes":
		return fmt.Sprintf("The %s may not be greater than %s bytes.", field, fe.Param())
	default:
		return fmt.Sprintf("The %s is invalid.", field)
	}
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
