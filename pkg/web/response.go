// Package web defines common components for a web application.
package web

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Response holds the common response type for all APIs.
type Response struct {
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

// Error wraps a given err into a json friendly response.
func Error(err error) Response {
	return Response{Error: err.Error()}
}

// GetErrorMsg returns a human readable message for the given validation error.
func GetErrorMsg(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return " is required"
	case "min":
		return fmt.Sprintf(" must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf(" must be at most %s characters", fe.Param())
	case "email":
		return " is not a valid email"
	case "alphanum":
		return " must contain only letters and numbers"
	case "oneof":
		return fmt.Sprintf(" must be one of [%s]", fe.Param())
	case "gt":
		return fmt.Sprintf(" must be greater than %s", fe.Param())
	case "gte":
		return fmt.Sprintf(" must be at least %s", fe.Param())
	}

	return " is invalid"
}

// GetErrorsMsg joins messages for all given validation errors.
func GetErrorsMsg(ve validator.ValidationErrors) string {
	var msg string

	for i, fe := range ve {
		if i > 0 {
			msg += "; "
		}

		msg += fe.Field() + GetErrorMsg(fe)
	}

	return msg
}
