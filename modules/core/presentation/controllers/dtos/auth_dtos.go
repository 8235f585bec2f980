package dtos

import (
	"github.com/go-playground/validator/v10"

	"github.com/gracewave/gracewave/pkg/constants"
)

type RegisterRequest struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Validate runs struct validation and flattens failures into a
// field-to-tag map for the error envelope.
func Validate(v interface{}) (map[string]string, bool) {
	errs := constants.Validate.Struct(v)
	if errs == nil {
		return nil, true
	}
	out := map[string]string{}
	for _, err := range errs.(validator.ValidationErrors) {
		out[err.Field()] = err.Tag()
	}
	return out, false
}
