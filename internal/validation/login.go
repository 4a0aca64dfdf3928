package validation

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,max=1024"`
}

// ValidateLogin normalizes and checks a login request.
// The email is trimmed and lower-cased; the password is left untouched.
func ValidateLogin(req LoginRequest) (LoginRequest, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	err := get().Struct(req)
	if err == nil {
		return req, nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return LoginRequest{}, err
	}

	verr := &Error{}
	for _, fe := range fieldErrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			verr.add(field, field+" is required")
		case "email":
			verr.add(field, field+" must be a valid email address")
		case "max":
			verr.add(field, field+" is too long")
		default:
			verr.add(field, field+" is invalid")
		}
	}
	return LoginRequest{}, verr
}
