package service

import "errors"

var (
	ErrEmptyProducts   = errors.New("order must contain at least one product")
	ErrInvalidEmail    = errors.New("invalid email address")
	ErrUserNotFound    = errors.New("user not found")
	ErrProductNotFound = errors.New("product not found")
)

// IsValidation reports whether err is a client-facing order input error, as
// opposed to a storage failure.
func IsValidation(err error) bool {
	return errors.Is(err, ErrEmptyProducts) ||
		errors.Is(err, ErrInvalidEmail) ||
		errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrProductNotFound)
}
