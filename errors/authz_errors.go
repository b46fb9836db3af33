package errors

import "errors"

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrUserConflict    = errors.New("user conflict")
	ErrInvalidUserData = errors.New("invalid user data")

	ErrPersonaNotFound    = errors.New("persona not found")
	ErrPersonaConflict    = errors.New("persona conflict")
	ErrInvalidPersonaData = errors.New("invalid persona data")

	ErrDatabaseOperation = errors.New("database operation failed")
	ErrInternalServer    = errors.New("internal server error")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
)
