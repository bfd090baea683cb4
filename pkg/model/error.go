package model

import "errors"

// UserError is an error that is safe to return in a response
type UserError string

func (u UserError) Error() string {
	return string(u)
}

// ErrDuplicateKey happens if a user tries to create a user with a taken email
var ErrDuplicateKey = errors.New("duplicate key constraint violation")

// ErrUserNotFound is returned when no user matches the lookup
var ErrUserNotFound = UserError("user not found")
