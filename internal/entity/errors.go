package entity

import "errors"

// Sentinels returned by every repository implementation.
var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
	ErrInvalid   = errors.New("value rejected by store")
)
