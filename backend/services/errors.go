package services

import "errors"

var (
	// ErrNotFound is returned for missing rows and for rows owned by someone else.
	ErrNotFound           = errors.New("not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrGroupExists        = errors.New("group already added")
	ErrInvalidShareToken  = errors.New("invalid share token")
)
