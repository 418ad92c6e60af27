package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrEmptyMessage       = errors.New("message content is empty")
	ErrNoActiveChat       = errors.New("no chat is currently active")
	ErrStorageUnavailable = errors.New("local storage unavailable")
	ErrUnauthorized       = errors.New("not authenticated")
)
