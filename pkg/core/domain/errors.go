package domain

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrValidation          = errors.New("validation failed")
	ErrConflict            = errors.New("already exists")
	ErrSinkCategory        = errors.New("the uncategorized category cannot be deleted or reordered")
	ErrInvalidURL          = errors.New("invalid URL")
	ErrMetadataUnavailable = errors.New("failed to fetch metadata")
)
