package domain

import "errors"

// Domain errors
var (
	ErrUnknownTier    = errors.New("unknown tier")
	ErrViewerNotFound = errors.New("viewer not found")
)
