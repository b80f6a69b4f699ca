package game

import "errors"

// Setup errors abort world generation; tick errors are absorbed by the caller.
var (
	ErrInvalidSpec           = errors.New("invalid spec")
	ErrOutOfBounds           = errors.New("spec out of bounds")
	ErrPathResolutionFailed  = errors.New("path resolution failed")
	ErrPerceptionQueryFailed = errors.New("perception query failed")
)
