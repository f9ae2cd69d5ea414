package domain

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("not found")
	ErrTranscriptUnavailable = errors.New("transcript unavailable")
	ErrGenerationFailure     = errors.New("title generation failed")
	ErrGenerationDeclined    = errors.New("title generation declined by provider")
	ErrDuplicateKey          = errors.New("duplicate key")
	ErrInternal              = errors.New("internal error")
)
