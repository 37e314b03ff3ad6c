package entity

import "errors"

var (
	// Request errors
	ErrMalformedParameter    = errors.New("malformed parameter")
	ErrDuplicateParameterKey = errors.New("duplicate parameter key")
	ErrInvalidCaptchaToken   = errors.New("invalid captcha token")

	// Source errors
	ErrSourceUnavailable = errors.New("source unavailable")

	// Deployment errors
	ErrUnknownStage      = errors.New("unknown stage")
	ErrDuplicateStage    = errors.New("stage already registered")
	ErrUnsupportedFormat = errors.New("unsupported format")
)
