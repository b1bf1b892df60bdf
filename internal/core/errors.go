package core

import "errors"

var (
	// ErrUpstream wraps failures reported by the completion provider.
	ErrUpstream = errors.New("completion request failed")

	// ErrUnparsableDocument is returned when text cannot be extracted
	// from an uploaded document.
	ErrUnparsableDocument = errors.New("unparsable document")

	// ErrCompletionsDisabled is returned by chat and upload operations
	// when no API key was configured at startup.
	ErrCompletionsDisabled = errors.New("API key missing")
)
