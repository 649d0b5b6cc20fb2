package port

import "errors"

// Sentinel errors used across ports.
var (
	ErrUnknownMode        = errors.New("unknown generation mode")
	ErrDocumentNotFound   = errors.New("document not found")
	ErrNoSectionsSelected = errors.New("no sections selected")
)
