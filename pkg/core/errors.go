package core

import "errors"

// Common errors.
var (
	ErrDocumentNotFound = errors.New("document not found")
	ErrNoActiveDocument = errors.New("no active document")
	ErrUnknownTool      = errors.New("unknown tool")
	ErrInvalidArguments = errors.New("invalid tool arguments")
	ErrNilIndex         = errors.New("nil block index")
)
