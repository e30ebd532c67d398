package documents

import "errors"

var (
	// ErrNotFound signals that no matching document exists for the user.
	ErrNotFound = errors.New("document not found")
	// ErrInvalidInput signals a malformed or incomplete request.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnsupportedType signals a document format the extractor cannot read.
	ErrUnsupportedType = errors.New("unsupported document type")
)
