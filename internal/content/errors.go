package content

import "errors"

var (
	// ErrNotFound is returned when no record matches the id or slug.
	ErrNotFound = errors.New("content: record not found")

	// ErrInvalid wraps a record that failed its own validation.
	ErrInvalid = errors.New("content: invalid record")

	// ErrSlugTaken is returned when another record of the same kind owns the slug.
	ErrSlugTaken = errors.New("content: slug already in use")

	// ErrUnsupportedMedia is returned for uploads outside the allowed image types.
	ErrUnsupportedMedia = errors.New("content: unsupported media type")
)
