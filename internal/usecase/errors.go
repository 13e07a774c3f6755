package usecase

import (
	"errors"
	"fmt"
)

// Fatal pipeline errors. Each short-circuits the request and is rendered as
// the uniform error envelope with HTTP 500. Per-item collaborator failures
// are never surfaced as errors; they degrade to empty evidence instead.
var (
	// ErrMissingFields rejects a request lacking name, email or class_date.
	ErrMissingFields = errors.New("missing required fields: name, email, or class_date")

	// ErrNoImage rejects a request carrying neither inline image data nor a
	// stored image key.
	ErrNoImage = errors.New("no uploaded image provided")

	// ErrInsufficientCorpus signals that the uploaded image could not be
	// fetched, or that either reference prefix listed zero keys.
	ErrInsufficientCorpus = errors.New("failed to retrieve required images")

	// ErrNoFacesDetected signals that the uploaded image and every reference
	// face image yielded zero detected faces, making the decision impossible.
	ErrNoFacesDetected = errors.New("no faces detected")
)

// UploadError wraps a failure to decode or store an inline image.
type UploadError struct {
	Err error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("failed to store uploaded image: %v", e.Err)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}
