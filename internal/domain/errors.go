package domain

import "errors"

// Sentinel errors shared by services and controllers. Services wrap them with
// fmt.Errorf("%w: ...") to add a human message; controllers match with errors.Is.
var (
	ErrNotFound            = errors.New("not found")
	ErrForbidden           = errors.New("forbidden")
	ErrValidationFailed    = errors.New("validation failed")
	ErrEventInactive       = errors.New("event is not accepting uploads")
	ErrStorageWriteFailed  = errors.New("storage write failed")
	ErrStorageReadFailed   = errors.New("storage read failed")
	ErrMetadataWriteFailed = errors.New("metadata write failed")
	ErrNoMedia             = errors.New("event has no media")
	ErrAllFetchesFailed    = errors.New("no media could be fetched")
	ErrConflict            = errors.New("slug already taken")
	ErrEncodingFailed      = errors.New("qr encoding failed")
)
