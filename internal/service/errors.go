package service

import "errors"

// Caller-facing error kinds. The HTTP layer maps these to status codes;
// anything else is treated as a persistence failure.
var (
	// ErrStationNotFound is returned when a referenced station is absent.
	ErrStationNotFound = errors.New("directory: station not found")
	// ErrHomeStationProtected is returned when deleting the home station.
	ErrHomeStationProtected = errors.New("directory: home station cannot be deleted")
	// ErrSubmissionNotFound is returned when a referenced submission is absent.
	ErrSubmissionNotFound = errors.New("moderation: submission not found")
	// ErrAlreadyReviewed is returned when a decision is replayed on a
	// submission that has already been approved or rejected.
	ErrAlreadyReviewed = errors.New("moderation: submission already reviewed")
	// ErrMalformedSubmission is returned when an approved submission matches
	// neither the price-update nor the new-station shape.
	ErrMalformedSubmission = errors.New("moderation: submission matches no approvable shape")
	// ErrUnknownAction is returned for decision actions other than approve/reject.
	ErrUnknownAction = errors.New("moderation: unknown action")
	// ErrUnknownStatus is returned when listing with a status outside
	// pending/approved/rejected.
	ErrUnknownStatus = errors.New("queue: unknown status")
)
