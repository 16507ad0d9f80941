package services

import "errors"

var (
	// ErrTaskNotFound means a report referenced an unknown task id.
	ErrTaskNotFound = errors.New("task not found")
	// ErrOwnershipConflict means a report came from a principal that does not
	// own the task. Never accepted silently.
	ErrOwnershipConflict = errors.New("task does not belong to the reporting user/device")
	// ErrStatusConflict means a terminal task received a report with a
	// different terminal status. A matching duplicate report is a no-op.
	ErrStatusConflict = errors.New("task already finished with a different status")
	// ErrInvalidTransition means the reported status is not a legal move from
	// the task's current state (for example a report of Pending or Running).
	ErrInvalidTransition = errors.New("illegal task status transition")
)
