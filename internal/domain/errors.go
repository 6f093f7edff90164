package domain

import (
	"errors"
	"fmt"
)

// AuthError reports a rejected identity exchange or a failed interactive
// login. It aborts the workflow before any job submission.
type AuthError struct {
	Op  string
	Err error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth: %s: %v", e.Op, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// StorageError reports a rejected container or object operation.
type StorageError struct {
	Op     string
	Bucket string
	Key    string
	Err    error
}

func (e *StorageError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("storage: %s %s/%s: %v", e.Op, e.Bucket, e.Key, e.Err)
	}
	return fmt.Sprintf("storage: %s %s: %v", e.Op, e.Bucket, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// ProtocolError reports a malformed or unexpected message on the job
// execution channel. It aborts the status-receive loop.
type ProtocolError struct {
	Reason string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("job channel: %s", e.Reason)
}

// JobFailure is a terminal non-success job status. ReportPath is set when a
// diagnostic report was downloaded.
type JobFailure struct {
	Status     JobStatus
	ReportURL  string
	ReportPath string
}

func (e *JobFailure) Error() string {
	if e.ReportPath != "" {
		return fmt.Sprintf("job finished with status %s (report: %s)", e.Status, e.ReportPath)
	}
	return fmt.Sprintf("job finished with status %s", e.Status)
}

// ErrorEntry is one entry of the structured error envelope returned by the
// document hierarchy service.
type ErrorEntry struct {
	Status string `json:"status"`
	Code   string `json:"code"`
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

// ConflictError is the 409-style conflict signal from the hierarchy store.
// It is the authoritative trigger for the create-or-version fallback.
type ConflictError struct {
	Errors []ErrorEntry
}

func (e *ConflictError) Error() string {
	if len(e.Errors) > 0 && e.Errors[0].Detail != "" {
		return fmt.Sprintf("conflict: %s", e.Errors[0].Detail)
	}
	return "conflict"
}

// IsConflict reports whether err carries a hierarchy conflict signal.
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}

// ReconciliationError reports a non-conflict rejection while placing a
// completed job's output into the hierarchy. The remote job has already
// succeeded when this is raised.
type ReconciliationError struct {
	Op  string
	Err error
}

func (e *ReconciliationError) Error() string {
	return fmt.Sprintf("reconciliation: %s: %v", e.Op, e.Err)
}

func (e *ReconciliationError) Unwrap() error { return e.Err }

// NotFoundError reports that conflict resolution could not locate the item
// the conflict was raised for. It indicates a naming mismatch and is never
// silently ignored.
type NotFoundError struct {
	DisplayName string
	FolderID    string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no item named %q in folder %s", e.DisplayName, e.FolderID)
}
