package domain

import (
	"errors"
	"fmt"
)

// SubmissionError means the remote service rejected a job creation request.
// It is fatal: the caller surfaces it and does not retry.
type SubmissionError struct {
	Kind    JobKind
	Code    int
	Message string
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("%s submission rejected: %s (code=%d)", e.Kind, e.Message, e.Code)
}

// TransientQueryError wraps a network-level failure of a status check. The
// poll loop treats it as a wasted attempt and keeps going.
type TransientQueryError struct {
	TaskID string
	Err    error
}

func (e *TransientQueryError) Error() string {
	return fmt.Sprintf("status check for task %s failed: %v", e.TaskID, e.Err)
}

func (e *TransientQueryError) Unwrap() error { return e.Err }

// PermanentQueryError means the remote service reported the task id as
// unknown or invalid. Polling the same id again cannot succeed.
type PermanentQueryError struct {
	TaskID  string
	Code    int
	Message string
}

func (e *PermanentQueryError) Error() string {
	return fmt.Sprintf("task %s rejected by remote service: %s (code=%d)", e.TaskID, e.Message, e.Code)
}

// DownloadError means the artifact fetch failed. The remote job itself
// still succeeded; the caller may retry the download with the same URL.
type DownloadError struct {
	URL string
	Err error
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("download of %s failed: %v", e.URL, e.Err)
}

func (e *DownloadError) Unwrap() error { return e.Err }

// IsTransientQuery reports whether err is (or wraps) a TransientQueryError.
func IsTransientQuery(err error) bool {
	var t *TransientQueryError
	return errors.As(err, &t)
}

// AsPermanentQuery extracts a PermanentQueryError from err if present.
func AsPermanentQuery(err error) (*PermanentQueryError, bool) {
	var p *PermanentQueryError
	if errors.As(err, &p) {
		return p, true
	}
	return nil, false
}
