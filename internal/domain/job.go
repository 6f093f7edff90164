package domain

import "context"

// JobStatus is one of the known job states reported over the execution
// channel. Unrecognized values decode to JobStatusUnknown, which is treated
// as non-terminal and logged, never as success.
type JobStatus string

const (
	JobStatusPending            JobStatus = "pending"
	JobStatusInProgress         JobStatus = "inprogress"
	JobStatusSuccess            JobStatus = "success"
	JobStatusCancelled          JobStatus = "cancelled"
	JobStatusFailedDownload     JobStatus = "failedDownload"
	JobStatusFailedInstructions JobStatus = "failedInstructions"
	JobStatusFailedUpload       JobStatus = "failedUpload"
	JobStatusUnknown            JobStatus = "unknown"
)

// Terminal reports whether no further status events are expected.
func (s JobStatus) Terminal() bool {
	switch s {
	case JobStatusSuccess, JobStatusCancelled, JobStatusFailedDownload,
		JobStatusFailedInstructions, JobStatusFailedUpload:
		return true
	}
	return false
}

// Known reports whether the status is one of the recognized states.
func (s JobStatus) Known() bool {
	switch s {
	case JobStatusPending, JobStatusInProgress, JobStatusSuccess,
		JobStatusCancelled, JobStatusFailedDownload,
		JobStatusFailedInstructions, JobStatusFailedUpload:
		return true
	}
	return false
}

// JobStatusEvent is one status frame for a submitted job.
type JobStatusEvent struct {
	ID        string    `json:"id"`
	Status    JobStatus `json:"status"`
	ReportURL string    `json:"reportUrl,omitempty"`
}

// JobArgument binds one named activity slot to a source or destination URL.
type JobArgument struct {
	URL     string            `json:"url"`
	Verb    string            `json:"verb,omitempty"`
	Headers map[string]string `json:"headers,omitempty"`
}

// JobSignatures carries the digital signature over the activity identifier.
type JobSignatures struct {
	ActivityID string `json:"activityId"`
}

// JobDescriptor is the complete, signed description of a remote processing
// task. It is built once per run and immutable after submission.
type JobDescriptor struct {
	ActivityID string                 `json:"activityId"`
	Arguments  map[string]JobArgument `json:"arguments"`
	Signatures JobSignatures          `json:"signatures"`
}

// ActivitySigner signs activity identifiers and exposes the public half for
// registration with the execution service.
type ActivitySigner interface {
	Sign(activityID string) (string, error)
	PublicKey() string
}

// ExecutionAdmin manages the caller's account on the execution service.
type ExecutionAdmin interface {
	// Nickname returns the owner alias registered for this client, or the
	// raw client id when none is set yet.
	Nickname(ctx context.Context) (string, error)

	// RegisterOwner claims the nickname and uploads the signing public key.
	RegisterOwner(ctx context.Context, nickname, publicKey string) error
}
