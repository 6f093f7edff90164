package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCredentialExpiredAt(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	cred := Credential{Subject: SubjectService, AccessToken: "tok", ExpiresAt: base}

	tests := []struct {
		name    string
		now     time.Time
		expired bool
	}{
		{name: "before expiry", now: base.Add(-time.Second), expired: false},
		{name: "at expiry", now: base, expired: true},
		{name: "after expiry", now: base.Add(time.Second), expired: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expired, cred.ExpiredAt(tt.now))
		})
	}
}

func TestJobStatusTerminal(t *testing.T) {
	terminal := []JobStatus{
		JobStatusSuccess,
		JobStatusCancelled,
		JobStatusFailedDownload,
		JobStatusFailedInstructions,
		JobStatusFailedUpload,
	}
	for _, s := range terminal {
		assert.True(t, s.Terminal(), "status %s", s)
	}

	for _, s := range []JobStatus{JobStatusPending, JobStatusInProgress, JobStatusUnknown, JobStatus("weird")} {
		assert.False(t, s.Terminal(), "status %s", s)
	}

	assert.False(t, JobStatus("weird").Known())
	assert.True(t, JobStatusPending.Known())
}
