package domain

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
)

// Access is the capability requested for a signed URL.
type Access string

const (
	AccessRead      Access = "read"
	AccessReadWrite Access = "readwrite"
)

// StorageObjectRef identifies a staged object. It is stable for the
// lifetime of one workflow run.
type StorageObjectRef struct {
	Bucket string
	Key    string
}

func (r StorageObjectRef) String() string {
	return fmt.Sprintf("%s/%s", r.Bucket, r.Key)
}

// SignedURL is a time-boxed capability URL issued by the object store.
// It is immutable once issued; single-use semantics are enforced remotely.
type SignedURL struct {
	URL     string
	Verb    string
	Headers map[string]string
}

// ErrBucketExists is returned by ObjectStore.CreateBucket when the bucket is
// already present. The staging uploader treats it as success.
var ErrBucketExists = errors.New("bucket already exists")

// ObjectStore is the object-storage collaborator.
type ObjectStore interface {
	// CreateBucket creates the bucket, returning ErrBucketExists if it is
	// already present.
	CreateBucket(ctx context.Context, bucket string) error

	// Upload streams size bytes from r into the bucket under key.
	Upload(ctx context.Context, bucket, key string, size int64, r io.Reader) (StorageObjectRef, error)

	// SignURL issues a capability URL for ref. Read access requires the
	// object to exist; readwrite access may target a not-yet-written key.
	SignURL(ctx context.Context, ref StorageObjectRef, access Access, ttl time.Duration) (SignedURL, error)
}
