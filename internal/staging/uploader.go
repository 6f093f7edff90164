// Package staging places the workflow's input file in object storage and
// produces the time-boxed capability URLs the remote worker reads and
// writes through.
package staging

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/plotline/plotline/internal/domain"
)

// Uploader stages local files and signs access to them.
type Uploader struct {
	store domain.ObjectStore
}

func NewUploader(store domain.ObjectStore) *Uploader {
	return &Uploader{store: store}
}

// EnsureBucket creates the bucket if needed. A bucket that already exists is
// success, not failure; any other rejection propagates.
func (u *Uploader) EnsureBucket(ctx context.Context, bucket string) error {
	err := u.store.CreateBucket(ctx, bucket)
	if errors.Is(err, domain.ErrBucketExists) {
		log.Info().Str("bucket", bucket).Msg("Bucket already exists")
		return nil
	}
	return err
}

// UploadFile streams the local file into the bucket under its base name.
func (u *Uploader) UploadFile(ctx context.Context, bucket, localPath string) (domain.StorageObjectRef, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return domain.StorageObjectRef{}, &domain.StorageError{Op: "open input file", Bucket: bucket, Key: localPath, Err: err}
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return domain.StorageObjectRef{}, &domain.StorageError{Op: "stat input file", Bucket: bucket, Key: localPath, Err: err}
	}

	key := filepath.Base(localPath)

	ref, err := u.store.Upload(ctx, bucket, key, info.Size(), f)
	if err != nil {
		return domain.StorageObjectRef{}, err
	}

	log.Info().
		Str("bucket", ref.Bucket).
		Str("key", ref.Key).
		Int64("size_bytes", info.Size()).
		Msg("Input file staged")

	return ref, nil
}

// SignURL issues a capability URL for the object.
func (u *Uploader) SignURL(ctx context.Context, ref domain.StorageObjectRef, access domain.Access, ttl time.Duration) (domain.SignedURL, error) {
	return u.store.SignURL(ctx, ref, access, ttl)
}

// StagedRun is the URL pair one workflow run hands to the remote worker.
type StagedRun struct {
	InputRef  domain.StorageObjectRef
	OutputRef domain.StorageObjectRef
	Input     domain.SignedURL
	Output    domain.SignedURL
}

// Stage runs the full staging sequence: ensure the bucket, upload the input
// file, then sign a read URL for the input and a read-write URL for the
// not-yet-written output object.
func (u *Uploader) Stage(ctx context.Context, bucket, localPath, resultName string, ttl time.Duration) (StagedRun, error) {
	if err := u.EnsureBucket(ctx, bucket); err != nil {
		return StagedRun{}, err
	}

	inputRef, err := u.UploadFile(ctx, bucket, localPath)
	if err != nil {
		return StagedRun{}, err
	}

	input, err := u.SignURL(ctx, inputRef, domain.AccessRead, ttl)
	if err != nil {
		return StagedRun{}, err
	}

	outputRef := domain.StorageObjectRef{Bucket: bucket, Key: resultName}

	output, err := u.SignURL(ctx, outputRef, domain.AccessReadWrite, ttl)
	if err != nil {
		return StagedRun{}, err
	}

	return StagedRun{
		InputRef:  inputRef,
		OutputRef: outputRef,
		Input:     input,
		Output:    output,
	}, nil
}

// ResultName derives the output object name from the input file, e.g.
// drawing.dwg becomes drawing.pdf.
func ResultName(localPath, extension string) string {
	base := filepath.Base(localPath)
	stem := base[:len(base)-len(filepath.Ext(base))]
	return fmt.Sprintf("%s.%s", stem, extension)
}
