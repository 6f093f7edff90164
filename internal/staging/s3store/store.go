// Package s3store adapts an S3-compatible object store to the workflow's
// storage contract, including presigned capability URLs.
package s3store

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/plotline/plotline/internal/domain"
)

type Store struct {
	client  *s3.Client
	presign *s3.PresignClient
	region  string
}

type Config struct {
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &Store{
		client:  client,
		presign: s3.NewPresignClient(client),
		region:  cfg.Region,
	}, nil
}

func (s *Store) CreateBucket(ctx context.Context, bucket string) error {
	input := &s3.CreateBucketInput{Bucket: aws.String(bucket)}
	if s.region != "" && s.region != "us-east-1" {
		input.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(s.region),
		}
	}

	_, err := s.client.CreateBucket(ctx, input)
	if err != nil {
		if IsBucketExists(err) {
			return domain.ErrBucketExists
		}
		return &domain.StorageError{Op: "create bucket", Bucket: bucket, Err: err}
	}
	return nil
}

// IsBucketExists reports whether the error means the bucket is already
// present, whether owned by us or by another account.
func IsBucketExists(err error) bool {
	var owned *types.BucketAlreadyOwnedByYou
	if errors.As(err, &owned) {
		return true
	}
	var exists *types.BucketAlreadyExists
	return errors.As(err, &exists)
}

func (s *Store) Upload(ctx context.Context, bucket, key string, size int64, r io.Reader) (domain.StorageObjectRef, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          r,
		ContentLength: aws.Int64(size),
	})
	if err != nil {
		return domain.StorageObjectRef{}, &domain.StorageError{Op: "upload object", Bucket: bucket, Key: key, Err: err}
	}

	return domain.StorageObjectRef{Bucket: bucket, Key: key}, nil
}

func (s *Store) SignURL(ctx context.Context, ref domain.StorageObjectRef, access domain.Access, ttl time.Duration) (domain.SignedURL, error) {
	switch access {
	case domain.AccessRead:
		// read capability requires the object to exist; write capability may
		// target a key that is only written later
		_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
			Bucket: aws.String(ref.Bucket),
			Key:    aws.String(ref.Key),
		})
		if err != nil {
			return domain.SignedURL{}, &domain.StorageError{Op: "sign read url", Bucket: ref.Bucket, Key: ref.Key, Err: err}
		}

		req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(ref.Bucket),
			Key:    aws.String(ref.Key),
		}, s3.WithPresignExpires(ttl))
		if err != nil {
			return domain.SignedURL{}, &domain.StorageError{Op: "sign read url", Bucket: ref.Bucket, Key: ref.Key, Err: err}
		}
		return signedURLFromRequest(req.URL, req.Method, req.SignedHeader), nil

	case domain.AccessReadWrite:
		req, err := s.presign.PresignPutObject(ctx, &s3.PutObjectInput{
			Bucket: aws.String(ref.Bucket),
			Key:    aws.String(ref.Key),
		}, s3.WithPresignExpires(ttl))
		if err != nil {
			return domain.SignedURL{}, &domain.StorageError{Op: "sign readwrite url", Bucket: ref.Bucket, Key: ref.Key, Err: err}
		}
		return signedURLFromRequest(req.URL, req.Method, req.SignedHeader), nil

	default:
		return domain.SignedURL{}, &domain.StorageError{Op: "sign url", Bucket: ref.Bucket, Key: ref.Key, Err: errors.New("unknown access kind: " + string(access))}
	}
}

func signedURLFromRequest(url, method string, signedHeader http.Header) domain.SignedURL {
	headers := make(map[string]string, len(signedHeader))
	for name := range signedHeader {
		headers[name] = signedHeader.Get(name)
	}

	return domain.SignedURL{
		URL:     url,
		Verb:    method,
		Headers: headers,
	}
}
