package archive

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/felixgeelhaar/provisioner/internal/ports"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const s3Scheme = "s3://"

// S3Config configures an S3-compatible archive mirror.
// Empty keys fall back to the AWS_ACCESS_KEY_ID / AWS_SECRET_ACCESS_KEY
// environment variables.
type S3Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	UseSSL    bool
}

// S3Source serves s3://bucket/key URLs from a mirror.
type S3Source struct {
	client *minio.Client
}

// NewS3Source creates a mirror source.
func NewS3Source(cfg S3Config) (*S3Source, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("s3 endpoint is required")
	}
	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "us-east-1"
	}

	creds := credentials.NewEnvAWS()
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		creds = credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, "")
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  creds,
		Secure: cfg.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("init s3 client: %w", err)
	}

	return &S3Source{client: client}, nil
}

// Supports reports whether the URL uses the s3 scheme.
func (s *S3Source) Supports(rawURL string) bool {
	return strings.HasPrefix(rawURL, s3Scheme)
}

// Open starts streaming the object. The object is stat'ed first so a
// missing key fails here instead of on the first read.
func (s *S3Source) Open(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	bucket, key, err := ParseS3URL(rawURL)
	if err != nil {
		return nil, err
	}

	obj, err := s.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	if _, err := obj.Stat(); err != nil {
		_ = obj.Close()
		return nil, err
	}
	return obj, nil
}

// ParseS3URL splits s3://bucket/path/to/key into bucket and key.
func ParseS3URL(rawURL string) (bucket, key string, err error) {
	if !strings.HasPrefix(rawURL, s3Scheme) {
		return "", "", fmt.Errorf("not an s3 URL: %s", rawURL)
	}
	rest := strings.TrimPrefix(rawURL, s3Scheme)
	bucket, key, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("s3 URL must be s3://bucket/key: %s", rawURL)
	}
	return bucket, key, nil
}

var _ ports.ArchiveSource = (*S3Source)(nil)
