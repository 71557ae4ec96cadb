package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/sahilchouksey/career-guidance-api/config"
)

// ErrNotConfigured is returned when no object storage credentials are set.
var ErrNotConfigured = errors.New("object storage is not configured")

// ObjectStore is the subset of object storage the API uses
type ObjectStore interface {
	UploadBytes(ctx context.Context, key string, data []byte, contentType string) error
	DeleteFile(ctx context.Context, key string) error
	PresignedURL(key string, expiration time.Duration) (string, error)
}

// SpacesConfig holds configuration for Spaces client
type SpacesConfig struct {
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	Endpoint  string
}

// ConfigFromEnv reads SPACES_* variables. The endpoint defaults to the
// DigitalOcean endpoint for the region.
func ConfigFromEnv(cfg *config.EnvironmentVariable) (SpacesConfig, error) {
	if !cfg.SpacesConfigured() {
		return SpacesConfig{}, ErrNotConfigured
	}
	sc := SpacesConfig{
		AccessKey: cfg.SPACES_ACCESS_KEY,
		SecretKey: cfg.SPACES_SECRET_KEY,
		Bucket:    cfg.SPACES_BUCKET,
		Region:    cfg.SPACES_REGION,
		Endpoint:  cfg.SPACES_ENDPOINT,
	}
	if sc.Endpoint == "" {
		sc.Endpoint = fmt.Sprintf("%s.digitaloceanspaces.com", sc.Region)
	}
	return sc, nil
}

// SpacesClient handles S3 compatible object storage (DigitalOcean Spaces)
type SpacesClient struct {
	s3Client *s3.S3
	bucket   string
	endpoint string
}

// NewSpacesClient creates a new Spaces client
func NewSpacesClient(cfg SpacesConfig) (*SpacesClient, error) {
	sess, err := session.NewSession(&aws.Config{
		Credentials: credentials.NewStaticCredentials(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		),
		Endpoint:         aws.String(cfg.Endpoint),
		Region:           aws.String(cfg.Region),
		S3ForcePathStyle: aws.Bool(false),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Spaces session: %w", err)
	}

	return &SpacesClient{
		s3Client: s3.New(sess),
		bucket:   cfg.Bucket,
		endpoint: cfg.Endpoint,
	}, nil
}

// UploadBytes stores a private object
func (s *SpacesClient) UploadBytes(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := s.s3Client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ACL:         aws.String("private"),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to upload file: %w", err)
	}
	return nil
}

// DeleteFile deletes a file from Spaces
func (s *SpacesClient) DeleteFile(ctx context.Context, key string) error {
	_, err := s.s3Client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// PresignedURL generates a presigned URL for temporary access
func (s *SpacesClient) PresignedURL(key string, expiration time.Duration) (string, error) {
	req, _ := s.s3Client.GetObjectRequest(&s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})

	url, err := req.Presign(expiration)
	if err != nil {
		return "", fmt.Errorf("failed to presign URL: %w", err)
	}
	return url, nil
}

var unsafeKeyChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// GenerateKey generates a unique key for file storage
func GenerateKey(prefix, filename string, now time.Time) string {
	ext := strings.ToLower(filepath.Ext(filename))
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	base = strings.Trim(unsafeKeyChars.ReplaceAllString(base, "_"), "_")
	if base == "" {
		base = "file"
	}

	return fmt.Sprintf("%s/%d_%s%s", strings.Trim(prefix, "/"), now.UnixNano(), base, ext)
}
