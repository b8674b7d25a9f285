// Package imagestore issues presigned S3 URLs for word images.
package imagestore

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// DefaultPresignTTL is used when Config.PresignTTL is zero.
const DefaultPresignTTL = 15 * time.Minute

// ErrUnsupportedContentType is returned for image types other than JPEG, PNG and WebP.
var ErrUnsupportedContentType = errors.New("unsupported image content type")

var extensions = map[string]string{
	"image/jpeg": "jpg",
	"image/jpg":  "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

// Config holds the S3 connection settings.
type Config struct {
	Bucket     string
	Region     string
	Endpoint   string // empty means AWS
	AccessKey  string // empty means the default credential chain
	SecretKey  string
	PresignTTL time.Duration
}

// Upload describes where and how the client should PUT an image.
type Upload struct {
	Key       string      `json:"key"`
	URL       string      `json:"url"`
	Method    string      `json:"method"`
	Headers   http.Header `json:"headers,omitempty"`
	ExpiresAt time.Time   `json:"expires_at"`
}

// Download is a time-limited GET URL for an image.
type Download struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// S3Store presigns object requests against one bucket.
type S3Store struct {
	bucket  string
	ttl     time.Duration
	presign *s3.PresignClient
	now     func() time.Time
}

// New loads AWS configuration and builds a presign client.
func New(ctx context.Context, cfg Config) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("imagestore: bucket is required")
	}
	ttl := cfg.PresignTTL
	if ttl <= 0 {
		ttl = DefaultPresignTTL
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("imagestore: load aws config: %w", err)
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			// MinIO and most S3-compatible servers need path-style addressing.
			o.UsePathStyle = true
		}
	})

	return &S3Store{
		bucket:  cfg.Bucket,
		ttl:     ttl,
		presign: newS3PresignClient(client),
		now:     time.Now,
	}, nil
}

// ObjectKey returns the storage key of a word image.
func ObjectKey(userID, wordID uuid.UUID, contentType string) (string, error) {
	ext, ok := extensions[contentType]
	if !ok {
		return "", ErrUnsupportedContentType
	}
	return fmt.Sprintf("words/%s/%s.%s", userID, wordID, ext), nil
}

// PresignUpload returns a PUT URL for the given key and content type.
func (s *S3Store) PresignUpload(ctx context.Context, key, contentType string) (*Upload, error) {
	if _, ok := extensions[contentType]; !ok {
		return nil, ErrUnsupportedContentType
	}

	req, err := presignPutObject(s.presign, ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(s.ttl))
	if err != nil {
		return nil, fmt.Errorf("imagestore: presign put: %w", err)
	}

	headers := http.Header{}
	for name, values := range req.SignedHeader {
		if http.CanonicalHeaderKey(name) == "Host" {
			continue
		}
		headers[http.CanonicalHeaderKey(name)] = values
	}
	if headers.Get("Content-Type") == "" {
		headers.Set("Content-Type", contentType)
	}

	return &Upload{
		Key:       key,
		URL:       req.URL,
		Method:    req.Method,
		Headers:   headers,
		ExpiresAt: s.now().Add(s.ttl).UTC(),
	}, nil
}

// PresignDownload returns a GET URL for the given key.
func (s *S3Store) PresignDownload(ctx context.Context, key string) (*Download, error) {
	req, err := presignGetObject(s.presign, ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.ttl))
	if err != nil {
		return nil, fmt.Errorf("imagestore: presign get: %w", err)
	}

	return &Download{
		URL:       req.URL,
		ExpiresAt: s.now().Add(s.ttl).UTC(),
	}, nil
}
