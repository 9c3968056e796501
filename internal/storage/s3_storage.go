// Package storage keeps receipt images and insight workbooks in an
// S3-compatible bucket.
package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/raseed-labs/raseed-backend/config"
	"github.com/raseed-labs/raseed-backend/logger"
	"go.uber.org/zap"
)

// ObjectStorage is the subset of bucket operations the services need.
type ObjectStorage interface {
	Put(ctx context.Context, key string, body io.Reader, contentType string) error
	Delete(ctx context.Context, key string) error
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

var _ ObjectStorage = (*S3Storage)(nil)

type S3Storage struct {
	client     *s3.Client
	presigner  *s3.PresignClient
	bucketName string
	defaultTTL time.Duration
	log        *zap.SugaredLogger
}

// NewS3Storage builds a client from the storage section. Static credentials
// are used when both keys are set; otherwise the default AWS chain applies.
func NewS3Storage(ctx context.Context, cfg *config.StorageConfig) (*S3Storage, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("storage bucket is required")
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.ForcePathStyleURLs
	})

	return &S3Storage{
		client:     client,
		presigner:  s3.NewPresignClient(client),
		bucketName: cfg.Bucket,
		defaultTTL: time.Duration(cfg.PresignTTLMinutes) * time.Minute,
		log:        logger.GetLogger().Named("storage"),
	}, nil
}

// validateKey rejects empty keys and keys containing path traversal segments.
func validateKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("storage key is empty")
	}
	for _, segment := range strings.Split(key, "/") {
		if segment == ".." {
			return fmt.Errorf("path traversal detected in storage key")
		}
	}
	return nil
}

func (s *S3Storage) Put(ctx context.Context, key string, body io.Reader, contentType string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
		Body:   body,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("s3 put object failed: %w", err)
	}
	s.log.Debugw("Stored object", "bucket", s.bucketName, "key", key, "content_type", contentType)
	return nil
}

func (s *S3Storage) Delete(ctx context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("s3 delete object failed: %w", err)
	}
	return nil
}

// PresignGet returns a download URL for key. A zero ttl uses the configured default.
func (s *S3Storage) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if err := validateKey(key); err != nil {
		return "", err
	}
	if ttl <= 0 {
		ttl = s.defaultTTL
	}
	result, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", fmt.Errorf("s3 presign failed: %w", err)
	}
	return result.URL, nil
}
