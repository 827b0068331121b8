package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"vibeconnect/internal/domain"
)

// S3Config holds configuration for the S3-backed artifact store.
type S3Config struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	// KeyPrefix namespaces uploaded objects, e.g. "events".
	KeyPrefix string
}

type s3Store struct {
	client    *s3.Client
	bucket    string
	region    string
	keyPrefix string
}

// NewS3Store returns an ArtifactStore backed by an S3 bucket. The object
// key doubles as the deletion handle.
func NewS3Store(config S3Config) (domain.ArtifactStore, error) {
	if config.Region == "" || config.Bucket == "" {
		return nil, errors.New("s3 storage requires region and bucket")
	}
	awsCfg := aws.Config{
		Region: config.Region,
		Credentials: aws.NewCredentialsCache(
			credentials.NewStaticCredentialsProvider(
				config.AccessKeyID,
				config.SecretAccessKey,
				"",
			),
		),
	}
	keyPrefix := config.KeyPrefix
	if keyPrefix == "" {
		keyPrefix = "events"
	}
	return &s3Store{
		client:    s3.NewFromConfig(awsCfg),
		bucket:    config.Bucket,
		region:    config.Region,
		keyPrefix: keyPrefix,
	}, nil
}

func (s *s3Store) Store(ctx context.Context, content io.Reader, contentType string) (*domain.Artifact, error) {
	key := s.keyPrefix + "/" + uuid.NewString() + extensionFor(contentType)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        content,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return nil, fmt.Errorf("put object: %w", err)
	}
	return &domain.Artifact{
		URL:            fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key),
		DeletionHandle: key,
	}, nil
}

func (s *s3Store) Delete(ctx context.Context, deletionHandle string) error {
	if deletionHandle == "" {
		return nil
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(deletionHandle),
	})
	if err != nil {
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}
