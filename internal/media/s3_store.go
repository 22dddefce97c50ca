package media

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
)

// s3API is the subset of the S3 client used by the store.
type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// s3Store implements Store on AWS S3.
type s3Store struct {
	client  s3API
	bucket  string
	region  string
	prefix  string
	baseURL string
	logger  zerolog.Logger
}

// NewS3Store creates a store writing objects under prefix in bucket. When
// baseURL is empty, URLs point at the bucket's virtual-hosted endpoint.
func NewS3Store(ctx context.Context, bucket, region, prefix, baseURL string, logger zerolog.Logger) (Store, error) {
	logger = logger.With().Str("component", "s3-media-store").Logger()

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		logger.Error().Err(err).Msg("failed to load AWS configuration")
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	logger.Info().
		Str("bucket", bucket).
		Str("region", region).
		Msg("S3 media store initialised")

	return newS3Store(s3.NewFromConfig(cfg), bucket, region, prefix, baseURL, logger), nil
}

func newS3Store(client s3API, bucket, region, prefix, baseURL string, logger zerolog.Logger) *s3Store {
	return &s3Store{
		client:  client,
		bucket:  bucket,
		region:  region,
		prefix:  prefix,
		baseURL: baseURL,
		logger:  logger,
	}
}

func (s *s3Store) Save(ctx context.Context, name, contentType string, body io.Reader) (string, error) {
	key := s.prefix + name

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("bucket", s.bucket).
			Str("key", key).
			Msg("failed to put object to S3")
		return "", fmt.Errorf("failed to put object to S3 (bucket=%s, key=%s): %w", s.bucket, key, err)
	}

	s.logger.Info().
		Str("bucket", s.bucket).
		Str("key", key).
		Msg("media object uploaded to S3")

	return s.URL(name), nil
}

func (s *s3Store) Delete(ctx context.Context, name string) error {
	key := s.prefix + name

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("bucket", s.bucket).
			Str("key", key).
			Msg("failed to delete object from S3")
		return fmt.Errorf("failed to delete object from S3 (bucket=%s, key=%s): %w", s.bucket, key, err)
	}
	return nil
}

func (s *s3Store) URL(name string) string {
	if s.baseURL != "" && s.baseURL[0] != '/' {
		return joinURL(s.baseURL, name)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s%s", s.bucket, s.region, s.prefix, name)
}
