package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"

	appconfig "github.com/tixflow/listing-service/internal/config"
)

// S3Client stores listing images in a single public bucket on S3, MinIO or R2.
type S3Client struct {
	client *s3.Client
	bucket string
	cfg    *appconfig.Config
	log    zerolog.Logger
}

// NewS3Client creates a client for the configured bucket. An empty
// S3Endpoint uses the regular AWS endpoint resolution.
func NewS3Client(cfg *appconfig.Config, log zerolog.Logger) (*S3Client, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.S3Region),
	}
	if cfg.S3AccessKeyID != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3AccessKeyID,
			cfg.S3SecretAccessKey,
			"",
		)))
	}

	awsCfg, err := config.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
		}
		o.UsePathStyle = cfg.S3UsePathStyle
	})

	return &S3Client{
		client: client,
		bucket: cfg.S3Bucket,
		cfg:    cfg,
		log:    log,
	}, nil
}

// PutObject uploads body under objectKey. metadata is stored as user
// metadata on the object.
func (c *S3Client) PutObject(ctx context.Context, objectKey string, body io.Reader, contentType string, size int64, metadata map[string]string) error {
	in := &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(objectKey),
		Body:        body,
		ContentType: aws.String(contentType),
		Metadata:    metadata,
	}
	if size > 0 {
		in.ContentLength = aws.Int64(size)
	}
	if _, err := c.client.PutObject(ctx, in); err != nil {
		return fmt.Errorf("failed to put object %s: %w", objectKey, err)
	}
	return nil
}

// EnsureBucket creates the bucket when it does not exist yet.
func (c *S3Client) EnsureBucket(ctx context.Context) error {
	if _, err := c.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(c.bucket)}); err == nil {
		return nil
	}
	c.log.Info().Str("bucket", c.bucket).Msg("creating bucket")
	if _, err := c.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(c.bucket)}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", c.bucket, err)
	}
	return nil
}

// Ping reports whether the bucket is reachable.
func (c *S3Client) Ping(ctx context.Context) error {
	_, err := c.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(c.bucket)})
	return err
}

// PublicURL returns the download URL for an object. Without a CDN the
// bucket endpoint is used directly.
func (c *S3Client) PublicURL(objectKey string) string {
	if c.cfg.CDNBaseURL != "" {
		return c.cfg.CDNBaseURL + "/" + objectKey
	}
	if c.cfg.S3Endpoint != "" {
		return strings.TrimRight(c.cfg.S3Endpoint, "/") + "/" + c.bucket + "/" + objectKey
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", c.bucket, c.cfg.S3Region, objectKey)
}
