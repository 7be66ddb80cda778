package services

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	appconfig "weddingpress-web/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Uploader stores one media file and returns its public URL
type Uploader interface {
	Upload(ctx context.Context, filename, contentType string, file io.Reader) (string, error)
}

// NewUploader picks the driver named in cfg.Upload.Driver
func NewUploader(ctx context.Context, cfg *appconfig.Config, backend Uploader) (Uploader, error) {
	switch cfg.Upload.Driver {
	case "", "backend":
		return backend, nil
	case "s3":
		return NewS3Uploader(ctx, cfg.AWS, cfg.Upload.Prefix)
	default:
		return nil, fmt.Errorf("unknown upload driver %q", cfg.Upload.Driver)
	}
}

// ObjectPutter is the part of the S3 client the uploader needs
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Uploader writes media straight to a bucket
type S3Uploader struct {
	client     ObjectPutter
	bucket     string
	prefix     string
	publicBase string
}

// NewS3Uploader creates an S3 uploader
func NewS3Uploader(ctx context.Context, awsCfg appconfig.AWSConfig, prefix string) (*S3Uploader, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(awsCfg.Region),
	}
	if awsCfg.AccessKey != "" && awsCfg.SecretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(awsCfg.AccessKey, awsCfg.SecretKey, ""),
		))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if awsCfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(awsCfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return NewS3UploaderWithClient(client, awsCfg, prefix), nil
}

// NewS3UploaderWithClient creates an S3 uploader around an existing client
func NewS3UploaderWithClient(client ObjectPutter, awsCfg appconfig.AWSConfig, prefix string) *S3Uploader {
	if prefix == "" {
		prefix = "weddingpress"
	}
	base := awsCfg.PublicBase
	if base == "" {
		if awsCfg.Endpoint != "" {
			base = strings.TrimRight(awsCfg.Endpoint, "/") + "/" + awsCfg.S3Bucket
		} else {
			base = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", awsCfg.S3Bucket, awsCfg.Region)
		}
	}
	return &S3Uploader{
		client:     client,
		bucket:     awsCfg.S3Bucket,
		prefix:     strings.Trim(prefix, "/"),
		publicBase: strings.TrimRight(base, "/"),
	}
}

// Upload puts the file under {prefix}/{uuid}{ext}
func (u *S3Uploader) Upload(ctx context.Context, filename, contentType string, file io.Reader) (string, error) {
	key := fmt.Sprintf("%s/%s%s", u.prefix, uuid.New().String(), strings.ToLower(filepath.Ext(filename)))

	input := &s3.PutObjectInput{
		Bucket: aws.String(u.bucket),
		Key:    aws.String(key),
		Body:   file,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := u.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("failed to put object: %w", err)
	}

	url := u.publicBase + "/" + key
	log.Info().Str("key", key).Str("filename", filename).Msg("Media uploaded to S3")
	return url, nil
}
