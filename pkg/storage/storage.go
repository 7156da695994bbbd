package storage

//go:generate mockgen -destination=mocks/uploader_mock.go -package=mocks github.com/orbtao/connectify/backend/pkg/storage Uploader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ErrDisabled is returned when no bucket is configured.
var ErrDisabled = errors.New("media uploads are not configured")

// Uploader sends raw media to the hosting collaborator and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error)
}

// File is an uploaded file as received from a client.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

type S3Options struct {
	Endpoint      string
	Region        string
	Bucket        string
	AccessKey     string
	SecretKey     string
	PublicBaseURL string
}

// S3Uploader stores media in an S3 compatible bucket (R2, MinIO, AWS).
type S3Uploader struct {
	client        *s3.Client
	bucket        string
	publicBaseURL string
}

func NewS3Uploader(ctx context.Context, opts S3Options) (*S3Uploader, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(opts.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	endpoint := strings.TrimRight(opts.Endpoint, "/")
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	base, err := PublicBaseURL(opts)
	if err != nil {
		return nil, err
	}

	return &S3Uploader{client: client, bucket: opts.Bucket, publicBaseURL: base}, nil
}

// PublicBaseURL is the prefix of every uploaded object's URL. Without an
// explicit base it is the path style URL on a custom endpoint, or the virtual
// hosted AWS URL when no endpoint is set.
func PublicBaseURL(opts S3Options) (string, error) {
	if base := strings.TrimRight(opts.PublicBaseURL, "/"); base != "" {
		return base, nil
	}
	if endpoint := strings.TrimRight(opts.Endpoint, "/"); endpoint != "" {
		return fmt.Sprintf("%s/%s", endpoint, opts.Bucket), nil
	}
	if opts.Region == "" || opts.Region == "auto" {
		return "", fmt.Errorf("S3_REGION must name an AWS region when neither S3_ENDPOINT nor S3_PUBLIC_BASE_URL is set")
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", opts.Bucket, opts.Region), nil
}

func (u *S3Uploader) Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s to bucket %s: %w", key, u.bucket, err)
	}
	return u.publicBaseURL + "/" + key, nil
}

// Disabled rejects every upload. It stands in when no bucket is configured so
// that URL based media keeps working.
type Disabled struct{}

func (Disabled) Upload(context.Context, string, string, io.Reader) (string, error) {
	return "", ErrDisabled
}
