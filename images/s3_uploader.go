package images

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config configures an S3Uploader for any S3-compatible object store
type S3Config struct {
	Bucket          string
	Region          string
	Endpoint        string // Empty for AWS itself
	AccessKeyID     string
	SecretAccessKey string
	PublicBaseURL   string // Prefix for returned URLs, defaults to <endpoint>/<bucket>
}

var _ Uploader = (*S3Uploader)(nil)

// S3Uploader writes images to a bucket with path-style addressing
type S3Uploader struct {
	client        *s3.Client
	bucket        string
	publicBaseURL string
}

func NewS3Uploader(cfg S3Config) (*S3Uploader, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("[NewS3Uploader] bucket is required")
	}
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}

	opts := s3.Options{
		Region:       cfg.Region,
		UsePathStyle: true,
	}
	if cfg.AccessKeyID != "" {
		opts.Credentials = credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}

	base := cfg.PublicBaseURL
	if base == "" {
		endpoint := cfg.Endpoint
		if endpoint == "" {
			endpoint = fmt.Sprintf("https://s3.%s.amazonaws.com", cfg.Region)
		}
		base = strings.TrimSuffix(endpoint, "/") + "/" + cfg.Bucket
	}

	return &S3Uploader{
		client:        s3.New(opts),
		bucket:        cfg.Bucket,
		publicBaseURL: strings.TrimSuffix(base, "/"),
	}, nil
}

func (u *S3Uploader) Upload(ctx context.Context, key string, content io.Reader) (string, error) {
	// The SDK signs the payload, which needs a seekable body.
	data, err := io.ReadAll(content)
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}

	contentType := mime.TypeByExtension(path.Ext(key))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("put object %q: %w", key, err)
	}
	return u.publicBaseURL + "/" + key, nil
}
