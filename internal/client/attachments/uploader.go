// Package attachments uploads local attachment files of client history items
// to S3-compatible object storage.
package attachments

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"os"
	"path"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/nipa/healthsync/internal/cryptox"
)

// ErrDisabled is returned by Upload when no bucket is configured.
var ErrDisabled = errors.New("attachment storage disabled")

// Uploader stores a local file and returns the object key that replaces its
// local reference in the record.
type Uploader interface {
	Upload(ctx context.Context, ownerID, localPath string) (string, error)
}

// S3Config describes the target bucket. An empty Bucket disables uploads.
type S3Config struct {
	Region       string
	AccessKey    string
	SecretKey    string
	BaseEndpoint string
	Bucket       string
}

type putObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// swapped in tests
var (
	loadDefaultAWSConfig  = config.LoadDefaultConfig
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) putObjectAPI {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

type S3Uploader struct {
	bucket string
	client putObjectAPI
}

// NewS3Uploader builds a client with static credentials. A custom base
// endpoint (MinIO and friends) switches to path-style addressing.
func NewS3Uploader(ctx context.Context, cfg S3Config) (*S3Uploader, error) {
	if cfg.Bucket == "" {
		return &S3Uploader{}, nil
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}

	awsCfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.BaseEndpoint)
			o.UsePathStyle = true
		}
	})
	return &S3Uploader{bucket: cfg.Bucket, client: client}, nil
}

// Enabled reports whether a bucket is configured.
func (u *S3Uploader) Enabled() bool {
	return u.bucket != "" && u.client != nil
}

// Key is the content-addressed object key of a file owned by ownerID.
func Key(ownerID, contentHash string) string {
	return path.Join("attachments", ownerID, contentHash)
}

// Upload puts the file under its content key, so repeating an upload after a
// failed push writes the same object again.
func (u *S3Uploader) Upload(ctx context.Context, ownerID, localPath string) (string, error) {
	if !u.Enabled() {
		return "", ErrDisabled
	}

	hash, err := cryptox.FileHash(localPath)
	if err != nil {
		return "", err
	}
	key := Key(ownerID, hash)

	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", localPath, err)
	}
	defer f.Close()

	in := &s3.PutObjectInput{
		Bucket: aws.String(u.bucket),
		Key:    aws.String(key),
		Body:   f,
	}
	if ct := mime.TypeByExtension(filepath.Ext(localPath)); ct != "" {
		in.ContentType = aws.String(ct)
	}

	if _, err := u.client.PutObject(ctx, in); err != nil {
		return "", fmt.Errorf("put %s: %w", key, err)
	}
	return key, nil
}
