package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/tranaskommun/tranas-forms/internal/config"
)

// S3Storage stores uploads in an S3-compatible bucket (AWS S3, Cloudflare
// R2, MinIO). Mail attachments still need a local file, so submissions
// using this backend attach nothing and link the object URL instead.
type S3Storage struct {
	client        *s3.Client
	bucket        string
	publicBaseURL string

	now func() time.Time // test override
}

// NewS3Storage builds a client from static credentials and a custom
// endpoint.
func NewS3Storage(cfg config.S3Config) *S3Storage {
	awsCfg := aws.Config{
		Credentials: credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Region:      cfg.Region,
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Storage{
		client:        client,
		bucket:        cfg.BucketName,
		publicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
		now:           time.Now,
	}
}

func (s *S3Storage) Save(ctx context.Context, src io.Reader, filename string, size int64) (*SavedFile, error) {
	key := path.Join(monthBucket(s.now()), uniqueName(filename))

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          src,
		ContentLength: aws.Int64(size),
	})
	if err != nil {
		return nil, fmt.Errorf("put object: %w", err)
	}

	return &SavedFile{
		Path: key,
		URL:  s.publicBaseURL + "/" + key,
	}, nil
}
