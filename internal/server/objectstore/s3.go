// Package objectstore issues presigned S3 URLs for note attachments. The
// server never proxies file bytes: clients PUT and GET directly against the
// bucket (MinIO in development).
package objectstore

import (
	"context"
	"fmt"
	"mime"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	sc "github.com/samudhan2008/sa-notes-beta/internal/server/config"
)

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

// S3Store presigns uploads and downloads against one bucket.
type S3Store struct {
	region   string
	user     string
	password string
	endpoint string
	bucket   string
	expires  time.Duration

	mu     sync.Mutex
	client *s3.PresignClient
}

func NewS3Store(cfg *sc.Config) *S3Store {
	expires := cfg.PresignValidityDuration
	if expires <= 0 {
		expires = 15 * time.Minute
	}
	return &S3Store{
		region:   cfg.S3Region,
		user:     cfg.S3RootUser,
		password: cfg.S3RootPassword,
		endpoint: cfg.S3BaseEndpoint,
		bucket:   cfg.S3Bucket,
		expires:  expires,
	}
}

// Enabled reports whether a bucket is configured.
func (s *S3Store) Enabled() bool {
	return s != nil && s.bucket != ""
}

// NewStorageKey returns a fresh, date-partitioned object key.
func NewStorageKey(ext string) string {
	d := time.Now().UTC()
	return fmt.Sprintf("notes/%d/%d/%d/%v%s", d.Year(), d.Month(), d.Day(), uuid.New(), ext)
}

// presignClient builds the client on first use. Failures are not cached.
func (s *S3Store) presignClient(ctx context.Context) (*s3.PresignClient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client != nil {
		return s.client, nil
	}

	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(s.region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.user,     // MINIO_ROOT_USER
			s.password, // MINIO_ROOT_PASSWORD
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if s.endpoint != "" {
			o.BaseEndpoint = aws.String(s.endpoint)
		}
		o.UsePathStyle = true
	})

	s.client = newS3PresignClient(client)
	return s.client, nil
}

// PresignPut returns a URL accepting a single PUT of size bytes.
func (s *S3Store) PresignPut(ctx context.Context, key, contentType string, size int64) (string, error) {
	pc, err := s.presignClient(ctx)
	if err != nil {
		return "", err
	}

	in := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}
	if size > 0 {
		in.ContentLength = aws.Int64(size)
	}

	req, err := presignPutObject(pc, ctx, in, s3.WithPresignExpires(s.expires))
	if err != nil {
		return "", err
	}
	return req.URL, nil
}

// PresignGet returns a download URL; filename, if set, becomes the
// attachment name offered to the browser.
func (s *S3Store) PresignGet(ctx context.Context, key, filename string) (string, error) {
	pc, err := s.presignClient(ctx)
	if err != nil {
		return "", err
	}

	in := &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}
	if filename != "" {
		in.ResponseContentDisposition = aws.String(
			mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	}

	req, err := presignGetObject(pc, ctx, in, s3.WithPresignExpires(s.expires))
	if err != nil {
		return "", err
	}
	return req.URL, nil
}
