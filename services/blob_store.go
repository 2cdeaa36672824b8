package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"athena_privacy_go/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// BlobStore is the opaque store export bundles are published to. Bundles are
// only ever reachable through the tokenized download route, never directly.
type BlobStore interface {
	Put(ctx context.Context, key string, reader io.Reader, contentType string, size int64) error
	Open(ctx context.Context, key string) (io.ReadCloser, string, error)
	Remove(ctx context.Context, key string) error
	IsConfigured() bool
}

// Blob is the global blob store instance
var Blob BlobStore

// InitializeBlobStore sets up the blob store based on configuration
func InitializeBlobStore(cfg *config.Config) {
	if cfg.R2AccountID != "" && cfg.R2AccessKeyID != "" && cfg.R2SecretAccessKey != "" && cfg.R2BucketName != "" {
		r2, err := NewR2BlobStore(cfg)
		if err != nil {
			log.Printf("[WARNING] Failed to initialize R2 blob store: %v. Falling back to local storage.", err)
			Blob = NewLocalBlobStore(cfg.ExportDir)
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		_, err = r2.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: &cfg.R2BucketName})
		if err != nil {
			log.Printf("[WARNING] R2 bucket connection test failed: %v. Falling back to local storage.", err)
			Blob = NewLocalBlobStore(cfg.ExportDir)
			return
		}

		Blob = r2
		log.Printf("Blob store connection established (Cloudflare R2 - bucket: %s)", cfg.R2BucketName)
	} else {
		Blob = NewLocalBlobStore(cfg.ExportDir)
		log.Printf("Blob store connection established (Local filesystem - path: %s)", cfg.ExportDir)
	}
}

// R2BlobStore implements BlobStore for Cloudflare R2
type R2BlobStore struct {
	client *s3.Client
	bucket string
}

// NewR2BlobStore creates a new R2 blob store
func NewR2BlobStore(cfg *config.Config) (*R2BlobStore, error) {
	endpoint := fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.R2AccountID)

	creds := credentials.NewStaticCredentialsProvider(cfg.R2AccessKeyID, cfg.R2SecretAccessKey, "")

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithCredentialsProvider(creds),
		awsconfig.WithRegion("auto"), // R2 uses "auto" region
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})

	return &R2BlobStore{client: client, bucket: cfg.R2BucketName}, nil
}

// IsConfigured returns true if R2 is properly configured
func (r *R2BlobStore) IsConfigured() bool {
	return r.client != nil && r.bucket != ""
}

// Put uploads a bundle to R2
func (r *R2BlobStore) Put(ctx context.Context, key string, reader io.Reader, contentType string, size int64) error {
	_, err := r.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(r.bucket),
		Key:           aws.String(key),
		Body:          reader,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
	})
	if err != nil {
		return fmt.Errorf("failed to upload to R2: %w", err)
	}
	return nil
}

// Open retrieves a bundle from R2 and returns a reader
func (r *R2BlobStore) Open(ctx context.Context, key string) (io.ReadCloser, string, error) {
	result, err := r.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to get object from R2: %w", err)
	}

	contentType := "application/octet-stream"
	if result.ContentType != nil {
		contentType = *result.ContentType
	}
	return result.Body, contentType, nil
}

// Remove deletes a bundle from R2
func (r *R2BlobStore) Remove(ctx context.Context, key string) error {
	_, err := r.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete from R2: %w", err)
	}
	return nil
}

// LocalBlobStore implements BlobStore on the local filesystem, used for
// development and tests
type LocalBlobStore struct {
	baseDir string
}

// NewLocalBlobStore creates a new local blob store
func NewLocalBlobStore(baseDir string) *LocalBlobStore {
	return &LocalBlobStore{baseDir: baseDir}
}

// IsConfigured returns true (local storage is always available)
func (l *LocalBlobStore) IsConfigured() bool {
	return true
}

// Put saves a bundle to the local filesystem
func (l *LocalBlobStore) Put(ctx context.Context, key string, reader io.Reader, contentType string, size int64) error {
	fullPath := filepath.Join(l.baseDir, key)

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	dst, err := os.Create(fullPath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, reader); err != nil {
		return fmt.Errorf("failed to save bundle: %w", err)
	}
	return nil
}

// Open retrieves a bundle from the local filesystem
func (l *LocalBlobStore) Open(ctx context.Context, key string) (io.ReadCloser, string, error) {
	file, err := os.Open(filepath.Join(l.baseDir, key))
	if err != nil {
		return nil, "", fmt.Errorf("failed to open bundle: %w", err)
	}
	return file, "application/json", nil
}

// Remove deletes a bundle from the local filesystem
func (l *LocalBlobStore) Remove(ctx context.Context, key string) error {
	if err := os.Remove(filepath.Join(l.baseDir, key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete bundle: %w", err)
	}
	return nil
}
