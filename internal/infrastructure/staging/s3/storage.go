// Package s3 stages uploaded bytes in a MinIO/S3 bucket, keeping a
// local scratch copy for the drive upload, which reads from a file
// path. The bucket copy survives process restarts mid-ingestion.
package s3

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type Config struct {
	Endpoint   string
	AccessKey  string
	SecretKey  string
	UseSSL     bool
	Region     string
	Bucket     string
	ScratchDir string
}

type Storage struct {
	client     *minio.Client
	bucket     string
	region     string
	scratchDir string
}

func New(cfg Config) (*Storage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio: %w", err)
	}
	scratchDir := cfg.ScratchDir
	if scratchDir == "" {
		scratchDir = filepath.Join(os.TempDir(), "docuvault-staging")
	}
	if err := os.MkdirAll(scratchDir, 0o755); err != nil {
		return nil, fmt.Errorf("create scratch dir: %w", err)
	}
	return &Storage{
		client:     client,
		bucket:     cfg.Bucket,
		region:     cfg.Region,
		scratchDir: scratchDir,
	}, nil
}

// EnsureBucket makes sure the staging bucket exists before first use.
func (s *Storage) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", s.bucket, err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region}); err != nil {
			return fmt.Errorf("make bucket %s: %w", s.bucket, err)
		}
	}
	return nil
}

func (s *Storage) Save(ctx context.Context, key string, data io.Reader) (string, error) {
	path := filepath.Join(s.scratchDir, key)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create scratch file: %w", err)
	}
	size, err := io.Copy(f, data)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", fmt.Errorf("write scratch file: %w", err)
	}

	object, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("reopen scratch file: %w", err)
	}
	defer object.Close()

	if _, err := s.client.PutObject(ctx, s.bucket, key, object, size, minio.PutObjectOptions{}); err != nil {
		return "", fmt.Errorf("upload staged object: %w", err)
	}
	return path, nil
}

func (s *Storage) Remove(ctx context.Context, key string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove staged object: %w", err)
	}
	if err := os.Remove(filepath.Join(s.scratchDir, key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove scratch file: %w", err)
	}
	return nil
}
