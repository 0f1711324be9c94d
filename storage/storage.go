package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"tldreel-pipeline/config"
)

// Store moves a finished reel into durable storage and returns where it
// ended up. Providers are thin passthroughs; the pipeline never touches
// them directly.
type Store interface {
	Save(ctx context.Context, localPath, name string) (string, error)
}

// FromConfig selects a provider. S3 credentials come from the
// environment (S3_ACCESS_KEY / S3_SECRET_KEY), never from the file.
func FromConfig(cfg config.StorageConfig) (Store, error) {
	switch cfg.Provider {
	case "local", "":
		return NewLocalStore(cfg.LocalDir), nil
	case "s3":
		return NewS3Store(cfg.S3, os.Getenv("S3_ACCESS_KEY"), os.Getenv("S3_SECRET_KEY"))
	default:
		return nil, fmt.Errorf("unknown storage provider %q", cfg.Provider)
	}
}

// LocalStore copies reels into a local directory
type LocalStore struct {
	dir string
}

func NewLocalStore(dir string) *LocalStore {
	return &LocalStore{dir: dir}
}

func (s *LocalStore) Save(_ context.Context, localPath, name string) (string, error) {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", fmt.Errorf("create storage dir: %w", err)
	}
	dest := filepath.Join(s.dir, name)

	in, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("open reel: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("create dest: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dest)
		return "", fmt.Errorf("copy reel: %w", err)
	}
	if err := out.Close(); err != nil {
		return "", err
	}
	return dest, nil
}

// S3Store uploads reels to an S3-compatible bucket
type S3Store struct {
	client *minio.Client
	bucket string
}

func NewS3Store(cfg config.S3Config, accessKey, secretKey string) (*S3Store, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("s3 storage: endpoint is required")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 storage: bucket is required")
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("s3 storage: %w", err)
	}
	return &S3Store{client: client, bucket: cfg.Bucket}, nil
}

func (s *S3Store) Save(ctx context.Context, localPath, name string) (string, error) {
	_, err := s.client.FPutObject(ctx, s.bucket, name, localPath,
		minio.PutObjectOptions{ContentType: "video/mp4"})
	if err != nil {
		return "", fmt.Errorf("upload reel: %w", err)
	}
	return fmt.Sprintf("s3://%s/%s", s.bucket, name), nil
}

var (
	_ Store = (*LocalStore)(nil)
	_ Store = (*S3Store)(nil)
)
