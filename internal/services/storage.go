package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"dating-app/internal/config"

	"github.com/aws/aws-sdk-go/aws"
	awscredentials "github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// StoredObject identifies a saved asset. PublicID is the key used to
// delete it later.
type StoredObject struct {
	URL      string
	PublicID string
}

type PhotoStorage interface {
	Save(ctx context.Context, key string, r io.Reader, size int64, contentType string) (StoredObject, error)
	// Delete removes the asset. A missing asset is not an error.
	Delete(ctx context.Context, publicID string) error
}

// NewPhotoStorage returns the backend selected by cfg.StorageDriver.
func NewPhotoStorage(ctx context.Context, cfg *config.Config) (PhotoStorage, error) {
	switch cfg.StorageDriver {
	case "local":
		return NewLocalStorage(cfg.UploadDir, cfg.PublicBaseURL+"/uploads")
	case "minio":
		return NewMinIOStorage(ctx, cfg)
	case "s3":
		return NewS3Storage(cfg)
	}
	return nil, fmt.Errorf("unsupported storage driver: %s", cfg.StorageDriver)
}

// PhotoKey builds a unique object key for a member's upload.
func PhotoKey(memberID, filename string) string {
	return path.Join("photos", memberID, uuid.NewString()+strings.ToLower(filepath.Ext(filename)))
}

type LocalStorage struct {
	dir     string
	baseURL string
}

func NewLocalStorage(dir, baseURL string) (*LocalStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &LocalStorage{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (s *LocalStorage) Dir() string {
	return s.dir
}

func (s *LocalStorage) Save(ctx context.Context, key string, r io.Reader, size int64, contentType string) (obj StoredObject, err error) {
	target, err := s.resolve(key)
	if err != nil {
		return StoredObject{}, err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return StoredObject{}, fmt.Errorf("failed to create photo directory: %w", err)
	}

	f, err := os.Create(target)
	if err != nil {
		return StoredObject{}, fmt.Errorf("failed to create photo file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close photo file: %w", closeErr)
		}
		if err != nil {
			_ = os.Remove(target)
		}
	}()

	if _, err := io.Copy(f, contextReader{ctx: ctx, r: r}); err != nil {
		return StoredObject{}, fmt.Errorf("failed to write photo file: %w", err)
	}

	return StoredObject{URL: s.baseURL + "/" + key, PublicID: key}, nil
}

func (s *LocalStorage) Delete(ctx context.Context, publicID string) error {
	target, err := s.resolve(publicID)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete photo file: %w", err)
	}
	return nil
}

// resolve maps a key to a path inside the upload directory.
func (s *LocalStorage) resolve(key string) (string, error) {
	target := filepath.Join(s.dir, filepath.FromSlash(key))
	rel, err := filepath.Rel(s.dir, target)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("invalid photo key %q", key)
	}
	return target, nil
}

// contextReader stops a copy once ctx is done.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

type MinIOStorage struct {
	client  *minio.Client
	bucket  string
	baseURL string
}

func NewMinIOStorage(ctx context.Context, cfg *config.Config) (*MinIOStorage, error) {
	client, err := minio.New(cfg.MinIOEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinIOAccessKey, cfg.MinIOSecretKey, ""),
		Secure: cfg.MinIOUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.S3Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.S3Bucket, minio.MakeBucketOptions{Region: cfg.AWSRegion}); err != nil {
			return nil, fmt.Errorf("failed to create MinIO bucket: %w", err)
		}
	}

	protocol := "http"
	if cfg.MinIOUseSSL {
		protocol = "https"
	}
	return &MinIOStorage{
		client:  client,
		bucket:  cfg.S3Bucket,
		baseURL: fmt.Sprintf("%s://%s/%s", protocol, cfg.MinIOEndpoint, cfg.S3Bucket),
	}, nil
}

func (s *MinIOStorage) Save(ctx context.Context, key string, r io.Reader, size int64, contentType string) (StoredObject, error) {
	_, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return StoredObject{}, fmt.Errorf("failed to upload to MinIO: %w", err)
	}
	return StoredObject{URL: s.baseURL + "/" + key, PublicID: key}, nil
}

func (s *MinIOStorage) Delete(ctx context.Context, publicID string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, publicID, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete from MinIO: %w", err)
	}
	return nil
}

type S3Storage struct {
	client   *s3.S3
	uploader *s3manager.Uploader
	bucket   string
}

func NewS3Storage(cfg *config.Config) (*S3Storage, error) {
	awsCfg := &aws.Config{Region: aws.String(cfg.AWSRegion)}
	if cfg.AWSAccessKeyID != "" {
		awsCfg.Credentials = awscredentials.NewStaticCredentials(cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, "")
	}

	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return &S3Storage{
		client:   s3.New(sess),
		uploader: s3manager.NewUploader(sess),
		bucket:   cfg.S3Bucket,
	}, nil
}

func (s *S3Storage) Save(ctx context.Context, key string, r io.Reader, size int64, contentType string) (StoredObject, error) {
	out, err := s.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        r,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return StoredObject{}, fmt.Errorf("failed to upload to S3: %w", err)
	}
	return StoredObject{URL: out.Location, PublicID: key}, nil
}

func (s *S3Storage) Delete(ctx context.Context, publicID string) error {
	_, err := s.client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(publicID),
	})
	if err != nil {
		return fmt.Errorf("failed to delete from S3: %w", err)
	}
	return nil
}
