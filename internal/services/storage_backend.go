package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/LanderBuys/strivon-sub004/internal/config"
)

// ObjectStorage abstracts the media object store. One bucket holds both
// logical areas: quarantine/ (private, unreviewed uploads) and public/
// (served to end users). Implemented by S3Backend for R2/MinIO/S3 and by
// LocalBackend for dev and tests.
type ObjectStorage interface {
	// Copy duplicates an object within the bucket. Source must exist.
	Copy(ctx context.Context, srcKey, dstKey string) error

	// Delete removes the object at key. Deleting a missing object is not
	// an error.
	Delete(ctx context.Context, key string) error

	// Exists reports whether an object is present at key.
	Exists(ctx context.Context, key string) (bool, error)

	// Download returns the object content. Caller closes the reader.
	Download(ctx context.Context, key string) (io.ReadCloser, int64, error)

	// Upload stores content at key, overwriting any existing object.
	Upload(ctx context.Context, key string, reader io.Reader, size int64) error

	// Name returns a backend identifier for logs ("s3", "local").
	Name() string
}

// ---------------------------------------------------------------------------
// S3Backend — aws-sdk-go-v2 client (Cloudflare R2, MinIO, AWS S3)
// ---------------------------------------------------------------------------

type S3Backend struct {
	client *s3.Client
	bucket string
}

// NewS3Backend creates an S3-compatible backend from the storage config.
func NewS3Backend(ctx context.Context, cfg config.StorageConfig) (*S3Backend, error) {
	region := cfg.Region
	if region == "" {
		region = "auto"
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey, cfg.SecretKey, "",
		)),
		awsconfig.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("configure S3 client: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.Endpoint)
		o.UsePathStyle = true // required for MinIO and R2
	})

	return &S3Backend{client: client, bucket: cfg.Bucket}, nil
}

func (b *S3Backend) Name() string { return "s3" }

func (b *S3Backend) Copy(ctx context.Context, srcKey, dstKey string) error {
	_, err := b.client.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:     aws.String(b.bucket),
		CopySource: aws.String(b.bucket + "/" + srcKey),
		Key:        aws.String(dstKey),
	})
	if err != nil {
		return fmt.Errorf("copy %s -> %s: %w", srcKey, dstKey, err)
	}
	return nil
}

func (b *S3Backend) Delete(ctx context.Context, key string) error {
	// S3 DeleteObject succeeds on a missing key, which is exactly the
	// tolerance the pipeline wants on redelivery.
	_, err := b.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (b *S3Backend) Exists(ctx context.Context, key string) (bool, error) {
	_, err := b.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		msg := err.Error()
		if strings.Contains(msg, "NotFound") ||
			strings.Contains(msg, "404") ||
			strings.Contains(msg, "NoSuchKey") {
			return false, nil
		}
		return false, fmt.Errorf("head %s: %w", key, err)
	}
	return true, nil
}

func (b *S3Backend) Download(ctx context.Context, key string) (io.ReadCloser, int64, error) {
	result, err := b.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("download %s: %w", key, err)
	}
	return result.Body, aws.ToInt64(result.ContentLength), nil
}

func (b *S3Backend) Upload(ctx context.Context, key string, reader io.Reader, size int64) error {
	input := &s3.PutObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
		Body:   reader,
	}
	if size > 0 {
		input.ContentLength = aws.Int64(size)
	}
	if _, err := b.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("upload %s: %w", key, err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// LocalBackend — filesystem store for dev environments and tests
// ---------------------------------------------------------------------------

type LocalBackend struct {
	baseDir string
}

func NewLocalBackend(baseDir string) *LocalBackend {
	return &LocalBackend{baseDir: baseDir}
}

func (b *LocalBackend) Name() string { return "local" }

// resolve validates and resolves a key to an absolute filesystem path,
// preventing traversal outside baseDir.
func (b *LocalBackend) resolve(key string) (string, error) {
	if strings.Contains(key, "..") {
		return "", fmt.Errorf("invalid key: contains '..'")
	}
	full := filepath.Join(b.baseDir, filepath.FromSlash(key))
	if !strings.HasPrefix(full, b.baseDir) {
		return "", fmt.Errorf("key escapes base directory")
	}
	return full, nil
}

func (b *LocalBackend) Copy(_ context.Context, srcKey, dstKey string) error {
	src, err := b.resolve(srcKey)
	if err != nil {
		return err
	}
	dst, err := b.resolve(dstKey)
	if err != nil {
		return err
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("copy source %s: %w", srcKey, err)
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("create destination directory: %w", err)
	}
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("copy destination %s: %w", dstKey, err)
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}

func (b *LocalBackend) Delete(_ context.Context, key string) error {
	full, err := b.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (b *LocalBackend) Exists(_ context.Context, key string) (bool, error) {
	full, err := b.resolve(key)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(full)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

func (b *LocalBackend) Download(_ context.Context, key string) (io.ReadCloser, int64, error) {
	full, err := b.resolve(key)
	if err != nil {
		return nil, 0, err
	}
	f, err := os.Open(full)
	if err != nil {
		return nil, 0, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, err
	}
	return f, info.Size(), nil
}

func (b *LocalBackend) Upload(_ context.Context, key string, reader io.Reader, size int64) error {
	full, err := b.resolve(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	f, err := os.Create(full)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(f, reader)
	return err
}
