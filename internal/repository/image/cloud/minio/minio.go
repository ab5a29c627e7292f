package minio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"

	"github.com/vladmycode/imager/internal/config"
	"github.com/vladmycode/imager/internal/domain"
	"github.com/vladmycode/imager/internal/repository/image"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/wb-go/wbf/zlog"
)

// FileRepository stores originals and rendered outputs in a minio bucket.
type FileRepository struct {
	client *minio.Client
	bucket string
}

func NewFileRepository(ctx context.Context, cfg config.MinioConfig) (*FileRepository, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	repo := &FileRepository{
		client: client,
		bucket: cfg.Bucket,
	}

	if err := repo.ensureBucket(ctx); err != nil {
		return nil, err
	}

	return repo, nil
}

func (r *FileRepository) ensureBucket(ctx context.Context) error {
	exists, err := r.client.BucketExists(ctx, r.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", r.bucket, err)
	}

	if !exists {
		if err := r.client.MakeBucket(ctx, r.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", r.bucket, err)
		}
		zlog.Logger.Info().Str("bucket", r.bucket).Msg("created bucket")
	}

	return nil
}

// SaveOriginal writes an uploaded source under original/ and returns its
// object path.
func (r *FileRepository) SaveOriginal(ctx context.Context, data []byte, filename, contentType string) (string, error) {
	objectPath := domain.PathPrefixOriginal + uuid.New().String() + path.Ext(filename)

	_, err := r.client.PutObject(ctx, r.bucket, objectPath,
		bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("failed to save original %s: %w", objectPath, err)
	}

	return objectPath, nil
}

// SaveRendered writes a rendered output under rendered/<image id>/.
func (r *FileRepository) SaveRendered(ctx context.Context, imageID string, data []byte, name, contentType string) (string, error) {
	objectPath := domain.PathPrefixRendered + imageID + "/" + name

	_, err := r.client.PutObject(ctx, r.bucket, objectPath,
		bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("failed to save rendered %s: %w", objectPath, err)
	}

	return objectPath, nil
}

func (r *FileRepository) GetObject(ctx context.Context, objectPath string) ([]byte, string, error) {
	obj, err := r.client.GetObject(ctx, r.bucket, objectPath, minio.GetObjectOptions{})
	if err != nil {
		return nil, "", fmt.Errorf("failed to get object %s: %w", objectPath, err)
	}
	defer obj.Close()

	stat, err := obj.Stat()
	if err != nil {
		errResp := minio.ToErrorResponse(err)
		if errResp.Code == "NoSuchKey" {
			return nil, "", image.ErrFileNotFound
		}
		return nil, "", fmt.Errorf("failed to stat object %s: %w", objectPath, err)
	}

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read object %s: %w", objectPath, err)
	}

	return data, stat.ContentType, nil
}

func (r *FileRepository) DeleteObject(ctx context.Context, objectPath string) error {
	err := r.client.RemoveObject(ctx, r.bucket, objectPath, minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("failed to delete object %s: %w", objectPath, err)
	}

	return nil
}

// DeleteObjectsWithPrefix removes every object under prefix, used to drop
// all rendered outputs of an image at once.
func (r *FileRepository) DeleteObjectsWithPrefix(ctx context.Context, prefix string) error {
	objects := r.client.ListObjects(ctx, r.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	})

	for obj := range objects {
		if obj.Err != nil {
			return fmt.Errorf("failed to list objects under %s: %w", prefix, obj.Err)
		}

		if err := r.client.RemoveObject(ctx, r.bucket, obj.Key, minio.RemoveObjectOptions{}); err != nil {
			return fmt.Errorf("failed to delete object %s: %w", obj.Key, err)
		}
	}

	return nil
}
