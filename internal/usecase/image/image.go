package image

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/vladmycode/imager/internal/domain"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"
)

var supportedMimeTypes = map[string]domain.ImageFormat{
	"image/jpeg": domain.FormatJPEG,
	"image/jpg":  domain.FormatJPG,
	"image/png":  domain.FormatPNG,
	"image/gif":  domain.FormatGIF,
	"image/webp": domain.FormatWebP,
	"image/bmp":  domain.FormatBMP,
	"image/tiff": domain.FormatTIFF,
}

// ImageUsecase accepts uploads, persists them and enqueues composition
// tasks for the worker.
type ImageUsecase struct {
	images   ImagesRepository
	files    FileRepository
	producer TaskProducer
	retries  retry.Strategy
	bucket   string
	maxSize  int64
}

func NewImageUsecase(images ImagesRepository, files FileRepository, producer TaskProducer, retries retry.Strategy, bucket string, maxSize int64) *ImageUsecase {
	if maxSize <= 0 {
		maxSize = domain.DefaultMaxUploadSize
	}

	return &ImageUsecase{
		images:   images,
		files:    files,
		producer: producer,
		retries:  retries,
		bucket:   bucket,
		maxSize:  maxSize,
	}
}

// UploadImage stores the original, records metadata and publishes a
// composition task with the requested operations.
func (u *ImageUsecase) UploadImage(ctx context.Context, data []byte, filename string, operations []domain.OperationParams) (*domain.Image, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}
	if int64(len(data)) > u.maxSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrFileTooLarge, len(data))
	}

	contentType := http.DetectContentType(data)
	format, ok := supportedMimeTypes[strings.ToLower(contentType)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, contentType)
	}

	if len(operations) == 0 {
		operations = []domain.OperationParams{{Type: domain.OpCompose}}
	}
	for _, op := range operations {
		switch op.Type {
		case domain.OpCompose, domain.OpThumbnail, domain.OpCaption:
		default:
			return nil, fmt.Errorf("%w: %s", ErrInvalidOperation, op.Type)
		}
	}

	objectPath, err := u.files.SaveOriginal(ctx, data, filename, contentType)
	if err != nil {
		return nil, fmt.Errorf("failed to store original: %w", err)
	}

	now := time.Now()
	img := &domain.Image{
		ID:               uuid.New().String(),
		OriginalFilename: filename,
		OriginalSize:     int64(len(data)),
		MimeType:         contentType,
		Status:           domain.StatusUploaded,
		OriginalPath:     objectPath,
		Bucket:           u.bucket,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := u.images.Save(ctx, img); err != nil {
		if delErr := u.files.DeleteObject(ctx, objectPath); delErr != nil {
			zlog.Logger.Error().Err(delErr).Str("path", objectPath).Msg("failed to clean up original after save error")
		}
		return nil, fmt.Errorf("failed to save image metadata: %w", err)
	}

	task := domain.ComposeTask{
		ID:           uuid.New().String(),
		ImageID:      img.ID,
		OriginalPath: objectPath,
		Bucket:       u.bucket,
		Operations:   operations,
		Format:       format,
	}

	payload, err := json.Marshal(task)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal task: %w", err)
	}

	if err := u.producer.Send(ctx, u.retries, []byte(img.ID), payload); err != nil {
		if stErr := u.images.UpdateStatus(ctx, img.ID, domain.StatusFailed); stErr != nil {
			zlog.Logger.Error().Err(stErr).Str("image_id", img.ID).Msg("failed to mark image failed")
		}
		return nil, fmt.Errorf("%w: %v", ErrEnqueueFailed, err)
	}

	zlog.Logger.Info().
		Str("image_id", img.ID).
		Str("path", objectPath).
		Int("operations", len(operations)).
		Msg("image uploaded and task enqueued")

	return img, nil
}

func (u *ImageUsecase) GetImage(ctx context.Context, id string) (*domain.Image, []domain.RenderedImage, error) {
	img, err := u.images.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	rendered, err := u.images.GetRenderedImages(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	return img, rendered, nil
}

// GetRenderedFile returns the bytes of a rendered output for the given
// operation, falling back to the compose output when operation is empty.
func (u *ImageUsecase) GetRenderedFile(ctx context.Context, id, operation string) ([]byte, string, error) {
	img, err := u.images.GetByID(ctx, id)
	if err != nil {
		return nil, "", err
	}

	if img.Status != domain.StatusCompleted {
		return nil, "", fmt.Errorf("%w: status %s", ErrImageNotReady, img.Status)
	}

	if operation == "" {
		operation = string(domain.OpCompose)
	}

	rendered, err := u.images.GetRenderedImageByOperation(ctx, id, operation)
	if err != nil {
		return nil, "", err
	}
	if rendered == nil {
		return nil, "", fmt.Errorf("%w: %s", ErrNoRenderedForOp, operation)
	}

	data, contentType, err := u.files.GetObject(ctx, rendered.Path)
	if err != nil {
		return nil, "", err
	}

	return data, contentType, nil
}

func (u *ImageUsecase) GetOriginalFile(ctx context.Context, id string) ([]byte, string, error) {
	img, err := u.images.GetByID(ctx, id)
	if err != nil {
		return nil, "", err
	}

	return u.files.GetObject(ctx, img.OriginalPath)
}

func (u *ImageUsecase) GetStatus(ctx context.Context, id string) (*domain.Image, error) {
	return u.images.GetByID(ctx, id)
}

func (u *ImageUsecase) ListImages(ctx context.Context, limit, offset int) ([]domain.Image, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	return u.images.List(ctx, limit, offset)
}

// DeleteImage removes the original and all rendered outputs, then marks
// the metadata row deleted.
func (u *ImageUsecase) DeleteImage(ctx context.Context, id string) error {
	img, err := u.images.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := u.files.DeleteObject(ctx, img.OriginalPath); err != nil {
		zlog.Logger.Warn().Err(err).Str("path", img.OriginalPath).Msg("failed to delete original object")
	}

	prefix := domain.PathPrefixRendered + img.ID + "/"
	if err := u.files.DeleteObjectsWithPrefix(ctx, prefix); err != nil {
		zlog.Logger.Warn().Err(err).Str("prefix", prefix).Msg("failed to delete rendered objects")
	}

	if err := u.images.DeleteRenderedImages(ctx, id); err != nil {
		return fmt.Errorf("failed to delete rendered rows: %w", err)
	}

	if err := u.images.UpdateStatus(ctx, id, domain.StatusDeleted); err != nil {
		return fmt.Errorf("failed to mark image deleted: %w", err)
	}

	zlog.Logger.Info().Str("image_id", id).Msg("image deleted")

	return nil
}
