package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/vladmycode/imager/internal/domain"
	"github.com/vladmycode/imager/internal/repository/image"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/dbpg"
	"github.com/wb-go/wbf/retry"
)

type ImagesRepository struct {
	db      *dbpg.DB
	retries retry.Strategy
}

func NewImagesRepository(db *dbpg.DB, retries retry.Strategy) *ImagesRepository {
	return &ImagesRepository{
		db:      db,
		retries: retries,
	}
}

func (r *ImagesRepository) Save(ctx context.Context, img *domain.Image) error {
	query := `
		INSERT INTO images (
			id, original_filename, original_size, mime_type,
			status, original_path, bucket, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.ExecWithRetry(ctx, r.retries, query,
		img.ID,
		img.OriginalFilename,
		img.OriginalSize,
		img.MimeType,
		img.Status,
		img.OriginalPath,
		img.Bucket,
		img.CreatedAt,
		img.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to save image: %w", err)
	}

	return nil
}

func (r *ImagesRepository) GetByID(ctx context.Context, id string) (*domain.Image, error) {
	query := `
		SELECT id, original_filename, original_size, mime_type,
		       status, original_path, bucket, created_at, updated_at
		FROM images
		WHERE id = $1 AND status != $2
	`

	row, err := r.db.QueryRowWithRetry(ctx, r.retries, query, id, domain.StatusDeleted)
	if err != nil {
		return nil, fmt.Errorf("failed to query image: %w", err)
	}

	var img domain.Image
	err = row.Scan(
		&img.ID,
		&img.OriginalFilename,
		&img.OriginalSize,
		&img.MimeType,
		&img.Status,
		&img.OriginalPath,
		&img.Bucket,
		&img.CreatedAt,
		&img.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, image.ErrImageNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan image: %w", err)
	}

	return &img, nil
}

func (r *ImagesRepository) UpdateStatus(ctx context.Context, id string, status domain.ImageStatus) error {
	query := `UPDATE images SET status = $1, updated_at = $2 WHERE id = $3`

	result, err := r.db.ExecWithRetry(ctx, r.retries, query, status, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}

	if affected == 0 {
		return image.ErrImageNotFound
	}

	return nil
}

func (r *ImagesRepository) SaveRenderedImage(ctx context.Context, rendered *domain.RenderedImage) error {
	query := `
		INSERT INTO rendered_images (
			id, image_id, operation, parameters, path,
			size, mime_type, format, status, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	rendered.ID = uuid.New().String()
	rendered.CreatedAt = time.Now()

	_, err := r.db.ExecWithRetry(ctx, r.retries, query,
		rendered.ID,
		rendered.ImageID,
		rendered.Operation,
		rendered.Parameters,
		rendered.Path,
		rendered.Size,
		rendered.MimeType,
		rendered.Format,
		rendered.Status,
		rendered.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to save rendered image: %w", err)
	}

	return nil
}

func (r *ImagesRepository) GetRenderedImages(ctx context.Context, imageID string) ([]domain.RenderedImage, error) {
	query := `
		SELECT id, image_id, operation, parameters, path,
		       size, mime_type, format, status, created_at
		FROM rendered_images
		WHERE image_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryWithRetry(ctx, r.retries, query, imageID)
	if err != nil {
		return nil, fmt.Errorf("failed to query rendered images: %w", err)
	}
	defer rows.Close()

	var rendered []domain.RenderedImage
	for rows.Next() {
		var ri domain.RenderedImage
		err := rows.Scan(
			&ri.ID,
			&ri.ImageID,
			&ri.Operation,
			&ri.Parameters,
			&ri.Path,
			&ri.Size,
			&ri.MimeType,
			&ri.Format,
			&ri.Status,
			&ri.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rendered image: %w", err)
		}
		rendered = append(rendered, ri)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rendered images: %w", err)
	}

	return rendered, nil
}

func (r *ImagesRepository) GetRenderedImageByOperation(ctx context.Context, imageID, operation string) (*domain.RenderedImage, error) {
	query := `
		SELECT id, image_id, operation, parameters, path,
		       size, mime_type, format, status, created_at
		FROM rendered_images
		WHERE image_id = $1 AND operation = $2
		LIMIT 1
	`

	row, err := r.db.QueryRowWithRetry(ctx, r.retries, query, imageID, operation)
	if err != nil {
		return nil, fmt.Errorf("failed to query rendered image: %w", err)
	}

	var rendered domain.RenderedImage
	err = row.Scan(
		&rendered.ID,
		&rendered.ImageID,
		&rendered.Operation,
		&rendered.Parameters,
		&rendered.Path,
		&rendered.Size,
		&rendered.MimeType,
		&rendered.Format,
		&rendered.Status,
		&rendered.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan rendered image: %w", err)
	}

	return &rendered, nil
}

func (r *ImagesRepository) DeleteRenderedImages(ctx context.Context, imageID string) error {
	query := `DELETE FROM rendered_images WHERE image_id = $1`

	if _, err := r.db.ExecWithRetry(ctx, r.retries, query, imageID); err != nil {
		return fmt.Errorf("failed to delete rendered images: %w", err)
	}

	return nil
}

func (r *ImagesRepository) List(ctx context.Context, limit, offset int) ([]domain.Image, error) {
	query := `
		SELECT id, original_filename, original_size, mime_type,
		       status, original_path, bucket, created_at, updated_at
		FROM images
		WHERE status != $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.QueryWithRetry(ctx, r.retries, query, domain.StatusDeleted, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query images: %w", err)
	}
	defer rows.Close()

	var images []domain.Image
	for rows.Next() {
		var img domain.Image
		err := rows.Scan(
			&img.ID,
			&img.OriginalFilename,
			&img.OriginalSize,
			&img.MimeType,
			&img.Status,
			&img.OriginalPath,
			&img.Bucket,
			&img.CreatedAt,
			&img.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan image: %w", err)
		}
		images = append(images, img)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating images: %w", err)
	}

	return images, nil
}
