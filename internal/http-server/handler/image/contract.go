package image

import (
	"context"

	"github.com/vladmycode/imager/internal/domain"
)

type imageUsecase interface {
	UploadImage(ctx context.Context, data []byte, filename string, operations []domain.OperationParams) (*domain.Image, error)
	GetImage(ctx context.Context, id string) (*domain.Image, []domain.RenderedImage, error)
	GetRenderedFile(ctx context.Context, id, operation string) ([]byte, string, error)
	GetOriginalFile(ctx context.Context, id string) ([]byte, string, error)
	GetStatus(ctx context.Context, id string) (*domain.Image, error)
	ListImages(ctx context.Context, limit, offset int) ([]domain.Image, error)
	DeleteImage(ctx context.Context, id string) error
}
