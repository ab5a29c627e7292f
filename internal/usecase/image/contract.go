package image

import (
	"context"

	"github.com/vladmycode/imager/internal/domain"

	"github.com/wb-go/wbf/retry"
)

type ImagesRepository interface {
	Save(ctx context.Context, img *domain.Image) error
	GetByID(ctx context.Context, id string) (*domain.Image, error)
	UpdateStatus(ctx context.Context, id string, status domain.ImageStatus) error
	GetRenderedImages(ctx context.Context, imageID string) ([]domain.RenderedImage, error)
	GetRenderedImageByOperation(ctx context.Context, imageID, operation string) (*domain.RenderedImage, error)
	DeleteRenderedImages(ctx context.Context, imageID string) error
	List(ctx context.Context, limit, offset int) ([]domain.Image, error)
}

type FileRepository interface {
	SaveOriginal(ctx context.Context, data []byte, filename, contentType string) (string, error)
	GetObject(ctx context.Context, objectPath string) ([]byte, string, error)
	DeleteObject(ctx context.Context, objectPath string) error
	DeleteObjectsWithPrefix(ctx context.Context, prefix string) error
}

type TaskProducer interface {
	Send(ctx context.Context, strategy retry.Strategy, key, value []byte) error
}
