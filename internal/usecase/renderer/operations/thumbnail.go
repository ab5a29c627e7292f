package operations

import (
	"context"
	"fmt"
	"image"

	"github.com/vladmycode/imager/internal/domain"

	"github.com/disintegration/imaging"
)

type Thumbnailer struct{}

func NewThumbnailer() *Thumbnailer {
	return &Thumbnailer{}
}

// Process scales the image down to fit inside a size x size box,
// keeping the aspect ratio. Images already smaller are left alone.
func (t *Thumbnailer) Process(ctx context.Context, img image.Image, params map[string]interface{}) (image.Image, error) {
	size := paramInt(params, domain.ParamSize, domain.DefaultThumbnailSize)
	if size <= 0 {
		return nil, fmt.Errorf("size must be a positive number, got %d", size)
	}

	bounds := img.Bounds()
	if bounds.Dx() <= size && bounds.Dy() <= size {
		return imaging.Clone(img), nil
	}

	return imaging.Fit(img, size, size, imaging.Lanczos), nil
}
