package renderer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"sort"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/vladmycode/imager/internal/config"
	"github.com/vladmycode/imager/internal/domain"
	"github.com/vladmycode/imager/internal/usecase/renderer/operations"

	"github.com/disintegration/imaging"
	"github.com/wb-go/wbf/zlog"
)

// Renderer runs the composition pipeline for a task: decode the original,
// apply the requested operations and store each output.
type Renderer struct {
	composer    *operations.Composer
	thumbnailer *operations.Thumbnailer
	captioner   *operations.Captioner
	files       fileRepository
	logger      *zlog.Zerolog
}

func NewRenderer(files fileRepository, defaults config.ComposeConfig, logger *zlog.Zerolog) *Renderer {
	return &Renderer{
		composer:    operations.NewComposer(defaults),
		thumbnailer: operations.NewThumbnailer(),
		captioner:   operations.NewCaptioner(),
		files:       files,
		logger:      logger,
	}
}

// Process applies the task's operations in order, with compose always
// first so thumbnail and caption work on the composed canvas.
func (r *Renderer) Process(ctx context.Context, task *domain.ComposeTask, originalData []byte) (*domain.ComposeResult, []domain.RenderedImage, error) {
	result := &domain.ComposeResult{
		ID:            task.ID,
		ImageID:       task.ImageID,
		Status:        domain.StatusCompleted,
		RenderedPaths: make(map[string]string),
	}

	img, format, err := image.Decode(bytes.NewReader(originalData))
	if err != nil {
		result.Status = domain.StatusFailed
		result.Error = fmt.Sprintf("failed to decode image: %v", err)
		r.logger.Error().Err(err).Str("image_id", task.ImageID).Msg("failed to decode image")
		return result, nil, fmt.Errorf("%w: %v", ErrDecodeFailed, err)
	}

	targetFormat := string(task.Format)
	if targetFormat == "" {
		targetFormat = format
	}

	ops := orderOperations(task.Operations)

	r.logger.Info().
		Str("image_id", task.ImageID).
		Str("original_format", format).
		Str("target_format", targetFormat).
		Int("operations", len(ops)).
		Msg("starting composition")

	var rendered []domain.RenderedImage
	base := img

	for _, operation := range ops {
		output, err := r.applyOperation(ctx, base, operation)
		if err != nil {
			result.Status = domain.StatusFailed
			result.Error = fmt.Sprintf("operation %s failed: %v", operation.Type, err)
			r.logger.Error().
				Err(err).
				Str("image_id", task.ImageID).
				Str("operation", string(operation.Type)).
				Msg("operation failed")
			return result, nil, fmt.Errorf("operation %s failed: %w", operation.Type, err)
		}

		if operation.Type == domain.OpCompose {
			base = output
		}

		encFormat := r.encodeFormat(operation, targetFormat)
		data, err := encodeImage(output, encFormat)
		if err != nil {
			result.Status = domain.StatusFailed
			result.Error = fmt.Sprintf("failed to encode output: %v", err)
			return result, nil, fmt.Errorf("failed to encode %s output: %w", operation.Type, err)
		}

		name := outputName(operation, output, encFormat)
		contentType := contentTypeFor(encFormat)

		path, err := r.files.SaveRendered(ctx, task.ImageID, data, name, contentType)
		if err != nil {
			result.Status = domain.StatusFailed
			result.Error = fmt.Sprintf("failed to save output: %v", err)
			r.logger.Error().
				Err(err).
				Str("image_id", task.ImageID).
				Str("operation", string(operation.Type)).
				Msg("failed to save rendered output")
			return result, nil, fmt.Errorf("failed to save %s output: %w", operation.Type, err)
		}

		paramsJSON, err := json.Marshal(operation.Parameters)
		if err != nil {
			paramsJSON = []byte("{}")
		}

		rendered = append(rendered, domain.RenderedImage{
			ImageID:    task.ImageID,
			Operation:  operation.Type,
			Parameters: string(paramsJSON),
			Path:       path,
			Size:       int64(len(data)),
			MimeType:   contentType,
			Format:     domain.ImageFormat(encFormat),
			Status:     string(domain.StatusCompleted),
		})

		result.RenderedPaths[string(operation.Type)] = path

		r.logger.Debug().
			Str("image_id", task.ImageID).
			Str("operation", string(operation.Type)).
			Str("path", path).
			Int("size", len(data)).
			Msg("operation completed and saved")
	}

	r.logger.Info().
		Str("image_id", task.ImageID).
		Str("status", string(result.Status)).
		Int("rendered", len(rendered)).
		Msg("composition completed")

	return result, rendered, nil
}

func (r *Renderer) applyOperation(ctx context.Context, img image.Image, operation domain.OperationParams) (image.Image, error) {
	switch operation.Type {
	case domain.OpCompose:
		return r.composer.Process(ctx, img, operation.Parameters)
	case domain.OpThumbnail:
		return r.thumbnailer.Process(ctx, img, operation.Parameters)
	case domain.OpCaption:
		return r.captioner.Process(ctx, img, operation.Parameters)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedOperation, operation.Type)
	}
}

// encodeFormat picks the output encoding. A translucent border needs an
// alpha channel, so the compose output switches to png regardless of the
// source format.
func (r *Renderer) encodeFormat(operation domain.OperationParams, target string) string {
	if operation.Type == domain.OpCompose && r.composer.Translucent(operation.Parameters) {
		return "png"
	}

	switch strings.ToLower(target) {
	case "jpg", "jpeg":
		return "jpeg"
	case "png", "gif", "bmp", "tiff":
		return strings.ToLower(target)
	default:
		// webp and anything unknown: no encoder, fall back to jpeg.
		return "jpeg"
	}
}

// orderOperations moves compose to the front so the remaining operations
// work on the composed canvas. The relative order of the rest is kept.
func orderOperations(ops []domain.OperationParams) []domain.OperationParams {
	ordered := make([]domain.OperationParams, len(ops))
	copy(ordered, ops)

	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Type == domain.OpCompose && ordered[j].Type != domain.OpCompose
	})

	return ordered
}

func encodeImage(img image.Image, format string) ([]byte, error) {
	buf := new(bytes.Buffer)

	var err error
	switch format {
	case "jpeg":
		err = imaging.Encode(buf, img, imaging.JPEG, imaging.JPEGQuality(domain.DefaultJPEGQuality))
	case "png":
		err = imaging.Encode(buf, img, imaging.PNG)
	case "gif":
		err = imaging.Encode(buf, img, imaging.GIF)
	case "bmp":
		err = imaging.Encode(buf, img, imaging.BMP)
	case "tiff":
		err = imaging.Encode(buf, img, imaging.TIFF)
	default:
		err = imaging.Encode(buf, img, imaging.JPEG, imaging.JPEGQuality(domain.DefaultJPEGQuality))
	}

	if err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func outputName(operation domain.OperationParams, img image.Image, format string) string {
	ext := format
	if ext == "jpeg" {
		ext = "jpg"
	}

	bounds := img.Bounds()

	switch operation.Type {
	case domain.OpCompose:
		return fmt.Sprintf("compose_%dx%d.%s", bounds.Dx(), bounds.Dy(), ext)
	case domain.OpThumbnail:
		return fmt.Sprintf("thumbnail_%d.%s", max(bounds.Dx(), bounds.Dy()), ext)
	case domain.OpCaption:
		return fmt.Sprintf("caption.%s", ext)
	default:
		return fmt.Sprintf("%s.%s", strings.ToLower(string(operation.Type)), ext)
	}
}

func contentTypeFor(format string) string {
	switch format {
	case "jpeg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	case "bmp":
		return "image/bmp"
	case "tiff":
		return "image/tiff"
	default:
		return "image/jpeg"
	}
}
