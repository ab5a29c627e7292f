package compose

import (
	"fmt"
	"image"
	"image/color"

	"github.com/anthonynsimon/bild/blur"
	"github.com/disintegration/imaging"
)

// backgroundFill is the solid background used when blur is disabled.
var backgroundFill = color.NRGBA{R: 0, G: 0, B: 0, A: 255}

// Imager composes source images onto a fixed-size canvas. It is
// stateless apart from its immutable configuration, so a single Imager
// is safe for concurrent use.
type Imager struct {
	canvas Dimensions
	cfg    Config
}

// NewImager validates the canvas size and configuration eagerly and
// returns a ready-to-use compositor.
func NewImager(canvas Dimensions, cfg Config) (*Imager, error) {
	if !canvas.Valid() {
		return nil, fmt.Errorf("%w: canvas dimensions %s", ErrInvalidInput, canvas)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Imager{canvas: canvas, cfg: cfg}, nil
}

// Canvas returns the output dimensions.
func (im *Imager) Canvas() Dimensions {
	return im.canvas
}

// Process composes src onto the canvas: background layer first, then
// the planned, optionally bordered foreground, blended with the
// foreground's own alpha. The source is never mutated; the result
// always has exactly the canvas dimensions.
//
// The result is composed in NRGBA. It is fully opaque unless the source
// or a configured color carries transparency; encoders are free to drop
// the alpha channel in the opaque case.
func (im *Imager) Process(src image.Image) (image.Image, error) {
	if src == nil {
		return nil, fmt.Errorf("%w: nil source image", ErrInvalidInput)
	}

	source := Dimensions{Width: src.Bounds().Dx(), Height: src.Bounds().Dy()}
	if !source.Valid() {
		return nil, fmt.Errorf("%w: source dimensions %s", ErrInvalidInput, source)
	}

	norm, err := normalize(src)
	if err != nil {
		return nil, err
	}

	background, err := im.background(norm, source)
	if err != nil {
		return nil, err
	}

	foreground, pos, err := im.foreground(norm, source)
	if err != nil {
		return nil, err
	}

	out := imaging.Overlay(background, foreground, pos, 1.0)

	if got := (Dimensions{Width: out.Bounds().Dx(), Height: out.Bounds().Dy()}); got != im.canvas {
		return nil, fmt.Errorf("%w: output is %s, want %s", ErrComposition, got, im.canvas)
	}
	return out, nil
}

// background renders the canvas-sized layer behind the foreground: the
// source scaled with CropToFill and blurred, or a solid fill when blur
// is disabled. The background always fills, regardless of the
// foreground's fit policy.
func (im *Imager) background(src *image.NRGBA, source Dimensions) (*image.NRGBA, error) {
	if !im.cfg.BackgroundBlur {
		return imaging.New(im.canvas.Width, im.canvas.Height, backgroundFill), nil
	}

	plan, err := Plan(source, im.canvas, CropToFill)
	if err != nil {
		return nil, err
	}

	bg := imaging.Resize(src, plan.ScaledSize.Width, plan.ScaledSize.Height, imaging.Lanczos)
	if plan.Crop != nil {
		bg = imaging.Crop(bg, *plan.Crop)
	}
	if im.cfg.BackgroundBlurRadius > 0 {
		bg = imaging.Clone(blur.Gaussian(bg, float64(im.cfg.BackgroundBlurRadius)))
	}
	return bg, nil
}

// foreground scales (and for CropToFill, crops) the source according to
// the configured policy, applies the optional border and returns the
// layer together with its centered paste position. A bordered layer
// larger than the canvas keeps its center and is clipped by the
// compositing step.
func (im *Imager) foreground(src *image.NRGBA, source Dimensions) (*image.NRGBA, image.Point, error) {
	plan, err := Plan(source, im.canvas, im.cfg.Policy())
	if err != nil {
		return nil, image.Point{}, err
	}

	fg := imaging.Resize(src, plan.ScaledSize.Width, plan.ScaledSize.Height, imaging.Lanczos)
	if plan.Crop != nil {
		fg = imaging.Crop(fg, *plan.Crop)
	}
	fg = im.applyBorder(fg)

	pos := image.Pt(
		(im.canvas.Width-fg.Bounds().Dx())/2,
		(im.canvas.Height-fg.Bounds().Dy())/2,
	)
	return fg, pos, nil
}

// applyBorder expands the foreground by the border width on each side,
// filling the margin with the configured color. The border becomes part
// of the foreground layer, so border pixels composite under the same
// alpha rules as the image itself.
func (im *Imager) applyBorder(fg *image.NRGBA) *image.NRGBA {
	w := im.cfg.ForegroundBorderWidth
	if !im.cfg.ForegroundBorder || w <= 0 {
		return fg
	}

	bordered := imaging.New(fg.Bounds().Dx()+2*w, fg.Bounds().Dy()+2*w, im.cfg.ForegroundBorderColor)
	return imaging.Paste(bordered, fg, image.Pt(w, w))
}

// normalize converts the source into NRGBA working space.
func normalize(src image.Image) (*image.NRGBA, error) {
	if src.ColorModel() == nil {
		return nil, fmt.Errorf("%w: source has no color model", ErrUnsupportedColorMode)
	}
	return imaging.Clone(src), nil
}
