// Package compose implements the image composition engine: it fits an
// arbitrarily sized source image onto a fixed-size canvas, rendering a
// blurred (or solid) background layer behind a resized, optionally
// bordered foreground.
package compose

import (
	"fmt"
	"image"
	"math"
)

// FitPolicy controls how mismatched aspect ratios are resolved.
type FitPolicy int

const (
	// CropToFill scales the source to cover the whole canvas and crops
	// the overflow.
	CropToFill FitPolicy = iota
	// PadToFit scales the source to fit inside the canvas, leaving the
	// letterbox gaps to the background layer.
	PadToFit
)

func (p FitPolicy) String() string {
	switch p {
	case CropToFill:
		return "crop-to-fill"
	case PadToFit:
		return "pad-to-fit"
	default:
		return fmt.Sprintf("fit-policy(%d)", int(p))
	}
}

// Dimensions is a width/height pair in pixels.
type Dimensions struct {
	Width  int
	Height int
}

func (d Dimensions) Valid() bool {
	return d.Width > 0 && d.Height > 0
}

func (d Dimensions) Landscape() bool {
	return d.Width > d.Height
}

func (d Dimensions) Portrait() bool {
	return d.Width < d.Height
}

func (d Dimensions) Square() bool {
	return d.Width == d.Height
}

func (d Dimensions) String() string {
	return fmt.Sprintf("%dx%d", d.Width, d.Height)
}

// PlacementPlan describes how a scaled source is placed on the canvas.
// It is computed fresh per call and never persisted.
type PlacementPlan struct {
	// ScaledSize is the size the source must be resized to.
	ScaledSize Dimensions
	// Offset is the top-left position of the foreground on the canvas.
	Offset image.Point
	// Crop is the centered canvas-sized rectangle to cut out of the
	// scaled image. Nil for PadToFit.
	Crop *image.Rectangle
}

// Plan computes the scaled size, placement offset and optional crop
// rectangle for fitting source onto canvas under the given policy.
func Plan(source, canvas Dimensions, policy FitPolicy) (PlacementPlan, error) {
	if !source.Valid() {
		return PlacementPlan{}, fmt.Errorf("%w: source dimensions %s", ErrInvalidInput, source)
	}
	if !canvas.Valid() {
		return PlacementPlan{}, fmt.Errorf("%w: canvas dimensions %s", ErrInvalidInput, canvas)
	}

	switch policy {
	case PadToFit:
		scaled := fitSize(source, canvas)
		offset := image.Pt((canvas.Width-scaled.Width)/2, (canvas.Height-scaled.Height)/2)
		return PlacementPlan{ScaledSize: scaled, Offset: offset}, nil
	case CropToFill:
		scaled := fillSize(source, canvas)
		crop := centeredCrop(scaled, canvas)
		return PlacementPlan{ScaledSize: scaled, Crop: &crop}, nil
	default:
		return PlacementPlan{}, fmt.Errorf("%w: unknown fit policy %v", ErrInvalidInput, policy)
	}
}

// fitSize scales source by min(canvas.w/source.w, canvas.h/source.h).
// The tighter dimension is pinned exactly to the canvas so rounding can
// never push the result outside it.
func fitSize(source, canvas Dimensions) Dimensions {
	rw := float64(canvas.Width) / float64(source.Width)
	rh := float64(canvas.Height) / float64(source.Height)

	if rw <= rh {
		h := roundSize(float64(source.Height) * rw)
		if h > canvas.Height {
			h = canvas.Height
		}
		return Dimensions{Width: canvas.Width, Height: h}
	}
	w := roundSize(float64(source.Width) * rh)
	if w > canvas.Width {
		w = canvas.Width
	}
	return Dimensions{Width: w, Height: canvas.Height}
}

// fillSize scales source by max(canvas.w/source.w, canvas.h/source.h).
// The tighter dimension is pinned to the canvas; the other one can only
// overflow, never undershoot.
func fillSize(source, canvas Dimensions) Dimensions {
	rw := float64(canvas.Width) / float64(source.Width)
	rh := float64(canvas.Height) / float64(source.Height)

	if rw >= rh {
		h := roundSize(float64(source.Height) * rw)
		if h < canvas.Height {
			h = canvas.Height
		}
		return Dimensions{Width: canvas.Width, Height: h}
	}
	w := roundSize(float64(source.Width) * rh)
	if w < canvas.Width {
		w = canvas.Width
	}
	return Dimensions{Width: w, Height: canvas.Height}
}

// centeredCrop returns a canvas-sized rectangle centered in scaled,
// clamped into the scaled bounds.
func centeredCrop(scaled, canvas Dimensions) image.Rectangle {
	x := (scaled.Width - canvas.Width) / 2
	y := (scaled.Height - canvas.Height) / 2
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	if x+canvas.Width > scaled.Width {
		x = scaled.Width - canvas.Width
	}
	if y+canvas.Height > scaled.Height {
		y = scaled.Height - canvas.Height
	}
	return image.Rect(x, y, x+canvas.Width, y+canvas.Height)
}

// roundSize rounds to the nearest integer, never below 1.
func roundSize(v float64) int {
	n := int(math.Round(v))
	if n < 1 {
		n = 1
	}
	return n
}
