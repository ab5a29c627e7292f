package compose

import (
	"fmt"
	"image/color"
)

// Default configuration values, matching the service-wide defaults in
// the domain package.
const (
	DefaultBlurRadius  = 75
	DefaultBorderWidth = 1
)

// Config holds the composition settings. It is a plain value: construct
// it once, validate it through NewImager and share it freely across
// goroutines.
type Config struct {
	// BackgroundBlur enables the blurred-background layer. When false
	// the background is a solid black fill.
	BackgroundBlur bool
	// BackgroundBlurRadius is the Gaussian blur radius in pixels.
	BackgroundBlurRadius int
	// ForegroundBorder enables a border around the foreground.
	ForegroundBorder bool
	// ForegroundBorderWidth is the border thickness per side in pixels.
	ForegroundBorderWidth int
	// ForegroundBorderColor fills the border. Its alpha channel is
	// respected when compositing.
	ForegroundBorderColor color.NRGBA
	// ForceFit selects CropToFill when true, PadToFit when false.
	ForceFit bool
}

// DefaultConfig mirrors the documented option defaults: blurred
// background with radius 75, a 1px opaque white border, crop to fill.
func DefaultConfig() Config {
	return Config{
		BackgroundBlur:        true,
		BackgroundBlurRadius:  DefaultBlurRadius,
		ForegroundBorder:      true,
		ForegroundBorderWidth: DefaultBorderWidth,
		ForegroundBorderColor: color.NRGBA{R: 255, G: 255, B: 255, A: 255},
		ForceFit:              true,
	}
}

// Validate rejects negative numeric fields. Zero radius and zero border
// width are valid no-ops.
func (c Config) Validate() error {
	if c.BackgroundBlurRadius < 0 {
		return fmt.Errorf("%w: background blur radius %d", ErrInvalidInput, c.BackgroundBlurRadius)
	}
	if c.ForegroundBorderWidth < 0 {
		return fmt.Errorf("%w: foreground border width %d", ErrInvalidInput, c.ForegroundBorderWidth)
	}
	return nil
}

// Policy maps the force-fit flag to a fit policy.
func (c Config) Policy() FitPolicy {
	if c.ForceFit {
		return CropToFill
	}
	return PadToFit
}

// Translucent reports whether the configured border introduces alpha
// into the output. Callers encoding the result can use this to pick a
// format that keeps the alpha channel.
func (c Config) Translucent() bool {
	return c.ForegroundBorder && c.ForegroundBorderWidth > 0 && c.ForegroundBorderColor.A < 255
}
