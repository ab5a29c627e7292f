package operations

import (
	"context"
	"fmt"
	"image"

	"github.com/vladmycode/imager/internal/compose"
	"github.com/vladmycode/imager/internal/config"
	"github.com/vladmycode/imager/internal/domain"
)

// Composer fits a source image onto the configured canvas. Per-task
// parameters override the service defaults.
type Composer struct {
	defaults config.ComposeConfig
}

func NewComposer(defaults config.ComposeConfig) *Composer {
	return &Composer{defaults: defaults}
}

func (c *Composer) Process(ctx context.Context, img image.Image, params map[string]interface{}) (image.Image, error) {
	canvas := compose.Dimensions{
		Width:  paramInt(params, domain.ParamCanvasWidth, c.defaults.CanvasWidth),
		Height: paramInt(params, domain.ParamCanvasHeight, c.defaults.CanvasHeight),
	}

	cfg := compose.Config{
		BackgroundBlur:        paramBool(params, domain.ParamBackgroundBlur, c.defaults.BackgroundBlur),
		BackgroundBlurRadius:  paramInt(params, domain.ParamBlurRadius, c.defaults.BlurRadius),
		ForegroundBorder:      paramBool(params, domain.ParamBorder, c.defaults.Border),
		ForegroundBorderWidth: paramInt(params, domain.ParamBorderWidth, c.defaults.BorderWidth),
		ForceFit:              paramBool(params, domain.ParamForceFit, c.defaults.ForceFit),
	}

	colorStr := paramString(params, domain.ParamBorderColor, c.defaults.BorderColor)
	borderColor, err := compose.ParseColor(colorStr)
	if err != nil {
		return nil, fmt.Errorf("invalid border color %q: %w", colorStr, err)
	}
	cfg.ForegroundBorderColor = borderColor

	imager, err := compose.NewImager(canvas, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to configure composition: %w", err)
	}

	composed, err := imager.Process(img)
	if err != nil {
		return nil, fmt.Errorf("failed to compose image: %w", err)
	}

	return composed, nil
}

// Translucent reports whether the effective border carries alpha, in
// which case the output must be encoded with an alpha channel.
func (c *Composer) Translucent(params map[string]interface{}) bool {
	colorStr := paramString(params, domain.ParamBorderColor, c.defaults.BorderColor)
	borderColor, err := compose.ParseColor(colorStr)
	if err != nil {
		return false
	}

	cfg := compose.Config{
		ForegroundBorder:      paramBool(params, domain.ParamBorder, c.defaults.Border),
		ForegroundBorderWidth: paramInt(params, domain.ParamBorderWidth, c.defaults.BorderWidth),
		ForegroundBorderColor: borderColor,
	}
	return cfg.Translucent()
}

func paramInt(params map[string]interface{}, key string, fallback int) int {
	switch v := params[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case int64:
		return int(v)
	case int32:
		return int(v)
	default:
		return fallback
	}
}

func paramBool(params map[string]interface{}, key string, fallback bool) bool {
	if v, ok := params[key].(bool); ok {
		return v
	}
	return fallback
}

func paramString(params map[string]interface{}, key, fallback string) string {
	if v, ok := params[key].(string); ok && v != "" {
		return v
	}
	return fallback
}
