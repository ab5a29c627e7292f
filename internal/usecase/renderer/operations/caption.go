package operations

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/vladmycode/imager/internal/compose"
	"github.com/vladmycode/imager/internal/domain"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"
)

const captionMargin = 20

type Captioner struct {
	font *truetype.Font
}

func NewCaptioner() *Captioner {
	f, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return &Captioner{}
	}
	return &Captioner{font: f}
}

// Process draws a text caption over the image at the requested position.
func (c *Captioner) Process(ctx context.Context, img image.Image, params map[string]interface{}) (image.Image, error) {
	text := paramString(params, domain.ParamText, "")
	if text == "" {
		return nil, fmt.Errorf("caption text is required")
	}

	position := paramString(params, domain.ParamPosition, string(domain.CaptionBottomRight))

	opacity, ok := params[domain.ParamOpacity].(float64)
	if !ok || opacity <= 0 || opacity > 1 {
		opacity = 1
	}

	fontSize := float64(paramInt(params, domain.ParamFontSize, 36))
	if fontSize <= 0 {
		fontSize = 36
	}

	col := c.fontColor(params, opacity)

	return c.drawCaption(img, text, position, fontSize, col)
}

func (c *Captioner) fontColor(params map[string]interface{}, opacity float64) color.NRGBA {
	colorStr := paramString(params, domain.ParamFontColor, "255,255,255")

	col, err := compose.ParseColor(colorStr)
	if err != nil {
		col = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	}

	col.A = uint8(float64(col.A) * opacity)
	return col
}

func (c *Captioner) drawCaption(img image.Image, text, position string, fontSize float64, col color.NRGBA) (image.Image, error) {
	if c.font == nil {
		f, err := truetype.Parse(goregular.TTF)
		if err != nil {
			return nil, fmt.Errorf("failed to load font: %w", err)
		}
		c.font = f
	}

	bounds := img.Bounds()
	result := image.NewNRGBA(bounds)
	draw.Draw(result, bounds, img, bounds.Min, draw.Src)

	fc := freetype.NewContext()
	fc.SetDPI(72)
	fc.SetFont(c.font)
	fc.SetFontSize(fontSize)
	fc.SetClip(result.Bounds())
	fc.SetDst(result)
	fc.SetSrc(image.NewUniform(col))
	fc.SetHinting(font.HintingFull)

	// Rough metrics, good enough for placement.
	textWidth := int(float64(len(text)) * fontSize * 0.6)
	textHeight := int(fontSize * 1.2)

	var pt fixed.Point26_6

	switch domain.CaptionPosition(position) {
	case domain.CaptionTopLeft:
		pt = freetype.Pt(captionMargin, captionMargin+int(fontSize))
	case domain.CaptionTopRight:
		pt = freetype.Pt(bounds.Dx()-textWidth-captionMargin, captionMargin+int(fontSize))
	case domain.CaptionTopCenter:
		pt = freetype.Pt((bounds.Dx()-textWidth)/2, captionMargin+int(fontSize))
	case domain.CaptionBottomLeft:
		pt = freetype.Pt(captionMargin, bounds.Dy()-captionMargin)
	case domain.CaptionBottomRight:
		pt = freetype.Pt(bounds.Dx()-textWidth-captionMargin, bounds.Dy()-captionMargin)
	case domain.CaptionBottomCenter:
		pt = freetype.Pt((bounds.Dx()-textWidth)/2, bounds.Dy()-captionMargin)
	case domain.CaptionCenter:
		pt = freetype.Pt((bounds.Dx()-textWidth)/2, (bounds.Dy()+textHeight)/2)
	default:
		pt = freetype.Pt(bounds.Dx()-textWidth-captionMargin, bounds.Dy()-captionMargin)
	}

	if _, err := fc.DrawString(text, pt); err != nil {
		return nil, fmt.Errorf("failed to draw caption text: %w", err)
	}

	return result, nil
}
