package operations

import (
	"context"
	"image/color"
	"testing"

	"github.com/vladmycode/imager/internal/domain"

	"github.com/disintegration/imaging"
)

func TestCaptioner_RequiresText(t *testing.T) {
	c := NewCaptioner()

	src := imaging.New(100, 100, color.NRGBA{A: 255})

	if _, err := c.Process(context.Background(), src, map[string]interface{}{}); err == nil {
		t.Fatal("Process() expected error for missing text")
	}
}

func TestCaptioner_KeepsDimensions(t *testing.T) {
	c := NewCaptioner()

	src := imaging.New(400, 300, color.NRGBA{R: 30, G: 30, B: 30, A: 255})

	out, err := c.Process(context.Background(), src, map[string]interface{}{
		domain.ParamText:     "hello",
		domain.ParamPosition: string(domain.CaptionBottomRight),
	})
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	if out.Bounds() != src.Bounds() {
		t.Errorf("bounds = %v, want %v", out.Bounds(), src.Bounds())
	}
}

func TestCaptioner_DrawsPixels(t *testing.T) {
	c := NewCaptioner()

	src := imaging.New(400, 200, color.NRGBA{A: 255})

	out, err := c.Process(context.Background(), src, map[string]interface{}{
		domain.ParamText:     "WWWW",
		domain.ParamPosition: string(domain.CaptionCenter),
		domain.ParamFontSize: float64(48),
	})
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	changed := false
	bounds := out.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y && !changed; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := out.At(x, y).RGBA()
			if r != 0 || g != 0 || b != 0 {
				changed = true
				break
			}
		}
	}

	if !changed {
		t.Error("caption left the image untouched")
	}
}
