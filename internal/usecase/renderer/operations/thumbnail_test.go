package operations

import (
	"context"
	"image/color"
	"testing"

	"github.com/vladmycode/imager/internal/domain"

	"github.com/disintegration/imaging"
)

func TestThumbnailer_FitsWithinBox(t *testing.T) {
	th := NewThumbnailer()

	tests := []struct {
		name         string
		srcW, srcH   int
		size         int
		wantW, wantH int
	}{
		{"landscape", 800, 400, 200, 200, 100},
		{"portrait", 400, 800, 200, 100, 200},
		{"square", 600, 600, 150, 150, 150},
		{"already smaller", 100, 50, 200, 100, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := imaging.New(tt.srcW, tt.srcH, color.NRGBA{B: 200, A: 255})

			out, err := th.Process(context.Background(), src, map[string]interface{}{
				domain.ParamSize: float64(tt.size),
			})
			if err != nil {
				t.Fatalf("Process() error = %v", err)
			}

			if out.Bounds().Dx() != tt.wantW || out.Bounds().Dy() != tt.wantH {
				t.Errorf("thumbnail = %dx%d, want %dx%d",
					out.Bounds().Dx(), out.Bounds().Dy(), tt.wantW, tt.wantH)
			}
		})
	}
}

func TestThumbnailer_DefaultSize(t *testing.T) {
	th := NewThumbnailer()

	src := imaging.New(1000, 1000, color.NRGBA{A: 255})

	out, err := th.Process(context.Background(), src, map[string]interface{}{})
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	if out.Bounds().Dx() != domain.DefaultThumbnailSize {
		t.Errorf("width = %d, want %d", out.Bounds().Dx(), domain.DefaultThumbnailSize)
	}
}

func TestThumbnailer_InvalidSize(t *testing.T) {
	th := NewThumbnailer()

	src := imaging.New(10, 10, color.NRGBA{A: 255})

	if _, err := th.Process(context.Background(), src, map[string]interface{}{
		domain.ParamSize: float64(-1),
	}); err == nil {
		t.Fatal("Process() expected error for negative size")
	}
}
