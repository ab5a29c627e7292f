package compose

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
)

func uniform(w, h int, c color.NRGBA) *image.NRGBA {
	return imaging.New(w, h, c)
}

func within(got, want uint8, tol int) bool {
	d := int(got) - int(want)
	if d < 0 {
		d = -d
	}
	return d <= tol
}

func wantPixel(t *testing.T, img image.Image, x, y int, want color.NRGBA, tol int) {
	t.Helper()
	r, g, b, a := img.At(x, y).RGBA()
	r8, g8, b8, a8 := uint8(r>>8), uint8(g>>8), uint8(b>>8), uint8(a>>8)
	if !within(r8, want.R, tol) || !within(g8, want.G, tol) || !within(b8, want.B, tol) || !within(a8, want.A, tol) {
		t.Errorf("pixel (%d,%d): got (%d,%d,%d,%d), want (%d,%d,%d,%d) ±%d",
			x, y, r8, g8, b8, a8, want.R, want.G, want.B, want.A, tol)
	}
}

var (
	red   = color.NRGBA{R: 255, A: 255}
	green = color.NRGBA{G: 255, A: 255}
	black = color.NRGBA{A: 255}
)

func TestNewImager_Validation(t *testing.T) {
	tests := []struct {
		name   string
		canvas Dimensions
		cfg    Config
		wantOK bool
	}{
		{"defaults", Dimensions{700, 365}, DefaultConfig(), true},
		{"zero blur radius is a no-op", Dimensions{700, 365}, Config{BackgroundBlur: true}, true},
		{"zero canvas width", Dimensions{0, 365}, DefaultConfig(), false},
		{"negative canvas height", Dimensions{700, -1}, DefaultConfig(), false},
		{"negative blur radius", Dimensions{700, 365}, Config{BackgroundBlurRadius: -1}, false},
		{"negative border width", Dimensions{700, 365}, Config{ForegroundBorderWidth: -2}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewImager(tt.canvas, tt.cfg)
			if tt.wantOK && err != nil {
				t.Errorf("NewImager failed: %v", err)
			}
			if !tt.wantOK && !errors.Is(err, ErrInvalidInput) {
				t.Errorf("got %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestProcess_OutputDimensions(t *testing.T) {
	canvases := []Dimensions{{200, 100}, {100, 200}, {128, 128}}
	sources := []Dimensions{{50, 50}, {300, 120}, {40, 400}, {1, 1}}

	cfgs := map[string]Config{
		"defaults":      DefaultConfig(),
		"pad, no blur":  {ForceFit: false, BackgroundBlur: false},
		"pad, blurred":  {ForceFit: false, BackgroundBlur: true, BackgroundBlurRadius: 4},
		"crop, border":  {ForceFit: true, ForegroundBorder: true, ForegroundBorderWidth: 3, ForegroundBorderColor: green},
		"wide border":   {ForceFit: false, ForegroundBorder: true, ForegroundBorderWidth: 40, ForegroundBorderColor: green},
		"radius capped": {BackgroundBlur: true, BackgroundBlurRadius: 10, ForceFit: true},
	}

	for name, cfg := range cfgs {
		t.Run(name, func(t *testing.T) {
			for _, cv := range canvases {
				im, err := NewImager(cv, cfg)
				if err != nil {
					t.Fatalf("NewImager failed: %v", err)
				}
				for _, src := range sources {
					out, err := im.Process(uniform(src.Width, src.Height, red))
					if err != nil {
						t.Fatalf("Process(%s -> %s) failed: %v", src, cv, err)
					}
					if out.Bounds().Dx() != cv.Width || out.Bounds().Dy() != cv.Height {
						t.Errorf("Process(%s -> %s): output %dx%d",
							src, cv, out.Bounds().Dx(), out.Bounds().Dy())
					}
				}
			}
		})
	}
}

func TestProcess_PadToFitPlacement(t *testing.T) {
	im, err := NewImager(Dimensions{200, 100}, Config{ForceFit: false, BackgroundBlur: false})
	if err != nil {
		t.Fatalf("NewImager failed: %v", err)
	}

	// 50x50 source scales to 100x100, centered at x=50..150 with black
	// letterbox bands on both sides.
	out, err := im.Process(uniform(50, 50, red))
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	wantPixel(t, out, 100, 50, red, 2)
	wantPixel(t, out, 25, 50, black, 0)
	wantPixel(t, out, 175, 50, black, 0)
}

func TestProcess_CropToFillCoversCanvas(t *testing.T) {
	im, err := NewImager(Dimensions{200, 100}, Config{ForceFit: true, BackgroundBlur: false})
	if err != nil {
		t.Fatalf("NewImager failed: %v", err)
	}

	out, err := im.Process(uniform(30, 90, red))
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	// No background may show through.
	for _, p := range []image.Point{{0, 0}, {199, 0}, {0, 99}, {199, 99}, {100, 50}} {
		wantPixel(t, out, p.X, p.Y, red, 2)
	}
}

func TestProcess_BlurredBackgroundFillsLetterbox(t *testing.T) {
	im, err := NewImager(Dimensions{200, 100}, Config{
		ForceFit:             false,
		BackgroundBlur:       true,
		BackgroundBlurRadius: 5,
	})
	if err != nil {
		t.Fatalf("NewImager failed: %v", err)
	}

	// Blurring a uniform source keeps its color, so the letterbox bands
	// must be (approximately) source colored rather than black.
	out, err := im.Process(uniform(50, 50, red))
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	wantPixel(t, out, 10, 50, red, 6)
	wantPixel(t, out, 190, 50, red, 6)
}

func TestProcess_Border(t *testing.T) {
	im, err := NewImager(Dimensions{200, 100}, Config{
		ForceFit:              false,
		BackgroundBlur:        false,
		ForegroundBorder:      true,
		ForegroundBorderWidth: 5,
		ForegroundBorderColor: green,
	})
	if err != nil {
		t.Fatalf("NewImager failed: %v", err)
	}

	// Foreground 100x100 plus border is 110x110: taller than the
	// canvas, so the top and bottom border strips clip away while the
	// left and right ones stay visible at x=45..50 and x=150..155.
	out, err := im.Process(uniform(50, 50, red))
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	wantPixel(t, out, 47, 50, green, 2)
	wantPixel(t, out, 152, 50, green, 2)
	wantPixel(t, out, 100, 50, red, 2)
	wantPixel(t, out, 20, 50, black, 0)
}

func TestApplyBorder_Dimensions(t *testing.T) {
	tests := []struct {
		name  string
		cfg   Config
		wantW int
		wantH int
	}{
		{"width 1", Config{ForegroundBorder: true, ForegroundBorderWidth: 1, ForegroundBorderColor: green}, 42, 32},
		{"width 15", Config{ForegroundBorder: true, ForegroundBorderWidth: 15, ForegroundBorderColor: green}, 70, 60},
		{"disabled", Config{ForegroundBorder: false, ForegroundBorderWidth: 10}, 40, 30},
		{"zero width", Config{ForegroundBorder: true, ForegroundBorderWidth: 0}, 40, 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			im, err := NewImager(Dimensions{700, 365}, tt.cfg)
			if err != nil {
				t.Fatalf("NewImager failed: %v", err)
			}
			bordered := im.applyBorder(uniform(40, 30, red))
			if bordered.Bounds().Dx() != tt.wantW || bordered.Bounds().Dy() != tt.wantH {
				t.Errorf("bordered size: got %dx%d, want %dx%d",
					bordered.Bounds().Dx(), bordered.Bounds().Dy(), tt.wantW, tt.wantH)
			}
		})
	}
}

func TestProcess_TranslucentBorder(t *testing.T) {
	im, err := NewImager(Dimensions{200, 100}, Config{
		ForceFit:              false,
		BackgroundBlur:        false,
		ForegroundBorder:      true,
		ForegroundBorderWidth: 5,
		ForegroundBorderColor: color.NRGBA{B: 255, A: 128},
	})
	if err != nil {
		t.Fatalf("NewImager failed: %v", err)
	}

	out, err := im.Process(uniform(50, 50, red))
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	// Half-transparent blue over the black background reads as roughly
	// half-intensity blue.
	wantPixel(t, out, 47, 50, color.NRGBA{B: 128, A: 255}, 6)
}

func TestProcess_BannerScenario(t *testing.T) {
	// 200x150 source on a 1920x1080 canvas without force-fit: the
	// foreground scales to 1440x1080 with 240px margins; a 15px
	// translucent white border extends to 1470x1110 and clips top and
	// bottom.
	im, err := NewImager(Dimensions{1920, 1080}, Config{
		ForceFit:              false,
		BackgroundBlur:        false,
		ForegroundBorder:      true,
		ForegroundBorderWidth: 15,
		ForegroundBorderColor: color.NRGBA{R: 255, G: 255, B: 255, A: 35},
	})
	if err != nil {
		t.Fatalf("NewImager failed: %v", err)
	}

	out, err := im.Process(uniform(200, 150, red))
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	if out.Bounds().Dx() != 1920 || out.Bounds().Dy() != 1080 {
		t.Fatalf("output %dx%d, want 1920x1080", out.Bounds().Dx(), out.Bounds().Dy())
	}

	wantPixel(t, out, 960, 540, red, 2)
	// Left border strip sits at x=225..240.
	wantPixel(t, out, 230, 540, color.NRGBA{R: 35, G: 35, B: 35, A: 255}, 4)
	// Margin outside the border is plain background.
	wantPixel(t, out, 100, 540, black, 0)
}

func TestProcess_SourceUnmodified(t *testing.T) {
	src := uniform(60, 40, red)
	src.Set(0, 0, green)

	im, err := NewImager(Dimensions{200, 100}, DefaultConfig())
	if err != nil {
		t.Fatalf("NewImager failed: %v", err)
	}
	if _, err := im.Process(src); err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	wantPixel(t, src, 0, 0, green, 0)
	wantPixel(t, src, 30, 20, red, 0)
}

func TestProcess_InvalidSource(t *testing.T) {
	im, err := NewImager(Dimensions{200, 100}, DefaultConfig())
	if err != nil {
		t.Fatalf("NewImager failed: %v", err)
	}

	if _, err := im.Process(nil); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("nil source: got %v, want ErrInvalidInput", err)
	}

	empty := image.NewNRGBA(image.Rect(0, 0, 0, 0))
	if _, err := im.Process(empty); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("empty source: got %v, want ErrInvalidInput", err)
	}
}
