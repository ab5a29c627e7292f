package compose

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// ParseColor parses a border color from its configuration form: either
// a hex string like "#FFFFFF" or a "r,g,b" / "r,g,b,a" tuple with
// components in 0..255. Alpha defaults to fully opaque when omitted.
func ParseColor(s string) (color.NRGBA, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return color.NRGBA{}, fmt.Errorf("%w: empty color", ErrInvalidInput)
	}

	if strings.HasPrefix(s, "#") {
		c, err := colorful.Hex(s)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("%w: color %q: %v", ErrInvalidInput, s, err)
		}
		r, g, b := c.RGB255()
		return color.NRGBA{R: r, G: g, B: b, A: 255}, nil
	}

	parts := strings.Split(strings.ReplaceAll(s, " ", ""), ",")
	if len(parts) != 3 && len(parts) != 4 {
		return color.NRGBA{}, fmt.Errorf("%w: color %q must have 3 or 4 components", ErrInvalidInput, s)
	}

	vals := make([]uint8, 0, 4)
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 || n > 255 {
			return color.NRGBA{}, fmt.Errorf("%w: color component %q", ErrInvalidInput, p)
		}
		vals = append(vals, uint8(n))
	}

	c := color.NRGBA{R: vals[0], G: vals[1], B: vals[2], A: 255}
	if len(vals) == 4 {
		c.A = vals[3]
	}
	return c, nil
}
