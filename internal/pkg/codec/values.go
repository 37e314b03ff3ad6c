package codec

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"

	"github.com/ds124wfegd/dynimage/internal/entity"
)

func malformed(key, reason string) error {
	return fmt.Errorf("%w: %s: %s", entity.ErrMalformedParameter, key, reason)
}

// FormatColor renders RRGGBB for opaque colours and RRGGBBAA otherwise.
func FormatColor(c color.NRGBA) string {
	if c.A == 0xff {
		return fmt.Sprintf("%02x%02x%02x", c.R, c.G, c.B)
	}
	return fmt.Sprintf("%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

func ParseColor(s string) (color.NRGBA, error) {
	s = strings.TrimPrefix(s, "#")

	var r, g, b, a uint8 = 0, 0, 0, 0xff

	switch len(s) {
	case 6:
		val, err := strconv.ParseUint(s, 16, 32)
		if err != nil {
			return color.NRGBA{}, err
		}
		r = uint8(val >> 16)
		g = uint8(val >> 8)
		b = uint8(val)
	case 8:
		val, err := strconv.ParseUint(s, 16, 32)
		if err != nil {
			return color.NRGBA{}, err
		}
		r = uint8(val >> 24)
		g = uint8(val >> 16)
		b = uint8(val >> 8)
		a = uint8(val)
	default:
		return color.NRGBA{}, fmt.Errorf("invalid hex color length")
	}
	return color.NRGBA{R: r, G: g, B: b, A: a}, nil
}

// FormatFont renders "Family;Size[;Style]".
func FormatFont(f entity.FontSpec) string {
	s := f.Family + ";" + strconv.FormatFloat(f.Size, 'f', -1, 64)
	if f.Style != entity.StyleRegular {
		s += ";" + f.Style.String()
	}
	return s
}

func ParseFont(s string) (entity.FontSpec, error) {
	parts := strings.Split(s, ";")
	if len(parts) < 2 || len(parts) > 3 || parts[0] == "" {
		return entity.FontSpec{}, fmt.Errorf("want Family;Size[;Style]")
	}
	size, err := strconv.ParseFloat(parts[1], 64)
	if err != nil || size <= 0 || math.IsInf(size, 0) {
		return entity.FontSpec{}, fmt.Errorf("invalid font size %q", parts[1])
	}
	f := entity.FontSpec{Family: parts[0], Size: size}
	if len(parts) == 3 {
		if f.Style, err = entity.ParseFontStyle(parts[2]); err != nil {
			return entity.FontSpec{}, err
		}
	}
	return f, nil
}
