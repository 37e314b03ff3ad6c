package stage

import (
	"fmt"
	"image/color"
	"strconv"

	"github.com/ds124wfegd/dynimage/internal/entity"
	"github.com/ds124wfegd/dynimage/internal/pkg/codec"
)

func floatParam(p entity.Params, key string, def, lo, hi float64) (float64, error) {
	v, ok := p.Get(key)
	if !ok {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < lo || f > hi {
		return 0, fmt.Errorf("%w: %s: want a number in [%v, %v]", entity.ErrMalformedParameter, key, lo, hi)
	}
	return f, nil
}

func colorParam(p entity.Params, key string, def color.NRGBA) (color.NRGBA, error) {
	v, ok := p.Get(key)
	if !ok {
		return def, nil
	}
	c, err := codec.ParseColor(v)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("%w: %s: %v", entity.ErrMalformedParameter, key, err)
	}
	return c, nil
}

func checkSize(w, h int) error {
	if w <= 0 || h <= 0 || w > MaxDimension || h > MaxDimension {
		return fmt.Errorf("%w: size %dx%d out of range", entity.ErrMalformedParameter, w, h)
	}
	return nil
}
