// Package codec converts pipeline specs to and from their canonical query string.
package codec

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/ds124wfegd/dynimage/internal/entity"
)

type encoder struct {
	b    strings.Builder
	seen map[string]bool
}

func (e *encoder) add(key, value string) {
	if e.b.Len() > 0 {
		e.b.WriteByte('&')
	}
	e.b.WriteString(url.QueryEscape(key))
	e.b.WriteByte('=')
	e.b.WriteString(url.QueryEscape(value))
	e.seen[key] = true
}

func (e *encoder) params(p entity.Params) error {
	for _, kv := range p {
		if kv.Key == "" {
			return fmt.Errorf("%w: empty parameter key", entity.ErrMalformedParameter)
		}
		if IsReserved(kv.Key) || e.seen[kv.Key] {
			return fmt.Errorf("%w: %q", entity.ErrDuplicateParameterKey, kv.Key)
		}
		e.add(kv.Key, kv.Value)
	}
	return nil
}

// Encode serializes the canonical form of spec. Fields equal to their
// defaults are omitted, so equal specs always produce the same string.
func Encode(spec entity.PipelineSpec) (string, error) {
	if err := spec.Validate(); err != nil {
		return "", err
	}
	s := spec.Normalize()
	e := &encoder{seen: make(map[string]bool)}

	addInt := func(key string, v int) {
		if v > 0 {
			e.add(key, strconv.Itoa(v))
		}
	}
	addInt(KeyWidth, s.Width)
	addInt(KeyHeight, s.Height)
	addInt(KeyClientCacheMinutes, s.ClientCacheMinutes)
	addInt(KeyServerCacheMinutes, s.ServerCacheMinutes)

	if s.RotateFlip != entity.RotateNoneFlipNone {
		e.add(KeyRotateFlip, s.RotateFlip.String())
	}
	if s.Grayscale {
		e.add(KeyGrayscale, "true")
	}
	if s.Sepia {
		e.add(KeySepia, "true")
	}

	if t := s.Text; t != nil {
		e.add(KeyTextValue, t.Value)
		if t.Font != entity.DefaultFont {
			e.add(KeyTextFont, FormatFont(t.Font))
		}
		if t.Color != entity.DefaultTextColor {
			e.add(KeyTextColor, FormatColor(t.Color))
		}
		if t.HAlign != entity.AlignFar {
			e.add(KeyTextHAlign, t.HAlign.String())
		}
		if t.VAlign != entity.AlignFar {
			e.add(KeyTextVAlign, t.VAlign.String())
		}
	}

	if s.OutputFormat != entity.FormatOriginal {
		e.add(KeyOutputFormat, s.OutputFormat.String())
	}

	switch {
	case s.Source != "":
		e.add(KeySource, s.Source)
	case s.CreatorID != "":
		e.add(KeyCreator, s.CreatorID)
		if err := e.params(s.CreatorParams); err != nil {
			return "", err
		}
	}

	for i, t := range s.Transformations {
		e.add(transformationKey(i), t.ID)
		if err := e.params(t.Params); err != nil {
			return "", err
		}
	}

	if s.SizeType != entity.SizeSpecified {
		e.add(KeySizeType, s.SizeType.String())
	}

	if g := s.Gradient; g != nil {
		d := entity.DefaultGradient()
		if g.BorderColor != d.BorderColor {
			e.add(KeyGradientBorderColor, FormatColor(g.BorderColor))
		}
		if g.StartColor != d.StartColor {
			e.add(KeyGradientStartColor, FormatColor(g.StartColor))
		}
		if g.EndColor != d.EndColor {
			e.add(KeyGradientEndColor, FormatColor(g.EndColor))
		}
		if g.CornerRadius != d.CornerRadius {
			e.add(KeyGradientCornerRadius, strconv.Itoa(g.CornerRadius))
		}
		if g.BorderWidth != d.BorderWidth {
			e.add(KeyGradientBorderWidth, strconv.Itoa(g.BorderWidth))
		}
		if g.Type != d.Type {
			e.add(KeyGradientType, g.Type.String())
		}
		if g.InnerBorderColor != d.InnerBorderColor {
			e.add(KeyGradientInnerBorderColor, FormatColor(g.InnerBorderColor))
		}
		if g.InnerBorderWidth != d.InnerBorderWidth {
			e.add(KeyGradientInnerBorderWidth, strconv.Itoa(g.InnerBorderWidth))
		}
	}

	if c := s.Captcha; c != nil {
		d := entity.DefaultCaptcha()
		if c.Style != d.Style {
			e.add(KeyCaptchaStyle, c.Style.String())
		}
		if c.Difficulty != d.Difficulty {
			e.add(KeyCaptchaDifficulty, c.Difficulty.String())
		}
		if c.BackColor != d.BackColor {
			e.add(KeyCaptchaBackColor, FormatColor(c.BackColor))
		}
	}

	return e.b.String(), nil
}

// scope tracks which stage owns the parameters that follow a marker key.
const (
	scopeNone    = -2
	scopeCreator = -1
)

type decoder struct {
	spec     entity.PipelineSpec
	text     *entity.TextSpec
	gradient *entity.GradientSpec
	captcha  *entity.CaptchaSpec
	scope    int
}

// Decode parses a query string produced by Encode (or built by hand in the
// same layout). Missing keys fall back to defaults; a present key with an
// unusable value fails with ErrMalformedParameter and a repeated key with
// ErrDuplicateParameterKey. Unknown keys outside a stage scope are ignored.
func Decode(raw string) (entity.PipelineSpec, error) {
	d := &decoder{scope: scopeNone}
	seen := make(map[string]bool)

	for _, pair := range strings.Split(strings.TrimPrefix(raw, "?"), "&") {
		if pair == "" {
			continue
		}
		rawKey, rawValue, _ := strings.Cut(pair, "=")
		key, err := url.QueryUnescape(rawKey)
		if err != nil {
			return entity.PipelineSpec{}, malformed(rawKey, "bad escaping")
		}
		value, err := url.QueryUnescape(rawValue)
		if err != nil {
			return entity.PipelineSpec{}, malformed(key, "bad escaping")
		}
		if key == "" {
			continue
		}
		if seen[key] {
			return entity.PipelineSpec{}, fmt.Errorf("%w: %q", entity.ErrDuplicateParameterKey, key)
		}
		seen[key] = true

		if err := d.apply(key, value); err != nil {
			return entity.PipelineSpec{}, err
		}
	}

	d.spec.Text = d.text
	d.spec.Gradient = d.gradient
	d.spec.Captcha = d.captcha
	if err := d.spec.Validate(); err != nil {
		return entity.PipelineSpec{}, err
	}
	return d.spec.Normalize(), nil
}

func (d *decoder) apply(key, value string) error {
	if reserved[key] {
		d.scope = scopeNone
		return d.applyReserved(key, value)
	}

	idx, isStage, err := transformationIndex(key)
	if err != nil {
		return err
	}
	if isStage {
		if idx != len(d.spec.Transformations) {
			return malformed(key, "transformation indices must be sequential")
		}
		if value == "" {
			return malformed(key, "empty stage id")
		}
		d.spec.Transformations = append(d.spec.Transformations, entity.StageRef{ID: value})
		d.scope = idx
		return nil
	}

	p := entity.Param{Key: key, Value: value}
	switch {
	case d.scope == scopeCreator:
		d.spec.CreatorParams = append(d.spec.CreatorParams, p)
	case d.scope >= 0:
		t := &d.spec.Transformations[d.scope]
		t.Params = append(t.Params, p)
	}
	return nil
}

func (d *decoder) applyReserved(key, value string) error {
	var err error
	switch key {
	case KeyWidth:
		d.spec.Width, err = parseInt(value)
	case KeyHeight:
		d.spec.Height, err = parseInt(value)
	case KeyClientCacheMinutes:
		d.spec.ClientCacheMinutes, err = parseInt(value)
	case KeyServerCacheMinutes:
		d.spec.ServerCacheMinutes, err = parseInt(value)
	case KeyRotateFlip:
		d.spec.RotateFlip, err = entity.ParseRotateFlip(value)
	case KeyGrayscale:
		d.spec.Grayscale, err = parseBool(value)
	case KeySepia:
		d.spec.Sepia, err = parseBool(value)
	case KeyOutputFormat:
		d.spec.OutputFormat, err = entity.ParseOutputFormat(value)
	case KeySource:
		d.spec.Source = value
	case KeyCreator:
		if value == "" {
			return malformed(key, "empty creator id")
		}
		d.spec.CreatorID = value
		d.scope = scopeCreator
	case KeySizeType:
		d.spec.SizeType, err = entity.ParseSizeType(value)

	case KeyTextValue:
		d.textSpec().Value = value
	case KeyTextFont:
		d.textSpec().Font, err = ParseFont(value)
	case KeyTextColor:
		d.textSpec().Color, err = ParseColor(value)
	case KeyTextHAlign:
		d.textSpec().HAlign, err = entity.ParseAlignment(value)
	case KeyTextVAlign:
		d.textSpec().VAlign, err = entity.ParseAlignment(value)

	case KeyGradientBorderColor:
		d.gradientSpec().BorderColor, err = ParseColor(value)
	case KeyGradientStartColor:
		d.gradientSpec().StartColor, err = ParseColor(value)
	case KeyGradientEndColor:
		d.gradientSpec().EndColor, err = ParseColor(value)
	case KeyGradientCornerRadius:
		d.gradientSpec().CornerRadius, err = parseInt(value)
	case KeyGradientBorderWidth:
		d.gradientSpec().BorderWidth, err = parseInt(value)
	case KeyGradientType:
		d.gradientSpec().Type, err = entity.ParseGradientType(value)
	case KeyGradientInnerBorderColor:
		d.gradientSpec().InnerBorderColor, err = ParseColor(value)
	case KeyGradientInnerBorderWidth:
		d.gradientSpec().InnerBorderWidth, err = parseInt(value)

	case KeyCaptchaStyle:
		d.captchaSpec().Style, err = entity.ParseCaptchaStyle(value)
	case KeyCaptchaDifficulty:
		d.captchaSpec().Difficulty, err = entity.ParseDifficulty(value)
	case KeyCaptchaBackColor:
		d.captchaSpec().BackColor, err = ParseColor(value)
	}
	if err != nil {
		return malformed(key, err.Error())
	}
	return nil
}

func (d *decoder) textSpec() *entity.TextSpec {
	if d.text == nil {
		d.text = entity.NewTextSpec("")
	}
	return d.text
}

func (d *decoder) gradientSpec() *entity.GradientSpec {
	if d.gradient == nil {
		g := entity.DefaultGradient()
		d.gradient = &g
	}
	return d.gradient
}

func (d *decoder) captchaSpec() *entity.CaptchaSpec {
	if d.captcha == nil {
		c := entity.DefaultCaptcha()
		d.captcha = &c
	}
	return d.captcha
}

func parseInt(value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("not an integer: %q", value)
	}
	return n, nil
}

func parseBool(value string) (bool, error) {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("not a boolean: %q", value)
	}
	return b, nil
}
