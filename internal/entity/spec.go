package entity

import (
	"fmt"
	"image/color"
	"math"
	"slices"
	"strings"
)

// PipelineSpec describes one rendering job. It is built once per request
// and treated as immutable afterwards: stages receive it by value and never
// modify the slices or structs it references.
type PipelineSpec struct {
	Source        string
	CreatorID     string
	CreatorParams Params

	Width  int
	Height int

	ClientCacheMinutes int
	ServerCacheMinutes int

	RotateFlip RotateFlip
	Grayscale  bool
	Sepia      bool

	Text         *TextSpec
	OutputFormat ImageFormat

	Transformations []StageRef

	SizeType SizeType
	Gradient *GradientSpec
	Captcha  *CaptchaSpec
}

type Param struct {
	Key   string
	Value string
}

// Params keeps stage parameters in declaration order.
type Params []Param

func (p Params) Get(key string) (string, bool) {
	for _, kv := range p {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return "", false
}

type StageRef struct {
	ID     string
	Params Params
}

type FontSpec struct {
	Family string
	Size   float64 // points
	Style  FontStyle
}

var DefaultFont = FontSpec{Family: "Go", Size: 10}

type TextSpec struct {
	Value  string
	Font   FontSpec
	Color  color.NRGBA
	HAlign Alignment
	VAlign Alignment
}

var DefaultTextColor = color.NRGBA{A: 0xff}

// NewTextSpec returns a text overlay with the default font, colour and alignment.
func NewTextSpec(value string) *TextSpec {
	return &TextSpec{Value: value, Font: DefaultFont, Color: DefaultTextColor}
}

type GradientSpec struct {
	BorderColor      color.NRGBA
	StartColor       color.NRGBA
	EndColor         color.NRGBA
	CornerRadius     int
	BorderWidth      int
	Type             GradientType
	InnerBorderColor color.NRGBA
	InnerBorderWidth int
}

func DefaultGradient() GradientSpec {
	gray := color.NRGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xff}
	return GradientSpec{
		BorderColor:      gray,
		StartColor:       color.NRGBA{R: 165, G: 42, B: 42, A: 0xff},
		EndColor:         color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff},
		CornerRadius:     6,
		BorderWidth:      1,
		Type:             GradientBackwardDiagonal,
		InnerBorderColor: gray,
	}
}

type CaptchaSpec struct {
	Style      CaptchaStyle
	Difficulty Difficulty
	BackColor  color.NRGBA
}

func DefaultCaptcha() CaptchaSpec {
	return CaptchaSpec{BackColor: color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}}
}

// GradientOrDefault returns the gradient extras, falling back to the defaults.
func (s PipelineSpec) GradientOrDefault() GradientSpec {
	if s.Gradient == nil {
		return DefaultGradient()
	}
	return *s.Gradient
}

func (s PipelineSpec) CaptchaOrDefault() CaptchaSpec {
	if s.Captcha == nil {
		return DefaultCaptcha()
	}
	return *s.Captcha
}

// WithTextValue returns a copy of the spec whose text carries value.
func (s PipelineSpec) WithTextValue(value string) PipelineSpec {
	if s.Text == nil {
		s.Text = NewTextSpec(value)
		return s
	}
	text := *s.Text
	text.Value = value
	s.Text = &text
	return s
}

// Validate reports specs that cannot be encoded or executed.
func (s PipelineSpec) Validate() error {
	if s.Source != "" && s.CreatorID != "" {
		return fmt.Errorf("%w: source and creator are mutually exclusive", ErrMalformedParameter)
	}
	if s.CreatorID == "" && len(s.CreatorParams) > 0 {
		return fmt.Errorf("%w: creator params without creator", ErrMalformedParameter)
	}
	for i, t := range s.Transformations {
		if t.ID == "" {
			return fmt.Errorf("%w: transformation %d has no id", ErrMalformedParameter, i)
		}
	}
	if s.Text != nil && s.Text.Value != "" {
		f := s.Text.Font
		if strings.Contains(f.Family, ";") || math.IsNaN(f.Size) || math.IsInf(f.Size, 0) {
			return fmt.Errorf("%w: invalid text font", ErrMalformedParameter)
		}
	}
	if s.OutputFormat < FormatOriginal || s.OutputFormat > FormatPng {
		return fmt.Errorf("%w: output format %s", ErrMalformedParameter, s.OutputFormat)
	}
	return nil
}

// Normalize returns the canonical form of the spec: values meaning "unset"
// collapse to their zero value and extras equal to their defaults are dropped.
// The result shares no mutable state with s.
func (s PipelineSpec) Normalize() PipelineSpec {
	n := s
	n.Width = max(n.Width, 0)
	n.Height = max(n.Height, 0)
	n.ClientCacheMinutes = max(n.ClientCacheMinutes, 0)
	n.ServerCacheMinutes = max(n.ServerCacheMinutes, 0)

	n.CreatorParams = cloneParams(s.CreatorParams)
	if n.CreatorID == "" {
		n.CreatorParams = nil
	}

	n.Transformations = nil
	for _, t := range s.Transformations {
		n.Transformations = append(n.Transformations, StageRef{ID: t.ID, Params: cloneParams(t.Params)})
	}

	n.Text = nil
	if s.Text != nil && s.Text.Value != "" {
		text := *s.Text
		if text.Font.Family == "" {
			text.Font.Family = DefaultFont.Family
		}
		if text.Font.Size <= 0 {
			text.Font.Size = DefaultFont.Size
		}
		n.Text = &text
	}

	n.Gradient = nil
	if s.Gradient != nil && *s.Gradient != DefaultGradient() {
		g := *s.Gradient
		n.Gradient = &g
	}

	n.Captcha = nil
	if s.Captcha != nil && *s.Captcha != DefaultCaptcha() {
		c := *s.Captcha
		n.Captcha = &c
	}
	return n
}

func cloneParams(p Params) Params {
	if len(p) == 0 {
		return nil
	}
	return slices.Clone(p)
}
