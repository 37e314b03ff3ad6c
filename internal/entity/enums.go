package entity

import (
	"fmt"
	"strings"
)

type RotateFlip int

const (
	RotateNoneFlipNone RotateFlip = iota
	Rotate90FlipNone
	Rotate180FlipNone
	Rotate270FlipNone
	RotateNoneFlipX
	Rotate90FlipX
	Rotate180FlipX
	Rotate270FlipX
)

var rotateFlipNames = []string{
	"None", "Rotate90", "Rotate180", "Rotate270",
	"FlipX", "Rotate90FlipX", "Rotate180FlipX", "Rotate270FlipX",
}

func (r RotateFlip) String() string { return enumName(rotateFlipNames, int(r)) }

func ParseRotateFlip(s string) (RotateFlip, error) {
	v, err := parseEnum(rotateFlipNames, s)
	return RotateFlip(v), err
}

// Quarter turns clockwise applied before the optional horizontal flip.
func (r RotateFlip) Turns() int { return int(r) % 4 }

func (r RotateFlip) FlipX() bool { return r >= RotateNoneFlipX }

type ImageFormat int

const (
	FormatOriginal ImageFormat = iota
	FormatBmp
	FormatGif
	FormatJpeg
	FormatPng
	FormatTiff
	FormatWebp
)

var imageFormatNames = []string{"Original", "Bmp", "Gif", "Jpeg", "Png", "Tiff", "Webp"}

func (f ImageFormat) String() string { return enumName(imageFormatNames, int(f)) }

// ParseOutputFormat accepts only the formats a request may ask for.
func ParseOutputFormat(s string) (ImageFormat, error) {
	v, err := parseEnum(imageFormatNames[:FormatTiff], s)
	return ImageFormat(v), err
}

// FormatFromName maps a decoder name ("jpeg", "png", ...) to an ImageFormat.
func FormatFromName(name string) (ImageFormat, bool) {
	v, err := parseEnum(imageFormatNames[1:], name)
	if err != nil {
		return FormatOriginal, false
	}
	return ImageFormat(v + 1), true
}

// Alignment zero value is Far, the default for overlaid text.
type Alignment int

const (
	AlignFar Alignment = iota
	AlignNear
	AlignCenter
)

var alignmentNames = []string{"Far", "Near", "Center"}

func (a Alignment) String() string { return enumName(alignmentNames, int(a)) }

func ParseAlignment(s string) (Alignment, error) {
	v, err := parseEnum(alignmentNames, s)
	return Alignment(v), err
}

type FontStyle int

const (
	StyleRegular FontStyle = iota
	StyleBold
	StyleItalic
	StyleBoldItalic
)

var fontStyleNames = []string{"Regular", "Bold", "Italic", "BoldItalic"}

func (s FontStyle) String() string { return enumName(fontStyleNames, int(s)) }

func ParseFontStyle(s string) (FontStyle, error) {
	v, err := parseEnum(fontStyleNames, s)
	return FontStyle(v), err
}

func (s FontStyle) Bold() bool   { return s == StyleBold || s == StyleBoldItalic }
func (s FontStyle) Italic() bool { return s == StyleItalic || s == StyleBoldItalic }

type SizeType int

const (
	SizeSpecified SizeType = iota
	SizeStretchToText
)

var sizeTypeNames = []string{"Specified", "StretchToText"}

func (s SizeType) String() string { return enumName(sizeTypeNames, int(s)) }

func ParseSizeType(s string) (SizeType, error) {
	v, err := parseEnum(sizeTypeNames, s)
	return SizeType(v), err
}

type GradientType int

const (
	GradientBackwardDiagonal GradientType = iota
	GradientForwardDiagonal
	GradientHorizontal
	GradientVertical
	GradientBlendingIn
	GradientVerticalSuddenFalloff
)

var gradientTypeNames = []string{
	"BackwardDiagonal", "ForwardDiagonal", "Horizontal",
	"Vertical", "BlendingIn", "VerticalSuddenFalloff",
}

func (g GradientType) String() string { return enumName(gradientTypeNames, int(g)) }

func ParseGradientType(s string) (GradientType, error) {
	v, err := parseEnum(gradientTypeNames, s)
	return GradientType(v), err
}

type CaptchaStyle int

const (
	CaptchaConfetti CaptchaStyle = iota
	CaptchaGradient
	CaptchaHoles
	CaptchaRandom
)

var captchaStyleNames = []string{"Confetti", "Gradient", "Holes", "Random"}

func (c CaptchaStyle) String() string { return enumName(captchaStyleNames, int(c)) }

func ParseCaptchaStyle(s string) (CaptchaStyle, error) {
	v, err := parseEnum(captchaStyleNames, s)
	return CaptchaStyle(v), err
}

// Difficulty is the captcha readness level.
type Difficulty int

const (
	DifficultyNormal Difficulty = iota
	DifficultyHard
	DifficultyAlmostImpossible
)

var difficultyNames = []string{"Normal", "Hard", "AlmostImpossible"}

func (d Difficulty) String() string { return enumName(difficultyNames, int(d)) }

func ParseDifficulty(s string) (Difficulty, error) {
	v, err := parseEnum(difficultyNames, s)
	return Difficulty(v), err
}

func enumName(names []string, v int) string {
	if v < 0 || v >= len(names) {
		return fmt.Sprintf("Unknown(%d)", v)
	}
	return names[v]
}

func parseEnum(names []string, s string) (int, error) {
	for i, name := range names {
		if strings.EqualFold(name, s) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown value %q", ErrMalformedParameter, s)
}
