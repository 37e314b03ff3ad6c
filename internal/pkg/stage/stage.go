// Package stage defines the creation and transformation stages a pipeline is
// built from, the registry that resolves them by id, and the render profiles.
package stage

import (
	"image"
	"io"
	"math/rand/v2"

	"github.com/ds124wfegd/dynimage/internal/entity"
)

// Built-in stage ids.
const (
	SourceID     = "source"
	CanvasID     = "canvas"
	TextCanvasID = "textcanvas"

	ResizeID     = "resize"
	RotateFlipID = "rotateflip"
	GrayscaleID  = "grayscale"
	SepiaID      = "sepia"
	TextID       = "text"
	GradientID   = "gradient"
	CaptchaID    = "captcha"
)

// MaxDimension bounds every canvas and resize target.
const MaxDimension = 4096

// Frame is the raster a pipeline works on and the container format it came from.
type Frame struct {
	Image  *image.NRGBA
	Format entity.ImageFormat
}

// Request is what a stage sees: the whole spec, its own parameters (empty
// for native stages) and the pipeline's seeded random source.
type Request struct {
	Spec   entity.PipelineSpec
	Params entity.Params
	Rand   *rand.Rand
}

type Creator interface {
	Create(req Request) (*Frame, error)
}

// Transformation mutates the frame or replaces its image. It must leave the
// frame untouched when its governing parameters are absent.
type Transformation interface {
	Apply(f *Frame, req Request) error
}

type CreatorFunc func(req Request) (*Frame, error)

func (fn CreatorFunc) Create(req Request) (*Frame, error) { return fn(req) }

type TransformationFunc func(f *Frame, req Request) error

func (fn TransformationFunc) Apply(f *Frame, req Request) error { return fn(f, req) }

// SourceOpener opens a source locator (local path or URL).
type SourceOpener interface {
	Open(locator string) (io.ReadCloser, error)
}
