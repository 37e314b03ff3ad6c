package processor

import (
	"bytes"
	"fmt"
	"math/rand/v2"

	"github.com/disintegration/imaging"
	"github.com/ds124wfegd/dynimage/internal/entity"
	"github.com/ds124wfegd/dynimage/internal/pkg/stage"
)

// Executor runs a pipeline spec through the stages of a profile and encodes
// the result.
type Executor interface {
	Run(spec entity.PipelineSpec, profile stage.Profile) (*entity.RenderResult, error)
}

type executor struct {
	registry *stage.Registry
	seed     func() (uint64, uint64)
}

type Option func(*executor)

// WithSeed makes every run use the same random stream, so equal specs
// render to equal bytes.
func WithSeed(seed uint64) Option {
	return func(e *executor) {
		e.seed = func() (uint64, uint64) { return seed, seed ^ 0x9e3779b97f4a7c15 }
	}
}

func NewExecutor(registry *stage.Registry, opts ...Option) Executor {
	e := &executor{
		registry: registry,
		seed:     func() (uint64, uint64) { return rand.Uint64(), rand.Uint64() },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type step struct {
	id     string
	t      stage.Transformation
	params entity.Params
}

func (e *executor) Run(spec entity.PipelineSpec, profile stage.Profile) (*entity.RenderResult, error) {
	creatorID := spec.CreatorID
	switch {
	case creatorID != "":
	case spec.Source != "":
		creatorID = stage.SourceID
	case profile.Creator != "":
		creatorID = profile.Creator
	default:
		return nil, fmt.Errorf("%w: neither source nor creator given", entity.ErrMalformedParameter)
	}

	creator, err := e.registry.ResolveCreator(creatorID)
	if err != nil {
		return nil, err
	}

	// Resolve the whole plan before drawing anything.
	plan := make([]step, 0, len(profile.Native)+len(spec.Transformations))
	for _, id := range profile.Native {
		t, err := e.registry.ResolveTransformation(id)
		if err != nil {
			return nil, err
		}
		plan = append(plan, step{id: id, t: t})
	}
	for _, ref := range spec.Transformations {
		t, err := e.registry.ResolveTransformation(ref.ID)
		if err != nil {
			return nil, err
		}
		plan = append(plan, step{id: ref.ID, t: t, params: ref.Params})
	}

	s1, s2 := e.seed()
	req := stage.Request{Spec: spec, Params: spec.CreatorParams, Rand: rand.New(rand.NewPCG(s1, s2))}

	frame, err := creator.Create(req)
	if err != nil {
		return nil, fmt.Errorf("creator %s: %w", creatorID, err)
	}

	for _, s := range plan {
		req.Params = s.params
		if err := s.t.Apply(frame, req); err != nil {
			return nil, fmt.Errorf("stage %s: %w", s.id, err)
		}
	}

	format := spec.OutputFormat
	if format == entity.FormatOriginal {
		format = frame.Format
	}
	return Encode(frame, format)
}

// Encode writes the frame in the requested container format.
func Encode(frame *stage.Frame, format entity.ImageFormat) (*entity.RenderResult, error) {
	mime, ok := MimeType(format)
	if !ok {
		return nil, fmt.Errorf("%w: no encoder for %s", entity.ErrUnsupportedFormat, format)
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, frame.Image, encoderFormats[format], imaging.JPEGQuality(90)); err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", format, err)
	}
	return &entity.RenderResult{Bytes: buf.Bytes(), MimeType: mime, Format: format}, nil
}
