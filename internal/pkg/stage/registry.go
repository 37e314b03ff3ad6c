package stage

import (
	"fmt"
	"regexp"
	"sort"
	"sync"

	"github.com/ds124wfegd/dynimage/internal/entity"
	"github.com/ds124wfegd/dynimage/internal/pkg/raster"
)

var idPattern = regexp.MustCompile(`^[a-z][a-z0-9._-]{0,63}$`)

// Registry maps server-controlled ids to stage implementations. Built-ins
// are always present; extensions are registered at startup.
type Registry struct {
	mu              sync.RWMutex
	creators        map[string]Creator
	transformations map[string]Transformation
}

type Dependencies struct {
	Sources SourceOpener
	Fonts   *raster.FontBook
	// Captcha is the distortion stage; captcha renders fail with
	// ErrUnknownStage when it is nil.
	Captcha Transformation
}

func NewRegistry(deps Dependencies) (*Registry, error) {
	if deps.Fonts == nil {
		return nil, fmt.Errorf("stage registry needs a font book")
	}
	r := &Registry{
		creators:        make(map[string]Creator),
		transformations: make(map[string]Transformation),
	}

	r.creators[SourceID] = &sourceCreator{sources: deps.Sources}
	r.creators[CanvasID] = CreatorFunc(createCanvas)
	r.creators[TextCanvasID] = &textCanvasCreator{fonts: deps.Fonts}

	r.transformations[ResizeID] = TransformationFunc(resize)
	r.transformations[RotateFlipID] = TransformationFunc(rotateFlip)
	r.transformations[GrayscaleID] = TransformationFunc(grayscale)
	r.transformations[SepiaID] = TransformationFunc(sepia)
	r.transformations[TextID] = &textOverlay{fonts: deps.Fonts}
	r.transformations[GradientID] = TransformationFunc(gradientBackground)
	if deps.Captcha != nil {
		r.transformations[CaptchaID] = deps.Captcha
	}
	return r, nil
}

func (r *Registry) RegisterCreator(id string, c Creator) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkID(id); err != nil {
		return err
	}
	r.creators[id] = c
	return nil
}

func (r *Registry) RegisterTransformation(id string, t Transformation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkID(id); err != nil {
		return err
	}
	r.transformations[id] = t
	return nil
}

func (r *Registry) checkID(id string) error {
	if !idPattern.MatchString(id) {
		return fmt.Errorf("%w: invalid stage id %q", entity.ErrMalformedParameter, id)
	}
	_, isCreator := r.creators[id]
	_, isTransformation := r.transformations[id]
	if isCreator || isTransformation {
		return fmt.Errorf("%w: %q", entity.ErrDuplicateStage, id)
	}
	return nil
}

func (r *Registry) ResolveCreator(id string) (Creator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.creators[id]
	if !ok {
		return nil, fmt.Errorf("%w: creator %q", entity.ErrUnknownStage, id)
	}
	return c, nil
}

func (r *Registry) ResolveTransformation(id string) (Transformation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.transformations[id]
	if !ok {
		return nil, fmt.Errorf("%w: transformation %q", entity.ErrUnknownStage, id)
	}
	return t, nil
}

// IDs lists registered creator and transformation ids, sorted.
func (r *Registry) IDs() (creators, transformations []string) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for id := range r.creators {
		creators = append(creators, id)
	}
	for id := range r.transformations {
		transformations = append(transformations, id)
	}
	sort.Strings(creators)
	sort.Strings(transformations)
	return creators, transformations
}
