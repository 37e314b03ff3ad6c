package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/ds124wfegd/dynimage/internal/entity"
	"github.com/ds124wfegd/dynimage/internal/pkg/codec"
	"github.com/ds124wfegd/dynimage/internal/pkg/metrics"
	"github.com/ds124wfegd/dynimage/internal/pkg/stage"
	"github.com/sirupsen/logrus"
)

func (s *renderService) Render(ctx context.Context, profile, rawQuery string) (*entity.RenderResponse, error) {
	resp, err := s.render(ctx, profile, rawQuery)
	metrics.RecordRender(profile, ErrorKind(err))
	return resp, err
}

func (s *renderService) render(ctx context.Context, profileName, rawQuery string) (*entity.RenderResponse, error) {
	profile, ok := stage.LookupProfile(profileName)
	if !ok {
		return nil, fmt.Errorf("%w: unknown profile %q", entity.ErrMalformedParameter, profileName)
	}

	spec, err := codec.Decode(rawQuery)
	if err != nil {
		return nil, err
	}
	canonical, err := codec.Encode(spec)
	if err != nil {
		return nil, err
	}
	key := profile.Name + "?" + canonical
	fingerprint := Fingerprint(key)

	if profile.SecretText {
		if spec, err = s.revealText(spec); err != nil {
			return nil, err
		}
	}

	ttl := minutes(spec.ServerCacheMinutes)
	entry, hit, err := s.cache.GetOrCompute(key, ttl, func() (*entity.RenderResult, error) {
		start := s.now()
		res, err := s.executor.Run(spec, profile)
		if err != nil {
			return nil, err
		}
		elapsed := s.now().Sub(start)
		metrics.RecordRenderDuration(profile.Name, elapsed.Seconds())
		s.publish(ctx, entity.RenderEvent{
			Profile:     profile.Name,
			Fingerprint: fingerprint,
			MimeType:    res.MimeType,
			Bytes:       len(res.Bytes),
			DurationMS:  elapsed.Milliseconds(),
			At:          start,
		})
		return res, nil
	})
	if err != nil {
		return nil, err
	}

	status := entity.CacheMiss
	switch {
	case ttl <= 0:
		status = entity.CacheBypass
	case hit:
		status = entity.CacheHit
	}
	metrics.RecordCacheLookup(strings.ToLower(string(status)))
	metrics.SetCacheEntries(s.cache.Len())

	logrus.WithFields(logrus.Fields{
		"profile":     profile.Name,
		"fingerprint": fingerprint,
		"cache":       status,
		"bytes":       len(entry.Bytes),
	}).Debug("Image rendered")

	return &entity.RenderResponse{
		RenderResult:       entry.RenderResult,
		ClientCacheMinutes: spec.ClientCacheMinutes,
		Cache:              status,
	}, nil
}

// revealText swaps the encrypted captcha token for the answer it carries.
func (s *renderService) revealText(spec entity.PipelineSpec) (entity.PipelineSpec, error) {
	if spec.Text == nil {
		return spec, fmt.Errorf("%w: captcha token missing", entity.ErrMalformedParameter)
	}
	if s.cipher == nil {
		return spec, fmt.Errorf("%w: captcha cipher not configured", entity.ErrInvalidCaptchaToken)
	}
	plain, err := s.cipher.Decrypt(spec.Text.Value)
	if err != nil {
		return spec, err
	}
	return spec.WithTextValue(plain), nil
}

func (s *renderService) publish(ctx context.Context, event entity.RenderEvent) {
	if s.producer == nil {
		return
	}
	if err := s.producer.SendMessage(ctx, event.Fingerprint, event); err != nil {
		logrus.WithError(err).WithField("fingerprint", event.Fingerprint).Warn("Failed to publish render event")
	}
}

func (s *renderService) Warm(ctx context.Context, req entity.WarmupRequest) error {
	resp, err := s.Render(ctx, req.Profile, req.Query)
	if err != nil {
		return err
	}
	if resp.Cache == entity.CacheBypass {
		logrus.WithField("profile", req.Profile).Debug("Warm-up request has no server cache duration")
	}
	return nil
}

func minutes(n int) time.Duration {
	return time.Duration(n) * time.Minute
}

// Fingerprint is a short stable id for a cache key, used in logs and events.
func Fingerprint(key string) string {
	return strconv.FormatUint(xxhash.Sum64String(key), 16)
}

// ErrorKind labels an error for metrics.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, entity.ErrMalformedParameter):
		return "malformed_parameter"
	case errors.Is(err, entity.ErrDuplicateParameterKey):
		return "duplicate_parameter_key"
	case errors.Is(err, entity.ErrInvalidCaptchaToken):
		return "invalid_captcha_token"
	case errors.Is(err, entity.ErrSourceUnavailable):
		return "source_unavailable"
	case errors.Is(err, entity.ErrUnknownStage):
		return "unknown_stage"
	case errors.Is(err, entity.ErrUnsupportedFormat):
		return "unsupported_format"
	default:
		return "error"
	}
}
