package service

import (
	"context"
	"time"

	"github.com/ds124wfegd/dynimage/internal/entity"
	"github.com/ds124wfegd/dynimage/internal/pkg/cache"
	"github.com/ds124wfegd/dynimage/internal/pkg/captcha"
	"github.com/ds124wfegd/dynimage/internal/pkg/kafka"
	"github.com/ds124wfegd/dynimage/internal/pkg/processor"
)

type RenderService interface {
	// Render decodes rawQuery, runs it through the named profile and serves
	// the bytes from the result cache when the request allows it.
	Render(ctx context.Context, profile, rawQuery string) (*entity.RenderResponse, error)
	Warm(ctx context.Context, req entity.WarmupRequest) error
}

type CaptchaService interface {
	NewChallenge(req entity.ChallengeRequest) (*entity.Challenge, error)
	Verify(req entity.VerifyRequest) (*entity.VerifyResponse, error)
}

type renderService struct {
	executor processor.Executor
	cache    *cache.ResultCache
	cipher   *captcha.Cipher
	producer kafka.Producer
	now      func() time.Time
}

func NewRenderService(executor processor.Executor, cache *cache.ResultCache, cipher *captcha.Cipher, producer kafka.Producer) RenderService {
	return &renderService{
		executor: executor,
		cache:    cache,
		cipher:   cipher,
		producer: producer,
		now:      time.Now,
	}
}
