package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ds124wfegd/dynimage/internal/entity"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRender struct {
	profile string
	query   string
	resp    *entity.RenderResponse
	err     error
}

func (f *fakeRender) Render(_ context.Context, profile, rawQuery string) (*entity.RenderResponse, error) {
	f.profile, f.query = profile, rawQuery
	return f.resp, f.err
}

func (f *fakeRender) Warm(context.Context, entity.WarmupRequest) error { return nil }

type fakeCaptcha struct {
	lastVerify entity.VerifyRequest
	err        error
}

func (f *fakeCaptcha) NewChallenge(req entity.ChallengeRequest) (*entity.Challenge, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &entity.Challenge{Token: "tok", Src: "/captcha?txv=tok"}, nil
}

func (f *fakeCaptcha) Verify(req entity.VerifyRequest) (*entity.VerifyResponse, error) {
	f.lastVerify = req
	if f.err != nil {
		return nil, f.err
	}
	return &entity.VerifyResponse{Valid: req.Answer == "K7XPD"}, nil
}

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(router http.Handler, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRenderImage(t *testing.T) {
	render := &fakeRender{resp: &entity.RenderResponse{
		RenderResult:       entity.RenderResult{Bytes: []byte("PNG"), MimeType: "image/x-png"},
		ClientCacheMinutes: 5,
		Cache:              entity.CacheHit,
	}}
	router := InitRoutes(NewHandler(render, &fakeCaptcha{}))

	w := serve(router, http.MethodGet, "/button?txv=Hello%20world&rsw=120", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "button", render.profile)
	assert.Equal(t, "txv=Hello%20world&rsw=120", render.query)
	assert.Equal(t, "image/x-png", w.Header().Get("Content-Type"))
	assert.Equal(t, "PNG", w.Body.String())
	assert.Equal(t, "HIT", w.Header().Get("X-Cache"))
	assert.Equal(t, "private, max-age=300", w.Header().Get("Cache-Control"))

	expires, err := http.ParseTime(w.Header().Get("Expires"))
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(5*time.Minute), expires, 5*time.Second)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRenderImageWithoutClientCache(t *testing.T) {
	render := &fakeRender{resp: &entity.RenderResponse{
		RenderResult: entity.RenderResult{Bytes: []byte("GIF"), MimeType: "image/gif"},
		Cache:        entity.CacheBypass,
	}}
	router := InitRoutes(NewHandler(render, &fakeCaptcha{}))

	w := serve(router, http.MethodGet, "/image?src=a.gif", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Cache-Control"))
	assert.Empty(t, w.Header().Get("Expires"))
	assert.Equal(t, "BYPASS", w.Header().Get("X-Cache"))
}

func TestErrorStatuses(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: rsw", entity.ErrMalformedParameter), http.StatusBadRequest},
		{fmt.Errorf("%w: bg", entity.ErrDuplicateParameterKey), http.StatusBadRequest},
		{fmt.Errorf("%w: padding", entity.ErrInvalidCaptchaToken), http.StatusBadRequest},
		{fmt.Errorf("creator source: %w", entity.ErrSourceUnavailable), http.StatusNotFound},
		{fmt.Errorf("%w: creator x", entity.ErrUnknownStage), http.StatusInternalServerError},
		{fmt.Errorf("%w: webp", entity.ErrUnsupportedFormat), http.StatusInternalServerError},
		{fmt.Errorf("disk on fire"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			router := InitRoutes(NewHandler(&fakeRender{err: tt.err}, &fakeCaptcha{}))
			w := serve(router, http.MethodGet, "/image?x=1", "")
			assert.Equal(t, tt.want, w.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.err.Error(), body["error"])
		})
	}
}

func TestOnlyGetRendersImages(t *testing.T) {
	router := InitRoutes(NewHandler(&fakeRender{}, &fakeCaptcha{}))

	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete} {
		w := serve(router, method, "/captcha?txv=x", "")
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code, method)
	}

	w := serve(router, http.MethodOptions, "/image", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestCaptchaEndpoints(t *testing.T) {
	captcha := &fakeCaptcha{}
	router := InitRoutes(NewHandler(&fakeRender{}, captcha))

	w := serve(router, http.MethodPost, "/captcha/challenge", `{"length":5,"style":"Holes"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var ch entity.Challenge
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ch))
	assert.Equal(t, "/captcha?txv=tok", ch.Src)

	w = serve(router, http.MethodPost, "/captcha/challenge", "")
	assert.Equal(t, http.StatusCreated, w.Code, "empty body means all defaults")

	w = serve(router, http.MethodPost, "/captcha/verify", `{"token":"tok","answer":"K7XPD","case_sensitive":true}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"valid":true}`, w.Body.String())
	assert.True(t, captcha.lastVerify.CaseSensitive)

	w = serve(router, http.MethodPost, "/captcha/verify", `{"answer":"K7XPD"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code, "token is required")

	captcha.err = fmt.Errorf("%w: bad padding", entity.ErrInvalidCaptchaToken)
	w = serve(router, http.MethodPost, "/captcha/verify", `{"token":"zzz","answer":"x"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	router := InitRoutes(NewHandler(&fakeRender{}, &fakeCaptcha{}))

	w := serve(router, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)

	w = serve(router, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequestIDIsPropagated(t *testing.T) {
	router := InitRoutes(NewHandler(&fakeRender{}, &fakeCaptcha{}))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
}
