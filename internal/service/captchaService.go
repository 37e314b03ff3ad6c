package service

import (
	cryptorand "crypto/rand"
	"fmt"
	"image/color"
	"math/rand/v2"

	"github.com/ds124wfegd/dynimage/internal/entity"
	"github.com/ds124wfegd/dynimage/internal/pkg/captcha"
	"github.com/ds124wfegd/dynimage/internal/pkg/codec"
	"github.com/ds124wfegd/dynimage/internal/pkg/stage"
)

// CaptchaDefaults fill in whatever a challenge request leaves out.
type CaptchaDefaults struct {
	Alphabet string
	Length   int
	Width    int
	Height   int
}

var defaultCaptchaFont = entity.FontSpec{Family: "Go", Size: 16, Style: entity.StyleBold}

type captchaService struct {
	cipher   *captcha.Cipher
	defaults CaptchaDefaults
	newRand  func() *rand.Rand
}

func NewCaptchaService(cipher *captcha.Cipher, defaults CaptchaDefaults) CaptchaService {
	if defaults.Alphabet == "" {
		defaults.Alphabet = captcha.DefaultAlphabet
	}
	if defaults.Length <= 0 {
		defaults.Length = captcha.DefaultLength
	}
	if defaults.Width <= 0 {
		defaults.Width = 100
	}
	if defaults.Height <= 0 {
		defaults.Height = 30
	}
	return &captchaService{cipher: cipher, defaults: defaults, newRand: secureRand}
}

// secureRand seeds a ChaCha8 stream from the OS so answers are unpredictable.
func secureRand() *rand.Rand {
	var seed [32]byte
	cryptorand.Read(seed[:]) // never fails since Go 1.24
	return rand.New(rand.NewChaCha8(seed))
}

func (s *captchaService) NewChallenge(req entity.ChallengeRequest) (*entity.Challenge, error) {
	state, err := s.challengeState(req)
	if err != nil {
		return nil, err
	}
	spec, err := s.challengeSpec(req, state)
	if err != nil {
		return nil, err
	}

	query, err := codec.Encode(spec)
	if err != nil {
		return nil, err
	}
	return &entity.Challenge{Token: spec.Text.Value, Src: "/" + stage.CaptchaProfile.Name + "?" + query}, nil
}

// challengeState resolves the request against the defaults and draws a fresh answer.
func (s *captchaService) challengeState(req entity.ChallengeRequest) (entity.CaptchaState, error) {
	state := entity.CaptchaState{
		Alphabet:  req.Alphabet,
		Length:    req.Length,
		BackColor: entity.DefaultCaptcha().BackColor,
	}
	if state.Alphabet == "" {
		state.Alphabet = s.defaults.Alphabet
	}
	if state.Length == 0 {
		state.Length = s.defaults.Length
	}

	var err error
	if req.Style != "" {
		if state.Style, err = entity.ParseCaptchaStyle(req.Style); err != nil {
			return entity.CaptchaState{}, err
		}
	}
	if req.Difficulty != "" {
		if state.Difficulty, err = entity.ParseDifficulty(req.Difficulty); err != nil {
			return entity.CaptchaState{}, err
		}
	}
	if state.BackColor, err = colorOr(req.BackColor, state.BackColor, "back_color"); err != nil {
		return entity.CaptchaState{}, err
	}

	if state.Answer, err = captcha.GenerateAnswer(s.newRand(), state.Alphabet, state.Length); err != nil {
		return entity.CaptchaState{}, err
	}
	return state, nil
}

// challengeSpec builds the render spec for state; the answer only travels encrypted.
func (s *captchaService) challengeSpec(req entity.ChallengeRequest, state entity.CaptchaState) (entity.PipelineSpec, error) {
	width, height := req.Width, req.Height
	if width <= 0 {
		width = s.defaults.Width
	}
	if height <= 0 {
		height = s.defaults.Height
	}
	if width > stage.MaxDimension || height > stage.MaxDimension {
		return entity.PipelineSpec{}, fmt.Errorf("%w: captcha size %dx%d", entity.ErrMalformedParameter, width, height)
	}

	text := &entity.TextSpec{
		Value:  s.cipher.Encrypt(state.Answer),
		Font:   defaultCaptchaFont,
		Color:  entity.DefaultTextColor,
		HAlign: entity.AlignCenter,
		VAlign: entity.AlignCenter,
	}
	var err error
	if text.Color, err = colorOr(req.TextColor, text.Color, "text_color"); err != nil {
		return entity.PipelineSpec{}, err
	}
	if req.Font != "" {
		if text.Font, err = codec.ParseFont(req.Font); err != nil {
			return entity.PipelineSpec{}, fmt.Errorf("%w: font: %v", entity.ErrMalformedParameter, err)
		}
	}

	return entity.PipelineSpec{
		Width:              width,
		Height:             height,
		ClientCacheMinutes: req.ClientCacheMinutes,
		ServerCacheMinutes: req.ServerCacheMinutes,
		Text:               text,
		Captcha: &entity.CaptchaSpec{
			Style:      state.Style,
			Difficulty: state.Difficulty,
			BackColor:  state.BackColor,
		},
	}, nil
}

func colorOr(value string, def color.NRGBA, field string) (color.NRGBA, error) {
	if value == "" {
		return def, nil
	}
	c, err := codec.ParseColor(value)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("%w: %s: %v", entity.ErrMalformedParameter, field, err)
	}
	return c, nil
}

func (s *captchaService) Verify(req entity.VerifyRequest) (*entity.VerifyResponse, error) {
	ok, err := captcha.Verify(s.cipher, req.Token, req.Answer, req.CaseSensitive)
	if err != nil {
		return nil, err
	}
	return &entity.VerifyResponse{Valid: ok}, nil
}
