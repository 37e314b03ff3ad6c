package transport

import (
	"github.com/ds124wfegd/dynimage/internal/service"
)

type Handler struct {
	render  service.RenderService
	captcha service.CaptchaService
}

func NewHandler(render service.RenderService, captcha service.CaptchaService) *Handler {
	return &Handler{render: render, captcha: captcha}
}
