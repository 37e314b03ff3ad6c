package transport

import (
	"net/http"

	"github.com/ds124wfegd/dynimage/internal/entity"
	"github.com/gin-gonic/gin"
)

func (h *Handler) NewChallenge(c *gin.Context) {
	var req entity.ChallengeRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	challenge, err := h.captcha.NewChallenge(req)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, challenge)
}

func (h *Handler) VerifyCaptcha(c *gin.Context) {
	var req entity.VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.captcha.Verify(req)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
