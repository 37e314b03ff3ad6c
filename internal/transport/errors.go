package transport

import (
	"errors"
	"net/http"

	"github.com/ds124wfegd/dynimage/internal/entity"
	"github.com/ds124wfegd/dynimage/internal/transport/middleware"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// StatusFor maps an error kind to its HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, entity.ErrMalformedParameter),
		errors.Is(err, entity.ErrDuplicateParameterKey),
		errors.Is(err, entity.ErrInvalidCaptchaToken):
		return http.StatusBadRequest
	case errors.Is(err, entity.ErrSourceUnavailable):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func abortWithError(c *gin.Context, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		logrus.WithError(err).WithField("request_id", c.GetString(middleware.RequestIDKey)).Error("Request failed")
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}
