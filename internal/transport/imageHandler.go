package transport

import (
	"fmt"
	"net/http"
	"time"

	"github.com/ds124wfegd/dynimage/internal/entity"
	"github.com/gin-gonic/gin"
)

// RenderImage serves the raw image for one profile. The whole query string
// is the pipeline spec.
func (h *Handler) RenderImage(profile string) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp, err := h.render.Render(c.Request.Context(), profile, c.Request.URL.RawQuery)
		if err != nil {
			abortWithError(c, err)
			return
		}

		setClientCache(c, resp)
		c.Header("X-Cache", string(resp.Cache))
		c.Data(http.StatusOK, resp.MimeType, resp.Bytes)
	}
}

func setClientCache(c *gin.Context, resp *entity.RenderResponse) {
	if resp.ClientCacheMinutes <= 0 {
		return
	}
	ttl := time.Duration(resp.ClientCacheMinutes) * time.Minute
	c.Header("Cache-Control", fmt.Sprintf("private, max-age=%d", int(ttl.Seconds())))
	c.Header("Expires", time.Now().Add(ttl).UTC().Format(http.TimeFormat))
}
