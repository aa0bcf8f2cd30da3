package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/TOPOSV/Fakturace/internal/interfaces/http/dto"
)

// BodyLimit caps the request body at maxBytes. Oversized declared payloads
// are rejected up front; chunked requests are capped while being read.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge,
				dto.NewErrorResponse(dto.ErrCodePayloadTooLarge, "Request body exceeds the allowed size"))
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
