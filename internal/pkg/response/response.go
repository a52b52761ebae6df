// internal/pkg/response/response.go
package response

import (
	"github.com/gin-gonic/gin"

	xerrors "realm-gateway/internal/pkg/errors"
)

// JSON sends a JSON payload as-is. Game clients consume raw objects, not
// an envelope.
func JSON(c *gin.Context, status int, payload interface{}) {
	c.JSON(status, payload)
}

// Error aborts the request and writes a plain-text error body. No stack
// traces or internal details belong in here.
func Error(c *gin.Context, status int, message string) {
	c.Abort()
	c.String(status, message)
}

// FromError maps a request-level failure to its HTTP response.
func FromError(c *gin.Context, err error) {
	Error(c, xerrors.HTTPStatus(err), err.Error())
}
