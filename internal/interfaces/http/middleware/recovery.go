package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/phimark/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/phimark/pkg/errors"
)

// Recovery turns a handler panic into a 500 response with the standard error
// body and logs it.
func Recovery(logger logging.Logger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, rec interface{}) {
		logger.Error("panic recovered",
			logging.String("path", c.Request.URL.Path),
			logging.String("request_id", GetRequestID(c)),
			logging.String("panic", fmt.Sprint(rec)),
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"code":       errors.ErrCodeInternal,
			"message":    errors.DefaultMessageForCode(errors.ErrCodeInternal),
			"request_id": GetRequestID(c),
		})
	})
}
