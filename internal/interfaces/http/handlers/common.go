// Package handlers holds the gin handlers of the phimark HTTP API.
package handlers

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/phimark/internal/interfaces/http/middleware"
	"github.com/turtacn/phimark/pkg/errors"
)

// ErrorResponse is the standard error response body.
type ErrorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Detail    string `json:"detail,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// writeAppError maps err to a status via its error code.  Server-side
// failures and errors that carry no code are reported without their message.
func writeAppError(c *gin.Context, err error) {
	_ = c.Error(err)

	code := errors.GetCode(err)
	status := errors.HTTPStatusForCode(code)
	resp := ErrorResponse{
		Code:      code.String(),
		Message:   errors.DefaultMessageForCode(code),
		RequestID: middleware.GetRequestID(c),
	}

	appErr, ok := errors.As(err)
	switch {
	case !ok:
		resp.Code = errors.ErrCodeInternal.String()
		resp.Message = errors.DefaultMessageForCode(errors.ErrCodeInternal)
	case errors.IsClientError(code):
		resp.Message = appErr.Message
		resp.Detail = appErr.Detail
	}
	c.AbortWithStatusJSON(status, resp)
}

// bindJSON decodes the request body into dst.  It writes a 413 when the body
// exceeds the configured limit and a 400 for any other decoding failure.
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			_ = c.Error(err)
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, ErrorResponse{
				Code:      errors.CodeInvalidParam.String(),
				Message:   "request body too large",
				RequestID: middleware.GetRequestID(c),
			})
			return false
		}
		writeAppError(c, errors.InvalidParam("invalid request body").WithCause(err))
		return false
	}
	return true
}
