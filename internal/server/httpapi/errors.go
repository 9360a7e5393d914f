package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/coursekeeper/internal/common"
	"github.com/gin-gonic/gin"
)

type errorBody struct {
	Error string `json:"error"`
}

// statusFor maps a service error to its HTTP status and public message.
// Unknown errors become 500 without leaking their text.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, common.ErrTokenExpired):
		return http.StatusUnauthorized, common.ErrTokenExpired.Error()
	case errors.Is(err, common.ErrInvalidToken), errors.Is(err, common.ErrUnauthorized):
		return http.StatusUnauthorized, common.ErrUnauthorized.Error()
	case errors.Is(err, common.ErrValidation):
		var ve *common.ValidationError
		if errors.As(err, &ve) {
			return http.StatusBadRequest, ve.Error()
		}
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, common.ErrNotFound):
		return http.StatusNotFound, common.ErrNotFound.Error()
	case errors.Is(err, common.ErrOrderConflict):
		return http.StatusConflict, common.ErrOrderConflict.Error()
	default:
		return http.StatusInternalServerError, common.ErrInternal.Error()
	}
}

// writeError aborts the request with the JSON error body for err. The
// original error is attached to the gin context for the request logger.
func writeError(c *gin.Context, err error) {
	status, msg := statusFor(err)
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, errorBody{Error: msg})
}
