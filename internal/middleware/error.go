package middleware

import (
	"errors"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/logger"
)

// ErrorHandler renders errors that handlers attached with c.Error and did not
// answer themselves. AppErrors keep their code and message; anything else is
// logged and reported as INTERNAL_ERROR.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		log := logger.Get().With(
			"path", c.Request.URL.Path,
			"method", c.Request.Method,
			"request_id", requestid.Get(c),
		)

		var appErr *apperrors.AppError
		if !errors.As(err, &appErr) {
			log.Errorw("unexpected error", "error", err.Error())
			appErr = apperrors.ErrInternalServer
		} else if appErr.Internal != nil {
			log.Errorw("app error", "code", appErr.Code, "internal", appErr.Internal.Error())
		}

		writeError(c, appErr)
	}
}

// NotFound answers unknown routes with the JSON error envelope.
func NotFound() gin.HandlerFunc {
	return func(c *gin.Context) {
		abortWithError(c, apperrors.ErrNotFound)
	}
}

// MethodNotAllowed answers known routes called with the wrong verb.
func MethodNotAllowed() gin.HandlerFunc {
	return func(c *gin.Context) {
		abortWithError(c, apperrors.ErrMethodNotAllowed)
	}
}

func errorBody(err *apperrors.AppError) gin.H {
	return gin.H{
		"error": gin.H{
			"code":    err.Code,
			"message": err.Message,
		},
	}
}

func writeError(c *gin.Context, err *apperrors.AppError) {
	if apperrors.IsRetryable(err) {
		c.Header("Retry-After", "1")
	}
	c.JSON(err.StatusCode, errorBody(err))
}

func abortWithError(c *gin.Context, err *apperrors.AppError) {
	c.Abort()
	writeError(c, err)
}
