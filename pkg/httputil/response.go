package httputil

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/clinicops/frontdesk-api/pkg/errors"
)

// Success writes the standard success envelope.
func Success(c *gin.Context, code int, data interface{}) {
	c.JSON(code, gin.H{
		"status": "success",
		"data":   data,
	})
}

// Error writes the standard error envelope.
func Error(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{
		"status": "error",
		"error":  message,
	})
}

// HandleError maps an application error onto an HTTP status.
func HandleError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		Error(c, http.StatusInternalServerError, "internal server error")
		return
	}

	switch appErr.Code {
	case apperrors.ErrNotFound:
		Error(c, http.StatusNotFound, appErr.Message)
	case apperrors.ErrBadRequest:
		Error(c, http.StatusBadRequest, appErr.Message)
	case apperrors.ErrConflict:
		Error(c, http.StatusConflict, appErr.Message)
	case apperrors.ErrRemote:
		Error(c, http.StatusBadGateway, appErr.Message)
	default:
		Error(c, http.StatusInternalServerError, appErr.Message)
	}
}
