package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/snnyvrz/bookstore-api/internal/middleware"
	"github.com/snnyvrz/bookstore-api/internal/service"
	"github.com/snnyvrz/bookstore-api/internal/validation"
)

func writeError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, validation.ErrorResponse{
		Code:    code,
		Message: message,
		Errors:  nil,
	})
}

func writeValidation(c *gin.Context, verr *service.ValidationError) {
	c.AbortWithStatusJSON(http.StatusBadRequest, validation.ErrorResponse{
		Code:    "VALIDATION_FAILED",
		Message: "validation failed",
		Errors:  verr.Violations,
	})
}

// responder maps service errors for one kind of record onto responses.
type responder struct {
	prefix string
	noun   string
	log    *slog.Logger
}

// fail writes the response for err. Anything unrecognised is logged and
// reported as a 500 with code and message.
func (r responder) fail(c *gin.Context, err error, code, message string) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		writeValidation(c, verr)
	case errors.Is(err, service.ErrNotFound):
		writeError(c, http.StatusNotFound, r.prefix+"_NOT_FOUND", r.noun+" not found")
	case errors.Is(err, service.ErrConflict):
		writeError(c, http.StatusConflict, r.prefix+"_CONFLICT", r.noun+" was modified or is still referenced")
	default:
		r.log.Error(message,
			"error", err,
			"request_id", middleware.GetRequestID(c),
		)
		writeError(c, http.StatusInternalServerError, code, message)
	}
}

// parseID reads the :id path parameter as a positive integer.
func parseID(c *gin.Context, code, message string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		writeError(c, http.StatusBadRequest, code, message)
		return 0, false
	}
	return id, true
}

func orDefault(log *slog.Logger) *slog.Logger {
	if log == nil {
		return slog.Default()
	}
	return log
}
