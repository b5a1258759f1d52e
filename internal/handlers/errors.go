package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"interior-design-backend/internal/gateway"
	"interior-design-backend/internal/history"
	"interior-design-backend/internal/middleware"
	"interior-design-backend/internal/models"
	"interior-design-backend/internal/services"
)

// statusFor maps service, history and gateway errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrAlreadyExists), errors.Is(err, services.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, services.ErrInvalidInput),
		errors.Is(err, history.ErrIndexOutOfRange),
		errors.Is(err, history.ErrEmptyInstruction):
		return http.StatusBadRequest
	case errors.Is(err, history.ErrImageMissing), errors.Is(err, gateway.ErrImageRequired):
		return http.StatusUnprocessableEntity
	}

	switch gateway.KindOf(err) {
	case gateway.KindQuotaExceeded:
		return http.StatusTooManyRequests
	case gateway.KindBlocked:
		return http.StatusUnprocessableEntity
	case gateway.KindProviderUnavailable, gateway.KindGenerationExhausted:
		return http.StatusServiceUnavailable
	case gateway.KindMalformedResponse, gateway.KindEmptyResponse, gateway.KindProviderError:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func respondError(c *gin.Context, msg string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.JSON(status, models.ErrorResponse{
		Error:   msg,
		Message: err.Error(),
		Kind:    string(gateway.KindOf(err)),
	})
}

func badRequest(c *gin.Context, msg string, err error) {
	resp := models.ErrorResponse{Error: msg}
	if err != nil {
		resp.Message = err.Error()
	}
	c.JSON(http.StatusBadRequest, resp)
}

func currentUser(c *gin.Context) (string, bool) {
	id, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "user id not found"})
	}
	return id, ok
}

func projectIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("project_id"))
	if err != nil {
		badRequest(c, "invalid project id", nil)
		return uuid.Nil, false
	}
	return id, true
}
