package v1

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/shenikar/firechain/internal/service"
)

// statusFor сопоставляет ошибку сервиса HTTP-статусу
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrIllegalTransition), errors.Is(err, service.ErrAlreadyClaimed):
		return http.StatusConflict
	case errors.Is(err, service.ErrInsufficientFunds):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrLedgerRejected):
		return http.StatusBadGateway
	case errors.Is(err, service.ErrConfirmationTimeout), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, log *logrus.Entry, err error) {
	status := statusFor(err)
	message := err.Error()
	if status >= http.StatusInternalServerError {
		log.WithError(err).Error("Request failed")
		if status == http.StatusInternalServerError {
			message = "internal server error"
		}
	} else {
		log.WithError(err).Warn("Request rejected")
	}
	c.JSON(status, gin.H{"error": message})
}
