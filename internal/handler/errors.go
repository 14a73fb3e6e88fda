package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/feedesk-backend/internal/money"
	"github.com/stemsi/feedesk-backend/internal/response"
	"github.com/stemsi/feedesk-backend/internal/service"
)

// respondError maps service errors onto the response envelope. Anything it
// does not recognise is logged and reported as a generic 500.
func respondError(c *gin.Context, log zerolog.Logger, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, map[string]string{verr.Field: verr.Message})
	case errors.Is(err, money.ErrInvalidFeeFormat), errors.Is(err, money.ErrNegativeAmount),
		errors.Is(err, money.ErrAmountTooLarge):
		response.FailWithMessage(c, http.StatusBadRequest, response.ErrInvalidFeeFormat, err.Error())
	case errors.Is(err, service.ErrTotalMismatch):
		response.FailWithMessage(c, http.StatusBadRequest, response.ErrTotalMismatch, err.Error())
	case errors.Is(err, service.ErrDuplicateKey):
		response.FailWithMessage(c, http.StatusBadRequest, response.ErrDuplicateKey, err.Error())
	case errors.Is(err, service.ErrStudentNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrStudentNotFound)
	case errors.Is(err, service.ErrSubjectNotFound):
		response.FailWithMessage(c, http.StatusNotFound, response.ErrSubjectNotFound, err.Error())
	case errors.Is(err, service.ErrReceiptNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrReceiptNotFound)
	case errors.Is(err, service.ErrStorageDisabled):
		response.Fail(c, http.StatusServiceUnavailable, response.ErrStorageDisabled)
	default:
		log.Error().Err(err).
			Str("request_id", c.GetString(response.ContextKeyRequestID)).
			Str("path", c.FullPath()).
			Msg("request failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
