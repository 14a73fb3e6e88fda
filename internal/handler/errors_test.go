package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/feedesk-backend/internal/money"
	"github.com/stemsi/feedesk-backend/internal/response"
	"github.com/stemsi/feedesk-backend/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		err    error
		status int
		code   response.ErrCode
	}{
		{&service.ValidationError{Field: "sid", Message: "bad"}, http.StatusBadRequest, response.ErrValidation},
		{fmt.Errorf("subject X: %w", money.ErrInvalidFeeFormat), http.StatusBadRequest, response.ErrInvalidFeeFormat},
		{money.ErrNegativeAmount, http.StatusBadRequest, response.ErrInvalidFeeFormat},
		{money.ErrAmountTooLarge, http.StatusBadRequest, response.ErrInvalidFeeFormat},
		{fmt.Errorf("%w: 1 vs 2", service.ErrTotalMismatch), http.StatusBadRequest, response.ErrTotalMismatch},
		{service.ErrDuplicateKey, http.StatusBadRequest, response.ErrDuplicateKey},
		{service.ErrStudentNotFound, http.StatusNotFound, response.ErrStudentNotFound},
		{service.ErrSubjectNotFound, http.StatusNotFound, response.ErrSubjectNotFound},
		{service.ErrReceiptNotFound, http.StatusNotFound, response.ErrReceiptNotFound},
		{service.ErrStorageDisabled, http.StatusServiceUnavailable, response.ErrStorageDisabled},
		{fmt.Errorf("%w: disk full", service.ErrPersistence), http.StatusInternalServerError, response.ErrInternal},
		{errors.New("boom"), http.StatusInternalServerError, response.ErrInternal},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			respondError(c, zerolog.Nop(), tt.err)

			assert.Equal(t, tt.status, w.Code)
			var body response.Response
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			require.NotNil(t, body.Error)
			assert.Equal(t, tt.code, body.Error.Code)
			assert.False(t, body.Success)
		})
	}
}

func TestRespondErrorHidesInternalDetail(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	respondError(c, zerolog.Nop(), errors.New("pq: password authentication failed"))
	assert.NotContains(t, w.Body.String(), "password")
}
