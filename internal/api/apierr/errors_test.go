package apierr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/spendboard/internal/model"
	"github.com/mcoot/spendboard/internal/services/auth"
	"github.com/mcoot/spendboard/internal/services/purchase"
)

func TestStatusMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{model.ErrParticipantNotFound, http.StatusNotFound},
		{fmt.Errorf("approve: %w", model.ErrPendingNotFound), http.StatusNotFound},
		{model.ErrInvalidPrice, http.StatusBadRequest},
		{purchase.ErrGameNameRequired, http.StatusBadRequest},
		{model.ErrMonthAlreadyClosed, http.StatusConflict},
		{model.ErrCatalogNotConfigured, http.StatusServiceUnavailable},
		{auth.ErrInvalidCredentials, http.StatusUnauthorized},
		{NewInvalidRequestError("bad"), http.StatusBadRequest},
		{errors.New("redis down"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.status, Status(tc.err), tc.err.Error())
	}
}

func TestWriteErrorEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, errors.New("secret internal detail"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, CodeInternalError, body.Error.Code)
	assert.NotContains(t, body.Error.Message, "secret")
}
