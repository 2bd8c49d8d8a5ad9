package apperrors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("group g1: %w", ErrNotFound), http.StatusNotFound},
		{ErrAlreadyExists, http.StatusConflict},
		{ErrConflict, http.StatusConflict},
		{ErrForbidden, http.StatusForbidden},
		{ErrUnauthenticated, http.StatusUnauthorized},
		{ErrRateLimited, http.StatusTooManyRequests},
		{ErrUpstream, http.StatusBadGateway},
		{ErrUnavailable, http.StatusServiceUnavailable},
		{Invalid("zipCode", "required"), http.StatusBadRequest},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, c := range cases {
		assert.Equal(t, c.want, Status(c.err), "status for %v", c.err)
	}
}

func TestValidationErrorMessage(t *testing.T) {
	err := NewValidationError(map[string]string{"sport": "required", "name": "required"})

	assert.True(t, errors.Is(err, ErrValidation))
	assert.Equal(t, "validation failed: name: required; sport: required", err.Error())
}

func TestRespondHidesInternalErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	Respond(c, errors.New("firestore: connection reset"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.True(t, c.IsAborted())

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "something went wrong", body["error"])
}

func TestRespondValidationFields(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	Respond(c, Invalid("zipCode", "must be a US zip code"))

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var body struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "validation failed", body.Error)
	assert.Equal(t, "must be a US zip code", body.Fields["zipCode"])
}

func TestRespondHidesUpstreamDetails(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		err  error
		code int
		want string
	}{
		{fmt.Errorf("maps request geocode/json: dial tcp: %w", ErrUpstream), http.StatusBadGateway, "upstream service error"},
		{fmt.Errorf("court search is not configured: %w", ErrUnavailable), http.StatusServiceUnavailable, "service unavailable"},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		Respond(c, tc.err)

		assert.Equal(t, tc.code, w.Code)
		var body map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, tc.want, body["error"])
	}
}
