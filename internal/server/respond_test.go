package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/ozcanhakn/kanban-app/internal/service"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: card 1 not found", service.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("%w: no access", service.ErrForbidden), http.StatusForbidden},
		{fmt.Errorf("%w: bad title", service.ErrInvalidInput), http.StatusBadRequest},
		{fmt.Errorf("%w: taken", service.ErrConflict), http.StatusConflict},
		{fmt.Errorf("%w: full", service.ErrWIPLimitReached), http.StatusConflict},
		{fmt.Errorf("%w: expired", service.ErrUnauthorized), http.StatusUnauthorized},
		{errors.New("failed to load board"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}

func TestClientMessage(t *testing.T) {
	assert.Equal(t, "card 4 not found", clientMessage(fmt.Errorf("%w: card 4 not found", service.ErrNotFound)))
	assert.Equal(t, `column "Doing" allows at most 2 cards`,
		clientMessage(fmt.Errorf(`%w: column "Doing" allows at most 2 cards`, service.ErrWIPLimitReached)))
	assert.Equal(t, "failed to load board", clientMessage(errors.New("failed to load board")))
}

func decodeError(t *testing.T, body string) (int, string) {
	t.Helper()
	s := &Server{log: zaptest.NewLogger(t)}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	rec := httptest.NewRecorder()

	var dst service.CreateCardRequest
	ok := s.decodeJSON(rec, req, &dst)
	require.False(t, ok)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec.Code, resp["error"]
}

func TestDecodeJSONErrors(t *testing.T) {
	code, msg := decodeError(t, `{"title": "x",}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, msg, "badly-formed JSON")

	_, msg = decodeError(t, `{"title": 5}`)
	assert.Contains(t, msg, `invalid value for the "title" field`)

	_, msg = decodeError(t, `{"title": "x", "owner": 1}`)
	assert.Equal(t, `Request body contains unknown field "owner"`, msg)

	_, msg = decodeError(t, ``)
	assert.Equal(t, "Request body must not be empty", msg)

	code, _ = decodeError(t, `{"title": "`+strings.Repeat("a", maxJSONBodyBytes)+`"}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, code)
}

func TestDecodeJSON(t *testing.T) {
	s := &Server{log: zaptest.NewLogger(t)}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"title":"Ship it","priority":"high"}`))
	var dst service.CreateCardRequest
	require.True(t, s.decodeJSON(httptest.NewRecorder(), req, &dst))
	assert.Equal(t, "Ship it", dst.Title)
	assert.Equal(t, "high", dst.Priority)
}

func TestBearerToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/boards?token=from-query", nil)
	assert.Equal(t, "from-query", bearerToken(req))

	req.Header.Set("Authorization", "Bearer abc.def")
	assert.Equal(t, "abc.def", bearerToken(req))

	req.Header.Set("Authorization", "Basic Zm9vOmJhcg==")
	assert.Empty(t, bearerToken(req), "a malformed header is not overridden by the query")
}

func TestAllowedOrigin(t *testing.T) {
	s := &Server{corsOrigins: []string{"https://app.example.com"}}

	req := httptest.NewRequest(http.MethodGet, "/boards/1/ws", nil)
	assert.True(t, s.allowedOrigin(req), "non-browser clients send no origin")

	req.Header.Set("Origin", "https://app.example.com")
	assert.True(t, s.allowedOrigin(req))

	req.Header.Set("Origin", "https://evil.example.com")
	assert.False(t, s.allowedOrigin(req))

	s.corsOrigins = []string{"https://*", "http://*.example.com"}
	req.Header.Set("Origin", "https://anything.test")
	assert.True(t, s.allowedOrigin(req))
	req.Header.Set("Origin", "http://app.example.com")
	assert.True(t, s.allowedOrigin(req))
	req.Header.Set("Origin", "http://localhost:3000")
	assert.False(t, s.allowedOrigin(req))
}
