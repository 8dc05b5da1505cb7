package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NextStep-Software-Solutions-Inc/emailez.ui-sub000/internal/httpclient"
)

func TestWriteError_AppError(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteError(rr, ErrEmailNotFound)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "EMAIL_NOT_FOUND", body["code"])
	assert.Equal(t, "Email not found", body["message"])
	_, hasDetail := body["detail"]
	assert.False(t, hasDetail)
}

func TestWriteError_Generic(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteError(rr, stderrors.New("db down"))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.NotContains(t, rr.Body.String(), "db down")
}

func TestFromUpstream(t *testing.T) {
	wrap := func(status int, body string) error {
		return fmt.Errorf("loader: %w", &httpclient.HTTPError{StatusCode: status, StatusText: http.StatusText(status), Body: []byte(body)})
	}
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{wrap(400, `{"message":"bad domain"}`), 400, "BAD_REQUEST"},
		{wrap(401, ``), 401, "UNAUTHORIZED"},
		{wrap(404, ``), 404, "NOT_FOUND"},
		{wrap(500, ``), 502, "BAD_GATEWAY"},
		{fmt.Errorf("x: %w", httpclient.ErrTimeout), 504, "UPSTREAM_TIMEOUT"},
	}
	for _, tc := range cases {
		got := FromError(tc.err)
		assert.Equal(t, tc.status, got.HTTPStatus, tc.code)
		assert.Equal(t, tc.code, got.Code)
	}
	assert.Equal(t, "bad domain", FromError(cases[0].err).Detail)
	assert.Nil(t, FromUpstream(stderrors.New("other")))
}

func TestWithDetail_DoesNotMutateBase(t *testing.T) {
	e := ErrBadRequest.WithDetail("x")
	assert.Equal(t, "x", e.Detail)
	assert.Empty(t, ErrBadRequest.Detail)
}

func TestWriteTooManyRequests(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteTooManyRequests(rr, 1500*time.Millisecond)
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "2", rr.Header().Get("Retry-After"))
}
