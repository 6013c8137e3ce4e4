package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "storeassist/internal/common/errors"
	"storeassist/internal/common/logger"
	"storeassist/internal/models"
)

type turnHandlerStub struct {
	resp models.TurnResponse
	err  error
	got  models.TurnRequest
}

func (s *turnHandlerStub) Handle(_ context.Context, req models.TurnRequest) (models.TurnResponse, error) {
	s.got = req
	return s.resp, s.err
}

func newTestServer(t *testing.T, stub *turnHandlerStub) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(New(stub, nil, logger.NewTestLogger(t)).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func TestHandleMessage(t *testing.T) {
	stub := &turnHandlerStub{
		resp: models.TurnResponse{
			Reply:  "Yes, we deliver to E1 6AN.",
			Mode:   "flagship",
			Intent: "check_delivery",
		},
	}
	srv := newTestServer(t, stub)

	body := `{"text": "Do you deliver to E1 6AN?", "sessionId": "s1", "channel": "web", "tenant": "butchers"}`
	resp, err := http.Post(srv.URL+"/v1/messages", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out models.TurnResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "Yes, we deliver to E1 6AN.", out.Reply)
	assert.Equal(t, "check_delivery", out.Intent)

	assert.Equal(t, "butchers", stub.got.Tenant)
	assert.Equal(t, models.ChannelWeb, stub.got.Channel)
}

func TestHandleMessageRejectsBadJSON(t *testing.T) {
	srv := newTestServer(t, &turnHandlerStub{})

	resp, err := http.Post(srv.URL+"/v1/messages", "application/json", strings.NewReader("{not json"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandleMessageMapsMalformedInput(t *testing.T) {
	stub := &turnHandlerStub{err: apperrors.NewMalformedInputError("tenant is required")}
	srv := newTestServer(t, stub)

	resp, err := http.Post(srv.URL+"/v1/messages", "application/json", strings.NewReader(`{"text": "hi"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandleMessageInternalError(t *testing.T) {
	stub := &turnHandlerStub{err: assert.AnError}
	srv := newTestServer(t, stub)

	resp, err := http.Post(srv.URL+"/v1/messages", "application/json",
		strings.NewReader(`{"text": "hi", "sessionId": "s1", "tenant": "butchers"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestHandleMessageMethodNotAllowed(t *testing.T) {
	srv := newTestServer(t, &turnHandlerStub{})

	resp, err := http.Get(srv.URL + "/v1/messages")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, &turnHandlerStub{})

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "healthy", out["status"])
}
