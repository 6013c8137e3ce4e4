package analytics

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storeassist/internal/common/logger"
)

func newTestService(t *testing.T, handler http.HandlerFunc) *Service {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return NewService(client, "assistant-events", logger.NewTestLogger(t))
}

func TestLogEvent(t *testing.T) {
	var captured map[string]interface{}
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &captured)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"result": "created"}`))
	})

	err := svc.LogEvent(context.Background(), Event{
		Type:      EventChatTurn,
		Tenant:    "butchers",
		SessionID: "s1",
		Channel:   "web",
		Intent:    "check_delivery",
		Mode:      "flagship",
		OK:        true,
		LatencyMs: 12,
	})
	require.NoError(t, err)

	assert.Equal(t, "chat_turn", captured["type"])
	assert.Equal(t, "butchers", captured["tenant"])
	assert.Equal(t, "check_delivery", captured["intent"])
	assert.NotEmpty(t, captured["@timestamp"])
}

func TestLogEventServerError(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error": "boom"}`))
	})

	err := svc.LogEvent(context.Background(), Event{Type: EventChatTurn, Tenant: "butchers"})
	assert.Error(t, err)
}

func TestLogTurnSwallowsFailures(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	// must not panic or propagate
	svc.LogTurn(context.Background(), "butchers", "s1", "web", "faq", "hybrid", true, 40*time.Millisecond)
}
