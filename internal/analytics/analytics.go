// Package analytics ships per-turn events to Elasticsearch for the
// reporting dashboards. Indexing is fire-and-forget: a failed write is
// logged and never blocks a turn.
package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/google/uuid"

	apperrors "storeassist/internal/common/errors"
	"storeassist/internal/common/logger"
)

// Event types.
const (
	EventChatTurn = "chat_turn"
	EventError    = "error"
)

// Event is one analytics document.
type Event struct {
	Type      string    `json:"type"`
	Tenant    string    `json:"tenant"`
	SessionID string    `json:"session_id"`
	Channel   string    `json:"channel"`
	Intent    string    `json:"intent,omitempty"`
	Mode      string    `json:"mode,omitempty"`
	OK        bool      `json:"ok"`
	LatencyMs int64     `json:"latency_ms"`
	Timestamp time.Time `json:"@timestamp"`
}

// Service indexes events into a single Elasticsearch index.
type Service struct {
	client *elasticsearch.Client
	index  string
	log    logger.Logger
}

func NewService(client *elasticsearch.Client, index string, log logger.Logger) *Service {
	return &Service{client: client, index: index, log: log}
}

// LogEvent indexes one event document.
func (s *Service) LogEvent(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	body, err := json.Marshal(event)
	if err != nil {
		return apperrors.NewAnalyticsFailedError(err)
	}

	res, err := s.client.Index(
		s.index,
		bytes.NewReader(body),
		s.client.Index.WithContext(ctx),
		s.client.Index.WithDocumentID(uuid.NewString()),
	)
	if err != nil {
		return apperrors.NewAnalyticsFailedError(err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return apperrors.NewAnalyticsFailedError(fmt.Errorf("index response: %s", res.Status()))
	}
	return nil
}

// LogTurn is the orchestrator-facing helper: build the chat_turn event,
// log and swallow failures.
func (s *Service) LogTurn(ctx context.Context, tenant, sessionID, channel, intent, mode string, ok bool, latency time.Duration) {
	err := s.LogEvent(ctx, Event{
		Type:      EventChatTurn,
		Tenant:    tenant,
		SessionID: sessionID,
		Channel:   channel,
		Intent:    intent,
		Mode:      mode,
		OK:        ok,
		LatencyMs: latency.Milliseconds(),
	})
	if err != nil {
		s.log.Warn("analytics event write failed", map[string]interface{}{
			"tenant": tenant, "error": err.Error(),
		})
	}
}
