// Package crm records leads and conversation history in Postgres. Writes
// are best-effort from the orchestrator's point of view: a CRM failure is
// logged and never fails the customer's turn.
package crm

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	apperrors "storeassist/internal/common/errors"
	"storeassist/internal/common/logger"
)

// Lead is one customer record, deduped per tenant by phone when present,
// else by session id.
type Lead struct {
	ID        string
	Tenant    string
	Phone     string
	SessionID string
	Status    string
	Tags      []string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ConversationEntry is one appended turn on a lead.
type ConversationEntry struct {
	LeadID    string
	SessionID string
	UserText  string
	Reply     string
	Intent    string
	Mode      string
	CreatedAt time.Time
}

// Service is the Postgres-backed CRM writer.
type Service struct {
	db  *sql.DB
	log logger.Logger
}

func NewService(db *sql.DB, log logger.Logger) *Service {
	return &Service{db: db, log: log}
}

const upsertByPhoneQuery = `
	INSERT INTO leads (id, tenant, phone, session_id, status, created_at, updated_at)
	VALUES ($1, $2, $3, $4, 'open', $5, $5)
	ON CONFLICT (tenant, phone) DO UPDATE
	SET session_id = EXCLUDED.session_id, updated_at = EXCLUDED.updated_at
	RETURNING id`

const upsertBySessionQuery = `
	INSERT INTO leads (id, tenant, session_id, status, created_at, updated_at)
	VALUES ($1, $2, $3, 'open', $4, $4)
	ON CONFLICT (tenant, session_id) DO UPDATE
	SET updated_at = EXCLUDED.updated_at
	RETURNING id`

// UpsertLead creates or refreshes the lead for a turn and returns its id.
func (s *Service) UpsertLead(ctx context.Context, tenant, sessionID, phone string) (string, error) {
	now := time.Now().UTC()
	newID := uuid.NewString()

	var (
		id  string
		err error
	)
	if phone != "" {
		err = s.db.QueryRowContext(ctx, upsertByPhoneQuery, newID, tenant, phone, sessionID, now).Scan(&id)
	} else {
		err = s.db.QueryRowContext(ctx, upsertBySessionQuery, newID, tenant, sessionID, now).Scan(&id)
	}
	if err != nil {
		return "", apperrors.NewCRMWriteFailedError(err)
	}
	return id, nil
}

const appendConversationQuery = `
	INSERT INTO conversations (id, lead_id, session_id, user_text, reply, intent, mode, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

// AppendConversation stores one turn against a lead.
func (s *Service) AppendConversation(ctx context.Context, e ConversationEntry) error {
	createdAt := e.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, appendConversationQuery,
		uuid.NewString(), e.LeadID, e.SessionID, e.UserText, e.Reply, e.Intent, e.Mode, createdAt)
	if err != nil {
		return apperrors.NewCRMWriteFailedError(err)
	}
	return nil
}

// RecordTurn is the orchestrator-facing helper: upsert the lead, append
// the conversation, log and swallow failures.
func (s *Service) RecordTurn(ctx context.Context, tenant, sessionID, phone string, e ConversationEntry) {
	leadID, err := s.UpsertLead(ctx, tenant, sessionID, phone)
	if err != nil {
		s.log.Warn("crm lead upsert failed", map[string]interface{}{
			"tenant": tenant, "error": err.Error(),
		})
		return
	}
	e.LeadID = leadID
	e.SessionID = sessionID
	if err := s.AppendConversation(ctx, e); err != nil {
		s.log.Warn("crm conversation append failed", map[string]interface{}{
			"tenant": tenant, "lead_id": leadID, "error": err.Error(),
		})
	}
}
