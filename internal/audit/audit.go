// Package audit records who did what to which entity. Writes are best
// effort: a failed audit write never fails the operation that triggered it.
package audit

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/JuanPaGargoo/pos-core-api/internal/auth"
	"github.com/JuanPaGargoo/pos-core-api/internal/obs"
)

type ctxKey string

const requestIDKey ctxKey = "audit_request_id"

// WithRequestID attaches the request identifier to the context for audit
// logging.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	requestID = strings.TrimSpace(requestID)
	if requestID == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, requestID)
}

func requestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}

// Entry is one row of the audit trail.
type Entry struct {
	ID         string          `json:"id"`
	ActorID    string          `json:"actor_id,omitempty"`
	Action     string          `json:"action"`
	EntityType string          `json:"entity_type,omitempty"`
	EntityID   string          `json:"entity_id,omitempty"`
	RequestID  string          `json:"request_id,omitempty"`
	Details    json.RawMessage `json:"details,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// Store persists audit entries.
type Store interface {
	Append(ctx context.Context, e Entry) error
	List(ctx context.Context, page, limit int) ([]Entry, int, error)
}

// Trail is the audit writer handed to the HTTP layer. A nil store degrades
// to log-only operation.
type Trail struct {
	store Store
}

// NewTrail constructs the audit trail.
func NewTrail(store Store) *Trail {
	return &Trail{store: store}
}

// Record writes an audit entry for a mutating operation. Actor and request
// id are pulled from the context. Errors are logged and swallowed; callers
// must not see an audit failure.
func (t *Trail) Record(ctx context.Context, action, entityType, entityID string, details map[string]any) {
	action = strings.TrimSpace(action)
	if action == "" {
		return
	}
	entry := Entry{
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		RequestID:  requestIDFromContext(ctx),
		CreatedAt:  time.Now().UTC(),
	}
	if p, ok := auth.PrincipalFromContext(ctx); ok {
		entry.ActorID = p.User.ID
	}
	if len(details) > 0 {
		raw, err := json.Marshal(details)
		if err == nil {
			entry.Details = raw
		}
	}

	line := map[string]any{
		"ts":     entry.CreatedAt.Format(time.RFC3339Nano),
		"type":   "audit",
		"action": entry.Action,
	}
	if entry.ActorID != "" {
		line["actor_id"] = entry.ActorID
	}
	if entry.RequestID != "" {
		line["request_id"] = entry.RequestID
	}
	if entry.EntityType != "" {
		line["entity_type"] = entry.EntityType
	}
	if entry.EntityID != "" {
		line["entity_id"] = entry.EntityID
	}
	if data, err := json.Marshal(line); err == nil {
		obs.Logger().Println(string(data))
	}

	if t == nil || t.store == nil {
		return
	}
	// Detach from the request context so a cancelled request doesn't lose
	// the entry; bound the write instead.
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
	defer cancel()
	if err := t.store.Append(writeCtx, entry); err != nil {
		obs.Logger().Printf(`{"level":"error","msg":"audit append failed","action":%q,"err":%q}`, entry.Action, err.Error())
	}
}

// List pages through the stored trail, newest first.
func (t *Trail) List(ctx context.Context, page, limit int) ([]Entry, int, error) {
	if t.store == nil {
		return []Entry{}, 0, nil
	}
	page, limit = auth.NormalizePage(page, limit)
	return t.store.List(ctx, page, limit)
}
