package pg

import (
	"context"
	"database/sql"
	"errors"

	"github.com/JuanPaGargoo/pos-core-api/internal/audit"
	"github.com/JuanPaGargoo/pos-core-api/internal/ids"
)

var _ audit.Store = (*Store)(nil)

func (s *Store) Append(ctx context.Context, e audit.Entry) error {
	if s.db == nil {
		return errors.New("database connection unavailable")
	}
	if e.ID == "" {
		e.ID = ids.New()
	}
	details := []byte("{}")
	if len(e.Details) > 0 {
		details = e.Details
	}
	_, err := s.db.ExecContext(ctx, `
		insert into audit_log (id, actor_id, action, entity_type, entity_id, request_id, details, created_at)
		values ($1, $2, $3, $4, $5, $6, $7, $8)
	`, e.ID, nullIfEmpty(e.ActorID), e.Action, nullIfEmpty(e.EntityType), nullIfEmpty(e.EntityID), nullIfEmpty(e.RequestID), details, e.CreatedAt)
	return err
}

func (s *Store) List(ctx context.Context, page, limit int) ([]audit.Entry, int, error) {
	if s.db == nil {
		return nil, 0, errors.New("database connection unavailable")
	}
	var total int
	if err := s.db.QueryRowContext(ctx, `select count(*) from audit_log`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := s.db.QueryContext(ctx, `
		select id, coalesce(actor_id,''), action, coalesce(entity_type,''), coalesce(entity_id,''), coalesce(request_id,''), details, created_at
		from audit_log
		order by created_at desc, id desc
		limit $1 offset $2
	`, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	entries := []audit.Entry{}
	for rows.Next() {
		var (
			e       audit.Entry
			details sql.RawBytes
		)
		if err := rows.Scan(&e.ID, &e.ActorID, &e.Action, &e.EntityType, &e.EntityID, &e.RequestID, &details, &e.CreatedAt); err != nil {
			return nil, 0, err
		}
		if len(details) > 0 {
			e.Details = append([]byte(nil), details...)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}
