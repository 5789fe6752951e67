package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shandysiswandi/clearshot/internal/auth/entity"
	"github.com/shandysiswandi/clearshot/internal/pkg/valueobject"
)

const sqlGetLatestUnverifiedOTP = `
SELECT id, type, value, code, expires_at, verified, created_at
FROM otp_codes
WHERE type = $1 AND value = $2 AND code = $3 AND verified = false
ORDER BY created_at DESC, id DESC
LIMIT 1`

// GetLatestUnverifiedOTP returns the newest unconsumed record matching the
// recipient and code digest, or goerror.ErrNotFound.
func (s *DB) GetLatestUnverifiedOTP(ctx context.Context, typ entity.ChannelType, value, code string) (_ *entity.OTP, err error) {
	ctx, span := s.startSpan(ctx, "GetLatestUnverifiedOTP")
	defer func() { s.endSpan(span, err) }()

	var (
		o   entity.OTP
		t   string
		exp pgtype.Timestamptz
		crt pgtype.Timestamptz
	)

	err = s.conn.QueryRow(ctx, sqlGetLatestUnverifiedOTP, typ.String(), value, code).
		Scan(&o.ID, &t, &o.Value, &o.Code, &exp, &o.Verified, &crt)
	if err = s.mapError(err); err != nil {
		return nil, err
	}

	o.Type = entity.ChannelType(t)
	o.ExpiresAt = exp.Time
	o.CreatedAt = crt.Time

	return &o, nil
}

const sqlListAuditEntries = `
SELECT id, action, type, value, success, COALESCE(error_message, ''), metadata, created_at
FROM otp_logs
WHERE ($1::text = '' OR value = $1::text)
ORDER BY created_at DESC, id DESC
LIMIT $2`

// ListAuditEntries returns the newest audit entries first.
func (s *DB) ListAuditEntries(ctx context.Context, filter entity.AuditFilter) (_ []entity.AuditEntry, err error) {
	ctx, span := s.startSpan(ctx, "ListAuditEntries")
	defer func() { s.endSpan(span, err) }()

	rows, err := s.conn.Query(ctx, sqlListAuditEntries, filter.Value, filter.Limit)
	if err = s.mapError(err); err != nil {
		return nil, err
	}

	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.AuditEntry, error) {
		var (
			e      entity.AuditEntry
			action string
			typ    string
			meta   valueobject.JSONMap
			crt    pgtype.Timestamptz
		)

		if err := row.Scan(&e.ID, &action, &typ, &e.Value, &e.Success, &e.ErrorMessage, &meta, &crt); err != nil {
			return e, err
		}

		e.Action = entity.AuditAction(action)
		e.Type = entity.ChannelType(typ)
		e.Metadata = meta
		e.CreatedAt = crt.Time
		return e, nil
	})
	if err = s.mapError(err); err != nil {
		return nil, err
	}

	return out, nil
}
