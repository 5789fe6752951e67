package db

import (
	"context"

	"github.com/shandysiswandi/clearshot/internal/auth/entity"
)

const sqlCreateOTP = `
INSERT INTO otp_codes (id, type, value, code, expires_at, verified, created_at)
VALUES ($1, $2, $3, $4, $5, false, $6)`

func (s *DB) CreateOTP(ctx context.Context, in entity.OTP) (err error) {
	ctx, span := s.startSpan(ctx, "CreateOTP")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, sqlCreateOTP,
		in.ID,
		in.Type.String(),
		in.Value,
		in.Code,
		in.ExpiresAt,
		in.CreatedAt,
	)
	err = s.mapError(err)
	return err
}

const sqlCreateAuditEntry = `
INSERT INTO otp_logs (id, action, type, value, success, error_message, metadata, created_at)
VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, $8)`

func (s *DB) CreateAuditEntry(ctx context.Context, in entity.AuditEntry) (err error) {
	ctx, span := s.startSpan(ctx, "CreateAuditEntry")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, sqlCreateAuditEntry,
		in.ID,
		in.Action.String(),
		in.Type.String(),
		in.Value,
		in.Success,
		in.ErrorMessage,
		in.Metadata,
		in.CreatedAt,
	)
	err = s.mapError(err)
	return err
}
