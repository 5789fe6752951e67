package db

import (
	"context"
)

const sqlMarkOTPVerified = `
UPDATE otp_codes SET verified = true
WHERE id = $1 AND verified = false`

// MarkOTPVerified flips the record to verified. It reports false when the
// record was already consumed.
func (s *DB) MarkOTPVerified(ctx context.Context, id int64) (_ bool, err error) {
	ctx, span := s.startSpan(ctx, "MarkOTPVerified")
	defer func() { s.endSpan(span, err) }()

	tag, err := s.conn.Exec(ctx, sqlMarkOTPVerified, id)
	if err = s.mapError(err); err != nil {
		return false, err
	}

	return tag.RowsAffected() == 1, nil
}
