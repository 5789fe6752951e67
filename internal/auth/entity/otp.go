package entity

import (
	"strings"
	"time"

	"github.com/shandysiswandi/clearshot/internal/pkg/valueobject"
)

// OTP is a stored one-time code. Code holds the keyed digest, never the
// plain value.
type OTP struct {
	ID        int64
	Type      ChannelType
	Value     string
	Code      string
	ExpiresAt time.Time
	Verified  bool
	CreatedAt time.Time
}

// IsExpired reports whether the code can no longer be used at now.
func (o OTP) IsExpired(now time.Time) bool {
	return now.After(o.ExpiresAt)
}

// AuditEntry is one send or verify attempt.
type AuditEntry struct {
	ID           int64
	Action       AuditAction
	Type         ChannelType
	Value        string
	Success      bool
	ErrorMessage string
	Metadata     valueobject.JSONMap
	CreatedAt    time.Time
}

// MaskedRecipient hides most of the recipient for display.
func (a AuditEntry) MaskedRecipient() string {
	return MaskRecipient(a.Type, a.Value)
}

// MaskRecipient renders "ab***@domain.com" for emails and "+155******67"
// for phone numbers.
func MaskRecipient(t ChannelType, v string) string {
	switch t {
	case ChannelEmail:
		name, domain, ok := strings.Cut(v, "@")
		if !ok {
			return "***"
		}
		if len(name) > 2 {
			name = name[:2]
		}
		return name + "***@" + domain

	case ChannelSMS:
		if len(v) < 6 {
			return "******"
		}
		return v[:4] + "******" + v[len(v)-2:]

	default:
		return "***"
	}
}

// AuditFilter narrows an audit listing.
type AuditFilter struct {
	Value string
	Limit int
}
