package entity

// ChannelType is the delivery channel a one-time code was sent through.
type ChannelType string

const (
	ChannelEmail ChannelType = "email"
	ChannelSMS   ChannelType = "sms"
)

func (c ChannelType) String() string {
	return string(c)
}

// IsValid reports whether c is a supported channel.
func (c ChannelType) IsValid() bool {
	switch c {
	case ChannelEmail, ChannelSMS:
		return true
	default:
		return false
	}
}

// AuditAction is the kind of attempt recorded in the audit log.
type AuditAction string

const (
	AuditActionSend   AuditAction = "send"
	AuditActionVerify AuditAction = "verify"
)

func (a AuditAction) String() string {
	return string(a)
}
