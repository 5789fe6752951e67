package mail

import (
	"context"
	"errors"
	"io"
)

const (
	// DriverSMTP selects the SMTP transport.
	DriverSMTP = "smtp"
	// DriverAPI selects the HTTP API transport.
	DriverAPI = "api"
)

var (
	// ErrNotConfigured is returned when transport credentials are missing.
	ErrNotConfigured = errors.New("SMTP configuration is missing")
	// ErrRejected is returned when the provider refuses the message.
	ErrRejected = errors.New("Failed to send email")
	// ErrNoRecipients is returned when To/Cc/Bcc are all empty.
	ErrNoRecipients = errors.New("no recipients provided")
	// ErrNoSender is returned when both Message.From and the configured default From are empty.
	ErrNoSender = errors.New("no sender provided")
	// ErrUnknownDriver is returned by NewFromDriver for an unsupported driver.
	ErrUnknownDriver = errors.New("unknown mail driver")
)

// Message represents an email payload.
type Message struct {
	// From is an optional explicit sender; the transport default is used when empty.
	From string
	To   []string
	Cc   []string
	Bcc  []string

	Subject string
	// TextBody is the plain-text body; preferred when HTMLBody is empty.
	TextBody string
	HTMLBody string
}

func (m Message) recipients() []string {
	out := make([]string, 0, len(m.To)+len(m.Cc)+len(m.Bcc))
	out = append(out, m.To...)
	out = append(out, m.Cc...)
	return append(out, m.Bcc...)
}

// Mail abstracts an email provider.
type Mail interface {
	io.Closer
	// Send dispatches the given message using the underlying provider.
	Send(ctx context.Context, msg Message) error
}

// FactoryOptions carries the settings for every transport.
type FactoryOptions struct {
	SMTP SMTPConfig
	API  HTTPAPIConfig
}

// NewFromDriver builds the transport named by driver.
func NewFromDriver(driver string, opts FactoryOptions) (Mail, error) {
	switch driver {
	case DriverSMTP:
		return NewSMTP(opts.SMTP), nil
	case DriverAPI, "":
		return NewHTTPAPI(opts.API), nil
	default:
		return nil, ErrUnknownDriver
	}
}
