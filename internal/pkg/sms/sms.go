// Package sms sends text messages through Twilio's REST API.
package sms

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultBaseURL is the Twilio REST endpoint.
const DefaultBaseURL = "https://api.twilio.com"

var (
	// ErrNotConfigured is returned when Twilio credentials are missing.
	ErrNotConfigured = errors.New("Twilio configuration is missing")
	// ErrRejected is returned when Twilio refuses the message.
	ErrRejected = errors.New("Failed to send SMS")
)

// SMS sends a text body to a phone number.
type SMS interface {
	Send(ctx context.Context, to, body string) error
}

// TwilioConfig configures the Twilio client.
type TwilioConfig struct {
	AccountSID string
	AuthToken  string
	From       string
	// BaseURL overrides DefaultBaseURL.
	BaseURL string
	Timeout time.Duration
}

// Twilio implements SMS with the Messages resource.
type Twilio struct {
	client *resty.Client
	sid    string
	from   string
	ok     bool
}

// NewTwilio builds a Twilio client. Missing credentials surface as
// ErrNotConfigured on Send.
func NewTwilio(cfg TwilioConfig) *Twilio {
	base := cfg.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := resty.New().
		SetBaseURL(strings.TrimSuffix(base, "/")).
		SetTimeout(timeout).
		SetBasicAuth(cfg.AccountSID, cfg.AuthToken)

	return &Twilio{
		client: client,
		sid:    cfg.AccountSID,
		from:   cfg.From,
		ok:     cfg.AccountSID != "" && cfg.AuthToken != "" && cfg.From != "",
	}
}

// Send creates a message resource.
func (t *Twilio) Send(ctx context.Context, to, body string) error {
	if !t.ok {
		return ErrNotConfigured
	}

	resp, err := t.client.R().
		SetContext(ctx).
		SetPathParam("sid", t.sid).
		SetFormData(map[string]string{
			"To":   to,
			"From": t.from,
			"Body": body,
		}).
		Post("/2010-04-01/Accounts/{sid}/Messages.json")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRejected, err)
	}

	if resp.StatusCode() < http.StatusOK || resp.StatusCode() >= http.StatusMultipleChoices {
		return fmt.Errorf("%w: %s", ErrRejected, strings.TrimSpace(resp.String()))
	}

	return nil
}
