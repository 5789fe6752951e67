package mail

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/samber/lo"
)

// HTTPAPIConfig configures the HTTP API transport.
type HTTPAPIConfig struct {
	Host string
	Port int
	// BaseURL replaces https://Host:Port when set.
	BaseURL string
	// APIKey is sent in the "api-key" header.
	APIKey     string
	Sender     string
	SenderName string
	Timeout    time.Duration
}

// HTTPAPI sends mail through a transactional email API
// (POST {base}/v3/smtp/email).
type HTTPAPI struct {
	client     *resty.Client
	apiKey     string
	sender     string
	senderName string
	configured bool
}

type apiAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type apiEmail struct {
	Sender      apiAddress   `json:"sender"`
	To          []apiAddress `json:"to"`
	Cc          []apiAddress `json:"cc,omitempty"`
	Bcc         []apiAddress `json:"bcc,omitempty"`
	Subject     string       `json:"subject"`
	HTMLContent string       `json:"htmlContent,omitempty"`
	TextContent string       `json:"textContent,omitempty"`
}

// NewHTTPAPI constructs the HTTP API transport.
func NewHTTPAPI(cfg HTTPAPIConfig) *HTTPAPI {
	base := cfg.BaseURL
	if base == "" && cfg.Host != "" && cfg.Port != 0 {
		base = fmt.Sprintf("https://%s:%d", cfg.Host, cfg.Port)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := resty.New().
		SetBaseURL(strings.TrimSuffix(base, "/")).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")

	return &HTTPAPI{
		client:     client,
		apiKey:     cfg.APIKey,
		sender:     cfg.Sender,
		senderName: cfg.SenderName,
		configured: base != "" && cfg.APIKey != "" && cfg.Sender != "",
	}
}

// Send posts msg to the provider.
func (h *HTTPAPI) Send(ctx context.Context, msg Message) error {
	if !h.configured {
		return ErrNotConfigured
	}

	if len(msg.recipients()) == 0 {
		return ErrNoRecipients
	}

	sender := apiAddress{Email: h.sender, Name: h.senderName}
	if msg.From != "" {
		sender = apiAddress{Email: msg.From}
	}

	toAddr := func(email string, _ int) apiAddress { return apiAddress{Email: email} }

	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader("api-key", h.apiKey).
		SetBody(apiEmail{
			Sender:      sender,
			To:          lo.Map(msg.To, toAddr),
			Cc:          lo.Map(msg.Cc, toAddr),
			Bcc:         lo.Map(msg.Bcc, toAddr),
			Subject:     msg.Subject,
			HTMLContent: msg.HTMLBody,
			TextContent: msg.TextBody,
		}).
		Post("/v3/smtp/email")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRejected, err)
	}

	if resp.StatusCode() < http.StatusOK || resp.StatusCode() >= http.StatusMultipleChoices {
		return fmt.Errorf("%w: %s", ErrRejected, strings.TrimSpace(resp.String()))
	}

	return nil
}

// Close releases idle connections.
func (h *HTTPAPI) Close() error {
	h.client.GetClient().CloseIdleConnections()
	return nil
}
