// Package mail sends email through a pluggable transport.
//
// Two transports are provided: SMTP (net/smtp) and HTTPAPI, a client for
// Brevo-style transactional email APIs. Both report ErrNotConfigured at send
// time when credentials are absent, so a deployment without email can still
// boot and serve other channels.
package mail
