package entity

import (
	"testing"
	"time"
)

func TestMaskRecipient(t *testing.T) {
	tests := []struct {
		name string
		typ  ChannelType
		in   string
		want string
	}{
		{name: "email", typ: ChannelEmail, in: "abcdef@domain.com", want: "ab***@domain.com"},
		{name: "short email name", typ: ChannelEmail, in: "a@domain.com", want: "a***@domain.com"},
		{name: "malformed email", typ: ChannelEmail, in: "nodomain", want: "***"},
		{name: "phone", typ: ChannelSMS, in: "+15551234567", want: "+155******67"},
		{name: "short phone", typ: ChannelSMS, in: "+12", want: "******"},
		{name: "unknown channel", typ: ChannelType("fax"), in: "123", want: "***"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Act
			got := MaskRecipient(tt.typ, tt.in)

			// Assert
			if got != tt.want {
				t.Fatalf("MaskRecipient(%q, %q) = %q, want %q", tt.typ, tt.in, got, tt.want)
			}
		})
	}
}

func TestOTP_IsExpired(t *testing.T) {
	// Arrange
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	o := OTP{ExpiresAt: now.Add(5 * time.Minute)}

	// Act & Assert
	if o.IsExpired(now) {
		t.Fatal("expected fresh code to be usable")
	}
	if o.IsExpired(now.Add(5 * time.Minute)) {
		t.Fatal("expected code to be usable at its expiry instant")
	}
	if !o.IsExpired(now.Add(5*time.Minute + time.Second)) {
		t.Fatal("expected code to be expired after ttl")
	}
}

func TestChannelType_IsValid(t *testing.T) {
	if !ChannelEmail.IsValid() || !ChannelSMS.IsValid() {
		t.Fatal("expected email and sms to be valid")
	}
	if ChannelType("push").IsValid() {
		t.Fatal("expected push to be invalid")
	}
}
