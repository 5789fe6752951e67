package entity

import "errors"

var (
	ErrInvalidCode  = errors.New("Invalid OTP code")
	ErrExpiredCode  = errors.New("OTP has expired")
	ErrInvalidToken = errors.New("Invalid token")
	ErrExpiredToken = errors.New("Token expired")

	// ErrDelivery marks a provider that refused or failed to deliver a code.
	ErrDelivery = errors.New("Failed to send OTP")

	// ErrConfiguration marks a missing secret or provider credential.
	ErrConfiguration = errors.New("Server configuration error")
)
