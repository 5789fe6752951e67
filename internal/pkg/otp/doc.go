// Package otp generates one-time numeric codes.
//
// Codes are drawn uniformly from a fixed range using crypto/rand. They are
// meant to be delivered out of band (email, SMS) and checked once.
package otp
