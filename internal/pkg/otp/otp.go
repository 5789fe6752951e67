package otp

import (
	"crypto/rand"
	"io"
	"math/big"
	"strconv"
)

const (
	// MinCode is the smallest code that can be generated.
	MinCode = 100000
	// MaxCode is the largest code that can be generated.
	MaxCode = 999999
)

// Generator creates one-time codes.
type Generator interface {
	Generate() (string, error)
}

// NumericGenerator produces 6-digit decimal codes in [MinCode, MaxCode].
type NumericGenerator struct {
	reader io.Reader
}

// NewNumeric returns a generator backed by crypto/rand.
func NewNumeric() *NumericGenerator {
	return &NumericGenerator{reader: rand.Reader}
}

// NewNumericWithReader returns a generator reading entropy from r.
func NewNumericWithReader(r io.Reader) *NumericGenerator {
	return &NumericGenerator{reader: r}
}

// Generate returns a new code. The leading digit is never zero.
func (g *NumericGenerator) Generate() (string, error) {
	n, err := rand.Int(g.reader, big.NewInt(MaxCode-MinCode+1))
	if err != nil {
		return "", err
	}

	return strconv.FormatInt(n.Int64()+MinCode, 10), nil
}
