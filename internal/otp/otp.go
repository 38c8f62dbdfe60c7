package otp

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"
)

var (
	ErrNotFound = errors.New("otp not found or expired")
	ErrMismatch = errors.New("otp does not match")
)

// Store keeps one pending code per key. Verify consumes the code on success only.
type Store interface {
	Save(ctx context.Context, key, code string, ttl time.Duration) error
	Verify(ctx context.Context, key, code string) error
}

const codeDigits = 6

// NewCode returns a zero-padded random numeric code.
func NewCode() (string, error) {
	max := big.NewInt(1_000_000)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%0*d", codeDigits, n.Int64()), nil
}

// Key namespaces codes by purpose and subject, e.g. "pass:42".
func Key(purpose string, id int64) string {
	return fmt.Sprintf("%s:%d", purpose, id)
}
