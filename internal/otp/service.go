// Package otp issues and verifies single-use numeric login codes
// scoped to (barbershop, email).
package otp

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/otavioajr/shaving-project/pkg/cache"
	"go.uber.org/zap"
)

const otpKeyPrefix = "barbershop:otp:"

// Sender delivers a code out-of-band (email, SMS). Implementations
// distinguish retryable from permanent failures; delivery itself is
// outside this package.
type Sender interface {
	SendOTP(ctx context.Context, email, code string) error
}

// NopSender discards codes. Used in tests and local development.
type NopSender struct{}

// SendOTP implements Sender.
func (NopSender) SendOTP(context.Context, string, string) error { return nil }

// Service generates and verifies OTP codes.
type Service struct {
	cache  cache.Cache
	sender Sender
	ttl    time.Duration
	log    *zap.Logger
}

// NewService creates an OTP service.
func NewService(c cache.Cache, sender Sender, ttl time.Duration, log *zap.Logger) *Service {
	return &Service{
		cache:  c,
		sender: sender,
		ttl:    ttl,
		log:    log,
	}
}

func otpKey(barbershopID, email string) string {
	return otpKeyPrefix + barbershopID + ":" + email
}

// Request generates a 6-digit code, stores it with the configured TTL
// and hands it to the sender. Callers must not reveal to the client
// whether the email exists.
func (s *Service) Request(ctx context.Context, barbershopID, email string) error {
	code, err := generateCode()
	if err != nil {
		return fmt.Errorf("failed to generate OTP code: %w", err)
	}

	if err := s.cache.Set(ctx, otpKey(barbershopID, email), code, s.ttl); err != nil {
		return fmt.Errorf("failed to store OTP code: %w", err)
	}

	if err := s.sender.SendOTP(ctx, email, code); err != nil {
		// Delivery failures are logged, not surfaced: the response must
		// stay identical whether or not the account exists.
		s.log.Warn("failed to deliver OTP",
			zap.String("barbershop_id", barbershopID),
			zap.Error(err))
	}

	return nil
}

// Verify compares the presented code with the stored one. On match the
// entry is deleted so the code cannot be replayed; on mismatch any
// stored entry is left untouched for a retry within the TTL.
func (s *Service) Verify(ctx context.Context, barbershopID, email, code string) (bool, error) {
	key := otpKey(barbershopID, email)

	stored, err := s.cache.Get(ctx, key)
	if errors.Is(err, cache.ErrCacheMiss) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to look up OTP code: %w", err)
	}

	if stored != code {
		return false, nil
	}

	if err := s.cache.Delete(ctx, key); err != nil {
		return false, fmt.Errorf("failed to consume OTP code: %w", err)
	}

	return true, nil
}

// generateCode returns a zero-padded 6-digit numeric code.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
