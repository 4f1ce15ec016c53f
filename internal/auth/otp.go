// Package auth implements one-time-passcode verification and session tokens.
package auth

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"tally/internal/core"
)

// DefaultOTPTTL is how long an issued passcode stays valid.
const DefaultOTPTTL = 5 * time.Minute

var (
	ErrUserNotFound = errors.New("user not found")
	ErrOTPExpired   = errors.New("OTP has expired, request a new one")
	ErrOTPInvalid   = errors.New("invalid OTP")
)

// GenerateCode returns a uniformly random 6-digit numeric code,
// zero-padded.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// CheckCode validates a submitted passcode against the stored user state at
// the given instant. The code must match by string equality and now must not
// be past the stored expiry. Failure causes are reported in a fixed order:
// missing user, then expiry, then mismatch — so a consumed code (cleared
// fields) reads as invalid, not expired.
func CheckCode(u *core.User, submitted string, now time.Time) error {
	if u == nil {
		return ErrUserNotFound
	}
	if !u.OTPExpiry.IsZero() && now.After(u.OTPExpiry) {
		return ErrOTPExpired
	}
	if u.OTP == "" || u.OTPExpiry.IsZero() || u.OTP != submitted {
		return ErrOTPInvalid
	}
	return nil
}
