package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"tally/internal/auth"
	"tally/internal/notify"
	"tally/internal/storage"
)

var ErrInvalidEmail = errors.New("a valid email address is required")

// AuthService runs the passwordless login flow: issue a passcode over email,
// then trade a verified passcode for a session token.
type AuthService struct {
	store    *storage.SQLiteRepository
	notifier notify.Notifier
	sessions *auth.JWTManager
	otpTTL   time.Duration
	now      func() time.Time
}

func NewAuthService(store *storage.SQLiteRepository, notifier notify.Notifier, sessions *auth.JWTManager, otpTTL time.Duration) *AuthService {
	return &AuthService{
		store:    store,
		notifier: notifier,
		sessions: sessions,
		otpTTL:   otpTTL,
		now:      time.Now,
	}
}

// Login issues a fresh passcode for the email and dispatches it. An unseen
// email registers a new user on the spot. The passcode is committed before
// dispatch, so a delivery failure leaves it live: the user can retry
// verification if the email arrived late, or log in again for a new code.
func (s *AuthService) Login(ctx context.Context, email, username string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return ErrInvalidEmail
	}

	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("look up user: %w", err)
	}
	if user == nil {
		user, err = s.store.CreateUser(ctx, email, strings.TrimSpace(username))
		if err != nil {
			return fmt.Errorf("register user: %w", err)
		}
	}

	code, err := auth.GenerateCode()
	if err != nil {
		return err
	}
	expiry := s.now().Add(s.otpTTL)
	if err := s.store.SetUserOTP(ctx, user.ID, code, expiry); err != nil {
		return fmt.Errorf("store otp: %w", err)
	}
	slog.InfoContext(ctx, "OTP issued", "user_id", user.ID, "expiry", expiry)

	if err := s.notifier.Send(ctx, email, code); err != nil {
		return fmt.Errorf("send otp: %w", err)
	}
	return nil
}

// VerifyOTP checks a submitted passcode and, on success, consumes it and
// returns a signed session token.
func (s *AuthService) VerifyOTP(ctx context.Context, email, submitted string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return "", fmt.Errorf("look up user: %w", err)
	}
	if err := auth.CheckCode(user, strings.TrimSpace(submitted), s.now()); err != nil {
		return "", err
	}

	token, err := s.sessions.Generate(user)
	if err != nil {
		return "", fmt.Errorf("issue session: %w", err)
	}
	if err := s.store.ClearUserOTP(ctx, user.ID); err != nil {
		return "", fmt.Errorf("consume otp: %w", err)
	}

	slog.InfoContext(ctx, "User logged in", "user_id", user.ID)
	return token, nil
}
