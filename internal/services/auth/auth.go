// Package auth manages user credentials, session tokens and the password
// reset flow.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"eventRegistry/internal/lib/apperr"
	"eventRegistry/internal/lib/jwt"
	"eventRegistry/internal/lib/logger/sl"
	"eventRegistry/internal/lib/random"
	"eventRegistry/internal/models"
	"eventRegistry/internal/storage"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	MinPasswordLength = 8
	DefaultTokenTTL   = 5 * 24 * time.Hour
	DefaultResetTTL   = time.Hour
	DefaultBcryptCost = 10

	resetTokenBytes = 32
)

type UserStorage interface {
	SaveUser(ctx context.Context, user *models.User) error
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	UserByID(ctx context.Context, id string) (*models.User, error)
	SetResetToken(ctx context.Context, userID, token string, expiresAt time.Time) error
	ResetPassword(ctx context.Context, token, passwordHash string, now time.Time) error
}

type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

type Service struct {
	log          *slog.Logger
	users        UserStorage
	mailer       Mailer
	secret       []byte
	tokenTTL     time.Duration
	resetTTL     time.Duration
	bcryptCost   int
	storeTimeout time.Duration
	now          func() time.Time
	dummyHash    []byte
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithTokenTTL(ttl time.Duration) Option {
	return func(s *Service) { s.tokenTTL = ttl }
}

func WithResetTTL(ttl time.Duration) Option {
	return func(s *Service) { s.resetTTL = ttl }
}

func WithBcryptCost(cost int) Option {
	return func(s *Service) { s.bcryptCost = cost }
}

func WithStoreTimeout(d time.Duration) Option {
	return func(s *Service) { s.storeTimeout = d }
}

// New builds the service. secret signs session tokens for the lifetime of
// the process.
func New(log *slog.Logger, users UserStorage, mailer Mailer, secret []byte, opts ...Option) (*Service, error) {
	s := &Service{
		log:          log,
		users:        users,
		mailer:       mailer,
		secret:       secret,
		tokenTTL:     DefaultTokenTTL,
		resetTTL:     DefaultResetTTL,
		bcryptCost:   DefaultBcryptCost,
		storeTimeout: 3 * time.Second,
		now:          time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	// Compared against when the email is unknown so that login takes the
	// same time whether or not the account exists.
	dummy, err := bcrypt.GenerateFromPassword([]byte("dummy-password-never-matches"), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("services.auth.New: %w", err)
	}
	s.dummyHash = dummy

	return s, nil
}

func (s *Service) TokenTTL() time.Duration {
	return s.tokenTTL
}

// Register creates a user and returns it with a fresh session token.
func (s *Service) Register(ctx context.Context, name, email, password string) (*models.User, string, error) {
	const op = "services.auth.Register"

	log := s.log.With(slog.String("op", op))

	if len(password) < MinPasswordLength {
		return nil, "", apperr.Validation(fmt.Sprintf("Password must be at least %d characters", MinPasswordLength))
	}

	email = normalizeEmail(email)

	storeCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	_, err := s.users.UserByEmail(storeCtx, email)
	switch {
	case err == nil:
		return nil, "", apperr.Conflict("Email already exists")
	case !errors.Is(err, storage.ErrUserNotFound):
		return nil, "", fmt.Errorf("%s: %w", op, apperr.FromStore(err))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, apperr.Internal(err))
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    s.now().UTC(),
	}

	if err = s.users.SaveUser(storeCtx, user); err != nil {
		if errors.Is(err, storage.ErrUserExists) {
			return nil, "", apperr.Conflict("Email already exists")
		}
		return nil, "", fmt.Errorf("%s: %w", op, apperr.FromStore(err))
	}

	token, err := s.IssueSessionToken(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}

	log.Info("user registered", slog.String("user_id", user.ID))

	return user, token, nil
}

// Authenticate checks the credentials and returns the user with a fresh
// session token.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*models.User, string, error) {
	const op = "services.auth.Authenticate"

	storeCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	user, err := s.users.UserByEmail(storeCtx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
			return nil, "", apperr.Auth("Invalid email or password")
		}
		return nil, "", fmt.Errorf("%s: %w", op, apperr.FromStore(err))
	}

	if err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", apperr.Auth("Invalid email or password")
	}

	token, err := s.IssueSessionToken(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}

	return user, token, nil
}

func (s *Service) IssueSessionToken(userID string) (string, error) {
	const op = "services.auth.IssueSessionToken"

	token, err := jwt.NewToken(userID, s.secret, s.tokenTTL, s.now())
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, apperr.Internal(err))
	}

	return token, nil
}

// VerifySessionToken returns the user id carried by a valid, unexpired token.
func (s *Service) VerifySessionToken(token string) (string, error) {
	if token == "" {
		return "", apperr.Auth("Access denied. No token provided.")
	}

	userID, err := jwt.ParseToken(token, s.secret, s.now())
	if err != nil {
		return "", apperr.Auth("Invalid token.")
	}

	return userID, nil
}

// CurrentUser loads the user a verified session belongs to.
func (s *Service) CurrentUser(ctx context.Context, userID string) (*models.User, error) {
	const op = "services.auth.CurrentUser"

	storeCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	user, err := s.users.UserByID(storeCtx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, apperr.NotFound("User not found")
		}
		return nil, fmt.Errorf("%s: %w", op, apperr.FromStore(err))
	}

	return user, nil
}

// RequestPasswordReset stores a one-hour reset token on the user and mails
// a link to linkBase/reset/<token>. A failed send does not revoke the token.
func (s *Service) RequestPasswordReset(ctx context.Context, email, linkBase string) error {
	const op = "services.auth.RequestPasswordReset"

	log := s.log.With(slog.String("op", op))

	storeCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	user, err := s.users.UserByEmail(storeCtx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return apperr.NotFound("User not found")
		}
		return fmt.Errorf("%s: %w", op, apperr.FromStore(err))
	}

	token, err := random.NewToken(resetTokenBytes)
	if err != nil {
		return fmt.Errorf("%s: %w", op, apperr.Internal(err))
	}

	if err = s.users.SetResetToken(storeCtx, user.ID, token, s.now().Add(s.resetTTL)); err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return apperr.NotFound("User not found")
		}
		return fmt.Errorf("%s: %w", op, apperr.FromStore(err))
	}

	body := fmt.Sprintf(resetMailBody, strings.TrimRight(linkBase, "/")+"/reset/"+token)

	if err = s.mailer.Send(ctx, user.Email, "Password Reset", body); err != nil {
		log.Error("failed to send reset email", slog.String("user_id", user.ID), sl.Err(err))
		return fmt.Errorf("%s: %w", op, apperr.Send(err))
	}

	log.Info("reset email sent", slog.String("user_id", user.ID))

	return nil
}

// CompletePasswordReset sets a new password for the holder of an unexpired
// reset token and consumes the token.
func (s *Service) CompletePasswordReset(ctx context.Context, token, newPassword string) error {
	const op = "services.auth.CompletePasswordReset"

	if len(newPassword) < MinPasswordLength {
		return apperr.Validation(fmt.Sprintf("Password must be at least %d characters", MinPasswordLength))
	}

	if token == "" {
		return apperr.Auth("Password reset token is invalid or has expired")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("%s: %w", op, apperr.Internal(err))
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	if err = s.users.ResetPassword(storeCtx, token, string(hash), s.now()); err != nil {
		if errors.Is(err, storage.ErrResetTokenInvalid) {
			return apperr.Auth("Password reset token is invalid or has expired")
		}
		return fmt.Errorf("%s: %w", op, apperr.FromStore(err))
	}

	s.log.Info("password updated", slog.String("op", op))

	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

const resetMailBody = `You are receiving this because you (or someone else) have requested the reset of the password for your account.
Please click on the following link, or paste this into your browser to complete the process:
%s
If you did not request this, please ignore this email and your password will remain unchanged.`
