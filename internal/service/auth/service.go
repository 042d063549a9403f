package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/tigertix/tigertix/internal/domain"
	"github.com/tigertix/tigertix/internal/repository"
)

type UserStore interface {
	CreateUser(ctx context.Context, email, passwordHash, name string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	GetUserByID(ctx context.Context, id int64) (*domain.User, error)
}

// Denylist holds token ids revoked by logout.
type Denylist interface {
	Revoke(ctx context.Context, jti string, until time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

type Config struct {
	Secret     string
	TokenTTL   time.Duration
	BcryptCost int
}

type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// UserID returns the numeric user id carried in the subject claim.
func (c *Claims) UserID() (int64, error) {
	return strconv.ParseInt(c.Subject, 10, 64)
}

// Session is an authenticated user together with its signed token.
type Session struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

type Service struct {
	users    UserStore
	denylist Denylist
	cfg      Config
	logger   *slog.Logger
	now      func() time.Time
}

// New builds the auth service. denylist may be nil, in which case logout
// only clears the client cookie.
func New(users UserStore, denylist Denylist, cfg Config, logger *slog.Logger) *Service {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 30 * time.Minute
	}

	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}

	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Service{
		users:    users,
		denylist: denylist,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *Service) TokenTTL() time.Duration {
	return s.cfg.TokenTTL
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a user with a bcrypt-hashed password and signs a token for
// it.
//
// Returns:
//   - error: auth.ErrMissingCredentials, auth.ErrInvalidEmail or
//     auth.ErrPasswordTooLong for bad input.
//   - error: auth.ErrEmailTaken if the email is already registered.
func (s *Service) Register(ctx context.Context, email, password, name string) (*Session, error) {
	const op = "service.auth.Register"

	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrMissingCredentials)
	}

	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidEmail)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, fmt.Errorf("%s: %w", op, ErrPasswordTooLong)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	user, err := s.users.CreateUser(ctx, email, string(hash), strings.TrimSpace(name))
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, fmt.Errorf("%s: %w", op, ErrEmailTaken)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.logger.InfoContext(ctx, "user registered", "user_id", user.ID)

	return s.issue(op, user)
}

// Login checks the password and signs a fresh token. Unknown emails and wrong
// passwords both return auth.ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	const op = "service.auth.Login"

	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrMissingCredentials)
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	return s.issue(op, user)
}

func (s *Service) issue(op string, user *domain.User) (*Session, error) {
	now := s.now()
	expiresAt := now.Add(s.cfg.TokenTTL)

	claims := Claims{
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(user.ID, 10),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return nil, fmt.Errorf("%s: sign token: %w", op, err)
	}

	return &Session{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

// Authenticate verifies a token's signature, expiry and revocation state.
func (s *Service) Authenticate(ctx context.Context, token string) (*Claims, error) {
	const op = "service.auth.Authenticate"

	if token == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrNoToken)
	}

	claims, err := s.parse(token)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	if s.denylist != nil && claims.ID != "" {
		revoked, err := s.denylist.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if revoked {
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
		}
	}

	return claims, nil
}

func (s *Service) parse(token string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return []byte(s.cfg.Secret), nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// Logout revokes token until its natural expiry. Invalid or missing tokens
// are ignored: logging out is always allowed.
func (s *Service) Logout(ctx context.Context, token string) error {
	const op = "service.auth.Logout"

	if s.denylist == nil || token == "" {
		return nil
	}

	claims, err := s.parse(token)
	if err != nil || claims.ID == "" || claims.ExpiresAt == nil {
		return nil
	}

	if err := s.denylist.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Service) Me(ctx context.Context, userID int64) (*domain.User, error) {
	const op = "service.auth.Me"

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}
