package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/ozcanhakn/kanban-app/internal/domain"
	"github.com/ozcanhakn/kanban-app/internal/repository"
)

const (
	sessionAudience   = "session"
	minPasswordLength = 8
	magicTokenBytes   = 32
)

var errInvalidCredentials = fmt.Errorf("%w: invalid email or password", ErrUnauthorized)

// AuthResponse is returned by every successful sign-in.
type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt string       `json:"expires_at"`
	User      UserResponse `json:"user"`
}

// MagicLinkResponse acknowledges a magic-link request. Link is only filled
// in development, where mail is usually not configured.
type MagicLinkResponse struct {
	Sent bool   `json:"sent"`
	Link string `json:"link,omitempty"`
}

// Principal is the authenticated caller of a request.
type Principal struct {
	UserID    uint
	SessionID string
	User      domain.User
}

// AuthOptions configures AuthService.
type AuthOptions struct {
	JWTSecret    string
	SessionTTL   time.Duration
	MagicLinkTTL time.Duration
	// ExposeMagicLink returns the sign-in link in the API response.
	ExposeMagicLink bool
	// Mailer may be nil, in which case links are only logged.
	Mailer     Mailer
	BcryptCost int
}

// AuthService handles accounts, sessions and magic links.
type AuthService interface {
	SignUp(ctx context.Context, req SignUpRequest) (*AuthResponse, error)
	SignIn(ctx context.Context, req SignInRequest) (*AuthResponse, error)
	RequestMagicLink(ctx context.Context, req MagicLinkRequest, baseURL string) (*MagicLinkResponse, error)
	ConsumeMagicLink(ctx context.Context, token string) (*AuthResponse, error)
	// Authenticate resolves a session token to its user.
	Authenticate(ctx context.Context, token string) (*Principal, error)
	SignOut(ctx context.Context, sessionID string) error
}

type authService struct {
	base
	opts AuthOptions
}

func NewAuthService(repos *repository.Repositories, log *zap.Logger, opts AuthOptions) AuthService {
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 7 * 24 * time.Hour
	}
	if opts.MagicLinkTTL <= 0 {
		opts.MagicLinkTTL = 15 * time.Minute
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	return &authService{base: newBase(repos, nil, log.Named("auth")), opts: opts}
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return "", fmt.Errorf("%w: a valid email is required", ErrInvalidInput)
	}
	return email, nil
}

func (s *authService) SignUp(ctx context.Context, req SignUpRequest) (*AuthResponse, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, err
	}
	if len(req.Password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.opts.BcryptCost)
	if err != nil {
		return nil, s.internal(err, "hash password")
	}

	fullName := strings.TrimSpace(req.FullName)
	user := &domain.User{
		Email:            email,
		PasswordHash:     string(hash),
		FullName:         fullName,
		ProfileCompleted: fullName != "",
	}
	if err := s.repos.Users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("%w: an account with this email already exists", ErrConflict)
		}
		return nil, s.internal(err, "create user", zap.String("email", email))
	}
	s.log.Info("user signed up", zap.Uint("user_id", user.ID))
	return s.startSession(ctx, user)
}

func (s *authService) SignIn(ctx context.Context, req SignInRequest) (*AuthResponse, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, errInvalidCredentials
	}
	user, err := s.repos.Users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errInvalidCredentials
		}
		return nil, s.internal(err, "load user", zap.String("email", email))
	}
	if user.PasswordHash == "" {
		return nil, errInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, errInvalidCredentials
	}
	return s.startSession(ctx, user)
}

func (s *authService) RequestMagicLink(ctx context.Context, req MagicLinkRequest, baseURL string) (*MagicLinkResponse, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, err
	}

	raw := make([]byte, magicTokenBytes)
	if _, err := rand.Read(raw); err != nil {
		return nil, s.internal(err, "generate magic link token")
	}
	token := base64.RawURLEncoding.EncodeToString(raw)

	link := &domain.MagicLink{
		Email:     email,
		TokenHash: hashToken(token),
		ExpiresAt: s.now().Add(s.opts.MagicLinkTTL),
	}
	if err := s.repos.Sessions.CreateMagicLink(ctx, link); err != nil {
		return nil, s.internal(err, "store magic link", zap.String("email", email))
	}

	magicURL := fmt.Sprintf("%s/auth/magic-link?token=%s", strings.TrimRight(baseURL, "/"), url.QueryEscape(token))
	resp := &MagicLinkResponse{}
	if s.opts.Mailer != nil {
		body := fmt.Sprintf("Click the link below to sign in to your boards:\n\n%s\n\n"+
			"The link expires in %s. If you didn't request it, you can ignore this email.",
			magicURL, s.opts.MagicLinkTTL)
		if err := s.opts.Mailer.Send(ctx, email, "Your sign-in link", body); err != nil {
			s.log.Warn("failed to send magic link", zap.String("email", email), zap.Error(err))
		} else {
			resp.Sent = true
		}
	} else {
		s.log.Info("magic link created without mailer", zap.String("email", email))
	}
	if s.opts.ExposeMagicLink {
		resp.Link = magicURL
	}
	return resp, nil
}

func (s *authService) ConsumeMagicLink(ctx context.Context, token string) (*AuthResponse, error) {
	invalid := fmt.Errorf("%w: invalid or expired magic link", ErrUnauthorized)
	if token == "" {
		return nil, invalid
	}

	now := s.now()
	link, err := s.repos.Sessions.ConsumeMagicLink(ctx, hashToken(token), now)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, invalid
		}
		return nil, s.internal(err, "consume magic link")
	}
	if !now.Before(link.ExpiresAt) {
		return nil, invalid
	}

	user, err := s.repos.Users.FindByEmail(ctx, link.Email)
	if errors.Is(err, repository.ErrNotFound) {
		user = &domain.User{Email: link.Email}
		err = s.repos.Users.Create(ctx, user)
		if errors.Is(err, repository.ErrDuplicate) {
			user, err = s.repos.Users.FindByEmail(ctx, link.Email)
		} else if err == nil {
			s.log.Info("user signed up by magic link", zap.Uint("user_id", user.ID))
		}
	}
	if err != nil {
		return nil, s.internal(err, "resolve magic link user", zap.String("email", link.Email))
	}
	return s.startSession(ctx, user)
}

type sessionClaims struct {
	jwt.RegisteredClaims
}

func (s *authService) startSession(ctx context.Context, user *domain.User) (*AuthResponse, error) {
	now := s.now()
	session := &domain.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		ExpiresAt: now.Add(s.opts.SessionTTL),
	}
	if err := s.repos.Sessions.Create(ctx, session); err != nil {
		return nil, s.internal(err, "create session", zap.Uint("user_id", user.ID))
	}

	claims := sessionClaims{jwt.RegisteredClaims{
		ID:        session.ID,
		Subject:   strconv.FormatUint(uint64(user.ID), 10),
		Audience:  jwt.ClaimStrings{sessionAudience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
	}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.opts.JWTSecret))
	if err != nil {
		return nil, s.internal(err, "sign session token")
	}

	return &AuthResponse{
		Token:     token,
		ExpiresAt: formatTime(session.ExpiresAt),
		User:      toUserResponse(*user),
	}, nil
}

func (s *authService) Authenticate(ctx context.Context, token string) (*Principal, error) {
	invalid := fmt.Errorf("%w: invalid or expired session", ErrUnauthorized)
	if token == "" {
		return nil, fmt.Errorf("%w: missing session token", ErrUnauthorized)
	}

	var claims sessionClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
		return []byte(s.opts.JWTSecret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(sessionAudience),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || claims.ID == "" {
		return nil, invalid
	}

	session, err := s.repos.Sessions.FindByID(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, invalid
		}
		return nil, s.internal(err, "load session")
	}
	if !session.Active(s.now()) {
		return nil, invalid
	}
	return &Principal{UserID: session.UserID, SessionID: session.ID, User: session.User}, nil
}

func (s *authService) SignOut(ctx context.Context, sessionID string) error {
	if err := s.repos.Sessions.Revoke(ctx, sessionID, s.now()); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return s.internal(err, "revoke session")
	}
	return nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
