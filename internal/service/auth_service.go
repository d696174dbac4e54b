package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"sync"
	"time"

	"reserveease/internal/config"
	"reserveease/internal/domain"
	"reserveease/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSessionNotFound    = errors.New("session not found")
	ErrTooManyAttempts    = errors.New("too many sign-in attempts")
)

// AuthService implements staff sign-in against the configured admin
// credentials, with sessions held in the session repository.
type AuthService struct {
	cfg      config.AuthConfig
	sessions domain.SessionRepository
	ttl      time.Duration
	logger   *zerolog.Logger

	mu        sync.Mutex
	listeners []func(session *models.Session)
}

func NewAuthService(cfg config.AuthConfig, sessions domain.SessionRepository, logger *zerolog.Logger) *AuthService {
	ttl := time.Duration(cfg.SessionTTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = time.Duration(models.DefaultSessionTTL) * time.Second
	}
	return &AuthService{
		cfg:      cfg,
		sessions: sessions,
		ttl:      ttl,
		logger:   logger,
	}
}

func (s *AuthService) SignIn(ctx context.Context, email, password string) (string, error) {
	window := time.Duration(models.RateLimitWindow) * time.Second
	allowed, err := s.sessions.CheckRateLimit(ctx, "login:"+email, models.RateLimitRequests, window)
	if err != nil {
		s.logger.Error().Err(err).Msg("login rate limit check failed")
	} else if !allowed {
		return "", ErrTooManyAttempts
	}

	emailOK := subtle.ConstantTimeCompare([]byte(email), []byte(s.cfg.AdminEmail)) == 1
	passwordOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.cfg.AdminPassword)) == 1
	if !emailOK || !passwordOK {
		return "", ErrInvalidCredentials
	}

	now := time.Now()
	session := &models.Session{
		Token:     uuid.NewString(),
		Email:     email,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}

	if err := s.sessions.SetSession(ctx, session); err != nil {
		return "", err
	}

	s.logger.Info().Str("email", email).Msg("staff signed in")
	s.notifyListeners(session)
	return session.Token, nil
}

func (s *AuthService) SignOut(ctx context.Context, token string) error {
	if err := s.sessions.DeleteSession(ctx, token); err != nil {
		return err
	}
	s.notifyListeners(nil)
	return nil
}

func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.Session, error) {
	if token == "" {
		return nil, ErrSessionNotFound
	}

	session, err := s.sessions.GetSession(ctx, token)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	if session.Expired(time.Now()) {
		_ = s.sessions.DeleteSession(ctx, token)
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// OnSessionChange registers a callback invoked with the new session on
// sign-in and nil on sign-out.
func (s *AuthService) OnSessionChange(fn func(session *models.Session)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *AuthService) notifyListeners(session *models.Session) {
	s.mu.Lock()
	listeners := append(make([]func(*models.Session), 0, len(s.listeners)), s.listeners...)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(session)
	}
}
