package auth

import (
	"context"
	"crypto/subtle"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/clientdesk/backend/domain"
	"github.com/clientdesk/backend/repository"
)

// Config carries the secrets operator authentication runs on.
type Config struct {
	APIKey string
	Secret string
	Issuer string
}

type UseCase struct {
	sessions repository.SessionRepository
	cfg      Config
	logger   *zap.Logger
}

func New(sessions repository.SessionRepository, cfg Config, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		sessions: sessions,
		cfg:      cfg,
		logger:   logger,
	}
}

// Login exchanges the shared API key for an operator session and a signed
// token carrying the operator and session ids.
func (uc *UseCase) Login(ctx context.Context, apiKey, operatorID string, ttl time.Duration) (*domain.Session, string, error) {
	if operatorID == "" || subtle.ConstantTimeCompare([]byte(apiKey), []byte(uc.cfg.APIKey)) != 1 {
		return nil, "", domain.ErrUnauthorized
	}

	session := &domain.Session{
		ID:         uuid.NewString(),
		OperatorID: operatorID,
		CreatedAt:  time.Now(),
		ExpiresAt:  time.Now().Add(ttl),
	}
	if err := uc.sessions.Save(ctx, session); err != nil {
		return nil, "", err
	}

	token, err := uc.sign(session)
	if err != nil {
		return nil, "", err
	}
	return session, token, nil
}

// Refresh extends a live session and issues a fresh token.
func (uc *UseCase) Refresh(ctx context.Context, sessionID string, ttl time.Duration) (*domain.Session, string, error) {
	session, err := uc.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, "", err
	}
	if session.IsExpired(time.Now()) {
		_ = uc.sessions.Delete(ctx, sessionID)
		return nil, "", domain.ErrSessionNotFound
	}

	if err := uc.sessions.Extend(ctx, sessionID, int(ttl.Seconds())); err != nil {
		return nil, "", err
	}
	session.ExpiresAt = time.Now().Add(ttl)

	token, err := uc.sign(session)
	if err != nil {
		return nil, "", err
	}
	return session, token, nil
}

// Revoke deletes a session.
func (uc *UseCase) Revoke(ctx context.Context, sessionID string) error {
	return uc.sessions.Delete(ctx, sessionID)
}

func (uc *UseCase) sign(session *domain.Session) (string, error) {
	claims := jwt.MapClaims{
		"operator_id": session.OperatorID,
		"session_id":  session.ID,
		"iss":         uc.cfg.Issuer,
		"exp":         session.ExpiresAt.Unix(),
		"iat":         time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(uc.cfg.Secret))
}
