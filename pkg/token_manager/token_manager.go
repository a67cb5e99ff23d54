package tokenmanager

import (
	"context"
	"errors"
	"math/rand/v2"
	"strconv"
	"time"

	errorz "github.com/jack5341/attendance-server/internal/errors"
	"github.com/jack5341/attendance-server/internal/models"
	"github.com/jack5341/attendance-server/internal/store"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	MinPIN      = 1000
	MaxPIN      = 9999
	DefaultTTL  = 2 * time.Hour
	TokenPrefix = "SESSION-"
)

// NewPIN draws a PIN uniformly from [MinPIN, MaxPIN].
func NewPIN() int {
	return MinPIN + rand.IntN(MaxPIN-MinPIN+1)
}

// TokenFor is the human readable token string of a session. It is not a
// secret; the PIN is.
func TokenFor(sessionID uint) string {
	return TokenPrefix + strconv.FormatUint(uint64(sessionID), 10)
}

type TokenManager struct {
	store      store.Store
	otelTracer trace.Tracer
	logger     zerolog.Logger
	ttl        time.Duration
	now        func() time.Time
	nextPIN    func() int
}

type Option func(*TokenManager)

func WithTTL(ttl time.Duration) Option {
	return func(m *TokenManager) { m.ttl = ttl }
}

func WithClock(now func() time.Time) Option {
	return func(m *TokenManager) { m.now = now }
}

func WithPINSource(nextPIN func() int) Option {
	return func(m *TokenManager) { m.nextPIN = nextPIN }
}

func NewTokenManager(st store.Store, otelTracer trace.Tracer, logger zerolog.Logger, opts ...Option) *TokenManager {
	m := &TokenManager{
		store:      st,
		otelTracer: otelTracer,
		logger:     logger,
		ttl:        DefaultTTL,
		now:        time.Now,
		nextPIN:    NewPIN,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// GetOrCreate returns the session's token, creating it on first use. It
// does not check that the session exists.
func (m *TokenManager) GetOrCreate(ctx context.Context, sessionID uint) (models.SessionToken, error) {
	ctx, span := m.otelTracer.Start(ctx, "TokenManager.GetOrCreate")
	defer span.End()
	span.SetAttributes(attribute.Int64("session.id", int64(sessionID)))

	created := false
	token, err := m.store.GetOrCreateToken(ctx, sessionID, func() models.SessionToken {
		created = true
		return models.SessionToken{
			SessionID: sessionID,
			Token:     TokenFor(sessionID),
			PIN:       m.nextPIN(),
			ExpiresAt: m.now().UTC().Add(m.ttl),
		}
	})
	if err != nil {
		span.RecordError(err)
		m.logger.Error().Err(err).Uint("session_id", sessionID).Msg("failed to get or create session token")
		return models.SessionToken{}, err
	}
	if created {
		m.logger.Info().
			Uint("session_id", sessionID).
			Time("expires_at", token.ExpiresAt).
			Msg("session token created")
	}
	return token, nil
}

// Generate is GetOrCreate for a session that must already exist.
func (m *TokenManager) Generate(ctx context.Context, sessionID uint) (models.SessionToken, error) {
	ctx, span := m.otelTracer.Start(ctx, "TokenManager.Generate")
	defer span.End()

	if _, err := m.store.GetSession(ctx, sessionID); err != nil {
		span.RecordError(err)
		return models.SessionToken{}, err
	}
	return m.GetOrCreate(ctx, sessionID)
}

// Verify matches pin against the stored tokens, scoped to sessionID when it
// is not nil. Without a session the first token holding the PIN wins.
func (m *TokenManager) Verify(ctx context.Context, pin int, sessionID *uint) (models.SessionToken, error) {
	ctx, span := m.otelTracer.Start(ctx, "TokenManager.Verify")
	defer span.End()
	if sessionID != nil {
		span.SetAttributes(attribute.Int64("session.id", int64(*sessionID)))
	}

	token, err := m.store.FindTokenByPIN(ctx, pin, sessionID)
	if errors.Is(err, errorz.ErrSessionTokenNotFound) {
		if sessionID != nil {
			return models.SessionToken{}, errorz.ErrInvalidSessionOrPIN
		}
		return models.SessionToken{}, errorz.ErrInvalidPIN
	}
	if err != nil {
		span.RecordError(err)
		return models.SessionToken{}, err
	}
	if token.Expired(m.now()) {
		m.logger.Debug().
			Uint("session_id", token.SessionID).
			Time("expires_at", token.ExpiresAt).
			Msg("expired PIN submitted")
		return models.SessionToken{}, errorz.ErrPINExpired
	}
	return token, nil
}

// Current returns the session's token without creating one.
func (m *TokenManager) Current(ctx context.Context, sessionID uint) (models.SessionToken, error) {
	return m.store.GetToken(ctx, sessionID)
}

func (m *TokenManager) Now() time.Time {
	return m.now()
}
