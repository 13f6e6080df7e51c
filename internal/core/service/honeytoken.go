package service

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/yndnr/honeymesh/internal/core/domain"
	"github.com/yndnr/honeymesh/internal/telemetry/metric"
	"github.com/yndnr/honeymesh/pkg/keylock"
	"github.com/yndnr/honeymesh/pkg/token"
)

// DefaultOpTimeout bounds every store round-trip.
const DefaultOpTimeout = 500 * time.Millisecond

// maxLoggedTokenLength caps attacker-supplied ids in log lines.
const maxLoggedTokenLength = 64

// AccessResult describes a recorded access of a known honeytoken.
type AccessResult struct {
	// Record is the record as persisted after the access.
	Record *domain.Honeytoken
	// Alert is the event that was (or failed to be) published.
	Alert domain.AlertEvent
	// Published reports whether the alert reached the store.
	Published bool
}

// HoneytokenService mints honeytokens and records accesses against them.
type HoneytokenService struct {
	store        TokenStore
	locks        *keylock.Striped
	logger       *slog.Logger
	metrics      *metric.Registry
	channel      string
	opTimeout    time.Duration
	strictWrites bool
	baitUsers    map[string]string
	now          func() time.Time
}

// Option configures a HoneytokenService.
type Option func(*HoneytokenService)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *HoneytokenService) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics sets the metrics registry. A nil registry disables metrics.
func WithMetrics(m *metric.Registry) Option {
	return func(s *HoneytokenService) {
		s.metrics = m
	}
}

// WithAlertChannel sets the channel alerts are published on.
func WithAlertChannel(channel string) Option {
	return func(s *HoneytokenService) {
		if channel != "" {
			s.channel = channel
		}
	}
}

// WithOpTimeout bounds each store round-trip.
func WithOpTimeout(d time.Duration) Option {
	return func(s *HoneytokenService) {
		if d > 0 {
			s.opTimeout = d
		}
	}
}

// WithStrictWrites makes Mint return store failures instead of logging them.
func WithStrictWrites(strict bool) Option {
	return func(s *HoneytokenService) {
		s.strictWrites = strict
	}
}

// WithBaitUsers sets the username/password pairs the bait login accepts.
func WithBaitUsers(users map[string]string) Option {
	return func(s *HoneytokenService) {
		s.baitUsers = make(map[string]string, len(users))
		for u, p := range users {
			s.baitUsers[u] = p
		}
	}
}

// WithLockStripes sets the number of per-token lock stripes.
func WithLockStripes(n int) Option {
	return func(s *HoneytokenService) {
		s.locks = keylock.New(n)
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *HoneytokenService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewHoneytokenService creates a service over store.
func NewHoneytokenService(store TokenStore, opts ...Option) *HoneytokenService {
	s := &HoneytokenService{
		store:     store,
		logger:    slog.Default(),
		channel:   domain.DefaultAlertChannel,
		opTimeout: DefaultOpTimeout,
		baitUsers: map[string]string{},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.locks == nil {
		s.locks = keylock.New(keylock.DefaultStripes)
	}
	return s
}

// Channel returns the alert channel.
func (s *HoneytokenService) Channel() string {
	return s.channel
}

// Mint creates and stores a new honeytoken bound to label and returns its id.
//
// A store failure is logged and the id is still returned, unless the service
// was built WithStrictWrites(true).
func (s *HoneytokenService) Mint(ctx context.Context, label string) (string, error) {
	h, err := domain.NewHoneytoken(label, s.now())
	if err != nil {
		return "", err
	}

	opCtx, cancel := s.opContext(ctx)
	defer cancel()

	if err := s.store.Put(opCtx, h); err != nil {
		s.logger.WarnContext(ctx, "failed to persist honeytoken",
			"token_id", h.TokenID,
			"context", h.Context,
			"error", err,
		)
		if s.strictWrites {
			return "", fmt.Errorf("mint %s: %w", h.TokenID, asUnavailable(err))
		}
	}

	s.metrics.IncTokensMinted()
	s.logger.DebugContext(ctx, "honeytoken minted", "token_id", h.TokenID, "context", h.Context)
	return h.TokenID, nil
}

// RecordAccess records one access of tokenID from source.
//
// Unknown, malformed and unreachable tokens are logged and yield (nil, nil);
// they never create a record. For a known token the mutation is persisted
// before exactly one honeytoken_access alert is published.
func (s *HoneytokenService) RecordAccess(ctx context.Context, tokenID, source string) (*AccessResult, error) {
	if strings.TrimSpace(tokenID) == "" {
		return nil, domain.ErrInvalidArgument.WithDetails("empty token id")
	}
	source = strings.TrimSpace(source)

	id, err := token.Parse(tokenID)
	if err != nil {
		if len(tokenID) > maxLoggedTokenLength {
			tokenID = tokenID[:maxLoggedTokenLength]
		}
		s.unknownToken(ctx, tokenID, source)
		return nil, nil
	}

	updated, err := s.applyAccess(ctx, id, source)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrTokenNotFound):
			s.unknownToken(ctx, id, source)
		case errors.Is(err, domain.ErrRecordMalformed):
			s.metrics.RecordTokenAccess(metric.AccessMalformed)
			s.logger.ErrorContext(ctx, "honeytoken record is corrupt, treating as absent",
				"token_id", id,
				"ip_address", source,
				"error", err,
			)
		default:
			s.metrics.RecordTokenAccess(metric.AccessUnavailable)
			s.logger.WarnContext(ctx, "failed to record honeytoken access",
				"token_id", id,
				"ip_address", source,
				"error", err,
			)
		}
		return nil, nil
	}

	s.metrics.RecordTokenAccess(metric.AccessRecorded)
	if source == "" {
		s.logger.WarnContext(ctx, "honeytoken access has no source address, counted without one",
			"token_id", updated.TokenID,
		)
	}
	s.logger.WarnContext(ctx, "honeytoken accessed",
		"token_id", updated.TokenID,
		"ip_address", source,
		"context", updated.Context,
		"access_count", updated.AccessCount,
	)

	alert := domain.NewAccessAlert(updated, source)
	published := s.publish(ctx, alert.EventType, alert)
	return &AccessResult{Record: updated, Alert: alert, Published: published}, nil
}

// applyAccess runs the read-modify-write for one access while holding the
// token's stripe lock.
func (s *HoneytokenService) applyAccess(ctx context.Context, id, source string) (*domain.Honeytoken, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	opCtx, cancel := s.opContext(ctx)
	defer cancel()

	at := s.now()
	return s.store.Update(opCtx, id, func(h *domain.Honeytoken) error {
		h.RecordAccess(source, at)
		return nil
	})
}

// Lookup returns the stored record for tokenID.
func (s *HoneytokenService) Lookup(ctx context.Context, tokenID string) (*domain.Honeytoken, error) {
	if strings.TrimSpace(tokenID) == "" {
		return nil, domain.ErrInvalidArgument.WithDetails("empty token id")
	}
	id, err := token.Parse(tokenID)
	if err != nil {
		return nil, domain.ErrTokenNotFound
	}

	opCtx, cancel := s.opContext(ctx)
	defer cancel()
	return s.store.Get(opCtx, id)
}

// RecordLoginAttempt publishes a login_attempt event for a submission of the
// bait login form and reports whether the credentials matched a bait user.
func (s *HoneytokenService) RecordLoginAttempt(ctx context.Context, username, password, source string) bool {
	source = strings.TrimSpace(source)

	match := false
	if want, ok := s.baitUsers[username]; ok {
		match = subtle.ConstantTimeCompare([]byte(want), []byte(password)) == 1
	}

	outcome := "miss"
	if match {
		outcome = "match"
	}
	s.metrics.RecordLoginAttempt(outcome)
	s.logger.WarnContext(ctx, "login attempt",
		"username", username,
		"password_fingerprint", token.Fingerprint(password),
		"ip_address", source,
		"success", match,
	)

	s.publish(ctx, domain.EventLoginAttempt, domain.LoginAttemptEvent{
		EventType: domain.EventLoginAttempt,
		Username:  username,
		Password:  password,
		IPAddress: source,
		Timestamp: s.now().UTC(),
		Success:   match,
	})
	return match
}

// publish encodes event and broadcasts it. Failures are logged and counted.
func (s *HoneytokenService) publish(ctx context.Context, eventType string, event any) bool {
	payload, err := json.Marshal(event)
	if err == nil {
		opCtx, cancel := s.opContext(ctx)
		err = s.store.Publish(opCtx, s.channel, payload)
		cancel()
	}
	if err != nil {
		s.metrics.RecordAlertPublish(eventType, metric.PublishFailed)
		s.logger.WarnContext(ctx, "failed to publish alert",
			"event_type", eventType,
			"channel", s.channel,
			"error", domain.ErrPublishFailed.WithCause(err),
		)
		return false
	}
	s.metrics.RecordAlertPublish(eventType, metric.PublishOK)
	return true
}

func (s *HoneytokenService) unknownToken(ctx context.Context, tokenID, source string) {
	s.metrics.RecordTokenAccess(metric.AccessUnknown)
	s.logger.WarnContext(ctx, "honeytoken accessed but not found",
		"token_id", tokenID,
		"ip_address", source,
	)
}

// opContext derives the context for one store round-trip. It keeps ctx's
// values but not its cancellation; only the op timeout bounds it.
func (s *HoneytokenService) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), s.opTimeout)
}

// asUnavailable wraps transport errors as ErrStoreUnavailable, leaving
// domain errors as they are.
func asUnavailable(err error) error {
	if domain.IsDomainError(err, "") {
		return err
	}
	return domain.ErrStoreUnavailable.WithCause(err)
}
