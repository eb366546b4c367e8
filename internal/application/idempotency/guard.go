package idempotency

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/retailops/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// DefaultLockTTL bounds how long a crashed first attempt can block retries
const DefaultLockTTL = 2 * time.Minute

// Outcome is what Execute hands back: the operation's response bytes and
// whether they came from a stored record instead of a fresh run
type Outcome struct {
	Response []byte
	Replayed bool
}

// Guard wraps mutating operations with idempotency-key semantics:
// a completed key replays the stored response, a concurrently running key
// is rejected, and only a successful run is recorded.
type Guard struct {
	records RecordRepository
	lock    RequestLock
	lockTTL time.Duration
	logger  *zap.Logger
}

// NewGuard creates an idempotency guard
func NewGuard(records RecordRepository, lock RequestLock, logger *zap.Logger) *Guard {
	return &Guard{
		records: records,
		lock:    lock,
		lockTTL: DefaultLockTTL,
		logger:  logger,
	}
}

// WithLockTTL overrides the in-flight lock TTL
func (g *Guard) WithLockTTL(ttl time.Duration) *Guard {
	if ttl > 0 {
		g.lockTTL = ttl
	}
	return g
}

// Execute runs fn under idempotency protection for (tenant, route, key).
//
// payload is the raw request body; its fingerprint is stored with the record
// so a reused key carrying a different body fails with INVALID_INPUT rather
// than replaying a response to a question that was never asked.
//
// fn's result must be JSON-marshalable; the stored bytes are what replays
// return, byte for byte.
func (g *Guard) Execute(ctx context.Context, tenantID uuid.UUID, route, key string, payload []byte, fn func(ctx context.Context) (any, error)) (*Outcome, error) {
	if key == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Idempotency key is required")
	}
	fingerprint := Fingerprint(payload)

	if out, err := g.replay(ctx, tenantID, route, key, fingerprint); out != nil || err != nil {
		return out, err
	}

	acquired, err := g.lock.Acquire(ctx, tenantID, route, key, g.lockTTL)
	if err != nil {
		return nil, err
	}
	if !acquired {
		// The lock holder may have just finished; only then is the record
		// visible and replayable.
		if out, err := g.replay(ctx, tenantID, route, key, fingerprint); out != nil || err != nil {
			return out, err
		}
		return nil, shared.NewDomainError("REQUEST_IN_FLIGHT", "A request with this idempotency key is already being processed")
	}
	defer func() {
		if err := g.lock.Release(context.WithoutCancel(ctx), tenantID, route, key); err != nil {
			g.logger.Warn("failed to release idempotency lock",
				zap.String("route", route),
				zap.String("key", key),
				zap.Error(err))
		}
	}()

	result, err := fn(ctx)
	if err != nil {
		return nil, err
	}

	response, err := json.Marshal(result)
	if err != nil {
		return nil, err
	}
	record := &Record{
		BaseEntity:  shared.NewBaseEntity(),
		TenantID:    tenantID,
		Route:       route,
		Key:         key,
		Fingerprint: fingerprint,
		Response:    response,
		CompletedAt: time.Now(),
	}
	if err := g.records.Create(ctx, record); err != nil {
		// The work itself committed; a failure to remember it must not turn
		// a success into an error. The next retry will redo the operation
		// and hit the domain-level guards instead.
		g.logger.Error("failed to persist idempotency record",
			zap.String("route", route),
			zap.String("key", key),
			zap.Error(err))
	}
	return &Outcome{Response: response}, nil
}

func (g *Guard) replay(ctx context.Context, tenantID uuid.UUID, route, key, fingerprint string) (*Outcome, error) {
	record, err := g.records.Find(ctx, tenantID, route, key)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if record.Fingerprint != fingerprint {
		return nil, shared.NewDomainError("INVALID_INPUT", "Idempotency key was already used with a different request body")
	}
	g.logger.Info("replaying stored response for idempotency key",
		zap.String("route", route),
		zap.String("key", key))
	return &Outcome{Response: record.Response, Replayed: true}, nil
}
