// Package store persists prediction records. Every backend is an append-only
// log keyed by an auto-incrementing id and read back in insertion order.
package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"imgclassd/internal/config"
	"imgclassd/pkg/types"
)

// Store is the prediction record store.
type Store interface {
	// Append persists r and returns it with its assigned id. Not idempotent.
	Append(ctx context.Context, r types.PredictionResult) (types.Prediction, error)
	// List returns every record in insertion order.
	List(ctx context.Context) ([]types.Prediction, error)
	Close() error
}

// Driver names accepted by Open.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

// DefaultRedisAddr is used when the redis driver has no address configured.
const DefaultRedisAddr = "localhost:6379"

// ConnectTimeout bounds how long Open keeps retrying an unreachable backend.
var ConnectTimeout = 30 * time.Second

// Open connects the configured backend. Network backends are retried with
// exponential backoff until ConnectTimeout elapses or ctx is done.
func Open(ctx context.Context, cfg config.Store, log zerolog.Logger) (Store, error) {
	switch strings.ToLower(cfg.Driver) {
	case DriverMemory:
		return NewMemory(), nil
	case DriverSQLite, "":
		dsn := cfg.DSN
		if dsn == "" {
			dsn = config.DefaultSQLiteDSN
		}
		s, err := OpenSQLite(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return s, nil
	case DriverPostgres:
		if cfg.DSN == "" {
			return nil, fmt.Errorf("store: postgres requires a dsn")
		}
		var s *SQLStore
		err := retry(ctx, log, "postgres", func() error {
			var err error
			s, err = OpenPostgres(ctx, cfg.DSN)
			return err
		})
		if err != nil {
			return nil, err
		}
		return s, nil
	case DriverRedis:
		addr := cfg.RedisAddr
		if addr == "" {
			addr = DefaultRedisAddr
		}
		key := cfg.RedisKey
		if key == "" {
			key = config.DefaultRedisKey
		}
		var s *RedisStore
		err := retry(ctx, log, "redis", func() error {
			var err error
			s, err = OpenRedis(ctx, addr, cfg.RedisPassword, cfg.RedisDB, key)
			return err
		})
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	return nil, fmt.Errorf("store: unknown driver %q (want memory|sqlite|postgres|redis)", cfg.Driver)
}

func retry(ctx context.Context, log zerolog.Logger, backend string, op func() error) error {
	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = ConnectTimeout
	attempt := 0
	err := backoff.RetryNotify(op, backoff.WithContext(b, ctx), func(err error, next time.Duration) {
		attempt++
		log.Warn().Err(err).Str("backend", backend).Int("attempt", attempt).Dur("retry_in", next).Msg("store connect failed")
	})
	if err != nil {
		return fmt.Errorf("store: connect %s: %w", backend, err)
	}
	return nil
}
