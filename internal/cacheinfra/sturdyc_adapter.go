package cacheinfra

import (
	"context"
	"errors"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/viccon/sturdyc"
)

// Config holds the configuration for the sturdyc cache adapter.
type Config struct {
	// Capacity defines the maximum number of entries that the cache can store.
	Capacity int

	// NumShards determines the number of cache shards for concurrent access.
	NumShards int

	// TTL is the time-to-live for cached entries.
	TTL time.Duration

	// EvictionPercentage is the share of entries evicted when a shard is full.
	EvictionPercentage int

	// EvictionInterval sets how often expired entries are swept.
	// Zero keeps the sturdyc default.
	EvictionInterval time.Duration
}

// DefaultConfig returns the memo defaults.
func DefaultConfig() Config {
	return Config{
		Capacity:           1000,
		NumShards:          16,
		TTL:                5 * time.Minute,
		EvictionPercentage: 10,
	}
}

// ToSturdycOptions converts the optional settings to sturdyc options.
// Capacity, NumShards, TTL and EvictionPercentage go to sturdyc.New directly.
func (c Config) ToSturdycOptions() []sturdyc.Option {
	var options []sturdyc.Option
	if c.EvictionInterval > 0 {
		options = append(options, sturdyc.WithEvictionInterval(c.EvictionInterval))
	}
	return options
}

// Validate checks if the configuration values are valid.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Capacity, validation.Required, validation.Min(1)),
		validation.Field(&c.NumShards, validation.Required, validation.Min(1)),
		validation.Field(&c.TTL, validation.Required, validation.Min(time.Millisecond)),
		validation.Field(&c.EvictionPercentage, validation.Required, validation.Min(1), validation.Max(100)),
		validation.Field(&c.EvictionInterval, validation.Min(time.Duration(0))),
	)
}

// ErrNilFetchFn is returned when GetOrFetch receives no fetch function.
var ErrNilFetchFn = errors.New("cacheinfra: fetchFn cannot be nil")

// Service wraps a sturdyc client.
type Service struct {
	client *sturdyc.Client[any]
}

// NewSturdycService validates cfg and builds the sturdyc client.
func NewSturdycService(cfg Config) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client := sturdyc.New[any](
		cfg.Capacity,
		cfg.NumShards,
		cfg.TTL,
		cfg.EvictionPercentage,
		cfg.ToSturdycOptions()...,
	)

	return &Service{client: client}, nil
}

// nilValue stands in for a nil fetch result. sturdyc asserts every fetched
// value to the client type and reports ErrInvalidType for a nil interface.
type nilValue struct{}

// GetOrFetch returns the cached value for key or calls fetchFn and stores
// its result. Fetch errors are returned and never cached.
func (s *Service) GetOrFetch(ctx context.Context, key string, fetchFn func(context.Context) (any, error)) (any, error) {
	if fetchFn == nil {
		return nil, ErrNilFetchFn
	}

	var fetchErr error
	value, err := s.client.GetOrFetch(ctx, key, func(ctx context.Context) (any, error) {
		v, err := fetchFn(ctx)
		if err != nil {
			fetchErr = err
			return nilValue{}, err
		}
		if v == nil {
			return nilValue{}, nil
		}
		return v, nil
	})
	if fetchErr != nil {
		return nil, fetchErr
	}
	if err != nil {
		return nil, err
	}
	if _, ok := value.(nilValue); ok {
		return nil, nil
	}
	return value, nil
}

// Delete removes a single entry.
func (s *Service) Delete(ctx context.Context, key string) error {
	s.client.Delete(key)
	return nil
}

// DeleteByPrefix removes every entry whose key starts with prefix.
func (s *Service) DeleteByPrefix(ctx context.Context, prefix string) error {
	for _, key := range s.client.ScanKeys() {
		if strings.HasPrefix(key, prefix) {
			s.client.Delete(key)
		}
	}
	return nil
}

// Size returns the number of cached entries.
func (s *Service) Size() int {
	return s.client.Size()
}
