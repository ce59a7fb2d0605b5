package storecache

import (
	"context"
	"strings"
	"sync"

	"github.com/goliatone/go-experience-repository/cache"
	"github.com/goliatone/go-experience-repository/experience"
	"github.com/goliatone/go-experience-repository/localstore"
	"github.com/goliatone/go-experience-repository/logging"
)

const (
	methodGetRecommended = "GetRecommended"
	methodGetAll         = "GetAll"
	methodGetByID        = "GetByID"
)

var _ localstore.Store = (*Store)(nil)

// lookup wraps GetByID results so misses are memoized too.
type lookup struct {
	Record experience.Experience
	Found  bool
}

// Store decorates a local store with memoized reads.
type Store struct {
	base          localstore.Store
	cache         cache.CacheService
	keySerializer cache.KeySerializer
	keyRegistry   *sync.Map
	logger        logging.Logger
	// mu is held shared by memoizing reads and exclusively by a write and
	// its invalidation, so no read started before a write can memoize its
	// result after the invalidation.
	mu sync.RWMutex
}

// New creates a Store wrapping base.
func New(base localstore.Store, cacheService cache.CacheService, keySerializer cache.KeySerializer, logger logging.Logger) *Store {
	if keySerializer == nil {
		keySerializer = cache.NewDefaultKeySerializer()
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Store{
		base:          base,
		cache:         cacheService,
		keySerializer: keySerializer,
		keyRegistry:   &sync.Map{},
		logger:        logger.WithFields(logging.Fields{"component": "storecache"}),
	}
}

// GetRecommended returns memoized recommended records.
func (s *Store) GetRecommended(ctx context.Context) ([]experience.Experience, error) {
	key := s.keySerializer.SerializeKey(methodGetRecommended)
	s.mu.RLock()
	defer s.mu.RUnlock()
	s.trackKey(key)
	records, err := cache.GetOrFetch(ctx, s.cache, key, func(ctx context.Context) ([]experience.Experience, error) {
		return s.base.GetRecommended(ctx)
	})
	if err != nil {
		return nil, err
	}
	return experience.CloneAll(records), nil
}

// GetAll returns all memoized records.
func (s *Store) GetAll(ctx context.Context) ([]experience.Experience, error) {
	key := s.keySerializer.SerializeKey(methodGetAll)
	s.mu.RLock()
	defer s.mu.RUnlock()
	s.trackKey(key)
	records, err := cache.GetOrFetch(ctx, s.cache, key, func(ctx context.Context) ([]experience.Experience, error) {
		return s.base.GetAll(ctx)
	})
	if err != nil {
		return nil, err
	}
	return experience.CloneAll(records), nil
}

// GetByID returns a memoized record or miss.
func (s *Store) GetByID(ctx context.Context, id string) (experience.Experience, bool, error) {
	key := s.keySerializer.SerializeKey(methodGetByID, id)
	s.mu.RLock()
	defer s.mu.RUnlock()
	s.trackKey(key)
	res, err := cache.GetOrFetch(ctx, s.cache, key, func(ctx context.Context) (lookup, error) {
		record, found, err := s.base.GetByID(ctx, id)
		return lookup{Record: record, Found: found}, err
	})
	if err != nil {
		return experience.Experience{}, false, err
	}
	if !res.Found {
		return experience.Experience{}, false, nil
	}
	return res.Record.Clone(), true, nil
}

// Upsert writes through and invalidates lists and the written ids.
func (s *Store) Upsert(ctx context.Context, records []experience.Experience) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.base.Upsert(ctx, records); err != nil {
		return err
	}
	ids := make([]string, 0, len(records))
	for _, record := range records {
		ids = append(ids, record.ID)
	}
	s.invalidateAfterWrite(ctx, ids...)
	return nil
}

// UpdateLikeStatus writes through and invalidates lists and id.
func (s *Store) UpdateLikeStatus(ctx context.Context, id string, isLiked bool, likesCount int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.base.UpdateLikeStatus(ctx, id, isLiked, likesCount); err != nil {
		return err
	}
	s.invalidateAfterWrite(ctx, id)
	return nil
}

// Clear empties the base store and every memoized read.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.base.Clear(ctx); err != nil {
		return err
	}
	for _, method := range []string{methodGetRecommended, methodGetAll, methodGetByID} {
		prefix := s.keySerializer.SerializeKey(method)
		if err := s.cache.DeleteByPrefix(ctx, prefix); err != nil {
			s.logger.Error("failed to invalidate cache prefix", err, logging.Fields{"prefix": prefix})
		}
		s.forgetByPrefix(prefix)
	}
	return nil
}

// trackKey registers a cache key for later invalidation.
func (s *Store) trackKey(key string) {
	s.keyRegistry.Store(key, struct{}{})
}

// invalidateByPrefix removes all tracked keys starting with prefix.
func (s *Store) invalidateByPrefix(ctx context.Context, prefix string) {
	var keysToDelete []string
	s.keyRegistry.Range(func(k, _ any) bool {
		if key, ok := k.(string); ok && strings.HasPrefix(key, prefix) {
			keysToDelete = append(keysToDelete, key)
		}
		return true
	})

	for _, key := range keysToDelete {
		if err := s.cache.Delete(ctx, key); err != nil {
			s.logger.Error("failed to invalidate cache key", err, logging.Fields{"key": key})
		}
		s.keyRegistry.Delete(key)
	}
}

// forgetByPrefix drops tracked keys starting with prefix from the registry.
func (s *Store) forgetByPrefix(prefix string) {
	s.keyRegistry.Range(func(k, _ any) bool {
		if key, ok := k.(string); ok && strings.HasPrefix(key, prefix) {
			s.keyRegistry.Delete(key)
		}
		return true
	})
}

func (s *Store) invalidateAfterWrite(ctx context.Context, ids ...string) {
	s.invalidateByPrefix(ctx, s.keySerializer.SerializeKey(methodGetRecommended))
	s.invalidateByPrefix(ctx, s.keySerializer.SerializeKey(methodGetAll))
	for _, id := range ids {
		s.invalidateKey(ctx, s.keySerializer.SerializeKey(methodGetByID, id))
	}
}

func (s *Store) invalidateKey(ctx context.Context, key string) {
	if err := s.cache.Delete(ctx, key); err != nil {
		s.logger.Error("failed to invalidate cache key", err, logging.Fields{"key": key})
	}
	s.keyRegistry.Delete(key)
}
