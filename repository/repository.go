package repository

import (
	"context"

	"github.com/goliatone/go-experience-repository/experience"
	"github.com/goliatone/go-experience-repository/localstore"
	"github.com/goliatone/go-experience-repository/logging"
	"github.com/goliatone/go-experience-repository/remote"
)

// RemoteSource is the subset of the HTTP client the repository drives.
type RemoteSource interface {
	GetRecommended(ctx context.Context) ([]remote.ExperienceDTO, error)
	GetRecent(ctx context.Context) ([]remote.ExperienceDTO, error)
	Search(ctx context.Context, query string) ([]remote.ExperienceDTO, error)
	GetDetails(ctx context.Context, id string) (remote.ExperienceDTO, error)
	Like(ctx context.Context, id string) (int, error)
}

var _ RemoteSource = (*remote.Client)(nil)

// ExperienceRepository reads remote-first and falls back to the local store.
// Every error it returns is an *experience.Error.
type ExperienceRepository struct {
	remote RemoteSource
	store  localstore.Store
	logger logging.Logger
}

// New builds the repository. A nil logger discards output.
func New(remoteSource RemoteSource, store localstore.Store, logger logging.Logger) *ExperienceRepository {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &ExperienceRepository{
		remote: remoteSource,
		store:  store,
		logger: logger.WithFields(logging.Fields{"component": "repository"}),
	}
}

// GetRecommended returns recommended experiences. Every fetched row is
// cached; only rows flagged as recommended are returned.
func (r *ExperienceRepository) GetRecommended(ctx context.Context, forceRefresh bool) ([]experience.Experience, error) {
	return r.readList(ctx, "recommended", forceRefresh,
		r.remote.GetRecommended,
		r.store.GetRecommended,
		experience.FilterRecommended,
	)
}

// GetRecent returns the full experience list.
func (r *ExperienceRepository) GetRecent(ctx context.Context, forceRefresh bool) ([]experience.Experience, error) {
	return r.readList(ctx, "recent", forceRefresh,
		r.remote.GetRecent,
		r.store.GetAll,
		nil,
	)
}

func (r *ExperienceRepository) readList(
	ctx context.Context,
	name string,
	forceRefresh bool,
	fetch func(context.Context) ([]remote.ExperienceDTO, error),
	fallback func(context.Context) ([]experience.Experience, error),
	filter func([]experience.Experience) []experience.Experience,
) ([]experience.Experience, error) {
	fields := logging.Fields{"list": name, "force_refresh": forceRefresh}

	dtos, err := fetch(ctx)
	if err == nil {
		entities := remote.ToEntities(dtos)
		r.cacheBestEffort(ctx, entities, fields)
		if filter != nil {
			entities = filter(entities)
		}
		return entities, nil
	}

	r.logger.Error("remote fetch failed, falling back to cache", err, fields)

	cached, cacheErr := fallback(ctx)
	if cacheErr != nil {
		r.logger.Error("cache fallback failed", cacheErr, fields)
		return nil, experience.PersistenceFailure(cacheErr)
	}

	r.logger.Info("served experiences from cache", logging.Fields{"list": name, "count": len(cached)})
	return cached, nil
}

// Search is remote only; results are never cached.
func (r *ExperienceRepository) Search(ctx context.Context, query string) ([]experience.Experience, error) {
	dtos, err := r.remote.Search(ctx, query)
	if err != nil {
		r.logger.Error("remote search failed", err, logging.Fields{"query": query})
		return nil, experience.NetworkFailure(err)
	}
	return remote.ToEntities(dtos), nil
}

// GetDetails returns one experience. When the remote call fails and the
// cache has no record the error is ErrExperienceNotFound.
func (r *ExperienceRepository) GetDetails(ctx context.Context, id string, forceRefresh bool) (experience.Experience, error) {
	fields := logging.Fields{"experience_id": id, "force_refresh": forceRefresh}

	dto, err := r.remote.GetDetails(ctx, id)
	if err == nil {
		entity := dto.ToEntity()
		r.cacheBestEffort(ctx, []experience.Experience{entity}, fields)
		return entity, nil
	}

	r.logger.Error("remote fetch failed, falling back to cache", err, fields)

	cached, found, cacheErr := r.store.GetByID(ctx, id)
	if cacheErr != nil {
		r.logger.Error("cache fallback failed", cacheErr, fields)
		return experience.Experience{}, experience.PersistenceFailure(cacheErr)
	}
	if !found {
		return experience.Experience{}, experience.ErrExperienceNotFound
	}
	return cached, nil
}

// Like posts a like and returns the confirmed likes count. The cache is
// updated best effort.
func (r *ExperienceRepository) Like(ctx context.Context, id string) (int, error) {
	fields := logging.Fields{"experience_id": id}

	likesCount, err := r.remote.Like(ctx, id)
	if err != nil {
		r.logger.Error("remote like failed", err, fields)
		return 0, experience.NetworkFailure(err)
	}

	if err := r.store.UpdateLikeStatus(ctx, id, true, likesCount); err != nil {
		r.logger.Error("failed to update like status in cache", err, fields)
	}
	return likesCount, nil
}

// ClearCache removes every cached record.
func (r *ExperienceRepository) ClearCache(ctx context.Context) error {
	if err := r.store.Clear(ctx); err != nil {
		return experience.PersistenceFailure(err)
	}
	return nil
}

func (r *ExperienceRepository) cacheBestEffort(ctx context.Context, entities []experience.Experience, fields logging.Fields) {
	if len(entities) == 0 {
		return
	}
	if err := r.store.Upsert(ctx, entities); err != nil {
		r.logger.Error("failed to cache experiences", err, fields)
	}
}
