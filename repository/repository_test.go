package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-experience-repository/experience"
	"github.com/goliatone/go-experience-repository/localstore"
	"github.com/goliatone/go-experience-repository/pkg/testsupport"
	"github.com/goliatone/go-experience-repository/remote"
)

type fakeRemote struct {
	mu          sync.Mutex
	calls       []string
	recommended []remote.ExperienceDTO
	recent      []remote.ExperienceDTO
	search      []remote.ExperienceDTO
	details     map[string]remote.ExperienceDTO
	likes       int
	err         error
	lastQuery   string
}

func (f *fakeRemote) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeRemote) getCalls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeRemote) GetRecommended(ctx context.Context) ([]remote.ExperienceDTO, error) {
	f.record("GetRecommended")
	return f.recommended, f.err
}

func (f *fakeRemote) GetRecent(ctx context.Context) ([]remote.ExperienceDTO, error) {
	f.record("GetRecent")
	return f.recent, f.err
}

func (f *fakeRemote) Search(ctx context.Context, query string) ([]remote.ExperienceDTO, error) {
	f.record("Search")
	f.lastQuery = query
	return f.search, f.err
}

func (f *fakeRemote) GetDetails(ctx context.Context, id string) (remote.ExperienceDTO, error) {
	f.record("GetDetails")
	if f.err != nil {
		return remote.ExperienceDTO{}, f.err
	}
	dto, ok := f.details[id]
	if !ok {
		return remote.ExperienceDTO{}, &remote.NetworkError{Kind: remote.KindNotFound, Code: 404}
	}
	return dto, nil
}

func (f *fakeRemote) Like(ctx context.Context, id string) (int, error) {
	f.record("Like")
	return f.likes, f.err
}

// brokenStore fails every operation.
type brokenStore struct {
	err error
}

func (b brokenStore) GetRecommended(context.Context) ([]experience.Experience, error) {
	return nil, b.err
}
func (b brokenStore) GetAll(context.Context) ([]experience.Experience, error) { return nil, b.err }
func (b brokenStore) GetByID(context.Context, string) (experience.Experience, bool, error) {
	return experience.Experience{}, false, b.err
}
func (b brokenStore) Upsert(context.Context, []experience.Experience) error { return b.err }
func (b brokenStore) UpdateLikeStatus(context.Context, string, bool, int) error {
	return b.err
}
func (b brokenStore) Clear(context.Context) error { return b.err }

func dto(id string, recommended bool, city *remote.CityDTO) remote.ExperienceDTO {
	flag := 0
	if recommended {
		flag = 1
	}
	return remote.ExperienceDTO{
		ID:          id,
		Title:       "Experience " + id,
		CoverPhoto:  "https://cdn.example.com/" + id + ".jpg",
		ViewsNo:     10,
		LikesNo:     5,
		Recommended: flag,
		City:        city,
	}
}

func openStore(t *testing.T) *localstore.BunStore {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	store, err := localstore.Open(context.Background(), fmt.Sprintf("file:%s?mode=memory&cache=shared", name), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

var errUnreachable = &remote.NetworkError{Kind: remote.KindUnreachable, Err: errors.New("connection refused")}

func TestGetRecommended_FiltersResultButCachesEverything(t *testing.T) {
	aswan := &remote.CityDTO{ID: 2, Name: "Aswan"}
	src := &fakeRemote{recommended: []remote.ExperienceDTO{dto("1", true, aswan), dto("5", false, aswan)}}
	store := openStore(t)
	repo := New(src, store, testsupport.NewRecordingLogger())
	ctx := context.Background()

	got, err := repo.GetRecommended(ctx, false)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "1", got[0].ID)
	assert.True(t, got[0].IsRecommended)

	all, err := store.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	cities, err := store.Cities(ctx)
	require.NoError(t, err)
	assert.Len(t, cities, 1)
}

func TestGetRecommended_FallsBackToCache(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	require.NoError(t, store.Upsert(ctx, []experience.Experience{
		testsupport.NewExperience("9", testsupport.Recommended()),
	}))

	logger := testsupport.NewRecordingLogger()
	repo := New(&fakeRemote{err: errUnreachable}, store, logger)

	got, err := repo.GetRecommended(ctx, false)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "9", got[0].ID)
	assert.True(t, logger.Has("error", "remote fetch failed, falling back to cache"))
}

func TestGetRecent_EmptyFallbackReturnsEmptyList(t *testing.T) {
	logger := testsupport.NewRecordingLogger()
	repo := New(&fakeRemote{err: errUnreachable}, openStore(t), logger)

	got, err := repo.GetRecent(context.Background(), true)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.True(t, logger.Has("error", "remote fetch failed, falling back to cache"))
}

func TestGetRecent_CacheFaultIsPersistenceError(t *testing.T) {
	storeErr := &localstore.PersistenceError{Kind: localstore.KindFetchFailed, Err: errors.New("disk")}
	repo := New(&fakeRemote{err: errUnreachable}, brokenStore{err: storeErr}, nil)

	_, err := repo.GetRecent(context.Background(), false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, experience.ErrPersistence))
	assert.True(t, errors.Is(err, localstore.ErrFetchFailed))
	assert.False(t, errors.Is(err, experience.ErrNetwork))
}

func TestGetRecent_CacheWriteFailureIsSwallowed(t *testing.T) {
	src := &fakeRemote{recent: []remote.ExperienceDTO{dto("1", false, nil), dto("2", true, nil)}}
	logger := testsupport.NewRecordingLogger()
	repo := New(src, brokenStore{err: localstore.ErrSaveFailed}, logger)

	got, err := repo.GetRecent(context.Background(), false)
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.True(t, logger.Has("error", "failed to cache experiences"))
}

func TestGetDetails_RemoteSuccessIsCached(t *testing.T) {
	src := &fakeRemote{details: map[string]remote.ExperienceDTO{"7": dto("7", true, &remote.CityDTO{ID: 1, Name: "Cairo"})}}
	store := openStore(t)
	repo := New(src, store, nil)
	ctx := context.Background()

	got, err := repo.GetDetails(ctx, "7", false)
	require.NoError(t, err)
	assert.Equal(t, "Cairo", got.CityName())

	cached, found, err := store.GetByID(ctx, "7")
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, got.Equal(cached))
}

func TestGetDetails_FallsBackToCachedRecord(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	want := testsupport.NewExperience("3")
	require.NoError(t, store.Upsert(ctx, []experience.Experience{want}))

	repo := New(&fakeRemote{err: errUnreachable}, store, nil)

	got, err := repo.GetDetails(ctx, "3", false)
	require.NoError(t, err)
	assert.True(t, want.Equal(got))
}

func TestGetDetails_MissingEverywhereIsNotFound(t *testing.T) {
	repo := New(&fakeRemote{}, openStore(t), nil)

	_, err := repo.GetDetails(context.Background(), "404", false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, experience.ErrExperienceNotFound))
	assert.Equal(t, experience.KindExperienceNotFound, experience.KindOf(err))
}

func TestGetDetails_CacheFaultIsPersistenceError(t *testing.T) {
	repo := New(&fakeRemote{err: errUnreachable}, brokenStore{err: localstore.ErrFetchFailed}, nil)

	_, err := repo.GetDetails(context.Background(), "1", false)
	assert.True(t, errors.Is(err, experience.ErrPersistence))
}

func TestSearch_IsRemoteOnly(t *testing.T) {
	store := openStore(t)
	src := &fakeRemote{search: []remote.ExperienceDTO{dto("4", false, nil)}}
	repo := New(src, store, nil)
	ctx := context.Background()

	got, err := repo.Search(ctx, "pyramids")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "pyramids", src.lastQuery)

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n, "search results must not be cached")
}

func TestSearch_FailureHasNoFallback(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	require.NoError(t, store.Upsert(ctx, []experience.Experience{testsupport.NewExperience("1")}))

	repo := New(&fakeRemote{err: remote.ErrTimeout}, store, nil)

	_, err := repo.Search(ctx, "pyramids")
	require.Error(t, err)
	assert.True(t, errors.Is(err, experience.ErrNetwork))
	assert.True(t, errors.Is(err, remote.ErrTimeout))
}

func TestLike_UpdatesCacheWithConfirmedCount(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	require.NoError(t, store.Upsert(ctx, []experience.Experience{testsupport.NewExperience("1", testsupport.WithLikes(10))}))

	repo := New(&fakeRemote{likes: 15}, store, nil)

	count, err := repo.Like(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, 15, count)

	cached, _, err := store.GetByID(ctx, "1")
	require.NoError(t, err)
	assert.True(t, cached.IsLiked)
	assert.Equal(t, 15, cached.LikesCount)
}

func TestLike_CacheFailureIsSwallowed(t *testing.T) {
	logger := testsupport.NewRecordingLogger()
	repo := New(&fakeRemote{likes: 3}, brokenStore{err: localstore.ErrSaveFailed}, logger)

	count, err := repo.Like(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.True(t, logger.Has("error", "failed to update like status in cache"))
}

func TestLike_RemoteFailureLeavesCacheUntouched(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	require.NoError(t, store.Upsert(ctx, []experience.Experience{testsupport.NewExperience("1", testsupport.WithLikes(10))}))

	repo := New(&fakeRemote{err: remote.ErrServerError}, store, nil)

	_, err := repo.Like(ctx, "1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, experience.ErrNetwork))

	cached, _, err := store.GetByID(ctx, "1")
	require.NoError(t, err)
	assert.False(t, cached.IsLiked)
	assert.Equal(t, 10, cached.LikesCount)
}

func TestClearCache(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	require.NoError(t, store.Upsert(ctx, []experience.Experience{testsupport.NewExperience("1")}))

	repo := New(&fakeRemote{}, store, nil)
	require.NoError(t, repo.ClearCache(ctx))

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	broken := New(&fakeRemote{}, brokenStore{err: localstore.ErrDeleteFailed}, nil)
	assert.True(t, errors.Is(broken.ClearCache(ctx), experience.ErrPersistence))
}

func TestForceRefreshAlwaysGoesRemoteFirst(t *testing.T) {
	src := &fakeRemote{recent: []remote.ExperienceDTO{dto("1", false, nil)}}
	repo := New(src, openStore(t), nil)
	ctx := context.Background()

	_, err := repo.GetRecent(ctx, false)
	require.NoError(t, err)
	_, err = repo.GetRecent(ctx, true)
	require.NoError(t, err)

	assert.Equal(t, []string{"GetRecent", "GetRecent"}, src.getCalls())
}
