package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-experience-repository/experience"
	"github.com/goliatone/go-experience-repository/pkg/testsupport"
)

type mockRepository struct {
	mu    sync.Mutex
	calls []string
	args  []string
	err   error
	likes int
}

func (m *mockRepository) record(call, arg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, call)
	m.args = append(m.args, arg)
}

func (m *mockRepository) GetRecommended(ctx context.Context, forceRefresh bool) ([]experience.Experience, error) {
	m.record("GetRecommended", "")
	return []experience.Experience{testsupport.NewExperience("1", testsupport.Recommended())}, m.err
}

func (m *mockRepository) GetRecent(ctx context.Context, forceRefresh bool) ([]experience.Experience, error) {
	m.record("GetRecent", "")
	return []experience.Experience{testsupport.NewExperience("2")}, m.err
}

func (m *mockRepository) Search(ctx context.Context, query string) ([]experience.Experience, error) {
	m.record("Search", query)
	return nil, m.err
}

func (m *mockRepository) GetDetails(ctx context.Context, id string, forceRefresh bool) (experience.Experience, error) {
	m.record("GetDetails", id)
	return testsupport.NewExperience(id), m.err
}

func (m *mockRepository) Like(ctx context.Context, id string) (int, error) {
	m.record("Like", id)
	return m.likes, m.err
}

func TestListUseCasesForward(t *testing.T) {
	repo := &mockRepository{}
	ctx := context.Background()

	recommended, err := NewGetRecommendedExperiences(repo).Execute(ctx, true)
	require.NoError(t, err)
	assert.Len(t, recommended, 1)

	recent, err := NewGetRecentExperiences(repo).Execute(ctx, false)
	require.NoError(t, err)
	assert.Len(t, recent, 1)

	assert.Equal(t, []string{"GetRecommended", "GetRecent"}, repo.calls)
}

func TestGetExperienceDetails_TrimsID(t *testing.T) {
	repo := &mockRepository{}

	got, err := NewGetExperienceDetails(repo).Execute(context.Background(), "  42 \n", false)
	require.NoError(t, err)
	assert.Equal(t, "42", got.ID)
	assert.Equal(t, []string{"42"}, repo.args)
}

func TestIDValidation(t *testing.T) {
	for _, id := range []string{"", "   ", "\t\n"} {
		repo := &mockRepository{}

		_, err := NewGetExperienceDetails(repo).Execute(context.Background(), id, false)
		assert.True(t, errors.Is(err, experience.ErrInvalidExperienceID), "details %q: %v", id, err)

		_, err = NewLikeExperience(repo).Execute(context.Background(), id)
		assert.True(t, errors.Is(err, experience.ErrInvalidExperienceID), "like %q: %v", id, err)

		assert.Empty(t, repo.calls, "repository must not be invoked for %q", id)
	}
}

func TestLikeExperience_ReturnsConfirmedCount(t *testing.T) {
	repo := &mockRepository{likes: 12}

	count, err := NewLikeExperience(repo).Execute(context.Background(), " 7 ")
	require.NoError(t, err)
	assert.Equal(t, 12, count)
	assert.Equal(t, []string{"7"}, repo.args)
}

func TestLikeExperience_DoesNotReinterpretErrors(t *testing.T) {
	repoErr := experience.NetworkFailure(errors.New("offline"))
	repo := &mockRepository{err: repoErr}

	_, err := NewLikeExperience(repo).Execute(context.Background(), "7")
	assert.Same(t, repoErr, err)
}

func TestSearchExperiences_Validation(t *testing.T) {
	tests := []struct {
		name      string
		min       int
		query     string
		wantErr   bool
		wantQuery string
	}{
		{name: "empty", min: 2, query: "", wantErr: true},
		{name: "single rune after trim", min: 2, query: "  a  ", wantErr: true},
		{name: "two runes", min: 2, query: " ab ", wantQuery: "ab"},
		{name: "multibyte runes count once", min: 2, query: "مص", wantQuery: "مص"},
		{name: "custom minimum", min: 4, query: "abc", wantErr: true},
		{name: "no minimum allows empty", min: 0, query: "  ", wantQuery: ""},
		{name: "negative uses default", min: -1, query: "a", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockRepository{}
			uc := NewSearchExperiences(repo, tt.min)

			_, err := uc.Execute(context.Background(), tt.query)
			if tt.wantErr {
				assert.True(t, errors.Is(err, experience.ErrInvalidSearchQuery), "got %v", err)
				assert.Empty(t, repo.calls)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, []string{tt.wantQuery}, repo.args)
		})
	}
}

func TestNewSearchExperiences_DefaultMinimum(t *testing.T) {
	assert.Equal(t, DefaultMinQueryLength, NewSearchExperiences(&mockRepository{}, -1).MinQueryLength())
}
