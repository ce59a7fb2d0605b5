package usecase

import (
	"context"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-experience-repository/experience"
)

// DefaultMinQueryLength is the shortest trimmed search query accepted.
const DefaultMinQueryLength = 2

// Repository is the read/write API the use cases forward to.
type Repository interface {
	GetRecommended(ctx context.Context, forceRefresh bool) ([]experience.Experience, error)
	GetRecent(ctx context.Context, forceRefresh bool) ([]experience.Experience, error)
	Search(ctx context.Context, query string) ([]experience.Experience, error)
	GetDetails(ctx context.Context, id string, forceRefresh bool) (experience.Experience, error)
	Like(ctx context.Context, id string) (int, error)
}

// GetRecommendedExperiences loads the recommended list.
type GetRecommendedExperiences struct {
	repo Repository
}

func NewGetRecommendedExperiences(repo Repository) *GetRecommendedExperiences {
	return &GetRecommendedExperiences{repo: repo}
}

func (u *GetRecommendedExperiences) Execute(ctx context.Context, forceRefresh bool) ([]experience.Experience, error) {
	return u.repo.GetRecommended(ctx, forceRefresh)
}

// GetRecentExperiences loads the recent list.
type GetRecentExperiences struct {
	repo Repository
}

func NewGetRecentExperiences(repo Repository) *GetRecentExperiences {
	return &GetRecentExperiences{repo: repo}
}

func (u *GetRecentExperiences) Execute(ctx context.Context, forceRefresh bool) ([]experience.Experience, error) {
	return u.repo.GetRecent(ctx, forceRefresh)
}

// GetExperienceDetails loads one experience by trimmed id.
type GetExperienceDetails struct {
	repo Repository
}

func NewGetExperienceDetails(repo Repository) *GetExperienceDetails {
	return &GetExperienceDetails{repo: repo}
}

func (u *GetExperienceDetails) Execute(ctx context.Context, id string, forceRefresh bool) (experience.Experience, error) {
	trimmed, err := validateID(id)
	if err != nil {
		return experience.Experience{}, err
	}
	return u.repo.GetDetails(ctx, trimmed, forceRefresh)
}

// SearchExperiences forwards trimmed queries of at least MinQueryLength runes.
type SearchExperiences struct {
	repo           Repository
	minQueryLength int
}

// NewSearchExperiences uses DefaultMinQueryLength when minQueryLength < 0.
func NewSearchExperiences(repo Repository, minQueryLength int) *SearchExperiences {
	if minQueryLength < 0 {
		minQueryLength = DefaultMinQueryLength
	}
	return &SearchExperiences{repo: repo, minQueryLength: minQueryLength}
}

func (u *SearchExperiences) Execute(ctx context.Context, query string) ([]experience.Experience, error) {
	trimmed := strings.TrimSpace(query)
	if err := validation.Validate(trimmed, queryRules(u.minQueryLength)...); err != nil {
		return nil, &experience.Error{Kind: experience.KindInvalidSearchQuery, Cause: err}
	}
	return u.repo.Search(ctx, trimmed)
}

// MinQueryLength reports the configured minimum.
func (u *SearchExperiences) MinQueryLength() int {
	return u.minQueryLength
}

// LikeExperience likes one experience by trimmed id and returns the
// confirmed likes count.
type LikeExperience struct {
	repo Repository
}

func NewLikeExperience(repo Repository) *LikeExperience {
	return &LikeExperience{repo: repo}
}

func (u *LikeExperience) Execute(ctx context.Context, id string) (int, error) {
	trimmed, err := validateID(id)
	if err != nil {
		return 0, err
	}
	return u.repo.Like(ctx, trimmed)
}

func validateID(id string) (string, error) {
	trimmed := strings.TrimSpace(id)
	if err := validation.Validate(trimmed, validation.Required); err != nil {
		return "", &experience.Error{Kind: experience.KindInvalidExperienceID, Cause: err}
	}
	return trimmed, nil
}

// queryRules skips Required when no minimum applies, since length rules
// ignore empty values.
func queryRules(minLength int) []validation.Rule {
	if minLength == 0 {
		return nil
	}
	return []validation.Rule{validation.Required, validation.RuneLength(minLength, 0)}
}
