package projection

import (
	"context"

	"github.com/goliatone/go-experience-repository/experience"
)

// ListLoader loads one experience list.
type ListLoader interface {
	Execute(ctx context.Context, forceRefresh bool) ([]experience.Experience, error)
}

// Searcher runs a title search.
type Searcher interface {
	Execute(ctx context.Context, query string) ([]experience.Experience, error)
}

// DetailLoader loads one experience.
type DetailLoader interface {
	Execute(ctx context.Context, id string, forceRefresh bool) (experience.Experience, error)
}

// Liker likes an experience and returns the confirmed likes count.
type Liker interface {
	Execute(ctx context.Context, id string) (int, error)
}
