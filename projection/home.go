package projection

import (
	"context"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-experience-repository/experience"
	"github.com/goliatone/go-experience-repository/logging"
)

// ExperienceList is the state of one displayed list.
type ExperienceList = AsyncState[[]experience.Experience]

// HomeDeps are the use cases the home projection drives.
type HomeDeps struct {
	Recommended ListLoader
	Recent      ListLoader
	Search      Searcher
	Like        Liker
}

// Home holds the recommended, recent and search result lists. All methods
// are safe for concurrent use; state is replaced, never mutated in place.
type Home struct {
	deps   HomeDeps
	logger logging.Logger

	mu          sync.RWMutex
	recommended ExperienceList
	recent      ExperienceList
	search      ExperienceList
	searchQuery string
	// searchSeq drops results from searches superseded while in flight.
	searchSeq uint64
}

// NewHome builds an idle home projection.
func NewHome(deps HomeDeps, logger logging.Logger) *Home {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Home{
		deps:   deps,
		logger: logger.WithFields(logging.Fields{"component": "projection.home"}),
	}
}

// LoadInitial loads both lists concurrently and commits them together once
// both calls have returned. One list failing never affects the other.
func (h *Home) LoadInitial(ctx context.Context) {
	h.load(ctx, false)
}

// Refresh reloads both lists asking for fresh data.
func (h *Home) Refresh(ctx context.Context) {
	h.load(ctx, true)
}

func (h *Home) load(ctx context.Context, forceRefresh bool) {
	h.mu.Lock()
	h.recommended = Loading[[]experience.Experience]()
	h.recent = Loading[[]experience.Experience]()
	h.mu.Unlock()

	var recommended, recent ExperienceList
	var g errgroup.Group
	g.Go(func() error {
		recommended = FromResult[[]experience.Experience](h.deps.Recommended.Execute(ctx, forceRefresh))
		return nil
	})
	g.Go(func() error {
		recent = FromResult[[]experience.Experience](h.deps.Recent.Execute(ctx, forceRefresh))
		return nil
	})
	_ = g.Wait()

	h.mu.Lock()
	h.recommended = recommended
	h.recent = recent
	h.mu.Unlock()

	if err := recommended.Err(); err != nil {
		h.logger.Warn("recommended experiences failed to load", logging.Fields{"error": err.Error()})
	}
	if err := recent.Err(); err != nil {
		h.logger.Warn("recent experiences failed to load", logging.Fields{"error": err.Error()})
	}
}

// Search runs query. A blank query resets the results to idle without I/O.
func (h *Home) Search(ctx context.Context, query string) {
	h.mu.Lock()
	h.searchSeq++
	seq := h.searchSeq
	h.searchQuery = query
	if strings.TrimSpace(query) == "" {
		h.search = Idle[[]experience.Experience]()
		h.mu.Unlock()
		return
	}
	h.search = Loading[[]experience.Experience]()
	h.mu.Unlock()

	result := FromResult[[]experience.Experience](h.deps.Search.Execute(ctx, query))

	h.mu.Lock()
	defer h.mu.Unlock()
	if seq != h.searchSeq {
		return
	}
	h.search = result
}

// ClearSearch resets the query and results.
func (h *Home) ClearSearch() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.searchSeq++
	h.searchQuery = ""
	h.search = Idle[[]experience.Experience]()
}

// Like applies the optimistic like protocol to every list holding item.
// Already liked items are ignored. On success the server count replaces
// the guess; on failure the previous item is restored and nothing is
// reported.
func (h *Home) Like(ctx context.Context, item experience.Experience) {
	h.mu.Lock()
	current := h.findLocked(item)
	if current.IsLiked {
		h.mu.Unlock()
		return
	}
	h.spliceLocked(current.Optimistic())
	h.mu.Unlock()

	likesCount, err := h.deps.Like.Execute(ctx, current.ID)

	h.mu.Lock()
	defer h.mu.Unlock()
	if err != nil {
		h.logger.Debug("like rolled back", logging.Fields{"experience_id": current.ID, "error": err.Error()})
		h.spliceLocked(current)
		return
	}
	h.spliceLocked(current.WithLike(likesCount))
}

// findLocked returns the displayed version of item, or item itself.
func (h *Home) findLocked(item experience.Experience) experience.Experience {
	for _, list := range []ExperienceList{h.recommended, h.recent, h.search} {
		if items, ok := list.Value(); ok {
			if found, ok := experience.FindByID(items, item.ID); ok {
				return found.Clone()
			}
		}
	}
	return item.Clone()
}

// spliceLocked replaces item by id in every successful list.
func (h *Home) spliceLocked(item experience.Experience) {
	h.recommended = splice(h.recommended, item)
	h.recent = splice(h.recent, item)
	h.search = splice(h.search, item)
}

func splice(list ExperienceList, item experience.Experience) ExperienceList {
	items, ok := list.Value()
	if !ok {
		return list
	}
	replaced, changed := experience.ReplaceByID(items, item)
	if !changed {
		return list
	}
	return Success(replaced)
}

// RecommendedState returns the recommended list state. Its slice must not be modified.
func (h *Home) RecommendedState() ExperienceList {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.recommended
}

// RecentState returns the recent list state. Its slice must not be modified.
func (h *Home) RecentState() ExperienceList {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.recent
}

// SearchState returns the search results state. Its slice must not be modified.
func (h *Home) SearchState() ExperienceList {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.search
}

// SearchQuery returns the last query passed to Search.
func (h *Home) SearchQuery() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.searchQuery
}

// Recommended returns a copy of the loaded recommended list, or an empty one.
func (h *Home) Recommended() []experience.Experience {
	return experience.CloneAll(h.RecommendedState().ValueOr(nil))
}

// Recent returns a copy of the loaded recent list, or an empty one.
func (h *Home) Recent() []experience.Experience {
	return experience.CloneAll(h.RecentState().ValueOr(nil))
}

// SearchResults returns a copy of the search results, or an empty list.
func (h *Home) SearchResults() []experience.Experience {
	return experience.CloneAll(h.SearchState().ValueOr(nil))
}
