package projection

import (
	"context"
	"sync"

	"github.com/goliatone/go-experience-repository/experience"
	"github.com/goliatone/go-experience-repository/logging"
)

// Detail holds the state of a single experience screen.
type Detail struct {
	id     string
	load   DetailLoader
	like   Liker
	logger logging.Logger

	mu    sync.RWMutex
	state AsyncState[experience.Experience]
	// seq changes on every Load so a like settling after a reload is dropped.
	seq uint64
}

// NewDetail builds an idle detail projection for id.
func NewDetail(id string, load DetailLoader, like Liker, logger logging.Logger) *Detail {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Detail{
		id:     id,
		load:   load,
		like:   like,
		logger: logger.WithFields(logging.Fields{"component": "projection.detail", "experience_id": id}),
	}
}

// Load fetches the experience.
func (d *Detail) Load(ctx context.Context, forceRefresh bool) {
	d.mu.Lock()
	d.seq++
	seq := d.seq
	d.state = Loading[experience.Experience]()
	d.mu.Unlock()

	result := FromResult[experience.Experience](d.load.Execute(ctx, d.id, forceRefresh))
	d.setIfCurrent(seq, result)
}

// Refresh reloads asking for fresh data.
func (d *Detail) Refresh(ctx context.Context) {
	d.Load(ctx, true)
}

// Like applies the optimistic like protocol to the loaded experience.
func (d *Detail) Like(ctx context.Context) {
	d.mu.Lock()
	current, ok := d.state.Value()
	if !ok || current.IsLiked {
		d.mu.Unlock()
		return
	}
	d.state = Success(current.Optimistic())
	seq := d.seq
	d.mu.Unlock()

	likesCount, err := d.like.Execute(ctx, current.ID)
	if err != nil {
		d.logger.Debug("like rolled back", logging.Fields{"error": err.Error()})
		d.setIfCurrent(seq, Success(current))
		return
	}
	d.setIfCurrent(seq, Success(current.WithLike(likesCount)))
}

// State returns the current state.
func (d *Detail) State() AsyncState[experience.Experience] {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.state
}

// Experience returns a copy of the loaded experience.
func (d *Detail) Experience() (experience.Experience, bool) {
	e, ok := d.State().Value()
	if !ok {
		return experience.Experience{}, false
	}
	return e.Clone(), true
}

// setIfCurrent commits state unless a newer Load started after seq.
func (d *Detail) setIfCurrent(seq uint64, state AsyncState[experience.Experience]) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if seq != d.seq {
		return
	}
	d.state = state
}
