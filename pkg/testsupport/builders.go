package testsupport

import (
	"fmt"

	"github.com/goliatone/go-experience-repository/experience"
)

// ExperienceOption customizes a built experience.
type ExperienceOption func(*experience.Experience)

// NewExperience returns a populated experience with the given id.
func NewExperience(id string, opts ...ExperienceOption) experience.Experience {
	e := experience.Experience{
		ID:            id,
		Title:         fmt.Sprintf("Experience %s", id),
		CoverPhotoURL: fmt.Sprintf("https://cdn.example.com/%s.jpg", id),
		Description:   fmt.Sprintf("Description of experience %s", id),
		ViewsCount:    100,
		LikesCount:    10,
		City:          &experience.City{ID: 1, Name: "Cairo"},
	}
	for _, opt := range opts {
		opt(&e)
	}
	return e
}

// Recommended marks the experience as recommended.
func Recommended() ExperienceOption {
	return func(e *experience.Experience) { e.IsRecommended = true }
}

// Liked marks the experience as liked by the user.
func Liked() ExperienceOption {
	return func(e *experience.Experience) { e.IsLiked = true }
}

// WithLikes sets the likes count.
func WithLikes(n int) ExperienceOption {
	return func(e *experience.Experience) { e.LikesCount = n }
}

// WithTitle sets the title.
func WithTitle(title string) ExperienceOption {
	return func(e *experience.Experience) { e.Title = title }
}

// InCity sets the city. A nil city leaves the experience without one.
func InCity(city *experience.City) ExperienceOption {
	return func(e *experience.Experience) { e.City = city }
}

// WithTour sets the 360 tour url.
func WithTour(url string) ExperienceOption {
	return func(e *experience.Experience) { e.TourContentURL = url }
}
