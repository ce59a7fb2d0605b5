package remote

import (
	"encoding/json"

	"github.com/goliatone/go-experience-repository/experience"
)

// Envelope is the wrapper around every API response.
type Envelope[T any] struct {
	Meta Meta `json:"meta"`
	Data T    `json:"data"`
}

// Meta reports the application status of a response. Success iff Code == 200.
type Meta struct {
	Code      int        `json:"code"`
	Errors    []APIError `json:"errors"`
	Exception *string    `json:"exception"`
}

// APIError is one application-level error entry.
type APIError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// CityDTO is the wire form of a city.
type CityDTO struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// ExperienceDTO is the wire form of an experience. Flags arrive as 0|1.
type ExperienceDTO struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	CoverPhoto  string   `json:"cover_photo"`
	Description string   `json:"description"`
	ViewsNo     int      `json:"views_no"`
	LikesNo     int      `json:"likes_no"`
	Recommended int      `json:"recommended"`
	HasVideo    int      `json:"has_video"`
	City        *CityDTO `json:"city"`
	TourHTML    string   `json:"tour_html"`
}

// ToEntity maps the payload to the domain. The server does not report
// per-user likes, so IsLiked starts false.
func (d ExperienceDTO) ToEntity() experience.Experience {
	e := experience.Experience{
		ID:             d.ID,
		Title:          d.Title,
		CoverPhotoURL:  d.CoverPhoto,
		Description:    d.Description,
		ViewsCount:     nonNegative(d.ViewsNo),
		LikesCount:     nonNegative(d.LikesNo),
		IsRecommended:  d.Recommended == 1,
		HasVideo:       d.HasVideo == 1,
		TourContentURL: d.TourHTML,
	}
	if d.City != nil {
		e.City = &experience.City{ID: d.City.ID, Name: d.City.Name}
	}
	return e
}

// ToEntities maps a list of payloads.
func ToEntities(dtos []ExperienceDTO) []experience.Experience {
	out := make([]experience.Experience, 0, len(dtos))
	for _, dto := range dtos {
		out = append(out, dto.ToEntity())
	}
	return out
}

func nonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

// likeData accepts either the bare count or a full experience object.
type likeData struct {
	LikesCount int
}

func (l *likeData) UnmarshalJSON(b []byte) error {
	var count int
	if err := json.Unmarshal(b, &count); err == nil {
		l.LikesCount = nonNegative(count)
		return nil
	}
	var dto ExperienceDTO
	if err := json.Unmarshal(b, &dto); err != nil {
		return err
	}
	l.LikesCount = nonNegative(dto.LikesNo)
	return nil
}
