package localstore

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/goliatone/go-experience-repository/experience"
)

// CityModel is the stored city. One row per city id.
type CityModel struct {
	bun.BaseModel `bun:"table:cities,alias:c"`

	ID   int    `bun:"id,pk"`
	Name string `bun:"name,notnull"`
}

// ExperienceModel is the cached record of an experience.
type ExperienceModel struct {
	bun.BaseModel `bun:"table:experiences,alias:e"`

	ID            string     `bun:"id,pk"`
	Title         string     `bun:"title,notnull"`
	CoverPhoto    string     `bun:"cover_photo,notnull"`
	Description   string     `bun:"description,notnull"`
	ViewsCount    int        `bun:"views_count,notnull"`
	LikesCount    int        `bun:"likes_count,notnull"`
	IsRecommended bool       `bun:"is_recommended,notnull"`
	HasVideo      bool       `bun:"has_video,notnull"`
	CityID        *int       `bun:"city_id"`
	City          *CityModel `bun:"rel:belongs-to,join:city_id=id"`
	TourHTML      string     `bun:"tour_html,notnull"`
	IsLiked       bool       `bun:"is_liked,notnull"`
	CachedAt      time.Time  `bun:"cached_at,notnull"`
}

func newExperienceModel(e experience.Experience, cachedAt time.Time) *ExperienceModel {
	return &ExperienceModel{
		ID:            e.ID,
		Title:         e.Title,
		CoverPhoto:    e.CoverPhotoURL,
		Description:   e.Description,
		ViewsCount:    e.ViewsCount,
		LikesCount:    e.LikesCount,
		IsRecommended: e.IsRecommended,
		HasVideo:      e.HasVideo,
		TourHTML:      e.TourContentURL,
		IsLiked:       e.IsLiked,
		CachedAt:      cachedAt,
	}
}

// ToEntity drops cache-only fields. The city is taken from the join only
// when the row actually references one.
func (m *ExperienceModel) ToEntity() experience.Experience {
	e := experience.Experience{
		ID:             m.ID,
		Title:          m.Title,
		CoverPhotoURL:  m.CoverPhoto,
		Description:    m.Description,
		ViewsCount:     m.ViewsCount,
		LikesCount:     m.LikesCount,
		IsRecommended:  m.IsRecommended,
		HasVideo:       m.HasVideo,
		TourContentURL: m.TourHTML,
		IsLiked:        m.IsLiked,
	}
	if m.CityID != nil && m.City != nil {
		e.City = &experience.City{ID: m.City.ID, Name: m.City.Name}
	}
	return e
}

func toEntities(models []ExperienceModel) []experience.Experience {
	out := make([]experience.Experience, 0, len(models))
	for i := range models {
		out = append(out, models[i].ToEntity())
	}
	return out
}
