package experience

// UnknownCityName is shown for experiences that arrive without a city.
const UnknownCityName = "Unknown"

// City is the place an experience belongs to. Many experiences share one city.
type City struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Experience is an immutable snapshot of a tour. Methods that "change" a field
// return a new value; nothing in this package mutates a received Experience.
type Experience struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	CoverPhotoURL string `json:"cover_photo_url"`
	Description   string `json:"description"`
	ViewsCount    int    `json:"views_count"`
	LikesCount    int    `json:"likes_count"`
	IsRecommended bool   `json:"is_recommended"`
	HasVideo      bool   `json:"has_video"`
	City          *City  `json:"city,omitempty"`
	// TourContentURL is empty when no 360° tour is available.
	TourContentURL string `json:"tour_content_url"`
	// IsLiked is tracked on the client only.
	IsLiked bool `json:"is_liked"`
}

// HasTour reports whether the experience links to 360° content.
func (e Experience) HasTour() bool {
	return e.TourContentURL != ""
}

// CityName returns the city name or UnknownCityName.
func (e Experience) CityName() string {
	if e.City == nil {
		return UnknownCityName
	}
	return e.City.Name
}

// Clone returns a deep copy so callers never share the City pointer.
func (e Experience) Clone() Experience {
	if e.City != nil {
		city := *e.City
		e.City = &city
	}
	return e
}

// WithLike returns a copy marked as liked with the given count.
func (e Experience) WithLike(likesCount int) Experience {
	out := e.Clone()
	out.IsLiked = true
	out.LikesCount = likesCount
	return out
}

// Optimistic returns the locally derived copy shown before the server confirms a like.
func (e Experience) Optimistic() Experience {
	return e.WithLike(e.LikesCount + 1)
}

// Equal compares two experiences field by field, including the city value.
func (e Experience) Equal(other Experience) bool {
	if (e.City == nil) != (other.City == nil) {
		return false
	}
	if e.City != nil && *e.City != *other.City {
		return false
	}
	a, b := e, other
	a.City, b.City = nil, nil
	return a == b
}

// CloneAll deep copies a slice of experiences. A nil input yields an empty slice.
func CloneAll(items []Experience) []Experience {
	out := make([]Experience, len(items))
	for i, item := range items {
		out[i] = item.Clone()
	}
	return out
}

// FilterRecommended keeps only experiences flagged as recommended, preserving order.
func FilterRecommended(items []Experience) []Experience {
	out := make([]Experience, 0, len(items))
	for _, item := range items {
		if item.IsRecommended {
			out = append(out, item)
		}
	}
	return out
}

// ReplaceByID returns a new slice where every element with the same ID as
// replacement is swapped for it. Order and length are preserved and the
// input slice is left untouched. The second result reports whether any
// element matched.
func ReplaceByID(items []Experience, replacement Experience) ([]Experience, bool) {
	if items == nil {
		return nil, false
	}
	out := make([]Experience, len(items))
	replaced := false
	for i, item := range items {
		if item.ID == replacement.ID {
			out[i] = replacement.Clone()
			replaced = true
			continue
		}
		out[i] = item
	}
	return out, replaced
}

// FindByID returns the first experience with the given id.
func FindByID(items []Experience, id string) (Experience, bool) {
	for _, item := range items {
		if item.ID == id {
			return item, true
		}
	}
	return Experience{}, false
}
