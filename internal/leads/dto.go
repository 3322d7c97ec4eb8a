package leads

import (
	"time"

	"github.com/google/uuid"
)

// LeadSummary is the row shape returned by catalog listings. Contact fields
// are withheld until an export is purchased.
type LeadSummary struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Segment      string    `json:"segment"`
	Category     string    `json:"category"`
	State        string    `json:"state"`
	City         string    `json:"city"`
	Neighborhood string    `json:"neighborhood,omitempty"`
	Rating       float64   `json:"rating"`
	ReviewCount  int       `json:"review_count"`
	CreatedAt    time.Time `json:"created_at"`
}

// LeadList is one page of catalog results.
type LeadList struct {
	Items      []LeadSummary `json:"items"`
	NextCursor string        `json:"next_cursor,omitempty"`
	HasMore    bool          `json:"has_more"`
}

// Facets holds the cascading dropdown options for the current selection.
// Each level is scoped by the levels above it, mirroring how a buyer narrows
// from sector to neighborhood.
type Facets struct {
	Segments      []string `json:"segments"`
	Categories    []string `json:"categories"`
	States        []string `json:"states"`
	Cities        []string `json:"cities"`
	Neighborhoods []string `json:"neighborhoods"`
}

// SelectionSummary aggregates the currently filtered subset for display.
type SelectionSummary struct {
	Count         int64   `json:"count"`
	AverageRating float64 `json:"average_rating"`
}
