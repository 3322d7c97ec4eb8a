package types

// FilterSnapshotVersion is bumped whenever the snapshot shape changes so old
// order rows stay decodable.
const FilterSnapshotVersion = 1

// WebsiteFilter narrows leads by website presence.
type WebsiteFilter string

const (
	WebsiteAny     WebsiteFilter = "any"
	WebsiteWith    WebsiteFilter = "with"
	WebsiteWithout WebsiteFilter = "without"
)

// FilterSnapshot is the explicit, versioned record of the selection a buyer
// paid for. It is attached to the order so the purchased subset can be
// reproduced without reference to any session state.
type FilterSnapshot struct {
	Version       int           `json:"version"`
	Segments      []string      `json:"segments,omitempty"`
	Categories    []string      `json:"categories,omitempty"`
	States        []string      `json:"states,omitempty"`
	Cities        []string      `json:"cities,omitempty"`
	Neighborhoods []string      `json:"neighborhoods,omitempty"`
	NameQuery     string        `json:"nameQuery,omitempty"`
	RatingMin     float64       `json:"ratingMin"`
	RatingMax     float64       `json:"ratingMax"`
	Website       WebsiteFilter `json:"website,omitempty"`
}
