package controllers

import (
	"github.com/diskleads/leadmarket-backend/pkg/types"
)

// filterPayload is the request-body shape of a catalog selection. The stored
// snapshot version is assigned server side.
type filterPayload struct {
	Segments      []string `json:"segments,omitempty"`
	Categories    []string `json:"categories,omitempty"`
	States        []string `json:"states,omitempty"`
	Cities        []string `json:"cities,omitempty"`
	Neighborhoods []string `json:"neighborhoods,omitempty"`
	NameQuery     string   `json:"name_query,omitempty"`
	RatingMin     float64  `json:"rating_min,omitempty" validate:"gte=0,lte=5"`
	RatingMax     float64  `json:"rating_max,omitempty" validate:"gte=0,lte=5"`
	Website       string   `json:"website,omitempty" validate:"omitempty,oneof=any with without"`
}

func (p filterPayload) toSnapshot() types.FilterSnapshot {
	website := types.WebsiteFilter(p.Website)
	if website == "" {
		website = types.WebsiteAny
	}
	return types.FilterSnapshot{
		Version:       types.FilterSnapshotVersion,
		Segments:      p.Segments,
		Categories:    p.Categories,
		States:        p.States,
		Cities:        p.Cities,
		Neighborhoods: p.Neighborhoods,
		NameQuery:     p.NameQuery,
		RatingMin:     p.RatingMin,
		RatingMax:     p.RatingMax,
		Website:       website,
	}
}
