package validators

import (
	"net/http"
	"strconv"
	"strings"

	pkgerrors "github.com/diskleads/leadmarket-backend/pkg/errors"
	"github.com/diskleads/leadmarket-backend/pkg/types"
)

func ParseQueryInt(r *http.Request, key string, defaultVal, min, max int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return defaultVal, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "query parameter must be numeric").WithDetails(map[string]any{"field": key})
	}
	if value < min || value > max {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "query parameter out of range").WithDetails(map[string]any{"field": key, "min": min, "max": max})
	}
	return value, nil
}

// FilterSnapshotFromQuery reads the catalog filter parameters. Multi-value
// facets are comma separated; empty entries are dropped.
func FilterSnapshotFromQuery(r *http.Request) (types.FilterSnapshot, error) {
	q := r.URL.Query()

	snapshot := types.FilterSnapshot{
		Version:       types.FilterSnapshotVersion,
		Segments:      splitCSV(q.Get("segments")),
		Categories:    splitCSV(q.Get("categories")),
		States:        splitCSV(q.Get("states")),
		Cities:        splitCSV(q.Get("cities")),
		Neighborhoods: splitCSV(q.Get("neighborhoods")),
		NameQuery:     strings.TrimSpace(q.Get("q")),
	}

	ratingMin, err := parseQueryFloat(q.Get("rating_min"), "rating_min")
	if err != nil {
		return types.FilterSnapshot{}, err
	}
	ratingMax, err := parseQueryFloat(q.Get("rating_max"), "rating_max")
	if err != nil {
		return types.FilterSnapshot{}, err
	}
	if ratingMax > 0 && ratingMin > ratingMax {
		return types.FilterSnapshot{}, pkgerrors.New(pkgerrors.CodeValidation, "rating_min cannot exceed rating_max")
	}
	snapshot.RatingMin = ratingMin
	snapshot.RatingMax = ratingMax

	switch website := types.WebsiteFilter(strings.TrimSpace(q.Get("website"))); website {
	case "", types.WebsiteAny:
		snapshot.Website = types.WebsiteAny
	case types.WebsiteWith, types.WebsiteWithout:
		snapshot.Website = website
	default:
		return types.FilterSnapshot{}, pkgerrors.New(pkgerrors.CodeValidation, "website must be one of any, with, without").WithDetails(map[string]any{"field": "website"})
	}

	return snapshot, nil
}

func parseQueryFloat(raw, field string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "query parameter must be numeric").WithDetails(map[string]any{"field": field})
	}
	if value < 0 || value > 5 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "rating must be between 0 and 5").WithDetails(map[string]any{"field": field})
	}
	return value, nil
}

func splitCSV(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
