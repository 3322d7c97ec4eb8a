package leads

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/diskleads/leadmarket-backend/pkg/db/models"
	"github.com/diskleads/leadmarket-backend/pkg/pagination"
	"github.com/diskleads/leadmarket-backend/pkg/types"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a leads repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// facet levels, in the order a buyer narrows the selection
const (
	scopeSegments = iota
	scopeCategories
	scopeStates
	scopeCities
	scopeNeighborhoods
	scopeAll
)

// applyFilters narrows the query with every filter level strictly below the
// given scope. scopeAll applies the full snapshot including name, rating and
// website attributes.
func applyFilters(q *gorm.DB, f types.FilterSnapshot, scope int) *gorm.DB {
	if scope > scopeSegments && len(f.Segments) > 0 {
		q = q.Where("segment IN ?", f.Segments)
	}
	if scope > scopeCategories && len(f.Categories) > 0 {
		q = q.Where("category IN ?", f.Categories)
	}
	if scope > scopeStates && len(f.States) > 0 {
		q = q.Where("state IN ?", f.States)
	}
	if scope > scopeCities && len(f.Cities) > 0 {
		q = q.Where("city IN ?", f.Cities)
	}
	if scope > scopeNeighborhoods && len(f.Neighborhoods) > 0 {
		q = q.Where("neighborhood IN ?", f.Neighborhoods)
	}
	if scope < scopeAll {
		return q
	}

	if trimmed := strings.TrimSpace(f.NameQuery); trimmed != "" {
		q = q.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(trimmed)+"%")
	}
	if f.RatingMin > 0 {
		q = q.Where("rating >= ?", f.RatingMin)
	}
	if f.RatingMax > 0 {
		q = q.Where("rating <= ?", f.RatingMax)
	}
	switch f.Website {
	case types.WebsiteWith:
		q = q.Where("website <> ''")
	case types.WebsiteWithout:
		q = q.Where("website = ''")
	}
	return q
}

func (r *repository) List(ctx context.Context, filters types.FilterSnapshot, params pagination.Params) (*LeadList, error) {
	limit := pagination.NormalizeLimit(params.Limit)
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}

	q := applyFilters(r.db.WithContext(ctx).Model(&models.Lead{}), filters, scopeAll)
	if cursor != nil {
		q = q.Where(
			"created_at < ? OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var rows []models.Lead
	err = q.Order("created_at DESC, id DESC").
		Limit(limit + 1).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	list := &LeadList{HasMore: len(rows) > limit}
	if list.HasMore {
		rows = rows[:limit]
	}
	list.Items = make([]LeadSummary, len(rows))
	for i, row := range rows {
		list.Items[i] = LeadSummary{
			ID:           row.ID,
			Name:         row.Name,
			Segment:      row.Segment,
			Category:     row.Category,
			State:        row.State,
			City:         row.City,
			Neighborhood: row.Neighborhood,
			Rating:       row.Rating,
			ReviewCount:  row.ReviewCount,
			CreatedAt:    row.CreatedAt,
		}
	}
	if list.HasMore && len(rows) > 0 {
		last := rows[len(rows)-1]
		list.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return list, nil
}

func (r *repository) ListAll(ctx context.Context, filters types.FilterSnapshot) ([]models.Lead, error) {
	var rows []models.Lead
	err := applyFilters(r.db.WithContext(ctx).Model(&models.Lead{}), filters, scopeAll).
		Order("name ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) Count(ctx context.Context, filters types.FilterSnapshot) (int64, error) {
	var count int64
	err := applyFilters(r.db.WithContext(ctx).Model(&models.Lead{}), filters, scopeAll).
		Count(&count).Error
	return count, err
}

func (r *repository) Summary(ctx context.Context, filters types.FilterSnapshot) (*SelectionSummary, error) {
	var out SelectionSummary
	err := applyFilters(r.db.WithContext(ctx).Model(&models.Lead{}), filters, scopeAll).
		Select("COUNT(*) AS count, COALESCE(AVG(rating), 0) AS average_rating").
		Scan(&out).Error
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Facets returns the cascading dropdown options: every level is constrained
// by the selections made at the levels above it, never by its own.
func (r *repository) Facets(ctx context.Context, filters types.FilterSnapshot) (*Facets, error) {
	out := &Facets{}

	levels := []struct {
		column string
		scope  int
		dest   *[]string
	}{
		{"segment", scopeSegments, &out.Segments},
		{"category", scopeCategories, &out.Categories},
		{"state", scopeStates, &out.States},
		{"city", scopeCities, &out.Cities},
		{"neighborhood", scopeNeighborhoods, &out.Neighborhoods},
	}

	for _, level := range levels {
		var values []string
		err := applyFilters(r.db.WithContext(ctx).Model(&models.Lead{}), filters, level.scope).
			Distinct(level.column).
			Where(level.column + " <> ''").
			Order(level.column + " ASC").
			Pluck(level.column, &values).Error
		if err != nil {
			return nil, err
		}
		*level.dest = values
	}

	return out, nil
}
