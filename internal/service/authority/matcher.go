package authority

import (
	"bytes"
	"context"
	"strings"

	"CivicLens/internal/models"
	"CivicLens/pkg/logger"

	"github.com/google/uuid"
)

type catalogRepo interface {
	ListAuthorities(ctx context.Context) ([]models.Authority, error)
}

// Matcher finds the authority responsible for a (category, city, region)
// combination. It runs once, at report creation; later edits to a report
// never re-match.
type Matcher struct {
	log     logger.Log
	catalog catalogRepo
}

func NewMatcher(log logger.Log, catalog catalogRepo) *Matcher {
	return &Matcher{log: log, catalog: catalog}
}

// Match returns the authority whose handled-category set contains categoryID
// and whose city and region equal the report's, compared trimmed and
// case-insensitively. When several authorities qualify, the one with the
// lowest ID (byte-wise UUID order) wins, so repeated calls over the same
// catalog always agree. Returns nil when no authority matches.
func (m *Matcher) Match(ctx context.Context, categoryID uuid.UUID, city, region string) (*models.Authority, error) {
	authorities, err := m.catalog.ListAuthorities(ctx)
	if err != nil {
		return nil, err
	}

	var best *models.Authority
	for i := range authorities {
		a := &authorities[i]
		if !handlesCategory(a, categoryID) {
			continue
		}
		if !placeEqual(a.City, city) || !placeEqual(a.Region, region) {
			continue
		}
		if best == nil || bytes.Compare(a.ID[:], best.ID[:]) < 0 {
			best = a
		}
	}

	if best == nil {
		m.log.Debug("no authority matched", "category_id", categoryID, "city", city, "region", region)
		return nil, nil
	}
	return best, nil
}

func handlesCategory(a *models.Authority, categoryID uuid.UUID) bool {
	for _, id := range a.Categories {
		if id == categoryID {
			return true
		}
	}
	return false
}

func placeEqual(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
