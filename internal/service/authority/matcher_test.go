package authority

import (
	"context"
	"errors"
	"testing"

	"CivicLens/internal/models"
	"CivicLens/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCatalog struct {
	authorities []models.Authority
	err         error
}

func (f *fakeCatalog) ListAuthorities(ctx context.Context) ([]models.Authority, error) {
	return f.authorities, f.err
}

func testAuthority(name, city, region string, categories ...uuid.UUID) models.Authority {
	return models.Authority{
		ID:         uuid.New(),
		Name:       name,
		City:       city,
		Region:     region,
		Categories: categories,
	}
}

func TestMatchByCategoryAndPlace(t *testing.T) {
	roads := uuid.New()
	water := uuid.New()

	jaipur := testAuthority("Jaipur Roads", "Jaipur", "Rajasthan", roads)
	mumbai := testAuthority("Mumbai Roads", "Mumbai", "Maharashtra", roads, water)

	m := NewMatcher(logger.New("prod"), &fakeCatalog{authorities: []models.Authority{jaipur, mumbai}})

	got, err := m.Match(context.Background(), roads, "Jaipur", "Rajasthan")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, jaipur.ID, got.ID)

	got, err = m.Match(context.Background(), water, "Mumbai", "Maharashtra")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, mumbai.ID, got.ID)
}

func TestMatchIsCaseInsensitiveAndTrimmed(t *testing.T) {
	roads := uuid.New()
	a := testAuthority("JMC", "Jaipur", "Rajasthan", roads)

	m := NewMatcher(logger.New("prod"), &fakeCatalog{authorities: []models.Authority{a}})

	got, err := m.Match(context.Background(), roads, "  jAiPuR ", "RAJASTHAN")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, a.ID, got.ID)
}

func TestMatchNoCandidate(t *testing.T) {
	roads := uuid.New()
	a := testAuthority("JMC", "Jaipur", "Rajasthan", roads)

	m := NewMatcher(logger.New("prod"), &fakeCatalog{authorities: []models.Authority{a}})

	tests := []struct {
		name     string
		category uuid.UUID
		city     string
		region   string
	}{
		{"wrong category", uuid.New(), "Jaipur", "Rajasthan"},
		{"wrong city", roads, "Mumbai", "Rajasthan"},
		{"wrong region", roads, "Jaipur", "Maharashtra"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.Match(context.Background(), tt.category, tt.city, tt.region)
			require.NoError(t, err)
			assert.Nil(t, got)
		})
	}
}

func TestMatchTieBreaksOnLowestID(t *testing.T) {
	roads := uuid.New()

	first := testAuthority("A", "Jaipur", "Rajasthan", roads)
	second := testAuthority("B", "Jaipur", "Rajasthan", roads)
	first.ID = uuid.MustParse("00000000-0000-0000-0000-000000000001")
	second.ID = uuid.MustParse("00000000-0000-0000-0000-000000000002")

	// Catalog order must not influence the winner.
	orders := [][]models.Authority{
		{first, second},
		{second, first},
	}
	for _, authorities := range orders {
		m := NewMatcher(logger.New("prod"), &fakeCatalog{authorities: authorities})
		got, err := m.Match(context.Background(), roads, "Jaipur", "Rajasthan")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, first.ID, got.ID)
	}
}

func TestMatchPropagatesCatalogError(t *testing.T) {
	m := NewMatcher(logger.New("prod"), &fakeCatalog{err: errors.New("connection refused")})

	got, err := m.Match(context.Background(), uuid.New(), "Jaipur", "Rajasthan")
	assert.Error(t, err)
	assert.Nil(t, got)
}
