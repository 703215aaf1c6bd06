package database_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/tenderscan/internal/database"
	"github.com/jonesrussell/tenderscan/internal/domain"
)

func sampleTender(id string) *domain.Tender {
	closing := time.Now().UTC().AddDate(0, 0, 30)
	return &domain.Tender{
		Portal:       "merx",
		TenderID:     id,
		Title:        "Forklift Operator Training Services",
		Organization: "City of Winnipeg",
		Value:        75000,
		ClosingDate:  &closing,
		Priority:     domain.PriorityMedium,
		URL:          "https://www.merx.com/t/" + id,
		IsActive:     true,
	}
}

func TestMemoryStoreApplyLifecycle(t *testing.T) {
	t.Parallel()

	store := database.NewMemoryStore()
	ctx := context.Background()

	// First observation inserts.
	outcome, err := store.Apply(ctx, sampleTender("1"))
	require.NoError(t, err)
	assert.Equal(t, database.OutcomeNew, outcome)

	// Identical content on a re-scan writes nothing.
	outcome, err = store.Apply(ctx, sampleTender("1"))
	require.NoError(t, err)
	assert.Equal(t, database.OutcomeUnchanged, outcome)

	// Changed content overwrites.
	changed := sampleTender("1")
	changed.Value = 90000
	outcome, err = store.Apply(ctx, changed)
	require.NoError(t, err)
	assert.Equal(t, database.OutcomeUpdated, outcome)

	stored, err := store.GetByKey(ctx, domain.Key{Portal: "merx", TenderID: "1"})
	require.NoError(t, err)
	assert.InDelta(t, 90000, stored.Value, 0.01)
}

func TestMemoryStoreIdempotentRescan(t *testing.T) {
	t.Parallel()

	store := database.NewMemoryStore()
	ctx := context.Background()

	batch := []*domain.Tender{sampleTender("1"), sampleTender("2"), sampleTender("3")}

	newCount := 0
	for _, tender := range batch {
		outcome, err := store.Apply(ctx, tender)
		require.NoError(t, err)
		if outcome == database.OutcomeNew {
			newCount++
		}
	}
	assert.Equal(t, 3, newCount)

	// Second pass over the same content: zero new, zero updated.
	for _, id := range []string{"1", "2", "3"} {
		outcome, err := store.Apply(ctx, sampleTender(id))
		require.NoError(t, err)
		assert.Equal(t, database.OutcomeUnchanged, outcome)
	}
}

func TestMemoryStoreSweepExpiresClosedTenders(t *testing.T) {
	t.Parallel()

	store := database.NewMemoryStore()
	ctx := context.Background()
	now := time.Now().UTC()

	expired := sampleTender("old")
	past := now.AddDate(0, 0, -2)
	expired.ClosingDate = &past

	open := sampleTender("open")
	noDate := sampleTender("nodate")
	noDate.ClosingDate = nil

	for _, tender := range []*domain.Tender{expired, open, noDate} {
		_, err := store.Apply(ctx, tender)
		require.NoError(t, err)
	}

	count, err := store.MarkInactiveExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	stored, err := store.GetByKey(ctx, domain.Key{Portal: "merx", TenderID: "old"})
	require.NoError(t, err)
	assert.False(t, stored.IsActive)

	// A tender with no closing date has no expiry signal.
	stored, err = store.GetByKey(ctx, domain.Key{Portal: "merx", TenderID: "nodate"})
	require.NoError(t, err)
	assert.True(t, stored.IsActive)

	// The sweep is monotonic: a second pass changes nothing.
	count, err = store.MarkInactiveExpired(ctx, now)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestMemoryStoreReobservationReactivates(t *testing.T) {
	t.Parallel()

	store := database.NewMemoryStore()
	ctx := context.Background()
	now := time.Now().UTC()

	tender := sampleTender("1")
	past := now.AddDate(0, 0, -1)
	tender.ClosingDate = &past
	_, err := store.Apply(ctx, tender)
	require.NoError(t, err)

	_, err = store.MarkInactiveExpired(ctx, now)
	require.NoError(t, err)

	// The portal extended the deadline: new content arrives, record revives.
	extended := sampleTender("1")
	future := now.AddDate(0, 0, 14)
	extended.ClosingDate = &future

	outcome, err := store.Apply(ctx, extended)
	require.NoError(t, err)
	assert.Equal(t, database.OutcomeUpdated, outcome)

	stored, err := store.GetByKey(ctx, domain.Key{Portal: "merx", TenderID: "1"})
	require.NoError(t, err)
	assert.True(t, stored.IsActive)
}

func TestMemoryStoreSeparateKeyNamespaces(t *testing.T) {
	t.Parallel()

	store := database.NewMemoryStore()
	ctx := context.Background()

	a := sampleTender("1")
	b := sampleTender("1")
	b.Portal = "canadabuys"

	for _, tender := range []*domain.Tender{a, b} {
		outcome, err := store.Apply(ctx, tender)
		require.NoError(t, err)
		assert.Equal(t, database.OutcomeNew, outcome)
	}

	stats, err := store.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Total)
}

func TestMemoryStoreListFilters(t *testing.T) {
	t.Parallel()

	store := database.NewMemoryStore()
	ctx := context.Background()

	high := sampleTender("1")
	high.Priority = domain.PriorityHigh
	high.Categories = domain.StringList{"agile-scrum"}

	low := sampleTender("2")
	low.Priority = domain.PriorityLow
	low.Title = "Crane Operator Training"

	for _, tender := range []*domain.Tender{high, low} {
		_, err := store.Apply(ctx, tender)
		require.NoError(t, err)
	}

	got, err := store.List(ctx, database.ListFilters{Priority: "high"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "1", got[0].TenderID)

	got, err = store.List(ctx, database.ListFilters{Category: "agile-scrum"})
	require.NoError(t, err)
	assert.Len(t, got, 1)

	got, err = store.List(ctx, database.ListFilters{Search: "crane"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "2", got[0].TenderID)

	got, err = store.List(ctx, database.ListFilters{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, got, 1)
}
