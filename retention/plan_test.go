package retention_test

import (
	"fmt"
	"testing"
	"time"

	"portfolio/models"
	"portfolio/retention"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func item(url string, hoursAgo int) models.ContentItem {
	return models.ContentItem{
		Kind:        models.KindBlog,
		Title:       "title " + url,
		SourceURL:   url,
		Category:    "ML",
		Published:   true,
		PublishedAt: base.Add(-time.Duration(hoursAgo) * time.Hour),
	}
}

func stored(id int64, url string, hoursAgo int) models.ContentItem {
	i := item(url, hoursAgo)
	i.Id = id
	return i
}

func hidden(id int64, url string, hoursAgo int) models.ContentItem {
	i := stored(id, url, hoursAgo)
	i.Published = false
	return i
}

func urls(items []models.ContentItem) []string {
	return lo.Map(items, func(i models.ContentItem, _ int) string { return i.SourceURL })
}

func TestCompute(t *testing.T) {
	tests := []struct {
		name     string
		existing []models.ContentItem
		known    map[string]models.ContentItem
		batch    []models.ContentItem
		capacity int
		insert   []string
		update   []string
		evict    []string
		discard  []string
	}{
		{
			name:     "empty category takes newest up to capacity",
			batch:    []models.ContentItem{item("a", 3), item("b", 1), item("c", 2)},
			capacity: 2,
			insert:   []string{"b", "c"},
			discard:  []string{"a"},
		},
		{
			name:     "room left inserts without eviction",
			existing: []models.ContentItem{stored(1, "x", 10)},
			batch:    []models.ContentItem{item("a", 1)},
			capacity: 3,
			insert:   []string{"a"},
		},
		{
			name:     "full category evicts oldest",
			existing: []models.ContentItem{stored(1, "x", 10), stored(2, "y", 5)},
			batch:    []models.ContentItem{item("a", 1)},
			capacity: 2,
			insert:   []string{"a"},
			evict:    []string{"x"},
		},
		{
			name:     "incoming older than everything is discarded",
			existing: []models.ContentItem{stored(1, "x", 2), stored(2, "y", 3)},
			batch:    []models.ContentItem{item("a", 20)},
			capacity: 2,
			discard:  []string{"a"},
		},
		{
			name:     "equal age keeps the existing item",
			existing: []models.ContentItem{stored(1, "x", 4)},
			batch:    []models.ContentItem{item("a", 4)},
			capacity: 1,
			discard:  []string{"a"},
		},
		{
			name:     "same url in category updates without consuming a slot",
			existing: []models.ContentItem{stored(1, "x", 10), stored(2, "y", 5)},
			batch:    []models.ContentItem{item("x", 0)},
			capacity: 2,
			update:   []string{"x"},
		},
		{
			name:     "re-fetched oldest item under capacity pressure",
			existing: []models.ContentItem{stored(1, "x", 10), stored(2, "y", 5)},
			batch:    []models.ContentItem{item("x", 10), item("a", 1)},
			capacity: 2,
			insert:   []string{"a"},
			evict:    []string{"x"},
		},
		{
			name:     "re-fetched item that survives is still updated",
			existing: []models.ContentItem{stored(1, "x", 10), stored(2, "y", 5)},
			batch:    []models.ContentItem{item("y", 5), item("a", 1)},
			capacity: 2,
			insert:   []string{"a"},
			update:   []string{"y"},
			evict:    []string{"x"},
		},
		{
			name:     "hidden item seen again does not take a slot",
			existing: []models.ContentItem{stored(1, "a", 5)},
			known:    map[string]models.ContentItem{"b": hidden(2, "b", 1)},
			batch:    []models.ContentItem{item("b", 1)},
			capacity: 1,
			update:   []string{"b"},
		},
		{
			name:     "duplicates inside the batch collapse",
			batch:    []models.ContentItem{item("a", 5), item("a", 1), item("b", 2)},
			capacity: 10,
			insert:   []string{"a", "b"},
		},
		{
			name:     "url stored in another category moves",
			existing: []models.ContentItem{stored(1, "x", 10)},
			known:    map[string]models.ContentItem{"m": stored(7, "m", 1)},
			batch:    []models.ContentItem{item("m", 1)},
			capacity: 1,
			update:   []string{"m"},
			evict:    []string{"x"},
		},
		{
			name:     "no candidates never evicts even when over capacity",
			existing: []models.ContentItem{stored(1, "x", 1), stored(2, "y", 2), stored(3, "z", 3)},
			capacity: 1,
		},
		{
			name:     "unbounded capacity",
			existing: []models.ContentItem{stored(1, "x", 1)},
			batch:    []models.ContentItem{item("a", 50), item("b", 60)},
			capacity: 0,
			insert:   []string{"a", "b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := retention.Compute(tt.existing, tt.known, tt.batch, tt.capacity)

			assert.ElementsMatch(t, tt.insert, urls(plan.Insert), "insert")
			assert.ElementsMatch(t, tt.update, urls(plan.Update), "update")
			assert.ElementsMatch(t, tt.evict, urls(plan.Evict), "evict")
			assert.ElementsMatch(t, tt.discard, urls(plan.Discard), "discard")
		})
	}
}

func TestComputeKeepsCapacity(t *testing.T) {
	var existing []models.ContentItem
	for i := 0; i < 10; i++ {
		existing = append(existing, stored(int64(i+1), fmt.Sprintf("old-%d", i), 100+i))
	}
	var batch []models.ContentItem
	for i := 0; i < 5; i++ {
		batch = append(batch, item(fmt.Sprintf("new-%d", i), i))
	}

	plan := retention.Compute(existing, nil, batch, 10)

	assert.Len(t, plan.Insert, 5)
	require.Len(t, plan.Evict, 5)
	live := len(existing) - len(plan.Evict) + len(plan.Insert)
	assert.Equal(t, 10, live)

	// The five oldest are the ones to go
	assert.ElementsMatch(t, []string{"old-5", "old-6", "old-7", "old-8", "old-9"}, urls(plan.Evict))
}

func TestComputeUpdatePreservesIdentity(t *testing.T) {
	current := stored(42, "x", 10)
	current.Featured = true
	current.DisplayOrder = 3

	incoming := item("x", 0)
	incoming.Title = "fresh title"
	incoming.Body = "fresh body"
	incoming.LastUpdatedAt = base

	plan := retention.Compute([]models.ContentItem{current}, nil, []models.ContentItem{incoming}, 10)

	require.Len(t, plan.Update, 1)
	updated := plan.Update[0]
	assert.Equal(t, int64(42), updated.Id)
	assert.Equal(t, "fresh title", updated.Title)
	assert.Equal(t, "fresh body", updated.Body)
	assert.Equal(t, current.PublishedAt, updated.PublishedAt)
	assert.True(t, updated.Featured)
	assert.Equal(t, 3, updated.DisplayOrder)
	assert.Equal(t, base, updated.LastUpdatedAt)
}

func TestPlanEmpty(t *testing.T) {
	assert.True(t, retention.Plan{}.Empty())
	assert.True(t, retention.Plan{Discard: []models.ContentItem{item("a", 1)}}.Empty())
	assert.False(t, retention.Plan{Evict: []models.ContentItem{item("a", 1)}}.Empty())
}

func TestComputeHiddenItemStaysHidden(t *testing.T) {
	existing := []models.ContentItem{stored(1, "a", 5)}
	known := map[string]models.ContentItem{"b": hidden(2, "b", 1)}

	plan := retention.Compute(existing, known, []models.ContentItem{item("b", 1), item("c", 0)}, 1)

	require.Len(t, plan.Update, 1)
	assert.False(t, plan.Update[0].Published)
	assert.Equal(t, []string{"c"}, urls(plan.Insert))
	assert.Equal(t, []string{"a"}, urls(plan.Evict))

	live := len(existing) - len(plan.Evict) + len(plan.Insert)
	assert.Equal(t, 1, live)
}

func TestComputeNeverUpdatesEvictedItems(t *testing.T) {
	existing := []models.ContentItem{stored(1, "x", 10), stored(2, "y", 8), stored(3, "z", 6)}
	batch := []models.ContentItem{item("x", 10), item("y", 8), item("a", 2), item("b", 1)}

	plan := retention.Compute(existing, nil, batch, 3)

	assert.ElementsMatch(t, []string{"x", "y"}, urls(plan.Evict))
	assert.Empty(t, lo.Intersect(urls(plan.Update), urls(plan.Evict)))
}
