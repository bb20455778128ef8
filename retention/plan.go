package retention

import (
	"sort"

	"portfolio/models"
)

// Plan is the set of changes that brings one category back within capacity
type Plan struct {
	Insert  []models.ContentItem
	Update  []models.ContentItem
	Evict   []models.ContentItem
	Discard []models.ContentItem
}

// Empty reports whether applying the plan would change nothing
func (p Plan) Empty() bool {
	return len(p.Insert) == 0 && len(p.Update) == 0 && len(p.Evict) == 0
}

// Compute plans how a batch of categorized items is merged into one category.
//
// existing holds the live items currently stored in the category. known maps
// source URLs that are already stored anywhere within the same kind to the
// stored item, which lets an entry that changed category move instead of being
// duplicated. All items in batch are expected to carry the target category.
//
// At most capacity live items remain after the plan is applied and the ones
// that remain are always the newest by publish time. A capacity of zero or
// less disables the bound.
func Compute(existing []models.ContentItem, known map[string]models.ContentItem, batch []models.ContentItem, capacity int) Plan {
	var plan Plan

	inCategory := make(map[string]models.ContentItem, len(existing))
	for _, item := range existing {
		inCategory[item.SourceURL] = item
	}

	// Newest first, the first occurrence of a URL wins
	ordered := make([]models.ContentItem, len(batch))
	copy(ordered, batch)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].PublishedAt.After(ordered[j].PublishedAt)
	})

	seen := make(map[string]bool, len(ordered))
	// Live items of this category seen again, applied unless evicted below
	var refreshed []models.ContentItem
	var candidates []candidate
	for _, item := range ordered {
		if seen[item.SourceURL] {
			continue
		}
		seen[item.SourceURL] = true

		if stored, ok := inCategory[item.SourceURL]; ok {
			refreshed = append(refreshed, refresh(stored, item))
			continue
		}

		if stored, ok := known[item.SourceURL]; ok {
			moved := refresh(stored, item)
			if !moved.Published {
				// Hidden items stay hidden and never take a slot
				plan.Update = append(plan.Update, moved)
				continue
			}
			candidates = append(candidates, candidate{item: moved, update: true})
			continue
		}

		candidates = append(candidates, candidate{item: item})
	}

	if len(candidates) == 0 {
		plan.Update = append(refreshed, plan.Update...)
		return plan
	}

	if capacity <= 0 {
		plan.Update = append(refreshed, plan.Update...)
		for _, c := range candidates {
			plan.add(c)
		}
		return plan
	}

	// Merge existing and candidates newest first. Existing items win ties so
	// an equally old incoming entry never pushes out what is already live.
	slots := make([]slot, 0, len(existing)+len(candidates))
	for _, item := range existing {
		slots = append(slots, slot{item: item, existing: true})
	}
	for _, c := range candidates {
		slots = append(slots, slot{item: c.item, candidate: c})
	}
	sort.SliceStable(slots, func(i, j int) bool {
		a, b := slots[i], slots[j]
		if !a.item.PublishedAt.Equal(b.item.PublishedAt) {
			return a.item.PublishedAt.After(b.item.PublishedAt)
		}
		return a.existing && !b.existing
	})

	for i, s := range slots {
		keep := i < capacity
		switch {
		case s.existing && !keep:
			plan.Evict = append(plan.Evict, s.item)
		case !s.existing && keep:
			plan.add(s.candidate)
		case !s.existing && !keep:
			plan.Discard = append(plan.Discard, s.item)
		}
	}

	// An evicted item is deleted, updating it as well would be a no-op
	evicted := make(map[string]bool, len(plan.Evict))
	for _, item := range plan.Evict {
		evicted[item.SourceURL] = true
	}
	var kept []models.ContentItem
	for _, item := range refreshed {
		if !evicted[item.SourceURL] {
			kept = append(kept, item)
		}
	}
	plan.Update = append(kept, plan.Update...)

	return plan
}

type candidate struct {
	item   models.ContentItem
	update bool
}

type slot struct {
	item      models.ContentItem
	existing  bool
	candidate candidate
}

func (p *Plan) add(c candidate) {
	if c.update {
		p.Update = append(p.Update, c.item)
	} else {
		p.Insert = append(p.Insert, c.item)
	}
}

// refresh overlays the fetched fields of incoming on a stored item. Identity,
// publish time and fields maintained by hand are kept.
func refresh(stored, incoming models.ContentItem) models.ContentItem {
	stored.Title = incoming.Title
	stored.Body = incoming.Body
	stored.Excerpt = incoming.Excerpt
	stored.Category = incoming.Category
	stored.Source = incoming.Source
	stored.LastUpdatedAt = incoming.LastUpdatedAt
	if incoming.AutoFetched {
		stored.AutoFetched = true
	}
	return stored
}
