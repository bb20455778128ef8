package ingest

import (
	"context"
	"time"

	"portfolio/classify"
	"portfolio/config"
	"portfolio/feeds"
	"portfolio/models"
	"portfolio/retention"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
)

var (
	itemsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portfolio_ingest_items_total",
		Help: "Entries seen by the ingestion pipeline by outcome",
	}, []string{"kind", "outcome"})

	fetchErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portfolio_ingest_fetch_errors_total",
		Help: "Sources that could not be fetched or parsed",
	}, []string{"kind"})

	categoryFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portfolio_ingest_category_failures_total",
		Help: "Categories whose changes were rolled back",
	}, []string{"kind"})

	cycleDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "portfolio_ingest_cycle_duration_seconds",
		Help:    "Duration of a full ingestion cycle",
		Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
	}, []string{"kind"})
)

// Store is the persistence the pipeline needs for retention
type Store interface {
	ListCategory(ctx context.Context, kind models.Kind, category string) ([]models.ContentItem, error)
	FindByURLs(ctx context.Context, kind models.Kind, urls []string) (map[string]models.ContentItem, error)
	ApplyPlan(ctx context.Context, plan retention.Plan) error
}

// Pipeline runs fetch, normalize, filter, categorize and retain for one kind
type Pipeline struct {
	Kind           models.Kind
	Sources        []string
	PerSourceLimit int
	Capacity       int
	Fetcher        feeds.Fetcher
	Normalizer     *feeds.Normalizer
	// Deny is optional, nil keeps every entry
	Deny       *classify.DenyList
	Classifier classify.Classifier
	Store      Store

	now func() time.Time
}

// NewPipeline builds a pipeline from the configuration of one kind. When
// completer is nil or the kind does not use the LLM, keywords decide the category.
func NewPipeline(kind models.Kind, cfg config.TomlPipeline, fetcher feeds.Fetcher, completer classify.Completer, store Store) *Pipeline {
	taxonomy := classify.NewTaxonomy(cfg.Taxonomy, cfg.Fallback)

	var classifier classify.Classifier = &classify.KeywordClassifier{Taxonomy: taxonomy}
	if cfg.UseLLM && completer != nil {
		classifier = &classify.LLMClassifier{Taxonomy: taxonomy, Completer: completer}
	}

	var deny *classify.DenyList
	if cfg.DenyEnabled {
		list := classify.NewDenyList(cfg.Deny)
		deny = &list
	}

	return &Pipeline{
		Kind:           kind,
		Sources:        cfg.Sources,
		PerSourceLimit: cfg.PerSourceLimit,
		Capacity:       cfg.Capacity,
		Fetcher:        fetcher,
		Normalizer: &feeds.Normalizer{
			MinBodyLength: cfg.MinBodyLength,
			MaxBodyLength: cfg.MaxBodyLength,
			ExcerptLength: cfg.ExcerptLength,
			Padding:       cfg.Padding,
		},
		Deny:       deny,
		Classifier: classifier,
		Store:      store,
		now:        time.Now,
	}
}

// Collect fetches every source and returns the categorized items without
// touching the store
func (p *Pipeline) Collect(ctx context.Context) ([]models.ContentItem, models.IngestSummary) {
	now := p.now().UTC()
	summary := models.IngestSummary{
		Kind:             p.Kind,
		Sources:          len(p.Sources),
		FailedCategories: []string{},
		Timestamp:        now,
	}

	report := feeds.FetchAll(ctx, p.Fetcher, p.Sources, p.PerSourceLimit)
	summary.FetchFailures = report.Failed
	summary.Fetched = len(report.Entries)

	var items []models.ContentItem
	for _, raw := range report.Entries {
		entry, ok := p.Normalizer.Normalize(raw)
		if !ok {
			summary.Dropped++
			continue
		}

		if p.Deny != nil {
			if term, denied := p.Deny.Matches(entry.Title, entry.Body); denied {
				log.WithFields(log.Fields{
					"title": entry.Title,
					"term":  term,
				}).Debug("Entry matches deny list")
				summary.Denied++
				continue
			}
		}

		publishedAt := now
		if entry.PublishedAt != nil {
			publishedAt = entry.PublishedAt.UTC()
		}

		items = append(items, models.ContentItem{
			Kind:          p.Kind,
			Title:         entry.Title,
			SourceURL:     entry.Link,
			Body:          entry.Body,
			Excerpt:       entry.Excerpt,
			Category:      p.Classifier.Classify(ctx, entry.Title, entry.Body),
			Source:        entry.Source,
			Published:     true,
			AutoFetched:   true,
			PublishedAt:   publishedAt,
			LastUpdatedAt: now,
		})
	}

	return items, summary
}

// Run executes one ingestion cycle. Failures of single sources, entries or
// categories are logged and counted in the summary and never stop the cycle.
// The returned error is only set when ctx ends before the cycle completes.
func (p *Pipeline) Run(ctx context.Context) (models.IngestSummary, error) {
	timer := prometheus.NewTimer(cycleDuration.WithLabelValues(string(p.Kind)))
	defer timer.ObserveDuration()

	items, summary := p.Collect(ctx)

	for _, g := range groupByCategory(items) {
		category := g.category
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		plan, err := p.retain(ctx, category, g.items)
		if err != nil {
			log.WithFields(log.Fields{
				"kind":     p.Kind,
				"category": category,
				"error":    err,
			}).Error("Error storing category, changes rolled back")
			summary.FailedCategories = append(summary.FailedCategories, category)
			categoryFailuresTotal.WithLabelValues(string(p.Kind)).Inc()
			continue
		}

		summary.Added += len(plan.Insert)
		summary.Updated += len(plan.Update)
		summary.Removed += len(plan.Evict)
		summary.Discarded += len(plan.Discard)
	}

	p.record(summary)

	log.WithFields(log.Fields{
		"kind":              summary.Kind,
		"sources":           summary.Sources,
		"fetch_failures":    summary.FetchFailures,
		"fetched":           summary.Fetched,
		"dropped":           summary.Dropped,
		"denied":            summary.Denied,
		"added":             summary.Added,
		"updated":           summary.Updated,
		"removed":           summary.Removed,
		"discarded":         summary.Discarded,
		"failed_categories": summary.FailedCategories,
	}).Info("Ingestion cycle complete")

	return summary, ctx.Err()
}

func (p *Pipeline) retain(ctx context.Context, category string, batch []models.ContentItem) (retention.Plan, error) {
	existing, err := p.Store.ListCategory(ctx, p.Kind, category)
	if err != nil {
		return retention.Plan{}, err
	}

	urls := lo.Map(batch, func(item models.ContentItem, _ int) string { return item.SourceURL })
	known, err := p.Store.FindByURLs(ctx, p.Kind, urls)
	if err != nil {
		return retention.Plan{}, err
	}

	plan := retention.Compute(existing, known, batch, p.Capacity)
	if err := p.Store.ApplyPlan(ctx, plan); err != nil {
		return retention.Plan{}, err
	}
	return plan, nil
}

func (p *Pipeline) record(summary models.IngestSummary) {
	kind := string(p.Kind)
	fetchErrorsTotal.WithLabelValues(kind).Add(float64(summary.FetchFailures))
	for outcome, n := range map[string]int{
		"dropped":   summary.Dropped,
		"denied":    summary.Denied,
		"added":     summary.Added,
		"updated":   summary.Updated,
		"removed":   summary.Removed,
		"discarded": summary.Discarded,
	} {
		itemsTotal.WithLabelValues(kind, outcome).Add(float64(n))
	}
}

// groupByCategory keeps the order in which categories first appear
func groupByCategory(items []models.ContentItem) []group {
	var groups []group
	index := map[string]int{}
	for _, item := range items {
		i, ok := index[item.Category]
		if !ok {
			i = len(groups)
			index[item.Category] = i
			groups = append(groups, group{category: item.Category})
		}
		groups[i].items = append(groups[i].items, item)
	}
	return groups
}

type group struct {
	category string
	items    []models.ContentItem
}
