package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"portfolio/models"
	"portfolio/query"
	"portfolio/retention"

	"github.com/google/uuid"
	sqlbuilder "github.com/huandu/go-sqlbuilder"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
)

const contentTable = "content_items"

var contentColumns = []string{
	"id", "kind", "title", "source_url", "body", "excerpt", "category", "source",
	"published", "featured", "auto_fetched", "display_order", "status", "pricing",
	"image_url", "published_at", "last_updated_at",
}

// ContentSearchColumns are matched by a free text search on content items
var ContentSearchColumns = []string{"title", "body", "excerpt"}

func scanContent(row rowScanner) (models.ContentItem, error) {
	var item models.ContentItem
	var kind string
	var publishedAt, updatedAt int64
	err := row.Scan(
		&item.Id, &kind, &item.Title, &item.SourceURL, &item.Body, &item.Excerpt,
		&item.Category, &item.Source, &item.Published, &item.Featured, &item.AutoFetched,
		&item.DisplayOrder, &item.Status, &item.Pricing, &item.ImageURL,
		&publishedAt, &updatedAt,
	)
	if err != nil {
		return item, err
	}
	item.Kind = models.Kind(kind)
	item.PublishedAt = fromUnix(publishedAt)
	item.LastUpdatedAt = fromUnix(updatedAt)
	return item, nil
}

func queryContent(ctx context.Context, q interface {
	QueryContext(ctx context.Context, stmt string, args ...any) (*sql.Rows, error)
}, sb *sqlbuilder.SelectBuilder) ([]models.ContentItem, error) {
	stmt, args := sb.Build()
	rows, err := q.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	defer rows.Close()

	items := []models.ContentItem{}
	for rows.Next() {
		item, err := scanContent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// ListCategory returns the live items of one category, newest first
func (db *DB) ListCategory(ctx context.Context, kind models.Kind, category string) ([]models.ContentItem, error) {
	sb := sqlbuilder.SQLite.NewSelectBuilder()
	sb.Select(contentColumns...).From(contentTable).
		Where(sb.Equal("kind", string(kind)), sb.Equal("category", category), sb.Equal("published", true)).
		OrderBy("published_at DESC", "id DESC")
	return queryContent(ctx, db.db, sb)
}

// FindByURLs returns the stored items of a kind keyed by source URL
func (db *DB) FindByURLs(ctx context.Context, kind models.Kind, urls []string) (map[string]models.ContentItem, error) {
	found := make(map[string]models.ContentItem)
	for _, chunk := range lo.Chunk(lo.Uniq(urls), 500) {
		sb := sqlbuilder.SQLite.NewSelectBuilder()
		sb.Select(contentColumns...).From(contentTable).
			Where(sb.Equal("kind", string(kind)), sb.In("source_url", lo.ToAnySlice(chunk)...))
		items, err := queryContent(ctx, db.db, sb)
		if err != nil {
			return nil, err
		}
		for _, item := range items {
			found[item.SourceURL] = item
		}
	}
	return found, nil
}

// ApplyPlan writes the evictions, updates and inserts of a retention plan in
// one transaction. Either the whole plan is stored or none of it.
func (db *DB) ApplyPlan(ctx context.Context, plan retention.Plan) error {
	if plan.Empty() {
		return nil
	}

	return db.inTx(ctx, func(tx *sql.Tx) error {
		if len(plan.Evict) > 0 {
			ids := lo.Map(plan.Evict, func(item models.ContentItem, _ int) any { return item.Id })
			del := sqlbuilder.SQLite.NewDeleteBuilder()
			del.DeleteFrom(contentTable).Where(del.In("id", ids...))
			stmt, args := del.Build()
			if _, err := tx.ExecContext(ctx, stmt, args...); err != nil {
				return fmt.Errorf("evict error: %w", err)
			}
		}

		for _, item := range plan.Update {
			stmt, args := updateContent(item).Build()
			if _, err := tx.ExecContext(ctx, stmt, args...); err != nil {
				return fmt.Errorf("update error: %w", err)
			}
		}

		for _, item := range plan.Insert {
			stmt, args := insertContent(item).Build()
			if _, err := tx.ExecContext(ctx, stmt, args...); err != nil {
				return fmt.Errorf("insert error: %w", err)
			}
		}

		log.WithFields(log.Fields{
			"inserted": len(plan.Insert),
			"updated":  len(plan.Update),
			"evicted":  len(plan.Evict),
		}).Debug("Applied retention plan")
		return nil
	})
}

func insertContent(item models.ContentItem) *sqlbuilder.InsertBuilder {
	ib := sqlbuilder.SQLite.NewInsertBuilder()
	ib.InsertInto(contentTable).
		Cols(contentColumns[1:]...).
		Values(
			string(item.Kind), item.Title, item.SourceURL, item.Body, item.Excerpt,
			item.Category, item.Source, item.Published, item.Featured, item.AutoFetched,
			item.DisplayOrder, item.Status, item.Pricing, item.ImageURL,
			unix(item.PublishedAt), unix(item.LastUpdatedAt),
		)
	return ib
}

func updateContent(item models.ContentItem) *sqlbuilder.UpdateBuilder {
	ub := sqlbuilder.SQLite.NewUpdateBuilder()
	ub.Update(contentTable).
		Set(
			ub.Assign("title", item.Title),
			ub.Assign("source_url", item.SourceURL),
			ub.Assign("body", item.Body),
			ub.Assign("excerpt", item.Excerpt),
			ub.Assign("category", item.Category),
			ub.Assign("source", item.Source),
			ub.Assign("published", item.Published),
			ub.Assign("featured", item.Featured),
			ub.Assign("auto_fetched", item.AutoFetched),
			ub.Assign("display_order", item.DisplayOrder),
			ub.Assign("status", item.Status),
			ub.Assign("pricing", item.Pricing),
			ub.Assign("image_url", item.ImageURL),
			ub.Assign("published_at", unix(item.PublishedAt)),
			ub.Assign("last_updated_at", unix(item.LastUpdatedAt)),
		).
		Where(ub.Equal("id", item.Id), ub.Equal("kind", string(item.Kind)))
	return ub
}

// ListContent returns the items of a kind, featured first, then by display
// order and newest first
func (db *DB) ListContent(ctx context.Context, kind models.Kind, opts query.ListOptions) ([]models.ContentItem, error) {
	sb := sqlbuilder.SQLite.NewSelectBuilder()
	sb.Select(contentColumns...).From(contentTable).Where(sb.Equal("kind", string(kind)))
	sb.OrderBy("featured DESC", "display_order ASC", "published_at DESC", "id DESC")
	opts.Apply(sb)
	return queryContent(ctx, db.db, sb)
}

func (db *DB) GetContent(ctx context.Context, kind models.Kind, id int64) (models.ContentItem, error) {
	sb := sqlbuilder.SQLite.NewSelectBuilder()
	sb.Select(contentColumns...).From(contentTable).Where(sb.Equal("kind", string(kind)), sb.Equal("id", id))
	stmt, args := sb.Build()

	item, err := scanContent(db.db.QueryRowContext(ctx, stmt, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return item, ErrNotFound
	}
	if err != nil {
		return item, fmt.Errorf("query error: %w", err)
	}
	return item, nil
}

// CreateContent stores an item entered by hand. Items without a URL get a
// synthetic one so that the dedup key stays unique.
func (db *DB) CreateContent(ctx context.Context, item models.ContentItem) (models.ContentItem, error) {
	now := db.now().UTC()
	if item.SourceURL == "" {
		item.SourceURL = "urn:uuid:" + uuid.NewString()
	}
	if item.Source == "" {
		item.Source = "manual"
	}
	if item.PublishedAt.IsZero() {
		item.PublishedAt = now
	}
	item.LastUpdatedAt = now

	stmt, args := insertContent(item).Build()
	res, err := db.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return item, fmt.Errorf("insert error: %w", err)
	}
	item.Id, err = res.LastInsertId()
	if err != nil {
		return item, fmt.Errorf("insert id error: %w", err)
	}
	return item, nil
}

// UpdateContent overwrites every editable field of a stored item
func (db *DB) UpdateContent(ctx context.Context, item models.ContentItem) (models.ContentItem, error) {
	item.LastUpdatedAt = db.now().UTC()
	if item.SourceURL == "" {
		item.SourceURL = "urn:uuid:" + uuid.NewString()
	}

	stmt, args := updateContent(item).Build()
	res, err := db.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return item, fmt.Errorf("update error: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return item, ErrNotFound
	}
	return item, nil
}

func (db *DB) DeleteContent(ctx context.Context, kind models.Kind, id int64) error {
	del := sqlbuilder.SQLite.NewDeleteBuilder()
	del.DeleteFrom(contentTable).Where(del.Equal("kind", string(kind)), del.Equal("id", id))
	stmt, args := del.Build()

	res, err := db.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("delete error: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteAllContent removes every item of a kind and returns how many were removed
func (db *DB) DeleteAllContent(ctx context.Context, kind models.Kind) (int64, error) {
	del := sqlbuilder.SQLite.NewDeleteBuilder()
	del.DeleteFrom(contentTable).Where(del.Equal("kind", string(kind)))
	stmt, args := del.Build()

	res, err := db.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return 0, fmt.Errorf("delete error: %w", err)
	}
	return res.RowsAffected()
}

// CategoryCounts returns the number of live items per category
func (db *DB) CategoryCounts(ctx context.Context, kind models.Kind) (map[string]int, error) {
	sb := sqlbuilder.SQLite.NewSelectBuilder()
	sb.Select("category", "COUNT(*)").From(contentTable).
		Where(sb.Equal("kind", string(kind)), sb.Equal("published", true)).
		GroupBy("category")
	stmt, args := sb.Build()

	rows, err := db.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var category string
		var count int
		if err := rows.Scan(&category, &count); err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		counts[category] = count
	}
	return counts, rows.Err()
}
