package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/presshub/presshub/internal/domain"
)

type pgContentRepository struct {
	pool *pgxpool.Pool
}

// NewPgContentRepository returns a ContentRepository backed by PostgreSQL.
func NewPgContentRepository(pool *pgxpool.Pool) ContentRepository {
	return &pgContentRepository{pool: pool}
}

const contentColumns = `id, slug, title, body, author, status,
	scheduled_publish_at, published_at, revision, created_at, updated_at`

func (r *pgContentRepository) Create(ctx context.Context, item *domain.ContentItem) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO content_items
			(id, slug, title, body, author, status,
			 scheduled_publish_at, published_at, revision, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		item.ID, item.Slug, item.Title, item.Body, item.Author, item.Status,
		item.ScheduledPublishAt, item.PublishedAt, item.Revision, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "content_items_slug_key") {
			return domain.ErrSlugTaken
		}
		return fmt.Errorf("insert content item: %w", err)
	}
	return nil
}

func (r *pgContentRepository) GetByID(ctx context.Context, id string) (*domain.ContentItem, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+contentColumns+` FROM content_items WHERE id = $1`, id)

	item, err := scanContentItem(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return item, err
}

func (r *pgContentRepository) GetBySlug(ctx context.Context, slug string) (*domain.ContentItem, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+contentColumns+` FROM content_items WHERE slug = $1`, slug)

	item, err := scanContentItem(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return item, err
}

func (r *pgContentRepository) List(ctx context.Context, f domain.ListFilter) ([]*domain.ContentItem, int, error) {
	where, args := buildListWhere(f)
	offset := (f.Page - 1) * f.Limit

	// Count total matching rows for pagination metadata.
	var total int
	countQuery := "SELECT COUNT(*) FROM content_items" + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count content items: %w", err)
	}

	// Append pagination args after the WHERE args.
	args = append(args, f.Limit, offset)
	limitPlaceholder := fmt.Sprintf("$%d", len(args)-1)
	offsetPlaceholder := fmt.Sprintf("$%d", len(args))

	query := fmt.Sprintf(`
		SELECT `+contentColumns+`
		FROM content_items%s
		ORDER BY created_at DESC
		LIMIT %s OFFSET %s`, where, limitPlaceholder, offsetPlaceholder)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list content items: %w", err)
	}
	defer rows.Close()

	items, err := scanContentItems(rows)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *pgContentRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM content_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete content item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *pgContentRepository) UpdateContent(ctx context.Context, id string, expectedRevision int64, slug, title, body string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE content_items
		SET slug = $1, title = $2, body = $3, revision = revision + 1, updated_at = NOW()
		WHERE id = $4 AND revision = $5`,
		slug, title, body, id, expectedRevision)
	if err != nil {
		if strings.Contains(err.Error(), "content_items_slug_key") {
			return false, domain.ErrSlugTaken
		}
		return false, fmt.Errorf("update content item: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// ConditionalTransition is the single CAS primitive both the interactive
// editing paths and the scheduler use. A zero rows-affected result means the
// precondition no longer held (revision bumped by a concurrent writer, or the
// row was deleted) and is reported as applied=false, never as an error.
func (r *pgContentRepository) ConditionalTransition(ctx context.Context, id string, expectedRevision int64, to domain.Status, at time.Time) (bool, error) {
	var query string
	args := []any{id, expectedRevision}

	switch to {
	case domain.StatusPublished:
		// COALESCE keeps the original published_at on a re-publish:
		// the timestamp is stamped exactly once.
		query = `
			UPDATE content_items
			SET status = 'published', published_at = COALESCE(published_at, $3),
			    scheduled_publish_at = NULL, revision = revision + 1, updated_at = NOW()
			WHERE id = $1 AND revision = $2`
		args = append(args, at)
	case domain.StatusScheduled:
		query = `
			UPDATE content_items
			SET status = 'scheduled', scheduled_publish_at = $3,
			    revision = revision + 1, updated_at = NOW()
			WHERE id = $1 AND revision = $2`
		args = append(args, at)
	case domain.StatusDraft, domain.StatusInReview:
		query = fmt.Sprintf(`
			UPDATE content_items
			SET status = '%s', scheduled_publish_at = NULL,
			    revision = revision + 1, updated_at = NOW()
			WHERE id = $1 AND revision = $2`, to)
	default:
		return false, fmt.Errorf("unknown status %q", to)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("conditional transition: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *pgContentRepository) FindDueScheduled(ctx context.Context, now time.Time, limit int) ([]*domain.ContentItem, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+contentColumns+`
		FROM content_items
		WHERE status = 'scheduled'
		  AND scheduled_publish_at <= $1
		ORDER BY scheduled_publish_at ASC, id ASC
		LIMIT $2`, now, limit)
	if err != nil {
		return nil, fmt.Errorf("find due scheduled: %w", err)
	}
	defer rows.Close()
	return scanContentItems(rows)
}

// ---- helpers ----

// scanContentItem reads a single content row from any pgx row type.
func scanContentItem(row pgx.Row) (*domain.ContentItem, error) {
	var item domain.ContentItem
	err := row.Scan(
		&item.ID, &item.Slug, &item.Title, &item.Body, &item.Author,
		&item.Status, &item.ScheduledPublishAt, &item.PublishedAt,
		&item.Revision, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func scanContentItems(rows pgx.Rows) ([]*domain.ContentItem, error) {
	var result []*domain.ContentItem
	for rows.Next() {
		item, err := scanContentItem(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	return result, rows.Err()
}

// buildListWhere builds a parameterised WHERE clause from a ListFilter.
func buildListWhere(f domain.ListFilter) (string, []any) {
	var conditions []string
	var args []any

	add := func(condition string, val any) {
		args = append(args, val)
		conditions = append(conditions, fmt.Sprintf(condition, len(args)))
	}

	if f.Status != nil {
		add("status = $%d", *f.Status)
	}
	if f.Author != nil {
		add("author = $%d", *f.Author)
	}
	if f.From != nil {
		add("created_at >= $%d", *f.From)
	}
	if f.To != nil {
		add("created_at <= $%d", *f.To)
	}

	if len(conditions) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}
