package sqlite

import (
	"context"
	"time"

	"github.com/growthic-inc/growthic-reddit/common/persistence/entity"
)

type publishedRow struct {
	ID          int64  `db:"id"`
	PlatformID  string `db:"platform_id"`
	Permalink   string `db:"permalink"`
	Kind        string `db:"kind"`
	Subreddit   string `db:"subreddit"`
	Title       string `db:"title"`
	Account     string `db:"account"`
	PublishedAt string `db:"published_at"`
}

const (
	insertPublishedQuery = `INSERT INTO published_items
		(platform_id, permalink, kind, subreddit, title, account, published_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	listPublishedQuery = `SELECT id, platform_id, permalink, kind, subreddit, title, account, published_at
		FROM published_items ORDER BY id DESC LIMIT ?`
)

func (h *Handle) RecordPublished(ctx context.Context, in *entity.RecordPublishedInput) (*entity.RecordPublishedOutput, error) {
	db, err := h.db()
	if err != nil {
		return nil, err
	}

	item := in.Item
	if _, err = db.ExecContext(
		ctx,
		insertPublishedQuery,
		item.PlatformID,
		item.Permalink,
		item.Kind,
		item.Subreddit,
		item.Title,
		item.Account,
		item.PublishedAt.UTC().Format(time.RFC3339),
	); err != nil {
		return nil, err
	}

	return &entity.RecordPublishedOutput{}, nil
}

func (h *Handle) ListPublished(ctx context.Context, in *entity.ListPublishedInput) (*entity.ListPublishedOutput, error) {
	db, err := h.db()
	if err != nil {
		return nil, err
	}

	limit := in.Limit
	if limit <= 0 {
		limit = 50
	}

	var rows []*publishedRow
	if err = db.SelectContext(ctx, &rows, listPublishedQuery, limit); err != nil {
		return nil, err
	}

	items := make([]*entity.PublishedItem, 0, len(rows))
	for _, row := range rows {
		publishedAt, _ := time.Parse(time.RFC3339, row.PublishedAt)
		items = append(items, &entity.PublishedItem{
			ID:          row.ID,
			PlatformID:  row.PlatformID,
			Permalink:   row.Permalink,
			Kind:        row.Kind,
			Subreddit:   row.Subreddit,
			Title:       row.Title,
			Account:     row.Account,
			PublishedAt: publishedAt,
		})
	}

	return &entity.ListPublishedOutput{Items: items}, nil
}
