package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/kwame/agrimarket/internal/types"
)

const blogColumns = `id, title, slug, body, cover_url, published, created_at, updated_at`

func scanBlogPost(row pgx.Row) (*types.BlogPost, error) {
	var p types.BlogPost
	err := row.Scan(&p.ID, &p.Title, &p.Slug, &p.Body, &p.CoverURL, &p.Published, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateBlogPost inserts a new post.
func (db *DB) CreateBlogPost(ctx context.Context, post *types.BlogPost) (*types.BlogPost, error) {
	row := db.pool.QueryRow(ctx,
		`INSERT INTO blog_posts (title, slug, body, cover_url, published, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		 RETURNING `+blogColumns,
		post.Title, post.Slug, post.Body, post.CoverURL, post.Published,
	)
	created, err := scanBlogPost(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create blog post: %w", err)
	}
	return created, nil
}

// GetBlogPostBySlug retrieves a single post, or nil if not found.
func (db *DB) GetBlogPostBySlug(ctx context.Context, slug string) (*types.BlogPost, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT `+blogColumns+` FROM blog_posts WHERE slug = $1`, slug)
	post, err := scanBlogPost(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get blog post: %w", err)
	}
	return post, nil
}

// ListBlogPosts returns posts newest first. When publishedOnly is set,
// drafts are excluded (the public site view).
func (db *DB) ListBlogPosts(ctx context.Context, publishedOnly bool) ([]types.BlogPost, error) {
	query := `SELECT ` + blogColumns + ` FROM blog_posts`
	if publishedOnly {
		query += ` WHERE published`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := db.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list blog posts: %w", err)
	}
	defer rows.Close()

	var posts []types.BlogPost
	for rows.Next() {
		p, err := scanBlogPost(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan blog post: %w", err)
		}
		posts = append(posts, *p)
	}
	return posts, rows.Err()
}

// UpdateBlogPost overwrites an existing post's editable fields.
func (db *DB) UpdateBlogPost(ctx context.Context, id uuid.UUID, post *types.BlogPost) (*types.BlogPost, error) {
	row := db.pool.QueryRow(ctx,
		`UPDATE blog_posts
		 SET title = $2, slug = $3, body = $4, cover_url = $5, published = $6, updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+blogColumns,
		id, post.Title, post.Slug, post.Body, post.CoverURL, post.Published,
	)
	updated, err := scanBlogPost(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update blog post: %w", err)
	}
	return updated, nil
}

// DeleteBlogPost removes a post. Returns pgx.ErrNoRows when it does not exist.
func (db *DB) DeleteBlogPost(ctx context.Context, id uuid.UUID) error {
	tag, err := db.pool.Exec(ctx, `DELETE FROM blog_posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete blog post: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
