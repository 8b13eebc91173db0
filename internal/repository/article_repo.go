package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/inkwell-mail/inkwell/internal/model"
)

type ArticleRepository struct {
	db *pgxpool.Pool
}

func NewArticleRepository(db *pgxpool.Pool) *ArticleRepository {
	return &ArticleRepository{db: db}
}

// FindIDByHash returns the article id for a content fingerprint, or
// ErrNotFound when the fingerprint has never been seen.
func (r *ArticleRepository) FindIDByHash(ctx context.Context, hash string) (string, error) {
	query := `
        SELECT id
        FROM articles
        WHERE content_hash = $1
    `
	var id string
	err := r.db.QueryRow(ctx, query, hash).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return id, nil
}

// Insert creates the article row for a fingerprint seen for the first
// time. The UNIQUE constraint on content_hash closes the race where two
// concurrent ingests of the same content both miss the lookup: the
// loser's insert is a no-op and the winner's id is returned instead.
func (r *ArticleRepository) Insert(ctx context.Context, a *model.Article) (string, error) {
	insert := `
        INSERT INTO articles (id, content_hash, object_key, subject, sender, created_at)
        VALUES ($1, $2, $3, $4, $5, NOW())
        ON CONFLICT (content_hash) DO NOTHING
        RETURNING id
    `
	var id string
	err := r.db.QueryRow(ctx, insert, a.ID, a.ContentHash, a.ObjectKey, a.Subject, a.Sender).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		// Lost the race; the row now exists under another id.
		return r.FindIDByHash(ctx, a.ContentHash)
	}
	if err != nil {
		return "", err
	}
	return id, nil
}

// FindByID returns one article row.
func (r *ArticleRepository) FindByID(ctx context.Context, id string) (*model.Article, error) {
	query := `
        SELECT id, content_hash, object_key, subject, sender, created_at
        FROM articles
        WHERE id = $1
    `
	var a model.Article
	err := r.db.QueryRow(ctx, query, id).Scan(
		&a.ID, &a.ContentHash, &a.ObjectKey, &a.Subject, &a.Sender, &a.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// List returns a page of articles, newest first, plus the total count.
func (r *ArticleRepository) List(ctx context.Context, limit, offset int) ([]model.Article, int, error) {
	query := `
        SELECT id, content_hash, object_key, subject, sender, created_at
        FROM articles
        ORDER BY created_at DESC
        LIMIT $1 OFFSET $2
    `
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	articles := []model.Article{}
	for rows.Next() {
		var a model.Article
		if err := rows.Scan(&a.ID, &a.ContentHash, &a.ObjectKey, &a.Subject, &a.Sender, &a.CreatedAt); err != nil {
			return nil, 0, err
		}
		articles = append(articles, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM articles`).Scan(&total); err != nil {
		return nil, 0, err
	}

	return articles, total, nil
}
