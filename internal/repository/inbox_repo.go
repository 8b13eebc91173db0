package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/inkwell-mail/inkwell/internal/model"
)

type InboxRepository struct {
	db *pgxpool.Pool
}

func NewInboxRepository(db *pgxpool.Pool) *InboxRepository {
	return &InboxRepository{db: db}
}

// Insert links a user to an article. Duplicate links for the same user
// are allowed; deduplication happens at the article level only.
func (r *InboxRepository) Insert(ctx context.Context, e *model.InboxEntry) error {
	query := `
        INSERT INTO inbox (id, user_id, article_id, received_at)
        VALUES ($1, $2, $3, NOW())
    `
	_, err := r.db.Exec(ctx, query, e.ID, e.UserID, e.ArticleID)
	return err
}

// ListByUser returns a page of one user's inbox, newest first, plus
// the user's total entry count.
func (r *InboxRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]model.InboxEntry, int, error) {
	query := `
        SELECT
            i.id,
            i.received_at,
            a.id AS article_id,
            a.subject,
            a.sender
        FROM inbox i
        JOIN articles a ON i.article_id = a.id
        WHERE i.user_id = $1
        ORDER BY i.received_at DESC
        LIMIT $2 OFFSET $3
    `
	rows, err := r.db.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	entries := []model.InboxEntry{}
	for rows.Next() {
		var e model.InboxEntry
		if err := rows.Scan(&e.ID, &e.ReceivedAt, &e.ArticleID, &e.Subject, &e.Sender); err != nil {
			return nil, 0, err
		}
		e.UserID = userID
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM inbox WHERE user_id = $1`
	if err := r.db.QueryRow(ctx, countQuery, userID).Scan(&total); err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}
