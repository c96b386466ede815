package db

import (
	"context"
	"fmt"

	"yatube/internal/models"
)

// ListComments returns a post's comments oldest first.
func (s *Store) ListComments(ctx context.Context, postID int64) ([]models.Comment, error) {
	rows, err := s.DB.QueryContext(ctx, `
SELECT c.id, c.post_id, c.author_id, u.username, c.text, c.created
  FROM comments c
  JOIN users u ON u.id = c.author_id
 WHERE c.post_id = $1
 ORDER BY c.created ASC, c.id ASC`, postID)
	if err != nil {
		return nil, fmt.Errorf("comments query: %w", err)
	}
	defer rows.Close()

	var out []models.Comment
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.AuthorID, &c.Author, &c.Text, &c.Created); err != nil {
			return nil, fmt.Errorf("comments scan: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// CreateComment inserts c and sets its ID and Created.
func (s *Store) CreateComment(ctx context.Context, c *models.Comment) error {
	return s.DB.QueryRowContext(ctx, `
INSERT INTO comments (post_id, author_id, text)
VALUES ($1, $2, $3)
RETURNING id, created`, c.PostID, c.AuthorID, c.Text).Scan(&c.ID, &c.Created)
}
