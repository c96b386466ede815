package db

import (
	"context"
	"fmt"

	"yatube/internal/models"
)

func (s *Store) UserByUsername(ctx context.Context, username string) (models.User, error) {
	var u models.User
	err := s.DB.QueryRowContext(ctx, `
SELECT id, email, username, created_at
  FROM users
 WHERE username = $1`, username).Scan(&u.ID, &u.Email, &u.Username, &u.CreatedAt)
	if err != nil {
		return models.User{}, fmt.Errorf("user %q: %w", username, notFound(err))
	}
	return u, nil
}

// ListUsers returns every user with their post count, ordered by username.
func (s *Store) ListUsers(ctx context.Context) ([]models.UserStat, error) {
	rows, err := s.DB.QueryContext(ctx, `
SELECT u.id, u.email, u.username, u.created_at, COUNT(p.id)
  FROM users u
  LEFT JOIN posts p ON p.author_id = u.id
 GROUP BY u.id, u.email, u.username, u.created_at
 ORDER BY u.username`)
	if err != nil {
		return nil, fmt.Errorf("users query: %w", err)
	}
	defer rows.Close()

	var out []models.UserStat
	for rows.Next() {
		var us models.UserStat
		if err := rows.Scan(&us.ID, &us.Email, &us.Username, &us.CreatedAt, &us.PostCount); err != nil {
			return nil, fmt.Errorf("users scan: %w", err)
		}
		out = append(out, us)
	}
	return out, rows.Err()
}
