package db

import (
	"context"
	"fmt"

	"yatube/internal/models"
)

const groupColumns = `id, title, slug, description`

func (s *Store) GroupBySlug(ctx context.Context, slug string) (models.Group, error) {
	var g models.Group
	err := s.DB.QueryRowContext(ctx, `SELECT `+groupColumns+` FROM groups WHERE slug = $1`, slug).
		Scan(&g.ID, &g.Title, &g.Slug, &g.Description)
	if err != nil {
		return models.Group{}, fmt.Errorf("group %q: %w", slug, notFound(err))
	}
	return g, nil
}

func (s *Store) GroupByID(ctx context.Context, id int64) (models.Group, error) {
	var g models.Group
	err := s.DB.QueryRowContext(ctx, `SELECT `+groupColumns+` FROM groups WHERE id = $1`, id).
		Scan(&g.ID, &g.Title, &g.Slug, &g.Description)
	if err != nil {
		return models.Group{}, fmt.Errorf("group %d: %w", id, notFound(err))
	}
	return g, nil
}

func (s *Store) ListGroups(ctx context.Context) ([]models.Group, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT `+groupColumns+` FROM groups ORDER BY title, id`)
	if err != nil {
		return nil, fmt.Errorf("groups query: %w", err)
	}
	defer rows.Close()

	var out []models.Group
	for rows.Next() {
		var g models.Group
		if err := rows.Scan(&g.ID, &g.Title, &g.Slug, &g.Description); err != nil {
			return nil, fmt.Errorf("groups scan: %w", err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// CreateGroup inserts g and sets its ID.
func (s *Store) CreateGroup(ctx context.Context, g *models.Group) error {
	err := s.DB.QueryRowContext(ctx, `
INSERT INTO groups (title, slug, description)
VALUES ($1, $2, $3)
RETURNING id`, g.Title, g.Slug, g.Description).Scan(&g.ID)
	if IsUniqueViolation(err, "groups_slug_key") {
		return ErrSlugTaken
	}
	return err
}
