package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"yatube/internal/models"
)

// PostFilter narrows a post listing. Zero fields do not filter.
type PostFilter struct {
	GroupID  int64
	AuthorID int64
}

func (f PostFilter) where(args []any) (string, []any) {
	var conds []string
	if f.GroupID != 0 {
		args = append(args, f.GroupID)
		conds = append(conds, fmt.Sprintf("p.group_id = $%d", len(args)))
	}
	if f.AuthorID != 0 {
		args = append(args, f.AuthorID)
		conds = append(conds, fmt.Sprintf("p.author_id = $%d", len(args)))
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

const postSelect = `
SELECT p.id, p.text, p.pub_date, p.author_id, u.username,
       g.id, g.title, g.slug, g.description
  FROM posts p
  JOIN users u ON u.id = p.author_id
  LEFT JOIN groups g ON g.id = p.group_id`

func (s *Store) CountPosts(ctx context.Context, f PostFilter) (int, error) {
	where, args := f.where(nil)
	var n int
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts p`+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count posts: %w", err)
	}
	return n, nil
}

// ListPosts returns posts newest first.
func (s *Store) ListPosts(ctx context.Context, f PostFilter, limit, offset int) ([]models.Post, error) {
	where, args := f.where(nil)
	args = append(args, limit, offset)
	q := postSelect + where + fmt.Sprintf(`
 ORDER BY p.pub_date DESC, p.id DESC
 LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := s.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("posts query: %w", err)
	}
	defer rows.Close()

	out := make([]models.Post, 0, limit)
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("posts scan: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// PostByAuthor finds a post by id, only if username wrote it.
func (s *Store) PostByAuthor(ctx context.Context, username string, id int64) (models.Post, error) {
	row := s.DB.QueryRowContext(ctx, postSelect+`
 WHERE p.id = $1 AND u.username = $2`, id, username)
	p, err := scanPost(row)
	if err != nil {
		return models.Post{}, fmt.Errorf("post %s/%d: %w", username, id, notFound(err))
	}
	return p, nil
}

// CreatePost inserts p and sets its ID and PubDate.
func (s *Store) CreatePost(ctx context.Context, p *models.Post) error {
	return s.DB.QueryRowContext(ctx, `
INSERT INTO posts (text, author_id, group_id)
VALUES ($1, $2, $3)
RETURNING id, pub_date`, p.Text, p.AuthorID, nullInt(p.GroupID)).Scan(&p.ID, &p.PubDate)
}

// UpdatePost saves the editable fields of p.
func (s *Store) UpdatePost(ctx context.Context, p *models.Post) error {
	res, err := s.DB.ExecContext(ctx, `
UPDATE posts SET text = $1, group_id = $2
 WHERE id = $3`, p.Text, nullInt(p.GroupID), p.ID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("post %d: %w", p.ID, ErrNotFound)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPost(sc scanner) (models.Post, error) {
	var (
		p      models.Post
		gid    sql.NullInt64
		gTitle sql.NullString
		gSlug  sql.NullString
		gDescr sql.NullString
	)
	if err := sc.Scan(&p.ID, &p.Text, &p.PubDate, &p.AuthorID, &p.Author,
		&gid, &gTitle, &gSlug, &gDescr); err != nil {
		return models.Post{}, err
	}
	if gid.Valid {
		id := gid.Int64
		p.GroupID = &id
		p.Group = &models.Group{ID: id, Title: gTitle.String, Slug: gSlug.String, Description: gDescr.String}
	}
	return p, nil
}

func nullInt(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}
