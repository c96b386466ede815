package models

import "time"

// PreviewLen is how many characters of a post's text its string form keeps.
const PreviewLen = 15

type User struct {
	ID           int64
	Email        string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

type Session struct {
	ID        string
	UserID    int64
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Group is a named category of posts. Slug is unique.
type Group struct {
	ID          int64
	Title       string
	Slug        string
	Description string
}

func (g Group) String() string { return g.Title }

type Post struct {
	ID      int64
	Text    string
	PubDate time.Time

	AuthorID int64
	Author   string // username, filled on reads

	// GroupID is nil for posts outside any group.
	GroupID *int64
	Group   *Group
}

// String returns the short preview used wherever a post is listed by name.
func (p Post) String() string {
	r := []rune(p.Text)
	if len(r) > PreviewLen {
		r = r[:PreviewLen]
	}
	return string(r)
}

type Comment struct {
	ID       int64
	PostID   int64
	AuthorID int64
	Author   string
	Text     string
	Created  time.Time
}

// UserStat is a user with the number of posts they authored.
type UserStat struct {
	User
	PostCount int
}
