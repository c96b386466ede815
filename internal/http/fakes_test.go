package httpx

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"yatube/internal/auth"
	"yatube/internal/db"
	"yatube/internal/models"
)

// memStore is an in-memory Store for handler tests.
type memStore struct {
	mu       sync.Mutex
	users    []models.User
	groups   []models.Group
	posts    []models.Post
	comments []models.Comment
	clock    time.Time

	failLists bool
}

func newMemStore() *memStore {
	return &memStore{clock: time.Date(2021, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (m *memStore) addUser(name string) models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := models.User{ID: int64(len(m.users) + 1), Username: name, Email: name + "@example.com"}
	m.users = append(m.users, u)
	return u
}

func (m *memStore) addGroup(title, slug string) models.Group {
	m.mu.Lock()
	defer m.mu.Unlock()
	g := models.Group{ID: int64(len(m.groups) + 1), Title: title, Slug: slug, Description: "about " + title}
	m.groups = append(m.groups, g)
	return g
}

func (m *memStore) addPost(author models.User, text string, group *models.Group) models.Post {
	p := &models.Post{Text: text, AuthorID: author.ID, Author: author.Username}
	if group != nil {
		gid := group.ID
		p.GroupID = &gid
	}
	if err := m.CreatePost(context.Background(), p); err != nil {
		panic(err)
	}
	return *p
}

func (m *memStore) postCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.posts)
}

func (m *memStore) post(id int64) models.Post {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.posts {
		if p.ID == id {
			return p
		}
	}
	return models.Post{}
}

func (m *memStore) groupByIDLocked(id int64) (models.Group, bool) {
	for _, g := range m.groups {
		if g.ID == id {
			return g, true
		}
	}
	return models.Group{}, false
}

func (m *memStore) GroupByID(_ context.Context, id int64) (models.Group, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if g, ok := m.groupByIDLocked(id); ok {
		return g, nil
	}
	return models.Group{}, fmt.Errorf("group %d: %w", id, db.ErrNotFound)
}

func (m *memStore) GroupBySlug(_ context.Context, slug string) (models.Group, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, g := range m.groups {
		if g.Slug == slug {
			return g, nil
		}
	}
	return models.Group{}, fmt.Errorf("group %q: %w", slug, db.ErrNotFound)
}

func (m *memStore) ListGroups(context.Context) ([]models.Group, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Group(nil), m.groups...), nil
}

func (m *memStore) UserByUsername(_ context.Context, username string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return models.User{}, fmt.Errorf("user %q: %w", username, db.ErrNotFound)
}

func (m *memStore) ListUsers(context.Context) ([]models.UserStat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failLists {
		return nil, errors.New("database is down")
	}
	var out []models.UserStat
	for _, u := range m.users {
		us := models.UserStat{User: u}
		for _, p := range m.posts {
			if p.AuthorID == u.ID {
				us.PostCount++
			}
		}
		out = append(out, us)
	}
	return out, nil
}

func (m *memStore) filtered(f db.PostFilter) []models.Post {
	var out []models.Post
	for _, p := range m.posts {
		if f.GroupID != 0 && (p.GroupID == nil || *p.GroupID != f.GroupID) {
			continue
		}
		if f.AuthorID != 0 && p.AuthorID != f.AuthorID {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].PubDate.Equal(out[j].PubDate) {
			return out[i].PubDate.After(out[j].PubDate)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func (m *memStore) CountPosts(_ context.Context, f db.PostFilter) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.filtered(f)), nil
}

func (m *memStore) ListPosts(_ context.Context, f db.PostFilter, limit, offset int) ([]models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := m.filtered(f)
	if offset > len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (m *memStore) PostByAuthor(_ context.Context, username string, id int64) (models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.posts {
		if p.ID == id && p.Author == username {
			return p, nil
		}
	}
	return models.Post{}, fmt.Errorf("post %s/%d: %w", username, id, db.ErrNotFound)
}

func (m *memStore) CreatePost(_ context.Context, p *models.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clock = m.clock.Add(time.Minute)
	p.ID = int64(len(m.posts) + 1)
	p.PubDate = m.clock
	m.attachGroup(p)
	m.posts = append(m.posts, *p)
	return nil
}

func (m *memStore) UpdatePost(_ context.Context, p *models.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.posts {
		if m.posts[i].ID == p.ID {
			m.posts[i].Text = p.Text
			m.posts[i].GroupID = p.GroupID
			m.attachGroup(&m.posts[i])
			return nil
		}
	}
	return fmt.Errorf("post %d: %w", p.ID, db.ErrNotFound)
}

func (m *memStore) attachGroup(p *models.Post) {
	p.Group = nil
	if p.GroupID == nil {
		return
	}
	if g, ok := m.groupByIDLocked(*p.GroupID); ok {
		p.Group = &g
	}
}

func (m *memStore) ListComments(_ context.Context, postID int64) ([]models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Comment
	for _, c := range m.comments {
		if c.PostID == postID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memStore) CreateComment(_ context.Context, c *models.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clock = m.clock.Add(time.Second)
	c.ID = int64(len(m.comments) + 1)
	c.Created = m.clock
	m.comments = append(m.comments, *c)
	return nil
}

// fakeSessions keeps accounts and sessions in maps.
type fakeSessions struct {
	mu        sync.Mutex
	store     *memStore
	passwords map[string]string
	sessions  map[string]auth.Identity
	expires   map[string]time.Time
}

func newFakeSessions(store *memStore) *fakeSessions {
	return &fakeSessions{
		store:     store,
		passwords: map[string]string{},
		sessions:  map[string]auth.Identity{},
		expires:   map[string]time.Time{},
	}
}

func (f *fakeSessions) Register(ctx context.Context, username, _, password string) (int64, error) {
	if _, err := f.store.UserByUsername(ctx, username); err == nil {
		return 0, auth.ErrUsernameTaken
	}
	u := f.store.addUser(username)
	f.mu.Lock()
	f.passwords[username] = password
	f.mu.Unlock()
	return u.ID, nil
}

func (f *fakeSessions) Login(ctx context.Context, username, password string) (string, auth.Identity, error) {
	f.mu.Lock()
	want, ok := f.passwords[username]
	f.mu.Unlock()
	if !ok || want != password {
		return "", auth.Identity{}, auth.ErrInvalidLogin
	}
	u, err := f.store.UserByUsername(ctx, username)
	if err != nil {
		return "", auth.Identity{}, err
	}
	return f.open(u, time.Hour), auth.Identity{ID: u.ID, Username: u.Username}, nil
}

// open starts a session for u directly, skipping the password.
func (f *fakeSessions) open(u models.User, ttl time.Duration) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	sid := uuid.NewString()
	f.sessions[sid] = auth.Identity{ID: u.ID, Username: u.Username}
	f.expires[sid] = time.Now().Add(ttl)
	return sid
}

func (f *fakeSessions) Logout(_ context.Context, sid string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, sid)
	delete(f.expires, sid)
	return nil
}

func (f *fakeSessions) UserFromSession(_ context.Context, sid string) (auth.Identity, time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.sessions[sid]
	if !ok {
		return auth.Identity{}, time.Time{}, auth.ErrNoSession
	}
	return id, f.expires[sid], nil
}
