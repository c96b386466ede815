package httpx

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"yatube/internal/auth"
	"yatube/internal/db"
	"yatube/internal/forms"
	"yatube/internal/models"
	"yatube/internal/paginate"
)

// pageData is what every template receives. Each page fills what it shows.
type pageData struct {
	Title  string
	Path   string
	Viewer auth.Identity
	Flash  string
	Next   string

	Page      paginate.Page[models.Post]
	Group     *models.Group
	Author    *models.User
	PostCount int

	Post     *models.Post
	Comments []models.Comment

	Groups []models.Group
	Users  []models.UserStat

	IsEdit      bool
	PostForm    forms.PostForm
	CommentForm forms.CommentForm
	SignupForm  forms.SignupForm
	LoginForm   forms.LoginForm
	Errors      forms.Errors
}

// postPage counts the filtered posts, then fetches only the requested page.
func (s *Server) postPage(ctx context.Context, f db.PostFilter, rawPage string) (paginate.Page[models.Post], error) {
	n, err := s.Store.CountPosts(ctx, f)
	if err != nil {
		return paginate.Page[models.Post]{}, err
	}
	w := paginate.New(n, paginate.PerPage).Page(rawPage)
	if w.Limit() == 0 {
		return paginate.FromWindow(w, []models.Post{}), nil
	}
	posts, err := s.Store.ListPosts(ctx, f, w.Limit(), w.Offset())
	if err != nil {
		return paginate.Page[models.Post]{}, err
	}
	return paginate.FromWindow(w, posts), nil
}

// ------------------------------------------------------------------------------
// Lists
// ------------------------------------------------------------------------------

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	page, err := s.postPage(r.Context(), db.PostFilter{}, r.URL.Query().Get("page"))
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "index.html", pageData{Title: "Latest posts", Page: page})
}

func (s *Server) handleGroupPosts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	group, err := s.Store.GroupBySlug(ctx, mux.Vars(r)["slug"])
	if err != nil {
		s.fail(w, r, err)
		return
	}
	page, err := s.postPage(ctx, db.PostFilter{GroupID: group.ID}, r.URL.Query().Get("page"))
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "group.html", pageData{Title: group.String(), Group: &group, Page: page})
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, err := s.Store.UserByUsername(ctx, mux.Vars(r)["username"])
	if err != nil {
		s.fail(w, r, err)
		return
	}
	page, err := s.postPage(ctx, db.PostFilter{AuthorID: user.ID}, r.URL.Query().Get("page"))
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "profile.html", pageData{
		Title:     user.Username,
		Author:    &user,
		PostCount: page.Count,
		Page:      page,
	})
}

func (s *Server) handleGroupList(w http.ResponseWriter, r *http.Request) {
	groups, err := s.Store.ListGroups(r.Context())
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "groups_list.html", pageData{Title: "Groups", Groups: groups})
}

func (s *Server) handleUsersList(w http.ResponseWriter, r *http.Request) {
	users, err := s.Store.ListUsers(r.Context())
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "users_list.html", pageData{Title: "Authors", Users: users})
}
