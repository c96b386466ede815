package httpx

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"yatube/internal/app"
	"yatube/internal/auth"
	"yatube/internal/db"
	"yatube/internal/forms"
	"yatube/internal/models"
	"yatube/internal/util"
	"yatube/web"
)

// Store is the persistence the handlers need. *db.Store implements it.
type Store interface {
	forms.GroupLookup
	GroupBySlug(ctx context.Context, slug string) (models.Group, error)
	ListGroups(ctx context.Context) ([]models.Group, error)

	UserByUsername(ctx context.Context, username string) (models.User, error)
	ListUsers(ctx context.Context) ([]models.UserStat, error)

	CountPosts(ctx context.Context, f db.PostFilter) (int, error)
	ListPosts(ctx context.Context, f db.PostFilter, limit, offset int) ([]models.Post, error)
	PostByAuthor(ctx context.Context, username string, id int64) (models.Post, error)
	CreatePost(ctx context.Context, p *models.Post) error
	UpdatePost(ctx context.Context, p *models.Post) error

	ListComments(ctx context.Context, postID int64) ([]models.Comment, error)
	CreateComment(ctx context.Context, c *models.Comment) error
}

// Sessions is the account and session backend. *auth.Manager implements it.
type Sessions interface {
	Register(ctx context.Context, username, email, password string) (int64, error)
	Login(ctx context.Context, username, password string) (string, auth.Identity, error)
	Logout(ctx context.Context, sid string) error
	UserFromSession(ctx context.Context, sid string) (auth.Identity, time.Time, error)
}

var (
	_ Store    = (*db.Store)(nil)
	_ Sessions = (*auth.Manager)(nil)
)

type Server struct {
	Store  Store
	Auth   Sessions
	Cfg    app.Config
	Log    zerolog.Logger
	Router *mux.Router

	views   *util.Renderer
	handler http.Handler
}

func NewServer(store Store, sessions Sessions, cfg app.Config, log zerolog.Logger) (*Server, error) {
	views, err := util.NewRenderer(web.Templates, web.TemplateDir)
	if err != nil {
		return nil, err
	}
	s := &Server{
		Store:  store,
		Auth:   sessions,
		Cfg:    cfg,
		Log:    log,
		Router: mux.NewRouter().StrictSlash(true),
		views:  views,
	}
	s.routes()

	var h http.Handler = s.withSession(s.Router)
	if cfg.RequestTimeout > 0 {
		h = http.TimeoutHandler(h, cfg.RequestTimeout, "request timeout")
	}
	h = s.recoverPanics(h)
	s.handler = withLogging(log, h)
	return s, nil
}

// routes registers literal prefixes before the {username} catch-alls.
func (s *Server) routes() {
	r := s.Router

	r.HandleFunc("/", s.handleIndex).Methods(http.MethodGet, http.MethodHead)
	r.Handle("/new/", s.requireLogin(s.handlePostNew)).Methods(http.MethodGet, http.MethodHead, http.MethodPost)
	r.Handle("/group/", s.requireLogin(s.handleGroupList)).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/group/{slug}/", s.handleGroupPosts).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/users/", s.handleUsersList).Methods(http.MethodGet, http.MethodHead)

	r.HandleFunc("/auth/signup/", s.handleSignup).Methods(http.MethodGet, http.MethodHead, http.MethodPost)
	r.HandleFunc("/auth/login/", s.handleLogin).Methods(http.MethodGet, http.MethodHead, http.MethodPost)
	r.HandleFunc("/auth/logout/", s.handleLogout).Methods(http.MethodGet, http.MethodHead, http.MethodPost)

	r.HandleFunc("/{username}/", s.handleProfile).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/{username}/{post_id:[0-9]+}/", s.handlePostView).Methods(http.MethodGet, http.MethodHead, http.MethodPost)
	r.Handle("/{username}/{post_id:[0-9]+}/edit/", s.requireLogin(s.handlePostEdit)).Methods(http.MethodGet, http.MethodHead, http.MethodPost)
	r.Handle("/{username}/{post_id:[0-9]+}/comment/", s.requireLogin(s.handleAddComment)).Methods(http.MethodGet, http.MethodHead, http.MethodPost)

	r.NotFoundHandler = http.HandlerFunc(s.notFound)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.handler.ServeHTTP(w, r) }
