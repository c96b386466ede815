package httpx

import (
	"net/http"
	"net/url"
	"runtime/debug"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"yatube/internal/auth"
)

const CookieName = "session_id"

// withSession resolves the session cookie, if any, into an auth.Identity on
// the request context. Bad or expired sessions leave the request anonymous.
func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie(CookieName)
		if err != nil || c.Value == "" {
			next.ServeHTTP(w, r)
			return
		}

		id, exp, err := s.Auth.UserFromSession(r.Context(), c.Value)
		switch {
		case err != nil:
			hlog.FromRequest(r).Debug().Err(err).Msg("session lookup failed")
		case !exp.After(time.Now()):
			hlog.FromRequest(r).Debug().Int64("uid", id.ID).Time("expired", exp).Msg("session expired")
		default:
			r = r.WithContext(auth.WithIdentity(r.Context(), id))
			zerolog.Ctx(r.Context()).UpdateContext(func(c zerolog.Context) zerolog.Context {
				return c.Str("user", id.Username)
			})
		}
		next.ServeHTTP(w, r)
	})
}

// requireLogin sends anonymous visitors to the login page, remembering
// where they were headed.
func (s *Server) requireLogin(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.IdentityFrom(r.Context()); !ok {
			http.Redirect(w, r, loginURL(r), http.StatusSeeOther)
			return
		}
		next(w, r)
	})
}

func loginURL(r *http.Request) string {
	return "/auth/login/?next=" + url.QueryEscape(r.URL.RequestURI())
}

func (s *Server) recoverPanics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			hlog.FromRequest(r).Error().
				Interface("panic", rec).
				Bytes("stack", debug.Stack()).
				Msg("handler panic")
			s.renderServerError(w, r)
		}()
		next.ServeHTTP(w, r)
	})
}

// withLogging attaches log to every request and writes one access line per
// request.
func withLogging(log zerolog.Logger, next http.Handler) http.Handler {
	h := hlog.AccessHandler(func(r *http.Request, status, size int, d time.Duration) {
		ev := hlog.FromRequest(r).Info()
		if status >= http.StatusInternalServerError {
			ev = hlog.FromRequest(r).Error()
		}
		ev.Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("size", size).
			Dur("duration", d).
			Msg("request")
	})(next)
	h = hlog.RemoteAddrHandler("ip")(h)
	h = hlog.RequestIDHandler("req_id", "X-Request-Id")(h)
	return hlog.NewHandler(log)(h)
}
