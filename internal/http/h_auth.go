package httpx

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/hlog"

	"yatube/internal/auth"
	"yatube/internal/forms"
)

// ------------------------------------------------------------------------------
// Signup
// ------------------------------------------------------------------------------

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	data := pageData{Title: "Sign up", Errors: forms.Errors{}}
	if r.Method == http.MethodGet {
		s.render(w, r, http.StatusOK, "signup.html", data)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	data.SignupForm = forms.NewSignupForm(r.PostForm)
	data.Errors = data.SignupForm.Validate()
	if data.Errors.Valid() {
		_, err := s.Auth.Register(r.Context(), data.SignupForm.Username, data.SignupForm.Email, data.SignupForm.Password)
		switch {
		case errors.Is(err, auth.ErrUsernameTaken):
			data.Errors.Add("username", "A user with that username already exists.")
		case errors.Is(err, auth.ErrEmailTaken):
			data.Errors.Add("email", "A user with that email already exists.")
		case err != nil:
			s.serverError(w, r, err)
			return
		default:
			hlog.FromRequest(r).Info().Str("username", data.SignupForm.Username).Msg("user registered")
			http.Redirect(w, r, "/auth/login/?ok=1", http.StatusSeeOther)
			return
		}
	}
	data.SignupForm.Password, data.SignupForm.Password2 = "", ""
	s.render(w, r, http.StatusOK, "signup.html", data)
}

// ------------------------------------------------------------------------------
// Login / Logout
// ------------------------------------------------------------------------------

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	data := pageData{Title: "Log in", Errors: forms.Errors{}, Next: safeNext(r.FormValue("next"))}
	if r.Method == http.MethodGet {
		if r.URL.Query().Get("ok") == "1" {
			data.Flash = "Account created. You can log in now."
		}
		s.render(w, r, http.StatusOK, "login.html", data)
		return
	}

	data.LoginForm = forms.NewLoginForm(r.PostForm)
	data.Errors = data.LoginForm.Validate()
	if data.Errors.Valid() {
		sid, id, err := s.Auth.Login(r.Context(), data.LoginForm.Username, data.LoginForm.Password)
		switch {
		case errors.Is(err, auth.ErrInvalidLogin):
			hlog.FromRequest(r).Info().Str("username", data.LoginForm.Username).Msg("login refused")
			data.Errors.Add(forms.NonField, "Please enter a correct username and password.")
		case err != nil:
			s.serverError(w, r, err)
			return
		default:
			hlog.FromRequest(r).Info().Int64("uid", id.ID).Msg("login ok")
			http.SetCookie(w, &http.Cookie{
				Name:     CookieName,
				Value:    sid,
				Path:     "/",
				HttpOnly: true,
				Secure:   s.Cfg.SecureCookies,
				SameSite: http.SameSiteLaxMode,
				Expires:  time.Now().Add(s.Cfg.SessionLifetime),
			})
			dest := data.Next
			if dest == "" {
				dest = "/"
			}
			http.Redirect(w, r, dest, http.StatusSeeOther)
			return
		}
	}
	data.LoginForm.Password = ""
	s.render(w, r, http.StatusOK, "login.html", data)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(CookieName); err == nil {
		if err := s.Auth.Logout(r.Context(), c.Value); err != nil {
			hlog.FromRequest(r).Warn().Err(err).Msg("logout")
		}
		http.SetCookie(w, &http.Cookie{Name: CookieName, Value: "", Path: "/", MaxAge: -1, HttpOnly: true})
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// safeNext keeps only same-site absolute paths.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return ""
	}
	return next
}
