package httpx

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/hlog"

	"yatube/internal/auth"
	"yatube/internal/db"
	"yatube/internal/forms"
	"yatube/internal/models"
)

func postURL(username string, id int64) string {
	return fmt.Sprintf("/%s/%d/", username, id)
}

// lookupPost loads the post named by the {username}/{post_id} route vars,
// answering 404 itself when there is none.
func (s *Server) lookupPost(w http.ResponseWriter, r *http.Request) (models.Post, bool) {
	vars := mux.Vars(r)
	id, err := strconv.ParseInt(vars["post_id"], 10, 64)
	if err != nil {
		s.notFound(w, r)
		return models.Post{}, false
	}
	post, err := s.Store.PostByAuthor(r.Context(), vars["username"], id)
	if err != nil {
		s.fail(w, r, err)
		return models.Post{}, false
	}
	return post, true
}

// ------------------------------------------------------------------------------
// Detail + inline comment form
// ------------------------------------------------------------------------------

func (s *Server) handlePostView(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	post, ok := s.lookupPost(w, r)
	if !ok {
		return
	}

	data := pageData{Title: post.String(), Post: &post, Errors: forms.Errors{}}

	if r.Method == http.MethodPost {
		viewer, ok := auth.IdentityFrom(ctx)
		if !ok {
			http.Redirect(w, r, loginURL(r), http.StatusSeeOther)
			return
		}
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		data.CommentForm = forms.NewCommentForm(r.PostForm)
		comment, errs := data.CommentForm.Validate()
		if errs.Valid() {
			if !s.saveComment(w, r, comment, post, viewer) {
				return
			}
			http.Redirect(w, r, postURL(post.Author, post.ID), http.StatusSeeOther)
			return
		}
		data.Errors = errs
	}

	count, err := s.Store.CountPosts(ctx, db.PostFilter{AuthorID: post.AuthorID})
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	comments, err := s.Store.ListComments(ctx, post.ID)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	data.Author = &models.User{ID: post.AuthorID, Username: post.Author}
	data.PostCount = count
	data.Comments = comments
	s.render(w, r, http.StatusOK, "post.html", data)
}

// handleAddComment is the standalone comment page.
func (s *Server) handleAddComment(w http.ResponseWriter, r *http.Request) {
	post, ok := s.lookupPost(w, r)
	if !ok {
		return
	}
	data := pageData{Title: "Add a comment", Post: &post, Errors: forms.Errors{}}

	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		data.CommentForm = forms.NewCommentForm(r.PostForm)
		comment, errs := data.CommentForm.Validate()
		if errs.Valid() {
			viewer, _ := auth.IdentityFrom(r.Context())
			if !s.saveComment(w, r, comment, post, viewer) {
				return
			}
			http.Redirect(w, r, postURL(post.Author, post.ID), http.StatusSeeOther)
			return
		}
		data.Errors = errs
	}
	s.render(w, r, http.StatusOK, "add_comment.html", data)
}

func (s *Server) saveComment(w http.ResponseWriter, r *http.Request, c *models.Comment, post models.Post, viewer auth.Identity) bool {
	c.PostID = post.ID
	c.AuthorID = viewer.ID
	c.Author = viewer.Username
	if err := s.Store.CreateComment(r.Context(), c); err != nil {
		s.serverError(w, r, err)
		return false
	}
	hlog.FromRequest(r).Info().Int64("post", post.ID).Int64("comment", c.ID).Msg("comment created")
	return true
}

// ------------------------------------------------------------------------------
// Create
// ------------------------------------------------------------------------------

func (s *Server) handlePostNew(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	viewer, _ := auth.IdentityFrom(ctx)
	data := pageData{Title: "New post", Errors: forms.Errors{}}

	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		data.PostForm = forms.NewPostForm(r.PostForm)
		post, errs, err := data.PostForm.Validate(ctx, s.Store, nil)
		if err != nil {
			s.serverError(w, r, err)
			return
		}
		if errs.Valid() {
			post.AuthorID = viewer.ID
			post.Author = viewer.Username
			if err := s.Store.CreatePost(ctx, post); err != nil {
				s.serverError(w, r, err)
				return
			}
			hlog.FromRequest(r).Info().Int64("post", post.ID).Str("preview", post.String()).Msg("post created")
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		data.Errors = errs
	}
	s.renderPostForm(w, r, data)
}

// ------------------------------------------------------------------------------
// Edit (author only)
// ------------------------------------------------------------------------------

func (s *Server) handlePostEdit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	post, ok := s.lookupPost(w, r)
	if !ok {
		return
	}
	viewer, _ := auth.IdentityFrom(ctx)
	if viewer.ID != post.AuthorID {
		hlog.FromRequest(r).Warn().Int64("post", post.ID).Msg("edit by non-author refused")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	data := pageData{Title: "Edit post", IsEdit: true, Post: &post, PostForm: forms.PostFormFrom(post), Errors: forms.Errors{}}

	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		data.PostForm = forms.NewPostForm(r.PostForm)
		updated, errs, err := data.PostForm.Validate(ctx, s.Store, &post)
		if err != nil {
			s.serverError(w, r, err)
			return
		}
		if errs.Valid() {
			if err := s.Store.UpdatePost(ctx, updated); err != nil {
				s.fail(w, r, err)
				return
			}
			hlog.FromRequest(r).Info().Int64("post", post.ID).Msg("post updated")
			http.Redirect(w, r, postURL(post.Author, post.ID), http.StatusSeeOther)
			return
		}
		data.Errors = errs
	}
	s.renderPostForm(w, r, data)
}

func (s *Server) renderPostForm(w http.ResponseWriter, r *http.Request, data pageData) {
	groups, err := s.Store.ListGroups(r.Context())
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	data.Groups = groups
	s.render(w, r, http.StatusOK, "new_post.html", data)
}
