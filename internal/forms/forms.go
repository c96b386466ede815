// Package forms binds untrusted request values to entities.
//
// A form never touches storage beyond lookups needed to validate a field.
// Validation failures come back as Errors keyed by field name; only store
// faults come back as error.
package forms

import (
	"context"
	"errors"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"yatube/internal/db"
	"yatube/internal/models"
)

const (
	MsgRequired      = "This field is required."
	MsgInvalidChoice = "Select a valid choice. That choice is not one of the available choices."
)

// NonField holds errors that belong to the form as a whole.
const NonField = "__all__"

// Errors maps a field name to its messages.
type Errors map[string][]string

func (e Errors) Add(field, msg string) { e[field] = append(e[field], msg) }

// Get returns the first message for field, or "".
func (e Errors) Get(field string) string {
	if len(e[field]) == 0 {
		return ""
	}
	return e[field][0]
}

func (e Errors) Valid() bool { return len(e) == 0 }

// GroupLookup is the store access a PostForm needs.
type GroupLookup interface {
	GroupByID(ctx context.Context, id int64) (models.Group, error)
}

// PostForm is the text and group of a post as submitted.
type PostForm struct {
	Text  string
	Group string // group id, "" for none
}

func NewPostForm(v url.Values) PostForm {
	return PostForm{Text: v.Get("text"), Group: strings.TrimSpace(v.Get("group"))}
}

// PostFormFrom pre-fills a form with an existing post, for the edit page.
func PostFormFrom(p models.Post) PostForm {
	f := PostForm{Text: p.Text}
	if p.GroupID != nil {
		f.Group = strconv.FormatInt(*p.GroupID, 10)
	}
	return f
}

// Validate checks the form and returns the post to save. When instance is
// nil a new post is produced; otherwise a copy of instance with the form's
// fields applied. The caller stamps the author and saves.
func (f PostForm) Validate(ctx context.Context, groups GroupLookup, instance *models.Post) (*models.Post, Errors, error) {
	errs := Errors{}

	text := strings.TrimSpace(f.Text)
	if text == "" {
		errs.Add("text", MsgRequired)
	}

	var group *models.Group
	if f.Group != "" {
		id, err := strconv.ParseInt(f.Group, 10, 64)
		if err != nil || id <= 0 {
			errs.Add("group", MsgInvalidChoice)
		} else {
			g, err := groups.GroupByID(ctx, id)
			switch {
			case errors.Is(err, db.ErrNotFound):
				errs.Add("group", MsgInvalidChoice)
			case err != nil:
				return nil, nil, err
			default:
				group = &g
			}
		}
	}

	if !errs.Valid() {
		return nil, errs, nil
	}

	var p models.Post
	if instance != nil {
		p = *instance
	}
	p.Text = text
	p.Group = group
	p.GroupID = nil
	if group != nil {
		gid := group.ID
		p.GroupID = &gid
	}
	return &p, errs, nil
}

// CommentForm is a comment's text as submitted.
type CommentForm struct {
	Text string
}

func NewCommentForm(v url.Values) CommentForm {
	return CommentForm{Text: v.Get("text")}
}

// Validate returns the comment to save; post and author are set by the caller.
func (f CommentForm) Validate() (*models.Comment, Errors) {
	errs := Errors{}
	text := strings.TrimSpace(f.Text)
	if text == "" {
		errs.Add("text", MsgRequired)
		return nil, errs
	}
	return &models.Comment{Text: text}, errs
}

var usernameRe = regexp.MustCompile(`^[\w.@+-]+$`)

const (
	maxUsernameLen    = 150
	minPasswordLen    = 8
	msgUsernameFormat = "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."
)

type SignupForm struct {
	Username  string
	Email     string
	Password  string
	Password2 string
}

func NewSignupForm(v url.Values) SignupForm {
	return SignupForm{
		Username:  strings.TrimSpace(v.Get("username")),
		Email:     strings.TrimSpace(v.Get("email")),
		Password:  v.Get("password1"),
		Password2: v.Get("password2"),
	}
}

func (f SignupForm) Validate() Errors {
	errs := Errors{}

	switch {
	case f.Username == "":
		errs.Add("username", MsgRequired)
	case utf8.RuneCountInString(f.Username) > maxUsernameLen:
		errs.Add("username", "Ensure this value has at most 150 characters.")
	case !usernameRe.MatchString(f.Username):
		errs.Add("username", msgUsernameFormat)
	case isReservedUsername(f.Username):
		errs.Add("username", "This username is reserved.")
	}

	switch {
	case f.Email == "":
		errs.Add("email", MsgRequired)
	case !strings.Contains(f.Email, "@") || strings.HasPrefix(f.Email, "@") || strings.HasSuffix(f.Email, "@"):
		errs.Add("email", "Enter a valid email address.")
	}

	switch {
	case f.Password == "":
		errs.Add("password1", MsgRequired)
	case utf8.RuneCountInString(f.Password) < minPasswordLen:
		errs.Add("password1", "This password is too short. It must contain at least 8 characters.")
	}
	if f.Password2 == "" {
		errs.Add("password2", MsgRequired)
	} else if f.Password != "" && f.Password != f.Password2 {
		errs.Add("password2", "The two password fields didn't match.")
	}
	return errs
}

// Usernames that would shadow a top-level route or be cleaned out of a path.
var reserved = map[string]bool{
	"new": true, "group": true, "users": true, "auth": true, "static": true,
	".": true, "..": true,
}

func isReservedUsername(name string) bool { return reserved[strings.ToLower(name)] }

type LoginForm struct {
	Username string
	Password string
}

func NewLoginForm(v url.Values) LoginForm {
	return LoginForm{Username: strings.TrimSpace(v.Get("username")), Password: v.Get("password")}
}

func (f LoginForm) Validate() Errors {
	errs := Errors{}
	if f.Username == "" {
		errs.Add("username", MsgRequired)
	}
	if f.Password == "" {
		errs.Add("password", MsgRequired)
	}
	return errs
}
