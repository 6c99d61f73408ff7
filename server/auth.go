package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/mail"

	"github.com/gorilla/sessions"
	"golang.org/x/crypto/bcrypt"

	"fitlog/common"
	"fitlog/repo"
	"fitlog/templates"
)

var (
	errInvalidLogin  = errors.New("email or password invalid")
	errEmailInvalid  = errors.New("email invalid")
	errPasswordShort = errors.New("password too short (min 8 characters)")
	errNameShort     = errors.New("name too short (min 3 characters)")
	errAccountExists = errors.New("account already exists")
)

// authMessages maps auth failures to the locale key shown to the user.
var authMessages = []struct {
	err error
	key string
}{
	{errInvalidLogin, "errInvalidLogin"},
	{errEmailInvalid, "errEmailInvalid"},
	{errPasswordShort, "errPasswordShort"},
	{errNameShort, "errNameShort"},
	{errAccountExists, "errAccountExists"},
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), 11)
	return string(bytes), err
}

// VerifyPassword verifies if the given password matches the stored hash.
func VerifyPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

func (s *server) Login(ctx context.Context, email string, password string, sess *sessions.Session) error {
	u, err := s.repo.UserByEmail(ctx, email)
	if errors.Is(err, repo.ErrNotFound) || (err == nil && !VerifyPassword(password, u.Password)) {
		s.log.Info("invalid login %s", email)
		return errInvalidLogin
	} else if err != nil {
		return err
	}
	sess.Values[sessionUserId] = u.Id
	s.log.Info("valid login id = %s", u.Id)
	return nil
}

func (s *server) Register(ctx context.Context, email string, password string, name string, sess *sessions.Session) error {
	if !validEmail(email) {
		return errEmailInvalid
	}
	if err := validatePassword(password); err != nil {
		return err
	}
	if err := validateName(name); err != nil {
		return err
	}
	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	u, err := s.repo.CreateUser(ctx, common.User{Name: name, Email: email, Password: hash})
	if errors.Is(err, repo.ErrDuplicate) {
		return errAccountExists
	} else if err != nil {
		return err
	}
	sess.Values[sessionUserId] = u.Id
	s.log.Info("registered id = %s", u.Id)
	return nil
}

func validEmail(email string) bool {
	_, err := mail.ParseAddress(email)
	return err == nil
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return errPasswordShort
	}
	return nil
}

func validateName(name string) error {
	if len(name) < 3 {
		return errNameShort
	}
	return nil
}

// currentUser returns the signed-in user id, or "" when the session has none
// or names a user that no longer exists. Lookup failures are returned so
// callers answer them as server errors instead of sending the user to login.
func (s *server) currentUser(w http.ResponseWriter, r *http.Request) (string, *sessions.Session, error) {
	session, _ := s.store.Get(r, sessionName)
	userId, _ := session.Values[sessionUserId].(string)
	if userId == "" {
		return "", session, nil
	}
	_, err := s.repo.UserById(r.Context(), userId)
	if errors.Is(err, repo.ErrNotFound) {
		delete(session.Values, sessionUserId)
		if err := session.Save(r, w); err != nil {
			s.log.Error(err, "session.save")
		}
		return "", session, nil
	} else if err != nil {
		return "", session, fmt.Errorf("current user %s: %w", userId, err)
	}
	return userId, session, nil
}

func (s *server) authError(l localizer, err error) string {
	for _, m := range authMessages {
		if errors.Is(err, m.err) {
			return l.T(m.key)
		}
	}
	s.log.Error(err, "auth")
	return l.T("errGeneric")
}

func (s *server) handleRoot(w http.ResponseWriter, r *http.Request) {
	l := s.strings(w, r)
	userId, _, err := s.currentUser(w, r)
	if err != nil {
		s.fail(w, l, err, "currentUser")
		return
	}
	if userId != "" {
		http.Redirect(w, r, "/exercises", http.StatusFound)
		return
	}
	s.render(w, r, templates.Root(l))
}

func (s *server) handleLogin(w http.ResponseWriter, r *http.Request) {
	l := s.strings(w, r)
	session, _ := s.store.Get(r, sessionName)
	var errmsg string
	if r.URL.Query().Get("action") == "login" && r.Method == http.MethodPost {
		e := r.FormValue("email")
		p := r.FormValue("password")
		if err := s.Login(r.Context(), e, p, session); err != nil {
			errmsg = s.authError(l, err)
		}
	} else if r.URL.Query().Get("action") == "logout" {
		delete(session.Values, sessionUserId)
	}
	if err := session.Save(r, w); err != nil {
		s.log.Error(err, "session.save")
	}
	if userId, _ := session.Values[sessionUserId].(string); userId != "" {
		http.Redirect(w, r, "/exercises", http.StatusFound)
		return
	}
	s.render(w, r, templates.Login(l, errmsg))
}

func (s *server) handleRegister(w http.ResponseWriter, r *http.Request) {
	l := s.strings(w, r)
	session, _ := s.store.Get(r, sessionName)
	var errmsg string
	if r.URL.Query().Get("action") == "register" && r.Method == http.MethodPost {
		e := r.FormValue("email")
		n := r.FormValue("name")
		p := r.FormValue("password")
		if err := s.Register(r.Context(), e, p, n, session); err != nil {
			errmsg = s.authError(l, err)
		}
	}
	if err := session.Save(r, w); err != nil {
		s.log.Error(err, "session.save")
	}
	if userId, _ := session.Values[sessionUserId].(string); userId != "" {
		http.Redirect(w, r, "/exercises", http.StatusFound)
		return
	}
	s.render(w, r, templates.Register(l, errmsg))
}
