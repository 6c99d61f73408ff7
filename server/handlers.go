package main

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"fitlog/common"
	"fitlog/exercises"
	"fitlog/repo"
	"fitlog/templates"
)

// exerciseSubmitted is called after an exercise was stored successfully.
type exerciseSubmitted func(w http.ResponseWriter, r *http.Request, name string)

func redirectToWorkout(w http.ResponseWriter, r *http.Request, name string) {
	http.Redirect(w, r, templates.WorkoutURL(name), http.StatusFound)
}

func (s *server) render(w http.ResponseWriter, r *http.Request, component templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := component.Render(r.Context(), w); err != nil {
		s.log.Error(err, "render "+r.URL.Path)
	}
}

func (s *server) renderStatus(w http.ResponseWriter, r *http.Request, status int, component templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := component.Render(r.Context(), w); err != nil {
		s.log.Error(err, "render "+r.URL.Path)
	}
}

func (s *server) fail(w http.ResponseWriter, l localizer, err error, context string) {
	s.log.Error(err, context)
	http.Error(w, l.T("errGeneric"), http.StatusInternalServerError)
}

func toLogin(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/login", http.StatusFound)
}

func (s *server) handleExercises(w http.ResponseWriter, r *http.Request) {
	l := s.strings(w, r)
	userId, _, err := s.currentUser(w, r)
	if err != nil {
		s.fail(w, l, err, "currentUser")
		return
	}
	list, err := exercises.UseExercises(s.repo, userId)(r.Context())
	if errors.Is(err, exercises.ErrUnauthenticatedList) {
		toLogin(w, r)
		return
	} else if err != nil {
		s.fail(w, l, err, "listExercises")
		return
	}
	s.render(w, r, templates.Exercises(l, list))
}

func (s *server) handleAddExerciseForm(w http.ResponseWriter, r *http.Request) {
	l := s.strings(w, r)
	userId, _, err := s.currentUser(w, r)
	if err != nil {
		s.fail(w, l, err, "currentUser")
		return
	}
	if userId == "" {
		toLogin(w, r)
		return
	}
	s.render(w, r, templates.AddExercise(l, "", ""))
}

// handleAddExercise stores the submitted exercise and hands the name to
// onSubmitted.
func (s *server) handleAddExercise(onSubmitted exerciseSubmitted) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		l := s.strings(w, r)
		name := strings.TrimSpace(r.FormValue("name"))
		userId, _, err := s.currentUser(w, r)
		if err != nil {
			s.log.Error(err, "currentUser")
			s.renderStatus(w, r, http.StatusInternalServerError, templates.AddExercise(l, name, l.T("addExerciseFailed")))
			return
		}

		err = exercises.UseAddExercise(s.repo, userId)(r.Context(), name)
		switch {
		case err == nil:
			onSubmitted(w, r, name)
		case errors.Is(err, exercises.ErrUnauthenticated):
			toLogin(w, r)
		case errors.Is(err, repo.ErrInvalidName), errors.Is(err, repo.ErrDuplicate):
			s.renderStatus(w, r, http.StatusBadRequest, templates.AddExercise(l, name, l.T("addExerciseFailed")))
		default:
			s.log.Error(err, "addExercise")
			s.renderStatus(w, r, http.StatusInternalServerError, templates.AddExercise(l, name, l.T("addExerciseFailed")))
		}
	}
}

func (s *server) handleWorkout(w http.ResponseWriter, r *http.Request) {
	l := s.strings(w, r)
	userId, _, err := s.currentUser(w, r)
	if err != nil {
		s.fail(w, l, err, "currentUser")
		return
	}
	if userId == "" {
		toLogin(w, r)
		return
	}
	ctx := r.Context()
	name := strings.TrimSpace(r.URL.Query().Get("exercise"))
	if name == "" {
		all, err := exercises.UseExercises(s.repo, userId)(ctx)
		if err != nil {
			s.fail(w, l, err, "listExercises")
			return
		}
		s.render(w, r, templates.Workout(l, common.Exercise{}, all, nil, ""))
		return
	}

	exercise, err := s.repo.ExerciseByName(ctx, userId, name)
	if errors.Is(err, repo.ErrNotFound) {
		http.NotFound(w, r)
		return
	} else if err != nil {
		s.fail(w, l, err, "exerciseByName")
		return
	}

	var errmsg string
	status := http.StatusOK
	if r.Method == http.MethodPost {
		set, err := parseSet(r)
		if err == nil {
			set.ExerciseId = exercise.Id
			set.UserId = userId
			_, err = s.repo.LogSet(ctx, set)
		}
		if err == nil {
			http.Redirect(w, r, templates.WorkoutURL(exercise.Name), http.StatusSeeOther)
			return
		}
		if status = logSetStatus(err); status == http.StatusBadRequest {
			s.log.Warn("logSet rejected: %v", err)
		} else {
			s.log.Error(err, "logSet")
		}
		errmsg = l.T("logSetFailed")
	}

	logs, err := s.repo.ListLogs(ctx, userId, exercise.Id)
	if err != nil {
		s.fail(w, l, err, "listLogs")
		return
	}
	s.renderStatus(w, r, status, templates.Workout(l, exercise, nil, logs, errmsg))
}

var errBadSet = errors.New("malformed set")

// logSetStatus maps a failed set submission to its response status: the
// user's input is at fault for malformed or rejected sets, anything else is
// ours.
func logSetStatus(err error) int {
	switch {
	case errors.Is(err, errBadSet), errors.Is(err, repo.ErrInvalidSet), errors.Is(err, repo.ErrNotFound):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func parseSet(r *http.Request) (common.ExerciseLog, error) {
	var set common.ExerciseLog
	var err error
	if set.Weight, err = strconv.ParseFloat(r.FormValue("weight"), 64); err != nil {
		return set, fmt.Errorf("%w: weight: %w", errBadSet, err)
	}
	if set.Reps, err = strconv.Atoi(r.FormValue("reps")); err != nil {
		return set, fmt.Errorf("%w: reps: %w", errBadSet, err)
	}
	if set.Sets, err = strconv.Atoi(r.FormValue("sets")); err != nil {
		return set, fmt.Errorf("%w: sets: %w", errBadSet, err)
	}
	return set, nil
}
