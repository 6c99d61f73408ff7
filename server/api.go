package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"fitlog/exercises"
	"fitlog/repo"
)

type exerciseJSON struct {
	Id        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

type addExerciseRequest struct {
	Name string `json:"name"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *server) apiListExercises(w http.ResponseWriter, r *http.Request) {
	userId, _, err := s.currentUser(w, r)
	if err != nil {
		s.log.Error(err, "api currentUser")
		writeJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}
	list, err := exercises.UseExercises(s.repo, userId)(r.Context())
	if errors.Is(err, exercises.ErrUnauthenticatedList) {
		writeJSONError(w, http.StatusUnauthorized, err.Error())
		return
	} else if err != nil {
		s.log.Error(err, "api listExercises")
		writeJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}
	out := make([]exerciseJSON, 0, len(list))
	for _, e := range list {
		out = append(out, exerciseJSON{Id: e.Id, Name: e.Name, CreatedAt: e.CreatedAt})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *server) apiAddExercise(w http.ResponseWriter, r *http.Request) {
	userId, _, err := s.currentUser(w, r)
	if err != nil {
		s.log.Error(err, "api currentUser")
		writeJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if userId == "" {
		writeJSONError(w, http.StatusUnauthorized, exercises.ErrUnauthenticated.Error())
		return
	}
	var req addExerciseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	name := strings.TrimSpace(req.Name)
	err = exercises.UseAddExercise(s.repo, userId)(r.Context(), name)
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, addExerciseRequest{Name: name})
	case errors.Is(err, exercises.ErrUnauthenticated):
		writeJSONError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, repo.ErrInvalidName):
		writeJSONError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, repo.ErrDuplicate):
		writeJSONError(w, http.StatusConflict, err.Error())
	default:
		s.log.Error(err, "api addExercise")
		writeJSONError(w, http.StatusInternalServerError, "internal error")
	}
}
