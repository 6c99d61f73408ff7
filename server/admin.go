package main

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"fitlog/repo"
)

type deleteResponse struct {
	Table   string `json:"table"`
	Deleted int64  `json:"deleted"`
}

// handleAdminDelete empties one purgeable table. It needs the admin bearer
// token and is refused entirely when no token is configured.
func (s *server) handleAdminDelete(w http.ResponseWriter, r *http.Request) {
	if s.adminToken == "" {
		writeJSONError(w, http.StatusForbidden, "admin endpoints are disabled")
		return
	}
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok || subtle.ConstantTimeCompare([]byte(token), []byte(s.adminToken)) != 1 {
		writeJSONError(w, http.StatusUnauthorized, "invalid admin token")
		return
	}
	table := mux.Vars(r)["table"]
	n, err := s.repo.DeleteAll(r.Context(), table)
	if errors.Is(err, repo.ErrUnknownTable) {
		writeJSONError(w, http.StatusNotFound, err.Error())
		return
	} else if err != nil {
		s.log.Error(err, "admin delete "+table)
		writeJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}
	s.log.Info("admin deleted %d rows from %s", n, table)
	writeJSON(w, http.StatusOK, deleteResponse{Table: table, Deleted: n})
}
