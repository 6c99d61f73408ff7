package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"fitlog/repo"
)

func TestPurgeDeletesInOrder(t *testing.T) {
	var seen []string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		require.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		table := strings.TrimPrefix(r.URL.Path, "/admin/tables/")
		seen = append(seen, table)
		json.NewEncoder(w).Encode(result{Table: table, Deleted: int64(len(seen))})
	}))
	defer ts.Close()

	got, err := purge(context.Background(), ts.Client(), ts.URL+"/", "tok", repo.PurgeTables)
	require.NoError(t, err)
	require.Equal(t, repo.PurgeTables, seen)
	require.Len(t, got, 4)
	require.Equal(t, result{Table: "users", Deleted: 4}, got[3])
}

func TestPurgeStopsAtFirstFailure(t *testing.T) {
	calls := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"invalid admin token"}`))
	}))
	defer ts.Close()

	got, err := purge(context.Background(), ts.Client(), ts.URL, "bad", []string{"exercise_logs", "workouts"})
	require.ErrorContains(t, err, "delete exercise_logs: 401 Unauthorized: invalid admin token")
	require.Empty(t, got)
	require.Equal(t, 1, calls)
}

func TestPurgeHonorsCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := purge(ctx, http.DefaultClient, "http://127.0.0.1:1", "tok", []string{"users"})
	require.ErrorIs(t, err, context.Canceled)
}

func TestSplitTables(t *testing.T) {
	require.Equal(t, []string{"a", "b"}, splitTables(" a, ,b ,"))
	require.Nil(t, splitTables(""))
}
