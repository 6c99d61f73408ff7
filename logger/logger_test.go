package logger

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"fitlog/common"
)

func TestFormat(t *testing.T) {
	ts := time.Date(2024, 3, 9, 14, 5, 0, 0, time.UTC)

	got := Format(common.ErrorLog{Message: "boom", Context: "addExercise", Timestamp: ts})
	require.Equal(t, "[2024-03-09 14:05:00] ERROR addExercise: boom\n", got)

	got = Format(common.ErrorLog{Message: "boom", Timestamp: ts, Stack: "frame1\nframe2\n"})
	require.Equal(t, "[2024-03-09 14:05:00] ERROR boom\nframe1\nframe2\n", got)
}

func TestErrorBuildsEntry(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf)
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	l.now = func() time.Time { return ts }

	entry := l.Error(errors.New("db down"), "listExercises")
	require.Equal(t, "db down", entry.Message)
	require.Equal(t, "listExercises", entry.Context)
	require.Equal(t, ts, entry.Timestamp)
	require.Empty(t, entry.Stack)
	require.Equal(t, "[2024-01-02 03:04:05] ERROR listExercises: db down\n", buf.String())
}

func TestErrorWithStacks(t *testing.T) {
	var buf bytes.Buffer
	entry := New(&buf).WithStacks(true).Error(errors.New("x"), "ctx")
	require.NotEmpty(t, entry.Stack)
	require.Contains(t, buf.String(), "goroutine")
}

func TestInfoWarnPrefixes(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf)
	l.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }
	l.Info("listening on %s", ":8080")
	l.Warn("slow query %d", 3)
	require.Equal(t, "[2024-01-02 03:04:05] INFO: listening on :8080\n[2024-01-02 03:04:05] WARN: slow query 3\n", buf.String())
}

// lockedCount fails the test if two writes overlap.
type lockedCount struct {
	t      *testing.T
	busy   atomic.Bool
	writes atomic.Int64
	buf    bytes.Buffer
}

func (w *lockedCount) Write(p []byte) (int, error) {
	if !w.busy.CompareAndSwap(false, true) {
		w.t.Error("concurrent write")
	}
	defer w.busy.Store(false)
	w.writes.Add(1)
	return w.buf.Write(p)
}

func TestConcurrentEntriesDoNotInterleave(t *testing.T) {
	w := &lockedCount{t: t}
	l := New(w)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Error(errors.New("boom"), "worker")
			l.Info("done %d", i)
		}()
	}
	wg.Wait()

	require.EqualValues(t, 40, w.writes.Load())
	for _, line := range strings.Split(strings.TrimSpace(w.buf.String()), "\n") {
		require.True(t, strings.HasSuffix(line, "ERROR worker: boom") || strings.Contains(line, "] INFO: done "), line)
	}
}

func TestNewFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fitlog.log")
	l, err := NewFile(path)
	require.NoError(t, err)
	l.Info("hello")
	require.NoError(t, l.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "INFO: hello")
}
