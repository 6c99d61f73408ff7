package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"runtime/debug"
	"strings"
	"time"

	"fitlog/common"
)

const timeLayout = "2006-01-02 15:04:05"

// Logger writes prefixed console lines and formatted error logs. All output
// goes through one log.Logger so concurrent entries never interleave.
type Logger struct {
	file   *os.File
	logger *log.Logger
	stacks bool
	now    func() time.Time
}

// New creates a logger writing to w.
func New(w io.Writer) *Logger {
	return &Logger{
		logger: log.New(w, "", 0),
		now:    time.Now,
	}
}

// NewFile creates a logger appending to the file at path.
func NewFile(path string) (*Logger, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	l := New(file)
	l.file = file
	return l, nil
}

// WithStacks makes Error attach the goroutine stack to every entry.
func (l *Logger) WithStacks(on bool) *Logger {
	l.stacks = on
	return l
}

func (l *Logger) Info(format string, args ...any) {
	l.print("INFO", format, args...)
}

func (l *Logger) Warn(format string, args ...any) {
	l.print("WARN", format, args...)
}

func (l *Logger) print(level string, format string, args ...any) {
	l.logger.Printf("[%s] %s: %s", l.now().Format(timeLayout), level, fmt.Sprintf(format, args...))
}

// Error logs err under the given context and returns the entry it printed.
func (l *Logger) Error(err error, context string) common.ErrorLog {
	entry := common.ErrorLog{
		Context:   context,
		Timestamp: l.now(),
	}
	if err != nil {
		entry.Message = err.Error()
	}
	if l.stacks {
		entry.Stack = string(debug.Stack())
	}
	l.logger.Print(Format(entry))
	return entry
}

// Format renders an error log for display.
func Format(e common.ErrorLog) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] ERROR", e.Timestamp.Format(timeLayout))
	if e.Context != "" {
		fmt.Fprintf(&b, " %s:", e.Context)
	}
	fmt.Fprintf(&b, " %s\n", e.Message)
	if e.Stack != "" {
		b.WriteString(strings.TrimRight(e.Stack, "\n"))
		b.WriteString("\n")
	}
	return b.String()
}

// Close closes the log file, if any.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}
