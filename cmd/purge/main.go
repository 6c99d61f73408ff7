// Command purge empties the fitlog tables through the admin endpoint of a
// running server.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"fitlog/repo"
)

type result struct {
	Table   string `json:"table"`
	Deleted int64  `json:"deleted"`
}

func main() {
	var baseURL string
	var token string
	var tables string
	var timeout time.Duration

	flag.StringVar(&baseURL, "base-url", "http://127.0.0.1:8080", "fitlog server base URL")
	flag.StringVar(&token, "token", os.Getenv("FITLOG_ADMIN_TOKEN"), "admin token (default: FITLOG_ADMIN_TOKEN)")
	flag.StringVar(&tables, "tables", strings.Join(repo.PurgeTables, ","), "comma-separated tables to empty, in order")
	flag.DurationVar(&timeout, "timeout", 10*time.Second, "per-request timeout")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	if token == "" {
		fmt.Fprintln(os.Stderr, "Error: admin token is required (-token or FITLOG_ADMIN_TOKEN)")
		os.Exit(2)
	}

	client := &http.Client{Timeout: timeout}
	results, err := purge(ctx, client, baseURL, token, splitTables(tables))
	for _, r := range results {
		fmt.Printf("%s: deleted %d rows\n", r.Table, r.Deleted)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func splitTables(s string) []string {
	var out []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// purge deletes tables in order and stops at the first failure.
func purge(ctx context.Context, client *http.Client, baseURL string, token string, tables []string) ([]result, error) {
	var done []result
	for _, table := range tables {
		if err := ctx.Err(); err != nil {
			return done, err
		}
		r, err := deleteTable(ctx, client, baseURL, token, table)
		if err != nil {
			return done, fmt.Errorf("delete %s: %w", table, err)
		}
		done = append(done, r)
	}
	return done, nil
}

func deleteTable(ctx context.Context, client *http.Client, baseURL string, token string, table string) (result, error) {
	endpoint := strings.TrimRight(baseURL, "/") + "/admin/tables/" + url.PathEscape(table)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return result{}, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := client.Do(req)
	if err != nil {
		return result{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error string `json:"error"`
		}
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
			return result{}, fmt.Errorf("%s: %s", resp.Status, apiErr.Error)
		}
		return result{}, errors.New(resp.Status)
	}
	var r result
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return result{}, fmt.Errorf("decode response: %w", err)
	}
	return r, nil
}
