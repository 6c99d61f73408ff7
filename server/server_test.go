package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"fitlog/common"
	"fitlog/i18n"
	"fitlog/logger"
	"fitlog/repo"
)

const testAdminToken = "admin-secret"

func newTestServer(t *testing.T) (*server, *httptest.Server) {
	t.Helper()
	store, err := repo.Open(context.Background(), repo.Config{Driver: "sqlite", DSN: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	// httptest serves plain http, so the cookie must not be Secure or the
	// client jar drops it.
	cookies := sessions.NewCookieStore([]byte("0123456789abcdef0123456789abcdef"))
	cookies.Options.Secure = false
	cookies.Options.SameSite = http.SameSiteLaxMode
	s := &server{
		store:      cookies,
		repo:       store,
		bundle:     i18n.Default(),
		log:        logger.New(io.Discard),
		locale:     language.MustParse("en-US"),
		adminToken: testAdminToken,
	}
	ts := httptest.NewServer(s.routes())
	t.Cleanup(ts.Close)
	return s, ts
}

func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func postForm(t *testing.T, c *http.Client, target string, form url.Values) *http.Response {
	t.Helper()
	resp, err := c.PostForm(target, form)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func get(t *testing.T, c *http.Client, target string) (*http.Response, string) {
	t.Helper()
	resp, err := c.Get(target)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func register(t *testing.T, c *http.Client, base string, email string) {
	t.Helper()
	resp := postForm(t, c, base+"/register?action=register", url.Values{
		"name":     {"Tester"},
		"email":    {email},
		"password": {"password123"},
	})
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/exercises", resp.Header.Get("Location"))
}

func TestAddExerciseScreenNavigatesToWorkout(t *testing.T) {
	_, ts := newTestServer(t)
	c := newClient(t)
	register(t, c, ts.URL, "a@example.com")

	resp := postForm(t, c, ts.URL+"/exercises/add", url.Values{"name": {"Squat"}})
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/workout?exercise=Squat", resp.Header.Get("Location"))

	resp2, body := get(t, c, ts.URL+"/exercises")
	require.Equal(t, http.StatusOK, resp2.StatusCode)
	require.Contains(t, body, `href="/workout?exercise=Squat"`)
	require.Contains(t, body, `href="/exercises/add"`)
}

func TestAddExerciseWithoutSessionRedirectsToLogin(t *testing.T) {
	s, ts := newTestServer(t)
	c := newClient(t)

	resp := postForm(t, c, ts.URL+"/exercises/add", url.Values{"name": {"Squat"}})
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/login", resp.Header.Get("Location"))

	n, err := s.repo.DeleteAll(context.Background(), "exercises")
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestAddExerciseCallsSubmittedCallback(t *testing.T) {
	s, _ := newTestServer(t)
	u, err := s.repo.CreateUser(context.Background(), common.User{Name: "Tester", Email: "a@example.com", Password: "x"})
	require.NoError(t, err)

	var got []string
	h := s.handleAddExercise(func(w http.ResponseWriter, r *http.Request, name string) {
		got = append(got, name)
		w.WriteHeader(http.StatusNoContent)
	})

	r := httptest.NewRequest(http.MethodPost, "/exercises/add", strings.NewReader("name=Deadlift"))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	session, err := s.store.Get(r, sessionName)
	require.NoError(t, err)
	session.Values[sessionUserId] = u.Id
	require.NoError(t, session.Save(r, w))
	for _, cookie := range w.Result().Cookies() {
		r.AddCookie(cookie)
	}

	w = httptest.NewRecorder()
	h(w, r)
	require.Equal(t, http.StatusNoContent, w.Code)
	require.Equal(t, []string{"Deadlift"}, got)

	w = httptest.NewRecorder()
	r2 := httptest.NewRequest(http.MethodPost, "/exercises/add", strings.NewReader("name=Deadlift"))
	r2.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, cookie := range r.Cookies() {
		r2.AddCookie(cookie)
	}
	h(w, r2)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "Could not save the exercise")
	require.Len(t, got, 1)
}

func TestScreensRequireLogin(t *testing.T) {
	_, ts := newTestServer(t)
	c := newClient(t)
	for _, path := range []string{"/exercises", "/exercises/add", "/workout"} {
		resp, _ := get(t, c, ts.URL+path)
		require.Equal(t, http.StatusFound, resp.StatusCode, path)
		require.Equal(t, "/login", resp.Header.Get("Location"), path)
	}
}

func TestLoginLogout(t *testing.T) {
	_, ts := newTestServer(t)
	c := newClient(t)
	register(t, c, ts.URL, "a@example.com")

	resp, _ := get(t, c, ts.URL+"/login?action=logout")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = get(t, c, ts.URL+"/exercises")
	require.Equal(t, http.StatusFound, resp.StatusCode)

	bad := postForm(t, c, ts.URL+"/login?action=login", url.Values{"email": {"a@example.com"}, "password": {"wrong-password"}})
	require.Equal(t, http.StatusOK, bad.StatusCode)
	body, err := io.ReadAll(bad.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "Email or password invalid.")

	ok := postForm(t, c, ts.URL+"/login?action=login", url.Values{"email": {"a@example.com"}, "password": {"password123"}})
	require.Equal(t, http.StatusFound, ok.StatusCode)
	require.Equal(t, "/exercises", ok.Header.Get("Location"))
}

func TestRegisterValidationIsLocalized(t *testing.T) {
	_, ts := newTestServer(t)
	c := newClient(t)

	resp := postForm(t, c, ts.URL+"/register?action=register&lang=es", url.Values{
		"name": {"Al"}, "email": {"al@example.com"}, "password": {"password123"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "Nombre demasiado corto")
	require.Contains(t, string(body), `lang="es-ES"`)
}

func TestWorkoutLogsSets(t *testing.T) {
	_, ts := newTestServer(t)
	c := newClient(t)
	register(t, c, ts.URL, "a@example.com")
	postForm(t, c, ts.URL+"/exercises/add", url.Values{"name": {"Bench Press"}})

	resp := postForm(t, c, ts.URL+"/workout?exercise=Bench+Press", url.Values{"weight": {"80"}, "reps": {"5"}, "sets": {"3"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	page, body := get(t, c, ts.URL+"/workout?exercise=Bench+Press")
	require.Equal(t, http.StatusOK, page.StatusCode)
	require.Contains(t, body, "3 x 5 @ 80.0 kg")

	for _, weight := range []string{"heavy", "inf", "NaN", "-5"} {
		bad := postForm(t, c, ts.URL+"/workout?exercise=Bench+Press", url.Values{"weight": {weight}, "reps": {"5"}, "sets": {"3"}})
		require.Equal(t, http.StatusBadRequest, bad.StatusCode, weight)
	}
	_, body = get(t, c, ts.URL+"/workout?exercise=Bench+Press")
	require.Equal(t, 1, strings.Count(body, "<li><time>"))

	missing, _ := get(t, c, ts.URL+"/workout?exercise=Curl")
	require.Equal(t, http.StatusNotFound, missing.StatusCode)

	picker, body := get(t, c, ts.URL+"/workout")
	require.Equal(t, http.StatusOK, picker.StatusCode)
	require.Contains(t, body, `href="/workout?exercise=Bench+Press"`)
}

func TestAPIExercises(t *testing.T) {
	_, ts := newTestServer(t)
	c := newClient(t)

	resp, err := c.Post(ts.URL+"/api/exercises", "application/json", strings.NewReader(`{"name":"Squat"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	var apiErr map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&apiErr))
	require.Equal(t, "User must be authenticated to add exercises", apiErr["error"])

	register(t, c, ts.URL, "a@example.com")

	for _, tc := range []struct {
		body   string
		status int
	}{
		{`{"name":"Squat"}`, http.StatusCreated},
		{`{"name":"Squat"}`, http.StatusConflict},
		{`{"name":"  "}`, http.StatusBadRequest},
		{`not json`, http.StatusBadRequest},
		{`{"name":"  Row  "}`, http.StatusCreated},
	} {
		resp, err := c.Post(ts.URL+"/api/exercises", "application/json", strings.NewReader(tc.body))
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, tc.status, resp.StatusCode, tc.body)
	}

	list, err := c.Get(ts.URL + "/api/exercises")
	require.NoError(t, err)
	defer list.Body.Close()
	require.Equal(t, http.StatusOK, list.StatusCode)
	var got []exerciseJSON
	require.NoError(t, json.NewDecoder(list.Body).Decode(&got))
	require.Len(t, got, 2)
	require.ElementsMatch(t, []string{"Squat", "Row"}, []string{got[0].Name, got[1].Name})
}

func TestAPIAddExerciseChecksSessionBeforeBody(t *testing.T) {
	_, ts := newTestServer(t)
	c := newClient(t)

	resp, err := c.Post(ts.URL+"/api/exercises", "application/json", strings.NewReader(`not json`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	var apiErr map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&apiErr))
	require.Equal(t, "User must be authenticated to add exercises", apiErr["error"])
}

func TestAPIAddExerciseEchoesStoredName(t *testing.T) {
	_, ts := newTestServer(t)
	c := newClient(t)
	register(t, c, ts.URL, "a@example.com")

	resp, err := c.Post(ts.URL+"/api/exercises", "application/json", strings.NewReader(`{"name":"  Deadlift \t"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var out addExerciseRequest
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Equal(t, "Deadlift", out.Name)
}

func TestSessionLookupFailureIsServerError(t *testing.T) {
	s, ts := newTestServer(t)
	c := newClient(t)
	register(t, c, ts.URL, "a@example.com")
	require.NoError(t, s.repo.Close())

	resp := postForm(t, c, ts.URL+"/exercises/add", url.Values{"name": {"Squat"}})
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	require.Empty(t, resp.Header.Get("Location"))
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), `value="Squat"`)

	for _, path := range []string{"/", "/exercises", "/exercises/add", "/workout"} {
		resp, _ := get(t, c, ts.URL+path)
		require.Equal(t, http.StatusInternalServerError, resp.StatusCode, path)
		require.Empty(t, resp.Header.Get("Location"), path)
	}

	for _, req := range []func() (*http.Response, error){
		func() (*http.Response, error) { return c.Get(ts.URL + "/api/exercises") },
		func() (*http.Response, error) {
			return c.Post(ts.URL+"/api/exercises", "application/json", strings.NewReader(`{"name":"Squat"}`))
		},
	} {
		resp, err := req()
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	}
}

func TestLogSetStatus(t *testing.T) {
	require.Equal(t, http.StatusBadRequest, logSetStatus(fmt.Errorf("%w: weight: bad", errBadSet)))
	require.Equal(t, http.StatusBadRequest, logSetStatus(fmt.Errorf("wrapped: %w", repo.ErrInvalidSet)))
	require.Equal(t, http.StatusBadRequest, logSetStatus(fmt.Errorf("exercise x: %w", repo.ErrNotFound)))
	require.Equal(t, http.StatusInternalServerError, logSetStatus(errors.New("sql: database is closed")))
	require.Equal(t, http.StatusInternalServerError, logSetStatus(context.DeadlineExceeded))
}

func TestAdminDelete(t *testing.T) {
	s, ts := newTestServer(t)
	ctx := context.Background()
	u, err := s.repo.CreateUser(ctx, common.User{Name: "Tester", Email: "a@example.com", Password: "x"})
	require.NoError(t, err)
	require.NoError(t, s.repo.AddExercise(ctx, u.Id, common.ExercisePayload{Name: "Squat"}))

	do := func(table, token string) *http.Response {
		req, err := http.NewRequest(http.MethodDelete, ts.URL+"/admin/tables/"+table, nil)
		require.NoError(t, err)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		t.Cleanup(func() { resp.Body.Close() })
		return resp
	}

	require.Equal(t, http.StatusUnauthorized, do("exercises", "").StatusCode)
	require.Equal(t, http.StatusUnauthorized, do("exercises", "wrong").StatusCode)
	require.Equal(t, http.StatusNotFound, do("sessions", testAdminToken).StatusCode)

	resp := do("exercises", testAdminToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out deleteResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Equal(t, deleteResponse{Table: "exercises", Deleted: 1}, out)

	s.adminToken = ""
	require.Equal(t, http.StatusForbidden, do("users", testAdminToken).StatusCode)
}

func TestHealth(t *testing.T) {
	_, ts := newTestServer(t)
	resp, body := get(t, newClient(t), ts.URL+"/health")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "OK\n", body)
}
