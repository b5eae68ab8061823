package web

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/ShuffleRoster/internal/config"
	"github.com/JonMunkholm/ShuffleRoster/internal/core"
)

const rosterCSV = "name,grade\nAda,10\nBob,11\nCy,10\nDi,12\nEd,11\n"

// client drives a Server through its router, carrying the session cookie.
type client struct {
	t      *testing.T
	srv    *Server
	cookie *http.Cookie
}

func newTestServer(t *testing.T, mutate func(*config.Config)) *client {
	t.Helper()
	cfg := config.Default()
	cfg.Rate.Enabled = false
	if mutate != nil {
		mutate(cfg)
	}

	svc := core.NewService(cfg)
	t.Cleanup(svc.Close)

	srv := NewServer(svc, cfg, nil)
	srv.now = func() time.Time { return time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC) }
	return &client{t: t, srv: srv}
}

func (c *client) do(req *http.Request) *httptest.ResponseRecorder {
	c.t.Helper()
	if c.cookie != nil {
		req.AddCookie(c.cookie)
	}
	rec := httptest.NewRecorder()
	c.srv.Router().ServeHTTP(rec, req)

	for _, ck := range rec.Result().Cookies() {
		if ck.Name == c.srv.cfg.Session.CookieName {
			c.cookie = ck
		}
	}
	return rec
}

func (c *client) get(path string) *httptest.ResponseRecorder {
	return c.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (c *client) getJSON(path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Accept", "application/json")
	return c.do(req)
}

func (c *client) postForm(path string, values url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

func (c *client) postJSON(path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *client) upload(path, filename, content string) *httptest.ResponseRecorder {
	c.t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(c.t, err)
	_, err = io.WriteString(fw, content)
	require.NoError(c.t, err)
	require.NoError(c.t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.do(req)
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func assertRedirectHome(t *testing.T, rec *httptest.ResponseRecorder) {
	t.Helper()
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
}

func TestIndex_NewSession(t *testing.T) {
	c := newTestServer(t, nil)

	rec := c.get("/")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, c.cookie, "session cookie set")
	assert.True(t, c.cookie.HttpOnly)

	body := rec.Body.String()
	assert.Contains(t, body, "Student Group Maker")
	assert.Contains(t, body, "No file selected")
	assert.Contains(t, body, "Save as XLSX")
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "default-src 'self'")

	first := c.cookie.Value
	c.get("/")
	assert.Equal(t, first, c.cookie.Value, "cookie reused")
}

func TestIndex_StaleCookieGetsNewSession(t *testing.T) {
	c := newTestServer(t, nil)
	c.cookie = &http.Cookie{Name: c.srv.cfg.Session.CookieName, Value: "expired"}

	rec := c.get("/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEqual(t, "expired", c.cookie.Value)
}

func TestPageFlow(t *testing.T) {
	c := newTestServer(t, nil)
	c.get("/")

	assertRedirectHome(t, c.upload("/file", "class.csv", rosterCSV))

	page := c.get("/").Body.String()
	assert.Contains(t, page, "class.csv")
	assert.Contains(t, page, "Loaded 5 students")
	assert.Contains(t, page, "<td>Ada</td>")
	assert.Contains(t, page, `max="5" value="4"`)
	assert.NotContains(t, page, `class="notification`)

	assertRedirectHome(t, c.postForm("/groups", url.Values{"group_size": {"2"}}))
	page = c.get("/").Body.String()
	assert.Contains(t, page, `class="notification success"`)
	assert.Contains(t, page, "Groups created successfully!")
	assert.Contains(t, page, "<th>GROUP</th>")
	assert.Contains(t, page, "2 groups")
	assert.NotContains(t, page, `value="true" checked`, "shuffle unchecked was kept")

	page = c.get("/").Body.String()
	assert.NotContains(t, page, "Groups created successfully!", "flash shown once")

	assertRedirectHome(t, c.postForm("/format", url.Values{"format": {"csv"}}))
	assert.Contains(t, c.get("/").Body.String(), "Format changed to CSV")

	rec := c.get("/export")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="grouped_2024-05-06T07-08-09.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "CSV file downloaded successfully!", rec.Header().Get("X-Roster-Notice"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "name,grade,GROUP\n"))

	assertRedirectHome(t, c.postForm("/clear", nil))
	page = c.get("/").Body.String()
	assert.Contains(t, page, "File cleared successfully!")
	assert.Contains(t, page, "No file selected")
	assert.Contains(t, page, "Load a roster")
}

func TestPageErrors(t *testing.T) {
	tests := []struct {
		name    string
		act     func(c *client) *httptest.ResponseRecorder
		level   string
		message string
	}{
		{
			name: "group before load",
			act: func(c *client) *httptest.ResponseRecorder {
				return c.postForm("/groups", url.Values{"group_size": {"2"}})
			},
			level:   "warning",
			message: "Please select a file first",
		},
		{
			name:    "export before grouping",
			act:     func(c *client) *httptest.ResponseRecorder { return c.get("/export") },
			level:   "warning",
			message: "Please create groups first",
		},
		{
			name:    "unsupported file",
			act:     func(c *client) *httptest.ResponseRecorder { return c.upload("/file", "notes.txt", rosterCSV) },
			level:   "error",
			message: "Please select a CSV or Excel file",
		},
		{
			name:    "empty file",
			act:     func(c *client) *httptest.ResponseRecorder { return c.upload("/file", "empty.csv", "name,grade\n") },
			level:   "error",
			message: "File is empty or has no data",
		},
		{
			name: "unknown format",
			act: func(c *client) *httptest.ResponseRecorder {
				return c.postForm("/format", url.Values{"format": {"docx"}})
			},
			level:   "error",
			message: "Please select a CSV or Excel file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestServer(t, nil)
			c.get("/")

			assertRedirectHome(t, tt.act(c))

			page := c.get("/").Body.String()
			assert.Contains(t, page, `class="notification `+tt.level+`"`)
			assert.Contains(t, page, tt.message)
		})
	}
}

func TestLoadFile_WithoutFile(t *testing.T) {
	c := newTestServer(t, nil)
	c.upload("/file", "class.csv", rosterCSV)
	c.get("/")

	assertRedirectHome(t, c.postForm("/file", nil))
	page := c.get("/").Body.String()
	assert.NotContains(t, page, `class="notification`)
	assert.Contains(t, page, "Loaded 5 students", "loaded roster kept")

	rec := c.postForm("/api/file", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "is required", decode[ErrorResponse](t, rec).Fields["file"])
}

func TestStepGroupSize(t *testing.T) {
	c := newTestServer(t, nil)
	c.upload("/file", "class.csv", rosterCSV)

	steps := []struct {
		delta string
		want  string
	}{
		{"1", `max="5" value="5"`},
		{"1", `max="5" value="5"`},
		{"-10", `max="5" value="1"`},
		{"1", `max="5" value="2"`},
		{"x", `max="5" value="2"`},
	}
	for _, step := range steps {
		assertRedirectHome(t, c.postForm("/size", url.Values{"delta": {step.delta}, "group_size": {"3"}}))
		page := c.get("/").Body.String()
		assert.Contains(t, page, step.want, "delta %s", step.delta)
		assert.NotContains(t, page, `class="notification`)
	}
}

func TestPageGroupSizeOutOfRange(t *testing.T) {
	c := newTestServer(t, nil)
	c.upload("/file", "class.csv", rosterCSV)

	for _, size := range []string{"0", "6", "abc"} {
		assertRedirectHome(t, c.postForm("/groups", url.Values{"group_size": {size}}))
		page := c.get("/").Body.String()
		assert.Contains(t, page, "Group size must be between 1 and 5", size)
		assert.NotContains(t, page, "<th>GROUP</th>", size)
	}
}

func TestAPIFlow(t *testing.T) {
	c := newTestServer(t, nil)

	rec := c.upload("/api/file", "class.csv", rosterCSV)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	state := decode[StateResponse](t, rec)
	assert.Equal(t, "class.csv", state.File)
	assert.Equal(t, 5, state.Students)
	assert.Equal(t, 5, state.MaxGroupSize)
	assert.Equal(t, []string{"name", "grade"}, state.Grid.Headers)
	assert.Nil(t, state.Notice)

	rec = c.postJSON("/api/groups", `{"group_size":2,"shuffle":false}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	state = decode[StateResponse](t, rec)
	assert.True(t, state.Grouped)
	assert.Equal(t, 2, state.Groups)
	assert.False(t, state.Shuffle)
	require.NotNil(t, state.Notice)
	assert.Equal(t, core.MsgGroupsCreated, state.Notice.Message)
	assert.Equal(t, []string{"name", "grade", "GROUP"}, state.Grid.Headers)

	rec = c.postJSON("/api/format", `{"format":"XLS"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	state = decode[StateResponse](t, rec)
	assert.Equal(t, core.FormatXLS, state.Format)
	assert.Equal(t, "Format changed to XLS", state.Notice.Message)

	rec = c.get("/api/export")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/vnd.ms-excel", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), ".xls")

	rec = c.postJSON("/api/clear", "")
	require.Equal(t, http.StatusOK, rec.Code)
	state = decode[StateResponse](t, rec)
	assert.Zero(t, state.Students)
	assert.False(t, state.Grouped)
	assert.Equal(t, core.MsgFileCleared, state.Notice.Message)

	rec = c.get("/api/state")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, decode[StateResponse](t, rec).Notice)
}

func TestAPIErrors(t *testing.T) {
	t.Run("group before load", func(t *testing.T) {
		c := newTestServer(t, nil)
		rec := c.postJSON("/api/groups", `{"group_size":2}`)

		assert.Equal(t, http.StatusConflict, rec.Code)
		resp := decode[ErrorResponse](t, rec)
		assert.Equal(t, "GRP002", resp.Code)
		assert.Equal(t, core.LevelWarning, resp.Level)
	})

	t.Run("group size too large", func(t *testing.T) {
		c := newTestServer(t, nil)
		c.upload("/api/file", "class.csv", rosterCSV)

		rec := c.postJSON("/api/groups", `{"group_size":9}`)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		resp := decode[ErrorResponse](t, rec)
		assert.Equal(t, "GRP001", resp.Code)
		assert.Equal(t, "Group size must be between 1 and 5", resp.Message)
	})

	t.Run("missing group size", func(t *testing.T) {
		c := newTestServer(t, nil)
		rec := c.postJSON("/api/groups", `{"shuffle":true}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		resp := decode[ErrorResponse](t, rec)
		assert.Equal(t, "is required", resp.Fields["group_size"])
	})

	t.Run("malformed json", func(t *testing.T) {
		c := newTestServer(t, nil)
		rec := c.postJSON("/api/groups", `{"group_size":`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("invalid format", func(t *testing.T) {
		c := newTestServer(t, nil)
		rec := c.postJSON("/api/format", `{"format":"ods"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		resp := decode[ErrorResponse](t, rec)
		assert.Equal(t, "must be one of: csv, xlsx, xls, pdf", resp.Fields["format"])
	})

	t.Run("export before grouping", func(t *testing.T) {
		c := newTestServer(t, nil)
		rec := c.getJSON("/export")

		assert.Equal(t, http.StatusConflict, rec.Code)
		resp := decode[ErrorResponse](t, rec)
		assert.Equal(t, "EXP001", resp.Code)
		assert.Equal(t, "Please create groups first", resp.Message)
	})

	t.Run("file too large", func(t *testing.T) {
		c := newTestServer(t, func(cfg *config.Config) { cfg.Upload.MaxFileSize = 16 })
		rec := c.upload("/api/file", "class.csv", rosterCSV)

		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
		assert.Equal(t, "FILE001", decode[ErrorResponse](t, rec).Code)
	})

	t.Run("corrupt workbook", func(t *testing.T) {
		c := newTestServer(t, nil)
		rec := c.upload("/api/file", "class.xlsx", "definitely not a zip")

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		resp := decode[ErrorResponse](t, rec)
		assert.Equal(t, "FILE003", resp.Code)
		assert.True(t, strings.HasPrefix(resp.Message, "Error reading file: "), resp.Message)
	})
}

func TestHealthAndMetrics(t *testing.T) {
	c := newTestServer(t, nil)

	rec := c.get("/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	c.upload("/api/file", "class.csv", rosterCSV)
	c.upload("/api/file", "class.txt", rosterCSV)

	body := c.get("/metrics").Body.String()
	assert.Contains(t, body, "roster_sessions_active 1")
	assert.Contains(t, body, `roster_files_loaded_total{code="ok",format="csv"} 1`)
	assert.Contains(t, body, `roster_files_loaded_total{code="FILE002",format="other"} 1`)
	assert.Contains(t, body, `roster_http_requests_total{method="GET",route="/healthz",status="200"} 1`)
}

func TestRateLimit(t *testing.T) {
	c := newTestServer(t, func(cfg *config.Config) {
		cfg.Rate.Enabled = true
		cfg.Rate.RequestsPerMinute = 1
		cfg.Rate.Burst = 2
	})

	assert.Equal(t, http.StatusOK, c.get("/healthz").Code)
	assert.Equal(t, http.StatusOK, c.get("/healthz").Code)

	rec := c.get("/healthz")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), `<div class="notification error" role="alert"><strong>Too many requests</strong>`)
	assert.Contains(t, rec.Body.String(), "Code: RATE001")

	rec = c.getJSON("/healthz")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "RATE001", decode[ErrorResponse](t, rec).Code)
}

func TestStaticAssets(t *testing.T) {
	c := newTestServer(t, nil)

	for _, path := range []string{"/static/app.js", "/static/app.css"} {
		rec := c.get(path)
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.NotEmpty(t, rec.Body.String(), path)
	}
}
