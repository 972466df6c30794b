package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/rpupo63/oneword-blog-backend/content"
	"github.com/rpupo63/oneword-blog-backend/database"
	"github.com/rpupo63/oneword-blog-backend/errs"
	"github.com/rpupo63/oneword-blog-backend/services"
)

var (
	aliceID = uuid.MustParse("0b5f4a8e-3c1d-4e2f-9a7b-6c5d4e3f2a1b")
	bobID   = uuid.MustParse("7e0c2d1a-9b8f-4a6e-8d5c-4b3a2f1e0d9c")
)

var blogColumns = []string{"id", "title", "slug", "content_md", "content_html", "tags", "created_at", "user_id"}

type fakeAuthenticator struct {
	calls int
}

func (f *fakeAuthenticator) Authenticate(_ context.Context, token string) (services.Identity, error) {
	f.calls++
	switch token {
	case "alice-token":
		return services.Identity{UserID: aliceID, Email: "alice@example.com"}, nil
	case "bob-token":
		return services.Identity{UserID: bobID, Email: "bob@example.com"}, nil
	default:
		return services.Identity{}, errs.NewInvalidTokenError(errors.New("unknown token"))
	}
}

type fakeGenerator struct {
	text  string
	err   error
	calls int
}

func (f *fakeGenerator) Generate(_ context.Context, _ string) (string, error) {
	f.calls++
	return f.text, f.err
}

type testServer struct {
	handler   http.Handler
	sqlMock   sqlmock.Sqlmock
	auth      *fakeAuthenticator
	generator *fakeGenerator
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	mockDb, sqlMock, err := sqlmock.New()
	require.NoError(t, err)

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       mockDb,
		DriverName: "postgres",
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		assert.NoError(t, sqlMock.ExpectationsWereMet())
		_ = mockDb.Close()
	})

	store := database.New(db)
	generator := &fakeGenerator{text: "# The Quiet Weight of Freedom\n\nFreedom is heavier than it looks."}
	auth := &fakeAuthenticator{}
	publisher := services.NewPublisher(store.BlogRepo(), generator, content.NewRenderer())

	return &testServer{
		handler:   newRouter(publisher, auth, withDatabase(store)),
		sqlMock:   sqlMock,
		auth:      auth,
		generator: generator,
	}
}

func (s *testServer) do(method, target, token, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return resp
}

type blogBody struct {
	Blog struct {
		ID          string   `json:"id"`
		Title       string   `json:"title"`
		Slug        string   `json:"slug"`
		ContentMD   string   `json:"content_md"`
		ContentHTML string   `json:"content_html"`
		Tags        []string `json:"tags"`
		UserID      *string  `json:"user_id"`
	} `json:"blog"`
}

func TestGenerateBlog(t *testing.T) {
	s := newTestServer(t)

	s.sqlMock.ExpectQuery("^SELECT \"slug\" FROM \"blogs\" WHERE \\(?slug = \\$1 OR slug LIKE \\$2").
		WithArgs("the-quiet-weight-of-freedom", "the-quiet-weight-of-freedom-%").
		WillReturnRows(s.sqlMock.NewRows([]string{"slug"}))
	s.sqlMock.ExpectExec("^INSERT INTO \"blogs\"").
		WithArgs(sqlmock.AnyArg(), "The Quiet Weight of Freedom", "the-quiet-weight-of-freedom",
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), aliceID.String()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	rec := s.do(http.MethodPost, "/api/generate", "alice-token", `{"word":"  Freedom "}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))

	var body blogBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "The Quiet Weight of Freedom", body.Blog.Title)
	assert.Equal(t, "the-quiet-weight-of-freedom", body.Blog.Slug)
	assert.Equal(t, []string{"freedom", content.TagGenerated}, body.Blog.Tags)
	assert.Contains(t, body.Blog.ContentHTML, "<h1")
	require.NotNil(t, body.Blog.UserID)
	assert.Equal(t, aliceID.String(), *body.Blog.UserID)
	assert.Equal(t, 1, s.generator.calls)
}

func TestGenerateBlog_InvalidWord(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		message string
	}{
		{
			name:    "multiple words",
			body:    `{"word":"hello world"}`,
			message: "Please enter only one word",
		},
		{
			name:    "digits",
			body:    `{"word":"abc123"}`,
			message: "Please use only letters (no numbers or special characters)",
		},
		{
			name:    "empty",
			body:    `{"word":"   "}`,
			message: "Please enter a word",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)

			rec := s.do(http.MethodPost, "/api/generate", "alice-token", tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)

			resp := decodeError(t, rec)
			assert.Equal(t, tt.message, resp.Message)
			assert.Equal(t, http.StatusBadRequest, resp.Status)

			// Rejected before the caller is looked up or anything is generated.
			assert.Zero(t, s.auth.calls)
			assert.Zero(t, s.generator.calls)
		})
	}
}

func TestGenerateBlog_Unauthenticated(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{name: "no token", token: ""},
		{name: "unknown token", token: "stolen"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)

			rec := s.do(http.MethodPost, "/api/generate", tt.token, `{"word":"ocean"}`)
			require.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Zero(t, s.generator.calls)
		})
	}
}

func TestGenerateBlog_ProviderFailure(t *testing.T) {
	s := newTestServer(t)
	s.generator.err = errs.NewGenerationProviderError("completion provider", http.StatusTooManyRequests, "rate limited")

	rec := s.do(http.MethodPost, "/api/generate", "alice-token", `{"word":"ocean"}`)
	require.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, http.StatusBadGateway, decodeError(t, rec).Status)
}

func TestGenerateBlog_MalformedBody(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPost, "/api/generate", "alice-token", `{"word":`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, s.generator.calls)
}

func TestCreateBlog(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantTags []string
	}{
		{
			name:     "tags as list",
			body:     `{"title":"My Post","content":"Hello **there**","tags":["go","notes"]}`,
			wantTags: []string{"go", "notes", content.TagManual},
		},
		{
			name:     "tags as comma separated string",
			body:     `{"title":"My Post","content":"Hello **there**","tags":"go, notes"}`,
			wantTags: []string{"go", "notes", content.TagManual},
		},
		{
			name:     "no tags",
			body:     `{"title":"My Post","content":"Hello **there**"}`,
			wantTags: []string{content.TagManual},
		},
		{
			name:     "blank entries are not counted against the limit",
			body:     `{"title":"My Post","content":"Hello **there**","tags":"go,,,,,,,,,,,,,,,,,,,,,,,,,notes"}`,
			wantTags: []string{"go", "notes", content.TagManual},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)

			s.sqlMock.ExpectQuery("^SELECT \"slug\" FROM \"blogs\"").
				WithArgs("my-post", "my-post-%").
				WillReturnRows(s.sqlMock.NewRows([]string{"slug"}).AddRow("my-post"))
			s.sqlMock.ExpectExec("^INSERT INTO \"blogs\"").
				WithArgs(sqlmock.AnyArg(), "My Post", "my-post-1",
					sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), bobID.String()).
				WillReturnResult(sqlmock.NewResult(0, 1))

			rec := s.do(http.MethodPost, "/api/blogs", "bob-token", tt.body)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			var body blogBody
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, "my-post-1", body.Blog.Slug)
			assert.Equal(t, tt.wantTags, body.Blog.Tags)
			assert.Contains(t, body.Blog.ContentHTML, "<strong>there</strong>")
		})
	}
}

func TestCreateBlog_Rejected(t *testing.T) {
	tests := []struct {
		name       string
		token      string
		body       string
		wantStatus int
		wantField  string
	}{
		{
			name:       "anonymous",
			body:       `{"title":"My Post","content":"Hello"}`,
			wantStatus: http.StatusUnauthorized,
			wantField:  "authorization",
		},
		{
			name:       "missing title",
			token:      "bob-token",
			body:       `{"content":"Hello"}`,
			wantStatus: http.StatusBadRequest,
			wantField:  "title",
		},
		{
			name:       "blank title",
			token:      "bob-token",
			body:       `{"title":"   ","content":"x"}`,
			wantStatus: http.StatusBadRequest,
			wantField:  "title",
		},
		{
			name:       "blank content",
			token:      "bob-token",
			body:       `{"title":"My Post","content":"\n  "}`,
			wantStatus: http.StatusBadRequest,
			wantField:  "content",
		},
		{
			name:       "too many tags",
			token:      "bob-token",
			body:       `{"title":"My Post","content":"x","tags":"a,b,c,d,e,f,g,h,i,j,k,l,m,n,o,p,q,r,s,t,u"}`,
			wantStatus: http.StatusBadRequest,
			wantField:  "tags",
		},
		{
			name:       "tags of the wrong type",
			token:      "bob-token",
			body:       `{"title":"My Post","content":"Hello","tags":42}`,
			wantStatus: http.StatusBadRequest,
			wantField:  "json",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)

			rec := s.do(http.MethodPost, "/api/blogs", tt.token, tt.body)
			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			assert.Equal(t, tt.wantField, decodeError(t, rec).Field)
		})
	}
}

func TestListBlogs(t *testing.T) {
	s := newTestServer(t)
	created := time.Date(2025, 6, 18, 9, 22, 38, 0, time.UTC)

	s.sqlMock.ExpectQuery("^SELECT \\* FROM \"blogs\" ORDER BY created_at DESC LIMIT").
		WithArgs(5).
		WillReturnRows(s.sqlMock.NewRows(blogColumns).
			AddRow(uuid.NewString(), "Ocean", "ocean", "# Ocean", "<h1>Ocean</h1>", "{ocean,ai-generated}", created, aliceID.String()).
			AddRow(uuid.NewString(), "Legacy", "legacy", "# Legacy", "<h1>Legacy</h1>", "{manual}", created.Add(-time.Hour), nil))

	rec := s.do(http.MethodGet, "/api/blogs?limit=5", "", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		Blogs []struct {
			Slug   string  `json:"slug"`
			UserID *string `json:"user_id"`
		} `json:"blogs"`
		Total int `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Total)
	require.Len(t, body.Blogs, 2)
	assert.Equal(t, "ocean", body.Blogs[0].Slug)
	assert.Nil(t, body.Blogs[1].UserID)
}

func TestListBlogs_Empty(t *testing.T) {
	s := newTestServer(t)

	s.sqlMock.ExpectQuery("^SELECT \\* FROM \"blogs\" ORDER BY created_at DESC LIMIT").
		WithArgs(services.DefaultListLimit).
		WillReturnRows(s.sqlMock.NewRows(blogColumns))

	rec := s.do(http.MethodGet, "/api/blogs", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"blogs":[],"total":0}`, rec.Body.String())
}

func TestListBlogs_BadLimit(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/api/blogs?limit=ten", "", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "limit", decodeError(t, rec).Field)
}

func TestGetBlog_NotFound(t *testing.T) {
	s := newTestServer(t)

	s.sqlMock.ExpectQuery("^SELECT \\* FROM \"blogs\" WHERE slug = \\$1").
		WithArgs("missing", 1).
		WillReturnRows(s.sqlMock.NewRows(blogColumns))

	rec := s.do(http.MethodGet, "/api/blogs/missing", "", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "blog not found", decodeError(t, rec).Message)
}

func TestDeleteBlog(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name       string
		token      string
		path       string
		setup      func(sqlmock.Sqlmock)
		wantStatus int
	}{
		{
			name:  "owner",
			token: "alice-token",
			path:  "/api/blogs/" + id.String(),
			setup: func(m sqlmock.Sqlmock) {
				m.ExpectQuery("^SELECT \\* FROM \"blogs\" WHERE id = \\$1").
					WithArgs(id.String(), 1).
					WillReturnRows(m.NewRows(blogColumns).
						AddRow(id.String(), "Ocean", "ocean", "# Ocean", "<h1>Ocean</h1>", "{ocean}", time.Now(), aliceID.String()))
				m.ExpectExec("^DELETE FROM \"blogs\" WHERE id = \\$1").
					WithArgs(id.String()).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
			wantStatus: http.StatusOK,
		},
		{
			name:  "someone else",
			token: "bob-token",
			path:  "/api/blogs/" + id.String(),
			setup: func(m sqlmock.Sqlmock) {
				m.ExpectQuery("^SELECT \\* FROM \"blogs\" WHERE id = \\$1").
					WithArgs(id.String(), 1).
					WillReturnRows(m.NewRows(blogColumns).
						AddRow(id.String(), "Ocean", "ocean", "# Ocean", "<h1>Ocean</h1>", "{ocean}", time.Now(), aliceID.String()))
			},
			wantStatus: http.StatusForbidden,
		},
		{
			name:  "anonymous blog",
			token: "alice-token",
			path:  "/api/blogs/" + id.String(),
			setup: func(m sqlmock.Sqlmock) {
				m.ExpectQuery("^SELECT \\* FROM \"blogs\" WHERE id = \\$1").
					WithArgs(id.String(), 1).
					WillReturnRows(m.NewRows(blogColumns).
						AddRow(id.String(), "Legacy", "legacy", "# Legacy", "<h1>Legacy</h1>", "{manual}", time.Now(), nil))
			},
			wantStatus: http.StatusForbidden,
		},
		{
			name:  "missing",
			token: "alice-token",
			path:  "/api/blogs/" + id.String(),
			setup: func(m sqlmock.Sqlmock) {
				m.ExpectQuery("^SELECT \\* FROM \"blogs\" WHERE id = \\$1").
					WithArgs(id.String(), 1).
					WillReturnRows(m.NewRows(blogColumns))
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "bad id",
			token:      "alice-token",
			path:       "/api/blogs/not-a-uuid",
			setup:      func(sqlmock.Sqlmock) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "no token",
			path:       "/api/blogs/" + id.String(),
			setup:      func(sqlmock.Sqlmock) {},
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)
			tt.setup(s.sqlMock)

			rec := s.do(http.MethodDelete, tt.path, tt.token, "")
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
		})
	}
}

func TestValidateWordEndpoint(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/api/words/validate?word=Ocean", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"valid":true,"word":"Ocean"}`, rec.Body.String())

	rec = s.do(http.MethodGet, "/api/words/validate?word=a", "", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"valid":false,"message":"Word must be at least 2 characters long","reason":"too_short"}`, rec.Body.String())
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/healthz", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, "ok", body.Database)
}

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("connection refused") }

func TestHealth_Degraded(t *testing.T) {
	handler := newRouter(nil, &fakeAuthenticator{}, withDatabase(failingPinger{}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"degraded"`)
}
