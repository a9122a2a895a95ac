package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samudhan2008/sa-notes-beta/internal/catalog"
	"github.com/samudhan2008/sa-notes-beta/internal/common"
	"github.com/samudhan2008/sa-notes-beta/internal/logging"
	"github.com/samudhan2008/sa-notes-beta/internal/server/config"
	"github.com/samudhan2008/sa-notes-beta/internal/server/models"
	"github.com/samudhan2008/sa-notes-beta/internal/server/repositories/repomanager"
	"github.com/samudhan2008/sa-notes-beta/internal/server/services"
)

type apiEnv struct {
	srv   *httptest.Server
	users *services.UserService
}

func newAPIEnv(t *testing.T) *apiEnv {
	t.Helper()
	ctx := context.Background()

	db, m, err := repomanager.Open(ctx, "sqlite", "file:"+t.Name()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, m.RunMigrations(ctx, db))

	cfg := &config.Config{
		SecretKey:                    "test-secret",
		AccessTokenValidityDuration:  time.Hour,
		RefreshTokenValidityDuration: time.Hour,
		MaxUploadSize:                1 << 20,
	}
	log := logging.Nop()
	us := services.NewUserService(db, m, cfg, log)
	ns := services.NewNoteService(db, m, nil, cfg, log)
	as := services.NewAdminService(db, m, ns, log)

	srv := httptest.NewServer(NewHandlers(us, ns, as, log, cfg.SecretKey).Router())
	t.Cleanup(srv.Close)
	return &apiEnv{srv: srv, users: us}
}

// do sends body as JSON and decodes a JSON response into out when non-nil.
func (e *apiEnv) do(t *testing.T, method, path, token string, body, out any) int {
	t.Helper()

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, e.srv.URL+path, rd)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	}

	resp, err := e.srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func (e *apiEnv) signup(t *testing.T, email, username string) *services.Session {
	t.Helper()
	var s services.Session
	code := e.do(t, http.MethodPost, "/api/auth/register", "",
		credentials{Email: email, Username: username, Password: "pw-" + username}, &s)
	require.Equal(t, http.StatusCreated, code)
	return &s
}

func TestAuthFlow(t *testing.T) {
	e := newAPIEnv(t)
	s := e.signup(t, "amy@example.com", "amy")
	assert.Equal(t, "amy", s.User.Username)
	assert.NotEmpty(t, s.AccessToken)

	var eb errorBody
	code := e.do(t, http.MethodPost, "/api/auth/register", "",
		credentials{Email: "AMY@example.com", Username: "amy2", Password: "x"}, &eb)
	assert.Equal(t, http.StatusConflict, code)
	assert.NotEmpty(t, eb.Error)

	code = e.do(t, http.MethodPost, "/api/auth/login", "", credentials{Email: "amy@example.com", Password: "nope"}, nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	var logged services.Session
	code = e.do(t, http.MethodPost, "/api/auth/login", "", credentials{Email: "amy@example.com", Password: "pw-amy"}, &logged)
	require.Equal(t, http.StatusOK, code)

	var pair services.TokenPair
	code = e.do(t, http.MethodPost, "/api/auth/refresh", "", refreshRequest{RefreshToken: logged.RefreshToken}, &pair)
	require.Equal(t, http.StatusOK, code)
	assert.NotEqual(t, logged.RefreshToken, pair.RefreshToken)

	code = e.do(t, http.MethodPost, "/api/auth/logout", "", refreshRequest{RefreshToken: pair.RefreshToken}, nil)
	assert.Equal(t, http.StatusNoContent, code)
	code = e.do(t, http.MethodPost, "/api/auth/refresh", "", refreshRequest{RefreshToken: pair.RefreshToken}, nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code = e.do(t, http.MethodPost, "/api/auth/password-reset", "", map[string]string{"email": "amy@example.com"}, nil)
	assert.Equal(t, http.StatusAccepted, code)
}

func TestMe(t *testing.T) {
	e := newAPIEnv(t)
	s := e.signup(t, "bo@example.com", "bo")

	assert.Equal(t, http.StatusUnauthorized, e.do(t, http.MethodGet, "/api/me", "", nil, nil))
	assert.Equal(t, http.StatusUnauthorized, e.do(t, http.MethodGet, "/api/me", "garbage", nil, nil))

	var p models.Profile
	require.Equal(t, http.StatusOK, e.do(t, http.MethodGet, "/api/me", s.AccessToken, nil, &p))
	assert.Equal(t, "bo@example.com", p.Email)

	inst := "Stanford"
	require.Equal(t, http.StatusOK, e.do(t, http.MethodPatch, "/api/me", s.AccessToken,
		models.ProfileUpdate{Institution: &inst}, &p))
	assert.Equal(t, "Stanford", p.Institution)

	code := e.do(t, http.MethodPost, "/api/me/password", s.AccessToken,
		map[string]string{"current_password": "wrong", "new_password": "n"}, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	code = e.do(t, http.MethodPost, "/api/me/password", s.AccessToken,
		map[string]string{"current_password": "pw-bo", "new_password": "n"}, nil)
	assert.Equal(t, http.StatusNoContent, code)
}

func TestMalformedBody(t *testing.T) {
	e := newAPIEnv(t)

	req, err := http.NewRequest(http.MethodPost, e.srv.URL+"/api/auth/login", bytes.NewBufferString("{"))
	require.NoError(t, err)
	resp, err := e.srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.NotEmpty(t, resp.Header.Get(common.RequestIDHeaderName))

	code := e.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"mail": "x"}, nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestNoteLifecycle(t *testing.T) {
	e := newAPIEnv(t)
	owner := e.signup(t, "owner@example.com", "owner")
	other := e.signup(t, "other@example.com", "other")

	in := createNoteRequest{NoteInput: models.NoteInput{
		Title: "Organic Chemistry", Description: "Reaction mechanisms",
		Subject: "Chemistry", Tags: []string{"organic"}, FileType: "pdf",
		FileRef: "/files/organic.pdf",
	}}
	assert.Equal(t, http.StatusUnauthorized, e.do(t, http.MethodPost, "/api/notes", "", in, nil))

	var created services.CreateResult
	require.Equal(t, http.StatusCreated, e.do(t, http.MethodPost, "/api/notes", owner.AccessToken, in, &created))
	id := created.Note.ID
	assert.Nil(t, created.Upload)

	other2 := in
	other2.Title, other2.Subject, other2.Tags = "Graph Theory", "Mathematics", []string{"graphs"}
	require.Equal(t, http.StatusCreated, e.do(t, http.MethodPost, "/api/notes", other.AccessToken, other2, nil))

	var res catalog.Result
	require.Equal(t, http.StatusOK, e.do(t, http.MethodGet, "/api/notes?q=chemistry", "", nil, &res))
	require.Equal(t, 1, res.Total)
	assert.Equal(t, id, res.Notes[0].ID)

	q := url.Values{"tag": {"graphs,unused"}, "sort": {"newest"}}
	require.Equal(t, http.StatusOK, e.do(t, http.MethodGet, "/api/notes?"+q.Encode(), "", nil, &res))
	assert.Equal(t, 1, res.Total)
	assert.Equal(t, http.StatusBadRequest, e.do(t, http.MethodGet, "/api/notes?sort=random", "", nil, nil))
	assert.Equal(t, http.StatusBadRequest, e.do(t, http.MethodGet, "/api/notes?page=x", "", nil, nil))

	var far catalog.Result
	require.Equal(t, http.StatusOK, e.do(t, http.MethodGet, "/api/notes?page=9223372036854775807", "", nil, &far))
	assert.Empty(t, far.Notes)
	assert.Equal(t, 2, far.Total)

	var sug []catalog.Suggestion
	require.Equal(t, http.StatusOK, e.do(t, http.MethodGet, "/api/notes/suggest?q=graph", "", nil, &sug))
	require.NotEmpty(t, sug)
	assert.Equal(t, "Graph Theory", sug[0].Title)

	var n models.Note
	require.Equal(t, http.StatusOK, e.do(t, http.MethodGet, "/api/notes/"+id, "", nil, &n))
	assert.Equal(t, int64(1), n.ViewCount)

	var d services.Download
	require.Equal(t, http.StatusOK, e.do(t, http.MethodGet, "/api/notes/"+id+"/download", "", nil, &d))
	assert.Equal(t, "/files/organic.pdf", d.URL)

	upd := in.NoteInput
	upd.Title = "Hijacked"
	assert.Equal(t, http.StatusForbidden, e.do(t, http.MethodPut, "/api/notes/"+id, other.AccessToken, upd, nil))
	upd.Title = "Organic Chemistry II"
	require.Equal(t, http.StatusOK, e.do(t, http.MethodPut, "/api/notes/"+id, owner.AccessToken, upd, &n))
	assert.Equal(t, "Organic Chemistry II", n.Title)

	assert.Equal(t, http.StatusBadRequest, e.do(t, http.MethodPost, "/api/notes/"+id+"/rating", other.AccessToken,
		map[string]int{"value": 9}, nil))
	require.Equal(t, http.StatusOK, e.do(t, http.MethodPost, "/api/notes/"+id+"/rating", other.AccessToken,
		map[string]int{"value": 4}, &n))
	assert.InDelta(t, 4.0, n.Rating, 1e-9)

	var c models.Comment
	require.Equal(t, http.StatusCreated, e.do(t, http.MethodPost, "/api/notes/"+id+"/comments", other.AccessToken,
		map[string]string{"content": "helpful"}, &c))
	var comments []models.Comment
	require.Equal(t, http.StatusOK, e.do(t, http.MethodGet, "/api/notes/"+id+"/comments", "", nil, &comments))
	assert.Len(t, comments, 1)

	assert.Equal(t, http.StatusNoContent, e.do(t, http.MethodPut, "/api/me/bookmarks/"+id, other.AccessToken, nil, nil))
	var marked []models.Note
	require.Equal(t, http.StatusOK, e.do(t, http.MethodGet, "/api/me/bookmarks", other.AccessToken, nil, &marked))
	assert.Len(t, marked, 1)

	var mine []models.Note
	require.Equal(t, http.StatusOK, e.do(t, http.MethodGet, "/api/me/notes", owner.AccessToken, nil, &mine))
	assert.Len(t, mine, 1)

	var rep models.Report
	require.Equal(t, http.StatusCreated, e.do(t, http.MethodPost, "/api/notes/"+id+"/reports", other.AccessToken,
		map[string]string{"type": "plagiarism"}, &rep))
	assert.Equal(t, models.ReportPending, rep.Status)

	assert.Equal(t, http.StatusNoContent, e.do(t, http.MethodDelete, "/api/notes/"+id, owner.AccessToken, nil, nil))
	assert.Equal(t, http.StatusNotFound, e.do(t, http.MethodGet, "/api/notes/"+id, "", nil, nil))
	require.Equal(t, http.StatusOK, e.do(t, http.MethodGet, "/api/me/bookmarks", other.AccessToken, nil, &marked))
	assert.Empty(t, marked)
}

func TestAdminRoutes(t *testing.T) {
	e := newAPIEnv(t)
	user := e.signup(t, "u@example.com", "u")

	require.NoError(t, e.users.EnsureAdmin(context.Background(), "root@example.com", "root-pass"))
	var admin services.Session
	require.Equal(t, http.StatusOK, e.do(t, http.MethodPost, "/api/auth/login", "",
		credentials{Email: "root@example.com", Password: "root-pass"}, &admin))

	for _, path := range []string{"/api/admin/users", "/api/admin/reports", "/api/admin/stats"} {
		assert.Equal(t, http.StatusUnauthorized, e.do(t, http.MethodGet, path, "", nil, nil), path)
		assert.Equal(t, http.StatusForbidden, e.do(t, http.MethodGet, path, user.AccessToken, nil, nil), path)
		assert.Equal(t, http.StatusOK, e.do(t, http.MethodGet, path, admin.AccessToken, nil, nil), path)
	}

	var stats models.Stats
	require.Equal(t, http.StatusOK, e.do(t, http.MethodGet, "/api/admin/stats", admin.AccessToken, nil, &stats))
	assert.Equal(t, int64(2), stats.TotalUsers)

	var users []models.Profile
	require.Equal(t, http.StatusOK, e.do(t, http.MethodGet, "/api/admin/users?search=u%40", admin.AccessToken, nil, &users))
	require.Len(t, users, 1)

	var p models.Profile
	require.Equal(t, http.StatusOK, e.do(t, http.MethodPut, "/api/admin/users/"+user.User.ID+"/status",
		admin.AccessToken, map[string]string{"status": "suspended"}, &p))
	assert.Equal(t, models.UserSuspended, p.Status)

	code := e.do(t, http.MethodPost, "/api/auth/login", "", credentials{Email: "u@example.com", Password: "pw-u"}, nil)
	assert.Equal(t, http.StatusForbidden, code)

	// the access token issued before suspension still reads but no longer writes
	in := createNoteRequest{NoteInput: models.NoteInput{Title: "After ban", Subject: "Physics", FileType: "pdf"}}
	assert.Equal(t, http.StatusForbidden, e.do(t, http.MethodPost, "/api/notes", user.AccessToken, in, nil))
	assert.Equal(t, http.StatusForbidden, e.do(t, http.MethodPatch, "/api/me", user.AccessToken, map[string]string{"bio": "x"}, nil))
	assert.Equal(t, http.StatusOK, e.do(t, http.MethodGet, "/api/me", user.AccessToken, nil, nil))

	assert.Equal(t, http.StatusNotFound, e.do(t, http.MethodPost, "/api/admin/reports/missing/resolve", admin.AccessToken, nil, nil))
	assert.Equal(t, http.StatusNotFound, e.do(t, http.MethodDelete, "/api/admin/notes/missing", admin.AccessToken, nil, nil))
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{common.ErrorNotFound, http.StatusNotFound},
		{common.ErrorUnauthorized, http.StatusUnauthorized},
		{common.ErrTokenExpired, http.StatusUnauthorized},
		{common.ErrorForbidden, http.StatusForbidden},
		{common.ErrorAlreadyExists, http.StatusConflict},
		{common.ErrorValidation, http.StatusBadRequest},
		{io.ErrUnexpectedEOF, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}

func TestCriteriaFromQuery(t *testing.T) {
	c, err := criteriaFromQuery(url.Values{
		"q":         {"  neural "},
		"tag":       {"AI, Deep Learning", "ml"},
		"subject":   {"AI"},
		"sort":      {"RATING"},
		"page":      {"2"},
		"page_size": {"5"},
	})
	require.NoError(t, err)
	assert.Equal(t, catalog.Criteria{
		Query:    "neural",
		Tags:     []string{"AI", "Deep Learning", "ml"},
		Subject:  "AI",
		Sort:     catalog.SortRating,
		Page:     2,
		PageSize: 5,
	}, c)

	_, err = criteriaFromQuery(url.Values{"page_size": {"-1"}})
	assert.ErrorIs(t, err, common.ErrorValidation)
}
