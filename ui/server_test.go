package ui

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"filmdash/adapters/postgres"
	"filmdash/domain/film"
	"filmdash/internal/api"
	"filmdash/internal/auth"
	"filmdash/internal/charts"
	"filmdash/internal/config"
	"filmdash/internal/dashboard"
	"filmdash/internal/errors"
	"filmdash/internal/forum"
	"filmdash/internal/messaging"
	"filmdash/internal/testkit"
	"filmdash/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"golang.org/x/crypto/bcrypt"
)

const cookieName = "filmdash_session"

func init() {
	gin.SetMode(gin.TestMode)
}

type fixedSource struct {
	snap *dashboard.Snapshot
}

func (f *fixedSource) Snapshot() (*dashboard.Snapshot, error) {
	if f.snap == nil {
		return nil, errors.NotReady("dashboard")
	}
	return f.snap, nil
}

func (f *fixedSource) Ready() bool { return f.snap != nil }
func (f *fixedSource) Err() error  { return nil }

func readySource(t *testing.T) *fixedSource {
	t.Helper()
	snap, err := dashboard.Build(context.Background(), func() (*film.Table, error) {
		table, _ := film.NewTable(testkit.SampleFilms())
		return table, nil
	}, charts.DefaultOptions())
	require.NoError(t, err)
	return &fixedSource{snap: snap}
}

type testApp struct {
	handler http.Handler
	auth    *auth.Service
	forum   *forum.Service
}

func newTestApp(t *testing.T, source api.SnapshotSource) *testApp {
	t.Helper()
	db := testkit.NewDB(t)
	users := postgres.NewUserRepository(db)

	tokens, err := auth.NewTokenManager(strings.Repeat("s", 32), time.Hour, 24*time.Hour)
	require.NoError(t, err)

	services := Services{
		Auth:      auth.NewService(users, tokens).WithCost(bcrypt.MinCost),
		Forum:     forum.NewService(postgres.NewProposalRepository(db)),
		Messaging: messaging.NewService(postgres.NewChatRepository(db), users),
		Dashboard: source,
	}
	server, err := NewServer(os.DirFS(".."), services, config.AuthConfig{CookieName: cookieName})
	require.NoError(t, err)
	return &testApp{handler: server.Handler(), auth: services.Auth, forum: services.Forum}
}

func (a *testApp) do(t *testing.T, method, path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func cookieFrom(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// member signs up through the service and logs in over HTTP
func (a *testApp) member(t *testing.T, first string) (*models.User, *http.Cookie) {
	t.Helper()
	email := strings.ToLower(first) + "@example.com"
	user, err := a.auth.Signup(context.Background(), auth.SignupRequest{
		FirstName: first, LastName: "Tester", Email: email, Password: "secret-pass", PasswordRepeat: "secret-pass",
	})
	require.NoError(t, err)

	rec := a.do(t, http.MethodPost, "/auth/login", url.Values{"email": {email}, "password": {"secret-pass"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	cookie := cookieFrom(rec, cookieName)
	require.NotNil(t, cookie)
	return user, cookie
}

func TestMembersPagesRequireLogin(t *testing.T) {
	app := newTestApp(t, &fixedSource{})

	for _, path := range []string{"/", "/display_proposals", "/create_proposal", "/view_messages", "/profile"} {
		rec := app.do(t, http.MethodGet, path, nil)
		require.Equal(t, http.StatusFound, rec.Code, path)
		assert.Equal(t, "/auth/login?next="+url.QueryEscape(path), rec.Header().Get("Location"), path)
		assert.NotNil(t, cookieFrom(rec, "filmdash_flash"), path)
	}

	rec := app.do(t, http.MethodGet, "/display_proposals", nil, &http.Cookie{Name: cookieName, Value: "garbage"})
	assert.Equal(t, http.StatusFound, rec.Code)
}

func TestSignupAndLogin(t *testing.T) {
	app := newTestApp(t, &fixedSource{})

	rec := app.do(t, http.MethodPost, "/auth/signup", url.Values{
		"first_name": {"Ada"}, "last_name": {"Lovelace"}, "email": {"ada@example.com"},
		"password": {"engine"}, "password_repeat": {"engine"},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/auth/login", rec.Header().Get("Location"))

	t.Run("passwords differ", func(t *testing.T) {
		rec := app.do(t, http.MethodPost, "/auth/signup", url.Values{
			"first_name": {"Bo"}, "last_name": {"B"}, "email": {"bo@example.com"},
			"password": {"one"}, "password_repeat": {"two"},
		})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, rec.Body.String(), auth.MsgPasswordsDiffer)
	})

	t.Run("wrong password", func(t *testing.T) {
		rec := app.do(t, http.MethodPost, "/auth/login", url.Values{"email": {"ada@example.com"}, "password": {"nope"}})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, rec.Body.String(), auth.MsgWrongPassword)
		assert.Nil(t, cookieFrom(rec, cookieName))
	})

	t.Run("follows a safe next", func(t *testing.T) {
		rec := app.do(t, http.MethodPost, "/auth/login", url.Values{
			"email": {"ada@example.com"}, "password": {"engine"}, "next": {"/my_proposals"},
		})
		require.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/my_proposals", rec.Header().Get("Location"))

		cookie := cookieFrom(rec, cookieName)
		require.NotNil(t, cookie)
		assert.True(t, cookie.HttpOnly)

		home := app.do(t, http.MethodGet, "/", nil, cookie)
		require.Equal(t, http.StatusOK, home.Code)
		assert.Contains(t, home.Body.String(), "Hello Ada.")
	})

	t.Run("ignores an offsite next", func(t *testing.T) {
		rec := app.do(t, http.MethodPost, "/auth/login", url.Values{
			"email": {"ada@example.com"}, "password": {"engine"}, "next": {"https://evil.example/"},
		})
		require.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/", rec.Header().Get("Location"))
	})

	t.Run("remember me persists the cookie", func(t *testing.T) {
		rec := app.do(t, http.MethodPost, "/auth/login", url.Values{
			"email": {"ada@example.com"}, "password": {"engine"}, "remember_me": {"true"},
		})
		cookie := cookieFrom(rec, cookieName)
		require.NotNil(t, cookie)
		assert.Greater(t, cookie.MaxAge, 0)
	})
}

func TestProfile(t *testing.T) {
	app := newTestApp(t, &fixedSource{})
	_, ada := app.member(t, "Ada")
	_, bo := app.member(t, "Bo")

	rec := app.do(t, http.MethodPost, "/profile", url.Values{"username": {"countess"}}, ada)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	rec = app.do(t, http.MethodGet, "/profile", nil, ada)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `value="countess"`)

	rec = app.do(t, http.MethodPost, "/profile", url.Values{"username": {"countess"}}, bo)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), auth.MsgUsernameTaken)
}

func TestDashboardNotReady(t *testing.T) {
	app := newTestApp(t, &fixedSource{})

	for _, path := range []string{"/dash_app/", "/dash_app/graph-page-1", "/dash_app/assets/graph-page-1.png"} {
		rec := app.do(t, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code, path)
	}

	rec := app.do(t, http.MethodGet, "/api/charts", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "dashboard not ready", gjson.Get(rec.Body.String(), "error").String())
}

func TestDashboardPages(t *testing.T) {
	app := newTestApp(t, readySource(t))

	rec := app.do(t, http.MethodGet, "/dash_app/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	for _, page := range graphPages {
		assert.Contains(t, rec.Body.String(), "/dash_app/assets/"+page.Slug+".png")
	}

	rec = app.do(t, http.MethodGet, "/dash_app/graph-page-2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Number of Movies")
	assert.Contains(t, rec.Body.String(), `data-option="count"`)

	rec = app.do(t, http.MethodGet, "/dash_app/assets/graph-page-1.png", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "\x89PNG"))

	assert.Equal(t, http.StatusNotFound, app.do(t, http.MethodGet, "/dash_app/assets/graph-page-9.png", nil).Code)
	assert.Equal(t, http.StatusNotFound, app.do(t, http.MethodGet, "/dash_app/graph-page-9", nil).Code)

	rec = app.do(t, http.MethodGet, "/api/charts/runtime?options=count", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "runtime/count", rec.Header().Get("X-Chart-Key"))
	assert.Equal(t, "bar", gjson.Get(rec.Body.String(), "data.0.type").String())

	rec = app.do(t, http.MethodGet, "/static/js/dashboard.js", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func proposalValues(button string) url.Values {
	return url.Values{
		"title":                 {"Quiet Harbour"},
		"plot":                  {"A keeper finds a **letter**."},
		"character_name":        {"Mara"},
		"character_description": {"The keeper"},
		"genre":                 {"Drama"},
		"button":                {button},
	}
}

func TestProposalFlow(t *testing.T) {
	app := newTestApp(t, &fixedSource{})
	ada, adaCookie := app.member(t, "Ada")
	_, boCookie := app.member(t, "Bo")

	t.Run("add character keeps the form", func(t *testing.T) {
		rec := app.do(t, http.MethodPost, "/create_proposal", proposalValues(forum.ButtonAddCharacter), adaCookie)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 2, strings.Count(rec.Body.String(), `name="character_name"`))
		assert.Contains(t, rec.Body.String(), "Quiet Harbour")
	})

	t.Run("missing genre", func(t *testing.T) {
		form := proposalValues(forum.ButtonSubmit)
		form.Del("genre")
		rec := app.do(t, http.MethodPost, "/create_proposal", form, adaCookie)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, rec.Body.String(), "At least 1 genre needs to be defined")
	})

	rec := app.do(t, http.MethodPost, "/create_proposal", proposalValues(forum.ButtonSubmit), adaCookie)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	mine, err := app.forum.ListUserProposals(context.Background(), ada.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	id := mine[0].ID.String()

	rec = app.do(t, http.MethodGet, "/display_proposals", nil, boCookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/display_proposals/"+id)

	rec = app.do(t, http.MethodGet, "/display_proposals/"+id, nil, boCookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<strong>letter</strong>")
	assert.Contains(t, rec.Body.String(), "/send_message/"+ada.ID.String())

	t.Run("unknown proposal", func(t *testing.T) {
		rec := app.do(t, http.MethodGet, "/display_proposals/not-an-id", nil, boCookie)
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/display_proposals", rec.Header().Get("Location"))
	})

	t.Run("only the author edits", func(t *testing.T) {
		rec := app.do(t, http.MethodGet, "/edit_proposal/"+id, nil, boCookie)
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/my_proposals", rec.Header().Get("Location"))

		rec = app.do(t, http.MethodGet, "/edit_proposal/"+id, nil, adaCookie)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `value="Mara"`)
	})

	t.Run("edit", func(t *testing.T) {
		form := proposalValues(forum.ButtonSubmit)
		form.Set("title", "Loud Harbour")
		form["genre"] = []string{"Drama", "War"}
		rec := app.do(t, http.MethodPost, "/edit_proposal/"+id, form, adaCookie)
		require.Equal(t, http.StatusSeeOther, rec.Code)

		p, err := app.forum.GetProposal(context.Background(), mine[0].ID)
		require.NoError(t, err)
		assert.Equal(t, "Loud Harbour", p.Title)
		assert.Equal(t, []string{"Drama", "War"}, p.GenreNames())
	})
}

func TestMessaging(t *testing.T) {
	app := newTestApp(t, &fixedSource{})
	ada, adaCookie := app.member(t, "Ada")
	bo, boCookie := app.member(t, "Bo")
	badge := `<span class="badge">new</span>`

	rec := app.do(t, http.MethodPost, "/send_message/"+bo.ID.String(), url.Values{"text": {"hello there"}}, adaCookie)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/send_message/"+bo.ID.String(), rec.Header().Get("Location"))

	rec = app.do(t, http.MethodGet, "/view_messages", nil, boCookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), badge)
	assert.Contains(t, rec.Body.String(), "hello there")

	rec = app.do(t, http.MethodGet, "/send_message/"+ada.ID.String(), nil, boCookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "hello there")
	assert.NotContains(t, rec.Body.String(), badge, "reading clears the flag")

	t.Run("empty message", func(t *testing.T) {
		rec := app.do(t, http.MethodPost, "/send_message/"+ada.ID.String(), url.Values{"text": {"  "}}, boCookie)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, rec.Body.String(), "Message is required")
	})

	t.Run("not with yourself", func(t *testing.T) {
		rec := app.do(t, http.MethodGet, "/send_message/"+ada.ID.String(), nil, adaCookie)
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/view_messages", rec.Header().Get("Location"))
	})

	t.Run("find user", func(t *testing.T) {
		rec := app.do(t, http.MethodPost, "/view_messages", url.Values{"user_id": {bo.ID.String()}}, adaCookie)
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/send_message/"+bo.ID.String(), rec.Header().Get("Location"))

		rec = app.do(t, http.MethodPost, "/view_messages", url.Values{"user_id": {""}}, adaCookie)
		assert.Equal(t, "/view_messages", rec.Header().Get("Location"))
	})
}

func TestNewServerTemplates(t *testing.T) {
	_, err := NewServer(fstest.MapFS{"ui/static/site.css": {Data: []byte("")}}, Services{}, config.AuthConfig{})
	assert.Error(t, err, "no templates")

	broken := fstest.MapFS{
		"ui/templates/index.html": {Data: []byte(`{{template "header" .}`)},
		"ui/static/site.css":      {Data: []byte("")},
	}
	_, err = NewServer(broken, Services{}, config.AuthConfig{})
	assert.Error(t, err)
}
