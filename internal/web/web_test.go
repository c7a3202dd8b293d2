package web

import (
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/desertthunder/mediaranker/internal/models"
	"github.com/desertthunder/mediaranker/internal/repositories"
	"github.com/desertthunder/mediaranker/internal/server"
	"github.com/desertthunder/mediaranker/internal/session"
	"github.com/desertthunder/mediaranker/internal/shared"
	tu "github.com/desertthunder/mediaranker/internal/testing"
)

// fakeProvider asserts whatever identity the callback query names.
type fakeProvider struct{}

func (fakeProvider) Name() string { return "github" }

func (fakeProvider) AuthCodeURL(state string) string {
	return "https://github.test/login/oauth/authorize?state=" + url.QueryEscape(state)
}

func (fakeProvider) Assert(_ context.Context, r *http.Request) (*server.Assertion, error) {
	q := r.URL.Query()
	if q.Get("code") == "" {
		return nil, shared.ErrAuthFailed
	}
	return &server.Assertion{
		Provider: "github",
		UID:      q.Get("uid"),
		Username: q.Get("username"),
		Email:    q.Get("username") + "@example.com",
	}, nil
}

type testApp struct {
	srv      *httptest.Server
	sessions *session.Manager
	users    *repositories.UserRepository
	works    *repositories.WorkRepository
	votes    *repositories.VoteRepository
}

func setupApp(t *testing.T, limiter *server.RateLimiter) *testApp {
	t.Helper()

	db := tu.NewTestDB(t)
	logger := shared.NewLogger(io.Discard)
	sessions, err := session.NewManager(session.Options{
		Store:  session.NewMemoryStore(),
		Secret: []byte("test-secret"),
		Logger: logger,
	})
	if err != nil {
		t.Fatalf("failed to create session manager: %v", err)
	}

	app, err := New(Options{
		DB:        db,
		Sessions:  sessions,
		Providers: []server.Provider{fakeProvider{}},
		Limiter:   limiter,
		Logger:    logger,
	})
	if err != nil {
		t.Fatalf("failed to create app: %v", err)
	}

	srv := httptest.NewServer(app.Handler())
	t.Cleanup(srv.Close)

	return &testApp{
		srv:      srv,
		sessions: sessions,
		users:    repositories.NewUserRepository(db),
		works:    repositories.NewWorkRepository(db),
		votes:    repositories.NewVoteRepository(db),
	}
}

// newClient returns a browser-like client with its own cookie jar that does not follow redirects.
func (ta *testApp) newClient(t *testing.T) *http.Client {
	t.Helper()

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("failed to create cookie jar: %v", err)
	}
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func (ta *testApp) do(t *testing.T, c *http.Client, method, path string, form url.Values) (*http.Response, string) {
	t.Helper()

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequest(method, ta.srv.URL+path, body)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}
	return resp, string(b)
}

// login runs the OAuth round trip for the given identity.
func (ta *testApp) login(t *testing.T, c *http.Client, uid, username string) *http.Response {
	t.Helper()

	resp, _ := ta.do(t, c, http.MethodGet, "/auth/github", nil)
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("expected login redirect, got %d", resp.StatusCode)
	}
	authURL, err := url.Parse(resp.Header.Get("Location"))
	if err != nil {
		t.Fatalf("invalid authorization url: %v", err)
	}

	q := url.Values{
		"code":     {"ok"},
		"state":    {authURL.Query().Get("state")},
		"uid":      {uid},
		"username": {username},
	}
	resp, _ = ta.do(t, c, http.MethodGet, "/auth/github/callback?"+q.Encode(), nil)
	return resp
}

// flash peeks at the pending flash in c's session without consuming it.
func (ta *testApp) flash(t *testing.T, c *http.Client) *session.Flash {
	t.Helper()

	u, _ := url.Parse(ta.srv.URL)
	for _, cookie := range c.Jar.Cookies(u) {
		if cookie.Name != ta.sessions.CookieName() {
			continue
		}
		data, err := ta.sessions.Lookup(context.Background(), cookie.Value)
		if err != nil {
			t.Fatalf("failed to look up session: %v", err)
		}
		return data.Flash
	}
	return nil
}

func (ta *testApp) createWork(t *testing.T, title string, category models.Category) *models.Work {
	t.Helper()

	work := models.NewWork(title, category)
	if err := ta.works.Create(context.Background(), work); err != nil {
		t.Fatalf("failed to create work: %v", err)
	}
	return work
}

func (ta *testApp) count(t *testing.T) (works, votes int) {
	t.Helper()

	ctx := context.Background()
	works, err := ta.works.Count(ctx)
	if err != nil {
		t.Fatalf("failed to count works: %v", err)
	}
	votes, err = ta.votes.Count(ctx, nil)
	if err != nil {
		t.Fatalf("failed to count votes: %v", err)
	}
	return works, votes
}

func expectRedirect(t *testing.T, resp *http.Response, location string) {
	t.Helper()

	if resp.StatusCode != http.StatusFound {
		t.Fatalf("expected status 302, got %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Location"); got != location {
		t.Errorf("expected redirect to %s, got %s", location, got)
	}
}

func expectFlash(t *testing.T, got *session.Flash, status, text string) {
	t.Helper()

	if got == nil {
		t.Fatalf("expected flash %s %q, got none", status, text)
	}
	if got.Status != status || got.ResultText != text {
		t.Errorf("expected flash %s %q, got %s %q", status, text, got.Status, got.ResultText)
	}
}

func TestRoot(t *testing.T) {
	t.Run("Succeeds With All Categories", func(t *testing.T) {
		ta := setupApp(t, nil)
		ta.createWork(t, "Dirty Computer", models.CategoryAlbum)
		ta.createWork(t, "Practical Object-Oriented Design", models.CategoryBook)
		ta.createWork(t, "Arrival", models.CategoryMovie)

		resp, body := ta.do(t, ta.newClient(t), http.MethodGet, "/", nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected status 200, got %d", resp.StatusCode)
		}
		for _, want := range []string{"Dirty Computer", "Arrival", "Top Books", "Media Spotlight"} {
			if !strings.Contains(body, want) {
				t.Errorf("expected root page to contain %q", want)
			}
		}
	})

	t.Run("Succeeds With One Category Absent", func(t *testing.T) {
		ta := setupApp(t, nil)
		ta.createWork(t, "Dirty Computer", models.CategoryAlbum)

		resp, body := ta.do(t, ta.newClient(t), http.MethodGet, "/", nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected status 200, got %d", resp.StatusCode)
		}
		if !strings.Contains(body, "No movies yet.") {
			t.Error("expected empty movie section")
		}
	})

	t.Run("Succeeds With No Works", func(t *testing.T) {
		ta := setupApp(t, nil)

		resp, _ := ta.do(t, ta.newClient(t), http.MethodGet, "/", nil)
		if resp.StatusCode != http.StatusOK {
			t.Errorf("expected status 200, got %d", resp.StatusCode)
		}
	})

	t.Run("Orders By Votes", func(t *testing.T) {
		ta := setupApp(t, nil)
		ctx := context.Background()
		ta.createWork(t, "Low", models.CategoryBook)
		high := ta.createWork(t, "High", models.CategoryBook)

		user := models.NewUser("dan", "github", "1")
		if err := ta.users.Create(ctx, user); err != nil {
			t.Fatalf("failed to create user: %v", err)
		}
		if err := ta.votes.Create(ctx, models.NewVote(user.ID(), high.ID())); err != nil {
			t.Fatalf("failed to vote: %v", err)
		}

		_, body := ta.do(t, ta.newClient(t), http.MethodGet, "/", nil)
		if strings.Index(body, "High") > strings.Index(body, "Low") {
			t.Error("expected the upvoted work to be listed first")
		}
		if !strings.Contains(body, "Media Spotlight: <a href=\"/works/"+high.ID()+"\">High</a>") {
			t.Error("expected the upvoted work in the spotlight")
		}
	})

	t.Run("Unknown Path", func(t *testing.T) {
		ta := setupApp(t, nil)

		resp, _ := ta.do(t, ta.newClient(t), http.MethodGet, "/nope", nil)
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("expected status 404, got %d", resp.StatusCode)
		}
	})
}

func TestWorksIndex(t *testing.T) {
	t.Run("Succeeds When There Are Works", func(t *testing.T) {
		ta := setupApp(t, nil)
		ta.createWork(t, "Arrival", models.CategoryMovie)

		resp, body := ta.do(t, ta.newClient(t), http.MethodGet, "/works", nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected status 200, got %d", resp.StatusCode)
		}
		if !strings.Contains(body, "Arrival") {
			t.Error("expected work in listing")
		}
	})

	t.Run("Succeeds When There Are No Works", func(t *testing.T) {
		ta := setupApp(t, nil)

		resp, _ := ta.do(t, ta.newClient(t), http.MethodGet, "/works", nil)
		if resp.StatusCode != http.StatusOK {
			t.Errorf("expected status 200, got %d", resp.StatusCode)
		}
	})
}

func TestRequireLogin(t *testing.T) {
	ta := setupApp(t, nil)
	work := ta.createWork(t, "Arrival", models.CategoryMovie)

	cases := []struct {
		name   string
		method string
		path   string
		form   url.Values
	}{
		{"New Form", http.MethodGet, "/works/new", nil},
		{"Create", http.MethodPost, "/works", url.Values{"work[title]": {"Sneaky"}, "work[category]": {"book"}}},
		{"Show", http.MethodGet, "/works/" + work.ID(), nil},
		{"Edit Form", http.MethodGet, "/works/" + work.ID() + "/edit", nil},
		{"Update", http.MethodPatch, "/works/" + work.ID(), url.Values{"work[title]": {"Changed"}}},
		{"Update Via Form", http.MethodPost, "/works/" + work.ID(), url.Values{"_method": {"PUT"}, "work[title]": {"Changed"}}},
		{"Delete", http.MethodDelete, "/works/" + work.ID(), nil},
		{"Upvote", http.MethodPost, "/works/" + work.ID() + "/upvote", nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := ta.newClient(t)
			worksBefore, votesBefore := ta.count(t)

			resp, _ := ta.do(t, c, tc.method, tc.path, tc.form)

			expectRedirect(t, resp, "/")
			expectFlash(t, ta.flash(t, c), session.StatusFailure, "You must be logged in to do that!")

			worksAfter, votesAfter := ta.count(t)
			if worksAfter != worksBefore || votesAfter != votesBefore {
				t.Errorf("expected no changes, works %d -> %d, votes %d -> %d", worksBefore, worksAfter, votesBefore, votesAfter)
			}
		})
	}

	t.Run("Work Unchanged", func(t *testing.T) {
		got, err := ta.works.Get(context.Background(), work.ID())
		if err != nil {
			t.Fatalf("expected work to survive, got %v", err)
		}
		if got.Title() != "Arrival" {
			t.Errorf("expected title Arrival, got %s", got.Title())
		}
	})
}

func TestOAuth(t *testing.T) {
	t.Run("New User", func(t *testing.T) {
		ta := setupApp(t, nil)
		c := ta.newClient(t)

		resp := ta.login(t, c, "1001", "dan")

		expectRedirect(t, resp, "/")
		expectFlash(t, ta.flash(t, c), session.StatusSuccess, "Logged in as new user dan")

		user, err := ta.users.FindByProvider(context.Background(), "github", "1001")
		if err != nil {
			t.Fatalf("expected user to be created, got %v", err)
		}
		if user.Email() != "dan@example.com" {
			t.Errorf("expected email from assertion, got %s", user.Email())
		}

		resp, _ = ta.do(t, c, http.MethodGet, "/users/current", nil)
		expectRedirect(t, resp, "/users/"+user.ID())
	})

	t.Run("Returning User", func(t *testing.T) {
		ta := setupApp(t, nil)
		ta.login(t, ta.newClient(t), "1001", "dan")

		c := ta.newClient(t)
		resp := ta.login(t, c, "1001", "dan")

		expectRedirect(t, resp, "/")
		expectFlash(t, ta.flash(t, c), session.StatusSuccess, "Logged in as returning user dan")

		n, err := ta.users.Count(context.Background())
		if err != nil {
			t.Fatalf("failed to count users: %v", err)
		}
		if n != 1 {
			t.Errorf("expected 1 user, got %d", n)
		}

		resp, _ = ta.do(t, c, http.MethodGet, "/works/new", nil)
		if resp.StatusCode != http.StatusOK {
			t.Errorf("expected returning user to be logged in, got %d", resp.StatusCode)
		}
	})

	t.Run("Invalid Assertion Creates Nothing", func(t *testing.T) {
		ta := setupApp(t, nil)
		c := ta.newClient(t)

		resp := ta.login(t, c, "1001", "")

		expectRedirect(t, resp, "/")
		expectFlash(t, ta.flash(t, c), session.StatusError, "Could not create new user account: username can't be blank")

		n, _ := ta.users.Count(context.Background())
		if n != 0 {
			t.Errorf("expected no users, got %d", n)
		}

		resp, _ = ta.do(t, c, http.MethodGet, "/users/current", nil)
		expectRedirect(t, resp, "/")
		expectFlash(t, ta.flash(t, c), session.StatusFailure, "You must be logged in to do that!")
	})

	t.Run("State Mismatch", func(t *testing.T) {
		ta := setupApp(t, nil)
		c := ta.newClient(t)
		ta.do(t, c, http.MethodGet, "/auth/github", nil)

		resp, _ := ta.do(t, c, http.MethodGet, "/auth/github/callback?code=ok&state=forged&uid=1&username=eve", nil)

		expectRedirect(t, resp, "/")
		if f := ta.flash(t, c); f == nil || f.Status != session.StatusError {
			t.Errorf("expected error flash, got %+v", f)
		}
		if n, _ := ta.users.Count(context.Background()); n != 0 {
			t.Errorf("expected no users, got %d", n)
		}
	})

	t.Run("Assertion Failure", func(t *testing.T) {
		ta := setupApp(t, nil)
		c := ta.newClient(t)

		resp, _ := ta.do(t, c, http.MethodGet, "/auth/github", nil)
		authURL, _ := url.Parse(resp.Header.Get("Location"))
		resp, _ = ta.do(t, c, http.MethodGet, "/auth/github/callback?state="+url.QueryEscape(authURL.Query().Get("state")), nil)

		expectRedirect(t, resp, "/")
		expectFlash(t, ta.flash(t, c), session.StatusError, "Could not log in with github")
	})

	t.Run("Unknown Provider", func(t *testing.T) {
		ta := setupApp(t, nil)
		c := ta.newClient(t)

		resp, _ := ta.do(t, c, http.MethodGet, "/auth/myspace", nil)
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("expected status 404 for login, got %d", resp.StatusCode)
		}

		resp, _ = ta.do(t, c, http.MethodGet, "/auth/myspace/callback?code=ok", nil)
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("expected status 404 for callback, got %d", resp.StatusCode)
		}
	})

	t.Run("Session Rotates On Login", func(t *testing.T) {
		ta := setupApp(t, nil)
		c := ta.newClient(t)
		u, _ := url.Parse(ta.srv.URL)

		ta.do(t, c, http.MethodGet, "/auth/github", nil)
		before := c.Jar.Cookies(u)

		ta.login(t, c, "1001", "dan")
		after := c.Jar.Cookies(u)

		if len(before) != 1 || len(after) != 1 {
			t.Fatalf("expected one session cookie before and after, got %d and %d", len(before), len(after))
		}
		if before[0].Value == after[0].Value {
			t.Error("expected session cookie to change on login")
		}
	})
}

func TestLogout(t *testing.T) {
	t.Run("Twice", func(t *testing.T) {
		ta := setupApp(t, nil)
		c := ta.newClient(t)
		ta.login(t, c, "1001", "dan")

		resp, _ := ta.do(t, c, http.MethodDelete, "/logout", nil)
		expectRedirect(t, resp, "/")
		expectFlash(t, ta.flash(t, c), session.StatusSuccess, "Successfully logged out!")

		resp, _ = ta.do(t, c, http.MethodDelete, "/logout", nil)
		expectRedirect(t, resp, "/")
		expectFlash(t, ta.flash(t, c), session.StatusWarning, "You were not logged in!")
	})

	t.Run("Via Form", func(t *testing.T) {
		ta := setupApp(t, nil)
		c := ta.newClient(t)
		ta.login(t, c, "1001", "dan")

		resp, _ := ta.do(t, c, http.MethodPost, "/logout", url.Values{"_method": {"DELETE"}})
		expectRedirect(t, resp, "/")
		expectFlash(t, ta.flash(t, c), session.StatusSuccess, "Successfully logged out!")

		resp, _ = ta.do(t, c, http.MethodGet, "/works/new", nil)
		expectRedirect(t, resp, "/")
	})

	t.Run("Never Logged In", func(t *testing.T) {
		ta := setupApp(t, nil)
		c := ta.newClient(t)

		resp, _ := ta.do(t, c, http.MethodDelete, "/logout", nil)
		expectRedirect(t, resp, "/")
		expectFlash(t, ta.flash(t, c), session.StatusWarning, "You were not logged in!")
	})
}

func TestFlashShownOnce(t *testing.T) {
	ta := setupApp(t, nil)
	c := ta.newClient(t)
	ta.login(t, c, "1001", "dan")

	_, body := ta.do(t, c, http.MethodGet, "/", nil)
	if !strings.Contains(body, "Logged in as new user dan") {
		t.Error("expected flash on the first page after redirect")
	}

	_, body = ta.do(t, c, http.MethodGet, "/", nil)
	if strings.Contains(body, "Logged in as new user dan") {
		t.Error("expected flash to be cleared after display")
	}
	if !strings.Contains(body, "Logged in as dan") {
		t.Error("expected the session to survive the flash being cleared")
	}
}

func TestUpvote(t *testing.T) {
	t.Run("Fresh Vote Then Duplicate", func(t *testing.T) {
		ta := setupApp(t, nil)
		c := ta.newClient(t)
		ta.login(t, c, "1001", "dan")
		work := ta.createWork(t, "Dirty Computer", models.CategoryAlbum)
		path := "/works/" + work.ID() + "/upvote"

		resp, _ := ta.do(t, c, http.MethodPost, path, nil)
		expectRedirect(t, resp, "/works/"+work.ID())
		expectFlash(t, ta.flash(t, c), session.StatusSuccess, "Successfully upvoted!")

		resp, _ = ta.do(t, c, http.MethodPost, path, nil)
		expectRedirect(t, resp, "/works/"+work.ID())
		expectFlash(t, ta.flash(t, c), session.StatusFailure, "Could not upvote")

		n, err := ta.votes.Count(context.Background(), map[string]any{"work_id": work.ID()})
		if err != nil {
			t.Fatalf("failed to count votes: %v", err)
		}
		if n != 1 {
			t.Errorf("expected exactly 1 vote, got %d", n)
		}
	})

	t.Run("Different Users", func(t *testing.T) {
		ta := setupApp(t, nil)
		work := ta.createWork(t, "Dirty Computer", models.CategoryAlbum)

		for _, name := range []string{"dan", "kari"} {
			c := ta.newClient(t)
			ta.login(t, c, "uid-"+name, name)
			ta.do(t, c, http.MethodPost, "/works/"+work.ID()+"/upvote", nil)
			expectFlash(t, ta.flash(t, c), session.StatusSuccess, "Successfully upvoted!")
		}

		got, err := ta.works.Get(context.Background(), work.ID())
		if err != nil {
			t.Fatalf("failed to get work: %v", err)
		}
		if got.VoteCount() != 2 {
			t.Errorf("expected 2 votes, got %d", got.VoteCount())
		}
	})

	t.Run("Unknown Work", func(t *testing.T) {
		ta := setupApp(t, nil)
		c := ta.newClient(t)
		ta.login(t, c, "1001", "dan")

		resp, _ := ta.do(t, c, http.MethodPost, "/works/"+shared.GenerateID()+"/upvote", nil)
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("expected status 404, got %d", resp.StatusCode)
		}
	})
}

func TestCreateWork(t *testing.T) {
	t.Run("Valid Data", func(t *testing.T) {
		ta := setupApp(t, nil)
		c := ta.newClient(t)
		ta.login(t, c, "1001", "dan")

		form := url.Values{
			"work[title]":            {"Dirty Computer"},
			"work[category]":         {"album"},
			"work[creator]":          {"Janelle Monáe"},
			"work[publication_year]": {"2018"},
		}
		resp, _ := ta.do(t, c, http.MethodPost, "/works", form)

		works, err := ta.works.List(context.Background(), map[string]any{"category": models.CategoryAlbum})
		if err != nil {
			t.Fatalf("failed to list works: %v", err)
		}
		if len(works) != 1 {
			t.Fatalf("expected 1 work, got %d", len(works))
		}
		work := works[0]

		expectRedirect(t, resp, "/works/"+work.ID())
		if work.PublicationYear() != 2018 || work.Creator() != "Janelle Monáe" {
			t.Errorf("unexpected work fields: creator %q year %d", work.Creator(), work.PublicationYear())
		}
		if work.UserID() == "" {
			t.Error("expected the creating user to own the work")
		}
		if f := ta.flash(t, c); f == nil || f.Status != session.StatusSuccess {
			t.Errorf("expected success flash, got %+v", f)
		}
	})

	t.Run("Blank Title", func(t *testing.T) {
		ta := setupApp(t, nil)
		c := ta.newClient(t)
		ta.login(t, c, "1001", "dan")

		resp, body := ta.do(t, c, http.MethodPost, "/works", url.Values{"work[title]": {""}, "work[category]": {"book"}})
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", resp.StatusCode)
		}
		if !strings.Contains(body, "title can&#39;t be blank") {
			t.Error("expected validation message in form")
		}
		if n, _ := ta.works.Count(context.Background()); n != 0 {
			t.Errorf("expected no works, got %d", n)
		}
	})

	t.Run("Bogus Categories", func(t *testing.T) {
		ta := setupApp(t, nil)
		c := ta.newClient(t)
		ta.login(t, c, "1001", "dan")

		for _, category := range []string{"nope", "42", "", "  ", "albumstrailingtext", "ALBUM", " book ", "Movie"} {
			resp, _ := ta.do(t, c, http.MethodPost, "/works", url.Values{"work[title]": {"Invalid Work"}, "work[category]": {category}})
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("category %q: expected status 400, got %d", category, resp.StatusCode)
			}
		}

		if n, _ := ta.works.Count(context.Background()); n != 0 {
			t.Errorf("expected no works, got %d", n)
		}
	})

	t.Run("Bogus Year", func(t *testing.T) {
		ta := setupApp(t, nil)
		c := ta.newClient(t)
		ta.login(t, c, "1001", "dan")

		resp, body := ta.do(t, c, http.MethodPost, "/works", url.Values{
			"work[title]":            {"Arrival"},
			"work[category]":         {"movie"},
			"work[publication_year]": {"soon"},
		})
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", resp.StatusCode)
		}
		if !strings.Contains(body, `value="Arrival"`) {
			t.Error("expected submitted title to be kept in the form")
		}
	})
}

func TestShowWork(t *testing.T) {
	ta := setupApp(t, nil)
	c := ta.newClient(t)
	ta.login(t, c, "1001", "dan")
	work := ta.createWork(t, "Arrival", models.CategoryMovie)
	ta.do(t, c, http.MethodPost, "/works/"+work.ID()+"/upvote", nil)

	t.Run("Extant Work", func(t *testing.T) {
		resp, body := ta.do(t, c, http.MethodGet, "/works/"+work.ID(), nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected status 200, got %d", resp.StatusCode)
		}
		if !strings.Contains(body, "1 vote for this movie") {
			t.Error("expected vote count heading")
		}
		if !strings.Contains(body, ">dan</a>") {
			t.Error("expected voter to be listed")
		}
	})

	t.Run("Bogus ID", func(t *testing.T) {
		resp, _ := ta.do(t, c, http.MethodGet, "/works/"+shared.GenerateID(), nil)
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("expected status 404, got %d", resp.StatusCode)
		}
	})
}

func TestEditWork(t *testing.T) {
	ta := setupApp(t, nil)
	c := ta.newClient(t)
	ta.login(t, c, "1001", "dan")
	work := ta.createWork(t, "Arrival", models.CategoryMovie)

	t.Run("Extant Work", func(t *testing.T) {
		resp, body := ta.do(t, c, http.MethodGet, "/works/"+work.ID()+"/edit", nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected status 200, got %d", resp.StatusCode)
		}
		if !strings.Contains(body, `value="PATCH"`) {
			t.Error("expected method override field")
		}
	})

	t.Run("Bogus ID", func(t *testing.T) {
		resp, _ := ta.do(t, c, http.MethodGet, "/works/"+shared.GenerateID()+"/edit", nil)
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("expected status 404, got %d", resp.StatusCode)
		}
	})
}

func TestUpdateWork(t *testing.T) {
	setup := func(t *testing.T) (*testApp, *http.Client, *models.Work) {
		ta := setupApp(t, nil)
		c := ta.newClient(t)
		ta.login(t, c, "1001", "dan")

		work := models.NewWork("Arrival", models.CategoryMovie)
		work.SetCreator("Denis Villeneuve")
		if err := ta.works.Create(context.Background(), work); err != nil {
			t.Fatalf("failed to create work: %v", err)
		}
		return ta, c, work
	}

	reload := func(t *testing.T, ta *testApp, id string) *models.Work {
		work, err := ta.works.Get(context.Background(), id)
		if err != nil {
			t.Fatalf("failed to reload work: %v", err)
		}
		return work
	}

	t.Run("Partial", func(t *testing.T) {
		ta, c, work := setup(t)

		resp, _ := ta.do(t, c, http.MethodPatch, "/works/"+work.ID(), url.Values{"work[title]": {"Arrival (2016)"}})
		expectRedirect(t, resp, "/works/"+work.ID())

		got := reload(t, ta, work.ID())
		if got.Title() != "Arrival (2016)" {
			t.Errorf("expected updated title, got %s", got.Title())
		}
		if got.Category() != models.CategoryMovie || got.Creator() != "Denis Villeneuve" {
			t.Errorf("expected other fields unchanged, got %s by %s", got.Category(), got.Creator())
		}
	})

	t.Run("Via Form", func(t *testing.T) {
		ta, c, work := setup(t)

		resp, _ := ta.do(t, c, http.MethodPost, "/works/"+work.ID(), url.Values{"_method": {"PUT"}, "work[category]": {"book"}})
		expectRedirect(t, resp, "/works/"+work.ID())

		if got := reload(t, ta, work.ID()); got.Category() != models.CategoryBook {
			t.Errorf("expected category book, got %s", got.Category())
		}
	})

	t.Run("Empty Title", func(t *testing.T) {
		ta, c, work := setup(t)

		resp, _ := ta.do(t, c, http.MethodPatch, "/works/"+work.ID(), url.Values{"work[title]": {""}})
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", resp.StatusCode)
		}
		if got := reload(t, ta, work.ID()); got.Title() != "Arrival" {
			t.Errorf("expected title unchanged, got %s", got.Title())
		}
	})

	t.Run("Bogus Category", func(t *testing.T) {
		ta, c, work := setup(t)

		for _, category := range []string{"podcast", "ALBUM", " book "} {
			resp, _ := ta.do(t, c, http.MethodPatch, "/works/"+work.ID(), url.Values{"work[category]": {category}})
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("category %q: expected status 400, got %d", category, resp.StatusCode)
			}
		}
		if got := reload(t, ta, work.ID()); got.Category() != models.CategoryMovie {
			t.Errorf("expected category unchanged, got %s", got.Category())
		}
	})

	t.Run("Bogus ID", func(t *testing.T) {
		ta, c, _ := setup(t)

		resp, _ := ta.do(t, c, http.MethodPatch, "/works/"+shared.GenerateID(), url.Values{"work[title]": {"x"}})
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("expected status 404, got %d", resp.StatusCode)
		}
	})
}

func TestDeleteWork(t *testing.T) {
	t.Run("Cascades Votes", func(t *testing.T) {
		ta := setupApp(t, nil)
		c := ta.newClient(t)
		ta.login(t, c, "1001", "dan")
		work := ta.createWork(t, "Arrival", models.CategoryMovie)
		ta.do(t, c, http.MethodPost, "/works/"+work.ID()+"/upvote", nil)

		resp, _ := ta.do(t, c, http.MethodPost, "/works/"+work.ID(), url.Values{"_method": {"DELETE"}})
		expectRedirect(t, resp, "/")

		works, votes := ta.count(t)
		if works != 0 {
			t.Errorf("expected no works, got %d", works)
		}
		if votes != 0 {
			t.Errorf("expected no votes, got %d", votes)
		}
	})

	t.Run("Bogus ID", func(t *testing.T) {
		ta := setupApp(t, nil)
		c := ta.newClient(t)
		ta.login(t, c, "1001", "dan")

		resp, _ := ta.do(t, c, http.MethodDelete, "/works/"+shared.GenerateID(), nil)
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("expected status 404, got %d", resp.StatusCode)
		}
	})
}

func TestUsers(t *testing.T) {
	ta := setupApp(t, nil)
	c := ta.newClient(t)
	ta.login(t, c, "1001", "dan")
	work := ta.createWork(t, "Arrival", models.CategoryMovie)
	ta.do(t, c, http.MethodPost, "/works/"+work.ID()+"/upvote", nil)

	user, err := ta.users.FindByProvider(context.Background(), "github", "1001")
	if err != nil {
		t.Fatalf("failed to find user: %v", err)
	}

	t.Run("Index", func(t *testing.T) {
		resp, body := ta.do(t, ta.newClient(t), http.MethodGet, "/users", nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected status 200, got %d", resp.StatusCode)
		}
		if !strings.Contains(body, ">dan</a>") {
			t.Error("expected user in listing")
		}
	})

	t.Run("Show", func(t *testing.T) {
		resp, body := ta.do(t, ta.newClient(t), http.MethodGet, "/users/"+user.ID(), nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected status 200, got %d", resp.StatusCode)
		}
		if !strings.Contains(body, "Upvoted Movies") || !strings.Contains(body, "Arrival") {
			t.Error("expected upvoted works on the user page")
		}
	})

	t.Run("Show Bogus ID", func(t *testing.T) {
		resp, _ := ta.do(t, ta.newClient(t), http.MethodGet, "/users/"+shared.GenerateID(), nil)
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("expected status 404, got %d", resp.StatusCode)
		}
	})

	t.Run("Deleted User Is Logged Out", func(t *testing.T) {
		other := ta.newClient(t)
		ta.login(t, other, "2002", "kari")

		kari, err := ta.users.FindByProvider(context.Background(), "github", "2002")
		if err != nil {
			t.Fatalf("failed to find user: %v", err)
		}
		if err := ta.users.Delete(context.Background(), kari.ID()); err != nil {
			t.Fatalf("failed to delete user: %v", err)
		}

		resp, _ := ta.do(t, other, http.MethodGet, "/works/new", nil)
		expectRedirect(t, resp, "/")
	})
}

func TestHealth(t *testing.T) {
	ta := setupApp(t, nil)

	resp, body := ta.do(t, ta.newClient(t), http.MethodGet, "/healthz", nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected status 200, got %d", resp.StatusCode)
	}
	if strings.TrimSpace(body) != "ok" {
		t.Errorf("expected body ok, got %q", body)
	}
}

func TestRateLimit(t *testing.T) {
	ta := setupApp(t, server.NewRateLimiter(0.001, 2))
	c := ta.newClient(t)

	for i := range 2 {
		resp, _ := ta.do(t, c, http.MethodGet, "/auth/github", nil)
		if resp.StatusCode != http.StatusFound {
			t.Fatalf("request %d: expected status 302, got %d", i, resp.StatusCode)
		}
	}

	resp, _ := ta.do(t, c, http.MethodGet, "/auth/github", nil)
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Errorf("expected status 429, got %d", resp.StatusCode)
	}

	resp, _ = ta.do(t, c, http.MethodGet, "/works", nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected unthrottled route to pass, got %d", resp.StatusCode)
	}
}
