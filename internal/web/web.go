// Package web serves the server-rendered media ranking site.
//
// # Routes
//
//	GET    /                          top works per category plus the spotlight
//	GET    /works                     every work grouped by category
//	GET    /works/new                 new work form (login required)
//	POST   /works                     create a work (login required)
//	GET    /works/{id}                work with its voters (login required)
//	GET    /works/{id}/edit           edit form (login required)
//	PUT    /works/{id}                partial update (login required)
//	DELETE /works/{id}                delete a work and its votes (login required)
//	POST   /works/{id}/upvote         cast the current user's vote (login required)
//	GET    /auth/{provider}           start an OAuth authorization
//	GET    /auth/{provider}/callback  finish an OAuth authorization
//	DELETE /logout                    end the session
//	GET    /users                     users with vote counts
//	GET    /users/current             redirect to the current user's page
//	GET    /users/{id}                a user with the works they upvoted
//	GET    /healthz                   database liveness
//
// HTML forms reach PUT, PATCH and DELETE by posting a "_method" field (see [server.MethodOverride]).
//
// # Sessions
//
// Every request carries a [session.Session]. The logged-in user is resolved once per request
// and is available through [UserFromContext]. Protected handlers are wrapped with requireLogin,
// which redirects anonymous visitors to the root with a failure flash and never reaches the handler.
package web

import (
	"database/sql"
	"fmt"
	"html/template"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mediaranker/internal/repositories"
	"github.com/desertthunder/mediaranker/internal/server"
	"github.com/desertthunder/mediaranker/internal/session"
	"github.com/desertthunder/mediaranker/internal/shared"
)

// rootLimit caps each category on the root page.
const rootLimit = 10

// Options configures an [App].
type Options struct {
	DB        *sql.DB
	Sessions  *session.Manager
	Providers []server.Provider
	Limiter   *server.RateLimiter // Limiter throttles login and vote routes; nil disables limiting
	Logger    *log.Logger
}

// App holds the dependencies of the web handlers.
type App struct {
	db        *sql.DB
	users     *repositories.UserRepository
	works     *repositories.WorkRepository
	votes     *repositories.VoteRepository
	sessions  *session.Manager
	providers map[string]server.Provider
	limiter   *server.RateLimiter
	logger    *log.Logger
	pages     map[string]*template.Template
}

// New creates an [App] and parses its templates.
func New(opts Options) (*App, error) {
	if opts.DB == nil {
		return nil, fmt.Errorf("%w: database is required", shared.ErrInvalidConfig)
	}
	if opts.Sessions == nil {
		return nil, fmt.Errorf("%w: session manager is required", shared.ErrInvalidConfig)
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	pages, err := parseTemplates()
	if err != nil {
		return nil, err
	}

	providers := make(map[string]server.Provider, len(opts.Providers))
	for _, p := range opts.Providers {
		providers[p.Name()] = p
	}

	return &App{
		db:        opts.DB,
		users:     repositories.NewUserRepository(opts.DB),
		works:     repositories.NewWorkRepository(opts.DB),
		votes:     repositories.NewVoteRepository(opts.DB),
		sessions:  opts.Sessions,
		providers: providers,
		limiter:   opts.Limiter,
		logger:    shared.WithLogger(opts.Logger, "component", "web"),
		pages:     pages,
	}, nil
}

// Handler returns the complete HTTP handler with routing and middleware.
func (a *App) Handler() http.Handler {
	router := server.NewBasicRouter()
	router.Handler(server.NewHealthHandler(a.db))

	router.Use(a.sessions.Middleware, a.loadUser)

	router.HandleFunc(http.MethodGet, "/{$}", a.root)

	router.HandleFunc(http.MethodGet, "/works", a.listWorks)
	router.Handle(http.MethodGet, "/works/new", a.requireLogin(a.newWork))
	router.Handle(http.MethodPost, "/works", a.requireLogin(a.createWork))
	router.Handle(http.MethodGet, "/works/{id}", a.requireLogin(a.showWork))
	router.Handle(http.MethodGet, "/works/{id}/edit", a.requireLogin(a.editWork))
	router.Handle(http.MethodPut, "/works/{id}", a.requireLogin(a.updateWork))
	router.Handle(http.MethodPatch, "/works/{id}", a.requireLogin(a.updateWork))
	router.Handle(http.MethodDelete, "/works/{id}", a.requireLogin(a.deleteWork))
	router.Handle(http.MethodPost, "/works/{id}/upvote", a.limit(a.requireLogin(a.upvote)))

	router.Handle(http.MethodGet, "/auth/{provider}", a.limit(http.HandlerFunc(a.login)))
	router.Handle(http.MethodGet, "/auth/{provider}/callback", a.limit(http.HandlerFunc(a.callback)))
	router.HandleFunc(http.MethodDelete, "/logout", a.logout)

	router.HandleFunc(http.MethodGet, "/users", a.listUsers)
	router.HandleFunc(http.MethodGet, "/users/current", a.currentUser)
	router.HandleFunc(http.MethodGet, "/users/{id}", a.showUser)

	return server.Chain(router,
		server.Logging(a.logger),
		server.Recover(a.logger),
		server.SecurityHeaders,
		server.MethodOverride,
	)
}

func (a *App) limit(next http.Handler) http.Handler {
	if a.limiter == nil {
		return next
	}
	return a.limiter.Middleware(next)
}
