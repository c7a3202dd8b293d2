package web

import (
	"context"
	"errors"
	"net/http"

	"github.com/desertthunder/mediaranker/internal/models"
	"github.com/desertthunder/mediaranker/internal/server"
	"github.com/desertthunder/mediaranker/internal/session"
	"github.com/desertthunder/mediaranker/internal/shared"
)

const msgLoginRequired = "You must be logged in to do that!"

type userKey struct{}

// UserFromContext returns the logged-in user, or nil for anonymous requests.
func UserFromContext(ctx context.Context) *models.User {
	u, _ := ctx.Value(userKey{}).(*models.User)
	return u
}

// loadUser resolves the session's user ID into a [models.User] for the rest of the request.
//
// A session pointing at a user that no longer exists is logged out.
func (a *App) loadUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := session.FromContext(r.Context())
		if s == nil || s.UserID() == "" {
			next.ServeHTTP(w, r)
			return
		}

		user, err := a.users.Get(r.Context(), s.UserID())
		switch {
		case errors.Is(err, shared.ErrNotFound):
			s.ClearUserID()
		case err != nil:
			a.serverError(w, r, err)
			return
		default:
			r = r.WithContext(context.WithValue(r.Context(), userKey{}, user))
		}
		next.ServeHTTP(w, r)
	})
}

// requireLogin rejects anonymous requests with a failure flash and a redirect to the root.
func (a *App) requireLogin(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if UserFromContext(r.Context()) == nil {
			a.logger.Debug("login required", "error", shared.ErrNotAuthenticated, "method", r.Method, "path", r.URL.Path)
			a.redirect(w, r, "/", session.StatusFailure, msgLoginRequired)
			return
		}
		next(w, r)
	})
}

func (a *App) provider(w http.ResponseWriter, r *http.Request) (server.Provider, bool) {
	name := r.PathValue("provider")
	p, ok := a.providers[name]
	if !ok {
		a.logger.Debug("auth request rejected", "error", shared.ErrUnknownProvider, "provider", name)
		a.notFound(w, r)
	}
	return p, ok
}

// login starts the authorization code flow with a fresh state parameter.
func (a *App) login(w http.ResponseWriter, r *http.Request) {
	p, ok := a.provider(w, r)
	if !ok {
		return
	}

	state := shared.GenerateID()
	session.FromContext(r.Context()).SetOAuthState(state)
	http.Redirect(w, r, p.AuthCodeURL(state), http.StatusFound)
}

// callback logs in the asserted identity, creating its account on first sight.
func (a *App) callback(w http.ResponseWriter, r *http.Request) {
	p, ok := a.provider(w, r)
	if !ok {
		return
	}

	ctx := r.Context()
	s := session.FromContext(ctx)

	state := s.TakeOAuthState()
	if state == "" || r.URL.Query().Get("state") != state {
		a.logger.Warn("oauth state mismatch", "provider", p.Name())
		a.redirect(w, r, "/", session.StatusError, "Could not log in: "+shared.ErrInvalidState.Error())
		return
	}

	assertion, err := p.Assert(ctx, r)
	if err != nil {
		a.logger.Warn("oauth assertion failed", "provider", p.Name(), "error", err)
		a.redirect(w, r, "/", session.StatusError, "Could not log in with "+p.Name())
		return
	}

	user, err := a.users.FindByProvider(ctx, assertion.Provider, assertion.UID)
	switch {
	case err == nil:
		s.SetFlash(session.StatusSuccess, "Logged in as returning user "+user.Username())
	case errors.Is(err, shared.ErrNotFound):
		user, err = a.createUser(ctx, assertion)
		var verr *models.ValidationError
		if errors.As(err, &verr) {
			a.redirect(w, r, "/", session.StatusError, "Could not create new user account: "+verr.Error())
			return
		}
		if err != nil {
			a.serverError(w, r, err)
			return
		}
		s.SetFlash(session.StatusSuccess, "Logged in as new user "+user.Username())
	default:
		a.serverError(w, r, err)
		return
	}

	s.SetUserID(user.ID())
	a.logger.Info("user logged in", "user", user.ID(), "provider", user.Provider())
	http.Redirect(w, r, "/", http.StatusFound)
}

// createUser builds and saves a user from assertion. Losing a creation race to another
// request for the same identity yields the row that request inserted.
func (a *App) createUser(ctx context.Context, assertion *server.Assertion) (*models.User, error) {
	user := models.NewUser(assertion.Username, assertion.Provider, assertion.UID)
	user.SetName(assertion.Name)
	user.SetEmail(assertion.Email)

	err := a.users.Create(ctx, user)
	if errors.Is(err, shared.ErrDuplicateUser) {
		return a.users.FindByProvider(ctx, assertion.Provider, assertion.UID)
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (a *App) logout(w http.ResponseWriter, r *http.Request) {
	s := session.FromContext(r.Context())
	if !s.ClearUserID() {
		a.redirect(w, r, "/", session.StatusWarning, "You were not logged in!")
		return
	}
	a.redirect(w, r, "/", session.StatusSuccess, "Successfully logged out!")
}
