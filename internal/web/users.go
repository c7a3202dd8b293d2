package web

import (
	"errors"
	"net/http"

	"github.com/desertthunder/mediaranker/internal/models"
	"github.com/desertthunder/mediaranker/internal/session"
	"github.com/desertthunder/mediaranker/internal/shared"
)

func (a *App) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := a.users.List(r.Context(), nil)
	if err != nil {
		a.serverError(w, r, err)
		return
	}
	a.render(w, r, http.StatusOK, "users.html", view{Title: "Users", Users: users})
}

func (a *App) showUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := a.users.Get(ctx, r.PathValue("id"))
	if errors.Is(err, shared.ErrNotFound) {
		a.notFound(w, r)
		return
	}
	if err != nil {
		a.serverError(w, r, err)
		return
	}

	voted, err := a.works.List(ctx, map[string]any{"voted_by": user.ID()})
	if err != nil {
		a.serverError(w, r, err)
		return
	}

	a.render(w, r, http.StatusOK, "user.html", view{Title: user.Username(), User: user, Works: groupByCategory(voted)})
}

func (a *App) currentUser(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		a.redirect(w, r, "/", session.StatusFailure, msgLoginRequired)
		return
	}
	http.Redirect(w, r, "/users/"+user.ID(), http.StatusFound)
}

// groupByCategory buckets works by category, keeping every category present.
func groupByCategory(works []*models.Work) map[models.Category][]*models.Work {
	grouped := make(map[models.Category][]*models.Work, len(models.Categories()))
	for _, category := range models.Categories() {
		grouped[category] = nil
	}
	for _, work := range works {
		grouped[work.Category()] = append(grouped[work.Category()], work)
	}
	return grouped
}
