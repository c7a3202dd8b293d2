package web

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/desertthunder/mediaranker/internal/models"
	"github.com/desertthunder/mediaranker/internal/session"
	"github.com/desertthunder/mediaranker/internal/shared"
)

// workForm carries submitted values back into a re-rendered form.
type workForm struct {
	Action          string
	Method          string
	Title           string
	Category        string
	Creator         string
	Description     string
	PublicationYear string
}

func formFromWork(w *models.Work) *workForm {
	return &workForm{
		Title:           w.Title(),
		Category:        w.Category().String(),
		Creator:         w.Creator(),
		Description:     w.Description(),
		PublicationYear: formatYear(w.PublicationYear()),
	}
}

func workField(name string) string { return "work[" + name + "]" }

// applyWorkForm copies submitted fields onto work and validates the result.
//
// With partial set, fields absent from the form keep their current values.
func applyWorkForm(work *models.Work, form url.Values, partial bool) error {
	field := func(name string) (string, bool) {
		values, ok := form[workField(name)]
		if !ok {
			return "", !partial
		}
		return values[0], true
	}

	if v, ok := field("title"); ok {
		work.SetTitle(v)
	}
	if v, ok := field("category"); ok {
		category, err := models.ParseCategory(v)
		if err != nil {
			return err
		}
		work.SetCategory(category)
	}
	if v, ok := field("creator"); ok {
		work.SetCreator(v)
	}
	if v, ok := field("description"); ok {
		work.SetDescription(v)
	}
	if v, ok := field("publication_year"); ok {
		year, err := parseYear(v)
		if err != nil {
			return err
		}
		work.SetPublicationYear(year)
	}
	return work.Validate()
}

func parseYear(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	year, err := strconv.Atoi(s)
	if err != nil {
		return 0, &models.ValidationError{Field: "publication_year", Message: "is not a number"}
	}
	return year, nil
}

func (a *App) root(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	grouped, err := a.works.ByCategory(ctx, rootLimit)
	if err != nil {
		a.serverError(w, r, err)
		return
	}

	spotlight, err := a.works.Spotlight(ctx)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		a.serverError(w, r, err)
		return
	}

	a.render(w, r, http.StatusOK, "root.html", view{Title: "Media Spotlight", Works: grouped, Spotlight: spotlight})
}

func (a *App) listWorks(w http.ResponseWriter, r *http.Request) {
	grouped, err := a.works.ByCategory(r.Context(), 0)
	if err != nil {
		a.serverError(w, r, err)
		return
	}
	a.render(w, r, http.StatusOK, "works.html", view{Title: "All Media", Works: grouped})
}

// loadWork fetches the {id} work, writing a 404 or 500 response when it can't.
func (a *App) loadWork(w http.ResponseWriter, r *http.Request) (*models.Work, bool) {
	work, err := a.works.Get(r.Context(), r.PathValue("id"))
	switch {
	case errors.Is(err, shared.ErrNotFound):
		a.notFound(w, r)
		return nil, false
	case err != nil:
		a.serverError(w, r, err)
		return nil, false
	}
	return work, true
}

func (a *App) showWork(w http.ResponseWriter, r *http.Request) {
	work, ok := a.loadWork(w, r)
	if !ok {
		return
	}

	voters, err := a.users.VotersFor(r.Context(), work.ID())
	if err != nil {
		a.serverError(w, r, err)
		return
	}
	a.render(w, r, http.StatusOK, "work.html", view{Title: work.Title(), Work: work, Voters: voters})
}

func (a *App) newWork(w http.ResponseWriter, r *http.Request) {
	form := &workForm{Action: "/works", Method: http.MethodPost, Category: r.URL.Query().Get("category")}
	a.render(w, r, http.StatusOK, "form.html", view{Title: "Add a new work", Form: form})
}

func (a *App) createWork(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		a.renderError(w, r, http.StatusBadRequest, "The submitted form could not be read.")
		return
	}

	work := models.NewWork("", "")
	work.SetUserID(UserFromContext(r.Context()).ID())

	if err := applyWorkForm(work, r.PostForm, false); err != nil {
		a.invalidWork(w, r, err, "Add a new work", &workForm{Action: "/works", Method: http.MethodPost}, r.PostForm)
		return
	}

	if err := a.works.Create(r.Context(), work); err != nil {
		a.invalidWork(w, r, err, "Add a new work", &workForm{Action: "/works", Method: http.MethodPost}, r.PostForm)
		return
	}

	a.logger.Info("work created", "work", work.ID(), "category", work.Category())
	a.redirect(w, r, "/works/"+work.ID(), session.StatusSuccess,
		fmt.Sprintf("Successfully created %s %q", work.Category(), work.Title()))
}

func (a *App) editWork(w http.ResponseWriter, r *http.Request) {
	work, ok := a.loadWork(w, r)
	if !ok {
		return
	}

	form := formFromWork(work)
	form.Action = "/works/" + work.ID()
	form.Method = http.MethodPatch
	a.render(w, r, http.StatusOK, "form.html", view{Title: "Edit " + work.Title(), Work: work, Form: form})
}

// updateWork applies a partial update. Nothing is written unless the merged work validates.
func (a *App) updateWork(w http.ResponseWriter, r *http.Request) {
	work, ok := a.loadWork(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		a.renderError(w, r, http.StatusBadRequest, "The submitted form could not be read.")
		return
	}

	form := formFromWork(work)
	form.Action = "/works/" + work.ID()
	form.Method = http.MethodPatch

	if err := applyWorkForm(work, r.PostForm, true); err != nil {
		a.invalidWork(w, r, err, "Edit work", form, r.PostForm)
		return
	}

	if err := a.works.Update(r.Context(), work); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			a.notFound(w, r)
			return
		}
		a.invalidWork(w, r, err, "Edit work", form, r.PostForm)
		return
	}

	a.redirect(w, r, "/works/"+work.ID(), session.StatusSuccess,
		fmt.Sprintf("Successfully updated %s %q", work.Category(), work.Title()))
}

// invalidWork re-renders the form with the submitted values and a 400 for validation errors.
// Any other error is a 500.
func (a *App) invalidWork(w http.ResponseWriter, r *http.Request, err error, title string, form *workForm, submitted url.Values) {
	if !errors.Is(err, shared.ErrInvalidInput) {
		a.serverError(w, r, err)
		return
	}

	for name, dst := range map[string]*string{
		"title":            &form.Title,
		"category":         &form.Category,
		"creator":          &form.Creator,
		"description":      &form.Description,
		"publication_year": &form.PublicationYear,
	} {
		if values, ok := submitted[workField(name)]; ok {
			*dst = values[0]
		}
	}

	a.render(w, r, http.StatusBadRequest, "form.html", view{Title: title, Form: form, Errors: []string{err.Error()}})
}

func (a *App) deleteWork(w http.ResponseWriter, r *http.Request) {
	work, ok := a.loadWork(w, r)
	if !ok {
		return
	}

	if err := a.works.Delete(r.Context(), work.ID()); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			a.notFound(w, r)
			return
		}
		a.serverError(w, r, err)
		return
	}

	a.logger.Info("work deleted", "work", work.ID())
	a.redirect(w, r, "/", session.StatusSuccess,
		fmt.Sprintf("Successfully destroyed %s %q", work.Category(), work.Title()))
}

// upvote records the current user's vote. The vote ledger's unique index decides duplicates.
func (a *App) upvote(w http.ResponseWriter, r *http.Request) {
	work, ok := a.loadWork(w, r)
	if !ok {
		return
	}

	user := UserFromContext(r.Context())
	err := a.votes.Create(r.Context(), models.NewVote(user.ID(), work.ID()))
	target := "/works/" + work.ID()

	switch {
	case err == nil:
		a.redirect(w, r, target, session.StatusSuccess, "Successfully upvoted!")
	case errors.Is(err, shared.ErrDuplicateVote):
		a.redirect(w, r, target, session.StatusFailure, "Could not upvote")
	case errors.Is(err, shared.ErrNotFound):
		a.notFound(w, r)
	default:
		a.serverError(w, r, err)
	}
}
