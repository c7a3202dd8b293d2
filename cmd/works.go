package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/mediaranker/internal/formatter"
	"github.com/desertthunder/mediaranker/internal/models"
	"github.com/desertthunder/mediaranker/internal/shared"
	"github.com/urfave/cli/v3"
)

// workJSON is the exported shape of a work.
type workJSON struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Category        string `json:"category"`
	Creator         string `json:"creator,omitempty"`
	Description     string `json:"description,omitempty"`
	PublicationYear int    `json:"publication_year,omitempty"`
	Votes           int    `json:"votes"`
}

func toWorkJSON(w *models.Work) workJSON {
	return workJSON{
		ID:              w.ID(),
		Title:           w.Title(),
		Category:        w.Category().String(),
		Creator:         w.Creator(),
		Description:     w.Description(),
		PublicationYear: w.PublicationYear(),
		Votes:           w.VoteCount(),
	}
}

// WorksList prints the catalog grouped by category and ranked by votes.
func (r *Runner) WorksList(ctx context.Context, cmd *cli.Command) error {
	_, works, err := r.repositories()
	if err != nil {
		return err
	}

	categories := models.Categories()
	if raw := cmd.String("category"); raw != "" {
		category, err := models.ParseCategory(raw)
		if err != nil {
			return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
		}
		categories = []models.Category{category}
	}

	grouped, err := works.ByCategory(ctx, int(cmd.Int("limit")))
	if err != nil {
		return fmt.Errorf("failed to list works: %w", err)
	}

	if cmd.Bool("json") {
		out := make(map[string][]workJSON, len(categories))
		for _, category := range categories {
			list := make([]workJSON, 0, len(grouped[category]))
			for _, w := range grouped[category] {
				list = append(list, toWorkJSON(w))
			}
			out[category.Plural()] = list
		}
		return r.writeJSON(out, cmd.Bool("pretty"))
	}

	for _, category := range categories {
		r.writePlainHeader(fmt.Sprintf("%s (%d)", category.Plural(), len(grouped[category])))
		for i, w := range grouped[category] {
			r.writePlain("%3d. %-40s %4d votes", i+1, w.Title(), w.VoteCount())
			if w.Creator() != "" {
				r.writePlain("  %s", w.Creator())
			}
			r.writePlain("\n")
		}
	}
	return nil
}

// WorksAdd creates a work from flags.
func (r *Runner) WorksAdd(ctx context.Context, cmd *cli.Command) error {
	_, works, err := r.repositories()
	if err != nil {
		return err
	}

	category, err := models.ParseCategory(cmd.String("category"))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}

	work := models.NewWork(cmd.String("title"), category)
	work.SetCreator(cmd.String("creator"))
	work.SetDescription(cmd.String("description"))
	work.SetPublicationYear(int(cmd.Int("year")))

	if err := works.Create(ctx, work); err != nil {
		return fmt.Errorf("failed to add work: %w", err)
	}

	r.logger.Info("work added", "id", work.ID(), "category", work.Category())
	return r.writePlain("✓ Added %s %q (%s)\n", work.Category(), work.Title(), work.ID())
}

// WorksDelete removes a work; its votes are removed with it.
func (r *Runner) WorksDelete(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: work id", shared.ErrMissingArgument)
	}

	_, works, err := r.repositories()
	if err != nil {
		return err
	}

	if err := works.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete work: %w", err)
	}
	return r.writePlain("✓ Deleted %s\n", id)
}

// WorksExport writes the ranked catalog to a CSV, Markdown or text file.
func (r *Runner) WorksExport(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	var categories []models.Category
	if raw := cmd.String("category"); raw != "" {
		category, err := models.ParseCategory(raw)
		if err != nil {
			return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
		}
		categories = append(categories, category)
	}

	_, works, err := r.repositories()
	if err != nil {
		return err
	}

	grouped, err := works.ByCategory(ctx, 0)
	if err != nil {
		return fmt.Errorf("failed to list works: %w", err)
	}

	catalog := formatter.NewCatalog(grouped, categories...)
	path, err := formatter.WriteExport(catalog, format, cmd.String("output"))
	if err != nil {
		return err
	}

	r.logger.Info("catalog exported", "path", path, "format", format, "works", catalog.Total())
	return r.writePlain("✓ Exported %d works to %s\n", catalog.Total(), path)
}
