package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/mediaranker/internal/models"
	"github.com/desertthunder/mediaranker/internal/shared"
)

const workColumns = `
	w.id, w.sequence, w.title, w.category, w.creator, w.description, w.publication_year, w.user_id,
	w.created_at, w.updated_at,
	(SELECT COUNT(*) FROM votes v WHERE v.work_id = w.id) AS vote_count
`

// Orderings accepted by the "order" criterion of [WorkRepository.List].
const (
	OrderBySequence = "sequence"
	OrderByVotes    = "votes"
)

// WorkRepository implements [models.Repository] for [models.Work] persistence.
type WorkRepository struct {
	db *sql.DB
}

// NewWorkRepository creates a new [WorkRepository] with the given database connection
func NewWorkRepository(db *sql.DB) *WorkRepository {
	return &WorkRepository{db: db}
}

// Create validates and inserts a new work with a generated ID and sequence.
func (r *WorkRepository) Create(ctx context.Context, work *models.Work) error {
	if err := work.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	sequence, err := nextSequence(ctx, tx, "works")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	query := `
		INSERT INTO works (id, sequence, title, category, creator, description, publication_year, user_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = tx.ExecContext(ctx, query,
		id, sequence, work.Title(), string(work.Category()), work.Creator(), work.Description(),
		nullInt(work.PublicationYear()), nullString(work.UserID()), work.CreatedAt(), work.UpdatedAt(),
	)
	if shared.IsForeignKeyViolation(err) {
		return fmt.Errorf("%w: owner %s", shared.ErrNotFound, work.UserID())
	}
	if err != nil {
		return fmt.Errorf("failed to insert work: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit work: %w", err)
	}

	work.SetID(id)
	work.SetSequence(sequence)
	return nil
}

// Get retrieves a work by ID along with its vote count.
func (r *WorkRepository) Get(ctx context.Context, id string) (*models.Work, error) {
	query := `SELECT ` + workColumns + ` FROM works w WHERE w.id = ?`

	work, err := scanWork(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: work %s", shared.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query work: %w", err)
	}
	return work, nil
}

// Update validates and saves every editable field of work.
func (r *WorkRepository) Update(ctx context.Context, work *models.Work) error {
	if err := work.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now().UTC()
	query := `
		UPDATE works
		SET title = ?, category = ?, creator = ?, description = ?, publication_year = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		work.Title(), string(work.Category()), work.Creator(), work.Description(),
		nullInt(work.PublicationYear()), now, work.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update work: %w", err)
	}
	if err := checkAffected(result, fmt.Errorf("%w: work %s", shared.ErrNotFound, work.ID())); err != nil {
		return err
	}

	work.SetUpdatedAt(now)
	return nil
}

// Delete removes a work. Its votes are removed by the ON DELETE CASCADE foreign key.
func (r *WorkRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM works WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete work: %w", err)
	}
	return checkAffected(result, fmt.Errorf("%w: work %s", shared.ErrNotFound, id))
}

// List retrieves works matching criteria.
//
// Supported criteria:
//   - "category" ([models.Category])
//   - "user_id" (string): works owned by a user
//   - "voted_by" (string): works a user has upvoted
//   - "order" (string): [OrderBySequence] (default) or [OrderByVotes]
//   - "limit" (int)
func (r *WorkRepository) List(ctx context.Context, criteria map[string]any) ([]*models.Work, error) {
	query := `SELECT ` + workColumns + ` FROM works w WHERE 1 = 1`
	args := []any{}

	if category, ok := criteria["category"].(models.Category); ok && category != "" {
		query += " AND w.category = ?"
		args = append(args, string(category))
	}
	if userID, ok := criteria["user_id"].(string); ok && userID != "" {
		query += " AND w.user_id = ?"
		args = append(args, userID)
	}
	if voter, ok := criteria["voted_by"].(string); ok && voter != "" {
		query += " AND EXISTS (SELECT 1 FROM votes vb WHERE vb.work_id = w.id AND vb.user_id = ?)"
		args = append(args, voter)
	}

	switch criteria["order"] {
	case OrderByVotes:
		query += " ORDER BY vote_count DESC, w.sequence ASC"
	default:
		query += " ORDER BY w.sequence ASC"
	}

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query works: %w", err)
	}
	defer rows.Close()

	var works []*models.Work
	for rows.Next() {
		work, err := scanWork(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan work: %w", err)
		}
		works = append(works, work)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return works, nil
}

// ByCategory returns works grouped by category, each group ordered by votes.
//
// limit caps each group; zero means unlimited. Every category is present in the result, possibly empty.
func (r *WorkRepository) ByCategory(ctx context.Context, limit int) (map[models.Category][]*models.Work, error) {
	grouped := make(map[models.Category][]*models.Work, len(models.Categories()))
	for _, category := range models.Categories() {
		works, err := r.List(ctx, map[string]any{"category": category, "order": OrderByVotes, "limit": limit})
		if err != nil {
			return nil, err
		}
		grouped[category] = works
	}
	return grouped, nil
}

// Spotlight returns the most upvoted work, or [shared.ErrNotFound] when the catalog is empty.
func (r *WorkRepository) Spotlight(ctx context.Context) (*models.Work, error) {
	works, err := r.List(ctx, map[string]any{"order": OrderByVotes, "limit": 1})
	if err != nil {
		return nil, err
	}
	if len(works) == 0 {
		return nil, fmt.Errorf("%w: no works", shared.ErrNotFound)
	}
	return works[0], nil
}

// Count returns the number of works.
func (r *WorkRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM works`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count works: %w", err)
	}
	return n, nil
}

func scanWork(s scanner) (*models.Work, error) {
	var (
		id, title, category, creator, description string
		sequence, voteCount                       int
		year                                      sql.NullInt64
		userID                                    sql.NullString
		createdAt, updatedAt                      time.Time
	)

	err := s.Scan(&id, &sequence, &title, &category, &creator, &description, &year, &userID, &createdAt, &updatedAt, &voteCount)
	if err != nil {
		return nil, err
	}

	work := models.NewWork(title, models.Category(category))
	work.SetID(id)
	work.SetSequence(sequence)
	work.SetCreator(creator)
	work.SetDescription(description)
	work.SetPublicationYear(int(year.Int64))
	work.SetUserID(userID.String)
	work.SetVoteCount(voteCount)
	work.SetCreatedAt(createdAt)
	work.SetUpdatedAt(updatedAt)
	return work, nil
}

func nullInt(v int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(v), Valid: v != 0}
}

func nullString(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}
