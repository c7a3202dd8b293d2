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

// VoteRepository implements [models.Repository] for the [models.Vote] ledger.
type VoteRepository struct {
	db *sql.DB
}

// NewVoteRepository creates a new [VoteRepository] with the given database connection
func NewVoteRepository(db *sql.DB) *VoteRepository {
	return &VoteRepository{db: db}
}

// Create records a vote.
//
// No existence check precedes the insert. The (user_id, work_id) unique index rejects the second of
// two racing duplicates, which surfaces as [shared.ErrDuplicateVote].
// A vote for a missing user or work fails with [shared.ErrNotFound].
func (r *VoteRepository) Create(ctx context.Context, vote *models.Vote) error {
	if err := vote.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	id := shared.GenerateID()
	query := `INSERT INTO votes (id, user_id, work_id, created_at) VALUES (?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query, id, vote.UserID(), vote.WorkID(), vote.CreatedAt())
	switch {
	case shared.IsUniqueViolation(err):
		return fmt.Errorf("%w: user %s, work %s", shared.ErrDuplicateVote, vote.UserID(), vote.WorkID())
	case shared.IsForeignKeyViolation(err):
		return fmt.Errorf("%w: user %s or work %s", shared.ErrNotFound, vote.UserID(), vote.WorkID())
	case err != nil:
		return fmt.Errorf("failed to insert vote: %w", err)
	}

	vote.SetID(id)
	return nil
}

// Get retrieves a vote by ID.
func (r *VoteRepository) Get(ctx context.Context, id string) (*models.Vote, error) {
	query := `SELECT id, user_id, work_id, created_at FROM votes WHERE id = ?`

	vote, err := scanVote(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: vote %s", shared.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query vote: %w", err)
	}
	return vote, nil
}

// Delete removes a single vote.
func (r *VoteRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM votes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete vote: %w", err)
	}
	return checkAffected(result, fmt.Errorf("%w: vote %s", shared.ErrNotFound, id))
}

// List retrieves votes, newest first.
//
// Supported criteria: "user_id" (string), "work_id" (string).
func (r *VoteRepository) List(ctx context.Context, criteria map[string]any) ([]*models.Vote, error) {
	where, args := voteFilter(criteria)
	query := `SELECT id, user_id, work_id, created_at FROM votes` + where + ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query votes: %w", err)
	}
	defer rows.Close()

	var votes []*models.Vote
	for rows.Next() {
		vote, err := scanVote(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan vote: %w", err)
		}
		votes = append(votes, vote)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return votes, nil
}

// Count returns the number of votes matching criteria (same keys as [VoteRepository.List]).
func (r *VoteRepository) Count(ctx context.Context, criteria map[string]any) (int, error) {
	where, args := voteFilter(criteria)

	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM votes`+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count votes: %w", err)
	}
	return n, nil
}

func voteFilter(criteria map[string]any) (string, []any) {
	where := " WHERE 1 = 1"
	args := []any{}

	if userID, ok := criteria["user_id"].(string); ok && userID != "" {
		where += " AND user_id = ?"
		args = append(args, userID)
	}
	if workID, ok := criteria["work_id"].(string); ok && workID != "" {
		where += " AND work_id = ?"
		args = append(args, workID)
	}
	return where, args
}

func scanVote(s scanner) (*models.Vote, error) {
	var (
		id, userID, workID string
		createdAt          time.Time
	)
	if err := s.Scan(&id, &userID, &workID, &createdAt); err != nil {
		return nil, err
	}

	vote := models.NewVote(userID, workID)
	vote.SetID(id)
	vote.SetCreatedAt(createdAt)
	return vote, nil
}
