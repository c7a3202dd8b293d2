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

const userColumns = `
	u.id, u.sequence, u.username, u.provider, u.uid, u.name, u.email, u.created_at, u.updated_at,
	(SELECT COUNT(*) FROM votes v WHERE v.user_id = u.id) AS vote_count
`

// UserRepository implements [models.Repository] for [models.User] persistence.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new [UserRepository] with the given database connection
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user with a generated ID and sequence.
//
// A second user for the same (provider, uid) fails with [shared.ErrDuplicateUser].
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if err := user.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	sequence, err := nextSequence(ctx, tx, "users")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	query := `
		INSERT INTO users (id, sequence, username, provider, uid, name, email, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = tx.ExecContext(ctx, query,
		id, sequence, user.Username(), user.Provider(), user.UID(), user.Name(), user.Email(),
		user.CreatedAt(), user.UpdatedAt(),
	)
	if shared.IsUniqueViolation(err) {
		return fmt.Errorf("%w: %s/%s", shared.ErrDuplicateUser, user.Provider(), user.UID())
	}
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit user: %w", err)
	}

	user.SetID(id)
	user.SetSequence(sequence)
	return nil
}

// Get retrieves a user by ID.
func (r *UserRepository) Get(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users u WHERE u.id = ?`
	return r.getOne(ctx, fmt.Sprintf("user %s", id), query, id)
}

// FindByProvider retrieves the user registered for an OAuth identity.
func (r *UserRepository) FindByProvider(ctx context.Context, provider, uid string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users u WHERE u.provider = ? AND u.uid = ?`
	return r.getOne(ctx, fmt.Sprintf("user %s/%s", provider, uid), query, provider, uid)
}

func (r *UserRepository) getOne(ctx context.Context, what, query string, args ...any) (*models.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrNotFound, what)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return user, nil
}

// Update refreshes a user's profile fields from the provider.
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	if err := user.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now().UTC()
	query := `UPDATE users SET username = ?, name = ?, email = ?, updated_at = ? WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, user.Username(), user.Name(), user.Email(), now, user.ID())
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if err := checkAffected(result, fmt.Errorf("%w: user %s", shared.ErrNotFound, user.ID())); err != nil {
		return err
	}

	user.SetUpdatedAt(now)
	return nil
}

// Delete removes a user; their votes cascade and their works become unowned.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return checkAffected(result, fmt.Errorf("%w: user %s", shared.ErrNotFound, id))
}

// List retrieves users ordered by sequence.
//
// Supported criteria: "provider" (string).
func (r *UserRepository) List(ctx context.Context, criteria map[string]any) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users u WHERE 1 = 1`
	args := []any{}

	if provider, ok := criteria["provider"].(string); ok && provider != "" {
		query += " AND u.provider = ?"
		args = append(args, provider)
	}

	query += " ORDER BY u.sequence ASC"
	return r.list(ctx, query, args...)
}

// VotersFor lists the users who upvoted workID, earliest vote first.
func (r *UserRepository) VotersFor(ctx context.Context, workID string) ([]*models.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users u
		JOIN votes vt ON vt.user_id = u.id
		WHERE vt.work_id = ?
		ORDER BY vt.created_at ASC, u.sequence ASC
	`
	return r.list(ctx, query, workID)
}

// Count returns the number of users.
func (r *UserRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return n, nil
}

func (r *UserRepository) list(ctx context.Context, query string, args ...any) ([]*models.User, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return users, nil
}

func scanUser(s scanner) (*models.User, error) {
	var (
		id, username, provider, uid, name, email string
		sequence, voteCount                      int
		createdAt, updatedAt                     time.Time
	)

	if err := s.Scan(&id, &sequence, &username, &provider, &uid, &name, &email, &createdAt, &updatedAt, &voteCount); err != nil {
		return nil, err
	}

	user := models.NewUser(username, provider, uid)
	user.SetID(id)
	user.SetSequence(sequence)
	user.SetName(name)
	user.SetEmail(email)
	user.SetVoteCount(voteCount)
	user.SetCreatedAt(createdAt)
	user.SetUpdatedAt(updatedAt)
	return user, nil
}
