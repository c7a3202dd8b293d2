package main

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"
)

type userJSON struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Name      string    `json:"name,omitempty"`
	Provider  string    `json:"provider"`
	Votes     int       `json:"votes"`
	CreatedAt time.Time `json:"created_at"`
}

// UsersList prints every user with their vote count.
func (r *Runner) UsersList(ctx context.Context, cmd *cli.Command) error {
	users, _, err := r.repositories()
	if err != nil {
		return err
	}

	list, err := users.List(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}

	if cmd.Bool("json") {
		out := make([]userJSON, 0, len(list))
		for _, u := range list {
			out = append(out, userJSON{
				ID:        u.ID(),
				Username:  u.Username(),
				Name:      u.Name(),
				Provider:  u.Provider(),
				Votes:     u.VoteCount(),
				CreatedAt: u.CreatedAt(),
			})
		}
		return r.writeJSON(out, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("Users (%d)", len(list)))
	for _, u := range list {
		r.writePlain("%-24s %4d votes  joined %s\n", u.Username(), u.VoteCount(), u.CreatedAt().Format("2006-01-02"))
	}
	return nil
}
