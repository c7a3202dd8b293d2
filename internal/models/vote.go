package models

import "time"

// Vote records one user's upvote for one work. Votes are never updated.
type Vote struct {
	id        string
	userID    string
	workID    string
	createdAt time.Time
}

// NewVote creates a [Vote] from userID for workID.
func NewVote(userID, workID string) *Vote {
	return &Vote{userID: userID, workID: workID, createdAt: time.Now().UTC()}
}

func (v *Vote) ID() string           { return v.id }
func (v *Vote) UserID() string       { return v.userID }
func (v *Vote) WorkID() string       { return v.workID }
func (v *Vote) CreatedAt() time.Time { return v.createdAt }

func (v *Vote) SetID(id string)          { v.id = id }
func (v *Vote) SetCreatedAt(t time.Time) { v.createdAt = t }

// Validate requires both sides of the pair.
func (v *Vote) Validate() error {
	if v.userID == "" {
		return invalid("user", "must exist")
	}
	if v.workID == "" {
		return invalid("work", "must exist")
	}
	return nil
}
