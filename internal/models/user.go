package models

import (
	"strings"
	"time"
)

// User is an account created from an OAuth provider assertion.
type User struct {
	id        string
	sequence  int
	username  string
	provider  string
	uid       string
	name      string
	email     string
	voteCount int
	createdAt time.Time
	updatedAt time.Time
}

// NewUser creates a [User] for the given provider identity.
func NewUser(username, provider, uid string) *User {
	now := time.Now().UTC()
	return &User{
		username:  strings.TrimSpace(username),
		provider:  provider,
		uid:       uid,
		createdAt: now,
		updatedAt: now,
	}
}

func (u *User) ID() string           { return u.id }
func (u *User) Sequence() int        { return u.sequence }
func (u *User) Username() string     { return u.username }
func (u *User) Provider() string     { return u.provider }
func (u *User) UID() string          { return u.uid }
func (u *User) Name() string         { return u.name }
func (u *User) Email() string        { return u.email }
func (u *User) VoteCount() int       { return u.voteCount }
func (u *User) CreatedAt() time.Time { return u.createdAt }
func (u *User) UpdatedAt() time.Time { return u.updatedAt }

func (u *User) SetID(id string)          { u.id = id }
func (u *User) SetSequence(seq int)      { u.sequence = seq }
func (u *User) SetName(name string)      { u.name = name }
func (u *User) SetEmail(email string)    { u.email = email }
func (u *User) SetVoteCount(n int)       { u.voteCount = n }
func (u *User) SetCreatedAt(t time.Time) { u.createdAt = t }
func (u *User) SetUpdatedAt(t time.Time) { u.updatedAt = t }

// DisplayName prefers the provider's full name, falling back to the username.
func (u *User) DisplayName() string {
	if u.name != "" {
		return u.name
	}
	return u.username
}

// Validate requires a username and a complete provider identity.
func (u *User) Validate() error {
	switch {
	case u.username == "":
		return invalid("username", "can't be blank")
	case u.provider == "":
		return invalid("provider", "can't be blank")
	case u.uid == "":
		return invalid("uid", "can't be blank")
	case u.email != "" && !strings.Contains(u.email, "@"):
		return invalid("email", "is invalid")
	}
	return nil
}
