package models

import (
	"fmt"
	"strings"
	"time"
)

// Category classifies a [Work].
type Category string

const (
	CategoryAlbum Category = "album"
	CategoryBook  Category = "book"
	CategoryMovie Category = "movie"
)

// Categories returns every valid category in display order.
func Categories() []Category {
	return []Category{CategoryAlbum, CategoryBook, CategoryMovie}
}

// ParseCategory accepts exactly one of album, book, or movie. Case and surrounding space must match.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.Valid() {
		return "", invalid("category", fmt.Sprintf("%q is not one of album, book, movie", s))
	}
	return c, nil
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case CategoryAlbum, CategoryBook, CategoryMovie:
		return true
	}
	return false
}

// Plural returns the heading used when listing works of this category.
func (c Category) Plural() string {
	return string(c) + "s"
}

func (c Category) String() string { return string(c) }

const maxTitleLength = 255

// Work is a catalog entry users can upvote.
type Work struct {
	id              string
	sequence        int
	title           string
	category        Category
	creator         string
	description     string
	publicationYear int
	userID          string
	voteCount       int
	createdAt       time.Time
	updatedAt       time.Time
}

// NewWork creates a [Work] with the given title and category.
func NewWork(title string, category Category) *Work {
	now := time.Now().UTC()
	return &Work{
		title:     strings.TrimSpace(title),
		category:  category,
		createdAt: now,
		updatedAt: now,
	}
}

func (w *Work) ID() string           { return w.id }
func (w *Work) Sequence() int        { return w.sequence }
func (w *Work) Title() string        { return w.title }
func (w *Work) Category() Category   { return w.category }
func (w *Work) Creator() string      { return w.creator }
func (w *Work) Description() string  { return w.description }
func (w *Work) PublicationYear() int { return w.publicationYear }
func (w *Work) UserID() string       { return w.userID }
func (w *Work) VoteCount() int       { return w.voteCount }
func (w *Work) CreatedAt() time.Time { return w.createdAt }
func (w *Work) UpdatedAt() time.Time { return w.updatedAt }

func (w *Work) SetID(id string)             { w.id = id }
func (w *Work) SetSequence(seq int)         { w.sequence = seq }
func (w *Work) SetTitle(title string)       { w.title = strings.TrimSpace(title) }
func (w *Work) SetCategory(c Category)      { w.category = c }
func (w *Work) SetCreator(creator string)   { w.creator = strings.TrimSpace(creator) }
func (w *Work) SetDescription(desc string)  { w.description = strings.TrimSpace(desc) }
func (w *Work) SetPublicationYear(year int) { w.publicationYear = year }
func (w *Work) SetUserID(id string)         { w.userID = id }
func (w *Work) SetVoteCount(n int)          { w.voteCount = n }
func (w *Work) SetCreatedAt(t time.Time)    { w.createdAt = t }
func (w *Work) SetUpdatedAt(t time.Time)    { w.updatedAt = t }

// Validate requires a title and a known category.
func (w *Work) Validate() error {
	switch {
	case w.title == "":
		return invalid("title", "can't be blank")
	case len(w.title) > maxTitleLength:
		return invalid("title", fmt.Sprintf("is too long (maximum is %d characters)", maxTitleLength))
	case !w.category.Valid():
		return invalid("category", fmt.Sprintf("%q is not one of album, book, movie", string(w.category)))
	case w.publicationYear < 0:
		return invalid("publication_year", "must be positive")
	}
	return nil
}
