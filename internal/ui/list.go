package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/mediaranker/internal/models"
)

var (
	_ list.Item = categoryItem{}
	_ list.Item = workItem{}
)

// categoryItem wraps a [models.Category] and its ranked works to implement [list.Item].
type categoryItem struct {
	category models.Category
	works    []*models.Work
}

func (i categoryItem) FilterValue() string { return i.category.String() }
func (i categoryItem) Title() string       { return capitalize(i.category.Plural()) }
func (i categoryItem) Description() string {
	if len(i.works) == 0 {
		return "no works yet"
	}
	leader := i.works[0]
	return fmt.Sprintf("%s • top: %s (%s)", pluralize(len(i.works), "work"), leader.Title(), pluralize(leader.VoteCount(), "vote"))
}

// workItem wraps a ranked [models.Work] to implement [list.Item].
type workItem struct {
	rank int
	work *models.Work
}

func (i workItem) FilterValue() string { return i.work.Title() }
func (i workItem) Title() string       { return fmt.Sprintf("%d. %s", i.rank, i.work.Title()) }
func (i workItem) Description() string {
	desc := pluralize(i.work.VoteCount(), "vote")
	if i.work.Creator() != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.work.Creator())
	}
	if i.work.PublicationYear() != 0 {
		desc = fmt.Sprintf("%s • %d", desc, i.work.PublicationYear())
	}
	return desc
}

func pluralize(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
