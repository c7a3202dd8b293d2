package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/mediaranker/internal/models"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgCatalogFetched MsgKind = iota
	MsgVotersFetched
)

type catalogData struct {
	catalog map[models.Category][]*models.Work
	err     error
}

type votersData struct {
	work   *models.Work
	voters []*models.User
	err    error
}

// catalogFetchedMsg is the constructor for [MsgCatalogFetched]
func catalogFetchedMsg(catalog map[models.Category][]*models.Work, err error) Msg {
	return Msg{kind: MsgCatalogFetched, data: catalogData{catalog: catalog, err: err}}
}

// votersFetchedMsg is the constructor for [MsgVotersFetched]
func votersFetchedMsg(work *models.Work, voters []*models.User, err error) Msg {
	return Msg{kind: MsgVotersFetched, data: votersData{work: work, voters: voters, err: err}}
}
