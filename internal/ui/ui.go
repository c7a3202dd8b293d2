package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/mediaranker/internal/models"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	CategoryView ViewState = iota
	WorkListView
	WorkDetailView
)

const (
	defaultWidth  = 80
	defaultHeight = 24
)

// WorkSource loads works grouped by category and ranked by votes.
type WorkSource interface {
	ByCategory(ctx context.Context, limit int) (map[models.Category][]*models.Work, error)
}

// VoterSource loads the users who upvoted a work.
type VoterSource interface {
	VotersFor(ctx context.Context, workID string) ([]*models.User, error)
}

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	view         ViewState
	works        WorkSource
	voterSource  VoterSource
	width        int
	height       int
	catalog      map[models.Category][]*models.Work
	categoryList list.Model
	workList     list.Model
	category     models.Category
	selected     *models.Work
	voters       []*models.User
	err          error
	help         help.Model
	keys         keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, works WorkSource, voters VoterSource) *Model {
	return &Model{
		ctx:         ctx,
		view:        CategoryView,
		works:       works,
		voterSource: voters,
		width:       defaultWidth,
		height:      defaultHeight,
		help:        help.New(),
		keys:        newKeyMap(),
	}
}

// Init initializes the TUI by fetching the catalog.
func (m *Model) Init() tea.Cmd {
	return m.fetchCatalog()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.loaded() {
			m.categoryList.SetSize(m.listSize())
		}
		if m.category != "" {
			m.workList.SetSize(m.listSize())
		}
		return m, nil

	case tea.KeyMsg:
		if m.err != nil {
			if key.Matches(msg, m.keys.quit) {
				return m, tea.Quit
			}
			return m, nil
		}

		switch m.view {
		case CategoryView:
			return m.handleCategoryKeys(msg)
		case WorkListView:
			return m.handleWorkListKeys(msg)
		case WorkDetailView:
			return m.handleDetailKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateLists(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgCatalogFetched:
		data := msg.data.(catalogData)
		if data.err != nil {
			m.err = data.err
			return m, nil
		}
		m.catalog = data.catalog
		if m.catalog == nil {
			m.catalog = map[models.Category][]*models.Work{}
		}
		m.categoryList = m.newList("Media Ranker", m.categoryItems())
		if m.view != CategoryView {
			m.workList = m.newList(capitalize(m.category.Plural()), m.workItems(m.category))
		}

	case MsgVotersFetched:
		data := msg.data.(votersData)
		if data.err != nil {
			m.err = data.err
			return m, nil
		}
		m.selected = data.work
		m.voters = data.voters
		m.view = WorkDetailView
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case CategoryView:
		return m.renderCategories()
	case WorkListView:
		return m.renderWorkList()
	case WorkDetailView:
		return m.renderDetail()
	default:
		return ""
	}
}

// loaded reports whether the first catalog fetch has completed and the lists exist.
func (m *Model) loaded() bool {
	return m.catalog != nil
}

// filtering reports whether l is capturing keystrokes for its filter input.
func filtering(l list.Model) bool {
	return l.FilterState() == list.Filtering
}

func (m *Model) handleCategoryKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if !m.loaded() {
		if key.Matches(msg, m.keys.quit) {
			return m, tea.Quit
		}
		return m, nil
	}

	if !filtering(m.categoryList) {
		switch {
		case key.Matches(msg, m.keys.quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.refresh):
			return m, m.fetchCatalog()
		case key.Matches(msg, m.keys.enter):
			if item, ok := m.categoryList.SelectedItem().(categoryItem); ok {
				m.category = item.category
				m.workList = m.newList(capitalize(item.category.Plural()), m.workItems(item.category))
				m.view = WorkListView
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.categoryList, cmd = m.categoryList.Update(msg)
	return m, cmd
}

func (m *Model) handleWorkListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if !filtering(m.workList) {
		switch {
		case key.Matches(msg, m.keys.quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.back):
			m.view = CategoryView
			return m, nil
		case key.Matches(msg, m.keys.refresh):
			return m, m.fetchCatalog()
		case key.Matches(msg, m.keys.enter):
			if item, ok := m.workList.SelectedItem().(workItem); ok {
				return m, m.fetchVoters(item.work)
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.workList, cmd = m.workList.Update(msg)
	return m, cmd
}

func (m *Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = WorkListView
		m.selected = nil
		m.voters = nil
	}
	return m, nil
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	if !m.loaded() {
		return m, nil
	}

	var cmd tea.Cmd
	switch m.view {
	case CategoryView:
		m.categoryList, cmd = m.categoryList.Update(msg)
	case WorkListView:
		m.workList, cmd = m.workList.Update(msg)
	}
	return m, cmd
}

func (m *Model) listSize() (int, int) {
	return max(m.width-4, 0), max(m.height-8, 0)
}

func (m *Model) newList(title string, items []list.Item) list.Model {
	w, h := m.listSize()
	l := list.New(items, list.NewDefaultDelegate(), w, h)
	l.Title = title
	return l
}

func (m *Model) categoryItems() []list.Item {
	categories := models.Categories()
	items := make([]list.Item, len(categories))
	for i, category := range categories {
		items[i] = categoryItem{category: category, works: m.catalog[category]}
	}
	return items
}

func (m *Model) workItems(category models.Category) []list.Item {
	works := m.catalog[category]
	items := make([]list.Item, len(works))
	for i, work := range works {
		items[i] = workItem{rank: i + 1, work: work}
	}
	return items
}

func (m *Model) fetchCatalog() tea.Cmd {
	return func() tea.Msg {
		catalog, err := m.works.ByCategory(m.ctx, 0)
		return catalogFetchedMsg(catalog, err)
	}
}

func (m *Model) fetchVoters(work *models.Work) tea.Cmd {
	return func() tea.Msg {
		voters, err := m.voterSource.VotersFor(m.ctx, work.ID())
		return votersFetchedMsg(work, voters, err)
	}
}

func (m *Model) renderCategories() string {
	if !m.loaded() {
		return styles.help.Render("Loading catalog...")
	}

	helpKeys := []key.Binding{m.keys.enter, m.keys.refresh, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.categoryList.View(), helpView)
}

func (m *Model) renderWorkList() string {
	detailKey := key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "voters"),
	)
	helpKeys := []key.Binding{detailKey, m.keys.back, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.workList.View(), helpView)
}

func (m *Model) renderDetail() string {
	if m.selected == nil {
		return styles.warn.Render("No work selected\n\nPress esc to go back")
	}

	w := m.selected
	title := styles.title.Render(w.Title())

	var b strings.Builder
	fmt.Fprintf(&b, "Category: %s\n", capitalize(w.Category().String()))
	if w.Creator() != "" {
		fmt.Fprintf(&b, "Created by: %s\n", w.Creator())
	}
	if w.PublicationYear() != 0 {
		fmt.Fprintf(&b, "Published: %d\n", w.PublicationYear())
	}
	if w.Description() != "" {
		fmt.Fprintf(&b, "\n%s\n", w.Description())
	}

	votes := styles.ok.Render(pluralize(w.VoteCount(), "vote"))
	fmt.Fprintf(&b, "\n%s\n", votes)
	for _, voter := range m.voters {
		fmt.Fprintf(&b, "  • %s\n", voter.Username())
	}

	helpKeys := []key.Binding{m.keys.back, m.keys.quit}
	helpView := styles.help.Render(m.help.ShortHelpView(helpKeys))

	return fmt.Sprintf("%s\n%s\n%s", title, b.String(), helpView)
}
