package main

import (
	"context"
	"log/slog"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"helios/internal/config"
	"helios/internal/domain"
	"helios/internal/session"
)

// backend is the subset of the SDK the client uses.
type backend interface {
	ListStories(ctx context.Context) ([]domain.StorySummary, error)
	GetStory(ctx context.Context, id string) (*domain.StoryInsights, error)
	GetPortfolio(ctx context.Context) (*domain.Portfolio, error)
	SubmitTrade(ctx context.Context, req domain.TradeRequest) (*domain.Portfolio, error)
}

// Messages.
type storiesLoadedMsg struct {
	stories []domain.StorySummary
	err     error
}

type insightsLoadedMsg struct {
	req      session.InsightsRequest
	insights *domain.StoryInsights
	err      error
}

type portfolioLoadedMsg struct {
	portfolio *domain.Portfolio
	err       error
}

type tradeDoneMsg struct {
	req       domain.TradeRequest
	portfolio *domain.Portfolio
	err       error
}

// pane is the focused area of the screen.
type pane int

const (
	paneStories pane = iota
	paneRecommendations
	paneTicket
	paneCount
)

// ticketField is the focused field of the trade ticket.
type ticketField int

const (
	fieldSymbol ticketField = iota
	fieldSide
	fieldQuantity
	fieldPrice
	fieldNote
	fieldCount
)

type keyMap struct {
	Quit    key.Binding
	Refresh key.Binding
	Focus   key.Binding
	Up      key.Binding
	Down    key.Binding
	Enter   key.Binding
	Side    key.Binding
	Submit  key.Binding
}

var keys = keyMap{
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c")),
	Refresh: key.NewBinding(key.WithKeys("r")),
	Focus:   key.NewBinding(key.WithKeys("tab")),
	Up:      key.NewBinding(key.WithKeys("up")),
	Down:    key.NewBinding(key.WithKeys("down")),
	Enter:   key.NewBinding(key.WithKeys("enter")),
	Side:    key.NewBinding(key.WithKeys("left", "right")),
	Submit:  key.NewBinding(key.WithKeys("ctrl+s")),
}

// Model.
type model struct {
	api    backend
	sess   *session.Coordinator
	cfg    *config.Config
	logger *slog.Logger

	viewport      viewport.Model
	ready         bool
	width, height int

	focus     pane
	storyIdx  int
	recIdx    int
	field     ticketField
	inputs    map[ticketField]*textinput.Model
	ticketRev int
}

func newModel(api backend, sess *session.Coordinator, cfg *config.Config, logger *slog.Logger) model {
	newInput := func(placeholder string, limit int) *textinput.Model {
		in := textinput.New()
		in.Placeholder = placeholder
		in.CharLimit = limit
		in.Width = 24
		return &in
	}
	m := model{
		api:    api,
		sess:   sess,
		cfg:    cfg,
		logger: logger,
		inputs: map[ticketField]*textinput.Model{
			fieldSymbol:   newInput("Symbol", 12),
			fieldQuantity: newInput("Quantity", 9),
			fieldPrice:    newInput("Price", 12),
			fieldNote:     newInput("Note", 200),
		},
	}
	m.syncTicket()
	return m
}

func (m model) Init() tea.Cmd {
	m.sess.BeginFeedLoad(false)
	return tea.Batch(m.loadStoriesCmd(), m.loadPortfolioCmd())
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		cmd = m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		vpHeight := m.height - 2
		if vpHeight < 1 {
			vpHeight = 1
		}
		if !m.ready {
			m.viewport = viewport.New(m.width, vpHeight)
			m.viewport.MouseWheelEnabled = true
			m.ready = true
		} else {
			m.viewport.Width = m.width
			m.viewport.Height = vpHeight
		}

	case storiesLoadedMsg:
		req := m.sess.StoriesLoaded(msg.stories, msg.err)
		m.syncStoryCursor()
		m.recIdx = 0
		cmd = m.loadInsightsCmd(req)

	case insightsLoadedMsg:
		m.sess.InsightsLoaded(msg.req, msg.insights, msg.err)
		m.recIdx = 0

	case portfolioLoadedMsg:
		m.sess.PortfolioLoaded(msg.portfolio, msg.err)

	case tradeDoneMsg:
		m.sess.TradeCompleted(msg.req, msg.portfolio, msg.err)

	default:
		if m.ready {
			m.viewport, cmd = m.viewport.Update(msg)
		}
	}

	m.syncTicket()
	if m.ready {
		m.viewport.SetContent(m.renderContent())
	}
	return m, cmd
}

func (m *model) handleKey(msg tea.KeyMsg) tea.Cmd {
	editing := m.focus == paneTicket && m.field != fieldSide

	switch {
	case msg.String() == "ctrl+c", key.Matches(msg, keys.Quit) && !editing:
		return tea.Quit

	case key.Matches(msg, keys.Focus):
		m.setFocus((m.focus + 1) % paneCount)
		return nil

	case key.Matches(msg, keys.Submit):
		return m.submitTradeCmd()

	case key.Matches(msg, keys.Refresh) && !editing:
		m.sess.BeginFeedLoad(true)
		return tea.Batch(m.loadStoriesCmd(), m.loadPortfolioCmd())
	}

	switch m.focus {
	case paneStories:
		stories := m.sess.Stories()
		switch {
		case key.Matches(msg, keys.Up):
			if m.storyIdx > 0 {
				m.storyIdx--
			}
		case key.Matches(msg, keys.Down):
			if m.storyIdx < len(stories)-1 {
				m.storyIdx++
			}
		case key.Matches(msg, keys.Enter):
			if m.storyIdx < len(stories) {
				m.recIdx = 0
				return m.loadInsightsCmd(m.sess.SelectStory(stories[m.storyIdx].ID))
			}
		default:
			return m.scroll(msg)
		}

	case paneRecommendations:
		recs := m.recommendations()
		switch {
		case key.Matches(msg, keys.Up):
			if m.recIdx > 0 {
				m.recIdx--
			}
		case key.Matches(msg, keys.Down):
			if m.recIdx < len(recs)-1 {
				m.recIdx++
			}
		case key.Matches(msg, keys.Enter):
			if m.recIdx < len(recs) {
				m.sess.LoadRecommendation(recs[m.recIdx])
			}
		default:
			return m.scroll(msg)
		}

	case paneTicket:
		switch {
		case key.Matches(msg, keys.Up):
			m.setField((m.field + fieldCount - 1) % fieldCount)
		case key.Matches(msg, keys.Down), key.Matches(msg, keys.Enter):
			m.setField((m.field + 1) % fieldCount)
		case m.field == fieldSide && key.Matches(msg, keys.Side):
			t := m.sess.Ticket()
			if t.Side == domain.SideSell {
				t.Side = domain.SideBuy
			} else {
				t.Side = domain.SideSell
			}
		default:
			return m.editField(msg)
		}
	}
	return nil
}

func (m *model) scroll(msg tea.KeyMsg) tea.Cmd {
	if !m.ready {
		return nil
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return cmd
}

// editField forwards a key to the focused text input and copies the result
// into the session ticket.
func (m *model) editField(msg tea.KeyMsg) tea.Cmd {
	in, ok := m.inputs[m.field]
	if !ok {
		return nil
	}
	var cmd tea.Cmd
	*in, cmd = in.Update(msg)

	t := m.sess.Ticket()
	switch m.field {
	case fieldSymbol:
		t.Symbol = in.Value()
	case fieldQuantity:
		t.Quantity = in.Value()
	case fieldPrice:
		t.Price = in.Value()
	case fieldNote:
		t.Note = in.Value()
	}
	return cmd
}

func (m *model) setFocus(p pane) {
	m.focus = p
	m.setField(m.field)
}

func (m *model) setField(f ticketField) {
	m.field = f
	for k, in := range m.inputs {
		if m.focus == paneTicket && k == f {
			in.Focus()
		} else {
			in.Blur()
		}
	}
}

// syncTicket copies the session ticket into the inputs when the session has
// written to it since the last sync.
func (m *model) syncTicket() {
	t := m.sess.Ticket()
	if t.Revision == m.ticketRev {
		return
	}
	m.ticketRev = t.Revision
	m.inputs[fieldSymbol].SetValue(t.Symbol)
	m.inputs[fieldQuantity].SetValue(t.Quantity)
	m.inputs[fieldPrice].SetValue(t.Price)
	m.inputs[fieldNote].SetValue(t.Note)
}

func (m *model) syncStoryCursor() {
	id := m.sess.State().SelectedStoryID
	for i, s := range m.sess.Stories() {
		if s.ID == id {
			m.storyIdx = i
			return
		}
	}
	m.storyIdx = 0
}

func (m model) recommendations() []domain.Recommendation {
	if ins := m.sess.Insights(); ins != nil {
		return ins.Recommendations
	}
	return nil
}

// ---------------------------------------------------------------------------
// Commands
// ---------------------------------------------------------------------------

func (m model) loadStoriesCmd() tea.Cmd {
	api := m.api
	return func() tea.Msg {
		stories, err := api.ListStories(context.Background())
		return storiesLoadedMsg{stories: stories, err: err}
	}
}

func (m model) loadPortfolioCmd() tea.Cmd {
	api := m.api
	return func() tea.Msg {
		p, err := api.GetPortfolio(context.Background())
		return portfolioLoadedMsg{portfolio: p, err: err}
	}
}

func (m model) loadInsightsCmd(req *session.InsightsRequest) tea.Cmd {
	if req == nil {
		return nil
	}
	api := m.api
	r := *req
	m.logger.Debug("loading insights", "story", r.StoryID, "seq", r.Seq)
	return func() tea.Msg {
		ins, err := api.GetStory(context.Background(), r.StoryID)
		return insightsLoadedMsg{req: r, insights: ins, err: err}
	}
}

func (m model) submitTradeCmd() tea.Cmd {
	req, ok := m.sess.TradeRequest()
	if !ok {
		return nil
	}
	api := m.api
	m.logger.Info("submitting trade", "symbol", req.Symbol, "side", string(req.Side), "quantity", req.Quantity)
	return func() tea.Msg {
		p, err := api.SubmitTrade(context.Background(), req)
		return tradeDoneMsg{req: req, portfolio: p, err: err}
	}
}
