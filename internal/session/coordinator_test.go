package session

import (
	"errors"
	"io"
	"log/slog"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"helios/internal/domain"
	"helios/internal/synth"
)

var pinned = time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

func newTestCoordinator(t *testing.T) *Coordinator {
	t.Helper()
	clock := synth.FixedClock(pinned)
	return New(Config{
		Clock:   clock,
		Builder: synth.NewBuilder(clock),
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

func testStories() []domain.StorySummary {
	return []domain.StorySummary{
		{ID: "a", Title: "Widgets surge", SuggestedSymbol: " xyz "},
		{ID: "b", Title: "Broadcaster cuts", SuggestedSymbol: "bbc"},
		{ID: "c", Title: "Markets quiet"},
	}
}

func insightsFor(symbol string, action domain.Action) *domain.StoryInsights {
	return &domain.StoryInsights{
		Story: domain.StoryDetail{Title: "detail", SuggestedSymbol: symbol},
		Recommendations: []domain.Recommendation{
			{Entity: "Widget Co", Action: action, SuggestedSymbol: symbol, Confidence: 0.8, Rationale: "strong demand"},
		},
	}
}

func TestNewCoordinator(t *testing.T) {
	c := newTestCoordinator(t)
	assert.NotEmpty(t, c.ID())
	assert.Equal(t, PhaseIdle, c.Phase())
	assert.Equal(t, NoStoryLinked, c.TicketStory())
	assert.Equal(t, domain.SideBuy, c.Ticket().Side)
	assert.NotEqual(t, c.ID(), newTestCoordinator(t).ID())
}

func TestSelectStoryEmptyIsNoop(t *testing.T) {
	c := newTestCoordinator(t)
	c.StoriesLoaded(testStories(), nil)
	before := c.State()

	assert.Nil(t, c.SelectStory(""))
	assert.Equal(t, before, c.State())
}

func TestSelectStoryProvisionalRender(t *testing.T) {
	c := newTestCoordinator(t)
	c.stories = testStories()

	req := c.SelectStory("a")
	require.NotNil(t, req)
	assert.Equal(t, "a", req.StoryID)
	assert.Equal(t, PhaseInsightsLoading, c.Phase())

	assert.Equal(t, "Ticket linked: Widgets surge", c.TicketStory())
	assert.Equal(t, "Symbol: XYZ", c.Hint())
	assert.Equal(t, "XYZ", c.Ticket().Symbol)
	assert.Equal(t, domain.Symbol("XYZ"), c.State().LastRendered)
	assert.Len(t, c.Series(), 97)

	last, _ := c.Series().Last()
	assert.Equal(t, synth.NewBuilder(synth.FixedClock(pinned)).Build("XYZ"), c.Series())
	assert.NotEmpty(t, c.Ticket().Price)
	assert.InDelta(t, last.Value, mustFloat(t, c.Ticket().Price), 0.005)
}

func TestSelectStoryWithoutSymbol(t *testing.T) {
	c := newTestCoordinator(t)
	c.stories = testStories()

	req := c.SelectStory("c")
	require.NotNil(t, req)
	assert.Equal(t, HintDetecting, c.Hint())
	assert.Empty(t, c.Series())

	c.InsightsLoaded(*req, &domain.StoryInsights{Story: domain.StoryDetail{Title: "quiet"}}, nil)
	assert.Equal(t, PhaseInsightsReady, c.Phase())
	assert.Equal(t, HintNoSymbol, c.Hint())
	assert.Equal(t, domain.NoSymbol, c.State().LastRendered)
	assert.Empty(t, c.Series())
}

func TestInsightsAuthoritativeSymbol(t *testing.T) {
	c := newTestCoordinator(t)
	c.stories = testStories()

	req := c.SelectStory("c")
	require.NotNil(t, req)
	c.InsightsLoaded(*req, insightsFor("acme", domain.ActionSell), nil)

	tk := c.Ticket()
	assert.Equal(t, "ACME", tk.Symbol)
	assert.Equal(t, domain.SideSell, tk.Side)
	assert.Equal(t, "100", tk.Quantity)
	assert.Equal(t, "Widget Co: strong demand", tk.Note)
	assert.Equal(t, "Symbol: ACME", c.Hint())
	assert.Equal(t, domain.Symbol("ACME"), c.State().ResolvedSymbol)
	assert.Len(t, c.Series(), 97)
}

func TestInsightsSameSymbolLoadsPrimary(t *testing.T) {
	c := newTestCoordinator(t)
	c.stories = testStories()

	req := c.SelectStory("a")
	c.InsightsLoaded(*req, insightsFor("XYZ", domain.ActionWatch), nil)

	assert.Equal(t, "50", c.Ticket().Quantity)
	assert.Equal(t, domain.SideBuy, c.Ticket().Side)
	assert.Equal(t, "Widget Co: strong demand", c.Ticket().Note)
}

func TestReselectKeepsEditedTicket(t *testing.T) {
	c := newTestCoordinator(t)
	c.stories = testStories()

	req := c.SelectStory("a")
	require.NotNil(t, req)
	c.InsightsLoaded(*req, insightsFor("XYZ", domain.ActionBuy), nil)
	require.Equal(t, "100", c.Ticket().Quantity)

	c.Ticket().Quantity = "7"
	c.Ticket().Note = "my own note"
	series := c.Series()
	rev := c.ChartRevision()

	assert.Nil(t, c.SelectStory("a"), "second selection should be served from cache")
	assert.Equal(t, PhaseInsightsReady, c.Phase())
	assert.Equal(t, "7", c.Ticket().Quantity)
	assert.Equal(t, "my own note", c.Ticket().Note)
	assert.Greater(t, c.ChartRevision(), rev, "chart must be regenerated")
	assert.Equal(t, series, c.Series())
}

func TestReselectKeepsEditedTicketWhenDetailSymbolDiffers(t *testing.T) {
	c := newTestCoordinator(t)
	c.stories = []domain.StorySummary{{ID: "l", Title: "Listed elsewhere", SuggestedSymbol: "LIST"}}

	req := c.SelectStory("l")
	require.NotNil(t, req)
	assert.Equal(t, domain.Symbol("LIST"), c.State().LastRendered)
	c.InsightsLoaded(*req, insightsFor("XYZ", domain.ActionBuy), nil)
	require.Equal(t, domain.Symbol("XYZ"), c.State().LastRendered)
	require.Equal(t, "100", c.Ticket().Quantity)

	c.Ticket().Quantity = "7"
	c.Ticket().Note = "mine"
	rev := c.ChartRevision()

	assert.Nil(t, c.SelectStory("l"))
	assert.Equal(t, "7", c.Ticket().Quantity)
	assert.Equal(t, "mine", c.Ticket().Note)
	assert.Equal(t, "XYZ", c.Ticket().Symbol)
	assert.Equal(t, domain.Symbol("XYZ"), c.State().LastRendered)
	assert.Equal(t, "Symbol: XYZ", c.Hint())
	assert.Greater(t, c.ChartRevision(), rev)
	assert.Len(t, c.Series(), 97)
}

func TestCachedStoryWithoutSymbolClearsChart(t *testing.T) {
	c := newTestCoordinator(t)
	c.stories = testStories()

	req := c.SelectStory("c")
	c.InsightsLoaded(*req, &domain.StoryInsights{}, nil)
	c.SelectStory("a")
	require.NotEmpty(t, c.Series())

	assert.Nil(t, c.SelectStory("c"))
	assert.Empty(t, c.Series())
	assert.Equal(t, HintNoSymbol, c.Hint())
	assert.Equal(t, domain.NoSymbol, c.State().LastRendered)
}

func TestStaleInsightsDiscarded(t *testing.T) {
	c := newTestCoordinator(t)
	c.stories = testStories()

	reqA := c.SelectStory("a")
	reqB := c.SelectStory("b")
	require.NotNil(t, reqA)
	require.NotNil(t, reqB)

	c.InsightsLoaded(*reqA, insightsFor("ACME", domain.ActionSell), nil)
	assert.Equal(t, "b", c.State().SelectedStoryID)
	assert.Equal(t, domain.Symbol("BBC"), c.State().LastRendered)
	assert.Equal(t, "BBC", c.Ticket().Symbol)
	assert.Equal(t, PhaseInsightsLoading, c.Phase())
	assert.Nil(t, c.Insights())

	c.InsightsLoaded(*reqB, insightsFor("BBC", domain.ActionBuy), nil)
	assert.Equal(t, PhaseInsightsReady, c.Phase())
	require.NotNil(t, c.Insights())
	assert.Equal(t, "BBC", c.Insights().Story.SuggestedSymbol)
}

func TestStaleResultForReselectedStory(t *testing.T) {
	c := newTestCoordinator(t)
	c.stories = testStories()

	first := c.SelectStory("a")
	c.SelectStory("b")
	second := c.SelectStory("a")
	require.NotNil(t, second, "a is not cached yet")

	c.InsightsLoaded(*first, insightsFor("ACME", domain.ActionSell), nil)
	assert.Equal(t, PhaseInsightsLoading, c.Phase(), "old sequence must not complete the new request")
}

func TestInsightsFailureKeepsProvisional(t *testing.T) {
	c := newTestCoordinator(t)
	c.stories = testStories()

	req := c.SelectStory("b")
	series := c.Series()
	c.InsightsLoaded(*req, nil, errors.New("Story not found"))

	assert.Equal(t, PhaseInsightsFailed, c.Phase())
	assert.Equal(t, "Story not found", c.InsightsError())
	assert.Equal(t, "BBC", c.Ticket().Symbol)
	assert.Equal(t, "Symbol: BBC", c.Hint())
	assert.Equal(t, series, c.Series())

	retry := c.SelectStory("b")
	assert.NotNil(t, retry, "failures are not cached")
}

func TestLoadRecommendation(t *testing.T) {
	c := newTestCoordinator(t)
	c.stories = testStories()
	c.SelectStory("b")
	c.Ticket().Quantity = "3"

	c.LoadRecommendation(domain.Recommendation{Entity: "Acme", Action: domain.ActionWatch, SuggestedSymbol: "acme", Rationale: "watch it"})
	tk := c.Ticket()
	assert.Equal(t, "ACME", tk.Symbol)
	assert.Equal(t, domain.SideBuy, tk.Side)
	assert.Equal(t, "50", tk.Quantity)
	assert.Equal(t, "Acme: watch it", tk.Note)
	assert.Equal(t, domain.Symbol("ACME"), c.State().LastRendered)

	c.Ticket().Quantity = "9"
	c.LoadRecommendation(domain.Recommendation{Entity: "Acme", Action: domain.ActionSell, SuggestedSymbol: "ACME"})
	assert.Equal(t, "100", c.Ticket().Quantity, "explicit load always overwrites")
	assert.Equal(t, domain.SideSell, c.Ticket().Side)
}

func TestStoriesLoaded(t *testing.T) {
	c := newTestCoordinator(t)
	c.BeginFeedLoad(false)
	assert.Equal(t, FeedLoading, c.FeedStatus())

	req := c.StoriesLoaded(testStories(), nil)
	require.NotNil(t, req)
	assert.Equal(t, "a", req.StoryID)
	assert.Equal(t, "3 stories", c.StoryCount())
	assert.Equal(t, "Feed updated 12:00:00", c.FeedStatus())

	c.InsightsLoaded(*req, insightsFor("XYZ", domain.ActionBuy), nil)
	c.SelectStory("b")

	c.BeginFeedLoad(true)
	assert.Equal(t, FeedRefreshing, c.FeedStatus())
	req = c.StoriesLoaded(testStories(), nil)
	require.NotNil(t, req)
	assert.Equal(t, "b", req.StoryID, "previous selection is kept")

	c.StoriesLoaded(testStories()[2:], nil)
	assert.Equal(t, "c", c.State().SelectedStoryID, "falls back to first story")
}

func TestStoriesLoadedEmptyAndError(t *testing.T) {
	c := newTestCoordinator(t)

	assert.Nil(t, c.StoriesLoaded([]domain.StorySummary{}, nil))
	assert.Equal(t, FeedEmpty, c.FeedStatus())
	assert.Equal(t, "0 stories", c.StoryCount())

	assert.Nil(t, c.StoriesLoaded(nil, errors.New("Unable to load stories")))
	assert.Equal(t, "Unable to load stories", c.FeedStatus())
}

func TestTradeFlow(t *testing.T) {
	c := newTestCoordinator(t)
	c.stories = testStories()
	c.SelectStory("b")

	tk := c.Ticket()
	tk.Symbol = " bbc "
	tk.Quantity = "100"
	tk.Price = "123.45"
	tk.Note = "  hedge "

	req, ok := c.TradeRequest()
	require.True(t, ok)
	assert.Equal(t, domain.TradeRequest{
		Symbol: "bbc", Side: domain.SideBuy, Quantity: 100, Price: 123.45,
		Note: "hedge", StoryID: "b", StoryTitle: "Broadcaster cuts",
	}, req)

	req.Symbol = "BBC"
	p := &domain.Portfolio{Cash: 87654.5}
	c.TradeCompleted(req, p, nil)
	msg, isErr := c.TradeMessage()
	assert.Equal(t, "Executed BUY 100 BBC @ £123.45.", msg)
	assert.False(t, isErr)
	assert.Same(t, p, c.Portfolio())

	c.TradeCompleted(req, nil, errors.New("Insufficient cash"))
	msg, isErr = c.TradeMessage()
	assert.Equal(t, "Insufficient cash", msg)
	assert.True(t, isErr)
	assert.Same(t, p, c.Portfolio())

	c.SelectStory("a")
	msg, _ = c.TradeMessage()
	assert.Empty(t, msg, "selection clears the trade message")
}

func TestTradeRequestInvalidTicket(t *testing.T) {
	c := newTestCoordinator(t)
	c.Ticket().Quantity = "lots"
	c.Ticket().Price = "1"

	_, ok := c.TradeRequest()
	assert.False(t, ok)
	msg, isErr := c.TradeMessage()
	assert.Equal(t, "Quantity must be a whole number", msg)
	assert.True(t, isErr)
}

func TestPortfolioLoaded(t *testing.T) {
	c := newTestCoordinator(t)
	p := &domain.Portfolio{Equity: 100000}
	c.PortfolioLoaded(p, nil)
	assert.Same(t, p, c.Portfolio())

	c.PortfolioLoaded(nil, errors.New("Unable to load portfolio"))
	assert.Equal(t, "Unable to load portfolio", c.PortfolioError())
	assert.Same(t, p, c.Portfolio())
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "insights_failed", PhaseInsightsFailed.String())
	assert.Equal(t, "unknown", Phase(99).String())
}

func mustFloat(t *testing.T, s string) float64 {
	t.Helper()
	v, err := strconv.ParseFloat(s, 64)
	require.NoError(t, err)
	return v
}
