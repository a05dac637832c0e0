// Package session coordinates story selection, symbol resolution, the trade
// ticket and the stock chart for one client session.
//
// A Coordinator is not safe for concurrent use. All methods must be called
// from the client's single event loop; network fetches happen outside and
// their results are handed back through the *Loaded methods.
package session

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/google/uuid"

	"helios/internal/domain"
	"helios/internal/synth"
	"helios/internal/view"
)

// Config holds the collaborators of a Coordinator. Zero fields get defaults.
type Config struct {
	Builder         *synth.Builder
	Clock           synth.Clock
	Logger          *slog.Logger
	DefaultQuantity int
	WatchQuantity   int
}

// Coordinator owns the selection state, the insights cache and everything
// derived from the resolved symbol.
type Coordinator struct {
	id         string
	log        *slog.Logger
	clock      synth.Clock
	builder    *synth.Builder
	defaultQty int
	watchQty   int

	phase       Phase
	state       State
	seq         uint64
	provisional domain.Symbol
	// cycleFresh records whether the provisional refresh of the current
	// selection passed the LastRendered guard.
	cycleFresh bool

	stories    []domain.StorySummary
	storyCount string
	feedStatus string

	cache       map[string]*domain.StoryInsights
	insights    *domain.StoryInsights
	insightsErr string

	ticket      Ticket
	ticketStory string
	hint        string
	series      domain.Series
	chartRev    int

	tradeMsg string
	tradeErr bool

	portfolio    *domain.Portfolio
	portfolioErr string
}

// New creates a Coordinator for a fresh session.
func New(cfg Config) *Coordinator {
	if cfg.Clock == nil {
		cfg.Clock = synth.SystemClock{}
	}
	if cfg.Builder == nil {
		cfg.Builder = synth.NewBuilder(cfg.Clock)
	}
	if cfg.DefaultQuantity <= 0 {
		cfg.DefaultQuantity = 100
	}
	if cfg.WatchQuantity <= 0 {
		cfg.WatchQuantity = 50
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	id := uuid.NewString()
	return &Coordinator{
		id:          id,
		log:         cfg.Logger.With("session", id),
		clock:       cfg.Clock,
		builder:     cfg.Builder,
		defaultQty:  cfg.DefaultQuantity,
		watchQty:    cfg.WatchQuantity,
		cache:       make(map[string]*domain.StoryInsights),
		ticket:      Ticket{Side: domain.SideBuy},
		ticketStory: NoStoryLinked,
	}
}

// ---------------------------------------------------------------------------
// Accessors
// ---------------------------------------------------------------------------

// ID returns the session identifier.
func (c *Coordinator) ID() string { return c.id }

// Phase returns the insights phase of the current selection.
func (c *Coordinator) Phase() Phase { return c.phase }

// State returns a copy of the selection state.
func (c *Coordinator) State() State { return c.state }

// Stories returns the last loaded feed.
func (c *Coordinator) Stories() []domain.StorySummary { return c.stories }

// StoryCount returns the feed size text, e.g. "12 stories".
func (c *Coordinator) StoryCount() string { return c.storyCount }

// FeedStatus returns the feed status line.
func (c *Coordinator) FeedStatus() string { return c.feedStatus }

// SelectedStory returns the feed entry of the selected story, or nil.
func (c *Coordinator) SelectedStory() *domain.StorySummary {
	return c.findStory(c.state.SelectedStoryID)
}

// Insights returns the insights shown for the current selection, or nil
// while loading or after a failure.
func (c *Coordinator) Insights() *domain.StoryInsights { return c.insights }

// InsightsError returns the message of the last failed insights fetch for
// the current selection.
func (c *Coordinator) InsightsError() string { return c.insightsErr }

// Ticket returns the trade ticket. Callers may edit its fields in place.
func (c *Coordinator) Ticket() *Ticket { return &c.ticket }

// TicketStory returns the ticket link line.
func (c *Coordinator) TicketStory() string { return c.ticketStory }

// Hint returns the symbol hint line shown above the chart.
func (c *Coordinator) Hint() string { return c.hint }

// Series returns the price series of the resolved symbol.
func (c *Coordinator) Series() domain.Series { return c.series }

// ChartRevision increases every time the chart is regenerated, even when the
// series is unchanged.
func (c *Coordinator) ChartRevision() int { return c.chartRev }

// TradeMessage returns the last trade result line and whether it is an error.
func (c *Coordinator) TradeMessage() (string, bool) { return c.tradeMsg, c.tradeErr }

// Portfolio returns the last loaded portfolio, or nil.
func (c *Coordinator) Portfolio() *domain.Portfolio { return c.portfolio }

// PortfolioError returns the message of the last failed portfolio load.
func (c *Coordinator) PortfolioError() string { return c.portfolioErr }

// ---------------------------------------------------------------------------
// Feed
// ---------------------------------------------------------------------------

// BeginFeedLoad marks the feed as loading.
func (c *Coordinator) BeginFeedLoad(refresh bool) {
	if refresh {
		c.feedStatus = FeedRefreshing
	} else {
		c.feedStatus = FeedLoading
	}
}

// StoriesLoaded applies a feed fetch result. On success it selects the
// previously selected story when still present, otherwise the first one,
// and returns the insights fetch that selection needs, if any.
func (c *Coordinator) StoriesLoaded(stories []domain.StorySummary, err error) *InsightsRequest {
	if err != nil {
		c.log.Warn("loading stories failed", "error", err)
		c.feedStatus = err.Error()
		return nil
	}

	c.stories = stories
	c.storyCount = fmt.Sprintf("%d stories", len(stories))
	if len(stories) == 0 {
		c.feedStatus = FeedEmpty
		return nil
	}

	target := stories[0].ID
	if s := c.findStory(c.state.SelectedStoryID); s != nil {
		target = s.ID
	}
	req := c.SelectStory(target)
	c.feedStatus = "Feed updated " + c.clock.Now().Format("15:04:05")
	return req
}

// ---------------------------------------------------------------------------
// Selection
// ---------------------------------------------------------------------------

// SelectStory makes id the current selection and renders its provisional
// symbol straight away. It returns the insights fetch to run, or nil when
// id is empty or the insights are already cached.
func (c *Coordinator) SelectStory(id string) *InsightsRequest {
	if id == "" {
		return nil
	}

	c.seq++
	c.state.SelectedStoryID = id
	c.phase = PhaseStorySelected
	c.insights = nil
	c.insightsErr = ""
	c.ClearTradeMessage()

	story := c.findStory(id)
	if story != nil {
		c.ticketStory = "Ticket linked: " + story.Title
		c.provisional = domain.Normalize(story.SuggestedSymbol)
	} else {
		c.ticketStory = NoStoryLinked
		c.provisional = domain.NoSymbol
	}
	c.log.Debug("story selected", "story", id, "seq", c.seq, "symbol", c.provisional.String())

	c.cycleFresh = false
	if c.provisional.Valid() {
		c.hint = "Symbol: " + c.provisional.String()
	} else {
		c.hint = HintDetecting
	}

	// A cached story completes in one cycle, so the provisional symbol must
	// not touch LastRendered or the ticket.
	if cached, ok := c.cache[id]; ok {
		c.log.Debug("insights cache hit", "story", id)
		c.applyInsights(cached)
		return nil
	}

	if c.provisional.Valid() {
		c.cycleFresh = c.refresh(c.provisional, nil)
	} else {
		c.clearChart()
	}

	c.phase = PhaseInsightsLoading
	return &InsightsRequest{StoryID: id, Seq: c.seq}
}

// InsightsLoaded applies the result of an insights fetch. Results for a
// selection that has since been replaced are discarded.
func (c *Coordinator) InsightsLoaded(req InsightsRequest, insights *domain.StoryInsights, err error) {
	if err == nil && insights != nil {
		if _, ok := c.cache[req.StoryID]; !ok {
			c.cache[req.StoryID] = insights
		}
	}

	if req.StoryID != c.state.SelectedStoryID || req.Seq != c.seq {
		c.log.Info("discarding stale insights", "story", req.StoryID, "seq", req.Seq, "current", c.state.SelectedStoryID)
		return
	}

	if err != nil || insights == nil {
		if err == nil {
			err = errors.New("Unable to load story")
		}
		c.log.Warn("loading insights failed", "story", req.StoryID, "error", err)
		c.phase = PhaseInsightsFailed
		c.insightsErr = err.Error()
		c.refresh(c.provisional, nil)
		return
	}

	c.applyInsights(c.cache[req.StoryID])
}

// LoadRecommendation writes rec into every ticket field and renders its
// symbol.
func (c *Coordinator) LoadRecommendation(rec domain.Recommendation) {
	sym := domain.Normalize(rec.SuggestedSymbol)
	c.ticket.Symbol = sym.String()
	c.ticket.Side = domain.SideFor(rec.Action)
	c.ticket.Quantity = strconv.Itoa(c.quantityFor(rec.Action))
	c.ticket.Note = rec.Entity + ": " + rec.Rationale
	c.ticket.Revision++
	c.refresh(sym, &rec)
}

func (c *Coordinator) applyInsights(insights *domain.StoryInsights) {
	c.phase = PhaseInsightsReady
	c.insights = insights

	primary := insights.Primary()
	var primarySym string
	if primary != nil {
		primarySym = primary.SuggestedSymbol
	}
	var listSym string
	if s := c.SelectedStory(); s != nil {
		listSym = s.SuggestedSymbol
	}
	sym := domain.FirstSymbol(insights.Story.SuggestedSymbol, primarySym, listSym)
	c.log.Debug("insights applied", "story", c.state.SelectedStoryID, "symbol", sym.String())

	switch {
	case !sym.Valid():
		c.refresh(domain.NoSymbol, nil)
	case sym == c.provisional && c.cycleFresh:
		// The provisional refresh already committed sym; finish the
		// ticket with the recommendation.
		if primary != nil {
			c.applyRecommendation(*primary)
		}
		c.refresh(sym, primary)
	default:
		c.refresh(sym, primary)
		c.hint = "Symbol: " + sym.String()
	}
	c.cycleFresh = false
}

// refresh renders sym. Ticket fields are repopulated only when sym differs
// from the last rendered symbol; the chart is always regenerated. It reports
// whether the ticket was repopulated.
func (c *Coordinator) refresh(sym domain.Symbol, rec *domain.Recommendation) bool {
	c.state.ResolvedSymbol = sym
	if !sym.Valid() {
		c.state.LastRendered = domain.NoSymbol
		c.clearChart()
		if c.hint == "" || c.hint == HintDetecting {
			c.hint = HintNoSymbol
		}
		return false
	}

	fresh := sym != c.state.LastRendered
	if fresh {
		c.state.LastRendered = sym
		c.ticket.Symbol = sym.String()
		if rec != nil {
			c.applyRecommendation(*rec)
		}
		c.ticket.Revision++
	}

	c.series = c.builder.Build(sym)
	c.chartRev++
	if last, ok := c.series.Last(); ok {
		c.ticket.Price = strconv.FormatFloat(last.Value, 'f', 2, 64)
		c.ticket.Revision++
	}
	return fresh
}

func (c *Coordinator) applyRecommendation(rec domain.Recommendation) {
	c.ticket.Side = domain.SideFor(rec.Action)
	c.ticket.Quantity = strconv.Itoa(c.quantityFor(rec.Action))
	c.ticket.Note = rec.Entity + ": " + rec.Rationale
	c.ticket.Revision++
}

func (c *Coordinator) quantityFor(a domain.Action) int {
	if a == domain.ActionWatch {
		return c.watchQty
	}
	return c.defaultQty
}

func (c *Coordinator) clearChart() {
	c.series = nil
	c.chartRev++
}

func (c *Coordinator) findStory(id string) *domain.StorySummary {
	if id == "" {
		return nil
	}
	for i := range c.stories {
		if c.stories[i].ID == id {
			return &c.stories[i]
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Portfolio and trades
// ---------------------------------------------------------------------------

// PortfolioLoaded applies a portfolio fetch result. A failure keeps the
// previous snapshot.
func (c *Coordinator) PortfolioLoaded(p *domain.Portfolio, err error) {
	if err != nil {
		c.log.Warn("loading portfolio failed", "error", err)
		c.portfolioErr = err.Error()
		return
	}
	c.portfolio = p
	c.portfolioErr = ""
}

// TradeRequest builds a trade submission from the ticket and the selected
// story. An invalid ticket is reported as a trade error.
func (c *Coordinator) TradeRequest() (domain.TradeRequest, bool) {
	c.ClearTradeMessage()
	req, err := c.ticket.Request(c.SelectedStory())
	if err != nil {
		c.tradeMsg, c.tradeErr = err.Error(), true
		return domain.TradeRequest{}, false
	}
	return req, true
}

// TradeCompleted applies a trade submission result.
func (c *Coordinator) TradeCompleted(req domain.TradeRequest, p *domain.Portfolio, err error) {
	if err != nil {
		c.log.Warn("trade failed", "symbol", req.Symbol, "side", string(req.Side), "error", err)
		c.tradeMsg, c.tradeErr = err.Error(), true
		return
	}
	c.log.Info("trade executed", "symbol", req.Symbol, "side", string(req.Side), "quantity", req.Quantity)
	c.portfolio = p
	c.portfolioErr = ""
	c.tradeMsg = fmt.Sprintf("Executed %s %d %s @ %s.", req.Side, req.Quantity, req.Symbol, view.Currency(req.Price))
	c.tradeErr = false
}

// ClearTradeMessage clears the trade result line.
func (c *Coordinator) ClearTradeMessage() {
	c.tradeMsg, c.tradeErr = "", false
}
