package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"helios/internal/chart"
	"helios/internal/domain"
	"helios/internal/session"
	"helios/internal/view"
)

// Styles.
var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("4"))
	footerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Background(lipgloss.Color("8"))
	sectionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("6"))
	focusStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("3"))
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	activeStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("75"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	gainStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	lossStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	stockStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("221"))
	equityStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("37"))
	highlightBG  = lipgloss.Color("236")
)

// hlStyle returns a copy of s with the highlight background applied when hl is true.
func hlStyle(s lipgloss.Style, hl bool) lipgloss.Style {
	if hl {
		return s.Background(highlightBG)
	}
	return s
}

func toneStyle(t view.Tone) lipgloss.Style {
	switch t {
	case view.TonePositive:
		return gainStyle
	case view.ToneNegative:
		return lossStyle
	default:
		return lipgloss.NewStyle()
	}
}

func actionStyle(a domain.Action) lipgloss.Style {
	switch a {
	case domain.ActionBuy:
		return gainStyle.Bold(true)
	case domain.ActionSell:
		return lossStyle.Bold(true)
	default:
		return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	}
}

func (m model) View() string {
	if !m.ready {
		return "Loading..."
	}

	headerText := fmt.Sprintf(" Helios    %s    %s ", m.sess.StoryCount(), m.sess.FeedStatus())
	headerBar := headerStyle.Render(padOrTrunc(headerText, m.width))

	pct := m.viewport.ScrollPercent() * 100
	footerLeft := " q quit  r refresh  tab focus  up/dn move  enter select  left/right side  ctrl+s trade"
	footerRight := fmt.Sprintf("%.0f%% ", pct)
	gap := m.width - len(footerLeft) - len(footerRight)
	if gap < 0 {
		gap = 0
	}
	footerBar := footerStyle.Render(padOrTrunc(footerLeft+strings.Repeat(" ", gap)+footerRight, m.width))

	return headerBar + "\n" + m.viewport.View() + "\n" + footerBar
}

func (m model) renderContent() string {
	var b strings.Builder
	m.renderStories(&b)
	m.renderStory(&b)
	m.renderRecommendations(&b)
	m.renderTicket(&b)
	m.renderStockChart(&b)
	m.renderPortfolio(&b)
	return b.String()
}

func (m model) section(b *strings.Builder, title string, p pane, focusable bool) {
	style := sectionStyle
	if focusable && m.focus == p {
		style = focusStyle
	}
	b.WriteString("\n")
	b.WriteString(style.Render(padOrTrunc(" "+title+" ", m.width)))
	b.WriteString("\n")
}

func (m model) renderStories(b *strings.Builder) {
	m.section(b, "STORIES", paneStories, true)
	cards := view.StoryCards(m.sess.Stories(), m.sess.State().SelectedStoryID)
	if len(cards) == 0 {
		b.WriteString(dimStyle.Render("  " + m.sess.FeedStatus()))
		b.WriteString("\n")
		return
	}
	for i, c := range cards {
		hl := m.focus == paneStories && i == m.storyIdx
		marker := "  "
		ts := titleStyle
		if c.Active {
			marker = "▸ "
			ts = activeStyle
		}
		b.WriteString(hlStyle(ts, hl).Render(padOrTrunc(marker+c.Title, m.width)))
		b.WriteString("\n")
		b.WriteString(dimStyle.Render(padOrTrunc("    "+c.Summary, m.width)))
		b.WriteString("\n")
		b.WriteString(dimStyle.Render(padOrTrunc("    "+c.Source+" • "+c.Time, m.width)))
		b.WriteString("\n")
	}
}

func (m model) renderStory(b *strings.Builder) {
	m.section(b, "STORY", 0, false)
	ins := m.sess.Insights()
	switch {
	case ins != nil:
	case m.sess.InsightsError() != "":
		b.WriteString(lossStyle.Render("  " + m.sess.InsightsError()))
		b.WriteString("\n")
		return
	case m.sess.State().SelectedStoryID != "":
		b.WriteString(dimStyle.Render("  Loading story..."))
		b.WriteString("\n")
		return
	default:
		b.WriteString(dimStyle.Render("  " + session.NoStoryLinked))
		b.WriteString("\n")
		return
	}

	d := view.NewStoryDetail(ins.Story)
	b.WriteString(titleStyle.Render("  " + d.Title))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("  " + d.Meta))
	b.WriteString("\n\n")
	if d.Placeholder != "" {
		b.WriteString(dimStyle.Render("  " + d.Placeholder))
		b.WriteString("\n")
	}
	wrap := lipgloss.NewStyle().Width(max(m.width-4, 20)).PaddingLeft(2)
	for _, p := range d.Paragraphs {
		b.WriteString(wrap.Render(p))
		b.WriteString("\n\n")
	}
	link := d.LinkText
	if d.URL != "" {
		link += ": " + d.URL
	}
	b.WriteString(dimStyle.Render("  " + link))
	b.WriteString("\n")
}

func (m model) renderRecommendations(b *strings.Builder) {
	m.section(b, "RECOMMENDATIONS", paneRecommendations, true)
	if m.sess.Insights() == nil {
		return
	}
	cards := view.RecommendationCards(m.recommendations())
	if len(cards) == 0 {
		b.WriteString(dimStyle.Render("  " + view.NoRecommendations))
		b.WriteString("\n")
		return
	}
	for i, c := range cards {
		hl := m.focus == paneRecommendations && i == m.recIdx
		line := fmt.Sprintf("  %-24s %s  %s", c.Entity, actionStyle(c.Action).Render(c.Badge), c.Confidence)
		b.WriteString(hlStyle(lipgloss.NewStyle(), hl).Render(line))
		b.WriteString("\n")
		b.WriteString(dimStyle.Render(padOrTrunc("    "+c.Rationale, m.width)))
		b.WriteString("\n")
	}
}

func (m model) renderTicket(b *strings.Builder) {
	m.section(b, "TRADE TICKET", paneTicket, true)
	b.WriteString(dimStyle.Render("  " + m.sess.TicketStory()))
	b.WriteString("\n")

	label := func(f ticketField, name string) string {
		s := fmt.Sprintf("  %-9s", name)
		if m.focus == paneTicket && m.field == f {
			return activeStyle.Render(s)
		}
		return dimStyle.Render(s)
	}
	t := m.sess.Ticket()
	b.WriteString(label(fieldSymbol, "Symbol") + m.inputs[fieldSymbol].View() + "\n")
	side := "[BUY]  SELL "
	if t.Side == domain.SideSell {
		side = " BUY  [SELL]"
	}
	b.WriteString(label(fieldSide, "Side") + " " + side + "\n")
	b.WriteString(label(fieldQuantity, "Quantity") + m.inputs[fieldQuantity].View() + "\n")
	b.WriteString(label(fieldPrice, "Price") + m.inputs[fieldPrice].View() + "\n")
	b.WriteString(label(fieldNote, "Note") + m.inputs[fieldNote].View() + "\n")

	if msg, isErr := m.sess.TradeMessage(); msg != "" {
		style := gainStyle
		if isErr {
			style = lossStyle
		}
		b.WriteString("  " + style.Render(msg) + "\n")
	}
}

func (m model) renderStockChart(b *strings.Builder) {
	m.section(b, "CHART", 0, false)
	b.WriteString(dimStyle.Render("  " + m.sess.Hint()))
	b.WriteString("\n")
	proj := chart.ProjectSeries(m.sess.Series(), m.cfg.Chart.Height)
	m.writePlot(b, proj, stockStyle)
}

func (m model) renderPortfolio(b *strings.Builder) {
	m.section(b, "PORTFOLIO", 0, false)
	p := m.sess.Portfolio()
	if msg := m.sess.PortfolioError(); msg != "" && p == nil {
		e := view.PortfolioError(msg)
		b.WriteString(fmt.Sprintf("  %-16s%s\n", e.Label, toneStyle(e.Tone).Render(e.Value)))
		return
	}
	if p == nil {
		b.WriteString(dimStyle.Render("  Loading portfolio..."))
		b.WriteString("\n")
		return
	}

	for _, mt := range view.Metrics(p) {
		b.WriteString(fmt.Sprintf("  %-16s%s\n", mt.Label, toneStyle(mt.Tone).Render(mt.Value)))
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("  %-8s %10s %14s %14s %16s", "Symbol", "Qty", "Avg Price", "Last", "Unrealized P/L")))
	b.WriteString("\n")
	rows := view.PositionRows(p.Positions)
	if len(rows) == 0 {
		b.WriteString(dimStyle.Render("  " + view.NoPositions))
		b.WriteString("\n")
	}
	for _, r := range rows {
		b.WriteString(fmt.Sprintf("  %-8s %10s %14s %14s ", r.Symbol, r.Quantity, r.AveragePrice, r.LastPrice))
		b.WriteString(toneStyle(r.Tone).Render(fmt.Sprintf("%16s", r.UnrealizedPnl)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	items := view.TradeItems(p.RecentTrades)
	if len(items) == 0 {
		b.WriteString(dimStyle.Render("  " + view.NoTrades))
		b.WriteString("\n")
	}
	for _, it := range items {
		b.WriteString(fmt.Sprintf("  %-28s %s\n", it.Heading, titleStyle.Render(it.Symbol)))
		b.WriteString(dimStyle.Render("    "+it.Detail) + "\n")
		b.WriteString(dimStyle.Render("    "+it.Meta) + "\n")
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render("  Equity"))
	b.WriteString("\n")
	m.writePlot(b, chart.ProjectEquity(p, m.cfg.Chart.Height), equityStyle)
}

func (m model) writePlot(b *strings.Builder, proj chart.Projection, style lipgloss.Style) {
	cols := m.cfg.Chart.Width
	if m.width > 4 && cols > m.width-4 {
		cols = m.width - 4
	}
	for _, line := range chart.Plot(proj, cols, m.cfg.Chart.Rows) {
		b.WriteString("  " + style.Render(line) + "\n")
	}
	if !proj.Empty() {
		b.WriteString(dimStyle.Render(fmt.Sprintf("  low %s  high %s", view.Number(proj.Min), view.Number(proj.Max))))
		b.WriteString("\n")
	}
}

func padOrTrunc(s string, width int) string {
	r := []rune(s)
	if len(r) >= width {
		return string(r[:width])
	}
	return s + strings.Repeat(" ", width-len(r))
}
