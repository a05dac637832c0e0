package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"golang.org/x/sync/errgroup"

	"helios/internal/chart"
	"helios/internal/config"
	"helios/internal/domain"
	"helios/internal/store"
	"helios/internal/synth"
	"helios/internal/util"
	"helios/internal/view"
	"helios/pkg/helios"
)

const version = "0.1.0"

// app carries the shared dependencies of every command.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	client  *helios.Client
	builder *synth.Builder
	out     io.Writer
}

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: helios-cli <command> [options]\n\n")
		fmt.Fprintf(os.Stderr, "Commands:\n")
		fmt.Fprintf(os.Stderr, "  version                 Print the CLI version\n")
		fmt.Fprintf(os.Stderr, "  status                  Load stories and portfolio together\n")
		fmt.Fprintf(os.Stderr, "  stories                 List the story feed\n")
		fmt.Fprintf(os.Stderr, "  story <id>              Show a story and its recommendations\n")
		fmt.Fprintf(os.Stderr, "  portfolio               Show the simulated portfolio\n")
		fmt.Fprintf(os.Stderr, "  series <SYMBOL>         Print the synthetic price series\n")
		fmt.Fprintf(os.Stderr, "  chart <SYMBOL>|-equity  Write an HTML line chart (-o file, -svg for SVG)\n")
		fmt.Fprintf(os.Stderr, "  export <SYMBOL...>      Write series to Parquet (-equity adds the equity timeline)\n")
		fmt.Fprintf(os.Stderr, "  stored [SYMBOL]|-equity List exported symbols or show what export wrote\n")
		fmt.Fprintf(os.Stderr, "  trade                   Submit a trade ticket\n")
		fmt.Fprintf(os.Stderr, "\n")
	}

	if len(os.Args) < 2 {
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.LoadOrDefault(envOr("HELIOS_CONFIG", "config/helios.yaml"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}
	logger := util.NewLogger(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)
	util.SetDefault(logger)

	a := &app{
		cfg:    cfg,
		logger: logger,
		client: helios.NewClient(cfg.Server.BaseURL,
			helios.WithTimeout(cfg.Server.Timeout.Std()),
			helios.WithRetry(cfg.Server.RetryAttempts, cfg.Server.RetryDelay.Std()),
		),
		builder: synth.NewBuilderWindow(synth.SystemClock{}, cfg.Synth.Lookback.Std(), cfg.Synth.Interval.Std()),
		out:     os.Stdout,
	}

	ctx := context.Background()
	args := os.Args[2:]

	switch os.Args[1] {
	case "version":
		fmt.Printf("helios-cli %s\n", version)
	case "status":
		err = a.status(ctx)
	case "stories":
		err = a.stories(ctx)
	case "story":
		err = a.story(ctx, args)
	case "portfolio":
		err = a.portfolio(ctx)
	case "series":
		err = a.series(args)
	case "chart":
		err = a.chart(ctx, args)
	case "export":
		err = a.export(ctx, args)
	case "stored":
		err = a.stored(ctx, args)
	case "trade":
		err = a.trade(ctx, args)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", os.Args[1])
		flag.Usage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// status loads the feed and the portfolio concurrently.
func (a *app) status(ctx context.Context) error {
	var (
		stories   []domain.StorySummary
		portfolio *domain.Portfolio
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		stories, err = a.client.ListStories(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		portfolio, err = a.client.GetPortfolio(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "server:    %s\n", a.cfg.Server.BaseURL)
	fmt.Fprintf(a.out, "stories:   %d\n", len(stories))
	fmt.Fprintf(a.out, "equity:    %s\n", view.Currency(portfolio.Equity))
	fmt.Fprintf(a.out, "total p/l: %s\n", view.Currency(portfolio.TotalPnl))
	fmt.Fprintf(a.out, "positions: %d\n", len(portfolio.Positions))
	return nil
}

func (a *app) stories(ctx context.Context) error {
	stories, err := a.client.ListStories(ctx)
	if err != nil {
		return err
	}
	if len(stories) == 0 {
		fmt.Fprintln(a.out, "No stories available")
		return nil
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSYMBOL\tSOURCE\tPUBLISHED\tTITLE")
	for i, c := range view.StoryCards(stories, "") {
		sym := "-"
		if s := domain.Normalize(stories[i].SuggestedSymbol); s.Valid() {
			sym = s.String()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", c.ID, sym, c.Source, c.Time, c.Title)
	}
	return tw.Flush()
}

func (a *app) story(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: helios-cli story <id>")
	}
	ins, err := a.client.GetStory(ctx, args[0])
	if err != nil {
		return err
	}

	d := view.NewStoryDetail(ins.Story)
	fmt.Fprintf(a.out, "%s\n%s\n\n", d.Title, d.Meta)
	if d.Placeholder != "" {
		fmt.Fprintf(a.out, "%s\n\n", d.Placeholder)
	}
	for _, p := range d.Paragraphs {
		fmt.Fprintf(a.out, "%s\n\n", p)
	}
	fmt.Fprintf(a.out, "%s %s\n\n", d.LinkText, d.URL)

	cards := view.RecommendationCards(ins.Recommendations)
	if len(cards) == 0 {
		fmt.Fprintln(a.out, view.NoRecommendations)
		return nil
	}
	for _, c := range cards {
		fmt.Fprintf(a.out, "%-24s %-12s %s\n    %s\n", c.Entity, c.Badge, c.Confidence, c.Rationale)
	}
	return nil
}

func (a *app) portfolio(ctx context.Context) error {
	p, err := a.client.GetPortfolio(ctx)
	if err != nil {
		return err
	}
	printPortfolio(a.out, p)
	return nil
}

func printPortfolio(w io.Writer, p *domain.Portfolio) {
	for _, m := range view.Metrics(p) {
		fmt.Fprintf(w, "%-16s%s\n", m.Label, m.Value)
	}
	fmt.Fprintln(w)

	rows := view.PositionRows(p.Positions)
	if len(rows) == 0 {
		fmt.Fprintln(w, view.NoPositions)
	} else {
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
		fmt.Fprintln(tw, "SYMBOL\tQTY\tAVG\tLAST\tUNREALIZED\t")
		for _, r := range rows {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t\n", r.Symbol, r.Quantity, r.AveragePrice, r.LastPrice, r.UnrealizedPnl)
		}
		tw.Flush()
	}
	fmt.Fprintln(w)

	items := view.TradeItems(p.RecentTrades)
	if len(items) == 0 {
		fmt.Fprintln(w, view.NoTrades)
		return
	}
	for _, it := range items {
		fmt.Fprintf(w, "%s  %s\n    %s\n    %s\n", it.Heading, it.Symbol, it.Detail, it.Meta)
	}
}

func (a *app) series(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: helios-cli series <SYMBOL>")
	}
	sym := domain.Normalize(args[0])
	s := a.builder.Build(sym)
	if len(s) == 0 {
		fmt.Fprintln(a.out, "No symbol detected")
		return nil
	}
	fmt.Fprintf(a.out, "%s seed=%d points=%d\n", sym, synth.SeedFrom(sym), len(s))
	for _, p := range s {
		fmt.Fprintf(a.out, "%s  %s\n", p.Time.Format("2006-01-02 15:04"), view.Number(p.Value))
	}
	a.plot(chart.ProjectSeries(s, a.cfg.Chart.Height))
	return nil
}

func (a *app) chart(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("chart", flag.ExitOnError)
	out := fs.String("o", "", "output file (default <SYMBOL>.html or equity.html)")
	equity := fs.Bool("equity", false, "chart the portfolio equity timeline")
	svg := fs.Bool("svg", false, "write SVG instead of HTML")
	fs.Parse(args)

	ext := ".html"
	if *svg {
		ext = ".svg"
	}

	if *equity {
		p, err := a.client.GetPortfolio(ctx)
		if err != nil {
			return err
		}
		return writeChart(orDefault(*out, "equity"+ext), func(w io.Writer) error {
			if *svg {
				return chart.WriteEquitySVG(w, p, a.cfg.Chart.Height)
			}
			return chart.WriteEquityHTML(w, p)
		})
	}

	if fs.NArg() < 1 {
		return fmt.Errorf("usage: helios-cli chart <SYMBOL> [-svg] [-o file]")
	}
	sym := domain.Normalize(fs.Arg(0))
	if !sym.Valid() {
		return fmt.Errorf("no symbol detected in %q", fs.Arg(0))
	}
	s := a.builder.Build(sym)
	path := orDefault(*out, sym.String()+ext)
	if err := writeChart(path, func(w io.Writer) error {
		if *svg {
			return chart.WriteSeriesSVG(w, sym, s, a.cfg.Chart.Height)
		}
		return chart.WriteSeriesHTML(w, sym, s)
	}); err != nil {
		return err
	}
	a.logger.Info("wrote chart", "symbol", sym.String(), "path", path)
	return nil
}

func writeChart(path string, render func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := render(f); err != nil {
		f.Close()
		return fmt.Errorf("rendering %s: %w", path, err)
	}
	return f.Close()
}

// export writes the series of every symbol in parallel, plus the portfolio
// equity timeline when requested.
func (a *app) export(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	dir := fs.String("dir", a.cfg.Storage.ExportDir, "export directory")
	equity := fs.Bool("equity", false, "also export the portfolio equity timeline")
	fs.Parse(args)

	if fs.NArg() == 0 && !*equity {
		return fmt.Errorf("usage: helios-cli export [-dir d] [-equity] <SYMBOL...>")
	}

	ps := store.NewParquetStore(*dir)
	g, gctx := errgroup.WithContext(ctx)
	for _, sym := range a.exportSymbols(fs.Args()) {
		sym := sym
		g.Go(func() error {
			s := a.builder.Build(sym)
			if err := ps.WriteSeries(gctx, sym, s); err != nil {
				return err
			}
			a.logger.Info("exported series", "symbol", sym.String(), "points", len(s), "dir", *dir)
			return nil
		})
	}
	if *equity {
		g.Go(func() error {
			p, err := a.client.GetPortfolio(gctx)
			if err != nil {
				return err
			}
			if err := ps.WriteEquity(gctx, p.EquityTimeline); err != nil {
				return err
			}
			a.logger.Info("exported equity timeline", "points", len(p.EquityTimeline), "dir", *dir)
			return nil
		})
	}
	return g.Wait()
}

// exportSymbols normalizes args, dropping blanks and repeats. Each symbol
// owns its own files, so one writer per symbol keeps the merges race-free.
func (a *app) exportSymbols(args []string) []domain.Symbol {
	seen := make(map[domain.Symbol]bool, len(args))
	var out []domain.Symbol
	for _, raw := range args {
		sym := domain.Normalize(raw)
		if !sym.Valid() {
			a.logger.Warn("skipping blank symbol", "arg", raw)
			continue
		}
		if seen[sym] {
			continue
		}
		seen[sym] = true
		out = append(out, sym)
	}
	return out
}

// stored reads back what export wrote: the stored symbols by default, one
// symbol's series over the lookback window, or the equity timeline.
func (a *app) stored(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("stored", flag.ExitOnError)
	dir := fs.String("dir", a.cfg.Storage.ExportDir, "export directory")
	equity := fs.Bool("equity", false, "show the stored equity timeline")
	since := fs.Duration("since", a.cfg.Synth.Lookback.Std(), "series window ending now")
	fs.Parse(args)

	ps := store.NewParquetStore(*dir)
	switch {
	case *equity:
		return a.storedEquity(ctx, ps)
	case fs.NArg() > 0:
		sym := domain.Normalize(fs.Arg(0))
		if !sym.Valid() {
			return fmt.Errorf("no symbol detected in %q", fs.Arg(0))
		}
		end := a.builder.Now()
		return a.storedSeries(ctx, ps, sym, end.Add(-*since), end)
	default:
		return a.storedSymbols(ctx, ps)
	}
}

func (a *app) storedSymbols(ctx context.Context, st store.SeriesStore) error {
	symbols, err := st.ListSymbols(ctx)
	if err != nil {
		return fmt.Errorf("listing stored symbols: %w", err)
	}
	if len(symbols) == 0 {
		fmt.Fprintln(a.out, "No stored series")
		return nil
	}
	for _, s := range symbols {
		fmt.Fprintln(a.out, s)
	}
	return nil
}

func (a *app) storedSeries(ctx context.Context, st store.SeriesStore, sym domain.Symbol, start, end time.Time) error {
	s, err := st.ReadSeries(ctx, sym, start, end)
	if err != nil {
		return fmt.Errorf("reading %s: %w", sym, err)
	}
	if len(s) == 0 {
		fmt.Fprintf(a.out, "No stored series for %s\n", sym)
		return nil
	}
	fmt.Fprintf(a.out, "%s points=%d\n", sym, len(s))
	for _, p := range s {
		fmt.Fprintf(a.out, "%s  %s\n", p.Time.UTC().Format("2006-01-02 15:04"), view.Number(p.Value))
	}
	a.plot(chart.ProjectSeries(s, a.cfg.Chart.Height))
	return nil
}

func (a *app) storedEquity(ctx context.Context, st store.EquityStore) error {
	timeline, err := st.ReadEquity(ctx)
	if err != nil {
		return err
	}
	if len(timeline) == 0 {
		fmt.Fprintln(a.out, "No stored equity timeline")
		return nil
	}
	fmt.Fprintf(a.out, "equity points=%d\n", len(timeline))
	for _, e := range timeline {
		fmt.Fprintf(a.out, "%s  %s\n", e.Timestamp, view.Currency(e.Equity))
	}
	a.plot(chart.ProjectEquity(&domain.Portfolio{EquityTimeline: timeline}, a.cfg.Chart.Height))
	return nil
}

func (a *app) plot(p chart.Projection) {
	for _, line := range chart.Plot(p, a.cfg.Chart.Width, a.cfg.Chart.Rows) {
		fmt.Fprintln(a.out, line)
	}
}

func (a *app) trade(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("trade", flag.ExitOnError)
	symbol := fs.String("symbol", "", "symbol to trade")
	side := fs.String("side", "BUY", "BUY or SELL")
	qty := fs.Int("qty", a.cfg.Ticket.DefaultQuantity, "quantity")
	price := fs.Float64("price", 0, "price (default: last synthetic price)")
	note := fs.String("note", "", "free-text note")
	storyID := fs.String("story", "", "story id to link")
	fs.Parse(args)

	sym := domain.Normalize(*symbol)
	if !sym.Valid() {
		return fmt.Errorf("usage: helios-cli trade -symbol SYM [-side BUY|SELL] [-qty n] [-price p]")
	}
	if *price == 0 {
		if last, ok := a.builder.Build(sym).Last(); ok {
			*price = last.Value
		}
	}

	req := domain.TradeRequest{
		Symbol:   sym.String(),
		Side:     domain.SideBuy,
		Quantity: *qty,
		Price:    *price,
		Note:     strings.TrimSpace(*note),
		StoryID:  *storyID,
	}
	if strings.EqualFold(*side, string(domain.SideSell)) {
		req.Side = domain.SideSell
	}
	if *storyID != "" {
		ins, err := a.client.GetStory(ctx, *storyID)
		if err != nil {
			return err
		}
		req.StoryTitle = ins.Story.Title
	}

	p, err := a.client.SubmitTrade(ctx, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Executed %s %d %s @ %s.\n\n", req.Side, req.Quantity, req.Symbol, view.Currency(req.Price))
	printPortfolio(a.out, p)
	return nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
