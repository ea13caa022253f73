// Command mtg-sorter analyzes Magic: The Gathering sets and plans how to
// physically sort a collection.
//
// Usage:
//
//	mtg-sorter analyze -set KTK [-weighting probability|rarity|count] [-chart out.html]
//	mtg-sorter plan    -set KTK [-criteria letter,rarity]
//	mtg-sorter letters -set KTK [-mode simple|grouped|optimal] [-threshold 20]
//	mtg-sorter config
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/pelletier/go-toml/v2"

	"github.com/ramonehamilton/mtg-sorter/internal/analysis"
	"github.com/ramonehamilton/mtg-sorter/internal/boosterdata"
	"github.com/ramonehamilton/mtg-sorter/internal/cards"
	"github.com/ramonehamilton/mtg-sorter/internal/catalog"
	"github.com/ramonehamilton/mtg-sorter/internal/charts"
	"github.com/ramonehamilton/mtg-sorter/internal/config"
	"github.com/ramonehamilton/mtg-sorter/internal/events"
	"github.com/ramonehamilton/mtg-sorter/internal/planner"
	"github.com/ramonehamilton/mtg-sorter/internal/storage"
	"github.com/ramonehamilton/mtg-sorter/internal/version"
	"github.com/ramonehamilton/mtg-sorter/internal/worker"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "version", "-v", "--version":
		fmt.Printf("mtg-sorter %s\n", version.GetVersion())
		return
	case "help", "-h", "--help":
		usage()
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	var cmdErr error
	switch os.Args[1] {
	case "analyze":
		cmdErr = runAnalyze(ctx, cfg, os.Args[2:])
	case "plan":
		cmdErr = runPlan(ctx, cfg, os.Args[2:])
	case "letters":
		cmdErr = runLetters(ctx, cfg, os.Args[2:])
	case "mark":
		cmdErr = runMark(ctx, cfg, os.Args[2:])
	case "config":
		cmdErr = runConfig(cfg)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", os.Args[1])
		usage()
		os.Exit(2)
	}

	if cmdErr != nil {
		reportError(cmdErr)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `mtg-sorter - set analysis and collection sorting plans

Commands:
  analyze  Weighted frequency breakdown of a set (first letter of card name)
  plan     Hierarchical sorting plan for a set
  letters  Letter piles for physical sorting
  mark     Record a card as sorted/unsorted or set its owned quantity
  config   Print the effective configuration

Run "mtg-sorter <command> -h" for command flags.`)
}

// reportError prints a friendly message per failure class.
func reportError(err error) {
	var setNotFound *catalog.SetNotFoundError
	var cardNotFound *catalog.CardNotFoundError
	switch {
	case errors.As(err, &setNotFound):
		fmt.Fprintf(os.Stderr, "Error: set %q is unknown. Check the set code (e.g. KTK, MH2).\n", setNotFound.Code)
	case errors.As(err, &cardNotFound):
		fmt.Fprintf(os.Stderr, "Error: card %q is not in set %s. The name must match exactly.\n", cardNotFound.Name, cardNotFound.SetCode)
	case errors.Is(err, boosterdata.ErrUnavailable):
		fmt.Fprintln(os.Stderr, "Error: no booster data for this set. Re-run with -weighting rarity.")
	case errors.Is(err, worker.ErrMultiSetProbability):
		fmt.Fprintln(os.Stderr, "Error: probability weighting needs a single-set inventory. Use -weighting rarity or -weighting count.")
	case errors.Is(err, context.Canceled):
		fmt.Fprintln(os.Stderr, "Canceled.")
	default:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
}

// buildRunner wires the storage, API clients, and services behind a Runner.
// The returned closer releases the cache database.
func buildRunner(cfg *config.Config) (*worker.Runner, func(), error) {
	runner, _, closeDB, err := buildServices(cfg)
	return runner, closeDB, err
}

// buildServices assembles the service graph and exposes the catalog service
// for commands that mutate inventory state directly.
func buildServices(cfg *config.Config) (*worker.Runner, *catalog.Service, func(), error) {
	dbPath := cfg.Cache.DBPath
	if dbPath == "" {
		var err error
		dbPath, err = config.DefaultDBPath()
		if err != nil {
			return nil, nil, nil, err
		}
	}

	db, err := storage.Open(storage.DefaultConfig(dbPath))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open cache database: %w", err)
	}

	rateLimit, err := cfg.GetRateLimit()
	if err != nil {
		_ = db.Close()
		return nil, nil, nil, err
	}
	ttl, err := cfg.GetCacheTTL()
	if err != nil {
		_ = db.Close()
		return nil, nil, nil, err
	}

	catalogSvc := catalog.NewService(
		catalog.NewClient(catalog.ClientOptions{
			BaseURL:   cfg.API.ScryfallBaseURL,
			UserAgent: cfg.API.UserAgent,
			RateDelay: rateLimit,
		}),
		storage.NewSetCardRepository(db),
		ttl,
	)
	boosterSvc := boosterdata.NewService(
		boosterdata.NewClient(boosterdata.ClientOptions{
			BaseURL:   cfg.API.MTGJSONBaseURL,
			UserAgent: cfg.API.UserAgent,
			RateDelay: rateLimit,
		}),
		storage.NewBoosterConfigRepository(db),
		ttl,
	)

	runner := worker.NewRunner(catalogSvc, boosterSvc, events.NewDispatcher())
	return runner, catalogSvc, func() { _ = db.Close() }, nil
}

func runAnalyze(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	setCode := fs.String("set", "", "set code to analyze (required)")
	weighting := fs.String("weighting", cfg.Analyzer.Weighting, "weighting mode: probability, rarity or count")
	chartPath := fs.String("chart", "", "write an HTML bar chart to this path")
	openChart := fs.Bool("open", false, "open the chart in the default browser")
	_ = fs.Parse(args)

	if *setCode == "" {
		fs.Usage()
		return fmt.Errorf("-set is required")
	}

	runner, closeDB, err := buildRunner(cfg)
	if err != nil {
		return err
	}
	defer closeDB()

	report, err := runner.AnalyzeSet(ctx, worker.AnalyzeRequest{
		SetCode:       *setCode,
		Mode:          analysis.Mode(*weighting),
		StaticWeights: staticWeights(cfg.Analyzer.RarityWeights),
	})
	if err != nil {
		return err
	}

	printNotices(report.Notices)
	fmt.Printf("Set %s: %d cards, weighting: %s\n\n", report.SetCode, len(report.Cards), report.Mode)
	fmt.Printf("%-8s %8s %12s\n", "Group", "Cards", "Weighted")
	for _, key := range report.Result.SortedKeys() {
		bucket := report.Result[key]
		fmt.Printf("%-8s %8d %12.3f\n", key, bucket.RawCount, bucket.WeightedScore)
	}
	fmt.Printf("\n%-8s %8d %12.3f\n", "Total", report.Result.TotalCount(), report.Result.TotalScore())

	if *chartPath != "" {
		title := fmt.Sprintf("%s by first letter (%s)", report.SetCode, report.Mode)
		if err := charts.RenderAnalysisChart(report.Result, title, *chartPath); err != nil {
			return err
		}
		fmt.Printf("\nChart written to %s\n", *chartPath)
		if *openChart {
			if err := charts.OpenInBrowser(*chartPath); err != nil {
				log.Printf("[CLI] Could not open browser: %v", err)
			}
		}
	}
	return nil
}

func runPlan(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("plan", flag.ExitOnError)
	setCode := fs.String("set", "", "set code to plan (required)")
	criteria := fs.String("criteria", "letter,rarity", "comma-separated sort criteria (letter, rarity, set, name)")
	_ = fs.Parse(args)

	if *setCode == "" {
		fs.Usage()
		return fmt.Errorf("-set is required")
	}

	runner, closeDB, err := buildRunner(cfg)
	if err != nil {
		return err
	}
	defer closeDB()

	report, err := runner.BuildPlan(ctx, worker.PlanRequest{
		SetCode: *setCode,
		Order:   splitCriteria(*criteria),
	})
	if err != nil {
		return err
	}

	printNotices(report.Notices)
	printGroup(report.Root, 0)
	return nil
}

func runLetters(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("letters", flag.ExitOnError)
	setCode := fs.String("set", "", "set code (required)")
	mode := fs.String("mode", cfg.Planner.PileMode, "pile mode: simple, grouped or optimal")
	threshold := fs.Int("threshold", cfg.Planner.PileThreshold, "minimum copies per pile")
	_ = fs.Parse(args)

	if *setCode == "" {
		fs.Usage()
		return fmt.Errorf("-set is required")
	}

	runner, closeDB, err := buildRunner(cfg)
	if err != nil {
		return err
	}
	defer closeDB()

	piles, _, err := runner.LetterPiles(ctx, *setCode, planner.PileMode(*mode), *threshold)
	if err != nil {
		return err
	}

	fmt.Printf("%-6s %8s %10s\n", "Pile", "Cards", "Remaining")
	for _, pile := range piles {
		fmt.Printf("%-6s %8d %10d\n", pile.Letters, len(pile.Cards), pile.UnsortedQuantity())
	}
	return nil
}

func runMark(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("mark", flag.ExitOnError)
	setCode := fs.String("set", "", "set code (required)")
	cardName := fs.String("card", "", "exact card name (required)")
	unsorted := fs.Bool("unsorted", false, "clear the sorted flag instead of setting it")
	quantity := fs.Int("quantity", -1, "set the owned copy count instead of the sorted flag")
	_ = fs.Parse(args)

	if *setCode == "" || *cardName == "" {
		fs.Usage()
		return fmt.Errorf("-set and -card are required")
	}

	_, catalogSvc, closeDB, err := buildServices(cfg)
	if err != nil {
		return err
	}
	defer closeDB()

	if *quantity >= 0 {
		if err := catalogSvc.SetQuantity(ctx, *setCode, *cardName, *quantity); err != nil {
			return err
		}
		fmt.Printf("%s: quantity of %q set to %d\n", strings.ToUpper(*setCode), *cardName, *quantity)
		return nil
	}

	if err := catalogSvc.MarkSorted(ctx, *setCode, *cardName, !*unsorted); err != nil {
		return err
	}
	state := "sorted"
	if *unsorted {
		state = "unsorted"
	}
	fmt.Printf("%s: %q marked %s\n", strings.ToUpper(*setCode), *cardName, state)
	return nil
}

func runConfig(cfg *config.Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	fmt.Print(string(data))
	return nil
}

func printNotices(notices []events.Notice) {
	for _, n := range notices {
		fmt.Fprintf(os.Stderr, "Note: %s\n", n.Message)
	}
	if len(notices) > 0 {
		fmt.Fprintln(os.Stderr)
	}
}

// printGroup renders the plan tree with per-group progress.
func printGroup(group *planner.SortGroup, depth int) {
	indent := strings.Repeat("  ", depth)
	fmt.Printf("%s%s (%d cards, %d unsorted)\n",
		indent, group.Label, group.TotalQuantity(), group.UnsortedQuantity())
	for _, child := range group.Children {
		printGroup(child, depth+1)
	}
}

// staticWeights merges configured rarity weight overrides over the built-in
// fallback table. Nil when nothing is overridden.
func staticWeights(overrides map[string]float64) map[cards.Rarity]float64 {
	if len(overrides) == 0 {
		return nil
	}
	table := analysis.DefaultRarityWeights()
	for name, weight := range overrides {
		table[cards.ParseRarity(name)] = weight
	}
	return table
}

func splitCriteria(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
