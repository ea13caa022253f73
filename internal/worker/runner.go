// Package worker orchestrates analysis and planning runs: it wires the card
// catalog, the booster-data source, the weighting resolver, and the planner
// together, enforces one run at a time, and reports progress through the
// event dispatcher.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/ramonehamilton/mtg-sorter/internal/analysis"
	"github.com/ramonehamilton/mtg-sorter/internal/booster"
	"github.com/ramonehamilton/mtg-sorter/internal/boosterdata"
	"github.com/ramonehamilton/mtg-sorter/internal/cards"
	"github.com/ramonehamilton/mtg-sorter/internal/events"
	"github.com/ramonehamilton/mtg-sorter/internal/planner"
)

// ErrRunInProgress is returned when a run is started while another is active.
var ErrRunInProgress = errors.New("another run is already in progress")

// ErrMultiSetProbability is returned when probability weighting is requested
// for an inventory spanning more than one set. Booster sheets are per set, so
// cross-set probabilities are not comparable.
var ErrMultiSetProbability = errors.New("probability weighting requires a single-set inventory")

// Event types dispatched during a run.
const (
	EventRunProgress = "run:progress"
	EventRunNotice   = "run:notice"
	EventRunDone     = "run:done"
)

// Catalog supplies normalized card records per set.
type Catalog interface {
	SetCards(ctx context.Context, setCode string) ([]*cards.Card, error)
}

// BoosterSource supplies booster configurations per set.
type BoosterSource interface {
	Configurations(ctx context.Context, setCode string) (map[string]booster.Configuration, error)
}

// Runner executes analysis and planning runs, one at a time.
type Runner struct {
	catalog    Catalog
	boosters   BoosterSource
	dispatcher *events.Dispatcher

	mu      sync.Mutex
	running bool
}

// NewRunner creates a Runner. The dispatcher may be nil when no observer
// cares about progress.
func NewRunner(catalog Catalog, boosters BoosterSource, dispatcher *events.Dispatcher) *Runner {
	if dispatcher == nil {
		dispatcher = events.NewDispatcher()
	}
	return &Runner{catalog: catalog, boosters: boosters, dispatcher: dispatcher}
}

// Dispatcher exposes the runner's event dispatcher for observer registration.
func (r *Runner) Dispatcher() *events.Dispatcher {
	return r.dispatcher
}

// begin claims the single run slot and returns the new run's ID.
func (r *Runner) begin() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return "", ErrRunInProgress
	}
	r.running = true
	return uuid.New().String(), nil
}

func (r *Runner) end() {
	r.mu.Lock()
	r.running = false
	r.mu.Unlock()
}

func (r *Runner) progress(runID, stage string, fraction float64) {
	r.dispatcher.Dispatch(events.Event{
		Type:     EventRunProgress,
		RunID:    runID,
		Stage:    stage,
		Fraction: fraction,
	})
}

func (r *Runner) notify(runID string, n events.Notice) {
	notice := n
	r.dispatcher.Dispatch(events.Event{
		Type:   EventRunNotice,
		RunID:  runID,
		Notice: &notice,
	})
}

// AnalyzeRequest describes one analysis run.
type AnalyzeRequest struct {
	// SetCode selects the inventory: every card of this set.
	SetCode string

	// Mode is the requested weighting strategy.
	Mode analysis.Mode

	// Key derives the grouping key. Nil defaults to first-letter grouping.
	Key analysis.KeyFunc

	// StaticWeights overrides the fallback rarity table. Nil uses the
	// built-in defaults.
	StaticWeights map[cards.Rarity]float64
}

// AnalysisReport is the outcome of one analysis run.
type AnalysisReport struct {
	RunID   string
	SetCode string

	// Mode is the weighting strategy actually applied, after any fallback.
	Mode analysis.Mode

	Result  analysis.Result
	Cards   []*cards.Card
	Notices []events.Notice
}

// AnalyzeSet runs the full analysis pipeline for a set: fetch cards, resolve
// the weighting strategy, aggregate. Booster data being unavailable degrades
// probability mode to rarity weighting with a notice instead of failing.
func (r *Runner) AnalyzeSet(ctx context.Context, req AnalyzeRequest) (*AnalysisReport, error) {
	runID, err := r.begin()
	if err != nil {
		return nil, err
	}
	defer r.end()

	keyFn := req.Key
	if keyFn == nil {
		keyFn = analysis.FirstLetterKey
	}

	r.progress(runID, "fetch", 0.0)
	list, err := r.catalog.SetCards(ctx, req.SetCode)
	if err != nil {
		return nil, err
	}
	if err := validateSingleSet(req.Mode, list); err != nil {
		return nil, err
	}

	collector := &events.Collector{}
	mode := req.Mode

	r.progress(runID, "weights", 0.4)
	var probabilities map[string]float64
	if mode == analysis.ModeProbability {
		probabilities = r.resolveProbabilities(ctx, req.SetCode, collector)
		if probabilities == nil {
			mode = analysis.ModeRarity
		}
	}
	weighter := analysis.ResolveWeighter(req.Mode, probabilities, req.StaticWeights, collector)

	r.progress(runID, "aggregate", 0.7)
	result, err := analysis.Aggregate(ctx, list, keyFn, weighter)
	if err != nil {
		return nil, err
	}

	for _, n := range collector.Notices() {
		r.notify(runID, n)
	}
	r.progress(runID, "done", 1.0)
	r.dispatcher.Dispatch(events.Event{Type: EventRunDone, RunID: runID, Fraction: 1.0})

	return &AnalysisReport{
		RunID:   runID,
		SetCode: strings.ToUpper(strings.TrimSpace(req.SetCode)),
		Mode:    mode,
		Result:  result,
		Cards:   list,
		Notices: collector.Notices(),
	}, nil
}

// resolveProbabilities fetches booster data and computes expected copies per
// pack. Any failure short of a context cancellation returns nil so the run
// degrades to rarity weighting.
func (r *Runner) resolveProbabilities(ctx context.Context, setCode string, collector *events.Collector) map[string]float64 {
	configs, err := r.boosters.Configurations(ctx, setCode)
	if err != nil {
		if !errors.Is(err, boosterdata.ErrUnavailable) {
			log.Printf("[Worker] Booster data fetch failed for %s: %v", setCode, err)
		}
		return nil
	}

	cfg, ok := booster.Select(configs)
	if !ok {
		return nil
	}

	probabilities, notices, err := booster.ComputeProbabilities(cfg)
	if err != nil {
		log.Printf("[Worker] Booster config %q unusable for %s: %v", cfg.Name, setCode, err)
		return nil
	}
	collector.Extend(notices)
	return probabilities
}

// validateSingleSet rejects probability weighting over a mixed-set inventory.
func validateSingleSet(mode analysis.Mode, list []*cards.Card) error {
	if mode != analysis.ModeProbability {
		return nil
	}
	var set string
	for _, c := range list {
		if set == "" {
			set = c.SetCode
			continue
		}
		if c.SetCode != set {
			return fmt.Errorf("%w: inventory mixes %s and %s", ErrMultiSetProbability, set, c.SetCode)
		}
	}
	return nil
}

// PlanRequest describes one planning run.
type PlanRequest struct {
	// SetCode selects the inventory when Inventory is nil.
	SetCode string

	// Inventory overrides the catalog lookup when non-nil.
	Inventory []*cards.Card

	// Order is the criteria order by name, e.g. ["letter", "rarity"].
	Order []string
}

// PlanReport is the outcome of one planning run.
type PlanReport struct {
	RunID    string
	Root     *planner.SortGroup
	Criteria []planner.Criterion
	Notices  []events.Notice
}

// BuildPlan runs the planning pipeline: resolve the inventory, parse the
// criteria order, and build the partition tree. Cards that a criterion could
// not key raise an unknown-bucket notice on the report.
func (r *Runner) BuildPlan(ctx context.Context, req PlanRequest) (*PlanReport, error) {
	runID, err := r.begin()
	if err != nil {
		return nil, err
	}
	defer r.end()

	criteria, err := planner.ParseOrder(req.Order)
	if err != nil {
		return nil, err
	}

	inventory := req.Inventory
	if inventory == nil {
		r.progress(runID, "fetch", 0.0)
		inventory, err = r.catalog.SetCards(ctx, req.SetCode)
		if err != nil {
			return nil, err
		}
	}

	r.progress(runID, "plan", 0.5)
	root, err := planner.BuildPlan(ctx, inventory, criteria)
	if err != nil {
		return nil, err
	}

	collector := &events.Collector{}
	if n := countUnknownGroups(root); n > 0 {
		collector.AddOnce(events.Noticef(events.NoticeUnknownBucket,
			"%d group(s) hold cards no criterion could key; review the Unknown piles", n))
	}
	for _, notice := range collector.Notices() {
		r.notify(runID, notice)
	}

	r.progress(runID, "done", 1.0)
	r.dispatcher.Dispatch(events.Event{Type: EventRunDone, RunID: runID, Fraction: 1.0})

	return &PlanReport{
		RunID:    runID,
		Root:     root,
		Criteria: criteria,
		Notices:  collector.Notices(),
	}, nil
}

// countUnknownGroups counts plan nodes holding cards no criterion could key.
func countUnknownGroups(group *planner.SortGroup) int {
	count := 0
	if group.Unknown {
		count++
	}
	for _, child := range group.Children {
		count += countUnknownGroups(child)
	}
	return count
}

// LetterPiles resolves the inventory and builds letter piles for physical
// sorting.
func (r *Runner) LetterPiles(ctx context.Context, setCode string, mode planner.PileMode, threshold int) ([]*planner.Pile, map[string]string, error) {
	runID, err := r.begin()
	if err != nil {
		return nil, nil, err
	}
	defer r.end()

	r.progress(runID, "fetch", 0.0)
	inventory, err := r.catalog.SetCards(ctx, setCode)
	if err != nil {
		return nil, nil, err
	}

	r.progress(runID, "plan", 0.5)
	piles, mapping := planner.BuildLetterPiles(inventory, mode, threshold)

	r.progress(runID, "done", 1.0)
	r.dispatcher.Dispatch(events.Event{Type: EventRunDone, RunID: runID, Fraction: 1.0})
	return piles, mapping, nil
}
