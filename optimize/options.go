// Package optimize implements the greedy, mass-targeted node-removal
// loop: score the current structure, sort removal candidates, attempt a
// batch removal with rollback-on-failure and adaptive halving, escape
// stagnation by widening the candidate pool, and terminate
// deterministically. The control flow and state machine are grounded in
// lvlath's run-scoped functional-options drivers (builder.BuilderOption,
// dfs.Option), generalized from graph traversal to this domain's
// solve-score-remove cycle.
package optimize

import "github.com/katalvlaran/trusstopo/structure"

// Callbacks are optional, side-effect-only observation hooks. None of
// them may influence control flow; Cancel is the sole exception, since
// observing it is how external cancellation takes effect.
type Callbacks struct {
	// Progress is called at the start of every iteration.
	Progress func(step int, curMass, targetMass float64, nNodes int)

	// Snapshot is called after every accepted iteration with a private
	// copy of the committed structure, safe for the caller to retain.
	Snapshot func(step int, s *structure.Structure)

	// Cancel is polled at each iteration boundary; returning true stops
	// the run with status Cancelled.
	Cancel func() bool
}

// DefaultMaxHalvings and DefaultPatience are the driver's default
// retry/stagnation knobs (spec.md §4.6).
const (
	DefaultMaxHalvings = 8
	DefaultPatience    = 80
)

// config holds the resolved run configuration after applying Options.
type config struct {
	callbacks   Callbacks
	maxHalvings int
	patience    int
}

func defaultConfig() config {
	return config{
		maxHalvings: DefaultMaxHalvings,
		patience:    DefaultPatience,
	}
}

// Option mutates a Driver's run configuration. Constructors validate
// and panic on nonsensical values, matching lvlath's functional
// options contract; Run itself never panics on caller input.
type Option func(*config)

// WithCallbacks attaches progress/snapshot/cancel hooks to the run.
func WithCallbacks(cb Callbacks) Option {
	return func(c *config) { c.callbacks = cb }
}

// WithMaxHalvings sets how many times a batch size is halved before a
// failed attempt escalates to stagnation handling. Panics if n < 0.
func WithMaxHalvings(n int) Option {
	if n < 0 {
		panic("optimize: WithMaxHalvings(n<0)")
	}
	return func(c *config) { c.maxHalvings = n }
}

// WithPatience sets the stagnation-round threshold after which the
// escape pool widens from 2000 to 8000 candidates. Panics if n <= 0.
func WithPatience(n int) Option {
	if n <= 0 {
		panic("optimize: WithPatience(n<=0)")
	}
	return func(c *config) { c.patience = n }
}
