package optimize

import (
	"sort"

	"github.com/katalvlaran/trusstopo/kernel"
	"github.com/katalvlaran/trusstopo/reach"
	"github.com/katalvlaran/trusstopo/score"
	"github.com/katalvlaran/trusstopo/solve"
	"github.com/katalvlaran/trusstopo/structure"
)

// Driver owns the element-stiffness cache and run configuration for one
// optimization run. It is not safe for concurrent use: a single Driver
// is created, run once via Run, and discarded (spec.md §5's "Ke cache
// owned by the driver for the lifetime of one optimization run").
type Driver struct {
	cache *kernel.Cache
	cfg   config
}

// NewDriver resolves opts against the defaults and allocates a fresh
// element-stiffness cache for the run.
func NewDriver(opts ...Option) *Driver {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Driver{cache: kernel.NewCache(), cfg: cfg}
}

// OptimizeUntilTarget is the package's single entry point: construct a
// default-configured Driver around cb and run it to completion. Callers
// that need WithMaxHalvings/WithPatience overrides should use NewDriver
// and call Run directly instead.
func OptimizeUntilTarget(
	s *structure.Structure,
	protected map[int]struct{},
	targetMass float64,
	maxSteps int,
	cb Callbacks,
) (result *structure.Structure, steps int, status Status) {
	return NewDriver(WithCallbacks(cb)).Run(s, protected, targetMass, maxSteps)
}

// Run executes the greedy removal loop on a private clone of s, leaving
// the caller's structure untouched, until mass drops to targetMass,
// maxSteps is exhausted, the run stalls, or it is cancelled.
func (d *Driver) Run(s *structure.Structure, protected map[int]struct{}, targetMass float64, maxSteps int) (*structure.Structure, int, Status) {
	current := s.Clone()
	startMass := current.TotalMass()

	if startMass <= targetMass {
		return current, 0, AlreadyBelowTarget
	}

	u, _, err := solve.SolveWithCache(current, d.cache)
	if err != nil {
		// Initial structure is not solvable; nothing to optimize.
		return nil, 0, Stuck
	}

	supports, loads := protectedRoles(current, protected)

	steps := 0
	stagnation := 0

	for current.TotalMass() > targetMass && steps < maxSteps {
		if d.cfg.callbacks.Cancel != nil && d.cfg.callbacks.Cancel() {
			return current, steps, Cancelled
		}
		d.emitProgress(steps, current, targetMass)

		removable, err := d.rankCandidates(current, protected, supports, loads, u)
		if err != nil {
			return d.terminate(current, protected, steps, Stuck)
		}

		k := batchSize(current.TotalMass(), targetMass, startMass, len(current.Nodes))
		pool := removable[:min(len(removable), candidatePoolSize)]

		if newU, ok := d.attemptBatch(current, protected, pool, k); ok {
			u = newU
			steps++
			stagnation = 0
			d.emitSnapshot(steps, current)
			continue
		}

		stagnation++
		if newU, ok := d.stagnationEscape(current, protected, removable, stagnation); ok {
			u = newU
			steps++
			d.emitSnapshot(steps, current)
			continue
		}

		return d.terminate(current, protected, steps, Stuck)
	}

	if current.TotalMass() <= targetMass {
		return d.terminate(current, protected, steps, TargetReached)
	}
	return d.terminate(current, protected, steps, MaxStepsExceeded)
}

// candidatePoolSize is spec.md §4.6's "max(150, 400)" candidate pool
// cap, which simplifies to a constant 400 but is named for the
// provenance of that number.
const candidatePoolSize = 400

// rankCandidates scores the current structure from its solved
// displacement field u and returns non-protected node ids sorted by
// effective removal cost ascending, preferring the support/load
// last-path mask. Returns ErrNoRemovableCandidates if the mask holds no
// non-protected node.
func (d *Driver) rankCandidates(current *structure.Structure, protected map[int]struct{}, supports, loads []int, u []float64) ([]int, error) {
	pos := current.IDToPos()
	energies, err := score.SpringEnergies(current, d.cache, u, pos)
	if err != nil {
		return nil, err
	}
	raw := score.Raw(current, energies)
	smoothed := score.Smooth(current, raw, score.DefaultAlpha)

	anchors := append(append([]int(nil), supports...), loads...)
	eff := score.EffectiveCost(current, smoothed, anchors, score.DefaultGamma, score.DefaultBeta)

	mask := reach.LastPathMask(current, supports, loads, protected)

	ids := make([]int, 0, len(mask))
	for id := range mask {
		if _, isProtected := protected[id]; !isProtected {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil, ErrNoRemovableCandidates
	}

	sort.Slice(ids, func(i, j int) bool {
		if eff[ids[i]] != eff[ids[j]] {
			return eff[ids[i]] < eff[ids[j]]
		}
		return ids[i] < ids[j]
	})
	return ids, nil
}

// attemptBatch tries removing the first k pool entries, halving k on
// failure up to d.cfg.maxHalvings times. A failure at one level always
// reverts current to its pre-attempt state before trying the next,
// smaller level. Returns the new displacement field and true on
// acceptance.
func (d *Driver) attemptBatch(current *structure.Structure, protected map[int]struct{}, pool []int, k int) ([]float64, bool) {
	size := k
	for h := 0; h <= d.cfg.maxHalvings; h++ {
		if size > len(pool) {
			size = len(pool)
		}
		if size < 1 {
			return nil, false
		}

		snapshot := current.Clone()
		connected := true
		for i := 0; i < size; i++ {
			current.RemoveNode(pool[i])
			if !reach.ConnectivityOK(current, protected) {
				connected = false
				break
			}
		}

		if connected {
			reach.PruneDegree0(current, protected)
			if newU, _, err := solve.SolveWithCache(current, d.cache); err == nil {
				return newU, true
			}
		}

		*current = *snapshot
		size /= 2
	}
	return nil, false
}

// stagnationDefaultPool and stagnationWidePool are the candidate-pool
// sizes for the escape phase before and after patience is reached
// (spec.md §4.6).
const (
	stagnationDefaultPool = 2000
	stagnationWidePool    = 8000
)

// stagnationEscape widens the candidate pool and tries single-node
// removals in order until one is accepted or the pool is exhausted.
func (d *Driver) stagnationEscape(current *structure.Structure, protected map[int]struct{}, removable []int, stagnation int) ([]float64, bool) {
	size := min(len(removable), stagnationDefaultPool)
	if stagnation >= d.cfg.patience {
		size = min(len(removable), stagnationWidePool)
	}

	for _, nid := range removable[:size] {
		snapshot := current.Clone()
		current.RemoveNode(nid)

		if !reach.ConnectivityOK(current, protected) {
			*current = *snapshot
			continue
		}
		reach.PruneDegree0(current, protected)
		newU, _, err := solve.SolveWithCache(current, d.cache)
		if err != nil {
			*current = *snapshot
			continue
		}
		return newU, true
	}
	return nil, false
}

// batchSize computes the adaptive batch size k from spec.md §4.6: a
// node-count-proportional base, tightened as remaining progress and
// absolute mass reduction both shrink.
func batchSize(mass, targetMass, startMass float64, n int) int {
	k := max(8, min(120, int(ceilDiv(12*int64(n), 1000))))

	if mass > 0 {
		remaining := (mass - targetMass) / mass
		switch {
		case remaining < 0.03:
			k = min(k, 1)
		case remaining < 0.08:
			k = min(k, 8)
		case remaining < 0.20:
			k = min(k, 25)
		}
	}

	if startMass > 0 {
		reduction := mass / startMass
		switch {
		case reduction < 0.55:
			k = min(k, 1)
		case reduction < 0.65:
			k = min(k, 5)
		case reduction < 0.75:
			k = min(k, 10)
		}
	}

	return max(k, 1)
}

// ceilDiv returns ceil(a/b) for positive b, avoiding a float round-trip
// for the 0.012*N base computation (0.012 = 12/1000).
func ceilDiv(a, b int64) int64 {
	if a <= 0 {
		return 0
	}
	return (a + b - 1) / b
}

// protectedRoles splits protected into supports (nodes with any fixity
// flag) and loads (nodes carrying an applied force), since
// reach.LastPathMask needs the two reachability sources separately but
// OptimizeUntilTarget's contract only carries their union. A protected
// node is expected to be one or the other (spec.md's protected =
// supports ∪ loaded); a node that is somehow neither still needs a
// reachability side to seed, so it falls back to the load side rather
// than being silently dropped from both.
func protectedRoles(s *structure.Structure, protected map[int]struct{}) (supports, loads []int) {
	for id := range protected {
		n, ok := s.Nodes[id]
		if !ok {
			continue
		}
		switch {
		case n.Fixed():
			supports = append(supports, id)
		case n.Loaded():
			loads = append(loads, id)
		default:
			loads = append(loads, id)
		}
	}
	sort.Ints(supports)
	sort.Ints(loads)
	return supports, loads
}

// terminate applies the mandatory final degree-≤1 pruning pass before
// returning a terminal result.
func (d *Driver) terminate(current *structure.Structure, protected map[int]struct{}, steps int, status Status) (*structure.Structure, int, Status) {
	reach.PruneDegreeLE1(current, protected)
	return current, steps, status
}

func (d *Driver) emitProgress(step int, current *structure.Structure, targetMass float64) {
	if d.cfg.callbacks.Progress != nil {
		d.cfg.callbacks.Progress(step, current.TotalMass(), targetMass, len(current.Nodes))
	}
}

func (d *Driver) emitSnapshot(step int, current *structure.Structure) {
	if d.cfg.callbacks.Snapshot != nil {
		d.cfg.callbacks.Snapshot(step, current.Clone())
	}
}
