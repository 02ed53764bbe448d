package optimize

// Status is the human-readable termination reason returned alongside
// the optimizer's result structure and step count.
type Status string

const (
	// TargetReached: total mass fell to or below the target.
	TargetReached Status = "target_reached"

	// MaxStepsExceeded: the step bound was hit before reaching target.
	MaxStepsExceeded Status = "max_steps_exceeded"

	// Stuck: stagnation escape exhausted without accepting a removal,
	// or the run could not even establish an initial solved state.
	Stuck Status = "stuck"

	// Cancelled: the caller's Callbacks.Cancel reported true.
	Cancelled Status = "cancelled"

	// AlreadyBelowTarget: called with target_mass >= current mass; the
	// structure is returned unmodified and no iteration runs.
	AlreadyBelowTarget Status = "already_below_target"
)
