package optimize

import "errors"

// ErrNoRemovableCandidates indicates every non-protected node is gone:
// the candidate pool for a removal attempt is empty. The driver treats
// this as a terminal Stuck condition rather than propagating the error.
var ErrNoRemovableCandidates = errors.New("optimize: no removable candidates")
