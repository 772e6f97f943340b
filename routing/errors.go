package routing

import "errors"

var (
	// ErrUnknownStation means an endpoint is not in the graph.
	ErrUnknownStation = errors.New("unknown station")
	// ErrNoPathFound means the search exhausted its queue without reaching the
	// destination.
	ErrNoPathFound = errors.New("no path found")
	// ErrExplorationBudgetExceeded means the search popped more states than
	// allowed. Callers treat it like ErrNoPathFound.
	ErrExplorationBudgetExceeded = errors.New("exploration budget exceeded")
)
