package session

import "errors"

var (
	// ErrRevealInProgress rejects mutations while a reveal runs.
	ErrRevealInProgress = errors.New("reveal in progress")
	// ErrTransitionInProgress rejects navigation while the grid is changing.
	ErrTransitionInProgress = errors.New("grid transition in progress")
	// ErrNoCategory is returned by operations that need a chosen category.
	ErrNoCategory = errors.New("no category selected")
	// ErrUnknownNode is returned for ids that are not reachable from the current position.
	ErrUnknownNode = errors.New("unknown node")
	// ErrNotAtLeaf is returned by operations that need a leaf.
	ErrNotAtLeaf = errors.New("current node is not a leaf")
	// ErrNoResult is returned by replay when nothing was decided yet.
	ErrNoResult = errors.New("no result to replay")
	// ErrNoOutcome is returned when the tree offers nothing to decide from.
	ErrNoOutcome = errors.New("no outcome available")
	// ErrNoFactory is returned by Manager.Open without a session factory.
	ErrNoFactory = errors.New("session factory not configured")
)
