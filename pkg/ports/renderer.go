package ports

import "github.com/aretw0/letluck/pkg/domain"

// Renderer is the rendering collaborator of a session.
// All methods are invoked from the execution lane and must not block.
type Renderer interface {
	Render(view domain.View)
	Highlight(id string)
	ClearHighlight()
	Collapse(id string)
}

// TransitionObserver is implemented by renderers that animate grid transitions.
type TransitionObserver interface {
	Transition(phase, style string)
}
