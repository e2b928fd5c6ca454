package domain

import "fmt"

// Crumb is one step of the breadcrumb path.
type Crumb struct {
	NodeID string `json:"node_id"`
	Label  string `json:"label"`
}

// NavigationState is the snapshot of a session.
//
// Path is non-empty iff CategoryID is set, Path[0] is the category root and the
// last crumb is NodeID. PendingResult holds the winner while a reveal runs and is
// replaced by LastResult once the reveal completes; both are never set together.
type NavigationState struct {
	CategoryID    string  `json:"category_id,omitempty"`
	NodeID        string  `json:"node_id,omitempty"`
	Path          []Crumb `json:"path"`
	PendingResult *Item   `json:"pending_result,omitempty"`
	LastResult    *Item   `json:"last_result,omitempty"`

	// Sealed holds an encrypted snapshot written by an encrypting store.
	// A sealed state carries nothing else and must be opened before use.
	Sealed []byte `json:"sealed,omitempty"`
}

// NewNavigationState creates the empty "home" state.
func NewNavigationState() *NavigationState {
	return &NavigationState{Path: []Crumb{}}
}

// AtHome reports whether no category has been chosen.
func (s *NavigationState) AtHome() bool {
	return s.CategoryID == ""
}

// Reset returns the state to home.
func (s *NavigationState) Reset() {
	s.CategoryID = ""
	s.NodeID = ""
	s.Path = []Crumb{}
	s.PendingResult = nil
	s.LastResult = nil
}

// ClearResults drops both the pending and the committed result.
func (s *NavigationState) ClearResults() {
	s.PendingResult = nil
	s.LastResult = nil
}

// SetPending installs the winner of a running reveal.
func (s *NavigationState) SetPending(item Item) {
	s.PendingResult = &item
	s.LastResult = nil
}

// Commit promotes the pending result to the committed one.
// It returns false when nothing was pending.
func (s *NavigationState) Commit() bool {
	if s.PendingResult == nil {
		return false
	}
	s.LastResult = s.PendingResult
	s.PendingResult = nil
	return true
}

// Clone returns a deep copy safe to hand outside the owning session.
func (s *NavigationState) Clone() *NavigationState {
	if s == nil {
		return nil
	}
	next := *s
	next.Path = append([]Crumb{}, s.Path...)
	next.Sealed = append([]byte(nil), s.Sealed...)
	if s.PendingResult != nil {
		p := *s.PendingResult
		next.PendingResult = &p
	}
	if s.LastResult != nil {
		l := *s.LastResult
		next.LastResult = &l
	}
	return &next
}

// Validate checks the structural invariants of the state.
func (s *NavigationState) Validate() error {
	if len(s.Sealed) > 0 {
		return fmt.Errorf("%w: state is still sealed", ErrInvalidState)
	}
	if s.PendingResult != nil && s.LastResult != nil {
		return fmt.Errorf("%w: pending and last result both set", ErrInvalidState)
	}
	if s.CategoryID == "" {
		if len(s.Path) != 0 || s.NodeID != "" {
			return fmt.Errorf("%w: path without category", ErrInvalidState)
		}
		return nil
	}
	if len(s.Path) == 0 {
		return fmt.Errorf("%w: category %q without path", ErrInvalidState, s.CategoryID)
	}
	if s.Path[0].NodeID != RootID(s.CategoryID) {
		return fmt.Errorf("%w: path starts at %q, not the category root", ErrInvalidState, s.Path[0].NodeID)
	}
	if last := s.Path[len(s.Path)-1]; last.NodeID != s.NodeID {
		return fmt.Errorf("%w: path ends at %q but node is %q", ErrInvalidState, last.NodeID, s.NodeID)
	}
	return nil
}
