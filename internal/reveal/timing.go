package reveal

import "time"

const (
	// Total is the nominal length of a reveal, from the first tick to completion.
	Total = 5200 * time.Millisecond
	// Hold is how long the winner stays highlighted before the display is cleared.
	Hold = 700 * time.Millisecond
	// SafetyMargin is added to Total for the timer that forces completion.
	SafetyMargin = 1000 * time.Millisecond

	phase2Start  = 0.55
	landingStart = 0.85

	minStep = 3
	maxStep = 10
	// landingExtras is the number of non-winners that may still flash while landing.
	landingExtras = 2
	// stepAttempts bounds the resampling of a jump that hits the current tile or a neighbour.
	stepAttempts = 8
)

type delayRange struct {
	min, max int
}

var delays = map[State]delayRange{
	Phase1:  {180, 240},
	Phase2:  {260, 360},
	Landing: {420, 620},
}

// Timing holds the durations of a reveal. Phase thresholds and tick delays are fixed.
type Timing struct {
	Total        time.Duration
	Hold         time.Duration
	SafetyMargin time.Duration
}

// DefaultTiming returns Total, Hold and SafetyMargin.
func DefaultTiming() Timing {
	return Timing{Total: Total, Hold: Hold, SafetyMargin: SafetyMargin}
}

func phaseFor(progress float64) State {
	switch {
	case progress < phase2Start:
		return Phase1
	case progress < landingStart:
		return Phase2
	default:
		return Landing
	}
}
