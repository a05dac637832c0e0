package session

import "helios/internal/domain"

// Phase is the insights lifecycle of the current selection.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseStorySelected
	PhaseInsightsLoading
	PhaseInsightsReady
	PhaseInsightsFailed
)

var phaseNames = map[Phase]string{
	PhaseIdle:            "idle",
	PhaseStorySelected:   "story_selected",
	PhaseInsightsLoading: "insights_loading",
	PhaseInsightsReady:   "insights_ready",
	PhaseInsightsFailed:  "insights_failed",
}

func (p Phase) String() string {
	if s, ok := phaseNames[p]; ok {
		return s
	}
	return "unknown"
}

// State is the selection state of a session.
//
// LastRendered changes only when a refresh cycle completes and is the sole
// guard against repopulating ticket fields for an unchanged symbol.
type State struct {
	SelectedStoryID string
	ResolvedSymbol  domain.Symbol
	LastRendered    domain.Symbol
}

// InsightsRequest identifies an insights fetch issued by SelectStory. The
// result must be handed back with the same request so late responses for an
// earlier selection can be recognised.
type InsightsRequest struct {
	StoryID string
	Seq     uint64
}

// Status strings shown by the client.
const (
	HintDetecting  = "Detecting symbol..."
	HintNoSymbol   = "No symbol detected"
	NoStoryLinked  = "No story selected"
	FeedLoading    = "Loading feed..."
	FeedRefreshing = "Refreshing feed..."
	FeedEmpty      = "No stories available"
)
