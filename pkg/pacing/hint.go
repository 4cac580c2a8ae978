package pacing

// Hint is an advisory pacing suggestion from a narrative-analysis
// collaborator. It never overrides an author-specified category and is
// ignored below the engine's confidence threshold.
type Hint struct {
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
}

// HintProvider supplies advisory hints. A nil provider means no hints;
// the engine must remain fully functional without one.
type HintProvider interface {
	TimeHint(ctx ActionContext) (Hint, bool)
}
