package pacing

// VisitKey identifies one continuous occupancy of a narrative node.
// Re-entering a node starts a new visit with a fresh budget.
type VisitKey struct {
	SessionID string
	VisitID   string
}

// VisitLedger accumulates the minutes consumed by cap-subject actions
// per node visit. It is passed into the Engine explicitly rather than
// held as ambient state, so cap behavior is testable in isolation.
type VisitLedger struct {
	spent map[VisitKey]int
}

// NewVisitLedger returns an empty ledger.
func NewVisitLedger() *VisitLedger {
	return &VisitLedger{spent: make(map[VisitKey]int)}
}

// Spent returns the minutes already consumed in a visit.
func (l *VisitLedger) Spent(key VisitKey) int {
	return l.spent[key]
}

// Seed sets the accumulated minutes for a visit, used when restoring a
// persisted session.
func (l *VisitLedger) Seed(key VisitKey, minutes int) {
	l.spent[key] = minutes
}

// Add accrues minutes against a visit.
func (l *VisitLedger) Add(key VisitKey, minutes int) {
	l.spent[key] += minutes
}

// Reset clears a visit's accumulation.
func (l *VisitLedger) Reset(key VisitKey) {
	delete(l.spent, key)
}
