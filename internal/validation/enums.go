package validation

// Enum values - these MUST match the DB CHECK constraints in internal/database.
var (
	ValidWOStatuses    = []string{"draft", "open", "in_progress", "completed", "cancelled", "on_hold"}
	ValidBatchStages   = []string{"cutting", "production", "external", "qc", "packing", "dispatched"}
	ValidBatchStatuses = []string{"in_queue", "in_progress", "completed"}
	ValidMoveStatuses  = []string{"dispatched", "partial", "returned", "cancelled"}
	ValidNCRSeverities = []string{"minor", "major", "critical"}
	ValidNCRStatuses   = []string{"open", "investigating", "resolved", "closed"}
)

// woTransitions is the work order lifecycle state machine. Completed and
// cancelled are terminal.
var woTransitions = map[string][]string{
	"draft":       {"open", "cancelled"},
	"open":        {"in_progress", "on_hold", "cancelled"},
	"in_progress": {"completed", "on_hold", "cancelled"},
	"on_hold":     {"in_progress", "open", "cancelled"},
	"completed":   {},
	"cancelled":   {},
}

// ValidWOTransition reports whether a work order may move from one lifecycle
// status to another.
func ValidWOTransition(from, to string) bool {
	if from == to {
		return true
	}
	for _, s := range woTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
