// Package qc holds the pure work-order readiness logic: status normalization,
// quality-gate resolution, stage quantity aggregation and the completion
// verdict. Nothing in this package touches the database or the network, so it
// is safe to call from any number of handlers concurrently and re-running it
// on a fresh snapshot always gives the same answer.
package qc

import "strings"

// GateStatus is the closed set of canonical QC gate states. Raw status
// strings from storage are free-form; everything downstream of Normalize
// works only with these values.
type GateStatus string

const (
	Passed     GateStatus = "passed"
	Failed     GateStatus = "failed"
	Pending    GateStatus = "pending"
	Blocked    GateStatus = "blocked"
	Waived     GateStatus = "waived"
	Hold       GateStatus = "hold"
	NotStarted GateStatus = "not_started"
)

var statusSynonyms = map[string]GateStatus{
	"passed":      Passed,
	"pass":        Passed,
	"failed":      Failed,
	"fail":        Failed,
	"pending":     Pending,
	"blocked":     Blocked,
	"waived":      Waived,
	"waive":       Waived,
	"hold":        Hold,
	"on hold":     Hold,
	"on_hold":     Hold,
	"not_started": NotStarted,
	"not started": NotStarted,
}

// Normalize maps an arbitrary raw status string to a canonical GateStatus.
// Matching is case-insensitive and trimmed; anything unrecognized, including
// the empty string (SQL NULL surfaces as "" via COALESCE), is pending.
// Total over all inputs and idempotent.
func Normalize(raw string) GateStatus {
	if s, ok := statusSynonyms[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return s
	}
	return Pending
}

// Satisfied reports whether s counts as a cleared gate.
func Satisfied(s GateStatus) bool {
	return s == Passed || s == Waived
}

// AwaitingAction reports whether s is still waiting for someone to act.
// Only these states are suppressed to blocked by an unmet prerequisite, and
// only these states on a prerequisite gate block its dependents.
func AwaitingAction(s GateStatus) bool {
	return s == Pending || s == NotStarted
}
