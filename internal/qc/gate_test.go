package qc

import "testing"

func TestResolveNoBlockingPassesThrough(t *testing.T) {
	all := []GateStatus{Passed, Failed, Pending, Blocked, Waived, Hold, NotStarted}
	for _, s := range all {
		if got := Resolve(s, false); got != s {
			t.Errorf("Resolve(%q, false) = %q, want passthrough", s, got)
		}
	}
}

func TestResolveBlockingSuppressesOnlyActionableStates(t *testing.T) {
	cases := []struct {
		own  GateStatus
		want GateStatus
	}{
		{Pending, Blocked},
		{NotStarted, Blocked},
		// Terminal and held outcomes are never overridden by a prerequisite.
		{Passed, Passed},
		{Failed, Failed},
		{Waived, Waived},
		{Hold, Hold},
		{Blocked, Blocked},
	}
	for _, c := range cases {
		if got := Resolve(c.own, true); got != c.want {
			t.Errorf("Resolve(%q, true) = %q, want %q", c.own, got, c.want)
		}
	}
}

func TestAggregatePrecedence(t *testing.T) {
	cases := []struct {
		material   GateStatus
		firstPiece GateStatus
		want       OverallStatus
	}{
		// Failure dominates regardless of position, even over a pending
		// prerequisite.
		{Failed, Passed, OverallFailed},
		{Passed, Failed, OverallFailed},
		{Pending, Failed, OverallFailed},
		{Failed, Failed, OverallFailed},
		{Passed, Passed, OverallComplete},
		{Waived, Passed, OverallComplete},
		{Passed, Waived, OverallComplete},
		{Waived, Waived, OverallComplete},
		{Pending, Pending, OverallBlocked},
		{NotStarted, Passed, OverallBlocked},
		{Pending, Waived, OverallBlocked},
		{Passed, Pending, OverallPending},
		{Passed, NotStarted, OverallPending},
		{Hold, Passed, OverallPending},
		{Passed, Hold, OverallPending},
	}
	for _, c := range cases {
		if got := Aggregate(c.material, c.firstPiece); got != c.want {
			t.Errorf("Aggregate(%q, %q) = %q, want %q", c.material, c.firstPiece, got, c.want)
		}
	}
}

func TestResolveGatesMaterialPendingBlocksOverall(t *testing.T) {
	// Material QC never recorded, first piece already marked passed: the
	// first-piece outcome stands but the work order as a whole is blocked
	// on material QC.
	gv := ResolveGates("", "passed")
	if gv.Material != Pending {
		t.Errorf("material = %q, want pending", gv.Material)
	}
	if gv.FirstPiece != Passed {
		t.Errorf("first piece = %q, want passed (terminal outcome kept)", gv.FirstPiece)
	}
	if gv.Overall != OverallBlocked {
		t.Errorf("overall = %q, want blocked", gv.Overall)
	}
}

func TestResolveGatesFirstPiecePendingShowsBlocked(t *testing.T) {
	gv := ResolveGates("not started", "pending")
	if gv.FirstPiece != Blocked {
		t.Errorf("first piece = %q, want blocked while material QC is open", gv.FirstPiece)
	}
	if gv.Overall != OverallBlocked {
		t.Errorf("overall = %q, want blocked", gv.Overall)
	}
}

func TestResolveGatesBothCleared(t *testing.T) {
	gv := ResolveGates("pass", "waive")
	if gv.Overall != OverallComplete {
		t.Errorf("overall = %q, want complete", gv.Overall)
	}
	if gv.FirstPiece != Waived {
		t.Errorf("first piece = %q, want waived", gv.FirstPiece)
	}
}
