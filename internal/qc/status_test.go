package qc

import "testing"

func TestNormalizeSynonyms(t *testing.T) {
	cases := []struct {
		raw  string
		want GateStatus
	}{
		{"passed", Passed},
		{"pass", Passed},
		{"PASS", Passed},
		{"  Passed  ", Passed},
		{"failed", Failed},
		{"fail", Failed},
		{"Fail", Failed},
		{"waived", Waived},
		{"waive", Waived},
		{"hold", Hold},
		{"On Hold", Hold},
		{"on_hold", Hold},
		{"not started", NotStarted},
		{"not_started", NotStarted},
		{"NOT STARTED", NotStarted},
		{"blocked", Blocked},
		{"pending", Pending},
	}
	for _, c := range cases {
		if got := Normalize(c.raw); got != c.want {
			t.Errorf("Normalize(%q) = %q, want %q", c.raw, got, c.want)
		}
	}
}

func TestNormalizeUnrecognizedDefaultsToPending(t *testing.T) {
	for _, raw := range []string{"", "   ", "banana", "APPROVED?", "passed!", "n/a", "--"} {
		if got := Normalize(raw); got != Pending {
			t.Errorf("Normalize(%q) = %q, want pending", raw, got)
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{"pass", "FAIL", "waive", "not started", "hold", "garbage", "", "blocked", "pending"}
	for _, raw := range inputs {
		once := Normalize(raw)
		if twice := Normalize(string(once)); twice != once {
			t.Errorf("Normalize not idempotent for %q: first %q, second %q", raw, once, twice)
		}
	}
}

func TestSatisfied(t *testing.T) {
	for s, want := range map[GateStatus]bool{
		Passed: true, Waived: true,
		Failed: false, Pending: false, Blocked: false, Hold: false, NotStarted: false,
	} {
		if got := Satisfied(s); got != want {
			t.Errorf("Satisfied(%q) = %v, want %v", s, got, want)
		}
	}
}

func TestAwaitingAction(t *testing.T) {
	for s, want := range map[GateStatus]bool{
		Pending: true, NotStarted: true,
		Passed: false, Failed: false, Waived: false, Hold: false, Blocked: false,
	} {
		if got := AwaitingAction(s); got != want {
			t.Errorf("AwaitingAction(%q) = %v, want %v", s, got, want)
		}
	}
}
