package validate

import (
	"testing"
	"time"

	"bbrtrace/bbr"
	"bbrtrace/internal/scenario"
)

func TestCheckFreshPathHasNoViolations(t *testing.T) {
	host := &bbr.HostPath{MTU: 1350}
	var p bbr.Path
	bbr.Init(&p, host, time.Now())

	violations := Check(&p, 1350)
	if len(violations) != 0 {
		t.Errorf("fresh path should have no violations, got %+v", violations)
	}
}

func TestCheckSequenceEmpty(t *testing.T) {
	if got := CheckSequence(nil); len(got) != 0 {
		t.Errorf("CheckSequence(nil) = %+v, want empty", got)
	}
}

func TestCheckSequenceAcceptsLegalModeWalk(t *testing.T) {
	snaps := []scenario.Snapshot{
		{Round: 0, State: "Startup"},
		{Round: 1, State: "Startup"},
		{Round: 2, State: "Drain"},
		{Round: 3, State: "ProbeBw", ProbeBwPhase: "Down"},
		{Round: 4, State: "ProbeBw", ProbeBwPhase: "Cruise"},
		{Round: 5, State: "ProbeBw", ProbeBwPhase: "Refill"},
		{Round: 6, State: "ProbeBw", ProbeBwPhase: "Up"},
		{Round: 7, State: "ProbeBw", ProbeBwPhase: "Down"},
	}
	if got := CheckSequence(snaps); len(got) != 0 {
		t.Errorf("legal walk flagged violations: %+v", got)
	}
}

func TestCheckSequenceFlagsIllegalModeTransition(t *testing.T) {
	snaps := []scenario.Snapshot{
		{Round: 0, State: "Startup"},
		{Round: 1, State: "ProbeRtt"},
	}
	got := CheckSequence(snaps)
	if len(got) != 1 || got[0].Invariant != "mode_transition" {
		t.Errorf("expected one mode_transition violation, got %+v", got)
	}
}

func TestCheckSequenceFlagsIllegalProbeBwPhaseTransition(t *testing.T) {
	snaps := []scenario.Snapshot{
		{Round: 0, State: "ProbeBw", ProbeBwPhase: "Down"},
		{Round: 1, State: "ProbeBw", ProbeBwPhase: "Up"},
	}
	got := CheckSequence(snaps)
	if len(got) != 1 || got[0].Invariant != "probe_bw_phase_transition" {
		t.Errorf("expected one probe_bw_phase_transition violation, got %+v", got)
	}
}

func TestCheckFlagsCwinBelowFloor(t *testing.T) {
	host := &bbr.HostPath{MTU: 1350}
	var p bbr.Path
	bbr.Init(&p, host, time.Now())

	got := Check(&p, 100_000) // absurdly large mtu makes the floor exceed initial cwin
	found := false
	for _, v := range got {
		if v.Invariant == "cwin_floor" {
			found = true
		}
	}
	if !found {
		t.Error("expected a cwin_floor violation with an oversized mtu")
	}
}
