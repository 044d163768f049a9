package bbr

import (
	"testing"
	"time"
)

// runToProbeBw drives a clean, steady high-bandwidth link until the
// controller reaches ModeProbeBw, returning the path/host/clock for further
// driving. Fails the test if ProbeBw is never reached within the budget.
func runToProbeBw(t *testing.T, mtu uint64, rate float64, rtt time.Duration) (*Path, *HostPath, time.Time) {
	t.Helper()
	p, host := newTestPath(mtu)
	now := time.Unix(0, 0)

	for round := 0; round < 2000 && p.Mode() != ModeProbeBw; round++ {
		now = driveRound(p, host, now, rate, rtt, false, 0)
	}
	if p.Mode() != ModeProbeBw {
		t.Fatalf("never reached ProbeBw within budget (stuck in %v)", p.Mode())
	}
	return p, host, now
}

func TestProbeBwIsReachedOnACleanLink(t *testing.T) {
	runToProbeBw(t, 1460, 50_000_000, 20*time.Millisecond)
}

// TestProbeBwPhaseTransitionsFollowTheDAG drives a steady link for a long
// run and checks every observed ProbeBw sub-phase transition belongs to
// DOWN -> {CRUISE, REFILL}; CRUISE -> REFILL; REFILL -> UP; UP -> DOWN, per
// §8.1.
func TestProbeBwPhaseTransitionsFollowTheDAG(t *testing.T) {
	p, host, now := runToProbeBw(t, 1460, 50_000_000, 20*time.Millisecond)

	allowed := map[ProbeBwPhase]map[ProbeBwPhase]bool{
		ProbeBwDown:   {ProbeBwDown: true, ProbeBwCruise: true, ProbeBwRefill: true},
		ProbeBwCruise: {ProbeBwCruise: true, ProbeBwRefill: true},
		ProbeBwRefill: {ProbeBwRefill: true, ProbeBwUp: true},
		ProbeBwUp:     {ProbeBwUp: true, ProbeBwDown: true},
	}

	last := p.ProbeBwPhase()
	for round := 0; round < 3000; round++ {
		now = driveRound(p, host, now, 50_000_000, 20*time.Millisecond, false, 0)
		if p.Mode() != ModeProbeBw {
			continue // a ProbeRtt excursion is legal and outside this DAG
		}
		cur := p.ProbeBwPhase()
		if cur != last && !allowed[last][cur] {
			t.Fatalf("round %d: illegal ProbeBw transition %v -> %v", round, last, cur)
		}
		last = cur
	}
}

func TestIsInflightTooHighThreshold(t *testing.T) {
	p, _ := newTestPath(1460)
	cases := []struct {
		lost, txInFlight uint64
		want             bool
	}{
		{lost: 0, txInFlight: 1000, want: false},
		{lost: 20, txInFlight: 1000, want: false},  // exactly 2%, not >
		{lost: 21, txInFlight: 1000, want: true},   // just above 2%
		{lost: 100, txInFlight: 0, want: false},    // guarded: no in-flight data
	}
	for _, c := range cases {
		got := p.isInflightTooHigh(Sample{Lost: c.lost, TxInFlight: c.txInFlight})
		if got != c.want {
			t.Errorf("isInflightTooHigh(lost=%d, txInFlight=%d) = %v, want %v", c.lost, c.txInFlight, got, c.want)
		}
	}
}
