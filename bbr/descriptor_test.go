package bbr

import (
	"testing"
	"time"
)

func TestInitStartsInStartupWithInitialCwnd(t *testing.T) {
	p, host := newTestPath(1460)
	if p.Mode() != ModeStartup {
		t.Errorf("Mode() = %v, want Startup", p.Mode())
	}
	if p.Cwin() != p.initialCwnd() {
		t.Errorf("Cwin() = %d, want initialCwnd %d", p.Cwin(), p.initialCwnd())
	}
	if host.Cwin != 0 {
		t.Errorf("host.Cwin should not be written until the first Notify, got %d", host.Cwin)
	}
}

func TestObserveReportsModeAndBandwidth(t *testing.T) {
	p, _ := newTestPath(1460)
	p.bw = 12345
	state, bw := Observe(p)
	if state != "Startup" {
		t.Errorf("state = %q, want Startup", state)
	}
	if bw != 12345 {
		t.Errorf("bandwidth = %v, want 12345 (populated from bw, per the btl_bw open question)", bw)
	}
}

func TestObserveIncludesProbeBwSubPhase(t *testing.T) {
	p, _ := newTestPath(1460)
	p.mode = ModeProbeBw
	p.probeBwPhase = ProbeBwCruise
	state, _ := Observe(p)
	if state != "ProbeBwCruise" {
		t.Errorf("state = %q, want ProbeBwCruise", state)
	}
}

func TestNotifyRTTMeasurementIsANoOp(t *testing.T) {
	p, host := newTestPath(1460)
	before := *p
	Notify(p, host, Event{Kind: NotifyRTTMeasurement, Now: time.Unix(0, 0)})
	after := *p
	if before != after {
		t.Error("rtt_measurement notification must not change any controller state")
	}
}

func TestNotifyCwinBlockedIsANoOp(t *testing.T) {
	p, host := newTestPath(1460)
	before := *p
	Notify(p, host, Event{Kind: NotifyCwinBlocked, Now: time.Unix(0, 0)})
	after := *p
	if before != after {
		t.Error("cwin_blocked notification must not change any controller state")
	}
}

func TestNotifySeedCwinStoresTheSeed(t *testing.T) {
	p, host := newTestPath(1460)
	Notify(p, host, Event{Kind: NotifySeedCwin, Now: time.Unix(0, 0), SeedCwin: 999})
	if p.bdpSeed != 999 {
		t.Errorf("bdpSeed = %d, want 999", p.bdpSeed)
	}
}

// TestResetProducesIdenticalTraceToFreshInit drives scenario 6 of
// spec.md §8.3: reset followed by a sequence of ACKs must reproduce the
// same output trace as a fresh Init given identical seed inputs.
func TestResetProducesIdenticalTraceToFreshInit(t *testing.T) {
	const mtu = 1460
	const rtt = 20 * time.Millisecond
	replay := func() []uint64 {
		host := &HostPath{MTU: mtu, ClientMode: true, UniquePathID: 42}
		var p Path
		seedTime := time.Unix(0, 0)
		Init(&p, host, seedTime)

		now := seedTime
		var trace []uint64
		for round := 0; round < 10; round++ {
			now = driveRound(&p, host, now, 10_000_000, rtt, false, 0)
			trace = append(trace, p.Cwin())
		}
		return trace
	}

	baseline := replay()

	// Now drive 10 rounds, reset (re-seeding with the same stamp as a fresh
	// Init would see), then replay the same 10 rounds again.
	host := &HostPath{MTU: mtu, ClientMode: true, UniquePathID: 42}
	var p Path
	seedTime := time.Unix(0, 0)
	Init(&p, host, seedTime)
	now := seedTime
	for round := 0; round < 10; round++ {
		now = driveRound(&p, host, now, 10_000_000, rtt, false, 0)
	}

	host.Delivered = 0
	host.BytesInTransit = 0
	host.RTTMin = 0
	Notify(&p, host, Event{Kind: NotifyReset, Now: seedTime})

	now = seedTime
	var replayed []uint64
	for round := 0; round < 10; round++ {
		now = driveRound(&p, host, now, 10_000_000, rtt, false, 0)
		replayed = append(replayed, p.Cwin())
	}

	if len(replayed) != len(baseline) {
		t.Fatalf("replay length = %d, want %d", len(replayed), len(baseline))
	}
	for i := range baseline {
		if baseline[i] != replayed[i] {
			t.Errorf("round %d: cwin after reset = %d, want %d (fresh-init trace)", i, replayed[i], baseline[i])
		}
	}
}
