package bbr

import "testing"

func TestUpdateRoundFiresOnlyAtTheMark(t *testing.T) {
	host := &HostPath{Delivered: 0, BytesInTransit: 1000}
	var p Path
	p.startRound(host)
	if p.nextRoundDelivered != 1000 {
		t.Fatalf("nextRoundDelivered = %d, want 1000", p.nextRoundDelivered)
	}

	host.Delivered = 500
	p.updateRound(host)
	if p.roundStart {
		t.Error("roundStart should be false before delivered reaches the mark")
	}
	if p.roundCount != 0 {
		t.Errorf("roundCount = %d, want 0", p.roundCount)
	}

	host.Delivered = 1000
	p.updateRound(host)
	if !p.roundStart {
		t.Error("roundStart should be true once delivered reaches the mark")
	}
	if p.roundCount != 1 {
		t.Errorf("roundCount = %d, want 1", p.roundCount)
	}
	// updateRound must open the next round immediately.
	if p.nextRoundDelivered != host.Delivered+host.BytesInTransit {
		t.Errorf("nextRoundDelivered = %d, want %d", p.nextRoundDelivered, host.Delivered+host.BytesInTransit)
	}
}

func TestRoundCountIsMonotonic(t *testing.T) {
	host := &HostPath{BytesInTransit: 100}
	var p Path
	p.startRound(host)

	var last uint64
	for i := 0; i < 20; i++ {
		host.Delivered += 100
		p.updateRound(host)
		if p.roundCount < last {
			t.Fatalf("roundCount decreased: %d -> %d", last, p.roundCount)
		}
		last = p.roundCount
	}
	if last == 0 {
		t.Fatal("expected at least one round to open over 20 marks")
	}
}
