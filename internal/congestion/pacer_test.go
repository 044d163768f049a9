package congestion

import (
	"testing"
	"time"
)

func TestPacerAllowsWithinRate(t *testing.T) {
	p := NewPacer(1350)
	p.SetRate(1_000_000) // 1MB/s
	now := time.Now()

	if !p.Allow(now, 1350) {
		t.Fatal("first send within burst allowance should be allowed")
	}
}

func TestPacerBlocksWhenRateExhausted(t *testing.T) {
	p := NewPacer(1350)
	p.SetRate(1) // effectively no rate
	now := time.Now()

	p.Allow(now, 1350)
	if p.Allow(now, 1_000_000) {
		t.Fatal("oversized send with no elapsed time should be blocked")
	}
}

func TestPacerAccumulatesTokensOverTime(t *testing.T) {
	p := NewPacer(1350)
	p.SetRate(1_000_000)
	now := time.Now()

	p.Allow(now, 1350)
	later := now.Add(2 * time.Second)
	if !p.Allow(later, 1350) {
		t.Fatal("send after sufficient elapsed time should be allowed")
	}
}

func TestPacerBurstIsCapped(t *testing.T) {
	p := NewPacer(1000)
	p.SetRate(1_000_000)
	now := time.Now()
	later := now.Add(time.Hour)

	p.Allow(now, 0)
	if p.Allow(later, 0); p.GetTokens() > 10*1000 {
		t.Fatalf("tokens = %v, want capped at 10 MTUs", p.GetTokens())
	}
}

func TestPacerGetRate(t *testing.T) {
	p := NewPacer(1350)
	p.SetRate(5_000_000)
	if got := p.GetRate(); got != 5_000_000 {
		t.Errorf("GetRate() = %d, want 5000000", got)
	}
	p.SetRate(-1)
	if got := p.GetRate(); got != 0 {
		t.Errorf("GetRate() after negative SetRate = %d, want 0", got)
	}
}
