package netprofile

import (
	"math/rand"
	"testing"
)

func TestGetKnownProfile(t *testing.T) {
	p, err := Get("wifi")
	if err != nil {
		t.Fatalf("Get(wifi) error: %v", err)
	}
	if p.Name != "wifi" {
		t.Errorf("Name = %q, want wifi", p.Name)
	}
}

func TestGetUnknownProfile(t *testing.T) {
	if _, err := Get("dialup"); err == nil {
		t.Fatal("expected an error for an unknown profile")
	}
}

func TestNamesCoversAllPresets(t *testing.T) {
	names := Names()
	if len(names) != len(presets) {
		t.Errorf("Names() returned %d entries, want %d", len(names), len(presets))
	}
}

func TestRTTSampleStaysPositive(t *testing.T) {
	p, _ := Get("satellite")
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 1000; i++ {
		if got := p.RTTSample(rng); got <= 0 {
			t.Fatalf("RTTSample = %v, want > 0", got)
		}
	}
}

func TestRTTSampleZeroJitterIsDeterministic(t *testing.T) {
	p := Profile{BaseRTT: 100}
	rng := rand.New(rand.NewSource(1))
	if got := p.RTTSample(rng); got != 100 {
		t.Errorf("RTTSample with zero jitter = %v, want 100", got)
	}
}

func TestLossDrawRespectsZeroRate(t *testing.T) {
	p := Profile{LossRate: 0}
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 1000; i++ {
		if p.LossDraw(rng) {
			t.Fatal("zero loss rate should never report a loss")
		}
	}
}
