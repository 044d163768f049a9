package bbr

import (
	"testing"
	"time"
)

func TestOnSpuriousRepeatRestoresPriorCwnd(t *testing.T) {
	p, _ := newTestPath(1460)
	p.priorCwnd = 500_000
	p.cwin = 10_000

	p.onSpuriousRepeat()

	if p.cwin != 500_000 {
		t.Errorf("cwin = %d, want 500000 (restored from priorCwnd)", p.cwin)
	}
}

func TestOnSpuriousRepeatDoesNotLowerCwnd(t *testing.T) {
	p, _ := newTestPath(1460)
	p.priorCwnd = 10_000
	p.cwin = 500_000

	p.onSpuriousRepeat()

	if p.cwin != 500_000 {
		t.Errorf("cwin = %d, want unchanged 500000 (priorCwnd is smaller)", p.cwin)
	}
}

func TestUpdateOnLossIgnoresSamplesBelowThreshold(t *testing.T) {
	p, host := newTestPath(1460)
	p.bwProbeSamples = 1
	before := p.inflightHi

	p.updateOnLoss(host, Sample{Lost: 1, TxInFlight: 1000}, time.Unix(0, 0))

	if p.inflightHi != before {
		t.Error("a loss below LossThresh should not adjust inflightHi")
	}
}

func TestUpdateOnLossAdjustsInflightHiWhenProbeSamplesPending(t *testing.T) {
	p, host := newTestPath(1460)
	p.bwProbeSamples = 1
	p.inflightHi = infBytes

	p.updateOnLoss(host, Sample{Lost: 100, NewlyLost: 100, TxInFlight: 1000, NewlyAcked: 900}, time.Unix(0, 0))

	if p.bwProbeSamples != 0 {
		t.Error("handling an inflight-too-high loss must clear bwProbeSamples")
	}
	if p.inflightHi == infBytes {
		t.Error("inflightHi should be bounded after a high-loss notification")
	}
}

func TestLossRateSmoothedStaysWithinUnitRange(t *testing.T) {
	p, _ := newTestPath(1460)
	for i := 0; i < 100; i++ {
		p.updateLossRateSmoothed(Sample{Delivered: 1000, Lost: 50})
	}
	if p.lossRateSmoothed < 0 || p.lossRateSmoothed > 1 {
		t.Errorf("lossRateSmoothed = %v, want in [0, 1]", p.lossRateSmoothed)
	}
}
