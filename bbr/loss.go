package bbr

import "time"

// updateOnLoss implements §4.8's UpdateOnLoss, driven by repeat/timeout
// notifications: if a bandwidth probe is in flight and this loss pushes
// inflight too high, back inflight_hi off to roughly the prefix at which
// losses crossed the 2% threshold.
func (p *Path) updateOnLoss(host *HostPath, s Sample, now time.Time) {
	if p.bwProbeSamples == 0 || !p.isInflightTooHigh(s) {
		return
	}

	inflightPrev := satSub(s.TxInFlight, s.NewlyAcked)
	lostPrev := satSub(s.Lost, s.NewlyLost)

	hi := float64(satSub(s.TxInFlight, s.Lost)) +
		LossThresh*float64(satSub(inflightPrev, lostPrev))/(1-LossThresh)
	if hi < 0 {
		hi = 0
	}

	p.handleInflightTooHigh(host, uint64(hi), s, now)
}

// handleInflightTooHigh implements the "too high" reaction of UpdateOnLoss.
// adaptUpperBounds applies its own inline variant instead of calling this.
func (p *Path) handleInflightTooHigh(host *HostPath, hi uint64, s Sample, now time.Time) {
	p.bwProbeSamples = 0
	p.packetConservation = true
	if !s.IsAppLimited {
		target := uint64(Beta * float64(p.targetInflight()))
		p.inflightHi = maxBytesInf(minBytesInf(p.inflightHi, hi), target)
	}
	if p.mode == ModeProbeBw && p.probeBwPhase == ProbeBwUp {
		p.enterProbeBwDown(host, now)
	}
}

// onSpuriousRepeat restores prior_cwnd, per the open-question resolution
// recorded in SPEC_FULL.md/DESIGN.md: follow the source comment, not the
// silence.
func (p *Path) onSpuriousRepeat() {
	if p.cwin < p.priorCwnd {
		p.cwin = p.priorCwnd
	}
}
