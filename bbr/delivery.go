package bbr

import "time"

// updateLatestDeliverySignals implements §4.3's UpdateLatestDeliverySignals:
// track this round's maxima and detect a loss-round boundary.
func (p *Path) updateLatestDeliverySignals(host *HostPath, s Sample) {
	rate := s.DeliveryRateOrFallback()
	if rate > p.bwLatest {
		p.bwLatest = rate
	}
	if s.Delivered > p.inflightLatest {
		p.inflightLatest = s.Delivered
	}

	priorDelivered := satSub(host.Delivered, s.Delivered)
	if priorDelivered >= p.lossRoundDelivered {
		p.lossRoundStart = true
		p.lossRoundDelivered = host.Delivered
	} else {
		p.lossRoundStart = false
	}
}

// advanceLatestDeliverySignals implements the end-of-round reset in §4.3:
// bw_latest/inflight_latest are seeded from the current sample for the new
// round once the old round's maxima have been consumed by lower-bound
// adaptation.
func (p *Path) advanceLatestDeliverySignals(s Sample) {
	if !p.lossRoundStart {
		return
	}
	p.bwLatest = s.DeliveryRateOrFallback()
	p.inflightLatest = s.Delivered
}

// updateMaxBw implements §4.3's UpdateMaxBw: app-limited samples may only
// confirm an existing peak, never lower it.
func (p *Path) updateMaxBw(s Sample) {
	rate := s.DeliveryRateOrFallback()
	if rate >= p.maxBw || !s.IsAppLimited {
		p.maxBwFilter.update(p.roundCount, rate)
		p.maxBw = p.maxBwFilter.value()
	}
}

// rotateFiltersOnRoundStart clears the new slot of both windowed filters so
// that a round-old peak cannot dominate once its slot is rotated out (§4.1,
// §4.2).
func (p *Path) rotateFiltersOnRoundStart() {
	if !p.roundStart {
		return
	}
	p.maxBwFilter.startPeriod(p.roundCount)
	p.extraAckedFilter.startPeriod(p.roundCount)
}

// updateCongestionSignals implements §4.4: loss_in_round bookkeeping and
// AdaptLowerBoundsFromCongestion at round boundaries.
func (p *Path) updateCongestionSignals(s Sample) {
	if s.NewlyLost > 0 {
		p.lossInRound = true
	}

	if p.lossRoundStart && p.mode != ModeProbeBw {
		if p.lossInRound {
			p.adaptLowerBoundsFromCongestion()
		}
		p.lossInRound = false
	}

	p.updateLossRateSmoothed(s)
}

// adaptLowerBoundsFromCongestion implements §4.4's bullet list.
func (p *Path) adaptLowerBoundsFromCongestion() {
	if p.bwLo == infBW {
		p.bwLo = p.maxBw
	}
	if p.inflightLo == infBytes {
		p.inflightLo = p.cwin
	}
	p.bwLo = maxBW(p.bwLatest, Beta*p.bwLo)
	p.inflightLo = maxBytesInf(p.inflightLatest, uint64(Beta*float64(p.inflightLo)))
}

// updateLossRateSmoothed implements the local loss-rate EWMA extension of
// §4.4.1.
func (p *Path) updateLossRateSmoothed(s Sample) {
	p.deliveredSmoothed = (1-LossAlpha)*p.deliveredSmoothed + LossAlpha*float64(s.Delivered)
	p.lostSmoothed = (1-LossAlpha)*p.lostSmoothed + LossAlpha*float64(s.Lost)
	if p.deliveredSmoothed > 0 {
		p.lossRateSmoothed = p.lostSmoothed / p.deliveredSmoothed
	}
}

// updateACKAggregation implements §4.5's extra_acked bookkeeping.
func (p *Path) updateACKAggregation(now time.Time, s Sample) {
	if p.extraAckedIntervalStart.IsZero() {
		p.extraAckedIntervalStart = now
		p.extraAckedDelivered = 0
	}

	elapsed := now.Sub(p.extraAckedIntervalStart).Seconds()
	expected := p.bw * elapsed

	if float64(p.extraAckedDelivered) <= expected {
		p.extraAckedIntervalStart = now
		p.extraAckedDelivered = s.NewlyAcked
		return
	}

	p.extraAckedDelivered += s.NewlyAcked
	extra := float64(p.extraAckedDelivered) - expected
	if extra < 0 {
		extra = 0
	}
	capped := uint64(extra)
	if capped > p.cwin {
		capped = p.cwin
	}
	p.extraAckedFilter.update(p.roundCount, capped)
	p.extraAcked = p.extraAckedFilter.value()
}
