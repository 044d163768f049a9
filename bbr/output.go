package bbr

// boundBWForModel implements §3.1 invariant 2: bw = min(max_bw, bw_hi,
// bw_lo) with infinity as the neutral element. Must run after every other
// model update so output computation sees the tightened bandwidth.
func (p *Path) boundBWForModel() {
	p.bw = minBW(minBW(p.maxBw, p.bwHi), p.bwLo)
}

// updateBDP recomputes bdp = bw*min_rtt (§3.1 invariant 5); falls back to
// InitialCwnd when no RTT has ever been sampled.
func (p *Path) updateBDP() {
	if p.minRTT == infRTT {
		p.bdp = p.initialCwnd()
		return
	}
	p.bdp = uint64(p.bw * p.minRTT.Seconds())
}

// setPacingRate implements §4.7: the target is only lowered before
// filled_pipe; once the pipe is full it tracks the target directly.
func (p *Path) setPacingRate() {
	target := p.pacingGain * p.bw * (1 - PacingMarginPercent/100.0)
	if target < 0 {
		target = 0
	}
	if !p.filledPipe {
		if p.pacingRate == 0 || target < p.pacingRate {
			p.pacingRate = target
		}
		return
	}
	p.pacingRate = target
}

// setSendQuantum implements §4.7's burst-cap formula.
func (p *Path) setSendQuantum() {
	floor := 2 * p.mtu
	if p.pacingRate < minPacingRateForSmallQuantum {
		floor = p.mtu
	}
	q := uint64(p.pacingRate * 0.001) // pacing_rate * 1ms
	if q < floor {
		q = floor
	}
	if q > maxSendQuantum {
		q = maxSendQuantum
	}
	p.sendQuantum = q
}

// quantizationBudget implements §4.7's QuantizationBudget.
func (p *Path) quantizationBudget(inflight uint64) uint64 {
	budget := maxBytesInf(inflight, 3*p.sendQuantum)
	floor := MinPipeCwnd * p.mtu
	if budget < floor {
		budget = floor
	}
	if p.mode == ModeProbeBw && p.probeBwPhase == ProbeBwUp {
		budget += 2 * p.mtu
	}
	return budget
}

// bdpMultiple implements BDPMultiple(gain) = gain*bdp, falling back to
// InitialCwnd while no RTT has been sampled.
func (p *Path) bdpMultiple(gain float64) uint64 {
	if p.minRTT == infRTT {
		return p.initialCwnd()
	}
	return uint64(gain * float64(p.bdp))
}

func (p *Path) updateMaxInflight() {
	inflight := p.bdpMultiple(p.cwndGain) + p.extraAcked
	p.maxInflight = p.quantizationBudget(inflight)
}

// boundCwndForModel implements §4.7's BoundCwndForModel upper-bound cap.
func (p *Path) boundCwndForModel(cwin uint64) uint64 {
	cap := infBytes
	switch {
	case p.mode == ModeProbeBw && p.probeBwPhase != ProbeBwCruise:
		cap = p.inflightHi
	case p.mode == ModeProbeRtt, p.mode == ModeProbeBw && p.probeBwPhase == ProbeBwCruise:
		cap = p.inflightWithHeadroom()
	}
	cwin = minBytesInf(cwin, cap)
	cwin = minBytesInf(cwin, p.inflightLo)

	floor := MinPipeCwnd * p.mtu
	if cwin < floor {
		cwin = floor
	}
	return cwin
}

// setCwnd implements §4.7's SetCwnd.
func (p *Path) setCwnd(host *HostPath, s Sample) {
	p.updateMaxInflight()

	cwin := satSub(p.cwin, s.NewlyLost)
	if cwin < p.mtu {
		cwin = p.mtu
	}

	if !p.packetConservation {
		if host.Delivered < p.initialCwnd() || cwin < p.maxInflight {
			cwin += s.NewlyAcked
		}
		if cwin > p.maxInflight {
			cwin = p.maxInflight
		}
	}

	if p.mode == ModeProbeRtt {
		rc := p.probeRTTCwnd()
		if cwin > rc {
			cwin = rc
		}
	}

	p.cwin = p.boundCwndForModel(cwin)
}
