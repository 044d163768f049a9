package bbr

import "time"

func probeBwGains(phase ProbeBwPhase) (pacingGain, cwndGain float64) {
	switch phase {
	case ProbeBwDown:
		return 0.9, 2.0
	case ProbeBwCruise:
		return 1.0, 2.0
	case ProbeBwRefill:
		return 1.25, 2.0
	case ProbeBwUp:
		return 1.25, 2.0
	default:
		return 1.0, 2.0
	}
}

// enterProbeBwDown is "Starting DOWN" (§4.6.4): resets the round's
// congestion signal, picks a random probe wait, opens a new round.
func (p *Path) enterProbeBwDown(host *HostPath, now time.Time) {
	p.mode = ModeProbeBw
	p.probeBwPhase = ProbeBwDown
	p.pacingGain, p.cwndGain = probeBwGains(ProbeBwDown)
	p.lossInRound = false
	p.bwProbeUpCnt = infBytes
	p.roundsSinceBwProbe = uint64(p.rng.intn(2))
	p.bwProbeWait = p.rng.durationIn(bwProbeWaitMin, bwProbeWaitMax)
	p.cycleStamp = now
	p.ackPhase = AckPhaseProbeStopping
	p.startRound(host)
}

func (p *Path) enterProbeBwCruise() {
	p.probeBwPhase = ProbeBwCruise
	p.pacingGain, p.cwndGain = probeBwGains(ProbeBwCruise)
}

// enterProbeBwRefill is "Starting REFILL": clears the lower bounds so the
// model can rediscover headroom.
func (p *Path) enterProbeBwRefill() {
	p.probeBwPhase = ProbeBwRefill
	p.pacingGain, p.cwndGain = probeBwGains(ProbeBwRefill)
	p.bwLo = infBW
	p.inflightLo = infBytes
	p.bwProbeUpRounds = 0
	p.bwProbeUpAcks = 0
	p.ackPhase = AckPhaseRefilling
}

// enterProbeBwUp is "Starting UP": begins growing inflight_hi.
func (p *Path) enterProbeBwUp(now time.Time) {
	p.probeBwPhase = ProbeBwUp
	p.pacingGain, p.cwndGain = probeBwGains(ProbeBwUp)
	p.ackPhase = AckPhaseProbeStarting
	p.raiseInflightHiSlope()
	p.cycleStamp = now
}

// raiseInflightHiSlope sets the per-ACK growth rate for inflight_hi while
// probing UP: bw_probe_up_cnt is inflight_hi divided by the send quantum
// (or mtu when no quantum is set), at least 1, and 1 while inflight_hi is
// unset. The resulting growth is not capped.
func (p *Path) raiseInflightHiSlope() {
	growth := p.sendQuantum
	if growth == 0 {
		growth = p.mtu
	}
	count := p.inflightHi / growth
	if count < 1 || p.inflightHi == infBytes {
		count = 1
	}
	p.bwProbeUpCnt = count
}

func (p *Path) targetInflight() uint64 {
	if p.mtu == 0 {
		return 0
	}
	t := p.bdp / p.mtu
	if t == 0 {
		t = 1
	}
	return t
}

func (p *Path) hasElapsedInPhase(now time.Time, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	return now.Sub(p.cycleStamp) >= d
}

func (p *Path) inflightWithHeadroom() uint64 {
	if p.inflightHi == infBytes {
		return infBytes
	}
	v := uint64((1 - Headroom) * float64(p.inflightHi))
	floor := MinPipeCwnd * p.mtu
	if v < floor {
		v = floor
	}
	return v
}

func (p *Path) inflightWithBw(gain float64, bw float64) uint64 {
	if p.minRTT == infRTT {
		return p.initialCwnd()
	}
	bdp := bw * p.minRTT.Seconds()
	return uint64(gain * bdp)
}

// updateProbeBWCyclePhase runs AdaptUpperBounds and then evaluates the
// DOWN -> {CRUISE, REFILL}; CRUISE -> REFILL; REFILL -> UP; UP -> DOWN
// transition DAG (§4.6.4). It is a no-op outside ModeProbeBw and before the
// pipe is filled.
func (p *Path) updateProbeBWCyclePhase(host *HostPath, now time.Time, s Sample) {
	if p.mode != ModeProbeBw || !p.filledPipe {
		return
	}
	p.adaptUpperBounds(host, now, s)

	switch p.probeBwPhase {
	case ProbeBwDown:
		if host.BytesInTransit <= p.inflightWithHeadroom() && host.BytesInTransit <= p.inflightWithBw(1.0, p.maxBw) {
			p.enterProbeBwCruise()
		}
		p.maybeRefill(host, now)
	case ProbeBwCruise:
		p.maybeRefill(host, now)
	case ProbeBwRefill:
		if p.roundStart {
			p.enterProbeBwUp(now)
			p.bwProbeSamples = 1
		}
	case ProbeBwUp:
		if p.hasElapsedInPhase(now, p.minRTT) && host.BytesInTransit > p.inflightWithBw(1.25, p.maxBw) {
			p.enterProbeBwDown(host, now)
		}
	}
}

func (p *Path) maybeRefill(host *HostPath, now time.Time) {
	cap := p.targetInflight()
	if cap > maxRoundsSinceProbeForRefill {
		cap = maxRoundsSinceProbeForRefill
	}
	if p.hasElapsedInPhase(now, p.bwProbeWait) || p.roundsSinceBwProbe >= cap {
		p.enterProbeBwRefill()
	}
}

// adaptUpperBounds implements §4.6.4's AdaptUpperBounds.
func (p *Path) adaptUpperBounds(host *HostPath, now time.Time, s Sample) {
	if p.ackPhase == AckPhaseProbeStarting && p.roundStart {
		p.ackPhase = AckPhaseProbeFeedback
	}
	if p.ackPhase == AckPhaseProbeStopping && p.roundStart && !s.IsAppLimited {
		p.maxBwFilter.startPeriod(p.roundCount)
		p.maxBw = p.maxBwFilter.value()
	}

	if p.isInflightTooHigh(s) && p.bwProbeSamples > 0 {
		p.bwProbeSamples = 0
		if !s.IsAppLimited {
			p.inflightHi = maxBytesInf(s.TxInFlight, uint64(Beta*float64(p.targetInflight())))
		}
		if p.probeBwPhase == ProbeBwUp {
			p.enterProbeBwDown(host, now)
		}
		return
	}

	if s.TxInFlight > 0 {
		p.inflightHi = maxBytesInf(p.inflightHi, s.TxInFlight)
	}
	p.bwHi = maxBW(p.bwHi, s.DeliveryRateOrFallback())

	if p.probeBwPhase == ProbeBwUp {
		p.probeInflightHiUpward(s)
	}
}

// probeInflightHiUpward grows inflight_hi by one mtu for every
// bw_probe_up_cnt bytes newly acked while probing UP, carrying the
// remainder to the next ACK. bw_probe_up_rounds is bumped once per call and
// saturates at 30 (§4.6.4).
func (p *Path) probeInflightHiUpward(s Sample) {
	if p.bwProbeUpCnt == 0 || p.bwProbeUpCnt == infBytes {
		return
	}
	p.bwProbeUpAcks += s.NewlyAcked
	if p.bwProbeUpAcks >= p.bwProbeUpCnt {
		delta := p.bwProbeUpAcks / p.bwProbeUpCnt
		p.bwProbeUpAcks -= delta * p.bwProbeUpCnt
		if p.inflightHi != infBytes {
			p.inflightHi += delta * p.mtu
		}
	}
	p.bwProbeUpRounds++
	if p.bwProbeUpRounds > maxBwProbeUpRounds {
		p.bwProbeUpRounds = maxBwProbeUpRounds
	}
}

func (p *Path) isInflightTooHigh(s Sample) bool {
	if s.TxInFlight == 0 {
		return false
	}
	return float64(s.Lost) > LossThresh*float64(s.TxInFlight)
}
