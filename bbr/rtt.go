package bbr

import "time"

// computeMinRTTMargin implements the local min-RTT margin extension of
// §4.6.5: a sample within min_rtt*2% + 2*mtu/max_bw of the current min_rtt
// is treated as noise, not a real RTT change.
func (p *Path) computeMinRTTMargin() time.Duration {
	if p.minRTT == infRTT || p.minRTT <= 0 {
		return 0
	}
	pct := time.Duration(float64(p.minRTT) * MinRttMarginPercent / 100)
	var extra time.Duration
	if p.maxBw > 0 {
		extra = time.Duration(2 * float64(p.mtu) / p.maxBw * float64(time.Second))
	}
	return pct + extra
}

// updateMinRTT implements §3.1 invariant 4 and the min-RTT margin
// extension: a sample below min_rtt replaces it; within the margin band,
// stamps refresh without lowering min_rtt or firing ProbeRtt; a sample
// above the band replaces min_rtt only once MinRTTFilterLen has elapsed
// since the last refresh.
func (p *Path) updateMinRTT(host *HostPath, now time.Time) {
	sample := host.RTTSample
	if sample <= 0 {
		return
	}

	p.minRTTMargin = p.computeMinRTTMargin()

	switch {
	case p.minRTT == infRTT || sample < p.minRTT:
		p.minRTT = sample
		p.minRTTStamp = now
	case sample <= p.minRTT+p.minRTTMargin:
		p.minRTTStamp = now
		p.probeRTTMinStamp = now
	case now.Sub(p.minRTTStamp) > MinRTTFilterLen:
		p.minRTT = sample
		p.minRTTStamp = now
	}

	if p.probeRTTMinDelay == 0 || sample < p.probeRTTMinDelay {
		p.probeRTTMinDelay = sample
		p.probeRTTMinStamp = now
	}

	p.probeRTTExpired = p.minRTT != infRTT && now.Sub(p.minRTTStamp) >= ProbeRTTInterval
}

func (p *Path) probeRTTCwnd() uint64 {
	half := uint64(ProbeRTTCwndGain * float64(p.bdp))
	floor := MinPipeCwnd * p.mtu
	if half > floor {
		return half
	}
	return floor
}

// checkProbeRtt implements §4.6.5's entry and exit conditions.
func (p *Path) checkProbeRtt(host *HostPath, now time.Time) {
	if p.mode != ModeProbeRtt {
		if p.probeRTTExpired && !p.idleRestart {
			p.enterProbeRtt(host, now)
		}
		return
	}

	probeCwnd := p.probeRTTCwnd()
	if host.BytesInTransit <= probeCwnd && p.probeRTTDoneStamp.IsZero() {
		p.probeRTTDoneStamp = now.Add(ProbeRTTDuration)
		p.probeRTTRoundDone = false
	}
	if p.roundStart && !p.probeRTTDoneStamp.IsZero() {
		p.probeRTTRoundDone = true
	}
	if p.probeRTTRoundDone && !p.probeRTTDoneStamp.IsZero() && now.After(p.probeRTTDoneStamp) {
		p.exitProbeRtt(host, now)
	}
}

func (p *Path) enterProbeRtt(host *HostPath, now time.Time) {
	p.priorCwnd = p.cwin
	p.probeRTTDoneStamp = time.Time{}
	p.probeRTTRoundDone = false
	p.ackPhase = AckPhaseProbeStopping
	p.mode = ModeProbeRtt
	p.pacingGain = 1.0
	p.cwndGain = ProbeRTTCwndGain
	p.startRound(host)
	p.debugw("enter probe_rtt", "cwin", p.cwin)
}

func (p *Path) exitProbeRtt(host *HostPath, now time.Time) {
	if p.cwin < p.priorCwnd {
		p.cwin = p.priorCwnd
	}
	p.inflightLo = infBytes
	p.probeRTTDoneStamp = time.Time{}
	p.probeRTTRoundDone = false
	p.minRTTStamp = now

	if p.filledPipe {
		p.enterProbeBwDown(host, now)
		p.enterProbeBwCruise()
	} else {
		p.enterStartup()
	}
	p.debugw("exit probe_rtt", "mode", p.mode.String())
}
