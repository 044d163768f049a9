package bbr

import "time"

func (p *Path) debugw(msg string, kv ...interface{}) {
	if p.logger == nil {
		return
	}
	p.logger.Debugw(msg, kv...)
}

func (p *Path) record() {
	if p.recorder != nil {
		p.recorder.Observe(p)
	}
}

// Init implements the Descriptor's init entry point. It brings a zero-value
// Path into the initial Startup state for a given mtu.
func Init(p *Path, host *HostPath, now time.Time) {
	mtu := host.MTU
	if mtu == 0 {
		mtu = 1460
	}
	*p = Path{}
	p.mtu = mtu
	p.initCommon(host, now)
}

// initCommon resets the non-mtu model state to its starting point: called
// by Init and by a reset notification, which preserves mtu and the attached
// recorder but re-arms everything else (§4.8).
func (p *Path) initCommon(host *HostPath, now time.Time) {
	*p = Path{mtu: p.mtu, recorder: p.recorder}
	p.mode = ModeStartup
	p.pacingGain = StartupPacingGain
	p.cwndGain = StartupCwndGain
	p.cwin = p.initialCwnd()

	p.maxBw = 0
	p.bwHi = infBW
	p.bwLo = infBW
	p.bw = 0

	p.minRTT = infRTT
	p.inflightHi = infBytes
	p.inflightLo = infBytes

	p.rng = seedRNG(now, host.ClientMode, host.UniquePathID)
	p.nextRoundDelivered = host.Delivered + host.BytesInTransit

	p.logger = NopLogger
}

// Notify implements the Descriptor's notify entry point: the single
// dispatch point for every event kind the controller consumes (§6).
func Notify(p *Path, host *HostPath, ev Event) {
	switch ev.Kind {
	case NotifyAcknowledgement:
		p.onAck(host, ev.Now, ev.Sample)
	case NotifyRepeat, NotifyTimeout:
		p.updateOnLoss(host, ev.Sample, ev.Now)
	case NotifySpuriousRepeat:
		p.onSpuriousRepeat()
	case NotifyECNEC:
		// Reserved no-op hook; see SPEC_FULL.md §13 / DESIGN.md.
	case NotifyRTTMeasurement:
		// Subsumed by the ACK pipeline; observably a no-op.
	case NotifyCwinBlocked:
		// No-op.
	case NotifyReset:
		p.initCommon(host, ev.Now)
		host.Cwin = p.cwin
	case NotifySeedCwin:
		p.bdpSeed = ev.SeedCwin
	}
}

// Delete implements the Descriptor's delete entry point. The controller
// owns no external resources; nothing to release.
func Delete(p *Path) {}

// Observe implements the Descriptor's observe entry point: an
// informational (state, bandwidth) snapshot for diagnostics. Per the
// btl_bw open question, the bandwidth field is populated from bw rather
// than left at zero.
func Observe(p *Path) (state string, bandwidth float64) {
	if p.mode == ModeProbeBw {
		return "ProbeBw" + p.probeBwPhase.String(), p.bw
	}
	return p.mode.String(), p.bw
}

// onAck runs the fixed-order per-ACK pipeline of §2. No step may be
// reordered: UpdateMaxBw must precede CheckStartupDone, which must precede
// CheckDrain, which must precede UpdateProbeBWCyclePhase, and
// BoundBWForModel must be the last model step before control output.
func (p *Path) onAck(host *HostPath, now time.Time, s Sample) {
	p.idleRestart = false

	p.updateRound(host)
	if p.roundStart {
		p.packetConservation = false
	}
	p.rotateFiltersOnRoundStart()

	p.updateLatestDeliverySignals(host, s)
	p.updateMaxBw(s)
	p.updateCongestionSignals(s)
	p.advanceLatestDeliverySignals(s)

	p.updateACKAggregation(now, s)

	p.checkStartupLongRTT(host, now, s)
	p.checkStartupDone(host, s)
	p.checkDrainDone(host, now)

	p.updateProbeBWCyclePhase(host, now, s)

	p.updateMinRTT(host, now)
	p.checkProbeRtt(host, now)

	p.boundBWForModel()
	p.updateBDP()

	if p.mode != ModeStartupLongRtt {
		p.setPacingRate()
		p.setSendQuantum()
	}
	p.setCwnd(host, s)

	host.Cwin = p.cwin
	host.PacingRate = p.pacingRate
	host.SendQuantum = p.sendQuantum
	host.IsCCDataUpdated = true
	host.ForceImmediatePacing = p.mode == ModeStartupLongRtt
	if p.mode != ModeStartup && p.mode != ModeStartupLongRtt {
		host.IsSsthreshInitialized = true
	}

	p.record()
}
