package bbr

// startRound opens a new round by stamping the delivered-byte mark that
// will close it (§3.1 invariant 8, §4.2).
func (p *Path) startRound(host *HostPath) {
	p.nextRoundDelivered = host.Delivered + host.BytesInTransit
}

// updateRound fires round_start and advances round_count/rounds_since_probe
// whenever delivered has reached the mark the last startRound recorded.
func (p *Path) updateRound(host *HostPath) {
	if host.Delivered >= p.nextRoundDelivered {
		p.roundStart = true
		p.roundCount++
		p.roundsSinceProbe++
		p.startRound(host)
	} else {
		p.roundStart = false
	}
}
