// Package congestion provides the host-side collaborators a congestion
// controller needs but does not own itself: pacing-rate enforcement and
// delivered-byte/inflight accounting. The controller in package bbr only
// decides values; something upstream of it has to apply them to an actual
// send path, and that is what this package models for the scenario harness.
package congestion

import (
	"time"
)

// Pacer implements token-bucket pacing: it enforces a rate the controller
// has asked for by gating when the next packet of a given size may leave.
type Pacer struct {
	rateBps  int64
	tokens   float64
	lastTick time.Time
	mtu      int
}

// NewPacer creates a pacer with a zero initial rate; call SetRate once the
// controller has produced its first pacing rate.
func NewPacer(mtu int) *Pacer {
	return &Pacer{mtu: mtu}
}

// SetRate sets the pacing rate in bytes per second, typically every ACK
// from Path.PacingRate().
func (p *Pacer) SetRate(bps int64) {
	if bps < 0 {
		bps = 0
	}
	p.rateBps = bps
}

// Allow reports whether a packet of size bytes may be sent at now, given
// the tokens accumulated since the last call. Burst is capped at 10 MTUs,
// and the first call starts from a full burst allowance.
func (p *Pacer) Allow(now time.Time, size int) bool {
	if p.lastTick.IsZero() {
		p.lastTick = now
		p.tokens = float64(10 * p.mtu)
	}

	elapsed := now.Sub(p.lastTick).Seconds()
	p.lastTick = now

	p.tokens += float64(p.rateBps) * elapsed

	maxBurst := float64(10 * p.mtu)
	if p.tokens > maxBurst {
		p.tokens = maxBurst
	}

	need := float64(size)
	if p.tokens >= need {
		p.tokens -= need
		return true
	}

	return false
}

// GetRate returns the current pacing rate in bytes/second.
func (p *Pacer) GetRate() int64 {
	return p.rateBps
}

// GetTokens returns the current token count, in bytes.
func (p *Pacer) GetTokens() float64 {
	return p.tokens
}
