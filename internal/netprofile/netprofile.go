// Package netprofile supplies named synthetic network conditions the
// scenario harness replays through a controller: base RTT, jitter, loss
// rate and link bandwidth, in the spirit of the teacher's named
// network-profile presets.
package netprofile

import (
	"fmt"
	"math/rand"
	"time"
)

// Profile describes one synthetic link's steady-state characteristics.
type Profile struct {
	Name         string
	MTU          uint64
	BaseRTT      time.Duration
	JitterRTT    time.Duration // uniform +/- jitter applied around BaseRTT
	LossRate     float64       // fraction of packets lost in steady state
	BandwidthBps float64
}

// RTTSample draws one RTT observation for this profile using rng. With no
// jitter it returns BaseRTT as is; with jitter the result never goes below
// one millisecond.
func (p Profile) RTTSample(rng *rand.Rand) time.Duration {
	if p.JitterRTT <= 0 {
		return p.BaseRTT
	}
	delta := time.Duration(rng.Int63n(int64(2*p.JitterRTT))) - p.JitterRTT
	rtt := p.BaseRTT + delta
	if rtt < time.Millisecond {
		rtt = time.Millisecond
	}
	return rtt
}

// LossDraw reports whether a packet is lost in this draw, given rng.
func (p Profile) LossDraw(rng *rand.Rand) bool {
	if p.LossRate <= 0 {
		return false
	}
	return rng.Float64() < p.LossRate
}

var presets = map[string]Profile{
	"ethernet": {
		Name:         "ethernet",
		MTU:          1500,
		BaseRTT:      500 * time.Microsecond,
		JitterRTT:    100 * time.Microsecond,
		LossRate:     0.00001,
		BandwidthBps: 1_000_000_000 / 8,
	},
	"datacenter": {
		Name:         "datacenter",
		MTU:          9000,
		BaseRTT:      100 * time.Microsecond,
		JitterRTT:    20 * time.Microsecond,
		LossRate:     0,
		BandwidthBps: 10_000_000_000 / 8,
	},
	"wifi": {
		Name:         "wifi",
		MTU:          1500,
		BaseRTT:      10 * time.Millisecond,
		JitterRTT:    5 * time.Millisecond,
		LossRate:     0.002,
		BandwidthBps: 100_000_000 / 8,
	},
	"lte": {
		Name:         "lte",
		MTU:          1400,
		BaseRTT:      45 * time.Millisecond,
		JitterRTT:    15 * time.Millisecond,
		LossRate:     0.005,
		BandwidthBps: 30_000_000 / 8,
	},
	"5g": {
		Name:         "5g",
		MTU:          1400,
		BaseRTT:      12 * time.Millisecond,
		JitterRTT:    4 * time.Millisecond,
		LossRate:     0.001,
		BandwidthBps: 200_000_000 / 8,
	},
	"satellite": {
		Name:         "satellite",
		MTU:          1350,
		BaseRTT:      550 * time.Millisecond,
		JitterRTT:    30 * time.Millisecond,
		LossRate:     0.003,
		BandwidthBps: 50_000_000 / 8,
	},
}

// Get looks up a named profile.
func Get(name string) (Profile, error) {
	p, ok := presets[name]
	if !ok {
		return Profile{}, fmt.Errorf("unknown network profile %q", name)
	}
	return p, nil
}

// Names lists every preset profile name, for CLI flag help text.
func Names() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	return names
}
