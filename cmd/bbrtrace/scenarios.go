package main

import (
	"bbrtrace/internal/netprofile"
	"bbrtrace/internal/scenario"
	"bbrtrace/internal/sla"
)

// seedScenario bundles a scenario.Config builder with the gates its run is
// graded against.
type seedScenario struct {
	name  string
	build func(seed int64) scenario.Config
	gates sla.Gates
}

// seedScenarios is the built-in battery run by "-scenario all" (or any
// comma-separated subset by name), one entry per documented end-to-end
// case: a clean high-bandwidth ramp, a long-RTT Hystart-gated ramp, a
// loss-triggered Startup exit, steady-state ProbeBw cycling, a ProbeRtt
// trigger, and a mid-flight reset.
func seedScenarios() []seedScenario {
	return []seedScenario{
		{
			name: "clean-startup",
			build: func(seed int64) scenario.Config {
				p, _ := netprofile.Get("ethernet")
				return scenario.Config{Name: "clean-startup", Profile: p, Rounds: 600, Seed: seed, PacketsPerRound: 8}
			},
			gates: sla.Gates{
				MinBandwidthBps:   50_000_000,
				RequireFilledPipe: true,
				MaxCwndBytes:      200_000_000,
			},
		},
		{
			name: "long-rtt-startup",
			build: func(seed int64) scenario.Config {
				p, _ := netprofile.Get("satellite")
				return scenario.Config{Name: "long-rtt-startup", Profile: p, Rounds: 300, Seed: seed, PacketsPerRound: 6}
			},
			gates: sla.Gates{
				MinBandwidthBps:   1_000_000,
				RequireFilledPipe: true,
			},
		},
		{
			name: "loss-triggered-exit",
			build: func(seed int64) scenario.Config {
				p, _ := netprofile.Get("lte")
				p.LossRate = 0.08 // well above LossThresh, forces an early Startup exit
				return scenario.Config{Name: "loss-triggered-exit", Profile: p, Rounds: 300, Seed: seed, PacketsPerRound: 6}
			},
			gates: sla.Gates{
				MinBandwidthBps:     500_000,
				MaxLossRateSmoothed: 0.2,
			},
		},
		{
			name: "steady-state-probe-bw",
			build: func(seed int64) scenario.Config {
				p, _ := netprofile.Get("wifi")
				return scenario.Config{Name: "steady-state-probe-bw", Profile: p, Rounds: 1000, Seed: seed, PacketsPerRound: 6}
			},
			gates: sla.Gates{
				MinBandwidthBps:   5_000_000,
				RequireFilledPipe: true,
			},
		},
		{
			name: "probe-rtt-trigger",
			build: func(seed int64) scenario.Config {
				p, _ := netprofile.Get("5g")
				return scenario.Config{Name: "probe-rtt-trigger", Profile: p, Rounds: 2000, Seed: seed, PacketsPerRound: 6}
			},
			gates: sla.Gates{
				MinBandwidthBps:   10_000_000,
				RequireFilledPipe: true,
			},
		},
		{
			name: "reset-mid-flight",
			build: func(seed int64) scenario.Config {
				p, _ := netprofile.Get("ethernet")
				return scenario.Config{Name: "reset-mid-flight", Profile: p, Rounds: 600, Seed: seed, PacketsPerRound: 8, ResetAtRound: 300}
			},
			gates: sla.Gates{
				MinBandwidthBps: 20_000_000,
			},
		},
	}
}
