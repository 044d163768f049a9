// Package scenario drives a bbr.Path through a synthetic network profile,
// playing the host role the controller expects: cumulative delivered-byte
// and in-flight accounting (via internal/congestion.Sampler), pacing-rate
// enforcement (via internal/congestion.Pacer) and per-round RTT/loss draws
// from an internal/netprofile.Profile.
package scenario

import (
	"math/rand"
	"time"

	"bbrtrace/bbr"
	"bbrtrace/internal/congestion"
	"bbrtrace/internal/netprofile"
)

// Config parameterizes one scenario run.
type Config struct {
	Name            string
	Profile         netprofile.Profile
	Rounds          int
	Seed            int64
	PacketsPerRound int // packets offered per round before cwin/pacing limits apply; 0 defaults to 4
	OnSample        func(Snapshot)
	ResetAtRound    int // if > 0, fire a NotifyReset event at the start of this round (round-trip tests)
	Logger          bbr.Logger   // optional; defaults to bbr.NopLogger
	Recorder        bbr.Recorder // optional per-ACK telemetry sink
}

// Snapshot is one round's worth of controller output, taken right after
// the ACK pipeline runs.
type Snapshot struct {
	Round            int
	Now              time.Time
	State            string
	ProbeBwPhase     string
	Cwin             uint64
	PacingRateBps    float64
	BandwidthBps     float64
	MinRTT           time.Duration
	RTTSample        time.Duration
	InflightHi       uint64
	InflightLo       uint64
	LossRateSmoothed float64
	Delivered        uint64
	BytesInTransit   uint64
}

// Result is the full output of one scenario run.
type Result struct {
	Name       string
	Snapshots  []Snapshot
	FinalState string
	FilledPipe bool
}

// Run replays cfg.Rounds rounds of synthetic traffic through a fresh
// bbr.Path and returns a snapshot per round.
func Run(cfg Config) *Result {
	mtu := cfg.Profile.MTU
	if mtu == 0 {
		mtu = 1350
	}
	packetsPerRound := cfg.PacketsPerRound
	if packetsPerRound <= 0 {
		packetsPerRound = 4
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	now := time.Now()

	host := &bbr.HostPath{
		MTU:          mtu,
		ClientMode:   true,
		UniquePathID: uint64(cfg.Seed) + 1,
	}

	var path bbr.Path
	bbr.Init(&path, host, now)
	if cfg.Logger != nil {
		path.SetLogger(cfg.Logger)
	}
	if cfg.Recorder != nil {
		path.SetRecorder(cfg.Recorder)
	}

	sampler := congestion.NewSampler()
	pacer := congestion.NewPacer(int(mtu))

	snapshots := make([]Snapshot, 0, cfg.Rounds)
	var rttEwma time.Duration

	for round := 0; round < cfg.Rounds; round++ {
		if cfg.ResetAtRound > 0 && round == cfg.ResetAtRound {
			bbr.Notify(&path, host, bbr.Event{Kind: bbr.NotifyReset, Now: now})
		}

		rtt := cfg.Profile.RTTSample(rng)
		now = now.Add(rtt)

		pacer.SetRate(int64(host.PacingRate))

		var sent uint64
		for i := 0; i < packetsPerRound; i++ {
			if host.BytesInTransit+mtu > host.Cwin {
				break
			}
			if !pacer.Allow(now, int(mtu)) {
				break
			}
			sampler.OnPacketSent(now, int(mtu), false)
			host.BytesInTransit += mtu
			sent += mtu
		}

		lost := sent > 0 && cfg.Profile.LossDraw(rng)
		acked := sent
		var newlyLost uint64
		if lost {
			newlyLost = mtu
			acked -= mtu
		}

		rs := sampler.OnAck(now, int(acked))
		if lost {
			sampler.OnLoss(int(mtu))
		}

		host.Delivered += acked
		host.BytesInTransit = uint64(sampler.BytesInTransit())
		host.RTTSample = rtt
		host.SmoothedRTT = rtt
		if rttEwma == 0 {
			rttEwma = rtt
		} else {
			rttEwma = rttEwma - rttEwma/8 + rtt/8
		}
		if rtt > rttEwma {
			host.RTTVariant = rtt - rttEwma
		} else {
			host.RTTVariant = rttEwma - rtt
		}
		if host.RTTMin == 0 || rtt < host.RTTMin {
			host.RTTMin = rtt
		}

		sample := bbr.Sample{
			DeliveryRate: rs.BandwidthBps(),
			Delivered:    acked,
			RTTSample:    rtt,
			NewlyAcked:   acked,
			NewlyLost:    newlyLost,
			TxInFlight:   sent,
			Lost:         newlyLost,
			IsAppLimited: sent < uint64(packetsPerRound)*mtu,
		}

		bbr.Notify(&path, host, bbr.Event{Kind: bbr.NotifyAcknowledgement, Now: now, Sample: sample})

		state := path.Mode().String()
		probeBwPhase := ""
		if path.Mode() == bbr.ModeProbeBw {
			probeBwPhase = path.ProbeBwPhase().String()
		}

		snap := Snapshot{
			Round:            round,
			Now:              now,
			State:            state,
			ProbeBwPhase:     probeBwPhase,
			Cwin:             path.Cwin(),
			PacingRateBps:    path.PacingRate(),
			BandwidthBps:     path.Bandwidth(),
			MinRTT:           path.MinRTT(),
			RTTSample:        rtt,
			InflightHi:       path.InflightHi(),
			InflightLo:       path.InflightLo(),
			LossRateSmoothed: path.LossRateSmoothed(),
			Delivered:        host.Delivered,
			BytesInTransit:   host.BytesInTransit,
		}
		snapshots = append(snapshots, snap)
		if cfg.OnSample != nil {
			cfg.OnSample(snap)
		}
	}

	return &Result{
		Name:       cfg.Name,
		Snapshots:  snapshots,
		FinalState: path.Mode().String(),
		FilledPipe: path.FilledPipe(),
	}
}
