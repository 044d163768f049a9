// Package validate checks a controller's live state and a scenario's
// snapshot sequence against the invariants the package promises: window
// and rate floors at any instant, and legal mode/phase transitions across
// a run.
package validate

import (
	"fmt"

	"bbrtrace/bbr"
	"bbrtrace/internal/scenario"
)

// Violation is one invariant that failed to hold.
type Violation struct {
	Invariant string
	Message   string
}

func (v Violation) String() string {
	return fmt.Sprintf("[%s] %s", v.Invariant, v.Message)
}

// Check runs the point-in-time invariants against a live path: the
// congestion window floor, non-negative rate outputs and a sane send
// quantum.
func Check(p *bbr.Path, mtu uint64) []Violation {
	var violations []Violation

	if floor := bbr.MinPipeCwnd * mtu; p.Cwin() < floor {
		violations = append(violations, Violation{
			Invariant: "cwin_floor",
			Message:   fmt.Sprintf("cwin=%d below floor %d (MinPipeCwnd*mtu)", p.Cwin(), floor),
		})
	}

	if p.PacingRate() < 0 {
		violations = append(violations, Violation{
			Invariant: "pacing_rate_nonnegative",
			Message:   fmt.Sprintf("pacing rate %.2f is negative", p.PacingRate()),
		})
	}

	if p.Bandwidth() < 0 {
		violations = append(violations, Violation{
			Invariant: "bandwidth_nonnegative",
			Message:   fmt.Sprintf("bandwidth %.2f is negative", p.Bandwidth()),
		})
	}

	if p.SendQuantum() > 0 && p.SendQuantum() < mtu {
		violations = append(violations, Violation{
			Invariant: "send_quantum_floor",
			Message:   fmt.Sprintf("send quantum %d below one mtu (%d)", p.SendQuantum(), mtu),
		})
	}

	if p.Mode() == bbr.ModeProbeBw {
		valid := false
		for _, phase := range []bbr.ProbeBwPhase{bbr.ProbeBwDown, bbr.ProbeBwCruise, bbr.ProbeBwRefill, bbr.ProbeBwUp} {
			if p.ProbeBwPhase() == phase {
				valid = true
				break
			}
		}
		if !valid {
			violations = append(violations, Violation{
				Invariant: "probe_bw_phase_valid",
				Message:   fmt.Sprintf("unrecognized ProbeBw phase %v", p.ProbeBwPhase()),
			})
		}
	}

	return violations
}

// modeEdges lists every legal top-level mode transition, including each
// mode staying on itself. It is consulted only when the mode changes.
var modeEdges = map[string]map[string]bool{
	"Startup":        {"Startup": true, "StartupLongRtt": true, "Drain": true},
	"StartupLongRtt": {"StartupLongRtt": true, "Drain": true},
	"Drain":          {"Drain": true, "ProbeBw": true},
	"ProbeBw":        {"ProbeBw": true, "ProbeRtt": true},
	"ProbeRtt":       {"ProbeRtt": true, "ProbeBw": true, "Startup": true},
}

// probeBwEdges lists the legal ProbeBw sub-phase cycle: Down feeds Cruise
// or Refill, Cruise feeds Refill, Refill feeds Up, Up feeds Down.
var probeBwEdges = map[string]map[string]bool{
	"Down":    {"Down": true, "Cruise": true, "Refill": true},
	"Cruise":  {"Cruise": true, "Refill": true},
	"Refill":  {"Refill": true, "Up": true},
	"Up":      {"Up": true, "Down": true},
}

// CheckSequence walks a scenario's snapshots and flags any mode or
// ProbeBw-phase transition outside the controller's allowed graphs, plus
// round-count monotonicity.
func CheckSequence(snapshots []scenario.Snapshot) []Violation {
	var violations []Violation
	if len(snapshots) == 0 {
		return violations
	}

	lastState := snapshots[0].State
	lastProbeBwPhase := snapshots[0].ProbeBwPhase

	for i := 1; i < len(snapshots); i++ {
		cur := snapshots[i]

		if cur.Round < snapshots[i-1].Round {
			violations = append(violations, Violation{
				Invariant: "round_monotonic",
				Message:   fmt.Sprintf("round %d follows round %d", cur.Round, snapshots[i-1].Round),
			})
		}

		if cur.State != lastState {
			edges, known := modeEdges[lastState]
			if !known || !edges[cur.State] {
				violations = append(violations, Violation{
					Invariant: "mode_transition",
					Message:   fmt.Sprintf("round %d: illegal transition %s -> %s", cur.Round, lastState, cur.State),
				})
			}
			lastState = cur.State
			lastProbeBwPhase = cur.ProbeBwPhase
		}

		if cur.State == "ProbeBw" && cur.ProbeBwPhase != lastProbeBwPhase {
			edges, known := probeBwEdges[lastProbeBwPhase]
			if lastProbeBwPhase == "" || !known || !edges[cur.ProbeBwPhase] {
				if lastProbeBwPhase != "" {
					violations = append(violations, Violation{
						Invariant: "probe_bw_phase_transition",
						Message:   fmt.Sprintf("round %d: illegal ProbeBw phase transition %s -> %s", cur.Round, lastProbeBwPhase, cur.ProbeBwPhase),
					})
				}
			}
			lastProbeBwPhase = cur.ProbeBwPhase
		}
	}

	return violations
}
