package bbr

import "time"

// hystartState is the delay-based slow-start heuristic driving exit from
// StartupLongRtt (§4.6.2). It tracks a per-round minimum RTT and the loss
// volume accumulated in the current round; either a delay increase or a
// loss-volume spike is treated as "pipe found".
type hystartState struct {
	lastRoundMinRTT time.Duration
	currRoundMinRTT time.Duration
	sampleCount     int
	roundLossBytes  uint64
	found           bool
}

func (h *hystartState) reset() {
	*h = hystartState{}
}

// onSample folds a new RTT observation into the current round's minimum.
func (h *hystartState) onSample(rtt time.Duration, lost uint64) {
	if rtt <= 0 {
		return
	}
	if h.currRoundMinRTT == 0 || rtt < h.currRoundMinRTT {
		h.currRoundMinRTT = rtt
	}
	h.sampleCount++
	h.roundLossBytes += lost
}

// onRoundStart rotates the per-round minimum and clears the loss
// accumulator, the way a real Hystart delay filter rotates at RTT
// boundaries.
func (h *hystartState) onRoundStart() {
	if h.currRoundMinRTT != 0 {
		h.lastRoundMinRTT = h.currRoundMinRTT
	}
	h.currRoundMinRTT = 0
	h.sampleCount = 0
	h.roundLossBytes = 0
}

// hystartDelayIncreaseDetected implements the classic delay-increase test:
// a round's minimum RTT rising by more than an eighth of the last round's
// minimum (and at least 4ms in absolute terms) signals queue buildup, i.e.
// the pipe is full.
func (h *hystartState) hystartDelayIncreaseDetected() bool {
	if h.lastRoundMinRTT == 0 || h.currRoundMinRTT == 0 {
		return false
	}
	thresh := h.lastRoundMinRTT / 8
	if thresh < 4*time.Millisecond {
		thresh = 4 * time.Millisecond
	}
	return h.currRoundMinRTT > h.lastRoundMinRTT+thresh
}

// hystartLossVolumeTest flags a round whose accumulated loss already
// exceeds the loss threshold applied to the in-flight volume, without
// waiting for the generic IsInflightTooHigh check.
func (h *hystartState) hystartLossVolumeTest(txInFlight uint64) bool {
	if txInFlight == 0 {
		return false
	}
	return float64(h.roundLossBytes) > LossThresh*float64(txInFlight)
}

// triggered folds both tests together, matching the "on any trigger" wording
// of §4.6.2.
func (h *hystartState) triggered(txInFlight uint64) bool {
	if h.found {
		return true
	}
	if h.hystartDelayIncreaseDetected() || h.hystartLossVolumeTest(txInFlight) {
		h.found = true
	}
	return h.found
}
