package bbr

import "time"

// Path is the per-path congestion-control instance (§3.1). One instance
// belongs to exactly one path; there is no sharing, no back-reference.
type Path struct {
	mtu uint64

	mode         Mode
	probeBwPhase ProbeBwPhase
	ackPhase     AckPhase

	// Round counting.
	roundCount         uint64
	roundsSinceProbe   uint64
	roundStart         bool
	nextRoundDelivered uint64

	// Outputs.
	pacingRate         float64
	sendQuantum        uint64
	pacingGain         float64
	cwndGain           float64
	priorCwnd          uint64
	packetConservation bool
	cwin               uint64

	// Bandwidth model.
	maxBwFilter bwMaxFilter
	maxBw       float64
	bwHi        float64
	bwLo        float64
	bw          float64

	// RTT model.
	minRTT            time.Duration
	minRTTStamp       time.Time
	probeRTTMinDelay  time.Duration
	probeRTTMinStamp  time.Time
	minRTTMargin      time.Duration
	probeRTTExpired   bool
	probeRTTDoneStamp time.Time
	probeRTTRoundDone bool

	// Volume model.
	bdp           uint64
	extraAcked    uint64
	offloadBudget uint64
	maxInflight   uint64
	inflightHi    uint64
	inflightLo    uint64
	bwLatest      float64
	inflightLatest uint64

	// ACK aggregation.
	extraAckedIntervalStart time.Time
	extraAckedDelivered     uint64
	extraAckedFilter        byteMaxFilter

	// Startup.
	filledPipe  bool
	fullBw      float64
	fullBwCount int

	// Probe-BW.
	roundsSinceBwProbe uint64
	bwProbeWait        time.Duration
	cycleStamp         time.Time
	bwProbeUpCnt       uint64
	bwProbeUpRounds    int
	bwProbeUpAcks      uint64
	bwProbeSamples     int

	// Loss.
	lossInRound       bool
	lossRoundStart    bool
	lossRoundDelivered uint64
	deliveredSmoothed float64
	lostSmoothed      float64
	lossRateSmoothed  float64

	// Misc.
	rng              rngState
	idleRestart      bool
	pathIsAppLimited bool
	bdpSeed          uint64

	hystart hystartState

	// Bookkeeping mirrored from the host for round/loss-round math.
	delivered      uint64
	bytesInTransit uint64

	peakBw float64

	logger   Logger
	recorder Recorder
}

// Logger is the minimal logging surface the controller calls into. A host
// supplies a *zap.SugaredLogger-backed implementation (or NopLogger).
type Logger interface {
	Debugw(msg string, keysAndValues ...interface{})
}

// Recorder receives per-ACK telemetry points; a host wires in
// internal/telemetry's exporter, or leaves it nil (no-op).
type Recorder interface {
	Observe(p *Path)
}

type nopLogger struct{}

func (nopLogger) Debugw(string, ...interface{}) {}

// NopLogger discards everything; it is the default when SetLogger is never
// called.
var NopLogger Logger = nopLogger{}

// SetLogger attaches a logger to an already-initialised path.
func (p *Path) SetLogger(l Logger) {
	if l == nil {
		l = NopLogger
	}
	p.logger = l
}

// SetRecorder attaches a telemetry recorder to an already-initialised path.
func (p *Path) SetRecorder(r Recorder) {
	p.recorder = r
}

// Mode reports the controller's current top-level state.
func (p *Path) Mode() Mode { return p.mode }

// ProbeBwPhase reports the active ProbeBw sub-phase (meaningless outside
// ModeProbeBw).
func (p *Path) ProbeBwPhase() ProbeBwPhase { return p.probeBwPhase }

// Cwin reports the current congestion window in bytes.
func (p *Path) Cwin() uint64 { return p.cwin }

// PacingRate reports the current pacing rate in bytes/second.
func (p *Path) PacingRate() float64 { return p.pacingRate }

// SendQuantum reports the current burst cap in bytes.
func (p *Path) SendQuantum() uint64 { return p.sendQuantum }

// Bandwidth reports the controller's current bandwidth estimate, bw.
func (p *Path) Bandwidth() float64 { return p.bw }

// MinRTT reports the windowed minimum RTT, or zero if never sampled.
func (p *Path) MinRTT() time.Duration {
	if p.minRTT == infRTT {
		return 0
	}
	return p.minRTT
}

// RoundCount reports the number of rounds observed so far.
func (p *Path) RoundCount() uint64 { return p.roundCount }

// InflightHi reports the current upper bound on in-flight bytes from
// bandwidth probing, or infBytes (^uint64(0)) if unset.
func (p *Path) InflightHi() uint64 { return p.inflightHi }

// InflightLo reports the current lower bound on in-flight bytes from
// congestion signals, or infBytes (^uint64(0)) if unset.
func (p *Path) InflightLo() uint64 { return p.inflightLo }

// LossRateSmoothed reports the EWMA-smoothed loss rate (lost/delivered).
func (p *Path) LossRateSmoothed() float64 { return p.lossRateSmoothed }

// FilledPipe reports whether Startup has ever detected the bandwidth
// plateau that ends the initial ramp (§4.3).
func (p *Path) FilledPipe() bool { return p.filledPipe }

func (p *Path) initialCwnd() uint64 {
	return InitialCwndPackets * p.mtu
}
