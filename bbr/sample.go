package bbr

import "time"

// Sample is the per-ACK delivery-rate sample constructed by the caller and
// consumed by the controller (§3.2). rtt_sample, tx_in_flight and lost
// describe the packet that this ACK newly acknowledges, not the connection
// as a whole.
type Sample struct {
	// DeliveryRate is bytes/s. If the caller has no estimate it must
	// supply one computed as 1e6*Delivered/RTTSample with a floor of
	// 40000 B/s (see DeliveryRateOrFallback).
	DeliveryRate float64

	// Delivered is bytes delivered over this packet's interval (not a
	// cumulative counter).
	Delivered uint64

	RTTSample time.Duration

	NewlyAcked uint64
	NewlyLost  uint64

	// TxInFlight is bytes in flight at the time the now-acked packet was
	// sent.
	TxInFlight uint64

	// Lost is bytes lost between send and ACK of that packet.
	Lost uint64

	IsAppLimited  bool
	IsCwndLimited bool
}

// DeliveryRateOrFallback returns s.DeliveryRate if set, else the
// conservative fallback of 1e6*Delivered/RTTSample floored at 40000 B/s.
func (s Sample) DeliveryRateOrFallback() float64 {
	if s.DeliveryRate > 0 {
		return s.DeliveryRate
	}
	if s.RTTSample <= 0 {
		return fallbackDeliveryRateFloor
	}
	rate := 1e6 * float64(s.Delivered) / float64(s.RTTSample.Microseconds())
	if rate < fallbackDeliveryRateFloor {
		return fallbackDeliveryRateFloor
	}
	return rate
}

// HostPath carries the scalar path state the host (transport) owns and the
// two fields the controller writes back (§6). A fresh HostPath value (or
// the same one, mutated) is passed to every call; the controller never
// retains a reference to it between calls.
type HostPath struct {
	MTU                        uint64
	SmoothedRTT                time.Duration
	RTTVariant                 time.Duration
	RTTMin                     time.Duration
	RTTSample                  time.Duration
	BytesInTransit             uint64
	Delivered                  uint64
	BandwidthEstimate          float64
	PeakBandwidthEstimate      float64
	PacingPacketTime           time.Duration
	LastTimeAckedDataFrameSent time.Time
	LastSenderLimitedTime      time.Time
	ClientMode                 bool
	UniquePathID               uint64

	// Outputs.
	Cwin                 uint64
	PacingRate           float64
	SendQuantum          uint64
	IsSsthreshInitialized bool
	IsCCDataUpdated      bool
	ForceImmediatePacing bool
}

// Event is the argument to Notify.
type Event struct {
	Kind NotifyKind

	// Now is the current time as observed by the host; the controller
	// owns no clock of its own.
	Now time.Time

	// Sample is populated for NotifyAcknowledgement, NotifyRepeat and
	// NotifyTimeout.
	Sample Sample

	// SeedCwin is populated for NotifySeedCwin.
	SeedCwin uint64
}

// Descriptor is the control-plane registration contract (§6): a string
// identifier and four function pointers a host wires into its per-path
// congestion-control table.
type Descriptor struct {
	Name    string
	Init    func(p *Path, host *HostPath, now time.Time)
	Notify  func(p *Path, host *HostPath, ev Event)
	Delete  func(p *Path)
	Observe func(p *Path) (state string, bandwidth float64)
}

// BBR is the descriptor a host registers to plug this controller into its
// per-path congestion-control table.
var BBR = Descriptor{
	Name:    "bbr",
	Init:    Init,
	Notify:  Notify,
	Delete:  Delete,
	Observe: Observe,
}
