package congestion

import (
	"time"
)

// RateSample is one delivery-rate observation: how many bytes were
// acknowledged over what interval, measured from when the first packet in
// that interval was sent.
type RateSample struct {
	Delivered    int64         // cumulative delivered bytes at ack time
	DeliveredAt  time.Time     // when this delivered total was recorded
	FirstSentAt  time.Time     // send time of the packet that opened the interval
	Interval     time.Duration // DeliveredAt - FirstSentAt, floored
	BytesAcked   int64         // bytes acknowledged in this sample
	IsAppLimited bool          // true if the send path was starved for data
}

// Sampler tracks cumulative delivered bytes and in-flight bytes for one
// path, the bookkeeping a controller's Sample/HostPath inputs are built
// from but does not maintain itself.
type Sampler struct {
	delivered      int64
	deliveredAt    time.Time
	firstSentAt    time.Time
	appLimited     bool
	bytesInTransit int64
}

// NewSampler creates an empty sampler.
func NewSampler() *Sampler {
	return &Sampler{}
}

// OnPacketSent records a packet leaving the host: it opens a new interval
// if none is in progress and adds size to bytes in transit.
func (s *Sampler) OnPacketSent(now time.Time, size int, isAppLimited bool) {
	if s.firstSentAt.IsZero() {
		s.firstSentAt = now
	}
	if isAppLimited {
		s.appLimited = true
	}
	s.bytesInTransit += int64(size)
}

// OnAck records an acknowledgement of ackedBytes at now, closes the
// current interval and starts a new one.
func (s *Sampler) OnAck(now time.Time, ackedBytes int) RateSample {
	s.delivered += int64(ackedBytes)
	s.bytesInTransit -= int64(ackedBytes)
	if s.bytesInTransit < 0 {
		s.bytesInTransit = 0
	}

	rs := RateSample{
		Delivered:    s.delivered,
		DeliveredAt:  now,
		FirstSentAt:  s.firstSentAt,
		Interval:     now.Sub(s.firstSentAt),
		BytesAcked:   int64(ackedBytes),
		IsAppLimited: s.appLimited,
	}

	if rs.Interval < time.Millisecond {
		rs.Interval = time.Millisecond
	}

	s.firstSentAt = now
	s.appLimited = false

	return rs
}

// OnLoss removes lostBytes from bytes in transit without touching
// delivered; call once per packet the host declares lost.
func (s *Sampler) OnLoss(lostBytes int) {
	s.bytesInTransit -= int64(lostBytes)
	if s.bytesInTransit < 0 {
		s.bytesInTransit = 0
	}
}

// BandwidthBps returns the sample's rate in bytes/second.
func (rs *RateSample) BandwidthBps() float64 {
	if rs.Interval <= 0 {
		return 0
	}
	return float64(rs.BytesAcked) / rs.Interval.Seconds()
}

// BandwidthMbps returns the sample's rate in megabits/second.
func (rs *RateSample) BandwidthMbps() float64 {
	return rs.BandwidthBps() * 8 / (1024 * 1024)
}

// IsValid reports whether the sample carries a usable interval and
// acknowledged byte count.
func (rs *RateSample) IsValid() bool {
	return rs.Interval > 0 && rs.BytesAcked > 0
}

// Reset clears all accumulated state, used between scenario runs that
// share one Sampler instance.
func (s *Sampler) Reset() {
	s.delivered = 0
	s.deliveredAt = time.Time{}
	s.firstSentAt = time.Time{}
	s.appLimited = false
	s.bytesInTransit = 0
}

// GetDelivered returns the cumulative delivered byte count.
func (s *Sampler) GetDelivered() int64 {
	return s.delivered
}

// IsAppLimited reports whether the path is currently data-starved.
func (s *Sampler) IsAppLimited() bool {
	return s.appLimited
}

// BytesInTransit returns the current outstanding (unacknowledged,
// non-lost) byte count.
func (s *Sampler) BytesInTransit() int64 {
	return s.bytesInTransit
}
