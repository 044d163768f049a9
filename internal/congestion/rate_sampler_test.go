package congestion

import (
	"testing"
	"time"
)

func TestSamplerTracksDeliveredAndInflight(t *testing.T) {
	s := NewSampler()
	now := time.Now()

	s.OnPacketSent(now, 1350, false)
	if got := s.BytesInTransit(); got != 1350 {
		t.Fatalf("BytesInTransit = %d, want 1350", got)
	}

	rs := s.OnAck(now.Add(50*time.Millisecond), 1350)
	if rs.Delivered != 1350 {
		t.Errorf("Delivered = %d, want 1350", rs.Delivered)
	}
	if got := s.BytesInTransit(); got != 0 {
		t.Errorf("BytesInTransit after full ack = %d, want 0", got)
	}
	if !rs.IsValid() {
		t.Error("sample should be valid")
	}
}

func TestSamplerOnLossReducesInflight(t *testing.T) {
	s := NewSampler()
	now := time.Now()

	s.OnPacketSent(now, 2000, false)
	s.OnLoss(2000)
	if got := s.BytesInTransit(); got != 0 {
		t.Errorf("BytesInTransit after loss = %d, want 0", got)
	}
}

func TestSamplerAppLimitedFlagResetsAfterAck(t *testing.T) {
	s := NewSampler()
	now := time.Now()

	s.OnPacketSent(now, 1000, true)
	if !s.IsAppLimited() {
		t.Fatal("expected app-limited after send")
	}
	s.OnAck(now.Add(10*time.Millisecond), 1000)
	if s.IsAppLimited() {
		t.Error("app-limited flag should clear after ack closes the interval")
	}
}

func TestSamplerReset(t *testing.T) {
	s := NewSampler()
	now := time.Now()
	s.OnPacketSent(now, 1000, false)
	s.OnAck(now.Add(time.Millisecond), 1000)

	s.Reset()
	if s.GetDelivered() != 0 || s.BytesInTransit() != 0 || s.IsAppLimited() {
		t.Error("Reset should clear all accumulated state")
	}
}

func TestRateSampleBandwidth(t *testing.T) {
	rs := RateSample{BytesAcked: 125_000, Interval: time.Second}
	if got := rs.BandwidthBps(); got != 125_000 {
		t.Errorf("BandwidthBps = %v, want 125000", got)
	}
	if got := rs.BandwidthMbps(); got < 0.95 || got > 1.0 {
		t.Errorf("BandwidthMbps = %v, want ~0.954", got)
	}
}

func TestRateSampleInvalidWithZeroInterval(t *testing.T) {
	rs := RateSample{BytesAcked: 1000, Interval: 0}
	if rs.IsValid() {
		t.Error("sample with zero interval should be invalid")
	}
	if got := rs.BandwidthBps(); got != 0 {
		t.Errorf("BandwidthBps with zero interval = %v, want 0", got)
	}
}
