package bbr

import "time"

// driveRound advances a path by one round: it opens the round's ACK at
// `now`, builds a Sample from the given per-round delivery rate, and feeds
// it through the full Notify(acknowledgement) pipeline. It mimics exactly
// the bookkeeping spec.md §1 assigns to the host transport (delivered /
// bytes_in_transit accounting), kept deliberately minimal for unit tests.
func driveRound(p *Path, host *HostPath, now time.Time, rate float64, rtt time.Duration, appLimited bool, lostFrac float64) time.Time {
	now = now.Add(rtt)
	sent := uint64(rate * rtt.Seconds())
	if sent == 0 {
		sent = p.mtu
	}
	var lost uint64
	if lostFrac > 0 {
		lost = uint64(float64(sent) * lostFrac)
	}
	acked := sent - lost

	host.Delivered += acked
	host.BytesInTransit = sent
	host.RTTSample = rtt
	host.SmoothedRTT = rtt
	if host.RTTMin == 0 || rtt < host.RTTMin {
		host.RTTMin = rtt
	}

	s := Sample{
		DeliveryRate:  rate,
		Delivered:     acked,
		RTTSample:     rtt,
		NewlyAcked:    acked,
		NewlyLost:     lost,
		TxInFlight:    sent,
		Lost:          lost,
		IsAppLimited:  appLimited,
		IsCwndLimited: !appLimited,
	}
	Notify(p, host, Event{Kind: NotifyAcknowledgement, Now: now, Sample: s})
	return now
}

func newTestPath(mtu uint64) (*Path, *HostPath) {
	host := &HostPath{MTU: mtu, ClientMode: true, UniquePathID: 1}
	var p Path
	Init(&p, host, time.Unix(0, 0))
	return &p, host
}
