package bbr

// bwMaxFilter is the 2-slot circular max filter over delivery-rate samples
// (max_bw), indexed by the counter the caller passes. The controller passes
// round_count and starts a new period at every round start, so max_bw
// covers the current and the previous round, not probe cycles. A
// fixed-size array keeps it a value type with no heap allocation.
type bwMaxFilter struct {
	slots [MaxBwFilterLen]float64
}

func (f *bwMaxFilter) update(cycle uint64, v float64) {
	i := cycle % MaxBwFilterLen
	if v > f.slots[i] {
		f.slots[i] = v
	}
}

func (f *bwMaxFilter) startPeriod(cycle uint64) {
	f.slots[cycle%MaxBwFilterLen] = 0
}

func (f *bwMaxFilter) value() float64 {
	v := f.slots[0]
	for _, s := range f.slots[1:] {
		if s > v {
			v = s
		}
	}
	return v
}

// byteMaxFilter is the 10-slot circular max filter over extra_acked,
// indexed by round_count.
type byteMaxFilter struct {
	slots [ExtraAckedFilterLen]uint64
}

func (f *byteMaxFilter) update(cycle uint64, v uint64) {
	i := cycle % ExtraAckedFilterLen
	if v > f.slots[i] {
		f.slots[i] = v
	}
}

func (f *byteMaxFilter) startPeriod(cycle uint64) {
	f.slots[cycle%ExtraAckedFilterLen] = 0
}

func (f *byteMaxFilter) value() uint64 {
	v := f.slots[0]
	for _, s := range f.slots[1:] {
		if s > v {
			v = s
		}
	}
	return v
}
