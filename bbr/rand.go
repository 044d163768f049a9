package bbr

import "time"

// rngState is a per-instance splitmix64 stream. The spec is explicit that a
// process-wide math/rand source must not be used: two paths, or two roles in
// the same test, need distinct but reproducible streams seeded from
// (current_time, client_mode, unique_path_id).
type rngState struct {
	s uint64
}

func seedRNG(now time.Time, clientMode bool, uniquePathID uint64) rngState {
	seed := uint64(now.UnixNano())
	seed ^= uniquePathID * 0x9E3779B97F4A7C15
	if clientMode {
		seed ^= 0xD1B54A32D192ED03
	}
	if seed == 0 {
		seed = 0x2545F4914F6CDD1D
	}
	return rngState{s: seed}
}

// next returns the next pseudo-random 64-bit value in the stream.
func (r *rngState) next() uint64 {
	r.s += 0x9E3779B97F4A7C15
	z := r.s
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return z ^ (z >> 31)
}

// durationIn returns a pseudo-random duration in [lo, hi).
func (r *rngState) durationIn(lo, hi time.Duration) time.Duration {
	if hi <= lo {
		return lo
	}
	span := uint64(hi - lo)
	return lo + time.Duration(r.next()%span)
}

// intn returns a pseudo-random integer in [0, n).
func (r *rngState) intn(n int) int {
	if n <= 0 {
		return 0
	}
	return int(r.next() % uint64(n))
}
