package fingerprint

// LandmarkHash is a 32-bit combinatorial hash encoding an ordered peak
// pair (f1, f2, dt). Ten-bit fields cap effective bins at 1024 and the
// maximum dt at 1023 frames.
type LandmarkHash uint32

const fieldMask = 0x3FF // 10 bits

// PackHash encodes an ordered peak pair into a LandmarkHash, per §3:
//
//	hash = (f1 & 0x3FF) << 20 | (f2 & 0x3FF) << 10 | (dt & 0x3FF)
//
// The pair is ordered — (f1,f2,dt) is not the same hash as (f2,f1,dt) —
// since the asymmetry encodes temporal direction. Returns ok=false if
// f1, f2 or dt does not fit in 10 bits, per the field-bounds invariant.
func PackHash(f1, f2, dt int) (h LandmarkHash, ok bool) {
	if f1 < 0 || f1 > fieldMask || f2 < 0 || f2 > fieldMask || dt < 0 || dt > fieldMask {
		return 0, false
	}
	return LandmarkHash(uint32(f1)<<20 | uint32(f2)<<10 | uint32(dt)), true
}

// UnpackHash recovers (f1, f2, dt) from a LandmarkHash.
func UnpackHash(h LandmarkHash) (f1, f2, dt int) {
	v := uint32(h)
	f1 = int((v >> 20) & fieldMask)
	f2 = int((v >> 10) & fieldMask)
	dt = int(v & fieldMask)
	return
}
