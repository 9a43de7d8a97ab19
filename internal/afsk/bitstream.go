package afsk

// NRZI applies one step of the differential line code: a 0 data bit
// inverts the line state, a 1 leaves it. The new state is also the bit sent.
func NRZI(state, bit uint8) (uint8, uint8) {
	if bit == 0 {
		state ^= 1
	}
	return state, state
}

// Bitstream converts a wrapped transmission into line bits.
//
// syncPairs pairs of 0,1 come first, then every byte LSB first through NRZI
// starting from state 1, then a closing 0,1. No bit stuffing is applied,
// so runs of ones inside the data go out unbroken.
func Bitstream(frame []byte, syncPairs int) []uint8 {
	if syncPairs < 0 {
		syncPairs = 0
	}
	bits := make([]uint8, 0, BitstreamLen(len(frame), syncPairs))

	for i := 0; i < syncPairs; i++ {
		bits = append(bits, 0, 1)
	}

	state := uint8(1)
	for _, b := range frame {
		for i := 0; i < 8; i++ {
			var out uint8
			state, out = NRZI(state, (b>>i)&1)
			bits = append(bits, out)
		}
	}

	return append(bits, 0, 1)
}

// BitstreamLen returns the number of line bits Bitstream emits
func BitstreamLen(frameLen, syncPairs int) int {
	return 2*syncPairs + 8*frameLen + 2
}
