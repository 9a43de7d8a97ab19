package ax25

// FCS polynomial, bit-reversed form of the CCITT polynomial 0x1021
const FCSPoly = 0x8408

// Pre-computed FCS table, one entry per byte value
var fcsTable [256]uint16

// init builds the FCS table from the bitwise routine
func init() {
	for i := 0; i < 256; i++ {
		fcsTable[i] = fcsByte(uint16(i))
	}
}

// fcsByte runs the register through eight LSB-first shift steps
func fcsByte(reg uint16) uint16 {
	for j := 0; j < 8; j++ {
		if reg&1 != 0 {
			reg = (reg >> 1) ^ FCSPoly
		} else {
			reg >>= 1
		}
	}
	return reg
}

// checksumBitwise computes the FCS one bit at a time
func checksumBitwise(data []byte) uint16 {
	reg := uint16(0xFFFF)
	for _, b := range data {
		reg = fcsByte(reg ^ uint16(b))
	}
	return reg ^ 0xFFFF
}

// Checksum calculates the CRC-16/X-25 frame check sequence of data
func Checksum(data []byte) uint16 {
	reg := uint16(0xFFFF)
	for _, b := range data {
		reg = (reg >> 8) ^ fcsTable[byte(reg)^b]
	}
	return reg ^ 0xFFFF
}
