package ax25

import (
	"fmt"
	"strings"
)

// EncodeAddress encodes a callsign and SSID into a 7-byte address subfield.
//
// The callsign is upper-cased and space padded to six characters; longer
// callsigns are silently truncated. Each character is shifted left one bit.
// The end-of-address bit in the SSID byte is left clear; the frame builder
// sets it on the final address only.
func EncodeAddress(callsign string, ssid int) ([AddressLength]byte, error) {
	var addr [AddressLength]byte

	if ssid < 0 || ssid > MaxSSID {
		return addr, fmt.Errorf("callsign %q: %w: %d", callsign, ErrInvalidSSID, ssid)
	}
	if !isASCII(callsign) {
		return addr, fmt.Errorf("callsign %q: %w", callsign, ErrEncoding)
	}

	call := strings.ToUpper(callsign)
	for i := 0; i < CallsignLength; i++ {
		c := byte(' ')
		if i < len(call) {
			c = call[i]
		}
		addr[i] = c << 1
	}
	addr[CallsignLength] = byte(ssid<<1) | ssidReserved

	return addr, nil
}

// DecodeAddress reverses EncodeAddress, returning the trimmed callsign,
// the SSID and whether the end-of-address bit is set
func DecodeAddress(addr [AddressLength]byte) (string, int, bool) {
	var sb strings.Builder
	for i := 0; i < CallsignLength; i++ {
		sb.WriteByte(addr[i] >> 1)
	}
	ssidByte := addr[CallsignLength]
	return strings.TrimRight(sb.String(), " "), int(ssidByte>>1) & 0x0F, ssidByte&endOfAddress != 0
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] > 0x7F {
			return false
		}
	}
	return true
}
