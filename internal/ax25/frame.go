package ax25

import (
	"fmt"
	"strings"
)

// Packet is a single UI frame carrying an APRS information field
type Packet struct {
	Source      string
	Destination string
	Path        []string // Digipeater path, in transmit order
	Info        string
}

// String renders the packet in the usual monitor format, SRC>DST,PATH:INFO
func (p Packet) String() string {
	header := p.Source + ">" + p.Destination
	if len(p.Path) > 0 {
		header += "," + strings.Join(p.Path, ",")
	}
	return header + ":" + p.Info
}

// AddressCount returns the number of 7-byte address subfields in the packet
func (p Packet) AddressCount() int {
	return 2 + len(p.Path)
}

// Encode builds the packet bytes: addresses, control, PID, info and FCS.
// All addresses use SSID 0. The FCS is appended least-significant byte first.
func (p Packet) Encode() ([]byte, error) {
	if !isASCII(p.Info) {
		return nil, fmt.Errorf("info field: %w", ErrEncoding)
	}

	calls := make([]string, 0, p.AddressCount())
	calls = append(calls, p.Destination, p.Source)
	calls = append(calls, p.Path...)

	frame := make([]byte, 0, len(calls)*AddressLength+2+len(p.Info)+2)
	for _, call := range calls {
		addr, err := EncodeAddress(call, 0)
		if err != nil {
			return nil, err
		}
		frame = append(frame, addr[:]...)
	}

	// Mark the final address subfield
	frame[len(frame)-1] |= endOfAddress

	frame = append(frame, ControlUI, PIDNoLayer3)
	frame = append(frame, p.Info...)

	fcs := Checksum(frame)
	frame = append(frame, byte(fcs), byte(fcs>>8))

	return frame, nil
}

// Wrap surrounds packet bytes with preamble flags and a single closing flag
func Wrap(packet []byte, preambleLength int) []byte {
	if preambleLength < 0 {
		preambleLength = 0
	}
	out := make([]byte, 0, preambleLength+len(packet)+1)
	for i := 0; i < preambleLength; i++ {
		out = append(out, Flag)
	}
	out = append(out, packet...)
	return append(out, Flag)
}

// BuildTransmission encodes the packet and wraps it for transmission
func BuildTransmission(p Packet, preambleLength int) ([]byte, error) {
	packet, err := p.Encode()
	if err != nil {
		return nil, fmt.Errorf("failed to encode packet %s: %w", p, err)
	}
	return Wrap(packet, preambleLength), nil
}
