package ax25

// Frame delimiters and fixed header bytes
const (
	Flag        = 0x7E // HDLC flag byte
	ControlUI   = 0x03 // Unnumbered information frame
	PIDNoLayer3 = 0xF0 // No layer 3 protocol
)

// Address field layout constants
const (
	CallsignLength = 6 // Characters per callsign, space padded
	AddressLength  = 7 // Callsign bytes plus SSID byte
	MaxSSID        = 15

	ssidReserved = 0x60 // Reserved bits always set in the SSID byte
	endOfAddress = 0x01 // Low bit of the last SSID byte in the address field
)

// DefaultPreambleLength is the number of flag bytes sent ahead of each packet
const DefaultPreambleLength = 32
