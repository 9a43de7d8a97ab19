package ax25

import "errors"

var (
	// ErrEncoding is returned when a callsign or info field is not 7-bit ASCII
	ErrEncoding = errors.New("not representable in ASCII")
	// ErrInvalidSSID is returned for an SSID outside 0-15
	ErrInvalidSSID = errors.New("invalid SSID")
)
