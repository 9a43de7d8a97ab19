package ax25

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// TestPacket_Encode tests the layout of an encoded packet
func TestPacket_Encode(t *testing.T) {
	p := Packet{
		Source:      "IOSPY1",
		Destination: "YourCall",
		Path:        []string{"WIDE1", "WIDE2"},
		Info:        "!test",
	}

	frame, err := p.Encode()
	require.NoError(t, err)

	addrBytes := p.AddressCount() * AddressLength
	require.Len(t, frame, addrBytes+2+len(p.Info)+2)

	// Destination comes first, then source, then path
	assert.Equal(t, []byte{0xB2, 0x9E, 0xAA, 0xA4, 0x86, 0x82, 0x60}, frame[0:7])
	assert.Equal(t, []byte{0x92, 0x9E, 0xA6, 0xA0, 0xB2, 0x62, 0x60}, frame[7:14])
	assert.Equal(t, []byte{0xAE, 0x92, 0x88, 0x8A, 0x62, 0x40, 0x60}, frame[14:21])
	assert.Equal(t, []byte{0xAE, 0x92, 0x88, 0x8A, 0x64, 0x40, 0x61}, frame[21:28])

	assert.Equal(t, byte(ControlUI), frame[addrBytes])
	assert.Equal(t, byte(PIDNoLayer3), frame[addrBytes+1])
	assert.Equal(t, p.Info, string(frame[addrBytes+2:len(frame)-2]))

	fcs := Checksum(frame[:len(frame)-2])
	assert.Equal(t, byte(fcs), frame[len(frame)-2], "FCS low byte first")
	assert.Equal(t, byte(fcs>>8), frame[len(frame)-1])
}

// TestPacket_Encode_NoPath tests that the source address carries the end bit without a path
func TestPacket_Encode_NoPath(t *testing.T) {
	p := Packet{Source: "N0CALL", Destination: "APRS", Info: ">status"}

	frame, err := p.Encode()
	require.NoError(t, err)

	assert.Zero(t, frame[6]&endOfAddress)
	assert.Equal(t, byte(endOfAddress), frame[13]&endOfAddress)
	assert.Equal(t, byte(ControlUI), frame[14])
}

// TestPacket_Encode_Errors tests rejection of non-ASCII content
func TestPacket_Encode_Errors(t *testing.T) {
	tests := []struct {
		name   string
		packet Packet
	}{
		{
			name:   "Non-ASCII info",
			packet: Packet{Source: "N0CALL", Destination: "APRS", Info: "café"},
		},
		{
			name:   "Non-ASCII path entry",
			packet: Packet{Source: "N0CALL", Destination: "APRS", Path: []string{"WIDE¹"}, Info: "x"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame, err := tt.packet.Encode()
			assert.Nil(t, frame)
			assert.True(t, errors.Is(err, ErrEncoding), "unexpected error: %v", err)
		})
	}
}

// TestPacket_EndOfAddressInvariant tests that only the final address byte carries the end bit
func TestPacket_EndOfAddressInvariant(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		p := Packet{
			Source:      rapid.StringMatching(`[A-Z0-9]{1,8}`).Draw(t, "source"),
			Destination: rapid.StringMatching(`[A-Z0-9]{1,8}`).Draw(t, "destination"),
			Path:        rapid.SliceOfN(rapid.StringMatching(`[A-Z0-9]{1,8}`), 0, 12).Draw(t, "path"),
			Info:        rapid.StringMatching(`[ -~]{0,40}`).Draw(t, "info"),
		}

		frame, err := p.Encode()
		require.NoError(t, err)

		n := p.AddressCount()
		for i := 0; i < n; i++ {
			ssidByte := frame[i*AddressLength+CallsignLength]
			if i == n-1 {
				assert.Equal(t, byte(endOfAddress), ssidByte&endOfAddress, "address %d", i)
			} else {
				assert.Zero(t, ssidByte&endOfAddress, "address %d", i)
			}
		}
		assert.Equal(t, byte(ControlUI), frame[n*AddressLength])
	})
}

// TestBuildTransmission tests preamble and trailing flag wrapping
func TestBuildTransmission(t *testing.T) {
	p := Packet{Source: "IOSPY1", Destination: "YourCall", Path: []string{"WIDE1", "WIDE2"}, Info: "hello"}

	packet, err := p.Encode()
	require.NoError(t, err)

	tx, err := BuildTransmission(p, DefaultPreambleLength)
	require.NoError(t, err)
	require.Len(t, tx, DefaultPreambleLength+len(packet)+1)

	for i := 0; i < DefaultPreambleLength; i++ {
		assert.Equal(t, byte(Flag), tx[i])
	}
	assert.Equal(t, packet, tx[DefaultPreambleLength:len(tx)-1])
	assert.Equal(t, byte(Flag), tx[len(tx)-1])
}

// TestBuildTransmission_Error tests that encoding errors are propagated
func TestBuildTransmission_Error(t *testing.T) {
	_, err := BuildTransmission(Packet{Source: "N0CALL", Destination: "APRS", Info: "ÿ"}, DefaultPreambleLength)
	assert.True(t, errors.Is(err, ErrEncoding))
}

// TestPacket_String tests the monitor format rendering
func TestPacket_String(t *testing.T) {
	p := Packet{Source: "IOSPY1", Destination: "YourCall", Path: []string{"WIDE1", "WIDE2"}, Info: "hi"}
	assert.Equal(t, "IOSPY1>YourCall,WIDE1,WIDE2:hi", p.String())
	assert.Equal(t, "A>B:x", Packet{Source: "A", Destination: "B", Info: "x"}.String())
}
