// Package ethernet provides the 14-byte Ethernet II header used as the
// outermost layer of every captured and transmitted frame.
package ethernet

import (
	"errors"
	"net"

	"github.com/caser789/ethernet"
)

// Size is the fixed length in bytes of an Ethernet II header.
const Size = 14

// EtherType values this router understands.
const (
	TypeARP  = uint16(ethernet.EtherTypeARP)
	TypeIPv4 = uint16(ethernet.EtherTypeIPv4)
)

// Broadcast is the link-layer broadcast address.
var Broadcast = ethernet.Broadcast

// ErrInvalidFrame is returned when a buffer is too short to contain an
// Ethernet header.
var ErrInvalidFrame = errors.New("ethernet: invalid frame")

// Header is an Ethernet II header: destination, source, and EtherType.
type Header struct {
	Destination net.HardwareAddr
	Source      net.HardwareAddr
	EtherType   uint16
}

// Parse reads a Header from the first Size bytes of b. Any bytes past
// Size are ignored; callers slice the remainder off themselves.
func Parse(b []byte) (Header, error) {
	if len(b) < Size {
		return Header{}, ErrInvalidFrame
	}

	f := new(ethernet.Frame)
	if err := f.UnmarshalBinary(b[:Size]); err != nil {
		return Header{}, err
	}

	return Header{
		Destination: f.Destination,
		Source:      f.Source,
		EtherType:   uint16(f.EtherType),
	}, nil
}

// Serialize renders h as the 14-byte Ethernet header.
func (h Header) Serialize() []byte {
	f := &ethernet.Frame{
		Destination: h.Destination,
		Source:      h.Source,
		EtherType:   ethernet.EtherType(h.EtherType),
	}

	// Frame.MarshalBinary also appends Payload; Payload is left nil here
	// so only the fixed 14-byte header comes out.
	b, err := f.MarshalBinary()
	if err != nil {
		// Destination/Source/EtherType are always well-formed MAC
		// addresses by the time a Header reaches here; this path is
		// unreachable in practice.
		return make([]byte, Size)
	}

	return b[:Size]
}
