package wire

import (
	"encoding/binary"
	"errors"
	"io"
	"net"
)

// IPv4 header constants (RFC 791).
const (
	version             = 4
	MinHeaderLength     = 20
	DefaultTTL          = 64
	ProtocolICMP        = 1
	headerLengthMask    = 0x0F
	flagsMask           = 0xE000
	fragmentOffsetMask  = 0x1FFF
	fragmentOffsetShift = 13
)

// IPv4 flag bits (RFC 791 §3.1).
const (
	FlagDontFragment  uint8 = 0b010
	FlagMoreFragments uint8 = 0b001
)

// ErrInvalidIPv4Header is returned when a buffer is too short to hold a
// declared IPv4 header.
var ErrInvalidIPv4Header = errors.New("wire: invalid IPv4 header")

// IPv4 is an IPv4 header (RFC 791). HeaderLength, TotalLength and
// FragmentOffset are stored as byte counts (not the packed nibble/octet
// forms used on the wire) — Serialize performs the packing.
type IPv4 struct {
	HeaderLength   int // bytes, 20-60
	DSF            uint8
	TotalLength    int // bytes, header+payload
	Identification uint16
	Flags          uint8 // bit1=DF, bit0=MF
	FragmentOffset int   // bytes, multiple of 8
	TTL            uint8
	Protocol       uint8
	Checksum       uint16
	Source         net.IP
	Destination    net.IP
	Options        []byte
}

// NewIPv4 builds an IPv4 header with the minimum 20-byte header (no
// options), ttl set to DefaultTTL, DF set and MF/fragment_offset clear.
// TotalLength starts at HeaderLength (no payload). Serialize writes the
// stored TotalLength and does not account for any payload, so callers
// must set TotalLength themselves before sending.
func NewIPv4(protocol uint8, source, destination net.IP) IPv4 {
	return IPv4{
		HeaderLength: MinHeaderLength,
		TotalLength:  MinHeaderLength,
		Flags:        FlagDontFragment,
		TTL:          DefaultTTL,
		Protocol:     protocol,
		Source:       source.To4(),
		Destination:  destination.To4(),
	}
}

// GetHeaderLength returns the header length (bytes) encoded in the first
// byte of an IPv4 header buffer, without otherwise parsing it.
func GetHeaderLength(b []byte) int {
	return int(b[0]&headerLengthMask) * 4
}

// GetFlags returns the 3-bit flags field encoded in bytes 6-7 of an IPv4
// header buffer.
func GetFlags(b []byte) uint8 {
	word := binary.BigEndian.Uint16(b[6:8])
	return uint8((word & flagsMask) >> fragmentOffsetShift)
}

// GetFragmentOffset returns the fragment offset (bytes) encoded in bytes
// 6-7 of an IPv4 header buffer.
func GetFragmentOffset(b []byte) int {
	word := binary.BigEndian.Uint16(b[6:8])
	return int(word&fragmentOffsetMask) * 8
}

// ParseIPv4 reads an IPv4 header from b. b must hold exactly
// GetHeaderLength(b) bytes — the caller is responsible for slicing the
// options/payload boundary using that value.
func ParseIPv4(b []byte) (IPv4, error) {
	if len(b) < MinHeaderLength {
		return IPv4{}, io.ErrUnexpectedEOF
	}

	headerLength := GetHeaderLength(b)
	if headerLength < MinHeaderLength || len(b) < headerLength {
		return IPv4{}, ErrInvalidIPv4Header
	}

	h := IPv4{
		HeaderLength:   headerLength,
		DSF:            b[1],
		TotalLength:    int(binary.BigEndian.Uint16(b[2:4])),
		Identification: binary.BigEndian.Uint16(b[4:6]),
		Flags:          GetFlags(b),
		FragmentOffset: GetFragmentOffset(b),
		TTL:            b[8],
		Protocol:       b[9],
		Checksum:       binary.BigEndian.Uint16(b[10:12]),
		Source:         append(net.IP(nil), b[12:16]...),
		Destination:    append(net.IP(nil), b[16:20]...),
	}

	if headerLength > MinHeaderLength {
		h.Options = append([]byte(nil), b[MinHeaderLength:headerLength]...)
	}

	// total_length == the fixed minimum means "no payload was accounted
	// for"; normalize it to header_length.
	if h.TotalLength == MinHeaderLength {
		h.TotalLength = h.HeaderLength
	}

	return h, nil
}

// Serialize renders h as its wire representation, recomputing Checksum
// over the header with the checksum field zeroed.
func (h IPv4) Serialize() []byte {
	totalLength := h.TotalLength
	if totalLength == MinHeaderLength {
		totalLength = h.HeaderLength
	}

	b := make([]byte, h.HeaderLength)
	b[0] = byte(version<<4) | byte(h.HeaderLength/4)
	b[1] = h.DSF
	binary.BigEndian.PutUint16(b[2:4], uint16(totalLength))
	binary.BigEndian.PutUint16(b[4:6], h.Identification)

	flagsAndOffset := uint16(h.Flags)<<fragmentOffsetShift | uint16(h.FragmentOffset/8)
	binary.BigEndian.PutUint16(b[6:8], flagsAndOffset)

	b[8] = h.TTL
	b[9] = h.Protocol
	// b[10:12] (checksum) left zero for the checksum computation below.
	copy(b[12:16], h.Source.To4())
	copy(b[16:20], h.Destination.To4())
	copy(b[20:h.HeaderLength], h.Options)

	checksum := InternetChecksum(b[:h.HeaderLength])
	binary.BigEndian.PutUint16(b[10:12], checksum)

	return b
}
