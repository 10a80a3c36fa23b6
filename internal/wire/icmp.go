package wire

import (
	"encoding/binary"
	"io"
	"sync/atomic"
)

// ICMP Echo type codes (RFC 792).
const (
	ICMPTypeEchoRequest uint8 = 8
	ICMPTypeEchoReply   uint8 = 0
)

const icmpHeaderFixedSize = 16 // type,code,checksum,identifier,sequence,timestamp

// icmpIdentifierCounter is a process-wide monotonically cycling counter
// (mod 2^16) for tagging freshly originated Echo Requests. This router
// never originates one itself — it only relays Echo Requests into
// Echo Replies that copy the request's identifier verbatim — so
// nextICMPIdentifier is exercised by tests only; it is kept unexported
// as a codec helper for any future caller that builds its own requests
// (an active prober, for instance) rather than just answering them.
var icmpIdentifierCounter atomic.Uint32

// nextICMPIdentifier returns the next value of the process-wide cycling
// ICMP identifier counter, wrapping modulo 2^16.
func nextICMPIdentifier() uint16 {
	return uint16(icmpIdentifierCounter.Add(1) % (1 << 16))
}

// ICMP is an ICMP Echo header (request or reply), RFC 792.
type ICMP struct {
	Type           uint8
	Code           uint8
	Checksum       uint16
	Identifier     uint16
	SequenceNumber uint16
	Timestamp      [8]byte // seconds since epoch, little-endian on emission
	Data           []byte
}

// ParseICMP reads an ICMP Echo header from b.
func ParseICMP(b []byte) (ICMP, error) {
	if len(b) < icmpHeaderFixedSize {
		return ICMP{}, io.ErrUnexpectedEOF
	}

	h := ICMP{
		Type:           b[0],
		Code:           b[1],
		Checksum:       binary.BigEndian.Uint16(b[2:4]),
		Identifier:     binary.BigEndian.Uint16(b[4:6]),
		SequenceNumber: binary.BigEndian.Uint16(b[6:8]),
	}
	copy(h.Timestamp[:], b[8:16])
	if len(b) > icmpHeaderFixedSize {
		h.Data = append([]byte(nil), b[icmpHeaderFixedSize:]...)
	}

	return h, nil
}

// Serialize renders h as its wire representation, recomputing Checksum
// over the full message with the checksum field zeroed.
func (h ICMP) Serialize() []byte {
	b := make([]byte, icmpHeaderFixedSize+len(h.Data))
	b[0] = h.Type
	b[1] = h.Code
	// b[2:4] (checksum) left zero for the checksum computation below.
	binary.BigEndian.PutUint16(b[4:6], h.Identifier)
	binary.BigEndian.PutUint16(b[6:8], h.SequenceNumber)
	copy(b[8:16], h.Timestamp[:])
	copy(b[16:], h.Data)

	checksum := InternetChecksum(b)
	binary.BigEndian.PutUint16(b[2:4], checksum)

	return b
}

// BuildEchoReply constructs the Echo Reply header for a request header:
// type becomes 0, identifier/sequence/timestamp/data are kept verbatim.
func (h ICMP) BuildEchoReply() ICMP {
	reply := h
	reply.Type = ICMPTypeEchoReply
	reply.Checksum = 0
	return reply
}
