package wire

import (
	"encoding/binary"
	"errors"
	"io"
	"net"
)

// ARP opcodes (RFC 826).
const (
	OperationRequest uint16 = 1
	OperationReply   uint16 = 2
)

// ARP field defaults for IPv4-over-Ethernet.
const (
	HardwareTypeEthernet uint16 = 1
	ProtocolTypeIPv4     uint16 = 0x0800
	HardwareSizeEthernet uint8  = 6
	ProtocolSizeIPv4     uint8  = 4
)

// ARPSize is the fixed length in bytes of an ARP header for IPv4-over-Ethernet.
const ARPSize = 28

// ErrInvalidMAC is returned when a MAC address field is not 6 bytes.
var ErrInvalidMAC = errors.New("wire: invalid MAC address")

// ErrInvalidIP is returned when an IPv4 address field is not 4 bytes.
var ErrInvalidIP = errors.New("wire: invalid IPv4 address")

// ARP is a raw ARP header for IPv4-over-Ethernet, as described in RFC 826.
//
// Every field must be set before Serialize is called; there is no
// meaningful zero value for SenderHardware/SenderProtocol/TargetHardware/
// TargetProtocol: a zero value there would serialize as a real address.
type ARP struct {
	HardwareType   uint16
	ProtocolType   uint16
	HardwareSize   uint8
	ProtocolSize   uint8
	Opcode         uint16
	SenderHardware net.HardwareAddr
	SenderProtocol net.IP
	TargetHardware net.HardwareAddr
	TargetProtocol net.IP
}

// NewARP builds an ARP header with the standard IPv4-over-Ethernet sizes
// and the given opcode/addresses.
func NewARP(op uint16, senderMAC net.HardwareAddr, senderIP net.IP, targetMAC net.HardwareAddr, targetIP net.IP) (ARP, error) {
	if len(senderMAC) != 6 || len(targetMAC) != 6 {
		return ARP{}, ErrInvalidMAC
	}

	senderIP = senderIP.To4()
	targetIP = targetIP.To4()
	if senderIP == nil || targetIP == nil {
		return ARP{}, ErrInvalidIP
	}

	return ARP{
		HardwareType:   HardwareTypeEthernet,
		ProtocolType:   ProtocolTypeIPv4,
		HardwareSize:   HardwareSizeEthernet,
		ProtocolSize:   ProtocolSizeIPv4,
		Opcode:         op,
		SenderHardware: senderMAC,
		SenderProtocol: senderIP,
		TargetHardware: targetMAC,
		TargetProtocol: targetIP,
	}, nil
}

// ParseARP reads an ARP header from b, which must hold at least ARPSize
// bytes laid out as the fixed-size request/reply format of RFC 826.
func ParseARP(b []byte) (ARP, error) {
	if len(b) < ARPSize {
		return ARP{}, io.ErrUnexpectedEOF
	}

	a := ARP{
		HardwareType: binary.BigEndian.Uint16(b[0:2]),
		ProtocolType: binary.BigEndian.Uint16(b[2:4]),
		HardwareSize: b[4],
		ProtocolSize: b[5],
		Opcode:       binary.BigEndian.Uint16(b[6:8]),
	}

	a.SenderHardware = append(net.HardwareAddr(nil), b[8:14]...)
	a.SenderProtocol = append(net.IP(nil), b[14:18]...)
	a.TargetHardware = append(net.HardwareAddr(nil), b[18:24]...)
	a.TargetProtocol = append(net.IP(nil), b[24:28]...)

	return a, nil
}

// Serialize renders a as its ARPSize-byte wire representation.
func (a ARP) Serialize() ([]byte, error) {
	if len(a.SenderHardware) != 6 || len(a.TargetHardware) != 6 {
		return nil, ErrInvalidMAC
	}

	senderIP := a.SenderProtocol.To4()
	targetIP := a.TargetProtocol.To4()
	if senderIP == nil || targetIP == nil {
		return nil, ErrInvalidIP
	}

	b := make([]byte, ARPSize)
	binary.BigEndian.PutUint16(b[0:2], a.HardwareType)
	binary.BigEndian.PutUint16(b[2:4], a.ProtocolType)
	b[4] = a.HardwareSize
	b[5] = a.ProtocolSize
	binary.BigEndian.PutUint16(b[6:8], a.Opcode)
	copy(b[8:14], a.SenderHardware)
	copy(b[14:18], senderIP)
	copy(b[18:24], a.TargetHardware)
	copy(b[24:28], targetIP)

	return b, nil
}
