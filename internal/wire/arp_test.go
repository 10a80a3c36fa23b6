package wire

import (
	"net"
	"testing"
)

func mustMAC(t *testing.T, s string) net.HardwareAddr {
	t.Helper()
	mac, err := net.ParseMAC(s)
	if err != nil {
		t.Fatalf("ParseMAC(%q): %v", s, err)
	}
	return mac
}

func TestARPRoundTrip(t *testing.T) {
	senderMAC := mustMAC(t, "aa:bb:cc:dd:ee:01")
	targetMAC := mustMAC(t, "aa:bb:cc:dd:ee:02")
	senderIP := net.ParseIP("10.0.0.1")
	targetIP := net.ParseIP("10.0.0.2")

	a, err := NewARP(OperationRequest, senderMAC, senderIP, targetMAC, targetIP)
	if err != nil {
		t.Fatalf("NewARP: %v", err)
	}

	b, err := a.Serialize()
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if len(b) != ARPSize {
		t.Fatalf("Serialize length = %d, want %d", len(b), ARPSize)
	}

	got, err := ParseARP(b)
	if err != nil {
		t.Fatalf("ParseARP: %v", err)
	}

	if got.Opcode != a.Opcode ||
		got.SenderHardware.String() != a.SenderHardware.String() ||
		!got.SenderProtocol.Equal(a.SenderProtocol) ||
		got.TargetHardware.String() != a.TargetHardware.String() ||
		!got.TargetProtocol.Equal(a.TargetProtocol) {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, a)
	}
}

func TestNewARPRejectsInvalidAddresses(t *testing.T) {
	badMAC := net.HardwareAddr{0x01, 0x02}
	mac := mustMAC(t, "aa:bb:cc:dd:ee:01")
	ip := net.ParseIP("10.0.0.1")

	if _, err := NewARP(OperationRequest, badMAC, ip, mac, ip); err != ErrInvalidMAC {
		t.Fatalf("NewARP with short MAC: err = %v, want ErrInvalidMAC", err)
	}
	if _, err := NewARP(OperationRequest, mac, net.IP{}, mac, ip); err != ErrInvalidIP {
		t.Fatalf("NewARP with empty IP: err = %v, want ErrInvalidIP", err)
	}
}

func TestParseARPShortBuffer(t *testing.T) {
	if _, err := ParseARP(make([]byte, ARPSize-1)); err == nil {
		t.Fatal("ParseARP on short buffer: want error, got nil")
	}
}
