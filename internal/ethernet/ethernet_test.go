package ethernet

import (
	"net"
	"testing"
)

func TestHeaderRoundTrip(t *testing.T) {
	src, _ := net.ParseMAC("11:22:33:44:55:66")
	dst, _ := net.ParseMAC("66:55:44:33:22:11")

	h := Header{Destination: dst, Source: src, EtherType: TypeIPv4}
	b := h.Serialize()
	if len(b) != Size {
		t.Fatalf("Serialize length = %d, want %d", len(b), Size)
	}

	got, err := Parse(b)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got.Destination.String() != dst.String() || got.Source.String() != src.String() || got.EtherType != TypeIPv4 {
		t.Fatalf("round trip mismatch: got %+v", got)
	}
}

func TestParseShortBuffer(t *testing.T) {
	if _, err := Parse(make([]byte, Size-1)); err != ErrInvalidFrame {
		t.Fatalf("Parse on short buffer: err = %v, want ErrInvalidFrame", err)
	}
}
