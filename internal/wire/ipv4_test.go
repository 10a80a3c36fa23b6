package wire

import (
	"net"
	"testing"
)

func TestIPv4RoundTrip(t *testing.T) {
	h := NewIPv4(ProtocolICMP, net.ParseIP("192.168.1.1"), net.ParseIP("192.168.1.2"))
	h.TotalLength = h.HeaderLength + 8
	h.Identification = 0xbeef

	b := h.Serialize()
	if len(b) != h.HeaderLength {
		t.Fatalf("Serialize length = %d, want %d", len(b), h.HeaderLength)
	}

	got, err := ParseIPv4(b)
	if err != nil {
		t.Fatalf("ParseIPv4: %v", err)
	}

	if got.HeaderLength != h.HeaderLength ||
		got.TotalLength != h.TotalLength ||
		got.Identification != h.Identification ||
		got.Flags != h.Flags ||
		got.FragmentOffset != h.FragmentOffset ||
		got.TTL != h.TTL ||
		got.Protocol != h.Protocol ||
		!got.Source.Equal(h.Source) ||
		!got.Destination.Equal(h.Destination) {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, h)
	}
}

func TestIPv4SerializeRecomputesChecksum(t *testing.T) {
	h := NewIPv4(ProtocolICMP, net.ParseIP("10.0.0.1"), net.ParseIP("10.0.0.2"))
	h.Checksum = 0xffff // stale value must be ignored, not trusted
	h.TotalLength = h.HeaderLength

	b := h.Serialize()
	// A correctly-checksummed header verifies to zero.
	if sum := InternetChecksum(b[:h.HeaderLength]); sum != 0 {
		t.Fatalf("checksum over serialized header = %#04x, want 0", sum)
	}
}

func TestGetHeaderLengthFlagsFragmentOffsetAgreeWithParse(t *testing.T) {
	h := NewIPv4(ProtocolICMP, net.ParseIP("172.16.0.1"), net.ParseIP("172.16.0.2"))
	h.Flags = FlagMoreFragments
	h.FragmentOffset = 1480
	h.TotalLength = h.HeaderLength + 8

	b := h.Serialize()

	if got := GetHeaderLength(b); got != h.HeaderLength {
		t.Errorf("GetHeaderLength = %d, want %d", got, h.HeaderLength)
	}
	if got := GetFlags(b); got != h.Flags {
		t.Errorf("GetFlags = %#03b, want %#03b", got, h.Flags)
	}
	if got := GetFragmentOffset(b); got != h.FragmentOffset {
		t.Errorf("GetFragmentOffset = %d, want %d", got, h.FragmentOffset)
	}
}

func TestParseIPv4RejectsShortHeader(t *testing.T) {
	if _, err := ParseIPv4(make([]byte, MinHeaderLength-1)); err == nil {
		t.Fatal("ParseIPv4 on short buffer: want error, got nil")
	}
}

func TestParseIPv4NormalizesMinimumTotalLength(t *testing.T) {
	h := NewIPv4(ProtocolICMP, net.ParseIP("10.0.0.1"), net.ParseIP("10.0.0.2"))
	h.TotalLength = MinHeaderLength // sentinel "not accounted for"
	b := h.Serialize()

	got, err := ParseIPv4(b)
	if err != nil {
		t.Fatalf("ParseIPv4: %v", err)
	}
	if got.TotalLength != got.HeaderLength {
		t.Fatalf("TotalLength = %d, want normalized to HeaderLength %d", got.TotalLength, got.HeaderLength)
	}
}
