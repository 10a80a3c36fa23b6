package routetable

import (
	"net"
	"testing"
)

func cidr(t *testing.T, s string) *net.IPNet {
	t.Helper()
	_, n, err := net.ParseCIDR(s)
	if err != nil {
		t.Fatalf("ParseCIDR(%q): %v", s, err)
	}
	return n
}

func TestFindInterfaceLongestPrefixMatch(t *testing.T) {
	tbl := New()
	tbl.Add(NewEntry(cidr(t, "10.0.0.0/8"), net.ParseIP("10.0.0.1"), "eth0"))
	tbl.Add(NewEntry(cidr(t, "10.1.0.0/16"), net.ParseIP("10.1.0.1"), "eth1"))

	iface, ok := tbl.FindInterface(net.ParseIP("10.1.2.3"))
	if !ok {
		t.Fatal("FindInterface: not found")
	}
	if iface != "eth1" {
		t.Fatalf("FindInterface = %q, want %q (longest prefix)", iface, "eth1")
	}
}

func TestFindInterfaceTieBreaksOnLastInsertion(t *testing.T) {
	tbl := New()
	tbl.Add(NewEntry(cidr(t, "10.0.0.0/24"), net.ParseIP("10.0.0.1"), "eth0"))
	tbl.Add(NewEntry(cidr(t, "10.0.0.0/24"), net.ParseIP("10.0.0.2"), "eth1"))

	iface, ok := tbl.FindInterface(net.ParseIP("10.0.0.5"))
	if !ok {
		t.Fatal("FindInterface: not found")
	}
	if iface != "eth1" {
		t.Fatalf("FindInterface = %q, want %q (later insertion wins tie)", iface, "eth1")
	}
}

func TestFindInterfaceNoMatch(t *testing.T) {
	tbl := New()
	tbl.Add(NewEntry(cidr(t, "10.0.0.0/8"), net.ParseIP("10.0.0.1"), "eth0"))

	if _, ok := tbl.FindInterface(net.ParseIP("192.168.1.1")); ok {
		t.Fatal("FindInterface: want no match")
	}
}

func TestAddSuppressesDuplicateUnderCurrentLPM(t *testing.T) {
	tbl := New()
	tbl.Add(NewEntry(cidr(t, "10.0.0.0/24"), net.ParseIP("10.0.0.1"), "eth0"))
	tbl.Add(NewEntry(cidr(t, "10.0.0.0/24"), net.ParseIP("10.0.0.1"), "eth0"))

	if got := len(tbl.Networks()); got != 1 {
		t.Fatalf("Networks() length = %d, want 1", got)
	}
}

func TestFindNetworkMatchesFindInterface(t *testing.T) {
	tbl := New()
	tbl.Add(NewEntry(cidr(t, "192.168.0.0/16"), net.ParseIP("192.168.0.1"), "eth0"))
	tbl.Add(NewEntry(cidr(t, "192.168.1.0/24"), net.ParseIP("192.168.1.1"), "eth1"))

	ip := net.ParseIP("192.168.1.50")
	iface, ifaceOK := tbl.FindInterface(ip)
	network, netOK := tbl.FindNetwork(ip)

	if !ifaceOK || !netOK {
		t.Fatal("expected both FindInterface and FindNetwork to match")
	}
	if iface != "eth1" {
		t.Fatalf("FindInterface = %q, want eth1", iface)
	}
	if network.String() != "192.168.1.0/24" {
		t.Fatalf("FindNetwork = %v, want 192.168.1.0/24", network)
	}
}
