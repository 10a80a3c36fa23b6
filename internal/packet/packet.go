// Package packet provides a layered view over a captured Ethernet frame:
// Ethernet, then ARP or IPv4 (with ICMP or raw payload), or raw bytes for
// anything else.
package packet

import (
	"github.com/caser789/router/internal/ethernet"
	"github.com/caser789/router/internal/wire"
)

// Layer is anything that serializes back to wire bytes. Ethernet, ARP,
// IPv4 and ICMP headers all satisfy it; a raw, opaque payload is RawBytes.
type Layer interface {
	Serialize() []byte
}

// RawBytes is an opaque, already-serialized layer — used for payloads this
// router doesn't decode further (fragments, non-ICMP IPv4 payloads,
// unknown EtherTypes).
type RawBytes []byte

// Serialize returns b unchanged.
func (b RawBytes) Serialize() []byte { return []byte(b) }

// ethernetLayer adapts ethernet.Header to Layer.
type ethernetLayer struct{ ethernet.Header }

func (h ethernetLayer) Serialize() []byte { return h.Header.Serialize() }

// arpLayer adapts wire.ARP to Layer.
type arpLayer struct{ wire.ARP }

func (a arpLayer) Serialize() []byte {
	b, err := a.ARP.Serialize()
	if err != nil {
		// Every ARP layer reaching this point was built by this
		// package's own constructors, which validate addresses up
		// front; an error here would mean a programmer error.
		panic(err)
	}
	return b
}

// ipv4Layer adapts wire.IPv4 to Layer.
type ipv4Layer struct{ wire.IPv4 }

func (h ipv4Layer) Serialize() []byte { return h.IPv4.Serialize() }

// icmpLayer adapts wire.ICMP to Layer.
type icmpLayer struct{ wire.ICMP }

func (h icmpLayer) Serialize() []byte { return h.ICMP.Serialize() }

// Packet is an ordered sequence of decoded layers, always starting with
// an Ethernet header.
type Packet struct {
	Layers []Layer
}

// Bytes concatenates the serialized form of every layer.
func (p Packet) Bytes() []byte {
	var out []byte
	for _, l := range p.Layers {
		out = append(out, l.Serialize()...)
	}
	return out
}

// Len returns len(p.Bytes()).
func (p Packet) Len() int { return len(p.Bytes()) }

// Ethernet returns the packet's Ethernet header. Every Packet has exactly
// one, at index 0.
func (p Packet) Ethernet() ethernet.Header {
	return p.Layers[0].(ethernetLayer).Header
}

// ARP returns the packet's ARP header and true if layer 1 is ARP.
func (p Packet) ARP() (wire.ARP, bool) {
	if len(p.Layers) < 2 {
		return wire.ARP{}, false
	}
	a, ok := p.Layers[1].(arpLayer)
	return a.ARP, ok
}

// IPv4 returns the packet's IPv4 header and true if layer 1 is IPv4.
func (p Packet) IPv4() (wire.IPv4, bool) {
	if len(p.Layers) < 2 {
		return wire.IPv4{}, false
	}
	h, ok := p.Layers[1].(ipv4Layer)
	return h.IPv4, ok
}

// ICMP returns the packet's ICMP header and true if layer 2 is ICMP.
func (p Packet) ICMP() (wire.ICMP, bool) {
	if len(p.Layers) < 3 {
		return wire.ICMP{}, false
	}
	h, ok := p.Layers[2].(icmpLayer)
	return h.ICMP, ok
}

// Payload returns the undecoded raw bytes of a packet: layer 2 of an IPv4
// packet whose payload was not decoded as ICMP (fragment or non-ICMP
// protocol), or layer 1 of a frame with an unknown EtherType.
func (p Packet) Payload() (RawBytes, bool) {
	if len(p.Layers) == 2 {
		raw, ok := p.Layers[1].(RawBytes)
		return raw, ok
	}
	if len(p.Layers) < 3 {
		return nil, false
	}
	raw, ok := p.Layers[2].(RawBytes)
	return raw, ok
}

// Parse builds a Packet from a captured frame.
//
// If the Ethernet EtherType is ARP, layer 1 is the ARP header. If it is
// IPv4, layer 1 is the IPv4 header and layer 2 is either the ICMP header
// (protocol 1, not a fragment) or raw bytes (fragment, or any other
// protocol). Any other EtherType yields [Ethernet, raw bytes].
func Parse(b []byte) (Packet, error) {
	ethHeader, err := ethernet.Parse(b)
	if err != nil {
		return Packet{}, err
	}
	rest := b[ethernet.Size:]

	switch ethHeader.EtherType {
	case ethernet.TypeARP:
		a, err := wire.ParseARP(rest)
		if err != nil {
			return Packet{}, err
		}
		return Packet{Layers: []Layer{ethernetLayer{ethHeader}, arpLayer{a}}}, nil

	case ethernet.TypeIPv4:
		if len(rest) < wire.MinHeaderLength {
			return Packet{}, wire.ErrInvalidIPv4Header
		}
		headerLength := wire.GetHeaderLength(rest)
		if headerLength < wire.MinHeaderLength || len(rest) < headerLength {
			return Packet{}, wire.ErrInvalidIPv4Header
		}
		ip, err := wire.ParseIPv4(rest[:headerLength])
		if err != nil {
			return Packet{}, err
		}
		payload := rest[headerLength:]

		isFragment := ip.Flags&wire.FlagMoreFragments != 0 || ip.FragmentOffset != 0
		if !isFragment && ip.Protocol == wire.ProtocolICMP {
			icmp, err := wire.ParseICMP(payload)
			if err != nil {
				return Packet{}, err
			}
			return Packet{Layers: []Layer{ethernetLayer{ethHeader}, ipv4Layer{ip}, icmpLayer{icmp}}}, nil
		}

		return Packet{Layers: []Layer{ethernetLayer{ethHeader}, ipv4Layer{ip}, RawBytes(payload)}}, nil

	default:
		return Packet{Layers: []Layer{ethernetLayer{ethHeader}, RawBytes(rest)}}, nil
	}
}

// FromLayers builds a Packet directly from already-constructed headers,
// without a bytes round-trip.
func FromLayers(eth ethernet.Header, rest ...Layer) Packet {
	layers := make([]Layer, 0, 1+len(rest))
	layers = append(layers, ethernetLayer{eth})
	layers = append(layers, rest...)
	return Packet{Layers: layers}
}

// WrapARP is the Layer adapter for an ARP header, for use with FromLayers.
func WrapARP(a wire.ARP) Layer { return arpLayer{a} }

// WrapIPv4 is the Layer adapter for an IPv4 header, for use with FromLayers.
func WrapIPv4(h wire.IPv4) Layer { return ipv4Layer{h} }

// WrapICMP is the Layer adapter for an ICMP header, for use with FromLayers.
func WrapICMP(h wire.ICMP) Layer { return icmpLayer{h} }
