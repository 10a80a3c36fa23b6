package router

import (
	"log/slog"
	"net"

	"github.com/caser789/router/internal/ethernet"
	"github.com/caser789/router/internal/packet"
	"github.com/caser789/router/internal/wire"
)

// forwardIPv4 rewrites the L2 header and decrements TTL, then sends the
// packet on the route's outgoing interface.
//
// TTL underflow (TTL==0 after decrement) is not specially handled: no
// ICMP Time Exceeded is emitted back to the sender. This is a documented
// limitation, not an oversight.
func (r *Router) forwardIPv4(p packet.Packet) {
	eth := p.Ethernet()
	ip, _ := p.IPv4()
	payload := p.Layers[2]

	outIface, ok := r.RoutingTable.FindInterface(ip.Destination)
	if !ok {
		return
	}

	destMAC, ok := r.ArpTable.Lookup(ip.Destination)
	if !ok {
		return
	}
	srcMAC := r.interfaceMAC[outIface]

	newEth := ethernet.Header{Destination: destMAC, Source: srcMAC, EtherType: eth.EtherType}
	newIP := ip
	newIP.TTL--

	forwarded := packet.FromLayers(newEth, packet.WrapIPv4(newIP), payload)
	r.log.Debug("forwarding packet", slog.String("interface", outIface), slog.Int("ttl", int(newIP.TTL)))
	r.sendPacket(forwarded, outIface)
}

// getNextHop returns the next-hop IP to record for a newly learned ARP
// entry destined to destIP: the first address present in both the ARP
// table and the most-specific routing-table network already containing
// destIP. If none is found, destIP itself is recorded as the next hop —
// a directly-connected host is its own next hop for its /32 route.
func (r *Router) getNextHop(destIP net.IP) net.IP {
	network, ok := r.RoutingTable.FindNetwork(destIP)
	if ok {
		for _, ip := range r.ArpTable.IPs() {
			if network.Contains(ip) {
				return ip
			}
		}
	}
	return destIP
}

// sendPacket transmits p on iface verbatim if it fits within realMTU,
// fragments it if it is an oversize IPv4 packet with DF clear, or drops
// it otherwise (DF set and oversize: no notification is emitted).
func (r *Router) sendPacket(p packet.Packet, iface string) {
	if p.Len() <= r.realMTU {
		if err := r.send(iface, p.Bytes()); err != nil {
			r.log.Warn("send failed", slog.String("interface", iface), slog.String("error", err.Error()))
		}
		return
	}

	ip, ok := p.IPv4()
	if !ok || ip.Flags&wire.FlagDontFragment != 0 {
		r.log.Debug("dropping oversize packet", slog.Int("length", p.Len()), slog.Int("real_mtu", r.realMTU))
		return
	}

	for _, fragment := range r.fragmentPacket(p) {
		if err := r.send(iface, fragment.Bytes()); err != nil {
			r.log.Warn("send failed", slog.String("interface", iface), slog.String("error", err.Error()))
		}
	}
}

// fragmentPacket splits an oversize IPv4 packet into MTU-sized fragments.
// Each fragment keeps the original Ethernet header, a copy of the IPv4
// header with adjusted total_length/flags/fragment_offset, and a slice
// of the original payload.
func (r *Router) fragmentPacket(p packet.Packet) []packet.Packet {
	eth := p.Ethernet()
	ip, _ := p.IPv4()

	var payload []byte
	for _, l := range p.Layers[2:] {
		payload = append(payload, l.Serialize()...)
	}

	payloadMTU := ((r.mtu - ip.HeaderLength) / 8) * 8
	if payloadMTU <= 0 {
		return nil
	}

	numFragments := (len(payload) + payloadMTU - 1) / payloadMTU
	fragments := make([]packet.Packet, 0, numFragments)

	for i := 0; i < numFragments; i++ {
		start := i * payloadMTU
		end := start + payloadMTU
		if end > len(payload) {
			end = len(payload)
		}

		fragIP := ip
		fragIP.TotalLength = ip.HeaderLength + (end - start)
		fragIP.FragmentOffset = start
		if i != numFragments-1 {
			fragIP.Flags = wire.FlagMoreFragments
		} else {
			fragIP.Flags = 0
		}

		fragments = append(fragments, packet.FromLayers(eth, packet.WrapIPv4(fragIP), packet.RawBytes(payload[start:end])))
	}

	return fragments
}
