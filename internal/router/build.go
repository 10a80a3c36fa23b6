package router

import (
	"net"

	"github.com/caser789/router/internal/ethernet"
	"github.com/caser789/router/internal/packet"
	"github.com/caser789/router/internal/wire"
)

var unspecifiedMAC = net.HardwareAddr{0, 0, 0, 0, 0, 0}

// buildARPRequest builds a broadcast ARP request for targetIP, sent from
// iface's own address.
func (r *Router) buildARPRequest(iface string, targetIP net.IP) packet.Packet {
	senderMAC := r.interfaceMAC[iface]
	senderIP := r.myIP[iface]

	arp, err := wire.NewARP(wire.OperationRequest, senderMAC, senderIP, unspecifiedMAC, targetIP)
	if err != nil {
		// senderMAC/senderIP come from this router's own write-once
		// config; a failure here would be a configuration error.
		panic(err)
	}

	eth := ethernet.Header{Destination: ethernet.Broadcast, Source: senderMAC, EtherType: ethernet.TypeARP}
	return packet.FromLayers(eth, packet.WrapARP(arp))
}

// buildARPReply builds an ARP reply to targetIP, addressed to the MAC
// address already on file for it.
func (r *Router) buildARPReply(iface string, targetIP net.IP) (packet.Packet, error) {
	senderMAC := r.interfaceMAC[iface]
	senderIP := r.myIP[iface]

	targetMAC, ok := r.ArpTable.Lookup(targetIP)
	if !ok {
		return packet.Packet{}, wire.ErrInvalidMAC
	}

	arp, err := wire.NewARP(wire.OperationReply, senderMAC, senderIP, targetMAC, targetIP)
	if err != nil {
		return packet.Packet{}, err
	}

	eth := ethernet.Header{Destination: targetMAC, Source: senderMAC, EtherType: ethernet.TypeARP}
	return packet.FromLayers(eth, packet.WrapARP(arp)), nil
}

// buildICMPReply builds an Echo Reply packet for a request with the given
// (source, destination) as seen on the wire — the reply swaps them: its
// IPv4 header source is reqDestinationIP and its destination is
// reqSourceIP.
func (r *Router) buildICMPReply(req wire.ICMP, reqSourceIP, reqDestinationIP net.IP) packet.Packet {
	interfaceOwningDest := r.interfaceOf(reqDestinationIP)
	senderMAC := r.interfaceMAC[interfaceOwningDest]
	targetMAC, _ := r.ArpTable.Lookup(reqSourceIP)

	eth := ethernet.Header{Destination: targetMAC, Source: senderMAC, EtherType: ethernet.TypeIPv4}

	reply := req.BuildEchoReply()
	replyBytes := reply.Serialize()

	ip := wire.NewIPv4(wire.ProtocolICMP, reqDestinationIP, reqSourceIP)
	ip.TotalLength = ip.HeaderLength + len(replyBytes)

	return packet.FromLayers(eth, packet.WrapIPv4(ip), packet.WrapICMP(reply))
}

// interfaceOf returns the name of the interface configured with ip, or
// "" if none matches.
func (r *Router) interfaceOf(ip net.IP) string {
	for name, owned := range r.myIP {
		if owned.Equal(ip) {
			return name
		}
	}
	return ""
}
