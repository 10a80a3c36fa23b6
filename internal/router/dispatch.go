package router

import (
	"log/slog"
	"net"
	"time"

	"github.com/caser789/router/internal/arptable"
	"github.com/caser789/router/internal/ethernet"
	"github.com/caser789/router/internal/packet"
	"github.com/caser789/router/internal/routetable"
	"github.com/caser789/router/internal/wire"
)

// HandlePacket classifies an inbound frame and routes it to the
// appropriate handler, or drops it if nothing claims it. HandlePacket
// does not spawn anything itself; callers wanting one worker per
// captured frame should invoke it from a freshly spawned goroutine.
func (r *Router) HandlePacket(p packet.Packet, iface string) {
	eth := p.Ethernet()

	switch eth.EtherType {
	case ethernet.TypeIPv4:
		ip, ok := p.IPv4()
		if !ok {
			return
		}
		if r.isOwnIP(ip.Source) {
			r.log.Debug("dropping self-originated frame", slog.String("source", ip.Source.String()))
			return
		}
		r.handleIPv4(p, iface)

	case ethernet.TypeARP:
		arp, ok := p.ARP()
		if !ok {
			return
		}
		myIP, known := r.myIP[iface]
		if !known || !arp.TargetProtocol.Equal(myIP) {
			return
		}
		r.handleARP(arp, iface)

	default:
		r.log.Debug("no handler for frame", slog.Int("ether_type", int(eth.EtherType)))
	}
}

// handleARP handles an ARP packet addressed to this interface.
func (r *Router) handleARP(arp wire.ARP, iface string) {
	entry := arptable.NewEntry(arp.SenderProtocol, arp.SenderHardware, arptable.Dynamic)
	r.ArpTable.Add(entry)

	nextHop := r.getNextHop(arp.SenderProtocol)
	network := &net.IPNet{IP: arp.SenderProtocol.To4(), Mask: net.CIDRMask(32, 32)}
	r.RoutingTable.Add(routetable.NewEntry(network, nextHop, iface))

	if arp.Opcode == wire.OperationRequest {
		reply, err := r.buildARPReply(iface, arp.SenderProtocol)
		if err != nil {
			r.log.Warn("failed to build ARP reply", slog.String("error", err.Error()))
			return
		}
		r.sendPacket(reply, iface)
	}
}

// handleIPv4 handles an IPv4 packet not originated by this router.
func (r *Router) handleIPv4(p packet.Packet, inIface string) {
	eth := p.Ethernet()
	ip, _ := p.IPv4()

	if !r.resolveARP(inIface, ip.Source) {
		// An unresolved source doesn't abort handling here, only the
		// destination resolution below does — get_next_hop/forwarding
		// would have nothing useful to do with an unresolved source
		// either way, so we log and continue.
		r.log.Debug("source address did not resolve", slog.String("source", ip.Source.String()))
	}

	outIface, ok := r.RoutingTable.FindInterface(ip.Destination)
	if !ok {
		r.log.Debug("no route to destination", slog.String("destination", ip.Destination.String()))
		return
	}

	if !r.resolveARP(outIface, ip.Destination) {
		r.log.Warn("ARP resolution failed, aborting",
			slog.String("destination", ip.Destination.String()),
			slog.String("interface", outIface),
		)
		return
	}

	icmp, isICMP := p.ICMP()
	if isICMP && icmp.Type == wire.ICMPTypeEchoRequest && r.isOwnIP(ip.Destination) {
		reply := r.buildICMPReply(icmp, ip.Source, ip.Destination)
		r.sendPacket(reply, inIface)
		r.log.Info("sent ICMP echo reply", slog.String("destination", ip.Source.String()))
		return
	}

	sourceNetwork, ok := r.RoutingTable.FindNetwork(ip.Source)
	if !ok {
		return
	}
	if !sourceNetwork.Contains(ip.Destination) && !r.isOwnMAC(eth.Source) {
		r.forwardIPv4(p)
	}
}

// resolveARP blocks until ip resolves on iface or MaximumARPRequests
// requests have been sent without success. Concurrent resolution
// attempts for the same (iface, ip) collapse onto a single retry loop
// via singleflight, so overlapping callers never turn into an
// unbounded request storm.
func (r *Router) resolveARP(iface string, ip net.IP) bool {
	if r.ArpTable.Contains(ip) {
		return true
	}

	key := iface + "|" + ip.String()
	v, _, _ := r.arpResolve.Do(key, func() (interface{}, error) {
		resolved := r.ArpTable.Contains(ip)
		for attempts := 0; !resolved && attempts < MaximumARPRequests; attempts++ {
			req := r.buildARPRequest(iface, ip)
			r.sendPacket(req, iface)
			time.Sleep(arpRetryWait)
			resolved = r.ArpTable.Contains(ip)
		}
		return resolved, nil
	})

	return v.(bool)
}
