// Package router implements the packet-processing engine: classification,
// self-targeted ARP/ICMP handling, ARP resolution, forwarding, and
// fragmentation.
package router

import (
	"log/slog"
	"net"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/caser789/router/internal/arptable"
	"github.com/caser789/router/internal/routetable"
)

// MaximumARPRequests bounds how many ARP requests the router will emit
// while waiting for an address to resolve before giving up.
const MaximumARPRequests = 5

// arpRetryWait is the pause between ARP resolution attempts: long enough
// that a concurrently-running ingress worker has a chance to populate
// the ARP table, short enough that MaximumARPRequests attempts stay fast.
const arpRetryWait = 2 * time.Millisecond

// Sender transmits a fully-serialized frame on the named interface.
type Sender func(iface string, frame []byte) error

// Router holds all router state and implements the dispatch/handling
// logic.
type Router struct {
	ArpTable     *arptable.Table
	RoutingTable *routetable.Table

	myIP         map[string]net.IP
	interfaceMAC map[string]net.HardwareAddr

	mtu     int
	realMTU int

	send Sender
	log  *slog.Logger

	arpResolve singleflight.Group
}

// Config is the set of write-once values a Router is constructed with;
// MyIP and InterfaceMAC are fixed for the router's lifetime once set.
type Config struct {
	MyIP         map[string]net.IP
	InterfaceMAC map[string]net.HardwareAddr
	MTU          int
	Send         Sender
	Logger       *slog.Logger
	Routes       []routetable.Entry
}

// New constructs a Router. The routing table is seeded from cfg.Routes;
// the ARP table starts empty.
func New(cfg Config) *Router {
	mtu := cfg.MTU
	if mtu == 0 {
		mtu = 1500
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := &Router{
		ArpTable:     arptable.New(),
		RoutingTable: routetable.New(),
		myIP:         cfg.MyIP,
		interfaceMAC: cfg.InterfaceMAC,
		mtu:          mtu,
		realMTU:      mtu + 14,
		send:         cfg.Send,
		log:          logger,
	}

	for _, e := range cfg.Routes {
		r.RoutingTable.Add(e)
	}

	logger.Debug("router initialized",
		slog.Int("mtu", mtu),
		slog.Int("interfaces", len(cfg.MyIP)),
	)

	return r
}

// isOwnIP reports whether ip belongs to one of this router's interfaces.
func (r *Router) isOwnIP(ip net.IP) bool {
	for _, owned := range r.myIP {
		if owned.Equal(ip) {
			return true
		}
	}
	return false
}

// isOwnMAC reports whether mac belongs to one of this router's interfaces.
func (r *Router) isOwnMAC(mac net.HardwareAddr) bool {
	for _, owned := range r.interfaceMAC {
		if owned.String() == mac.String() {
			return true
		}
	}
	return false
}
