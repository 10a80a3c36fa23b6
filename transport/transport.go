// Package transport implements the raw L2 I/O collaborators the core
// engine is built against: capture, send, and interface MAC discovery.
//
// It opens raw sockets across every EtherType this router needs to see
// (syscall.ETH_P_ALL) rather than a single protocol, with one long-lived
// capture socket per interface and a fresh scoped socket per transmit.
package transport

import (
	"fmt"
	"net"
	"os"
	"strings"
	"syscall"

	"github.com/caser789/raw"
)

// Send opens a raw socket bound to iface, writes frame once, and closes
// the socket — acquired and released within a single call, with no
// socket held across sends.
func Send(iface string, frame []byte) error {
	ifi, err := net.InterfaceByName(iface)
	if err != nil {
		return fmt.Errorf("transport: send on %s: %w", iface, err)
	}

	conn, err := raw.ListenPacket(ifi, syscall.ETH_P_ALL)
	if err != nil {
		return fmt.Errorf("transport: send on %s: %w", iface, err)
	}
	defer conn.Close()

	_, err = conn.WriteTo(frame, &raw.Addr{HardwareAddr: ifi.HardwareAddr})
	if err != nil {
		return fmt.Errorf("transport: send on %s: %w", iface, err)
	}
	return nil
}

// InterfaceMAC returns the hardware address of the named interface. It
// first tries reading /sys/class/net/<name>/address directly, falling
// back to net.InterfaceByName if that fails or the address doesn't parse.
func InterfaceMAC(name string) (net.HardwareAddr, error) {
	if b, err := os.ReadFile("/sys/class/net/" + name + "/address"); err == nil {
		mac, parseErr := net.ParseMAC(strings.TrimSpace(string(b)))
		if parseErr == nil {
			return mac, nil
		}
	}

	ifi, err := net.InterfaceByName(name)
	if err != nil {
		return nil, fmt.Errorf("transport: interface MAC for %s: %w", name, err)
	}
	if len(ifi.HardwareAddr) == 0 {
		return nil, fmt.Errorf("transport: interface %s has no hardware address", name)
	}
	return ifi.HardwareAddr, nil
}
