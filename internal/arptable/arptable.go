// Package arptable implements the ARP resolution cache.
package arptable

import (
	"net"
	"sync"
)

// Kind distinguishes a statically configured entry from one learned off
// the wire.
type Kind int

const (
	// Dynamic entries are learned from observed ARP traffic.
	Dynamic Kind = iota
	// Static entries are configured and always shadow dynamic entries
	// for the same IP.
	Static
)

// Entry is one ARP table row: an IP/MAC pair and how it was learned.
type Entry struct {
	IP   string // net.IP.String(), used as the comparison key
	MAC  string // net.HardwareAddr.String(), used as the comparison key
	Kind Kind
}

// NewEntry builds an Entry from concrete address types.
func NewEntry(ip net.IP, mac net.HardwareAddr, kind Kind) Entry {
	return Entry{IP: ip.String(), MAC: mac.String(), Kind: kind}
}

// Table is an ordered ARP cache. Static entries are always positioned
// before any dynamic entry, so they shadow dynamic entries for the same
// IP at lookup time.
type Table struct {
	mu      sync.RWMutex
	entries []Entry
}

// New returns an empty ARP table.
func New() *Table {
	return &Table{}
}

// Add inserts entry unless an identical (ip, mac, kind) triple is already
// present. A static entry is moved to the front of the table so it wins
// any future lookup over dynamic entries for the same IP.
func (t *Table) Add(entry Entry) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, e := range t.entries {
		if e == entry {
			return
		}
	}

	if entry.Kind == Static {
		t.entries = append([]Entry{entry}, t.entries...)
		return
	}
	t.entries = append(t.entries, entry)
}

// Remove deletes the exact entry if present; it is a no-op otherwise.
func (t *Table) Remove(entry Entry) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i, e := range t.entries {
		if e == entry {
			t.entries = append(t.entries[:i], t.entries[i+1:]...)
			return
		}
	}
}

// Lookup returns the MAC address of the first entry matching ip (static
// entries shadow dynamic ones due to ordering) and whether one was found.
func (t *Table) Lookup(ip net.IP) (net.HardwareAddr, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	key := ip.String()
	for _, e := range t.entries {
		if e.IP == key {
			mac, err := net.ParseMAC(e.MAC)
			if err != nil {
				return nil, false
			}
			return mac, true
		}
	}
	return nil, false
}

// Contains reports whether any entry has the given IP.
func (t *Table) Contains(ip net.IP) bool {
	_, ok := t.Lookup(ip)
	return ok
}

// IPs returns the IPs of every entry in stored order.
func (t *Table) IPs() []net.IP {
	t.mu.RLock()
	defer t.mu.RUnlock()

	ips := make([]net.IP, 0, len(t.entries))
	for _, e := range t.entries {
		ip := net.ParseIP(e.IP)
		if ip == nil {
			continue
		}
		ips = append(ips, ip)
	}
	return ips
}
