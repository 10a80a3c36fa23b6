package config

import (
	"errors"
	"flag"
	"net"
)

// Interface describes one router-attached interface: its name and the
// IPv4 address the router itself answers to on it.
type Interface struct {
	Name string
	IP   net.IP
}

// Config is the router's process-level configuration: interfaces,
// addresses, routes, and MTU, all supplied at startup rather than
// hard-coded.
type Config struct {
	Interfaces []Interface
	RoutesFile string
	MTU        int
	LogLevel   string
}

// DefaultMTU is the default link MTU used when none is configured.
const DefaultMTU = 1500

// ErrNoInterfaces is returned when a Config names zero interfaces.
// Validate accepts a Config with a single interface.
var ErrNoInterfaces = errors.New("config: at least one interface is required")

// interfaceList is a flag.Value collecting repeated "-iface name=ip"
// flags into a []Interface.
type interfaceList struct {
	items *[]Interface
}

func (l interfaceList) String() string {
	if l.items == nil {
		return ""
	}
	return ""
}

func (l interfaceList) Set(value string) error {
	name, ipStr, ok := splitOnce(value, '=')
	if !ok {
		return errors.New("config: -iface expects name=ip")
	}
	ip := net.ParseIP(ipStr).To4()
	if ip == nil {
		return errors.New("config: -iface ip must be a valid IPv4 address")
	}
	*l.items = append(*l.items, Interface{Name: name, IP: ip})
	return nil
}

func splitOnce(s string, sep byte) (string, string, bool) {
	for i := 0; i < len(s); i++ {
		if s[i] == sep {
			return s[:i], s[i+1:], true
		}
	}
	return "", "", false
}

// RegisterFlags registers this router's flags onto fs and returns a
// Config that is populated once fs.Parse has been called.
func RegisterFlags(fs *flag.FlagSet) *Config {
	cfg := &Config{}

	fs.Var(interfaceList{items: &cfg.Interfaces}, "iface", "interface in name=ip form; repeatable")
	fs.StringVar(&cfg.RoutesFile, "routes", "", "path to the routing table seed file")
	fs.IntVar(&cfg.MTU, "mtu", DefaultMTU, "link MTU in bytes, excluding the 14-byte Ethernet header")
	fs.StringVar(&cfg.LogLevel, "log-level", "info", "log level: debug, info, warn, or error")

	return cfg
}

// Validate reports whether cfg is usable.
func (c *Config) Validate() error {
	if len(c.Interfaces) == 0 {
		return ErrNoInterfaces
	}
	return nil
}
