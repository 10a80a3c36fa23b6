// Package config loads the router's static inputs: the routing-table seed
// file and the per-process interface/address configuration.
package config

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/caser789/router/internal/routetable"
)

// LoadRoutes reads a routing-table seed file: one entry per line,
// whitespace-separated fields `<CIDR> <next_hop_ipv4> <interface_name>
// <metric_int>`. Blank lines and malformed lines are rejected with a
// descriptive error.
func LoadRoutes(path string) ([]routetable.Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open routing table %q: %w", path, err)
	}
	defer f.Close()

	return ParseRoutes(f)
}

// ParseRoutes parses the seed-file format from r; see LoadRoutes.
func ParseRoutes(r io.Reader) ([]routetable.Entry, error) {
	var entries []routetable.Entry

	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			return nil, fmt.Errorf("config: routing table line %d: blank line not allowed", lineNum)
		}

		fields := strings.Fields(line)
		if len(fields) != 4 {
			return nil, fmt.Errorf("config: routing table line %d: want 4 fields, got %d", lineNum, len(fields))
		}

		_, network, err := net.ParseCIDR(fields[0])
		if err != nil {
			return nil, fmt.Errorf("config: routing table line %d: invalid CIDR %q: %w", lineNum, fields[0], err)
		}

		nextHop := net.ParseIP(fields[1]).To4()
		if nextHop == nil {
			return nil, fmt.Errorf("config: routing table line %d: invalid next-hop IPv4 %q", lineNum, fields[1])
		}

		iface := fields[2]
		if iface == "" {
			return nil, fmt.Errorf("config: routing table line %d: empty interface name", lineNum)
		}

		metric, err := strconv.Atoi(fields[3])
		if err != nil {
			return nil, fmt.Errorf("config: routing table line %d: invalid metric %q: %w", lineNum, fields[3], err)
		}

		entries = append(entries, routetable.Entry{
			Network:  network,
			NextHop:  nextHop,
			OutIface: iface,
			Metric:   metric,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("config: reading routing table: %w", err)
	}

	return entries, nil
}
