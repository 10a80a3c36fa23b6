// Command gorouter runs the link-layer IPv4 router: it captures frames on
// two or more attached interfaces, answers ARP/ICMP traffic addressed to
// itself, and forwards everything else.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/caser789/router/internal/config"
	"github.com/caser789/router/internal/packet"
	"github.com/caser789/router/internal/router"
	"github.com/caser789/router/internal/routetable"
	"github.com/caser789/router/transport"
)

func main() {
	os.Exit(run())
}

func run() int {
	fs := flag.NewFlagSet("gorouter", flag.ContinueOnError)
	cfg := config.RegisterFlags(fs)
	if err := fs.Parse(os.Args[1:]); err != nil {
		return 2
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	logger := newLogger(cfg.LogLevel)

	rtr, ifaceNames, err := buildRouter(cfg, logger)
	if err != nil {
		logger.Error("failed to build router", slog.String("error", err.Error()))
		return 1
	}

	capturer, err := transport.NewCapturer(ifaceNames, logger)
	if err != nil {
		logger.Error("failed to open capture sockets", slog.String("error", err.Error()))
		return 1
	}
	defer capturer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("gorouter starting", slog.Any("interfaces", ifaceNames), slog.Int("mtu", cfg.MTU))

	err = capturer.Run(ctx, func(iface string, frame []byte) {
		p, err := packet.Parse(frame)
		if err != nil {
			logger.Debug("dropping unparseable frame", slog.String("interface", iface), slog.String("error", err.Error()))
			return
		}
		rtr.HandlePacket(p, iface)
	})
	if err != nil && ctx.Err() == nil {
		logger.Error("capture loop exited", slog.String("error", err.Error()))
		return 1
	}

	return 0
}

// buildRouter wires a *router.Router from cfg: resolves each configured
// interface's own MAC via the transport package's InterfaceMAC
// collaborator, and loads the routing table seed file if one was given.
func buildRouter(cfg *config.Config, logger *slog.Logger) (*router.Router, []string, error) {
	myIP := make(map[string]net.IP, len(cfg.Interfaces))
	interfaceMAC := make(map[string]net.HardwareAddr, len(cfg.Interfaces))
	ifaceNames := make([]string, 0, len(cfg.Interfaces))

	for _, iface := range cfg.Interfaces {
		mac, err := transport.InterfaceMAC(iface.Name)
		if err != nil {
			return nil, nil, err
		}
		myIP[iface.Name] = iface.IP
		interfaceMAC[iface.Name] = mac
		ifaceNames = append(ifaceNames, iface.Name)
	}

	var routes []routetable.Entry
	if cfg.RoutesFile != "" {
		loaded, err := config.LoadRoutes(cfg.RoutesFile)
		if err != nil {
			return nil, nil, err
		}
		routes = loaded
	}

	rtr := router.New(router.Config{
		MyIP:         myIP,
		InterfaceMAC: interfaceMAC,
		MTU:          cfg.MTU,
		Send:         transport.Send,
		Logger:       logger,
		Routes:       routes,
	})

	return rtr, ifaceNames, nil
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
