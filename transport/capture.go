package transport

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/caser789/raw"
)

// bufferSize is large enough to hold any frame this router will ever see;
// jumbo frames beyond the configured MTU are not expected on these links.
const bufferSize = 65535

// Handler processes one captured frame. Capturer.Run invokes Handler in
// its own goroutine for every frame it reads, so a Handler implementation
// does not need to do that itself.
type Handler func(iface string, frame []byte)

// Capturer holds one long-lived raw socket per attached interface.
type Capturer struct {
	log   *slog.Logger
	conns map[string]*raw.Conn
}

// NewCapturer opens a capture socket on every named interface.
func NewCapturer(ifaces []string, logger *slog.Logger) (*Capturer, error) {
	if logger == nil {
		logger = slog.Default()
	}

	conns := make(map[string]*raw.Conn, len(ifaces))
	for _, name := range ifaces {
		ifi, err := net.InterfaceByName(name)
		if err != nil {
			closeAll(conns)
			return nil, fmt.Errorf("transport: capture on %s: %w", name, err)
		}

		conn, err := raw.ListenPacket(ifi, syscall.ETH_P_ALL)
		if err != nil {
			closeAll(conns)
			return nil, fmt.Errorf("transport: capture on %s: %w", name, err)
		}
		conns[name] = conn
	}

	return &Capturer{log: logger, conns: conns}, nil
}

func closeAll(conns map[string]*raw.Conn) {
	for _, c := range conns {
		c.Close()
	}
}

// Close shuts down every capture socket, unblocking any in-flight reads.
func (c *Capturer) Close() error {
	var err error
	for name, conn := range c.conns {
		if cerr := conn.Close(); cerr != nil {
			err = fmt.Errorf("transport: close %s: %w", name, cerr)
		}
	}
	return err
}

// Run reads frames from every interface concurrently and dispatches each
// to handle in its own goroutine. Each interface's read loop stops when
// ctx is canceled (checked between reads), when its socket is closed, or
// on a read error, which also cancels the other loops. Run returns once
// every read loop has stopped and every handler goroutine it spawned has
// finished.
func (c *Capturer) Run(ctx context.Context, handle Handler) error {
	g, ctx := errgroup.WithContext(ctx)
	var wg sync.WaitGroup

	for name, conn := range c.conns {
		name, conn := name, conn
		g.Go(func() error {
			buf := make([]byte, bufferSize)
			for {
				if ctx.Err() != nil {
					return ctx.Err()
				}

				n, _, err := conn.ReadFrom(buf)
				if err != nil {
					if errors.Is(err, net.ErrClosed) {
						return nil
					}
					c.log.Warn("capture read failed", slog.String("interface", name), slog.String("error", err.Error()))
					return err
				}

				frame := make([]byte, n)
				copy(frame, buf[:n])

				wg.Add(1)
				go func() {
					defer wg.Done()
					handle(name, frame)
				}()
			}
		})
	}

	err := g.Wait()
	wg.Wait()
	return err
}
