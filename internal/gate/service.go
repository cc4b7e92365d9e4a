package gate

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"time"

	"github.com/Bibi40k/swe-agent-setup/internal/prompt"
	"github.com/Bibi40k/swe-agent-setup/internal/ui"
	"github.com/Bibi40k/swe-agent-setup/internal/utils"
	"github.com/Bibi40k/swe-agent-setup/internal/wizard"
)

// DialFunc opens a test connection to host:port.
type DialFunc func(ctx context.Context, host string, port int, timeout time.Duration) error

// ServiceGate asks the operator to confirm the companion server is running.
// Without Probe the acknowledgement is trusted as is.
type ServiceGate struct {
	Name         string
	Host         string
	Port         int
	Probe        bool
	ProbeTimeout time.Duration
	Prompter     prompt.Prompter
	Logger       *slog.Logger
	// Dial defaults to utils.DialPort.
	Dial DialFunc
	// MaxAttempts caps probe retries; 0 means retry forever.
	MaxAttempts int
}

func (g *ServiceGate) address() string {
	return net.JoinHostPort(g.Host, strconv.Itoa(g.Port))
}

// Await blocks on one acknowledgement, then optionally probes the port and
// asks again while nothing is listening.
func (g *ServiceGate) Await(ctx context.Context) error {
	logger := g.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	dial := g.Dial
	if dial == nil {
		dial = utils.DialPort
	}

	_, err := wizard.Until(ctx, wizard.Retry[string]{
		Ask: func(_ context.Context, _ int) (string, error) {
			logger.Info(fmt.Sprintf("Start the %s so it listens on port %d", g.Name, g.Port))
			return g.address(), g.Prompter.WaitKey("Press any key once it is running...")
		},
		Check: func(addr string) error {
			if !g.Probe {
				return nil
			}
			if err := dial(ctx, g.Host, g.Port, g.ProbeTimeout); err != nil {
				return fmt.Errorf("nothing is listening on %s", addr)
			}
			return nil
		},
		OnReject: func(_ int, err error) {
			logger.Warn(err.Error())
		},
		MaxAttempts: g.MaxAttempts,
	})
	if err != nil {
		return fmt.Errorf("wait for %s: %w", g.Name, err)
	}
	if g.Probe {
		ui.Success(logger, fmt.Sprintf("%s is reachable", g.Name), "addr", g.address())
	} else {
		ui.Success(logger, fmt.Sprintf("%s confirmed", g.Name), "port", g.Port)
	}
	return nil
}
