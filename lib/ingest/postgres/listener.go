package postgres

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/lib/pq"
)

// Listen subscribes to notifications on channel. The listener reconnects
// on its own; a nil notification on its channel signals a reconnect.
func Listen(uri, channel string, logger *slog.Logger) (*pq.Listener, error) {
	reportProblem := func(ev pq.ListenerEventType, err error) {
		if err != nil {
			logger.Warn("listener problem", "channel", channel, "event", int(ev), "error", err)
		}
	}
	listener := pq.NewListener(uri, 10*time.Second, time.Minute, reportProblem)
	if err := listener.Listen(channel); err != nil {
		_ = listener.Close()
		return nil, fmt.Errorf("listen on %s: %w", channel, err)
	}
	return listener, nil
}
