package app

import (
	"strconv"
	"sync/atomic"

	"github.com/coreos/go-systemd/v22/daemon"

	"slotwatch/internal/monitor"
	logx "slotwatch/pkg/logx"
)

// systemdNotifier speaks sd_notify when NOTIFY_SOCKET is set and is a no-op
// otherwise. With WatchdogSec= set, every finished tick pings the watchdog,
// so WatchdogSec must exceed the poll interval plus both request timeouts.
type systemdNotifier struct {
	log      logx.Logger
	watchdog bool
	notify   func(state string) (bool, error)
	ticks    atomic.Uint64
}

func newSystemdNotifier(log logx.Logger) *systemdNotifier {
	s := &systemdNotifier{log: log, notify: func(state string) (bool, error) {
		return daemon.SdNotify(false, state)
	}}
	if d, err := daemon.SdWatchdogEnabled(false); err == nil && d > 0 {
		s.watchdog = true
		log.Info("systemd watchdog enabled", logx.Duration("interval", d))
	}
	return s
}

func (s *systemdNotifier) send(state string) {
	sent, err := s.notify(state)
	if err != nil {
		s.log.Warn("sd_notify failed", logx.String("state", state), logx.Err(err))
		return
	}
	if sent {
		s.log.Debug("sd_notify", logx.String("state", state))
	}
}

func (s *systemdNotifier) Ready()    { s.send(daemon.SdNotifyReady) }
func (s *systemdNotifier) Stopping() { s.send(daemon.SdNotifyStopping) }

// Heartbeat is the monitor's per-tick hook.
func (s *systemdNotifier) Heartbeat(o monitor.Outcome) {
	n := s.ticks.Add(1)
	s.send("STATUS=tick " + strconv.FormatUint(n, 10) + ": " + o.String())
	if s.watchdog {
		s.send(daemon.SdNotifyWatchdog)
	}
}
