package monitor

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/google/uuid"

	"slotwatch/internal/availability"
	"slotwatch/internal/fingerprint"
	"slotwatch/internal/notifier"
	logx "slotwatch/pkg/logx"
)

// Fetcher returns the raw calendar.
type Fetcher interface {
	Fetch(ctx context.Context) (availability.RawAvailability, error)
}

// Notifier pushes a message and reports whether it was delivered.
type Notifier interface {
	Notify(ctx context.Context, title, message string) bool
}

type Options struct {
	Schedule Schedule
	Title    string
	// Heartbeat is called after every tick (e.g. systemd watchdog).
	Heartbeat func(Outcome)
}

type Monitor struct {
	fetcher  Fetcher
	notifier Notifier
	log      logx.Logger

	schedule  Schedule
	title     string
	heartbeat func(Outcome)

	now func() time.Time
}

func New(f Fetcher, n Notifier, log logx.Logger, opts Options) *Monitor {
	if log.IsZero() {
		log = logx.Nop()
	}
	if opts.Schedule.Kind == SpecInterval && opts.Schedule.Every <= 0 {
		opts.Schedule = Interval(60 * time.Second)
	}
	if opts.Title == "" {
		opts.Title = notifier.DefaultTitle
	}
	return &Monitor{
		fetcher:   f,
		notifier:  n,
		log:       log.With(logx.String("comp", "monitor")),
		schedule:  opts.Schedule,
		title:     opts.Title,
		heartbeat: opts.Heartbeat,
		now:       time.Now,
	}
}

// Run ticks immediately, then waits per schedule, until ctx is done.
func (m *Monitor) Run(ctx context.Context) error {
	m.log.Info("monitor started", logx.String("schedule", m.schedule.String()), logx.String("schedule_source", m.schedule.Source))

	var last fingerprint.Fingerprint
	for {
		var outcome Outcome
		last, outcome = m.Tick(ctx, last)
		m.beat(outcome)
		if ctx.Err() != nil {
			m.log.Info("monitor stopped")
			return nil
		}

		now := m.now()
		wait := m.schedule.Delay(now)
		m.log.Info("sleeping", logx.Duration("wait", wait), logx.Time("next_tick", now.Add(wait)))
		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			m.log.Info("monitor stopped")
			return nil
		case <-t.C:
		}
	}
}

// beat runs the heartbeat hook. A panicking hook is logged and ignored.
func (m *Monitor) beat(o Outcome) {
	if m.heartbeat == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			m.log.Error("panic in heartbeat", logx.Any("panic", r), logx.String("stack", string(debug.Stack())))
		}
	}()
	m.heartbeat(o)
}

// Tick runs one fetch -> normalize -> dedup -> push pass and returns the
// fingerprint to remember. last is returned unchanged unless a push was
// delivered.
func (m *Monitor) Tick(ctx context.Context, last fingerprint.Fingerprint) (next fingerprint.Fingerprint, outcome Outcome) {
	log := m.log.With(logx.String("tick_id", uuid.NewString()))
	start := m.now()

	next, outcome = last, FetchFailed
	defer func() {
		if r := recover(); r != nil {
			log.Error("panic in tick", logx.Any("panic", r), logx.String("stack", string(debug.Stack())))
			next, outcome = last, FetchFailed
		}
		log.Debug("tick done", logx.String("outcome", outcome.String()), logx.Duration("took", m.now().Sub(start)))
	}()

	log.Info("checking slots")
	raw, err := m.fetcher.Fetch(ctx)
	if err != nil {
		log.Warn("fetch failed; treating as no slots", logx.Err(err))
		return last, FetchFailed
	}

	slots := availability.Normalize(raw)
	if slots.Empty() {
		log.Info("no slots available", logx.Int("dates_seen", len(raw)))
		return last, NoSlots
	}
	log.Info("found slots", logx.Int("dates", len(slots)), logx.Int("slots", slots.Count()), logx.Strs("date_list", slots.Dates()))

	fp, err := fingerprint.Of(slots)
	if err != nil {
		log.Error("fingerprint failed", logx.Err(err))
		return last, FetchFailed
	}
	if fingerprint.IsDuplicate(fp, last) {
		log.Info("already notified for these slots; skipping", logx.String("fingerprint", fp.Short()))
		return last, Duplicate
	}

	log.Info("sending push notification", logx.String("fingerprint", fp.Short()))
	if !m.notifier.Notify(ctx, m.title, notifier.FormatMessage(slots)) {
		log.Error("failed to send notification; will retry next tick", logx.String("fingerprint", fp.Short()))
		return last, DeliveryFailed
	}
	log.Info("notification sent", logx.String("fingerprint", fp.Short()))
	return fp, Notified
}
