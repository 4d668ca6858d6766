package app

import (
	"context"
	"fmt"
	"time"

	"slotwatch/internal/availability"
	"slotwatch/internal/config"
	"slotwatch/internal/monitor"
	"slotwatch/internal/notifier"
	"slotwatch/internal/observability/pprof"
	"slotwatch/internal/runtime/supervisor"
	logx "slotwatch/pkg/logx"
)

const stopTimeout = 20 * time.Second

// App wires config, logging, the fetcher, the notifier and the polling loop.
type App struct {
	cfgm *config.Manager
	logs *logx.Service
	log  logx.Logger

	monitor *monitor.Monitor
	sd      *systemdNotifier
	status  *tickStatus
	debug   *pprof.Service
}

// New loads the configuration and builds every component. A missing
// credential fails here with a *config.ConfigError, before anything runs.
func New(cfgPath string) (*App, error) {
	cfgm := config.NewManager(cfgPath)
	cfg, err := cfgm.Load()
	if err != nil {
		return nil, err
	}
	rt, err := cfg.Resolve()
	if err != nil {
		return nil, err
	}

	logSvc, log := logx.New(rt.Logging)
	cfgm.SetLogger(log.With(logx.String("comp", "config")))

	sender, err := notifier.NewSender(rt.Push)
	if err != nil {
		_ = logSvc.Close()
		return nil, fmt.Errorf("push sender: %w", err)
	}
	push := notifier.New(sender, rt.Push.MinInterval, rt.Push.Timeout, log)

	fetcher := availability.NewFetcher(availability.Options{Timeout: rt.FetchTimeout})

	sd := newSystemdNotifier(log.With(logx.String("comp", "systemd")))
	status := newTickStatus(time.Now())
	mon := monitor.New(fetcher, push, log, monitor.Options{
		Schedule: rt.Schedule,
		Title:    rt.Title,
		Heartbeat: func(o monitor.Outcome) {
			status.record(o, time.Now())
			sd.Heartbeat(o)
		},
	})
	debug := pprof.New(rt.Debug, status.snapshot, log.With(logx.String("comp", "pprof")))

	log.With(logx.String("comp", "app")).Info("configured",
		logx.String("provider", sender.Name()),
		logx.String("schedule", rt.Schedule.String()),
		logx.Duration("fetch_timeout", rt.FetchTimeout),
		logx.Duration("push_min_interval", rt.Push.MinInterval),
		logx.String("form_id", availability.FormID),
	)

	return &App{
		cfgm:    cfgm,
		logs:    logSvc,
		log:     log.With(logx.String("comp", "app")),
		monitor: mon,
		sd:      sd,
		status:  status,
		debug:   debug,
	}, nil
}

// Run blocks until ctx is cancelled, then stops every goroutine.
func (a *App) Run(ctx context.Context) error {
	sup := supervisor.NewSupervisor(ctx,
		supervisor.WithLogger(a.log.With(logx.String("comp", "supervisor"))),
		supervisor.WithCancelOnError(true),
	)

	updates := a.cfgm.Subscribe(1)
	sup.Go("config-watch", a.cfgm.Watch)
	sup.Go("config-apply", func(ctx context.Context) error {
		a.applyConfigUpdates(ctx, updates)
		return nil
	})
	sup.Go("monitor", a.monitor.Run)
	sup.Go("pprof", func(ctx context.Context) error {
		// the debug server must never take the monitor down
		if err := a.debug.Run(ctx); err != nil {
			a.log.Warn("pprof server stopped", logx.Err(err))
		}
		return nil
	})

	a.sd.Ready()
	<-sup.Context().Done()
	a.sd.Stopping()
	a.log.Info("shutting down")

	wctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	err := sup.Wait(wctx)
	a.cfgm.Unsubscribe(updates)
	_ = a.logs.Close()
	return err
}

// applyConfigUpdates applies logging changes live. Other sections are read
// once at startup, so a change there is only reported.
func (a *App) applyConfigUpdates(ctx context.Context, updates <-chan *config.Config) {
	prev := a.cfgm.Get()
	for {
		select {
		case <-ctx.Done():
			return
		case cfg, ok := <-updates:
			if !ok {
				return
			}
			changed, attrs := config.SummarizeChange(prev, cfg)
			prev = cfg
			if len(changed) == 0 {
				continue
			}
			for _, s := range changed {
				if s == "logging" {
					a.logs.Apply(cfg.Logging.LogxConfig())
				}
			}
			fields := append([]logx.Field{logx.Strs("sections", changed), logx.Bool("restart_required", config.NeedsRestart(changed))}, attrs...)
			a.log.Info("config change applied", fields...)
		}
	}
}
