package monitor

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// SpecKind describes the normalized kind of a schedule string.
type SpecKind int

const (
	SpecInterval SpecKind = iota
	SpecCron
)

// Schedule decides how long the loop waits after a tick.
//
// Supported forms:
//   - Interval duration: "60s", "2m30s"
//   - Interval HH:MM: "00:05" (5 minutes)
//   - Cron: "*/2 * * * *", "@hourly", "@every 90s"
//
// Optional prefixes:
//   - "cron:" forces cron parsing
//   - "interval:" or "every:" forces interval parsing
//
// An interval is measured from the end of a tick, so ticks never overlap.
// A cron schedule fires at the next matching time after the tick ends.
type Schedule struct {
	Kind   SpecKind
	Every  time.Duration
	Cron   cron.Schedule
	Source string // "duration" | "hhmm" | "cron"
}

var (
	reHHMM     = regexp.MustCompile(`^\s*(\d{1,3}):(\d{2})\s*$`)
	cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
)

// Interval returns a fixed interval schedule.
func Interval(d time.Duration) Schedule {
	return Schedule{Kind: SpecInterval, Every: d, Source: "duration"}
}

// ParseSchedule parses a schedule string into a cron schedule or an interval.
func ParseSchedule(raw string) (Schedule, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Schedule{}, fmt.Errorf("schedule required")
	}

	low := strings.ToLower(s)
	switch {
	case strings.HasPrefix(low, "cron:"):
		return parseCron(strings.TrimSpace(s[len("cron:"):]))
	case strings.HasPrefix(low, "interval:"):
		return parseInterval(s[len("interval:"):])
	case strings.HasPrefix(low, "every:"):
		return parseInterval(s[len("every:"):])
	}

	// any whitespace or leading '@' => cron
	if strings.ContainsAny(s, " \t\n\r") || strings.HasPrefix(s, "@") {
		return parseCron(s)
	}

	sc, err := parseInterval(s)
	if err != nil {
		return Schedule{}, fmt.Errorf(
			"invalid schedule %q (use a duration like '60s', HH:MM like '00:05', or cron like '*/2 * * * *')",
			raw,
		)
	}
	return sc, nil
}

func parseCron(expr string) (Schedule, error) {
	if expr == "" {
		return Schedule{}, fmt.Errorf("cron schedule required")
	}
	sched, err := cronParser.Parse(expr)
	if err != nil {
		return Schedule{}, fmt.Errorf("invalid cron %q: %w", expr, err)
	}
	return Schedule{Kind: SpecCron, Cron: sched, Source: "cron"}, nil
}

func parseInterval(v string) (Schedule, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return Schedule{}, fmt.Errorf("interval required")
	}
	if m := reHHMM.FindStringSubmatch(v); len(m) == 3 {
		hh, _ := strconv.Atoi(m[1])
		mm, _ := strconv.Atoi(m[2])
		if mm > 59 {
			return Schedule{}, fmt.Errorf("invalid minutes in %q", v)
		}
		d := time.Duration(hh)*time.Hour + time.Duration(mm)*time.Minute
		if d <= 0 {
			return Schedule{}, fmt.Errorf("interval must be > 0")
		}
		return Schedule{Kind: SpecInterval, Every: d, Source: "hhmm"}, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return Schedule{}, fmt.Errorf("invalid interval %q: %w", v, err)
	}
	if d <= 0 {
		return Schedule{}, fmt.Errorf("interval must be > 0")
	}
	return Interval(d), nil
}

// Delay returns how long to wait after a tick that ended at now.
func (s Schedule) Delay(now time.Time) time.Duration {
	if s.Kind == SpecCron && s.Cron != nil {
		d := s.Cron.Next(now).Sub(now)
		if d < 0 {
			return 0
		}
		return d
	}
	return s.Every
}

func (s Schedule) String() string {
	if s.Kind == SpecCron {
		return "cron"
	}
	return s.Every.String()
}
