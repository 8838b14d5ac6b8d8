package convert

import (
	"fmt"
	"log/slog"
	"time"
)

// progress logs the share of variables copied.
type progress struct {
	logger  *slog.Logger
	enabled bool
	total   int
	every   int
	start   time.Time
}

func newProgress(logger *slog.Logger, total int, enabled bool) *progress {
	every := 1
	if total >= 20 {
		every = total / 10
	}
	return &progress{logger: logger, enabled: enabled, total: total, every: every, start: time.Now()}
}

// step is called before the n-th variable is copied.
func (p *progress) step(n int) {
	if !p.enabled || n == 0 || n%p.every != 0 {
		return
	}
	percent := fmt.Sprintf("%d%%", n*100/p.total)
	p.logger.Info("progress", "copied", percent, "in", time.Since(p.start).Round(time.Second))
}

// done logs the elapsed time of the whole run.
func (p *progress) done(start time.Time) {
	if !p.enabled {
		return
	}
	p.logger.Info("Finished", "in", time.Since(start).Round(10*time.Millisecond))
}
