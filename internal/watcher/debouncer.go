package watcher

import (
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/samber/lo"
)

// debouncer collapses bursts of events into one handler call per quiet
// period. Removed and renamed-away files are dropped from the batch since
// there is nothing left to analyze.
type debouncer struct {
	delay   time.Duration
	logger  *slog.Logger
	events  map[string]FileChangeEvent
	timer   *time.Timer
	mutex   sync.Mutex
	running sync.Mutex // held while the handler runs
	stopped bool
}

func newDebouncer(delay time.Duration, logger *slog.Logger) *debouncer {
	return &debouncer{
		delay:  delay,
		logger: logger,
		events: make(map[string]FileChangeEvent),
	}
}

func (d *debouncer) add(event FileChangeEvent, handler FileChangeHandler) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	if d.stopped {
		return
	}
	d.events[event.Path] = event
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() {
		d.flush(handler)
	})
}

// flush hands the pending batch to handler. Handler runs never overlap: a
// flush that fires while another is running waits for it, then takes
// whatever queued up in the meantime.
func (d *debouncer) flush(handler FileChangeHandler) {
	d.running.Lock()
	defer d.running.Unlock()

	d.mutex.Lock()
	if d.stopped || len(d.events) == 0 {
		d.mutex.Unlock()
		return
	}
	pending := d.events
	d.events = make(map[string]FileChangeEvent)
	d.mutex.Unlock()

	changed := lo.Keys(lo.OmitBy(pending, func(_ string, ev FileChangeEvent) bool {
		return ev.Operation == "REMOVE" || ev.Operation == "RENAME"
	}))
	if len(changed) == 0 {
		return
	}
	slices.Sort(changed)

	if err := handler(changed); err != nil {
		d.logger.Error("change handler failed", "files", len(changed), "error", err)
	}
}

func (d *debouncer) stop() {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.stopped = true
}
