package engine

import "time"

const dispatchWindow = time.Minute

// window counts dispatches since the last one. The count resets when the last
// dispatch is older than a minute, so bursts at the boundary can slightly
// exceed the nominal rate.
type window struct {
	limit int
	count int
	last  time.Time
}

func (w *window) refresh(now time.Time) {
	if w.last.Before(now.Add(-dispatchWindow)) {
		w.count = 0
	}
}

func (w *window) allow(now time.Time) bool {
	w.refresh(now)
	return w.count < w.limit
}

func (w *window) record(now time.Time) {
	w.last = now
	w.count++
}

func (w *window) reset() {
	w.count = 0
	w.last = time.Time{}
}
