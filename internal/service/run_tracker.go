package service

import "sync"

// RunTracker keeps the most recent run summary for the status endpoint.
type RunTracker struct {
	mu   sync.RWMutex
	last *RunSummary
}

func (t *RunTracker) Record(s RunSummary) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.last = &s
}

func (t *RunTracker) LastRun() (RunSummary, bool) {
	if t == nil {
		return RunSummary{}, false
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.last == nil {
		return RunSummary{}, false
	}
	return *t.last, true
}
