package metrics

import "time"

// Window accumulates epoch timings after a warm-up period.
type Window struct {
	Warmup int
	Edges  int

	epochs   int
	total    time.Duration
	lastLoss float64
}

// Record adds an epoch measurement. Epochs with index below Warmup are not
// timed; Record reports whether the epoch counted.
func (w *Window) Record(epoch int, d time.Duration, loss float64) bool {
	w.lastLoss = loss
	if epoch < w.Warmup {
		return false
	}
	w.epochs++
	w.total += d
	return true
}

// Snapshot returns the aggregate over every timed epoch so far.
func (w *Window) Snapshot() Snapshot {
	snap := Snapshot{LastLoss: w.lastLoss, Epochs: w.epochs}
	if w.epochs > 0 {
		snap.MeanEpoch = w.total / time.Duration(w.epochs)
	}
	if secs := snap.MeanEpoch.Seconds(); secs > 0 {
		snap.KTEPS = float64(w.Edges) / secs / 1000
	}
	return snap
}

// Snapshot represents loggable metrics.
type Snapshot struct {
	Epochs    int
	MeanEpoch time.Duration
	// KTEPS is thousands of traversed edges per second.
	KTEPS    float64
	LastLoss float64
}
