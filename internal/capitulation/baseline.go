package capitulation

import "sync"

// Baseline holds the process-lifetime rolling state the scorer compares
// against: the first observed aggregate volume and the dominance reading of
// the previous computation. Deliberately not durable; a restart resets both.
//
// The original design read and wrote this state without exclusion; here a
// mutex makes concurrent computations safe. Interleaved computations still
// commit in whatever order they finish (last write wins on dominance).
type Baseline struct {
	mu                sync.Mutex
	historicalVolume  float64
	previousDominance float64
}

// NewBaseline returns an empty baseline: no volume observed, no prior
// dominance reading.
func NewBaseline() *Baseline { return &Baseline{} }

// Snapshot returns the values one computation should score against.
// A zero historical volume means no baseline yet; a zero previous dominance
// means no prior reading.
func (b *Baseline) Snapshot() (historicalVolume, previousDominance float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.historicalVolume, b.previousDominance
}

// Commit records the observations of a finished computation. The volume
// baseline is seeded once, with the first observed total; dominance is
// refreshed on every commit.
func (b *Baseline) Commit(totalVolume, dominance float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.historicalVolume == 0 {
		b.historicalVolume = totalVolume
	}
	b.previousDominance = dominance
}
