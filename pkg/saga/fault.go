package saga

import (
	"math/rand/v2"
	"sync"
)

// FaultInjector decides whether the current forward action fails on purpose.
type FaultInjector interface {
	ShouldFail() bool
}

// FaultStage is the point in Execute at which a fault is drawn.
type FaultStage int

const (
	// FaultNone disables injection.
	FaultNone FaultStage = iota
	// FaultBeforeReplay draws before the duplicate check, so a retry of an
	// already applied order can still fail.
	FaultBeforeReplay
	// FaultBeforeMutation draws after the duplicate and existence checks,
	// immediately before the record is built.
	FaultBeforeMutation
)

func (s FaultStage) String() string {
	switch s {
	case FaultBeforeReplay:
		return "before_replay"
	case FaultBeforeMutation:
		return "before_mutation"
	default:
		return "none"
	}
}

// RandomFaults fails a uniform fraction of calls.
type RandomFaults struct {
	rate float64
}

// NewRandomFaults returns an injector failing with probability rate, clamped to [0, 1].
func NewRandomFaults(rate float64) *RandomFaults {
	return &RandomFaults{rate: min(max(rate, 0), 1)}
}

// Rate returns the effective failure probability.
func (f *RandomFaults) Rate() float64 {
	return f.rate
}

func (f *RandomFaults) ShouldFail() bool {
	if f.rate <= 0 {
		return false
	}
	return rand.Float64() < f.rate // #nosec G404 -- simulated failures, not security sensitive
}

// FaultsFor returns NoFaults for a zero rate and RandomFaults otherwise.
func FaultsFor(rate float64) FaultInjector {
	if rate <= 0 {
		return NoFaults{}
	}
	return NewRandomFaults(rate)
}

// NoFaults never fails.
type NoFaults struct{}

func (NoFaults) ShouldFail() bool { return false }

// AlwaysFail fails every draw.
type AlwaysFail struct{}

func (AlwaysFail) ShouldFail() bool { return true }

// FaultSequence replays a fixed list of decisions and never fails once the
// list is exhausted.
type FaultSequence struct {
	mu    sync.Mutex
	seq   []bool
	draws int
}

// NewFaultSequence creates a deterministic injector.
func NewFaultSequence(seq ...bool) *FaultSequence {
	return &FaultSequence{seq: seq}
}

func (f *FaultSequence) ShouldFail() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.draws
	f.draws++
	if i >= len(f.seq) {
		return false
	}
	return f.seq[i]
}

// Draws returns how many decisions were requested.
func (f *FaultSequence) Draws() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.draws
}
