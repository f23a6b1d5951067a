// Package progress drives the decorative progress bar shown while a
// generation is pending. Nothing reads the value to decide completion.
package progress

import (
	"math"
	"sync"
	"time"

	"go.uber.org/atomic"
)

const (
	DefaultTick       = 200 * time.Millisecond
	DefaultResetDelay = 500 * time.Millisecond
	ceiling           = 95.0
	minIncrement      = 0.5
)

// Animation eases towards 95 until Finish forces 100
type Animation struct {
	tick       time.Duration
	resetDelay time.Duration
	value      *atomic.Float64

	// emitMu orders each state change with its notification so
	// subscribers see values in the order they were set.
	emitMu sync.Mutex

	mu          sync.Mutex
	stop        chan struct{}
	resetTimer  *time.Timer
	subscribers []func(float64)
}

func NewAnimation() *Animation {
	return NewAnimationWithTiming(DefaultTick, DefaultResetDelay)
}

func NewAnimationWithTiming(tick, resetDelay time.Duration) *Animation {
	return &Animation{
		tick:       tick,
		resetDelay: resetDelay,
		value:      atomic.NewFloat64(0),
	}
}

// Next returns the value following p
func Next(p float64) float64 {
	inc := math.Max(minIncrement, (ceiling-p)/20)
	return math.Min(ceiling, p+inc)
}

// Subscribe registers fn to receive every value change
func (a *Animation) Subscribe(fn func(float64)) {
	a.mu.Lock()
	a.subscribers = append(a.subscribers, fn)
	a.mu.Unlock()
}

func (a *Animation) Value() float64 {
	return a.value.Load()
}

// Start resets to 0 and begins ticking. Restarting a running animation
// starts it over.
func (a *Animation) Start() {
	a.emitMu.Lock()
	defer a.emitMu.Unlock()

	a.mu.Lock()
	if a.stop != nil {
		close(a.stop)
	}
	if a.resetTimer != nil {
		a.resetTimer.Stop()
		a.resetTimer = nil
	}
	stop := make(chan struct{})
	a.stop = stop
	a.value.Store(0)
	a.mu.Unlock()

	a.notify(0)
	go a.run(stop)
}

func (a *Animation) run(stop chan struct{}) {
	ticker := time.NewTicker(a.tick)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if !a.tickOnce(stop) {
				return
			}
		}
	}
}

// Finish jumps to 100, then returns to 0 after the reset delay
func (a *Animation) Finish() {
	a.emitMu.Lock()
	defer a.emitMu.Unlock()

	a.mu.Lock()
	if a.stop != nil {
		close(a.stop)
		a.stop = nil
	}
	if a.resetTimer != nil {
		a.resetTimer.Stop()
	}
	a.value.Store(100)
	a.resetTimer = time.AfterFunc(a.resetDelay, func() {
		a.emitMu.Lock()
		defer a.emitMu.Unlock()

		a.mu.Lock()
		running := a.stop != nil
		a.resetTimer = nil
		if !running {
			a.value.Store(0)
		}
		a.mu.Unlock()
		if !running {
			a.notify(0)
		}
	})
	a.mu.Unlock()
	a.notify(100)
}

// tickOnce advances one step; false means stop no longer owns the animation
func (a *Animation) tickOnce(stop chan struct{}) bool {
	a.emitMu.Lock()
	defer a.emitMu.Unlock()

	a.mu.Lock()
	if a.stop != stop {
		a.mu.Unlock()
		return false
	}
	v := Next(a.value.Load())
	a.value.Store(v)
	a.mu.Unlock()

	a.notify(v)
	return true
}

func (a *Animation) notify(v float64) {
	a.mu.Lock()
	subs := make([]func(float64), len(a.subscribers))
	copy(subs, a.subscribers)
	a.mu.Unlock()
	for _, fn := range subs {
		fn(v)
	}
}
