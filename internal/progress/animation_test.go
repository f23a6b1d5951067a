package progress

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNext(t *testing.T) {
	assert.InDelta(t, 4.75, Next(0), 1e-9)
	assert.Equal(t, 95.0, Next(94.8))
	assert.InDelta(t, 90.5, Next(90), 1e-9)
	assert.Equal(t, 95.0, Next(95))

	p := 0.0
	for i := 0; i < 1000; i++ {
		next := Next(p)
		assert.GreaterOrEqual(t, next, p)
		assert.LessOrEqual(t, next, 95.0)
		p = next
	}
	assert.Equal(t, 95.0, p)
}

func TestAnimation_StartFinish(t *testing.T) {
	a := NewAnimationWithTiming(time.Millisecond, 20*time.Millisecond)

	var mu sync.Mutex
	var seen []float64
	a.Subscribe(func(v float64) {
		mu.Lock()
		seen = append(seen, v)
		mu.Unlock()
	})

	a.Start()
	assert.Eventually(t, func() bool { return a.Value() > 50 }, time.Second, time.Millisecond)
	assert.Less(t, a.Value(), 100.0)

	a.Finish()
	assert.Equal(t, 100.0, a.Value())
	assert.Eventually(t, func() bool { return a.Value() == 0 }, time.Second, time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 0.0, seen[0])
	assert.Contains(t, seen, 100.0)
	for _, v := range seen {
		assert.LessOrEqual(t, v, 100.0)
	}
}

func TestAnimation_RestartCancelsReset(t *testing.T) {
	a := NewAnimationWithTiming(time.Hour, 10*time.Millisecond)
	a.Start()
	a.Finish()
	a.Start()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, 0.0, a.Value())

	a.Finish()
	assert.Equal(t, 100.0, a.Value())
}

func TestAnimation_NoTickAfterFinish(t *testing.T) {
	a := NewAnimationWithTiming(50*time.Microsecond, time.Hour)

	var mu sync.Mutex
	var last float64
	a.Subscribe(func(v float64) {
		mu.Lock()
		last = v
		mu.Unlock()
	})

	for i := 0; i < 200; i++ {
		a.Start()
		time.Sleep(time.Duration(i%5) * 100 * time.Microsecond)
		a.Finish()

		// give a straggling tick time to land
		time.Sleep(200 * time.Microsecond)
		mu.Lock()
		got := last
		mu.Unlock()
		if !assert.Equal(t, 100.0, got, "iteration %d", i) {
			return
		}
	}
}
