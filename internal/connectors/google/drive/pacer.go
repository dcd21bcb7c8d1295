package drive

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"
)

// Pacer tuning defaults.
const (
	// DelayFloor is the minimum inter-request delay.
	DelayFloor = 500 * time.Millisecond

	// DelayCeiling bounds multiplicative backoff.
	DelayCeiling = 30 * time.Second

	// BackoffFactor stretches the delay on each throttle response.
	BackoffFactor = 2.0

	// EaseEvery is how many consecutive successes earn one easing step.
	EaseEvery = 5

	// JitterMax bounds the random spread added to every wait.
	JitterMax = 2 * time.Second
)

// PacerConfig overrides pacer tuning, mainly for tests.
type PacerConfig struct {
	// Floor is the minimum delay. Zero means DelayFloor.
	Floor time.Duration

	// Ceiling bounds backoff. Zero means DelayCeiling.
	Ceiling time.Duration

	// JitterMax bounds random spread. Negative disables jitter; zero means JitterMax.
	JitterMax time.Duration

	// RetryUnit scales retry waits. Zero means one second.
	RetryUnit time.Duration
}

// Pacer spaces requests with a run-scoped adaptive delay.
//
// One Pacer is shared by every request in a run: listings, downloads and
// retries all stretch and relax the same state. Throttle responses grow the
// delay multiplicatively up to the ceiling; a streak of successes eases it
// back toward the floor, one small step at a time. The consecutive-error
// count decays by one per success rather than resetting, so a run that is
// still being throttled intermittently keeps waiting longer on retries.
type Pacer struct {
	mu                sync.Mutex
	delay             time.Duration
	consecutiveErrors int
	successStreak     int
	throttleEvents    int

	floor     time.Duration
	ceiling   time.Duration
	jitterMax time.Duration
	retryUnit time.Duration
}

// NewPacer creates a pacer starting at the delay floor.
func NewPacer(cfg PacerConfig) *Pacer {
	if cfg.Floor <= 0 {
		cfg.Floor = DelayFloor
	}
	if cfg.Ceiling <= 0 {
		cfg.Ceiling = DelayCeiling
	}
	if cfg.RetryUnit <= 0 {
		cfg.RetryUnit = time.Second
	}
	switch {
	case cfg.JitterMax < 0:
		cfg.JitterMax = 0
	case cfg.JitterMax == 0:
		cfg.JitterMax = JitterMax
	}

	return &Pacer{
		delay:     cfg.Floor,
		floor:     cfg.Floor,
		ceiling:   cfg.Ceiling,
		jitterMax: cfg.JitterMax,
		retryUnit: cfg.RetryUnit,
	}
}

// Wait sleeps the current delay plus jitter before a request.
func (p *Pacer) Wait(ctx context.Context) error {
	p.mu.Lock()
	wait := p.delay + p.jitter()
	p.mu.Unlock()

	return sleep(ctx, wait)
}

// RecordThrottle registers a throttle response: the delay grows
// multiplicatively up to the ceiling and the error count rises.
func (p *Pacer) RecordThrottle() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.throttleEvents++
	p.consecutiveErrors++
	p.successStreak = 0

	p.delay = time.Duration(float64(p.delay) * BackoffFactor)
	if p.delay > p.ceiling {
		p.delay = p.ceiling
	}
}

// RecordSuccess registers a successful request. The error count decays by
// one, and every EaseEvery successes the delay eases toward the floor.
func (p *Pacer) RecordSuccess() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.consecutiveErrors > 0 {
		p.consecutiveErrors--
	}

	p.successStreak++
	if p.successStreak < EaseEvery {
		return
	}
	p.successStreak = 0

	p.delay = p.delay * 9 / 10
	if p.delay < p.floor {
		p.delay = p.floor
	}
}

// RetryWait sleeps before a retry. The wait grows with the attempt number
// and the consecutive-error count; throttle retries weigh both heavier.
func (p *Pacer) RetryWait(ctx context.Context, attempt int, throttled bool) error {
	p.mu.Lock()
	var wait time.Duration
	if throttled {
		wait = time.Duration(attempt+1)*2*p.retryUnit + time.Duration(p.consecutiveErrors)*p.retryUnit
	} else {
		wait = time.Duration(attempt+1) * p.retryUnit
	}
	wait += p.jitter()
	p.mu.Unlock()

	return sleep(ctx, wait)
}

// Delay returns the current inter-request delay.
func (p *Pacer) Delay() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.delay
}

// ConsecutiveErrors returns the current error count.
func (p *Pacer) ConsecutiveErrors() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.consecutiveErrors
}

// ThrottleEvents returns how many throttle responses this run observed.
func (p *Pacer) ThrottleEvents() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.throttleEvents
}

// jitter returns a random duration in [0, jitterMax). Caller holds the lock.
func (p *Pacer) jitter() time.Duration {
	if p.jitterMax <= 0 {
		return 0
	}
	return rand.N(p.jitterMax)
}

// sleep waits for d or until the context is cancelled.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
