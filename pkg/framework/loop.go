package framework

import (
	"context"
	"time"

	"github.com/golang/glog"
)

// DefaultLoopInterval is the polling interval of a Loop.
const DefaultLoopInterval = 100 * time.Millisecond

// Loop polls controllers periodically, or right away when triggered.
// Runnables added to the loop run alongside and stop with it.
type Loop struct {
	Interval time.Duration

	controllers []Controller
	runners     []Runnable
	iteration   uint64
	wakeUpCh    chan struct{}
}

type loopIteration struct {
	*Loop
	ctx  context.Context
	time time.Time
	seq  uint64
}

// NewLoop creates a Loop.
func NewLoop() *Loop {
	return &Loop{
		Interval: DefaultLoopInterval,
		wakeUpCh: make(chan struct{}, 1),
	}
}

// AddController registers controllers, polled in the order added.
func (l *Loop) AddController(ctls ...Controller) *Loop {
	l.controllers = append(l.controllers, ctls...)
	for _, ctl := range ctls {
		if runner, ok := ctl.(Runnable); ok {
			l.runners = append(l.runners, runner)
		}
	}
	return l
}

// AddRunnable adds Runnable implementions.
func (l *Loop) AddRunnable(runnables ...Runnable) *Loop {
	l.runners = append(l.runners, runnables...)
	return l
}

// TriggerNext wakes up the loop for an iteration. It never blocks.
func (l *Loop) TriggerNext() {
	select {
	case l.wakeUpCh <- struct{}{}:
	default:
	}
}

// Run implements Runnable.
// It returns when ctx is done or any of the runnables fails.
func (l *Loop) Run(ctx context.Context) error {
	runner := NewRunnerWith(ctx)
	runner.FailFast = true
	runner.Go(l.runners...)
	ctx = runner.Context()

	interval := l.Interval
	if interval == 0 {
		interval = DefaultLoopInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			runner.Stop()
			if err := runner.Wait(); err != nil {
				return err
			}
			return ctx.Err()
		case <-ticker.C:
			l.runIteration(ctx)
		case <-l.wakeUpCh:
			l.runIteration(ctx)
		}
	}
}

func (l *Loop) runIteration(ctx context.Context) {
	l.iteration++
	iter := &loopIteration{Loop: l, ctx: ctx, time: time.Now(), seq: l.iteration}
	for _, ctl := range l.controllers {
		if err := ctl.Control(iter); err != nil {
			glog.Warningf("loop iteration %d: %v", iter.seq, err)
		}
	}
}

func (t *loopIteration) Context() context.Context {
	return t.ctx
}

func (t *loopIteration) Time() time.Time {
	return t.time
}

func (t *loopIteration) Iteration() uint64 {
	return t.seq
}
