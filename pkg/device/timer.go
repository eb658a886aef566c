package device

import (
	"sync"

	"github.com/golang/glog"
)

const (
	// DefaultTimerFreq is the timer input clock in Hz.
	DefaultTimerFreq uint32 = 84000000
	// DefaultPeriod gives a 1kHz signal with DefaultTimerFreq.
	DefaultPeriod uint32 = 84000
)

// Timer is the PWM timer driver.
// Period is the number of timer ticks per PWM cycle. Duty values are
// compare values in ticks, one per cycle, replayed in a loop while running.
type Timer interface {
	SetPeriod(ticks uint32)
	Period() uint32
	StartPWM(duty []uint32)
	StopPWM()
}

// SimTimer is a Timer without hardware.
type SimTimer struct {
	lock    sync.Mutex
	period  uint32
	duty    []uint32
	running bool
	starts  int
}

// NewSimTimer creates a SimTimer with the given period.
func NewSimTimer(period uint32) *SimTimer {
	return &SimTimer{period: period}
}

// SetPeriod implements Timer.
func (t *SimTimer) SetPeriod(ticks uint32) {
	t.lock.Lock()
	defer t.lock.Unlock()
	t.period = ticks
	glog.V(1).Infof("timer period %d ticks", ticks)
}

// Period implements Timer.
func (t *SimTimer) Period() uint32 {
	t.lock.Lock()
	defer t.lock.Unlock()
	return t.period
}

// StartPWM implements Timer.
func (t *SimTimer) StartPWM(duty []uint32) {
	t.lock.Lock()
	defer t.lock.Unlock()
	t.duty = append(t.duty[:0], duty...)
	t.running = true
	t.starts++
	glog.V(1).Infof("pwm start period=%d duty=%v", t.period, t.duty)
}

// StopPWM implements Timer.
func (t *SimTimer) StopPWM() {
	t.lock.Lock()
	defer t.lock.Unlock()
	t.running = false
	glog.V(1).Info("pwm stop")
}

// Output returns the compare values being generated, nil when stopped.
func (t *SimTimer) Output() []uint32 {
	t.lock.Lock()
	defer t.lock.Unlock()
	if !t.running {
		return nil
	}
	return append([]uint32(nil), t.duty...)
}

// Starts returns how many times generation was started.
func (t *SimTimer) Starts() int {
	t.lock.Lock()
	defer t.lock.Unlock()
	return t.starts
}
