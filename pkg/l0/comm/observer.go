package comm

import "github.com/robotalks/uartframe/pkg/l0/frame"

// Observer is notified of link activity, e.g. for metrics.
type Observer interface {
	FrameReceived(*frame.Frame)
	FrameDropped(error)
	FrameSent(*frame.Frame)
}

// NopObserver ignores everything.
type NopObserver struct{}

// FrameReceived implements Observer.
func (NopObserver) FrameReceived(*frame.Frame) {}

// FrameDropped implements Observer.
func (NopObserver) FrameDropped(error) {}

// FrameSent implements Observer.
func (NopObserver) FrameSent(*frame.Frame) {}

// ObserverOf returns o, or NopObserver if o is nil.
func ObserverOf(o Observer) Observer {
	if o == nil {
		return NopObserver{}
	}
	return o
}
