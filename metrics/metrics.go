package metrics

import "time"

// Recorder knows how to measure different kind of metrics.
type Recorder interface {
	// WithID will set the ID name to the recorde and every metric
	// measured with the obtained recorder will be identified with
	// the name.
	WithID(id string) Recorder
	// ObserveCommandExecution will measure the exeuction of the runner chain.
	ObserveCommandExecution(start time.Time, success bool)
	// ObserveThrottleAdmissionWait will measure the time a call waited on the
	// throttle gates before being admitted.
	ObserveThrottleAdmissionWait(start time.Time)
	// IncThrottleQueued increments the number of calls that had to wait on a gate.
	IncThrottleQueued(gate string)
	// IncThrottleReleased increments the number of slots released on a gate.
	IncThrottleReleased(gate string)
	// SetThrottleSlotsInUse sets the number of slots currently held on a gate.
	SetThrottleSlotsInUse(gate string, quantity int)
}

// Dummy is a dummy recorder.
var Dummy Recorder = &dummy{}

type dummy struct{}

func (d dummy) WithID(id string) Recorder { return d }
func (dummy) ObserveCommandExecution(start time.Time, success bool) {}
func (dummy) ObserveThrottleAdmissionWait(start time.Time) {}
func (dummy) IncThrottleQueued(gate string) {}
func (dummy) IncThrottleReleased(gate string) {}
func (dummy) SetThrottleSlotsInUse(gate string, quantity int) {}
