package throttle

import "time"

// windowTimer returns a channel that receives once d has passed since the
// call. Non positive durations are treated as 0 so the timer fires right away
// instead of erroring.
func windowTimer(d time.Duration) <-chan time.Time {
	if d < 0 {
		d = 0
	}

	return time.NewTimer(d).C
}
