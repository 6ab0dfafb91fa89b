/*
Package throttle limits the admission of calls to an operation using two
independent gates:

- The concurrency gate: no more than ConcurrentLimit calls in flight at the
same time. It's optional, when disabled the in flight calls are only counted.

- The window gate: no more than WindowLimit calls admitted inside a rolling
window of WindowDuration. A window slot is held since admission until the
window duration has passed and the call has finished, whatever happens later,
so a slow call can't be used to get more throughput than the configured.

A call checks the window gate first and then the concurrency gate, if a gate
doesn't have free slots the call waits on that gate queue. Every gate has its
own FIFO queue, the oldest waiter is the next one that gets a freed slot.

The throttle doesn't retry, wrap or hide the errors of the operation, the caller
receives the result as soon as the call finishes, the release of the slots
happens in background.

	get, err := throttle.Throttlify(fetch, throttle.Config{
		WindowLimit:    2,
		WindowDuration: time.Second,
	})
	if err != nil {
		return err
	}
	body, err := get(ctx, "https://example.com")
*/
package throttle
