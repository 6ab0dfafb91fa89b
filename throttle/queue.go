package throttle

import (
	"github.com/throttlify/throttlify/errors"
)

// waitQueue is a FIFO of suspended waiters, every waiter is a channel
// that will be closed exactly once by the one that frees the slot.
type waitQueue struct {
	waiters []chan struct{}
}

func newWaitQueue() *waitQueue {
	return &waitQueue{}
}

// Len returns the number of waiters blocked on the queue.
func (q *waitQueue) Len() int {
	return len(q.waiters)
}

// suspend queues a new waiter and returns the channel that will be closed
// when the waiter is signaled.
func suspend(q *waitQueue) (<-chan struct{}, error) {
	if q == nil {
		return nil, errors.ErrInvalidQueue
	}

	wakeUp := make(chan struct{})
	q.waiters = enqueueAtEndPolicy(wakeUp, q.waiters)

	return wakeUp, nil
}

// signalNext wakes up the oldest waiter of the queue. Returns false if
// there wasn't anyone waiting. Signaling a nil queue is a programming
// error and panics.
func signalNext(q *waitQueue) bool {
	if q == nil {
		panic("throttle: signal on a nil wait queue")
	}

	var wakeUp chan struct{}
	wakeUp, q.waiters = fifoDequeuePolicy(q.waiters)
	if wakeUp == nil {
		return false
	}

	close(wakeUp)
	return true
}

// enqueueAtEndPolicy enqueues at the end of the queue.
func enqueueAtEndPolicy(waiter chan struct{}, queue []chan struct{}) []chan struct{} {
	return append(queue, waiter)
}

// fifoDequeuePolicy dequeues the first waiter in the queue.
func fifoDequeuePolicy(queue []chan struct{}) (waiter chan struct{}, afterQueue []chan struct{}) {
	switch len(queue) {
	case 0:
		return nil, queue
	default:
		// Don't retain the dequeued waiter on the backing array.
		waiter = queue[0]
		queue[0] = nil
		return waiter, queue[1:]
	}
}
