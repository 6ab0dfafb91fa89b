package throttle

import (
	"sync"
	"time"

	"github.com/throttlify/throttlify/metrics"
)

const (
	gateWindow      = "window"
	gateConcurrency = "concurrency"
)

// Counts is a snapshot of the state of both gates.
type Counts struct {
	// Concurrent is the number of calls in flight (or queued on the gate
	// when used for queue lengths).
	Concurrent int
	// Window is the number of window slots held (or queued on the gate
	// when used for queue lengths).
	Window int
}

// gate is the admission controller. It owns the counters and the queues of both
// gates, and these are only mutated with mu held by acquire and release.
//
// When a slot is freed and there is a waiter on the queue the slot is handed
// to the waiter without touching the counter, this way a new call can't take
// the slot before the queued ones.
type gate struct {
	cfg Config
	rec metrics.Recorder

	mu          sync.Mutex
	counts      Counts
	windowQ     *waitQueue
	concurrentQ *waitQueue

	releases sync.WaitGroup
}

func newGate(cfg Config) *gate {
	rec := cfg.MetricsRecorder
	if rec == nil {
		rec = metrics.Dummy
	}

	return &gate{
		cfg:         cfg,
		rec:         rec.WithID(cfg.ID),
		windowQ:     newWaitQueue(),
		concurrentQ: newWaitQueue(),
	}
}

// acquire blocks until the call has a slot on the window gate and, if enabled,
// on the concurrency gate. The window gate is always checked first.
// All the gate metrics of the call are measured with rec.
// It returns the function that marks the admitted call as settled, this
// must be called exactly once.
func (g *gate) acquire(rec metrics.Recorder) (settle func()) {
	start := time.Now()

	g.mu.Lock()

	if g.counts.Window >= g.cfg.WindowLimit {
		// The releaser that hands us the slot tracks our release sequence.
		g.wait(rec, g.windowQ, gateWindow)
	} else {
		g.counts.Window++
		g.releases.Add(1)
	}
	rec.SetThrottleSlotsInUse(gateWindow, g.counts.Window)

	if g.cfg.ConcurrentLimit > 0 && g.counts.Concurrent >= g.cfg.ConcurrentLimit {
		g.wait(rec, g.concurrentQ, gateConcurrency)
	} else {
		g.counts.Concurrent++
	}
	rec.SetThrottleSlotsInUse(gateConcurrency, g.counts.Concurrent)

	g.mu.Unlock()

	rec.ObserveThrottleAdmissionWait(start)

	return g.startRelease(rec)
}

// wait suspends the caller on the queue, it needs to be called with mu held
// and it returns with mu held. When it returns the caller owns the slot
// that has been handed by the releaser.
func (g *gate) wait(rec metrics.Recorder, q *waitQueue, gateName string) {
	wakeUp, err := suspend(q)
	if err != nil {
		// Our queues are created with the gate.
		panic(err)
	}
	rec.IncThrottleQueued(gateName)

	g.mu.Unlock()
	<-wakeUp
	g.mu.Lock()
}

// startRelease starts the release sequence of an admitted call in background.
// The concurrency slot is released as soon as the call settles, the window slot
// when the call has settled and the window duration has passed since admission.
// The sequence must have been added to releases when the window slot was taken.
func (g *gate) startRelease(rec metrics.Recorder) (settle func()) {
	windowC := windowTimer(g.cfg.WindowDuration)
	settledC := make(chan struct{})

	go func() {
		defer g.releases.Done()

		<-settledC
		g.release(rec, g.concurrentQ, &g.counts.Concurrent, gateConcurrency)

		<-windowC
		if g.release(rec, g.windowQ, &g.counts.Window, gateWindow) {
			// Tracked before our Done so drain never sees the window slot untracked.
			g.releases.Add(1)
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() { close(settledC) })
	}
}

// release frees a slot, if there is someone waiting the slot is handed to
// the oldest waiter and true is returned, if not the counter is decremented.
func (g *gate) release(rec metrics.Recorder, q *waitQueue, count *int, gateName string) (handed bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	handed = signalNext(q)
	if !handed {
		*count--
	}
	rec.IncThrottleReleased(gateName)
	rec.SetThrottleSlotsInUse(gateName, *count)

	return handed
}

func (g *gate) snapshot() (counts Counts, queued Counts) {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.counts, Counts{
		Concurrent: g.concurrentQ.Len(),
		Window:     g.windowQ.Len(),
	}
}

// drain waits until every release sequence started has finished. If doneC
// wins, the goroutine waiting on releases keeps running until they finish.
func (g *gate) drain(doneC <-chan struct{}) bool {
	finishedC := make(chan struct{})
	go func() {
		g.releases.Wait()
		close(finishedC)
	}()

	select {
	case <-finishedC:
		return true
	case <-doneC:
		return false
	}
}
