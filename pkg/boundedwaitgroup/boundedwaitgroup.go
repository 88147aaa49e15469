// Package boundedwaitgroup provides a wait group that caps the number of
// goroutines active at once, used to bound the number of concurrently
// in-flight sub-request streams a recovery channel drives.
package boundedwaitgroup

import "sync"

// BoundedWaitGroup behaves like sync.WaitGroup except Add blocks until
// capacity is available, limiting the number of active goroutines.
type BoundedWaitGroup struct {
	wg  sync.WaitGroup
	ch  chan struct{} // buffer size bounds concurrency
	cap uint
}

// New creates a BoundedWaitGroup with the given concurrency cap.
func New(cap uint) BoundedWaitGroup {
	if cap == 0 {
		panic("boundedwaitgroup: capacity must be greater than zero or else it will block forever")
	}
	return BoundedWaitGroup{ch: make(chan struct{}, cap), cap: cap}
}

// Add adds delta, which may be negative, blocking until there is capacity
// for any positive delta.
func (bwg *BoundedWaitGroup) Add(delta int) {
	for i := 0; i > delta; i-- {
		<-bwg.ch
	}
	for i := 0; i < delta; i++ {
		bwg.ch <- struct{}{}
	}
	bwg.wg.Add(delta)
}

// Done removes one from the wait group.
func (bwg *BoundedWaitGroup) Done() {
	bwg.Add(-1)
}

// Wait blocks until the wait group counter is zero.
func (bwg *BoundedWaitGroup) Wait() {
	bwg.wg.Wait()
}

// Cap returns the configured concurrency cap.
func (bwg *BoundedWaitGroup) Cap() uint {
	return bwg.cap
}

// InUse returns the number of currently occupied slots. Intended for
// diagnostics (e.g. scoring snapshots), not for synchronization.
func (bwg *BoundedWaitGroup) InUse() int {
	return len(bwg.ch)
}
