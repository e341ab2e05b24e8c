package tracker

import "sync"

// lane is a FIFO queue of remote writes against one logical resource. A
// ticket is taken while the optimistic mutation is applied, under the
// tracker's mutex, so writes reach the store in the order the user acted.
// All methods require the tracker's mutex to be held.
type lane struct {
	cond    *sync.Cond
	next    uint64
	serving uint64
}

func newLane(mu *sync.Mutex) *lane {
	return &lane{cond: sync.NewCond(mu)}
}

// take reserves the next slot without waiting.
func (l *lane) take() uint64 {
	t := l.next
	l.next++
	return t
}

// wait blocks, releasing the mutex meanwhile, until ticket t is served.
func (l *lane) wait(t uint64) {
	for l.serving != t {
		l.cond.Wait()
	}
}

// acquire takes a ticket and waits for it.
func (l *lane) acquire() {
	l.wait(l.take())
}

// release hands the lane to the next ticket.
func (l *lane) release() {
	l.serving++
	l.cond.Broadcast()
}
