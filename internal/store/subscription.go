package store

import "sync"

// queuedSubscriber delivers every event it is given, in order. Events wait in
// an unbounded queue and a pump goroutine hands them to out one at a time, so
// push never blocks the store.
type queuedSubscriber struct {
	out chan ChangeEvent

	mu       sync.Mutex
	queue    []ChangeEvent
	finished bool // no more events will be pushed

	wake chan struct{}
	gone chan struct{} // closed when the consumer unsubscribes
	once sync.Once
}

func newQueuedSubscriber() *queuedSubscriber {
	q := &queuedSubscriber{
		out:  make(chan ChangeEvent),
		wake: make(chan struct{}, 1),
		gone: make(chan struct{}),
	}
	go q.pump()
	return q
}

func (q *queuedSubscriber) push(ev ChangeEvent) {
	q.mu.Lock()
	q.queue = append(q.queue, ev)
	q.mu.Unlock()
	q.signal()
}

// finish lets the pump deliver what is queued, then close out.
func (q *queuedSubscriber) finish() {
	q.mu.Lock()
	q.finished = true
	q.mu.Unlock()
	q.signal()
}

// cancel drops whatever is queued and closes out.
func (q *queuedSubscriber) cancel() {
	q.once.Do(func() { close(q.gone) })
}

func (q *queuedSubscriber) signal() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

func (q *queuedSubscriber) pump() {
	defer close(q.out)

	for {
		q.mu.Lock()
		batch := q.queue
		q.queue = nil
		finished := q.finished
		q.mu.Unlock()

		for _, ev := range batch {
			select {
			case q.out <- ev:
			case <-q.gone:
				return
			}
		}
		if len(batch) > 0 {
			continue
		}
		if finished {
			return
		}

		select {
		case <-q.wake:
		case <-q.gone:
			return
		}
	}
}
