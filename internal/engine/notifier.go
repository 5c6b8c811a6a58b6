package engine

import "sync"

// Notifier delivers state transitions to listeners from a single goroutine.
// Push never blocks and never loses a transition: repeats of the most recently
// queued state collapse, so the queue only ever holds alternating states and
// the last state delivered always matches the last state pushed.
type Notifier struct {
	mu        sync.Mutex
	tail      State
	pending   []State
	listeners []func(State)
	closed    bool

	wake chan struct{}
	done chan struct{}
}

// NewNotifier starts a notifier whose listeners assume initial.
func NewNotifier(initial State) *Notifier {
	n := &Notifier{
		tail: initial,
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	go n.run()
	return n
}

// Subscribe registers fn. It runs on the notifier's goroutine.
func (n *Notifier) Subscribe(fn func(State)) {
	if fn == nil {
		return
	}
	n.mu.Lock()
	n.listeners = append(n.listeners, fn)
	n.mu.Unlock()
}

// Push queues s unless it equals the most recently queued state. It is safe to
// call from foreign threads such as a C library's event callback.
func (n *Notifier) Push(s State) {
	n.mu.Lock()
	if n.closed || s == n.tail {
		n.mu.Unlock()
		return
	}
	n.tail = s
	n.pending = append(n.pending, s)
	n.mu.Unlock()

	select {
	case n.wake <- struct{}{}:
	default:
	}
}

// Close stops delivery. Transitions still queued are discarded.
func (n *Notifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return
	}
	n.closed = true
	n.pending = nil
	close(n.done)
}

func (n *Notifier) run() {
	for {
		select {
		case <-n.done:
			return
		case <-n.wake:
		}
		for {
			n.mu.Lock()
			if n.closed || len(n.pending) == 0 {
				n.mu.Unlock()
				break
			}
			s := n.pending[0]
			n.pending = n.pending[1:]
			ls := append([]func(State){}, n.listeners...)
			n.mu.Unlock()
			for _, fn := range ls {
				fn(s)
			}
		}
	}
}
