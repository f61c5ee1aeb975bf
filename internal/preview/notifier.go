package preview

import "sync"

// notifier delivers status transitions to a listener in order, off the controller lock.
type notifier struct {
	mu       sync.Mutex
	queue    []Status
	listener func(Status)

	wake    chan struct{}
	done    chan struct{}
	stopped chan struct{}
	once    sync.Once
}

func newNotifier(listener func(Status)) *notifier {
	return &notifier{
		listener: listener,
		wake:     make(chan struct{}, 1),
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
}

func (n *notifier) publish(s Status) {
	n.mu.Lock()
	n.queue = append(n.queue, s)
	n.mu.Unlock()

	select {
	case n.wake <- struct{}{}:
	default:
	}
}

func (n *notifier) run() {
	defer close(n.stopped)

	for {
		select {
		case <-n.wake:
			n.drain()
		case <-n.done:
			n.drain()
			return
		}
	}
}

func (n *notifier) drain() {
	for {
		n.mu.Lock()
		pending := n.queue
		n.queue = nil
		n.mu.Unlock()

		if len(pending) == 0 {
			return
		}
		for _, s := range pending {
			n.listener(s)
		}
	}
}

func (n *notifier) close() {
	n.once.Do(func() { close(n.done) })
	<-n.stopped
}
