package observe

import "sync"

// Subscription is one observer's conflating stream of updates for a single
// node property. Receive from Updates; call Cancel to stop delivery.
type Subscription struct {
	id uint64
	ch chan Update

	mu     sync.Mutex
	closed bool

	// detach removes this subscription from the watcher registry. Nil for
	// pre-closed absent-key subscriptions.
	detach func(id uint64)
}

const subscriptionBuffer = 1

// Updates returns the receive side of the stream. The channel is closed when
// the subscription is canceled, or after the terminal absent update for an
// unknown key.
func (s *Subscription) Updates() <-chan Update {
	return s.ch
}

// Cancel detaches the subscription and closes its channel. Further mutations
// are no longer delivered; tree state is unaffected. Safe to call more than
// once.
func (s *Subscription) Cancel() {
	if s.detach != nil {
		s.detach(s.id)
	}
	s.close()
}

// deliver publishes an update with latest-value-wins semantics: if the buffer
// already holds an unread update, it is evicted in favor of the new one. The
// writer never blocks.
func (s *Subscription) deliver(u Update) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	for {
		select {
		case s.ch <- u:
			return
		default:
		}
		// Buffer full: drop the stale value and retry. The receiver may have
		// drained it concurrently, hence the loop.
		select {
		case <-s.ch:
		default:
		}
	}
}

func (s *Subscription) close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.closed {
		s.closed = true
		close(s.ch)
	}
}
