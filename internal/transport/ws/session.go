package ws

import (
	"sync"

	"github.com/vlasovmax/shopcore/internal/domain"
)

// session is one live client connection registered with the hub. The
// outbound channel is bounded: a stalled client loses events instead of
// blocking whoever publishes.
type session struct {
	send chan domain.NotificationEvent
	done chan struct{}
	once sync.Once
}

func newSession(bufferSize int) *session {
	if bufferSize <= 0 {
		bufferSize = 16
	}
	return &session{
		send: make(chan domain.NotificationEvent, bufferSize),
		done: make(chan struct{}),
	}
}

// Send hands the event to the write pump without blocking. Reports
// false when the buffer is full or the session is closing.
func (s *session) Send(event domain.NotificationEvent) bool {
	select {
	case <-s.done:
		return false
	default:
	}

	select {
	case s.send <- event:
		return true
	default:
		return false
	}
}

func (s *session) close() {
	s.once.Do(func() {
		close(s.done)
	})
}
