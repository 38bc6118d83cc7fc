package ws

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vlasovmax/shopcore/internal/domain"
)

func TestSessionSendNonBlocking(t *testing.T) {
	sess := newSession(2)

	ev := domain.NotificationEvent{Message: "hi"}
	require.True(t, sess.Send(ev))
	require.True(t, sess.Send(ev))

	// buffer full: must drop, never block
	require.False(t, sess.Send(ev))
}

func TestSessionSendAfterClose(t *testing.T) {
	sess := newSession(4)
	sess.close()

	require.False(t, sess.Send(domain.NotificationEvent{Message: "late"}))
}

func TestSessionCloseIsIdempotent(t *testing.T) {
	sess := newSession(1)

	require.NotPanics(t, func() {
		sess.close()
		sess.close()
	})
}

func TestSessionDefaultBuffer(t *testing.T) {
	sess := newSession(0)

	for i := 0; i < 16; i++ {
		require.True(t, sess.Send(domain.NotificationEvent{Message: "n"}))
	}
	require.False(t, sess.Send(domain.NotificationEvent{Message: "overflow"}))
}
