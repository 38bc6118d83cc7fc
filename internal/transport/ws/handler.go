// Package ws exposes the persistent connection a customer keeps open to
// receive order-status pushes. The handshake authenticates through the
// `token` query parameter; anonymous connections are accepted at the
// transport level and closed immediately.
package ws

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/vlasovmax/shopcore/internal/notify"
	"github.com/vlasovmax/shopcore/pkg/jwt"
	"go.uber.org/zap"
)

// pushMessage is the payload the client sees for every delivered event.
type pushMessage struct {
	Message string `json:"message"`
}

// UpgradeRequired gates the ws routes so plain HTTP requests get a 426
// instead of reaching the websocket handler.
func UpgradeRequired(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// NewOrderStatusHandler runs one connection session: authenticate,
// join the user's hub group, pump events out until the peer goes away,
// then leave the group. Inbound frames are read only to detect
// disconnect; their content is ignored.
func NewOrderStatusHandler(hub *notify.Hub, bufferSize int, l *zap.Logger) fiber.Handler {
	return websocket.New(func(c *websocket.Conn) {
		defer func() {
			if err := c.Close(); err != nil {
				l.Debug("error closing websocket", zap.Error(err))
			}
		}()

		claims, err := jwt.ValidateToken(c.Query("token"), false)
		if err != nil {
			l.Debug("rejecting anonymous websocket connection", zap.Error(err))
			return
		}

		key := notify.UserGroup(claims.UserID)
		sess := newSession(bufferSize)

		hub.Subscribe(key, sess)
		defer func() {
			hub.Unsubscribe(key, sess)
			sess.close()
		}()

		l.Info("websocket session opened", zap.Int64("user_id", claims.UserID))

		go writePump(c, sess, l)

		for {
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}

		l.Info("websocket session closed", zap.Int64("user_id", claims.UserID))
	})
}

func writePump(c *websocket.Conn, sess *session, l *zap.Logger) {
	for {
		select {
		case event := <-sess.send:
			if err := c.WriteJSON(pushMessage{Message: event.Message}); err != nil {
				l.Debug("websocket write failed", zap.Error(err))
				sess.close()
				return
			}
		case <-sess.done:
			return
		}
	}
}
