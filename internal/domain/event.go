package domain

// NotificationEvent is a transient push message addressed to one user.
// It is never stored: delivery is best effort to whoever is connected
// at the moment of publish.
type NotificationEvent struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	UserID  int64  `json:"user_id"`
}

const EventTypeOrderStatus = "order_status_update"
