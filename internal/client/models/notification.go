package models

import "time"

// NotificationType selects the icon and colour of a notification.
type NotificationType string

const (
	NotificationPayment NotificationType = "payment"
	NotificationBus     NotificationType = "bus"
	NotificationInfo    NotificationType = "info"
	NotificationAlert   NotificationType = "alert"
)

// Notification is one entry of the parent's inbox. Ref, when set, is a
// stable key of the event that produced it, so the same event is never
// stored twice.
type Notification struct {
	ID          string
	Type        NotificationType
	Title       string
	Description string
	CreatedAt   time.Time
	Read        bool
	Ref         string
}
