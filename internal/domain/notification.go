package domain

import "time"

// NotificationLevel is the severity of a toast shown to the user.
type NotificationLevel string

const (
	LevelSuccess NotificationLevel = "success"
	LevelError   NotificationLevel = "error"
)

// Notification is a transient success or failure notice.
type Notification struct {
	Level     NotificationLevel `json:"level"`
	Message   string            `json:"message"`
	Category  Category          `json:"category,omitempty"`
	AccountID string            `json:"account_id,omitempty"`
	At        time.Time         `json:"at"`
}
