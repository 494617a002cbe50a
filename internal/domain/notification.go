package domain

import "time"

// Notification types used by the built-in callers. The set is open: callers
// may pass any other category string.
const (
	NotificationTypeTicket       = "ticket"
	NotificationTypeSchedule     = "schedule"
	NotificationTypeVerification = "verification"
	NotificationTypeSystem       = "system"
	NotificationTypePersonal     = "personal"
)

type Notification struct {
	NotificationID string     `json:"id" dynamodbav:"notification_id"`
	UserID         string     `json:"user_id" dynamodbav:"user_id"`
	SenderID       *string    `json:"sender_id" dynamodbav:"sender_id,omitempty"`
	Title          string     `json:"title" dynamodbav:"title"`
	Body           string     `json:"body" dynamodbav:"body"`
	Type           string     `json:"notification_type" dynamodbav:"notification_type"`
	Data           Payload    `json:"data" dynamodbav:"data"`
	RelatedType    *string    `json:"related_type" dynamodbav:"related_type,omitempty"`
	RelatedID      *string    `json:"related_id" dynamodbav:"related_id,omitempty"`
	IsRead         bool       `json:"is_read" dynamodbav:"is_read"`
	CreatedAt      time.Time  `json:"created_at" dynamodbav:"created_at"`
	ReadAt         *time.Time `json:"read_at" dynamodbav:"read_at,omitempty"`
}

// CreateNotificationInput carries everything needed to persist one notification.
type CreateNotificationInput struct {
	UserID      string
	Title       string
	Body        string
	Type        string
	SenderID    *string
	Data        Payload
	RelatedType *string
	RelatedID   *string
}

// NotificationFilter narrows a notification listing. Predicates are ANDed.
type NotificationFilter struct {
	UnreadOnly bool
	Type       string
}

type NotificationPage struct {
	Items       []Notification `json:"items"`
	UnreadCount int            `json:"unread_count"`
	TotalCount  int            `json:"total_count"`
	Page        int            `json:"page"`
	PageSize    int            `json:"page_size"`
	TotalPages  int            `json:"total_pages"`
}

type SendNotificationRequest struct {
	UserID      string  `json:"user_id" validate:"required"`
	Title       string  `json:"title" validate:"required,max=200"`
	Body        string  `json:"body" validate:"required,max=2000"`
	Type        string  `json:"type" validate:"required,max=64"`
	Data        Payload `json:"data"`
	RelatedType *string `json:"related_type"`
	RelatedID   *string `json:"related_id"`
}

type BroadcastNotificationRequest struct {
	UserIDs     []string `json:"user_ids" validate:"required,min=1,dive,required"`
	Title       string   `json:"title" validate:"required,max=200"`
	Body        string   `json:"body" validate:"required,max=2000"`
	Type        string   `json:"type" validate:"required,max=64"`
	Data        Payload  `json:"data"`
	RelatedType *string  `json:"related_type"`
	RelatedID   *string  `json:"related_id"`
}
