package service

import (
	"context"
	"net/url"
	"strconv"

	"github.com/hireloop/seeker/internal/gateway"
	"github.com/hireloop/seeker/internal/model"
)

// NotificationService lists in-app notifications and marks them read.
// Delivery (push) is out of scope; this is plain polling.
type NotificationService struct {
	api *gateway.Client
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(api *gateway.Client) *NotificationService {
	return &NotificationService{api: api}
}

// List drains all notification pages, newest first.
func (s *NotificationService) List(ctx context.Context) ([]model.Notification, error) {
	var items []model.Notification
	for page := 1; ; page++ {
		query := url.Values{}
		query.Set("page", strconv.Itoa(page))
		query.Set("per_page", strconv.Itoa(defaultPerPage))

		var data struct {
			Items []model.Notification `json:"items"`
			Total int                  `json:"total"`
		}
		if err := s.api.Get(ctx, "/notifications", query, &data); err != nil {
			return nil, err
		}

		items = append(items, data.Items...)
		if len(data.Items) < defaultPerPage || len(items) >= data.Total {
			break
		}
	}
	return items, nil
}

// MarkRead flags a single notification as read.
func (s *NotificationService) MarkRead(ctx context.Context, id string) error {
	return s.api.Post(ctx, "/notifications/"+id+"/read", nil, nil)
}
