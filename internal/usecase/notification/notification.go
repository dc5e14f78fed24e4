package notification

import (
	"context"

	"github.com/BruksfildServices01/mawaid-scheduler/internal/dto"
	"github.com/BruksfildServices01/mawaid-scheduler/internal/reconcile"
)

type ListNotifications struct {
	src reconcile.NotificationSource
}

func NewListNotifications(src reconcile.NotificationSource) *ListNotifications {
	return &ListNotifications{src: src}
}

// Execute returns the recipient's notifications, newest first, with the
// unread badge count.
func (uc *ListNotifications) Execute(
	ctx context.Context,
	recipientID string,
) (dto.NotificationListDTO, error) {

	proj := reconcile.NewNotifications(uc.src, recipientID)
	rows, err := proj.FetchNotifications(ctx)
	if err != nil {
		return dto.NotificationListDTO{}, err
	}

	return dto.NotificationListDTO{
		Data:        rows,
		Total:       len(rows),
		UnreadCount: proj.UnreadCount(),
	}, nil
}

type MarkNotificationRead struct {
	src reconcile.NotificationSource
}

func NewMarkNotificationRead(src reconcile.NotificationSource) *MarkNotificationRead {
	return &MarkNotificationRead{src: src}
}

// Execute marks one of the recipient's notifications as read. Marking an
// already-read notification succeeds.
func (uc *MarkNotificationRead) Execute(
	ctx context.Context,
	recipientID string,
	id string,
) error {
	return uc.src.MarkNotificationRead(ctx, id, recipientID)
}
