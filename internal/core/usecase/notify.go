package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rmarchan/docuvault/internal/core/domain"
	"github.com/rmarchan/docuvault/internal/core/ports"
)

// NotifyUseCase turns document.filed events into notification records.
// It runs in the worker process.
type NotifyUseCase struct {
	notifications ports.NotificationRepository
	now           func() time.Time
}

func NewNotifyUseCase(notifications ports.NotificationRepository) *NotifyUseCase {
	return &NotifyUseCase{notifications: notifications, now: time.Now}
}

func (uc *NotifyUseCase) HandleDocumentFiled(ctx context.Context, event domain.DocumentFiledEvent) error {
	if event.UserID == "" || event.DocumentID == "" {
		return domain.WrapError(domain.ErrInvalidInput, "handle document filed", fmt.Errorf("event missing user or document id"))
	}

	notification := &domain.Notification{
		ID:         uuid.NewString(),
		UserID:     event.UserID,
		Kind:       domain.NotificationDocumentFiled,
		Title:      fmt.Sprintf("Documento archivado: %s", event.Name),
		Body:       fmt.Sprintf("Se guardó %q en la carpeta %s de tu Drive.", event.Name, event.Category),
		DocumentID: event.DocumentID,
		CreatedAt:  uc.now().UTC(),
	}
	if err := uc.notifications.Create(ctx, notification); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}
