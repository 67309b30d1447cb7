package service

import (
	"context"
	"encoding/json"
	"fmt"

	"anoa.com/hostelhub/internal/entity"
	notifRepo "anoa.com/hostelhub/internal/modules/notification/repository"
	"anoa.com/hostelhub/internal/policy"
	"anoa.com/hostelhub/pkg/apperror"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const defaultLimit = 20

// Channel is the redis pub/sub channel carrying a user's notifications.
func Channel(userID uuid.UUID) string {
	return fmt.Sprintf("user_notifications:%s", userID.String())
}

// Notifier is what other services use to emit notifications. Delivery
// failures are logged and never returned.
type Notifier interface {
	Notify(ctx context.Context, notification *entity.Notification)
}

type NotificationService interface {
	Notifier
	CreateNotification(ctx context.Context, notification *entity.Notification) error
	GetNotifications(ctx context.Context, userID uuid.UUID, limit, offset int) ([]entity.Notification, error)
	MarkAsRead(ctx context.Context, id policy.Identity, notificationID uuid.UUID) error
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) error
	UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)
}

type notificationService struct {
	repo        notifRepo.NotificationRepository
	redisClient *redis.Client
}

func NewNotificationService(repo notifRepo.NotificationRepository, redisClient *redis.Client) NotificationService {
	return &notificationService{
		repo:        repo,
		redisClient: redisClient,
	}
}

func (s *notificationService) CreateNotification(ctx context.Context, notification *entity.Notification) error {
	if err := s.repo.Create(ctx, notification); err != nil {
		return err
	}

	if s.redisClient != nil {
		payload, err := json.Marshal(notification)
		if err != nil {
			return err
		}
		if err := s.redisClient.Publish(ctx, Channel(notification.UserID), payload).Err(); err != nil {
			return fmt.Errorf("failed to publish notification: %w", err)
		}
	}

	return nil
}

func (s *notificationService) Notify(ctx context.Context, notification *entity.Notification) {
	if err := s.CreateNotification(ctx, notification); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"user_id": notification.UserID,
			"type":    notification.Type,
		}).Warn("failed to deliver notification")
	}
}

func (s *notificationService) GetNotifications(ctx context.Context, userID uuid.UUID, limit, offset int) ([]entity.Notification, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	return s.repo.GetByUserID(ctx, userID, limit, offset)
}

// MarkAsRead only lets the recipient mark a notification.
func (s *notificationService) MarkAsRead(ctx context.Context, id policy.Identity, notificationID uuid.UUID) error {
	notification, err := s.repo.FindByID(ctx, notificationID)
	if err != nil {
		return err
	}
	if notification.UserID != id.UserID {
		return fmt.Errorf("notification belongs to another user: %w", apperror.ErrForbidden)
	}
	return s.repo.MarkAsRead(ctx, notificationID)
}

func (s *notificationService) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	return s.repo.MarkAllAsRead(ctx, userID)
}

func (s *notificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}
