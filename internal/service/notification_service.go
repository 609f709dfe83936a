package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"html"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/registrar-api/internal/models"
	appErrors "github.com/noah-isme/registrar-api/pkg/errors"
	"github.com/noah-isme/registrar-api/pkg/jobs"
	"github.com/noah-isme/registrar-api/pkg/mailer"
)

// JobTypeNotificationEmail mirrors an inbox notification to the recipient's e-mail.
const JobTypeNotificationEmail = "notification.email"

type notificationStore interface {
	Create(ctx context.Context, n *models.Notification) error
	ListByUser(ctx context.Context, userID int64) ([]models.Notification, error)
	GetByID(ctx context.Context, id int64) (*models.Notification, error)
	MarkRead(ctx context.Context, id int64) error
	CountUnread(ctx context.Context, userID int64) (int, error)
	Delete(ctx context.Context, id int64) error
	DeleteAllForUser(ctx context.Context, userID int64) (int64, error)
}

// UserDirectory resolves user identities.
type UserDirectory interface {
	FindByID(ctx context.Context, id int64) (*models.User, error)
	ListByRole(ctx context.Context, role models.UserRole) ([]models.User, error)
}

type jobDispatcher interface {
	Enqueue(job jobs.Job) error
}

// EmailJobPayload is carried by JobTypeNotificationEmail jobs.
type EmailJobPayload struct {
	NotificationID int64
	UserID         int64
	RequestID      *int64
	Message        string
}

// NotificationService owns the per-user inbox and its e-mail mirror.
type NotificationService struct {
	store   notificationStore
	users   UserDirectory
	queue   jobDispatcher
	sender  mailer.Sender
	metrics *MetricsService
	logger  *zap.Logger
	now     func() time.Time
}

// NewNotificationService constructs the service. A nil queue disables the e-mail mirror.
func NewNotificationService(store notificationStore, users UserDirectory, queue jobDispatcher, sender mailer.Sender, metrics *MetricsService, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if sender == nil {
		sender = mailer.NopSender{}
	}
	return &NotificationService{
		store:   store,
		users:   users,
		queue:   queue,
		sender:  sender,
		metrics: metrics,
		logger:  logger,
		now:     time.Now,
	}
}

// Notify appends an unread message to a user's inbox. The write joins any
// transaction carried by ctx, so it records no metric; callers count the
// outcome once it is durable.
func (s *NotificationService) Notify(ctx context.Context, userID int64, requestID *int64, message string) (*models.Notification, error) {
	n := &models.Notification{
		UserID:    userID,
		RequestID: requestID,
		Message:   message,
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.Create(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

// Mirror schedules the e-mail copy of a stored notification without blocking
// the caller. Delivery is retried by the queue; a full queue drops the copy.
func (s *NotificationService) Mirror(n *models.Notification) {
	if s.queue == nil || n == nil {
		return
	}
	job := jobs.Job{
		Type: JobTypeNotificationEmail,
		Payload: EmailJobPayload{
			NotificationID: n.ID,
			UserID:         n.UserID,
			RequestID:      n.RequestID,
			Message:        n.Message,
		},
	}
	if err := s.queue.Enqueue(job); err != nil {
		if errors.Is(err, jobs.ErrQueueFull) {
			s.metrics.RecordNotificationDropped("email")
		}
		s.logger.Warn("enqueue notification email failed", zap.Int64("notification_id", n.ID), zap.Error(err))
	}
}

// HandleEmailJob delivers a mirrored notification. Registered on the jobs queue.
func (s *NotificationService) HandleEmailJob(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(EmailJobPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", job.Payload, job.Type)
	}
	user, err := s.users.FindByID(ctx, payload.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.Info("skip notification email for missing user", zap.Int64("user_id", payload.UserID))
			return nil
		}
		return fmt.Errorf("resolve recipient: %w", err)
	}
	if user.Email == "" {
		return nil
	}

	subject := "Document request update"
	if payload.RequestID != nil {
		subject = fmt.Sprintf("Document request #%d update", *payload.RequestID)
	}
	msg := mailer.Message{
		To:      []string{user.Email},
		Subject: subject,
		HTML:    fmt.Sprintf("<p>Hi %s,</p><p>%s</p>", html.EscapeString(user.Name), html.EscapeString(payload.Message)),
	}
	if err := s.sender.Send(msg); err != nil {
		s.metrics.RecordNotification("email", false)
		return err
	}
	s.metrics.RecordNotification("email", true)
	return nil
}

// List returns the inbox of userID, newest first.
func (s *NotificationService) List(ctx context.Context, caller *models.JWTClaims, userID int64) ([]models.Notification, error) {
	if err := authorizeOwner(caller, userID); err != nil {
		return nil, err
	}
	items, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list notifications")
	}
	if items == nil {
		items = []models.Notification{}
	}
	return items, nil
}

// UnreadCount counts unread messages of userID.
func (s *NotificationService) UnreadCount(ctx context.Context, caller *models.JWTClaims, userID int64) (int, error) {
	if err := authorizeOwner(caller, userID); err != nil {
		return 0, err
	}
	count, err := s.store.CountUnread(ctx, userID)
	if err != nil {
		return 0, appErrors.Internal(err, "failed to count notifications")
	}
	return count, nil
}

// MarkRead flags a notification read. Marking an already read message succeeds.
func (s *NotificationService) MarkRead(ctx context.Context, caller *models.JWTClaims, id int64) (*models.Notification, error) {
	n, err := s.load(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if n.IsRead {
		return n, nil
	}
	if err := s.store.MarkRead(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NotFound("notification", id)
		}
		return nil, appErrors.Internal(err, "failed to mark notification read")
	}
	n.IsRead = true
	return n, nil
}

// Delete removes one notification.
func (s *NotificationService) Delete(ctx context.Context, caller *models.JWTClaims, id int64) error {
	if _, err := s.load(ctx, caller, id); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.NotFound("notification", id)
		}
		return appErrors.Internal(err, "failed to delete notification")
	}
	return nil
}

// DeleteAll clears the inbox of userID and reports how many messages were removed.
func (s *NotificationService) DeleteAll(ctx context.Context, caller *models.JWTClaims, userID int64) (int64, error) {
	if err := authorizeOwner(caller, userID); err != nil {
		return 0, err
	}
	removed, err := s.store.DeleteAllForUser(ctx, userID)
	if err != nil {
		return 0, appErrors.Internal(err, "failed to clear notifications")
	}
	return removed, nil
}

func (s *NotificationService) load(ctx context.Context, caller *models.JWTClaims, id int64) (*models.Notification, error) {
	n, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NotFound("notification", id)
		}
		return nil, appErrors.Internal(err, "failed to load notification")
	}
	if err := authorizeOwner(caller, n.UserID); err != nil {
		return nil, err
	}
	return n, nil
}
